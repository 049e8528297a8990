package cli

import (
	"fmt"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/render"
	"github.com/spf13/cobra"
)

var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Manage line items",
}

var itemAddCmd = &cobra.Command{
	Use:   "add PROJECT LOCATION",
	Short: "Add a line item to a location",
	Long: `Add a line item to a location.

Fields come from the flags, or from a catalog entry with --catalog;
explicit flags override catalog values.`,
	Args: cobra.ExactArgs(2),
	RunE: appctx.WithApp(appctx.WithSync(), runItemAdd),
}

var itemSetCmd = &cobra.Command{
	Use:   "set PROJECT ITEM",
	Short: "Update fields of an existing item",
	Args:  cobra.ExactArgs(2),
	RunE:  appctx.WithApp(appctx.WithSync(), runItemSet),
}

var itemRmCmd = &cobra.Command{
	Use:   "rm PROJECT ITEM",
	Short: "Remove an item",
	Args:  cobra.ExactArgs(2),
	RunE:  appctx.WithApp(appctx.WithSync(), runItemRm),
}

var itemMvCmd = &cobra.Command{
	Use:   "mv PROJECT ITEM LOCATION",
	Short: "Move an item to another location",
	Args:  cobra.ExactArgs(3),
	RunE:  appctx.WithApp(appctx.WithSync(), runItemMv),
}

var itemAccessoryCmd = &cobra.Command{
	Use:   "accessory PROJECT PARENT SOURCE",
	Short: "Convert an item into an accessory of another item",
	Long: `Convert the SOURCE item into an accessory of the PARENT item.

The source item leaves the tree and becomes a per-unit sub-line of the
parent. Package instances cannot participate on either side.`,
	Args: cobra.ExactArgs(3),
	RunE: appctx.WithApp(appctx.WithSync(), runItemAccessory),
}

var (
	itemFlags struct {
		catalog      string
		manufacturer string
		model        string
		partNumber   string
		description  string
		category     string
		cost         float64
		labor        float64
		qty          float64
		uom          string
		vendor       string
		phase        string
		placeholder  bool
	}
	itemQtyPer   float64
	itemSnapshot bool
)

func init() {
	rootCmd.AddCommand(itemCmd)
	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemSetCmd)
	itemCmd.AddCommand(itemRmCmd)
	itemCmd.AddCommand(itemMvCmd)
	itemCmd.AddCommand(itemAccessoryCmd)

	for _, c := range []*cobra.Command{itemAddCmd, itemSetCmd} {
		c.Flags().StringVar(&itemFlags.manufacturer, "manufacturer", "", "Manufacturer")
		c.Flags().StringVar(&itemFlags.model, "model", "", "Model")
		c.Flags().StringVar(&itemFlags.partNumber, "part", "", "Part number")
		c.Flags().StringVar(&itemFlags.description, "desc", "", "Description")
		c.Flags().StringVar(&itemFlags.category, "category", "", "Category")
		c.Flags().Float64Var(&itemFlags.cost, "cost", 0, "Unit cost")
		c.Flags().Float64Var(&itemFlags.labor, "labor", 0, "Labor hours per unit")
		c.Flags().Float64Var(&itemFlags.qty, "qty", 0, "Quantity")
		c.Flags().StringVar(&itemFlags.uom, "uom", "", "Unit of measure")
		c.Flags().StringVar(&itemFlags.vendor, "vendor", "", "Vendor")
		c.Flags().StringVar(&itemFlags.phase, "phase", "", "Installation phase")
	}
	itemAddCmd.Flags().StringVar(&itemFlags.catalog, "catalog", "", "Catalog item id to copy fields from")
	itemAddCmd.Flags().BoolVar(&itemFlags.placeholder, "placeholder", false, "Mark the item as a placeholder")
	itemAccessoryCmd.Flags().Float64Var(&itemQtyPer, "qty-per", 1, "Accessory quantity per parent unit")
	itemCmd.PersistentFlags().BoolVar(&itemSnapshot, "snapshot", false, "Create a revision first when one is required")
}

func runItemAdd(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[1])
	if err != nil {
		return err
	}

	item := domain.Item{
		Manufacturer:    itemFlags.manufacturer,
		Model:           itemFlags.model,
		PartNumber:      itemFlags.partNumber,
		Description:     itemFlags.description,
		Category:        itemFlags.category,
		UnitCost:        itemFlags.cost,
		LaborHrsPerUnit: itemFlags.labor,
		Qty:             itemFlags.qty,
		UOM:             itemFlags.uom,
		Vendor:          itemFlags.vendor,
		Phase:           itemFlags.phase,
		IsPlaceholder:   itemFlags.placeholder,
	}
	if item.Qty == 0 {
		item.Qty = 1
	}

	if itemFlags.catalog != "" {
		merged, err := loadMergedCatalog(app)
		if err != nil {
			return err
		}
		entry := findCatalogItem(merged, itemFlags.catalog)
		if entry == nil {
			return fmt.Errorf("catalog item %q not found", itemFlags.catalog)
		}
		fillFromCatalog(&item, entry)
	} else if item.Manufacturer == "" && item.Model == "" && item.Description == "" {
		return fmt.Errorf("an item needs --catalog, or at least --manufacturer/--model/--desc")
	}
	item.IsCustom = itemFlags.catalog == ""

	_, err = mutateProject(app, project, itemSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, _ = locations.AddItem(p.Locations, nodeID, item)
		return &next
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %s x %s %s\n", render.Qty(item.Qty), item.Manufacturer, item.Model)
	return nil
}

func runItemSet(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	_, existing := locations.FindItem(project.Locations, args[1])
	if existing == nil {
		return fmt.Errorf("item %q not found", args[1])
	}
	if existing.IsPackage() {
		return fmt.Errorf("item %q is a package instance: use 'estq pkg' to manage it", args[1])
	}

	updated := domain.CloneItem(*existing)
	applyItemFlags(cmd, &updated)

	_, err = mutateProject(app, project, itemSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, _ = locations.UpdateItem(p.Locations, updated)
		return &next
	})
	if err != nil {
		return err
	}

	fmt.Println("Updated")
	return nil
}

// applyItemFlags overwrites only the fields whose flags were given.
func applyItemFlags(cmd *cobra.Command, item *domain.Item) {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("manufacturer") {
		item.Manufacturer = itemFlags.manufacturer
	}
	if set("model") {
		item.Model = itemFlags.model
	}
	if set("part") {
		item.PartNumber = itemFlags.partNumber
	}
	if set("desc") {
		item.Description = itemFlags.description
	}
	if set("category") {
		item.Category = itemFlags.category
	}
	if set("cost") {
		item.UnitCost = itemFlags.cost
	}
	if set("labor") {
		item.LaborHrsPerUnit = itemFlags.labor
	}
	if set("qty") {
		item.Qty = itemFlags.qty
	}
	if set("uom") {
		item.UOM = itemFlags.uom
	}
	if set("vendor") {
		item.Vendor = itemFlags.vendor
	}
	if set("phase") {
		item.Phase = itemFlags.phase
	}
}

func runItemRm(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	if _, existing := locations.FindItem(project.Locations, args[1]); existing == nil {
		return fmt.Errorf("item %q not found", args[1])
	}

	_, err = mutateProject(app, project, itemSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, _ = locations.RemoveItem(p.Locations, args[1])
		return &next
	})
	if err != nil {
		return err
	}

	fmt.Println("Removed")
	return nil
}

func runItemMv(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[2])
	if err != nil {
		return err
	}

	moved := false
	_, err = mutateProject(app, project, itemSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		var ok bool
		next.Locations, ok = locations.MoveItem(p.Locations, args[1], nodeID)
		moved = ok
		return &next
	})
	if err != nil {
		return err
	}
	if !moved {
		return fmt.Errorf("item %q not found", args[1])
	}

	fmt.Println("Moved")
	return nil
}

func runItemAccessory(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}

	attached := false
	_, err = mutateProject(app, project, itemSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		var ok bool
		next.Locations, ok = locations.AttachAccessory(p.Locations, args[1], args[2], itemQtyPer)
		attached = ok
		return &next
	})
	if err != nil {
		return err
	}
	if !attached {
		return fmt.Errorf("cannot attach %q to %q: both must be existing component items", args[2], args[1])
	}

	fmt.Println("Attached")
	return nil
}

func findCatalogItem(items []domain.CatalogItem, itemID string) *domain.CatalogItem {
	for i := range items {
		if items[i].ID == itemID {
			return &items[i]
		}
	}
	return nil
}

// fillFromCatalog copies catalog fields into the item, keeping any
// field already set by a flag.
func fillFromCatalog(item *domain.Item, entry *domain.CatalogItem) {
	if item.Manufacturer == "" {
		item.Manufacturer = entry.Manufacturer
	}
	if item.Model == "" {
		item.Model = entry.Model
	}
	if item.PartNumber == "" {
		item.PartNumber = entry.PartNumber
	}
	if item.Description == "" {
		item.Description = entry.Description
	}
	if item.Category == "" {
		item.Category = entry.Category
	}
	if item.Subcategory == "" {
		item.Subcategory = entry.Subcategory
	}
	if item.UnitCost == 0 {
		item.UnitCost = entry.UnitCost
	}
	if item.LaborHrsPerUnit == 0 {
		item.LaborHrsPerUnit = entry.LaborHrsPerUnit
	}
	if item.UOM == "" {
		item.UOM = entry.UOM
	}
	if item.Vendor == "" {
		item.Vendor = entry.Vendor
	}
	if item.Phase == "" {
		item.Phase = entry.Phase
	}
}
