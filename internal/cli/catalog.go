package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avforge/estq/internal/catalog"
	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/render"
	"github.com/avforge/estq/internal/source"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse and customize the component catalog",
}

var catalogLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List catalog items with team customizations applied",
	Args:  cobra.NoArgs,
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runCatalogLs),
}

var catalogCustomizeCmd = &cobra.Command{
	Use:   "customize ITEM",
	Short: "Record a team customization for a catalog item",
	Long: `Record a team customization for a catalog item.

The customization is a sparse overlay: only the flags given here
override the base catalog. --set takes field=value pairs for
manufacturer, model, part_number, description, category, subcategory,
unit_cost, labor_hrs_per_unit, uom, vendor, discontinued, and phase.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runCatalogCustomize),
}

var catalogResetCmd = &cobra.Command{
	Use:   "reset ITEM",
	Short: "Discard the team's customization for a catalog item",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runCatalogReset),
}

var catalogRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reconcile the catalog against remote customization records",
	Long: `Reconcile the catalog against remote customization records,
last writer wins per item.

A remote record wins only when it is strictly newer than the local
item; on a win the whole remote overlay replaces the local one and the
item adopts the remote timestamp, so repeating a refresh is a no-op.
Remote records for unknown items are skipped.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runCatalogRefresh),
}

var (
	catalogFavoritesOnly bool
	catalogCategory      string
	catalogWithDeleted   bool

	customizeFavorite bool
	customizeNote     string
	customizeDelete   bool
	customizeSets     []string

	refreshFile     string
	refreshSkipCats bool
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogLsCmd)
	catalogCmd.AddCommand(catalogCustomizeCmd)
	catalogCmd.AddCommand(catalogResetCmd)
	catalogCmd.AddCommand(catalogRefreshCmd)

	catalogLsCmd.Flags().BoolVar(&catalogFavoritesOnly, "favorites", false, "Only favorites")
	catalogLsCmd.Flags().StringVar(&catalogCategory, "category", "", "Filter by category")
	catalogLsCmd.Flags().BoolVar(&catalogWithDeleted, "deleted", false, "Include soft-deleted items")

	catalogCustomizeCmd.Flags().BoolVar(&customizeFavorite, "favorite", false, "Mark as favorite")
	catalogCustomizeCmd.Flags().StringVar(&customizeNote, "note", "", "Catalog note")
	catalogCustomizeCmd.Flags().BoolVar(&customizeDelete, "delete", false, "Soft-delete the item for this team")
	catalogCustomizeCmd.Flags().StringArrayVar(&customizeSets, "set", nil, "Field override, field=value")

	catalogRefreshCmd.Flags().StringVar(&refreshFile, "file", "", "JSON file of remote customization records")
	catalogRefreshCmd.Flags().BoolVar(&refreshSkipCats, "skip-categories", false, "Ignore category overrides, e.g. after a base catalog update")
	_ = catalogRefreshCmd.MarkFlagRequired("file")
}

func runCatalogLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	merged, err := loadMergedCatalog(app)
	if err != nil {
		return err
	}

	filtered := merged[:0:0]
	for _, item := range merged {
		if item.Deleted && !catalogWithDeleted {
			continue
		}
		if catalogFavoritesOnly && !item.Favorite {
			continue
		}
		if catalogCategory != "" && !strings.EqualFold(item.Category, catalogCategory) {
			continue
		}
		filtered = append(filtered, item)
	}

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, filtered)
	}

	rows := make([][]string, 0, len(filtered))
	for _, item := range filtered {
		fav := ""
		if item.Favorite {
			fav = "*"
		}
		rows = append(rows, []string{
			item.ID, fav, item.Manufacturer, item.Model, item.Category,
			render.Money(item.UnitCost), render.Hours(item.LaborHrsPerUnit),
		})
	}
	return renderer.RenderTable([]string{"ID", "FAV", "MANUFACTURER", "MODEL", "CATEGORY", "COST", "LABOR"}, rows)
}

func runCatalogCustomize(app *appctx.App, cmd *cobra.Command, args []string) error {
	if app.Team == "" {
		return fmt.Errorf("catalog customizations are team-scoped: set ESTQ_TEAM or use --team")
	}

	existing, err := app.Store.Customizations.ListByTeam(app.Team)
	if err != nil {
		return err
	}
	cust := domain.CatalogCustomization{TeamID: app.Team, CatalogItemID: args[0]}
	for i := range existing {
		if existing[i].CatalogItemID == args[0] {
			cust = existing[i]
			break
		}
	}

	if cmd.Flags().Changed("favorite") {
		cust.Favorite = customizeFavorite
	}
	if cmd.Flags().Changed("note") {
		cust.CatalogNote = customizeNote
	}
	if cmd.Flags().Changed("delete") {
		cust.Deleted = customizeDelete
	}
	if len(customizeSets) > 0 {
		patch := cust.CustomFields
		if patch == nil {
			patch = &domain.FieldPatch{}
		}
		for _, kv := range customizeSets {
			if err := applyFieldOverride(patch, kv); err != nil {
				return err
			}
		}
		cust.CustomFields = patch
	}

	if err := app.Store.Customizations.Upsert(app.Actor, &cust); err != nil {
		return err
	}
	fmt.Printf("Customized %s\n", args[0])
	return nil
}

func applyFieldOverride(patch *domain.FieldPatch, kv string) error {
	field, value, ok := strings.Cut(kv, "=")
	if !ok {
		return fmt.Errorf("invalid --set %q: want field=value", kv)
	}
	strPtr := func(s string) *string { return &s }
	switch field {
	case "manufacturer":
		patch.Manufacturer = strPtr(value)
	case "model":
		patch.Model = strPtr(value)
	case "part_number":
		patch.PartNumber = strPtr(value)
	case "description":
		patch.Description = strPtr(value)
	case "category":
		patch.Category = strPtr(value)
	case "subcategory":
		patch.Subcategory = strPtr(value)
	case "unit_cost", "labor_hrs_per_unit":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", field, value, err)
		}
		if field == "unit_cost" {
			patch.UnitCost = &f
		} else {
			patch.LaborHrsPerUnit = &f
		}
	case "uom":
		patch.UOM = strPtr(value)
	case "vendor":
		patch.Vendor = strPtr(value)
	case "discontinued":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid discontinued %q: %w", value, err)
		}
		patch.Discontinued = &b
	case "phase":
		patch.Phase = strPtr(value)
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func runCatalogReset(app *appctx.App, cmd *cobra.Command, args []string) error {
	if app.Team == "" {
		return fmt.Errorf("catalog customizations are team-scoped: set ESTQ_TEAM or use --team")
	}
	if err := app.Store.Customizations.Delete(app.Team, args[0]); err != nil {
		return err
	}
	fmt.Printf("Reset %s\n", args[0])
	return nil
}

func runCatalogRefresh(app *appctx.App, cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(refreshFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", refreshFile, err)
	}
	var remote []domain.CatalogCustomization
	if err := json.Unmarshal(data, &remote); err != nil {
		return fmt.Errorf("failed to parse %s: %w", refreshFile, err)
	}

	base := source.LoadCatalog(app.Config.DataDir, app.Config.BaseCatalogFile, app.Store.Cache)
	local, err := app.Store.Customizations.ListByTeam(app.Team)
	if err != nil {
		return err
	}
	mergedLocal := catalog.ApplyCustomizations(base, local, catalog.ApplyOptions{SkipCategories: refreshSkipCats})

	result := catalog.Refresh(mergedLocal, remote)
	if err := source.CacheCatalog(app.Store.Cache, result.Merged); err != nil {
		return err
	}

	fmt.Printf("Refreshed %d item(s), %d updated\n", len(result.Merged), result.UpdatedCount)
	return nil
}
