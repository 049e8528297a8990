package cli

import (
	"fmt"
	"time"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/packages"
	"github.com/avforge/estq/internal/render"
	"github.com/avforge/estq/internal/source"
	"github.com/spf13/cobra"
)

var pkgCmd = &cobra.Command{
	Use:   "pkg",
	Short: "Manage package definitions and instances",
}

var pkgLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List package definitions",
	Args:  cobra.NoArgs,
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runPkgLs),
}

var pkgSaveCmd = &cobra.Command{
	Use:   "save PROJECT LOCATION NAME",
	Short: "Save a location's items as a package",
	Long: `Save a location's component items as a package definition and
replace them with a single package instance.

Item quantities become per-package quantities. The definition starts at
version 1 in the chosen scope; project scope is visible only inside the
project, catalog scope is shared through team settings.`,
	Args: cobra.ExactArgs(3),
	RunE: appctx.WithApp(appctx.WithSync(), runPkgSave),
}

var pkgPlaceCmd = &cobra.Command{
	Use:   "place PROJECT LOCATION PACKAGE",
	Short: "Place a package instance in a location",
	Args:  cobra.ExactArgs(3),
	RunE:  appctx.WithApp(appctx.WithSync(), runPkgPlace),
}

var pkgResolveCmd = &cobra.Command{
	Use:   "resolve PROJECT ITEM",
	Short: "Show a placed instance's expanded line items",
	Args:  cobra.ExactArgs(2),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runPkgResolve),
}

var pkgStaleCmd = &cobra.Command{
	Use:   "stale PROJECT",
	Short: "List placed instances that lag their definition",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runPkgStale),
}

var pkgBumpCmd = &cobra.Command{
	Use:   "bump PACKAGE",
	Short: "Increment a package definition's version",
	Long: `Increment a package definition's version.

Placed instances keep the version they were placed at and show up in
'estq pkg stale' until re-placed.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithSync(), runPkgBump),
}

var pkgRmCmd = &cobra.Command{
	Use:   "rm PACKAGE",
	Short: "Delete a package definition",
	Long: `Delete a package definition.

Placed instances are left alone; they resolve as missing with zero
totals until the definition is recreated or the instances removed.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.WithSync(), runPkgRm),
}

var (
	pkgProject  string
	pkgScope    string
	pkgQty      float64
	pkgSnapshot bool
)

func init() {
	rootCmd.AddCommand(pkgCmd)
	pkgCmd.AddCommand(pkgLsCmd)
	pkgCmd.AddCommand(pkgSaveCmd)
	pkgCmd.AddCommand(pkgPlaceCmd)
	pkgCmd.AddCommand(pkgResolveCmd)
	pkgCmd.AddCommand(pkgStaleCmd)
	pkgCmd.AddCommand(pkgBumpCmd)
	pkgCmd.AddCommand(pkgRmCmd)

	pkgLsCmd.Flags().StringVar(&pkgProject, "project", "", "List the project's own definitions instead of the catalog")
	pkgSaveCmd.Flags().StringVar(&pkgScope, "scope", "project", "Definition scope: project or catalog")
	pkgPlaceCmd.Flags().Float64Var(&pkgQty, "qty", 1, "Instance quantity")
	pkgBumpCmd.Flags().StringVar(&pkgProject, "project", "", "Bump a project-scope definition")
	pkgRmCmd.Flags().StringVar(&pkgProject, "project", "", "Delete a project-scope definition")
	pkgCmd.PersistentFlags().BoolVar(&pkgSnapshot, "snapshot", false, "Create a revision first when one is required")
}

func runPkgLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	var defs []*domain.PackageDefinition
	if pkgProject != "" {
		project, err := loadProject(app, pkgProject)
		if err != nil {
			return err
		}
		defs = project.Packages
	} else {
		var err error
		defs, err = loadCatalogDefs(app)
		if err != nil {
			return err
		}
	}

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, defs)
	}

	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		rows = append(rows, []string{
			def.ID, def.Name, string(def.Scope),
			fmt.Sprintf("v%d", def.Version),
			fmt.Sprintf("%d", len(def.Items)),
		})
	}
	return renderer.RenderTable([]string{"ID", "NAME", "SCOPE", "VERSION", "ITEMS"}, rows)
}

func runPkgSave(app *appctx.App, cmd *cobra.Command, args []string) error {
	scope := domain.PackageScope(pkgScope)
	if err := domain.ValidateScope(string(scope)); err != nil {
		return err
	}

	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[1])
	if err != nil {
		return err
	}

	node := locations.FindNode(project.Locations, nodeID)
	var group []domain.Item
	for i := range node.Items {
		if !node.Items[i].IsPackage() {
			group = append(group, node.Items[i])
		}
	}

	def, err := packages.NewDefinition(args[2], scope, group, time.Now().UTC())
	if err != nil {
		return err
	}
	instance := packages.NewInstance(def, 1)

	_, err = mutateProject(app, project, pkgSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		nodes := p.Locations
		for _, it := range group {
			nodes, _ = locations.RemoveItem(nodes, it.ID)
		}
		nodes, _ = locations.AddItem(nodes, nodeID, instance)
		next.Locations = nodes
		if scope == domain.ScopeProject {
			next.Packages = packages.UpsertDefinition(p.Packages, def)
		}
		return &next
	})
	if err != nil {
		return err
	}

	if scope == domain.ScopeCatalog {
		if err := saveCatalogDef(app, def); err != nil {
			return err
		}
	}

	fmt.Printf("Saved %s (v%d, %d items) and placed an instance\n", def.Name, def.Version, len(def.Items))
	return nil
}

func runPkgPlace(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	nodeID, err := resolveNodeRef(project, args[1])
	if err != nil {
		return err
	}

	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}
	def := resolvePkgRef(args[2], project.Packages, catalogDefs)
	if def == nil {
		return fmt.Errorf("package %q not found", args[2])
	}

	instance := packages.NewInstance(def, pkgQty)
	_, err = mutateProject(app, project, pkgSnapshot, func(p *domain.Project) *domain.Project {
		next := *p
		next.Locations, _ = locations.AddItem(p.Locations, nodeID, instance)
		return &next
	})
	if err != nil {
		return err
	}

	fmt.Printf("Placed %s x %s (v%d)\n", render.Qty(instance.Qty), def.Name, instance.PackageVersion)
	return nil
}

func runPkgResolve(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	node, item := locations.FindItem(project.Locations, args[1])
	if item == nil {
		return fmt.Errorf("item %q not found", args[1])
	}
	if !item.IsPackage() {
		return fmt.Errorf("item %q is not a package instance", args[1])
	}

	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}
	resolved := packages.Resolve(item, catalogDefs, project.Packages)

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, resolved)
	}

	if resolved.IsMissing {
		fmt.Printf("%s in %s: definition missing, contributes nothing\n", args[1], node.Name)
		return nil
	}

	def := resolved.Definition
	state := ""
	if resolved.IsOutOfDate {
		state = " [out of date]"
	}
	fmt.Printf("%s x %s (v%d)%s in %s\n", render.Qty(item.Qty), def.Name, item.PackageVersion, state, node.Name)

	rows := make([][]string, 0, len(resolved.ExpandedItems))
	for _, it := range resolved.ExpandedItems {
		rows = append(rows, []string{
			render.Qty(it.Qty), it.Manufacturer, it.Model,
			render.Money(it.UnitCost), render.Hours(it.LaborHrsPerUnit),
		})
	}
	if err := renderer.RenderTable([]string{"QTY", "MANUFACTURER", "MODEL", "UNIT COST", "LABOR/UNIT"}, rows); err != nil {
		return err
	}
	fmt.Printf("Total %s, %s\n", render.Money(resolved.TotalCost), render.Hours(resolved.TotalLabor))
	return nil
}

func runPkgStale(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}

	stale := packages.FindStale(project.Locations, catalogDefs, project.Packages)

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, stale)
	}
	if len(stale) == 0 {
		fmt.Println("All package instances are up to date")
		return nil
	}

	rows := make([][]string, 0, len(stale))
	for _, s := range stale {
		state := fmt.Sprintf("v%d -> v%d", s.PlacedAt, s.Current)
		if s.Missing {
			state = "missing"
		}
		rows = append(rows, []string{s.LocationName, s.PackageName, state, s.ItemID})
	}
	return renderer.RenderTable([]string{"LOCATION", "PACKAGE", "STATE", "ITEM"}, rows)
}

func runPkgBump(app *appctx.App, cmd *cobra.Command, args []string) error {
	now := time.Now().UTC()

	if pkgProject != "" {
		project, err := loadProject(app, pkgProject)
		if err != nil {
			return err
		}
		def := resolvePkgRef(args[0], project.Packages, nil)
		if def == nil {
			return fmt.Errorf("package %q not found in project", args[0])
		}
		bumped := packages.BumpVersion(def, now)
		_, err = mutateProject(app, project, pkgSnapshot, func(p *domain.Project) *domain.Project {
			next := *p
			next.Packages = packages.UpsertDefinition(p.Packages, bumped)
			return &next
		})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now v%d\n", bumped.Name, bumped.Version)
		return nil
	}

	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}
	def := resolvePkgRef(args[0], nil, catalogDefs)
	if def == nil {
		return fmt.Errorf("package %q not found", args[0])
	}
	bumped := packages.BumpVersion(def, now)
	if err := saveCatalogDef(app, bumped); err != nil {
		return err
	}
	fmt.Printf("%s is now v%d\n", bumped.Name, bumped.Version)
	return nil
}

func runPkgRm(app *appctx.App, cmd *cobra.Command, args []string) error {
	if pkgProject != "" {
		project, err := loadProject(app, pkgProject)
		if err != nil {
			return err
		}
		def := resolvePkgRef(args[0], project.Packages, nil)
		if def == nil {
			return fmt.Errorf("package %q not found in project", args[0])
		}
		_, err = mutateProject(app, project, pkgSnapshot, func(p *domain.Project) *domain.Project {
			next := *p
			next.Packages, _ = packages.DeleteDefinition(p.Packages, def.ID)
			return &next
		})
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", def.Name)
		return nil
	}

	scope := settingsScope(app)
	settings, err := app.Store.Settings.Get(scope)
	if err != nil {
		return err
	}
	def := resolvePkgRef(args[0], nil, settings.Packages)
	if def == nil {
		return fmt.Errorf("package %q not found in catalog settings", args[0])
	}
	settings.Packages, _ = packages.DeleteDefinition(settings.Packages, def.ID)
	if err := app.Store.Settings.Save(app.Actor, scope, settings); err != nil {
		return err
	}
	_ = source.CachePackages(app.Store.Cache, settings.Packages)
	fmt.Printf("Deleted %s\n", def.Name)
	return nil
}

// resolvePkgRef looks a definition up by id, then by name, project
// scope first.
func resolvePkgRef(ref string, projectDefs, catalogDefs []*domain.PackageDefinition) *domain.PackageDefinition {
	if def := findDef(projectDefs, ref); def != nil {
		return def
	}
	if def := findDef(catalogDefs, ref); def != nil {
		return def
	}
	if def := packages.FindByName(ref, projectDefs); def != nil {
		return def
	}
	return packages.FindByName(ref, catalogDefs)
}

// saveCatalogDef upserts a catalog-scope definition into shared
// settings and refreshes the local cache.
func saveCatalogDef(app *appctx.App, def *domain.PackageDefinition) error {
	scope := settingsScope(app)
	settings, err := app.Store.Settings.Get(scope)
	if err != nil {
		return err
	}
	settings.Packages = packages.UpsertDefinition(settings.Packages, def)
	if err := app.Store.Settings.Save(app.Actor, scope, settings); err != nil {
		return err
	}
	return source.CachePackages(app.Store.Cache, settings.Packages)
}
