package cli

import (
	"fmt"
	"os"

	"github.com/avforge/estq/internal/catalog"
	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/packages"
	"github.com/avforge/estq/internal/render"
	"github.com/avforge/estq/internal/revision"
	"github.com/avforge/estq/internal/source"
)

// newRenderer builds a stdout renderer from the configured output format.
func newRenderer(app *appctx.App) (*render.Renderer, render.Format) {
	format := render.Format(app.Config.Output)
	switch format {
	case render.FormatJSON, render.FormatYAML, render.FormatCSV:
	default:
		format = render.FormatTable
	}
	return render.NewRenderer(os.Stdout, render.Options{Format: format}), format
}

// renderStructured writes data in the non-table format selected.
func renderStructured(renderer *render.Renderer, format render.Format, data interface{}) error {
	if format == render.FormatYAML {
		return renderer.RenderYAML(data)
	}
	return renderer.RenderJSON(data)
}

// loadCatalogDefs assembles the catalog-scope package definitions
// visible to the current team: shared settings first, then the base
// dataset for ids the settings do not carry.
func loadCatalogDefs(app *appctx.App) ([]*domain.PackageDefinition, error) {
	settings, err := app.Store.Settings.Get(settingsScope(app))
	if err != nil {
		return nil, err
	}
	defs := settings.Packages

	base := source.LoadPackages(app.Config.DataDir, app.Config.BasePackagesFile, app.Store.Cache)
	for _, def := range base {
		if packages.FindByName(def.Name, defs) == nil && findDef(defs, def.ID) == nil {
			defs = append(defs, def)
		}
	}
	return defs, nil
}

// loadMergedCatalog returns the base catalog with the current team's
// customizations overlaid.
func loadMergedCatalog(app *appctx.App) ([]domain.CatalogItem, error) {
	base := source.LoadCatalog(app.Config.DataDir, app.Config.BaseCatalogFile, app.Store.Cache)
	customizations, err := app.Store.Customizations.ListByTeam(app.Team)
	if err != nil {
		return nil, err
	}
	return catalog.ApplyCustomizations(base, customizations, catalog.ApplyOptions{}), nil
}

func findDef(defs []*domain.PackageDefinition, defID string) *domain.PackageDefinition {
	for _, def := range defs {
		if def != nil && def.ID == defID {
			return def
		}
	}
	return nil
}

// settingsScope returns the settings key: team when set, else actor.
func settingsScope(app *appctx.App) string {
	if app.Team != "" {
		return app.Team
	}
	return app.Actor
}

// loadProject loads a project by uuid or friendly id.
func loadProject(app *appctx.App, ref string) (*domain.Project, error) {
	return app.Store.Projects.Get(ref)
}

// gate returns the caller's gate context for write checks.
func gate(app *appctx.App) revision.GateContext {
	return revision.GateContext{Actor: app.Actor}
}

// saveProject persists a mutated project, queueing through the sync
// engine when one is running so rapid successive edits coalesce. The
// queued commit gets its own deep copy: the store writes back into the
// saved document on the engine goroutine while the command may still be
// rendering the original.
func saveProject(app *appctx.App, project *domain.Project) error {
	if app.Sync != nil {
		queued := domain.CloneProject(project)
		app.Sync.Queue(func() error {
			return app.Store.Projects.Save(app.Actor, queued)
		})
		return nil
	}
	return app.Store.Projects.Save(app.Actor, project)
}

// mutateProject runs a gated mutation against a loaded project and
// saves the result. The revision gate is honored: when a revision is
// required the mutation is refused unless --snapshot was given,
// mirroring the revision prompt flow.
func mutateProject(app *appctx.App, project *domain.Project, autoSnapshot bool, fn func(*domain.Project) *domain.Project) (*domain.Project, error) {
	mutated, err := revision.Mutate(project, gate(app), autoSnapshot, fn)
	if err != nil {
		return nil, err
	}
	if err := saveProject(app, mutated); err != nil {
		return nil, err
	}
	return mutated, nil
}

// resolveNodeRef resolves a location reference: a node id, or a
// slash-separated path of location names.
func resolveNodeRef(project *domain.Project, ref string) (string, error) {
	if locations.FindNode(project.Locations, ref) != nil {
		return ref, nil
	}
	if nodeID, ok := locations.ResolvePath(project.Locations, ref); ok {
		return nodeID, nil
	}
	return "", fmt.Errorf("location %q not found", ref)
}
