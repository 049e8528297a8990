package cli

import (
	"fmt"
	"time"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/id"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/packages"
	"github.com/avforge/estq/internal/render"
	"github.com/avforge/estq/internal/revision"
	"github.com/avforge/estq/internal/source"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage estimating projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runProjectCreate),
}

var projectLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List projects visible to the team or owner",
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runProjectLs),
}

var projectStatusCmd = &cobra.Command{
	Use:   "status PROJECT [STATUS]",
	Short: "Show or change a project's status",
	Long: `Show or change a project's status.

Moving a project into proposal-submitted, active, or completed places it
under revision control: the next edit requires a revision snapshot.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runProjectStatus),
}

var projectCheckoutCmd = &cobra.Command{
	Use:   "checkout PROJECT",
	Short: "Check out a project for exclusive editing",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runProjectCheckout),
}

var projectReleaseCmd = &cobra.Command{
	Use:   "release PROJECT",
	Short: "Release a project check-out",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runProjectRelease),
}

var (
	projectCreateClient string
	projectReleaseForce bool
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectLsCmd)
	projectCmd.AddCommand(projectStatusCmd)
	projectCmd.AddCommand(projectCheckoutCmd)
	projectCmd.AddCommand(projectReleaseCmd)

	projectCreateCmd.Flags().StringVar(&projectCreateClient, "client", "", "Client name")
	projectReleaseCmd.Flags().BoolVar(&projectReleaseForce, "force", false, "Release another actor's check-out")
}

func runProjectCreate(app *appctx.App, cmd *cobra.Command, args []string) error {
	now := time.Now().UTC()
	project := &domain.Project{
		ID:        id.New(),
		Name:      args[0],
		Owner:     app.Actor,
		Team:      app.Team,
		Status:    domain.StatusDraft,
		Client:    projectCreateClient,
		CreatedAt: now,
		UpdatedAt: now,
		Locations: []*domain.LocationNode{locations.NewNode("Main")},

		// New projects are born at the current migration level; only
		// imported legacy data goes through the package migration.
		PackageMigrationVersion: 1,
	}

	if err := app.Store.Projects.Save(app.Actor, project); err != nil {
		return err
	}

	fmt.Printf("Created %s (%s)\n", project.Name, project.FriendlyID)
	return nil
}

func runProjectLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	summaries, err := app.Store.Projects.List(app.Team, app.Actor)
	if err != nil {
		return err
	}

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, summaries)
	}

	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{s.FriendlyID, s.Name, s.Status, s.CheckedOut, s.UpdatedAt})
	}
	return renderer.RenderTable([]string{"ID", "NAME", "STATUS", "CHECKED OUT", "UPDATED"}, rows)
}

func runProjectStatus(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}

	if len(args) == 1 {
		fmt.Printf("%s\t%s\t%s\n", project.FriendlyID, project.Name, project.Status)
		if revision.RequiresRevision(project) {
			fmt.Println("Revision required before next edit")
		}
		return nil
	}

	if err := domain.ValidateStatus(args[1]); err != nil {
		return err
	}
	if err := revision.Gate(project, gate(app)); err != nil && !isRevisionLock(err) {
		return err
	}

	project.Status = domain.ProjectStatus(args[1])
	if err := app.Store.Projects.Save(app.Actor, project); err != nil {
		return err
	}

	fmt.Printf("%s is now %s\n", project.FriendlyID, project.Status)
	if revision.RequiresRevision(project) {
		fmt.Println("Project is under revision control: run 'estq rev snapshot' before editing")
	}
	return nil
}

// isRevisionLock reports whether the error is the revision gate itself.
// A status change is what opens the gate, so it is allowed through.
func isRevisionLock(err error) bool {
	roErr, ok := err.(*domain.ReadOnlyError)
	return ok && roErr.Reason == domain.ReadOnlyRevisionLocked
}

func runProjectCheckout(app *appctx.App, cmd *cobra.Command, args []string) error {
	if app.Actor == "" {
		return fmt.Errorf("no actor configured: set ESTQ_ACTOR or use --as")
	}
	if err := app.Store.Projects.Checkout(app.Actor, args[0]); err != nil {
		return err
	}
	fmt.Printf("Checked out by %s\n", app.Actor)
	return nil
}

func runProjectRelease(app *appctx.App, cmd *cobra.Command, args []string) error {
	if err := app.Store.Projects.Release(app.Actor, args[0], projectReleaseForce); err != nil {
		return err
	}
	fmt.Println("Released")
	return nil
}

// migrateCmd runs the one-shot package migrations against a project.
var migrateCmd = &cobra.Command{
	Use:   "migrate PROJECT",
	Short: "Convert legacy package groupings to package instances",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runMigrate),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	if err := revision.Gate(project, gate(app)); err != nil {
		return err
	}

	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	catalogDefs = packages.MigrateDefinitions(catalogDefs, now)

	result := packages.MigrateProject(project, catalogDefs, now)
	if result.Converted == 0 && len(result.NewDefinitions) == 0 {
		// Marker may still have been set; persist it so the migration
		// never re-runs.
		if result.Project != project {
			if err := saveProject(app, result.Project); err != nil {
				return err
			}
		}
		fmt.Println("Nothing to migrate")
		return nil
	}

	if len(result.NewDefinitions) > 0 {
		scope := settingsScope(app)
		settings, err := app.Store.Settings.Get(scope)
		if err != nil {
			return err
		}
		for _, def := range result.NewDefinitions {
			settings.Packages = packages.UpsertDefinition(settings.Packages, def)
		}
		if err := app.Store.Settings.Save(app.Actor, scope, settings); err != nil {
			return err
		}
		_ = source.CachePackages(app.Store.Cache, settings.Packages)
	}

	if err := saveProject(app, result.Project); err != nil {
		return err
	}

	fmt.Printf("Converted %d grouping(s), created %d definition(s)\n",
		result.Converted, len(result.NewDefinitions))
	return nil
}
