package cli

import (
	"fmt"
	"time"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/render"
	"github.com/avforge/estq/internal/revision"
	"github.com/spf13/cobra"
)

var revCmd = &cobra.Command{
	Use:   "rev",
	Short: "Manage revision snapshots",
}

var revSnapshotCmd = &cobra.Command{
	Use:   "snapshot PROJECT",
	Short: "Capture the project state as a new revision",
	Long: `Capture the project's locations and project-scope packages as a new
immutable revision. The new revision becomes the current open revision,
unlocking edits on a submitted project.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runRevSnapshot),
}

var revLsCmd = &cobra.Command{
	Use:   "ls PROJECT",
	Short: "List a project's revisions",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runRevLs),
}

var revShowCmd = &cobra.Command{
	Use:   "show PROJECT REVISION",
	Short: "Show a revision's snapshot totals",
	Args:  cobra.ExactArgs(2),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runRevShow),
}

var revRestoreCmd = &cobra.Command{
	Use:   "restore PROJECT REVISION",
	Short: "Restore the project to a revision's snapshot",
	Long: `Restore the project's locations and packages to a revision's
snapshot. The state just before the restore is captured as a
"Pre-restore snapshot" revision first, so a restore can itself be
undone. The restored project starts unlocked.`,
	Args: cobra.ExactArgs(2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runRevRestore),
}

var revCloseCmd = &cobra.Command{
	Use:   "close PROJECT",
	Short: "Close the current open revision",
	Long: `Close the current open revision. The next edit on a submitted
project will require a fresh snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runRevClose),
}

var (
	revLabel string
	revNotes string
)

func init() {
	rootCmd.AddCommand(revCmd)
	revCmd.AddCommand(revSnapshotCmd)
	revCmd.AddCommand(revLsCmd)
	revCmd.AddCommand(revShowCmd)
	revCmd.AddCommand(revRestoreCmd)
	revCmd.AddCommand(revCloseCmd)

	revSnapshotCmd.Flags().StringVar(&revLabel, "label", "", "Revision label (default \"Revision N\")")
	revSnapshotCmd.Flags().StringVar(&revNotes, "notes", "", "Revision notes")
}

func runRevSnapshot(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	// Snapshotting is how a revision lock gets satisfied, so only the
	// check-out gate applies here.
	if err := revision.Gate(project, gate(app)); err != nil && !isRevisionLock(err) {
		return err
	}

	next, rev := revision.Create(project, revLabel, revNotes, app.Actor, time.Now().UTC())
	if err := app.Store.Projects.Save(app.Actor, next); err != nil {
		return err
	}

	fmt.Printf("Created %s (%s)\n", rev.Label, rev.ID)
	return nil
}

func runRevLs(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, project.Revisions)
	}

	rows := make([][]string, 0, len(project.Revisions))
	for _, rev := range project.Revisions {
		if rev == nil {
			continue
		}
		current := ""
		if rev.ID == project.CurrentRevision {
			current = "open"
		}
		rows = append(rows, []string{
			rev.ID, rev.Label, rev.CreatedBy,
			rev.CreatedAt.Format(time.RFC3339), current,
		})
	}
	return renderer.RenderTable([]string{"ID", "LABEL", "BY", "CREATED", "STATE"}, rows)
}

func runRevShow(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	rev := revision.Find(project, args[1])
	if rev == nil {
		return fmt.Errorf("revision %q not found", args[1])
	}

	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}
	totals := locations.CalculateForestTotals(rev.Snapshot.Locations, catalogDefs, rev.Snapshot.Packages)

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, struct {
			Revision interface{}      `json:"revision"`
			Totals   locations.Totals `json:"totals"`
		}{rev, totals})
	}

	fmt.Printf("%s  %s\n", rev.Label, rev.CreatedAt.Format(time.RFC3339))
	if rev.Notes != "" {
		fmt.Println(rev.Notes)
	}
	fmt.Printf("%s  %s  %d items (read-only)\n",
		render.Money(totals.Cost), render.Hours(totals.Labor), totals.ItemCount)
	return nil
}

func runRevRestore(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	// Restore opens with its own pre-restore snapshot, which satisfies a
	// pending revision lock.
	if err := revision.Gate(project, gate(app)); err != nil && !isRevisionLock(err) {
		return err
	}

	restored, err := revision.Restore(project, args[1], app.Actor, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := app.Store.Projects.Save(app.Actor, restored); err != nil {
		return err
	}

	fmt.Printf("Restored to %s\n", args[1])
	return nil
}

func runRevClose(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	if project.CurrentRevision == "" {
		fmt.Println("No open revision")
		return nil
	}

	next := revision.Close(project)
	if err := app.Store.Projects.Save(app.Actor, next); err != nil {
		return err
	}

	fmt.Println("Closed")
	return nil
}
