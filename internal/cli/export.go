package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/export"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/render"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export PROJECT [LOCATION]",
	Short: "Export the consolidated line-item list",
	Long: `Export the consolidated line-item list for a project or a single
location subtree.

Lines are grouped by part number (or manufacturer|model when the part
number is empty) with quantities summed across locations, in the order
each part is first seen. Package instances are expanded; missing
packages contribute nothing.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runExport),
}

var exportOut string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Write to a file instead of stdout")
}

func runExport(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}

	nodes := project.Locations
	if len(args) == 2 {
		nodeID, err := resolveNodeRef(project, args[1])
		if err != nil {
			return err
		}
		nodes = []*domain.LocationNode{locations.FindNode(project.Locations, nodeID)}
	}

	rows := export.Consolidate(nodes, catalogDefs, project.Packages)

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	format := render.Format(app.Config.Output)
	switch format {
	case render.FormatJSON:
		return render.NewRenderer(w, render.Options{Format: format}).RenderJSON(rows)
	case render.FormatYAML:
		return render.NewRenderer(w, render.Options{Format: format}).RenderYAML(rows)
	default:
		return export.WriteCSV(w, rows)
	}
}
