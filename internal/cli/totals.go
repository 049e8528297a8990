package cli

import (
	"fmt"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/render"
	"github.com/spf13/cobra"
)

var totalsCmd = &cobra.Command{
	Use:   "totals PROJECT [LOCATION]",
	Short: "Show rolled-up cost, labor, and item counts",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runTotals),
}

func init() {
	rootCmd.AddCommand(totalsCmd)
}

func runTotals(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}

	var totals locations.Totals
	scope := project.Name
	if len(args) == 2 {
		nodeID, err := resolveNodeRef(project, args[1])
		if err != nil {
			return err
		}
		node := locations.FindNode(project.Locations, nodeID)
		totals = locations.CalculateTotals(node, catalogDefs, project.Packages)
		scope = node.Name
	} else {
		totals = locations.CalculateForestTotals(project.Locations, catalogDefs, project.Packages)
	}

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		return renderStructured(renderer, format, totals)
	}

	fmt.Printf("%s: %s  %s  %d items\n", scope,
		render.Money(totals.Cost), render.Hours(totals.Labor), totals.ItemCount)
	return nil
}
