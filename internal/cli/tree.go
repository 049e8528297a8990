package cli

import (
	"fmt"

	"github.com/avforge/estq/internal/cli/appctx"
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/locations"
	"github.com/avforge/estq/internal/packages"
	"github.com/avforge/estq/internal/render"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree PROJECT",
	Short: "Show the location tree with rolled-up totals",
	Args:  cobra.ExactArgs(1),
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runTree),
}

var treeShowItems bool

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().BoolVar(&treeShowItems, "items", false, "Show line items under each location")
}

// treeNode is the structured-output shape of one location.
type treeNode struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Totals   locations.Totals `json:"totals"`
	Children []treeNode       `json:"children,omitempty"`
}

func runTree(app *appctx.App, cmd *cobra.Command, args []string) error {
	project, err := loadProject(app, args[0])
	if err != nil {
		return err
	}
	catalogDefs, err := loadCatalogDefs(app)
	if err != nil {
		return err
	}

	renderer, format := newRenderer(app)
	if format != render.FormatTable {
		nodes := make([]treeNode, 0, len(project.Locations))
		for _, n := range project.Locations {
			nodes = append(nodes, buildTreeNode(n, catalogDefs, project.Packages))
		}
		return renderStructured(renderer, format, nodes)
	}

	total := locations.CalculateForestTotals(project.Locations, catalogDefs, project.Packages)
	fmt.Printf("%s  %s  %s  %s  %d items\n", project.FriendlyID, project.Name,
		render.Money(total.Cost), render.Hours(total.Labor), total.ItemCount)
	printTree(project.Locations, "", catalogDefs, project.Packages)
	return nil
}

func buildTreeNode(n *domain.LocationNode, catalogDefs, projectDefs []*domain.PackageDefinition) treeNode {
	out := treeNode{
		ID:     n.ID,
		Name:   n.Name,
		Totals: locations.CalculateTotals(n, catalogDefs, projectDefs),
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, buildTreeNode(child, catalogDefs, projectDefs))
	}
	return out
}

func printTree(nodes []*domain.LocationNode, prefix string, catalogDefs, projectDefs []*domain.PackageDefinition) {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(nodes)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}

		totals := locations.CalculateTotals(n, catalogDefs, projectDefs)
		fmt.Printf("%s%s%s  %s  %s  %d items\n", prefix, connector, n.Name,
			render.Money(totals.Cost), render.Hours(totals.Labor), totals.ItemCount)

		if treeShowItems {
			printItems(n, childPrefix, catalogDefs, projectDefs)
		}
		printTree(n.Children, childPrefix, catalogDefs, projectDefs)
	}
}

func printItems(n *domain.LocationNode, prefix string, catalogDefs, projectDefs []*domain.PackageDefinition) {
	for i := range n.Items {
		item := &n.Items[i]
		if item.IsPackage() {
			resolved := packages.Resolve(item, catalogDefs, projectDefs)
			marker := ""
			switch {
			case resolved.IsMissing:
				marker = "  [missing]"
			case resolved.IsOutOfDate:
				marker = "  [out of date]"
			}
			fmt.Printf("%s%s x %s (package)%s\n", prefix, render.Qty(item.Qty), item.PackageName, marker)
			continue
		}
		fmt.Printf("%s%s x %s %s  %s\n", prefix, render.Qty(item.Qty),
			item.Manufacturer, item.Model, render.Money(item.Qty*item.UnitCost))
		for j := range item.Accessories {
			acc := &item.Accessories[j]
			fmt.Printf("%s  + %s/unit %s %s\n", prefix, render.Qty(acc.EffectiveQty()),
				acc.Manufacturer, acc.Model)
		}
	}
}
