package locations

import (
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/packages"
)

// Totals is the cost/labor/count rollup for a subtree.
type Totals struct {
	Cost      float64 `json:"cost"`
	Labor     float64 `json:"labor"`
	ItemCount int     `json:"item_count"`
}

// Add accumulates another rollup into this one.
func (t *Totals) Add(other Totals) {
	t.Cost += other.Cost
	t.Labor += other.Labor
	t.ItemCount += other.ItemCount
}

// CalculateTotals walks a node recursively, summing item costs, labor
// hours, and item counts. Package instances are resolved against the
// definition sets; a missing definition contributes zero. Pure: safe to
// call repeatedly on the same tree.
func CalculateTotals(node *domain.LocationNode, catalogDefs, projectDefs []*domain.PackageDefinition) Totals {
	var totals Totals
	if node == nil {
		return totals
	}

	for i := range node.Items {
		item := &node.Items[i]
		if item.IsPackage() {
			resolved := packages.Resolve(item, catalogDefs, projectDefs)
			if resolved != nil && !resolved.IsMissing {
				totals.Cost += resolved.TotalCost
				totals.Labor += resolved.TotalLabor
				totals.ItemCount += len(resolved.ExpandedItems)
			}
			continue
		}

		qty := item.Qty
		totals.Cost += qty * item.UnitCost
		totals.Labor += qty * item.LaborHrsPerUnit
		totals.ItemCount++

		for j := range item.Accessories {
			acc := &item.Accessories[j]
			accQty := acc.EffectiveQty() * qty
			totals.Cost += accQty * acc.UnitCost
			totals.Labor += accQty * acc.LaborHrsPerUnit
			totals.ItemCount++
		}
	}

	for _, child := range node.Children {
		totals.Add(CalculateTotals(child, catalogDefs, projectDefs))
	}

	return totals
}

// CalculateForestTotals sums totals across a slice of root nodes.
func CalculateForestTotals(nodes []*domain.LocationNode, catalogDefs, projectDefs []*domain.PackageDefinition) Totals {
	var totals Totals
	for _, n := range nodes {
		totals.Add(CalculateTotals(n, catalogDefs, projectDefs))
	}
	return totals
}
