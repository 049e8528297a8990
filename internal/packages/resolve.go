// Package packages implements resolution of package instance references
// against versioned package definitions, plus the one-shot migrations
// that normalize legacy data into that model.
//
// Resolution is pure: the same instance and definition sets always
// produce the same expansion, and nothing is mutated.
package packages

import (
	"github.com/avforge/estq/internal/domain"
)

// Resolved is the expansion of a package instance against a definition.
type Resolved struct {
	// Definition is the matched definition, nil when missing.
	Definition *domain.PackageDefinition `json:"definition,omitempty"`

	// IsOutOfDate is true when the definition's version is newer than
	// the version the instance was placed at. Resolution flags
	// staleness but never upgrades the instance.
	IsOutOfDate bool `json:"is_out_of_date"`

	// IsMissing is true when no definition matches the instance. A
	// missing package is a recoverable zero-valued state, not an error.
	IsMissing bool `json:"is_missing"`

	// ExpandedItems are the definition's items with quantities scaled
	// by the instance quantity.
	ExpandedItems []domain.Item `json:"expanded_items"`

	TotalCost  float64 `json:"total_cost"`
	TotalLabor float64 `json:"total_labor"`
}

// Resolve expands a package instance into concrete line items.
//
// Project-scope definitions are searched before catalog-scope ones, so
// a project-local definition shadows a catalog definition with the same
// id. Returns nil when the item is not a package instance.
func Resolve(instance *domain.Item, catalogDefs, projectDefs []*domain.PackageDefinition) *Resolved {
	if instance == nil || !instance.IsPackage() {
		return nil
	}

	def := findDefinition(instance.PackageID, projectDefs)
	if def == nil {
		def = findDefinition(instance.PackageID, catalogDefs)
	}
	if def == nil {
		return &Resolved{
			IsMissing:     true,
			ExpandedItems: []domain.Item{},
		}
	}

	multiplier := instance.Qty
	if multiplier == 0 {
		multiplier = 1
	}

	resolved := &Resolved{
		Definition:    def,
		IsOutOfDate:   defVersion(def.Version) > defVersion(instance.PackageVersion),
		ExpandedItems: make([]domain.Item, 0, len(def.Items)),
	}

	for _, pkgItem := range def.Items {
		qtyPer := pkgItem.QtyPerPackage
		if qtyPer == 0 {
			qtyPer = pkgItem.Qty
		}
		if qtyPer == 0 {
			qtyPer = 1
		}

		expanded := domain.CloneItem(pkgItem.Item)
		expanded.Qty = qtyPer * multiplier
		resolved.ExpandedItems = append(resolved.ExpandedItems, expanded)

		resolved.TotalCost += expanded.Qty * expanded.UnitCost
		resolved.TotalLabor += expanded.Qty * expanded.LaborHrsPerUnit

		for _, acc := range expanded.Accessories {
			accQty := acc.EffectiveQty() * multiplier
			resolved.TotalCost += accQty * acc.UnitCost
			resolved.TotalLabor += accQty * acc.LaborHrsPerUnit
		}
	}

	return resolved
}

func findDefinition(pkgID string, defs []*domain.PackageDefinition) *domain.PackageDefinition {
	for _, def := range defs {
		if def != nil && def.ID == pkgID {
			return def
		}
	}
	return nil
}

// defVersion treats a missing version as 1 on both sides of the
// staleness comparison.
func defVersion(v int) int {
	if v == 0 {
		return 1
	}
	return v
}

// FindByName looks up a definition by exact name match.
func FindByName(name string, defs []*domain.PackageDefinition) *domain.PackageDefinition {
	for _, def := range defs {
		if def != nil && def.Name == name {
			return def
		}
	}
	return nil
}

// StaleInstance describes a placed package instance whose definition
// has moved past the version it was placed at.
type StaleInstance struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	ItemID       string `json:"item_id"`
	PackageID    string `json:"package_id"`
	PackageName  string `json:"package_name"`
	PlacedAt     int    `json:"placed_at"`
	Current      int    `json:"current"`
	Missing      bool   `json:"missing,omitempty"`
}

// FindStale walks the location tree and reports every package instance
// that is out of date or whose definition is missing.
func FindStale(nodes []*domain.LocationNode, catalogDefs, projectDefs []*domain.PackageDefinition) []StaleInstance {
	var stale []StaleInstance
	var walk func(n *domain.LocationNode)
	walk = func(n *domain.LocationNode) {
		if n == nil {
			return
		}
		for i := range n.Items {
			item := &n.Items[i]
			if !item.IsPackage() {
				continue
			}
			resolved := Resolve(item, catalogDefs, projectDefs)
			if resolved == nil {
				continue
			}
			if resolved.IsMissing {
				stale = append(stale, StaleInstance{
					LocationID:   n.ID,
					LocationName: n.Name,
					ItemID:       item.ID,
					PackageID:    item.PackageID,
					PackageName:  item.PackageName,
					PlacedAt:     defVersion(item.PackageVersion),
					Missing:      true,
				})
				continue
			}
			if resolved.IsOutOfDate {
				stale = append(stale, StaleInstance{
					LocationID:   n.ID,
					LocationName: n.Name,
					ItemID:       item.ID,
					PackageID:    item.PackageID,
					PackageName:  item.PackageName,
					PlacedAt:     defVersion(item.PackageVersion),
					Current:      defVersion(resolved.Definition.Version),
				})
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return stale
}
