package catalog

import (
	"fmt"
	"strconv"

	"github.com/avforge/estq/internal/domain"
)

// Side identifies which copy of a conflicting item wins.
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// conflictFields is the fixed field set surfaced in per-conflict diffs.
var conflictFields = []string{
	"manufacturer",
	"model",
	"part_number",
	"description",
	"category",
	"subcategory",
	"unit_cost",
	"labor_hrs_per_unit",
	"uom",
	"vendor",
	"discontinued",
	"phase",
}

// FieldDiff is one diverging field of a conflicting item.
type FieldDiff struct {
	Field  string `json:"field"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// Conflict is one catalog item changed on both sides since the last
// sync. The caller chooses a winner per conflict or in bulk.
type Conflict struct {
	ItemID string             `json:"item_id"`
	Local  domain.CatalogItem `json:"local"`
	Remote domain.CatalogItem `json:"remote"`
	Diffs  []FieldDiff        `json:"diffs"`
	Choice Side               `json:"choice,omitempty"`
}

// ConflictSet holds the pending conflicts for one reconciliation pass.
type ConflictSet struct {
	Conflicts []*Conflict `json:"conflicts"`
}

// NewConflictSet builds the per-field diffs for each local/remote pair.
// Pairs with no diverging fields are dropped.
func NewConflictSet(pairs []struct{ Local, Remote domain.CatalogItem }) *ConflictSet {
	set := &ConflictSet{}
	for _, pair := range pairs {
		diffs := diffItems(pair.Local, pair.Remote)
		if len(diffs) == 0 {
			continue
		}
		set.Conflicts = append(set.Conflicts, &Conflict{
			ItemID: pair.Local.ID,
			Local:  pair.Local,
			Remote: pair.Remote,
			Diffs:  diffs,
		})
	}
	return set
}

func diffItems(local, remote domain.CatalogItem) []FieldDiff {
	var diffs []FieldDiff
	for _, field := range conflictFields {
		lv := fieldValue(&local, field)
		rv := fieldValue(&remote, field)
		if lv != rv {
			diffs = append(diffs, FieldDiff{Field: field, Local: lv, Remote: rv})
		}
	}
	return diffs
}

func fieldValue(item *domain.CatalogItem, field string) string {
	switch field {
	case "manufacturer":
		return item.Manufacturer
	case "model":
		return item.Model
	case "part_number":
		return item.PartNumber
	case "description":
		return item.Description
	case "category":
		return item.Category
	case "subcategory":
		return item.Subcategory
	case "unit_cost":
		return strconv.FormatFloat(item.UnitCost, 'f', -1, 64)
	case "labor_hrs_per_unit":
		return strconv.FormatFloat(item.LaborHrsPerUnit, 'f', -1, 64)
	case "uom":
		return item.UOM
	case "vendor":
		return item.Vendor
	case "discontinued":
		return strconv.FormatBool(item.Discontinued)
	case "phase":
		return item.Phase
	default:
		return ""
	}
}

// FieldLines renders the conflict field set as "field: value" lines,
// one per field, for diff display.
func FieldLines(item domain.CatalogItem) []string {
	lines := make([]string, 0, len(conflictFields))
	for _, field := range conflictFields {
		lines = append(lines, field+": "+fieldValue(&item, field))
	}
	return lines
}

// Resolve records the winner for a single conflict.
func (s *ConflictSet) Resolve(itemID string, side Side) error {
	if side != SideLocal && side != SideRemote {
		return fmt.Errorf("invalid side %q: must be local or remote", side)
	}
	for _, c := range s.Conflicts {
		if c.ItemID == itemID {
			c.Choice = side
			return nil
		}
	}
	return fmt.Errorf("no conflict for item %s", itemID)
}

// ResolveAll records the same winner for every conflict.
func (s *ConflictSet) ResolveAll(side Side) error {
	if side != SideLocal && side != SideRemote {
		return fmt.Errorf("invalid side %q: must be local or remote", side)
	}
	for _, c := range s.Conflicts {
		c.Choice = side
	}
	return nil
}

// AllResolved reports whether every conflict has a recorded choice.
func (s *ConflictSet) AllResolved() bool {
	for _, c := range s.Conflicts {
		if c.Choice == "" {
			return false
		}
	}
	return true
}

// Apply substitutes each chosen item into the catalog by id. Conflicts
// without a choice keep the catalog's current entry.
func (s *ConflictSet) Apply(items []domain.CatalogItem) []domain.CatalogItem {
	chosen := make(map[string]domain.CatalogItem, len(s.Conflicts))
	for _, c := range s.Conflicts {
		switch c.Choice {
		case SideLocal:
			chosen[c.ItemID] = c.Local
		case SideRemote:
			chosen[c.ItemID] = c.Remote
		}
	}
	out := make([]domain.CatalogItem, len(items))
	for i, item := range items {
		if winner, ok := chosen[item.ID]; ok {
			out[i] = winner
			continue
		}
		out[i] = item
	}
	return out
}
