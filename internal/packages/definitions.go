package packages

import (
	"fmt"
	"strings"
	"time"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/id"
)

// NewDefinition builds a package definition from a group of items, as
// used by "save as package". Quantities on the source items become
// per-package quantities; legacy grouping labels are stripped.
func NewDefinition(name string, scope domain.PackageScope, items []domain.Item, now time.Time) (*domain.PackageDefinition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("package %q has no items", name)
	}
	if scope == "" {
		scope = domain.ScopeCatalog
	}

	def := &domain.PackageDefinition{
		ID:        id.New(),
		Name:      name,
		Scope:     scope,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		Items:     make([]domain.PackageItem, 0, len(items)),
	}

	for _, item := range items {
		qtyPer := item.Qty
		if qtyPer == 0 {
			qtyPer = 1
		}
		pkgItem := domain.PackageItem{
			Item:          domain.CloneItem(item),
			QtyPerPackage: qtyPer,
		}
		pkgItem.PackageName = ""
		def.Items = append(def.Items, pkgItem)
	}

	return def, nil
}

// NewInstance builds a package instance referencing the definition at
// its current version.
func NewInstance(def *domain.PackageDefinition, qty float64) domain.Item {
	if qty == 0 {
		qty = 1
	}
	return domain.Item{
		ID:             id.New(),
		Type:           domain.ItemTypePackage,
		PackageID:      def.ID,
		PackageName:    def.Name,
		PackageVersion: defVersion(def.Version),
		Qty:            qty,
	}
}

// BumpVersion returns a copy of the definition with the version
// incremented. Version increments are always caller-triggered; nothing
// in the core bumps automatically on edit.
func BumpVersion(def *domain.PackageDefinition, now time.Time) *domain.PackageDefinition {
	if def == nil {
		return nil
	}
	bumped := domain.CloneDefinition(def)
	bumped.Version = defVersion(bumped.Version) + 1
	bumped.UpdatedAt = now
	return bumped
}

// DeleteDefinition removes the definition with the given id from the
// slice, returning the filtered slice and whether anything was removed.
// Placed instances referencing a deleted definition resolve as missing.
func DeleteDefinition(defs []*domain.PackageDefinition, defID string) ([]*domain.PackageDefinition, bool) {
	out := make([]*domain.PackageDefinition, 0, len(defs))
	removed := false
	for _, def := range defs {
		if def != nil && def.ID == defID {
			removed = true
			continue
		}
		out = append(out, def)
	}
	return out, removed
}

// UpsertDefinition replaces the definition with a matching id, or
// appends when no match exists. The input slice is not mutated.
func UpsertDefinition(defs []*domain.PackageDefinition, def *domain.PackageDefinition) []*domain.PackageDefinition {
	out := make([]*domain.PackageDefinition, len(defs))
	copy(out, defs)
	for i, existing := range out {
		if existing != nil && existing.ID == def.ID {
			out[i] = def
			return out
		}
	}
	return append(out, def)
}
