package packages

import (
	"time"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/id"
)

// projectMigrationVersion marks projects whose legacy groupings have
// been converted to package instances.
const projectMigrationVersion = 1

// MigrateDefinitions backfills missing fields on package definitions:
// id, scope (catalog), version (1), timestamps, and per-item
// qty_per_package. Idempotent: running it on already-migrated data
// produces field-for-field identical output.
func MigrateDefinitions(defs []*domain.PackageDefinition, now time.Time) []*domain.PackageDefinition {
	out := make([]*domain.PackageDefinition, 0, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		m := domain.CloneDefinition(def)
		if m.ID == "" {
			m.ID = id.New()
		}
		if m.Scope == "" {
			m.Scope = domain.ScopeCatalog
		}
		if m.Version == 0 {
			m.Version = 1
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}
		for i := range m.Items {
			if m.Items[i].QtyPerPackage == 0 {
				qty := m.Items[i].Qty
				if qty == 0 {
					qty = 1
				}
				m.Items[i].QtyPerPackage = qty
			}
		}
		out = append(out, m)
	}
	return out
}

// MigrationResult is the outcome of the one-shot project migration.
type MigrationResult struct {
	// Project is the migrated project. Equal to the input (aside from
	// the migration marker) when nothing needed converting.
	Project *domain.Project

	// NewDefinitions are definitions synthesized from legacy groupings
	// that had no existing definition by name. The caller persists them
	// into the shared definitions collection.
	NewDefinitions []*domain.PackageDefinition

	// Converted counts legacy groups replaced by package instances.
	Converted int
}

// MigrateProject converts legacy ad-hoc package groupings into package
// instances. Items in the same node sharing a package_name label are
// grouped; each group becomes one instance referencing an existing
// definition matched by exact name, or a definition synthesized from
// the group's items. Grouping never spans nodes.
//
// Guarded by the project's migration marker: a project already at the
// current migration version is returned unchanged with no new
// definitions, so repeated app loads are no-ops.
func MigrateProject(project *domain.Project, existingDefs []*domain.PackageDefinition, now time.Time) MigrationResult {
	if project == nil {
		return MigrationResult{}
	}
	if project.PackageMigrationVersion >= projectMigrationVersion {
		return MigrationResult{Project: project}
	}

	migrated := *project
	migrated.Locations = domain.CloneNodes(project.Locations)
	migrated.PackageMigrationVersion = projectMigrationVersion

	result := MigrationResult{Project: &migrated}

	known := make([]*domain.PackageDefinition, 0, len(existingDefs)+len(project.Packages))
	known = append(known, existingDefs...)
	known = append(known, project.Packages...)

	var walk func(n *domain.LocationNode)
	walk = func(n *domain.LocationNode) {
		if n == nil {
			return
		}
		n.Items = migrateNodeItems(n.Items, &known, &result, now)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, n := range migrated.Locations {
		walk(n)
	}

	return result
}

// migrateNodeItems rewrites one node's item list, collapsing each
// legacy group into a single package instance at the position of the
// group's first member. Items without a legacy label pass through
// unchanged, as do items that are already package instances.
func migrateNodeItems(items []domain.Item, known *[]*domain.PackageDefinition, result *MigrationResult, now time.Time) []domain.Item {
	groups := make(map[string][]domain.Item)
	order := make([]string, 0)
	for _, item := range items {
		if item.IsPackage() || item.PackageName == "" {
			continue
		}
		if _, seen := groups[item.PackageName]; !seen {
			order = append(order, item.PackageName)
		}
		groups[item.PackageName] = append(groups[item.PackageName], item)
	}
	if len(groups) == 0 {
		return items
	}

	instances := make(map[string]domain.Item, len(groups))
	for _, name := range order {
		def := FindByName(name, *known)
		if def == nil {
			synthesized, err := NewDefinition(name, domain.ScopeCatalog, groups[name], now)
			if err != nil {
				// A group with no usable items stays as-is.
				delete(groups, name)
				continue
			}
			*known = append(*known, synthesized)
			result.NewDefinitions = append(result.NewDefinitions, synthesized)
			def = synthesized
		}
		instances[name] = domain.Item{
			ID:             id.New(),
			Type:           domain.ItemTypePackage,
			PackageID:      def.ID,
			PackageName:    name,
			PackageVersion: defVersion(def.Version),
			Qty:            1,
		}
		result.Converted++
	}

	out := make([]domain.Item, 0, len(items))
	emitted := make(map[string]bool, len(instances))
	for _, item := range items {
		name := item.PackageName
		if item.IsPackage() || name == "" {
			out = append(out, item)
			continue
		}
		inst, ok := instances[name]
		if !ok {
			out = append(out, item)
			continue
		}
		if !emitted[name] {
			out = append(out, inst)
			emitted[name] = true
		}
	}
	return out
}
