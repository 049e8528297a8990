package packages

import (
	"testing"

	"github.com/avforge/estq/internal/domain"
)

func testDefinition(defID, name string, version int) *domain.PackageDefinition {
	return &domain.PackageDefinition{
		ID:      defID,
		Name:    name,
		Scope:   domain.ScopeCatalog,
		Version: version,
		Items: []domain.PackageItem{
			{
				Item: domain.Item{
					ID:              "pi-1",
					Manufacturer:    "NEC",
					Model:           "P555",
					UnitCost:        10,
					LaborHrsPerUnit: 0.5,
				},
				QtyPerPackage: 2,
			},
		},
	}
}

func testInstance(pkgID string, version int, qty float64) domain.Item {
	return domain.Item{
		ID:             "inst-1",
		Type:           domain.ItemTypePackage,
		PackageID:      pkgID,
		PackageVersion: version,
		Qty:            qty,
	}
}

func TestResolveNonPackage(t *testing.T) {
	item := domain.Item{ID: "i1", Manufacturer: "NEC", Qty: 2}
	if got := Resolve(&item, nil, nil); got != nil {
		t.Fatalf("expected nil for component item, got %+v", got)
	}
	if got := Resolve(nil, nil, nil); got != nil {
		t.Fatalf("expected nil for nil item, got %+v", got)
	}
}

func TestResolveMissingDefinition(t *testing.T) {
	inst := testInstance("nope", 1, 2)
	resolved := Resolve(&inst, []*domain.PackageDefinition{testDefinition("other", "Other", 1)}, nil)

	if !resolved.IsMissing {
		t.Fatal("expected IsMissing")
	}
	if resolved.Definition != nil {
		t.Fatal("missing resolution must carry no definition")
	}
	if len(resolved.ExpandedItems) != 0 || resolved.TotalCost != 0 || resolved.TotalLabor != 0 {
		t.Fatalf("missing resolution must be zero-valued, got %+v", resolved)
	}
}

func TestResolveExpansion(t *testing.T) {
	def := testDefinition("d1", "Huddle", 1)
	inst := testInstance("d1", 1, 3)

	resolved := Resolve(&inst, []*domain.PackageDefinition{def}, nil)

	if resolved.IsMissing || resolved.IsOutOfDate {
		t.Fatalf("unexpected flags: %+v", resolved)
	}
	if len(resolved.ExpandedItems) != 1 {
		t.Fatalf("expected 1 expanded item, got %d", len(resolved.ExpandedItems))
	}
	// qty_per_package 2 x instance qty 3
	if got := resolved.ExpandedItems[0].Qty; got != 6 {
		t.Fatalf("expected expanded qty 6, got %v", got)
	}
	if resolved.TotalCost != 60 {
		t.Fatalf("expected total cost 60, got %v", resolved.TotalCost)
	}
	if resolved.TotalLabor != 3 {
		t.Fatalf("expected total labor 3, got %v", resolved.TotalLabor)
	}
}

func TestResolveQtyFallbacks(t *testing.T) {
	tests := []struct {
		name        string
		qtyPer      float64
		legacyQty   float64
		instanceQty float64
		wantQty     float64
	}{
		{"qty_per_package wins", 2, 5, 1, 2},
		{"falls back to legacy qty", 0, 5, 1, 5},
		{"defaults to one", 0, 0, 1, 1},
		{"zero instance qty counts as one", 2, 0, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := &domain.PackageDefinition{
				ID:      "d1",
				Name:    "P",
				Version: 1,
				Items: []domain.PackageItem{
					{Item: domain.Item{ID: "pi", Qty: tt.legacyQty, UnitCost: 1}, QtyPerPackage: tt.qtyPer},
				},
			}
			inst := testInstance("d1", 1, tt.instanceQty)
			resolved := Resolve(&inst, []*domain.PackageDefinition{def}, nil)
			if got := resolved.ExpandedItems[0].Qty; got != tt.wantQty {
				t.Fatalf("expected qty %v, got %v", tt.wantQty, got)
			}
		})
	}
}

func TestResolveProjectScopeShadowsCatalog(t *testing.T) {
	catalogDef := testDefinition("d1", "Catalog flavor", 1)
	projectDef := testDefinition("d1", "Project flavor", 1)
	projectDef.Items[0].UnitCost = 99

	inst := testInstance("d1", 1, 1)
	resolved := Resolve(&inst,
		[]*domain.PackageDefinition{catalogDef},
		[]*domain.PackageDefinition{projectDef})

	if resolved.Definition.Name != "Project flavor" {
		t.Fatalf("expected project definition to win, got %q", resolved.Definition.Name)
	}
	if resolved.TotalCost != 198 {
		t.Fatalf("expected totals from project definition, got %v", resolved.TotalCost)
	}
}

func TestResolveOutOfDate(t *testing.T) {
	tests := []struct {
		name        string
		defVersion  int
		instVersion int
		want        bool
	}{
		{"same version", 2, 2, false},
		{"definition moved ahead", 2, 1, true},
		{"instance ahead stays fresh", 1, 2, false},
		{"both missing treated as v1", 0, 0, false},
		{"definition v2 vs missing instance version", 2, 0, true},
		{"definition missing version vs v1", 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := testDefinition("d1", "Huddle", tt.defVersion)
			inst := testInstance("d1", tt.instVersion, 1)
			resolved := Resolve(&inst, []*domain.PackageDefinition{def}, nil)
			if resolved.IsOutOfDate != tt.want {
				t.Fatalf("IsOutOfDate = %v, want %v", resolved.IsOutOfDate, tt.want)
			}
		})
	}
}

func TestResolveOutOfDateStillUsesCurrentDefinition(t *testing.T) {
	def := testDefinition("d1", "Huddle", 2)
	def.Items[0].UnitCost = 25
	inst := testInstance("d1", 1, 1)

	resolved := Resolve(&inst, []*domain.PackageDefinition{def}, nil)
	if !resolved.IsOutOfDate {
		t.Fatal("expected IsOutOfDate")
	}
	if resolved.TotalCost != 50 {
		t.Fatalf("expected totals from the current definition, got %v", resolved.TotalCost)
	}
}

func TestResolveAccessories(t *testing.T) {
	def := testDefinition("d1", "Huddle", 1)
	def.Items[0].Accessories = []domain.Accessory{
		{ID: "a1", UnitCost: 5, LaborHrsPerUnit: 0.25, QtyPer: 2},
		{ID: "a2", UnitCost: 3, Qty: 1}, // legacy absolute qty
	}

	inst := testInstance("d1", 1, 2)
	resolved := Resolve(&inst, []*domain.PackageDefinition{def}, nil)

	// Base item: 2 per package x qty 2 x $10 = 40.
	// a1: 2 per x multiplier 2 x $5 = 20. a2: 1 x 2 x $3 = 6.
	if resolved.TotalCost != 66 {
		t.Fatalf("expected total cost 66, got %v", resolved.TotalCost)
	}
	// Base labor 4 x 0.5 = 2, a1 labor 4 x 0.25 = 1.
	if resolved.TotalLabor != 3 {
		t.Fatalf("expected total labor 3, got %v", resolved.TotalLabor)
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	def := testDefinition("d1", "Huddle", 1)
	inst := testInstance("d1", 1, 3)

	resolved := Resolve(&inst, []*domain.PackageDefinition{def}, nil)
	resolved.ExpandedItems[0].UnitCost = 999

	if def.Items[0].UnitCost != 10 {
		t.Fatal("resolution must not share memory with the definition")
	}
	if inst.Qty != 3 {
		t.Fatal("resolution must not mutate the instance")
	}
}

func TestFindByName(t *testing.T) {
	defs := []*domain.PackageDefinition{
		testDefinition("d1", "Huddle", 1),
		testDefinition("d2", "Boardroom", 1),
	}
	if def := FindByName("Boardroom", defs); def == nil || def.ID != "d2" {
		t.Fatalf("expected d2, got %+v", def)
	}
	if def := FindByName("boardroom", defs); def != nil {
		t.Fatal("name match is exact, expected no match")
	}
}

func TestFindStale(t *testing.T) {
	def := testDefinition("d1", "Huddle", 3)
	fresh := testInstance("d1", 3, 1)
	stale := testInstance("d1", 1, 1)
	stale.ID = "inst-stale"
	missing := testInstance("gone", 1, 1)
	missing.ID = "inst-missing"
	missing.PackageName = "Gone"

	nodes := []*domain.LocationNode{
		{
			ID:    "n1",
			Name:  "Floor 1",
			Items: []domain.Item{fresh, stale},
			Children: []*domain.LocationNode{
				{ID: "n2", Name: "Rack", Items: []domain.Item{missing}},
			},
		},
	}

	got := FindStale(nodes, []*domain.PackageDefinition{def}, nil)
	if len(got) != 2 {
		t.Fatalf("expected 2 stale instances, got %d: %+v", len(got), got)
	}

	if got[0].ItemID != "inst-stale" || got[0].PlacedAt != 1 || got[0].Current != 3 {
		t.Fatalf("unexpected stale entry: %+v", got[0])
	}
	if got[1].ItemID != "inst-missing" || !got[1].Missing {
		t.Fatalf("unexpected missing entry: %+v", got[1])
	}
	if got[1].LocationName != "Rack" {
		t.Fatalf("expected nested location name, got %q", got[1].LocationName)
	}
}
