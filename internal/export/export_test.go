package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/locations"
)

func TestConsolidateGroupsByPartNumber(t *testing.T) {
	nodes := []*domain.LocationNode{
		{
			ID: "n1", Name: "Floor 1",
			Items: []domain.Item{
				{ID: "i1", Manufacturer: "West Penn", Model: "25224B", PartNumber: "WP-25224B", Qty: 500, UnitCost: 0.4},
			},
		},
		{
			ID: "n2", Name: "Floor 2",
			Items: []domain.Item{
				{ID: "i2", Manufacturer: "West Penn", Model: "25224B", PartNumber: "WP-25224B", Qty: 250, UnitCost: 0.4},
				{ID: "i3", Manufacturer: "QSC", Model: "AD-C6T", Qty: 8, UnitCost: 95},
			},
		},
	}

	rows := Consolidate(nodes, nil, nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 consolidated rows, got %d", len(rows))
	}

	// First-seen order: the cable before the speaker.
	if rows[0].PartNumber != "WP-25224B" || rows[0].Qty != 750 {
		t.Fatalf("expected summed cable row first, got %+v", rows[0])
	}
	if rows[1].Model != "AD-C6T" || rows[1].Qty != 8 {
		t.Fatalf("unexpected second row: %+v", rows[1])
	}
}

func TestConsolidateFallbackKey(t *testing.T) {
	nodes := []*domain.LocationNode{
		{
			ID: "n1",
			Items: []domain.Item{
				{ID: "i1", Manufacturer: "Generic", Model: "Plate", Qty: 2},
				{ID: "i2", Manufacturer: "Generic", Model: "Plate", Qty: 3},
				// Same model, different manufacturer: distinct key.
				{ID: "i3", Manufacturer: "Other", Model: "Plate", Qty: 1},
			},
		},
	}

	rows := Consolidate(nodes, nil, nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Qty != 5 || rows[0].Manufacturer != "Generic" {
		t.Fatalf("expected merged manufacturer|model row, got %+v", rows[0])
	}
}

func TestConsolidateExpandsPackages(t *testing.T) {
	def := &domain.PackageDefinition{
		ID: "d1", Name: "Huddle", Version: 1,
		Items: []domain.PackageItem{
			{
				Item:          domain.Item{ID: "pi1", Manufacturer: "NEC", Model: "P555", PartNumber: "NEC-P555", UnitCost: 1200},
				QtyPerPackage: 1,
			},
		},
	}
	nodes := []*domain.LocationNode{
		{
			ID: "n1",
			Items: []domain.Item{
				{ID: "p1", Type: domain.ItemTypePackage, PackageID: "d1", PackageVersion: 1, Qty: 2},
				// Loose item with the same part number merges in.
				{ID: "i1", Manufacturer: "NEC", Model: "P555", PartNumber: "NEC-P555", Qty: 1, UnitCost: 1200},
				// Missing package contributes nothing.
				{ID: "p2", Type: domain.ItemTypePackage, PackageID: "gone", Qty: 5},
			},
		},
	}

	rows := Consolidate(nodes, []*domain.PackageDefinition{def}, nil)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %+v", len(rows), rows)
	}
	if rows[0].Qty != 3 {
		t.Fatalf("expected package expansion merged with loose item (qty 3), got %v", rows[0].Qty)
	}
}

func TestConsolidateAccessories(t *testing.T) {
	nodes := []*domain.LocationNode{
		{
			ID: "n1",
			Items: []domain.Item{
				{
					ID: "i1", Manufacturer: "NEC", Model: "P555", Qty: 2,
					Accessories: []domain.Accessory{
						{ID: "a1", Manufacturer: "Chief", Model: "LSM1U", PartNumber: "CH-LSM1U", QtyPer: 1, UnitCost: 150},
					},
				},
			},
		},
	}

	rows := Consolidate(nodes, nil, nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[1].PartNumber != "CH-LSM1U" || rows[1].Qty != 2 {
		t.Fatalf("expected accessory qty scaled by parent qty, got %+v", rows[1])
	}
}

func TestConsolidatePackagedAccessoryScalesByInstance(t *testing.T) {
	def := &domain.PackageDefinition{
		ID: "d1", Name: "Display Wall", Version: 1,
		Items: []domain.PackageItem{
			{
				Item: domain.Item{
					ID: "pi1", Manufacturer: "NEC", Model: "P555", PartNumber: "NEC-P555", UnitCost: 1200,
					Accessories: []domain.Accessory{
						{ID: "a1", Manufacturer: "Chief", Model: "LSM1U", PartNumber: "CH-LSM1U", QtyPer: 1, UnitCost: 10},
					},
				},
				QtyPerPackage: 2,
			},
		},
	}
	nodes := []*domain.LocationNode{
		{
			ID: "n1",
			Items: []domain.Item{
				{ID: "p1", Type: domain.ItemTypePackage, PackageID: "d1", PackageVersion: 1, Qty: 3},
			},
		},
	}
	defs := []*domain.PackageDefinition{def}

	rows := Consolidate(nodes, defs, nil)
	if len(rows) != 2 {
		t.Fatalf("expected display and mount rows, got %d: %+v", len(rows), rows)
	}
	if rows[0].Qty != 6 {
		t.Fatalf("display qty = %v, want qtyPerPackage * instance qty = 6", rows[0].Qty)
	}
	// The accessory scales by the instance quantity only, never by the
	// expanded item quantity.
	if rows[1].PartNumber != "CH-LSM1U" || rows[1].Qty != 3 {
		t.Fatalf("accessory row = %+v, want qty 3", rows[1])
	}

	// The export reconciles with the totals walk for the same tree.
	totals := locations.CalculateForestTotals(nodes, defs, nil)
	var exportCost float64
	for _, row := range rows {
		exportCost += row.Qty * row.UnitCost
	}
	if exportCost != totals.Cost {
		t.Fatalf("export cost %v != totals cost %v", exportCost, totals.Cost)
	}
}

func TestConsolidateSkipsZeroQty(t *testing.T) {
	nodes := []*domain.LocationNode{
		{ID: "n1", Items: []domain.Item{{ID: "i1", Manufacturer: "NEC", Model: "P555", Qty: 0}}},
	}
	if rows := Consolidate(nodes, nil, nil); len(rows) != 0 {
		t.Fatalf("zero-qty lines must be dropped, got %+v", rows)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []Row{
		{Qty: 750, Manufacturer: "West Penn", Model: "25224B", PartNumber: "WP-25224B", Supplier: "WAV", UOM: "ft", UnitCost: 0.4, LaborHrsPerUnit: 0.01, Phase: "rough-in"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if lines[0] != "qty,manufacturer,model,part_number,supplier,uom,unit_cost,labor_hrs_per_unit,phase" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "750,West Penn,25224B,WP-25224B,WAV,ft,0.4,0.01,rough-in" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}
