// Package export flattens a location subtree into the consolidated
// line-item list consumed by spreadsheet and report generation.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/packages"
)

// Row is one consolidated export line.
type Row struct {
	Qty             float64 `json:"qty"`
	Manufacturer    string  `json:"manufacturer"`
	Model           string  `json:"model"`
	PartNumber      string  `json:"part_number"`
	Supplier        string  `json:"supplier"`
	UOM             string  `json:"uom"`
	UnitCost        float64 `json:"unit_cost"`
	LaborHrsPerUnit float64 `json:"labor_hrs_per_unit"`
	Phase           string  `json:"phase"`
}

// groupKey is the consolidation key: part number when present, else
// manufacturer|model. Downstream report generation depends on this
// exact rule; do not change it.
func groupKey(partNumber, manufacturer, model string) string {
	if partNumber != "" {
		return partNumber
	}
	return manufacturer + "|" + model
}

// Consolidate flattens the subtree into rows grouped by part number
// (or manufacturer|model when the part number is empty), summing
// quantities across locations. Package instances are expanded against
// the definition sets; missing packages contribute nothing. Rows come
// out in first-seen order.
func Consolidate(nodes []*domain.LocationNode, catalogDefs, projectDefs []*domain.PackageDefinition) []Row {
	byKey := make(map[string]*Row)
	var order []string

	add := func(qty float64, manufacturer, model, partNumber, vendor, uom, phase string, unitCost, labor float64) {
		if qty == 0 {
			return
		}
		key := groupKey(partNumber, manufacturer, model)
		row, ok := byKey[key]
		if !ok {
			row = &Row{
				Manufacturer:    manufacturer,
				Model:           model,
				PartNumber:      partNumber,
				Supplier:        vendor,
				UOM:             uom,
				UnitCost:        unitCost,
				LaborHrsPerUnit: labor,
				Phase:           phase,
			}
			byKey[key] = row
			order = append(order, key)
		}
		row.Qty += qty
	}

	// accScale is the accessory quantity basis: the owning item's qty for
	// loose items, the instance multiplier for packaged items. Packaged
	// item quantities already carry qtyPerPackage, which never applies to
	// accessories.
	addItem := func(item *domain.Item, accScale float64) {
		add(item.Qty, item.Manufacturer, item.Model, item.PartNumber, item.Vendor,
			item.UOM, item.Phase, item.UnitCost, item.LaborHrsPerUnit)
		for i := range item.Accessories {
			acc := &item.Accessories[i]
			add(acc.EffectiveQty()*accScale, acc.Manufacturer, acc.Model, acc.PartNumber,
				acc.Vendor, acc.UOM, acc.Phase, acc.UnitCost, acc.LaborHrsPerUnit)
		}
	}

	var walk func(n *domain.LocationNode)
	walk = func(n *domain.LocationNode) {
		if n == nil {
			return
		}
		for i := range n.Items {
			item := &n.Items[i]
			if item.IsPackage() {
				resolved := packages.Resolve(item, catalogDefs, projectDefs)
				if resolved == nil || resolved.IsMissing {
					continue
				}
				multiplier := item.Qty
				if multiplier == 0 {
					multiplier = 1
				}
				for j := range resolved.ExpandedItems {
					addItem(&resolved.ExpandedItems[j], multiplier)
				}
				continue
			}
			addItem(item, item.Qty)
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	rows := make([]Row, 0, len(order))
	for _, key := range order {
		rows = append(rows, *byKey[key])
	}
	return rows
}

// WriteCSV writes consolidated rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{"qty", "manufacturer", "model", "part_number", "supplier", "uom", "unit_cost", "labor_hrs_per_unit", "phase"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatFloat(row.Qty, 'f', -1, 64),
			row.Manufacturer,
			row.Model,
			row.PartNumber,
			row.Supplier,
			row.UOM,
			strconv.FormatFloat(row.UnitCost, 'f', -1, 64),
			strconv.FormatFloat(row.LaborHrsPerUnit, 'f', -1, 64),
			row.Phase,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
