package domain

// Item is a line item in a location node. It is a discriminated union:
// a plain component when Type is empty or "component", or a lightweight
// reference to a package definition when Type is "package". Package
// instances carry no cost themselves; they must be resolved against a
// definition before totals are knowable.
type Item struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type,omitempty"`

	// Component fields
	Manufacturer    string      `json:"manufacturer,omitempty"`
	Model           string      `json:"model,omitempty"`
	PartNumber      string      `json:"part_number,omitempty"`
	Description     string      `json:"description,omitempty"`
	Category        string      `json:"category,omitempty"`
	Subcategory     string      `json:"subcategory,omitempty"`
	UnitCost        float64     `json:"unit_cost,omitempty"`
	LaborHrsPerUnit float64     `json:"labor_hrs_per_unit,omitempty"`
	UOM             string      `json:"uom,omitempty"`
	Vendor          string      `json:"vendor,omitempty"`
	Qty             float64     `json:"qty"`
	Phase           string      `json:"phase,omitempty"`
	Accessories     []Accessory `json:"accessories,omitempty"`
	IsPlaceholder   bool        `json:"is_placeholder,omitempty"`
	IsCustom        bool        `json:"is_custom,omitempty"`

	// PackageName is the legacy ad-hoc grouping label. The one-shot
	// project migration converts same-node groups sharing this label
	// into package instances.
	PackageName string `json:"package_name,omitempty"`

	// Package instance fields (Type == "package")
	PackageID      string `json:"package_id,omitempty"`
	PackageVersion int    `json:"package_version,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// IsPackage reports whether the item is a package instance reference.
func (i *Item) IsPackage() bool {
	return i.Type == ItemTypePackage
}

// Accessory is a sub-item attached to a parent line item, quantified
// per one parent unit. Accessories are owned by exactly one parent and
// are never independently addressable in the tree.
type Accessory struct {
	ID              string  `json:"id"`
	Manufacturer    string  `json:"manufacturer,omitempty"`
	Model           string  `json:"model,omitempty"`
	PartNumber      string  `json:"part_number,omitempty"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	Subcategory     string  `json:"subcategory,omitempty"`
	UnitCost        float64 `json:"unit_cost,omitempty"`
	LaborHrsPerUnit float64 `json:"labor_hrs_per_unit,omitempty"`
	UOM             string  `json:"uom,omitempty"`
	Vendor          string  `json:"vendor,omitempty"`
	Phase           string  `json:"phase,omitempty"`

	// QtyPer is the quantity per one parent unit.
	QtyPer float64 `json:"qty_per"`

	// Qty is the legacy absolute quantity, used when QtyPer is unset.
	Qty float64 `json:"qty,omitempty"`
}

// EffectiveQty returns the accessory quantity contributed per
// multiplier unit: qty_per if set, else the legacy qty, else zero.
func (a *Accessory) EffectiveQty() float64 {
	if a.QtyPer != 0 {
		return a.QtyPer
	}
	return a.Qty
}

// FieldPatch is a typed sparse overlay of catalog item fields. Only
// non-nil fields are applied; absent fields leave the target untouched.
type FieldPatch struct {
	Manufacturer    *string  `json:"manufacturer,omitempty"`
	Model           *string  `json:"model,omitempty"`
	PartNumber      *string  `json:"part_number,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Category        *string  `json:"category,omitempty"`
	Subcategory     *string  `json:"subcategory,omitempty"`
	UnitCost        *float64 `json:"unit_cost,omitempty"`
	LaborHrsPerUnit *float64 `json:"labor_hrs_per_unit,omitempty"`
	UOM             *string  `json:"uom,omitempty"`
	Vendor          *string  `json:"vendor,omitempty"`
	Discontinued    *bool    `json:"discontinued,omitempty"`
	Phase           *string  `json:"phase,omitempty"`
}

// IsZero reports whether the patch carries no overrides.
func (p *FieldPatch) IsZero() bool {
	if p == nil {
		return true
	}
	return p.Manufacturer == nil && p.Model == nil && p.PartNumber == nil &&
		p.Description == nil && p.Category == nil && p.Subcategory == nil &&
		p.UnitCost == nil && p.LaborHrsPerUnit == nil && p.UOM == nil &&
		p.Vendor == nil && p.Discontinued == nil && p.Phase == nil
}

// Apply overlays the patch's present fields onto the catalog item.
func (p *FieldPatch) Apply(item *CatalogItem) {
	if p == nil {
		return
	}
	if p.Manufacturer != nil {
		item.Manufacturer = *p.Manufacturer
	}
	if p.Model != nil {
		item.Model = *p.Model
	}
	if p.PartNumber != nil {
		item.PartNumber = *p.PartNumber
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Subcategory != nil {
		item.Subcategory = *p.Subcategory
	}
	if p.UnitCost != nil {
		item.UnitCost = *p.UnitCost
	}
	if p.LaborHrsPerUnit != nil {
		item.LaborHrsPerUnit = *p.LaborHrsPerUnit
	}
	if p.UOM != nil {
		item.UOM = *p.UOM
	}
	if p.Vendor != nil {
		item.Vendor = *p.Vendor
	}
	if p.Discontinued != nil {
		item.Discontinued = *p.Discontinued
	}
	if p.Phase != nil {
		item.Phase = *p.Phase
	}
}

// WithoutCategories returns a copy of the patch with the category and
// subcategory overrides dropped. Used after a base-catalog version bump
// so stale remote category values cannot overwrite the refreshed base.
func (p *FieldPatch) WithoutCategories() *FieldPatch {
	if p == nil {
		return nil
	}
	c := *p
	c.Category = nil
	c.Subcategory = nil
	return &c
}
