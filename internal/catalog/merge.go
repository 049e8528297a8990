// Package catalog implements the team catalog reconciliation core:
// overlaying per-team customizations onto the shared base catalog, and
// last-writer-wins refresh against remote customization records.
package catalog

import (
	"github.com/avforge/estq/internal/domain"
)

// ApplyOptions configures customization overlay behavior.
type ApplyOptions struct {
	// SkipCategories drops category/subcategory overrides before
	// merging. Set after a base-catalog version bump so stale remote
	// category values cannot overwrite the freshly fetched base.
	SkipCategories bool
}

// ApplyCustomizations overlays each matching customization onto its
// base catalog item: favorite, note, soft-delete flag, then the typed
// field patch. Items with no customization pass through unchanged.
func ApplyCustomizations(base []domain.CatalogItem, customizations []domain.CatalogCustomization, opts ApplyOptions) []domain.CatalogItem {
	byItem := make(map[string]*domain.CatalogCustomization, len(customizations))
	for i := range customizations {
		byItem[customizations[i].CatalogItemID] = &customizations[i]
	}

	merged := make([]domain.CatalogItem, len(base))
	for i, item := range base {
		cust, ok := byItem[item.ID]
		if !ok {
			merged[i] = item
			continue
		}
		merged[i] = overlay(item, cust, opts.SkipCategories)
	}
	return merged
}

// overlay applies one customization to a copy of the item.
func overlay(item domain.CatalogItem, cust *domain.CatalogCustomization, skipCategories bool) domain.CatalogItem {
	item.Favorite = cust.Favorite
	item.CatalogNote = cust.CatalogNote
	item.Deleted = cust.Deleted

	patch := cust.CustomFields
	if skipCategories {
		patch = patch.WithoutCategories()
	}
	patch.Apply(&item)

	return item
}

// RefreshResult reports the outcome of a catalog refresh.
type RefreshResult struct {
	Merged       []domain.CatalogItem `json:"merged"`
	UpdatedCount int                  `json:"updated_count"`
}

// Refresh reconciles the local catalog against remote customizations
// using per-item last-writer-wins: a remote record wins only when its
// updated_at is strictly newer than the local item's modified_at
// (missing timestamps compare as the zero time). On a win the entire
// customization payload replaces the local overlay and the local item
// adopts the remote timestamp, so refreshing again with the same remote
// data changes nothing.
//
// A win replaces the whole per-item overlay, not individual fields: if
// local changed field A and a newer remote independently changed field
// B, remote's possibly stale A overwrites local's. That coarseness is
// deliberate; the conflict reviewer exists for the cases where it
// matters.
//
// Remote records with no local counterpart are skipped: refresh never
// inserts catalog items, the base catalog does.
func Refresh(local []domain.CatalogItem, remote []domain.CatalogCustomization) RefreshResult {
	byItem := make(map[string]*domain.CatalogCustomization, len(remote))
	for i := range remote {
		byItem[remote[i].CatalogItemID] = &remote[i]
	}

	result := RefreshResult{Merged: make([]domain.CatalogItem, len(local))}
	for i, item := range local {
		cust, ok := byItem[item.ID]
		if !ok || !cust.UpdatedAt.After(item.ModifiedAt) {
			result.Merged[i] = item
			continue
		}
		merged := overlay(item, cust, false)
		merged.ModifiedAt = cust.UpdatedAt
		result.Merged[i] = merged
		result.UpdatedCount++
	}
	return result
}
