package store_test

import (
	"testing"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/testutil"
)

func TestCustomizationUpsertRoundTrip(t *testing.T) {
	s := testutil.TempStore(t)

	cost := 899.0
	cust := &domain.CatalogCustomization{
		TeamID:        "team-a",
		CatalogItemID: "cat-1",
		Favorite:      true,
		CatalogNote:   "preferred display",
		CustomFields:  &domain.FieldPatch{UnitCost: &cost},
	}
	testutil.AssertNoError(t, s.Customizations.Upsert("alice", cust))

	if cust.UpdatedAt.IsZero() {
		t.Fatal("upsert must stamp updated_at")
	}

	list, err := s.Customizations.ListByTeam("team-a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(list))
	got := list[0]
	testutil.AssertEqual(t, "cat-1", got.CatalogItemID)
	testutil.AssertEqual(t, true, got.Favorite)
	testutil.AssertEqual(t, "preferred display", got.CatalogNote)
	if got.CustomFields == nil || got.CustomFields.UnitCost == nil || *got.CustomFields.UnitCost != 899 {
		t.Fatalf("custom fields did not round-trip: %+v", got.CustomFields)
	}

	// Upsert replaces the existing record.
	cust.Favorite = false
	cust.CustomFields = nil
	testutil.AssertNoError(t, s.Customizations.Upsert("alice", cust))

	list, err = s.Customizations.ListByTeam("team-a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(list))
	if list[0].Favorite || list[0].CustomFields != nil {
		t.Fatalf("upsert did not replace the record: %+v", list[0])
	}
}

func TestCustomizationListScopedByTeam(t *testing.T) {
	s := testutil.TempStore(t)

	testutil.AssertNoError(t, s.Customizations.Upsert("alice",
		&domain.CatalogCustomization{TeamID: "team-a", CatalogItemID: "cat-1", Favorite: true}))
	testutil.AssertNoError(t, s.Customizations.Upsert("bob",
		&domain.CatalogCustomization{TeamID: "team-b", CatalogItemID: "cat-1", Deleted: true}))

	list, err := s.Customizations.ListByTeam("team-a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(list))
	testutil.AssertEqual(t, true, list[0].Favorite)
}

func TestCustomizationMalformedFieldsTolerated(t *testing.T) {
	s := testutil.TempStore(t)

	_, err := s.DB().Exec(`
		INSERT INTO catalog_customizations (team_id, catalog_item_id, favorite, catalog_note, deleted, custom_fields, updated_at)
		VALUES ('team-a', 'cat-bad', 1, 'note survives', 0, '{not json', '2026-01-10T12:00:00Z')
	`)
	testutil.AssertNoError(t, err)

	list, err := s.Customizations.ListByTeam("team-a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, len(list))
	if list[0].CustomFields != nil {
		t.Fatal("malformed custom_fields must read back as no overrides")
	}
	testutil.AssertEqual(t, "note survives", list[0].CatalogNote)
}

func TestCustomizationDelete(t *testing.T) {
	s := testutil.TempStore(t)

	testutil.AssertNoError(t, s.Customizations.Upsert("alice",
		&domain.CatalogCustomization{TeamID: "team-a", CatalogItemID: "cat-1", Favorite: true}))
	testutil.AssertNoError(t, s.Customizations.Delete("team-a", "cat-1"))

	list, err := s.Customizations.ListByTeam("team-a")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, len(list))

	// Deleting a missing record is fine.
	testutil.AssertNoError(t, s.Customizations.Delete("team-a", "cat-1"))
}

func TestCustomizationUpsertValidation(t *testing.T) {
	s := testutil.TempStore(t)

	testutil.AssertError(t, s.Customizations.Upsert("alice", nil))
	testutil.AssertError(t, s.Customizations.Upsert("alice",
		&domain.CatalogCustomization{CatalogItemID: "cat-1"}))
	testutil.AssertError(t, s.Customizations.Upsert("alice",
		&domain.CatalogCustomization{TeamID: "team-a"}))
}
