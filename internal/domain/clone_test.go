package domain

import "testing"

func sampleNode() *LocationNode {
	return &LocationNode{
		ID:   "n1",
		Name: "Building A",
		Items: []Item{
			{
				ID: "i1", Manufacturer: "NEC", Qty: 2,
				Accessories: []Accessory{{ID: "a1", QtyPer: 1, UnitCost: 150}},
			},
		},
		Children: []*LocationNode{
			{ID: "n2", Name: "Floor 1", Items: []Item{{ID: "i2", Qty: 1}}},
		},
	}
}

func TestCloneNodeIsDeep(t *testing.T) {
	src := sampleNode()
	clone := CloneNode(src)

	clone.Name = "Renamed"
	clone.Items[0].Qty = 99
	clone.Items[0].Accessories[0].UnitCost = 1
	clone.Children[0].Items[0].Qty = 50

	if src.Name != "Building A" || src.Items[0].Qty != 2 {
		t.Fatal("clone shares top-level state with the source")
	}
	if src.Items[0].Accessories[0].UnitCost != 150 {
		t.Fatal("clone shares accessory state with the source")
	}
	if src.Children[0].Items[0].Qty != 1 {
		t.Fatal("clone shares child state with the source")
	}

	if CloneNode(nil) != nil {
		t.Fatal("nil clones to nil")
	}
}

func TestCloneDefinitionIsDeep(t *testing.T) {
	src := &PackageDefinition{
		ID: "d1", Name: "Huddle", Version: 1,
		Items: []PackageItem{
			{
				Item:          Item{ID: "pi1", Accessories: []Accessory{{ID: "a1", QtyPer: 2}}},
				QtyPerPackage: 2,
			},
		},
	}

	clone := CloneDefinition(src)
	clone.Items[0].QtyPerPackage = 9
	clone.Items[0].Accessories[0].QtyPer = 9

	if src.Items[0].QtyPerPackage != 2 || src.Items[0].Accessories[0].QtyPer != 2 {
		t.Fatal("clone shares state with the source definition")
	}
}

func TestCloneProjectIsDeep(t *testing.T) {
	src := &Project{
		ID:        "p1",
		Name:      "HQ refresh",
		Status:    StatusDraft,
		Locations: []*LocationNode{sampleNode()},
		Packages: []*PackageDefinition{
			{ID: "d1", Name: "Huddle", Version: 1, Items: []PackageItem{{Item: Item{ID: "pi1"}, QtyPerPackage: 2}}},
		},
		Revisions: []*Revision{
			{ID: "r1", Label: "Revision 1", Snapshot: RevisionSnapshot{Locations: []*LocationNode{sampleNode()}}},
		},
	}

	clone := CloneProject(src)
	clone.Name = "renamed"
	clone.FriendlyID = "PRJ-00009"
	clone.Locations[0].Items[0].Qty = 99
	clone.Packages[0].Items[0].QtyPerPackage = 9
	clone.Revisions[0].Label = "edited"
	clone.Revisions[0].Snapshot.Locations[0].Name = "edited"

	if src.Name != "HQ refresh" || src.FriendlyID != "" {
		t.Fatal("clone shares top-level state with the source")
	}
	if src.Locations[0].Items[0].Qty != 2 {
		t.Fatal("clone shares the location tree with the source")
	}
	if src.Packages[0].Items[0].QtyPerPackage != 2 {
		t.Fatal("clone shares package definitions with the source")
	}
	if src.Revisions[0].Label != "Revision 1" || src.Revisions[0].Snapshot.Locations[0].Name != "Building A" {
		t.Fatal("clone shares the revision log with the source")
	}

	if CloneProject(nil) != nil {
		t.Fatal("nil clones to nil")
	}
}

func TestCloneSnapshot(t *testing.T) {
	snap := RevisionSnapshot{
		Locations: []*LocationNode{sampleNode()},
		Packages:  []*PackageDefinition{{ID: "d1", Name: "Huddle", Version: 1}},
	}

	clone := CloneSnapshot(snap)
	clone.Locations[0].Items[0].Qty = 99
	clone.Packages[0].Version = 9

	if snap.Locations[0].Items[0].Qty != 2 || snap.Packages[0].Version != 1 {
		t.Fatal("snapshot clone shares state with the source")
	}

	empty := CloneSnapshot(RevisionSnapshot{})
	if empty.Locations != nil || empty.Packages != nil {
		t.Fatal("empty snapshot clones to empty")
	}
}
