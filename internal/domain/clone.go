package domain

// Deep-copy helpers. The location tree is immutable by convention:
// every mutation produces a new tree via copy-on-write, and snapshots
// must never alias live state. These helpers are the single place that
// owns the copy depth for each entity.

// CloneNode returns a deep copy of a location node and its subtree.
func CloneNode(n *LocationNode) *LocationNode {
	if n == nil {
		return nil
	}
	c := &LocationNode{
		ID:   n.ID,
		Name: n.Name,
	}
	if len(n.Items) > 0 {
		c.Items = CloneItems(n.Items)
	}
	if len(n.Children) > 0 {
		c.Children = CloneNodes(n.Children)
	}
	return c
}

// CloneNodes deep-copies a slice of location nodes.
func CloneNodes(nodes []*LocationNode) []*LocationNode {
	if nodes == nil {
		return nil
	}
	out := make([]*LocationNode, len(nodes))
	for i, n := range nodes {
		out[i] = CloneNode(n)
	}
	return out
}

// CloneItem returns a deep copy of an item including its accessories.
func CloneItem(it Item) Item {
	c := it
	if len(it.Accessories) > 0 {
		c.Accessories = make([]Accessory, len(it.Accessories))
		copy(c.Accessories, it.Accessories)
	}
	return c
}

// CloneItems deep-copies a slice of items.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = CloneItem(it)
	}
	return out
}

// CloneDefinition returns a deep copy of a package definition.
func CloneDefinition(d *PackageDefinition) *PackageDefinition {
	if d == nil {
		return nil
	}
	c := *d
	if len(d.Items) > 0 {
		c.Items = make([]PackageItem, len(d.Items))
		for i, it := range d.Items {
			c.Items[i] = it
			c.Items[i].Item = CloneItem(it.Item)
		}
	}
	return &c
}

// CloneDefinitions deep-copies a slice of package definitions.
func CloneDefinitions(defs []*PackageDefinition) []*PackageDefinition {
	if defs == nil {
		return nil
	}
	out := make([]*PackageDefinition, len(defs))
	for i, d := range defs {
		out[i] = CloneDefinition(d)
	}
	return out
}

// CloneProject returns a deep copy of a project document, safe to hand
// to another goroutine.
func CloneProject(p *Project) *Project {
	if p == nil {
		return nil
	}
	c := *p
	c.Locations = CloneNodes(p.Locations)
	c.Packages = CloneDefinitions(p.Packages)
	if len(p.Revisions) > 0 {
		c.Revisions = make([]*Revision, len(p.Revisions))
		for i, rev := range p.Revisions {
			if rev == nil {
				continue
			}
			r := *rev
			r.Snapshot = CloneSnapshot(rev.Snapshot)
			c.Revisions[i] = &r
		}
	}
	return &c
}

// CloneSnapshot deep-copies a revision snapshot.
func CloneSnapshot(s RevisionSnapshot) RevisionSnapshot {
	return RevisionSnapshot{
		Locations: CloneNodes(s.Locations),
		Packages:  CloneDefinitions(s.Packages),
	}
}
