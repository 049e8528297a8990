// Package locations implements the location tree: a strict tree of
// nodes holding line items, mutated only by copy-on-write operations
// that return new trees. Nodes own their children outright; no node or
// item is ever shared between two trees, which is what makes revision
// snapshots and undo cheap and safe.
package locations

import (
	"strings"

	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/id"
)

// NewNode creates an empty location node with a fresh id.
func NewNode(name string) *domain.LocationNode {
	return &domain.LocationNode{
		ID:   id.New(),
		Name: name,
	}
}

// FindNode returns the node with the given id, searching the forest
// depth-first. Returns nil when absent.
func FindNode(nodes []*domain.LocationNode, nodeID string) *domain.LocationNode {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == nodeID {
			return n
		}
		if found := FindNode(n.Children, nodeID); found != nil {
			return found
		}
	}
	return nil
}

// FindItem returns the item with the given id and the node holding it.
func FindItem(nodes []*domain.LocationNode, itemID string) (*domain.LocationNode, *domain.Item) {
	for _, n := range nodes {
		if n == nil {
			continue
		}
		for i := range n.Items {
			if n.Items[i].ID == itemID {
				return n, &n.Items[i]
			}
		}
		if node, item := FindItem(n.Children, itemID); item != nil {
			return node, item
		}
	}
	return nil, nil
}

// updateNode returns a new forest where the node with the given id has
// been replaced by fn's result. Every node on the path to the target is
// copied; untouched siblings keep their identity.
func updateNode(nodes []*domain.LocationNode, nodeID string, fn func(*domain.LocationNode) *domain.LocationNode) ([]*domain.LocationNode, bool) {
	out := make([]*domain.LocationNode, len(nodes))
	copy(out, nodes)
	for i, n := range out {
		if n == nil {
			continue
		}
		if n.ID == nodeID {
			out[i] = fn(shallowCopy(n))
			return out, true
		}
		if children, ok := updateNode(n.Children, nodeID, fn); ok {
			c := shallowCopy(n)
			c.Children = children
			out[i] = c
			return out, true
		}
	}
	return nodes, false
}

func shallowCopy(n *domain.LocationNode) *domain.LocationNode {
	c := *n
	return &c
}

// AddChild appends a new child node under the given parent, or at the
// root when parentID is empty. Returns the new forest and the created
// node.
func AddChild(nodes []*domain.LocationNode, parentID, name string) ([]*domain.LocationNode, *domain.LocationNode) {
	child := NewNode(name)
	if parentID == "" {
		out := make([]*domain.LocationNode, len(nodes), len(nodes)+1)
		copy(out, nodes)
		return append(out, child), child
	}
	out, ok := updateNode(nodes, parentID, func(n *domain.LocationNode) *domain.LocationNode {
		children := make([]*domain.LocationNode, len(n.Children), len(n.Children)+1)
		copy(children, n.Children)
		n.Children = append(children, child)
		return n
	})
	if !ok {
		return nodes, nil
	}
	return out, child
}

// RenameNode returns a new forest with the node renamed.
func RenameNode(nodes []*domain.LocationNode, nodeID, name string) ([]*domain.LocationNode, bool) {
	return updateNode(nodes, nodeID, func(n *domain.LocationNode) *domain.LocationNode {
		n.Name = name
		return n
	})
}

// RemoveNode returns a new forest with the node and its entire subtree
// removed.
func RemoveNode(nodes []*domain.LocationNode, nodeID string) ([]*domain.LocationNode, bool) {
	out := make([]*domain.LocationNode, 0, len(nodes))
	removed := false
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == nodeID {
			removed = true
			continue
		}
		children, ok := RemoveNode(n.Children, nodeID)
		if ok {
			c := shallowCopy(n)
			c.Children = children
			n = c
			removed = true
		}
		out = append(out, n)
	}
	if !removed {
		return nodes, false
	}
	return out, true
}

// DuplicateNode deep-copies the node's subtree as a new sibling. Every
// node and item in the copy gets a fresh id so the copy shares nothing
// with the original.
func DuplicateNode(nodes []*domain.LocationNode, nodeID string) ([]*domain.LocationNode, *domain.LocationNode) {
	src := FindNode(nodes, nodeID)
	if src == nil {
		return nodes, nil
	}
	dup := regenerateIDs(domain.CloneNode(src))
	dup.Name = src.Name + " (copy)"

	// Insert next to the original at whatever level it lives.
	out, ok := insertAfter(nodes, nodeID, dup)
	if !ok {
		return nodes, nil
	}
	return out, dup
}

func insertAfter(nodes []*domain.LocationNode, nodeID string, newNode *domain.LocationNode) ([]*domain.LocationNode, bool) {
	for i, n := range nodes {
		if n == nil {
			continue
		}
		if n.ID == nodeID {
			out := make([]*domain.LocationNode, 0, len(nodes)+1)
			out = append(out, nodes[:i+1]...)
			out = append(out, newNode)
			out = append(out, nodes[i+1:]...)
			return out, true
		}
		if children, ok := insertAfter(n.Children, nodeID, newNode); ok {
			c := shallowCopy(n)
			c.Children = children
			out := make([]*domain.LocationNode, len(nodes))
			copy(out, nodes)
			out[i] = c
			return out, true
		}
	}
	return nodes, false
}

func regenerateIDs(n *domain.LocationNode) *domain.LocationNode {
	n.ID = id.New()
	for i := range n.Items {
		n.Items[i].ID = id.New()
		for j := range n.Items[i].Accessories {
			n.Items[i].Accessories[j].ID = id.New()
		}
	}
	for _, child := range n.Children {
		regenerateIDs(child)
	}
	return n
}

// ResolvePath resolves a slash-separated path of location names
// ("Building A/Floor 1/Rack 3") to a node id. Name matching is
// case-insensitive per segment.
func ResolvePath(nodes []*domain.LocationNode, path string) (string, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	level := nodes
	var current *domain.LocationNode
	for _, segment := range segments {
		if segment == "" {
			return "", false
		}
		current = nil
		for _, n := range level {
			if n != nil && strings.EqualFold(n.Name, segment) {
				current = n
				break
			}
		}
		if current == nil {
			return "", false
		}
		level = current.Children
	}
	if current == nil {
		return "", false
	}
	return current.ID, true
}
