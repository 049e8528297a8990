package locations

import (
	"github.com/avforge/estq/internal/domain"
	"github.com/avforge/estq/internal/id"
)

// AddItem appends an item to the node's item list, assigning a fresh id
// when the item has none. Returns the new forest.
func AddItem(nodes []*domain.LocationNode, nodeID string, item domain.Item) ([]*domain.LocationNode, bool) {
	if item.ID == "" {
		item.ID = id.New()
	}
	return updateNode(nodes, nodeID, func(n *domain.LocationNode) *domain.LocationNode {
		items := make([]domain.Item, len(n.Items), len(n.Items)+1)
		copy(items, n.Items)
		n.Items = append(items, item)
		return n
	})
}

// UpdateItem replaces the item with a matching id wherever it lives.
func UpdateItem(nodes []*domain.LocationNode, item domain.Item) ([]*domain.LocationNode, bool) {
	node, _ := FindItem(nodes, item.ID)
	if node == nil {
		return nodes, false
	}
	return updateNode(nodes, node.ID, func(n *domain.LocationNode) *domain.LocationNode {
		items := make([]domain.Item, len(n.Items))
		copy(items, n.Items)
		for i := range items {
			if items[i].ID == item.ID {
				items[i] = item
				break
			}
		}
		n.Items = items
		return n
	})
}

// RemoveItem drops the item with the given id wherever it lives.
func RemoveItem(nodes []*domain.LocationNode, itemID string) ([]*domain.LocationNode, bool) {
	node, _ := FindItem(nodes, itemID)
	if node == nil {
		return nodes, false
	}
	return updateNode(nodes, node.ID, func(n *domain.LocationNode) *domain.LocationNode {
		items := make([]domain.Item, 0, len(n.Items))
		for _, it := range n.Items {
			if it.ID != itemID {
				items = append(items, it)
			}
		}
		n.Items = items
		return n
	})
}

// MoveItem relocates an item to another node, preserving the item
// itself.
func MoveItem(nodes []*domain.LocationNode, itemID, targetNodeID string) ([]*domain.LocationNode, bool) {
	_, item := FindItem(nodes, itemID)
	if item == nil || FindNode(nodes, targetNodeID) == nil {
		return nodes, false
	}
	moved := domain.CloneItem(*item)
	out, ok := RemoveItem(nodes, itemID)
	if !ok {
		return nodes, false
	}
	out, ok = AddItem(out, targetNodeID, moved)
	if !ok {
		return nodes, false
	}
	return out, true
}

// AttachAccessory converts the source item into an accessory of the
// parent item. An item can never become an accessory of itself, and
// package instances cannot participate on either side; violations
// leave the forest unchanged.
func AttachAccessory(nodes []*domain.LocationNode, parentItemID, sourceItemID string, qtyPer float64) ([]*domain.LocationNode, bool) {
	if parentItemID == sourceItemID {
		return nodes, false
	}
	parentNode, parent := FindItem(nodes, parentItemID)
	_, source := FindItem(nodes, sourceItemID)
	if parent == nil || source == nil || parent.IsPackage() || source.IsPackage() {
		return nodes, false
	}
	if qtyPer == 0 {
		qtyPer = 1
	}

	acc := domain.Accessory{
		ID:              id.New(),
		Manufacturer:    source.Manufacturer,
		Model:           source.Model,
		PartNumber:      source.PartNumber,
		Description:     source.Description,
		Category:        source.Category,
		Subcategory:     source.Subcategory,
		UnitCost:        source.UnitCost,
		LaborHrsPerUnit: source.LaborHrsPerUnit,
		UOM:             source.UOM,
		Vendor:          source.Vendor,
		Phase:           source.Phase,
		QtyPer:          qtyPer,
	}

	out, ok := RemoveItem(nodes, sourceItemID)
	if !ok {
		return nodes, false
	}
	out, ok = updateNode(out, parentNode.ID, func(n *domain.LocationNode) *domain.LocationNode {
		items := make([]domain.Item, len(n.Items))
		copy(items, n.Items)
		for i := range items {
			if items[i].ID == parentItemID {
				updated := domain.CloneItem(items[i])
				updated.Accessories = append(updated.Accessories, acc)
				items[i] = updated
				break
			}
		}
		n.Items = items
		return n
	})
	if !ok {
		return nodes, false
	}
	return out, true
}
