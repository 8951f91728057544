// internal/inventory/reorder.go
package inventory

import (
	"fmt"
	"time"
)

// evaluateReorder re-checks one location after a stock or min-stock change
// and keeps the reorder status in line with the deficit. It never fails:
// degenerate inputs simply no-op. The rules, with needed = minStock - stock:
//
//   - arranged and needed <= 0: cancel, stock recovered on its own
//   - arranged and needed differs from the stored quantity: adjust
//   - no status and needed > 0: arrange
//   - ordered, or arranged with the right quantity: leave alone
//
// An order already placed is never re-negotiated automatically, even when the
// stock keeps drifting.
func evaluateReorder(item *Item, locationID string, actor Actor, now time.Time) []ChangeLogEntry {
	needed := item.MinStockAt(locationID) - item.StockAt(locationID)
	rs := item.ReorderStatuses[locationID]

	switch {
	case rs != nil && rs.Status == ReorderArranged && needed <= 0:
		delete(item.ReorderStatuses, locationID)
		return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
			Date:       now,
			UserID:     actor.ID,
			UserName:   actor.Name,
			Type:       EntryReorderCancelled,
			Quantity:   rs.Quantity,
			LocationID: locationID,
			Details:    "stock sufficient again",
		})}

	case rs != nil && rs.Status == ReorderArranged && needed != rs.Quantity:
		previous := rs.Quantity
		rs.Quantity = needed
		return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
			Date:       now,
			UserID:     actor.ID,
			UserName:   actor.Name,
			Type:       EntryUpdate,
			Quantity:   needed,
			LocationID: locationID,
			Details:    fmt.Sprintf("reorder quantity adjusted from %d to %d", previous, needed),
		})}

	case rs == nil && needed > 0:
		if item.ReorderStatuses == nil {
			item.ReorderStatuses = make(map[string]*ReorderStatus)
		}
		item.ReorderStatuses[locationID] = &ReorderStatus{
			Status:     ReorderArranged,
			ArrangedAt: now,
			Quantity:   needed,
		}
		return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
			Date:       now,
			UserID:     actor.ID,
			UserName:   actor.Name,
			Type:       EntryReorderArranged,
			Quantity:   needed,
			LocationID: locationID,
		})}
	}

	return nil
}

// ArrangeReorder flags a reorder with a user-chosen quantity, overriding
// whatever the automatic evaluation would suggest. A reorder that has
// already been ordered cannot be rearranged; the order has to be handled
// instead.
func ArrangeReorder(item *Item, locationID string, quantity int, actor Actor, now time.Time) ([]ChangeLogEntry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	rs := item.ReorderStatuses[locationID]
	if rs != nil && rs.Status == ReorderOrdered {
		return nil, ErrReorderAlreadyOrdered
	}

	if rs != nil {
		previous := rs.Quantity
		rs.Quantity = quantity
		return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
			Date:       now,
			UserID:     actor.ID,
			UserName:   actor.Name,
			Type:       EntryUpdate,
			Quantity:   quantity,
			LocationID: locationID,
			Details:    fmt.Sprintf("reorder quantity adjusted from %d to %d", previous, quantity),
		})}, nil
	}

	if item.ReorderStatuses == nil {
		item.ReorderStatuses = make(map[string]*ReorderStatus)
	}
	item.ReorderStatuses[locationID] = &ReorderStatus{
		Status:     ReorderArranged,
		ArrangedAt: now,
		Quantity:   quantity,
	}
	return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
		Date:       now,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Type:       EntryReorderArranged,
		Quantity:   quantity,
		LocationID: locationID,
	})}, nil
}

// CancelArrangedReorder withdraws an arranged reorder. Once the reorder has
// been placed it can no longer be cancelled here; the order itself must be
// cancelled or received.
func CancelArrangedReorder(item *Item, locationID string, actor Actor, now time.Time) ([]ChangeLogEntry, error) {
	rs := item.ReorderStatuses[locationID]
	if rs == nil || rs.Status != ReorderArranged {
		return nil, ErrReorderNotArranged
	}

	delete(item.ReorderStatuses, locationID)
	return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
		Date:       now,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Type:       EntryReorderCancelled,
		Quantity:   rs.Quantity,
		LocationID: locationID,
	})}, nil
}

// AssociateOrder records which draft order carries this reorder. The status
// stays arranged; only a confirmed order flips it to ordered.
func AssociateOrder(item *Item, locationID, orderID string) {
	if rs := item.ReorderStatuses[locationID]; rs != nil {
		rs.OrderID = orderID
	}
}

// DissociateOrder removes the link to a draft order the item was taken off
// of. A reorder pointing at a different order is left untouched.
func DissociateOrder(item *Item, locationID, orderID string) {
	if rs := item.ReorderStatuses[locationID]; rs != nil && rs.OrderID == orderID {
		rs.OrderID = ""
	}
}

// MarkOrdered transitions a reorder to ordered when its order is confirmed.
// Items that ended up on an order without a tracked reorder get one, so the
// receiving flow can clear it uniformly.
func MarkOrdered(item *Item, locationID string, quantity int, orderID, orderNumber string, actor Actor, now time.Time) []ChangeLogEntry {
	rs := item.ReorderStatuses[locationID]
	if rs == nil {
		if item.ReorderStatuses == nil {
			item.ReorderStatuses = make(map[string]*ReorderStatus)
		}
		rs = &ReorderStatus{Status: ReorderArranged, ArrangedAt: now, Quantity: quantity}
		item.ReorderStatuses[locationID] = rs
	}
	orderedAt := now
	rs.Status = ReorderOrdered
	rs.OrderedAt = &orderedAt
	rs.OrderID = orderID

	return []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
		Date:       now,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Type:       EntryReordered,
		Quantity:   rs.Quantity,
		LocationID: locationID,
		OrderID:    orderID,
		Details:    fmt.Sprintf("ordered with %s", orderNumber),
	})}
}

// BookOrderReceipt books delivered goods into stock with an entry that
// references the originating order. With final set, a reorder still pointing
// at that order is cleared before the location is re-evaluated.
func BookOrderReceipt(item *Item, locationID string, quantity int, orderID, orderNumber string, final bool, actor Actor, now time.Time) ([]ChangeLogEntry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	newStock := item.StockAt(locationID) + quantity
	item.setStock(locationID, newStock)

	entries := []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
		Date:       now,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Type:       EntryIn,
		Quantity:   quantity,
		NewStock:   &newStock,
		LocationID: locationID,
		OrderID:    orderID,
		Details:    fmt.Sprintf("received from %s", orderNumber),
	})}

	if final {
		if rs := item.ReorderStatuses[locationID]; rs != nil && rs.OrderID == orderID {
			delete(item.ReorderStatuses, locationID)
		}
	}

	entries = append(entries, evaluateReorder(item, locationID, actor, now)...)
	return entries, nil
}

// SetMinStock changes the minimum stock for a location and re-evaluates the
// reorder status against the new threshold.
func SetMinStock(item *Item, locationID string, quantity int, actor Actor, now time.Time) ([]ChangeLogEntry, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	item.setMinStock(locationID, quantity)
	return evaluateReorder(item, locationID, actor, now), nil
}
