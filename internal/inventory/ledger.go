// internal/inventory/ledger.go
package inventory

import (
	"fmt"
	"time"
)

// ApplyStockChange mutates one location's stock on the given item and appends
// the matching changelog entry. Kind selects the semantics:
//
//	in        new = current + quantity
//	out       new = current - quantity, refused if that goes negative
//	inventory new = quantity (absolute physical count)
//
// After the stock entry, the reorder status for the location is re-evaluated
// and any resulting entries are appended in the same batch. All validation
// happens before the item is touched.
func ApplyStockChange(item *Item, locationID string, kind EntryType, quantity int, actor Actor, now time.Time) ([]ChangeLogEntry, error) {
	current := item.StockAt(locationID)

	var newStock int
	switch kind {
	case EntryIn:
		if quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		newStock = current + quantity
	case EntryOut:
		if quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if quantity > current {
			return nil, fmt.Errorf("%w: %d available at %s, %d requested", ErrInsufficientStock, current, locationID, quantity)
		}
		newStock = current - quantity
	case EntryInventory:
		if quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		newStock = quantity
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntryType, kind)
	}

	item.setStock(locationID, newStock)
	if kind == EntryInventory {
		if item.LastInventoriedAt == nil {
			item.LastInventoriedAt = make(map[string]time.Time)
		}
		item.LastInventoriedAt[locationID] = now
	}

	entries := []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
		Date:       now,
		UserID:     actor.ID,
		UserName:   actor.Name,
		Type:       kind,
		Quantity:   quantity,
		NewStock:   &newStock,
		LocationID: locationID,
	})}

	entries = append(entries, evaluateReorder(item, locationID, actor, now)...)
	return entries, nil
}

// Transfer moves stock between two locations of the same item. It refuses a
// move that exceeds the source stock, so the non-negativity invariant holds
// at both ends. Both locations are re-evaluated for reorders afterwards.
func Transfer(item *Item, fromLocationID, toLocationID string, quantity int, actor Actor, now time.Time) ([]ChangeLogEntry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if fromLocationID == toLocationID {
		return nil, ErrSameLocationTransfer
	}
	current := item.StockAt(fromLocationID)
	if quantity > current {
		return nil, fmt.Errorf("%w: %d available at %s, %d requested", ErrInsufficientStock, current, fromLocationID, quantity)
	}

	item.setStock(fromLocationID, current-quantity)
	item.setStock(toLocationID, item.StockAt(toLocationID)+quantity)

	entries := []ChangeLogEntry{appendEntry(item, ChangeLogEntry{
		Date:           now,
		UserID:         actor.ID,
		UserName:       actor.Name,
		Type:           EntryTransfer,
		Quantity:       quantity,
		FromLocationID: fromLocationID,
		ToLocationID:   toLocationID,
	})}

	entries = append(entries, evaluateReorder(item, fromLocationID, actor, now)...)
	entries = append(entries, evaluateReorder(item, toLocationID, actor, now)...)
	return entries, nil
}

// SeedInitialStock records the starting quantities of a newly created item.
func SeedInitialStock(item *Item, stocks []Stock, actor Actor, now time.Time) []ChangeLogEntry {
	var entries []ChangeLogEntry
	for _, s := range stocks {
		if s.Quantity < 0 {
			continue
		}
		item.setStock(s.LocationID, s.Quantity)
		qty := s.Quantity
		entries = append(entries, appendEntry(item, ChangeLogEntry{
			Date:       now,
			UserID:     actor.ID,
			UserName:   actor.Name,
			Type:       EntryInitial,
			Quantity:   qty,
			NewStock:   &qty,
			LocationID: s.LocationID,
		}))
	}
	return entries
}

// RecordLabelPrinted notes a label print in the audit trail. Rendering and
// printing happen outside this system.
func RecordLabelPrinted(item *Item, actor Actor, now time.Time) ChangeLogEntry {
	return appendEntry(item, ChangeLogEntry{
		Date:     now,
		UserID:   actor.ID,
		UserName: actor.Name,
		Type:     EntryLabelPrinted,
	})
}
