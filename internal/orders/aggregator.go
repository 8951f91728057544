// internal/orders/aggregator.go
package orders

import (
	"fmt"
	"time"
)

// OrderLine is the input for one order item, carried over from an arranged
// reorder on the referenced inventory item.
type OrderLine struct {
	ItemID               string
	ItemName             string
	ItemNumber           string
	WholesalerItemNumber string
	Quantity             int
	LocationID           string
}

// BuildOrder creates a draft order from arranged reorder lines. Draft orders
// stay editable; the referenced items keep their arranged status until the
// order is confirmed.
func BuildOrder(id, orderNumber, wholesalerID, wholesalerName, locationID string, vehicleRequest bool, lines []OrderLine, initiatedBy string, now time.Time) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrNoItems
	}

	order := &Order{
		ID:             id,
		OrderNumber:    orderNumber,
		Date:           now,
		WholesalerID:   wholesalerID,
		WholesalerName: wholesalerName,
		Status:         OrderDraft,
		LocationID:     locationID,
		VehicleRequest: vehicleRequest,
		InitiatedBy:    initiatedBy,
	}
	if err := appendLines(order, lines); err != nil {
		return nil, err
	}
	return order, nil
}

// AddLines merges further arranged items into a draft order. A line for an
// item already on the order adds to its quantity instead of duplicating it.
func AddLines(order *Order, lines []OrderLine) error {
	if order.Status != OrderDraft {
		return ErrDraftOrderRequired
	}
	return appendLines(order, lines)
}

func appendLines(order *Order, lines []OrderLine) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: %d for item %s", ErrInvalidQuantity, line.Quantity, line.ItemID)
		}
		if existing := order.item(line.ItemID); existing != nil {
			existing.Quantity += line.Quantity
			continue
		}
		order.Items = append(order.Items, OrderItem{
			ItemID:               line.ItemID,
			ItemName:             line.ItemName,
			ItemNumber:           line.ItemNumber,
			WholesalerItemNumber: line.WholesalerItemNumber,
			Quantity:             line.Quantity,
			ReceivedQuantity:     0,
			Status:               ItemPending,
			LocationID:           line.LocationID,
		})
	}
	return nil
}

// Confirm freezes a draft order. From here on items can no longer be added
// or removed, and the referenced reorders flip to ordered.
func Confirm(order *Order, confirmedBy string, now time.Time) error {
	if order.Status != OrderDraft {
		return ErrDraftOrderRequired
	}
	order.Status = OrderOrdered
	order.ConfirmedAt = &now
	order.ConfirmedBy = confirmedBy
	return nil
}

// RemoveLine takes an item off a draft order. The second return value is
// true when the removed line was the last one, in which case the order
// document itself should be deleted.
func RemoveLine(order *Order, itemID string) (empty bool, err error) {
	if order.Status != OrderDraft {
		return false, ErrDraftOrderRequired
	}
	for idx := range order.Items {
		if order.Items[idx].ItemID == itemID {
			order.Items = append(order.Items[:idx], order.Items[idx+1:]...)
			return len(order.Items) == 0, nil
		}
	}
	return false, ErrOrderItemNotFound
}
