// internal/orders/reconciler.go
package orders

import "fmt"

// Receipt is the stock-booking side effect of a receive operation. A zero
// BookQuantity means nothing is booked (the commissioned case, where goods
// are staged at the warehouse but must not count as vehicle stock yet).
type Receipt struct {
	ItemID       string
	LocationID   string
	BookQuantity int
	// Final marks the line as fully satisfied, which releases the
	// reorder status still pointing at this order.
	Final bool
}

// ReceiveItem books a delivery against one order line. The received quantity
// accumulates; over-delivery is tolerated and accepted as-is. With
// commissionOnly set on a vehicle material request the line is staged instead
// of booked. The order status is recomputed afterwards.
func ReceiveItem(order *Order, itemID string, quantity int, commissionOnly bool) (Receipt, error) {
	if quantity <= 0 {
		return Receipt{}, ErrInvalidQuantity
	}
	if order.Status == OrderDraft {
		return Receipt{}, ErrOrderNotConfirmed
	}
	if commissionOnly && !order.VehicleRequest {
		return Receipt{}, ErrCommissionNeedsVehicle
	}

	line := order.item(itemID)
	if line == nil {
		return Receipt{}, fmt.Errorf("%w: %s", ErrOrderItemNotFound, itemID)
	}

	line.ReceivedQuantity += quantity

	receipt := Receipt{ItemID: itemID, LocationID: line.LocationID}
	if commissionOnly {
		line.Status = ItemCommissioned
	} else {
		receipt.BookQuantity = quantity
		if line.ReceivedQuantity >= line.Quantity {
			line.Status = ItemReceived
			receipt.Final = true
		}
	}

	recomputeStatus(order)
	return receipt, nil
}

// LoadCommissioned completes the two-step vehicle dance: the staged goods
// are loaded onto the vehicle and only now booked as its stock.
func LoadCommissioned(order *Order, itemID string) (Receipt, error) {
	line := order.item(itemID)
	if line == nil {
		return Receipt{}, fmt.Errorf("%w: %s", ErrOrderItemNotFound, itemID)
	}
	if line.Status != ItemCommissioned {
		return Receipt{}, ErrNotCommissioned
	}

	line.Status = ItemReceived
	recomputeStatus(order)

	return Receipt{
		ItemID:       itemID,
		LocationID:   line.LocationID,
		BookQuantity: line.Quantity,
		Final:        true,
	}, nil
}

func recomputeStatus(order *Order) {
	allReceived := true
	anyCommissioned := false
	for _, line := range order.Items {
		if line.Status != ItemReceived {
			allReceived = false
		}
		if line.Status == ItemCommissioned {
			anyCommissioned = true
		}
	}

	switch {
	case allReceived:
		order.Status = OrderReceived
	case anyCommissioned:
		order.Status = OrderPartiallyCommissioned
	default:
		order.Status = OrderPartiallyReceived
	}
}

// MatchStatus classifies one delivery line against the order's expectation.
type MatchStatus string

const (
	MatchOK      MatchStatus = "ok"
	MatchPartial MatchStatus = "partial"
	MatchExtra   MatchStatus = "extra"
	MatchMissing MatchStatus = "missing"
)

// DeliveredItem is one line of an externally supplied delivery list, from the
// delivery-note analyzer or manual entry.
type DeliveredItem struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// MatchLine is the classification of one expected or surplus line.
type MatchLine struct {
	ItemID    string      `json:"item_id"`
	ItemName  string      `json:"item_name,omitempty"`
	Expected  int         `json:"expected"`
	Delivered int         `json:"delivered"`
	Status    MatchStatus `json:"status"`
}

// MatchResult is the outcome of reconciling a delivery list against an order.
type MatchResult struct {
	OrderID     string      `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	Lines       []MatchLine `json:"lines"`
}

// FullyMatched reports whether every line came in exactly as expected, the
// precondition for automatic bulk receipt.
func (m *MatchResult) FullyMatched() bool {
	for _, line := range m.Lines {
		if line.Status != MatchOK {
			return false
		}
	}
	return len(m.Lines) > 0
}

// MatchDelivery reconciles a delivered-items list against the order's open
// lines. Quantities are compared against what is still outstanding, so a
// partially received order matches correctly on the remainder. Delivered
// items the order never asked for show up as extra lines with expected 0.
// A line with nothing outstanding (fully commissioned, awaiting loading) is
// left out of the result unless the delivery includes it anyway.
func MatchDelivery(order *Order, delivered []DeliveredItem) *MatchResult {
	byItem := make(map[string]int, len(delivered))
	for _, d := range delivered {
		byItem[d.ItemID] += d.Quantity
	}

	result := &MatchResult{OrderID: order.ID, OrderNumber: order.OrderNumber}
	for _, line := range order.Items {
		if line.Status == ItemReceived {
			continue
		}
		remaining := line.Remaining()
		got := byItem[line.ItemID]
		delete(byItem, line.ItemID)

		if remaining == 0 && got == 0 {
			continue
		}

		status := MatchMissing
		switch {
		case got == remaining && got > 0:
			status = MatchOK
		case got > remaining:
			status = MatchExtra
		case got > 0:
			status = MatchPartial
		}
		result.Lines = append(result.Lines, MatchLine{
			ItemID:    line.ItemID,
			ItemName:  line.ItemName,
			Expected:  remaining,
			Delivered: got,
			Status:    status,
		})
	}

	for itemID, got := range byItem {
		if got == 0 {
			continue
		}
		result.Lines = append(result.Lines, MatchLine{
			ItemID:    itemID,
			Delivered: got,
			Status:    MatchExtra,
		})
	}

	return result
}

// ReceiveAll books every outstanding line in full. Callers gate this on
// MatchResult.FullyMatched; the receipts come back in line order.
// Commissioned lines are left untouched: their stock booking is deferred to
// LoadCommissioned, not to delivery receipt.
func ReceiveAll(order *Order) ([]Receipt, error) {
	if order.Status == OrderDraft {
		return nil, ErrOrderNotConfirmed
	}

	var receipts []Receipt
	for idx := range order.Items {
		line := &order.Items[idx]
		if line.Status == ItemReceived || line.Status == ItemCommissioned {
			continue
		}
		remaining := line.Remaining()
		if remaining == 0 {
			line.Status = ItemReceived
			continue
		}
		line.ReceivedQuantity += remaining
		line.Status = ItemReceived
		receipts = append(receipts, Receipt{
			ItemID:       line.ItemID,
			LocationID:   line.LocationID,
			BookQuantity: remaining,
			Final:        true,
		})
	}

	recomputeStatus(order)
	return receipts, nil
}
