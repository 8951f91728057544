// internal/orders/domain.go
package orders

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle position of a purchase order.
type OrderStatus string

const (
	OrderDraft                 OrderStatus = "draft"
	OrderOrdered               OrderStatus = "ordered"
	OrderPartiallyReceived     OrderStatus = "partially-received"
	OrderPartiallyCommissioned OrderStatus = "partially-commissioned"
	OrderReceived              OrderStatus = "received"
)

// OrderItemStatus tracks one order line. Commissioned means the goods sit at
// the warehouse staged for vehicle loading and are not yet booked as stock.
type OrderItemStatus string

const (
	ItemPending      OrderItemStatus = "pending"
	ItemCommissioned OrderItemStatus = "commissioned"
	ItemReceived     OrderItemStatus = "received"
)

// OrderItem is one line of an order. ItemID plus LocationID is the join key
// back to the inventory item; consistency across the two documents is kept by
// the services, not by the store.
type OrderItem struct {
	ItemID               string          `json:"item_id" bson:"item_id"`
	ItemName             string          `json:"item_name" bson:"item_name"`
	ItemNumber           string          `json:"item_number" bson:"item_number"`
	WholesalerItemNumber string          `json:"wholesaler_item_number,omitempty" bson:"wholesaler_item_number,omitempty"`
	Quantity             int             `json:"quantity" bson:"quantity"`
	ReceivedQuantity     int             `json:"received_quantity" bson:"received_quantity"`
	Status               OrderItemStatus `json:"status" bson:"status"`
	LocationID           string          `json:"location_id" bson:"location_id"`
}

// Remaining is the quantity still expected on this line.
func (oi *OrderItem) Remaining() int {
	if oi.ReceivedQuantity >= oi.Quantity {
		return 0
	}
	return oi.Quantity - oi.ReceivedQuantity
}

// Order groups arranged reorders for one wholesaler into a purchase order.
// LocationID is empty for main-warehouse orders; vehicle material requests
// carry the vehicle's location and may go through the commissioning step.
type Order struct {
	ID             string      `json:"id" bson:"_id"`
	OrderNumber    string      `json:"order_number" bson:"order_number"`
	Date           time.Time   `json:"date" bson:"date"`
	WholesalerID   string      `json:"wholesaler_id" bson:"wholesaler_id"`
	WholesalerName string      `json:"wholesaler_name" bson:"wholesaler_name"`
	Status         OrderStatus `json:"status" bson:"status"`
	LocationID     string      `json:"location_id,omitempty" bson:"location_id,omitempty"`
	VehicleRequest bool        `json:"vehicle_request" bson:"vehicle_request"`
	InitiatedBy    string      `json:"initiated_by" bson:"initiated_by"`
	ConfirmedAt    *time.Time  `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	ConfirmedBy    string      `json:"confirmed_by,omitempty" bson:"confirmed_by,omitempty"`
	Items          []OrderItem `json:"items" bson:"items"`
}

func (o *Order) item(itemID string) *OrderItem {
	for idx := range o.Items {
		if o.Items[idx].ItemID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	clone := *o
	clone.Items = append([]OrderItem(nil), o.Items...)
	return &clone
}

// FormatOrderNumber builds the human-readable sequential number. Vehicle
// material requests and warehouse orders use distinct prefixes; numbering
// starts at 1001.
func FormatOrderNumber(vehicleRequest bool, existingOrders int) string {
	prefix := "PO"
	if vehicleRequest {
		prefix = "VR"
	}
	return fmt.Sprintf("%s%d", prefix, 1001+existingOrders)
}
