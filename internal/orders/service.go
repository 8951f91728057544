// internal/orders/service.go
package orders

import (
	"context"

	"stocknexus/internal/inventory"
)

// ItemDirectory is the slice of the inventory service the orders service
// needs: item lookup plus the order-driven reorder hooks. Satisfied by
// inventory.Service.
type ItemDirectory interface {
	GetItem(ctx context.Context, id string) (*inventory.Item, error)
	AssociateOrder(ctx context.Context, itemID, locationID, orderID string) error
	DissociateOrder(ctx context.Context, itemID, locationID, orderID string) error
	MarkOrdered(ctx context.Context, itemID, locationID string, quantity int, orderID, orderNumber string, actor inventory.Actor) error
	BookReceipt(ctx context.Context, itemID, locationID string, quantity int, orderID, orderNumber string, final bool, actor inventory.Actor) error
}

// CreateOrderInput selects the arranged items a new draft order is built
// from. Quantities come from each item's arranged reorder at the location.
type CreateOrderInput struct {
	WholesalerID   string
	WholesalerName string
	ItemIDs        []string
	LocationID     string
	VehicleRequest bool
}

// Service defines the interface for the orders service.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput, actor inventory.Actor) (*Order, error)
	AddItemsToOrder(ctx context.Context, orderID string, itemIDs []string, locationID string, actor inventory.Actor) (*Order, error)
	ConfirmOrder(ctx context.Context, orderID string, actor inventory.Actor) (*Order, error)
	RemoveItemFromDraftOrder(ctx context.Context, orderID, itemID string, actor inventory.Actor) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context) []*Order

	ReceiveOrderItem(ctx context.Context, orderID, itemID string, quantity int, commissionOnly bool, actor inventory.Actor) (*Order, error)
	LoadCommissionedItem(ctx context.Context, orderID, itemID string, actor inventory.Actor) (*Order, error)
	MatchDelivery(ctx context.Context, orderID string, delivered []DeliveredItem) (*MatchResult, error)
	ReceiveMatchedDelivery(ctx context.Context, orderID string, delivered []DeliveredItem, actor inventory.Actor) (*Order, error)
}
