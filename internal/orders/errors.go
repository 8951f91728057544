// internal/orders/errors.go
package orders

import "errors"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderItemNotFound      = errors.New("item is not part of this order")
	ErrDraftOrderRequired     = errors.New("order is no longer a draft")
	ErrOrderNotConfirmed      = errors.New("order has not been confirmed")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrNoItems                = errors.New("an order needs at least one item")
	ErrNotCommissioned        = errors.New("order item is not commissioned")
	ErrCommissionNeedsVehicle = errors.New("commissioning applies to vehicle material requests only")
	ErrUnmatchedDelivery      = errors.New("delivery does not match the order line for line")
)
