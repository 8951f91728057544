// internal/inventory/errors.go
package inventory

import "errors"

var (
	ErrItemNotFound          = errors.New("item not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrSameLocationTransfer  = errors.New("transfer source and target are the same location")
	ErrUnknownEntryType      = errors.New("unknown stock change type")
	ErrReorderNotArranged    = errors.New("no arranged reorder to cancel")
	ErrReorderAlreadyOrdered = errors.New("reorder has already been placed with a supplier")
)
