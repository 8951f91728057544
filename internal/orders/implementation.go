// internal/orders/implementation.go
package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stocknexus/internal/inventory"
	"stocknexus/internal/store"
)

// service implements the Service interface. Orders and items are separate
// documents with no transaction across them: the order is always written
// first, then the item-side effects are applied through the directory. A
// crash in between leaves a reorder status one step behind its order, which
// the next receive or cancel resolves.
type service struct {
	mu         sync.RWMutex
	orders     map[string]*Order
	created    int
	items      ItemDirectory
	dispatcher store.Dispatcher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new orders service instance.
func NewService(items ItemDirectory, dispatcher store.Dispatcher, logger *logrus.Logger) Service {
	return &service{
		orders:     make(map[string]*Order),
		items:      items,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput, actor inventory.Actor) (*Order, error) {
	lines, err := s.linesFromArranged(ctx, input.ItemIDs, input.LocationID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	orderID := uuid.NewString()
	orderNumber := FormatOrderNumber(input.VehicleRequest, s.created)
	order, err := BuildOrder(orderID, orderNumber, input.WholesalerID, input.WholesalerName, input.LocationID, input.VehicleRequest, lines, actor.Name, s.now())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.orders[order.ID] = order
	s.created++
	s.mu.Unlock()

	s.persist(ctx, order)
	for _, line := range lines {
		if err := s.items.AssociateOrder(ctx, line.ItemID, line.LocationID, order.ID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"module":  "orders",
				"orderId": order.ID,
				"itemId":  line.ItemID,
			}).Warn("could not record order association on item")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"module":      "orders",
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
		"items":       len(order.Items),
	}).Info("draft order created")

	return order.Clone(), nil
}

// linesFromArranged resolves order lines from the items' arranged reorders.
// An item without an arranged reorder at the location cannot be ordered.
func (s *service) linesFromArranged(ctx context.Context, itemIDs []string, locationID string) ([]OrderLine, error) {
	var lines []OrderLine
	for _, itemID := range itemIDs {
		item, err := s.items.GetItem(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", itemID, err)
		}
		rs := item.ReorderStatuses[locationID]
		if rs == nil || rs.Status != inventory.ReorderArranged {
			return nil, fmt.Errorf("item %s: %w", itemID, inventory.ErrReorderNotArranged)
		}
		lines = append(lines, OrderLine{
			ItemID:               item.ID,
			ItemName:             item.Name,
			ItemNumber:           item.ItemNumber,
			WholesalerItemNumber: item.WholesalerItemNum,
			Quantity:             rs.Quantity,
			LocationID:           locationID,
		})
	}
	return lines, nil
}

func (s *service) AddItemsToOrder(ctx context.Context, orderID string, itemIDs []string, locationID string, actor inventory.Actor) (*Order, error) {
	lines, err := s.linesFromArranged(ctx, itemIDs, locationID)
	if err != nil {
		return nil, err
	}

	order, err := s.mutate(ctx, orderID, func(order *Order) error {
		return AddLines(order, lines)
	})
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		if err := s.items.AssociateOrder(ctx, line.ItemID, line.LocationID, order.ID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"module":  "orders",
				"orderId": order.ID,
				"itemId":  line.ItemID,
			}).Warn("could not record order association on item")
		}
	}
	return order, nil
}

func (s *service) ConfirmOrder(ctx context.Context, orderID string, actor inventory.Actor) (*Order, error) {
	order, err := s.mutate(ctx, orderID, func(order *Order) error {
		return Confirm(order, actor.Name, s.now())
	})
	if err != nil {
		return nil, err
	}

	for _, line := range order.Items {
		if err := s.items.MarkOrdered(ctx, line.ItemID, line.LocationID, line.Quantity, order.ID, order.OrderNumber, actor); err != nil {
			s.logger.WithFields(logrus.Fields{
				"module":  "orders",
				"orderId": order.ID,
				"itemId":  line.ItemID,
			}).Warn(err.Error())
		}
	}

	s.logger.WithFields(logrus.Fields{
		"module":      "orders",
		"orderId":     order.ID,
		"orderNumber": order.OrderNumber,
	}).Info("order confirmed")

	return order, nil
}

func (s *service) RemoveItemFromDraftOrder(ctx context.Context, orderID, itemID string, actor inventory.Actor) (*Order, error) {
	s.mu.Lock()
	order, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrOrderNotFound
	}

	clone := order.Clone()
	line := clone.item(itemID)
	empty, err := RemoveLine(clone, itemID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	if empty {
		delete(s.orders, orderID)
	} else {
		s.orders[orderID] = clone
	}
	s.mu.Unlock()

	if empty {
		s.dispatcher.Dispatch(ctx, store.Delete(store.CollectionOrders, orderID))
	} else {
		s.persist(ctx, clone)
	}

	if line != nil {
		if err := s.items.DissociateOrder(ctx, itemID, line.LocationID, orderID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"module":  "orders",
				"orderId": orderID,
				"itemId":  itemID,
			}).Warn(err.Error())
		}
	}

	if empty {
		return nil, nil
	}
	return clone.Clone(), nil
}

func (s *service) GetOrder(_ context.Context, orderID string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return order.Clone(), nil
}

func (s *service) ListOrders(_ context.Context) []*Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, order.Clone())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out
}

func (s *service) ReceiveOrderItem(ctx context.Context, orderID, itemID string, quantity int, commissionOnly bool, actor inventory.Actor) (*Order, error) {
	var receipt Receipt
	order, err := s.mutate(ctx, orderID, func(order *Order) error {
		var err error
		receipt, err = ReceiveItem(order, itemID, quantity, commissionOnly)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.book(ctx, order, receipt, actor)
	return order, nil
}

func (s *service) LoadCommissionedItem(ctx context.Context, orderID, itemID string, actor inventory.Actor) (*Order, error) {
	var receipt Receipt
	order, err := s.mutate(ctx, orderID, func(order *Order) error {
		var err error
		receipt, err = LoadCommissioned(order, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.book(ctx, order, receipt, actor)
	return order, nil
}

func (s *service) MatchDelivery(_ context.Context, orderID string, delivered []DeliveredItem) (*MatchResult, error) {
	s.mu.RLock()
	order, ok := s.orders[orderID]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrOrderNotFound
	}
	clone := order.Clone()
	s.mu.RUnlock()

	return MatchDelivery(clone, delivered), nil
}

// ReceiveMatchedDelivery books the whole delivery in one go, but only when
// every line matches exactly. Anything else is left to manual per-line
// receipt.
func (s *service) ReceiveMatchedDelivery(ctx context.Context, orderID string, delivered []DeliveredItem, actor inventory.Actor) (*Order, error) {
	var receipts []Receipt
	order, err := s.mutate(ctx, orderID, func(order *Order) error {
		if !MatchDelivery(order, delivered).FullyMatched() {
			return ErrUnmatchedDelivery
		}
		var err error
		receipts, err = ReceiveAll(order)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, receipt := range receipts {
		s.book(ctx, order, receipt, actor)
	}
	return order, nil
}

// mutate runs fn against a clone of the order and swaps it in on success.
func (s *service) mutate(ctx context.Context, orderID string, fn func(*Order) error) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}

	clone := order.Clone()
	if err := fn(clone); err != nil {
		return nil, err
	}
	s.orders[orderID] = clone

	s.persist(ctx, clone)
	return clone.Clone(), nil
}

func (s *service) book(ctx context.Context, order *Order, receipt Receipt, actor inventory.Actor) {
	if receipt.BookQuantity <= 0 {
		return
	}
	err := s.items.BookReceipt(ctx, receipt.ItemID, receipt.LocationID, receipt.BookQuantity, order.ID, order.OrderNumber, receipt.Final, actor)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"module":  "orders",
			"orderId": order.ID,
			"itemId":  receipt.ItemID,
		}).Warn(err.Error())
	}
}

func (s *service) persist(ctx context.Context, order *Order) {
	s.dispatcher.Dispatch(ctx, store.Upsert(store.CollectionOrders, order.ID, order.Clone()))
}
