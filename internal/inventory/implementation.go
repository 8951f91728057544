// internal/inventory/implementation.go
package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stocknexus/internal/store"
)

// service implements the Service interface. It owns the live item state: the
// maps below are the read model the rest of the process works against, and
// every mutation goes clone -> pure domain function -> swap -> dispatch.
// The dispatch is fire-and-forget; concurrent writers from other processes
// race last-writer-wins on the store, which is accepted for this domain.
type service struct {
	mu         sync.RWMutex
	items      map[string]*Item
	dispatcher store.Dispatcher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new inventory service instance.
func NewService(dispatcher store.Dispatcher, logger *logrus.Logger) Service {
	return &service{
		items:      make(map[string]*Item),
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput, actor Actor) (*Item, error) {
	item := &Item{
		ID:                 uuid.NewString(),
		Name:               input.Name,
		ItemNumber:         input.ItemNumber,
		ManufacturerNumber: input.ManufacturerNumber,
		Barcode:            input.Barcode,
		WholesalerID:       input.WholesalerID,
		WholesalerItemNum:  input.WholesalerItemNum,
	}

	now := s.now()
	SeedInitialStock(item, input.InitialStocks, actor, now)
	for _, ms := range input.MinStocks {
		if ms.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		item.setMinStock(ms.LocationID, ms.Quantity)
		evaluateReorder(item, ms.LocationID, actor, now)
	}

	s.mu.Lock()
	s.items[item.ID] = item
	s.mu.Unlock()

	s.persist(ctx, item)
	s.logger.WithFields(logrus.Fields{
		"module": "inventory",
		"itemId": item.ID,
		"name":   item.Name,
	}).Info("item created")

	return item.Clone(), nil
}

func (s *service) GetItem(_ context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, ErrItemNotFound
	}
	return item.Clone(), nil
}

func (s *service) ListItems(_ context.Context) []*Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*Item, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item.Clone())
	}
	sort.Slice(items, func(a, b int) bool { return items[a].Name < items[b].Name })
	return items
}

// mutate runs fn against a clone of the item and swaps the clone in when fn
// succeeds. A failed validation therefore leaves the live state untouched.
func (s *service) mutate(ctx context.Context, itemID string, fn func(*Item) ([]ChangeLogEntry, error)) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[itemID]
	if !ok {
		return nil, ErrItemNotFound
	}

	clone := item.Clone()
	entries, err := fn(clone)
	if err != nil {
		return nil, err
	}
	s.items[itemID] = clone

	s.persist(ctx, clone)
	for _, e := range entries {
		s.logger.WithFields(logrus.Fields{
			"module":   "inventory",
			"itemId":   clone.ID,
			"type":     string(e.Type),
			"quantity": e.Quantity,
			"location": e.LocationID,
		}).Info("changelog entry appended")
	}

	return clone.Clone(), nil
}

func (s *service) ApplyStockChange(ctx context.Context, itemID, locationID string, kind EntryType, quantity int, actor Actor) (*Item, error) {
	return s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return ApplyStockChange(item, locationID, kind, quantity, actor, s.now())
	})
}

func (s *service) Transfer(ctx context.Context, itemID, fromLocationID, toLocationID string, quantity int, actor Actor) (*Item, error) {
	return s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return Transfer(item, fromLocationID, toLocationID, quantity, actor, s.now())
	})
}

func (s *service) SetMinStock(ctx context.Context, itemID, locationID string, quantity int, actor Actor) (*Item, error) {
	return s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return SetMinStock(item, locationID, quantity, actor, s.now())
	})
}

func (s *service) RecordLabelPrinted(ctx context.Context, itemID string, actor Actor) error {
	_, err := s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return []ChangeLogEntry{RecordLabelPrinted(item, actor, s.now())}, nil
	})
	return err
}

func (s *service) ArrangeReorder(ctx context.Context, itemID, locationID string, quantity int, actor Actor) (*Item, error) {
	return s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return ArrangeReorder(item, locationID, quantity, actor, s.now())
	})
}

func (s *service) CancelArrangedReorder(ctx context.Context, itemID, locationID string, actor Actor) (*Item, error) {
	return s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return CancelArrangedReorder(item, locationID, actor, s.now())
	})
}

// CancelArrangedByWholesaler bulk-cancels every arranged reorder at one
// location whose item belongs to the given wholesaler. Returns the number of
// items affected. Already-ordered reorders are skipped, not failed.
func (s *service) CancelArrangedByWholesaler(ctx context.Context, wholesalerID, locationID string, actor Actor) (int, error) {
	s.mu.RLock()
	var affected []string
	for id, item := range s.items {
		if item.WholesalerID != wholesalerID {
			continue
		}
		if rs := item.ReorderStatuses[locationID]; rs != nil && rs.Status == ReorderArranged {
			affected = append(affected, id)
		}
	}
	s.mu.RUnlock()

	cancelled := 0
	for _, id := range affected {
		if _, err := s.CancelArrangedReorder(ctx, id, locationID, actor); err == nil {
			cancelled++
		}
	}
	return cancelled, nil
}

func (s *service) AssociateOrder(ctx context.Context, itemID, locationID, orderID string) error {
	_, err := s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		AssociateOrder(item, locationID, orderID)
		return nil, nil
	})
	return err
}

func (s *service) DissociateOrder(ctx context.Context, itemID, locationID, orderID string) error {
	_, err := s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		DissociateOrder(item, locationID, orderID)
		return nil, nil
	})
	return err
}

func (s *service) MarkOrdered(ctx context.Context, itemID, locationID string, quantity int, orderID, orderNumber string, actor Actor) error {
	_, err := s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return MarkOrdered(item, locationID, quantity, orderID, orderNumber, actor, s.now()), nil
	})
	return err
}

func (s *service) BookReceipt(ctx context.Context, itemID, locationID string, quantity int, orderID, orderNumber string, final bool, actor Actor) error {
	_, err := s.mutate(ctx, itemID, func(item *Item) ([]ChangeLogEntry, error) {
		return BookOrderReceipt(item, locationID, quantity, orderID, orderNumber, final, actor, s.now())
	})
	return err
}

func (s *service) StockAt(_ context.Context, itemID string, at time.Time, locationID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemID]
	if !ok {
		return 0, ErrItemNotFound
	}
	return ReconstructAt(item, at, locationID), nil
}

func (s *service) persist(ctx context.Context, item *Item) {
	s.dispatcher.Dispatch(ctx, store.Upsert(store.CollectionItems, item.ID, item.Clone()))
}
