package orders

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"stocknexus/internal/inventory"
	"stocknexus/internal/store"
)

var actor = inventory.Actor{ID: "u1", Name: "Test User"}

// testingT is the slice of testing.TB the fixture helpers need; *rapid.T
// satisfies it too.
type testingT interface {
	Helper()
	Errorf(format string, args ...interface{})
	FailNow()
}

type fixture struct {
	items  inventory.Service
	orders Service
	mem    *store.MemoryStore
}

func newFixture(t testingT) *fixture {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	mem := store.NewMemoryStore()
	items := inventory.NewService(mem, logger)
	return &fixture{
		items:  items,
		orders: NewService(items, mem, logger),
		mem:    mem,
	}
}

// arrangedItem creates an item whose min stock immediately arranges a reorder
// of `needed` at the location.
func (f *fixture) arrangedItem(t testingT, name string, needed int) *inventory.Item {
	t.Helper()
	item, err := f.items.CreateItem(context.Background(), inventory.CreateItemInput{
		Name:          name,
		ItemNumber:    "N-" + name,
		WholesalerID:  "w1",
		InitialStocks: []inventory.Stock{{LocationID: "warehouse", Quantity: 0}},
		MinStocks:     []inventory.Stock{{LocationID: "warehouse", Quantity: needed}},
	}, actor)
	require.NoError(t, err)
	rs := item.ReorderStatuses["warehouse"]
	require.NotNil(t, rs)
	require.Equal(t, inventory.ReorderArranged, rs.Status)
	return item
}

func TestOrderLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.arrangedItem(t, "Copper Pipe", 5)

	order, err := f.orders.CreateOrder(ctx, CreateOrderInput{
		WholesalerID:   "w1",
		WholesalerName: "Acme Supply",
		ItemIDs:        []string{item.ID},
		LocationID:     "warehouse",
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "PO1001", order.OrderNumber)
	assert.Equal(t, OrderDraft, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity, "line quantity comes from the arranged reorder")

	// The draft keeps the reorder arranged but records the association.
	got, err := f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, inventory.ReorderArranged, got.ReorderStatuses["warehouse"].Status)
	assert.Equal(t, order.ID, got.ReorderStatuses["warehouse"].OrderID)

	order, err = f.orders.ConfirmOrder(ctx, order.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, OrderOrdered, order.Status)

	got, err = f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	rs := got.ReorderStatuses["warehouse"]
	assert.Equal(t, inventory.ReorderOrdered, rs.Status)
	require.NotNil(t, rs.OrderedAt)

	// Partial delivery: 3 of 5.
	order, err = f.orders.ReceiveOrderItem(ctx, order.ID, item.ID, 3, false, actor)
	require.NoError(t, err)
	assert.Equal(t, OrderPartiallyReceived, order.Status)
	assert.Equal(t, ItemPending, order.Items[0].Status)

	got, err = f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockAt("warehouse"))
	assert.Equal(t, inventory.ReorderOrdered, got.ReorderStatuses["warehouse"].Status, "partial delivery keeps the reorder ordered")
	last := got.Changelog[len(got.Changelog)-1]
	assert.Equal(t, inventory.EntryIn, last.Type)
	assert.Equal(t, order.ID, last.OrderID)
	assert.Equal(t, "received from PO1001", last.Details)

	// Remainder arrives; order and reorder both close out.
	order, err = f.orders.ReceiveOrderItem(ctx, order.ID, item.ID, 2, false, actor)
	require.NoError(t, err)
	assert.Equal(t, OrderReceived, order.Status)
	assert.Equal(t, ItemReceived, order.Items[0].Status)

	got, err = f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockAt("warehouse"))
	assert.Nil(t, got.ReorderStatuses["warehouse"], "a fully received order releases the reorder")
}

func TestCreateOrderRequiresArrangedReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.items.CreateItem(ctx, inventory.CreateItemInput{
		Name:          "Loose Item",
		ItemNumber:    "L-1",
		WholesalerID:  "w1",
		InitialStocks: []inventory.Stock{{LocationID: "warehouse", Quantity: 10}},
	}, actor)
	require.NoError(t, err)

	_, err = f.orders.CreateOrder(ctx, CreateOrderInput{
		WholesalerID: "w1",
		ItemIDs:      []string{item.ID},
		LocationID:   "warehouse",
	}, actor)
	assert.ErrorIs(t, err, inventory.ErrReorderNotArranged)
}

func TestRemoveLastItemDeletesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.arrangedItem(t, "Copper Pipe", 5)

	order, err := f.orders.CreateOrder(ctx, CreateOrderInput{
		WholesalerID: "w1",
		ItemIDs:      []string{item.ID},
		LocationID:   "warehouse",
	}, actor)
	require.NoError(t, err)

	got, err := f.orders.RemoveItemFromDraftOrder(ctx, order.ID, item.ID, actor)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = f.orders.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	applied := f.mem.Applied()
	lastIntent := applied[len(applied)-2]
	assert.Equal(t, store.OpDelete, lastIntent.Op)
	assert.Equal(t, store.CollectionOrders, lastIntent.Collection)

	// The item no longer references the deleted order.
	itemNow, err := f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, itemNow.ReorderStatuses["warehouse"].OrderID)
}

func TestVehicleRequestCommissionFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	item, err := f.items.CreateItem(ctx, inventory.CreateItemInput{
		Name:          "Fuse Box",
		ItemNumber:    "F-1",
		WholesalerID:  "w1",
		InitialStocks: []inventory.Stock{{LocationID: "vehicle-1", Quantity: 0}},
		MinStocks:     []inventory.Stock{{LocationID: "vehicle-1", Quantity: 4}},
	}, actor)
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(ctx, CreateOrderInput{
		WholesalerID:   "w1",
		ItemIDs:        []string{item.ID},
		LocationID:     "vehicle-1",
		VehicleRequest: true,
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, "VR1001", order.OrderNumber)

	_, err = f.orders.ConfirmOrder(ctx, order.ID, actor)
	require.NoError(t, err)

	order, err = f.orders.ReceiveOrderItem(ctx, order.ID, item.ID, 4, true, actor)
	require.NoError(t, err)
	assert.Equal(t, OrderPartiallyCommissioned, order.Status)

	got, err := f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockAt("vehicle-1"), "commissioned goods are not vehicle stock yet")

	order, err = f.orders.LoadCommissionedItem(ctx, order.ID, item.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, OrderReceived, order.Status)

	got, err = f.items.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.StockAt("vehicle-1"))
	assert.Nil(t, got.ReorderStatuses["vehicle-1"])
}

func TestReceiveMatchedDelivery(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.arrangedItem(t, "Copper Pipe", 5)
	b := f.arrangedItem(t, "Sealing Tape", 2)

	order, err := f.orders.CreateOrder(ctx, CreateOrderInput{
		WholesalerID: "w1",
		ItemIDs:      []string{a.ID, b.ID},
		LocationID:   "warehouse",
	}, actor)
	require.NoError(t, err)
	_, err = f.orders.ConfirmOrder(ctx, order.ID, actor)
	require.NoError(t, err)

	// Short delivery is refused wholesale.
	_, err = f.orders.ReceiveMatchedDelivery(ctx, order.ID, []DeliveredItem{
		{ItemID: a.ID, Quantity: 5},
	}, actor)
	assert.ErrorIs(t, err, ErrUnmatchedDelivery)

	order, err = f.orders.ReceiveMatchedDelivery(ctx, order.ID, []DeliveredItem{
		{ItemID: a.ID, Quantity: 5},
		{ItemID: b.ID, Quantity: 2},
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, OrderReceived, order.Status)

	for id, want := range map[string]int{a.ID: 5, b.ID: 2} {
		got, err := f.items.GetItem(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.StockAt("warehouse"))
		assert.Nil(t, got.ReorderStatuses["warehouse"])
	}
}

// Booked receipts and item stock must agree no matter how a confirmed order
// is received.
func TestReceiptsMatchStockProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		ctx := context.Background()
		needed := rapid.IntRange(1, 20).Draw(rt, "needed")
		item := f.arrangedItem(rt, "Copper Pipe", needed)

		order, err := f.orders.CreateOrder(ctx, CreateOrderInput{
			WholesalerID: "w1",
			ItemIDs:      []string{item.ID},
			LocationID:   "warehouse",
		}, actor)
		if err != nil {
			rt.Fatalf("create order: %v", err)
		}
		if _, err := f.orders.ConfirmOrder(ctx, order.ID, actor); err != nil {
			rt.Fatalf("confirm: %v", err)
		}

		delivered := 0
		steps := rapid.IntRange(1, 5).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			qty := rapid.IntRange(1, 8).Draw(rt, "qty")
			if _, err := f.orders.ReceiveOrderItem(ctx, order.ID, item.ID, qty, false, actor); err != nil {
				rt.Fatalf("receive: %v", err)
			}
			delivered += qty
		}

		got, err := f.items.GetItem(ctx, item.ID)
		if err != nil {
			rt.Fatalf("get item: %v", err)
		}
		if stock := got.StockAt("warehouse"); stock != delivered {
			rt.Fatalf("stock %d, booked %d", stock, delivered)
		}

		final, err := f.orders.GetOrder(ctx, order.ID)
		if err != nil {
			rt.Fatalf("get order: %v", err)
		}
		if final.Items[0].ReceivedQuantity != delivered {
			rt.Fatalf("received quantity %d, booked %d", final.Items[0].ReceivedQuantity, delivered)
		}
	})
}
