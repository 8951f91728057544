package inventory

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocknexus/internal/store"
)

func newTestService(t *testing.T) (Service, *store.MemoryStore) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	mem := store.NewMemoryStore()
	return NewService(mem, logger), mem
}

func TestServiceCreateItemEvaluatesReorders(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{
		Name:          "Sealing Tape",
		ItemNumber:    "ST-1",
		WholesalerID:  "w1",
		InitialStocks: []Stock{{LocationID: "warehouse", Quantity: 2}},
		MinStocks:     []Stock{{LocationID: "warehouse", Quantity: 6}},
	}, testActor)
	require.NoError(t, err)

	rs := item.ReorderStatuses["warehouse"]
	require.NotNil(t, rs)
	assert.Equal(t, ReorderArranged, rs.Status)
	assert.Equal(t, 4, rs.Quantity)

	applied := mem.Applied()
	require.NotEmpty(t, applied)
	assert.Equal(t, store.OpUpsert, applied[0].Op)
	assert.Equal(t, store.CollectionItems, applied[0].Collection)
	assert.Equal(t, item.ID, applied[0].ID)
}

func TestServiceFailedMutationLeavesStateUntouched(t *testing.T) {
	svc, mem := newTestService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{
		Name:          "Sealing Tape",
		ItemNumber:    "ST-1",
		InitialStocks: []Stock{{LocationID: "warehouse", Quantity: 2}},
	}, testActor)
	require.NoError(t, err)
	writesBefore := len(mem.Applied())

	_, err = svc.ApplyStockChange(ctx, item.ID, "warehouse", EntryOut, 5, testActor)
	require.ErrorIs(t, err, ErrInsufficientStock)

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StockAt("warehouse"))
	assert.Len(t, got.Changelog, len(item.Changelog))
	assert.Len(t, mem.Applied(), writesBefore, "a refused change must not be persisted")
}

func TestServiceUnknownItem(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.ApplyStockChange(ctx, "missing", "warehouse", EntryIn, 1, testActor)
	assert.ErrorIs(t, err, ErrItemNotFound)

	_, err = svc.StockAt(ctx, "missing", baseTime, "")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestServiceCancelArrangedByWholesaler(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B"} {
		_, err := svc.CreateItem(ctx, CreateItemInput{
			Name:          name,
			ItemNumber:    name,
			WholesalerID:  "w1",
			InitialStocks: []Stock{{LocationID: "vehicle-1", Quantity: 0}},
			MinStocks:     []Stock{{LocationID: "vehicle-1", Quantity: 3}},
		}, testActor)
		require.NoError(t, err)
	}
	other, err := svc.CreateItem(ctx, CreateItemInput{
		Name:          "C",
		ItemNumber:    "C",
		WholesalerID:  "w2",
		InitialStocks: []Stock{{LocationID: "vehicle-1", Quantity: 0}},
		MinStocks:     []Stock{{LocationID: "vehicle-1", Quantity: 3}},
	}, testActor)
	require.NoError(t, err)

	cancelled, err := svc.CancelArrangedByWholesaler(ctx, "w1", "vehicle-1", testActor)
	require.NoError(t, err)
	assert.Equal(t, 2, cancelled)

	for _, item := range svc.ListItems(ctx) {
		if item.ID == other.ID {
			assert.NotNil(t, item.ReorderStatuses["vehicle-1"], "other wholesaler's reorder must survive")
		} else {
			assert.Nil(t, item.ReorderStatuses["vehicle-1"])
		}
	}
}

func TestServiceRecordLabelPrinted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, CreateItemInput{Name: "A", ItemNumber: "A"}, testActor)
	require.NoError(t, err)

	require.NoError(t, svc.RecordLabelPrinted(ctx, item.ID, testActor))

	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, got.Changelog, 1)
	assert.Equal(t, EntryLabelPrinted, got.Changelog[0].Type)
}
