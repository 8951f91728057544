package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocknexus/internal/inventory"
)

var reporter = inventory.Actor{ID: "u1", Name: "Test User"}

type staticSource struct {
	items []*inventory.Item
}

func (s *staticSource) ListItems(context.Context) []*inventory.Item {
	return s.items
}

func seeded(id, name string, seededAt time.Time, stocks ...inventory.Stock) *inventory.Item {
	item := &inventory.Item{ID: id, Name: name}
	inventory.SeedInitialStock(item, stocks, reporter, seededAt)
	return item
}

func mustChange(t *testing.T, item *inventory.Item, locationID string, kind inventory.EntryType, qty int, at time.Time) {
	t.Helper()
	_, err := inventory.ApplyStockChange(item, locationID, kind, qty, reporter, at)
	require.NoError(t, err)
}

func TestAnalysisData(t *testing.T) {
	pipe := seeded("pipe", "Copper Pipe", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		inventory.Stock{LocationID: "warehouse", Quantity: 10})
	mustChange(t, pipe, "warehouse", inventory.EntryOut, 4, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC))
	mustChange(t, pipe, "warehouse", inventory.EntryIn, 2, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	mustChange(t, pipe, "warehouse", inventory.EntryOut, 1, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))

	tape := seeded("tape", "Sealing Tape", time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		inventory.Stock{LocationID: "warehouse", Quantity: 5})

	dusty := seeded("dusty", "Dusty Widget", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		inventory.Stock{LocationID: "warehouse", Quantity: 3})

	engine := NewEngine(&staticSource{items: []*inventory.Item{pipe, tape, dusty}})
	data := engine.AnalysisData(context.Background(), 2026, "")

	assert.Equal(t, 2026, data.Year)
	require.Len(t, data.Items, 3)
	byID := make(map[string]ItemMovement)
	for _, m := range data.Items {
		byID[m.ItemID] = m
	}
	assert.Equal(t, ItemMovement{ItemID: "pipe", ItemName: "Copper Pipe", StartStock: 10, EndStock: 7, Change: -3}, byID["pipe"])
	assert.Equal(t, ItemMovement{ItemID: "tape", ItemName: "Sealing Tape", StartStock: 0, EndStock: 5, Change: 5}, byID["tape"])
	assert.Equal(t, ItemMovement{ItemID: "dusty", ItemName: "Dusty Widget", StartStock: 3, EndStock: 3, Change: 0}, byID["dusty"])

	assert.Equal(t, []string{"dusty"}, data.SlowMovers, "no movement inside the year makes a slow mover")

	require.Len(t, data.FastMovers, 1)
	assert.Equal(t, FastMover{ItemID: "pipe", ItemName: "Copper Pipe", Outbound: 5}, data.FastMovers[0])

	require.Len(t, data.Turnover, 1)
	// 5 outbound over an average stock of (10+7)/2.
	assert.True(t, data.Turnover[0].Rate.Equal(decimal.RequireFromString("0.5882")),
		"got %s", data.Turnover[0].Rate)
}

func TestAnalysisDataTransfersCountPerLocationOnly(t *testing.T) {
	valve := seeded("valve", "Valve", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		inventory.Stock{LocationID: "warehouse", Quantity: 10})
	_, err := inventory.Transfer(valve, "warehouse", "vehicle-1", 4, reporter,
		time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	engine := NewEngine(&staticSource{items: []*inventory.Item{valve}})

	warehouse := engine.AnalysisData(context.Background(), 2026, "warehouse")
	require.Len(t, warehouse.FastMovers, 1)
	assert.Equal(t, 4, warehouse.FastMovers[0].Outbound, "a transfer away counts as outbound for its source location")

	all := engine.AnalysisData(context.Background(), 2026, "")
	assert.Empty(t, all.FastMovers, "across all locations a transfer is an internal move")
	assert.Empty(t, all.SlowMovers, "the transfer still counts as movement")
}

func TestYearlyInventory(t *testing.T) {
	valve := seeded("valve", "Valve", time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
		inventory.Stock{LocationID: "warehouse", Quantity: 10})
	_, err := inventory.Transfer(valve, "warehouse", "vehicle-1", 4, reporter,
		time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// Movement in a later year must not leak into the snapshot.
	mustChange(t, valve, "warehouse", inventory.EntryOut, 2, time.Date(2027, time.January, 5, 0, 0, 0, 0, time.UTC))

	engine := NewEngine(&staticSource{items: []*inventory.Item{valve}})
	snapshot := engine.YearlyInventory(context.Background(), 2026)

	byLocation := make(map[string]int)
	for _, s := range snapshot {
		byLocation[s.LocationID] = s.Quantity
	}
	assert.Equal(t, 6, byLocation["warehouse"])
	assert.Equal(t, 4, byLocation["vehicle-1"])
}

func TestTurnoverRateZeroAverage(t *testing.T) {
	assert.True(t, turnoverRate(3, 0, 0).IsZero())
}
