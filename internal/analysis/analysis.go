// internal/analysis/analysis.go
package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stocknexus/internal/inventory"
)

// ItemSource is the read-only slice of the inventory service the engine
// consumes. Satisfied by inventory.Service.
type ItemSource interface {
	ListItems(ctx context.Context) []*inventory.Item
}

// Engine computes reports by replaying item changelogs. It never mutates
// anything and reads whole-item snapshots, so it can run concurrently with
// live stock changes.
type Engine struct {
	items ItemSource
}

func NewEngine(items ItemSource) *Engine {
	return &Engine{items: items}
}

// LocationStock is one (item, location) quantity in a yearly snapshot.
type LocationStock struct {
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	LocationID string `json:"location_id"`
	Quantity   int    `json:"quantity"`
}

// ItemMovement summarizes one item's stock development over a year.
type ItemMovement struct {
	ItemID     string `json:"item_id"`
	ItemName   string `json:"item_name"`
	StartStock int    `json:"start_stock"`
	EndStock   int    `json:"end_stock"`
	Change     int    `json:"change"`
}

// FastMover is an item ranked by outbound movement.
type FastMover struct {
	ItemID   string `json:"item_id"`
	ItemName string `json:"item_name"`
	Outbound int    `json:"outbound"`
}

// TurnoverStat relates outbound movement to average stock. The ratio is kept
// as a decimal since it is rarely integer-exact.
type TurnoverStat struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Rate     decimal.Decimal `json:"rate"`
}

// Data is a full yearly analysis for one location or all of them.
type Data struct {
	Year       int            `json:"year"`
	LocationID string         `json:"location_id,omitempty"`
	Items      []ItemMovement `json:"items"`
	SlowMovers []string       `json:"slow_movers"`
	FastMovers []FastMover    `json:"fast_movers"`
	Turnover   []TurnoverStat `json:"turnover"`
}

func yearWindow(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 23, 59, 59, 999999999, time.UTC)
	return start, end
}

// YearlyInventory reconstructs every (item, location) stock as of December 31
// of the given year.
func (e *Engine) YearlyInventory(ctx context.Context, year int) []LocationStock {
	_, end := yearWindow(year)

	var out []LocationStock
	for _, item := range e.items.ListItems(ctx) {
		for _, s := range item.Stocks {
			out = append(out, LocationStock{
				ItemID:     item.ID,
				ItemName:   item.Name,
				LocationID: s.LocationID,
				Quantity:   inventory.ReconstructAt(item, end, s.LocationID),
			})
		}
	}
	return out
}

// AnalysisData computes per-item start/end/change, slow movers (no movement
// at all inside the year) and fast movers (most outbound quantity), for one
// location or, with an empty locationID, across all of them.
func (e *Engine) AnalysisData(ctx context.Context, year int, locationID string) *Data {
	start, end := yearWindow(year)
	data := &Data{Year: year, LocationID: locationID}

	for _, item := range e.items.ListItems(ctx) {
		startStock := inventory.ReconstructAt(item, start, locationID)
		endStock := inventory.ReconstructAt(item, end, locationID)
		data.Items = append(data.Items, ItemMovement{
			ItemID:     item.ID,
			ItemName:   item.Name,
			StartStock: startStock,
			EndStock:   endStock,
			Change:     endStock - startStock,
		})

		entries := inventory.EntriesInWindow(item, start, end, locationID)
		if len(entries) == 0 {
			data.SlowMovers = append(data.SlowMovers, item.ID)
			continue
		}

		outbound := outboundQuantity(entries, locationID)
		if outbound > 0 {
			data.FastMovers = append(data.FastMovers, FastMover{
				ItemID:   item.ID,
				ItemName: item.Name,
				Outbound: outbound,
			})
			data.Turnover = append(data.Turnover, TurnoverStat{
				ItemID:   item.ID,
				ItemName: item.Name,
				Rate:     turnoverRate(outbound, startStock, endStock),
			})
		}
	}

	sort.Slice(data.FastMovers, func(a, b int) bool {
		return data.FastMovers[a].Outbound > data.FastMovers[b].Outbound
	})
	return data
}

// outboundQuantity sums stock leaving the scope. For a single location,
// transfers away from it count; across all locations transfers are internal
// moves and only true outs count.
func outboundQuantity(entries []inventory.ChangeLogEntry, locationID string) int {
	total := 0
	for _, e := range entries {
		switch e.Type {
		case inventory.EntryOut:
			total += e.Quantity
		case inventory.EntryTransfer:
			if locationID != "" && e.FromLocationID == locationID {
				total += e.Quantity
			}
		}
	}
	return total
}

func turnoverRate(outbound, startStock, endStock int) decimal.Decimal {
	avg := decimal.NewFromInt(int64(startStock + endStock)).Div(decimal.NewFromInt(2))
	if avg.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(outbound)).Div(avg).Round(4)
}
