// internal/inventory/changelog.go
package inventory

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// appendEntry stamps an id and the next sequence number and attaches the
// entry to the item's changelog. Entries are never edited or removed once
// appended.
func appendEntry(item *Item, entry ChangeLogEntry) ChangeLogEntry {
	entry.ID = uuid.New()
	entry.Seq = nextSeq(item)
	item.Changelog = append(item.Changelog, entry)
	return entry
}

func nextSeq(item *Item) int {
	max := 0
	for _, e := range item.Changelog {
		if e.Seq > max {
			max = e.Seq
		}
	}
	return max + 1
}

// ReconstructAt replays the changelog up to and including the cutoff and
// returns the stock that existed then. With locationID empty, the sum across
// all locations is returned.
func ReconstructAt(item *Item, cutoff time.Time, locationID string) int {
	entries := make([]ChangeLogEntry, 0, len(item.Changelog))
	for _, e := range item.Changelog {
		if !e.Date.After(cutoff) {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].Date.Equal(entries[b].Date) {
			return entries[a].Seq < entries[b].Seq
		}
		return entries[a].Date.Before(entries[b].Date)
	})

	totals := make(map[string]int)
	for _, e := range entries {
		switch e.Type {
		case EntryInitial:
			totals[e.LocationID] = e.Quantity
		case EntryIn, EntryReceived:
			totals[e.LocationID] += e.Quantity
		case EntryOut:
			totals[e.LocationID] -= e.Quantity
		case EntryInventory:
			if e.NewStock != nil {
				totals[e.LocationID] = *e.NewStock
			}
		case EntryTransfer:
			totals[e.FromLocationID] -= e.Quantity
			totals[e.ToLocationID] += e.Quantity
		}
		// Remaining types are informational and do not move stock.
	}

	if locationID != "" {
		return totals[locationID]
	}
	sum := 0
	for _, qty := range totals {
		sum += qty
	}
	return sum
}

// EntriesInWindow returns the changelog entries whose date falls in
// [from, to], optionally restricted to one location. Transfer entries match
// either endpoint of the move.
func EntriesInWindow(item *Item, from, to time.Time, locationID string) []ChangeLogEntry {
	var entries []ChangeLogEntry
	for _, e := range item.Changelog {
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		if locationID != "" && !entryTouchesLocation(e, locationID) {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func entryTouchesLocation(e ChangeLogEntry, locationID string) bool {
	return e.LocationID == locationID ||
		e.FromLocationID == locationID ||
		e.ToLocationID == locationID
}
