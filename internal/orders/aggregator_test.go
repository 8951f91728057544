package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderTime = time.Date(2026, time.April, 2, 9, 30, 0, 0, time.UTC)

func draftOrder(t *testing.T, lines ...OrderLine) *Order {
	t.Helper()
	order, err := BuildOrder("o1", "PO1001", "w1", "Acme Supply", "", false, lines, "Test User", orderTime)
	require.NoError(t, err)
	return order
}

func line(itemID string, quantity int) OrderLine {
	return OrderLine{
		ItemID:     itemID,
		ItemName:   "Item " + itemID,
		ItemNumber: "N-" + itemID,
		Quantity:   quantity,
		LocationID: "warehouse",
	}
}

func TestBuildOrder(t *testing.T) {
	order := draftOrder(t, line("a", 5), line("b", 2))

	assert.Equal(t, OrderDraft, order.Status)
	assert.Equal(t, "PO1001", order.OrderNumber)
	assert.Equal(t, orderTime, order.Date)
	require.Len(t, order.Items, 2)
	assert.Equal(t, ItemPending, order.Items[0].Status)
	assert.Equal(t, 0, order.Items[0].ReceivedQuantity)
}

func TestBuildOrderRequiresLines(t *testing.T) {
	_, err := BuildOrder("o1", "PO1001", "w1", "Acme Supply", "", false, nil, "Test User", orderTime)
	assert.ErrorIs(t, err, ErrNoItems)
}

func TestBuildOrderRejectsNonPositiveQuantity(t *testing.T) {
	_, err := BuildOrder("o1", "PO1001", "w1", "Acme Supply", "", false, []OrderLine{line("a", 0)}, "Test User", orderTime)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAddLinesMergesExistingItem(t *testing.T) {
	order := draftOrder(t, line("a", 5))

	require.NoError(t, AddLines(order, []OrderLine{line("a", 3), line("b", 1)}))

	require.Len(t, order.Items, 2)
	assert.Equal(t, 8, order.Items[0].Quantity, "same item must merge quantities, not duplicate the line")
	assert.Equal(t, 1, order.Items[1].Quantity)
}

func TestAddLinesRequiresDraft(t *testing.T) {
	order := draftOrder(t, line("a", 5))
	require.NoError(t, Confirm(order, "Test User", orderTime))

	err := AddLines(order, []OrderLine{line("b", 1)})
	assert.ErrorIs(t, err, ErrDraftOrderRequired)
}

func TestConfirm(t *testing.T) {
	order := draftOrder(t, line("a", 5))

	require.NoError(t, Confirm(order, "Test User", orderTime))
	assert.Equal(t, OrderOrdered, order.Status)
	require.NotNil(t, order.ConfirmedAt)
	assert.Equal(t, orderTime, *order.ConfirmedAt)
	assert.Equal(t, "Test User", order.ConfirmedBy)

	assert.ErrorIs(t, Confirm(order, "Test User", orderTime), ErrDraftOrderRequired)
}

func TestRemoveLine(t *testing.T) {
	order := draftOrder(t, line("a", 5), line("b", 2))

	empty, err := RemoveLine(order, "a")
	require.NoError(t, err)
	assert.False(t, empty)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "b", order.Items[0].ItemID)

	empty, err = RemoveLine(order, "b")
	require.NoError(t, err)
	assert.True(t, empty, "removing the last line must signal order deletion")
}

func TestRemoveLineErrors(t *testing.T) {
	order := draftOrder(t, line("a", 5))

	_, err := RemoveLine(order, "missing")
	assert.ErrorIs(t, err, ErrOrderItemNotFound)

	require.NoError(t, Confirm(order, "Test User", orderTime))
	_, err = RemoveLine(order, "a")
	assert.ErrorIs(t, err, ErrDraftOrderRequired)
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "PO1001", FormatOrderNumber(false, 0))
	assert.Equal(t, "PO1004", FormatOrderNumber(false, 3))
	assert.Equal(t, "VR1001", FormatOrderNumber(true, 0))
}
