package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = Actor{ID: "u-alice", Name: "Alice"}
	bob   = Actor{ID: "u-bob", Name: "Bob"}
	carol = Actor{ID: "u-carol", Name: "Carol"}

	rentTime = time.Date(2026, time.May, 4, 8, 0, 0, 0, time.UTC)
)

func testMachine() *Machine {
	return &Machine{ID: "m1", Name: "Core Drill", RentalStatus: StatusAvailable}
}

func TestRentAndReturn(t *testing.T) {
	m := testMachine()

	require.NoError(t, Rent(m, alice, rentTime))
	assert.Equal(t, StatusRented, m.RentalStatus)
	assert.Equal(t, alice.ID, m.RentedBy)

	assert.ErrorIs(t, Rent(m, bob, rentTime), ErrMachineRented)

	require.NoError(t, Return(m, alice, rentTime))
	assert.Equal(t, StatusAvailable, m.RentalStatus)
	assert.Empty(t, m.RentedBy)

	assert.ErrorIs(t, Return(m, alice, rentTime), ErrMachineNotRented)

	require.Len(t, m.RentalHistory, 2)
	assert.Equal(t, EventRented, m.RentalHistory[0].Type)
	assert.Equal(t, EventReturned, m.RentalHistory[1].Type)
	assert.Less(t, m.RentalHistory[0].Seq, m.RentalHistory[1].Seq)
}

func TestReservationQueueOrder(t *testing.T) {
	m := testMachine()

	require.NoError(t, Rent(m, alice, rentTime))
	require.NoError(t, Reserve(m, bob, rentTime))
	require.NoError(t, Reserve(m, carol, rentTime))
	assert.ErrorIs(t, Reserve(m, bob, rentTime), ErrAlreadyReserved)

	require.NoError(t, Return(m, alice, rentTime))
	assert.Equal(t, StatusReserved, m.RentalStatus)

	// Carol is second in line and must wait for Bob.
	assert.ErrorIs(t, Rent(m, carol, rentTime), ErrMachineReserved)

	require.NoError(t, Rent(m, bob, rentTime))
	assert.Equal(t, StatusRented, m.RentalStatus)
	require.Len(t, m.Reservations, 1, "renting consumes the holder's reservation")
	assert.Equal(t, carol.ID, m.Reservations[0].UserID)
}

func TestReserveAvailableMachine(t *testing.T) {
	m := testMachine()

	require.NoError(t, Reserve(m, bob, rentTime))
	assert.Equal(t, StatusReserved, m.RentalStatus)

	// The holder may rent straight away.
	require.NoError(t, Rent(m, bob, rentTime))
	assert.Empty(t, m.Reservations)
}

func TestCancelReservation(t *testing.T) {
	m := testMachine()

	require.NoError(t, Reserve(m, bob, rentTime))
	require.NoError(t, Reserve(m, carol, rentTime))

	require.NoError(t, CancelReservation(m, bob, rentTime))
	assert.Equal(t, StatusReserved, m.RentalStatus, "a remaining reservation keeps the machine reserved")
	require.Len(t, m.Reservations, 1)
	assert.Equal(t, carol.ID, m.Reservations[0].UserID)

	require.NoError(t, CancelReservation(m, carol, rentTime))
	assert.Equal(t, StatusAvailable, m.RentalStatus)

	assert.ErrorIs(t, CancelReservation(m, carol, rentTime), ErrReservationMissing)
}

func TestCancelReservationLeavesRentedStatus(t *testing.T) {
	m := testMachine()

	require.NoError(t, Rent(m, alice, rentTime))
	require.NoError(t, Reserve(m, bob, rentTime))
	require.NoError(t, CancelReservation(m, bob, rentTime))

	assert.Equal(t, StatusRented, m.RentalStatus)
}
