// internal/rental/domain.go
package rental

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMachineNotFound    = errors.New("machine not found")
	ErrMachineRented      = errors.New("machine is already rented")
	ErrMachineNotRented   = errors.New("machine is not rented")
	ErrMachineReserved    = errors.New("machine is reserved by someone else")
	ErrAlreadyReserved    = errors.New("user already holds a reservation for this machine")
	ErrReservationMissing = errors.New("reservation not found")
)

// RentalStatus is a machine's availability.
type RentalStatus string

const (
	StatusAvailable RentalStatus = "available"
	StatusRented    RentalStatus = "rented"
	StatusReserved  RentalStatus = "reserved"
)

// EventType classifies a rental history event.
type EventType string

const (
	EventRented               EventType = "rented"
	EventReturned             EventType = "returned"
	EventReserved             EventType = "reserved"
	EventReservationCancelled EventType = "reservation-cancelled"
)

// Reservation is a queued claim on a machine. Reservations are honored in
// order: only the holder of the oldest one may rent a reserved machine.
type Reservation struct {
	ID         uuid.UUID `json:"id" bson:"id"`
	UserID     string    `json:"user_id" bson:"user_id"`
	UserName   string    `json:"user_name" bson:"user_name"`
	ReservedAt time.Time `json:"reserved_at" bson:"reserved_at"`
}

// RentalEvent is one immutable record in a machine's history. It plays the
// same role for machines that the changelog plays for stock items.
type RentalEvent struct {
	ID       uuid.UUID `json:"id" bson:"id"`
	Seq      int       `json:"seq" bson:"seq"`
	Date     time.Time `json:"date" bson:"date"`
	UserID   string    `json:"user_id" bson:"user_id"`
	UserName string    `json:"user_name" bson:"user_name"`
	Type     EventType `json:"type" bson:"type"`
	Details  string    `json:"details,omitempty" bson:"details,omitempty"`
}

// Machine is a rentable tool. It carries no location stock; its state lives
// in the rental fields and their history.
type Machine struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	SerialNumber  string        `json:"serial_number,omitempty" bson:"serial_number,omitempty"`
	RentalStatus  RentalStatus  `json:"rental_status" bson:"rental_status"`
	RentedBy      string        `json:"rented_by,omitempty" bson:"rented_by,omitempty"`
	Reservations  []Reservation `json:"reservations,omitempty" bson:"reservations,omitempty"`
	RentalHistory []RentalEvent `json:"rental_history" bson:"rental_history"`
}

// Clone returns a deep copy of the machine.
func (m *Machine) Clone() *Machine {
	clone := *m
	clone.Reservations = append([]Reservation(nil), m.Reservations...)
	clone.RentalHistory = append([]RentalEvent(nil), m.RentalHistory...)
	return &clone
}

// Actor identifies the user an event is attributed to.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func appendEvent(m *Machine, eventType EventType, actor Actor, details string, now time.Time) RentalEvent {
	seq := 0
	for _, e := range m.RentalHistory {
		if e.Seq > seq {
			seq = e.Seq
		}
	}
	event := RentalEvent{
		ID:       uuid.New(),
		Seq:      seq + 1,
		Date:     now,
		UserID:   actor.ID,
		UserName: actor.Name,
		Type:     eventType,
		Details:  details,
	}
	m.RentalHistory = append(m.RentalHistory, event)
	return event
}

// Rent hands the machine to the actor. A reserved machine can only be rented
// by the holder of the oldest reservation, which is consumed by renting.
func Rent(m *Machine, actor Actor, now time.Time) error {
	if m.RentalStatus == StatusRented {
		return ErrMachineRented
	}
	if len(m.Reservations) > 0 && m.Reservations[0].UserID != actor.ID {
		return ErrMachineReserved
	}
	if len(m.Reservations) > 0 {
		m.Reservations = m.Reservations[1:]
	}

	m.RentalStatus = StatusRented
	m.RentedBy = actor.ID
	appendEvent(m, EventRented, actor, "", now)
	return nil
}

// Return releases the machine. With reservations pending it goes to
// reserved, otherwise back to available.
func Return(m *Machine, actor Actor, now time.Time) error {
	if m.RentalStatus != StatusRented {
		return ErrMachineNotRented
	}

	m.RentedBy = ""
	if len(m.Reservations) > 0 {
		m.RentalStatus = StatusReserved
	} else {
		m.RentalStatus = StatusAvailable
	}
	appendEvent(m, EventReturned, actor, "", now)
	return nil
}

// Reserve queues a claim. One reservation per user and machine.
func Reserve(m *Machine, actor Actor, now time.Time) error {
	for _, r := range m.Reservations {
		if r.UserID == actor.ID {
			return ErrAlreadyReserved
		}
	}

	m.Reservations = append(m.Reservations, Reservation{
		ID:         uuid.New(),
		UserID:     actor.ID,
		UserName:   actor.Name,
		ReservedAt: now,
	})
	if m.RentalStatus == StatusAvailable {
		m.RentalStatus = StatusReserved
	}
	appendEvent(m, EventReserved, actor, "", now)
	return nil
}

// CancelReservation withdraws the actor's reservation.
func CancelReservation(m *Machine, actor Actor, now time.Time) error {
	for idx, r := range m.Reservations {
		if r.UserID == actor.ID {
			m.Reservations = append(m.Reservations[:idx], m.Reservations[idx+1:]...)
			if m.RentalStatus == StatusReserved && len(m.Reservations) == 0 {
				m.RentalStatus = StatusAvailable
			}
			appendEvent(m, EventReservationCancelled, actor, "", now)
			return nil
		}
	}
	return ErrReservationMissing
}
