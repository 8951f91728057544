// internal/rental/implementation.go
package rental

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stocknexus/internal/store"
)

// service implements the Service interface. Rental mutations touch only the
// rental fields, so persistence goes out as patches rather than full
// document replacements.
type service struct {
	mu         sync.RWMutex
	machines   map[string]*Machine
	dispatcher store.Dispatcher
	logger     *logrus.Logger
	now        func() time.Time
}

// NewService creates a new rental service instance.
func NewService(dispatcher store.Dispatcher, logger *logrus.Logger) Service {
	return &service{
		machines:   make(map[string]*Machine),
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) CreateMachine(ctx context.Context, name, serialNumber string) (*Machine, error) {
	machine := &Machine{
		ID:           uuid.NewString(),
		Name:         name,
		SerialNumber: serialNumber,
		RentalStatus: StatusAvailable,
	}

	s.mu.Lock()
	s.machines[machine.ID] = machine
	s.mu.Unlock()

	s.dispatcher.Dispatch(ctx, store.Upsert(store.CollectionMachines, machine.ID, machine.Clone()))
	return machine.Clone(), nil
}

func (s *service) GetMachine(_ context.Context, id string) (*Machine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	machine, ok := s.machines[id]
	if !ok {
		return nil, ErrMachineNotFound
	}
	return machine.Clone(), nil
}

func (s *service) ListMachines(_ context.Context) []*Machine {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Machine, 0, len(s.machines))
	for _, machine := range s.machines {
		out = append(out, machine.Clone())
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out
}

func (s *service) Rent(ctx context.Context, machineID string, actor Actor) (*Machine, error) {
	return s.mutate(ctx, machineID, func(m *Machine) error { return Rent(m, actor, s.now()) })
}

func (s *service) Return(ctx context.Context, machineID string, actor Actor) (*Machine, error) {
	return s.mutate(ctx, machineID, func(m *Machine) error { return Return(m, actor, s.now()) })
}

func (s *service) Reserve(ctx context.Context, machineID string, actor Actor) (*Machine, error) {
	return s.mutate(ctx, machineID, func(m *Machine) error { return Reserve(m, actor, s.now()) })
}

func (s *service) CancelReservation(ctx context.Context, machineID string, actor Actor) (*Machine, error) {
	return s.mutate(ctx, machineID, func(m *Machine) error { return CancelReservation(m, actor, s.now()) })
}

func (s *service) mutate(ctx context.Context, machineID string, fn func(*Machine) error) (*Machine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	machine, ok := s.machines[machineID]
	if !ok {
		return nil, ErrMachineNotFound
	}

	clone := machine.Clone()
	if err := fn(clone); err != nil {
		return nil, err
	}
	s.machines[machineID] = clone

	s.dispatcher.Dispatch(ctx, store.Patch(store.CollectionMachines, clone.ID, map[string]interface{}{
		"rental_status":  clone.RentalStatus,
		"rented_by":      clone.RentedBy,
		"reservations":   clone.Reservations,
		"rental_history": clone.RentalHistory,
	}))

	s.logger.WithFields(logrus.Fields{
		"module":    "rental",
		"machineId": clone.ID,
		"status":    string(clone.RentalStatus),
	}).Info("rental state changed")

	return clone.Clone(), nil
}
