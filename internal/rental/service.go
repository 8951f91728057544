// internal/rental/service.go
package rental

import "context"

// Service defines the interface for the machine rental service.
type Service interface {
	CreateMachine(ctx context.Context, name, serialNumber string) (*Machine, error)
	GetMachine(ctx context.Context, id string) (*Machine, error)
	ListMachines(ctx context.Context) []*Machine

	Rent(ctx context.Context, machineID string, actor Actor) (*Machine, error)
	Return(ctx context.Context, machineID string, actor Actor) (*Machine, error)
	Reserve(ctx context.Context, machineID string, actor Actor) (*Machine, error)
	CancelReservation(ctx context.Context, machineID string, actor Actor) (*Machine, error)
}
