package store

import (
	"context"
	"errors"

	"github.com/carbonaccess/plategate/internal/plategate/types"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateTagID = errors.New("duplicate tag id")
	ErrDuplicatePlate = errors.New("duplicate plate")
	ErrOwnerNotFound  = errors.New("owner not found")
)

// EmployeeStore persists employees. Employees are never deleted, only
// deactivated.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, e types.Employee) (types.Employee, error)
	GetEmployee(ctx context.Context, id int64) (types.Employee, error)
	ListEmployees(ctx context.Context, includeInactive bool) ([]types.Employee, error)
	SetEmployeeActive(ctx context.Context, id int64, active bool) error
}

// VehicleStore persists vehicles. Plates are stored in canonical form and
// looked up by exact match.
type VehicleStore interface {
	CreateVehicle(ctx context.Context, v types.Vehicle) (types.Vehicle, error)
	LookupVehicle(ctx context.Context, plate string) (types.VehicleRecord, bool, error)
	ListVehicles(ctx context.Context) ([]types.VehicleRecord, error)
}
