package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// Registry is an in-memory employee and vehicle store.
// It is intended for use in tests and dev environments.
type Registry struct {
	mu        sync.RWMutex
	employees map[int64]types.Employee
	vehicles  map[string]types.Vehicle // keyed by plate
	nextEmp   int64
	nextVeh   int64
}

func NewRegistry() *Registry {
	return &Registry{
		employees: make(map[int64]types.Employee),
		vehicles:  make(map[string]types.Vehicle),
	}
}

func (r *Registry) CreateEmployee(_ context.Context, e types.Employee) (types.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.TagID != nil {
		for _, other := range r.employees {
			if other.TagID != nil && *other.TagID == *e.TagID {
				return types.Employee{}, store.ErrDuplicateTagID
			}
		}
	}

	r.nextEmp++
	e.ID = r.nextEmp
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.employees[e.ID] = cloneEmployee(e)
	return e, nil
}

func (r *Registry) GetEmployee(_ context.Context, id int64) (types.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.employees[id]
	if !ok {
		return types.Employee{}, store.ErrNotFound
	}
	return cloneEmployee(e), nil
}

func (r *Registry) ListEmployees(_ context.Context, includeInactive bool) ([]types.Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.Employee, 0, len(r.employees))
	for _, e := range r.employees {
		if e.Active || includeInactive {
			out = append(out, cloneEmployee(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Registry) SetEmployeeActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.employees[id]
	if !ok {
		return store.ErrNotFound
	}
	e.Active = active
	r.employees[id] = e
	return nil
}

func (r *Registry) CreateVehicle(_ context.Context, v types.Vehicle) (types.Vehicle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.vehicles[v.Plate]; exists {
		return types.Vehicle{}, store.ErrDuplicatePlate
	}
	if v.OwnerID != nil {
		if _, ok := r.employees[*v.OwnerID]; !ok {
			return types.Vehicle{}, store.ErrOwnerNotFound
		}
	}

	r.nextVeh++
	v.ID = r.nextVeh
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	r.vehicles[v.Plate] = v
	return v, nil
}

func (r *Registry) LookupVehicle(_ context.Context, plate string) (types.VehicleRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.vehicles[plate]
	if !ok {
		return types.VehicleRecord{}, false, nil
	}
	return r.recordLocked(v), true, nil
}

func (r *Registry) ListVehicles(_ context.Context) ([]types.VehicleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.VehicleRecord, 0, len(r.vehicles))
	for _, v := range r.vehicles {
		out = append(out, r.recordLocked(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Vehicle.ID < out[j].Vehicle.ID })
	return out, nil
}

func (r *Registry) recordLocked(v types.Vehicle) types.VehicleRecord {
	rec := types.VehicleRecord{Vehicle: v}
	if v.OwnerID != nil {
		if e, ok := r.employees[*v.OwnerID]; ok {
			owner := cloneEmployee(e)
			rec.Owner = &owner
		}
	}
	return rec
}

// vehicleByID is used by AccessEventStore to join report rows.
func (r *Registry) vehicleByID(id int64) (types.VehicleRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, v := range r.vehicles {
		if v.ID == id {
			return r.recordLocked(v), true
		}
	}
	return types.VehicleRecord{}, false
}

// cloneEmployee copies the photo and tag so callers never share them with
// the stored employee.
func cloneEmployee(e types.Employee) types.Employee {
	e.Photo = bytes.Clone(e.Photo)
	if e.TagID != nil {
		tag := *e.TagID
		e.TagID = &tag
	}
	return e
}
