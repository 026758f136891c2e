package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// AccessEventStore is an in-memory append-only log of access decisions.
// It resolves vehicle references against reg. It is intended for use in
// tests and dev environments.
type AccessEventStore struct {
	reg *Registry

	mu     sync.Mutex
	events []types.AccessEvent
}

func NewAccessEventStore(reg *Registry) *AccessEventStore {
	return &AccessEventStore{reg: reg}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) (types.AccessEvent, bool, error) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	if rec.Source == "" {
		rec.Source = types.SourceManual
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var vehicleID *int64
	if s.reg != nil {
		vr, ok, err := s.reg.LookupVehicle(ctx, rec.Plate)
		if err != nil {
			return types.AccessEvent{}, false, err
		}
		if ok {
			id := vr.Vehicle.ID
			vehicleID = &id
		}
	}
	if vehicleID == nil && rec.RequireVehicle {
		return types.AccessEvent{}, false, nil
	}

	ev := types.AccessEvent{
		ID:         int64(len(s.events) + 1),
		VehicleID:  vehicleID,
		Plate:      rec.Plate,
		OccurredAt: rec.OccurredAt.UTC().Truncate(time.Millisecond),
		Allowed:    rec.Allowed,
		Source:     rec.Source,
		Notes:      rec.Notes,
	}
	s.events = append(s.events, ev)
	return ev, true, nil
}

func (s *AccessEventStore) ListEvents(_ context.Context, f store.EventFilter) ([]types.AccessReportRow, error) {
	events := s.Events()

	out := make([]types.AccessReportRow, 0, len(events))
	for _, ev := range events {
		if !f.Contains(ev.OccurredAt) {
			continue
		}
		row := types.AccessReportRow{Event: ev}
		if ev.VehicleID != nil && s.reg != nil {
			if vr, ok := s.reg.vehicleByID(*ev.VehicleID); ok {
				row.VehicleModel = vr.Vehicle.Model
				row.VehicleBrand = vr.Vehicle.Brand
				if vr.Owner != nil {
					row.OwnerName = vr.Owner.Name
					row.OwnerRole = vr.Owner.Role
				}
			}
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Event, out[j].Event
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.After(b.OccurredAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

// Events returns a copy of all recorded events in append order. Test-only
// helper.
func (s *AccessEventStore) Events() []types.AccessEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.AccessEvent, len(s.events))
	copy(out, s.events)
	return out
}
