package store

import (
	"context"
	"time"

	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// AccessEventRecord is one access decision to append to the log. The
// vehicle reference is resolved from Plate at write time.
type AccessEventRecord struct {
	Plate      string
	OccurredAt time.Time
	Allowed    bool
	Source     types.AccessSource
	Notes      string

	// RequireVehicle skips the append when Plate does not resolve to a
	// registered vehicle.
	RequireVehicle bool
}

// EventFilter bounds a listing by occurrence time. Both ends are inclusive;
// nil means unbounded.
type EventFilter struct {
	From *time.Time
	To   *time.Time
}

func (f EventFilter) Contains(t time.Time) bool {
	if f.From != nil && t.Before(*f.From) {
		return false
	}
	if f.To != nil && t.After(*f.To) {
		return false
	}
	return true
}

// AccessEventStore persists access decisions as an append-only log.
type AccessEventStore interface {
	// RecordEvent appends rec and returns the stored event. appended is
	// false only when RequireVehicle is set and the plate is unknown.
	RecordEvent(ctx context.Context, rec AccessEventRecord) (ev types.AccessEvent, appended bool, err error)

	// ListEvents returns events in the filter range, newest first, joined
	// with whatever vehicle and owner data still resolves.
	ListEvents(ctx context.Context, f EventFilter) ([]types.AccessReportRow, error)
}
