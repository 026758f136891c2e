package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	dbpkg "github.com/carbonaccess/plategate/internal/db"
	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

type AccessEventStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewAccessEventStore(db *sql.DB, writer *dbpkg.Worker) *AccessEventStore {
	return &AccessEventStore{db: db, writer: writer}
}

func (s *AccessEventStore) RecordEvent(ctx context.Context, rec store.AccessEventRecord) (types.AccessEvent, bool, error) {
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = time.Now().UTC()
	}
	if rec.Source == "" {
		rec.Source = types.SourceManual
	}

	ev := types.AccessEvent{
		Plate:      rec.Plate,
		OccurredAt: rec.OccurredAt.UTC().Truncate(time.Millisecond),
		Allowed:    rec.Allowed,
		Source:     rec.Source,
		Notes:      rec.Notes,
	}
	appended := false

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		// Resolve vehicle_id from the plate. Unknown plates store NULL.
		var vehicleID sql.NullInt64
		err := tx.QueryRowContext(ctx, `
SELECT id FROM vehicles WHERE plate = ?;
`, rec.Plate).Scan(&vehicleID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("RecordEvent resolve vehicle_id: %w", err)
		}
		if !vehicleID.Valid && rec.RequireVehicle {
			return nil
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO access_events(vehicle_id, plate, occurred_at, allowed, source, notes)
VALUES (?, ?, ?, ?, ?, ?);
`, vehicleID, ev.Plate, dbpkg.FormatTime(ev.OccurredAt), boolInt(ev.Allowed), string(ev.Source), ev.Notes)
		if err != nil {
			return fmt.Errorf("RecordEvent insert: %w", err)
		}

		if ev.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		if vehicleID.Valid {
			id := vehicleID.Int64
			ev.VehicleID = &id
		}
		appended = true
		return nil
	})
	if err != nil {
		return types.AccessEvent{}, false, err
	}
	if !appended {
		return types.AccessEvent{}, false, nil
	}
	return ev, true, nil
}

func (s *AccessEventStore) ListEvents(ctx context.Context, f store.EventFilter) ([]types.AccessReportRow, error) {
	q := `
SELECT a.id, a.vehicle_id, a.plate, a.occurred_at, a.allowed, a.source, a.notes,
       COALESCE(v.model, ''), COALESCE(v.brand, ''),
       COALESCE(e.name, ''), COALESCE(e.role, '')
FROM access_events a
LEFT JOIN vehicles v ON v.id = a.vehicle_id
LEFT JOIN employees e ON e.id = v.owner_id
WHERE 1 = 1`
	var args []any
	if f.From != nil {
		q += ` AND a.occurred_at >= ?`
		args = append(args, dbpkg.FormatTime(*f.From))
	}
	if f.To != nil {
		q += ` AND a.occurred_at <= ?`
		args = append(args, dbpkg.FormatTime(*f.To))
	}
	q += ` ORDER BY a.occurred_at DESC, a.id DESC;`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	defer rows.Close()

	var out []types.AccessReportRow
	for rows.Next() {
		var (
			row        types.AccessReportRow
			vehicleID  sql.NullInt64
			occurredAt string
			allowed    int
			source     string
		)
		if err := rows.Scan(
			&row.Event.ID, &vehicleID, &row.Event.Plate, &occurredAt, &allowed, &source, &row.Event.Notes,
			&row.VehicleModel, &row.VehicleBrand, &row.OwnerName, &row.OwnerRole,
		); err != nil {
			return nil, fmt.Errorf("ListEvents scan: %w", err)
		}

		if vehicleID.Valid {
			id := vehicleID.Int64
			row.Event.VehicleID = &id
		}
		row.Event.Allowed = allowed == 1
		row.Event.Source = types.AccessSource(source)
		if row.Event.OccurredAt, err = dbpkg.ParseTime(occurredAt); err != nil {
			return nil, fmt.Errorf("ListEvents event %d occurred_at: %w", row.Event.ID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
