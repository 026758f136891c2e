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

type VehicleStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVehicleStore(db *sql.DB, writer *dbpkg.Worker) *VehicleStore {
	return &VehicleStore{db: db, writer: writer}
}

// vehicleRecordQuery LEFT JOINs the owner so vehicles without one still
// resolve.
const vehicleRecordQuery = `
SELECT v.id, v.plate, v.model, v.brand, v.color, v.category, v.owner_id, v.created_at,
       e.id, e.name, e.role, e.tag_id, e.photo, e.active, e.created_at
FROM vehicles v
LEFT JOIN employees e ON e.id = v.owner_id`

func (s *VehicleStore) CreateVehicle(ctx context.Context, v types.Vehicle) (types.Vehicle, error) {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	v.CreatedAt = v.CreatedAt.UTC().Truncate(time.Millisecond)

	var ownerID any
	if v.OwnerID != nil {
		ownerID = *v.OwnerID
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM vehicles WHERE plate = ?;`, v.Plate,
		).Scan(&n); err != nil {
			return fmt.Errorf("CreateVehicle check plate: %w", err)
		}
		if n > 0 {
			return store.ErrDuplicatePlate
		}

		if v.OwnerID != nil {
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM employees WHERE id = ?;`, *v.OwnerID,
			).Scan(&n); err != nil {
				return fmt.Errorf("CreateVehicle check owner: %w", err)
			}
			if n == 0 {
				return store.ErrOwnerNotFound
			}
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO vehicles(plate, model, brand, color, owner_id, category, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`, v.Plate, v.Model, v.Brand, v.Color, ownerID, string(v.Category), dbpkg.FormatTime(v.CreatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicatePlate
			}
			return fmt.Errorf("CreateVehicle insert: %w", err)
		}

		v.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return types.Vehicle{}, err
	}
	return v, nil
}

func (s *VehicleStore) LookupVehicle(ctx context.Context, plate string) (types.VehicleRecord, bool, error) {
	row := s.db.QueryRowContext(ctx, vehicleRecordQuery+` WHERE v.plate = ?;`, plate)

	rec, err := scanVehicleRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.VehicleRecord{}, false, nil
	}
	if err != nil {
		return types.VehicleRecord{}, false, fmt.Errorf("LookupVehicle: %w", err)
	}
	return rec, true, nil
}

func (s *VehicleStore) ListVehicles(ctx context.Context) ([]types.VehicleRecord, error) {
	rows, err := s.db.QueryContext(ctx, vehicleRecordQuery+` ORDER BY v.id;`)
	if err != nil {
		return nil, fmt.Errorf("ListVehicles: %w", err)
	}
	defer rows.Close()

	var out []types.VehicleRecord
	for rows.Next() {
		rec, err := scanVehicleRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("ListVehicles scan: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanVehicleRecord(r rowScanner) (types.VehicleRecord, error) {
	var (
		v         types.Vehicle
		category  string
		ownerID   sql.NullInt64
		createdAt string

		empID        sql.NullInt64
		empName      sql.NullString
		empRole      sql.NullString
		empTag       sql.NullString
		empPhoto     []byte
		empActive    sql.NullInt64
		empCreatedAt sql.NullString
	)
	if err := r.Scan(
		&v.ID, &v.Plate, &v.Model, &v.Brand, &v.Color, &category, &ownerID, &createdAt,
		&empID, &empName, &empRole, &empTag, &empPhoto, &empActive, &empCreatedAt,
	); err != nil {
		return types.VehicleRecord{}, err
	}

	v.Category = types.VehicleCategory(category)
	if ownerID.Valid {
		id := ownerID.Int64
		v.OwnerID = &id
	}
	t, err := dbpkg.ParseTime(createdAt)
	if err != nil {
		return types.VehicleRecord{}, fmt.Errorf("vehicle %d created_at: %w", v.ID, err)
	}
	v.CreatedAt = t

	rec := types.VehicleRecord{Vehicle: v}
	if empID.Valid {
		owner := types.Employee{
			ID:     empID.Int64,
			Name:   empName.String,
			Role:   empRole.String,
			Photo:  empPhoto,
			Active: empActive.Int64 == 1,
		}
		if empTag.Valid {
			owner.TagID = &empTag.String
		}
		if empCreatedAt.Valid {
			if t, err := dbpkg.ParseTime(empCreatedAt.String); err == nil {
				owner.CreatedAt = t
			}
		}
		rec.Owner = &owner
	}
	return rec, nil
}
