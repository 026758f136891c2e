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

type EmployeeStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewEmployeeStore(db *sql.DB, writer *dbpkg.Worker) *EmployeeStore {
	return &EmployeeStore{db: db, writer: writer}
}

const employeeColumns = `id, name, role, tag_id, photo, active, created_at`

func (s *EmployeeStore) CreateEmployee(ctx context.Context, e types.Employee) (types.Employee, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Millisecond)

	var tagID any
	if e.TagID != nil {
		tagID = *e.TagID
	}
	var photo any
	if len(e.Photo) > 0 {
		photo = e.Photo
	}

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if e.TagID != nil {
			var n int
			if err := tx.QueryRowContext(ctx,
				`SELECT COUNT(*) FROM employees WHERE tag_id = ?;`, *e.TagID,
			).Scan(&n); err != nil {
				return fmt.Errorf("CreateEmployee check tag: %w", err)
			}
			if n > 0 {
				return store.ErrDuplicateTagID
			}
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO employees(name, role, tag_id, photo, active, created_at)
VALUES (?, ?, ?, ?, ?, ?);
`, e.Name, e.Role, tagID, photo, boolInt(e.Active), dbpkg.FormatTime(e.CreatedAt))
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrDuplicateTagID
			}
			return fmt.Errorf("CreateEmployee insert: %w", err)
		}

		e.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return types.Employee{}, err
	}
	return e, nil
}

func (s *EmployeeStore) GetEmployee(ctx context.Context, id int64) (types.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?;`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Employee{}, store.ErrNotFound
	}
	if err != nil {
		return types.Employee{}, fmt.Errorf("GetEmployee: %w", err)
	}
	return e, nil
}

func (s *EmployeeStore) ListEmployees(ctx context.Context, includeInactive bool) ([]types.Employee, error) {
	q := `SELECT ` + employeeColumns + ` FROM employees`
	if !includeInactive {
		q += ` WHERE active = 1`
	}
	q += ` ORDER BY id;`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("ListEmployees: %w", err)
	}
	defer rows.Close()

	var out []types.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("ListEmployees scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *EmployeeStore) SetEmployeeActive(ctx context.Context, id int64, active bool) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE employees SET active = ? WHERE id = ?;`, boolInt(active), id)
		if err != nil {
			return fmt.Errorf("SetEmployeeActive: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return store.ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(r rowScanner) (types.Employee, error) {
	var (
		e         types.Employee
		tagID     sql.NullString
		active    int
		createdAt string
	)
	if err := r.Scan(&e.ID, &e.Name, &e.Role, &tagID, &e.Photo, &active, &createdAt); err != nil {
		return types.Employee{}, err
	}
	if tagID.Valid {
		e.TagID = &tagID.String
	}
	e.Active = active == 1

	t, err := dbpkg.ParseTime(createdAt)
	if err != nil {
		return types.Employee{}, fmt.Errorf("employee %d created_at: %w", e.ID, err)
	}
	e.CreatedAt = t
	return e, nil
}
