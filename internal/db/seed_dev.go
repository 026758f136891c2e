package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type seedEmployee struct {
	tagID string
	name  string
	role  string
}

type seedVehicle struct {
	plate    string
	model    string
	brand    string
	color    string
	category string
	ownerTag string // "" for no owner
}

var (
	devEmployees = []seedEmployee{
		{"TAG-0001", "Ana Souza", "Director"},
		{"TAG-0002", "Bruno Lima", "Manager"},
		{"TAG-0003", "Carla Mendes", "Analyst"},
	}
	devVehicles = []seedVehicle{
		{"ABC1D23", "Corolla", "Toyota", "Black", "Director", "TAG-0001"},
		{"BRA2E19", "Onix", "Chevrolet", "White", "Manager", "TAG-0002"},
		{"KLM4567", "Gol", "Volkswagen", "Silver", "Employee", "TAG-0003"},
		{"VIS0T01", "Kicks", "Nissan", "Red", "Visitor", ""},
	}
)

// SeedDev inserts a few employees and vehicles for local testing. It is
// idempotent: rows keyed by tag id or plate that already exist are left
// alone.
func SeedDev(ctx context.Context, w *Worker) error {
	now := FormatTime(time.Now())

	return w.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, e := range devEmployees {
			if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO employees(name, role, tag_id, active, created_at)
VALUES (?, ?, ?, 1, ?);`, e.name, e.role, e.tagID, now); err != nil {
				return fmt.Errorf("seed employee %s: %w", e.tagID, err)
			}
		}

		for _, v := range devVehicles {
			var owner any
			if v.ownerTag != "" {
				var id int64
				err := tx.QueryRowContext(ctx,
					`SELECT id FROM employees WHERE tag_id = ?;`, v.ownerTag,
				).Scan(&id)
				if err != nil {
					return fmt.Errorf("seed vehicle %s owner: %w", v.plate, err)
				}
				owner = id
			}
			if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO vehicles(plate, model, brand, color, owner_id, category, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
				v.plate, v.model, v.brand, v.color, owner, v.category, now,
			); err != nil {
				return fmt.Errorf("seed vehicle %s: %w", v.plate, err)
			}
		}
		return nil
	})
}
