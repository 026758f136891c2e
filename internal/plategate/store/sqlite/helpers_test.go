package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	dbpkg "github.com/carbonaccess/plategate/internal/db"
	sqlitestore "github.com/carbonaccess/plategate/internal/plategate/store/sqlite"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// openTestDB returns an in-memory SQLite connection with the same PRAGMAs
// and schema as production. The connection is closed automatically when the
// test finishes.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Shared cache keeps the database alive for the lifetime of the pool;
	// the test name keeps each test's database separate.
	conn, err := dbpkg.OpenDSN(context.Background(), dbpkg.MemoryDSN("test_"+t.Name()), true)
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}

// newTestWriter returns a db.Worker backed by conn. The worker is closed
// automatically when the test finishes.
func newTestWriter(t *testing.T, conn *sql.DB) *dbpkg.Worker {
	t.Helper()

	w := dbpkg.NewWorker(conn)
	t.Cleanup(func() { w.Close() })
	return w
}

type testStores struct {
	conn      *sql.DB
	employees *sqlitestore.EmployeeStore
	vehicles  *sqlitestore.VehicleStore
	events    *sqlitestore.AccessEventStore
}

func newTestStores(t *testing.T) testStores {
	t.Helper()

	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	return testStores{
		conn:      conn,
		employees: sqlitestore.NewEmployeeStore(conn, w),
		vehicles:  sqlitestore.NewVehicleStore(conn, w),
		events:    sqlitestore.NewAccessEventStore(conn, w),
	}
}

func seedEmployee(t *testing.T, s testStores, name, tag string) types.Employee {
	t.Helper()

	e := types.Employee{Name: name, Role: types.RoleAnalyst, Active: true}
	if tag != "" {
		e.TagID = &tag
	}
	out, err := s.employees.CreateEmployee(context.Background(), e)
	if err != nil {
		t.Fatalf("seedEmployee %s: %v", name, err)
	}
	return out
}

func seedVehicle(t *testing.T, s testStores, plate string, owner *int64) types.Vehicle {
	t.Helper()

	out, err := s.vehicles.CreateVehicle(context.Background(), types.Vehicle{
		Plate:    plate,
		Model:    "Corolla",
		Brand:    "Toyota",
		Color:    "Black",
		Category: types.CategoryEmployee,
		OwnerID:  owner,
	})
	if err != nil {
		t.Fatalf("seedVehicle %s: %v", plate, err)
	}
	return out
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
