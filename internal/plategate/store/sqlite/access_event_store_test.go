package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/carbonaccess/plategate/internal/plategate/store"
	"github.com/carbonaccess/plategate/internal/plategate/types"
)

// ═══════════════════════════════════════════════════════════════════════════
// RecordEvent — basic insert
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessEventStore_RecordEvent_ResolvesVehicle(t *testing.T) {
	s := newTestStores(t)
	v := seedVehicle(t, s, "ABC1D23", nil)
	now := at("2026-02-15T12:00:00Z")

	ev, appended, err := s.events.RecordEvent(context.Background(), store.AccessEventRecord{
		Plate:      "ABC1D23",
		OccurredAt: now,
		Allowed:    true,
		Source:     types.SourceTyped,
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if !appended {
		t.Fatal("expected event to be appended")
	}
	if ev.ID == 0 || ev.VehicleID == nil || *ev.VehicleID != v.ID {
		t.Errorf("unexpected event: %+v", ev)
	}

	var (
		vehicleID  sql.NullInt64
		occurredAt string
		allowed    int
		source     string
	)
	err = s.conn.QueryRow(`
SELECT vehicle_id, occurred_at, allowed, source FROM access_events WHERE id = ?`, ev.ID,
	).Scan(&vehicleID, &occurredAt, &allowed, &source)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !vehicleID.Valid || vehicleID.Int64 != v.ID {
		t.Errorf("expected vehicle_id=%d, got %v", v.ID, vehicleID)
	}
	if occurredAt != "2026-02-15 12:00:00.000" {
		t.Errorf("unexpected occurred_at %q", occurredAt)
	}
	if allowed != 1 || source != "typed" {
		t.Errorf("expected allowed=1 source=typed, got %d %q", allowed, source)
	}
}

func TestAccessEventStore_RecordEvent_UnknownPlateStoresNull(t *testing.T) {
	s := newTestStores(t)

	ev, appended, err := s.events.RecordEvent(context.Background(), store.AccessEventRecord{
		Plate:   "XYZ9999",
		Allowed: false,
		Notes:   "vehicle not registered",
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if !appended || ev.VehicleID != nil {
		t.Fatalf("expected appended event with no vehicle, got appended=%v %+v", appended, ev)
	}
	if ev.Source != types.SourceManual {
		t.Errorf("expected default source manual, got %q", ev.Source)
	}
	if ev.OccurredAt.IsZero() {
		t.Error("expected occurred_at to be set")
	}
}

func TestAccessEventStore_RecordEvent_RequireVehicle(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	seedVehicle(t, s, "ABC1D23", nil)

	_, appended, err := s.events.RecordEvent(ctx, store.AccessEventRecord{
		Plate: "XYZ9999", RequireVehicle: true,
	})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if appended {
		t.Error("unknown plate must not be appended when a vehicle is required")
	}

	_, appended, err = s.events.RecordEvent(ctx, store.AccessEventRecord{
		Plate: "ABC1D23", Allowed: true, RequireVehicle: true,
	})
	if err != nil || !appended {
		t.Fatalf("expected append for known plate, appended=%v err=%v", appended, err)
	}

	if n := countRows(t, s.conn, "access_events"); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestAccessEventStore_EveryCallAppends(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	seedVehicle(t, s, "ABC1D23", nil)

	for i := 0; i < 5; i++ {
		if _, _, err := s.events.RecordEvent(ctx, store.AccessEventRecord{Plate: "ABC1D23", Allowed: true}); err != nil {
			t.Fatalf("RecordEvent %d: %v", i, err)
		}
	}
	if n := countRows(t, s.conn, "access_events"); n != 5 {
		t.Errorf("expected 5 events, got %d", n)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Append-only enforcement
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessEventStore_UpdateAndDeleteRejected(t *testing.T) {
	s := newTestStores(t)
	ev, _, err := s.events.RecordEvent(context.Background(), store.AccessEventRecord{Plate: "XYZ9999"})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}

	if _, err := s.conn.Exec(`UPDATE access_events SET allowed = 1 WHERE id = ?`, ev.ID); err == nil {
		t.Error("expected UPDATE to be rejected")
	}
	if _, err := s.conn.Exec(`DELETE FROM access_events WHERE id = ?`, ev.ID); err == nil {
		t.Error("expected DELETE to be rejected")
	}
	if n := countRows(t, s.conn, "access_events"); n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// ListEvents
// ═══════════════════════════════════════════════════════════════════════════

func TestAccessEventStore_ListEvents_NewestFirstWithJoins(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()
	ana := seedEmployee(t, s, "Ana", "TAG-1")
	seedVehicle(t, s, "ABC1D23", &ana.ID)

	records := []store.AccessEventRecord{
		{Plate: "ABC1D23", OccurredAt: at("2026-02-10T08:00:00Z"), Allowed: true},
		{Plate: "XYZ9999", OccurredAt: at("2026-02-11T08:00:00Z"), Notes: "vehicle not registered"},
		{Plate: "ABC1D23", OccurredAt: at("2026-02-11T08:00:00Z"), Allowed: true},
	}
	for _, r := range records {
		if _, _, err := s.events.RecordEvent(ctx, r); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	rows, err := s.events.ListEvents(ctx, store.EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Equal timestamps fall back to insertion order, newest id first.
	if rows[0].Event.ID != 3 || rows[1].Event.ID != 2 || rows[2].Event.ID != 1 {
		t.Errorf("unexpected order: %d %d %d", rows[0].Event.ID, rows[1].Event.ID, rows[2].Event.ID)
	}
	if rows[0].OwnerName != "Ana" || rows[0].VehicleModel != "Corolla" {
		t.Errorf("expected joined owner and vehicle, got %+v", rows[0])
	}
	if rows[1].OwnerName != "" || rows[1].Event.VehicleID != nil {
		t.Errorf("unknown plate row should have no joins, got %+v", rows[1])
	}
}

func TestAccessEventStore_ListEvents_InclusiveRange(t *testing.T) {
	s := newTestStores(t)
	ctx := context.Background()

	for _, ts := range []string{
		"2026-02-09T23:59:59Z",
		"2026-02-10T00:00:00Z",
		"2026-02-10T23:59:59Z",
		"2026-02-11T00:00:00Z",
	} {
		if _, _, err := s.events.RecordEvent(ctx, store.AccessEventRecord{Plate: "XYZ9999", OccurredAt: at(ts)}); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	from := at("2026-02-10T00:00:00Z")
	to := from.Add(24*time.Hour - time.Millisecond)
	rows, err := s.events.ListEvents(ctx, store.EventFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows in range, got %d", len(rows))
	}
	if !rows[0].Event.OccurredAt.Equal(at("2026-02-10T23:59:59Z")) {
		t.Errorf("unexpected newest row %v", rows[0].Event.OccurredAt)
	}
}
