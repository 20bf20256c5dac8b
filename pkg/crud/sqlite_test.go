package crud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ruslano69/recordkit/pkg/conn"
	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/driver/sqlite"
	"github.com/ruslano69/recordkit/pkg/query"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

const createRoom = `CREATE TABLE Room (
	RoomId INTEGER PRIMARY KEY AUTOINCREMENT,
	Name TEXT,
	Beds INTEGER,
	Price REAL,
	DateCreated TEXT,
	IsActive INTEGER NOT NULL DEFAULT 0,
	IsDeleted INTEGER NOT NULL DEFAULT 0
)`

func newSQLiteFacade(t *testing.T) *Facade {
	t.Helper()

	drv, err := sqlite.New(driver.Config{})
	if err != nil {
		t.Fatalf("sqlite.New failed: %v", err)
	}
	m, err := conn.NewManager(drv, conn.DefaultConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	ex := query.NewExecutor(m)
	if _, err := ex.Query(context.Background(), createRoom); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return New(ex, WithClock(func() time.Time { return fixedTime }))
}

func TestSQLite_InsertSelectRoundTrip(t *testing.T) {
	f := newSQLiteFacade(t)
	ctx := context.Background()

	fields := stmt.NewFieldMap(stmt.F("Name", "Sea view"), stmt.F("Beds", 2), stmt.F("Price", 120.5))
	row, err := f.Insert(ctx, "Room", fields)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	id, ok := row.Get("RoomId")
	if !ok || id != stmt.Int(1) {
		t.Fatalf("Expected RoomId 1, got %v", id)
	}

	rows, err := f.Select(ctx, "Room", ByKey("Room", id))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}

	for _, fld := range row.Fields() {
		got, _ := rows[0].Get(fld.Name)
		if got != fld.Value {
			t.Errorf("%s: expected %v, got %v", fld.Name, fld.Value, got)
		}
	}
}

func TestSQLite_InsertKeywordInValue(t *testing.T) {
	f := newSQLiteFacade(t)
	ctx := context.Background()

	row, err := f.Insert(ctx, "Room", stmt.NewFieldMap(stmt.F("Name", "free returning policy")))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id, _ := row.Get("RoomId"); id != stmt.Int(1) {
		t.Fatalf("Expected RoomId 1, got %v", id)
	}

	rows, err := f.SelectAll(ctx, "Room")
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if name, _ := rows[0].Get("Name"); name != stmt.Text("free returning policy") {
		t.Errorf("Expected Name preserved, got %v", name)
	}
}

func TestSQLite_RemoveHidesRow(t *testing.T) {
	f := newSQLiteFacade(t)
	ctx := context.Background()

	row, err := f.Insert(ctx, "Room", stmt.NewFieldMap(stmt.F("Name", "x")))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id, _ := row.Get("RoomId")

	if _, err := f.Remove(ctx, "Room", ByKey("Room", id)); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	// Удаленная строка не видна через Select
	_, err = f.Select(ctx, "Room", ByKey("Room", id))
	if !errors.Is(err, query.ErrEmptyResult) {
		t.Errorf("Expected ErrEmptyResult, got %v", err)
	}

	// Но остается в таблице
	key, _ := id.Int64()
	rows, err := f.SelectKey(ctx, "Room", key)
	if err != nil {
		t.Fatalf("SelectKey failed: %v", err)
	}
	if v, _ := rows[0].Get(FieldIsDeleted); v != stmt.Int(1) {
		t.Errorf("Expected IsDeleted 1, got %v", v)
	}
}

func TestSQLite_RestoreIdempotent(t *testing.T) {
	f := newSQLiteFacade(t)
	ctx := context.Background()

	row, err := f.Insert(ctx, "Room", stmt.NewFieldMap(stmt.F("Name", "x"), stmt.F(FieldIsDeleted, 1)))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id, _ := row.Get("RoomId")
	where := ByKey("Room", id)

	for i := 0; i < 2; i++ {
		if _, err := f.Restore(ctx, "Room", where); err != nil {
			t.Fatalf("Restore #%d failed: %v", i+1, err)
		}
	}

	rows, err := f.Select(ctx, "Room", where)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if v, _ := rows[0].Get(FieldIsDeleted); v != stmt.Int(0) {
		t.Errorf("Expected IsDeleted 0, got %v", v)
	}
}

func TestSQLite_ActivateDeactivate(t *testing.T) {
	f := newSQLiteFacade(t)
	ctx := context.Background()

	row, err := f.Insert(ctx, "Room", stmt.NewFieldMap(stmt.F("Name", "x")))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id, _ := row.Get("RoomId")
	where := ByKey("Room", id)

	if _, err := f.Activate(ctx, "Room", where); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	rows, _ := f.Select(ctx, "Room", where)
	if v, _ := rows[0].Get(FieldIsActive); v != stmt.Int(1) {
		t.Errorf("Expected IsActive 1, got %v", v)
	}

	if _, err := f.Deactivate(ctx, "Room", where); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	rows, _ = f.Select(ctx, "Room", where)
	if v, _ := rows[0].Get(FieldIsActive); v != stmt.Int(0) {
		t.Errorf("Expected IsActive 0, got %v", v)
	}
}
