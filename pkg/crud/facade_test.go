package crud

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// recorder - query.Runner, записывающий SQL
type recorder struct {
	dialect stmt.Dialect
	sqls    []string
	result  *driver.Result
	err     error
}

func (r *recorder) Query(ctx context.Context, sql string) (*driver.Result, error) {
	r.sqls = append(r.sqls, sql)
	if r.err != nil {
		return nil, r.err
	}
	if r.result == nil {
		return &driver.Result{}, nil
	}
	return r.result, nil
}

func (r *recorder) Dialect() stmt.Dialect { return r.dialect }

func (r *recorder) last() string {
	if len(r.sqls) == 0 {
		return ""
	}
	return r.sqls[len(r.sqls)-1]
}

var fixedTime = time.Date(2024, time.March, 5, 9, 7, 2, 0, time.UTC)

func newTestFacade(r *recorder) *Facade {
	return New(r, WithClock(func() time.Time { return fixedTime }))
}

func TestInsert_StampsDateCreated(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL, result: &driver.Result{LastInsertID: 42}}
	f := newTestFacade(r)

	fields := stmt.NewFieldMap(stmt.F("Name", "x"))
	row, err := f.Insert(context.Background(), "Room", fields)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	want := "INSERT INTO Room (Name, DateCreated) VALUES ('x', '2024-03-05 09:07:02')"
	if r.last() != want {
		t.Errorf("Expected %q, got %q", want, r.last())
	}

	if v, _ := row.Get("RoomId"); v != stmt.Int(42) {
		t.Errorf("Expected RoomId 42, got %v", v)
	}
	if v, _ := row.Get(FieldDateCreated); v != stmt.Text("2024-03-05 09:07:02") {
		t.Errorf("Expected DateCreated in row, got %v", v)
	}
	if fields.Len() != 1 {
		t.Errorf("Caller map must not be mutated, got %s", fields)
	}
}

func TestInsert_KeepsDateCreated(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL, result: &driver.Result{LastInsertID: 1}}
	f := newTestFacade(r)

	_, err := f.Insert(context.Background(), "Room", stmt.NewFieldMap(
		stmt.F("Name", "x"),
		stmt.F(FieldDateCreated, "2020-01-01 00:00:00"),
	))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	want := "INSERT INTO Room (Name, DateCreated) VALUES ('x', '2020-01-01 00:00:00')"
	if r.last() != want {
		t.Errorf("Expected %q, got %q", want, r.last())
	}
}

func TestInsert_ExcludesIdentity(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL, result: &driver.Result{LastInsertID: 9}}
	f := newTestFacade(r)

	row, err := f.Insert(context.Background(), "Room", stmt.NewFieldMap(stmt.F("RoomId", 5), stmt.F("Name", "x")))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	want := "INSERT INTO Room (Name, DateCreated) VALUES ('x', '2024-03-05 09:07:02')"
	if r.last() != want {
		t.Errorf("Expected %q, got %q", want, r.last())
	}
	if v, _ := row.Get("RoomId"); v != stmt.Int(9) {
		t.Errorf("Expected generated RoomId 9, got %v", v)
	}
}

func TestInsert_ReturningDialect(t *testing.T) {
	r := &recorder{
		dialect: stmt.DialectPostgres,
		result: &driver.Result{
			HasRows: true,
			Rows:    []*stmt.FieldMap{stmt.NewFieldMap(stmt.F("RoomId", int64(7)))},
		},
	}
	f := newTestFacade(r)

	row, err := f.Insert(context.Background(), "Room", stmt.NewFieldMap(stmt.F("Name", "x")))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	want := "INSERT INTO Room (Name, DateCreated) VALUES ('x', '2024-03-05 09:07:02') RETURNING RoomId"
	if r.last() != want {
		t.Errorf("Expected %q, got %q", want, r.last())
	}
	if v, _ := row.Get("RoomId"); v != stmt.Int(7) {
		t.Errorf("Expected RoomId 7, got %v", v)
	}
}

func TestInsert_QueryError(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL, err: errors.New("duplicate entry")}
	f := newTestFacade(r)

	if _, err := f.Insert(context.Background(), "Room", stmt.NewFieldMap(stmt.F("Name", "x"))); err == nil {
		t.Error("Expected error")
	}
}

func TestSelect_DefaultsIsDeleted(t *testing.T) {
	tests := []struct {
		name  string
		where *stmt.FieldMap
		want  string
	}{
		{"nil", nil, "SELECT * FROM Room WHERE IsDeleted = 0"},
		{"empty", stmt.NewFieldMap(), "SELECT * FROM Room WHERE IsDeleted = 0"},
		{"field", stmt.NewFieldMap(stmt.F("Name", "x")), "SELECT * FROM Room WHERE Name = 'x' and IsDeleted = 0"},
		{"explicit", stmt.NewFieldMap(stmt.F(FieldIsDeleted, 1)), "SELECT * FROM Room WHERE IsDeleted = 1"},
		{"identity", stmt.NewFieldMap(stmt.F("RoomId", 3)), "SELECT * FROM Room WHERE RoomId = 3 and IsDeleted = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{dialect: stmt.DialectMySQL}
			f := newTestFacade(r)

			if _, err := f.Select(context.Background(), "Room", tt.where); err != nil {
				t.Fatalf("Select failed: %v", err)
			}
			if r.last() != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, r.last())
			}
		})
	}
}

func TestSelectKey(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL}
	f := newTestFacade(r)

	if _, err := f.SelectKey(context.Background(), "Room", 5); err != nil {
		t.Fatalf("SelectKey failed: %v", err)
	}
	if r.last() != "SELECT * FROM Room WHERE RoomId = 5" {
		t.Errorf("Unexpected SQL: %q", r.last())
	}

	if _, err := f.SelectAll(context.Background(), "Room"); err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if r.last() != "SELECT * FROM Room" {
		t.Errorf("Unexpected SQL: %q", r.last())
	}
}

func TestFlags(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL}
	f := newTestFacade(r)
	ctx := context.Background()
	where := ByKey("Room", stmt.Int(3))

	ops := []struct {
		name string
		fn   func() (*driver.Result, error)
		want string
	}{
		{"remove", func() (*driver.Result, error) { return f.Remove(ctx, "Room", where) }, "UPDATE Room SET IsDeleted = 1 WHERE RoomId = 3"},
		{"restore", func() (*driver.Result, error) { return f.Restore(ctx, "Room", where) }, "UPDATE Room SET IsDeleted = 0 WHERE RoomId = 3"},
		{"activate", func() (*driver.Result, error) { return f.Activate(ctx, "Room", where) }, "UPDATE Room SET IsActive = 1 WHERE RoomId = 3"},
		{"deactivate", func() (*driver.Result, error) { return f.Deactivate(ctx, "Room", where) }, "UPDATE Room SET IsActive = 0 WHERE RoomId = 3"},
	}

	for _, op := range ops {
		if _, err := op.fn(); err != nil {
			t.Fatalf("%s failed: %v", op.name, err)
		}
		if r.last() != op.want {
			t.Errorf("%s: expected %q, got %q", op.name, op.want, r.last())
		}
	}
}

func TestUpdate(t *testing.T) {
	r := &recorder{dialect: stmt.DialectMySQL}
	f := newTestFacade(r)

	_, err := f.Update(context.Background(), "Room",
		stmt.NewFieldMap(stmt.F("Name", "y"), stmt.F("Price", 12.5)),
		ByKey("Room", stmt.Int(1)))
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	want := "UPDATE Room SET Name = 'y' , Price = 12.5 WHERE RoomId = 1"
	if r.last() != want {
		t.Errorf("Expected %q, got %q", want, r.last())
	}

	if _, err := f.Update(context.Background(), "Room", stmt.NewFieldMap(), ByKey("Room", stmt.Int(1))); !errors.Is(err, stmt.ErrEmptyFieldSet) {
		t.Errorf("Expected ErrEmptyFieldSet, got %v", err)
	}
	if _, err := f.Update(context.Background(), "Room", stmt.NewFieldMap(stmt.F("Name", "y")), nil); !errors.Is(err, stmt.ErrEmptyPredicate) {
		t.Errorf("Expected ErrEmptyPredicate, got %v", err)
	}
}
