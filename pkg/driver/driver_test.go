package driver

import (
	sqldriver "database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/ruslano69/recordkit/pkg/stmt"
)

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT * FROM Room", true},
		{"  select 1", true},
		{"SHOW TABLES", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"INSERT INTO Room (Name) VALUES ('a')", false},
		{"INSERT INTO Room (Name) VALUES ('a') RETURNING RoomId", true},
		{"INSERT INTO Room (Name) OUTPUT INSERTED.RoomId VALUES ('a')", true},
		{"INSERT INTO Room (Name) VALUES ('free returning policy')", false},
		{"INSERT INTO Room (Name) VALUES ('x output inserted.y')", false},
		{"INSERT INTO Room (Name) VALUES ('it''s a returning guest')", false},
		{"INSERT INTO Room (Name) VALUES (' returning ') RETURNING RoomId", true},
		{"UPDATE Room SET IsDeleted = 1 WHERE RoomId = 2", false},
		{"CREATE TABLE IF NOT EXISTS Room (RoomId INTEGER)", false},
		{"(SELECT 1) UNION (SELECT 2)", true},
	}

	for _, tt := range tests {
		if got := ReturnsRows(tt.sql); got != tt.want {
			t.Errorf("ReturnsRows(%q) = %v, want %v", tt.sql, got, tt.want)
		}
	}
}

func TestClassifyCommon(t *testing.T) {
	tests := []struct {
		err  error
		want Code
	}{
		{nil, CodeUnknown},
		{errors.New("boom"), CodeUnknown},
		{fmt.Errorf("connect: %w", ErrHandshakeTwice), CodeHandshakeTwice},
		{sqldriver.ErrBadConn, CodeConnectionLost},
		{fmt.Errorf("read: %w", io.EOF), CodeConnectionLost},
	}

	for _, tt := range tests {
		if got := ClassifyCommon(tt.err); got != tt.want {
			t.Errorf("ClassifyCommon(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestCode_Fatal(t *testing.T) {
	if CodeConnectionLost.Fatal() || CodeUnknown.Fatal() {
		t.Error("transport errors must be retryable")
	}
	if !CodeAccessDenied.Fatal() || !CodeHandshakeTwice.Fatal() {
		t.Error("access denied and handshake twice must be fatal")
	}
}

func TestResult_Empty(t *testing.T) {
	var nilResult *Result
	if nilResult.Empty() {
		t.Error("nil result is not an empty row set")
	}
	if (&Result{HasRows: false}).Empty() {
		t.Error("exec result is not an empty row set")
	}
	if !(&Result{HasRows: true}).Empty() {
		t.Error("row set without rows must be empty")
	}
}

func TestCellValue(t *testing.T) {
	if v := CellValue([]byte("12")); v != stmt.Text("12") {
		t.Errorf("bytes: got %v", v)
	}
	if v := CellValue(int64(3)); v != stmt.Int(3) {
		t.Errorf("int64: got %v", v)
	}
	type money struct{ cents int }
	if v := CellValue(money{150}); v != stmt.Text("{150}") {
		t.Errorf("fallback: got %v", v)
	}
}

type stubDriver struct{ Driver }

func TestFactory(t *testing.T) {
	f := NewFactory()
	f.Register("stub", func(cfg Config) (Driver, error) {
		return stubDriver{}, nil
	})

	if !f.IsRegistered("stub") {
		t.Fatal("stub must be registered")
	}

	if _, err := f.New("stub", Config{}); err != nil {
		t.Errorf("New failed: %v", err)
	}

	_, err := f.New("oracle", Config{})
	if err == nil || !strings.Contains(err.Error(), "unknown database driver") {
		t.Errorf("Expected unknown driver error, got %v", err)
	}
}

func TestConfig_Addr(t *testing.T) {
	if got := (Config{Host: "db"}).Addr(3306); got != "db:3306" {
		t.Errorf("got %s", got)
	}
	if got := (Config{Host: "db", Port: 3307}).Addr(3306); got != "db:3307" {
		t.Errorf("got %s", got)
	}
}
