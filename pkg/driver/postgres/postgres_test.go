package postgres

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ruslano69/recordkit/pkg/driver"
)

func TestConnString(t *testing.T) {
	s := ConnString(driver.Config{
		Host:           "db.local",
		User:           "app",
		Password:       "p@ss",
		Database:       "Enterprise",
		ConnectTimeout: 5 * time.Second,
	})

	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("invalid URL %q: %v", s, err)
	}
	if u.Host != "db.local:5432" {
		t.Errorf("unexpected host %s", u.Host)
	}
	if pass, _ := u.User.Password(); pass != "p@ss" {
		t.Errorf("password not preserved: %q", pass)
	}
	if u.Path != "/Enterprise" {
		t.Errorf("unexpected path %s", u.Path)
	}
	if u.Query().Get("connect_timeout") != "5" {
		t.Errorf("unexpected connect_timeout %s", u.Query().Get("connect_timeout"))
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(&pgconn.PgError{Code: "28P01"}); got != driver.CodeAccessDenied {
		t.Errorf("28P01: got %s", got)
	}
	if got := Classify(&pgconn.PgError{Code: "3D000"}); got != driver.CodeUnknown {
		t.Errorf("3D000: got %s", got)
	}
	if got := Classify(errors.New("boom")); got != driver.CodeUnknown {
		t.Errorf("plain error: got %s", got)
	}
}

func TestNotConnected(t *testing.T) {
	d, _ := New(driver.Config{Host: "localhost"})
	if d.Alive() {
		t.Error("driver must not be alive before Connect")
	}
	if _, err := d.Query(t.Context(), "SELECT 1"); !errors.Is(err, driver.ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
	if d.Dialect().InsertID == 0 {
		t.Error("postgres must use RETURNING for identity")
	}
}
