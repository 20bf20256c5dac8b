package mssql

import (
	"net/url"
	"testing"

	mssql "github.com/denisenkom/go-mssqldb"

	"github.com/ruslano69/recordkit/pkg/driver"
)

func TestDSN(t *testing.T) {
	u, err := url.Parse(DSN(driver.Config{Host: "sql01", User: "sa", Password: "pw", Database: "Enterprise"}))
	if err != nil {
		t.Fatalf("invalid DSN: %v", err)
	}
	if u.Scheme != "sqlserver" || u.Host != "sql01:1433" {
		t.Errorf("unexpected DSN %s", u)
	}
	if u.Query().Get("database") != "Enterprise" {
		t.Errorf("database param missing: %s", u.RawQuery)
	}
}

func TestClassify(t *testing.T) {
	if got := Classify(mssql.Error{Number: 18456}); got != driver.CodeAccessDenied {
		t.Errorf("login failed: got %s", got)
	}
	if got := Classify(mssql.Error{Number: 208}); got != driver.CodeUnknown {
		t.Errorf("invalid object: got %s", got)
	}
}
