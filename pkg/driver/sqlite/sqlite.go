// Package sqlite - драйвер для SQLite (modernc.org/sqlite, без cgo).
package sqlite

import (
	_ "modernc.org/sqlite"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/driver/sqlconn"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Name - имя драйвера в фабрике
const Name = "sqlite"

const driverSqlite = "sqlite"

func init() {
	driver.Register(Name, New)
}

// New создает драйвер SQLite.
// cfg.Database - путь к файлу или ":memory:".
func New(cfg driver.Config) (driver.Driver, error) {
	return sqlconn.New(sqlconn.Options{
		DriverName: driverSqlite,
		DSN:        DSN(cfg),
		Dialect:    stmt.DialectSQLite,
	}), nil
}

// DSN возвращает строку подключения
func DSN(cfg driver.Config) string {
	if cfg.Database == "" {
		return ":memory:"
	}
	return cfg.Database
}
