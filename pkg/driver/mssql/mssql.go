// Package mssql - драйвер для MS SQL Server (github.com/denisenkom/go-mssqldb).
package mssql

import (
	"errors"
	"net/url"
	"strconv"

	mssql "github.com/denisenkom/go-mssqldb"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/driver/sqlconn"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Name - имя драйвера в фабрике
const Name = "mssql"

// DefaultPort - порт SQL Server по умолчанию
const DefaultPort = 1433

const (
	errLoginFailed        = 18456
	errCannotOpenDatabase = 4060
)

func init() {
	driver.Register(Name, New)
}

// New создает драйвер MS SQL Server
func New(cfg driver.Config) (driver.Driver, error) {
	return sqlconn.New(sqlconn.Options{
		DriverName:  "sqlserver",
		DSN:         DSN(cfg),
		Dialect:     stmt.DialectMSSQL,
		ThreadQuery: "SELECT @@SPID",
		Classify:    Classify,
	}), nil
}

// DSN собирает sqlserver:// URL
func DSN(cfg driver.Config) string {
	q := url.Values{}
	q.Set("database", cfg.Database)
	if cfg.ConnectTimeout > 0 {
		q.Set("dial timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     cfg.Addr(DefaultPort),
		RawQuery: q.Encode(),
	}
	return u.String()
}

// Classify относит ошибку SQL Server к коду подключения
func Classify(err error) driver.Code {
	var me mssql.Error
	if errors.As(err, &me) {
		switch me.Number {
		case errLoginFailed, errCannotOpenDatabase:
			return driver.CodeAccessDenied
		}
		return driver.CodeUnknown
	}
	return driver.ClassifyCommon(err)
}
