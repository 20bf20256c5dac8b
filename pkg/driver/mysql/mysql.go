// Package mysql - драйвер для MySQL (github.com/go-sql-driver/mysql).
package mysql

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/driver/sqlconn"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Name - имя драйвера в фабрике
const Name = "mysql"

// DefaultPort - порт MySQL по умолчанию
const DefaultPort = 3306

// Коды ошибок сервера, означающие отказ в доступе
const (
	erDBAccessDenied         = 1044
	erAccessDenied           = 1045
	erAccessDeniedNoPassword = 1698
)

func init() {
	driver.Register(Name, New)
}

// New создает драйвер MySQL
func New(cfg driver.Config) (driver.Driver, error) {
	return sqlconn.New(sqlconn.Options{
		DriverName:  "mysql",
		DSN:         DSN(cfg),
		Dialect:     stmt.DialectMySQL,
		ThreadQuery: "SELECT CONNECTION_ID()",
		Classify:    Classify,
	}), nil
}

// DSN собирает строку подключения go-sql-driver
func DSN(cfg driver.Config) string {
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = cfg.Addr(DefaultPort)
	mc.DBName = cfg.Database
	mc.MultiStatements = cfg.MultipleStatements
	if cfg.ConnectTimeout > 0 {
		mc.Timeout = cfg.ConnectTimeout
	}
	return mc.FormatDSN()
}

// Classify относит ошибку MySQL к коду подключения
func Classify(err error) driver.Code {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case erDBAccessDenied, erAccessDenied, erAccessDeniedNoPassword:
			return driver.CodeAccessDenied
		}
		return driver.CodeUnknown
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return driver.CodeConnectionLost
	}
	return driver.ClassifyCommon(err)
}
