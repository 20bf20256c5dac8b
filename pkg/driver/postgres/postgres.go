// Package postgres - драйвер для PostgreSQL на одном pgx.Conn.
//
// Запросы идут в simple protocol: SQL текст уже содержит литералы,
// подготовленные выражения не используются.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Name - имя драйвера в фабрике
const Name = "postgres"

// DefaultPort - порт PostgreSQL по умолчанию
const DefaultPort = 5432

// SQLSTATE класса 28 - invalid authorization
const (
	sqlStateInvalidAuthorization = "28000"
	sqlStateInvalidPassword      = "28P01"
)

func init() {
	driver.Register(Name, New)
}

// Driver реализует driver.Driver для PostgreSQL
type Driver struct {
	connString string

	mu   sync.Mutex
	conn *pgx.Conn
}

// Compile-time check
var _ driver.Driver = (*Driver)(nil)

// New создает драйвер PostgreSQL без подключения
func New(cfg driver.Config) (driver.Driver, error) {
	return &Driver{connString: ConnString(cfg)}, nil
}

// ConnString собирает URL подключения
func ConnString(cfg driver.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Addr(DefaultPort),
		Path:   "/" + cfg.Database,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if cfg.ConnectTimeout > 0 {
		q.Set("connect_timeout", strconv.Itoa(int(cfg.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect устанавливает соединение
func (d *Driver) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil && !d.conn.IsClosed() {
		return driver.ErrHandshakeTwice
	}

	conn, err := pgx.Connect(ctx, d.connString)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	d.conn = conn
	return nil
}

// Query выполняет SQL текст
func (d *Driver) Query(ctx context.Context, sql string) (*driver.Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil || d.conn.IsClosed() {
		return nil, driver.ErrNotConnected
	}

	if !driver.ReturnsRows(sql) {
		tag, err := d.conn.Exec(ctx, sql, pgx.QueryExecModeSimpleProtocol)
		if err != nil {
			return nil, err
		}
		return &driver.Result{RowsAffected: tag.RowsAffected()}, nil
	}

	rows, err := d.conn.Query(ctx, sql, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	res := &driver.Result{Columns: columns, HasRows: true}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := stmt.NewFieldMap()
		for i, v := range values {
			row.Set(columns[i], driver.CellValue(v))
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res.RowsAffected = rows.CommandTag().RowsAffected()
	return res, nil
}

// Alive - соединение открыто
func (d *Driver) Alive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil && !d.conn.IsClosed()
}

// ThreadID возвращает PID backend процесса
func (d *Driver) ThreadID() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return ""
	}
	return strconv.FormatUint(uint64(d.conn.PgConn().PID()), 10)
}

// Classify относит ошибку PostgreSQL к коду подключения
func (d *Driver) Classify(err error) driver.Code {
	return Classify(err)
}

// Classify - классификатор без привязки к экземпляру
func Classify(err error) driver.Code {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateInvalidAuthorization, sqlStateInvalidPassword:
			return driver.CodeAccessDenied
		}
		return driver.CodeUnknown
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return driver.CodeConnectionLost
	}
	return driver.ClassifyCommon(err)
}

// Dialect возвращает диалект PostgreSQL
func (d *Driver) Dialect() stmt.Dialect {
	return stmt.DialectPostgres
}

// Close закрывает соединение
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close(context.Background())
	d.conn = nil
	return err
}
