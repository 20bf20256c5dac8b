// Package sqlconn - общая реализация driver.Driver поверх database/sql.
//
// Каждый Conn держит ровно одно физическое соединение: *sql.DB ограничен одним
// открытым соединением, а запросы идут через закрепленный *sqlx.Conn.
package sqlconn

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Options - параметры конкретной СУБД
type Options struct {
	// DriverName - имя драйвера database/sql ("mysql", "sqlite", "sqlserver")
	DriverName string

	// DSN - строка подключения
	DSN string

	// Dialect - особенности SQL текста
	Dialect stmt.Dialect

	// ThreadQuery - запрос идентификатора сессии; пусто = не поддерживается
	ThreadQuery string

	// Classify - классификатор ошибок драйвера; nil = driver.ClassifyCommon
	Classify func(err error) driver.Code
}

// Conn реализует driver.Driver для драйверов database/sql
type Conn struct {
	opts Options

	mu       sync.Mutex
	db       *sqlx.DB
	conn     *sqlx.Conn
	broken   bool
	threadID string
}

// Compile-time check
var _ driver.Driver = (*Conn)(nil)

// New создает Conn без подключения
func New(opts Options) *Conn {
	if opts.Classify == nil {
		opts.Classify = driver.ClassifyCommon
	}
	return &Conn{opts: opts}
}

// Connect открывает единственное соединение и проверяет его
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.broken {
		return driver.ErrHandshakeTwice
	}
	c.closeLocked()

	db, err := sqlx.Open(c.opts.DriverName, c.opts.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	conn, err := db.Connx(ctx)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to connect: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.db = db
	c.conn = conn
	c.broken = false
	c.threadID = ""

	if c.opts.ThreadQuery != "" {
		var id string
		if err := conn.QueryRowxContext(ctx, c.opts.ThreadQuery).Scan(&id); err == nil {
			c.threadID = id
		}
	}

	return nil
}

// Query выполняет SQL текст на закрепленном соединении
func (c *Conn) Query(ctx context.Context, sql string) (*driver.Result, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil, driver.ErrNotConnected
	}

	var (
		res *driver.Result
		err error
	)
	if driver.ReturnsRows(sql) {
		res, err = queryRows(ctx, conn, sql)
	} else {
		res, err = execStatement(ctx, conn, sql)
	}

	if err != nil && c.opts.Classify(err) == driver.CodeConnectionLost {
		c.mu.Lock()
		c.broken = true
		c.mu.Unlock()
	}
	return res, err
}

func queryRows(ctx context.Context, conn *sqlx.Conn, sql string) (*driver.Result, error) {
	rows, err := conn.QueryxContext(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	res := &driver.Result{Columns: columns, HasRows: true}
	for rows.Next() {
		cells, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := stmt.NewFieldMap()
		for i, cell := range cells {
			row.Set(columns[i], driver.CellValue(cell))
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	res.RowsAffected = int64(len(res.Rows))
	return res, nil
}

func execStatement(ctx context.Context, conn *sqlx.Conn, sql string) (*driver.Result, error) {
	r, err := conn.ExecContext(ctx, sql)
	if err != nil {
		return nil, err
	}

	res := &driver.Result{}
	// Не все драйверы поддерживают LastInsertId (go-mssqldb)
	if id, err := r.LastInsertId(); err == nil {
		res.LastInsertID = id
	}
	if n, err := r.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	return res, nil
}

// Alive - соединение открыто и не помечено как потерянное
func (c *Conn) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && !c.broken
}

// ThreadID возвращает идентификатор сессии, полученный при подключении
func (c *Conn) ThreadID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threadID
}

// Classify делегирует классификатору СУБД
func (c *Conn) Classify(err error) driver.Code {
	return c.opts.Classify(err)
}

// Dialect возвращает диалект СУБД
func (c *Conn) Dialect() stmt.Dialect {
	return c.opts.Dialect
}

// Close закрывает соединение
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Conn) closeLocked() error {
	var errs []error
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
		c.conn = nil
	}
	if c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	c.broken = false
	return errors.Join(errs...)
}
