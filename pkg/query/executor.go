// Package query выполняет SQL текст через conn.Manager.
//
// Каждый запрос сначала дожидается подключения, затем уходит в драйвер как есть.
// Все вызовы попадают в журнал запросов, в том числе неудачные подключения.
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/recordkit/pkg/conn"
	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/querylog"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// ErrEmptyResult - запрос вернул набор строк без единой строки.
// Executor считает это ошибкой запроса.
var ErrEmptyResult = errors.New("query returned no rows")

// QueryError - ошибка выполнения запроса
type QueryError struct {
	// SQL - текст запроса
	SQL string

	// Result - результат драйвера, если он был получен
	Result *driver.Result

	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v [%s]", e.Err, e.SQL)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Runner - то, что нужно CRUD слою от исполнителя
type Runner interface {
	Query(ctx context.Context, sql string) (*driver.Result, error)
	Dialect() stmt.Dialect
}

// Статусы запроса для Observer
const (
	StatusOK           = "ok"
	StatusEmpty        = "empty"
	StatusError        = "error"
	StatusConnectError = "connect_error"
)

// Observer получает итог каждого запроса (метрики)
type Observer interface {
	ObserveQuery(status string, elapsed time.Duration)
}

// Executor - исполнитель запросов
type Executor struct {
	manager  *conn.Manager
	log      *querylog.Log
	logger   zerolog.Logger
	observer Observer
}

// Compile-time check
var _ Runner = (*Executor)(nil)

// Option - функциональная опция Executor
type Option func(*Executor)

// WithLogger задает логгер
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger.With().Str("component", "query").Logger()
	}
}

// WithQueryLog задает журнал запросов
func WithQueryLog(log *querylog.Log) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// WithObserver задает наблюдателя
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// NewExecutor создает исполнитель.
// Без WithQueryLog используется собственный журнал в памяти.
func NewExecutor(manager *conn.Manager, opts ...Option) *Executor {
	e := &Executor{
		manager: manager,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = querylog.New(querylog.Config{})
	}
	return e
}

// Log возвращает журнал запросов
func (e *Executor) Log() *querylog.Log {
	return e.log
}

// Dialect возвращает диалект драйвера
func (e *Executor) Dialect() stmt.Dialect {
	return e.manager.Driver().Dialect()
}

// Query дожидается подключения и выполняет sql.
// Ошибка подключения возвращается как есть; ошибка драйвера и пустой
// набор строк возвращаются как *QueryError.
func (e *Executor) Query(ctx context.Context, sql string) (*driver.Result, error) {
	started := time.Now()

	if err := e.manager.Connect(ctx); err != nil {
		e.finish(ctx, sql, started, nil, err)
		e.observe(StatusConnectError, started)
		return nil, err
	}

	res, err := e.manager.Driver().Query(ctx, sql)
	switch {
	case err != nil:
		err = &QueryError{SQL: sql, Result: res, Err: err}
	case res.Empty():
		err = &QueryError{SQL: sql, Result: res, Err: ErrEmptyResult}
	}

	e.finish(ctx, sql, started, res, err)
	if err != nil {
		status := StatusError
		if errors.Is(err, ErrEmptyResult) {
			status = StatusEmpty
		}
		e.observe(status, started)
		return nil, err
	}
	e.observe(StatusOK, started)
	return res, nil
}

func (e *Executor) observe(status string, started time.Time) {
	if e.observer != nil {
		e.observer.ObserveQuery(status, time.Since(started))
	}
}

func (e *Executor) finish(ctx context.Context, sql string, started time.Time, res *driver.Result, err error) {
	var rows int64
	if res != nil {
		rows = res.RowsAffected
		if res.HasRows {
			rows = int64(len(res.Rows))
		}
	}

	entry := e.log.Record(ctx, sql, started, rows, err)

	event := e.logger.Debug()
	if err != nil && !errors.Is(err, ErrEmptyResult) {
		event = e.logger.Warn().Err(err)
	}
	event.
		Str("sql", sql).
		Dur("elapsed", entry.Elapsed).
		Int64("rows", rows).
		Msg("query")
}
