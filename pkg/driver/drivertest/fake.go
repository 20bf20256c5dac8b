// Package drivertest - управляемый driver.Driver для тестов.
package drivertest

import (
	"context"
	"errors"
	"sync"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Handler отвечает на SQL текст
type Handler func(sql string) (*driver.Result, error)

// Fake - драйвер с заданными ответами на Connect и Query.
// Записывает каждый handshake и каждый SQL текст.
type Fake struct {
	mu sync.Mutex

	// ConnectErrs - ошибки для последовательных handshake; дальше - успех
	ConnectErrs []error

	// ConnectBlock - если не nil, handshake ждет закрытия канала
	ConnectBlock chan struct{}

	// Handler - ответ на Query; nil = пустой exec результат
	Handler Handler

	// ClassifyFunc - классификатор; nil = driver.ClassifyCommon
	ClassifyFunc func(err error) driver.Code

	DialectValue stmt.Dialect

	handshakes int
	closes     int
	connected  bool
	queries    []string
}

// Compile-time check
var _ driver.Driver = (*Fake)(nil)

// New создает Fake в диалекте MySQL
func New() *Fake {
	return &Fake{DialectValue: stmt.DialectMySQL}
}

// Connect возвращает следующую ошибку из ConnectErrs или подключается
func (f *Fake) Connect(ctx context.Context) error {
	f.mu.Lock()
	block := f.ConnectBlock
	f.handshakes++
	n := f.handshakes
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if n <= len(f.ConnectErrs) && f.ConnectErrs[n-1] != nil {
		return f.ConnectErrs[n-1]
	}
	f.connected = true
	return nil
}

// Query записывает SQL и отвечает через Handler
func (f *Fake) Query(ctx context.Context, sql string) (*driver.Result, error) {
	f.mu.Lock()
	if !f.connected {
		f.mu.Unlock()
		return nil, driver.ErrNotConnected
	}
	f.queries = append(f.queries, sql)
	h := f.Handler
	f.mu.Unlock()

	if h == nil {
		return &driver.Result{}, nil
	}
	return h(sql)
}

// Alive - был успешный handshake и соединение не сброшено
func (f *Fake) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Drop имитирует потерю соединения
func (f *Fake) Drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

// ThreadID - фиксированный идентификатор сессии
func (f *Fake) ThreadID() string {
	return "fake"
}

// Classify делегирует ClassifyFunc
func (f *Fake) Classify(err error) driver.Code {
	if f.ClassifyFunc != nil {
		return f.ClassifyFunc(err)
	}
	return driver.ClassifyCommon(err)
}

// Dialect возвращает DialectValue
func (f *Fake) Dialect() stmt.Dialect {
	return f.DialectValue
}

// Close сбрасывает соединение
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.connected = false
	return nil
}

// Closes - количество вызовов Close
func (f *Fake) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

// Handshakes - количество вызовов Connect
func (f *Fake) Handshakes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handshakes
}

// Queries - SQL тексты в порядке выполнения
func (f *Fake) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.queries))
	copy(out, f.queries)
	return out
}

// LastQuery - последний SQL текст или ""
func (f *Fake) LastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queries) == 0 {
		return ""
	}
	return f.queries[len(f.queries)-1]
}

// Rows - результат SELECT из строк
func Rows(rows ...*stmt.FieldMap) *driver.Result {
	res := &driver.Result{HasRows: true, Rows: rows, RowsAffected: int64(len(rows))}
	if len(rows) > 0 {
		res.Columns = rows[0].Keys()
	}
	return res
}

// Exec - результат INSERT/UPDATE
func Exec(lastInsertID, affected int64) *driver.Result {
	return &driver.Result{LastInsertID: lastInsertID, RowsAffected: affected}
}

// ErrAccessDenied - ошибка, которую Fake классифицирует как отказ в доступе
var ErrAccessDenied = errors.New("access denied for user")

// ClassifyAccessDenied - ClassifyFunc, распознающий ErrAccessDenied
func ClassifyAccessDenied(err error) driver.Code {
	if errors.Is(err, ErrAccessDenied) {
		return driver.CodeAccessDenied
	}
	return driver.ClassifyCommon(err)
}
