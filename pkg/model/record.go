// Package model - active record поверх crud.Facade.
//
// Record представляет одну строку таблицы с первичным ключом <Table>Id.
// Изменения копятся в pending и уходят в базу только в Save.
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruslano69/recordkit/pkg/crud"
	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/query"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// ErrNoChanges - Save без измененных полей
var ErrNoChanges = errors.New("no changed fields")

// ErrNoGeneratedKey - вставка прошла, но СУБД не вернула первичный ключ
var ErrNoGeneratedKey = errors.New("insert returned no primary key")

// FetchError - строку не удалось загрузить
type FetchError struct {
	Table string
	Key   stmt.Value
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Table, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Store - операции, которые нужны Record
type Store interface {
	Insert(ctx context.Context, table string, fields *stmt.FieldMap) (*stmt.FieldMap, error)
	Select(ctx context.Context, table string, where *stmt.FieldMap) ([]*stmt.FieldMap, error)
	Update(ctx context.Context, table string, values, where *stmt.FieldMap) (*driver.Result, error)
	Remove(ctx context.Context, table string, where *stmt.FieldMap) (*driver.Result, error)
}

// Compile-time check
var _ Store = (*crud.Facade)(nil)

// Record - одна строка таблицы
type Record struct {
	store      Store
	table      string
	primaryKey string

	key     stmt.Value
	data    *stmt.FieldMap
	pending *stmt.FieldMap
	fetched bool
}

// New создает пустую запись без ключа
func New(store Store, table string) *Record {
	return &Record{
		store:      store,
		table:      table,
		primaryKey: stmt.Ident(table),
		data:       stmt.NewFieldMap(),
		pending:    stmt.NewFieldMap(),
	}
}

// Load создает запись и сразу загружает ее по ключу
func Load(ctx context.Context, store Store, table string, key stmt.Value) (*Record, error) {
	r := New(store, table)
	if err := r.Fetch(ctx, key); err != nil {
		return nil, err
	}
	return r, nil
}

// Fetch загружает строку по первичному ключу.
// Удаленные строки не загружаются.
func (r *Record) Fetch(ctx context.Context, key stmt.Value) error {
	rows, err := r.store.Select(ctx, r.table, crud.ByKey(r.table, key))
	if err != nil {
		return &FetchError{Table: r.table, Key: key, Err: err}
	}
	if len(rows) == 0 {
		return &FetchError{Table: r.table, Key: key, Err: query.ErrEmptyResult}
	}

	r.key = key
	r.data = rows[0].Clone()
	r.fetched = true
	return nil
}

// Set ставит значение поля в очередь на запись
func (r *Record) Set(name string, v stmt.Value) {
	r.pending.Set(name, v)
}

// SetFields ставит в очередь все поля m в их порядке
func (r *Record) SetFields(m *stmt.FieldMap) {
	for _, f := range m.Fields() {
		r.pending.Set(f.Name, f.Value)
	}
}

// Save записывает отложенные изменения.
// Незагруженная запись вставляется, загруженная обновляется по ключу.
func (r *Record) Save(ctx context.Context) error {
	if r.pending.Len() == 0 {
		return ErrNoChanges
	}

	if !r.fetched {
		row, err := r.store.Insert(ctx, r.table, r.pending)
		if err != nil {
			return err
		}
		key, ok := row.Get(r.primaryKey)
		if !ok || key.IsNull() {
			return fmt.Errorf("%w: %s.%s", ErrNoGeneratedKey, r.table, r.primaryKey)
		}
		r.data = row
		r.key = key
		r.fetched = true
		r.pending = stmt.NewFieldMap()
		return nil
	}

	if _, err := r.store.Update(ctx, r.table, r.pending, crud.ByKey(r.table, r.key)); err != nil {
		return err
	}
	r.data.Merge(r.pending)
	r.pending = stmt.NewFieldMap()
	return nil
}

// Get возвращает сохраненное значение поля или NULL
func (r *Record) Get(name string) stmt.Value {
	v, _ := r.data.Get(name)
	return v
}

// Remove помечает строку удаленной.
// Для незагруженной записи возвращает false без запроса.
func (r *Record) Remove(ctx context.Context) (bool, error) {
	if !r.fetched {
		return false, nil
	}
	if _, err := r.store.Remove(ctx, r.table, crud.ByKey(r.table, r.key)); err != nil {
		return false, err
	}
	r.data.Set(crud.FieldIsDeleted, stmt.Int(1))
	return true, nil
}

// PendingCount - число измененных полей
func (r *Record) PendingCount() int {
	return r.pending.Len()
}

// Pending возвращает копию отложенных изменений
func (r *Record) Pending() *stmt.FieldMap {
	return r.pending.Clone()
}

// IsFetched - запись загружена или вставлена
func (r *Record) IsFetched() bool {
	return r.fetched
}

// Key возвращает значение первичного ключа (NULL до загрузки)
func (r *Record) Key() stmt.Value {
	return r.key
}

// Table возвращает имя таблицы
func (r *Record) Table() string {
	return r.table
}

// PrimaryKey возвращает имя колонки первичного ключа
func (r *Record) PrimaryKey() string {
	return r.primaryKey
}

// Data возвращает копию загруженных данных
func (r *Record) Data() *stmt.FieldMap {
	return r.data.Clone()
}
