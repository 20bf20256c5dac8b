// Package crud - табличные операции поверх query.Runner.
//
// Удаление только мягкое: Remove и Restore меняют флаг IsDeleted,
// Activate и Deactivate меняют IsActive. Физического DELETE нет.
package crud

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/query"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// Служебные колонки
const (
	FieldDateCreated = "DateCreated"
	FieldIsDeleted   = "IsDeleted"
	FieldIsActive    = "IsActive"
)

// Facade - CRUD операции над таблицами
type Facade struct {
	runner query.Runner
	now    func() time.Time
	logger zerolog.Logger
}

// Option - функциональная опция Facade
type Option func(*Facade)

// WithClock подменяет источник времени для DateCreated
func WithClock(now func() time.Time) Option {
	return func(f *Facade) {
		f.now = now
	}
}

// WithLogger задает логгер
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Facade) {
		f.logger = logger.With().Str("component", "crud").Logger()
	}
}

// New создает Facade
func New(runner query.Runner, opts ...Option) *Facade {
	f := &Facade{
		runner: runner,
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Insert добавляет строку и возвращает ее вместе с DateCreated и
// сгенерированным первичным ключом. fields не изменяется.
func (f *Facade) Insert(ctx context.Context, table string, fields *stmt.FieldMap) (*stmt.FieldMap, error) {
	row := fields.Clone()
	if !row.Has(FieldDateCreated) {
		row.Set(FieldDateCreated, stmt.Text(f.now().Format(stmt.DateTimeLayout)))
	}

	dialect := f.runner.Dialect()
	sql, err := stmt.Insert(dialect, table, row)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}

	res, err := f.runner.Query(ctx, sql)
	if err != nil {
		return nil, err
	}

	pk := stmt.Ident(table)
	id, ok := insertedID(dialect, pk, res)
	if ok {
		row.Set(pk, stmt.Int(id))
	}

	f.logger.Debug().Str("table", table).Int64("id", id).Msg("row inserted")
	return row, nil
}

func insertedID(dialect stmt.Dialect, pk string, res *driver.Result) (int64, bool) {
	if dialect.InsertID == stmt.InsertIDLast {
		return res.LastInsertID, res.LastInsertID > 0
	}
	v, ok := res.First().Get(pk)
	if !ok {
		return 0, false
	}
	return v.Int64()
}

// Select выбирает строки по where.
// Если where не задает IsDeleted, выбираются только неудаленные строки.
func (f *Facade) Select(ctx context.Context, table string, where *stmt.FieldMap) ([]*stmt.FieldMap, error) {
	cond := where.Clone()
	if !cond.Has(FieldIsDeleted) {
		cond.Set(FieldIsDeleted, stmt.Int(0))
	}

	sql, err := stmt.Select(table, cond)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return f.rows(ctx, sql)
}

// SelectKey выбирает строку по первичному ключу
func (f *Facade) SelectKey(ctx context.Context, table string, key int64) ([]*stmt.FieldMap, error) {
	return f.rows(ctx, stmt.SelectKey(table, key))
}

// SelectAll выбирает все строки таблицы, включая удаленные
func (f *Facade) SelectAll(ctx context.Context, table string) ([]*stmt.FieldMap, error) {
	sql, err := stmt.Select(table, nil)
	if err != nil {
		return nil, err
	}
	return f.rows(ctx, sql)
}

func (f *Facade) rows(ctx context.Context, sql string) ([]*stmt.FieldMap, error) {
	res, err := f.runner.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Update выполняет UPDATE table SET values WHERE where
func (f *Facade) Update(ctx context.Context, table string, values, where *stmt.FieldMap) (*driver.Result, error) {
	sql, err := stmt.Update(table, values, where)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	return f.runner.Query(ctx, sql)
}

// Remove помечает строки удаленными
func (f *Facade) Remove(ctx context.Context, table string, where *stmt.FieldMap) (*driver.Result, error) {
	return f.setFlag(ctx, table, FieldIsDeleted, true, where)
}

// Restore снимает пометку удаления
func (f *Facade) Restore(ctx context.Context, table string, where *stmt.FieldMap) (*driver.Result, error) {
	return f.setFlag(ctx, table, FieldIsDeleted, false, where)
}

// Activate устанавливает IsActive = 1
func (f *Facade) Activate(ctx context.Context, table string, where *stmt.FieldMap) (*driver.Result, error) {
	return f.setFlag(ctx, table, FieldIsActive, true, where)
}

// Deactivate устанавливает IsActive = 0
func (f *Facade) Deactivate(ctx context.Context, table string, where *stmt.FieldMap) (*driver.Result, error) {
	return f.setFlag(ctx, table, FieldIsActive, false, where)
}

func (f *Facade) setFlag(ctx context.Context, table, flag string, on bool, where *stmt.FieldMap) (*driver.Result, error) {
	var v int64
	if on {
		v = 1
	}
	return f.Update(ctx, table, stmt.NewFieldMap(stmt.Field{Name: flag, Value: stmt.Int(v)}), where)
}

// ByKey - условие по первичному ключу таблицы
func ByKey(table string, key stmt.Value) *stmt.FieldMap {
	return stmt.NewFieldMap(stmt.Field{Name: stmt.Ident(table), Value: key})
}
