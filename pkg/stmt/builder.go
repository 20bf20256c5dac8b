package stmt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidDelimiter - разделитель не один из ",", "and", "or"
	ErrInvalidDelimiter = errors.New("SQL statement error: invalid field delimiter")

	// ErrEmptyFieldSet - после фильтрации identity поля не осталось колонок
	ErrEmptyFieldSet = errors.New("SQL statement error: no fields to write")

	// ErrEmptyPredicate - UPDATE без условия затронул бы всю таблицу
	ErrEmptyPredicate = errors.New("SQL statement error: empty predicate")
)

// Delimiter - разделитель фрагментов "col = literal"
type Delimiter string

const (
	DelimComma Delimiter = ","
	DelimAnd   Delimiter = "and"
	DelimOr    Delimiter = "or"
)

// Valid проверяет что разделитель распознан
func (d Delimiter) Valid() bool {
	switch d {
	case DelimComma, DelimAnd, DelimOr:
		return true
	}
	return false
}

// identAlias - устаревшее имя identity поля, пропускается наравне с <Table>Id
const identAlias = "ident"

// InsertIDMode - как диалект возвращает сгенерированный identity
type InsertIDMode int

const (
	// InsertIDLast - LAST_INSERT_ID() драйвера (MySQL, SQLite)
	InsertIDLast InsertIDMode = iota
	// InsertIDReturning - INSERT ... RETURNING <pk> (PostgreSQL)
	InsertIDReturning
	// InsertIDOutput - INSERT ... OUTPUT INSERTED.<pk> (MS SQL)
	InsertIDOutput
)

// Dialect - особенности SQL текста конкретной СУБД
type Dialect struct {
	Name     string
	InsertID InsertIDMode
}

var (
	DialectMySQL    = Dialect{Name: "mysql", InsertID: InsertIDLast}
	DialectSQLite   = Dialect{Name: "sqlite", InsertID: InsertIDLast}
	DialectPostgres = Dialect{Name: "postgres", InsertID: InsertIDReturning}
	DialectMSSQL    = Dialect{Name: "mssql", InsertID: InsertIDOutput}
)

// Ident возвращает имя первичного ключа таблицы по соглашению <Table>Id
func Ident(table string) string {
	return table + "Id"
}

func isIdentity(table, name string) bool {
	return name == identAlias || name == Ident(table)
}

// BuildSetOrWhere превращает FieldMap в SET или WHERE фрагмент.
// Identity поле пропускается, если allowIdentity == false.
// NULL в SET дает "col = NULL", в WHERE - "col IS NULL".
func BuildSetOrWhere(table string, fields *FieldMap, delim Delimiter, allowIdentity bool) (string, error) {
	if !delim.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDelimiter, string(delim))
	}

	parts := make([]string, 0, fields.Len())
	for _, f := range fields.Fields() {
		if !allowIdentity && isIdentity(table, f.Name) {
			continue
		}
		if f.Value.IsNull() && delim != DelimComma {
			parts = append(parts, f.Name+" IS NULL")
			continue
		}
		parts = append(parts, f.Name+" = "+f.Value.Literal())
	}

	return strings.Join(parts, " "+string(delim)+" "), nil
}

// Insert строит INSERT из всех полей кроме identity.
// Для PostgreSQL и MS SQL запрос сам возвращает identity строкой.
func Insert(d Dialect, table string, fields *FieldMap) (string, error) {
	cols := make([]string, 0, fields.Len())
	vals := make([]string, 0, fields.Len())
	for _, f := range fields.Fields() {
		if isIdentity(table, f.Name) {
			continue
		}
		cols = append(cols, f.Name)
		vals = append(vals, f.Value.Literal())
	}
	if len(cols) == 0 {
		return "", ErrEmptyFieldSet
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(")")
	if d.InsertID == InsertIDOutput {
		sb.WriteString(" OUTPUT INSERTED.")
		sb.WriteString(Ident(table))
	}
	sb.WriteString(" VALUES (")
	sb.WriteString(strings.Join(vals, ", "))
	sb.WriteString(")")
	if d.InsertID == InsertIDReturning {
		sb.WriteString(" RETURNING ")
		sb.WriteString(Ident(table))
	}
	return sb.String(), nil
}

// Select строит SELECT * с WHERE по where (identity разрешен).
// nil или пустой where дает выборку без условия.
func Select(table string, where *FieldMap) (string, error) {
	sql := "SELECT * FROM " + table
	if where.Len() == 0 {
		return sql, nil
	}
	cond, err := BuildSetOrWhere(table, where, DelimAnd, true)
	if err != nil {
		return "", err
	}
	return sql + " WHERE " + cond, nil
}

// SelectKey строит SELECT * по первичному ключу
func SelectKey(table string, key int64) string {
	return "SELECT * FROM " + table + " WHERE " + Ident(table) + " = " + Int(key).Literal()
}

// Update строит UPDATE table SET <values> WHERE <where>
func Update(table string, values, where *FieldMap) (string, error) {
	set, err := BuildSetOrWhere(table, values, DelimComma, false)
	if err != nil {
		return "", err
	}
	if set == "" {
		return "", ErrEmptyFieldSet
	}
	cond, err := BuildSetOrWhere(table, where, DelimAnd, true)
	if err != nil {
		return "", err
	}
	if cond == "" {
		return "", ErrEmptyPredicate
	}
	return "UPDATE " + table + " SET " + set + " WHERE " + cond, nil
}
