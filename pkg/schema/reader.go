package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/ruslano69/recordkit/pkg/query"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

const columnsTable = "information_schema.COLUMNS"

const attrsQuery = "SELECT CCSA.character_set_name AS defaultCharset, T.ENGINE AS tableEngine, T.AUTO_INCREMENT AS autoIncrement " +
	"FROM information_schema.TABLES T, information_schema.COLLATION_CHARACTER_SET_APPLICABILITY CCSA " +
	"WHERE CCSA.collation_name = T.table_collation AND "

// Reader читает описание существующей таблицы через information_schema
type Reader struct {
	runner query.Runner
}

// NewReader создает Reader
func NewReader(runner query.Runner) *Reader {
	return &Reader{runner: runner}
}

// FromDatabase строит Table для db.table
func (r *Reader) FromDatabase(ctx context.Context, db, table string) (*Table, error) {
	t := NewTable(db, table)

	where := stmt.NewFieldMap(
		stmt.Field{Name: "table_schema", Value: stmt.Text(db)},
		stmt.Field{Name: "table_name", Value: stmt.Text(table)},
	)
	sql, err := stmt.Select(columnsTable, where)
	if err != nil {
		return nil, err
	}

	res, err := r.runner.Query(ctx, sql+" ORDER BY ORDINAL_POSITION")
	if err != nil {
		return nil, fmt.Errorf("read columns of %s.%s: %w", db, table, err)
	}
	for _, row := range res.Rows {
		f := fieldFromColumn(row)
		if f.PrimaryKey {
			t.PrimaryKey = f.Name
		}
		t.Fields = append(t.Fields, f)
	}

	cond, err := stmt.BuildSetOrWhere("", stmt.NewFieldMap(
		stmt.Field{Name: "T.table_schema", Value: stmt.Text(db)},
		stmt.Field{Name: "T.table_name", Value: stmt.Text(table)},
	), stmt.DelimAnd, true)
	if err != nil {
		return nil, err
	}

	res, err = r.runner.Query(ctx, attrsQuery+cond)
	if err != nil {
		return nil, fmt.Errorf("read attributes of %s.%s: %w", db, table, err)
	}
	attrs := res.First()
	if v := text(attrs, "tableEngine"); v != "" {
		t.Engine = v
	}
	if v := text(attrs, "defaultCharset"); v != "" {
		t.DefaultCharset = v
	}
	if v, ok := column(attrs, "autoIncrement").Int64(); ok {
		t.AutoIncrement = v
	}

	return t, nil
}

func fieldFromColumn(row *stmt.FieldMap) Field {
	columnType := text(row, "COLUMN_TYPE")
	f := Field{
		Name:       text(row, "COLUMN_NAME"),
		Type:       text(row, "DATA_TYPE"),
		Unsigned:   strings.Contains(columnType, "unsigned"),
		Precision:  number(row, "NUMERIC_PRECISION"),
		Scale:      number(row, "NUMERIC_SCALE"),
		TypeString: columnType,
		IsNull:     text(row, "IS_NULLABLE") == "YES",
		Charset:    text(row, "CHARACTER_SET_NAME"),
		Collate:    text(row, "COLLATION_NAME"),
		Extra:      text(row, "EXTRA"),
		PrimaryKey: text(row, "COLUMN_KEY") == "PRI",
	}
	if v := column(row, "COLUMN_DEFAULT"); !v.IsNull() {
		f.Default = strPtr(v.String())
	}
	return f
}

// column ищет колонку без учета регистра: MySQL 5 и 8 возвращают
// имена колонок information_schema в разном регистре
func column(row *stmt.FieldMap, name string) stmt.Value {
	if v, ok := row.Get(name); ok {
		return v
	}
	for _, k := range row.Keys() {
		if strings.EqualFold(k, name) {
			v, _ := row.Get(k)
			return v
		}
	}
	return stmt.Null()
}

func text(row *stmt.FieldMap, name string) string {
	v := column(row, name)
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func number(row *stmt.FieldMap, name string) *int {
	v, ok := column(row, name).Int64()
	if !ok {
		return nil
	}
	return intPtr(int(v))
}
