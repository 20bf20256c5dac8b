package schema

import (
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// DefaultFields - служебные колонки, которые NewStrictTable добавляет в конец
func DefaultFields() []Field {
	return []Field{
		{
			Name:       "DateCreated",
			Type:       "DATETIME",
			TypeString: "DATETIME",
			IsNull:     true,
		},
		{
			Name:       "LastUpdated",
			Type:       "TIMESTAMP",
			TypeString: "TIMESTAMP",
			Default:    strPtr("CURRENT_TIMESTAMP"),
			Extra:      "on update CURRENT_TIMESTAMP",
		},
		{
			Name:       "IsActive",
			Type:       "tinyint",
			Unsigned:   true,
			Precision:  intPtr(3),
			Scale:      intPtr(0),
			TypeString: "tinyint(3) unsigned",
			Default:    strPtr("0"),
		},
		{
			Name:       "IsDeleted",
			Type:       "tinyint",
			Unsigned:   true,
			Precision:  intPtr(3),
			Scale:      intPtr(0),
			TypeString: "tinyint(3) unsigned",
			Default:    strPtr("0"),
		},
	}
}

// IdentityField - колонка первичного ключа <Table>Id
func IdentityField(table string) Field {
	return Field{
		Name:       stmt.Ident(table),
		Type:       "int",
		Unsigned:   true,
		Precision:  intPtr(11),
		TypeString: "int(11) unsigned",
		Extra:      "auto_increment",
		PrimaryKey: true,
	}
}

// NewTable создает описание таблицы из колонок.
// PrimaryKey - последняя колонка с флагом PrimaryKey.
func NewTable(db, name string, fields ...Field) *Table {
	t := &Table{
		DB:             db,
		Name:           name,
		Engine:         DefaultEngine,
		DefaultCharset: DefaultCharset,
		Fields:         make([]Field, 0, len(fields)),
	}
	for _, f := range fields {
		t.Fields = append(t.Fields, f)
		if f.PrimaryKey {
			t.PrimaryKey = f.Name
		}
	}
	return t
}

// NewStrictTable создает таблицу по соглашениям:
// первой идет <Table>Id, в конце DefaultFields.
// Уже заданные колонки с этими именами не дублируются.
func NewStrictTable(db, name string, fields ...Field) *Table {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		names[f.Name] = true
	}

	all := make([]Field, 0, len(fields)+5)
	if !names[stmt.Ident(name)] {
		all = append(all, IdentityField(name))
	}
	all = append(all, fields...)
	for _, f := range DefaultFields() {
		if !names[f.Name] {
			all = append(all, f)
		}
	}

	return NewTable(db, name, all...)
}
