// Package schema описывает таблицы и строит CREATE TABLE текст.
//
// Пакет только генерирует SQL: выполнение миграций не поддерживается.
// Описание существующей таблицы читается из information_schema (MySQL).
package schema

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Значения по умолчанию для таблицы
const (
	DefaultEngine  = "innoDb"
	DefaultCharset = "latin1"
)

// Table - описание таблицы
type Table struct {
	DB             string  `json:"db" yaml:"db"`
	Name           string  `json:"name" yaml:"name"`
	Engine         string  `json:"engine" yaml:"engine"`
	DefaultCharset string  `json:"defaultCharset" yaml:"default_charset"`
	AutoIncrement  int64   `json:"autoIncrement" yaml:"auto_increment"`
	PrimaryKey     string  `json:"primaryKey,omitempty" yaml:"primary_key,omitempty"`
	Fields         []Field `json:"fields" yaml:"fields"`
}

// Field - описание колонки
type Field struct {
	Name string `json:"name" yaml:"name"`

	// Type - тип без параметров (int, varchar, DATETIME)
	Type string `json:"type" yaml:"type"`

	Unsigned  bool `json:"unsigned" yaml:"unsigned"`
	Precision *int `json:"precision" yaml:"precision,omitempty"`
	Scale     *int `json:"scale" yaml:"scale,omitempty"`

	// TypeString - полный тип колонки (int(11) unsigned); пусто = собрать из Type
	TypeString string `json:"typeString" yaml:"type_string,omitempty"`

	IsNull  bool   `json:"isNull" yaml:"is_null"`
	Charset string `json:"charset,omitempty" yaml:"charset,omitempty"`
	Collate string `json:"collate,omitempty" yaml:"collate,omitempty"`

	// Default - значение DEFAULT как SQL текст; nil = без значения
	Default *string `json:"default" yaml:"default,omitempty"`

	// Extra - хвост определения (auto_increment, on update CURRENT_TIMESTAMP)
	Extra string `json:"typeStringExtra" yaml:"extra,omitempty"`

	PrimaryKey bool `json:"primaryKey,omitempty" yaml:"primary_key,omitempty"`
}

// ColumnType возвращает TypeString или собирает его из Type, Precision, Scale и Unsigned
func (f Field) ColumnType() string {
	if f.TypeString != "" {
		return f.TypeString
	}

	var sb strings.Builder
	sb.WriteString(f.Type)
	if f.Precision != nil {
		sb.WriteByte('(')
		sb.WriteString(strconv.Itoa(*f.Precision))
		if f.Scale != nil && *f.Scale > 0 {
			sb.WriteByte(',')
			sb.WriteString(strconv.Itoa(*f.Scale))
		}
		sb.WriteByte(')')
	}
	if f.Unsigned {
		sb.WriteString(" unsigned")
	}
	return sb.String()
}

// Field возвращает колонку по имени
func (t *Table) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasField проверяет наличие колонки
func (t *Table) HasField(name string) bool {
	_, ok := t.Field(name)
	return ok
}

// ToJSON - описание таблицы для импорта
func (t *Table) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// FromJSON читает описание таблицы
func FromJSON(data []byte) (*Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func intPtr(v int) *int { return &v }

func strPtr(s string) *string { return &s }
