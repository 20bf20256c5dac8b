package schema

import "fmt"

// Validate проверяет описание таблицы перед генерацией SQL
func Validate(t *Table) error {
	if t.Name == "" {
		return fmt.Errorf("table name is empty")
	}
	if len(t.Fields) == 0 {
		return fmt.Errorf("table %s must have at least one field", t.Name)
	}

	names := make(map[string]bool, len(t.Fields))
	for i, f := range t.Fields {
		if f.Name == "" {
			return fmt.Errorf("field at index %d has empty name", i)
		}
		if names[f.Name] {
			return fmt.Errorf("duplicate field name: %s", f.Name)
		}
		names[f.Name] = true

		if f.ColumnType() == "" {
			return fmt.Errorf("field '%s' has no type", f.Name)
		}
	}

	if t.PrimaryKey != "" && !names[t.PrimaryKey] {
		return fmt.Errorf("primary key '%s' is not a field of %s", t.PrimaryKey, t.Name)
	}
	return nil
}
