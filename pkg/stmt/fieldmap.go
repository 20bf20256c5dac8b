package stmt

import "strings"

// Field - пара колонка/значение
type Field struct {
	Name  string
	Value Value
}

// F - короткий конструктор Field из значения Go.
// Паникует на неподдерживаемом типе, поэтому предназначен для литералов в коде.
func F(name string, v any) Field {
	return Field{Name: name, Value: MustOf(v)}
}

// FieldMap - упорядоченное отображение колонка -> значение.
// Порядок вставки сохраняется, повторный Set не меняет позицию ключа.
// Нулевое значение готово к использованию.
type FieldMap struct {
	keys   []string
	values map[string]Value
}

// NewFieldMap создает FieldMap из полей в заданном порядке
func NewFieldMap(fields ...Field) *FieldMap {
	m := &FieldMap{values: make(map[string]Value, len(fields))}
	for _, f := range fields {
		m.Set(f.Name, f.Value)
	}
	return m
}

// Set устанавливает значение колонки
func (m *FieldMap) Set(name string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = v
}

// Get возвращает значение колонки
func (m *FieldMap) Get(name string) (Value, bool) {
	if m == nil {
		return Null(), false
	}
	v, ok := m.values[name]
	return v, ok
}

// Has проверяет наличие колонки
func (m *FieldMap) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Delete удаляет колонку
func (m *FieldMap) Delete(name string) {
	if m == nil {
		return
	}
	if _, ok := m.values[name]; !ok {
		return
	}
	delete(m.values, name)
	for i, k := range m.keys {
		if k == name {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len возвращает количество колонок
func (m *FieldMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys возвращает колонки в порядке вставки
func (m *FieldMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Fields возвращает пары в порядке вставки
func (m *FieldMap) Fields() []Field {
	if m == nil {
		return nil
	}
	out := make([]Field, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, Field{Name: k, Value: m.values[k]})
	}
	return out
}

// Clone возвращает независимую копию
func (m *FieldMap) Clone() *FieldMap {
	out := &FieldMap{values: make(map[string]Value, m.Len())}
	if m == nil {
		return out
	}
	out.keys = append(out.keys, m.keys...)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// Merge переносит все значения other поверх m
func (m *FieldMap) Merge(other *FieldMap) {
	for _, f := range other.Fields() {
		m.Set(f.Name, f.Value)
	}
}

// String - отладочное представление {a: 1, b: 'x'}
func (m *FieldMap) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range m.Fields() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Value.Literal())
	}
	sb.WriteByte('}')
	return sb.String()
}
