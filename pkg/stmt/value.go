package stmt

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrUnsupportedValue - значение Go-типа, для которого нет SQL литерала
var ErrUnsupportedValue = errors.New("unsupported value type")

// DateTimeLayout - формат дат в SQL тексте (YYYY-MM-DD HH:MM:SS)
const DateTimeLayout = "2006-01-02 15:04:05"

// Kind - тег значения
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindText
)

// String - строковое представление тега
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Value - скалярное значение колонки с явным тегом.
// Нулевое значение Value - это NULL.
type Value struct {
	kind    Kind
	isFloat bool
	i       int64
	f       float64
	b       bool
	s       string
}

// Null возвращает NULL значение
func Null() Value { return Value{} }

// Int возвращает целое число
func Int(i int64) Value { return Value{kind: KindNumber, i: i} }

// Float возвращает число с плавающей точкой
func Float(f float64) Value { return Value{kind: KindNumber, isFloat: true, f: f} }

// Bool возвращает логическое значение
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Text возвращает строковое значение
func Text(s string) Value { return Value{kind: KindText, s: s} }

// finite отклоняет NaN и бесконечности: у них нет числового литерала SQL
func finite(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null(), fmt.Errorf("%w: non-finite float %v", ErrUnsupportedValue, f)
	}
	return Float(f), nil
}

// Of конвертирует значение Go в Value.
// Неизвестные типы отклоняются, а не интерполируются как строка.
func Of(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return Text(strconv.FormatUint(x, 10)), nil
		}
		return Int(int64(x)), nil
	case float32:
		return finite(float64(x))
	case float64:
		return finite(x)
	case bool:
		return Bool(x), nil
	case string:
		return Text(x), nil
	case []byte:
		return Text(string(x)), nil
	case time.Time:
		return Text(x.Format(DateTimeLayout)), nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// MustOf - как Of, но паникует на неподдерживаемом типе
func MustOf(v any) Value {
	val, err := Of(v)
	if err != nil {
		panic(err)
	}
	return val
}

// Kind возвращает тег значения
func (v Value) Kind() Kind { return v.kind }

// IsNull проверяет NULL
func (v Value) IsNull() bool { return v.kind == KindNull }

// Literal форматирует значение как SQL литерал.
// Строки берутся в одинарные кавычки без экранирования.
func (v Value) Literal() string {
	switch v.kind {
	case KindNumber:
		if v.isFloat {
			return strconv.FormatFloat(v.f, 'f', -1, 64)
		}
		return strconv.FormatInt(v.i, 10)
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindText:
		return "'" + v.s + "'"
	default:
		return "NULL"
	}
}

// String возвращает значение без кавычек (для вывода)
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindNull:
		return "NULL"
	default:
		return v.Literal()
	}
}

// Int64 возвращает целое значение.
// Текст приводится через strconv: драйвер MySQL отдает числа строками.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindNumber:
		if v.isFloat {
			return int64(v.f), v.f == math.Trunc(v.f)
		}
		return v.i, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindText:
		i, err := strconv.ParseInt(v.s, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// Any возвращает значение как нативный тип Go (nil, int64, float64, bool, string)
func (v Value) Any() any {
	switch v.kind {
	case KindNumber:
		if v.isFloat {
			return v.f
		}
		return v.i
	case KindBool:
		return v.b
	case KindText:
		return v.s
	default:
		return nil
	}
}
