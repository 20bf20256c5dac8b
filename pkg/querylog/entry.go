package querylog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/xxh3"
)

// Entry - запись о выполненном запросе
type Entry struct {
	// ID - уникальный идентификатор записи
	ID string `json:"id"`

	// SQL - текст запроса как он ушел в драйвер
	SQL string `json:"sql"`

	// Fingerprint - хэш текста без литералов; одинаков для запросов одной формы
	Fingerprint uint64 `json:"fingerprint"`

	// Started - время начала (включая ожидание подключения)
	Started time.Time `json:"started"`

	// Elapsed - длительность от вызова до результата
	Elapsed time.Duration `json:"elapsed"`

	// Rows - количество строк в результате или затронутых строк
	Rows int64 `json:"rows,omitempty"`

	// Error - сообщение об ошибке; пусто при успехе
	Error string `json:"error,omitempty"`
}

// NewEntry создает запись для SQL текста
func NewEntry(sql string, started time.Time, elapsed time.Duration, err error) Entry {
	e := Entry{
		ID:          uuid.NewString(),
		SQL:         sql,
		Fingerprint: Fingerprint(sql),
		Started:     started,
		Elapsed:     elapsed,
	}
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// Failed - запрос завершился ошибкой
func (e Entry) Failed() bool {
	return e.Error != ""
}

// ToJSON - преобразовать в JSON
func (e Entry) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// String - строковое представление
func (e Entry) String() string {
	s := fmt.Sprintf("[%s] %s (%v, rows=%d)", e.Started.Format(time.RFC3339), e.SQL, e.Elapsed, e.Rows)
	if e.Failed() {
		s += " error: " + e.Error
	}
	return s
}

var (
	textLiteral   = regexp.MustCompile(`'[^']*'`)
	numberLiteral = regexp.MustCompile(`\b-?\d+(\.\d+)?\b`)
)

// Normalize заменяет литералы на ?
func Normalize(sql string) string {
	s := textLiteral.ReplaceAllString(sql, "?")
	return numberLiteral.ReplaceAllString(s, "?")
}

// Fingerprint - xxh3 от нормализованного текста
func Fingerprint(sql string) uint64 {
	return xxh3.HashString(Normalize(sql))
}
