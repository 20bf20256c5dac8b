// Package driver - контракт драйвера СУБД и фабрика драйверов по имени.
package driver

import (
	"context"
	sqldriver "database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ruslano69/recordkit/pkg/stmt"
)

// ErrHandshakeTwice - Connect вызван на уже открытом handle
var ErrHandshakeTwice = errors.New("cannot enqueue handshake after already enqueuing a handshake")

// ErrNotConnected - запрос к handle без установленного соединения
var ErrNotConnected = errors.New("driver is not connected")

// Config - параметры подключения к СУБД
type Config struct {
	// Host - адрес сервера (для SQLite игнорируется)
	Host string `yaml:"host"`

	// Port - порт; 0 = порт по умолчанию для драйвера
	Port int `yaml:"port,omitempty"`

	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// Database - имя базы или путь к файлу для SQLite
	Database string `yaml:"database"`

	// MultipleStatements - разрешить несколько операторов в одном запросе
	MultipleStatements bool `yaml:"multiple_statements"`

	// ConnectTimeout - таймаут TCP handshake
	ConnectTimeout time.Duration `yaml:"connect_timeout,omitempty"`
}

// Addr возвращает host:port с портом по умолчанию
func (c Config) Addr(defaultPort int) string {
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Code - класс ошибки подключения
type Code int

const (
	CodeUnknown Code = iota
	// CodeConnectionLost - транспорт потерян или недоступен, попытку можно повторить
	CodeConnectionLost
	// CodeHandshakeTwice - повторный handshake на открытом handle
	CodeHandshakeTwice
	// CodeAccessDenied - сервер отклонил учетные данные
	CodeAccessDenied
)

// String возвращает код в терминах протокола MySQL
func (c Code) String() string {
	switch c {
	case CodeConnectionLost:
		return "PROTOCOL_CONNECTION_LOST"
	case CodeHandshakeTwice:
		return "PROTOCOL_ENQUEUE_HANDSHAKE_TWICE"
	case CodeAccessDenied:
		return "ER_ACCESS_DENIED_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Fatal - повторять попытку с этим кодом бессмысленно
func (c Code) Fatal() bool {
	return c == CodeHandshakeTwice || c == CodeAccessDenied
}

// Result - результат одного запроса
type Result struct {
	// Columns - имена колонок в порядке SELECT
	Columns []string

	// Rows - строки; пусто для INSERT/UPDATE без RETURNING
	Rows []*stmt.FieldMap

	LastInsertID int64
	RowsAffected int64

	// HasRows - запрос возвращает набор строк (SELECT, SHOW, RETURNING...)
	HasRows bool
}

// Empty - набор строк без единой строки
func (r *Result) Empty() bool {
	return r != nil && r.HasRows && len(r.Rows) == 0
}

// First возвращает первую строку или nil
func (r *Result) First() *stmt.FieldMap {
	if r == nil || len(r.Rows) == 0 {
		return nil
	}
	return r.Rows[0]
}

// Driver - узкий контракт, от которого зависит ядро.
// Реализация владеет одним handle; пула нет.
type Driver interface {
	// Connect выполняет handshake
	Connect(ctx context.Context) error

	// Query выполняет SQL текст как есть
	Query(ctx context.Context, sql string) (*Result, error)

	// Alive - handle открыт и пригоден для запросов
	Alive() bool

	// ThreadID - идентификатор сессии на сервере (для логов)
	ThreadID() string

	// Classify относит ошибку Connect к одному из кодов
	Classify(err error) Code

	// Dialect - особенности SQL текста
	Dialect() stmt.Dialect

	// Close закрывает handle
	Close() error
}

// ClassifyCommon распознает ошибки, общие для всех драйверов
func ClassifyCommon(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, ErrHandshakeTwice) {
		return CodeHandshakeTwice
	}
	if errors.Is(err, sqldriver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return CodeConnectionLost
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return CodeConnectionLost
	}
	return CodeUnknown
}

// literalRe - строковый литерал SQL; '' внутри - экранированная кавычка
var literalRe = regexp.MustCompile(`'(?:[^']|'')*'`)

// ReturnsRows определяет, вернет ли SQL текст набор строк.
// Содержимое строковых литералов не учитывается.
func ReturnsRows(sql string) bool {
	text := strings.TrimLeft(strings.TrimSpace(sql), "(")
	end := strings.IndexFunc(text, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '('
	})
	keyword := text
	if end >= 0 {
		keyword = text[:end]
	}

	switch strings.ToUpper(keyword) {
	case "SELECT", "SHOW", "DESCRIBE", "DESC", "EXPLAIN", "WITH", "PRAGMA", "VALUES":
		return true
	}

	upper := strings.ToUpper(literalRe.ReplaceAllString(text, "''"))
	return strings.Contains(upper, " RETURNING ") || strings.Contains(upper, " OUTPUT INSERTED.")
}

// CellValue конвертирует значение колонки драйвера в stmt.Value
func CellValue(v any) stmt.Value {
	if val, err := stmt.Of(v); err == nil {
		return val
	}
	return stmt.Text(fmt.Sprint(v))
}
