package conn

import (
	"errors"
	"fmt"

	"github.com/ruslano69/recordkit/pkg/driver"
)

// ErrMaxAttemptsExceeded - исчерпан предел неудачных подключений.
// Состояние окончательное на все время жизни Manager.
var ErrMaxAttemptsExceeded = errors.New("max connection attempts reached")

// ErrClosed - Manager закрыт
var ErrClosed = errors.New("connection manager is closed")

// ConnectionError - неудачный handshake
type ConnectionError struct {
	// Code - класс ошибки по классификатору драйвера
	Code driver.Code

	// Attempt - номер неудачной попытки подряд
	Attempt int

	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error %s (attempt %d): %v", e.Code, e.Attempt, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
