package conn

import (
	"fmt"
	"time"
)

// Значения по умолчанию
const (
	DefaultConnectionRetryTimeout          = 5 * time.Second
	DefaultAllowedFailedConnectionAttempts = 10
)

// Config - бюджет повторных подключений
type Config struct {
	// ConnectionRetryTimeout - фиксированная пауза между попытками
	ConnectionRetryTimeout time.Duration `yaml:"connection_retry_timeout"`

	// AllowedFailedConnectionAttempts - предел подряд неудачных handshake
	AllowedFailedConnectionAttempts int `yaml:"allowed_failed_connection_attempts"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		ConnectionRetryTimeout:          DefaultConnectionRetryTimeout,
		AllowedFailedConnectionAttempts: DefaultAllowedFailedConnectionAttempts,
	}
}

// Validate проверяет конфигурацию
func (c Config) Validate() error {
	if c.ConnectionRetryTimeout < 0 {
		return fmt.Errorf("connection_retry_timeout must be >= 0, got %v", c.ConnectionRetryTimeout)
	}
	if c.AllowedFailedConnectionAttempts < 1 {
		return fmt.Errorf("allowed_failed_connection_attempts must be >= 1, got %d", c.AllowedFailedConnectionAttempts)
	}
	return nil
}
