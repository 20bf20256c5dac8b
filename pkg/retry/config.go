package retry

import (
	"fmt"
	"time"
)

// Config содержит конфигурацию для retry механизма.
// Предел попыток задает сама функция через Permanent.
type Config struct {
	// Delay - постоянная задержка между попытками
	Delay time.Duration

	// OnRetry - вызывается перед каждым повтором
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("delay must be >= 0, got %v", c.Delay)
	}
	return nil
}

// Fixed - постоянная задержка без предела попыток
func Fixed(delay time.Duration) Config {
	return Config{Delay: delay}
}
