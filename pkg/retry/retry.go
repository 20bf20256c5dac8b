// Package retry повторяет операцию с постоянной паузой до успеха,
// окончательной ошибки (Permanent) или отмены контекста.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryableFunc - функция которую можно retry
type RetryableFunc func(ctx context.Context) error

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent помечает ошибку как окончательную: Do вернет ее без повторов
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retryer выполняет retry логику
type Retryer struct {
	config Config
}

// NewRetryer создает новый Retryer
func NewRetryer(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	return &Retryer{config: config}, nil
}

// Do выполняет fn до успеха, Permanent ошибки или отмены ctx.
// Permanent ошибка возвращается без обертки.
func (r *Retryer) Do(ctx context.Context, fn RetryableFunc) error {
	attempts := 0

	for {
		attempts++

		err := fn(ctx)
		if err == nil {
			return nil
		}

		var p *permanentError
		if errors.As(err, &p) {
			return p.err
		}

		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		if r.config.OnRetry != nil {
			r.config.OnRetry(attempts, err, r.config.Delay)
		}

		timer := time.NewTimer(r.config.Delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}
