// Package conn управляет единственным соединением с базой данных.
//
// Manager проходит состояния Disconnected -> Connecting -> Connected.
// Одновременно выполняется не больше одной серии попыток подключения:
// вызовы Connect во время серии становятся ожидающими и получают ее общий итог.
package conn

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/retry"
)

// State - состояние соединения
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Option - функциональная опция Manager
type Option func(*Manager)

// WithLogger задает логгер
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger.With().Str("component", "conn").Logger()
	}
}

// WithProgress задает callback, вызываемый когда Connect присоединяется
// к уже идущей серии попыток. Аргумент - число неудачных попыток к этому моменту.
func WithProgress(fn func(failed int)) Option {
	return func(m *Manager) {
		m.onProgress = fn
	}
}

// Observer получает события подключения (метрики)
type Observer interface {
	// ObserveConnectAttempt вызывается после каждого handshake; err == nil - успех
	ObserveConnectAttempt(code driver.Code, err error)
	// ObserveState вызывается при смене состояния
	ObserveState(state string)
}

// WithObserver задает наблюдателя
func WithObserver(o Observer) Option {
	return func(m *Manager) {
		m.observer = o
	}
}

// Manager владеет handle драйвера и его жизненным циклом
type Manager struct {
	drv        driver.Driver
	config     Config
	retryer    *retry.Retryer
	logger     zerolog.Logger
	onProgress func(failed int)
	observer   Observer

	// ctx отменяется в Close и прерывает паузу между попытками
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	failed    int
	exhausted bool
	closed    bool
	waiters   []chan error
}

// NewManager создает Manager без подключения
func NewManager(drv driver.Driver, config Config, opts ...Option) (*Manager, error) {
	if drv == nil {
		return nil, fmt.Errorf("driver is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid connection config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		drv:    drv,
		config: config,
		logger: zerolog.Nop(),
		ctx:    ctx,
		cancel: cancel,
	}

	// Предел попыток считает Manager, Retryer только выдерживает паузу
	rc := retry.Fixed(config.ConnectionRetryTimeout)
	rc.OnRetry = m.onRetry
	retryer, err := retry.NewRetryer(rc)
	if err != nil {
		cancel()
		return nil, err
	}
	m.retryer = retryer

	for _, opt := range opts {
		opt(m)
	}
	m.setState(StateDisconnected)
	return m, nil
}

// setState меняет состояние; вызывается под m.mu
func (m *Manager) setState(s State) {
	m.state = s
	if m.observer != nil {
		m.observer.ObserveState(s.String())
	}
}

// Driver возвращает handle драйвера
func (m *Manager) Driver() driver.Driver {
	return m.drv
}

// IsConnected - handle открыт и пригоден для запросов
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateConnected && m.drv.Alive()
}

// State возвращает текущее состояние
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FailedAttempts - число неудачных попыток подряд
func (m *Manager) FailedAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// Waiters - число вызовов Connect, ожидающих текущую серию
func (m *Manager) Waiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// Connect блокируется до подключения или ошибки.
// Отмена ctx прекращает только ожидание вызывающего, серия попыток продолжается.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.state == StateConnected && m.drv.Alive() {
		m.mu.Unlock()
		return nil
	}
	if m.exhausted {
		m.mu.Unlock()
		return ErrMaxAttemptsExceeded
	}

	ch := make(chan error, 1)
	m.waiters = append(m.waiters, ch)

	if m.state == StateConnecting {
		failed := m.failed
		m.mu.Unlock()

		m.logger.Debug().Int("failed", failed).Msg("still connecting")
		if m.onProgress != nil {
			m.onProgress(failed)
		}
	} else {
		if m.state == StateConnected {
			m.logger.Warn().Msg("connection lost, reconnecting")
		}
		m.setState(StateConnecting)
		m.mu.Unlock()

		go m.run()
	}

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run выполняет серию попыток и раздает итог всем ожидающим
func (m *Manager) run() {
	started := time.Now()
	err := m.retryer.Do(m.ctx, m.attempt)

	m.mu.Lock()
	closed := m.closed
	// handshake успел завершиться после Close: handle открыт заново
	reopened := closed && err == nil
	switch {
	case closed:
		m.setState(StateDisconnected)
		err = ErrClosed
	case err == nil:
		m.setState(StateConnected)
		m.failed = 0
	default:
		m.setState(StateDisconnected)
	}
	waiters := m.waiters
	m.waiters = nil
	m.mu.Unlock()

	if reopened {
		m.drv.Close()
	}

	if err == nil {
		m.logger.Info().
			Str("thread_id", m.drv.ThreadID()).
			Dur("elapsed", time.Since(started)).
			Int("waiters", len(waiters)).
			Msg("connected to database")
	}

	for _, ch := range waiters {
		ch <- err
	}
}

// attempt - один handshake
func (m *Manager) attempt(ctx context.Context) error {
	err := m.drv.Connect(ctx)
	if err == nil {
		if m.observer != nil {
			m.observer.ObserveConnectAttempt(driver.CodeUnknown, nil)
		}
		return nil
	}

	code := m.drv.Classify(err)
	if m.observer != nil {
		m.observer.ObserveConnectAttempt(code, err)
	}

	m.mu.Lock()
	m.failed++
	failed := m.failed
	if failed >= m.config.AllowedFailedConnectionAttempts {
		m.exhausted = true
	}
	exhausted := m.exhausted
	m.mu.Unlock()

	connErr := &ConnectionError{Code: code, Attempt: failed, Err: err}

	m.logger.Warn().
		Err(err).
		Str("code", code.String()).
		Int("attempt", failed).
		Int("max_attempts", m.config.AllowedFailedConnectionAttempts).
		Msg("connection attempt failed")

	if exhausted {
		m.logger.Error().
			Int("attempts", failed).
			Msg("max connection attempts reached, giving up")
		return retry.Permanent(fmt.Errorf("%w: %w", ErrMaxAttemptsExceeded, connErr))
	}

	if code.Fatal() {
		return retry.Permanent(connErr)
	}

	return connErr
}

// onRetry вызывается Retryer перед паузой
func (m *Manager) onRetry(attempt int, err error, delay time.Duration) {
	m.logger.Info().
		Int("attempt", attempt).
		Dur("retry_in", delay).
		Msg("retrying connection")
}

// Close закрывает handle. Идущая серия попыток прерывается на паузе.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.setState(StateDisconnected)
	m.mu.Unlock()

	m.cancel()
	return m.drv.Close()
}
