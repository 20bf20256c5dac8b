// Package config загружает конфигурацию recordkit из YAML.
//
// Порядок: значения по умолчанию, затем файл, затем переменные окружения
// RECORDKIT_DB_HOST и RECORDKIT_DB_PASSWORD.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ruslano69/recordkit/pkg/conn"
	"github.com/ruslano69/recordkit/pkg/driver"
	"github.com/ruslano69/recordkit/pkg/querylog"
)

// Переменные окружения
const (
	EnvHost     = "RECORDKIT_DB_HOST"
	EnvPassword = "RECORDKIT_DB_PASSWORD"
)

// Error - ошибка конфигурации
type Error struct {
	// Field - ключ YAML; пусто для ошибок чтения файла
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "config: " + e.Err.Error()
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrRequired - обязательный параметр не задан
var ErrRequired = errors.New("is required")

// Config - конфигурация приложения
type Config struct {
	// Driver - имя драйвера (mysql, postgres, mssql, sqlite)
	Driver string `yaml:"driver"`

	DB driver.Config `yaml:",inline"`

	// ConnectionRetryTimeout - пауза между попытками подключения, мс
	ConnectionRetryTimeout int `yaml:"connection_retry_timeout"`

	// AllowedFailedConnectionAttempts - предел неудачных подключений
	AllowedFailedConnectionAttempts int `yaml:"allowed_failed_connection_attempts"`

	Log      LogConfig      `yaml:"log"`
	QueryLog QueryLogConfig `yaml:"query_log"`
	Server   ServerConfig   `yaml:"server"`
}

// ServerConfig - HTTP сервис (recordctl --serve)
type ServerConfig struct {
	Addr         string        `yaml:"addr"`          // default ":8080"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default 10s
}

// LogConfig - параметры zerolog
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console или json
}

// QueryLogConfig - куда дублировать журнал запросов
type QueryLogConfig struct {
	// File - путь к файлу JSON lines; пусто = не писать
	File string `yaml:"file"`

	// Redis - пустой addr = не писать
	Redis querylog.RedisConfig `yaml:"redis"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Driver: "mysql",
		DB: driver.Config{
			Host:               "localhost",
			User:               "root",
			Password:           "",
			MultipleStatements: true,
		},
		ConnectionRetryTimeout:          int(conn.DefaultConnectionRetryTimeout / time.Millisecond),
		AllowedFailedConnectionAttempts: conn.DefaultAllowedFailedConnectionAttempts,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Load читает файл, применяет окружение и проверяет результат
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("read %q: %w", path, err)}
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Err: fmt.Errorf("parse %q: %w", path, err)}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv переопределяет параметры из окружения
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvHost); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.DB.Password = v
	}
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	if c.Driver == "" {
		return &Error{Field: "driver", Err: ErrRequired}
	}
	if c.DB.Database == "" && c.Driver != "sqlite" {
		return &Error{Field: "database", Err: ErrRequired}
	}
	if c.Driver != "sqlite" && c.DB.Host == "" {
		return &Error{Field: "host", Err: ErrRequired}
	}
	if c.ConnectionRetryTimeout < 0 {
		return &Error{Field: "connection_retry_timeout", Err: fmt.Errorf("must be >= 0, got %d", c.ConnectionRetryTimeout)}
	}
	if c.AllowedFailedConnectionAttempts < 1 {
		return &Error{Field: "allowed_failed_connection_attempts", Err: fmt.Errorf("must be >= 1, got %d", c.AllowedFailedConnectionAttempts)}
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return &Error{Field: "log.level", Err: err}
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return &Error{Field: "log.format", Err: fmt.Errorf("unknown format %q", c.Log.Format)}
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return &Error{Field: "server", Err: errors.New("timeouts must be >= 0")}
	}
	return nil
}

// Conn возвращает бюджет подключений для conn.Manager
func (c *Config) Conn() conn.Config {
	return conn.Config{
		ConnectionRetryTimeout:          time.Duration(c.ConnectionRetryTimeout) * time.Millisecond,
		AllowedFailedConnectionAttempts: c.AllowedFailedConnectionAttempts,
	}
}

// NewLogger создает zerolog.Logger по LogConfig
func (c LogConfig) NewLogger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil || c.Level == "" {
		level = zerolog.InfoLevel
	}

	out := w
	if c.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// OpenQueryLog создает журнал запросов с appender'ами из конфигурации
func (c QueryLogConfig) OpenQueryLog(onError func(error)) (*querylog.Log, error) {
	var appenders []querylog.Appender

	if c.File != "" {
		fa, err := querylog.NewFileAppender(c.File)
		if err != nil {
			return nil, &Error{Field: "query_log.file", Err: err}
		}
		appenders = append(appenders, fa)
	}
	if c.Redis.Addr != "" {
		appenders = append(appenders, querylog.NewRedisAppender(c.Redis))
	}

	return querylog.New(querylog.Config{Appenders: appenders, OnError: onError}), nil
}
