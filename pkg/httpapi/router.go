// Package httpapi - HTTP сервис поверх CRUD слоя.
//
// Отдает состояние подключения, метрики Prometheus, журнал запросов
// и чтение строк по первичному ключу. Запись через HTTP не поддерживается.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ruslano69/recordkit/pkg/conn"
	"github.com/ruslano69/recordkit/pkg/querylog"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// DefaultRequestTimeout - предел времени обработки запроса
const DefaultRequestTimeout = 30 * time.Second

// Health - состояние подключения
type Health interface {
	IsConnected() bool
	State() conn.State
	FailedAttempts() int
}

// Records - чтение строк
type Records interface {
	Select(ctx context.Context, table string, where *stmt.FieldMap) ([]*stmt.FieldMap, error)
	SelectKey(ctx context.Context, table string, key int64) ([]*stmt.FieldMap, error)
}

// Deps - зависимости роутера; nil поля отключают соответствующие маршруты
type Deps struct {
	Health   Health
	Records  Records
	QueryLog *querylog.Log
	Metrics  http.Handler
	Logger   zerolog.Logger
	Timeout  time.Duration
}

// NewRouter собирает chi роутер
func NewRouter(deps Deps) http.Handler {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(requestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/healthz", handleHealthz)
	if deps.Health != nil {
		r.Get("/readyz", handleReadyz(deps.Health))
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	if deps.QueryLog != nil {
		h := &queryLogHandler{log: deps.QueryLog}
		r.Route("/api/querylog", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/summary", h.Summary)
		})
	}

	if deps.Records != nil {
		h := &recordsHandler{records: deps.Records}
		r.Route("/api/tables/{table}/rows", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/{key}", h.Get)
		})
	}

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readyResponse struct {
	State          string `json:"state"`
	FailedAttempts int    `json:"failed_attempts"`
}

// handleReadyz отвечает 503, пока handle не подключен
func handleReadyz(h Health) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		status := http.StatusOK
		if !h.IsConnected() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, readyResponse{
			State:          h.State().String(),
			FailedAttempts: h.FailedAttempts(),
		})
	}
}
