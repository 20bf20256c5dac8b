package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ruslano69/recordkit/pkg/query"
	"github.com/ruslano69/recordkit/pkg/querylog"
	"github.com/ruslano69/recordkit/pkg/stmt"
)

// identRe - допустимые имена таблиц и колонок
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type errorResponse struct {
	Error string `json:"error"`
}

// ========== Query log ==========

type queryLogHandler struct {
	log *querylog.Log
}

// List отдает журнал; ?limit=N - последние N записей
func (h *queryLogHandler) List(w http.ResponseWriter, r *http.Request) {
	entries := h.log.Entries()

	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		if limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}

	writeJSON(w, http.StatusOK, entries)
}

type statResponse struct {
	Fingerprint string  `json:"fingerprint"`
	Example     string  `json:"example"`
	Count       int     `json:"count"`
	Errors      int     `json:"errors"`
	TotalMs     float64 `json:"total_ms"`
}

// Summary отдает статистику по нормализованным запросам
func (h *queryLogHandler) Summary(w http.ResponseWriter, _ *http.Request) {
	stats := h.log.Summary()
	out := make([]statResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, statResponse{
			Fingerprint: strconv.FormatUint(s.Fingerprint, 16),
			Example:     s.Example,
			Count:       s.Count,
			Errors:      s.Errors,
			TotalMs:     float64(s.Total.Microseconds()) / 1000,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ========== Records ==========

type recordsHandler struct {
	records Records
}

// List выбирает неудаленные строки; параметры запроса - условия равенства
func (h *recordsHandler) List(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !identRe.MatchString(table) {
		writeError(w, http.StatusBadRequest, "invalid table name")
		return
	}

	where, err := whereFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.records.Select(r.Context(), table, where)
	h.writeRows(w, rows, err)
}

// Get выбирает строку по первичному ключу
func (h *recordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	if !identRe.MatchString(table) {
		writeError(w, http.StatusBadRequest, "invalid table name")
		return
	}

	key, err := strconv.ParseInt(chi.URLParam(r, "key"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "key must be an integer")
		return
	}

	rows, err := h.records.SelectKey(r.Context(), table, key)
	if err == nil && len(rows) == 0 {
		err = query.ErrEmptyResult
	}
	if err != nil {
		h.writeRows(w, nil, err)
		return
	}
	writeJSON(w, http.StatusOK, rowJSON(rows[0]))
}

func (h *recordsHandler) writeRows(w http.ResponseWriter, rows []*stmt.FieldMap, err error) {
	switch {
	case errors.Is(err, query.ErrEmptyResult):
		writeError(w, http.StatusNotFound, "no rows")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowJSON(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// whereFromQuery: целые числа остаются числами, остальное - текст
func whereFromQuery(r *http.Request) (*stmt.FieldMap, error) {
	params := r.URL.Query()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	where := stmt.NewFieldMap()
	for _, name := range names {
		if !identRe.MatchString(name) {
			return nil, errors.New("invalid column name: " + name)
		}
		values := params[name]
		v := values[len(values)-1]
		// Literal не экранирует; обратный слэш в MySQL экранирует закрывающую кавычку
		if strings.ContainsAny(v, `'\`) {
			return nil, errors.New("quotes and backslashes are not allowed in values")
		}
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			where.Set(name, stmt.Int(i))
		} else {
			where.Set(name, stmt.Text(v))
		}
	}
	return where, nil
}

func rowJSON(row *stmt.FieldMap) map[string]any {
	out := make(map[string]any, row.Len())
	for _, f := range row.Fields() {
		out[f.Name] = f.Value.Any()
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
