// Package querylog - журнал выполненных запросов.
//
// Журнал только дописывается и не ограничен по размеру: записи не вытесняются
// за все время жизни процесса. Копии записей можно отправлять в appender'ы
// (файл, Redis).
package querylog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Config - конфигурация журнала
type Config struct {
	// Appenders - получатели копий записей
	Appenders []Appender

	// OnError - callback при ошибке appender'а; запись в памяти сохраняется всегда
	OnError func(error)
}

// Log - журнал запросов
type Log struct {
	mu        sync.RWMutex
	entries   []Entry
	appenders []Appender
	onError   func(error)
}

// New создает журнал
func New(config Config) *Log {
	return &Log{
		appenders: config.Appenders,
		onError:   config.OnError,
	}
}

// Append дописывает запись и передает ее appender'ам
func (l *Log) Append(ctx context.Context, entry Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	appenders := l.appenders
	l.mu.Unlock()

	for _, appender := range appenders {
		if err := appender.Append(ctx, entry); err != nil && l.onError != nil {
			l.onError(fmt.Errorf("query log appender: %w", err))
		}
	}
}

// Record создает запись из результата запроса и дописывает ее
func (l *Log) Record(ctx context.Context, sql string, started time.Time, rows int64, err error) Entry {
	entry := NewEntry(sql, started, time.Since(started), err)
	entry.Rows = rows
	l.Append(ctx, entry)
	return entry
}

// Entries возвращает копию записей в порядке добавления
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len - количество записей
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Last возвращает последнюю запись
func (l *Log) Last() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Print выводит журнал в w
func (l *Log) Print(w io.Writer) {
	entries := l.Entries()

	fmt.Fprintln(w, "Query Log")
	for i, e := range entries {
		fmt.Fprintf(w, "Query #%d\n", i+1)
		fmt.Fprintf(w, "  SQL:     %s\n", e.SQL)
		fmt.Fprintf(w, "  Elapsed: %v\n", e.Elapsed)
		if e.Failed() {
			fmt.Fprintf(w, "  Error:   %s\n", e.Error)
		}
	}
}

// Stat - статистика по одной форме запроса
type Stat struct {
	Fingerprint uint64

	// Example - первый запрос этой формы
	Example string

	Count  int
	Errors int
	Total  time.Duration
}

// Summary группирует записи по Fingerprint.
// Порядок - по убыванию суммарного времени.
func (l *Log) Summary() []Stat {
	entries := l.Entries()

	index := make(map[uint64]int)
	var stats []Stat
	for _, e := range entries {
		i, ok := index[e.Fingerprint]
		if !ok {
			i = len(stats)
			index[e.Fingerprint] = i
			stats = append(stats, Stat{Fingerprint: e.Fingerprint, Example: e.SQL})
		}
		stats[i].Count++
		stats[i].Total += e.Elapsed
		if e.Failed() {
			stats[i].Errors++
		}
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Total > stats[b].Total
	})
	return stats
}

// Close закрывает все appender'ы
func (l *Log) Close() error {
	l.mu.Lock()
	appenders := l.appenders
	l.appenders = nil
	l.mu.Unlock()

	var errs []error
	for _, appender := range appenders {
		if err := appender.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
