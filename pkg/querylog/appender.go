package querylog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressedExt - файлы с этим расширением пишутся кадрами zstd
const CompressedExt = ".zst"

// Appender - получатель копий записей журнала
type Appender interface {
	// Append - записать entry
	Append(ctx context.Context, entry Entry) error

	// Close - закрыть appender
	Close() error
}

// FileAppender - запись в файл в формате JSON lines.
// Для пути с расширением .zst каждая запись сжимается отдельным кадром zstd,
// поэтому дозапись в существующий файл остается корректной.
type FileAppender struct {
	mu       sync.Mutex
	file     *os.File
	filePath string
	encoder  *zstd.Encoder
}

// NewFileAppender открывает файл на дозапись, создавая директорию
func NewFileAppender(filePath string) (*FileAppender, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open query log file: %w", err)
	}

	fa := &FileAppender{file: file, filePath: filePath}
	if strings.HasSuffix(filePath, CompressedExt) {
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		fa.encoder = encoder
	}
	return fa, nil
}

// Append - записать entry строкой JSON
func (fa *FileAppender) Append(ctx context.Context, entry Entry) error {
	data, err := entry.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	data = append(data, '\n')

	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file == nil {
		return fmt.Errorf("file appender is closed")
	}
	if fa.encoder != nil {
		data = fa.encoder.EncodeAll(data, nil)
	}
	if _, err := fa.file.Write(data); err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}
	return nil
}

// Close - закрыть файл
func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file == nil {
		return nil
	}
	if fa.encoder != nil {
		fa.encoder.Close()
		fa.encoder = nil
	}
	err := fa.file.Close()
	fa.file = nil
	return err
}

// FilePath - путь к файлу
func (fa *FileAppender) FilePath() string {
	return fa.filePath
}

// ReadFile читает записи, сохраненные FileAppender
func ReadFile(r io.Reader) ([]Entry, error) {
	var entries []Entry
	dec := json.NewDecoder(r)
	for dec.More() {
		var e Entry
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ReadCompressed читает записи из потока кадров zstd
func ReadCompressed(r io.Reader) ([]Entry, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer dec.Close()
	return ReadFile(dec)
}

// LoadFile читает файл журнала; формат выбирается по расширению
func LoadFile(filePath string) ([]Entry, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(filePath, CompressedExt) {
		return ReadCompressed(f)
	}
	return ReadFile(f)
}
