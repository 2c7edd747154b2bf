package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// JSONLog はレコードを JSON 配列として1ファイルに追記するログです
// ファイルが存在しない・壊れている場合は空の配列として扱います
type JSONLog struct {
	mu   sync.Mutex
	path string
}

// NewJSONLog は path に書き込む JSONLog を作成します
func NewJSONLog(path string) *JSONLog {
	return &JSONLog{path: path}
}

// Path はログファイルのパスを返します
func (l *JSONLog) Path() string {
	return l.path
}

// Append はレコードを配列の末尾に追加し、ファイル全体を書き直します
func (l *JSONLog) Append(_ context.Context, record interface{}) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.read()
	records = append(records, raw)
	return l.write(records)
}

// ReadAll はログ内の全レコードを返します
func (l *JSONLog) ReadAll() ([]json.RawMessage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read(), nil
}

func (l *JSONLog) read() []json.RawMessage {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Failed to read %s, starting a new log: %v", l.path, err)
		}
		return nil
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(b, &records); err != nil {
		log.Printf("Log %s is not a JSON array, starting a new log: %v", l.path, err)
		return nil
	}
	return records
}

func (l *JSONLog) write(records []json.RawMessage) error {
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode log: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("failed to replace log: %w", err)
	}
	return nil
}
