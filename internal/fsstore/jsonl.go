package fsstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const defaultRotateMaxBytes = 100 * 1024 * 1024

// JSONLWriter appends one JSON document per line, rotating the file by size.
// Safe for concurrent use.
type JSONLWriter struct {
	path           string
	rotateMaxBytes int64

	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	size   int64
	closed bool

	now func() time.Time
}

func NewJSONLWriter(path string, rotateMaxBytes int64) (*JSONLWriter, error) {
	normalized, err := normalizePath(path)
	if err != nil {
		return nil, err
	}
	if rotateMaxBytes <= 0 {
		rotateMaxBytes = defaultRotateMaxBytes
	}
	w := &JSONLWriter{
		path:           normalized,
		rotateMaxBytes: rotateMaxBytes,
		now:            time.Now,
	}
	if err := w.openLocked(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *JSONLWriter) AppendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: jsonl encode %s: %v", ErrEncodeFailed, w.path, err)
	}
	data = append(data, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.appendBytesLocked(data)
}

func (w *JSONLWriter) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	if w.writer != nil {
		_ = w.writer.Flush()
	}
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		w.writer = nil
		w.size = 0
		return err
	}
	return nil
}

func (w *JSONLWriter) appendBytesLocked(data []byte) error {
	if w.closed {
		return fmt.Errorf("jsonl writer closed")
	}
	if err := w.rotateIfNeededLocked(int64(len(data))); err != nil {
		return err
	}
	n, err := w.writer.Write(data)
	if err != nil {
		return err
	}
	w.size += int64(n)
	return w.writer.Flush()
}

func (w *JSONLWriter) rotateIfNeededLocked(incomingBytes int64) error {
	if w.size+incomingBytes <= w.rotateMaxBytes {
		return nil
	}
	if w.writer != nil {
		_ = w.writer.Flush()
	}
	if w.file != nil {
		_ = w.file.Close()
	}

	ts := w.now().UTC().Format("20060102T150405Z")
	rotated := fmt.Sprintf("%s.%s", w.path, ts)
	for i := 1; ; i++ {
		if _, err := os.Stat(rotated); errors.Is(err, os.ErrNotExist) {
			break
		}
		rotated = fmt.Sprintf("%s.%s.%d", w.path, ts, i)
	}
	if err := os.Rename(w.path, rotated); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	w.file = nil
	w.writer = nil
	w.size = 0
	return w.openLocked()
}

func (w *JSONLWriter) openLocked() error {
	if err := EnsureDir(filepath.Dir(w.path)); err != nil {
		return err
	}
	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFilePerm)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	w.file = file
	w.writer = bufio.NewWriterSize(file, 64*1024)
	w.size = info.Size()
	return nil
}
