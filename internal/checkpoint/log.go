// Package checkpoint stores simulation snapshots as an append-only log of
// JSON lines. Every record is self-contained; resuming only needs the last
// one.
package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrCheckpointIO indicates the log could not be read or written.
	ErrCheckpointIO = errors.New("checkpoint: i/o failure")

	// ErrEmpty indicates the log holds no complete record.
	ErrEmpty = errors.New("checkpoint: log is empty")

	// ErrCorrupt indicates a malformed record followed by well-formed ones.
	ErrCorrupt = errors.New("checkpoint: corrupt record before end of log")
)

// Log is an append-only sequence of T records in a single file.
type Log[T any] struct {
	path string
}

func NewLog[T any](path string) *Log[T] {
	return &Log[T]{path: path}
}

func (l *Log[T]) Path() string { return l.path }

func ioError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCheckpointIO, op, err)
}

// Reset truncates the log, creating it and its directory if needed.
func (l *Log[T]) Reset() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return ioError("mkdir", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return ioError("reset", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return ioError("sync", err)
	}
	if err := f.Close(); err != nil {
		return ioError("close", err)
	}
	return nil
}

// Append writes rec as one line and syncs it to disk before returning.
func (l *Log[T]) Append(rec T) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return ioError("marshal", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return ioError("open", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return ioError("write", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return ioError("sync", err)
	}
	if err := f.Close(); err != nil {
		return ioError("close", err)
	}
	return nil
}

// Last returns the last well-formed record. A malformed trailing fragment,
// as left by a crash mid-append, is ignored.
func (l *Log[T]) Last() (T, error) {
	var last T
	found := false
	_, err := l.scan(func(rec T) {
		last = rec
		found = true
	})
	if err != nil {
		return last, err
	}
	if !found {
		return last, ErrEmpty
	}
	return last, nil
}

// All returns every well-formed record in order.
func (l *Log[T]) All() ([]T, error) {
	var out []T
	if _, err := l.scan(func(rec T) { out = append(out, rec) }); err != nil {
		return nil, err
	}
	return out, nil
}

// Repair drops a malformed trailing fragment so that appending can resume
// on a clean line boundary. It reports whether the file was changed.
func (l *Log[T]) Repair() (bool, error) {
	end, err := l.scan(func(T) {})
	if err != nil {
		return false, err
	}

	info, err := os.Stat(l.path)
	if err != nil {
		return false, ioError("stat", err)
	}
	if info.Size() == end {
		return false, nil
	}

	if err := os.Truncate(l.path, end); err != nil {
		return false, ioError("truncate", err)
	}
	return true, nil
}

// scan decodes records in order and returns the byte offset just past the
// last well-formed line.
func (l *Log[T]) scan(fn func(T)) (int64, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return 0, ioError("open", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var (
		offset  int64
		good    int64
		pending error
	)
	for {
		line, readErr := r.ReadBytes('\n')
		if len(line) > 0 {
			start := offset
			offset += int64(len(line))
			complete := line[len(line)-1] == '\n'

			trimmed := bytes.TrimSpace(line)
			if len(trimmed) == 0 {
				if complete && pending == nil {
					good = offset
				}
			} else {
				var rec T
				if decErr := json.Unmarshal(trimmed, &rec); decErr != nil || !complete {
					if pending == nil {
						pending = fmt.Errorf("%w: %w at byte %d", ErrCheckpointIO, ErrCorrupt, start)
					}
				} else {
					if pending != nil {
						return 0, pending
					}
					fn(rec)
					good = offset
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, ioError("read", readErr)
		}
	}
	return good, nil
}
