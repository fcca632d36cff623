// Package feedback persists user answer ratings to an append-only CSV file.
package feedback

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

var header = []string{"user_id", "username", "score", "question", "timestamp"}

// Entry is a single rating of an answer.
type Entry struct {
	UserID    int64
	Username  string
	Score     int // 1..5
	Question  string
	Timestamp time.Time // zero means "now"
}

// Log appends feedback entries to a CSV file, creating it (with a header row)
// on first write. Writes are serialized so concurrent raters never interleave
// rows.
type Log struct {
	mu   sync.Mutex
	path string
}

func NewLog(path string) *Log {
	return &Log{path: path}
}

// Record validates and appends one entry. The header row is written exactly
// once, when the file is empty.
func (l *Log) Record(e Entry) error {
	if e.Score < 1 || e.Score > 5 {
		return fmt.Errorf("feedback score %d out of range 1..5", e.Score)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating feedback dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening feedback log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat feedback log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing feedback header: %w", err)
		}
	}

	row := []string{
		strconv.FormatInt(e.UserID, 10),
		e.Username,
		strconv.Itoa(e.Score),
		e.Question,
		e.Timestamp.Format(time.RFC3339),
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("writing feedback row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing feedback log: %w", err)
	}
	return nil
}
