// Package results holds the recorded swim times for the lifetime of the process.
package results

import (
	"encoding/csv"
	"fmt"
	"html"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oszuidwest/swim-stopwatch/internal/stopwatch"
	"github.com/oszuidwest/swim-stopwatch/internal/util"
)

// Entry is a single recorded result.
type Entry struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Pool       string        `json:"pool,omitzero"`
	Stroke     string        `json:"stroke"`
	Distance   string        `json:"distance"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Time returns the elapsed time as shown on the stopwatch display.
func (e *Entry) Time() string {
	return stopwatch.Format(e.Elapsed)
}

// Line returns the plain-text description of the entry.
func (e *Entry) Line() string {
	var b strings.Builder
	b.WriteString(e.Name)
	if e.Pool != "" {
		fmt.Fprintf(&b, " (%s)", e.Pool)
	}
	fmt.Fprintf(&b, " — %s %s — %s", e.Stroke, e.Distance, e.Time())
	return b.String()
}

// Store is an in-memory list of entries. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add records an entry, assigning an ID and timestamp when unset, and returns the stored entry.
func (s *Store) Add(e Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = s.now().UTC()
	}
	s.entries = append(s.entries, e)
	return e
}

// Entries returns a copy of all entries, oldest first.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.entries)
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear removes all entries and returns them.
func (s *Store) Clear() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.entries
	s.entries = nil
	return removed
}

// Log returns the results as HTML for the page, newest first.
// User-supplied fields are escaped here; the page inserts the log verbatim.
func (s *Store) Log() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(e.Line()))
		b.WriteString("</p>")
	}
	return b.String()
}

// csvHeader is the first row of every CSV export.
var csvHeader = []string{"name", "pool", "stroke", "distance", "time", "recorded_at"}

// WriteCSV writes entries as CSV with a header row.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return util.WrapError("write CSV header", err)
	}
	for _, e := range entries {
		record := []string{
			e.Name,
			e.Pool,
			e.Stroke,
			e.Distance,
			e.Time(),
			e.RecordedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return util.WrapError("write CSV record", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return util.WrapError("flush CSV", err)
	}
	return nil
}
