// Package history implements the append-only knowledge event log and the
// rate governance built on top of it.
//
// Events are stored one JSON object per line in per-day files named
// YYYY-MM-DD.jsonl, so lexical filename order equals chronological order.
// Appends are single bounded writes with O_APPEND, which interleave at
// line granularity across processes on POSIX-like filesystems.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/metrics"
)

// Event types recorded by the knowledge base.
const (
	// EventComponentExtracted marks one automatic component extraction.
	EventComponentExtracted = "component_extracted"

	// EventPatternsMerged marks one merge of discovered patterns into the
	// learned-pattern store.
	EventPatternsMerged = "patterns_merged"

	// EventAnalyticsUpdated marks one analytics roll-up run.
	EventAnalyticsUpdated = "analytics_updated"
)

// Event is one immutable record of a knowledge-affecting action.
type Event struct {
	// Event is the event type (see the Event* constants).
	Event string `json:"event"`

	// Prompt identifies the prompt or workflow that triggered the action.
	Prompt string `json:"prompt,omitempty"`

	// JourneyID identifies the source journey, when one applies.
	JourneyID string `json:"journeyId,omitempty"`

	// Timestamp is the ISO-8601 time of the action. Append fills it in
	// when empty.
	Timestamp string `json:"timestamp"`

	// Details carries optional event-specific fields.
	Details map[string]any `json:"details,omitempty"`
}

// dayFilePattern matches valid per-day log filenames.
var dayFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\.jsonl$`)

// DefaultRetentionDays is how long day logs are kept by Cleanup when the
// caller does not override it.
const DefaultRetentionDays = 365

// Store is the append-only, date-partitioned event log. The directory is
// derived from an explicit knowledge root supplied by the caller.
type Store struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the store's notion of now. Used by tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an event log under <root>/history. A nil logger
// disables logging.
func NewStore(root string, logger *zap.Logger, opts ...StoreOption) (*Store, error) {
	if root == "" {
		return nil, errors.New("knowledge root directory cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		dir:    filepath.Join(root, "history"),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the log directory.
func (s *Store) Dir() string {
	return s.dir
}

// dayPath returns the log file path for a calendar day.
func (s *Store) dayPath(day time.Time) string {
	return filepath.Join(s.dir, day.Format("2006-01-02")+".jsonl")
}

// Append writes one event to today's log, creating the directory and file
// as needed. A failed append is logged as a warning and returned as an
// error, never escalated: knowledge governance must not abort the
// caller's primary workflow, so callers are free to ignore the result.
func (s *Store) Append(ev Event) error {
	if ev.Timestamp == "" {
		ev.Timestamp = s.now().UTC().Format(time.RFC3339)
	}

	err := s.append(ev)
	if err != nil {
		metrics.HistoryAppends.WithLabelValues("error").Inc()
		s.logger.Warn("failed to append history event",
			zap.String("event", ev.Event),
			zap.Error(err))
		return err
	}
	metrics.HistoryAppends.WithLabelValues("success").Inc()
	return nil
}

func (s *Store) append(ev Event) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(s.dayPath(s.now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open day log: %w", err)
	}
	defer f.Close()

	// One bounded write per record keeps cross-process appends intact at
	// line granularity.
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// ReadDay returns the events logged on the given calendar day, in append
// order. A missing day file yields an empty list, not an error.
func (s *Store) ReadDay(day time.Time) ([]Event, error) {
	f, err := os.Open(s.dayPath(day))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open day log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			// A torn or foreign line must not poison the rest of the log.
			s.logger.Warn("skipping malformed history line", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("failed to read day log: %w", err)
	}
	return events, nil
}

// CountToday counts today's events of the given type, optionally filtered
// by an extra predicate.
func (s *Store) CountToday(eventType string, pred func(Event) bool) (int, error) {
	events, err := s.ReadDay(s.now())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, ev := range events {
		if ev.Event != eventType {
			continue
		}
		if pred != nil && !pred(ev) {
			continue
		}
		count++
	}
	return count, nil
}

// ListRange returns the day-log paths whose embedded date lies within the
// inclusive [start, end] range, sorted ascending by path. Given the
// naming scheme, that order equals chronological order.
func (s *Store) ListRange(start, end time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list history directory: %w", err)
	}

	startDay := start.Format("2006-01-02")
	endDay := end.Format("2006-01-02")

	var paths []string
	for _, entry := range entries {
		m := dayFilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if m[1] < startDay || m[1] > endDay {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Cleanup deletes day logs dated strictly before today minus
// retentionDays (DefaultRetentionDays when <= 0). Non-matching filenames
// are ignored, and one file's deletion failure does not abort the rest.
//
// This operation is filesystem-destructive and irreversible.
func (s *Store) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}

	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to list history directory: %w", err)
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays).Format("2006-01-02")

	deleted := 0
	for _, entry := range entries {
		m := dayFilePattern.FindStringSubmatch(entry.Name())
		if m == nil || m[1] >= cutoff {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete expired day log",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("removed expired history logs",
			zap.Int("deleted", deleted),
			zap.Int("retention_days", retentionDays))
	}
	return deleted, nil
}
