// Package analytics recomputes summary statistics over the lesson and
// component stores: counts, per-category and per-scope breakdowns,
// averages, top performers and review worklists.
//
// The roll-up is a pure function of the current store contents; the
// persisted analytics.json has no independent state and can be
// regenerated at any time. Analytics reads lessons.json and
// components.json but never mutates them, and never touches the
// learned-pattern store or the history log.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/metrics"
	"github.com/fyrsmithlabs/llkb/internal/storage"
)

const (
	lessonsFile    = "lessons.json"
	componentsFile = "components.json"
	analyticsFile  = "analytics.json"

	// Version is the semantic version of the analytics.json format.
	Version = "1.0.0"

	// lowConfidenceThreshold flags lessons for review.
	lowConfidenceThreshold = 0.4

	// staleComponentAge flags barely-used components for review.
	staleComponentAge = 30 * 24 * time.Hour

	// staleComponentMaxUses is the exclusive use ceiling for staleness.
	staleComponentMaxUses = 2

	topPerformerCount = 5
)

// DecliningFunc is the external declining-confidence detector. It is
// treated as a black box; a nil detector flags nothing.
type DecliningFunc func(Lesson) bool

// Service recomputes and persists the analytics snapshot for one
// knowledge root.
type Service struct {
	root      string
	logger    *zap.Logger
	declining DecliningFunc
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithDecliningDetector installs the external declining-confidence
// detector.
func WithDecliningDetector(f DecliningFunc) Option {
	return func(s *Service) {
		s.declining = f
	}
}

// WithClock overrides the service's notion of now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an analytics service rooted at root. A nil logger
// disables logging.
func NewService(root string, logger *zap.Logger, opts ...Option) (*Service, error) {
	if root == "" {
		return nil, errors.New("knowledge root directory cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Service{root: root, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Update recomputes the analytics snapshot from the lesson and component
// stores and writes it atomically. A missing analytics file is tolerated
// (the snapshot is fully derived), but a missing or unreadable lesson or
// component store is an error: analytics without source data is
// meaningless.
func (s *Service) Update() error {
	lessons, components, err := s.loadSources()
	if err != nil {
		metrics.AnalyticsUpdates.WithLabelValues("error").Inc()
		s.logger.Warn("analytics update aborted", zap.Error(err))
		return err
	}

	snapshot := s.Compute(lessons, components)
	if err := storage.SaveJSON(filepath.Join(s.root, analyticsFile), snapshot); err != nil {
		metrics.AnalyticsUpdates.WithLabelValues("error").Inc()
		s.logger.Warn("failed to save analytics", zap.Error(err))
		return err
	}

	metrics.AnalyticsUpdates.WithLabelValues("success").Inc()
	s.logger.Info("analytics updated",
		zap.Int("lessons", snapshot.Overview.TotalLessons),
		zap.Int("components", snapshot.Overview.TotalComponents),
		zap.Int("needs_review",
			len(snapshot.NeedsReview.LowConfidenceLessons)+
				len(snapshot.NeedsReview.DecliningLessons)+
				len(snapshot.NeedsReview.StaleComponents)))
	return nil
}

// Load reads the current analytics snapshot. A missing file yields a
// zero-valued default; a malformed file is treated the same way with a
// logged warning.
func (s *Service) Load() (*AnalyticsFile, error) {
	var snapshot AnalyticsFile
	err := storage.LoadJSON(filepath.Join(s.root, analyticsFile), &snapshot)
	if errors.Is(err, os.ErrNotExist) {
		return defaultSnapshot(), nil
	}
	if errors.Is(err, storage.ErrCorrupted) {
		s.logger.Warn("analytics file corrupted, using zero default", zap.Error(err))
		return defaultSnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	return &snapshot, nil
}

// loadSources reads both source stores, failing when either is absent or
// unreadable.
func (s *Service) loadSources() (*LessonsFile, *ComponentsFile, error) {
	var lessons LessonsFile
	if err := storage.LoadJSON(filepath.Join(s.root, lessonsFile), &lessons); err != nil {
		return nil, nil, fmt.Errorf("failed to load lesson store: %w", err)
	}

	var components ComponentsFile
	if err := storage.LoadJSON(filepath.Join(s.root, componentsFile), &components); err != nil {
		return nil, nil, fmt.Errorf("failed to load component store: %w", err)
	}
	return &lessons, &components, nil
}

// Compute derives the analytics snapshot from the given stores. It is a
// pure function of its inputs and the clock.
func (s *Service) Compute(lessons *LessonsFile, components *ComponentsFile) *AnalyticsFile {
	snapshot := defaultSnapshot()
	snapshot.LastUpdated = s.now().UTC()

	active := lessons.Lessons
	activeComponents := make([]Component, 0, len(components.Components))
	archivedComponents := 0
	for _, c := range components.Components {
		if c.Archived {
			archivedComponents++
			continue
		}
		activeComponents = append(activeComponents, c)
	}

	snapshot.Overview = Overview{
		TotalLessons:       len(active) + len(lessons.Archived),
		ActiveLessons:      len(active),
		ArchivedLessons:    len(lessons.Archived),
		TotalComponents:    len(components.Components),
		ActiveComponents:   len(activeComponents),
		ArchivedComponents: archivedComponents,
	}

	for _, l := range active {
		if _, ok := snapshot.LessonsByCategory[l.Category]; ok {
			snapshot.LessonsByCategory[l.Category]++
		}
	}
	for _, c := range activeComponents {
		if _, ok := snapshot.ComponentsByCategory[c.Category]; ok {
			snapshot.ComponentsByCategory[c.Category]++
		}
		if _, ok := snapshot.ComponentsByScope[c.Scope]; ok {
			snapshot.ComponentsByScope[c.Scope]++
		}
	}

	snapshot.Averages = computeAverages(active, activeComponents)
	snapshot.TopLessons = topLessons(active)
	snapshot.TopComponents = topComponents(activeComponents)
	snapshot.NeedsReview = s.computeNeedsReview(active, activeComponents)

	return snapshot
}

// defaultSnapshot is the zero-valued analytics document with all closed
// category and scope keys present.
func defaultSnapshot() *AnalyticsFile {
	snapshot := &AnalyticsFile{
		Version:              Version,
		LessonsByCategory:    make(map[string]int, len(LessonCategories)),
		ComponentsByCategory: make(map[string]int, len(ComponentCategories)),
		ComponentsByScope:    make(map[string]int, len(ComponentScopes)),
		TopLessons:           []RankedEntry{},
		TopComponents:        []RankedEntry{},
		NeedsReview: NeedsReview{
			LowConfidenceLessons: []string{},
			DecliningLessons:     []string{},
			StaleComponents:      []string{},
		},
	}
	for _, c := range LessonCategories {
		snapshot.LessonsByCategory[c] = 0
	}
	for _, c := range ComponentCategories {
		snapshot.ComponentsByCategory[c] = 0
	}
	for _, sc := range ComponentScopes {
		snapshot.ComponentsByScope[sc] = 0
	}
	return snapshot
}

// computeAverages averages over active records only, defining empty sets
// as zero to avoid division by zero.
func computeAverages(lessons []Lesson, components []Component) Averages {
	var avg Averages
	if n := len(lessons); n > 0 {
		var confidence, successRate float64
		for _, l := range lessons {
			confidence += l.Confidence
			successRate += l.SuccessRate
		}
		avg.LessonConfidence = round2(confidence / float64(n))
		avg.LessonSuccessRate = round2(successRate / float64(n))
	}
	if n := len(components); n > 0 {
		var uses float64
		for _, c := range components {
			uses += float64(c.TotalUses)
		}
		avg.ReusesPerComponent = round2(uses / float64(n))
	}
	return avg
}

// topLessons ranks active lessons by successRate x occurrences,
// descending, ties broken by input order.
func topLessons(lessons []Lesson) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(lessons))
	for _, l := range lessons {
		ranked = append(ranked, RankedEntry{
			ID:    l.ID,
			Score: l.SuccessRate * float64(l.Occurrences),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return truncate(ranked)
}

// topComponents ranks active components by total uses, descending.
func topComponents(components []Component) []RankedEntry {
	ranked := make([]RankedEntry, 0, len(components))
	for _, c := range components {
		ranked = append(ranked, RankedEntry{ID: c.ID, Score: float64(c.TotalUses)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return truncate(ranked)
}

func truncate(ranked []RankedEntry) []RankedEntry {
	if len(ranked) > topPerformerCount {
		return ranked[:topPerformerCount]
	}
	return ranked
}

// computeNeedsReview builds the review worklists.
func (s *Service) computeNeedsReview(lessons []Lesson, components []Component) NeedsReview {
	review := NeedsReview{
		LowConfidenceLessons: []string{},
		DecliningLessons:     []string{},
		StaleComponents:      []string{},
	}

	for _, l := range lessons {
		if l.Confidence < lowConfidenceThreshold {
			review.LowConfidenceLessons = append(review.LowConfidenceLessons, l.ID)
		}
		if s.declining != nil && s.declining(l) {
			review.DecliningLessons = append(review.DecliningLessons, l.ID)
		}
	}

	now := s.now()
	for _, c := range components {
		if c.TotalUses >= staleComponentMaxUses {
			continue
		}
		// An unset extraction timestamp means the age is unknown; such
		// components are not flagged.
		if c.Source.ExtractedAt.IsZero() {
			continue
		}
		if now.Sub(c.Source.ExtractedAt) > staleComponentAge {
			review.StaleComponents = append(review.StaleComponents, c.ID)
		}
	}
	return review
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
