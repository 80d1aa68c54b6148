package learnbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/metrics"
	"github.com/fyrsmithlabs/llkb/internal/storage"
)

const (
	learnedPatternsFile    = "learned-patterns.json"
	discoveredPatternsFile = "discovered-patterns.json"

	// ReportVersion is the semantic version of the discovered-patterns
	// report format.
	ReportVersion = "1.0.0"
)

// DiscoveredPatternsFile is the transient report of one synthesis run.
type DiscoveredPatternsFile struct {
	Version     string              `json:"version"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Source      string              `json:"source"`
	Patterns    []DiscoveredPattern `json:"patterns"`
	Metadata    DiscoveryMetadata   `json:"metadata"`
}

// DiscoveryMetadata summarizes a synthesis run.
type DiscoveryMetadata struct {
	Frameworks        []string       `json:"frameworks"`
	UILibraries       []string       `json:"uiLibraries"`
	TotalPatterns     int            `json:"totalPatterns"`
	ByCategory        map[string]int `json:"byCategory"`
	ByTemplate        map[string]int `json:"byTemplate"`
	AverageConfidence float64        `json:"averageConfidence"`
	DiscoveryDuration time.Duration  `json:"discoveryDuration,omitempty"`
}

// Store persists learned patterns and discovery reports under an explicit
// knowledge root directory. The root is always supplied by the caller so
// multiple stores can coexist in one process.
type Store struct {
	root   string
	logger *zap.Logger
}

// NewStore creates a store rooted at root. A nil logger disables logging.
func NewStore(root string, logger *zap.Logger) (*Store, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{root: root, logger: logger}, nil
}

// Root returns the knowledge root directory.
func (s *Store) Root() string {
	return s.root
}

// LoadLearned reads the learned-pattern store. A missing file yields an
// empty store, not an error.
func (s *Store) LoadLearned() ([]LearnedPattern, error) {
	var patterns []LearnedPattern
	err := storage.LoadJSON(filepath.Join(s.root, learnedPatternsFile), &patterns)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load learned patterns: %w", err)
	}
	return patterns, nil
}

// SaveLearned writes the learned-pattern store atomically.
func (s *Store) SaveLearned(patterns []LearnedPattern) error {
	if patterns == nil {
		patterns = []LearnedPattern{}
	}
	if err := storage.SaveJSON(filepath.Join(s.root, learnedPatternsFile), patterns); err != nil {
		return fmt.Errorf("failed to save learned patterns: %w", err)
	}
	return nil
}

// MergeAndSave deduplicates the discovered candidates, folds them into the
// persisted store and writes the result atomically.
func (s *Store) MergeAndSave(discovered []DiscoveredPattern) (MergeStats, error) {
	existing, err := s.LoadLearned()
	if err != nil {
		return MergeStats{}, err
	}

	valid := make([]DiscoveredPattern, 0, len(discovered))
	for _, dp := range discovered {
		if err := dp.Validate(); err != nil {
			s.logger.Warn("skipping invalid candidate",
				zap.String("id", dp.ID),
				zap.Error(err))
			continue
		}
		valid = append(valid, dp)
	}

	deduped := Deduplicate(valid)
	merged, stats := Merge(existing, deduped)

	if err := s.SaveLearned(merged); err != nil {
		return stats, err
	}

	metrics.MergeResults.WithLabelValues("created").Add(float64(stats.Created))
	metrics.MergeResults.WithLabelValues("updated").Add(float64(stats.Updated))
	metrics.MergeResults.WithLabelValues("unchanged").Add(float64(stats.Unchanged))

	s.logger.Info("merged discovered patterns",
		zap.Int("discovered", len(discovered)),
		zap.Int("deduplicated", len(deduped)),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("store_size", len(merged)))

	return stats, nil
}

// BuildReport assembles the discovered-patterns report for one synthesis
// run over the given profile.
func BuildReport(patterns []DiscoveredPattern, profile DiscoveredProfile, source string, duration time.Duration) *DiscoveredPatternsFile {
	libs := make([]string, 0, len(profile.UILibraries))
	for _, lib := range profile.UILibraries {
		libs = append(libs, lib.Name)
	}

	byCategory := make(map[string]int)
	byTemplate := make(map[string]int)
	var confidenceSum float64
	for _, p := range patterns {
		if p.Category != "" {
			byCategory[p.Category]++
		}
		if p.Template != "" {
			byTemplate[p.Template]++
		}
		confidenceSum += p.Confidence
	}

	var avg float64
	if len(patterns) > 0 {
		avg = confidenceSum / float64(len(patterns))
	}

	if patterns == nil {
		patterns = []DiscoveredPattern{}
	}
	return &DiscoveredPatternsFile{
		Version:     ReportVersion,
		GeneratedAt: time.Now().UTC(),
		Source:      source,
		Patterns:    patterns,
		Metadata: DiscoveryMetadata{
			Frameworks:        profile.Frameworks,
			UILibraries:       libs,
			TotalPatterns:     len(patterns),
			ByCategory:        byCategory,
			ByTemplate:        byTemplate,
			AverageConfidence: avg,
			DiscoveryDuration: duration,
		},
	}
}

// SaveReport writes the discovered-patterns report atomically.
func (s *Store) SaveReport(report *DiscoveredPatternsFile) error {
	if err := storage.SaveJSON(filepath.Join(s.root, discoveredPatternsFile), report); err != nil {
		return fmt.Errorf("failed to save discovery report: %w", err)
	}
	return nil
}

// LoadReport reads the discovered-patterns report, validating its shape
// before trusting it: the top-level value must be an object, "patterns"
// must be an array and "version" must be a string. A missing file or a
// file failing validation yields (nil, nil) with a logged warning, so
// callers proceed as if no report exists.
func (s *Store) LoadReport() (*DiscoveredPatternsFile, error) {
	path := filepath.Join(s.root, discoveredPatternsFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read discovery report: %w", err)
	}

	if !validReportShape(data) {
		s.logger.Warn("discovery report failed shape validation, treating as absent",
			zap.String("path", path))
		return nil, nil
	}

	var report DiscoveredPatternsFile
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn("discovery report failed to decode, treating as absent",
			zap.String("path", path),
			zap.Error(err))
		return nil, nil
	}
	return &report, nil
}

// validReportShape checks the minimum structure of a discovery report.
func validReportShape(data []byte) bool {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return false
	}

	var version string
	if err := json.Unmarshal(top["version"], &version); err != nil {
		return false
	}

	raw, ok := top["patterns"]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return false
	}
	var patterns []json.RawMessage
	return json.Unmarshal(raw, &patterns) == nil
}
