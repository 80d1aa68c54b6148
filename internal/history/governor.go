package history

import (
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/metrics"
)

// Limits are the extraction ceilings enforced by the Governor. A ceiling
// of zero or less disables that limit.
type Limits struct {
	// MaxPredictivePerDay bounds automatic extractions per calendar day
	// across all sources.
	MaxPredictivePerDay int

	// MaxPredictivePerJourney bounds automatic extractions per source
	// journey per calendar day.
	MaxPredictivePerJourney int
}

// Governor decides whether new automatic extraction is currently
// permitted, based on today's event log. It degrades gracefully: when the
// log cannot be read, extraction is allowed and a warning is logged,
// since governance must not abort the primary workflow.
type Governor struct {
	store  *Store
	limits Limits
	logger *zap.Logger
}

// NewGovernor creates a governor over the given event log.
func NewGovernor(store *Store, limits Limits, logger *zap.Logger) *Governor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Governor{store: store, limits: limits, logger: logger}
}

// DailyExtractionCount returns today's extraction count across all
// sources.
func (g *Governor) DailyExtractionCount() (int, error) {
	return g.store.CountToday(EventComponentExtracted, nil)
}

// JourneyExtractionCount returns today's extraction count for one source
// journey.
func (g *Governor) JourneyExtractionCount(journeyID string) (int, error) {
	return g.store.CountToday(EventComponentExtracted, func(ev Event) bool {
		return ev.JourneyID == journeyID
	})
}

// IsDailyLimitReached reports whether today's extraction count is at or
// above the daily ceiling.
func (g *Governor) IsDailyLimitReached() bool {
	if g.limits.MaxPredictivePerDay <= 0 {
		return false
	}
	count, err := g.DailyExtractionCount()
	if err != nil {
		g.logger.Warn("failed to count daily extractions, allowing extraction", zap.Error(err))
		return false
	}
	if count >= g.limits.MaxPredictivePerDay {
		metrics.RateLimitHits.Inc()
		return true
	}
	return false
}

// IsJourneyLimitReached reports whether today's extraction count for the
// journey is at or above the per-journey ceiling.
func (g *Governor) IsJourneyLimitReached(journeyID string) bool {
	if g.limits.MaxPredictivePerJourney <= 0 {
		return false
	}
	count, err := g.JourneyExtractionCount(journeyID)
	if err != nil {
		g.logger.Warn("failed to count journey extractions, allowing extraction",
			zap.String("journey_id", journeyID),
			zap.Error(err))
		return false
	}
	if count >= g.limits.MaxPredictivePerJourney {
		metrics.RateLimitHits.Inc()
		return true
	}
	return false
}

// RecordExtraction appends one extraction event for the journey. Failures
// are already logged by the store; the result may be ignored.
func (g *Governor) RecordExtraction(prompt, journeyID string) error {
	return g.store.Append(Event{
		Event:     EventComponentExtracted,
		Prompt:    prompt,
		JourneyID: journeyID,
	})
}
