package learnbank

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/llkb/internal/normalize"
)

// Synthesizer turns a discovered application profile into scored,
// categorized pattern candidates using the fixed template sets.
//
// Synthesize is a pure function of its inputs apart from identifier
// generation: candidates get fresh random UUIDs so concurrent synthesis
// runs against the same store never collide.
type Synthesizer struct {
	logger *zap.Logger
}

// NewSynthesizer creates a synthesizer. A nil logger disables logging.
func NewSynthesizer(logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{logger: logger}
}

// Synthesize produces pattern candidates from the profile and selector
// signals.
func (s *Synthesizer) Synthesize(profile DiscoveredProfile, signals SelectorSignals) []DiscoveredPattern {
	var patterns []DiscoveredPattern

	if profile.Auth.Detected {
		patterns = append(patterns, s.synthesizeAuth(profile, signals)...)
	}
	patterns = append(patterns, s.synthesizeNavigation()...)
	patterns = append(patterns, s.synthesizeLibraries(profile)...)

	s.logger.Debug("synthesized pattern candidates",
		zap.Int("count", len(patterns)),
		zap.Bool("auth_detected", profile.Auth.Detected),
		zap.Int("ui_libraries", len(profile.UILibraries)))

	return patterns
}

// synthesizeAuth emits one candidate per fixed auth template. The pattern
// scores HighConfidence when the profile supplies a concrete selector for
// the template's role, MediumConfidence otherwise. An emitted selector
// hint always carries HighConfidence, independent of the pattern's own
// score.
func (s *Synthesizer) synthesizeAuth(profile DiscoveredProfile, signals SelectorSignals) []DiscoveredPattern {
	patterns := make([]DiscoveredPattern, 0, len(authTemplates))
	for _, tpl := range authTemplates {
		confidence := MediumConfidence
		var hints []SelectorHint
		if selector := profile.Auth.Selectors[tpl.Role]; selector != "" {
			confidence = HighConfidence
			hints = []SelectorHint{{
				Strategy:   signals.PreferredStrategy,
				Value:      selector,
				Confidence: HighConfidence,
			}}
		}

		patterns = append(patterns, DiscoveredPattern{
			ID:            uuid.New().String(),
			Text:          normalize.Fold(tpl.Text),
			OriginalText:  tpl.Text,
			Primitive:     tpl.Primitive,
			SelectorHints: hints,
			Confidence:    confidence,
			Layer:         LayerAppSpecific,
			Category:      CategoryAuthentication,
			Template:      tpl.Name,
		})
	}
	return patterns
}

// synthesizeNavigation emits one candidate per fixed navigation template,
// always at NavigationConfidence and without selector hints.
func (s *Synthesizer) synthesizeNavigation() []DiscoveredPattern {
	patterns := make([]DiscoveredPattern, 0, len(navTemplates))
	for _, tpl := range navTemplates {
		patterns = append(patterns, DiscoveredPattern{
			ID:           uuid.New().String(),
			Text:         normalize.Fold(tpl.Text),
			OriginalText: tpl.Text,
			Primitive:    tpl.Primitive,
			Confidence:   NavigationConfidence,
			Layer:        LayerAppSpecific,
			Category:     CategoryNavigation,
			Template:     tpl.Name,
		})
	}
	return patterns
}

// synthesizeLibraries emits one candidate per template of every detected
// UI library with a known template set. The candidate inherits the
// library's detection confidence capped at LibraryConfidenceCap; the hint
// carries the lower fixed LibraryHintConfidence.
func (s *Synthesizer) synthesizeLibraries(profile DiscoveredProfile) []DiscoveredPattern {
	var patterns []DiscoveredPattern
	for _, lib := range profile.UILibraries {
		templates, ok := libraryTemplates[strings.ToLower(lib.Name)]
		if !ok {
			s.logger.Debug("no template set for ui library", zap.String("library", lib.Name))
			continue
		}

		confidence := lib.Confidence
		if confidence > LibraryConfidenceCap {
			confidence = LibraryConfidenceCap
		}

		for _, tpl := range templates {
			patterns = append(patterns, DiscoveredPattern{
				ID:           uuid.New().String(),
				Text:         normalize.Fold(tpl.Text),
				OriginalText: tpl.Text,
				Primitive:    tpl.Primitive,
				SelectorHints: []SelectorHint{{
					Strategy:   "css",
					Value:      componentSelectorValue(tpl.Component),
					Confidence: LibraryHintConfidence,
				}},
				Confidence: confidence,
				Layer:      LayerFramework,
				Category:   CategoryUIInteraction,
				Template:   "library:" + strings.ToLower(lib.Name),
				Entity:     tpl.Component,
			})
		}
	}
	return patterns
}
