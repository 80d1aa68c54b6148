package learnbank

import (
	"errors"
	"strings"
	"time"

	"github.com/fyrsmithlabs/llkb/internal/normalize"
)

// Common errors for learnbank operations.
var (
	ErrEmptyRoot         = errors.New("knowledge root directory cannot be empty")
	ErrInvalidConfidence = errors.New("confidence must be between 0.0 and 1.0")
)

// Primitive is an atomic UI action tag a pattern maps to.
type Primitive string

const (
	PrimitiveClick    Primitive = "click"
	PrimitiveFill     Primitive = "fill"
	PrimitiveSelect   Primitive = "select"
	PrimitiveNavigate Primitive = "navigate"
	PrimitiveAssert   Primitive = "assert"
)

// Layer classifies a pattern's generality.
type Layer string

const (
	// LayerAppSpecific marks patterns tied to one application.
	LayerAppSpecific Layer = "app-specific"

	// LayerFramework marks patterns tied to a UI framework or library.
	LayerFramework Layer = "framework"

	// LayerUniversal marks patterns that apply everywhere.
	LayerUniversal Layer = "universal"
)

// SelectorHint suggests how to locate a UI element for a pattern.
type SelectorHint struct {
	// Strategy is the locator strategy (e.g. "data-testid", "css").
	Strategy string `json:"strategy"`

	// Value is the locator value for the strategy.
	Value string `json:"value"`

	// Confidence scores how reliable this hint is, 0.0 to 1.0.
	Confidence float64 `json:"confidence,omitempty"`
}

// DiscoveredPattern is a candidate produced in one synthesis pass.
//
// Candidates are created fresh each run with a collision-free random
// identifier, never mutated after creation, and discarded after being
// folded into the store.
type DiscoveredPattern struct {
	// ID is the globally unique candidate identifier (UUID).
	ID string `json:"id"`

	// Text is the normalized action text.
	Text string `json:"text"`

	// OriginalText preserves the text before normalization.
	OriginalText string `json:"originalText,omitempty"`

	// Primitive is the mapped atomic action tag.
	Primitive Primitive `json:"primitive"`

	// SelectorHints suggest how to locate the target element.
	SelectorHints []SelectorHint `json:"selectorHints,omitempty"`

	// Confidence scores the candidate, 0.0 to 1.0.
	Confidence float64 `json:"confidence"`

	// Layer classifies the candidate's generality.
	Layer Layer `json:"layer"`

	// Category is an optional grouping label (e.g. "authentication").
	Category string `json:"category,omitempty"`

	// SourceJourneys lists the journey identifiers this candidate came from.
	SourceJourneys []string `json:"sourceJourneys,omitempty"`

	// SuccessCount and FailureCount start at zero and accumulate later.
	SuccessCount int `json:"successCount"`
	FailureCount int `json:"failureCount"`

	// Template records which fixed template produced this candidate.
	Template string `json:"template,omitempty"`

	// Entity records the UI component the template targeted, if any.
	Entity string `json:"entity,omitempty"`
}

// Key returns the candidate's dedup/merge key.
func (p DiscoveredPattern) Key() string {
	return PatternKey(p.Text, string(p.Primitive))
}

// Validate checks the candidate's fields before it enters a merge.
func (p DiscoveredPattern) Validate() error {
	if p.Text == "" {
		return errors.New("pattern text cannot be empty")
	}
	if p.Primitive == "" {
		return errors.New("pattern primitive cannot be empty")
	}
	if p.Confidence < 0.0 || p.Confidence > 1.0 {
		return ErrInvalidConfidence
	}
	return nil
}

// LearnedPattern is the persisted unit of knowledge.
//
// The primitive is stored as a plain string label, decoupled from the
// richer runtime action representation used at synthesis time. At most one
// LearnedPattern exists per (normalized text, primitive) key within a
// store; entries are never deleted by the merge path.
type LearnedPattern struct {
	Text           string    `json:"text"`
	OriginalText   string    `json:"originalText,omitempty"`
	Primitive      string    `json:"primitive"`
	Confidence     float64   `json:"confidence"`
	SuccessCount   int       `json:"successCount"`
	FailureCount   int       `json:"failureCount"`
	SourceJourneys []string  `json:"sourceJourneys,omitempty"`
	LastUpdated    time.Time `json:"lastUpdated"`
}

// Key returns the entry's merge key.
func (p LearnedPattern) Key() string {
	return PatternKey(p.Text, p.Primitive)
}

// keySeparator joins text and primitive inside a pattern key. A plain
// colon is unsafe because CSS/attribute selector text can contain one; a
// multi-character separator does not occur in valid normalized texts.
const keySeparator = "||"

// PatternKey builds the (normalized text, primitive) identity key used by
// deduplication and merging.
func PatternKey(text, primitive string) string {
	return normalize.Fold(text) + keySeparator + primitive
}

// ParsePatternKey splits a key built by PatternKey back into its text and
// primitive parts.
func ParsePatternKey(key string) (text, primitive string) {
	i := strings.LastIndex(key, keySeparator)
	if i < 0 {
		return key, ""
	}
	return key[:i], key[i+len(keySeparator):]
}

// DiscoveredProfile is the application profile supplied by the external
// discovery module.
type DiscoveredProfile struct {
	// Auth describes authentication detection results.
	Auth AuthProfile `json:"auth"`

	// Frameworks lists detected application frameworks.
	Frameworks []string `json:"frameworks,omitempty"`

	// UILibraries lists detected UI libraries with detection confidence.
	UILibraries []UILibrary `json:"uiLibraries,omitempty"`
}

// AuthProfile describes authentication detection results.
type AuthProfile struct {
	// Detected is true when the application has an authentication flow.
	Detected bool `json:"detected"`

	// Selectors maps template roles (loginButton, usernameField, ...) to
	// concrete selector values found during discovery.
	Selectors map[string]string `json:"selectors,omitempty"`
}

// UILibrary is one detected UI library with its detection confidence.
type UILibrary struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// SelectorSignals carries the preferred selector attribute strategy
// supplied by the external discovery module.
type SelectorSignals struct {
	// PreferredStrategy is the selector attribute to favor for emitted
	// hints (e.g. "data-testid").
	PreferredStrategy string `json:"preferredStrategy"`
}
