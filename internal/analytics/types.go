package analytics

import "time"

// Lesson is a distilled, reusable fact about test behavior. Lessons are
// produced elsewhere; analytics only reads them. Archived lessons live in
// the separate Archived list of the lessons file, not behind a flag.
type Lesson struct {
	ID          string  `json:"id"`
	Title       string  `json:"title,omitempty"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
	SuccessRate float64 `json:"successRate"`
	Occurrences int     `json:"occurrences"`
}

// LessonsFile is the persisted shape of lessons.json.
type LessonsFile struct {
	Lessons  []Lesson `json:"lessons"`
	Archived []Lesson `json:"archived,omitempty"`
}

// ComponentSource records where a component was extracted from.
type ComponentSource struct {
	JourneyID   string    `json:"journeyId,omitempty"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Component is a reusable UI-interaction unit extracted from observed
// tests. Unlike lessons, archived components stay on the one list and
// carry an archived flag; the two conventions differ deliberately.
type Component struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Category  string          `json:"category"`
	Scope     string          `json:"scope"`
	TotalUses int             `json:"totalUses"`
	Archived  bool            `json:"archived,omitempty"`
	Source    ComponentSource `json:"source"`
}

// ComponentsFile is the persisted shape of components.json.
type ComponentsFile struct {
	Components []Component `json:"components"`
}

// LessonCategories is the closed set of lesson categories counted by the
// roll-up. Records outside the set are ignored by the breakdown.
var LessonCategories = []string{
	"selector",
	"timing",
	"navigation",
	"validation",
	"auth",
	"data-entry",
	"framework",
	"quirk",
}

// ComponentCategories is the closed set of component categories: the
// lesson set minus "quirk", which only applies to lessons.
var ComponentCategories = []string{
	"selector",
	"timing",
	"navigation",
	"validation",
	"auth",
	"data-entry",
	"framework",
}

// ComponentScopes is the closed set of component scopes.
var ComponentScopes = []string{
	"global",
	"framework",
	"app",
	"page",
	"journey",
	"shared",
}

// Overview holds total/active/archived counts for both stores.
type Overview struct {
	TotalLessons       int `json:"totalLessons"`
	ActiveLessons      int `json:"activeLessons"`
	ArchivedLessons    int `json:"archivedLessons"`
	TotalComponents    int `json:"totalComponents"`
	ActiveComponents   int `json:"activeComponents"`
	ArchivedComponents int `json:"archivedComponents"`
}

// Averages are computed over active records only, rounded to two decimal
// places, and zero when the active set is empty.
type Averages struct {
	LessonConfidence   float64 `json:"lessonConfidence"`
	LessonSuccessRate  float64 `json:"lessonSuccessRate"`
	ReusesPerComponent float64 `json:"reusesPerComponent"`
}

// RankedEntry is one top-performer row.
type RankedEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// NeedsReview lists record ids flagged for human attention.
type NeedsReview struct {
	// LowConfidenceLessons have confidence strictly below the review
	// threshold.
	LowConfidenceLessons []string `json:"lowConfidenceLessons"`

	// DecliningLessons were flagged by the external declining-confidence
	// detector.
	DecliningLessons []string `json:"decliningLessons"`

	// StaleComponents have fewer than two recorded uses and are older
	// than thirty days.
	StaleComponents []string `json:"staleComponents"`
}

// AnalyticsFile is the derived, fully-recomputable snapshot persisted as
// analytics.json. It carries no state beyond what lessons and components
// encode and is safe to regenerate at any time.
type AnalyticsFile struct {
	Version              string         `json:"version"`
	LastUpdated          time.Time      `json:"lastUpdated"`
	Overview             Overview       `json:"overview"`
	LessonsByCategory    map[string]int `json:"lessonsByCategory"`
	ComponentsByCategory map[string]int `json:"componentsByCategory"`
	ComponentsByScope    map[string]int `json:"componentsByScope"`
	Averages             Averages       `json:"averages"`
	TopLessons           []RankedEntry  `json:"topLessons"`
	TopComponents        []RankedEntry  `json:"topComponents"`
	NeedsReview          NeedsReview    `json:"needsReview"`
}
