// Package normalize provides the text-equality aid used when comparing
// pattern texts. It is intentionally small: lowercasing, whitespace
// collapsing, and a trailing-s tolerant comparison for naive
// singular/plural matches. It is a string-equality helper only and has
// no opinion about pattern semantics.
package normalize

import "strings"

// Fold returns the canonical comparison form of a pattern text:
// lowercased with runs of whitespace collapsed to single spaces.
func Fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Equal reports whether two texts denote the same action name,
// tolerating a naive singular/plural difference.
func Equal(a, b string) bool {
	fa, fb := Fold(a), Fold(b)
	if fa == fb {
		return true
	}
	return singular(fa) == singular(fb)
}

// singular strips a naive English plural suffix.
func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "es"):
		return strings.TrimSuffix(s, "es")
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return strings.TrimSuffix(s, "s")
	}
	return s
}
