package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Click The Button", "click the button"},
		{"collapses whitespace", "click   the\tbutton", "click the button"},
		{"trims edges", "  click  ", "click"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.input))
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical", "click the button", "click the button", true},
		{"case insensitive", "Click the Button", "click the button", true},
		{"plural s", "open the modal", "open the modals", true},
		{"plural ies", "list categories", "list category", true},
		{"different", "click the button", "fill the field", false},
		{"double s not stripped", "open access", "open acces", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}
