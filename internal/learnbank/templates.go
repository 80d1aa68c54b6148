package learnbank

import (
	"strings"
	"unicode"
)

// Confidence constants for synthesized candidates.
const (
	// HighConfidence is assigned when the profile supplies a concrete
	// selector for a template's role. Auth selector hints always carry
	// this constant, even when the pattern itself scored medium; the
	// asymmetry is part of the template set.
	HighConfidence = 0.85

	// MediumConfidence is assigned when no concrete selector backs the
	// template.
	MediumConfidence = 0.70

	// NavigationConfidence is the fixed score of navigation templates.
	NavigationConfidence = 0.70

	// LibraryHintConfidence is the fixed score of selector hints derived
	// from UI-library component names.
	LibraryHintConfidence = 0.60

	// LibraryConfidenceCap bounds how much of a library's detection
	// confidence a candidate may inherit.
	LibraryConfidenceCap = 0.75
)

// Candidate categories.
const (
	CategoryAuthentication = "authentication"
	CategoryNavigation     = "navigation"
	CategoryUIInteraction  = "ui-interaction"
)

// authTemplate is one fixed authentication pattern template. Role names
// index into the profile's auth selector map.
type authTemplate struct {
	Name      string
	Text      string
	Primitive Primitive
	Role      string
}

var authTemplates = []authTemplate{
	{Name: "auth-fill-username", Text: "fill the username field", Primitive: PrimitiveFill, Role: "usernameField"},
	{Name: "auth-fill-password", Text: "fill the password field", Primitive: PrimitiveFill, Role: "passwordField"},
	{Name: "auth-login", Text: "click the login button", Primitive: PrimitiveClick, Role: "loginButton"},
	{Name: "auth-logout", Text: "click the logout button", Primitive: PrimitiveClick, Role: "logoutButton"},
	{Name: "auth-verify-login", Text: "verify the user is logged in", Primitive: PrimitiveAssert, Role: "loggedInMarker"},
	{Name: "auth-verify-logout", Text: "verify the user is logged out", Primitive: PrimitiveAssert, Role: "loggedOutMarker"},
}

// navTemplate is one fixed navigation pattern template. Navigation
// candidates carry no selector hints.
type navTemplate struct {
	Name      string
	Text      string
	Primitive Primitive
}

var navTemplates = []navTemplate{
	{Name: "nav-home", Text: "navigate to the home page", Primitive: PrimitiveNavigate},
	{Name: "nav-back", Text: "navigate back to the previous page", Primitive: PrimitiveNavigate},
	{Name: "nav-open-menu", Text: "open the main navigation menu", Primitive: PrimitiveClick},
	{Name: "nav-menu-entry", Text: "navigate to a section from the menu", Primitive: PrimitiveNavigate},
}

// libraryTemplate is one fixed template for a known UI library component.
type libraryTemplate struct {
	Component string
	Text      string
	Primitive Primitive
}

// libraryTemplates maps lowercased UI-library names to their template
// sets. Libraries without an entry produce no candidates.
var libraryTemplates = map[string][]libraryTemplate{
	"material-ui": {
		{Component: "TextField", Text: "fill a material text field", Primitive: PrimitiveFill},
		{Component: "Button", Text: "click a material button", Primitive: PrimitiveClick},
		{Component: "Select", Text: "choose an option from a material select", Primitive: PrimitiveSelect},
		{Component: "Checkbox", Text: "toggle a material checkbox", Primitive: PrimitiveClick},
	},
	"ant-design": {
		{Component: "Input", Text: "fill an ant design input", Primitive: PrimitiveFill},
		{Component: "DatePicker", Text: "pick a date from an ant design date picker", Primitive: PrimitiveFill},
		{Component: "Modal", Text: "confirm an ant design modal", Primitive: PrimitiveClick},
		{Component: "Table", Text: "verify an ant design table row", Primitive: PrimitiveAssert},
	},
	"bootstrap": {
		{Component: "Dropdown", Text: "open a bootstrap dropdown", Primitive: PrimitiveClick},
		{Component: "Modal", Text: "dismiss a bootstrap modal", Primitive: PrimitiveClick},
		{Component: "NavBar", Text: "navigate using the bootstrap navbar", Primitive: PrimitiveNavigate},
	},
	"chakra-ui": {
		{Component: "Input", Text: "fill a chakra input", Primitive: PrimitiveFill},
		{Component: "MenuButton", Text: "open a chakra menu", Primitive: PrimitiveClick},
		{Component: "AlertDialog", Text: "verify a chakra alert dialog", Primitive: PrimitiveAssert},
	},
}

// componentSelectorValue derives a selector value from a template's
// component name by inserting a hyphen before each internal uppercase
// letter and lowercasing: TextField -> text-field, NavBar -> nav-bar.
func componentSelectorValue(component string) string {
	var b strings.Builder
	for i, r := range component {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
