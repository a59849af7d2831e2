package chat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme.
type Theme struct {
	UserMsg int // User message accent
	Error   int // Error messages and fallback replies
	Muted   int // Status bar, placeholders, code gutter
	Accent  int // Headings, links, spinner

	// CodeStyle names the chroma style used to highlight fenced code.
	CodeStyle string
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:   4,
		Error:     1,
		Muted:     8,
		Accent:    5,
		CodeStyle: "monokai",
	}
}
