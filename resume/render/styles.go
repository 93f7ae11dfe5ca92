package render

import (
	"regexp"
	"strings"
)

// TemplateName is one of the fixed visual layouts.
type TemplateName string

const (
	Professional TemplateName = "Professional"
	Creative     TemplateName = "Creative"
	Corporate    TemplateName = "Corporate"
)

const (
	CorporateColor    = "#000000"
	DefaultThemeColor = "#2563eb"
)

// NamedThemes are the palette names offered by the editor.
var NamedThemes = map[string]string{
	"slate":   "#475569",
	"blue":    "#2563eb",
	"emerald": "#059669",
	"violet":  "#7c3aed",
	"rose":    "#e11d48",
}

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseTemplate matches a template name case-insensitively.
func ParseTemplate(raw string) (TemplateName, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "professional":
		return Professional, true
	case "creative":
		return Creative, true
	case "corporate":
		return Corporate, true
	default:
		return "", false
	}
}

// ValidThemeColor reports whether raw is a named theme or a hex color.
func ValidThemeColor(raw string) bool {
	raw = strings.TrimSpace(raw)
	if _, ok := NamedThemes[strings.ToLower(raw)]; ok {
		return true
	}
	return hexColor.MatchString(raw)
}

// ResolveColor returns the accent color for a template. Corporate is always black.
func ResolveColor(template TemplateName, themeColor string) string {
	if template == Corporate {
		return CorporateColor
	}
	raw := strings.TrimSpace(themeColor)
	if named, ok := NamedThemes[strings.ToLower(raw)]; ok {
		return named
	}
	if hexColor.MatchString(raw) {
		return strings.ToLower(raw)
	}
	return DefaultThemeColor
}

// surfaceStyle carries the typography a surface applies to the shared layout.
type surfaceStyle struct {
	FontFamily string
	BaseSize   string
	NameSize   string
	TitleSize  string
	PageMargin string
}

var (
	printStyle = surfaceStyle{
		FontFamily: "'Sarabun', 'Helvetica Neue', Arial, sans-serif",
		BaseSize:   "10.5pt",
		NameSize:   "22pt",
		TitleSize:  "12pt",
		PageMargin: "15mm",
	}
	wordStyle = surfaceStyle{
		FontFamily: "'Calibri', 'Angsana New', sans-serif",
		BaseSize:   "11pt",
		NameSize:   "20pt",
		TitleSize:  "13pt",
		PageMargin: "2cm",
	}
)
