package util

import (
	"errors"
	"strings"
	"unicode"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// DownloadName builds an attachment name like "Jane_Doe_Resume.pdf" from a display name.
// Letters in any script are kept so Thai names survive.
func DownloadName(displayName, ext string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(displayName) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore && b.Len() > 0:
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	base := strings.TrimRight(b.String(), "_")
	if base == "" {
		base = "Resume"
	} else {
		base += "_Resume"
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
