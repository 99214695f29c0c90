package util

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify converts a display name into a URL-safe slug: lowercase ASCII
// letters, digits and single hyphens. Non-convertible runes are dropped.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		case r == ' ' || r == '-' || r == '_' || r == '/':
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}

// UniqueSlug appends a numeric suffix until the exists callback reports the
// slug as free. The first candidate is the bare slug itself.
func UniqueSlug(name string, exists func(slug string) (bool, error)) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "item"
	}

	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
