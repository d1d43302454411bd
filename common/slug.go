package common

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify lowercases input and collapses runs of non-alphanumerics into single
// hyphens. If nothing survives, fallback is used instead.
func Slugify(input, fallback string) (string, error) {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(input) {
		switch {
		case unicode.IsLetter(r) && r < 128, unicode.IsDigit(r) && r < 128:
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		if fallback == "" {
			return "", fmt.Errorf("cannot derive slug from %q", input)
		}
		slug = fallback
	}
	if len(slug) > 64 {
		slug = strings.Trim(slug[:64], "-")
	}
	return slug, nil
}
