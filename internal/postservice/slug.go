package postservice

import (
	"regexp"
	"strings"
)

var (
	SlugRX = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

	nonSlugCharsRX = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRX   = regexp.MustCompile(`\s+`)
	hyphensRX      = regexp.MustCompile(`-+`)
)

const maxSlugLength = 200

// GenerateSlug derives a URL-safe identifier from a title. Titles without any ASCII letters or
// digits produce an empty slug.
func GenerateSlug(title string) string {
	s := strings.ToLower(title)
	s = nonSlugCharsRX.ReplaceAllString(s, "")
	s = whitespaceRX.ReplaceAllString(s, "-")
	s = hyphensRX.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ValidSlug reports whether s is a canonical slug, the form required of newly created posts.
func ValidSlug(s string) bool {
	return len(s) <= maxSlugLength && SlugRX.MatchString(s)
}
