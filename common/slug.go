package common

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptySlug is returned when neither the input nor the fallback yields
// any slug characters.
var ErrEmptySlug = errors.New("slug cannot be empty")

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input and collapses every run of non-alphanumeric
// characters into a single hyphen. Wiki labels reject spaces and
// punctuation, so free-text values such as knowledge tags pass through
// here before they are attached to an archive page. The fallback is used
// when the input slugs down to nothing.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}
