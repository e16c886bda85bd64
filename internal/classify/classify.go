// Package classify holds the keyword and regex heuristics used by scoring
// and knowledge extraction. Both sit behind small interfaces so a smarter
// classifier can be swapped in without touching the engines.
package classify

import (
	"regexp"
	"sort"
	"strings"
)

// LinkExtractor finds documentation links in free text.
type LinkExtractor interface {
	DocLinks(text string) []string
}

// TagExtractor derives topic tags from free text.
type TagExtractor interface {
	Tags(text string) []string
}

// Classifier bundles both heuristics; most callers need only one side.
type Classifier interface {
	LinkExtractor
	TagExtractor
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// docMarkers are matched case-insensitively against the full URL. A link
// counts as documentation when any marker appears anywhere in it.
var docMarkers = []string{"confluence", "wiki", "docs", "documentation"}

type keywordClassifier struct{}

// NewKeywordClassifier returns the default keyword/regex implementation.
func NewKeywordClassifier() Classifier {
	return &keywordClassifier{}
}

var _ LinkExtractor = &keywordClassifier{}
var _ TagExtractor = &keywordClassifier{}

// DocLinks extracts every documentation URL from text, de-duplicated and
// sorted. Trailing punctuation picked up by the URL match is stripped.
func (c *keywordClassifier) DocLinks(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	for _, raw := range urlPattern.FindAllString(text, -1) {
		url := strings.TrimRight(raw, ".,;:!?")
		if !isDocLink(url) {
			continue
		}
		seen[url] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}
	links := make([]string, 0, len(seen))
	for url := range seen {
		links = append(links, url)
	}
	sort.Strings(links)
	return links
}

func isDocLink(url string) bool {
	lower := strings.ToLower(url)
	for _, marker := range docMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// tagKeywords maps canonical tags to the terms that imply them. Matching
// is case-insensitive over whole words.
var tagKeywords = map[string][]string{
	"api":            {"api", "endpoint", "rest", "graphql"},
	"architecture":   {"architecture", "design", "structure", "refactor"},
	"authentication": {"auth", "authentication", "login", "oauth", "token"},
	"database":       {"database", "sql", "postgres", "query", "schema", "index"},
	"deployment":     {"deploy", "deployment", "release", "rollout", "pipeline"},
	"infrastructure": {"infrastructure", "kubernetes", "docker", "terraform"},
	"integration":    {"integration", "webhook", "sync", "third-party"},
	"migration":      {"migration", "migrate", "upgrade", "backfill"},
	"performance":    {"performance", "latency", "slow", "cache", "caching", "optimization"},
	"security":       {"security", "vulnerability", "encryption", "secret"},
	"testing":        {"test", "testing", "coverage", "flaky"},
}

var wordPattern = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9_-]*`)

// Tags returns the canonical tags whose keywords appear in text, sorted.
func (c *keywordClassifier) Tags(text string) []string {
	if text == "" {
		return nil
	}

	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		words[w] = struct{}{}
	}

	var tags []string
	for tag, keywords := range tagKeywords {
		for _, kw := range keywords {
			if _, ok := words[kw]; ok {
				tags = append(tags, tag)
				break
			}
		}
	}
	sort.Strings(tags)
	return tags
}
