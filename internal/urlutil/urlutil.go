package urlutil

import (
	"net/url"
	"regexp"
	"strings"
)

// Normalize strips fragment and query, drops the www prefix and
// defaults the scheme, so one article maps to one store key.
func Normalize(urlStr string) string {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}

	parsed.Fragment = ""
	parsed.RawQuery = ""
	parsed.Host = strings.TrimPrefix(parsed.Host, "www.")
	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}

	return parsed.String()
}

// ShouldFollow applies exclude patterns first, then follow patterns.
// An empty follow list matches everything.
func ShouldFollow(urlStr string, followPatterns, excludePatterns []string) bool {
	for _, pattern := range excludePatterns {
		if MatchesPattern(urlStr, pattern) {
			return false
		}
	}

	if len(followPatterns) == 0 {
		return true
	}

	for _, pattern := range followPatterns {
		if MatchesPattern(urlStr, pattern) {
			return true
		}
	}
	return false
}

func MatchesPattern(urlStr string, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(urlStr)
}
