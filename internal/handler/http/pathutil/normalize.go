package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes, most specific first.
// Any single segment under /news collapses to :id, including malformed ids
// that end in a 400.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/news/[^/]+$`), Template: "/news/:id"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/news/123")        // "/news/:id"
//	NormalizePath("/news/abc")        // "/news/:id"
//	NormalizePath("/news")            // "/news" (unchanged)
//	NormalizePath("/health")          // "/health" (unchanged)
//	NormalizePath("/news/123?x=1")    // "/news/:id"
//	NormalizePath("/news/123/")       // "/news/:id"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
