package fetcher

import (
	"bytes"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// ReadabilityExtractor extracts text with the Mozilla Readability algorithm
// and images with the heuristic image strategies.
type ReadabilityExtractor struct {
	Image []ImageStrategy
}

// NewReadabilityExtractor returns a ReadabilityExtractor with the default
// image strategies.
func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{Image: DefaultImageStrategies()}
}

// Extract implements Extractor.
func (e *ReadabilityExtractor) Extract(html []byte, pageURL *url.URL) (string, string) {
	doc, err := parseHTML(html)
	if err != nil {
		return "", ""
	}
	image := runImage(doc, e.Image, pageURL)

	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(bytes.NewReader(html), pageURL)
	if err != nil {
		slog.Debug("readability extraction failed",
			slog.Any("error", err))
		return "", image
	}

	return strings.Join(strings.Fields(article.TextContent), " "), image
}

// NewExtractor returns the extractor named by CONTENT_EXTRACTOR.
func NewExtractor(name string) Extractor {
	if name == ExtractorReadability {
		return NewReadabilityExtractor()
	}
	return NewHeuristicExtractor()
}
