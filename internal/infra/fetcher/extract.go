package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextStrategy extracts article text from a parsed document. found reports
// whether the strategy applies; a found result ends the search even when
// the text is empty.
type TextStrategy func(doc *goquery.Document) (text string, found bool)

// ImageStrategy extracts a representative image URL from a parsed document.
type ImageStrategy func(doc *goquery.Document) (src string, found bool)

// Extractor turns page HTML into article text and an image URL.
type Extractor interface {
	Extract(html []byte, pageURL *url.URL) (text, imageURL string)
}

// DefaultTextStrategies is the heuristic order: the common CMS body
// container, then the first <article>, then every paragraph of the page.
func DefaultTextStrategies() []TextStrategy {
	return []TextStrategy{
		containerParagraphs("div.post-content"),
		containerParagraphs("article"),
		allParagraphs,
	}
}

// DefaultImageStrategies is the image order: og:image, the first figure's
// image, then the first image of the page.
func DefaultImageStrategies() []ImageStrategy {
	return []ImageStrategy{
		metaContent(`meta[property="og:image"]`),
		figureImage,
		firstImage,
	}
}

func containerParagraphs(selector string) TextStrategy {
	return func(doc *goquery.Document) (string, bool) {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			return "", false
		}
		return joinParagraphs(container.Find("p")), true
	}
}

func allParagraphs(doc *goquery.Document) (string, bool) {
	return joinParagraphs(doc.Find("p")), true
}

// joinParagraphs trims each paragraph, drops empty ones and joins the rest
// with a single space.
func joinParagraphs(sel *goquery.Selection) string {
	parts := make([]string, 0, sel.Length())
	sel.Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, " ")
}

func metaContent(selector string) ImageStrategy {
	return func(doc *goquery.Document) (string, bool) {
		v := strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
		return v, v != ""
	}
}

func figureImage(doc *goquery.Document) (string, bool) {
	fig := doc.Find("figure").First()
	if fig.Length() == 0 {
		return "", false
	}
	src := strings.TrimSpace(fig.Find("img").First().AttrOr("src", ""))
	return src, src != ""
}

func firstImage(doc *goquery.Document) (string, bool) {
	src := strings.TrimSpace(doc.Find("img").First().AttrOr("src", ""))
	return src, src != ""
}

// HeuristicExtractor runs ordered goquery strategies.
type HeuristicExtractor struct {
	Text  []TextStrategy
	Image []ImageStrategy
}

// NewHeuristicExtractor returns an extractor with the default strategies.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{
		Text:  DefaultTextStrategies(),
		Image: DefaultImageStrategies(),
	}
}

// Extract implements Extractor. HTML that cannot be parsed yields empty
// results.
func (e *HeuristicExtractor) Extract(html []byte, pageURL *url.URL) (string, string) {
	doc, err := parseHTML(html)
	if err != nil {
		return "", ""
	}
	return runText(doc, e.Text), runImage(doc, e.Image, pageURL)
}

// ExtractText returns the article text of html using the default strategies.
func ExtractText(html string) string {
	doc, err := parseHTML([]byte(html))
	if err != nil {
		return ""
	}
	return runText(doc, DefaultTextStrategies())
}

// ExtractImage returns the image URL of html using the default strategies,
// as written in the document.
func ExtractImage(html string) string {
	doc, err := parseHTML([]byte(html))
	if err != nil {
		return ""
	}
	return runImage(doc, DefaultImageStrategies(), nil)
}

func parseHTML(html []byte) (*goquery.Document, error) {
	if len(bytes.TrimSpace(html)) == 0 {
		return nil, errEmptyDocument
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(html))
}

func runText(doc *goquery.Document, strategies []TextStrategy) string {
	for _, s := range strategies {
		if text, found := s(doc); found {
			return text
		}
	}
	return ""
}

func runImage(doc *goquery.Document, strategies []ImageStrategy, pageURL *url.URL) string {
	for _, s := range strategies {
		if src, found := s(doc); found {
			return resolveReference(pageURL, src)
		}
	}
	return ""
}

// resolveReference makes relative image references absolute against the
// page URL. Unparsable references are returned unchanged.
func resolveReference(base *url.URL, ref string) string {
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
