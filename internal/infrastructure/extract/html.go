package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text strips markup from an HTML document and returns its visible text
// with whitespace collapsed. Script and style contents are dropped.
func Text(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	scope := doc.Selection
	if body := doc.Find("body"); body.Length() > 0 {
		scope = body
	}

	var blocks []string
	scope.Find("p, h1, h2, h3, h4, h5, h6, li, td, th, blockquote, pre").Each(func(i int, sel *goquery.Selection) {
		if t := collapse(sel.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})

	// Documents without block structure still carry text directly.
	if len(blocks) == 0 {
		if t := collapse(scope.Text()); t != "" {
			blocks = append(blocks, t)
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}

// LooksLikeHTML reports whether content is plausibly an HTML document.
func LooksLikeHTML(content string) bool {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "<") {
		return false
	}
	lower := strings.ToLower(trimmed)
	return strings.Contains(lower, "<html") ||
		strings.Contains(lower, "<!doctype") ||
		strings.Contains(lower, "<body") ||
		strings.Contains(lower, "<p") ||
		strings.Contains(lower, "<div")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
