package workua

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Section boundaries for the resume body. The primary pair brackets the work
// experience block; the fallback pair covers the older collapsible layout.
const (
	experienceHeading = "Досвід роботи"

	primaryEndSelector    = "div.card.mt-0.card-indent-p.hidden-print"
	fallbackStartSelector = "div.panel-collapse.panel-collapse-alert.collapse.in"
	fallbackEndSelector   = "p.mb-0.mt-md.hidden-print"
)

// ErrMissingLink is returned when a detail fetch is requested for a listing
// record that carried no usable link.
var ErrMissingLink = errors.New("resume link is missing")

// FetchDetail retrieves the resume page at link and extracts its free-text
// body. An empty string is a valid outcome: it means neither marker pair
// matched, not that the fetch failed.
func (c *Client) FetchDetail(ctx context.Context, link string) (string, error) {
	if strings.TrimSpace(link) == "" {
		return "", ErrMissingLink
	}

	resp, err := c.get(ctx, link, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bad status: %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse resume page: %w", err)
	}

	return extractBody(doc), nil
}

// extractBody concatenates the text of every element between the section
// markers. When the primary pair yields nothing, the fallback pair is tried
// with the same rule.
func extractBody(doc *goquery.Document) string {
	start := doc.Find("h2").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.Text()) == experienceHeading
	}).First()
	end := doc.Find(primaryEndSelector).First()

	if text := textBetween(start, end); text != "" {
		return text
	}

	start = doc.Find(fallbackStartSelector).First()
	end = doc.Find(fallbackEndSelector).First()

	return textBetween(start, end)
}

// textBetween collects the text of every element following start in document
// order, up to but excluding end. Both markers must be present.
func textBetween(start, end *goquery.Selection) string {
	if start.Length() == 0 || end.Length() == 0 {
		return ""
	}

	endNode := end.Nodes[0]
	parts := make([]string, 0)

	for n := nextInDocument(start.Nodes[0]); n != nil && n != endNode; n = nextInDocument(n) {
		if n.Type != html.ElementNode {
			continue
		}
		if text := elementText(n); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n")
}

// nextInDocument advances to the next node in document order, descending into
// children before moving to siblings.
func nextInDocument(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// elementText gathers the trimmed text nodes under n, one per line.
func elementText(n *html.Node) string {
	lines := make([]string, 0)

	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				lines = append(lines, text)
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return strings.Join(lines, "\n")
}
