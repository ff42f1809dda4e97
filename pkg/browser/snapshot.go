package browser

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Snapshot is a page's HTML with active content removed, safe to open
// from a test report.
type Snapshot struct {
	Title string
	HTML  string
}

// CleanSnapshot parses rawHTML and drops scripts, styles, embedded frames,
// comments and inline event handlers.
func CleanSnapshot(rawHTML string) (*Snapshot, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	stripNode(doc)

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	return &Snapshot{
		Title: extractTitle(doc),
		HTML:  b.String(),
	}, nil
}

// stripNode removes unwanted descendants of n in place.
func stripNode(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isStripped(c) {
			n.RemoveChild(c)
		} else {
			if c.Type == html.ElementNode {
				c.Attr = keepAttributes(c.Attr)
			}
			stripNode(c)
		}
		c = next
	}
}

func isStripped(n *html.Node) bool {
	switch n.Type {
	case html.CommentNode:
		return true
	case html.ElementNode:
		switch strings.ToLower(n.Data) {
		case "script", "style", "noscript", "iframe", "embed", "object":
			return true
		}
	}
	return false
}

// keepAttributes drops on* handlers and javascript: URLs.
func keepAttributes(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if strings.HasPrefix(key, "on") {
			continue
		}
		if (key == "href" || key == "src") && strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

// extractTitle returns the text of the first <title> element.
func extractTitle(doc *html.Node) string {
	var title string
	var traverse func(*html.Node) bool
	traverse = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if traverse(c) {
				return true
			}
		}
		return false
	}
	traverse(doc)
	return title
}
