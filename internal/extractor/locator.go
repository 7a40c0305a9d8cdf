package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// Locator finds the fields of a rate table inside a parsed page. It holds every
// assumption about the page layout so the rest of the extractor stays layout-free.
type Locator interface {
	Rows(doc *html.Node) []*html.Node
	CurrencyLabel(row *html.Node) (string, bool)
	Value(row *html.Node) (string, bool)
}

// ClassLocator matches elements by tag name and CSS class token.
type ClassLocator struct {
	RowTag     string
	RowClass   string
	LabelTag   string
	LabelClass string
	ValueTag   string
	ValueClass string
}

// KemenkeuLocator describes the kurs pajak table of fiskal.kemenkeu.go.id.
var KemenkeuLocator = ClassLocator{
	RowTag:     "tr",
	RowClass:   "table-bordered",
	LabelTag:   "span",
	LabelClass: "hidden-xs",
	ValueTag:   "div",
	ValueClass: "m-l-5",
}

func (l ClassLocator) Rows(doc *html.Node) []*html.Node {
	return findAll(doc, l.RowTag, l.RowClass)
}

func (l ClassLocator) CurrencyLabel(row *html.Node) (string, bool) {
	n := findFirst(row, l.LabelTag, l.LabelClass)
	if n == nil {
		return "", false
	}
	return extractText(n), true
}

func (l ClassLocator) Value(row *html.Node) (string, bool) {
	n := findFirst(row, l.ValueTag, l.ValueClass)
	if n == nil {
		return "", false
	}
	return strings.TrimSpace(extractText(n)), true
}

func matches(n *html.Node, tag, class string) bool {
	return n.Type == html.ElementNode && n.Data == tag && hasClass(n, class)
}

func hasClass(n *html.Node, class string) bool {
	if class == "" {
		return true
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(attr.Val) {
			if token == class {
				return true
			}
		}
	}
	return false
}

func findAll(root *html.Node, tag, class string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if matches(n, tag, class) {
			found = append(found, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return found
}

// findFirst searches the descendants of root, not root itself.
func findFirst(root *html.Node, tag, class string) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if matches(c, tag, class) {
			return c
		}
		if n := findFirst(c, tag, class); n != nil {
			return n
		}
	}
	return nil
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}
