package board

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Structural markers of the board export.
const (
	ColumnClassPrefix = "_outerWrapper_"
	HeaderClassPrefix = "_headerName_"
	CardClass         = "card"
)

// Document exposes the columns of a board export independently of its markup.
type Document interface {
	Columns() []Column
}

// Column is one workflow column found in a document.
type Column interface {
	// Name returns the header text; false when the container has no header.
	Name() (string, bool)
	Cards() []CardHandle
}

// CardHandle is a candidate card inside a column.
type CardHandle interface {
	Text() string
}

// HTMLDocument is a Document backed by a parsed HTML tree.
type HTMLDocument struct {
	root *html.Node
}

// ParseHTML parses an export. Malformed markup is recovered on a best-effort
// basis; only a failing reader produces an error.
func ParseHTML(r io.Reader) (*HTMLDocument, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &HTMLDocument{root: root}, nil
}

// ParseHTMLBytes parses an in-memory export. It never fails: bytes that cannot
// be read as a tree yield an empty document.
func ParseHTMLBytes(data []byte) *HTMLDocument {
	doc, err := ParseHTML(bytes.NewReader(data))
	if err != nil {
		return &HTMLDocument{}
	}
	return doc
}

// Columns returns every column wrapper in document order.
func (d *HTMLDocument) Columns() []Column {
	if d == nil || d.root == nil {
		return nil
	}

	var columns []Column
	for _, n := range findAll(d.root, func(n *html.Node) bool {
		return isDiv(n) && hasClassPrefix(n, ColumnClassPrefix)
	}) {
		columns = append(columns, htmlColumn{node: n})
	}
	return columns
}

type htmlColumn struct {
	node *html.Node
}

func (c htmlColumn) Name() (string, bool) {
	header := findFirst(c.node, func(n *html.Node) bool {
		return isDiv(n) && hasClassPrefix(n, HeaderClassPrefix)
	})
	if header == nil {
		return "", false
	}
	return flattenText(header), true
}

// Cards returns the div.card descendants, or every descendant div when the
// export does not mark its cards.
func (c htmlColumn) Cards() []CardHandle {
	nodes := findAll(c.node, func(n *html.Node) bool {
		return isDiv(n) && hasClass(n, CardClass)
	})
	if len(nodes) == 0 {
		nodes = findAll(c.node, isDiv)
	}

	cards := make([]CardHandle, 0, len(nodes))
	for _, n := range nodes {
		cards = append(cards, htmlCard{node: n})
	}
	return cards
}

type htmlCard struct {
	node *html.Node
}

func (c htmlCard) Text() string {
	return flattenText(c.node)
}

// findAll walks the descendants of root (root excluded) in document order.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if match(child) {
				out = append(out, child)
			}
			walk(child)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			return child
		}
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

// flattenText joins the trimmed, non-empty text nodes under n with single spaces.
func flattenText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		switch node.Type {
		case html.TextNode:
			if s := strings.TrimSpace(node.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			if node.Data == "script" || node.Data == "style" {
				return
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func isDiv(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "div"
}

func classes(n *html.Node) []string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			return strings.Fields(attr.Val)
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range classes(n) {
		if c == class {
			return true
		}
	}
	return false
}

func hasClassPrefix(n *html.Node, prefix string) bool {
	for _, c := range classes(n) {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
