package testutil

import (
	"fmt"
	"html"
	"strings"
)

// BoardExport renders a minimal board export page: one _outerWrapper_ div per
// column, a _headerName_ div for its title and one div.card per card.
type BoardExport struct {
	columns []exportColumn
}

type exportColumn struct {
	name  string
	cards []string
}

// NewBoardExport starts an empty export
func NewBoardExport() *BoardExport {
	return &BoardExport{}
}

// Column appends a column holding the given card texts
func (b *BoardExport) Column(name string, cards ...string) *BoardExport {
	b.columns = append(b.columns, exportColumn{name: name, cards: cards})
	return b
}

// String renders the export as HTML
func (b *BoardExport) String() string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html><head><title>Board</title></head><body>\n<div class=\"board\">\n")
	for i, col := range b.columns {
		fmt.Fprintf(&sb, "  <div class=\"list _outerWrapper_%d\">\n", i)
		fmt.Fprintf(&sb, "    <div class=\"_headerName_%d\">%s</div>\n", i, html.EscapeString(col.name))
		for _, text := range col.cards {
			fmt.Fprintf(&sb, "    <div class=\"card\">%s</div>\n", html.EscapeString(text))
		}
		sb.WriteString("  </div>\n")
	}
	sb.WriteString("</div>\n</body></html>\n")
	return sb.String()
}

// Bytes renders the export as HTML bytes
func (b *BoardExport) Bytes() []byte {
	return []byte(b.String())
}
