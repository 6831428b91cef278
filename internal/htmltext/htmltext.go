// Package htmltext flattens HTML fragments into the cleaned text both
// parsers feed into roster cells and headings.
package htmltext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	refMarker  = regexp.MustCompile(`\[(?:note\s*\d+|\d+)\]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Clean collapses whitespace and strips reference footnote markers like
// [1] or [note 2].
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = refMarker.ReplaceAllString(text, "")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.Trim(text, " ;,†")
}

// Text is Clean applied to the selection's flattened text.
func Text(sel *goquery.Selection) string {
	return Clean(sel.Text())
}

// Segments returns the cleaned text chunks of a selection, splitting at
// <br> tags and list items. Empty chunks are dropped.
func Segments(sel *goquery.Selection) []string {
	return SegmentsFunc(sel, nil)
}

// SegmentsFunc is Segments with a node filter: subtrees for which skip
// returns true are left out entirely (references, tooltips).
func SegmentsFunc(sel *goquery.Selection, skip func(*html.Node) bool) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	flush := func() {
		if s := Clean(cur.String()); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skip != nil && skip(n) {
			return
		}
		switch {
		case n.Type == html.TextNode:
			cur.WriteString(n.Data)
		case n.Type == html.ElementNode && isBreak(n.Data):
			flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlock(n.Data) {
			flush()
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	flush()
	return parts
}

// CellText extracts readable text from a table cell, joining line segments
// with "; " the way the source sites stack values inside one cell.
func CellText(cell *goquery.Selection) string {
	return strings.Join(Segments(cell), "; ")
}

func isBreak(tag string) bool {
	switch tag {
	case "br", "li", "tr", "p":
		return true
	}
	return false
}

func isBlock(tag string) bool {
	switch tag {
	case "li", "tr", "p":
		return true
	}
	return false
}
