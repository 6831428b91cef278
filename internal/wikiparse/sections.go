// Package wikiparse extracts roster tables from MediaWiki page HTML, each
// paired with the heading path it appears under.
package wikiparse

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/dexlab/trainerdex-cli/internal/htmltext"
	"github.com/dexlab/trainerdex-cli/internal/model"
)

// PathSeparator joins heading paths into stage-two keys.
const PathSeparator = " -> "

// JoinPath renders a heading path as a single document key.
func JoinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}

// Entry is one roster table and the heading path it was found under.
type Entry struct {
	Path []string
	Team model.Team
}

// tableKeywords must appear somewhere in a table's header cells for it to
// count as a roster table; anything else (biographies, trivia, sprite
// galleries) is unrelated.
var tableKeywords = []string{
	"pokémon", "pokemon",
	"level",
	"moves", "move",
	"ability", "abilities",
	"item", "items",
}

// Extract returns every roster table in the page in document order. Only
// tables nested under a top-level "Pokémon" heading are considered;
// navigation boxes and tables without roster-like headers are skipped.
func Extract(page string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, eris.Wrap(err, "wikiparse: parse html")
	}
	root := doc.Find(".mw-parser-output").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var entries []Entry
	for _, pt := range walk(root) {
		if !rosterScoped(pt.frames) {
			continue
		}
		if isNavbox(pt.table) || !hasRosterHeader(pt.table) {
			continue
		}
		team, ok := ParseTable(pt.table)
		if !ok {
			continue
		}
		path := make([]string, len(pt.frames))
		for i, f := range pt.frames {
			path[i] = f.title
		}
		entries = append(entries, Entry{Path: path, Team: team})
	}
	return entries, nil
}

type frame struct {
	level int
	title string
}

type pathTable struct {
	frames []frame
	table  *goquery.Selection
}

var headingLevels = map[string]int{
	"h1": 1, "h2": 2, "h3": 3, "h4": 4, "h5": 5, "h6": 6,
}

// walk scans the direct children of root in document order, maintaining a
// stack of headings keyed purely by numeric level. Levels may skip (h2
// straight to h4): entering a heading pops everything at or below its
// level, nothing more. Each table is paired with a copy of the stack
// active at its position.
func walk(root *goquery.Selection) []pathTable {
	var (
		stack []frame
		out   []pathTable
	)
	root.Children().Each(func(_ int, child *goquery.Selection) {
		heading := child
		// Modern MediaWiki wraps headings in div.mw-heading.
		if child.Is("div.mw-heading") {
			heading = child.ChildrenFiltered("h1,h2,h3,h4,h5,h6").First()
		}
		if level, ok := headingLevels[goquery.NodeName(heading)]; ok {
			title := headingTitle(heading)
			if title == "" {
				return
			}
			for len(stack) > 0 && stack[len(stack)-1].level >= level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, frame{level: level, title: title})
			return
		}
		if goquery.NodeName(child) != "table" || len(stack) == 0 {
			return
		}
		frames := make([]frame, len(stack))
		copy(frames, stack)
		out = append(out, pathTable{frames: frames, table: child})
	})
	return out
}

func headingTitle(h *goquery.Selection) string {
	return htmltext.Clean(strings.ReplaceAll(h.Text(), "[edit]", ""))
}

// rosterScoped reports whether the path sits under a top-level Pokémon
// heading; everything else on a trainer page (biography, quotes, trivia)
// is out of scope.
func rosterScoped(frames []frame) bool {
	for _, f := range frames {
		if f.level > 2 {
			continue
		}
		lowered := strings.ToLower(f.title)
		if strings.Contains(lowered, "pokémon") || strings.Contains(lowered, "pokemon") {
			return true
		}
	}
	return false
}

func isNavbox(tbl *goquery.Selection) bool {
	cls, _ := tbl.Attr("class")
	return strings.Contains(cls, "navbox")
}

func hasRosterHeader(tbl *goquery.Selection) bool {
	var b strings.Builder
	tbl.Find("th").Each(func(_ int, th *goquery.Selection) {
		b.WriteString(strings.ToLower(cellText(th)))
		b.WriteByte(' ')
	})
	header := b.String()
	if strings.TrimSpace(header) == "" {
		return false
	}
	for _, kw := range tableKeywords {
		if strings.Contains(header, kw) {
			return true
		}
	}
	return false
}
