package wikiparse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dexlab/trainerdex-cli/internal/htmltext"
	"github.com/dexlab/trainerdex-cli/internal/model"
)

// ParseTable converts a wiki table into Team shape, expanding colspan and
// rowspan so every row lines up with the combined header. Returns false
// when the table has no usable data rows.
func ParseTable(tbl *goquery.Selection) (model.Team, bool) {
	var (
		spans      = make(map[int]*span)
		headerRows [][]string
		dataRows   [][]string
	)
	tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() == 0 {
			return
		}
		values := expandRow(cells, spans)
		if !anyValue(values) {
			return
		}
		isHeader := true
		cells.Each(func(_ int, c *goquery.Selection) {
			if goquery.NodeName(c) == "td" {
				isHeader = false
			}
		})
		if isHeader {
			headerRows = append(headerRows, values)
		} else {
			dataRows = append(dataRows, values)
		}
	})
	if len(dataRows) == 0 {
		return model.Team{}, false
	}

	header := combineHeaders(headerRows)
	width := len(header)
	for _, row := range dataRows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return model.Team{}, false
	}
	header = normalizeColumns(header, width)

	var rows []model.Row
	for _, values := range dataRows {
		entry := model.Row{}
		empty := true
		for i := 0; i < width; i++ {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			if v != "" {
				empty = false
			}
			entry[header[i]] = v
		}
		if !empty {
			rows = append(rows, entry)
		}
	}
	if len(rows) == 0 {
		return model.Team{}, false
	}

	var title *string
	if caption := htmltext.Text(tbl.Find("caption").First()); caption != "" {
		title = &caption
	}
	return model.Team{Title: title, Columns: header, Rows: rows}, true
}

// span tracks a rowspan cell still claiming columns in following rows.
type span struct {
	text      string
	remaining int
}

// expandRow flattens one tr into per-column values, honoring colspan and
// carrying rowspan cells over via spans.
func expandRow(cells *goquery.Selection, spans map[int]*span) []string {
	var values []string
	col := drainSpans(&values, spans, 0)
	cells.Each(func(_ int, cell *goquery.Selection) {
		col = drainSpans(&values, spans, col)
		text := cellText(cell)
		colspan := intAttr(cell, "colspan", 1)
		rowspan := intAttr(cell, "rowspan", 1)
		for offset := 0; offset < colspan; offset++ {
			values = append(values, text)
			if rowspan > 1 {
				spans[col+offset] = &span{text: text, remaining: rowspan - 1}
			}
		}
		col += colspan
	})
	drainSpans(&values, spans, col)
	return values
}

func drainSpans(values *[]string, spans map[int]*span, col int) int {
	for {
		s, ok := spans[col]
		if !ok {
			return col
		}
		*values = append(*values, s.text)
		s.remaining--
		if s.remaining == 0 {
			delete(spans, col)
		}
		col++
	}
}

func intAttr(cell *goquery.Selection, name string, def int) int {
	v, ok := cell.Attr(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// combineHeaders merges stacked header rows into one column list. When a
// lower row refines an upper cell the two are joined as "Top - Bottom";
// when it just repeats or is blank, the more specific label wins.
func combineHeaders(headerRows [][]string) []string {
	if len(headerRows) == 0 {
		return nil
	}
	width := 0
	for _, row := range headerRows {
		if len(row) > width {
			width = len(row)
		}
	}
	combined := make([]string, width)
	copy(combined, headerRows[0])
	for _, row := range headerRows[1:] {
		for i := 0; i < width; i++ {
			bottom := ""
			if i < len(row) {
				bottom = row[i]
			}
			top := combined[i]
			switch {
			case top != "" && bottom != "" && !strings.Contains(strings.ToLower(top), strings.ToLower(bottom)):
				combined[i] = top + " - " + bottom
			case bottom != "":
				combined[i] = bottom
			}
		}
	}
	return combined
}

// normalizeColumns pads the header to width, backfills blank cells as
// "Column N" and disambiguates duplicates so rows keep exactly one value
// per declared column.
func normalizeColumns(columns []string, width int) []string {
	out := make([]string, width)
	copy(out, columns)
	seen := make(map[string]int)
	for i := range out {
		if out[i] == "" {
			out[i] = fmt.Sprintf("Column %d", i+1)
		}
		seen[out[i]]++
		if n := seen[out[i]]; n > 1 {
			out[i] = fmt.Sprintf("%s (%d)", out[i], n)
		}
	}
	return out
}

func anyValue(values []string) bool {
	for _, v := range values {
		if v != "" {
			return true
		}
	}
	return false
}

// cellText strips references and tooltips before flattening the cell.
func cellText(cell *goquery.Selection) string {
	return strings.Join(htmltext.SegmentsFunc(cell, skipNode), "; ")
}

func skipNode(n *html.Node) bool {
	if n.Data == "sup" {
		return true
	}
	if n.Data != "span" && n.Data != "div" {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(attr.Val) {
			if strings.HasPrefix(cls, "reference") || strings.HasPrefix(cls, "tooltip") {
				return true
			}
		}
	}
	return false
}
