// Package pokedb parses PokemonDB trainer roster pages into ordered
// sections of trainers and teams.
//
// Page structure: an h2 per section ("Gym #1, Pewter City", "Elite Four",
// "Champion"), each followed by one or more infocard divs. Multiple cards
// for the same trainer are team variations (starter-dependent rosters,
// rematches) and become separate teams on one trainer entry.
package pokedb

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/dexlab/trainerdex-cli/internal/htmltext"
	"github.com/dexlab/trainerdex-cli/internal/model"
)

const cardClass = "infocard-list-trainer-pkmn"

// cardColumns is the canonical field order for roster rows extracted from
// infocards. A team's column list is the subset present in at least one of
// its rows, in this order.
var cardColumns = []string{"Pokemon", "Number", "Level", "Type"}

var (
	variationRe = regexp.MustCompile(`^\((.+?)\)`)
	levelRe     = regexp.MustCompile(`(?i)Level\s+(\d+)`)
)

// ParseGamePage converts one game's trainer page into ordered sections.
// Headings without trainer cards are noise, not errors; cards that fail to
// parse are skipped with a warning so one broken block never aborts the
// rest of the page.
func ParseGamePage(page []byte) ([]model.Section, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, eris.Wrap(err, "pokedb: parse html")
	}

	var sections []model.Section
	doc.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		label := htmltext.Text(heading)
		cards := collectCards(heading)
		if len(cards) == 0 {
			return
		}
		trainers := parseSection(label, cards)
		if len(trainers) > 0 {
			sections = append(sections, model.Section{Section: label, Trainers: trainers})
		}
	})
	return sections, nil
}

// collectCards gathers every trainer card between heading and the next h2,
// including cards nested inside grid wrappers.
func collectCards(heading *goquery.Selection) []*goquery.Selection {
	var cards []*goquery.Selection
	heading.NextUntil("h2").Each(func(_ int, sib *goquery.Selection) {
		if sib.HasClass(cardClass) {
			cards = append(cards, sib)
			return
		}
		sib.Find("div." + cardClass).Each(func(_ int, nested *goquery.Selection) {
			cards = append(cards, nested)
		})
	})
	return cards
}

// parseSection groups cards by trainer name in document order, one card
// per team variation.
func parseSection(label string, cards []*goquery.Selection) []model.Trainer {
	var (
		order  []string
		byName = make(map[string]*model.Trainer)
	)
	for _, sel := range cards {
		c, err := parseCard(sel)
		if err != nil {
			zap.L().Warn("skipping unparseable trainer card",
				zap.String("section", label),
				zap.Error(err),
			)
			continue
		}
		if len(c.rows) == 0 {
			continue
		}
		tr, ok := byName[c.name]
		if !ok {
			tr = &model.Trainer{Name: c.name, Subtitle: c.subtitle}
			byName[c.name] = tr
			order = append(order, c.name)
		}
		tr.Teams = append(tr.Teams, buildTeam(c.title, c.rows))
	}

	trainers := make([]model.Trainer, 0, len(order))
	for _, name := range order {
		trainers = append(trainers, *byName[name])
	}
	return trainers
}

type card struct {
	name     string
	subtitle *string
	title    *string // team variation, e.g. "Bulbasaur as starter"
	rows     []model.Row
}

func parseCard(sel *goquery.Selection) (card, error) {
	var c card

	head := sel.Find("span.trainer-head").First()
	if head.Length() == 0 {
		return c, eris.New("trainer card missing head")
	}
	nameSel := head.Find("span.ent-name").First()
	if nameSel.Length() == 0 {
		return c, eris.New("trainer card missing name")
	}
	c.name = htmltext.Text(nameSel)

	// The head text runs name and variation together: "Blue(Bulbasaur as
	// starter)Mixed types". The part in parentheses right after the name
	// is the team title.
	full := htmltext.Clean(head.Text())
	if rest, ok := strings.CutPrefix(full, c.name); ok {
		rest = strings.TrimSpace(rest)
		if m := variationRe.FindStringSubmatch(rest); m != nil {
			title := htmltext.Clean(m[1])
			c.title = &title
		}
	}

	// The badge line shares a <small> with the type specialty; only the
	// badge goes into the subtitle.
	var badges []string
	head.Find("small").Each(func(_ int, small *goquery.Selection) {
		for _, seg := range htmltext.Segments(small) {
			if strings.Contains(seg, "Badge") && !strings.Contains(seg, "type Pokémon") {
				badges = append(badges, seg)
			}
		}
	})
	if len(badges) > 0 {
		subtitle := strings.Join(badges, " - ")
		c.subtitle = &subtitle
	}

	sel.Find("div.trainer-pkmn").Each(func(_ int, pkmn *goquery.Selection) {
		data := pkmn.Find("span.infocard-lg-data").First()
		if data.Length() == 0 {
			return
		}
		row := model.Row{}
		if link := data.Find("a.ent-name").First(); link.Length() > 0 {
			row["Pokemon"] = htmltext.Text(link)
		}
		data.Find("small").Each(func(_ int, small *goquery.Selection) {
			text := htmltext.Text(small)
			switch {
			case strings.HasPrefix(text, "#"):
				if _, ok := row["Number"]; !ok {
					row["Number"] = text
				}
			case strings.HasPrefix(text, "Level"):
				if m := levelRe.FindStringSubmatch(text); m != nil {
					if _, ok := row["Level"]; !ok {
						row["Level"] = m[1]
					}
				}
			}
		})
		var types []string
		data.Find(`a[class*="itype"]`).Each(func(_ int, t *goquery.Selection) {
			types = append(types, htmltext.Text(t))
		})
		if len(types) > 0 {
			row["Type"] = strings.Join(types, " / ")
		}
		if len(row) > 0 {
			c.rows = append(c.rows, row)
		}
	})
	return c, nil
}

// buildTeam fixes the column schema for a card's rows: the canonical
// columns present in at least one row, with absent cells backfilled as
// empty strings so every row carries exactly the declared keys.
func buildTeam(title *string, rows []model.Row) model.Team {
	var columns []string
	for _, col := range cardColumns {
		for _, r := range rows {
			if _, ok := r[col]; ok {
				columns = append(columns, col)
				break
			}
		}
	}
	for _, r := range rows {
		for _, col := range columns {
			if _, ok := r[col]; !ok {
				r[col] = ""
			}
		}
	}
	return model.Team{Title: title, Columns: columns, Rows: rows}
}
