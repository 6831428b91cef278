// Package model holds the data shapes shared by both pipeline stages.
package model

import "github.com/dexlab/trainerdex-cli/internal/ordered"

// Row maps a column name to its cell value. Values stay strings because
// source formatting is inconsistent: level ranges, asterisks, footnotes.
type Row map[string]string

// Team is one roster table belonging to a trainer. Columns vary per game,
// so the schema travels with the team instead of being fixed globally.
type Team struct {
	Title   *string  `json:"title"`
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON writes rows with keys in declared column order so repeated
// runs against unchanged sources produce byte-identical artifacts.
func (t Team) MarshalJSON() ([]byte, error) {
	rows := make([]*ordered.Map, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := ordered.New()
		for _, col := range t.Columns {
			row.Set(col, r[col])
		}
		rows = append(rows, row)
	}
	obj := ordered.New()
	obj.Set("title", t.Title)
	obj.Set("columns", t.Columns)
	obj.Set("rows", rows)
	return obj.MarshalJSON()
}

// Trainer is one trainer within a section. Identity within stage one is
// (game, section, name); the same name recurring across games is kept
// separate until the enrichment stage deduplicates it.
type Trainer struct {
	Name        string  `json:"name"`
	Subtitle    *string `json:"subtitle"`
	Description *string `json:"description"`
	Teams       []Team  `json:"teams"`
}

// Section is a named grouping of trainers within one game, in the order
// the source page lists them (in-game progression).
type Section struct {
	Section  string    `json:"section"`
	Trainers []Trainer `json:"trainers"`
}
