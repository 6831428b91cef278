package model

import (
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/dexlab/trainerdex-cli/internal/ordered"
)

// GameRoster is the extracted data for one game: the page it came from and
// its sections in document order.
type GameRoster struct {
	Source   string    `json:"source"`
	Sections []Section `json:"sections"`
}

// RosterIndex is the stage-one document, keyed by game name in catalog
// order. It is assembled once per run and never updated incrementally.
type RosterIndex struct {
	names []string
	games map[string]GameRoster
}

// NewRosterIndex creates an empty stage-one document.
func NewRosterIndex() *RosterIndex {
	return &RosterIndex{games: make(map[string]GameRoster)}
}

// Add records a game's roster. Re-adding a game replaces its data without
// changing its position.
func (x *RosterIndex) Add(name string, roster GameRoster) {
	if x.games == nil {
		x.games = make(map[string]GameRoster)
	}
	if _, ok := x.games[name]; !ok {
		x.names = append(x.names, name)
	}
	x.games[name] = roster
}

// Games returns the game names in insertion order.
func (x *RosterIndex) Games() []string {
	return x.names
}

// Get returns the roster recorded for a game.
func (x *RosterIndex) Get(name string) (GameRoster, bool) {
	r, ok := x.games[name]
	return r, ok
}

// Len returns the number of games present.
func (x *RosterIndex) Len() int {
	return len(x.names)
}

// TrainerNames returns the distinct trainer names across all games in
// discovery order: game by game, section by section. Names are deduplicated
// verbatim here; the enrichment stage applies its own normalization on top.
func (x *RosterIndex) TrainerNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, game := range x.names {
		for _, section := range x.games[game].Sections {
			for _, trainer := range section.Trainers {
				if trainer.Name == "" {
					continue
				}
				if _, ok := seen[trainer.Name]; ok {
					continue
				}
				seen[trainer.Name] = struct{}{}
				names = append(names, trainer.Name)
			}
		}
	}
	return names
}

// MarshalJSON writes games in insertion order.
func (x *RosterIndex) MarshalJSON() ([]byte, error) {
	obj := ordered.New()
	for _, name := range x.names {
		obj.Set(name, x.games[name])
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON reads a stage-one document, preserving game order.
func (x *RosterIndex) UnmarshalJSON(data []byte) error {
	var m ordered.Map
	if err := json.Unmarshal(data, &m); err != nil {
		return eris.Wrap(err, "roster index: decode document")
	}
	x.names = nil
	x.games = make(map[string]GameRoster)
	for _, name := range m.Keys() {
		var roster GameRoster
		if err := m.Decode(name, &roster); err != nil {
			return eris.Wrapf(err, "roster index: game %q", name)
		}
		x.Add(name, roster)
	}
	return nil
}
