// Package catalog is the static index of mainline games and their trainer
// roster pages on PokemonDB.
package catalog

import (
	"slices"
	"strings"
)

// Game identifies one mainline game and where its trainer page lives.
type Game struct {
	Name string
	Slug string

	// suffix overrides the default trainer page path; a few generations
	// use a different URL (kahunas, no Elite Four page).
	suffix string
}

const defaultSuffix = "/gymleaders-elitefour"

// games lists every supported game in release order. This order drives
// stage-one iteration and the key order of the output document.
var games = []Game{
	{Name: "Red/Blue", Slug: "red-blue"},
	{Name: "Yellow", Slug: "yellow"},
	{Name: "Gold/Silver", Slug: "gold-silver"},
	{Name: "Crystal", Slug: "crystal"},
	{Name: "Ruby/Sapphire", Slug: "ruby-sapphire"},
	{Name: "Emerald", Slug: "emerald"},
	{Name: "FireRed/LeafGreen", Slug: "firered-leafgreen"},
	{Name: "Diamond/Pearl", Slug: "diamond-pearl"},
	{Name: "Platinum", Slug: "platinum"},
	{Name: "HeartGold/SoulSilver", Slug: "heartgold-soulsilver"},
	{Name: "Black/White", Slug: "black-white"},
	{Name: "Black 2/White 2", Slug: "black-white-2"},
	{Name: "X/Y", Slug: "x-y"},
	{Name: "Omega Ruby/Alpha Sapphire", Slug: "omega-ruby-alpha-sapphire"},
	{Name: "Sun/Moon", Slug: "sun-moon", suffix: "/kahunas-elitefour"},
	{Name: "Ultra Sun/Ultra Moon", Slug: "ultra-sun-ultra-moon", suffix: "/kahunas-elitefour"},
	{Name: "Let's Go Pikachu/Eevee", Slug: "lets-go-pikachu-eevee"},
	{Name: "Sword/Shield", Slug: "sword-shield", suffix: "/gymleaders"},
	{Name: "Brilliant Diamond/Shining Pearl", Slug: "brilliant-diamond-shining-pearl"},
	{Name: "Scarlet/Violet", Slug: "scarlet-violet"},
}

// All returns the full catalog in fixed order.
func All() []Game {
	return slices.Clone(games)
}

// PageURL returns the trainer roster page for the game under base.
func (g Game) PageURL(base string) string {
	suffix := g.suffix
	if suffix == "" {
		suffix = defaultSuffix
	}
	return strings.TrimRight(base, "/") + "/" + g.Slug + suffix
}

// Select filters the catalog by the requested names. Matching is
// case-insensitive on the exact name or a substring of it ("crystal",
// "black" both work). The result keeps catalog order regardless of request
// order; the second return lists requests that matched nothing.
func Select(requested []string) (matched []Game, unknown []string) {
	if len(requested) == 0 {
		return All(), nil
	}

	wanted := make([]string, len(requested))
	for i, r := range requested {
		wanted[i] = strings.ToLower(strings.TrimSpace(r))
	}
	satisfied := make([]bool, len(requested))

	for _, g := range games {
		name := strings.ToLower(g.Name)
		hit := false
		for i, w := range wanted {
			if w == "" {
				continue
			}
			if name == w || strings.Contains(name, w) {
				satisfied[i] = true
				hit = true
			}
		}
		if hit {
			matched = append(matched, g)
		}
	}
	for i, ok := range satisfied {
		if !ok {
			unknown = append(unknown, requested[i])
		}
	}
	return matched, unknown
}
