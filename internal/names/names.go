// Package names derives wiki lookup terms and dedupe keys from trainer
// names as stage one records them.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)
	footnote      = regexp.MustCompile(`\[(?:note\s*\d+|\d+)\]`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Honorific prefixes stage one sometimes carries in front of the bare name;
// the wiki titles its articles by name alone.
var honorifics = []string{"Leader", "Champion", "Elite Four"}

// Query derives the wiki lookup term from a roster trainer name. Pure and
// deterministic: parenthetical annotations and footnote markers are
// dropped, honorific prefixes trimmed, whitespace collapsed.
func Query(name string) string {
	s := footnote.ReplaceAllString(name, "")
	s = parenthetical.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	for _, h := range honorifics {
		if rest, ok := strings.CutPrefix(s, h+" "); ok && rest != "" {
			s = rest
			break
		}
	}
	return strings.Trim(s, " *†")
}

// Key is the normalization used to deduplicate trainers across games: the
// query term case-folded with combining marks stripped, so accented and
// plain spellings of one trainer collapse to a single entry.
func Key(name string) string {
	decomposed := norm.NFD.String(Query(name))
	var b strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return norm.NFC.String(b.String())
}
