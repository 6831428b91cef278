// Package pipeline runs the two scrape stages end to end: game catalog to
// roster JSON, then roster JSON to enriched Bulbapedia JSON.
package pipeline

import (
	"fmt"
	"strings"
)

// ConfigError kinds.
const (
	KindUnknownGame    = "unknown_game"
	KindUnknownTrainer = "unknown_trainer"
)

// ConfigError reports selectors that match nothing in the catalog or the
// input roster. Raised before any network traffic so a typo never costs a
// partial run.
type ConfigError struct {
	Kind  string
	Names []string
}

func (e *ConfigError) Error() string {
	noun := "game"
	if e.Kind == KindUnknownTrainer {
		noun = "trainer"
	}
	if len(e.Names) == 1 {
		return fmt.Sprintf("unknown %s %q", noun, e.Names[0])
	}
	return fmt.Sprintf("unknown %ss: %s", noun, strings.Join(e.Names, ", "))
}
