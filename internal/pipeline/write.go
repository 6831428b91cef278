package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/dexlab/trainerdex-cli/internal/model"
)

// WriteJSON writes doc as two-space indented JSON with a trailing newline.
// HTML escaping is disabled so arrows and accented names survive verbatim.
func WriteJSON(doc any, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return eris.Wrapf(err, "pipeline: encode %s", path)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return eris.Wrapf(err, "pipeline: create output dir for %s", path)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return eris.Wrapf(err, "pipeline: write %s", path)
	}
	return nil
}

// ReadRosterIndex loads a stage-one output file.
func ReadRosterIndex(path string) (*model.RosterIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read roster %s", path)
	}
	var index model.RosterIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, eris.Wrapf(err, "pipeline: decode roster %s", path)
	}
	return &index, nil
}
