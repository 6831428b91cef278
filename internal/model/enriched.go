package model

import "github.com/dexlab/trainerdex-cli/internal/ordered"

// SourceMeta describes how a stage-two document was produced.
type SourceMeta struct {
	API         string `json:"api"`
	UserAgent   string `json:"user_agent"`
	GeneratedAt string `json:"generated_at"`
	Requests    int64  `json:"request_count"`
	Seed        string `json:"seed"`
}

// Failure reason codes for the stage-two ledger.
const (
	FailureNotFound = "not_found"
	FailureNetwork  = "network"
	FailureNoTables = "no_tables"
	FailureParse    = "parse"
)

// Failure records why a trainer could not be enriched. Failures accumulate
// alongside successes; one never displaces the other.
type Failure struct {
	Reason  string `json:"reason"`
	Message string `json:"message,omitempty"`
}

// TrainerRecord groups a trainer's enriched teams by the heading path they
// were found under. Paths are grouping keys, not stable identifiers: a page
// restructure changes them.
type TrainerRecord struct {
	paths []string
	teams map[string][]Team
}

// NewTrainerRecord creates an empty record.
func NewTrainerRecord() *TrainerRecord {
	return &TrainerRecord{teams: make(map[string][]Team)}
}

// Add appends a team under the given heading path. Multiple tables under
// one path are all retained in document order.
func (r *TrainerRecord) Add(path string, team Team) {
	if _, ok := r.teams[path]; !ok {
		r.paths = append(r.paths, path)
	}
	r.teams[path] = append(r.teams[path], team)
}

// Paths returns the heading paths in first-seen order.
func (r *TrainerRecord) Paths() []string {
	return r.paths
}

// Teams returns the teams recorded under a heading path.
func (r *TrainerRecord) Teams(path string) []Team {
	return r.teams[path]
}

// MarshalJSON writes paths in first-seen order.
func (r *TrainerRecord) MarshalJSON() ([]byte, error) {
	obj := ordered.New()
	for _, p := range r.paths {
		obj.Set(p, r.teams[p])
	}
	return obj.MarshalJSON()
}

// EnrichedIndex is the stage-two document: source metadata, the successes
// mapping and the failures ledger. For any run the two key sets partition
// the processed trainer set.
type EnrichedIndex struct {
	Source SourceMeta

	trainerNames []string
	trainers     map[string]*TrainerRecord
	failureNames []string
	failures     map[string]Failure
}

// NewEnrichedIndex creates an empty stage-two document.
func NewEnrichedIndex() *EnrichedIndex {
	return &EnrichedIndex{
		trainers: make(map[string]*TrainerRecord),
		failures: make(map[string]Failure),
	}
}

// AddTrainer records a successful enrichment.
func (x *EnrichedIndex) AddTrainer(name string, rec *TrainerRecord) {
	if _, ok := x.trainers[name]; !ok {
		x.trainerNames = append(x.trainerNames, name)
	}
	x.trainers[name] = rec
}

// AddFailure records a failed enrichment.
func (x *EnrichedIndex) AddFailure(name string, f Failure) {
	if _, ok := x.failures[name]; !ok {
		x.failureNames = append(x.failureNames, name)
	}
	x.failures[name] = f
}

// Trainers returns successful trainer names in insertion order.
func (x *EnrichedIndex) Trainers() []string {
	return x.trainerNames
}

// Failures returns failed trainer names in insertion order.
func (x *EnrichedIndex) Failures() []string {
	return x.failureNames
}

// Trainer returns the record for a successfully enriched trainer.
func (x *EnrichedIndex) Trainer(name string) (*TrainerRecord, bool) {
	r, ok := x.trainers[name]
	return r, ok
}

// Failure returns the ledger entry for a failed trainer.
func (x *EnrichedIndex) Failure(name string) (Failure, bool) {
	f, ok := x.failures[name]
	return f, ok
}

// MarshalJSON writes the document as {source, trainers, failures}. The
// failures object is always present, even when empty, so the partition
// property can be checked from the artifact alone.
func (x *EnrichedIndex) MarshalJSON() ([]byte, error) {
	trainers := ordered.New()
	for _, name := range x.trainerNames {
		trainers.Set(name, x.trainers[name])
	}
	failures := ordered.New()
	for _, name := range x.failureNames {
		failures.Set(name, x.failures[name])
	}
	obj := ordered.New()
	obj.Set("source", x.Source)
	obj.Set("trainers", trainers)
	obj.Set("failures", failures)
	return obj.MarshalJSON()
}
