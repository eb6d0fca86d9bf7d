package council

import "encoding/json"

// Turn is one prior exchange supplied for conversational context.
type Turn struct {
	UserText     string `json:"user_text"`
	ResponseText string `json:"response_text"`
}

// Excerpt is one retrieved knowledge snippet supplied for grounding.
type Excerpt struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// ContextBundle carries the opaque contextual payloads assembled by the
// caller: structured metrics, recent conversation turns and retrieved
// knowledge excerpts. The engine serializes them into prompts but never
// interprets them.
type ContextBundle struct {
	Metrics   json.RawMessage
	History   []Turn
	Knowledge []Excerpt
}

// Provenance tags which stage of the fallback ladder produced a FinalAnswer.
type Provenance string

const (
	// ProvenanceSynthesized means the aggregator produced the answer in round 3.
	ProvenanceSynthesized Provenance = "synthesized"
	// ProvenanceBestRankedFallback means the aggregator failed and the answer
	// is the round-1 text of the first configured backend that succeeded.
	ProvenanceBestRankedFallback Provenance = "best-ranked-fallback"
	// ProvenanceSingleBackend means only one backend answered in round 1 and
	// rounds 2-3 were skipped.
	ProvenanceSingleBackend Provenance = "single-backend"
	// ProvenanceNoneAvailable means no backend returned a usable answer.
	ProvenanceNoneAvailable Provenance = "none-available"
)

// FinalAnswer is the terminal artifact of one Answer call.
type FinalAnswer struct {
	Text       string
	Provenance Provenance
}

// ModelAnswer is one backend's round-1 answer. Ephemeral: it lives only for
// the duration of a single request.
type ModelAnswer struct {
	BackendID string
	Text      string
}

// Ranking is one backend's parsed round-2 output. Labels is best-to-worst
// and may be a strict subset of all assigned labels; duplicates are kept as
// emitted. Raw preserves the full critique text for the synthesis prompt.
type Ranking struct {
	BackendID string
	Labels    []string
	Raw       string
}
