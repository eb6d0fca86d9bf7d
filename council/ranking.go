package council

import (
	"regexp"
	"strings"
)

// rankingSentinel introduces the machine-parseable section of a round-2
// response. It is part of the prompt contract; see PromptVersion.
const rankingSentinel = "FINAL RANKING:"

var (
	labelPattern    = regexp.MustCompile(`Response [A-Z]`)
	numberedPattern = regexp.MustCompile(`\d+\.\s*Response [A-Z]`)
)

// labelBook is the request-scoped bijection between backend ids and the
// opaque labels shown to rankers. Labels are assigned in round-1 arrival
// order, not configuration order, so arrival timing never becomes a ranking
// signal. The book must never outlive its request or leak outside the
// round-2 prompt.
type labelBook struct {
	byBackend map[string]string
	byLabel   map[string]string
	ordered   []string
}

// newLabelBook assigns "Response A", "Response B", ... to the answers in the
// order given (arrival order of round 1).
func newLabelBook(answers []ModelAnswer) *labelBook {
	book := &labelBook{
		byBackend: make(map[string]string, len(answers)),
		byLabel:   make(map[string]string, len(answers)),
	}
	for i, a := range answers {
		label := "Response " + string(rune('A'+i))
		book.byBackend[a.BackendID] = label
		book.byLabel[label] = a.BackendID
		book.ordered = append(book.ordered, label)
	}
	return book
}

// label returns the anonymized label for a backend.
func (b *labelBook) label(backendID string) string { return b.byBackend[backendID] }

// backend returns the backend id behind a label.
func (b *labelBook) backend(label string) string { return b.byLabel[label] }

// labels returns all labels in assignment order.
func (b *labelBook) labels() []string { return b.ordered }

// parseRanking extracts the ordered label list from a ranker's free-form
// output. The sentinel must be present; everything before it is critique and
// is ignored. A numbered list ("1. Response A") is preferred; without it any
// bare label occurrences after the sentinel are taken in order of
// appearance. Duplicates are kept. A missing or malformed section yields nil
// rather than an error: that backend simply contributes no ranking signal.
func parseRanking(text string) []string {
	_, section, found := strings.Cut(text, rankingSentinel)
	if !found {
		return nil
	}

	if numbered := numberedPattern.FindAllString(section, -1); len(numbered) > 0 {
		labels := make([]string, 0, len(numbered))
		for _, m := range numbered {
			labels = append(labels, labelPattern.FindString(m))
		}
		return labels
	}

	return labelPattern.FindAllString(section, -1)
}
