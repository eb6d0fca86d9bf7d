package council

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRanking_NumberedList(t *testing.T) {
	text := `Response A provides good detail on X but misses Y.
Response B is accurate but lacks depth.
Response C offers the most comprehensive answer.

FINAL RANKING:
1. Response C
2. Response A
3. Response B`

	assert.Equal(t, []string{"Response C", "Response A", "Response B"}, parseRanking(text))
}

func TestParseRanking_BareLabelsFallback(t *testing.T) {
	text := `Some critique text.

FINAL RANKING:
I think Response B is best, then Response A.`

	assert.Equal(t, []string{"Response B", "Response A"}, parseRanking(text))
}

func TestParseRanking_MissingSentinelYieldsNoSignal(t *testing.T) {
	text := "Response A is better than Response B, overall."
	assert.Nil(t, parseRanking(text))
}

func TestParseRanking_MalformedSectionYieldsNoSignal(t *testing.T) {
	text := "FINAL RANKING:\nnothing useful here"
	assert.Empty(t, parseRanking(text))
}

func TestParseRanking_SubsetAndDuplicatesKept(t *testing.T) {
	// A ranker may rank only some labels and may repeat itself; the parser
	// does not dedupe.
	text := `FINAL RANKING:
1. Response B
2. Response B`

	assert.Equal(t, []string{"Response B", "Response B"}, parseRanking(text))
}

func TestParseRanking_IgnoresLabelsBeforeSentinel(t *testing.T) {
	text := `Response A was weak. Response C was strong.

FINAL RANKING:
1. Response C
2. Response A`

	assert.Equal(t, []string{"Response C", "Response A"}, parseRanking(text))
}

func TestLabelBook_ArrivalOrderBijection(t *testing.T) {
	answers := []ModelAnswer{
		{BackendID: "gemini", Text: "first to arrive"},
		{BackendID: "gpt", Text: "second"},
		{BackendID: "claude", Text: "third"},
	}
	book := newLabelBook(answers)

	require.Equal(t, []string{"Response A", "Response B", "Response C"}, book.labels())
	assert.Equal(t, "Response A", book.label("gemini"))
	assert.Equal(t, "Response C", book.label("claude"))
	assert.Equal(t, "gpt", book.backend("Response B"))
}
