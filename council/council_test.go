package council

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted is the canned behavior of one fake backend across the three
// prompt shapes.
type scripted struct {
	answer    string
	ranking   string
	synthesis string
	err       error
	delay     time.Duration
}

type submission struct {
	backend string
	kind    string
	prompt  string
}

// fakeGateway records every submission and answers from scripts. The prompt
// shape identifies the round, mirroring how the engine builds them.
type fakeGateway struct {
	mu       sync.Mutex
	backends map[string]*scripted
	subs     []submission
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{backends: make(map[string]*scripted)}
}

func (g *fakeGateway) script(id string, s *scripted) { g.backends[id] = s }

func classifyPrompt(prompt string) string {
	if strings.Contains(prompt, "You are the Chairman") {
		return "synthesis"
	}
	if strings.Contains(prompt, "(anonymized)") {
		return "ranking"
	}
	return "answer"
}

func (g *fakeGateway) Submit(ctx context.Context, backendID, prompt string) (string, error) {
	kind := classifyPrompt(prompt)
	g.mu.Lock()
	g.subs = append(g.subs, submission{backend: backendID, kind: kind, prompt: prompt})
	s := g.backends[backendID]
	g.mu.Unlock()

	if s == nil {
		return "", fmt.Errorf("unknown backend %q", backendID)
	}
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	switch kind {
	case "ranking":
		return s.ranking, nil
	case "synthesis":
		return s.synthesis, nil
	default:
		return s.answer, nil
	}
}

func (g *fakeGateway) count(kind string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, s := range g.subs {
		if s.kind == kind {
			n++
		}
	}
	return n
}

func (g *fakeGateway) promptsOf(kind string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var prompts []string
	for _, s := range g.subs {
		if s.kind == kind {
			prompts = append(prompts, s.prompt)
		}
	}
	return prompts
}

func testQuestionBundle() ContextBundle {
	return ContextBundle{Metrics: json.RawMessage(`{"containers":{"total":42}}`)}
}

func TestAnswer_SynthesizedWithOneTimeout(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{
		answer:    "נפרקו 42 מכולות",
		ranking:   "FINAL RANKING:\n1. Response A\n2. Response B",
		synthesis: "ignored",
	})
	g.script("claude", &scripted{
		answer:  "כ-42 מכולות",
		ranking: "FINAL RANKING:\n1. Response B\n2. Response A",
	})
	g.script("gemini", &scripted{delay: 500 * time.Millisecond})
	g.script("chairman", &scripted{synthesis: "לסיכום: נפרקו 42 מכולות."})

	e := NewEngine(g, func(o *Options) { o.CallTimeout = 50 * time.Millisecond })
	got := e.Answer(context.Background(), "כמה מכולות?", testQuestionBundle(),
		[]string{"gpt", "claude", "gemini"}, "chairman")

	assert.Equal(t, ProvenanceSynthesized, got.Provenance)
	assert.Equal(t, "לסיכום: נפרקו 42 מכולות.", got.Text)

	// The timed-out backend is still queried in round 2: drop-on-failure is
	// per round, not sticky.
	assert.Equal(t, 3, g.count("answer"))
	assert.Equal(t, 3, g.count("ranking"))
	assert.Equal(t, 1, g.count("synthesis"))
}

func TestAnswer_SingleBackendShortCircuit(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{answer: "התשובה היחידה"})
	g.script("claude", &scripted{err: errors.New("boom")})
	g.script("gemini", &scripted{err: errors.New("boom")})
	g.script("chairman", &scripted{synthesis: "must not be called"})

	e := NewEngine(g)
	got := e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"gpt", "claude", "gemini"}, "chairman")

	assert.Equal(t, ProvenanceSingleBackend, got.Provenance)
	assert.Equal(t, "התשובה היחידה", got.Text)
	assert.Equal(t, 3, g.count("answer"))
	assert.Zero(t, g.count("ranking"), "round 2 must be skipped")
	assert.Zero(t, g.count("synthesis"), "round 3 must be skipped")
}

func TestAnswer_NoneAvailable(t *testing.T) {
	g := newFakeGateway()
	for _, id := range []string{"gpt", "claude", "gemini"} {
		g.script(id, &scripted{err: errors.New("down")})
	}

	e := NewEngine(g)
	got := e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"gpt", "claude", "gemini"}, "chairman")

	assert.Equal(t, ProvenanceNoneAvailable, got.Provenance)
	assert.Empty(t, got.Text)
	assert.Equal(t, 3, g.count("answer"))
	assert.Zero(t, g.count("ranking"))
	assert.Zero(t, g.count("synthesis"))
}

func TestAnswer_BlankAnswersAreDropped(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{answer: "   \n"})
	g.script("claude", &scripted{answer: ""})

	e := NewEngine(g)
	got := e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"gpt", "claude"}, "chairman")

	assert.Equal(t, ProvenanceNoneAvailable, got.Provenance)
}

func TestAnswer_AggregatorFailureFallsBackInConfigOrder(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{err: errors.New("down")})
	g.script("claude", &scripted{answer: "תשובת קלוד", ranking: "no sentinel"})
	g.script("gemini", &scripted{answer: "תשובת ג'מיני", ranking: "no sentinel"})
	g.script("chairman", &scripted{err: errors.New("down")})

	e := NewEngine(g)
	got := e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"gpt", "claude", "gemini"}, "chairman")

	assert.Equal(t, ProvenanceBestRankedFallback, got.Provenance)
	// gpt failed round 1; claude is the first configured backend that
	// succeeded, regardless of arrival order.
	assert.Equal(t, "תשובת קלוד", got.Text)
}

func TestAnswer_AggregatorEmptyTextFallsBack(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{answer: "תשובה א", ranking: "x"})
	g.script("claude", &scripted{answer: "תשובה ב", ranking: "x"})
	g.script("chairman", &scripted{synthesis: "  \n "})

	e := NewEngine(g)
	got := e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"gpt", "claude"}, "chairman")

	assert.Equal(t, ProvenanceBestRankedFallback, got.Provenance)
	assert.Equal(t, "תשובה א", got.Text)
}

func TestAnswer_RankingPromptsNeverNameBackends(t *testing.T) {
	g := newFakeGateway()
	g.script("openai/gpt-4o", &scripted{answer: "a", ranking: "x"})
	g.script("anthropic/claude-3.5", &scripted{answer: "b", ranking: "x"})
	g.script("chairman", &scripted{synthesis: "final"})

	e := NewEngine(g)
	_ = e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"openai/gpt-4o", "anthropic/claude-3.5"}, "chairman")

	prompts := g.promptsOf("ranking")
	require.NotEmpty(t, prompts)
	for _, p := range prompts {
		assert.NotContains(t, p, "openai/gpt-4o")
		assert.NotContains(t, p, "anthropic/claude-3.5")
	}
}

func TestAnswer_LabelsFollowArrivalOrder(t *testing.T) {
	g := newFakeGateway()
	g.script("slow", &scripted{answer: "slow answer", delay: 60 * time.Millisecond, ranking: "x"})
	g.script("fast", &scripted{answer: "fast answer", ranking: "x"})
	g.script("chairman", &scripted{synthesis: "final"})

	e := NewEngine(g, func(o *Options) { o.CallTimeout = time.Second })
	// "slow" is first in configuration order but must still get label B.
	_ = e.Answer(context.Background(), "q", testQuestionBundle(),
		[]string{"slow", "fast"}, "chairman")

	prompts := g.promptsOf("ranking")
	require.NotEmpty(t, prompts)
	assert.Contains(t, prompts[0], "Response A:\nfast answer")
	assert.Contains(t, prompts[0], "Response B:\nslow answer")
}

func TestAnswer_CancelledContext(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{answer: "a"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewEngine(g)
	got := e.Answer(ctx, "שאלה", testQuestionBundle(), []string{"gpt"}, "chairman")

	assert.Equal(t, ProvenanceNoneAvailable, got.Provenance)
	assert.Zero(t, g.count("ranking"))
	assert.Zero(t, g.count("synthesis"))
}

func TestAnswer_SynthesisPromptCarriesRankings(t *testing.T) {
	g := newFakeGateway()
	g.script("gpt", &scripted{answer: "a", ranking: "FINAL RANKING:\n1. Response B\n2. Response A"})
	g.script("claude", &scripted{answer: "b", ranking: "FINAL RANKING:\n1. Response A\n2. Response B"})
	g.script("chairman", &scripted{synthesis: "final"})

	e := NewEngine(g)
	got := e.Answer(context.Background(), "שאלה", testQuestionBundle(),
		[]string{"gpt", "claude"}, "chairman")

	require.Equal(t, ProvenanceSynthesized, got.Provenance)
	prompts := g.promptsOf("synthesis")
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], "Model: gpt")
	assert.Contains(t, prompts[0], "Model: claude")
	assert.Contains(t, prompts[0], "FINAL RANKING:")
}
