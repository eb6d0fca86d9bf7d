package router

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/opscouncil/council"
	"github.com/hupe1980/opscouncil/intent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	cmd     intent.Command
	matched bool
}

func (s stubResolver) Resolve(string) (intent.Command, bool) { return s.cmd, s.matched }

type stubConsensus struct {
	answer    council.FinalAnswer
	questions []string
	backends  []string
}

func (s *stubConsensus) Answer(_ context.Context, question string, _ council.ContextBundle, backends []string, _ string) council.FinalAnswer {
	s.questions = append(s.questions, question)
	s.backends = backends
	return s.answer
}

func TestHandle_StructuredCommandDispatchesToHandler(t *testing.T) {
	cmd := intent.Command{
		Name:   intent.CmdContainersMonthly,
		Params: map[string]any{intent.ParamMonth: 2, intent.ParamYear: 2025},
	}
	consensus := &stubConsensus{}

	var seen Request
	r := New(stubResolver{cmd: cmd, matched: true}, consensus, []string{"gpt"}, "gpt",
		func(o *Options) {
			o.Handlers = map[string]HandlerFunc{
				intent.CmdContainersMonthly: func(_ context.Context, req Request) (string, error) {
					seen = req
					return "בחודש 02/2025 נפרקו 3405 מכולות.", nil
				},
			}
		})

	out, err := r.Handle(context.Background(), "כמה מכולות בפברואר 25", council.ContextBundle{})
	require.NoError(t, err)
	assert.Equal(t, "בחודש 02/2025 נפרקו 3405 מכולות.", out.Text)
	assert.Equal(t, intent.CmdContainersMonthly, out.Command)
	assert.Empty(t, out.Provenance)
	assert.NotEmpty(t, out.RequestID)
	assert.Equal(t, seen.ID, out.RequestID)
	assert.Equal(t, 2, seen.Command.Params[intent.ParamMonth])
	assert.Empty(t, consensus.questions, "structured commands must not reach the council")
}

func TestHandle_MissingHandlerIsConfigurationError(t *testing.T) {
	cmd := intent.Command{Name: intent.CmdContainersDaily}
	r := New(stubResolver{cmd: cmd, matched: true}, &stubConsensus{}, nil, "")

	_, err := r.Handle(context.Background(), "כמה מכולות נפרקו היום", council.ContextBundle{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), intent.CmdContainersDaily)
}

func TestHandle_UnstructuredGoesToCouncil(t *testing.T) {
	consensus := &stubConsensus{answer: council.FinalAnswer{
		Text: "תשובת המועצה", Provenance: council.ProvenanceSynthesized,
	}}
	r := New(stubResolver{}, consensus, []string{"gpt", "claude"}, "gpt")

	out, err := r.Handle(context.Background(), "ספר לי משהו", council.ContextBundle{})
	require.NoError(t, err)
	assert.Equal(t, "תשובת המועצה", out.Text)
	assert.Empty(t, out.Command)
	assert.Equal(t, council.ProvenanceSynthesized, out.Provenance)
	assert.Equal(t, []string{"ספר לי משהו"}, consensus.questions)
	assert.Equal(t, []string{"gpt", "claude"}, consensus.backends)
}

func TestHandle_AnalysisCommandGoesToCouncil(t *testing.T) {
	cmd := intent.Command{Name: intent.CmdAnalysis, Params: map[string]any{}}
	consensus := &stubConsensus{answer: council.FinalAnswer{
		Text: "ניתוח", Provenance: council.ProvenanceSingleBackend,
	}}
	r := New(stubResolver{cmd: cmd, matched: true}, consensus, []string{"gpt"}, "gpt")

	out, err := r.Handle(context.Background(), "נתח את הנתונים", council.ContextBundle{})
	require.NoError(t, err)
	assert.Equal(t, intent.CmdAnalysis, out.Command)
	assert.Equal(t, council.ProvenanceSingleBackend, out.Provenance)
	assert.Equal(t, []string{"נתח את הנתונים"}, consensus.questions)
}

func TestHandle_CouncilQuestionCommandGoesToCouncil(t *testing.T) {
	cmd := intent.Command{Name: intent.CmdCouncilQuestion, Params: map[string]any{}}
	consensus := &stubConsensus{answer: council.FinalAnswer{
		Text: "תשובה", Provenance: council.ProvenanceSynthesized,
	}}
	r := New(stubResolver{cmd: cmd, matched: true}, consensus, []string{"gpt"}, "gpt")

	out, err := r.Handle(context.Background(), "שאלה על מכולות", council.ContextBundle{})
	require.NoError(t, err)
	assert.Equal(t, intent.CmdCouncilQuestion, out.Command)
	assert.Len(t, consensus.questions, 1)
}

func TestHandle_NoBackendsAvailableYieldsFallback(t *testing.T) {
	consensus := &stubConsensus{answer: council.FinalAnswer{
		Provenance: council.ProvenanceNoneAvailable,
	}}
	r := New(stubResolver{}, consensus, []string{"gpt"}, "gpt")

	out, err := r.Handle(context.Background(), "שאלה", council.ContextBundle{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "לא הצלחתי להבין")
	assert.Equal(t, council.ProvenanceNoneAvailable, out.Provenance)
}

func TestHandle_HandlerErrorYieldsFallbackNotError(t *testing.T) {
	cmd := intent.Command{Name: intent.CmdContainersDaily, Params: map[string]any{}}
	r := New(stubResolver{cmd: cmd, matched: true}, &stubConsensus{}, nil, "",
		func(o *Options) {
			o.Handlers = map[string]HandlerFunc{
				intent.CmdContainersDaily: func(context.Context, Request) (string, error) {
					return "", errors.New("db down")
				},
			}
		})

	out, err := r.Handle(context.Background(), "כמה מכולות היום", council.ContextBundle{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "לא הצלחתי להבין")
	assert.Equal(t, intent.CmdContainersDaily, out.Command)
}

func TestHandle_RequestIDsAreUnique(t *testing.T) {
	consensus := &stubConsensus{answer: council.FinalAnswer{
		Text: "x", Provenance: council.ProvenanceSynthesized,
	}}
	r := New(stubResolver{}, consensus, []string{"gpt"}, "gpt")

	first, err := r.Handle(context.Background(), "א", council.ContextBundle{})
	require.NoError(t, err)
	second, err := r.Handle(context.Background(), "ב", council.ContextBundle{})
	require.NoError(t, err)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}
