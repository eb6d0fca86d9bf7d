package council

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/opscouncil/backend"
	"github.com/hupe1980/opscouncil/logging"
)

// DefaultCallTimeout bounds every individual backend submission.
const DefaultCallTimeout = 120 * time.Second

// phase tracks the forward-only state machine of one Answer call. There are
// no retries: every transition carries partial results forward instead of
// discarding them.
type phase int

const (
	phaseStart phase = iota
	phaseRound1
	phaseRound2
	phaseRound3
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseStart:
		return "start"
	case phaseRound1:
		return "round1"
	case phaseRound2:
		return "round2"
	case phaseRound3:
		return "round3"
	case phaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Options configures the council Engine.
type Options struct {
	// CallTimeout bounds each individual backend call. A timeout is treated
	// identically to any other backend failure: drop, no retry.
	CallTimeout time.Duration
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Engine orchestrates the three-round consensus protocol over a
// backend.Gateway. It holds no per-request state and is safe for concurrent
// Answer calls.
type Engine struct {
	gateway backend.Gateway
	timeout time.Duration
	logger  logging.Logger
}

// NewEngine creates a council Engine over the given gateway.
func NewEngine(gateway backend.Gateway, optFns ...func(o *Options)) *Engine {
	opts := Options{
		CallTimeout: DefaultCallTimeout,
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{gateway: gateway, timeout: opts.CallTimeout, logger: opts.Logger}
}

// Answer runs the three-round protocol for one question. backends is the
// configured fan-out set in configuration order; aggregator names the single
// backend performing round-3 synthesis. Failures never surface as errors:
// the provenance tag records how far down the fallback ladder the answer
// came from. Cancelling ctx stops in-flight calls and prevents any further
// round from starting.
func (e *Engine) Answer(ctx context.Context, question string, bundle ContextBundle, backends []string, aggregator string) FinalAnswer {
	state := phaseStart
	answerPrompt := buildAnswerPrompt(question, bundle)

	// Round 1: independent answers.
	state = e.transition(state, phaseRound1)
	answers := e.fanOut(ctx, backends, answerPrompt, "round1")
	if len(answers) == 0 {
		e.transition(state, phaseDone)
		return FinalAnswer{Provenance: ProvenanceNoneAvailable}
	}
	if len(answers) == 1 {
		// Short-circuit: nothing to rank or synthesize.
		e.transition(state, phaseDone)
		return FinalAnswer{Text: answers[0].Text, Provenance: ProvenanceSingleBackend}
	}
	if ctx.Err() != nil {
		e.transition(state, phaseDone)
		return e.fallbackAnswer(backends, answers)
	}

	// Round 2: anonymized peer rankings. Labels follow round-1 arrival
	// order; the book never leaves this scope.
	state = e.transition(state, phaseRound2)
	book := newLabelBook(answers)
	rankingPrompt := buildRankingPrompt(question, answerPrompt, answers, book)
	rankings := e.collectRankings(ctx, backends, rankingPrompt)
	if ctx.Err() != nil {
		e.transition(state, phaseDone)
		return e.fallbackAnswer(backends, answers)
	}

	// Round 3: synthesis by the aggregator, de-anonymized.
	state = e.transition(state, phaseRound3)
	synthesisPrompt := buildSynthesisPrompt(question, answerPrompt, answers, rankings)
	final, err := e.submit(ctx, aggregator, synthesisPrompt)
	e.transition(state, phaseDone)
	if err != nil || strings.TrimSpace(final) == "" {
		e.logger.Warn("aggregator failed, falling back to best round-1 answer", "aggregator", aggregator)
		return e.fallbackAnswer(backends, answers)
	}
	return FinalAnswer{Text: strings.TrimSpace(final), Provenance: ProvenanceSynthesized}
}

func (e *Engine) transition(from, to phase) phase {
	e.logger.Debug("council phase transition", "from", from.String(), "to", to.String())
	return to
}

// submit issues one bounded backend call.
func (e *Engine) submit(ctx context.Context, backendID, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.gateway.Submit(callCtx, backendID, prompt)
}

// fanOut queries all backends concurrently with the same prompt and returns
// the usable answers in arrival order. Errors, timeouts and blank responses
// are dropped silently; the round merges only after every call settled.
func (e *Engine) fanOut(ctx context.Context, backends []string, prompt, round string) []ModelAnswer {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		answers []ModelAnswer
	)
	start := time.Now()
	for _, id := range backends {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			callStart := time.Now()
			text, err := e.submit(ctx, id, prompt)
			if err != nil || strings.TrimSpace(text) == "" {
				e.logger.Warn("backend dropped from round",
					"round", round, "backend", id, "error", errString(err), "duration", time.Since(callStart))
				return
			}
			mu.Lock()
			answers = append(answers, ModelAnswer{BackendID: id, Text: text})
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	e.logger.Info("council round settled",
		"round", round, "queried", len(backends), "succeeded", len(answers), "duration", time.Since(start))
	return answers
}

// collectRankings runs the round-2 fan-out and parses each ranker's output.
// Backends whose output has no parseable ranking section still contribute
// their raw critique to synthesis, just no ordering signal.
func (e *Engine) collectRankings(ctx context.Context, backends []string, prompt string) []Ranking {
	responses := e.fanOut(ctx, backends, prompt, "round2")
	rankings := make([]Ranking, 0, len(responses))
	for _, r := range responses {
		rankings = append(rankings, Ranking{
			BackendID: r.BackendID,
			Labels:    parseRanking(r.Text),
			Raw:       r.Text,
		})
	}
	return rankings
}

// fallbackAnswer returns the round-1 text of the first backend in
// configuration order among those that succeeded. Callers guarantee answers
// is non-empty.
func (e *Engine) fallbackAnswer(configured []string, answers []ModelAnswer) FinalAnswer {
	byBackend := make(map[string]string, len(answers))
	for _, a := range answers {
		byBackend[a.BackendID] = a.Text
	}
	for _, id := range configured {
		if text, ok := byBackend[id]; ok {
			return FinalAnswer{Text: text, Provenance: ProvenanceBestRankedFallback}
		}
	}
	// Unreachable unless answers came from outside the configured set.
	return FinalAnswer{Text: answers[0].Text, Provenance: ProvenanceBestRankedFallback}
}

func errString(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
