// Package opscouncil provides a high-level façade over the intent engine,
// the consensus council and the router, enabling rapid construction of a
// port-operations answering bot. Most applications interact with this
// package by:
//  1. Registering backend clients in a backend.Registry
//  2. Creating a Bot via New() (optionally supplying a store and knowledge bases)
//  3. Feeding it inbound messages through Chat()
//
// The façade assembles the per-request context bundle (metrics summary,
// recent exchanges, knowledge excerpts) and delegates dispatch to
// router.Router. All defaults are safe for local development and testing;
// production deployments typically supply a SQLite store and a structured
// logger.
package opscouncil

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hupe1980/opscouncil/backend"
	"github.com/hupe1980/opscouncil/council"
	"github.com/hupe1980/opscouncil/handlers"
	"github.com/hupe1980/opscouncil/intent"
	"github.com/hupe1980/opscouncil/knowledge"
	"github.com/hupe1980/opscouncil/logging"
	"github.com/hupe1980/opscouncil/router"
	"github.com/hupe1980/opscouncil/store"
)

// ContextStore is the slice of the data store the façade uses to assemble
// context bundles and audit handled requests. *store.Store satisfies it.
type ContextStore interface {
	MetricsSummary(ctx context.Context, start, end time.Time, maxRows int) (json.RawMessage, error)
	RecentExchanges(ctx context.Context, chatID string, limit int) ([]store.Exchange, error)
	LogQuery(ctx context.Context, record store.QueryRecord) error
}

// Options configures the Bot.
type Options struct {
	// Rules overrides the default intent rule list.
	Rules []intent.Rule

	// Metrics backs the structured data handlers; Context backs bundle
	// assembly and the audit log. Both default to nil (handlers fall back,
	// bundles stay empty) and both are satisfied by *store.Store.
	Metrics handlers.Metrics
	Context ContextStore

	// Knowledge bases searched (in order) for grounding excerpts.
	Knowledge []*knowledge.Base

	// Status serves container status lookups.
	Status handlers.StatusClient

	// ManagerBackend designates the backend answering manager questions.
	ManagerBackend string

	// Handlers overrides individual registry entries after construction.
	Handlers map[string]router.HandlerFunc

	// CallTimeout bounds each individual backend call.
	CallTimeout time.Duration

	// HistoryLimit is how many prior exchanges feed prompt context.
	HistoryLimit int

	// MetricsYearsBack controls the default metrics window: January 1st of
	// (current year - MetricsYearsBack) through today.
	MetricsYearsBack int

	// MetricsMaxRows caps the rows feeding one metrics summary.
	MetricsMaxRows int

	// KnowledgeLimit caps the excerpts retrieved per knowledge base.
	KnowledgeLimit int

	// Now injects the clock, for tests.
	Now func() time.Time

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Bot is the high-level façade aggregating intent resolution, the consensus
// council and command dispatch.
type Bot struct {
	router    *router.Router
	context   ContextStore
	knowledge []*knowledge.Base

	historyLimit     int
	metricsYearsBack int
	metricsMaxRows   int
	knowledgeLimit   int

	now    func() time.Time
	logger logging.Logger
}

// New creates a Bot over the given backend registry. backends is the council
// fan-out set in configuration order and aggregator the round-3 synthesizer.
func New(registry *backend.Registry, backends []string, aggregator string, optFns ...func(o *Options)) *Bot {
	opts := Options{
		CallTimeout:      council.DefaultCallTimeout,
		HistoryLimit:     3,
		MetricsYearsBack: 1,
		MetricsMaxRows:   2000,
		KnowledgeLimit:   knowledge.DefaultLimit,
		Now:              time.Now,
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	intents := intent.NewEngine(func(o *intent.Options) {
		if opts.Rules != nil {
			o.Rules = opts.Rules
		}
		o.Now = opts.Now
		o.Logger = opts.Logger
	})

	consensus := council.NewEngine(registry, func(o *council.Options) {
		o.CallTimeout = opts.CallTimeout
		o.Logger = opts.Logger
	})

	registryHandlers := handlers.Registry(opts.Metrics, func(o *handlers.Options) {
		o.Status = opts.Status
		o.Consensus = consensus
		o.Backends = backends
		o.Aggregator = aggregator
		o.ManagerGateway = registry
		o.ManagerBackend = opts.ManagerBackend
		o.Logger = opts.Logger
	})
	for name, handler := range opts.Handlers {
		registryHandlers[name] = handler
	}

	dispatch := router.New(intents, consensus, backends, aggregator, func(o *router.Options) {
		o.Handlers = registryHandlers
		o.Logger = opts.Logger
	})

	return &Bot{
		router:           dispatch,
		context:          opts.Context,
		knowledge:        opts.Knowledge,
		historyLimit:     opts.HistoryLimit,
		metricsYearsBack: opts.MetricsYearsBack,
		metricsMaxRows:   opts.MetricsMaxRows,
		knowledgeLimit:   opts.KnowledgeLimit,
		now:              opts.Now,
		logger:           opts.Logger,
	}
}

// Chat handles one inbound message for one chat: it assembles the context
// bundle, dispatches through the router and audits the exchange. The
// returned outcome always carries user-facing text unless the router
// reports a configuration error.
func (b *Bot) Chat(ctx context.Context, chatID, text string) (router.Outcome, error) {
	bundle := b.assembleBundle(ctx, chatID, text)
	out, err := b.router.Handle(ctx, text, bundle)
	if err != nil {
		return router.Outcome{}, err
	}
	b.audit(ctx, chatID, text, out)
	return out, nil
}

func (b *Bot) assembleBundle(ctx context.Context, chatID, text string) council.ContextBundle {
	var bundle council.ContextBundle

	if b.context != nil {
		end := b.now()
		start := time.Date(end.Year()-b.metricsYearsBack, time.January, 1, 0, 0, 0, 0, time.UTC)
		metrics, err := b.context.MetricsSummary(ctx, start, end, b.metricsMaxRows)
		if err != nil {
			b.logger.Warn("metrics summary unavailable", "error", err.Error())
		} else {
			bundle.Metrics = metrics
		}

		exchanges, err := b.context.RecentExchanges(ctx, chatID, b.historyLimit)
		if err != nil {
			b.logger.Warn("conversation history unavailable", "chat_id", chatID, "error", err.Error())
		}
		for _, ex := range exchanges {
			bundle.History = append(bundle.History, council.Turn{
				UserText:     ex.UserText,
				ResponseText: ex.ResponseText,
			})
		}
	}

	bundle.Knowledge = knowledge.Merge(text, b.knowledgeLimit, b.knowledge...)
	return bundle
}

// audit is best-effort: a failed log write never affects the answer.
func (b *Bot) audit(ctx context.Context, chatID, text string, out router.Outcome) {
	if b.context == nil {
		return
	}
	err := b.context.LogQuery(ctx, store.QueryRecord{
		ChatID:       chatID,
		UserText:     text,
		Command:      out.Command,
		ResponseText: out.Text,
		CreatedAt:    b.now(),
	})
	if err != nil {
		b.logger.Warn("query audit failed", "chat_id", chatID, "error", err.Error())
	}
}
