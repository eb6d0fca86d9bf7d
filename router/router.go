// Package router connects intent resolution to command handlers and the
// consensus engine. It is transport-agnostic: callers hand it raw text plus
// an assembled context bundle and receive a final answer, never a transport
// object.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/opscouncil/council"
	"github.com/hupe1980/opscouncil/intent"
	"github.com/hupe1980/opscouncil/logging"
	"github.com/hupe1980/opscouncil/respond"
)

// Request is the per-message envelope passed to command handlers.
type Request struct {
	// ID is the uuid assigned to this handled message.
	ID string
	// Text is the raw inbound text.
	Text string
	// Command is the resolved command with its extracted parameters.
	Command intent.Command
	// Bundle is the contextual payload assembled by the caller.
	Bundle council.ContextBundle
}

// HandlerFunc executes one structured command and returns the user-facing
// answer text.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

// Resolver classifies raw text into a structured command.
type Resolver interface {
	Resolve(text string) (intent.Command, bool)
}

// Consensus answers free-form questions through the council protocol.
type Consensus interface {
	Answer(ctx context.Context, question string, bundle council.ContextBundle, backends []string, aggregator string) council.FinalAnswer
}

// Outcome is the result of handling one message.
type Outcome struct {
	// RequestID is the uuid assigned to the message.
	RequestID string
	// Text is the answer to send back to the user.
	Text string
	// Command is the matched command name, empty for unstructured input.
	Command string
	// Provenance is set only for answers produced by the consensus engine.
	Provenance council.Provenance
}

// Options configures a Router.
type Options struct {
	// Handlers maps command names to their handlers.
	Handlers map[string]HandlerFunc
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Router dispatches inbound messages. Structured commands go through the
// handler registry; analysis requests, domain-keyword fallbacks and
// unclassified text go to the consensus engine.
type Router struct {
	resolver   Resolver
	consensus  Consensus
	handlers   map[string]HandlerFunc
	backends   []string
	aggregator string
	logger     logging.Logger
}

// New creates a Router. backends and aggregator are forwarded verbatim to
// the consensus engine on every free-form question.
func New(resolver Resolver, consensus Consensus, backends []string, aggregator string, optFns ...func(o *Options)) *Router {
	opts := Options{
		Handlers: map[string]HandlerFunc{},
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Router{
		resolver:   resolver,
		consensus:  consensus,
		handlers:   opts.Handlers,
		backends:   backends,
		aggregator: aggregator,
		logger:     opts.Logger,
	}
}

// Handle classifies text and produces the answer. A missing handler for a
// resolved command is a configuration error; every other failure degrades to
// the Hebrew fallback message instead of surfacing.
func (r *Router) Handle(ctx context.Context, text string, bundle council.ContextBundle) (Outcome, error) {
	requestID := uuid.NewString()

	cmd, matched := r.resolver.Resolve(text)
	if matched {
		r.logger.Info("intent resolved", "request_id", requestID, "command", cmd.Name)
	} else {
		r.logger.Info("no intent matched, treating as free-form question", "request_id", requestID)
	}

	if !matched || cmd.Name == intent.CmdAnalysis || cmd.Name == intent.CmdCouncilQuestion {
		return r.askCouncil(ctx, requestID, text, cmd, matched, bundle), nil
	}

	handler, ok := r.handlers[cmd.Name]
	if !ok {
		return Outcome{}, fmt.Errorf("no handler registered for command %q", cmd.Name)
	}

	req := Request{ID: requestID, Text: text, Command: cmd, Bundle: bundle}
	answer, err := handler(ctx, req)
	if err != nil {
		r.logger.Warn("handler failed, using fallback response",
			"request_id", requestID, "command", cmd.Name, "error", err.Error())
		return Outcome{RequestID: requestID, Text: respond.Fallback(), Command: cmd.Name}, nil
	}
	if strings.TrimSpace(answer) == "" {
		answer = respond.Fallback()
	}
	return Outcome{RequestID: requestID, Text: answer, Command: cmd.Name}, nil
}

func (r *Router) askCouncil(ctx context.Context, requestID, text string, cmd intent.Command, matched bool, bundle council.ContextBundle) Outcome {
	final := r.consensus.Answer(ctx, text, bundle, r.backends, r.aggregator)
	r.logger.Info("consensus answer produced",
		"request_id", requestID, "provenance", string(final.Provenance))

	out := Outcome{RequestID: requestID, Text: final.Text, Provenance: final.Provenance}
	if matched {
		out.Command = cmd.Name
	}
	if final.Provenance == council.ProvenanceNoneAvailable || strings.TrimSpace(final.Text) == "" {
		out.Text = respond.Fallback()
	}
	return out
}
