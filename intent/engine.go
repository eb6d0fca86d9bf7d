package intent

import (
	"strings"
	"time"

	"github.com/hupe1980/opscouncil/logging"
)

// Options configures the intent Engine.
type Options struct {
	// Rules is the ordered pattern library. Defaults to DefaultRules().
	Rules []Rule
	// Now supplies the resolution clock. Defaults to time.Now. Tests inject
	// a fixed clock so resolution is a pure function of the input text.
	Now func() time.Time
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// Engine evaluates the pattern library against inbound text. It is read-only
// after construction and requires no locking; a single Engine may serve
// arbitrarily many concurrent Resolve calls.
type Engine struct {
	rules  []Rule
	now    func() time.Time
	logger logging.Logger
}

// NewEngine creates an intent Engine with optional overrides.
func NewEngine(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Rules:  DefaultRules(),
		Now:    time.Now,
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Engine{rules: opts.Rules, now: opts.Now, logger: opts.Logger}
}

// Resolve classifies text into a Command. The second return value is false
// when no rule matched; that is a valid outcome, not an error. Evaluation is
// strictly in list order and stops at the first rule whose matcher succeeds.
func (e *Engine) Resolve(text string) (Command, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Command{}, false
	}

	now := e.now()
	for _, rule := range e.rules {
		params, ok := rule.Match(trimmed, now)
		if !ok {
			continue
		}
		e.logger.Debug("intent rule matched", "command", rule.Command)
		return Command{Name: rule.Command, Params: params}, true
	}
	return Command{}, false
}
