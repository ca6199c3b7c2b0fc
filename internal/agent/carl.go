// Package agent provides Carl's reply engine.
package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/easeaico/carl-bot/internal/config"
	"github.com/easeaico/carl-bot/internal/emotion"
	"github.com/easeaico/carl-bot/internal/markov"
	"github.com/easeaico/carl-bot/internal/rules"
	"github.com/easeaico/carl-bot/internal/storage"
	"github.com/easeaico/carl-bot/internal/text"
	"github.com/easeaico/carl-bot/internal/types"
)

// Carl answers one message at a time from the rule table, falling back to
// Markov-generated text. It is not safe for concurrent use.
type Carl struct {
	normalizer  *text.Normalizer
	mood        *emotion.Tracker
	rules       *rules.Table
	chain       *markov.Chain
	store       storage.HistoryStore
	logger      *zap.Logger
	replyLength int
	greeting    string
	farewell    string

	history []string
}

type options struct {
	rng   *rand.Rand
	clock func() time.Time
}

// Option configures Carl.
type Option func(*options)

// WithRand seeds the rule and Markov random choices from rng.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// WithClock sets the clock used for time replies.
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// NewCarl trains the chain on corpus, compiles the persona rules and loads
// the saved transcript. An unreadable transcript starts an empty one.
func NewCarl(ctx context.Context, cfg *config.Config, corpus string, store storage.HistoryStore, logger *zap.Logger, opts ...Option) (*Carl, error) {
	if store == nil {
		return nil, fmt.Errorf("history store is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	compiled, err := rules.Compile(cfg.Persona.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}
	table := rules.New(compiled, rules.WithRand(o.rng), rules.WithClock(o.clock))
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule table: %w", err)
	}

	chain := markov.New(cfg.MarkovOrder, markov.WithRand(o.rng))
	chain.Train(corpus)
	if chain.Len() == 0 {
		logger.Warn("markov corpus too short, fallback replies will be placeholders",
			zap.Int("order", chain.Order()))
	}

	c := &Carl{
		normalizer:  text.NewNormalizer(cfg.Persona.Synonyms),
		mood:        emotion.NewTracker(cfg.Persona.Positive, cfg.Persona.Negative),
		rules:       table,
		chain:       chain,
		store:       store,
		logger:      logger,
		replyLength: cfg.ReplyLength,
		greeting:    cfg.Persona.Greeting,
		farewell:    cfg.Persona.Farewell,
	}

	history, err := store.Load(ctx)
	if err != nil {
		logger.Warn("failed to load history, starting fresh", zap.Error(err))
		history = nil
	}
	c.history = append([]string{}, history...)
	logger.Debug("carl ready",
		zap.Int("rules", table.Len()),
		zap.Int("ngrams", chain.Len()),
		zap.Int("history", len(c.history)))
	return c, nil
}

// Reply produces Carl's answer to message and records the exchange.
func (c *Carl) Reply(ctx context.Context, message string) string {
	normalized := c.normalizer.Normalize(message)
	mood := c.mood.Update(normalized)

	if match, ok := c.rules.Dispatch(normalized); ok {
		c.logger.Debug("rule matched",
			zap.String("rule", match.Rule),
			zap.Int("mood", mood))
		c.record(ctx, normalized, match.Text)
		return match.Text
	}

	seed := markov.NGram(text.FirstTokens(normalized, c.chain.Order()))
	reply := c.chain.Generate(seed, c.replyLength) + c.mood.Suffix()
	c.logger.Debug("markov fallback",
		zap.Strings("seed", seed),
		zap.Int("mood", mood))
	c.record(ctx, normalized, reply)
	return reply
}

func (c *Carl) record(ctx context.Context, message, reply string) {
	c.history = append(c.history,
		types.HistoryLine(types.SpeakerUser, message),
		types.HistoryLine(types.SpeakerBot, reply),
	)
	if err := c.store.Save(ctx, c.history); err != nil {
		c.logger.Warn("failed to save history", zap.Error(err))
	}
}

// History returns a copy of the transcript.
func (c *Carl) History() []string {
	return append([]string{}, c.history...)
}

// Mood returns the current mood score.
func (c *Carl) Mood() int {
	return c.mood.Mood()
}

// Generate returns a Markov sentence of length words without touching mood or history.
func (c *Carl) Generate(seed []string, length int) string {
	return c.chain.Generate(markov.NGram(seed), length)
}

// Greeting is the line Carl opens a session with.
func (c *Carl) Greeting() string {
	return c.greeting
}

// Farewell is the line Carl closes a session with.
func (c *Carl) Farewell() string {
	return c.farewell
}
