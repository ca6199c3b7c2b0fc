// Package markov implements a fixed-order word-level Markov chain.
package markov

import (
	"math/rand/v2"
	"strings"
)

// Placeholder is returned by Generate when the chain has not been trained.
const Placeholder = "..."

// DefaultOrder is the n-gram length used when none is configured.
const DefaultOrder = 2

// NGram is an ordered window of tokens used as a transition key.
type NGram []string

func (g NGram) key() string {
	// Tokens come from strings.Fields and never contain spaces.
	return strings.Join(g, " ")
}

// Chain maps n-grams to the tokens observed to follow them. Successor lists
// keep duplicates so frequent continuations are picked more often.
type Chain struct {
	order int
	rng   *rand.Rand

	// keys preserves insertion order so a seeded source is reproducible.
	keys  []NGram
	table map[string][]string
}

// Option configures a Chain.
type Option func(*Chain)

// WithRand sets the random source used for generation.
func WithRand(rng *rand.Rand) Option {
	return func(c *Chain) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// New returns an empty chain. Orders below one are raised to one.
func New(order int, opts ...Option) *Chain {
	if order < 1 {
		order = 1
	}
	c := &Chain{
		order: order,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		table: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Order returns the n-gram length.
func (c *Chain) Order() int {
	return c.order
}

// Len returns the number of distinct n-grams in the table.
func (c *Chain) Len() int {
	return len(c.keys)
}

// Successors returns a copy of the tokens recorded after gram.
func (c *Chain) Successors(gram NGram) []string {
	next, ok := c.table[gram.key()]
	if !ok || len(gram) != c.order {
		return nil
	}
	return append([]string(nil), next...)
}

// Train splits text on whitespace and records every transition. Calls
// accumulate; text with no more tokens than the order is ignored.
func (c *Chain) Train(text string) {
	tokens := strings.Fields(text)
	if len(tokens) <= c.order {
		return
	}
	for i := 0; i+c.order < len(tokens); i++ {
		gram := NGram(tokens[i : i+c.order])
		k := gram.key()
		if _, ok := c.table[k]; !ok {
			c.keys = append(c.keys, append(NGram(nil), gram...))
		}
		c.table[k] = append(c.table[k], tokens[i+c.order])
	}
}

// Generate walks the chain from seed and returns length words joined by
// spaces. A nil or unknown seed starts from a random n-gram; a dead end jumps
// to a fresh random n-gram. An untrained chain yields Placeholder.
func (c *Chain) Generate(seed NGram, length int) string {
	if len(c.keys) == 0 {
		return Placeholder
	}
	if len(seed) != c.order {
		seed = nil
	} else if _, ok := c.table[seed.key()]; !ok {
		seed = nil
	}
	if seed == nil {
		seed = c.randomKey()
	}

	words := append(make([]string, 0, max(length, c.order)), seed...)
	for i := 0; i < length-c.order; i++ {
		tail := NGram(words[len(words)-c.order:])
		next, ok := c.table[tail.key()]
		if !ok {
			next = c.table[c.randomKey().key()]
		}
		words = append(words, next[c.rng.IntN(len(next))])
	}
	return strings.Join(words, " ")
}

func (c *Chain) randomKey() NGram {
	return c.keys[c.rng.IntN(len(c.keys))]
}
