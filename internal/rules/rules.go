// Package rules holds the ordered pattern table Carl answers from before
// falling back to generated text.
package rules

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrMissingGroup reports a template that references a capture group its
// pattern does not define.
var ErrMissingGroup = errors.New("template references a missing capture group")

// TimePlaceholder is replaced with the current time as HH:MM.
const TimePlaceholder = "{time}"

var positional = regexp.MustCompile(`\{(\d*)\}`)

// maxGroupIndex bounds placeholder indices; regexp caps submatches well below it.
const maxGroupIndex = 1 << 16

// Rule pairs a pattern with candidate reply templates.
type Rule struct {
	Name      string
	Pattern   *regexp.Regexp
	Responses []string
}

// Spec is the configuration form of a Rule.
type Spec struct {
	Name          string   `yaml:"name" json:"name"`
	Pattern       string   `yaml:"pattern" json:"pattern"`
	Responses     []string `yaml:"responses" json:"responses"`
	CaseSensitive bool     `yaml:"case_sensitive" json:"case_sensitive,omitempty"`
}

// Reply is the outcome of a successful dispatch.
type Reply struct {
	Rule string
	Text string
}

// Table is an ordered rule list. The first matching rule wins.
type Table struct {
	rules []Rule
	now   func() time.Time
	rng   *rand.Rand
}

// Option configures a Table.
type Option func(*Table)

// WithClock sets the time source used for the time placeholder.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		if now != nil {
			t.now = now
		}
	}
}

// WithRand sets the random source used to pick among candidate templates.
func WithRand(rng *rand.Rand) Option {
	return func(t *Table) {
		if rng != nil {
			t.rng = rng
		}
	}
}

// New returns a table that checks rules in the given order.
func New(rules []Rule, opts ...Option) *Table {
	t := &Table{
		rules: append([]Rule(nil), rules...),
		now:   time.Now,
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Compile builds rules from specs. Patterns are case-insensitive unless
// CaseSensitive is set.
func Compile(specs []Spec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, spec := range specs {
		if len(spec.Responses) == 0 {
			return nil, fmt.Errorf("rule %d (%s) has no responses", i, spec.Name)
		}
		expr := spec.Pattern
		if !spec.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile rule %d (%s): %w", i, spec.Name, err)
		}
		rules = append(rules, Rule{
			Name:      spec.Name,
			Pattern:   re,
			Responses: append([]string(nil), spec.Responses...),
		})
	}
	return rules, nil
}

// DefaultSpecs returns the built-in rule set in match order.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "greeting", Pattern: `\b(hi|hello|hey)\b`, Responses: []string{"Hey!", "Hello there!", "Hi!"}},
		{Name: "how_are_you", Pattern: `\bhow are you\b`, Responses: []string{"I'm doing great!", "I'm fine, thanks for asking!"}},
		{Name: "name", Pattern: `\bwhat is your name\b`, Responses: []string{"I'm Carl, nice to meet you."}},
		{Name: "identity", Pattern: `\bwho are you\b`, Responses: []string{"I'm Carl, your friendly chatbot."}},
		{Name: "thanks", Pattern: `\bthank you\b`, Responses: []string{"You're welcome!", "No problem!"}},
		{Name: "time", Pattern: `\btime\b`, Responses: []string{"The current time is {time}."}},
		{Name: "question", Pattern: `\?\s*$`, Responses: []string{"That's an interesting question.", "I'm not sure about that."}, CaseSensitive: true},
	}
}

// Default returns a table built from DefaultSpecs.
func Default(opts ...Option) *Table {
	rules, err := Compile(DefaultSpecs())
	if err != nil {
		panic(err)
	}
	return New(rules, opts...)
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// Validate checks that every template only references groups its pattern captures.
func (t *Table) Validate() error {
	for _, rule := range t.rules {
		groups := rule.Pattern.NumSubexp()
		for _, tmpl := range rule.Responses {
			need, err := requiredGroups(tmpl)
			if err != nil {
				return fmt.Errorf("rule %q template %q: %w", rule.Name, tmpl, err)
			}
			if need > groups {
				return fmt.Errorf("rule %q template %q needs %d groups, pattern has %d: %w",
					rule.Name, tmpl, need, groups, ErrMissingGroup)
			}
		}
	}
	return nil
}

// Dispatch answers message from the first matching rule. ok is false when no
// rule matches and the caller must produce a reply some other way.
func (t *Table) Dispatch(message string) (Reply, bool) {
	for _, rule := range t.rules {
		match := rule.Pattern.FindStringSubmatch(message)
		if match == nil {
			continue
		}
		tmpl := rule.Responses[t.rng.IntN(len(rule.Responses))]
		return Reply{Rule: rule.Name, Text: Format(tmpl, t.now(), match[1:])}, true
	}
	return Reply{}, false
}

// Format fills the time placeholder and positional placeholders ({0}, {1},
// or bare {} taken in order) from groups. It panics with ErrMissingGroup when
// a placeholder has no corresponding group; Validate catches this up front.
func Format(tmpl string, now time.Time, groups []string) string {
	if strings.Contains(tmpl, TimePlaceholder) {
		tmpl = strings.ReplaceAll(tmpl, TimePlaceholder, now.Format("15:04"))
	}
	if !positional.MatchString(tmpl) {
		return tmpl
	}

	next := 0
	return positional.ReplaceAllStringFunc(tmpl, func(ph string) string {
		idx, err := placeholderIndex(ph[1:len(ph)-1], &next)
		if err != nil {
			panic(err)
		}
		if idx >= len(groups) {
			panic(fmt.Errorf("placeholder %s with %d groups: %w", ph, len(groups), ErrMissingGroup))
		}
		return groups[idx]
	})
}

func requiredGroups(tmpl string) (int, error) {
	need, next := 0, 0
	for _, m := range positional.FindAllStringSubmatch(tmpl, -1) {
		idx, err := placeholderIndex(m[1], &next)
		if err != nil {
			return 0, err
		}
		need = max(need, idx+1)
	}
	return need, nil
}

// placeholderIndex resolves the group index of one placeholder. Bare {}
// takes the next automatic index. Indices too large for an int can never
// name a real group.
func placeholderIndex(digits string, next *int) (int, error) {
	if digits == "" {
		idx := *next
		*next++
		return idx, nil
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx >= maxGroupIndex {
		return 0, fmt.Errorf("placeholder {%s} is out of range: %w", digits, ErrMissingGroup)
	}
	return idx, nil
}
