package agent

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/easeaico/carl-bot/internal/config"
	"github.com/easeaico/carl-bot/internal/corpus"
	"github.com/easeaico/carl-bot/internal/markov"
	"github.com/easeaico/carl-bot/internal/rules"
	"github.com/easeaico/carl-bot/internal/storage"
)

var fixedNow = time.Date(2024, 5, 1, 21, 30, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		MarkovOrder: 2,
		ReplyLength: config.DefaultReplyLength,
		Persona:     config.DefaultPersona(),
	}
}

func newTestCarl(t *testing.T, store storage.HistoryStore) *Carl {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore(nil)
	}
	carl, err := NewCarl(context.Background(), testConfig(), corpus.Text(), store, zap.NewNop(),
		WithRand(rand.New(rand.NewPCG(5, 8))),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, err)
	return carl
}

func TestReplyGreetingRule(t *testing.T) {
	carl := newTestCarl(t, nil)
	greetings := rules.DefaultSpecs()[0].Responses

	for i := 0; i < 10; i++ {
		assert.Contains(t, greetings, carl.Reply(context.Background(), "hello there"))
	}
}

func TestReplyHowAreYouNormalizesToGreeting(t *testing.T) {
	store := storage.NewMemoryStore(nil)
	carl := newTestCarl(t, store)
	greetings := rules.DefaultSpecs()[0].Responses

	reply := carl.Reply(context.Background(), "Hi, how are you?")
	assert.Contains(t, greetings, reply)

	history := carl.History()
	require.Len(t, history, 2)
	assert.Equal(t, "User: hello how are you", history[0])
	assert.Equal(t, "Carl: "+reply, history[1])
}

func TestReplyTimeRule(t *testing.T) {
	carl := newTestCarl(t, nil)
	assert.Equal(t, "The current time is 21:30.", carl.Reply(context.Background(), "What TIME is it?"))
}

func TestReplyThanksSynonym(t *testing.T) {
	carl := newTestCarl(t, nil)
	reply := carl.Reply(context.Background(), "thanks!")
	assert.Contains(t, []string{"You're welcome!", "No problem!"}, reply)
}

func TestReplyMarkovFallback(t *testing.T) {
	carl := newTestCarl(t, nil)
	reply := carl.Reply(context.Background(), "zzqx flibber wobble")

	require.NotEmpty(t, reply)
	assert.NotEqual(t, markov.Placeholder, reply)
	assert.Len(t, strings.Fields(reply), config.DefaultReplyLength)
	assert.Equal(t, 0, carl.Mood())
}

func TestReplyMarkovFallbackPositiveMood(t *testing.T) {
	carl := newTestCarl(t, nil)
	// Keyword messages that match no rule still raise the mood.
	carl.Reply(context.Background(), "awesome wonderful")
	require.Equal(t, 2, carl.Mood())

	reply := carl.Reply(context.Background(), "zzqx flibber wobble")
	assert.True(t, strings.HasSuffix(reply, " :)"), "reply %q", reply)
}

func TestReplyMarkovFallbackNegativeMood(t *testing.T) {
	carl := newTestCarl(t, nil)
	carl.Reply(context.Background(), "terrible awful horrible")
	require.Equal(t, -3, carl.Mood())

	reply := carl.Reply(context.Background(), "zzqx flibber wobble")
	assert.True(t, strings.HasSuffix(reply, " :("), "reply %q", reply)
}

func TestReplyRuleMatchHasNoMoodSuffix(t *testing.T) {
	carl := newTestCarl(t, nil)
	carl.Reply(context.Background(), "great good love")
	assert.Equal(t, "I'm Carl, nice to meet you.", carl.Reply(context.Background(), "What is your name?"))
}

func TestReplyMoodStaysBounded(t *testing.T) {
	carl := newTestCarl(t, nil)
	for i := 0; i < 10; i++ {
		carl.Reply(context.Background(), "great good love awesome nice wonderful like")
		assert.LessOrEqual(t, carl.Mood(), 5)
	}
	for i := 0; i < 10; i++ {
		carl.Reply(context.Background(), "bad hate terrible awful horrible")
		assert.GreaterOrEqual(t, carl.Mood(), -5)
	}
}

func TestReplySavesAfterEveryMessage(t *testing.T) {
	store := storage.NewMemoryStore(nil)
	carl := newTestCarl(t, store)

	carl.Reply(context.Background(), "hello")
	carl.Reply(context.Background(), "zzqx flibber wobble")
	assert.Equal(t, 2, store.Saves())

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, carl.History(), saved)
	assert.Len(t, saved, 4)
}

func TestNewCarlResumesHistory(t *testing.T) {
	store := storage.NewMemoryStore([]string{"User: hello", "Carl: Hi!"})
	carl := newTestCarl(t, store)
	carl.Reply(context.Background(), "hello")

	history := carl.History()
	require.Len(t, history, 4)
	assert.Equal(t, "User: hello", history[0])
}

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) Load(ctx context.Context) ([]string, error) {
	return []string{"stale"}, f.loadErr
}

func (f *failingStore) Save(ctx context.Context, lines []string) error {
	f.saves++
	return f.saveErr
}

func (f *failingStore) Close() error { return nil }

func TestMalformedHistoryStartsEmpty(t *testing.T) {
	carl := newTestCarl(t, &failingStore{loadErr: storage.ErrMalformedHistory})
	assert.Empty(t, carl.History())
}

func TestSaveFailureIsSwallowed(t *testing.T) {
	store := &failingStore{saveErr: errors.New("disk full")}
	carl := newTestCarl(t, store)

	reply := carl.Reply(context.Background(), "hello")
	assert.NotEmpty(t, reply)
	assert.Len(t, carl.History(), 2)
	assert.Equal(t, 1, store.saves)
}

func TestUntrainedChainRepliesWithPlaceholder(t *testing.T) {
	carl, err := NewCarl(context.Background(), testConfig(), "too short", storage.NewMemoryStore(nil), nil)
	require.NoError(t, err)

	assert.Equal(t, markov.Placeholder, carl.Reply(context.Background(), "zzqx flibber wobble"))
	assert.Equal(t, markov.Placeholder, carl.Generate(nil, 10))
}

func TestNewCarlRejectsBrokenRules(t *testing.T) {
	cfg := testConfig()
	cfg.Persona.Rules = []rules.Spec{{Name: "broken", Pattern: `my name is \w+`, Responses: []string{"Hi {0}"}}}

	_, err := NewCarl(context.Background(), cfg, corpus.Text(), storage.NewMemoryStore(nil), nil)
	assert.ErrorIs(t, err, rules.ErrMissingGroup)

	cfg.Persona.Rules = []rules.Spec{{Name: "bad", Pattern: `(`, Responses: []string{"x"}}}
	_, err = NewCarl(context.Background(), cfg, corpus.Text(), storage.NewMemoryStore(nil), nil)
	assert.Error(t, err)
}

func TestNewCarlRequiresStore(t *testing.T) {
	_, err := NewCarl(context.Background(), testConfig(), corpus.Text(), nil, nil)
	assert.Error(t, err)
}

func TestGreetingAndFarewell(t *testing.T) {
	carl := newTestCarl(t, nil)
	assert.Equal(t, config.DefaultGreeting, carl.Greeting())
	assert.Equal(t, config.DefaultFarewell, carl.Farewell())
}
