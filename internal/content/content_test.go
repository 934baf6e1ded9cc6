package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"DegensAgainstDecency/internal/game/card"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource returns canned cards or an error and counts calls.
type fakeSource struct {
	cards    []card.TextCard
	err      error
	calls    int
	fallback []card.TextCard
}

func (f *fakeSource) Generate(_ context.Context, _ card.Kind, count int) ([]card.TextCard, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if count < len(f.cards) {
		return f.cards[:count], nil
	}
	return f.cards, nil
}

func (f *fakeSource) Fallback(kind card.Kind) []card.TextCard {
	if f.fallback != nil {
		return f.fallback
	}
	return NewBuiltin(1).Fallback(kind)
}

func texts(n int, prefix string) []card.TextCard {
	out := make([]card.TextCard, n)
	for i := range out {
		out[i] = card.TextCard{ID: prefix + string(rune('a'+i)), Text: prefix + " text " + string(rune('a'+i))}
	}
	return out
}

func TestAcquireUsesGenerated(t *testing.T) {
	src := &fakeSource{cards: texts(20, "gen")}
	got := Acquire(context.Background(), src, card.Question, 15, 10)
	require.Len(t, got, 15)
	for _, c := range got {
		assert.Equal(t, card.Question, c.Kind)
	}
}

func TestAcquireFallsBackOnError(t *testing.T) {
	src := &fakeSource{err: errors.New("generator down")}
	got := Acquire(context.Background(), src, card.Question, 50, 10)
	assert.GreaterOrEqual(t, len(got), 10)
	assert.Equal(t, len(fallbackQuestions), len(got))
	assert.Equal(t, "q-001", got[0].ID)
}

func TestAcquireTopsUpShortResult(t *testing.T) {
	src := &fakeSource{cards: texts(3, "gen")}
	got := Acquire(context.Background(), src, card.Question, 12, 10)
	require.Len(t, got, 12)
	assert.Equal(t, "gen text a", got[0].Text, "generated cards come first")
}

func TestAcquireCleansInput(t *testing.T) {
	src := &fakeSource{
		cards: []card.TextCard{
			{ID: "x", Text: "  Hello   world "},
			{ID: "y", Text: "hello world"},
			{ID: "z", Text: "   "},
			{ID: "x", Text: "Another"},
			{Text: "No id"},
		},
		fallback: []card.TextCard{{ID: "f", Text: "fallback"}},
	}
	got := Acquire(context.Background(), src, card.Answer, 10, 1)
	require.Len(t, got, 3)
	assert.Equal(t, "Hello   world", got[0].Text)
	assert.Equal(t, "Another", got[1].Text)
	assert.NotEqual(t, "x", got[1].ID, "duplicate id replaced")
	assert.NotEmpty(t, got[2].ID)
}

func TestBuiltin(t *testing.T) {
	b := NewBuiltin(3)
	qs, err := b.Generate(context.Background(), card.Question, 5)
	require.NoError(t, err)
	assert.Len(t, qs, 5)

	_, err = b.Generate(context.Background(), card.Kind("poem"), 5)
	assert.Error(t, err)

	assert.GreaterOrEqual(t, len(b.Fallback(card.Question)), 10)
	assert.GreaterOrEqual(t, len(b.Fallback(card.Answer)), 56, "enough for eight full hands")
}

func TestRedisCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &fakeSource{cards: texts(10, "gen")}
	cache := NewRedisCache(rdb, inner, time.Minute)
	ctx := context.Background()

	first, err := cache.Generate(ctx, card.Answer, 5)
	require.NoError(t, err)
	assert.Len(t, first, 5)
	assert.Equal(t, 1, inner.calls)
	assert.True(t, mr.Exists("content:answer"))

	second, err := cache.Generate(ctx, card.Answer, 5)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "served from cache")

	_, err = cache.Generate(ctx, card.Answer, 8)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "cache too small, regenerated")

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("content:answer"))
}

func TestRedisCachePropagatesErrors(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisCache(rdb, &fakeSource{err: errors.New("boom")}, time.Minute)

	_, err = cache.Generate(context.Background(), card.Question, 5)
	assert.Error(t, err)

	got := Acquire(context.Background(), cache, card.Question, 5, 10)
	assert.GreaterOrEqual(t, len(got), 10)
}
