package research

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSearcher struct {
	calls int
	err   error
}

func (c *countingSearcher) Search(ctx context.Context, query string, max int) ([]Result, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []Result{{Title: query, URL: "https://example.com/" + query}}, nil
}

func TestCache_HitsWithinTTL(t *testing.T) {
	inner := &countingSearcher{}
	c := NewCache(inner, 10, time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first, err := c.Search(context.Background(), "Dog Walking", 5)
	require.NoError(t, err)
	second, err := c.Search(context.Background(), "  dog walking ", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = c.Search(context.Background(), "dog walking", 3)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "different max is a different key")

	now = now.Add(2 * time.Minute)
	_, err = c.Search(context.Background(), "dog walking", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.calls, "expired entry refetched")

	hits, misses, size := c.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 3, misses)
	assert.Equal(t, 2, size)
}

func TestCache_FailuresNotCached(t *testing.T) {
	inner := &countingSearcher{err: errors.New("blocked")}
	c := NewCache(inner, 10, time.Minute)

	_, err := c.Search(context.Background(), "q", 5)
	require.Error(t, err)
	_, err = c.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCache_EvictsOldest(t *testing.T) {
	inner := &countingSearcher{}
	c := NewCache(inner, 2, time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { now = now.Add(time.Second); return now }

	for _, q := range []string{"a", "b", "c"} {
		_, err := c.Search(context.Background(), q, 5)
		require.NoError(t, err)
	}
	_, _, size := c.Stats()
	assert.Equal(t, 2, size)

	_, err := c.Search(context.Background(), "a", 5)
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls, "a was evicted")
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := NewCache(&countingSearcher{}, 10, time.Hour)
	first, err := c.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	first[0].Title = "mutated"

	second, err := c.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, "q", second[0].Title)
}
