package market

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyike/WealthGo/internal/models"
)

func TestNormalizeSymbol(t *testing.T) {
	s, err := NormalizeSymbol("  aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", s)

	for _, bad := range []string{"", "   ", "BRK B", "A/B", "TOOLONGSYMBOL1"} {
		_, err := NormalizeSymbol(bad)
		assert.ErrorIs(t, err, ErrInvalidSymbol, bad)
	}
}

func TestQuoteMapsAndCaches(t *testing.T) {
	var calls atomic.Int32
	fetch := func(symbol string) (*finance.Quote, error) {
		calls.Add(1)
		return &finance.Quote{
			Symbol:                     symbol,
			ShortName:                  "Apple Inc.",
			CurrencyID:                 "USD",
			RegularMarketPrice:         190.5,
			RegularMarketChange:        -1.25,
			RegularMarketChangePercent: -0.65,
			RegularMarketTime:          1717232400,
			MarketState:                "REGULAR",
		}, nil
	}
	svc := NewService(WithFetcher(fetch))

	q, err := svc.Quote(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc.", q.Name)
	assert.Equal(t, 190.5, q.Price)
	assert.Equal(t, -0.65, q.ChangePercent)
	assert.Equal(t, "REGULAR", q.MarketState)
	assert.Equal(t, time.Unix(1717232400, 0).UTC(), q.Time)

	_, err = svc.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQuoteErrors(t *testing.T) {
	svc := NewService(WithFetcher(func(string) (*finance.Quote, error) { return nil, nil }))
	_, err := svc.Quote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, ErrNoQuote)

	boom := errors.New("yahoo down")
	svc = NewService(WithFetcher(func(string) (*finance.Quote, error) { return nil, boom }))
	_, err = svc.Quote(context.Background(), "MSFT")
	assert.ErrorIs(t, err, boom)
}

func TestQuoteHonoursCancelledContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	svc := NewService(WithFetcher(func(string) (*finance.Quote, error) {
		<-block
		return nil, nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Quote(ctx, "MSFT")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuoteCacheExpires(t *testing.T) {
	c := NewQuoteCache(time.Minute)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("MSFT", models.Quote{Symbol: "MSFT", Price: 420})
	q, ok := c.Get("MSFT")
	require.True(t, ok)
	assert.Equal(t, 420.0, q.Price)
	assert.Equal(t, []string{"MSFT"}, c.Symbols())

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("MSFT")
	assert.False(t, ok)
	assert.Empty(t, c.Symbols())
}

func TestZeroTTLDisablesCache(t *testing.T) {
	c := NewQuoteCache(0)
	c.Set("MSFT", models.Quote{Symbol: "MSFT"})
	_, ok := c.Get("MSFT")
	assert.False(t, ok)
}
