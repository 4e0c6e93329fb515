// Package market fetches live quotes shown next to stored financials.
package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/quote"
	"go.uber.org/zap"

	"github.com/dyike/WealthGo/internal/models"
)

var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrNoQuote       = errors.New("no quote for symbol")
)

// Fetcher returns the raw Yahoo quote for one symbol. A nil quote with a
// nil error means the symbol is unknown.
type Fetcher func(symbol string) (*finance.Quote, error)

// Service looks up quotes through a short-lived cache.
type Service struct {
	fetch  Fetcher
	cache  *QuoteCache
	logger *zap.Logger
}

type Option func(*Service)

func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetch = f
		}
	}
}

func WithCache(c *QuoteCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		fetch:  quote.Get,
		cache:  NewQuoteCache(DefaultTTL),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || len(symbol) > 12 || strings.ContainsAny(symbol, " /\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return symbol, nil
}

// Quote returns the live quote for symbol. The Yahoo client takes no
// context, so a cancelled ctx abandons the call rather than stopping it.
func (s *Service) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return models.Quote{}, err
	}
	if q, ok := s.cache.Get(symbol); ok {
		s.logger.Debug("quote cache hit", zap.String("symbol", symbol))
		return q, nil
	}

	type result struct {
		q   *finance.Quote
		err error
	}
	ch := make(chan result, 1)
	go func() {
		q, err := s.fetch(symbol)
		ch <- result{q, err}
	}()

	var r result
	select {
	case <-ctx.Done():
		return models.Quote{}, ctx.Err()
	case r = <-ch:
	}
	if r.err != nil {
		s.logger.Warn("quote lookup failed", zap.String("symbol", symbol), zap.Error(r.err))
		return models.Quote{}, fmt.Errorf("get quote for %s: %w", symbol, r.err)
	}
	if r.q == nil {
		return models.Quote{}, fmt.Errorf("%w %s", ErrNoQuote, symbol)
	}

	q := fromFinance(symbol, r.q)
	s.cache.Set(symbol, q)
	return q, nil
}

func fromFinance(symbol string, q *finance.Quote) models.Quote {
	out := models.Quote{
		Symbol:        symbol,
		Name:          q.ShortName,
		Currency:      q.CurrencyID,
		Price:         q.RegularMarketPrice,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		MarketState:   string(q.MarketState),
	}
	if q.RegularMarketTime > 0 {
		out.Time = time.Unix(int64(q.RegularMarketTime), 0).UTC()
	}
	return out
}
