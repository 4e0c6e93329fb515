package market

import (
	"sort"
	"sync"
	"time"

	"github.com/dyike/WealthGo/internal/models"
)

const DefaultTTL = 5 * time.Minute

type cachedQuote struct {
	quote    models.Quote
	storedAt time.Time
}

// QuoteCache holds quotes in memory for a fixed TTL.
type QuoteCache struct {
	mu    sync.RWMutex
	items map[string]cachedQuote
	ttl   time.Duration
	now   func() time.Time
}

func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		items: make(map[string]cachedQuote),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *QuoteCache) Get(symbol string) (models.Quote, bool) {
	c.mu.RLock()
	cached, ok := c.items[symbol]
	c.mu.RUnlock()
	if !ok {
		return models.Quote{}, false
	}
	if c.now().Sub(cached.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.items, symbol)
		c.mu.Unlock()
		return models.Quote{}, false
	}
	return cached.quote, true
}

func (c *QuoteCache) Set(symbol string, q models.Quote) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[symbol] = cachedQuote{quote: q, storedAt: c.now()}
}

func (c *QuoteCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cachedQuote)
}

// Symbols lists cached symbols, sorted.
func (c *QuoteCache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.items))
	for k := range c.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
