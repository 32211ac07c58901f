package finance

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pft/internal/cache"
	"pft/internal/core"
	"pft/internal/log"
)

const (
	keyDashboard = "dashboard"
	keyExpenses  = "expenses"
	keyIncome    = "income"
)

// CachedAPI wraps an API with short-lived read caches. Writes invalidate the
// owning list and the dashboard so totals are re-read after every add.
// Concurrent reads of the same key share one upstream call.
type CachedAPI struct {
	next      API
	logger    *log.Logger
	group     singleflight.Group
	dashboard *cache.LRUCache[core.DashboardSummary]
	expenses  *cache.LRUCache[[]core.Expense]
	income    *cache.LRUCache[[]core.Income]

	// gen is bumped per key on every invalidation; a read only stores its
	// result if the generation it started under is still current.
	mu  sync.Mutex
	gen map[string]uint64
}

var _ API = (*CachedAPI)(nil)

// NewCachedAPI returns next unchanged when ttl is not positive.
func NewCachedAPI(next API, size int, ttl time.Duration, logger *log.Logger) API {
	if ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &CachedAPI{
		next:      next,
		logger:    logger.WithComponent(log.ComponentFinance),
		dashboard: cache.NewLRUCache[core.DashboardSummary](size, ttl),
		expenses:  cache.NewLRUCache[[]core.Expense](size, ttl),
		income:    cache.NewLRUCache[[]core.Income](size, ttl),
		gen:       make(map[string]uint64),
	}
}

func (c *CachedAPI) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[key]
}

// store runs set only if key was not invalidated since gen was taken.
func (c *CachedAPI) store(ctx context.Context, key string, gen uint64, set func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[key] != gen {
		c.logger.DebugContext(ctx, "Discarding read that raced a write", log.FieldKey, key)
		return
	}
	set()
}

func (c *CachedAPI) invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.gen[key]++
		c.group.Forget(key)
		switch key {
		case keyDashboard:
			c.dashboard.Delete(key)
		case keyExpenses:
			c.expenses.Delete(key)
		case keyIncome:
			c.income.Delete(key)
		}
	}
}

func (c *CachedAPI) ReadDashboard(ctx context.Context) (core.DashboardSummary, error) {
	if v, ok := c.dashboard.Get(keyDashboard); ok {
		c.logger.DebugContext(ctx, "Dashboard cache hit", log.FieldKey, keyDashboard)
		return v, nil
	}
	gen := c.generation(keyDashboard)
	v, err, _ := c.group.Do(keyDashboard, func() (any, error) {
		s, err := c.next.ReadDashboard(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, keyDashboard, gen, func() { c.dashboard.Set(keyDashboard, s) })
		return s, nil
	})
	if err != nil {
		return core.DashboardSummary{}, err
	}
	return v.(core.DashboardSummary), nil
}

func (c *CachedAPI) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	if v, ok := c.expenses.Get(keyExpenses); ok {
		c.logger.DebugContext(ctx, "Expenses cache hit", log.FieldKey, keyExpenses, log.FieldCount, len(v))
		return append([]core.Expense(nil), v...), nil
	}
	gen := c.generation(keyExpenses)
	v, err, _ := c.group.Do(keyExpenses, func() (any, error) {
		items, err := c.next.ListExpenses(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, keyExpenses, gen, func() { c.expenses.Set(keyExpenses, items) })
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]core.Expense(nil), v.([]core.Expense)...), nil
}

func (c *CachedAPI) ListIncome(ctx context.Context) ([]core.Income, error) {
	if v, ok := c.income.Get(keyIncome); ok {
		c.logger.DebugContext(ctx, "Income cache hit", log.FieldKey, keyIncome, log.FieldCount, len(v))
		return append([]core.Income(nil), v...), nil
	}
	gen := c.generation(keyIncome)
	v, err, _ := c.group.Do(keyIncome, func() (any, error) {
		items, err := c.next.ListIncome(ctx)
		if err != nil {
			return nil, err
		}
		c.store(ctx, keyIncome, gen, func() { c.income.Set(keyIncome, items) })
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]core.Income(nil), v.([]core.Income)...), nil
}

func (c *CachedAPI) CreateExpense(ctx context.Context, e core.Expense) error {
	if err := c.next.CreateExpense(ctx, e); err != nil {
		return err
	}
	c.invalidate(keyExpenses, keyDashboard)
	return nil
}

func (c *CachedAPI) CreateIncome(ctx context.Context, i core.Income) error {
	if err := c.next.CreateIncome(ctx, i); err != nil {
		return err
	}
	c.invalidate(keyIncome, keyDashboard)
	return nil
}
