package service

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Tier identifies one of the two generation-model cost/quality levels.
type Tier string

const (
	TierCapable Tier = "capable"
	TierEconomy Tier = "economy"
	TierNone    Tier = ""
)

// QuotaTracker meters daily call counts per tier. Counters are keyed by
// (tier, calendar day) and expire 24 hours after creation, which stands in
// for a midnight reset without a cron. Exhaustion is reported as a
// false/none return, never an error; it is the caller that decides whether
// that aborts anything.
type QuotaTracker struct {
	limits   map[Tier]int64
	mu       sync.Mutex
	counters *expirable.LRU[string, *atomic.Int64]
	now      func() time.Time
}

// NewQuotaTracker creates a tracker with the given per-tier daily caps.
func NewQuotaTracker(capableLimit, economyLimit int) *QuotaTracker {
	return &QuotaTracker{
		limits: map[Tier]int64{
			TierCapable: int64(capableLimit),
			TierEconomy: int64(economyLimit),
		},
		counters: expirable.NewLRU[string, *atomic.Int64](16, nil, 24*time.Hour),
		now:      time.Now,
	}
}

func (q *QuotaTracker) key(tier Tier) string {
	return string(tier) + ":" + q.now().Format("2006-01-02")
}

// counter returns today's counter for the tier, creating it lazily.
func (q *QuotaTracker) counter(tier Tier) *atomic.Int64 {
	key := q.key(tier)

	q.mu.Lock()
	defer q.mu.Unlock()

	if c, ok := q.counters.Get(key); ok {
		return c
	}
	c := &atomic.Int64{}
	q.counters.Add(key, c)
	return c
}

// Usage returns today's recorded call count for the tier.
func (q *QuotaTracker) Usage(tier Tier) int64 {
	return q.counter(tier).Load()
}

// Available reports whether the tier still has budget today.
func (q *QuotaTracker) Available(tier Tier) bool {
	limit, ok := q.limits[tier]
	if !ok {
		return false
	}
	return q.counter(tier).Load() < limit
}

// Resolve picks a tier for a text generation call. The preferred tier is
// tried first, then the other, then the preferred tier once more. The
// final re-check is a no-op when preferCapable is true but is the second
// fallback when the caller prefers economy.
func (q *QuotaTracker) Resolve(preferCapable bool) (Tier, bool) {
	if preferCapable && q.Available(TierCapable) {
		return TierCapable, true
	}
	if q.Available(TierEconomy) {
		return TierEconomy, true
	}
	if q.Available(TierCapable) {
		return TierCapable, true
	}
	return TierNone, false
}

// ResolveVision picks a tier for a vision call. Vision is pinned to the
// capable tier; there is no fallback.
func (q *QuotaTracker) ResolveVision() (Tier, bool) {
	if q.Available(TierCapable) {
		return TierCapable, true
	}
	return TierNone, false
}

// Record increments today's counter for the tier. Safe under concurrent
// calls from multiple in-flight analyses.
func (q *QuotaTracker) Record(tier Tier) {
	used := q.counter(tier).Add(1)
	if limit := q.limits[tier]; used >= limit {
		slog.Warn("daily quota reached", "tier", string(tier), "used", used, "limit", limit)
	}
}
