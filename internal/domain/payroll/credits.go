package payroll

import (
	"context"
	"strconv"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"clubhouse/internal/domain/position"
)

// Rate is a credit-rate window with epoch bounds derived once when the row
// is fetched. Cached rates are never mutated afterwards, so the same window
// may safely appear under several cache entries.
type Rate struct {
	PositionID     int64
	CreditsPerHour float64
	Start          int64
	End            int64
	Description    string
}

type RateSource interface {
	RatesForYearPosition(ctx context.Context, year int, positionID int64) ([]position.CreditRate, error)
	RatesForYearPositions(ctx context.Context, year int, positionIDs []int64) ([]position.CreditRate, error)
	RatesForYear(ctx context.Context, year int) ([]position.CreditRate, error)
}

// RateCache holds per-year credit-rate buckets for the lifetime of the
// process. Rate tables are quasi-static reference data, so entries never
// expire. Each year bucket has its own lock; warming one year does not
// block lookups in another.
type RateCache struct {
	years *gocache.Cache
}

func NewRateCache() *RateCache {
	return &RateCache{years: gocache.New(gocache.NoExpiration, 0)}
}

func cacheKey(year int) string {
	return "pc-" + strconv.Itoa(year)
}

func (c *RateCache) bucket(year int) *yearBucket {
	key := cacheKey(year)
	if v, ok := c.years.Get(key); ok {
		return v.(*yearBucket)
	}
	b := &yearBucket{positions: map[int64][]Rate{}}
	if err := c.years.Add(key, b, gocache.NoExpiration); err != nil {
		// Lost the race; another caller created the bucket first.
		v, _ := c.years.Get(key)
		return v.(*yearBucket)
	}
	return b
}

type yearBucket struct {
	mu        sync.RWMutex
	positions map[int64][]Rate
}

func (b *yearBucket) get(positionID int64) ([]Rate, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rates, ok := b.positions[positionID]
	return rates, ok
}

func (b *yearBucket) set(positionID int64, rates []Rate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions[positionID] = rates
}

func (b *yearBucket) missing(positionIDs []int64) []int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var missing []int64
	for _, id := range positionIDs {
		if _, ok := b.positions[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

func (b *yearBucket) merge(grouped map[int64][]Rate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for positionID, rates := range grouped {
		b.positions[positionID] = rates
	}
}

func (b *yearBucket) replaceAll(grouped map[int64][]Rate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions = grouped
}

// CreditResolver resolves the credit rates effective for a position and
// year, backed by an injectable process-wide cache.
type CreditResolver struct {
	cache *RateCache
	rates RateSource
}

func NewCreditResolver(cache *RateCache, rates RateSource) *CreditResolver {
	return &CreditResolver{cache: cache, rates: rates}
}

func derive(row position.CreditRate) Rate {
	return Rate{
		PositionID:     row.PositionID,
		CreditsPerHour: row.CreditsPerHour,
		Start:          row.StartTime.Unix(),
		End:            row.EndTime.Unix(),
		Description:    row.Description,
	}
}

func groupByPosition(rows []position.CreditRate) map[int64][]Rate {
	grouped := map[int64][]Rate{}
	for _, row := range rows {
		grouped[row.PositionID] = append(grouped[row.PositionID], derive(row))
	}
	return grouped
}

// RatesFor returns the credit rates for a position effective in the year,
// ordered by start time. Misses are fetched from storage and cached; an
// empty result is cached too, so repeated lookups for a position with no
// rates stay cheap.
func (r *CreditResolver) RatesFor(ctx context.Context, year int, positionID int64) ([]Rate, error) {
	bucket := r.cache.bucket(year)
	if rates, ok := bucket.get(positionID); ok {
		return rates, nil
	}

	rows, err := r.rates.RatesForYearPosition(ctx, year, positionID)
	if err != nil {
		return nil, err
	}

	rates := make([]Rate, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, derive(row))
	}
	bucket.set(positionID, rates)
	return rates, nil
}

// WarmBulk pre-populates the cache ahead of a batch computation so that
// per-shift lookups never hit storage.
//
// Special case: an empty position-id slice for a year means "warm the
// entire year unconditionally": every rate for that year is fetched in one
// pass regardless of position. Callers that cannot know the positions in
// advance rely on this sentinel.
//
// For a non-empty slice, one batched query per year covers only the ids
// not already cached; afterwards every requested (year, position) pair has
// a cached entry, possibly empty. Calling WarmBulk twice with the same
// arguments is a no-op the second time.
func (r *CreditResolver) WarmBulk(ctx context.Context, years map[int][]int64) error {
	for year, positionIDs := range years {
		bucket := r.cache.bucket(year)

		if len(positionIDs) == 0 {
			rows, err := r.rates.RatesForYear(ctx, year)
			if err != nil {
				return err
			}
			bucket.replaceAll(groupByPosition(rows))
			continue
		}

		missing := bucket.missing(positionIDs)
		if len(missing) == 0 {
			continue
		}

		rows, err := r.rates.RatesForYearPositions(ctx, year, missing)
		if err != nil {
			return err
		}

		grouped := groupByPosition(rows)
		for _, id := range missing {
			if _, ok := grouped[id]; !ok {
				grouped[id] = []Rate{}
			}
		}
		bucket.merge(grouped)
	}
	return nil
}

// ComputeCredits sums the credits a shift earns for a position across every
// rate window overlapping the shift. There is no early exit: when windows
// overlap each other, each contributes. Stacked rates are the documented
// behavior, not deduplicated here.
func (r *CreditResolver) ComputeCredits(ctx context.Context, positionID int64, shiftStart, shiftEnd int64, year int) (float64, error) {
	rates, err := r.RatesFor(ctx, year, positionID)
	if err != nil {
		return 0, err
	}
	if len(rates) == 0 {
		return 0.0, nil
	}

	total := 0.0
	for _, rate := range rates {
		minutes := OverlapMinutes(shiftStart, shiftEnd, rate.Start, rate.End)
		if minutes > 0 {
			total += minutes * rate.CreditsPerHour / 60.0
		}
	}
	return total, nil
}
