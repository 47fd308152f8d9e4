package payroll

import (
	"context"
	"testing"
	"time"

	"clubhouse/internal/domain/position"
)

type fakeRateSource struct {
	rates []position.CreditRate

	singleCalls int
	batchCalls  int
	yearCalls   int
}

func inYear(r position.CreditRate, year int) bool {
	return r.StartTime.Year() == year && r.EndTime.Year() == year
}

func (f *fakeRateSource) RatesForYearPosition(_ context.Context, year int, positionID int64) ([]position.CreditRate, error) {
	f.singleCalls++
	var out []position.CreditRate
	for _, r := range f.rates {
		if r.PositionID == positionID && inYear(r, year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRateSource) RatesForYearPositions(_ context.Context, year int, positionIDs []int64) ([]position.CreditRate, error) {
	f.batchCalls++
	wanted := map[int64]bool{}
	for _, id := range positionIDs {
		wanted[id] = true
	}
	var out []position.CreditRate
	for _, r := range f.rates {
		if wanted[r.PositionID] && inYear(r, year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRateSource) RatesForYear(_ context.Context, year int) ([]position.CreditRate, error) {
	f.yearCalls++
	var out []position.CreditRate
	for _, r := range f.rates {
		if inYear(r, year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func epochRate(positionID int64, perHour float64, start, end int64) position.CreditRate {
	return position.CreditRate{
		PositionID:     positionID,
		CreditsPerHour: perHour,
		StartTime:      time.Unix(start, 0).UTC(),
		EndTime:        time.Unix(end, 0).UTC(),
	}
}

// Epoch 0 falls in 1970; every epoch-based fixture below uses that year.
const epochYear = 1970

func TestComputeCreditsSingleWindow(t *testing.T) {
	source := &fakeRateSource{rates: []position.CreditRate{epochRate(1, 2.0, 0, 7200)}}
	resolver := NewCreditResolver(NewRateCache(), source)

	credits, err := resolver.ComputeCredits(context.Background(), 1, 0, 3600, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 60 minutes at 2.0 credits per hour.
	if credits != 2.0 {
		t.Fatalf("expected 2.0 credits, got %v", credits)
	}
}

func TestComputeCreditsNoRates(t *testing.T) {
	source := &fakeRateSource{}
	resolver := NewCreditResolver(NewRateCache(), source)

	credits, err := resolver.ComputeCredits(context.Background(), 1, 0, 3600, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits != 0.0 {
		t.Fatalf("expected 0.0 credits, got %v", credits)
	}

	// The empty result is cached: a second computation must not re-query.
	if _, err := resolver.ComputeCredits(context.Background(), 1, 0, 3600, epochYear); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.singleCalls != 1 {
		t.Fatalf("expected 1 storage query, got %d", source.singleCalls)
	}
}

func TestComputeCreditsAdditiveAcrossWindows(t *testing.T) {
	first := epochRate(1, 1.5, 0, 3600)
	second := epochRate(1, 1.5, 3600, 7200)

	both := NewCreditResolver(NewRateCache(), &fakeRateSource{rates: []position.CreditRate{first, second}})
	onlyFirst := NewCreditResolver(NewRateCache(), &fakeRateSource{rates: []position.CreditRate{first}})
	onlySecond := NewCreditResolver(NewRateCache(), &fakeRateSource{rates: []position.CreditRate{second}})

	total, err := both.ComputeCredits(context.Background(), 1, 0, 7200, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a, err := onlyFirst.ComputeCredits(context.Background(), 1, 0, 7200, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := onlySecond.ComputeCredits(context.Background(), 1, 0, 7200, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if total != a+b {
		t.Fatalf("expected additivity: %v != %v + %v", total, a, b)
	}
	if total != 3.0 {
		t.Fatalf("expected 3.0 credits, got %v", total)
	}
}

func TestComputeCreditsOverlappingWindowsStack(t *testing.T) {
	// Two identical windows: the shift earns from both. Stacked rates are
	// the documented behavior; avoiding double-counting is the rate
	// table's responsibility.
	source := &fakeRateSource{rates: []position.CreditRate{
		epochRate(1, 1.0, 0, 3600),
		epochRate(1, 1.0, 0, 3600),
	}}
	resolver := NewCreditResolver(NewRateCache(), source)

	credits, err := resolver.ComputeCredits(context.Background(), 1, 0, 3600, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits != 2.0 {
		t.Fatalf("expected stacked 2.0 credits, got %v", credits)
	}
}

func TestWarmBulkIdempotent(t *testing.T) {
	source := &fakeRateSource{rates: []position.CreditRate{epochRate(1, 1.0, 0, 3600)}}
	resolver := NewCreditResolver(NewRateCache(), source)

	warm := map[int][]int64{epochYear: {1, 2}}
	if err := resolver.WarmBulk(context.Background(), warm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := resolver.WarmBulk(context.Background(), warm); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.batchCalls != 1 {
		t.Fatalf("expected a single batched query, got %d", source.batchCalls)
	}

	// Every requested pair is cached, including position 2 with no rates.
	rates, err := resolver.RatesFor(context.Background(), epochYear, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 0 {
		t.Fatalf("expected no rates for position 2, got %v", rates)
	}
	if source.singleCalls != 0 {
		t.Fatalf("warmed lookups must not hit storage, got %d queries", source.singleCalls)
	}
}

func TestWarmBulkEmptyPositionSetWarmsWholeYear(t *testing.T) {
	source := &fakeRateSource{rates: []position.CreditRate{
		epochRate(1, 1.0, 0, 3600),
		epochRate(7, 2.0, 0, 7200),
	}}
	resolver := NewCreditResolver(NewRateCache(), source)

	// Empty slice is the "warm the entire year" sentinel.
	if err := resolver.WarmBulk(context.Background(), map[int][]int64{epochYear: {}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.yearCalls != 1 {
		t.Fatalf("expected one whole-year query, got %d", source.yearCalls)
	}

	credits, err := resolver.ComputeCredits(context.Background(), 7, 0, 7200, epochYear)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if credits != 4.0 {
		t.Fatalf("expected 4.0 credits, got %v", credits)
	}
	if source.singleCalls != 0 {
		t.Fatalf("whole-year warm must cover later lookups, got %d queries", source.singleCalls)
	}
}

func TestRatesForCachesAcrossYears(t *testing.T) {
	year2024 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	source := &fakeRateSource{rates: []position.CreditRate{
		{PositionID: 1, CreditsPerHour: 1.0, StartTime: year2024, EndTime: year2024.Add(time.Hour)},
	}}
	resolver := NewCreditResolver(NewRateCache(), source)

	rates, err := resolver.RatesFor(context.Background(), 2024, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rates) != 1 {
		t.Fatalf("expected one rate, got %v", rates)
	}
	if rates[0].Start != year2024.Unix() || rates[0].End != year2024.Add(time.Hour).Unix() {
		t.Fatalf("derived epochs wrong: %+v", rates[0])
	}

	// A different year is a separate bucket and misses.
	if _, err := resolver.RatesFor(context.Background(), 2023, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.singleCalls != 2 {
		t.Fatalf("expected 2 storage queries, got %d", source.singleCalls)
	}
}
