package position

// Credit-rate sanity checks. These are report-only diagnostics used by the
// admin console; nothing here blocks payroll computation.

const (
	IssueInvertedWindow   = "inverted-window"
	IssueSpansYears       = "spans-years"
	IssueOverlappingRates = "overlapping-rates"
)

type Issue struct {
	Code         string  `json:"code"`
	CreditRateID int64   `json:"credit_rate_id"`
	PositionID   int64   `json:"position_id"`
	OtherRateID  int64   `json:"other_rate_id,omitempty"`
	Note         string  `json:"note,omitempty"`
	PerHour      float64 `json:"credits_per_hour"`
}

// CheckCreditRates scans a rate list for windows that are inverted, span a
// year boundary, or overlap another window for the same position.
// Overlapping windows stack during credit computation, which is usually an
// entry mistake rather than an intentional bonus rate.
func CheckCreditRates(rates []CreditRate) []Issue {
	var issues []Issue

	for _, r := range rates {
		if !r.EndTime.After(r.StartTime) {
			issues = append(issues, Issue{
				Code:         IssueInvertedWindow,
				CreditRateID: r.ID,
				PositionID:   r.PositionID,
				PerHour:      r.CreditsPerHour,
				Note:         "end time is not after start time",
			})
		}
		if r.StartTime.Year() != r.EndTime.Year() {
			issues = append(issues, Issue{
				Code:         IssueSpansYears,
				CreditRateID: r.ID,
				PositionID:   r.PositionID,
				PerHour:      r.CreditsPerHour,
				Note:         "window crosses a year boundary and will never be resolved",
			})
		}
	}

	byPosition := map[int64][]CreditRate{}
	for _, r := range rates {
		byPosition[r.PositionID] = append(byPosition[r.PositionID], r)
	}

	for positionID, group := range byPosition {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				a, b := group[i], group[j]
				if a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime) {
					issues = append(issues, Issue{
						Code:         IssueOverlappingRates,
						CreditRateID: a.ID,
						OtherRateID:  b.ID,
						PositionID:   positionID,
						PerHour:      a.CreditsPerHour,
						Note:         "overlapping windows double-count credits",
					})
				}
			}
		}
	}

	return issues
}
