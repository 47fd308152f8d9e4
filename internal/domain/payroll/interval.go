package payroll

import (
	"fmt"
	"math"
	"time"
)

// OverlapMinutes returns the number of whole minutes two epoch-second
// intervals share, rounded half away from zero. Disjoint or degenerate
// intervals return 0.
func OverlapMinutes(startA, endA, startB, endB int64) float64 {
	start := max(startA, startB)
	ending := min(endA, endB)

	if start >= ending {
		return 0
	}

	return math.Round(float64(ending-start) / 60.0)
}

type HalfShift struct {
	OnDuty  string `json:"on_duty"`
	OffDuty string `json:"off_duty"`
}

type MealBreak struct {
	FirstHalf  HalfShift `json:"first_half"`
	SecondHalf HalfShift `json:"second_half"`
}

// SplitAtMealBreak divides a shift into two paid segments around an unpaid
// meal break. The first half runs breakAfterHours from on-duty; the break
// itself is excluded entirely; the second half picks up after the break and
// runs for whatever of the original duration remains.
//
// Callers must only split shifts whose duration in whole hours exceeds
// breakAfterHours; a shift too short to hold the break window is a
// precondition violation and returns an error rather than a negative
// second-half duration.
func SplitAtMealBreak(onDuty time.Time, durationSeconds, breakAfterHours, breakDurationMinutes int) (MealBreak, error) {
	remainder := durationSeconds - (breakAfterHours*3600 + breakDurationMinutes*60)
	if remainder < 0 {
		return MealBreak{}, fmt.Errorf("shift of %ds is too short to split after %dh plus a %dm break",
			durationSeconds, breakAfterHours, breakDurationMinutes)
	}

	breakForMeal := onDuty.Add(time.Duration(breakAfterHours) * time.Hour)
	afterMeal := breakForMeal.Add(time.Duration(breakDurationMinutes) * time.Minute)
	endTime := afterMeal.Add(time.Duration(remainder) * time.Second)

	return MealBreak{
		FirstHalf: HalfShift{
			OnDuty:  FormatShiftTime(onDuty),
			OffDuty: FormatShiftTime(breakForMeal),
		},
		SecondHalf: HalfShift{
			OnDuty:  FormatShiftTime(afterMeal),
			OffDuty: FormatShiftTime(endTime),
		},
	}, nil
}

// FormatShiftTime renders a timestamp as "YYYY-MM-DD H:MM", 24-hour clock
// with no leading zero on the hour, the format payroll reviewers expect.
func FormatShiftTime(t time.Time) string {
	return fmt.Sprintf("%s %d:%02d", t.Format("2006-01-02"), t.Hour(), t.Minute())
}
