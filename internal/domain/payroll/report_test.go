package payroll

import (
	"context"
	"strings"
	"testing"
	"time"

	"clubhouse/internal/domain/person"
	"clubhouse/internal/domain/position"
	"clubhouse/internal/domain/timesheet"
)

type fakeShiftSource struct {
	shifts []timesheet.Shift
}

func (f *fakeShiftSource) ShiftsForPeriod(_ context.Context, _ []int64, _, _ time.Time) ([]timesheet.Shift, error) {
	return f.shifts, nil
}

func dirtShift(id int64, who person.Summary, onDuty time.Time, offDuty *time.Time) timesheet.Shift {
	return timesheet.Shift{
		ID:           id,
		PersonID:     who.ID,
		PositionID:   2,
		OnDuty:       onDuty,
		OffDuty:      offDuty,
		ReviewStatus: timesheet.ReviewVerified,
		Person:       who,
		Position:     position.Summary{ID: 2, Title: "Dirt", Paycode: "DIRT"},
	}
}

func timePtr(t time.Time) *time.Time { return &t }

var (
	hubcap = person.Summary{ID: 1, Callsign: "Hubcap", FirstName: "Sam", LastName: "Jones", Email: "sam@example.com", EmployeeID: "E-1"}
	zipper = person.Summary{ID: 2, Callsign: "zipper", FirstName: "Lee", LastName: "Adams", Email: "lee@example.com", EmployeeID: "E-2"}
	anvil  = person.Summary{ID: 3, Callsign: "Anvil", FirstName: "Kim", LastName: "Baker", Email: "kim@example.com"}
)

func TestBuildRejectsInvalidPeriod(t *testing.T) {
	builder := NewReportBuilder(&fakeShiftSource{})
	start := time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)

	if _, err := builder.Build(context.Background(), ReportOptions{Start: start, End: start}); err == nil {
		t.Fatal("expected error for empty period")
	}
	if _, err := builder.Build(context.Background(), ReportOptions{Start: start, End: start.Add(-time.Hour)}); err == nil {
		t.Fatal("expected error for inverted period")
	}
}

func TestBuildMealSplitWithinPeriod(t *testing.T) {
	onDuty := time.Date(2024, 8, 1, 8, 0, 0, 0, time.UTC)
	offDuty := time.Date(2024, 8, 1, 20, 0, 0, 0, time.UTC)
	source := &fakeShiftSource{shifts: []timesheet.Shift{
		dirtShift(100, hubcap, onDuty, timePtr(offDuty)),
	}}

	report, err := NewReportBuilder(source).Build(context.Background(), ReportOptions{
		Start:                onDuty,
		End:                  offDuty,
		BreakAfterHours:      8,
		BreakDurationMinutes: 30,
		PositionIDs:          []int64{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.People) != 1 || len(report.People[0].Shifts) != 1 {
		t.Fatalf("unexpected report shape: %+v", report)
	}
	shift := report.People[0].Shifts[0]

	if shift.Duration != 43200 {
		t.Fatalf("meal split must not change top-level duration, got %d", shift.Duration)
	}
	if shift.Notes != "" {
		t.Fatalf("expected no notes, got %q", shift.Notes)
	}
	if shift.MealAdjusted == nil {
		t.Fatal("expected meal_adjusted")
	}
	if shift.MealAdjusted.FirstHalf.OnDuty != "2024-08-01 8:00" || shift.MealAdjusted.FirstHalf.OffDuty != "2024-08-01 16:00" {
		t.Fatalf("first half: %+v", shift.MealAdjusted.FirstHalf)
	}
	if shift.MealAdjusted.SecondHalf.OnDuty != "2024-08-01 16:30" || shift.MealAdjusted.SecondHalf.OffDuty != "2024-08-01 20:00" {
		t.Fatalf("second half: %+v", shift.MealAdjusted.SecondHalf)
	}
	if !shift.Verified {
		t.Fatal("verified review status must report verified")
	}
}

func TestBuildStillOnDuty(t *testing.T) {
	onDuty := time.Date(2024, 8, 9, 22, 0, 0, 0, time.UTC)
	now := time.Date(2024, 8, 10, 6, 0, 0, 0, time.UTC)
	source := &fakeShiftSource{shifts: []timesheet.Shift{
		dirtShift(101, hubcap, onDuty, nil),
	}}

	report, err := NewReportBuilder(source).WithClock(func() time.Time { return now }).
		Build(context.Background(), ReportOptions{
			Start:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
			End:         time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC),
			PositionIDs: []int64{2},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shift := report.People[0].Shifts[0]
	if !shift.StillOnDuty {
		t.Fatal("expected still_on_duty")
	}
	if !strings.Contains(shift.Notes, "Still on duty") {
		t.Fatalf("expected still-on-duty note, got %q", shift.Notes)
	}
	// Substituted clock runs past the period end, so the end is clipped.
	if shift.OffDuty != "2024-08-10 0:00" {
		t.Fatalf("expected off duty clipped to period end, got %q", shift.OffDuty)
	}
	if !strings.Contains(shift.Notes, "Truncated end time - orig. 2024-08-10 6:00") {
		t.Fatalf("expected truncation note with original time, got %q", shift.Notes)
	}
	if shift.Duration != 2*3600 {
		t.Fatalf("expected 2h clipped duration, got %d", shift.Duration)
	}
}

func TestBuildClipsShiftStartingBeforePeriod(t *testing.T) {
	onDuty := time.Date(2024, 7, 30, 18, 0, 0, 0, time.UTC)
	offDuty := time.Date(2024, 8, 2, 6, 0, 0, 0, time.UTC)
	source := &fakeShiftSource{shifts: []timesheet.Shift{
		dirtShift(102, hubcap, onDuty, timePtr(offDuty)),
	}}

	report, err := NewReportBuilder(source).Build(context.Background(), ReportOptions{
		Start:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC),
		PositionIDs: []int64{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shift := report.People[0].Shifts[0]
	if shift.OnDuty != "2024-08-01 0:00" {
		t.Fatalf("expected on duty clipped to period start, got %q", shift.OnDuty)
	}
	if !strings.Contains(shift.Notes, "Truncated start time - orig. 2024-07-30 18:00") {
		t.Fatalf("expected truncation note with original time, got %q", shift.Notes)
	}
	if shift.OrigOnDuty != "2024-07-30 18:00:00" {
		t.Fatalf("orig_on_duty must keep the unclipped time, got %q", shift.OrigOnDuty)
	}
	if shift.OrigDuration != int64(offDuty.Sub(onDuty).Seconds()) {
		t.Fatalf("orig_duration must be unclipped, got %d", shift.OrigDuration)
	}
	if shift.Duration != int64(offDuty.Sub(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)).Seconds()) {
		t.Fatalf("duration must be recomputed from the clipped interval, got %d", shift.Duration)
	}
}

func TestBuildNoAdjustmentPositionSkipsSplit(t *testing.T) {
	onDuty := time.Date(2024, 8, 1, 8, 0, 0, 0, time.UTC)
	offDuty := time.Date(2024, 8, 1, 20, 0, 0, 0, time.UTC)
	shift := dirtShift(103, hubcap, onDuty, timePtr(offDuty))
	shift.Position.NoPayrollHoursAdjustment = true
	source := &fakeShiftSource{shifts: []timesheet.Shift{shift}}

	report, err := NewReportBuilder(source).Build(context.Background(), ReportOptions{
		Start:                onDuty,
		End:                  offDuty,
		BreakAfterHours:      8,
		BreakDurationMinutes: 30,
		PositionIDs:          []int64{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entry := report.People[0].Shifts[0]
	if entry.MealAdjusted != nil {
		t.Fatal("no-adjustment position must not get a meal split")
	}
	if !strings.HasPrefix(entry.Notes, "Position set to not adjust hours.") {
		t.Fatalf("expected no-adjustment note first, got %q", entry.Notes)
	}
}

func TestBuildZeroBreakThresholdDisablesSplit(t *testing.T) {
	onDuty := time.Date(2024, 8, 1, 8, 0, 0, 0, time.UTC)
	offDuty := time.Date(2024, 8, 1, 20, 0, 0, 0, time.UTC)
	source := &fakeShiftSource{shifts: []timesheet.Shift{
		dirtShift(104, hubcap, onDuty, timePtr(offDuty)),
	}}

	report, err := NewReportBuilder(source).Build(context.Background(), ReportOptions{
		Start:       onDuty,
		End:         offDuty,
		PositionIDs: []int64{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.People[0].Shifts[0].MealAdjusted != nil {
		t.Fatal("break threshold of 0 must disable splitting")
	}
}

func TestBuildNotesUnsplittableLongBreak(t *testing.T) {
	// 9h shift clears the 8h threshold, but a 90m break leaves a negative
	// remainder, so no split can be attached.
	onDuty := time.Date(2024, 8, 1, 8, 0, 0, 0, time.UTC)
	offDuty := time.Date(2024, 8, 1, 17, 0, 0, 0, time.UTC)
	source := &fakeShiftSource{shifts: []timesheet.Shift{
		dirtShift(105, hubcap, onDuty, timePtr(offDuty)),
	}}

	report, err := NewReportBuilder(source).Build(context.Background(), ReportOptions{
		Start:                onDuty,
		End:                  offDuty,
		BreakAfterHours:      8,
		BreakDurationMinutes: 90,
		PositionIDs:          []int64{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shift := report.People[0].Shifts[0]
	if shift.MealAdjusted != nil {
		t.Fatal("expected no meal adjustment for an unsplittable shift")
	}
	if !strings.Contains(shift.Notes, "Shift too short to hold the meal break - no adjustment.") {
		t.Fatalf("expected skipped-split note, got %q", shift.Notes)
	}
}

func TestBuildBucketsAndSortsPeople(t *testing.T) {
	onDuty := time.Date(2024, 8, 1, 8, 0, 0, 0, time.UTC)
	offDuty := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	source := &fakeShiftSource{shifts: []timesheet.Shift{
		dirtShift(1, zipper, onDuty, timePtr(offDuty)),
		dirtShift(2, hubcap, onDuty.Add(time.Hour), timePtr(offDuty)),
		dirtShift(3, anvil, onDuty, timePtr(offDuty)),
	}}

	report, err := NewReportBuilder(source).Build(context.Background(), ReportOptions{
		Start:       time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 8, 2, 0, 0, 0, 0, time.UTC),
		PositionIDs: []int64{2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Case-insensitive callsign order: Hubcap before zipper.
	if len(report.People) != 2 || report.People[0].Callsign != "Hubcap" || report.People[1].Callsign != "zipper" {
		t.Fatalf("unexpected people bucket: %+v", report.People)
	}
	// Anvil has no employee id.
	if len(report.PeopleWithoutIDs) != 1 || report.PeopleWithoutIDs[0].Callsign != "Anvil" {
		t.Fatalf("unexpected people_without_ids bucket: %+v", report.PeopleWithoutIDs)
	}
}
