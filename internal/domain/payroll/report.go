package payroll

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"clubhouse/internal/domain/timesheet"
)

type ShiftSource interface {
	ShiftsForPeriod(ctx context.Context, positionIDs []int64, start, end time.Time) ([]timesheet.Shift, error)
}

// ReportBuilder assembles the payroll report for a pay period: shifts are
// clipped to the period, long shifts get a meal-break split attached, and
// people are grouped by whether payroll has an employee id on file.
type ReportBuilder struct {
	shifts ShiftSource
	now    func() time.Time
}

func NewReportBuilder(shifts ShiftSource) *ReportBuilder {
	return &ReportBuilder{shifts: shifts, now: time.Now}
}

// WithClock overrides the report's notion of "now", used when a shift has
// no off-duty time yet.
func (b *ReportBuilder) WithClock(now func() time.Time) *ReportBuilder {
	b.now = now
	return b
}

func (b *ReportBuilder) Build(ctx context.Context, opts ReportOptions) (*Report, error) {
	if !opts.End.After(opts.Start) {
		return nil, fmt.Errorf("report period end %s must be after start %s",
			opts.End.Format(time.RFC3339), opts.Start.Format(time.RFC3339))
	}

	shifts, err := b.shifts.ShiftsForPeriod(ctx, opts.PositionIDs, opts.Start, opts.End)
	if err != nil {
		return nil, err
	}

	groups := map[int64]*PersonGroup{}
	var order []int64
	for _, entry := range shifts {
		group, ok := groups[entry.PersonID]
		if !ok {
			group = &PersonGroup{
				ID:         entry.Person.ID,
				Callsign:   entry.Person.Callsign,
				FirstName:  entry.Person.FirstName,
				LastName:   entry.Person.LastName,
				Email:      entry.Person.Email,
				EmployeeID: entry.Person.EmployeeID,
			}
			groups[entry.PersonID] = group
			order = append(order, entry.PersonID)
		}
		group.Shifts = append(group.Shifts, b.buildShift(entry, opts))
	}

	report := &Report{
		People:           []PersonGroup{},
		PeopleWithoutIDs: []PersonGroup{},
	}
	for _, personID := range order {
		group := groups[personID]
		if group.EmployeeID != "" {
			report.People = append(report.People, *group)
		} else {
			report.PeopleWithoutIDs = append(report.PeopleWithoutIDs, *group)
		}
	}

	sortByCallsign(report.People)
	sortByCallsign(report.PeopleWithoutIDs)
	return report, nil
}

func sortByCallsign(groups []PersonGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return strings.ToLower(groups[i].Callsign) < strings.ToLower(groups[j].Callsign)
	})
}

func (b *ReportBuilder) buildShift(entry timesheet.Shift, opts ReportOptions) ShiftEntry {
	var notes []string

	onDuty := entry.OnDuty
	stillOnDuty := entry.OffDuty == nil
	var offDuty time.Time
	if stillOnDuty {
		offDuty = b.now()
	} else {
		offDuty = *entry.OffDuty
	}

	// Original times and duration are always reported, before any clipping.
	shift := ShiftEntry{
		ID:            entry.ID,
		PositionID:    entry.Position.ID,
		PositionTitle: entry.Position.Title,
		Paycode:       entry.Position.Paycode,
		Verified:      entry.Verified(),
		OrigOnDuty:    onDuty.Format("2006-01-02 15:04:05"),
		OrigOffDuty:   offDuty.Format("2006-01-02 15:04:05"),
		OrigDuration:  int64(offDuty.Sub(onDuty).Seconds()),
	}

	if stillOnDuty {
		shift.StillOnDuty = true
		notes = append(notes, "Still on duty")
	}

	if opts.Start.After(onDuty) {
		notes = append(notes, "Truncated start time - orig. "+FormatShiftTime(onDuty))
		onDuty = opts.Start
	}

	if offDuty.After(opts.End) {
		notes = append(notes, "Truncated end time - orig. "+FormatShiftTime(offDuty))
		offDuty = opts.End
	}

	durationSeconds := int(offDuty.Sub(onDuty).Seconds())
	shift.Duration = int64(durationSeconds)
	shift.OnDuty = FormatShiftTime(onDuty)
	shift.OffDuty = FormatShiftTime(offDuty)

	if entry.Position.NoPayrollHoursAdjustment {
		notes = append([]string{"Position set to not adjust hours."}, notes...)
	} else if opts.BreakAfterHours > 0 {
		hoursRoundedDown := durationSeconds / 3600
		if hoursRoundedDown > opts.BreakAfterHours {
			meal, err := SplitAtMealBreak(onDuty, durationSeconds, opts.BreakAfterHours, opts.BreakDurationMinutes)
			if err != nil {
				// A break longer than the post-threshold remainder cannot
				// be split; say so instead of dropping it silently.
				notes = append(notes, "Shift too short to hold the meal break - no adjustment.")
			} else {
				// Supplementary detail for payroll review; the top-level
				// duration stays untouched.
				shift.MealAdjusted = &meal
			}
		}
	}

	shift.Notes = strings.Join(notes, "\n")
	return shift
}
