package payroll

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// WriteCSV renders the report as a flat CSV, one row per shift, people with
// employee ids first.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := []string{"callsign", "first_name", "last_name", "employee_id",
		"position", "paycode", "on_duty", "off_duty", "duration", "verified", "notes"}
	if err := cw.Write(header); err != nil {
		return err
	}

	writeGroups := func(groups []PersonGroup) error {
		for _, group := range groups {
			for _, shift := range group.Shifts {
				record := []string{
					group.Callsign,
					group.FirstName,
					group.LastName,
					group.EmployeeID,
					shift.PositionTitle,
					shift.Paycode,
					shift.OnDuty,
					shift.OffDuty,
					strconv.FormatInt(shift.Duration, 10),
					strconv.FormatBool(shift.Verified),
					shift.Notes,
				}
				if err := cw.Write(record); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := writeGroups(r.People); err != nil {
		return err
	}
	if err := writeGroups(r.PeopleWithoutIDs); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WritePDF renders the report for payroll review.
func (r *Report) WritePDF(w io.Writer, periodLabel string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(60, 10, "Payroll Report")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, periodLabel)
	pdf.Ln(10)

	writeGroups := func(title string, groups []PersonGroup) {
		if len(groups) == 0 {
			return
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 8, title)
		pdf.Ln(8)
		for _, group := range groups {
			pdf.SetFont("Helvetica", "B", 9)
			name := fmt.Sprintf("%s - %s %s", group.Callsign, group.FirstName, group.LastName)
			if group.EmployeeID != "" {
				name += fmt.Sprintf(" (%s)", group.EmployeeID)
			}
			pdf.Cell(0, 6, name)
			pdf.Ln(6)
			pdf.SetFont("Helvetica", "", 9)
			for _, shift := range group.Shifts {
				pdf.Cell(0, 5, fmt.Sprintf("%s  %s to %s  %s  %ds",
					shift.PositionTitle, shift.OnDuty, shift.OffDuty, shift.Paycode, shift.Duration))
				pdf.Ln(5)
				if shift.MealAdjusted != nil {
					pdf.Cell(0, 5, fmt.Sprintf("  meal split: %s-%s / %s-%s",
						shift.MealAdjusted.FirstHalf.OnDuty, shift.MealAdjusted.FirstHalf.OffDuty,
						shift.MealAdjusted.SecondHalf.OnDuty, shift.MealAdjusted.SecondHalf.OffDuty))
					pdf.Ln(5)
				}
				if shift.Notes != "" {
					pdf.Cell(0, 5, "  "+strings.ReplaceAll(shift.Notes, "\n", "; "))
					pdf.Ln(5)
				}
			}
			pdf.Ln(2)
		}
	}

	writeGroups("People", r.People)
	writeGroups("Missing employee ids", r.PeopleWithoutIDs)
	return pdf.Output(w)
}
