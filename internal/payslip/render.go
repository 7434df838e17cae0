/*
Package payslip - Payslip PDF Renderer

==============================================================================
FILE: internal/payslip/render.go
==============================================================================

DESCRIPTION:
    Renders a one-page payslip PDF from a snapshot.MonthlySalary row only -
    no recomputation, no other table reads. Everything printed here must
    already exist on the row or in its BreakdownJSON payload, so a
    finalized snapshot can always be re-rendered identically.

DEVELOPER GUIDELINES:
    OK to modify: Layout, colors, added line items
    CAUTION: do not read from any source other than the MonthlySalary row
    passed in - that defeats the snapshot's self-contained-document
    guarantee.

==============================================================================
*/
package payslip

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/iris-hr/biopayroll/internal/errors"
	"github.com/iris-hr/biopayroll/internal/snapshot"
)

// Render produces a single-page PDF for one finalized (or draft) monthly
// salary row. employeeName is passed separately since MonthlySalary only
// carries the EmployeeCode natural key.
func Render(row *snapshot.MonthlySalary, employeeName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	headerR, headerG, headerB := 30, 58, 138
	pdf.SetFillColor(headerR, headerG, headerB)
	pdf.Rect(0, 0, 210, 30, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 16)
	pdf.SetXY(10, 8)
	pdf.Cell(120, 8, "SALARY SLIP")
	pdf.SetFont("Arial", "", 9)
	pdf.SetXY(10, 18)
	pdf.Cell(120, 5, fmt.Sprintf("Month: %s", row.Month))

	statusLabel := "DRAFT"
	if row.IsFinalized() {
		statusLabel = "FINALIZED"
	}
	pdf.SetXY(150, 10)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(50, 6, statusLabel)

	pdf.SetTextColor(0, 0, 0)

	pdf.SetXY(10, 36)
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(70, 130, 180)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(190, 7, "EMPLOYEE", "1", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 9)
	y := pdf.GetY() + 1
	pdf.SetXY(10, y)
	pdf.SetFont("Arial", "B", 8)
	pdf.Cell(30, 5, "Employee Code:")
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(60, 5, row.EmployeeCode)
	pdf.SetFont("Arial", "B", 8)
	pdf.Cell(20, 5, "Name:")
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(70, 5, employeeName)

	y += 12
	pdf.SetXY(10, y)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(144, 238, 144)
	pdf.CellFormat(95, 6, "EARNINGS", "1", 0, "L", true, 0, "")
	pdf.SetFillColor(255, 182, 193)
	pdf.CellFormat(95, 6, "DEDUCTIONS", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	y = pdf.GetY()
	earnings := [][2]string{
		{"Attendance pay (" + formatDays(row.PaidDays) + " days)", money(row.NetSalary + row.TotalDeductions - row.TotalAdditions - row.OvertimeAmount)},
		{"Overtime (" + fmt.Sprintf("%dh", row.OvertimeHours) + ")", money(row.OvertimeAmount)},
		{"Incentive", money(row.IncentiveAmount)},
	}
	deductions := [][2]string{
		{"Professional Tax", money(row.ProfessionalTax)},
		{"TDS", money(row.TDSDeduction)},
	}
	rows := len(earnings)
	if len(deductions) > rows {
		rows = len(deductions)
	}
	for i := 0; i < rows; i++ {
		pdf.SetXY(10, y)
		if i < len(earnings) {
			pdf.CellFormat(70, 5, earnings[i][0], "L", 0, "L", false, 0, "")
			pdf.CellFormat(25, 5, earnings[i][1], "R", 0, "R", false, 0, "")
		} else {
			pdf.CellFormat(95, 5, "", "", 0, "", false, 0, "")
		}
		pdf.SetXY(105, y)
		if i < len(deductions) {
			pdf.CellFormat(70, 5, deductions[i][0], "L", 0, "L", false, 0, "")
			pdf.CellFormat(25, 5, deductions[i][1], "R", 0, "R", false, 0, "")
		}
		y += 5
	}

	y += 4
	pdf.SetXY(10, y)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Gross Salary: %s", money(row.GrossSalary)), "T", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Total Deductions: %s", money(row.TotalDeductions)), "T", 0, "L", false, 0, "")

	y += 10
	pdf.SetXY(10, y)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(190, 8, fmt.Sprintf("Net Salary: %s", money(row.NetSalary)))

	if row.IsHeld {
		y += 10
		pdf.SetXY(10, y)
		pdf.SetFont("Arial", "B", 9)
		pdf.SetTextColor(180, 0, 0)
		pdf.Cell(190, 6, fmt.Sprintf("HELD: %s", row.HoldReason))
		pdf.SetTextColor(0, 0, 0)
	}

	if breakdown, err := decodeBreakdown(row); err == nil && len(breakdown.DailyBreakdown) > 0 {
		y += 10
		pdf.SetXY(10, y)
		pdf.SetFont("Arial", "", 8)
		pdf.Cell(190, 5, fmt.Sprintf("Days classified: %d", len(breakdown.DailyBreakdown)))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal)
	}
	return buf.Bytes(), nil
}

// decodeBreakdown unmarshals the row's stored Breakdown payload; Render uses
// it only for the "Days classified" footer line.
func decodeBreakdown(row *snapshot.MonthlySalary) (snapshot.Breakdown, error) {
	var b snapshot.Breakdown
	if len(row.BreakdownJSON) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(row.BreakdownJSON, &b); err != nil {
		return b, errors.Wrap(err, errors.ErrInternal)
	}
	return b, nil
}

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func formatDays(v float64) string { return fmt.Sprintf("%.1f", v) }
