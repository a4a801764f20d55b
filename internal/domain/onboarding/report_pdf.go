package onboarding

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderProgressPDF writes a one-page progress report for a dashboard.
func RenderProgressPDF(w io.Writer, dash Dashboard, generatedAt time.Time) error {
	emp := dash.Employee
	progress := dash.Progress

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Onboarding progress "+emp.EmployeeID, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Onboarding Progress")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", emp.FullName(), emp.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Position: %s", dash.PositionName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Department: %s, Branch: %s", emp.Department, emp.Branch))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Probation: %s to %s", emp.StartDate.Format("2006-01-02"), emp.ProbationEndDate.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Status: %s", progress.Status))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Modules completed: %d / %d", progress.CompletedModules, progress.TotalModules))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Average score: %.1f", progress.AverageScore))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Days remaining: %d", progress.DaysRemaining))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(12, 8, "#", "1", 0, "C", false, 0, "")
	pdf.CellFormat(110, 8, "Module", "1", 0, "L", false, 0, "")
	pdf.CellFormat(34, 8, "Status", "1", 0, "L", false, 0, "")
	pdf.CellFormat(24, 8, "Score", "1", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range dash.Modules {
		score := "-"
		if item.Score != nil {
			score = fmt.Sprintf("%.1f / %.0f", *item.Score, item.Module.MaxScore)
		}
		pdf.CellFormat(12, 7, fmt.Sprintf("%d", item.Module.Order), "1", 0, "C", false, 0, "")
		pdf.CellFormat(110, 7, item.Module.Title, "1", 0, "L", false, 0, "")
		pdf.CellFormat(34, 7, string(item.Status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(24, 7, score, "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format(time.RFC3339))

	return pdf.Output(w)
}
