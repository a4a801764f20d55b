package onboarding

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
)

type ReportFilter struct {
	Department string
	Branch     string
	Position   string
}

func (f ReportFilter) matches(emp Employee) bool {
	if f.Department != "" && !strings.EqualFold(f.Department, emp.Department) {
		return false
	}
	if f.Branch != "" && !strings.EqualFold(f.Branch, emp.Branch) {
		return false
	}
	if f.Position != "" && string(emp.Position) != f.Position {
		return false
	}
	return true
}

type GroupStats struct {
	Total        int     `json:"total"`
	Evaluated    int     `json:"evaluated"`
	AverageScore float64 `json:"averageScore"`
}

type EmployeeReportRow struct {
	EmployeeID     string         `json:"employeeId"`
	Name           string         `json:"name"`
	Position       Position       `json:"position"`
	PositionName   string         `json:"positionName"`
	Department     string         `json:"department"`
	Branch         string         `json:"branch"`
	Status         EmployeeStatus `json:"status"`
	PassedModules  int            `json:"passedModules"`
	TotalModules   int            `json:"totalModules"`
	AverageScore   float64        `json:"averageScore"`
	ProgressStatus ProgressStatus `json:"progressStatus"`
	DaysRemaining  int            `json:"daysRemaining"`
}

// Summary covers every employee the viewer can see. Group stats and counts
// ignore the filter; only Employees is narrowed by it.
type Summary struct {
	GeneratedAt    time.Time              `json:"generatedAt"`
	TotalEmployees int                    `json:"totalEmployees"`
	Evaluated      int                    `json:"evaluated"`
	NotEvaluated   int                    `json:"notEvaluated"`
	StatusCounts   map[EmployeeStatus]int `json:"statusCounts"`
	Departments    map[string]GroupStats  `json:"departments"`
	Branches       map[string]GroupStats  `json:"branches"`
	Employees      []EmployeeReportRow    `json:"employees"`
}

func (s *Service) ReportSummary(ctx context.Context, viewer auth.User, filter ReportFilter) (Summary, error) {
	if viewer.Role != auth.RoleHR && viewer.Role != auth.RoleManager {
		return Summary{}, ErrForbidden
	}
	employees, err := s.ListEmployees(ctx, viewer)
	if err != nil {
		return Summary{}, err
	}
	all, err := s.repo.AllEvaluations(ctx)
	if err != nil {
		return Summary{}, err
	}
	byEmployee := make(map[string][]Evaluation)
	for _, evaluation := range all {
		byEmployee[evaluation.EmployeeID] = append(byEmployee[evaluation.EmployeeID], evaluation)
	}

	summary := Summary{
		GeneratedAt:  s.now().UTC(),
		StatusCounts: make(map[EmployeeStatus]int, len(EmployeeStatuses)),
		Departments:  make(map[string]GroupStats),
		Branches:     make(map[string]GroupStats),
		Employees:    []EmployeeReportRow{},
	}
	for _, status := range EmployeeStatuses {
		summary.StatusCounts[status] = 0
	}

	departmentTotals := make(map[string]float64)
	branchTotals := make(map[string]float64)
	for _, emp := range employees {
		evaluations := byEmployee[emp.EmployeeID]
		_, average := ScoreSummary(evaluations)
		evaluated := len(evaluations) > 0

		summary.TotalEmployees++
		summary.StatusCounts[emp.Status]++
		if evaluated {
			summary.Evaluated++
		} else {
			summary.NotEvaluated++
		}
		addToGroup(summary.Departments, departmentTotals, emp.Department, evaluated, average)
		addToGroup(summary.Branches, branchTotals, emp.Branch, evaluated, average)

		if !filter.matches(emp) {
			continue
		}
		progress, err := s.computeProgress(ctx, emp.EmployeeID)
		if err != nil {
			return Summary{}, err
		}
		summary.Employees = append(summary.Employees, EmployeeReportRow{
			EmployeeID:     emp.EmployeeID,
			Name:           emp.FullName(),
			Position:       emp.Position,
			PositionName:   PositionName(emp.Position),
			Department:     emp.Department,
			Branch:         emp.Branch,
			Status:         emp.Status,
			PassedModules:  countPassed(evaluations),
			TotalModules:   progress.TotalModules,
			AverageScore:   average,
			ProgressStatus: progress.Status,
			DaysRemaining:  progress.DaysRemaining,
		})
	}

	finishGroups(summary.Departments, departmentTotals)
	finishGroups(summary.Branches, branchTotals)
	sort.Slice(summary.Employees, func(i, j int) bool {
		return summary.Employees[i].EmployeeID < summary.Employees[j].EmployeeID
	})
	return summary, nil
}

func countPassed(evaluations []Evaluation) int {
	passed := 0
	for _, evaluation := range evaluations {
		if evaluation.Passed {
			passed++
		}
	}
	return passed
}

func addToGroup(groups map[string]GroupStats, totals map[string]float64, key string, evaluated bool, average float64) {
	stats := groups[key]
	stats.Total++
	if evaluated {
		stats.Evaluated++
		totals[key] += average
	}
	groups[key] = stats
}

// finishGroups turns summed per-employee averages into the mean over
// evaluated employees.
func finishGroups(groups map[string]GroupStats, totals map[string]float64) {
	for key, stats := range groups {
		if stats.Evaluated > 0 {
			stats.AverageScore = totals[key] / float64(stats.Evaluated)
			groups[key] = stats
		}
	}
}
