package onboarding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fixtureStores struct {
	employees   map[string]Employee
	modules     map[Position][]TrainingModule
	records     map[string][]TrainingRecord
	evaluations map[string][]Evaluation
	reads       int
}

func (f *fixtureStores) EmployeeByID(_ context.Context, employeeID string) (Employee, error) {
	emp, ok := f.employees[employeeID]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fixtureStores) ModulesByPosition(_ context.Context, position Position) ([]TrainingModule, error) {
	f.reads++
	return f.modules[position], nil
}

func (f *fixtureStores) TrainingRecords(_ context.Context, employeeID string) ([]TrainingRecord, error) {
	f.reads++
	return f.records[employeeID], nil
}

func (f *fixtureStores) Evaluations(_ context.Context, employeeID string) ([]Evaluation, error) {
	f.reads++
	return f.evaluations[employeeID], nil
}

func (f *fixtureStores) stores() Stores {
	return Stores{Employees: f, Modules: f, Records: f, Evaluations: f}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func modulesFor(position Position, n int) []TrainingModule {
	modules := make([]TrainingModule, 0, n)
	for i := 1; i <= n; i++ {
		modules = append(modules, TrainingModule{
			ID:       fmt.Sprintf("%s_%d", position, i),
			Position: position,
			Title:    fmt.Sprintf("Module %d", i),
			MaxScore: 10,
			Order:    i,
		})
	}
	return modules
}

func completedRecords(employeeID string, position Position, n int) []TrainingRecord {
	records := make([]TrainingRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, TrainingRecord{
			ID:         fmt.Sprintf("r%d", i),
			EmployeeID: employeeID,
			ModuleID:   fmt.Sprintf("%s_%d", position, i),
			Status:     TrainingStatusCompleted,
		})
	}
	return records
}

var today = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func TestComputeProgressScenarioA(t *testing.T) {
	f := &fixtureStores{
		employees: map[string]Employee{
			"EMP001": {EmployeeID: "EMP001", Position: PositionServer, StartDate: today.AddDate(0, 0, -90)},
		},
		modules: map[Position][]TrainingModule{PositionServer: modulesFor(PositionServer, 10)},
		records: map[string][]TrainingRecord{"EMP001": completedRecords("EMP001", PositionServer, 2)},
		evaluations: map[string][]Evaluation{"EMP001": {
			{EmployeeID: "EMP001", ModuleID: "server_1", Score: 8, Passed: true},
			{EmployeeID: "EMP001", ModuleID: "server_2", Score: 9, Passed: true},
		}},
	}
	agg := NewAggregator(f.stores(), WithClock(fixedClock(today)))

	got, err := agg.ComputeProgress(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := TrainingProgress{
		EmployeeID:       "EMP001",
		TotalModules:     10,
		CompletedModules: 2,
		TotalScore:       17,
		AverageScore:     8.5,
		DaysRemaining:    0,
		Status:           ProgressBehind,
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestComputeProgressScenarioB(t *testing.T) {
	for _, start := range []time.Time{today, today.AddDate(0, 0, -200)} {
		f := &fixtureStores{
			employees: map[string]Employee{
				"EMP002": {EmployeeID: "EMP002", Position: PositionCookHelper, StartDate: start},
			},
			modules: map[Position][]TrainingModule{PositionCookHelper: modulesFor(PositionCookHelper, 10)},
			records: map[string][]TrainingRecord{"EMP002": completedRecords("EMP002", PositionCookHelper, 10)},
		}
		agg := NewAggregator(f.stores(), WithClock(fixedClock(today)))
		got, err := agg.ComputeProgress(context.Background(), "EMP002")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status != ProgressCompleted {
			t.Fatalf("start %s: expected completed, got %s", start.Format("2006-01-02"), got.Status)
		}
	}
}

func TestComputeProgressScenarioCNotFound(t *testing.T) {
	f := &fixtureStores{employees: map[string]Employee{}}
	agg := NewAggregator(f.stores(), WithClock(fixedClock(today)))

	_, err := agg.ComputeProgress(context.Background(), "EMP404")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
	if f.reads != 0 {
		t.Fatalf("expected no further reads after a miss, got %d", f.reads)
	}
}

func TestComputeProgressWithoutEvaluations(t *testing.T) {
	f := &fixtureStores{
		employees: map[string]Employee{
			"EMP003": {EmployeeID: "EMP003", Position: PositionServer, StartDate: today},
		},
		modules: map[Position][]TrainingModule{PositionServer: modulesFor(PositionServer, 10)},
	}
	agg := NewAggregator(f.stores(), WithClock(fixedClock(today)))

	got, err := agg.ComputeProgress(context.Background(), "EMP003")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AverageScore != 0 || got.TotalScore != 0 {
		t.Fatalf("expected zero scores, got total %v average %v", got.TotalScore, got.AverageScore)
	}
	if got.DaysRemaining != 90 {
		t.Fatalf("expected 90 days remaining on day one, got %d", got.DaysRemaining)
	}
	if got.Status != ProgressOnTrack {
		t.Fatalf("expected on_track, got %s", got.Status)
	}
}

func TestComputeProgressEmptyCatalogIsCompleted(t *testing.T) {
	f := &fixtureStores{
		employees: map[string]Employee{
			"EMP004": {EmployeeID: "EMP004", Position: Position("bartender"), StartDate: today.AddDate(0, 0, -80)},
		},
	}
	agg := NewAggregator(f.stores(), WithClock(fixedClock(today)))

	got, err := agg.ComputeProgress(context.Background(), "EMP004")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalModules != 0 || got.Status != ProgressCompleted {
		t.Fatalf("expected completed with zero modules, got %+v", got)
	}
}

func TestComputeProgressIsIdempotent(t *testing.T) {
	store := NewMemoryStore(DemoDataset())
	agg := NewAggregator(StoresFrom(store), WithSnapshots(store), WithClock(fixedClock(today)))

	first, err := agg.ComputeProgress(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := agg.ComputeProgress(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if first.TotalModules != 10 || first.CompletedModules != 2 || first.AverageScore != 8.5 {
		t.Fatalf("unexpected demo progress: %+v", first)
	}
}

type countingSnapshotter struct {
	stores Stores
	calls  int
}

func (c *countingSnapshotter) ReadSnapshot(_ context.Context, fn func(Stores) error) error {
	c.calls++
	return fn(c.stores)
}

func TestComputeProgressReadsThroughSnapshot(t *testing.T) {
	f := &fixtureStores{
		employees: map[string]Employee{
			"EMP001": {EmployeeID: "EMP001", Position: PositionServer, StartDate: today},
		},
		modules: map[Position][]TrainingModule{PositionServer: modulesFor(PositionServer, 3)},
	}
	snap := &countingSnapshotter{stores: f.stores()}
	agg := NewAggregator(Stores{}, WithSnapshots(snap), WithClock(fixedClock(today)))

	got, err := agg.ComputeProgress(context.Background(), "EMP001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.calls != 1 {
		t.Fatalf("expected one snapshot, got %d", snap.calls)
	}
	if got.TotalModules != 3 {
		t.Fatalf("expected 3 modules, got %d", got.TotalModules)
	}
}

func TestDaysRemaining(t *testing.T) {
	rules := DefaultRules()
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	windowEnd := start.AddDate(0, 0, 90)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "start day", now: start, want: 90},
		{name: "partial day rounds up", now: windowEnd.Add(-25 * time.Hour), want: 2},
		{name: "one second left", now: windowEnd.Add(-time.Second), want: 1},
		{name: "window end", now: windowEnd, want: 0},
		{name: "past window", now: windowEnd.AddDate(0, 0, 40), want: 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysRemaining(start, tc.now, rules); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestDeriveStatus(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		name          string
		completed     int
		total         int
		daysRemaining int
		want          ProgressStatus
	}{
		{name: "all complete", completed: 7, total: 7, daysRemaining: 0, want: ProgressCompleted},
		{name: "empty catalog", completed: 0, total: 0, daysRemaining: 5, want: ProgressCompleted},
		{name: "five of seven is above ratio", completed: 5, total: 7, daysRemaining: 10, want: ProgressOnTrack},
		{name: "four of seven is below ratio", completed: 4, total: 7, daysRemaining: 10, want: ProgressBehind},
		{name: "plenty of time", completed: 0, total: 10, daysRemaining: 30, want: ProgressOnTrack},
		{name: "just inside threshold", completed: 6, total: 10, daysRemaining: 29, want: ProgressBehind},
		{name: "exactly at ratio", completed: 7, total: 10, daysRemaining: 29, want: ProgressOnTrack},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.completed, tc.total, tc.daysRemaining, rules); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCustomRules(t *testing.T) {
	rules := Rules{ProbationDays: 60, BehindDaysThreshold: 10, BehindCompletionRatio: 0.5}.WithDefaults()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := DaysRemaining(start, start.AddDate(0, 0, 55), rules); got != 5 {
		t.Fatalf("expected 5 days remaining, got %d", got)
	}
	if got := DeriveStatus(5, 10, 5, rules); got != ProgressOnTrack {
		t.Fatalf("expected on_track at exactly half, got %s", got)
	}
	if got := DeriveStatus(4, 10, 5, rules); got != ProgressBehind {
		t.Fatalf("expected behind, got %s", got)
	}

	partial := Rules{ProbationDays: 45}.WithDefaults()
	if partial.BehindDaysThreshold != DefaultBehindDaysThreshold || partial.BehindCompletionRatio != DefaultBehindCompletionRatio {
		t.Fatalf("expected zero fields to take defaults, got %+v", partial)
	}
}
