package onboarding

import (
	"context"
	"fmt"
	"math"
	"time"
)

type Aggregator struct {
	stores    Stores
	snapshots Snapshotter
	rules     Rules
	now       func() time.Time
}

type AggregatorOption func(*Aggregator)

// WithSnapshots makes every computation read through one snapshot.
func WithSnapshots(s Snapshotter) AggregatorOption {
	return func(a *Aggregator) {
		a.snapshots = s
	}
}

func WithRules(rules Rules) AggregatorOption {
	return func(a *Aggregator) {
		a.rules = rules.WithDefaults()
	}
}

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAggregator(stores Stores, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		stores: stores,
		rules:  DefaultRules(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) Rules() Rules {
	return a.rules
}

// ComputeProgress derives an employee's onboarding progress. It returns
// ErrEmployeeNotFound when the identifier does not resolve.
func (a *Aggregator) ComputeProgress(ctx context.Context, employeeID string) (TrainingProgress, error) {
	now := a.now()
	if a.snapshots == nil {
		return computeProgress(ctx, a.stores, a.rules, now, employeeID)
	}

	var progress TrainingProgress
	err := a.snapshots.ReadSnapshot(ctx, func(stores Stores) error {
		var err error
		progress, err = computeProgress(ctx, stores, a.rules, now, employeeID)
		return err
	})
	return progress, err
}

func computeProgress(ctx context.Context, stores Stores, rules Rules, now time.Time, employeeID string) (TrainingProgress, error) {
	emp, err := stores.Employees.EmployeeByID(ctx, employeeID)
	if err != nil {
		return TrainingProgress{}, err
	}

	modules, err := stores.Modules.ModulesByPosition(ctx, emp.Position)
	if err != nil {
		return TrainingProgress{}, fmt.Errorf("load modules for %s: %w", emp.Position, err)
	}
	records, err := stores.Records.TrainingRecords(ctx, employeeID)
	if err != nil {
		return TrainingProgress{}, fmt.Errorf("load training records: %w", err)
	}
	evaluations, err := stores.Evaluations.Evaluations(ctx, employeeID)
	if err != nil {
		return TrainingProgress{}, fmt.Errorf("load evaluations: %w", err)
	}

	totalModules := len(modules)
	completedModules := CountCompleted(records)
	totalScore, averageScore := ScoreSummary(evaluations)
	daysRemaining := DaysRemaining(emp.StartDate, now, rules)

	return TrainingProgress{
		EmployeeID:       employeeID,
		TotalModules:     totalModules,
		CompletedModules: completedModules,
		TotalScore:       totalScore,
		AverageScore:     averageScore,
		DaysRemaining:    daysRemaining,
		Status:           DeriveStatus(completedModules, totalModules, daysRemaining, rules),
	}, nil
}

func CountCompleted(records []TrainingRecord) int {
	completed := 0
	for _, record := range records {
		if record.Status == TrainingStatusCompleted {
			completed++
		}
	}
	return completed
}

// ScoreSummary returns the sum and mean of evaluation scores; the mean is 0
// when there are no evaluations.
func ScoreSummary(evaluations []Evaluation) (total, average float64) {
	for _, evaluation := range evaluations {
		total += evaluation.Score
	}
	if len(evaluations) > 0 {
		average = total / float64(len(evaluations))
	}
	return total, average
}

// DaysRemaining is the ceiling of whole days from now to the end of the
// probation window, never negative.
func DaysRemaining(startDate, now time.Time, rules Rules) int {
	windowEnd := startDate.Add(rules.ProbationWindow())
	remaining := windowEnd.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(float64(remaining) / float64(24*time.Hour)))
}

// DeriveStatus compares completedModules against the ratio threshold as a
// real number: 5 of 7 is not behind (threshold 4.9), 4 of 7 is.
func DeriveStatus(completedModules, totalModules, daysRemaining int, rules Rules) ProgressStatus {
	if completedModules == totalModules {
		return ProgressCompleted
	}
	threshold := float64(totalModules) * rules.BehindCompletionRatio
	if daysRemaining < rules.BehindDaysThreshold && float64(completedModules) < threshold {
		return ProgressBehind
	}
	return ProgressOnTrack
}
