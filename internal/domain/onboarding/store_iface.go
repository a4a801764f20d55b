package onboarding

import (
	"context"
	"time"
)

type EmployeeStore interface {
	EmployeeByID(ctx context.Context, employeeID string) (Employee, error)
}

// ModuleCatalog returns modules ordered by Order ascending.
type ModuleCatalog interface {
	ModulesByPosition(ctx context.Context, position Position) ([]TrainingModule, error)
}

type TrainingRecordStore interface {
	TrainingRecords(ctx context.Context, employeeID string) ([]TrainingRecord, error)
}

type EvaluationStore interface {
	Evaluations(ctx context.Context, employeeID string) ([]Evaluation, error)
}

// Stores bundles the read capabilities the aggregator consumes.
type Stores struct {
	Employees   EmployeeStore
	Modules     ModuleCatalog
	Records     TrainingRecordStore
	Evaluations EvaluationStore
}

// Snapshotter runs fn against a single consistent view of all read stores.
type Snapshotter interface {
	ReadSnapshot(ctx context.Context, fn func(Stores) error) error
}

type Reader interface {
	EmployeeStore
	ModuleCatalog
	TrainingRecordStore
	EvaluationStore
	ListEmployees(ctx context.Context) ([]Employee, error)
	AllEvaluations(ctx context.Context) ([]Evaluation, error)
}

type Writer interface {
	CreateEmployee(ctx context.Context, emp Employee) error
	UpdateEmployeeStatus(ctx context.Context, employeeID string, status EmployeeStatus, updatedAt time.Time) error
	UpsertTrainingRecord(ctx context.Context, record TrainingRecord) (TrainingRecord, error)
	UpsertEvaluations(ctx context.Context, evaluations []Evaluation) error
}

// Repository is implemented by every backend the service can run on.
type Repository interface {
	Reader
	Writer
	Snapshotter
}

func StoresFrom(r Reader) Stores {
	return Stores{Employees: r, Modules: r, Records: r, Evaluations: r}
}
