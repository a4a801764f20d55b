package onboarding

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps every collection in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data memoryView
}

// memoryView holds the collections without locking; callers hold mu.
type memoryView struct {
	modules     []TrainingModule
	employees   []Employee
	records     []TrainingRecord
	evaluations []Evaluation
}

func NewMemoryStore(ds Dataset) *MemoryStore {
	return &MemoryStore{data: memoryView{
		modules:     append([]TrainingModule(nil), ds.Modules...),
		employees:   append([]Employee(nil), ds.Employees...),
		records:     append([]TrainingRecord(nil), ds.Records...),
		evaluations: append([]Evaluation(nil), ds.Evaluations...),
	}}
}

func (s *MemoryStore) ReadSnapshot(_ context.Context, fn func(Stores) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(StoresFrom(&s.data))
}

func (s *MemoryStore) EmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.EmployeeByID(ctx, employeeID)
}

func (s *MemoryStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ListEmployees(ctx)
}

func (s *MemoryStore) ModulesByPosition(ctx context.Context, position Position) ([]TrainingModule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ModulesByPosition(ctx, position)
}

func (s *MemoryStore) TrainingRecords(ctx context.Context, employeeID string) ([]TrainingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.TrainingRecords(ctx, employeeID)
}

func (s *MemoryStore) Evaluations(ctx context.Context, employeeID string) ([]Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Evaluations(ctx, employeeID)
}

func (s *MemoryStore) AllEvaluations(ctx context.Context) ([]Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.AllEvaluations(ctx)
}

func (s *MemoryStore) CreateEmployee(_ context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.employees {
		if existing.EmployeeID == emp.EmployeeID {
			return ErrDuplicateEmployee
		}
	}
	s.data.employees = append(s.data.employees, emp)
	return nil
}

func (s *MemoryStore) UpdateEmployeeStatus(_ context.Context, employeeID string, status EmployeeStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.employees {
		if s.data.employees[i].EmployeeID == employeeID {
			s.data.employees[i].Status = status
			s.data.employees[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return ErrEmployeeNotFound
}

// UpsertTrainingRecord updates the record for the same employee and module,
// keeping its ID and any score, evaluator or notes the incoming record leaves
// empty. It returns the record as stored.
func (s *MemoryStore) UpsertTrainingRecord(_ context.Context, record TrainingRecord) (TrainingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.data.records {
		existing := s.data.records[i]
		if existing.EmployeeID == record.EmployeeID && existing.ModuleID == record.ModuleID {
			merged := mergeTrainingRecord(existing, record)
			s.data.records[i] = merged
			return merged, nil
		}
	}
	s.data.records = append(s.data.records, record)
	return record, nil
}

func mergeTrainingRecord(existing, incoming TrainingRecord) TrainingRecord {
	incoming.ID = existing.ID
	if incoming.Score == nil {
		incoming.Score = existing.Score
	}
	if incoming.EvaluatedBy == "" {
		incoming.EvaluatedBy = existing.EvaluatedBy
	}
	if incoming.EvaluatedAt == nil {
		incoming.EvaluatedAt = existing.EvaluatedAt
	}
	if incoming.Notes == "" {
		incoming.Notes = existing.Notes
	}
	return incoming
}

// UpsertEvaluations replaces any evaluation for the same employee and module.
func (s *MemoryStore) UpsertEvaluations(_ context.Context, evaluations []Evaluation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, evaluation := range evaluations {
		replaced := false
		for i := range s.data.evaluations {
			existing := s.data.evaluations[i]
			if existing.EmployeeID == evaluation.EmployeeID && existing.ModuleID == evaluation.ModuleID {
				evaluation.ID = existing.ID
				s.data.evaluations[i] = evaluation
				replaced = true
				break
			}
		}
		if !replaced {
			s.data.evaluations = append(s.data.evaluations, evaluation)
		}
	}
	return nil
}

func (v *memoryView) EmployeeByID(_ context.Context, employeeID string) (Employee, error) {
	for _, emp := range v.employees {
		if emp.EmployeeID == employeeID {
			return emp, nil
		}
	}
	return Employee{}, ErrEmployeeNotFound
}

func (v *memoryView) ListEmployees(_ context.Context) ([]Employee, error) {
	return append([]Employee(nil), v.employees...), nil
}

func (v *memoryView) ModulesByPosition(_ context.Context, position Position) ([]TrainingModule, error) {
	var out []TrainingModule
	for _, module := range v.modules {
		if module.Position == position {
			out = append(out, module)
		}
	}
	sortModules(out)
	return out, nil
}

func (v *memoryView) TrainingRecords(_ context.Context, employeeID string) ([]TrainingRecord, error) {
	var out []TrainingRecord
	for _, record := range v.records {
		if record.EmployeeID == employeeID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (v *memoryView) Evaluations(_ context.Context, employeeID string) ([]Evaluation, error) {
	var out []Evaluation
	for _, evaluation := range v.evaluations {
		if evaluation.EmployeeID == employeeID {
			out = append(out, evaluation)
		}
	}
	return out, nil
}

func (v *memoryView) AllEvaluations(_ context.Context) ([]Evaluation, error) {
	return append([]Evaluation(nil), v.evaluations...), nil
}
