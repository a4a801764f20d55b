package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/s6816011857053-star/on-boarding/internal/domain/auth"
)

type Service struct {
	repo       Repository
	aggregator *Aggregator
	now        func() time.Time
	newID      func() string
	observer   ProgressObserver
}

// ProgressObserver is notified of every computed progress status.
type ProgressObserver interface {
	ObserveProgress(status string)
}

type ServiceOption func(*Service)

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) ServiceOption {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func WithProgressObserver(observer ProgressObserver) ServiceOption {
	return func(s *Service) {
		s.observer = observer
	}
}

func NewService(repo Repository, rules Rules, opts ...ServiceOption) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.aggregator = NewAggregator(StoresFrom(repo), WithSnapshots(repo), WithRules(rules), WithClock(s.now))
	return s
}

func (s *Service) Aggregator() *Aggregator {
	return s.aggregator
}

// CanView reports whether viewer may see emp: HR sees everyone, trainers and
// managers see the employees assigned to them, employees see themselves.
func CanView(viewer auth.User, emp Employee) bool {
	switch viewer.Role {
	case auth.RoleHR:
		return true
	case auth.RoleTrainer:
		return emp.TrainerID == viewer.ID
	case auth.RoleManager:
		return emp.LineManagerID == viewer.ID
	case auth.RoleEmployee:
		return viewer.EmployeeID != "" && emp.EmployeeID == viewer.EmployeeID
	default:
		return false
	}
}

func (s *Service) ListEmployees(ctx context.Context, viewer auth.User) ([]Employee, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]Employee, 0, len(employees))
	for _, emp := range employees {
		if CanView(viewer, emp) {
			filtered = append(filtered, emp)
		}
	}
	return filtered, nil
}

// visibleEmployee loads an employee and hides it from viewers who may not
// see it, so callers cannot probe for identifiers.
func (s *Service) visibleEmployee(ctx context.Context, viewer auth.User, employeeID string) (Employee, error) {
	emp, err := s.repo.EmployeeByID(ctx, employeeID)
	if err != nil {
		return Employee{}, err
	}
	if !CanView(viewer, emp) {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Service) GetEmployee(ctx context.Context, viewer auth.User, employeeID string) (Employee, error) {
	return s.visibleEmployee(ctx, viewer, employeeID)
}

func (s *Service) Progress(ctx context.Context, viewer auth.User, employeeID string) (TrainingProgress, error) {
	if _, err := s.visibleEmployee(ctx, viewer, employeeID); err != nil {
		return TrainingProgress{}, err
	}
	return s.computeProgress(ctx, employeeID)
}

func (s *Service) computeProgress(ctx context.Context, employeeID string) (TrainingProgress, error) {
	progress, err := s.aggregator.ComputeProgress(ctx, employeeID)
	if err != nil {
		return TrainingProgress{}, err
	}
	if s.observer != nil {
		s.observer.ObserveProgress(string(progress.Status))
	}
	return progress, nil
}

type RegisterEmployeeInput struct {
	EmployeeID       string
	FirstName        string
	LastName         string
	Position         string
	Department       string
	Branch           string
	StartDate        time.Time
	ProbationEndDate time.Time
	TrainerID        string
	LineManagerID    string
}

func (in RegisterEmployeeInput) validate() error {
	var problems []string
	if strings.TrimSpace(in.EmployeeID) == "" {
		problems = append(problems, "employeeId is required")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		problems = append(problems, "firstName and lastName are required")
	}
	if !ValidPosition(in.Position) {
		problems = append(problems, "position is not a known position")
	}
	if !ValidDepartment(in.Department) {
		problems = append(problems, "department is not a known department")
	}
	if !ValidBranch(in.Branch) {
		problems = append(problems, "branch is not a known branch")
	}
	if in.StartDate.IsZero() {
		problems = append(problems, "startDate is required")
	}
	if !in.ProbationEndDate.IsZero() && in.ProbationEndDate.Before(in.StartDate) {
		problems = append(problems, "probationEndDate must not be before startDate")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(problems, "; "))
	}
	return nil
}

// RegisterEmployee adds a new hire in pending status. A missing probation
// end date defaults to the end of the probation window.
func (s *Service) RegisterEmployee(ctx context.Context, viewer auth.User, in RegisterEmployeeInput) (Employee, error) {
	if viewer.Role != auth.RoleHR {
		return Employee{}, ErrForbidden
	}
	if err := in.validate(); err != nil {
		return Employee{}, err
	}

	now := s.now().UTC()
	probationEnd := in.ProbationEndDate
	if probationEnd.IsZero() {
		probationEnd = in.StartDate.Add(s.aggregator.Rules().ProbationWindow())
	}
	emp := Employee{
		ID:               s.newID(),
		EmployeeID:       strings.TrimSpace(in.EmployeeID),
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		Position:         Position(in.Position),
		Department:       in.Department,
		Branch:           in.Branch,
		StartDate:        in.StartDate,
		ProbationEndDate: probationEnd,
		TrainerID:        strings.TrimSpace(in.TrainerID),
		LineManagerID:    strings.TrimSpace(in.LineManagerID),
		Status:           EmployeeStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.CreateEmployee(ctx, emp); err != nil {
		return Employee{}, err
	}
	slog.Info("employee registered", "employeeId", emp.EmployeeID, "position", emp.Position, "by", viewer.ID)
	return emp, nil
}

func findModule(modules []TrainingModule, moduleID string) (TrainingModule, bool) {
	for _, module := range modules {
		if module.ID == moduleID {
			return module, true
		}
	}
	return TrainingModule{}, false
}

// CompleteModule marks a module complete for an employee assigned to the
// trainer, creating the training record when none exists yet.
func (s *Service) CompleteModule(ctx context.Context, viewer auth.User, employeeID, moduleID, notes string) (TrainingRecord, error) {
	if viewer.Role != auth.RoleTrainer {
		return TrainingRecord{}, ErrForbidden
	}
	emp, err := s.visibleEmployee(ctx, viewer, employeeID)
	if err != nil {
		return TrainingRecord{}, err
	}
	modules, err := s.repo.ModulesByPosition(ctx, emp.Position)
	if err != nil {
		return TrainingRecord{}, err
	}
	if _, ok := findModule(modules, moduleID); !ok {
		return TrainingRecord{}, ErrModuleNotFound
	}

	now := s.now().UTC()
	record := TrainingRecord{
		ID:          s.newID(),
		EmployeeID:  emp.EmployeeID,
		ModuleID:    moduleID,
		Status:      TrainingStatusCompleted,
		CompletedAt: &now,
		TrainerID:   viewer.ID,
		Notes:       strings.TrimSpace(notes),
	}
	record, err = s.repo.UpsertTrainingRecord(ctx, record)
	if err != nil {
		return TrainingRecord{}, err
	}

	records, err := s.repo.TrainingRecords(ctx, emp.EmployeeID)
	if err != nil {
		return TrainingRecord{}, err
	}
	next := nextStatusAfterTraining(emp.Status, CountCompleted(records), len(modules))
	if next != emp.Status {
		if err := s.repo.UpdateEmployeeStatus(ctx, emp.EmployeeID, next, now); err != nil {
			return TrainingRecord{}, err
		}
	}
	return record, nil
}

// nextStatusAfterTraining moves an employee forward once training starts or
// finishes. Evaluated employees keep their status.
func nextStatusAfterTraining(current EmployeeStatus, completed, total int) EmployeeStatus {
	if current == EmployeeStatusEvaluated {
		return current
	}
	if total > 0 && completed >= total {
		return EmployeeStatusCompleted
	}
	if current == EmployeeStatusPending {
		return EmployeeStatusInProgress
	}
	return current
}

type EvaluationInput struct {
	ModuleID string
	Score    float64
	Passed   bool
	Comments string
}

// SubmitEvaluations records manager scores for an assigned employee whose
// training is complete. Each module may appear once and its score must lie
// within [0, MaxScore]. The employee becomes evaluated once every module in
// the curriculum has an evaluation.
func (s *Service) SubmitEvaluations(ctx context.Context, viewer auth.User, employeeID string, inputs []EvaluationInput) ([]Evaluation, error) {
	if viewer.Role != auth.RoleManager {
		return nil, ErrForbidden
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one evaluation is required", ErrInvalidInput)
	}
	emp, err := s.visibleEmployee(ctx, viewer, employeeID)
	if err != nil {
		return nil, err
	}
	modules, err := s.repo.ModulesByPosition(ctx, emp.Position)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.TrainingRecords(ctx, emp.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !trainingComplete(modules, records) {
		return nil, fmt.Errorf("%w: %s", ErrTrainingIncomplete, emp.EmployeeID)
	}

	now := s.now().UTC()
	seen := make(map[string]struct{}, len(inputs))
	evaluations := make([]Evaluation, 0, len(inputs))
	for _, in := range inputs {
		module, ok := findModule(modules, in.ModuleID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, in.ModuleID)
		}
		if _, dup := seen[in.ModuleID]; dup {
			return nil, fmt.Errorf("%w: module %s evaluated twice", ErrInvalidInput, in.ModuleID)
		}
		seen[in.ModuleID] = struct{}{}
		if in.Score < 0 || in.Score > module.MaxScore {
			return nil, fmt.Errorf("%w: score for %s must be between 0 and %g", ErrInvalidInput, in.ModuleID, module.MaxScore)
		}
		evaluations = append(evaluations, Evaluation{
			ID:          s.newID(),
			EmployeeID:  emp.EmployeeID,
			ModuleID:    in.ModuleID,
			Score:       in.Score,
			Passed:      in.Passed,
			EvaluatedBy: viewer.ID,
			EvaluatedAt: now,
			Comments:    strings.TrimSpace(in.Comments),
		})
	}

	if err := s.repo.UpsertEvaluations(ctx, evaluations); err != nil {
		return nil, err
	}
	stored, err := s.repo.Evaluations(ctx, emp.EmployeeID)
	if err != nil {
		return nil, err
	}
	if allEvaluated(modules, stored) && emp.Status != EmployeeStatusEvaluated {
		if err := s.repo.UpdateEmployeeStatus(ctx, emp.EmployeeID, EmployeeStatusEvaluated, now); err != nil {
			return nil, err
		}
	}
	slog.Info("evaluations submitted", "employeeId", emp.EmployeeID, "count", len(evaluations), "by", viewer.ID)
	return evaluations, nil
}

// trainingComplete reports whether every curriculum module has a completed
// record.
func trainingComplete(modules []TrainingModule, records []TrainingRecord) bool {
	completed := make(map[string]bool, len(records))
	for _, record := range records {
		if record.Status == TrainingStatusCompleted {
			completed[record.ModuleID] = true
		}
	}
	for _, module := range modules {
		if !completed[module.ID] {
			return false
		}
	}
	return true
}

func allEvaluated(modules []TrainingModule, evaluations []Evaluation) bool {
	evaluated := make(map[string]bool, len(evaluations))
	for _, evaluation := range evaluations {
		evaluated[evaluation.ModuleID] = true
	}
	for _, module := range modules {
		if !evaluated[module.ID] {
			return false
		}
	}
	return true
}

type ModuleProgress struct {
	Module     TrainingModule `json:"module"`
	Status     TrainingStatus `json:"status"`
	Score      *float64       `json:"score,omitempty"`
	Passed     *bool          `json:"passed,omitempty"`
	Evaluation *Evaluation    `json:"evaluation,omitempty"`
}

type Dashboard struct {
	Employee     Employee         `json:"employee"`
	PositionName string           `json:"positionName"`
	Modules      []ModuleProgress `json:"modules"`
	Progress     TrainingProgress `json:"progress"`
}

// EmployeeDashboard assembles the per-module view and overall progress for one
// employee. Modules without a training record report pending.
func (s *Service) EmployeeDashboard(ctx context.Context, viewer auth.User, employeeID string) (Dashboard, error) {
	emp, err := s.visibleEmployee(ctx, viewer, employeeID)
	if err != nil {
		return Dashboard{}, err
	}

	now := s.now()
	var dash Dashboard
	err = s.repo.ReadSnapshot(ctx, func(stores Stores) error {
		modules, err := stores.Modules.ModulesByPosition(ctx, emp.Position)
		if err != nil {
			return err
		}
		records, err := stores.Records.TrainingRecords(ctx, emp.EmployeeID)
		if err != nil {
			return err
		}
		evaluations, err := stores.Evaluations.Evaluations(ctx, emp.EmployeeID)
		if err != nil {
			return err
		}
		progress, err := computeProgress(ctx, stores, s.aggregator.Rules(), now, emp.EmployeeID)
		if err != nil {
			return err
		}
		dash = Dashboard{
			Employee:     emp,
			PositionName: PositionName(emp.Position),
			Modules:      buildModuleProgress(modules, records, evaluations),
			Progress:     progress,
		}
		return nil
	})
	if err != nil {
		return Dashboard{}, err
	}
	if s.observer != nil {
		s.observer.ObserveProgress(string(dash.Progress.Status))
	}
	return dash, nil
}

func buildModuleProgress(modules []TrainingModule, records []TrainingRecord, evaluations []Evaluation) []ModuleProgress {
	recordByModule := make(map[string]TrainingRecord, len(records))
	for _, record := range records {
		recordByModule[record.ModuleID] = record
	}
	evaluationByModule := make(map[string]Evaluation, len(evaluations))
	for _, evaluation := range evaluations {
		evaluationByModule[evaluation.ModuleID] = evaluation
	}

	out := make([]ModuleProgress, 0, len(modules))
	for _, module := range modules {
		item := ModuleProgress{Module: module, Status: TrainingStatusPending}
		if record, ok := recordByModule[module.ID]; ok {
			item.Status = record.Status
			item.Score = record.Score
		}
		if evaluation, ok := evaluationByModule[module.ID]; ok {
			score := evaluation.Score
			passed := evaluation.Passed
			item.Score = &score
			item.Passed = &passed
			item.Evaluation = &evaluation
		}
		out = append(out, item)
	}
	return out
}

// Modules returns the ordered curriculum for a position.
func (s *Service) Modules(ctx context.Context, position Position) ([]TrainingModule, error) {
	if !ValidPosition(string(position)) {
		return nil, fmt.Errorf("%w: unknown position %q", ErrInvalidInput, position)
	}
	return s.repo.ModulesByPosition(ctx, position)
}

// ProgressBreakdown counts every employee by current progress status. It
// bypasses the observer so periodic sweeps do not inflate request metrics.
func (s *Service) ProgressBreakdown(ctx context.Context) (map[ProgressStatus]int, error) {
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	counts := map[ProgressStatus]int{
		ProgressOnTrack:   0,
		ProgressBehind:    0,
		ProgressCompleted: 0,
	}
	for _, emp := range employees {
		progress, err := s.aggregator.ComputeProgress(ctx, emp.EmployeeID)
		if err != nil {
			return nil, fmt.Errorf("progress for %s: %w", emp.EmployeeID, err)
		}
		counts[progress.Status]++
	}
	return counts, nil
}
