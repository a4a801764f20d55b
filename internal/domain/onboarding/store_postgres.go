package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/s6816011857053-star/on-boarding/internal/platform/querier"
)

const pgUniqueViolation = "23505"

type PostgresStore struct {
	DB *pgxpool.Pool
	pgView
}

// pgView runs reads against either the pool or an open transaction.
type pgView struct {
	q querier.Querier
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{DB: pool, pgView: pgView{q: pool}}
}

// ReadSnapshot runs fn inside a read-only repeatable-read transaction so the
// employee, training record and evaluation reads observe one snapshot.
func (s *PostgresStore) ReadSnapshot(ctx context.Context, fn func(Stores) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("begin snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(StoresFrom(&pgView{q: tx})); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const employeeColumns = `
    id, employee_id, first_name, last_name, position, department, branch,
    start_date, probation_end_date, trainer_id, line_manager_id, status, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	var position, status string
	err := row.Scan(&emp.ID, &emp.EmployeeID, &emp.FirstName, &emp.LastName, &position, &emp.Department, &emp.Branch,
		&emp.StartDate, &emp.ProbationEndDate, &emp.TrainerID, &emp.LineManagerID, &status, &emp.CreatedAt, &emp.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	emp.Position = Position(position)
	emp.Status = EmployeeStatus(status)
	return emp, nil
}

func (v *pgView) EmployeeByID(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := scanEmployee(v.q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE employee_id = $1`, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, ErrEmployeeNotFound
		}
		return Employee{}, err
	}
	return emp, nil
}

func (v *pgView) ListEmployees(ctx context.Context) ([]Employee, error) {
	rows, err := v.q.Query(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY created_at, employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (v *pgView) ModulesByPosition(ctx context.Context, position Position) ([]TrainingModule, error) {
	rows, err := v.q.Query(ctx, `
    SELECT id, position, title, description, duration_days, max_score, sort_order
    FROM training_modules
    WHERE position = $1
    ORDER BY sort_order
  `, string(position))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []TrainingModule
	for rows.Next() {
		var module TrainingModule
		var pos string
		if err := rows.Scan(&module.ID, &pos, &module.Title, &module.Description, &module.Duration, &module.MaxScore, &module.Order); err != nil {
			return nil, err
		}
		module.Position = Position(pos)
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

func (v *pgView) TrainingRecords(ctx context.Context, employeeID string) ([]TrainingRecord, error) {
	rows, err := v.q.Query(ctx, `
    SELECT id, employee_id, module_id, status, completed_at, trainer_id, score,
           COALESCE(evaluated_by, ''), evaluated_at, COALESCE(notes, '')
    FROM training_records
    WHERE employee_id = $1
    ORDER BY module_id
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []TrainingRecord
	for rows.Next() {
		var record TrainingRecord
		var status string
		if err := rows.Scan(&record.ID, &record.EmployeeID, &record.ModuleID, &status, &record.CompletedAt, &record.TrainerID,
			&record.Score, &record.EvaluatedBy, &record.EvaluatedAt, &record.Notes); err != nil {
			return nil, err
		}
		record.Status = TrainingStatus(status)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (v *pgView) Evaluations(ctx context.Context, employeeID string) ([]Evaluation, error) {
	return v.queryEvaluations(ctx, `
    SELECT id, employee_id, module_id, score, passed, evaluated_by, evaluated_at, COALESCE(comments, '')
    FROM evaluations
    WHERE employee_id = $1
    ORDER BY module_id
  `, employeeID)
}

func (v *pgView) AllEvaluations(ctx context.Context) ([]Evaluation, error) {
	return v.queryEvaluations(ctx, `
    SELECT id, employee_id, module_id, score, passed, evaluated_by, evaluated_at, COALESCE(comments, '')
    FROM evaluations
    ORDER BY employee_id, module_id
  `)
}

func (v *pgView) queryEvaluations(ctx context.Context, sql string, args ...any) ([]Evaluation, error) {
	rows, err := v.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evaluations []Evaluation
	for rows.Next() {
		var evaluation Evaluation
		if err := rows.Scan(&evaluation.ID, &evaluation.EmployeeID, &evaluation.ModuleID, &evaluation.Score, &evaluation.Passed,
			&evaluation.EvaluatedBy, &evaluation.EvaluatedAt, &evaluation.Comments); err != nil {
			return nil, err
		}
		evaluations = append(evaluations, evaluation)
	}
	return evaluations, rows.Err()
}

func (s *PostgresStore) CreateEmployee(ctx context.Context, emp Employee) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employees (id, employee_id, first_name, last_name, position, department, branch,
                           start_date, probation_end_date, trainer_id, line_manager_id, status, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
  `, emp.ID, emp.EmployeeID, emp.FirstName, emp.LastName, string(emp.Position), emp.Department, emp.Branch,
		emp.StartDate, emp.ProbationEndDate, emp.TrainerID, emp.LineManagerID, string(emp.Status), emp.CreatedAt, emp.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateEmployee
	}
	return err
}

func (s *PostgresStore) UpdateEmployeeStatus(ctx context.Context, employeeID string, status EmployeeStatus, updatedAt time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET status = $1, updated_at = $2 WHERE employee_id = $3
  `, string(status), updatedAt, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// UpsertTrainingRecord keeps score, evaluator and notes when the incoming
// record leaves them empty, and returns the row as stored.
func (s *PostgresStore) UpsertTrainingRecord(ctx context.Context, record TrainingRecord) (TrainingRecord, error) {
	return upsertTrainingRecord(ctx, s.DB, record)
}

func upsertTrainingRecord(ctx context.Context, q querier.Querier, record TrainingRecord) (TrainingRecord, error) {
	var stored TrainingRecord
	var status string
	err := q.QueryRow(ctx, `
    INSERT INTO training_records (id, employee_id, module_id, status, completed_at, trainer_id, score, evaluated_by, evaluated_at, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),$9,NULLIF($10,''))
    ON CONFLICT (employee_id, module_id) DO UPDATE
    SET status = EXCLUDED.status,
        completed_at = EXCLUDED.completed_at,
        trainer_id = EXCLUDED.trainer_id,
        score = COALESCE(EXCLUDED.score, training_records.score),
        evaluated_by = COALESCE(EXCLUDED.evaluated_by, training_records.evaluated_by),
        evaluated_at = COALESCE(EXCLUDED.evaluated_at, training_records.evaluated_at),
        notes = COALESCE(EXCLUDED.notes, training_records.notes)
    RETURNING id, employee_id, module_id, status, completed_at, trainer_id, score,
              COALESCE(evaluated_by, ''), evaluated_at, COALESCE(notes, '')
  `, record.ID, record.EmployeeID, record.ModuleID, string(record.Status), record.CompletedAt, record.TrainerID,
		record.Score, record.EvaluatedBy, record.EvaluatedAt, record.Notes).Scan(
		&stored.ID, &stored.EmployeeID, &stored.ModuleID, &status, &stored.CompletedAt, &stored.TrainerID,
		&stored.Score, &stored.EvaluatedBy, &stored.EvaluatedAt, &stored.Notes)
	if err != nil {
		return TrainingRecord{}, err
	}
	stored.Status = TrainingStatus(status)
	return stored, nil
}

// UpsertEvaluations writes all evaluations in one transaction, replacing any
// existing evaluation for the same employee and module.
func (s *PostgresStore) UpsertEvaluations(ctx context.Context, evaluations []Evaluation) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, evaluation := range evaluations {
		if err := upsertEvaluation(ctx, tx, evaluation); err != nil {
			return fmt.Errorf("evaluation %s/%s: %w", evaluation.EmployeeID, evaluation.ModuleID, err)
		}
	}
	return tx.Commit(ctx)
}

func upsertEvaluation(ctx context.Context, q querier.Querier, evaluation Evaluation) error {
	_, err := q.Exec(ctx, `
    INSERT INTO evaluations (id, employee_id, module_id, score, passed, evaluated_by, evaluated_at, comments)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''))
    ON CONFLICT (employee_id, module_id) DO UPDATE
    SET score = EXCLUDED.score,
        passed = EXCLUDED.passed,
        evaluated_by = EXCLUDED.evaluated_by,
        evaluated_at = EXCLUDED.evaluated_at,
        comments = EXCLUDED.comments
  `, evaluation.ID, evaluation.EmployeeID, evaluation.ModuleID, evaluation.Score, evaluation.Passed,
		evaluation.EvaluatedBy, evaluation.EvaluatedAt, evaluation.Comments)
	return err
}

// SeedDataset inserts the dataset, leaving rows that already exist untouched.
func (s *PostgresStore) SeedDataset(ctx context.Context, ds Dataset) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, module := range ds.Modules {
		if _, err := tx.Exec(ctx, `
      INSERT INTO training_modules (id, position, title, description, duration_days, max_score, sort_order)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
      ON CONFLICT (id) DO NOTHING
    `, module.ID, string(module.Position), module.Title, module.Description, module.Duration, module.MaxScore, module.Order); err != nil {
			return fmt.Errorf("seed module %s: %w", module.ID, err)
		}
	}
	for _, emp := range ds.Employees {
		if _, err := tx.Exec(ctx, `
      INSERT INTO employees (id, employee_id, first_name, last_name, position, department, branch,
                             start_date, probation_end_date, trainer_id, line_manager_id, status, created_at, updated_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
      ON CONFLICT (employee_id) DO NOTHING
    `, emp.ID, emp.EmployeeID, emp.FirstName, emp.LastName, string(emp.Position), emp.Department, emp.Branch,
			emp.StartDate, emp.ProbationEndDate, emp.TrainerID, emp.LineManagerID, string(emp.Status), emp.CreatedAt, emp.UpdatedAt); err != nil {
			return fmt.Errorf("seed employee %s: %w", emp.EmployeeID, err)
		}
	}
	for _, record := range ds.Records {
		if _, err := tx.Exec(ctx, `
      INSERT INTO training_records (id, employee_id, module_id, status, completed_at, trainer_id, score, evaluated_by, evaluated_at, notes)
      VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),$9,NULLIF($10,''))
      ON CONFLICT (employee_id, module_id) DO NOTHING
    `, record.ID, record.EmployeeID, record.ModuleID, string(record.Status), record.CompletedAt, record.TrainerID,
			record.Score, record.EvaluatedBy, record.EvaluatedAt, record.Notes); err != nil {
			return fmt.Errorf("seed training record %s: %w", record.ID, err)
		}
	}
	for _, evaluation := range ds.Evaluations {
		if _, err := tx.Exec(ctx, `
      INSERT INTO evaluations (id, employee_id, module_id, score, passed, evaluated_by, evaluated_at, comments)
      VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''))
      ON CONFLICT (employee_id, module_id) DO NOTHING
    `, evaluation.ID, evaluation.EmployeeID, evaluation.ModuleID, evaluation.Score, evaluation.Passed,
			evaluation.EvaluatedBy, evaluation.EvaluatedAt, evaluation.Comments); err != nil {
			return fmt.Errorf("seed evaluation %s: %w", evaluation.ID, err)
		}
	}
	return tx.Commit(ctx)
}
