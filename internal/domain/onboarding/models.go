package onboarding

import "time"

type Employee struct {
	ID               string         `json:"id"`
	EmployeeID       string         `json:"employeeId"`
	FirstName        string         `json:"firstName"`
	LastName         string         `json:"lastName"`
	Position         Position       `json:"position"`
	Department       string         `json:"department"`
	Branch           string         `json:"branch"`
	StartDate        time.Time      `json:"startDate"`
	ProbationEndDate time.Time      `json:"probationEndDate"`
	TrainerID        string         `json:"trainerId"`
	LineManagerID    string         `json:"lineManagerId"`
	Status           EmployeeStatus `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type TrainingModule struct {
	ID          string   `json:"id"`
	Position    Position `json:"position"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	MaxScore    float64  `json:"maxScore"`
	Order       int      `json:"order"`
}

type TrainingRecord struct {
	ID          string         `json:"id"`
	EmployeeID  string         `json:"employeeId"`
	ModuleID    string         `json:"moduleId"`
	Status      TrainingStatus `json:"status"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	TrainerID   string         `json:"trainerId"`
	Score       *float64       `json:"score,omitempty"`
	EvaluatedBy string         `json:"evaluatedBy,omitempty"`
	EvaluatedAt *time.Time     `json:"evaluatedAt,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

type Evaluation struct {
	ID          string    `json:"id"`
	EmployeeID  string    `json:"employeeId"`
	ModuleID    string    `json:"moduleId"`
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
	EvaluatedBy string    `json:"evaluatedBy"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
	Comments    string    `json:"comments,omitempty"`
}

// TrainingProgress is derived on every request and never stored.
type TrainingProgress struct {
	EmployeeID       string         `json:"employeeId"`
	TotalModules     int            `json:"totalModules"`
	CompletedModules int            `json:"completedModules"`
	TotalScore       float64        `json:"totalScore"`
	AverageScore     float64        `json:"averageScore"`
	DaysRemaining    int            `json:"daysRemaining"`
	Status           ProgressStatus `json:"status"`
}
