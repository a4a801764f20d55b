package onboarding

type Position string

const (
	PositionServer     Position = "server"
	PositionCookHelper Position = "cook_helper"
)

type EmployeeStatus string

// Recommended order: pending -> in_progress -> completed -> evaluated.
const (
	EmployeeStatusPending    EmployeeStatus = "pending"
	EmployeeStatusInProgress EmployeeStatus = "in_progress"
	EmployeeStatusCompleted  EmployeeStatus = "completed"
	EmployeeStatusEvaluated  EmployeeStatus = "evaluated"
)

type TrainingStatus string

const (
	TrainingStatusPending    TrainingStatus = "pending"
	TrainingStatusInProgress TrainingStatus = "in_progress"
	TrainingStatusCompleted  TrainingStatus = "completed"
)

type ProgressStatus string

const (
	ProgressOnTrack   ProgressStatus = "on_track"
	ProgressBehind    ProgressStatus = "behind"
	ProgressCompleted ProgressStatus = "completed"
)

var EmployeeStatuses = []EmployeeStatus{
	EmployeeStatusPending,
	EmployeeStatusInProgress,
	EmployeeStatusCompleted,
	EmployeeStatusEvaluated,
}

var Departments = []string{
	"Customer Service",
	"Kitchen",
	"Bar",
	"Sales",
	"Human Resources",
	"Accounting",
}

var Branches = []string{
	"Silom",
	"Siam",
	"CentralWorld",
	"Terminal 21",
	"Mega Bangna",
}

func ValidPosition(value string) bool {
	_, ok := positions[Position(value)]
	return ok
}

func ValidDepartment(value string) bool {
	return contains(Departments, value)
}

func ValidBranch(value string) bool {
	return contains(Branches, value)
}

func contains(values []string, value string) bool {
	for _, candidate := range values {
		if candidate == value {
			return true
		}
	}
	return false
}
