package onboarding

import "time"

// Dataset is a full set of onboarding rows used to seed a backend.
type Dataset struct {
	Modules     []TrainingModule
	Employees   []Employee
	Records     []TrainingRecord
	Evaluations []Evaluation
}

// DemoDataset returns the demo employees, training records and evaluations
// the tracker ships with, on top of the static catalog.
func DemoDataset() Dataset {
	return Dataset{
		Modules: CatalogModules(),
		Employees: []Employee{
			{
				ID:               "1",
				EmployeeID:       "EMP001",
				FirstName:        "Somying",
				LastName:         "Rakngan",
				Position:         PositionServer,
				Department:       "Customer Service",
				Branch:           "Silom",
				StartDate:        date(2024, 1, 15),
				ProbationEndDate: date(2024, 4, 15),
				TrainerID:        "3",
				LineManagerID:    "4",
				Status:           EmployeeStatusInProgress,
				CreatedAt:        date(2024, 1, 15),
				UpdatedAt:        date(2024, 1, 15),
			},
			{
				ID:               "2",
				EmployeeID:       "EMP002",
				FirstName:        "Somchai",
				LastName:         "Khayan",
				Position:         PositionCookHelper,
				Department:       "Kitchen",
				Branch:           "Siam",
				StartDate:        date(2024, 1, 20),
				ProbationEndDate: date(2024, 4, 20),
				TrainerID:        "3",
				LineManagerID:    "4",
				Status:           EmployeeStatusPending,
				CreatedAt:        date(2024, 1, 20),
				UpdatedAt:        date(2024, 1, 20),
			},
		},
		Records: []TrainingRecord{
			{
				ID:          "1",
				EmployeeID:  "EMP001",
				ModuleID:    "server_1",
				Status:      TrainingStatusCompleted,
				CompletedAt: timePtr(date(2024, 1, 20)),
				TrainerID:   "3",
				Score:       floatPtr(8),
				EvaluatedBy: "4",
				EvaluatedAt: timePtr(date(2024, 1, 21)),
				Notes:       "Good work",
			},
			{
				ID:          "2",
				EmployeeID:  "EMP001",
				ModuleID:    "server_2",
				Status:      TrainingStatusCompleted,
				CompletedAt: timePtr(date(2024, 1, 25)),
				TrainerID:   "3",
				Score:       floatPtr(9),
				EvaluatedBy: "4",
				EvaluatedAt: timePtr(date(2024, 1, 26)),
				Notes:       "Knows the full menu",
			},
			{
				ID:         "3",
				EmployeeID: "EMP001",
				ModuleID:   "server_3",
				Status:     TrainingStatusInProgress,
				TrainerID:  "3",
			},
		},
		Evaluations: []Evaluation{
			{
				ID:          "1",
				EmployeeID:  "EMP001",
				ModuleID:    "server_1",
				Score:       8,
				Passed:      true,
				EvaluatedBy: "4",
				EvaluatedAt: date(2024, 1, 21),
				Comments:    "Good work",
			},
			{
				ID:          "2",
				EmployeeID:  "EMP001",
				ModuleID:    "server_2",
				Score:       9,
				Passed:      true,
				EvaluatedBy: "4",
				EvaluatedAt: date(2024, 1, 26),
				Comments:    "Knows the full menu",
			},
		},
	}
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func floatPtr(v float64) *float64 {
	return &v
}
