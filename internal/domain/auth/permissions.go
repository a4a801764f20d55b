package auth

const (
	PermEmployeesRead    = "onboarding.employees.read"
	PermEmployeesWrite   = "onboarding.employees.write"
	PermProgressRead     = "onboarding.progress.read"
	PermTrainingComplete = "onboarding.training.complete"
	PermEvaluationsWrite = "onboarding.evaluations.write"
	PermReportsRead      = "onboarding.reports.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermProgressRead,
	PermTrainingComplete,
	PermEvaluationsWrite,
	PermReportsRead,
}

var RolePermissions = map[Role][]string{
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermProgressRead,
		PermReportsRead,
	},
	RoleEmployee: {
		PermEmployeesRead,
		PermProgressRead,
	},
	RoleTrainer: {
		PermEmployeesRead,
		PermProgressRead,
		PermTrainingComplete,
	},
	RoleManager: {
		PermEmployeesRead,
		PermProgressRead,
		PermEvaluationsWrite,
		PermReportsRead,
	},
}

func HasPermission(role Role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
