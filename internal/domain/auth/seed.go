package auth

import "time"

type seedUser struct {
	id         string
	username   string
	password   string
	role       Role
	employeeID string
	name       string
	email      string
	createdAt  time.Time
}

var seedUsers = []seedUser{
	{id: "1", username: "hr001", password: "hr123", role: RoleHR, name: "Somchai Jaidee", email: "hr@company.com", createdAt: day(2024, 1, 1)},
	{id: "2", username: "emp001", password: "emp123", role: RoleEmployee, employeeID: "EMP001", name: "Somying Rakngan", email: "employee@company.com", createdAt: day(2024, 1, 15)},
	{id: "3", username: "trainer001", password: "train123", role: RoleTrainer, employeeID: "TRAIN001", name: "Somsak Phuson", email: "trainer@company.com", createdAt: day(2024, 1, 1)},
	{id: "4", username: "manager001", password: "mgr123", role: RoleManager, employeeID: "MGR001", name: "Somporn Phujatkan", email: "manager@company.com", createdAt: day(2024, 1, 1)},
}

// SeedUsers returns the demo accounts with hashed passwords.
func SeedUsers() ([]User, error) {
	users := make([]User, 0, len(seedUsers))
	for _, seed := range seedUsers {
		hash, err := HashPassword(seed.password)
		if err != nil {
			return nil, err
		}
		users = append(users, User{
			ID:           seed.id,
			Username:     seed.username,
			PasswordHash: hash,
			Role:         seed.role,
			EmployeeID:   seed.employeeID,
			Name:         seed.name,
			Email:        seed.email,
			CreatedAt:    seed.createdAt,
		})
	}
	return users, nil
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
