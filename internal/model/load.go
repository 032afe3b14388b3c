package model

import "time"

// LoadOptions controls a single loader run.
type LoadOptions struct {
	// Replace empties both tables before inserting the new batch.
	Replace bool `json:"replace"`
}

// LoadReport summarizes a successful loader run.
type LoadReport struct {
	Departments              int           `json:"departments"`
	People                   int           `json:"people"`
	RootDepartments          []string      `json:"root_departments"`
	DuplicateDepartmentNames []string      `json:"duplicate_department_names,omitempty"`
	Replaced                 bool          `json:"replaced"`
	StartedAt                time.Time     `json:"started_at"`
	Duration                 time.Duration `json:"duration"`
}
