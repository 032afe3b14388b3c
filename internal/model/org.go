// Package model holds the organizational entities shared by the loader,
// the repositories and the HTTP layer.
package model

// Department is a node of the organizational hierarchy.
// ParentID is nil for root departments.
type Department struct {
	ID       string
	Name     string
	ParentID *string
}

// IsRoot reports whether the department has no parent.
func (d Department) IsRoot() bool {
	return d.ParentID == nil
}

// Person is a member of the organization as reported by the content API.
//
// DepartmentName is what the feed reports and what the loader matches on by
// default. DepartmentID is only filled when the feed provides it.
type Person struct {
	ID             string
	Name           string
	Title          string
	AvatarURL      *string
	DepartmentName string
	DepartmentID   string
}

// PersonRecord is a person joined to their department, as returned by search.
type PersonRecord struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Avatar     Avatar        `json:"avatar"`
	Department DepartmentRef `json:"department"`
}

// Avatar wraps the optional avatar URL.
type Avatar struct {
	URL *string `json:"url"`
}

// DepartmentRef is the department summary embedded in a PersonRecord.
type DepartmentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
