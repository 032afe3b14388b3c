package repository

// Repositories groups every repository built on one connection pool.
type Repositories struct {
	Departments *DepartmentRepository
	People      *PersonRepository
}

func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Departments: NewDepartmentRepository(db),
		People:      NewPersonRepository(db),
	}
}
