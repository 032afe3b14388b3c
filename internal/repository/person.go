package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/deppfellow/orgdir/internal/config"
	"github.com/deppfellow/orgdir/internal/model"
)

const (
	insertPersonByNameSQL = `INSERT INTO people (id, name, avatar_url, department_id)
VALUES ($1, $2, $3, (SELECT id FROM departments WHERE name = $4 LIMIT 1))`

	insertPersonByIDSQL = `INSERT INTO people (id, name, avatar_url, department_id)
VALUES ($1, $2, $3, $4)`

	// No ORDER BY: result order is whatever the planner produces.
	searchPeopleSQL = `SELECT p.id, p.name, COALESCE(p.avatar_url, ''), d.id, d.name
FROM people p
INNER JOIN departments d ON d.id = p.department_id
WHERE p.name ILIKE '%' || $1 || '%' ESCAPE '\'`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the ILIKE wildcards so term matches literally.
func EscapeLike(term string) string {
	return likeEscaper.Replace(term)
}

type PersonRepository struct {
	db DBTX
}

func NewPersonRepository(db DBTX) *PersonRepository {
	return &PersonRepository{db: db}
}

// InsertAll writes the batch in a single transaction.
//
// match selects how a person's department is resolved: by name through a
// subquery (config.DepartmentMatchName) or by the id the feed supplied
// (config.DepartmentMatchID). An unresolved name yields NULL and the insert
// fails on the NOT NULL constraint, aborting the whole batch.
func (r *PersonRepository) InsertAll(ctx context.Context, people []model.Person, match string) (int, error) {
	query, departmentArg := insertPersonByNameSQL, func(p model.Person) any { return p.DepartmentName }
	if match == config.DepartmentMatchID {
		query, departmentArg = insertPersonByIDSQL, func(p model.Person) any { return p.DepartmentID }
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin people transaction: %w", err)
	}

	for _, p := range people {
		if _, err := tx.Exec(ctx, query, p.ID, p.Name, nullable(p.AvatarURL), departmentArg(p)); err != nil {
			rollback(ctx, tx)
			return 0, fmt.Errorf("insert person %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit people: %w", err)
	}
	return len(people), nil
}

// Search returns every person whose name contains term, case-insensitively.
// An empty term matches everyone.
func (r *PersonRepository) Search(ctx context.Context, term string) ([]model.PersonRecord, error) {
	rows, err := r.db.Query(ctx, searchPeopleSQL, EscapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("search people: %w", err)
	}
	defer rows.Close()

	results := make([]model.PersonRecord, 0)
	for rows.Next() {
		var (
			record    model.PersonRecord
			avatarURL string
		)
		if err := rows.Scan(&record.ID, &record.Name, &avatarURL, &record.Department.ID, &record.Department.Name); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		if avatarURL != "" {
			record.Avatar.URL = &avatarURL
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}

	return results, nil
}
