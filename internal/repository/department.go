package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/jackc/pgx/v5"
)

const (
	insertDepartmentSQL = `INSERT INTO departments (id, name, parent) VALUES ($1, $2, $3)`
	clearPeopleSQL      = `DELETE FROM people`
	clearDepartmentsSQL = `DELETE FROM departments`
	existingIDsSQL      = `SELECT id FROM departments WHERE id = ANY($1)`
)

type DepartmentRepository struct {
	db DBTX
}

func NewDepartmentRepository(db DBTX) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// InsertAll writes the batch in a single transaction.
//
// Rows go in feed order. The parent foreign key is deferred, so a child may
// precede its parent and the reference is only checked at commit. With
// replace set, both tables are emptied first inside the same transaction.
func (r *DepartmentRepository) InsertAll(ctx context.Context, departments []model.Department, replace bool) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin departments transaction: %w", err)
	}

	if replace {
		if _, err := tx.Exec(ctx, clearPeopleSQL); err != nil {
			rollback(ctx, tx)
			return 0, fmt.Errorf("clear people: %w", err)
		}
		if _, err := tx.Exec(ctx, clearDepartmentsSQL); err != nil {
			rollback(ctx, tx)
			return 0, fmt.Errorf("clear departments: %w", err)
		}
	}

	for _, d := range departments {
		if _, err := tx.Exec(ctx, insertDepartmentSQL, d.ID, d.Name, nullable(d.ParentID)); err != nil {
			rollback(ctx, tx)
			return 0, fmt.Errorf("insert department %s: %w", d.ID, err)
		}
	}

	// a dangling parent surfaces here as 23503
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit departments: %w", err)
	}
	return len(departments), nil
}

// ExistingIDs returns the subset of ids already stored.
func (r *DepartmentRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, existingIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("look up departments: %w", err)
	}

	found, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan department ids: %w", err)
	}
	return found, nil
}
