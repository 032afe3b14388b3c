package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

var insertDepartment = regexp.QuoteMeta("INSERT INTO departments (id, name, parent)")

func TestDepartmentInsertAllChildBeforeParent(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	departments := []model.Department{
		{ID: "ENG", Name: "Engineering", ParentID: ptr("HQ")},
		{ID: "HQ", Name: "Headquarters"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(insertDepartment).WithArgs("ENG", "Engineering", "HQ").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertDepartment).WithArgs("HQ", "Headquarters", nil).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := repo.InsertAll(context.Background(), departments, false)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentInsertAllReplaceClearsTables(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM people")).WillReturnResult(pgxmock.NewResult("DELETE", 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM departments")).WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(insertDepartment).WithArgs("HQ", "Headquarters", nil).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := repo.InsertAll(context.Background(), []model.Department{{ID: "HQ", Name: "Headquarters"}}, true)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentInsertAllRollsBackOnInsertError(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(insertDepartment).WithArgs("HQ", "Headquarters", nil).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertDepartment).WithArgs("HQ", "Head Office", nil).
		WillReturnError(&pgconn.PgError{Code: "23505", TableName: "departments", ConstraintName: "departments_pkey"})
	mock.ExpectRollback()

	_, err := repo.InsertAll(context.Background(), []model.Department{
		{ID: "HQ", Name: "Headquarters"},
		{ID: "HQ", Name: "Head Office"},
	}, false)

	require.Error(t, err)
	require.Equal(t, sqlerr.UniqueViolation, sqlerr.ErrCode(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentInsertAllDeferredViolationAtCommit(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	fkErr := &pgconn.PgError{Code: "23503", TableName: "departments", ConstraintName: "departments_parent_fkey"}

	mock.ExpectBegin()
	mock.ExpectExec(insertDepartment).WithArgs("OPS", "Operations", "GONE").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit().WillReturnError(fkErr)

	_, err := repo.InsertAll(context.Background(), []model.Department{
		{ID: "OPS", Name: "Operations", ParentID: ptr("GONE")},
	}, false)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	require.Equal(t, "23503", pgErr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentInsertAllBeginError(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	_, err := repo.InsertAll(context.Background(), nil, false)
	require.ErrorContains(t, err, "begin departments transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentExistingIDs(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(existingIDsSQL)).
		WithArgs([]string{"HQ", "LEGAL"}).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("HQ"))

	found, err := repo.ExistingIDs(context.Background(), []string{"HQ", "LEGAL"})
	require.NoError(t, err)
	require.Equal(t, []string{"HQ"}, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentExistingIDsEmptySkipsQuery(t *testing.T) {
	mock := newMock(t)
	repo := NewDepartmentRepository(mock)

	found, err := repo.ExistingIDs(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}
