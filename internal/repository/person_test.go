package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/deppfellow/orgdir/internal/config"
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/deppfellow/orgdir/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var (
	insertPerson = regexp.QuoteMeta("INSERT INTO people (id, name, avatar_url, department_id)")
	searchPeople = "^" + regexp.QuoteMeta(`SELECT p.id, p.name, COALESCE(p.avatar_url, ''), d.id, d.name
FROM people p
INNER JOIN departments d ON d.id = p.department_id
WHERE p.name ILIKE '%' || $1 || '%' ESCAPE '\'`) + "$"
)

func TestEscapeLike(t *testing.T) {
	require.Equal(t, "anna", EscapeLike("anna"))
	require.Equal(t, `100\%`, EscapeLike("100%"))
	require.Equal(t, `a\_b`, EscapeLike("a_b"))
	require.Equal(t, `c:\\dir`, EscapeLike(`c:\dir`))
	require.Equal(t, `x' OR '1'='1`, EscapeLike(`x' OR '1'='1`))
}

func TestPersonInsertAllByName(t *testing.T) {
	mock := newMock(t)
	repo := NewPersonRepository(mock)

	people := []model.Person{
		{ID: "p1", Name: "Anna", AvatarURL: ptr("https://cdn.example.com/anna.png"), DepartmentName: "Engineering", DepartmentID: "ENG"},
		{ID: "p2", Name: "Juan", DepartmentName: "Headquarters"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("(?s)" + insertPerson + ".*WHERE name = \\$4").
		WithArgs("p1", "Anna", "https://cdn.example.com/anna.png", "Engineering").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insertPerson).
		WithArgs("p2", "Juan", nil, "Headquarters").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := repo.InsertAll(context.Background(), people, config.DepartmentMatchName)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonInsertAllByID(t *testing.T) {
	mock := newMock(t)
	repo := NewPersonRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(insertPerson).
		WithArgs("p1", "Anna", nil, "ENG").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	_, err := repo.InsertAll(context.Background(), []model.Person{
		{ID: "p1", Name: "Anna", DepartmentName: "Engineering", DepartmentID: "ENG"},
	}, config.DepartmentMatchID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonInsertAllUnresolvedDepartmentAborts(t *testing.T) {
	mock := newMock(t)
	repo := NewPersonRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(insertPerson).
		WithArgs("p1", "Anna", nil, "Nowhere").
		WillReturnError(&pgconn.PgError{Code: "23502", TableName: "people", ColumnName: "department_id"})
	mock.ExpectRollback()

	_, err := repo.InsertAll(context.Background(), []model.Person{
		{ID: "p1", Name: "Anna", DepartmentName: "Nowhere"},
		{ID: "p2", Name: "Juan", DepartmentName: "Headquarters"},
	}, config.DepartmentMatchName)

	require.Error(t, err)
	require.Equal(t, sqlerr.NotNullViolation, sqlerr.ErrCode(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonSearch(t *testing.T) {
	mock := newMock(t)
	repo := NewPersonRepository(mock)

	rows := pgxmock.NewRows([]string{"id", "name", "avatar_url", "department_id", "department_name"}).
		AddRow("p1", "Anna", "https://cdn.example.com/anna.png", "ENG", "Engineering").
		AddRow("p3", "Hanna", "", "HQ", "Headquarters")

	mock.ExpectQuery(searchPeople).WithArgs("ann").WillReturnRows(rows)

	results, err := repo.Search(context.Background(), "ann")
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, "p1", results[0].ID)
	require.Equal(t, "https://cdn.example.com/anna.png", *results[0].Avatar.URL)
	require.Equal(t, model.DepartmentRef{ID: "ENG", Name: "Engineering"}, results[0].Department)
	require.Nil(t, results[1].Avatar.URL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonSearchBindsEscapedTerm(t *testing.T) {
	mock := newMock(t)
	repo := NewPersonRepository(mock)

	mock.ExpectQuery(searchPeople).
		WithArgs(`50\%`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "avatar_url", "department_id", "department_name"}))

	results, err := repo.Search(context.Background(), "50%")
	require.NoError(t, err)
	require.NotNil(t, results)
	require.Empty(t, results)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonSearchQueryError(t *testing.T) {
	mock := newMock(t)
	repo := NewPersonRepository(mock)

	mock.ExpectQuery(searchPeople).WithArgs("").WillReturnError(errors.New("pool closed"))

	_, err := repo.Search(context.Background(), "")
	require.ErrorContains(t, err, "search people")
	require.NoError(t, mock.ExpectationsWereMet())
}
