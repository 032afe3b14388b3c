package hierarchy

import (
	"errors"
	"testing"

	"github.com/deppfellow/orgdir/internal/model"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestValidateAcceptsChildBeforeParent(t *testing.T) {
	departments := []model.Department{
		{ID: "ENG-BE", Name: "Backend", ParentID: ptr("ENG")},
		{ID: "ENG", Name: "Engineering", ParentID: ptr("HQ")},
		{ID: "HQ", Name: "Headquarters"},
	}

	require.NoError(t, Validate(departments))
}

func TestValidateAcceptsEmptyBatch(t *testing.T) {
	require.NoError(t, Validate(nil))
}

func TestValidateReportsDanglingParent(t *testing.T) {
	departments := []model.Department{
		{ID: "HQ", Name: "Headquarters"},
		{ID: "OPS", Name: "Operations", ParentID: ptr("GONE")},
	}

	err := Validate(departments)
	require.Error(t, err)

	var closure *ClosureError
	require.True(t, errors.As(err, &closure))
	require.Equal(t, []DanglingRef{{DepartmentID: "OPS", ParentID: "GONE"}}, closure.Dangling)
	require.Empty(t, closure.DuplicateIDs)
	require.Contains(t, err.Error(), "OPS->GONE")
}

func TestValidateAcceptsStoredParent(t *testing.T) {
	departments := []model.Department{
		{ID: "OPS", Name: "Operations", ParentID: ptr("HQ")},
		{ID: "OPS-EU", Name: "Operations EU", ParentID: ptr("OPS")},
	}

	require.NoError(t, Validate(departments, "HQ"))

	var closure *ClosureError
	require.True(t, errors.As(Validate(departments, "LEGAL"), &closure))
	require.Equal(t, []DanglingRef{{DepartmentID: "OPS", ParentID: "HQ"}}, closure.Dangling)
}

func TestExternalParents(t *testing.T) {
	departments := []model.Department{
		{ID: "OPS", Name: "Operations", ParentID: ptr("HQ")},
		{ID: "SALES", Name: "Sales", ParentID: ptr("HQ")},
		{ID: "OPS-EU", Name: "Operations EU", ParentID: ptr("OPS")},
		{ID: "LEGAL", Name: "Legal", ParentID: ptr("BOARD")},
		{ID: "ROOT", Name: "Root"},
	}

	require.Equal(t, []string{"BOARD", "HQ"}, ExternalParents(departments))
	require.Equal(t, []string{"OPS"}, ExternalParents(departments[2:3]))
	require.Empty(t, ExternalParents(departments[4:]))
}

func TestValidateReportsDuplicateIDs(t *testing.T) {
	departments := []model.Department{
		{ID: "HQ", Name: "Headquarters"},
		{ID: "HQ", Name: "Head Office"},
	}

	err := Validate(departments)

	var closure *ClosureError
	require.True(t, errors.As(err, &closure))
	require.Equal(t, []string{"HQ"}, closure.DuplicateIDs)
}

func TestValidateSelfReferenceIsClosed(t *testing.T) {
	departments := []model.Department{
		{ID: "LOOP", Name: "Loop", ParentID: ptr("LOOP")},
	}

	require.NoError(t, Validate(departments))
}

func TestDuplicateNames(t *testing.T) {
	departments := []model.Department{
		{ID: "A", Name: "Sales"},
		{ID: "B", Name: "Sales"},
		{ID: "C", Name: "Legal"},
	}

	require.Equal(t, []string{"Sales"}, DuplicateNames(departments))
	require.Empty(t, DuplicateNames(departments[1:]))
}

func TestRoots(t *testing.T) {
	departments := []model.Department{
		{ID: "ENG", Name: "Engineering", ParentID: ptr("HQ")},
		{ID: "HQ", Name: "Headquarters"},
	}

	roots := Roots(departments)
	require.Len(t, roots, 1)
	require.Equal(t, "HQ", roots[0].ID)
}
