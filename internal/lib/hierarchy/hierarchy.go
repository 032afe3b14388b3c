// Package hierarchy validates a staged batch of self-referential departments
// before it is written.
//
// The feed does not deliver departments in topological order, so the batch is
// checked as a whole: every parent reference must resolve to a department in
// the same batch or to one the caller already knows is stored, and no
// identifier may appear twice. Only a closed batch is handed to the database,
// where the deferred foreign key re-checks the same property at commit time.
package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/deppfellow/orgdir/internal/model"
)

// DanglingRef is a department whose parent is neither in the batch nor stored.
type DanglingRef struct {
	DepartmentID string
	ParentID     string
}

// ClosureError describes why a batch is not referentially closed.
type ClosureError struct {
	DuplicateIDs []string
	Dangling     []DanglingRef
}

func (e *ClosureError) Error() string {
	var parts []string
	if len(e.DuplicateIDs) > 0 {
		parts = append(parts, fmt.Sprintf("duplicate department ids: %s", strings.Join(e.DuplicateIDs, ", ")))
	}
	if len(e.Dangling) > 0 {
		refs := make([]string, 0, len(e.Dangling))
		for _, d := range e.Dangling {
			refs = append(refs, fmt.Sprintf("%s->%s", d.DepartmentID, d.ParentID))
		}
		parts = append(parts, fmt.Sprintf("unknown parent departments: %s", strings.Join(refs, ", ")))
	}
	return "department hierarchy is not closed: " + strings.Join(parts, "; ")
}

// Validate checks that the batch is referentially closed.
// existing lists department ids already in the table; parents found there
// are accepted. It returns nil or a *ClosureError.
func Validate(departments []model.Department, existing ...string) error {
	seen := make(map[string]int, len(departments))
	for _, d := range departments {
		seen[d.ID]++
	}
	stored := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		stored[id] = struct{}{}
	}

	closure := &ClosureError{}

	for id, count := range seen {
		if count > 1 {
			closure.DuplicateIDs = append(closure.DuplicateIDs, id)
		}
	}
	sort.Strings(closure.DuplicateIDs)

	for _, d := range departments {
		if d.ParentID == nil {
			continue
		}
		_, inBatch := seen[*d.ParentID]
		_, inTable := stored[*d.ParentID]
		if !inBatch && !inTable {
			closure.Dangling = append(closure.Dangling, DanglingRef{
				DepartmentID: d.ID,
				ParentID:     *d.ParentID,
			})
		}
	}

	if len(closure.DuplicateIDs) == 0 && len(closure.Dangling) == 0 {
		return nil
	}
	return closure
}

// ExternalParents returns the parent ids that no department in the batch
// carries, sorted and without repeats.
func ExternalParents(departments []model.Department) []string {
	ids := make(map[string]struct{}, len(departments))
	for _, d := range departments {
		ids[d.ID] = struct{}{}
	}

	external := make(map[string]struct{})
	for _, d := range departments {
		if d.ParentID == nil {
			continue
		}
		if _, ok := ids[*d.ParentID]; !ok {
			external[*d.ParentID] = struct{}{}
		}
	}

	parents := make([]string, 0, len(external))
	for id := range external {
		parents = append(parents, id)
	}
	sort.Strings(parents)
	return parents
}

// DuplicateNames lists department names that occur more than once.
//
// People are matched to departments by name, so any name returned here makes
// that match ambiguous.
func DuplicateNames(departments []model.Department) []string {
	counts := make(map[string]int, len(departments))
	for _, d := range departments {
		counts[d.Name]++
	}

	var names []string
	for name, count := range counts {
		if count > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Roots returns the departments without a parent, in input order.
func Roots(departments []model.Department) []model.Department {
	var roots []model.Department
	for _, d := range departments {
		if d.IsRoot() {
			roots = append(roots, d)
		}
	}
	return roots
}
