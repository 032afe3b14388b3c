package email

import (
	"time"

	"github.com/deppfellow/orgdir/internal/model"
)

// PreviewData holds sample template data keyed by template name, used to
// render templates without running a load.
var PreviewData = map[Template]LoadReportData{
	TemplateLoadReport: NewLoadReportData(&model.LoadReport{
		Departments:              12,
		People:                   87,
		RootDepartments:          []string{"HQ"},
		DuplicateDepartmentNames: []string{"Sales"},
		Duration:                 1840 * time.Millisecond,
	}, nil, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)),
}

// Preview renders a template with its sample data.
func Preview(name Template) (string, error) {
	return Render(name, PreviewData[name])
}
