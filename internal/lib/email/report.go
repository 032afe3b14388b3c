package email

import (
	"errors"
	"time"

	"github.com/deppfellow/orgdir/internal/model"
)

// LoadReportData is the view model of the load_report template.
type LoadReportData struct {
	Failed      bool
	Stage       string
	Error       string
	Report      *model.LoadReport
	TriggeredAt string
}

// stageError is implemented by the loader's error type.
type stageError interface {
	error
	StageName() string
}

// NewLoadReportData builds the template data for a finished or failed load.
func NewLoadReportData(report *model.LoadReport, loadErr error, triggeredAt time.Time) LoadReportData {
	data := LoadReportData{
		Report:      report,
		TriggeredAt: triggeredAt.UTC().Format(time.RFC1123),
	}
	if loadErr != nil {
		data.Failed = true
		data.Error = loadErr.Error()
		data.Stage = "unknown"

		var se stageError
		if errors.As(loadErr, &se) {
			data.Stage = se.StageName()
		}
	}
	return data
}

// SendLoadReport mails the outcome of a background load.
func (c *Client) SendLoadReport(to string, report *model.LoadReport, loadErr error) error {
	subject := "Directory load finished"
	if loadErr != nil {
		subject = "Directory load failed"
	}
	return c.SendEmail(to, subject, TemplateLoadReport, NewLoadReportData(report, loadErr, time.Now()))
}
