// Package contentapi reads organizational data from the headless CMS
// GraphQL API.
//
// A single fixed document (orgdata.graphql) asks for the first page of
// departments and people in one round trip. The document is parsed with
// gqlparser when the client is built so a broken query fails at startup
// instead of at the remote end.
package contentapi

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/orgdir/internal/config"
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

//go:embed orgdata.graphql
var orgDataQuery string

// maxErrorBody caps how much of a failed response body ends up in errors.
const maxErrorBody = 512

// Client talks to the content API over HTTP.
type Client struct {
	endpoint   string
	token      string
	pageSize   int
	operation  string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewClient validates the embedded query document and builds a client.
func NewClient(cfg config.ContentAPIConfig, logger *zerolog.Logger) (*Client, error) {
	operation, err := operationName(orgDataQuery)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint:  cfg.Endpoint,
		token:     cfg.Token,
		pageSize:  cfg.PageSize,
		operation: operation,
		httpClient: &http.Client{
			Timeout: timeout,
			// External segments show up in New Relic when a transaction is
			// present in the request context; otherwise this is a passthrough.
			Transport: newrelic.NewRoundTripper(http.DefaultTransport),
		},
		logger: logger,
	}, nil
}

// operationName parses a GraphQL document and returns its single operation name.
func operationName(document string) (string, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "orgdata.graphql", Input: document})
	if err != nil {
		return "", errors.Wrap(err, "parse content API query")
	}
	if len(doc.Operations) != 1 {
		return "", fmt.Errorf("content API query must contain exactly one operation, found %d", len(doc.Operations))
	}
	return doc.Operations[0].Name, nil
}

// OrgData is one page of departments and people.
type OrgData struct {
	Departments []model.Department
	People      []model.Person
}

// StatusError is returned when the content API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content API returned status %d: %s", e.StatusCode, e.Body)
}

// GraphQLError carries the errors array of a GraphQL response.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "content API query failed: " + strings.Join(e.Messages, "; ")
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   *orgDataPayload `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type orgDataPayload struct {
	Departments []departmentNode `json:"departments"`
	People      []personNode     `json:"people"`
}

type reference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type departmentNode struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Parent *reference `json:"parent"`
}

type personNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Avatar *struct {
		URL string `json:"url"`
	} `json:"avatar"`
	Department *reference `json:"department"`
}

// FetchOrgData runs the combined departments + people query.
// Only the first page (page_size rows of each) is requested.
func (c *Client) FetchOrgData(ctx context.Context) (*OrgData, error) {
	body, err := json.Marshal(graphQLRequest{
		Query:         orgDataQuery,
		OperationName: c.operation,
		Variables:     map[string]any{"first": c.pageSize},
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode content API request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build content API request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call content API")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var payload graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decode content API response")
	}

	if len(payload.Errors) > 0 {
		messages := make([]string, 0, len(payload.Errors))
		for _, e := range payload.Errors {
			messages = append(messages, e.Message)
		}
		return nil, &GraphQLError{Messages: messages}
	}

	if payload.Data == nil {
		return nil, errors.New("content API response has no data")
	}

	data := toOrgData(payload.Data)

	c.logger.Debug().
		Int("departments", len(data.Departments)).
		Int("people", len(data.People)).
		Dur("duration", time.Since(start)).
		Msg("fetched org data from content API")

	return data, nil
}

func toOrgData(payload *orgDataPayload) *OrgData {
	data := &OrgData{
		Departments: make([]model.Department, 0, len(payload.Departments)),
		People:      make([]model.Person, 0, len(payload.People)),
	}

	for _, d := range payload.Departments {
		department := model.Department{ID: d.ID, Name: d.Name}
		if d.Parent != nil && d.Parent.ID != "" {
			parentID := d.Parent.ID
			department.ParentID = &parentID
		}
		data.Departments = append(data.Departments, department)
	}

	for _, p := range payload.People {
		person := model.Person{ID: p.ID, Name: p.Name, Title: p.Title}
		if p.Avatar != nil && p.Avatar.URL != "" {
			url := p.Avatar.URL
			person.AvatarURL = &url
		}
		if p.Department != nil {
			person.DepartmentName = p.Department.Name
			person.DepartmentID = p.Department.ID
		}
		data.People = append(data.People, person)
	}

	return data
}
