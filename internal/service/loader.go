// Package service contains the business logic between the transports
// (HTTP, CLI, background jobs) and the repositories.
package service

import (
	"context"
	"time"

	"github.com/deppfellow/orgdir/internal/lib/contentapi"
	"github.com/deppfellow/orgdir/internal/lib/hierarchy"
	"github.com/deppfellow/orgdir/internal/model"
	"github.com/rs/zerolog"
)

type Fetcher interface {
	FetchOrgData(ctx context.Context) (*contentapi.OrgData, error)
}

type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

type DepartmentWriter interface {
	InsertAll(ctx context.Context, departments []model.Department, replace bool) (int, error)
	ExistingIDs(ctx context.Context, ids []string) ([]string, error)
}

type PersonWriter interface {
	InsertAll(ctx context.Context, people []model.Person, match string) (int, error)
}

// CacheInvalidator is satisfied by the Redis search cache.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// LoaderService copies the org chart from the content API into Postgres.
type LoaderService struct {
	fetcher     Fetcher
	schema      SchemaEnsurer
	departments DepartmentWriter
	people      PersonWriter
	cache       CacheInvalidator
	match       string
	logger      *zerolog.Logger
}

// NewLoaderService builds a loader. cache may be nil.
func NewLoaderService(
	fetcher Fetcher,
	schema SchemaEnsurer,
	departments DepartmentWriter,
	people PersonWriter,
	cache CacheInvalidator,
	match string,
	logger *zerolog.Logger,
) *LoaderService {
	return &LoaderService{
		fetcher:     fetcher,
		schema:      schema,
		departments: departments,
		people:      people,
		cache:       cache,
		match:       match,
		logger:      logger,
	}
}

// Run performs one load.
//
// Departments and people are written in two separate transactions. A
// failure in the people stage leaves the committed departments in place.
// Every error is a *LoadError naming the stage that failed.
func (s *LoaderService) Run(ctx context.Context, opts model.LoadOptions) (*model.LoadReport, error) {
	start := time.Now()
	log := s.logger.With().Bool("replace", opts.Replace).Str("department_match", s.match).Logger()

	data, err := s.fetcher.FetchOrgData(ctx)
	if err != nil {
		return nil, s.fail(&log, StageFetch, err)
	}
	log.Info().
		Int("departments", len(data.Departments)).
		Int("people", len(data.People)).
		Msg("fetched org data")

	if err := s.schema.EnsureSchema(ctx); err != nil {
		return nil, s.fail(&log, StageSchema, err)
	}

	// appended departments may hang off rows from an earlier load; a replace
	// empties the table, so there the batch has to close on itself
	var stored []string
	if parents := hierarchy.ExternalParents(data.Departments); len(parents) > 0 && !opts.Replace {
		stored, err = s.departments.ExistingIDs(ctx, parents)
		if err != nil {
			return nil, s.fail(&log, StageDepartments, err)
		}
	}

	if err := hierarchy.Validate(data.Departments, stored...); err != nil {
		return nil, s.fail(&log, StageValidate, err)
	}

	duplicates := hierarchy.DuplicateNames(data.Departments)
	if len(duplicates) > 0 {
		log.Warn().
			Strs("names", duplicates).
			Msg("department names are not unique, people may resolve to either department")
	}

	departments, err := s.departments.InsertAll(ctx, data.Departments, opts.Replace)
	if err != nil {
		return nil, s.fail(&log, StageDepartments, err)
	}
	log.Info().Int("count", departments).Msg("departments committed")

	// departments changed, so cached joins are stale whatever happens next
	defer s.invalidate(ctx, &log)

	people, err := s.people.InsertAll(ctx, data.People, s.match)
	if err != nil {
		return nil, s.fail(&log, StagePeople, err)
	}
	log.Info().Int("count", people).Msg("people committed")

	roots := hierarchy.Roots(data.Departments)
	rootIDs := make([]string, 0, len(roots))
	for _, r := range roots {
		rootIDs = append(rootIDs, r.ID)
	}

	report := &model.LoadReport{
		Departments:              departments,
		People:                   people,
		RootDepartments:          rootIDs,
		DuplicateDepartmentNames: duplicates,
		Replaced:                 opts.Replace,
		StartedAt:                start,
		Duration:                 time.Since(start),
	}

	log.Info().Dur("duration", report.Duration).Msg("load finished")
	return report, nil
}

func (s *LoaderService) fail(log *zerolog.Logger, stage LoadStage, err error) error {
	loadErr := &LoadError{Stage: stage, Err: err}
	log.Error().Err(err).Str("stage", string(stage)).Msg("load failed")
	return loadErr
}

func (s *LoaderService) invalidate(ctx context.Context, log *zerolog.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate search cache")
	}
}
