package main

import (
	"errors"

	"github.com/deppfellow/orgdir/internal/service"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK       = 0
	exitFailure  = 1
	exitConfig   = 2
	exitFetch    = 3
	exitValidate = 4
	exitDB       = 5
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}

// loadExitCode maps a loader failure to the exit code of its stage.
func loadExitCode(err error) int {
	var loadErr *service.LoadError
	if !errors.As(err, &loadErr) {
		return exitFailure
	}

	switch loadErr.Stage {
	case service.StageFetch:
		return exitFetch
	case service.StageValidate:
		return exitValidate
	case service.StageSchema, service.StageDepartments, service.StagePeople:
		return exitDB
	default:
		return exitFailure
	}
}
