package quill

import (
	"errors"
	"fmt"
)

// Failure classifies build errors. Every failure aborts the build.
type Failure string

const (
	FailureConfig Failure = "config"
	FailureNaming Failure = "naming"
	FailureRender Failure = "render"
	FailureIO     Failure = "io"
)

// BuildError is returned by [Builder.Build] for any failed stage.
type BuildError struct {
	Failure Failure
	Stage   Stage
	Path    string // Offending file, if any
	Err     error
}

func (e *BuildError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("[%s %s] %s", e.Stage, e.Failure, e.Err.Error())
	}

	return fmt.Sprintf("[%s %s] %s: %s", e.Stage, e.Failure, e.Path, e.Err.Error())
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func failure(f Failure, path string, err error) error {
	return &BuildError{
		Failure: f,
		Path:    path,
		Err:     err,
	}
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var e *BuildError
	if !errors.As(err, &e) {
		return 1
	}

	switch e.Failure {
	case FailureNaming:
		return 2
	case FailureConfig:
		return 7
	case FailureRender, FailureIO:
		return 11
	}

	return 1
}
