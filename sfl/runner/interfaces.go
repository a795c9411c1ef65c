package runner

import (
	"context"
	"time"

	"github.com/example/sfl-lite/sfl/domain"
)

// TestCase identifies a single test to execute.
type TestCase struct {
	// Package is the package or suite containing the test.
	Package string

	// Name is the test name within the package.
	Name string

	// Index is the position in the execution order.
	Index int
}

// ID returns a session-unique test identifier.
func (t TestCase) ID() string {
	if t.Package == "" {
		return t.Name
	}
	return t.Package + "." + t.Name
}

// TestExecutor discovers and executes tests one at a time.
type TestExecutor interface {
	// List returns the tests to run in execution order.
	List(ctx context.Context) ([]TestCase, error)

	// Run executes a single test and reports its outcome. An error means the
	// test could not be executed at all and aborts the session.
	Run(ctx context.Context, tc TestCase) (*domain.TestResult, error)
}

// CoverageReader returns the coverage snapshot of the test that just ran.
type CoverageReader interface {
	Read(ctx context.Context, tc TestCase) (*domain.Snapshot, error)
}

// Source is a TestExecutor that also exposes per-test coverage.
type Source interface {
	TestExecutor
	CoverageReader
}

// GoTestConfig specifies how to run Go tests.
type GoTestConfig struct {
	// Packages are the package patterns to test.
	Packages []string

	// CoverPkg is passed to -coverpkg; empty covers the tested package only.
	CoverPkg string

	// Timeout is the maximum time for one test.
	Timeout time.Duration

	// Dir is the working directory (module root).
	Dir string

	// GoBinary is the go command to run.
	GoBinary string

	// Environment contains additional environment variables.
	Environment map[string]string

	// TrimPrefix is removed from profile file names to form class names.
	TrimPrefix string
}
