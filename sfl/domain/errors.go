package domain

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidConfig is returned when configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownHeuristic is returned when a rank is requested with a heuristic
	// name that is not registered.
	ErrUnknownHeuristic = errors.New("unknown heuristic")

	// ErrRequirementConflict is returned when a key is reused with different
	// display metadata.
	ErrRequirementConflict = errors.New("requirement metadata conflict")

	// ErrNoTestRunning is returned when a test finishes without having started.
	ErrNoTestRunning = errors.New("no test in progress")

	// ErrSessionClosed is returned when a finished session receives events.
	ErrSessionClosed = errors.New("session already finished")

	// ErrSessionNotFinished is returned when ranking a session still collecting.
	ErrSessionNotFinished = errors.New("session not finished")

	// ErrSessionAborted is returned when ranking a session that was aborted.
	ErrSessionAborted = errors.New("session aborted")

	// ErrSessionNotFound is returned when a session id is not known.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCoverageUnavailable is returned when a test's coverage cannot be read.
	ErrCoverageUnavailable = errors.New("coverage unavailable")
)
