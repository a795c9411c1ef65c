package domain

import "fmt"

// SessionStatus represents the lifecycle state of a collection session.
type SessionStatus int

const (
	StatusCollecting SessionStatus = iota // Tests are being observed
	StatusFinished                        // All tests observed, ready to rank
	StatusAborted                         // Execution stopped early, rank refused
)

func (s SessionStatus) String() string {
	switch s {
	case StatusCollecting:
		return "COLLECTING"
	case StatusFinished:
		return "FINISHED"
	case StatusAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// ParseSessionStatus parses the textual form produced by String.
func ParseSessionStatus(s string) (SessionStatus, error) {
	switch s {
	case "COLLECTING":
		return StatusCollecting, nil
	case "FINISHED":
		return StatusFinished, nil
	case "ABORTED":
		return StatusAborted, nil
	default:
		return StatusCollecting, fmt.Errorf("%w: unknown session status %q", ErrInvalidArgument, s)
	}
}

// IsTerminal returns true if this is a final status.
func (s SessionStatus) IsTerminal() bool {
	return s == StatusFinished || s == StatusAborted
}
