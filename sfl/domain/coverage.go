package domain

import "fmt"

// RawStatus is a per-element execution status as reported by a coverage
// analyzer. The values follow the JaCoCo counter status codes.
type RawStatus int

const (
	RawEmpty         RawStatus = 0 // No instructions on the element
	RawNotCovered    RawStatus = 1
	RawFullyCovered  RawStatus = 2
	RawPartlyCovered RawStatus = 3
)

func (s RawStatus) String() string {
	switch s {
	case RawEmpty:
		return "EMPTY"
	case RawNotCovered:
		return "NOT_COVERED"
	case RawFullyCovered:
		return "FULLY_COVERED"
	case RawPartlyCovered:
		return "PARTLY_COVERED"
	default:
		return fmt.Sprintf("RawStatus(%d)", int(s))
	}
}

// ParseRawStatus parses either the name or the numeric code of a status.
func ParseRawStatus(s string) (RawStatus, error) {
	switch s {
	case "EMPTY", "0":
		return RawEmpty, nil
	case "NOT_COVERED", "1":
		return RawNotCovered, nil
	case "FULLY_COVERED", "2":
		return RawFullyCovered, nil
	case "PARTLY_COVERED", "3":
		return RawPartlyCovered, nil
	default:
		return RawEmpty, fmt.Errorf("%w: unknown coverage status %q", ErrInvalidArgument, s)
	}
}

// CoverageStatus is the classified coverage of one element in one test.
type CoverageStatus int

const (
	NotCovered CoverageStatus = iota
	PartlyCovered
	FullyCovered
)

func (s CoverageStatus) String() string {
	switch s {
	case PartlyCovered:
		return "PARTLY_COVERED"
	case FullyCovered:
		return "FULLY_COVERED"
	default:
		return "NOT_COVERED"
	}
}

// Classify maps a raw status to a coverage status. The mapping is total:
// empty and unknown codes are not covered.
func Classify(raw RawStatus) CoverageStatus {
	switch raw {
	case RawFullyCovered:
		return FullyCovered
	case RawPartlyCovered:
		return PartlyCovered
	default:
		return NotCovered
	}
}

// CountsAsCovered reports whether a classified status is evidence of
// coverage for the given requirement kind. A def-use association must be
// fully covered; a line counts when executed on any path.
func CountsAsCovered(kind RequirementKind, status CoverageStatus) bool {
	switch kind {
	case KindDefUse:
		return status == FullyCovered
	case KindLine:
		return status == FullyCovered || status == PartlyCovered
	default:
		return false
	}
}

// Observation is one element seen by the analyzer in one test.
type Observation struct {
	Element Element
	Status  RawStatus
}

// Covered applies the classifier and the per-kind policy.
func (o Observation) Covered() bool {
	return CountsAsCovered(o.Element.Kind, Classify(o.Status))
}

// Snapshot is the coverage of a single test.
type Snapshot struct {
	Observations []Observation
}

// Len returns the number of observations.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}
