package domain

import (
	"fmt"
	"path"
	"strconv"
)

// RequirementKind identifies the variant of a test requirement.
type RequirementKind int

const (
	KindUnknown RequirementKind = iota
	KindLine                    // A source line
	KindDefUse                  // A definition-use association
)

func (k RequirementKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindDefUse:
		return "dua"
	default:
		return "unknown"
	}
}

// ParseRequirementKind parses the textual form produced by String.
func ParseRequirementKind(s string) (RequirementKind, error) {
	switch s {
	case "line", "LINE":
		return KindLine, nil
	case "dua", "DUA", "defuse":
		return KindDefUse, nil
	default:
		return KindUnknown, fmt.Errorf("%w: unknown requirement kind %q", ErrInvalidArgument, s)
	}
}

// Element identifies a program element eligible for suspicion scoring and
// carries its display metadata. It is comparable, so two elements with the
// same key but different fields indicate a caller bug.
type Element struct {
	// Kind selects the variant.
	Kind RequirementKind

	// ClassName is the containing class or source file.
	ClassName string

	// Line is the source line for line requirements.
	Line int

	// MethodSignature is the containing method for def-use requirements.
	MethodSignature string

	// DuaID is the association id within the method.
	DuaID int

	// Def, Use and Target are the definition, use and target lines of a
	// def-use association (Target is -1 for computational uses).
	Def    int
	Use    int
	Target int

	// Var is the variable name of a def-use association.
	Var string
}

// LineElement returns a line requirement element.
func LineElement(className string, line int) Element {
	return Element{Kind: KindLine, ClassName: className, Line: line}
}

// DefUseElement returns a def-use requirement element with no display details.
func DefUseElement(className, methodSignature string, duaID int) Element {
	return Element{
		Kind:            KindDefUse,
		ClassName:       className,
		MethodSignature: methodSignature,
		DuaID:           duaID,
		Target:          -1,
	}
}

// Key returns the kind-qualified registry key. Line and def-use keys carry
// different prefixes so they can never collide.
func (e Element) Key() string {
	switch e.Kind {
	case KindLine:
		return "L:" + e.ClassName + ":" + strconv.Itoa(e.Line)
	case KindDefUse:
		return "D:" + e.ClassName + "#" + e.MethodSignature + "#" + strconv.Itoa(e.DuaID)
	default:
		return "?:" + e.ClassName
	}
}

// PackageName returns the directory part of the class name.
func (e Element) PackageName() string {
	dir := path.Dir(e.ClassName)
	if dir == "." {
		return ""
	}
	return dir
}

// Validate checks that the identity fields required by the kind are set.
func (e Element) Validate() error {
	if e.ClassName == "" {
		return fmt.Errorf("%w: requirement without class name", ErrInvalidArgument)
	}
	switch e.Kind {
	case KindLine:
		if e.Line < 0 {
			return fmt.Errorf("%w: negative line %d in %s", ErrInvalidArgument, e.Line, e.ClassName)
		}
	case KindDefUse:
		if e.MethodSignature == "" {
			return fmt.Errorf("%w: def-use requirement without method in %s", ErrInvalidArgument, e.ClassName)
		}
	default:
		return fmt.Errorf("%w: unknown requirement kind %d", ErrInvalidArgument, e.Kind)
	}
	return nil
}

// Less orders elements by class name, kind, line, method signature, dua id
// and finally key. It is the tie-break order of the rank.
func (e Element) Less(o Element) bool {
	if e.ClassName != o.ClassName {
		return e.ClassName < o.ClassName
	}
	if e.Kind != o.Kind {
		return e.Kind < o.Kind
	}
	if e.Line != o.Line {
		return e.Line < o.Line
	}
	if e.MethodSignature != o.MethodSignature {
		return e.MethodSignature < o.MethodSignature
	}
	if e.DuaID != o.DuaID {
		return e.DuaID < o.DuaID
	}
	return e.Key() < o.Key()
}

func (e Element) String() string {
	switch e.Kind {
	case KindLine:
		return fmt.Sprintf("%s:%d", e.ClassName, e.Line)
	case KindDefUse:
		return fmt.Sprintf("%s.%s dua#%d", e.ClassName, e.MethodSignature, e.DuaID)
	default:
		return e.ClassName
	}
}

// Requirement is the accumulated spectrum of one element.
type Requirement struct {
	Element

	// CoveredByPassed is the number of passing tests that covered the element.
	CoveredByPassed int

	// CoveredByFailed is the number of failing tests that covered the element.
	CoveredByFailed int
}

// NewRequirement creates a requirement with zero counts.
func NewRequirement(e Element) *Requirement {
	return &Requirement{Element: e}
}

// Observe records one covering test outcome.
func (r *Requirement) Observe(failed bool) {
	if failed {
		r.CoveredByFailed++
	} else {
		r.CoveredByPassed++
	}
}

// Covered returns the total number of tests that covered the element.
func (r *Requirement) Covered() int {
	return r.CoveredByPassed + r.CoveredByFailed
}
