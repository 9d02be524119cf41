package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bayleafwalker/bindery/internal/module"
)

var (
	// ErrMissingRequirement indicates a non-optional requirement has no
	// surviving candidates.
	ErrMissingRequirement = errors.New("missing requirement")
	// ErrEnvironment indicates a module's execution environment or native
	// libraries cannot be satisfied on this platform.
	ErrEnvironment = errors.New("unsatisfied environment")
	// ErrConflict indicates every candidate permutation ends in a package
	// space conflict.
	ErrConflict = errors.New("package space conflict")
)

type ErrorKind int

const (
	KindMissingRequirement ErrorKind = iota + 1
	KindEnvironment
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingRequirement:
		return "MissingRequirement"
	case KindEnvironment:
		return "Environment"
	case KindConflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

// ResolveError is returned by every failed resolution. It names the module
// and, where known, the requirement that could not be satisfied.
type ResolveError struct {
	Kind        ErrorKind
	Module      *module.Module
	Requirement *module.Requirement
	// Package is the package name a conflict was detected on.
	Package string
	// Chain is the requirement chain blamed for the conflicting capability.
	Chain  []*module.Requirement
	Reason string
	// Err is the underlying cause, for example a State environment check.
	Err error
}

func (e *ResolveError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "unable to resolve %s", e.Module)
	switch e.Kind {
	case KindMissingRequirement:
		fmt.Fprintf(&sb, ": missing requirement %s", e.Requirement)
	case KindConflict:
		fmt.Fprintf(&sb, ": constraint violation for package %q", e.Package)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if len(e.Chain) > 0 {
		links := make([]string, 0, len(e.Chain))
		for _, r := range e.Chain {
			links = append(links, r.String())
		}
		fmt.Fprintf(&sb, " (blamed on %s)", strings.Join(links, " -> "))
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Is lets errors.Is match a ResolveError against the kind sentinels.
func (e *ResolveError) Is(target error) bool {
	switch target {
	case ErrMissingRequirement:
		return e.Kind == KindMissingRequirement
	case ErrEnvironment:
		return e.Kind == KindEnvironment
	case ErrConflict:
		return e.Kind == KindConflict
	}
	return false
}

func (e *ResolveError) Unwrap() error { return e.Err }
