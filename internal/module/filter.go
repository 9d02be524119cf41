package module

import (
	"fmt"
	"strings"

	"github.com/bayleafwalker/bindery/internal/semver"
)

// Operator selects how a Clause compares a capability attribute.
type Operator int

const (
	// OpEqual matches when the attribute value equals Value.
	OpEqual Operator = iota
	// OpVersionRange matches when the attribute parses as a version inside the
	// clause's constraint. A missing attribute is treated as 0.0.0.
	OpVersionRange
	// OpPresent matches when the attribute exists.
	OpPresent
	// OpWildcard matches "*" against anything and "a.b.*" against names below a.b.
	OpWildcard
)

// Clause is a single attribute predicate.
type Clause struct {
	Attribute string
	Op        Operator
	Value     string

	constraint semver.Constraint
}

func Eq(attr, value string) Clause {
	return Clause{Attribute: attr, Op: OpEqual, Value: value}
}

func Present(attr string) Clause {
	return Clause{Attribute: attr, Op: OpPresent}
}

func Wildcard(attr, pattern string) Clause {
	return Clause{Attribute: attr, Op: OpWildcard, Value: pattern}
}

func VersionRange(attr, raw string) (Clause, error) {
	c, err := semver.ParseConstraint(raw)
	if err != nil {
		return Clause{}, err
	}
	return Clause{Attribute: attr, Op: OpVersionRange, Value: c.String(), constraint: c}, nil
}

func (c Clause) matches(capability *Capability) bool {
	attr, ok := capability.Attribute(c.Attribute)
	switch c.Op {
	case OpPresent:
		return ok
	case OpVersionRange:
		v := semver.Version{}
		if ok {
			parsed, err := semver.ParseVersionOrZero(attr.Value)
			if err != nil {
				return false
			}
			v = parsed
		}
		return semver.Satisfies(v, c.constraint)
	case OpWildcard:
		if !ok {
			return false
		}
		if c.Value == "*" {
			return true
		}
		if prefix, found := strings.CutSuffix(c.Value, ".*"); found {
			return strings.HasPrefix(attr.Value, prefix+".")
		}
		return attr.Value == c.Value
	default:
		return ok && attr.Value == c.Value
	}
}

func (c Clause) String() string {
	switch c.Op {
	case OpPresent:
		return c.Attribute + "=*"
	case OpVersionRange:
		return fmt.Sprintf("%s in %q", c.Attribute, c.Value)
	case OpWildcard:
		return fmt.Sprintf("%s~%s", c.Attribute, c.Value)
	default:
		return c.Attribute + "=" + c.Value
	}
}

// Filter is a conjunction of clauses.
type Filter struct {
	clauses []Clause
}

func NewFilter(clauses ...Clause) Filter {
	return Filter{clauses: append([]Clause(nil), clauses...)}
}

// PackageFilter matches package capabilities by name and version range.
func PackageFilter(name, versionRange string) (Filter, error) {
	vr, err := VersionRange(AttrVersion, versionRange)
	if err != nil {
		return Filter{}, fmt.Errorf("package %s: %w", name, err)
	}
	return NewFilter(Eq(AttrPackage, name), vr), nil
}

// ModuleFilter matches module capabilities by symbolic name and version range.
func ModuleFilter(symbolicName, versionRange string) (Filter, error) {
	vr, err := VersionRange(AttrVersion, versionRange)
	if err != nil {
		return Filter{}, fmt.Errorf("module %s: %w", symbolicName, err)
	}
	return NewFilter(Eq(AttrModule, symbolicName), vr), nil
}

// With returns a copy of f extended by clauses.
func (f Filter) With(clauses ...Clause) Filter {
	out := make([]Clause, 0, len(f.clauses)+len(clauses))
	out = append(out, f.clauses...)
	return Filter{clauses: append(out, clauses...)}
}

func (f Filter) Clauses() []Clause { return f.clauses }

// Matches reports whether every clause matches c and every mandatory
// attribute of c is named by the filter.
func (f Filter) Matches(c *Capability) bool {
	return f.MatchesIgnoringMandatory(c) && f.coversMandatory(c)
}

func (f Filter) MatchesIgnoringMandatory(c *Capability) bool {
	for _, clause := range f.clauses {
		if !clause.matches(c) {
			return false
		}
	}
	return true
}

func (f Filter) coversMandatory(c *Capability) bool {
	for _, attr := range c.Attributes() {
		if attr.Mandatory && !f.Mentions(attr.Name) {
			return false
		}
	}
	return true
}

// Mentions reports whether some clause constrains attr.
func (f Filter) Mentions(attr string) bool {
	for _, clause := range f.clauses {
		if clause.Attribute == attr {
			return true
		}
	}
	return false
}

// EqualValue returns the value of the first equality clause on attr.
func (f Filter) EqualValue(attr string) (string, bool) {
	for _, clause := range f.clauses {
		if clause.Attribute == attr && clause.Op == OpEqual {
			return clause.Value, true
		}
	}
	return "", false
}

func (f Filter) String() string {
	parts := make([]string, 0, len(f.clauses))
	for _, clause := range f.clauses {
		parts = append(parts, clause.String())
	}
	return strings.Join(parts, ", ")
}
