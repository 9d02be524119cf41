package module

import (
	"fmt"
	"strings"

	"github.com/bayleafwalker/bindery/internal/semver"
)

// Well-known namespaces.
const (
	NamespacePackage = "package"
	NamespaceModule  = "module"
)

// Well-known attributes.
const (
	AttrPackage = "package"
	AttrModule  = "module"
	AttrVersion = "version"
)

// Well-known directives and their values.
const (
	DirectiveVisibility = "visibility"
	VisibilityPrivate   = "private"
	VisibilityReexport  = "reexport"

	DirectiveResolution = "resolution"
	ResolutionMandatory = "mandatory"
	ResolutionOptional  = "optional"
)

type Attribute struct {
	Name  string
	Value string
	// Mandatory attributes must be named by a requirement's filter for the
	// requirement to match.
	Mandatory bool
}

type Directive struct {
	Name  string
	Value string
}

func lookupDirective(dirs []Directive, name string) (string, bool) {
	for _, d := range dirs {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}

// Capability is something a module provides, such as a package or the module
// identity itself.
type Capability struct {
	id         int
	module     *Module
	namespace  string
	attrs      []Attribute
	directives []Directive
	uses       []string
	version    semver.Version
}

func (c *Capability) ID() int                 { return c.id }
func (c *Capability) Module() *Module         { return c.module }
func (c *Capability) Namespace() string       { return c.namespace }
func (c *Capability) Attributes() []Attribute { return c.attrs }
func (c *Capability) Directives() []Directive { return c.directives }
func (c *Capability) Version() semver.Version { return c.version }

// Uses returns the packages this capability's implementation depends on.
func (c *Capability) Uses() []string { return c.uses }

func (c *Capability) Attribute(name string) (Attribute, bool) {
	for _, a := range c.attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

func (c *Capability) Directive(name string) (string, bool) {
	return lookupDirective(c.directives, name)
}

// Name returns the package name for package capabilities, the symbolic name
// for module capabilities and "" otherwise.
func (c *Capability) Name() string {
	var attr string
	switch c.namespace {
	case NamespacePackage:
		attr = AttrPackage
	case NamespaceModule:
		attr = AttrModule
	default:
		return ""
	}
	a, _ := c.Attribute(attr)
	return a.Value
}

func (c *Capability) String() string {
	if name := c.Name(); name != "" {
		return fmt.Sprintf("%s[%s=%s;version=%s]", c.module, c.namespace, name, c.version)
	}
	return fmt.Sprintf("%s[%s]", c.module, c.namespace)
}

// Requirement is a typed matcher a module declares over other modules'
// capabilities.
type Requirement struct {
	id         int
	module     *Module
	namespace  string
	filter     Filter
	directives []Directive
	dynamic    bool
}

func (r *Requirement) ID() int                 { return r.id }
func (r *Requirement) Module() *Module         { return r.module }
func (r *Requirement) Namespace() string       { return r.namespace }
func (r *Requirement) Filter() Filter          { return r.filter }
func (r *Requirement) Directives() []Directive { return r.directives }
func (r *Requirement) IsDynamic() bool         { return r.dynamic }

func (r *Requirement) Directive(name string) (string, bool) {
	return lookupDirective(r.directives, name)
}

func (r *Requirement) IsOptional() bool {
	v, _ := r.Directive(DirectiveResolution)
	return v == ResolutionOptional
}

// IsReexport reports whether packages reached through this requirement are
// re-exported to modules requiring the owner.
func (r *Requirement) IsReexport() bool {
	v, _ := r.Directive(DirectiveVisibility)
	return v == VisibilityReexport
}

// Matches reports whether c is in the requirement's namespace and satisfies
// its filter, mandatory attributes included.
func (r *Requirement) Matches(c *Capability) bool {
	return c.namespace == r.namespace && r.filter.Matches(c)
}

func (r *Requirement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s requires %s(%s)", r.module, r.namespace, r.filter)
	if r.IsOptional() {
		sb.WriteString(" optional")
	}
	if r.dynamic {
		sb.WriteString(" dynamic")
	}
	return sb.String()
}
