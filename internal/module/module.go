package module

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bayleafwalker/bindery/internal/semver"
)

var (
	// ErrAlreadyResolved is returned when a resolved module is marked resolved again.
	ErrAlreadyResolved = errors.New("module already resolved")
	// ErrNotResolved is returned when dynamic wires are added to an unresolved module.
	ErrNotResolved = errors.New("module not resolved")
)

// NativeLibrary is a platform specific library a module ships. Empty OSNames
// or Processors match any platform.
type NativeLibrary struct {
	Path       string
	OSNames    []string
	Processors []string
}

// Module is a resolvable unit. Capabilities and requirements are declared
// while the module is being built and are treated as read-only afterwards.
type Module struct {
	arena   *Arena
	id      int
	name    string
	version semver.Version

	caps         []*Capability
	reqs         []*Requirement
	dynamicReqs  []*Requirement
	environments []string
	natives      []NativeLibrary

	mu       sync.RWMutex
	resolved bool
	wires    []Wire
}

func (m *Module) ID() int                 { return m.id }
func (m *Module) SymbolicName() string    { return m.name }
func (m *Module) Version() semver.Version { return m.version }

func (m *Module) String() string {
	return fmt.Sprintf("%s@%s", m.name, m.version)
}

// Capabilities returns the module's capabilities in declaration order.
func (m *Module) Capabilities() []*Capability { return m.caps }

// Requirements returns the module's static requirements in declaration order.
func (m *Module) Requirements() []*Requirement { return m.reqs }

// DynamicRequirements returns the module's dynamic import requirements.
func (m *Module) DynamicRequirements() []*Requirement { return m.dynamicReqs }

// ExecutionEnvironments returns the environments the module can run in.
// An empty list means any environment.
func (m *Module) ExecutionEnvironments() []string { return m.environments }

func (m *Module) NativeLibraries() []NativeLibrary { return m.natives }

func (m *Module) IsResolved() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolved
}

// Wires returns a copy of the module's wires.
func (m *Module) Wires() []Wire {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Wire, len(m.wires))
	copy(out, m.wires)
	return out
}

// MarkResolved records the module's wires and flips it to resolved.
func (m *Module) MarkResolved(wires []Wire) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.resolved {
		return fmt.Errorf("%s: %w", m, ErrAlreadyResolved)
	}
	m.resolved = true
	m.wires = append([]Wire(nil), wires...)
	return nil
}

// AddDynamicWires appends wires created by a dynamic import.
func (m *Module) AddDynamicWires(wires []Wire) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.resolved {
		return fmt.Errorf("%s: %w", m, ErrNotResolved)
	}
	m.wires = append(m.wires, wires...)
	return nil
}

func (m *Module) SetExecutionEnvironments(envs ...string) {
	m.environments = append([]string(nil), envs...)
}

func (m *Module) AddNativeLibrary(lib NativeLibrary) {
	m.natives = append(m.natives, lib)
}

// AddCapability declares a capability in the given namespace.
func (m *Module) AddCapability(namespace string, attrs []Attribute, dirs []Directive, uses []string) *Capability {
	c := &Capability{
		module:     m,
		namespace:  namespace,
		attrs:      append([]Attribute(nil), attrs...),
		directives: append([]Directive(nil), dirs...),
		uses:       append([]string(nil), uses...),
	}
	if a, ok := c.Attribute(AttrVersion); ok {
		// Unparseable versions fall back to 0.0.0 like a missing attribute.
		c.version, _ = semver.ParseVersionOrZero(a.Value)
	}
	m.arena.addCapability(c)
	m.caps = append(m.caps, c)
	return c
}

// AddRequirement declares a static requirement.
func (m *Module) AddRequirement(namespace string, filter Filter, dirs ...Directive) *Requirement {
	r := m.newRequirement(namespace, filter, dirs, false)
	m.reqs = append(m.reqs, r)
	return r
}

// AddDynamicRequirement declares a dynamic package import.
func (m *Module) AddDynamicRequirement(filter Filter, dirs ...Directive) *Requirement {
	r := m.newRequirement(NamespacePackage, filter, dirs, true)
	m.dynamicReqs = append(m.dynamicReqs, r)
	return r
}

// NewWireRequirement creates a requirement that is registered with the arena
// but not declared on the module. Dynamic imports use it so each dynamic wire
// carries its own requirement.
func (m *Module) NewWireRequirement(namespace string, filter Filter) *Requirement {
	return m.newRequirement(namespace, filter, nil, false)
}

// QueryRequirement returns a package requirement that is neither registered
// with the arena nor declared on the module. Its ID is -1.
func (m *Module) QueryRequirement(filter Filter) *Requirement {
	return &Requirement{id: -1, module: m, namespace: NamespacePackage, filter: filter}
}

func (m *Module) newRequirement(namespace string, filter Filter, dirs []Directive, dynamic bool) *Requirement {
	r := &Requirement{
		module:     m,
		namespace:  namespace,
		filter:     filter,
		directives: append([]Directive(nil), dirs...),
		dynamic:    dynamic,
	}
	m.arena.addRequirement(r)
	return r
}

// ExportModule declares the module's identity capability.
func (m *Module) ExportModule() *Capability {
	return m.AddCapability(NamespaceModule, []Attribute{
		{Name: AttrModule, Value: m.name},
		{Name: AttrVersion, Value: m.version.String()},
	}, nil, nil)
}

// ExportPackage declares a package capability.
func (m *Module) ExportPackage(name string, version semver.Version, uses ...string) *Capability {
	return m.AddCapability(NamespacePackage, []Attribute{
		{Name: AttrPackage, Value: name},
		{Name: AttrVersion, Value: version.String()},
	}, nil, uses)
}

// ImportPackage declares a package import limited to versionRange.
func (m *Module) ImportPackage(name, versionRange string, dirs ...Directive) (*Requirement, error) {
	f, err := PackageFilter(name, versionRange)
	if err != nil {
		return nil, err
	}
	return m.AddRequirement(NamespacePackage, f, dirs...), nil
}

// RequireModule declares a requirement on another module's identity capability.
func (m *Module) RequireModule(symbolicName, versionRange string, dirs ...Directive) (*Requirement, error) {
	f, err := ModuleFilter(symbolicName, versionRange)
	if err != nil {
		return nil, err
	}
	return m.AddRequirement(NamespaceModule, f, dirs...), nil
}
