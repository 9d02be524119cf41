// Package registry holds the installed modules and answers the resolver's
// candidate and platform queries.
package registry

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sync"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/resolver"
	"github.com/bayleafwalker/bindery/internal/semver"
)

var (
	// ErrModuleNotFound is returned by Find when no module matches.
	ErrModuleNotFound = errors.New("module not found")
	// ErrUnsupportedEnvironment is wrapped by the environment checks.
	ErrUnsupportedEnvironment = errors.New("unsupported environment")
)

// Environment describes the platform modules are resolved for.
type Environment struct {
	OS   string
	Arch string
	// ExecutionEnvironments are the environment names the platform provides.
	ExecutionEnvironments []string
}

// HostEnvironment describes the running process.
func HostEnvironment() Environment {
	return Environment{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// Registry is an in-memory resolver.State.
type Registry struct {
	arena *module.Arena
	env   Environment

	mu      sync.RWMutex
	modules []*module.Module
}

var _ resolver.State = (*Registry)(nil)

func New(env Environment) *Registry {
	return &Registry{arena: module.NewArena(), env: env}
}

func (r *Registry) Environment() Environment { return r.env }

// NewModule creates and installs an empty module.
func (r *Registry) NewModule(symbolicName string, version semver.Version) *module.Module {
	m := r.arena.NewModule(symbolicName, version)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, m)
	return m
}

// Modules returns the installed modules in installation order.
func (r *Registry) Modules() []*module.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.modules)
}

// Find returns the highest installed version of symbolicName accepted by
// versionConstraint. An empty constraint accepts any version.
func (r *Registry) Find(symbolicName, versionConstraint string) (*module.Module, error) {
	c, err := semver.ParseConstraint(versionConstraint)
	if err != nil {
		return nil, err
	}

	var (
		named    []*module.Module
		versions []semver.Version
	)
	for _, m := range r.Modules() {
		if m.SymbolicName() == symbolicName {
			named = append(named, m)
			versions = append(versions, m.Version())
		}
	}
	best, ok := semver.MaxSatisfying(c, versions)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", symbolicName, c, ErrModuleNotFound)
	}
	for _, m := range named {
		if semver.Compare(m.Version(), best) == 0 {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", symbolicName, c, ErrModuleNotFound)
}

// Candidates returns every installed capability matching req, best first.
func (r *Registry) Candidates(_ *module.Module, req *module.Requirement, obeyMandatory bool) []*module.Capability {
	var out []*module.Capability
	for _, m := range r.Modules() {
		for _, c := range m.Capabilities() {
			if c.Namespace() != req.Namespace() {
				continue
			}
			matched := req.Matches(c)
			if !obeyMandatory {
				matched = req.Filter().MatchesIgnoringMandatory(c)
			}
			if matched {
				out = append(out, c)
			}
		}
	}
	slices.SortFunc(out, resolver.CompareCandidates)
	return out
}

// CheckExecutionEnvironment succeeds when m names no execution environment
// or at least one the registry's environment provides.
func (r *Registry) CheckExecutionEnvironment(m *module.Module) error {
	required := m.ExecutionEnvironments()
	if len(required) == 0 {
		return nil
	}
	for _, env := range required {
		if slices.Contains(r.env.ExecutionEnvironments, env) {
			return nil
		}
	}
	return fmt.Errorf("%s requires one of %v, have %v: %w", m, required, r.env.ExecutionEnvironments, ErrUnsupportedEnvironment)
}

// CheckNativeLibraries succeeds when m ships no native libraries or at least
// one of them matches the registry's OS and architecture.
func (r *Registry) CheckNativeLibraries(m *module.Module) error {
	libs := m.NativeLibraries()
	if len(libs) == 0 {
		return nil
	}
	for _, lib := range libs {
		if matchesAny(lib.OSNames, r.env.OS) && matchesAny(lib.Processors, r.env.Arch) {
			return nil
		}
	}
	return fmt.Errorf("%s has no native library for %s/%s: %w", m, r.env.OS, r.env.Arch, ErrUnsupportedEnvironment)
}

func matchesAny(allowed []string, v string) bool {
	return len(allowed) == 0 || slices.Contains(allowed, v)
}

// Commit applies a wire map produced by Resolve. Every module in wm must be
// unresolved; when one is not, nothing is changed and the error wraps
// module.ErrAlreadyResolved.
func (r *Registry) Commit(wm resolver.WireMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mods := sortedModules(wm)
	for _, m := range mods {
		if m.IsResolved() {
			return fmt.Errorf("commit: %s: %w", m, module.ErrAlreadyResolved)
		}
	}
	return markResolved(mods, wm)
}

// CommitDynamic applies a wire map produced by ResolveDynamic for root. root
// must be resolved and only gets wires for requirements it does not declare
// statically; every other module in wm must be unresolved. The map is
// checked as a whole before anything changes.
func (r *Registry) CommitDynamic(root *module.Module, wm resolver.WireMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !root.IsResolved() {
		return fmt.Errorf("commit: %s: %w", root, module.ErrNotResolved)
	}
	added, ok := wm[root]
	if !ok {
		return fmt.Errorf("commit: no wires for dynamic import root %s", root)
	}
	for _, w := range added {
		if w.Importer() != root {
			return fmt.Errorf("commit: wire %s -> %s is not imported by %s", w.Importer(), w.Exporter(), root)
		}
		if slices.Contains(root.Requirements(), w.Requirement()) {
			return fmt.Errorf("commit: %s: static requirement %s already wired: %w", root, w.Requirement(), module.ErrAlreadyResolved)
		}
	}

	var mods []*module.Module
	for _, m := range sortedModules(wm) {
		if m == root {
			continue
		}
		if m.IsResolved() {
			return fmt.Errorf("commit: %s: %w", m, module.ErrAlreadyResolved)
		}
		mods = append(mods, m)
	}

	if err := markResolved(mods, wm); err != nil {
		return err
	}
	if err := root.AddDynamicWires(added); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sortedModules(wm resolver.WireMap) []*module.Module {
	mods := make([]*module.Module, 0, len(wm))
	for m := range wm {
		mods = append(mods, m)
	}
	slices.SortFunc(mods, func(a, b *module.Module) int { return a.ID() - b.ID() })
	return mods
}

func markResolved(mods []*module.Module, wm resolver.WireMap) error {
	for _, m := range mods {
		if err := m.MarkResolved(wm[m]); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	return nil
}
