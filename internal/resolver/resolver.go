package resolver

import (
	"context"

	"github.com/bayleafwalker/bindery/internal/module"
)

// WireMap holds the wires produced by one resolution, keyed by importer.
// Every module resolved by the call has an entry, possibly empty.
type WireMap map[*module.Module][]module.Wire

// State is the resolver's view of the installed modules.
type State interface {
	// Candidates returns the capabilities satisfying req, ordered by
	// CompareCandidates. When obeyMandatory is false, mandatory attributes
	// the requirement does not name are ignored.
	Candidates(m *module.Module, req *module.Requirement, obeyMandatory bool) []*module.Capability
	// CheckExecutionEnvironment fails when m cannot run in the current
	// execution environment.
	CheckExecutionEnvironment(m *module.Module) error
	// CheckNativeLibraries fails when none of m's native libraries match the
	// current platform.
	CheckNativeLibraries(m *module.Module) error
}

// Resolver computes consistent wirings for modules.
type Resolver interface {
	// Resolve wires m and every unresolved module it transitively depends on.
	// Resolving an already resolved module yields an empty WireMap.
	Resolve(ctx context.Context, state State, m *module.Module) (WireMap, error)
	// ResolveDynamic attempts a dynamic import of pkg into the resolved module
	// m. It returns nil, nil when m cannot dynamically import pkg.
	ResolveDynamic(ctx context.Context, state State, m *module.Module, pkg string) (WireMap, error)
}
