package resolver

import (
	"cmp"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/semver"
)

// CompareCandidates orders capabilities by resolution preference:
//  1. capabilities of resolved modules first
//  2. namespace, lexically
//  3. package or module name lexically, then highest version first
//  4. module id ascending
//  5. capability id ascending
//
// Two capabilities compare equal only when they are the same capability.
func CompareCandidates(a, b *module.Capability) int {
	if a == b {
		return 0
	}
	ar, br := a.Module().IsResolved(), b.Module().IsResolved()
	if ar != br {
		if ar {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.Namespace(), b.Namespace()); c != 0 {
		return c
	}
	if a.Namespace() == module.NamespacePackage || a.Namespace() == module.NamespaceModule {
		if c := cmp.Compare(a.Name(), b.Name()); c != 0 {
			return c
		}
		if c := semver.Compare(a.Version(), b.Version()); c != 0 {
			return -c
		}
	}
	if c := cmp.Compare(a.Module().ID(), b.Module().ID()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID(), b.ID())
}
