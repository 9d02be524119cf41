package resolver

import (
	"context"
	"slices"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/bayleafwalker/bindery/internal/module"
)

// attempt owns the search state of a single Resolve or ResolveDynamic call.
type attempt struct {
	state State
	log   logr.Logger

	usesPerms   []candidateMap
	importPerms []candidateMap
	tries       int

	// Rebuilt for every candidate map tried.
	spaces  map[int]*packages
	checked map[int]bool
	// capDeps maps a capability id to the requirements that selected it.
	capDeps map[int][]*module.Requirement
	// sources memoizes package sources by capability id. It is nil while
	// package spaces are being built, since sources depend on them.
	sources map[int][]*module.Capability

	// Set for dynamic imports only.
	dynamicRoot *module.Module
	dynamicReq  *module.Requirement
}

func newAttempt(ctx context.Context, state State, m *module.Module) *attempt {
	return &attempt{
		state: state,
		log:   log.FromContext(ctx).WithValues("module", m.String()),
	}
}

// search tries candidate maps until one yields consistent package spaces.
// Uses permutations are always drained before import permutations. When
// both queues run dry, the last conflict is returned.
func (a *attempt) search(ctx context.Context, root *module.Module, initial candidateMap) (candidateMap, error) {
	a.usesPerms = append(a.usesPerms, initial)

	var last error
	for len(a.usesPerms) > 0 || len(a.importPerms) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var cands candidateMap
		if len(a.usesPerms) > 0 {
			cands, a.usesPerms = a.usesPerms[0], a.usesPerms[1:]
		} else {
			cands, a.importPerms = a.importPerms[0], a.importPerms[1:]
		}
		a.tries++

		a.spaces = map[int]*packages{}
		a.checked = map[int]bool{}
		a.capDeps = map[int][]*module.Requirement{}
		a.sources = nil
		a.calculatePackageSpaces(root, cands, map[int]bool{})

		a.sources = map[int][]*module.Capability{}
		err := a.checkConsistency(root, cands)
		if err == nil {
			return cands, nil
		}
		a.log.V(1).Info("candidate permutation rejected",
			"attempt", a.tries,
			"reason", err.Error(),
			"pendingUses", len(a.usesPerms),
			"pendingImports", len(a.importPerms),
		)
		last = err
	}
	return nil, last
}

// queueImportPermutation queues a copy of cands with req's current choice
// removed, if req has an alternative.
func (a *attempt) queueImportPermutation(cands candidateMap, req *module.Requirement) {
	cs := cands[req.ID()]
	if len(cs) < 2 {
		return
	}
	perm := cands.clone()
	perm[req.ID()] = cs[1:]
	a.importPerms = append(a.importPerms, perm)
	permutationsTotal.WithLabelValues("import").Inc()
	a.log.V(1).Info("queued import permutation", "requirement", req.String(), "dropped", cs[0].String())
}

func (a *attempt) queueUsesPermutation(perm candidateMap) {
	a.usesPerms = append(a.usesPerms, perm)
	permutationsTotal.WithLabelValues("uses").Inc()
	a.log.V(1).Info("queued uses permutation")
}

// permuteBlame drops the current choice of the most specific requirement in
// chain that still has an alternative. It stops at a requirement already
// mutated for another conflict and reports whether perm changed.
func permuteBlame(perm candidateMap, chain []*module.Requirement, mutated map[int]bool) bool {
	for i := len(chain) - 1; i >= 0; i-- {
		req := chain[i]
		if mutated[req.ID()] {
			return false
		}
		if cs := perm[req.ID()]; len(cs) > 1 {
			mutated[req.ID()] = true
			perm[req.ID()] = cs[1:]
			return true
		}
	}
	return false
}

// repairBlame mutates perm for one uses conflict blamed on chain. It first
// tries permuteBlame. When no requirement in the chain has an alternative,
// the last requirement loses its only candidate and its module is
// invalidated. It reports false when the invalidation leaves perm with no
// way to resolve, in which case perm must not be queued.
func (a *attempt) repairBlame(perm candidateMap, chain []*module.Requirement, mutated map[int]bool) bool {
	if len(chain) == 0 || permuteBlame(perm, chain, mutated) {
		return true
	}
	for _, req := range chain {
		if mutated[req.ID()] {
			return true
		}
	}
	last := chain[len(chain)-1]
	if len(perm[last.ID()]) == 0 {
		// Bound through a wire of a resolved module.
		return true
	}
	mutated[last.ID()] = true
	delete(perm, last.ID())
	if last.IsOptional() {
		return true
	}
	a.log.V(1).Info("invalidating module", "invalid", last.Module().String(), "requirement", last.String())
	return a.invalidate(perm, last.Module(), map[int]bool{})
}

// invalidate removes m from perm. Its requirements lose their candidates and
// its capabilities are dropped from every requirement that selected them in
// this attempt. A mandatory requirement left without candidates invalidates
// its own module in turn. It reports false when nothing selected m, since
// then m is the root of the resolution or a module it cannot do without.
func (a *attempt) invalidate(perm candidateMap, m *module.Module, seen map[int]bool) bool {
	if seen[m.ID()] {
		return true
	}
	seen[m.ID()] = true

	for _, req := range m.Requirements() {
		delete(perm, req.ID())
	}

	required := false
	var next []*module.Module
	for _, c := range m.Capabilities() {
		reqs, ok := a.capDeps[c.ID()]
		if !ok {
			continue
		}
		required = true
		for _, req := range reqs {
			cs, ok := perm[req.ID()]
			if !ok {
				continue
			}
			cs = slices.DeleteFunc(slices.Clone(cs), func(x *module.Capability) bool { return x == c })
			if len(cs) > 0 {
				perm[req.ID()] = cs
				continue
			}
			delete(perm, req.ID())
			if !req.IsOptional() {
				next = append(next, req.Module())
			}
		}
	}
	if !required {
		return false
	}
	for _, n := range next {
		if !a.invalidate(perm, n, seen) {
			return false
		}
	}
	return true
}
