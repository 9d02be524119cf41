package resolver

import (
	"maps"
	"slices"

	"github.com/bayleafwalker/bindery/internal/module"
)

// populate fills cands with the candidates of every requirement of m and of
// every unresolved module those candidates belong to. Candidates whose own
// subgraph cannot be populated are pruned. Results, failures included, are
// cached per module id so later lookups short-circuit.
func (a *attempt) populate(m *module.Module, cands candidateMap, cache map[int]*populateEntry) error {
	e, ok := cache[m.ID()]
	switch {
	case !ok:
		if err := a.checkEnvironment(m); err != nil {
			cache[m.ID()] = &populateEntry{status: populateFailed, err: err}
			return err
		}
		e = &populateEntry{
			local:     candidateMap{},
			remaining: slices.Clone(m.Requirements()),
		}
		cache[m.ID()] = e
	case e.status == populateFailed:
		return e.err
	case e.status == populateDone:
		return nil
	default:
		// Re-entered through a cycle: continue where the outer call is.
		e.cycles++
	}
	depth := e.cycles

	for len(e.remaining) > 0 && e.status == populateInProgress {
		req := e.remaining[0]
		e.remaining = e.remaining[1:]

		found := a.state.Candidates(m, req, true)
		kept := make([]*module.Capability, 0, len(found))
		for _, c := range found {
			if !c.Module().IsResolved() {
				if err := a.populate(c.Module(), cands, cache); err != nil {
					a.log.V(1).Info("pruned candidate", "requirement", req.String(), "candidate", c.String(), "reason", err.Error())
					continue
				}
			}
			kept = append(kept, c)
		}

		if len(kept) == 0 {
			if req.IsOptional() {
				continue
			}
			e.status = populateFailed
			e.err = &ResolveError{Kind: KindMissingRequirement, Module: m, Requirement: req}
			return e.err
		}
		e.local[req.ID()] = kept
	}
	if e.status == populateFailed {
		return e.err
	}

	if depth > 0 {
		e.cycles--
		return nil
	}
	e.status = populateDone
	maps.Copy(cands, e.local)
	return nil
}

func (a *attempt) checkEnvironment(m *module.Module) error {
	if err := a.state.CheckExecutionEnvironment(m); err != nil {
		return &ResolveError{Kind: KindEnvironment, Module: m, Reason: "execution environment not supported", Err: err}
	}
	if err := a.state.CheckNativeLibraries(m); err != nil {
		return &ResolveError{Kind: KindEnvironment, Module: m, Reason: "no matching native library", Err: err}
	}
	return nil
}
