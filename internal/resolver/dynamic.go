package resolver

import (
	"slices"

	"github.com/bayleafwalker/bindery/internal/module"
)

// dynamicCandidates finds the dynamic requirement of m that can import pkg
// and the candidates it accepts. It returns nil when m cannot dynamically
// import pkg: m is unresolved, m exports pkg, pkg already reaches m through
// a wire or a static import, or no dynamic requirement matches a provider.
func (a *attempt) dynamicCandidates(m *module.Module, pkg string) (*module.Requirement, candidateMap) {
	if !m.IsResolved() || pkg == "" {
		return nil, nil
	}
	for _, c := range m.Capabilities() {
		if c.Namespace() == module.NamespacePackage && c.Name() == pkg {
			return nil, nil
		}
	}
	for _, w := range m.Wires() {
		if w.HasPackage(pkg) {
			return nil, nil
		}
	}
	for _, req := range m.Requirements() {
		if req.Namespace() != module.NamespacePackage {
			continue
		}
		if name, ok := req.Filter().EqualValue(module.AttrPackage); ok && name == pkg {
			return nil, nil
		}
	}

	query := m.QueryRequirement(module.NewFilter(module.Eq(module.AttrPackage, pkg)))
	found := a.state.Candidates(m, query, false)

	var dynReq *module.Requirement
	for _, req := range m.DynamicRequirements() {
		if slices.ContainsFunc(found, req.Matches) {
			dynReq = req
			break
		}
	}
	if dynReq == nil {
		return nil, nil
	}

	matched := make([]*module.Capability, 0, len(found))
	for _, c := range found {
		if dynReq.Matches(c) {
			matched = append(matched, c)
		}
	}
	return dynReq, candidateMap{dynReq.ID(): matched}
}

// populateDynamic populates the subgraphs of the dynamic candidates, pruning
// the ones that fail, and seeds cands with m's existing wires.
func (a *attempt) populateDynamic(m *module.Module, dynReq *module.Requirement, cands candidateMap) error {
	cache := map[int]*populateEntry{}
	kept := make([]*module.Capability, 0, len(cands[dynReq.ID()]))
	for _, c := range cands[dynReq.ID()] {
		if !c.Module().IsResolved() {
			if err := a.populate(c.Module(), cands, cache); err != nil {
				a.log.V(1).Info("pruned dynamic candidate", "candidate", c.String(), "reason", err.Error())
				continue
			}
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		delete(cands, dynReq.ID())
		return &ResolveError{Kind: KindMissingRequirement, Module: m, Requirement: dynReq, Reason: "dynamic import failed"}
	}
	cands[dynReq.ID()] = kept

	for _, w := range m.Wires() {
		cands[w.Requirement().ID()] = []*module.Capability{w.Capability()}
	}
	return nil
}
