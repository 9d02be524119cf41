package resolver

import (
	"slices"

	"github.com/bayleafwalker/bindery/internal/module"
)

// calculatePackageSpaces builds the package space of m and, recursively, of
// every module it selected a candidate from.
func (a *attempt) calculatePackageSpaces(m *module.Module, cands candidateMap, visited map[int]bool) {
	if visited[m.ID()] {
		return
	}
	visited[m.ID()] = true

	pkgs := a.exportedPackages(m)

	selected := a.selections(m, cands)
	for _, s := range selected {
		a.capDeps[s.cap.ID()] = append(a.capDeps[s.cap.ID()], s.req)
		a.exportedPackages(s.cap.Module())
		a.mergeCandidatePackages(m, s.req, s.cap, cands, map[int]bool{})
	}
	for _, s := range selected {
		a.calculatePackageSpaces(s.cap.Module(), cands, visited)
	}

	for _, name := range sortedKeys(pkgs.imported) {
		for _, b := range pkgs.imported[name] {
			a.mergeUses(m, pkgs, b.cap, b.reqs[:1], map[int]bool{})
		}
	}
	for _, name := range sortedKeys(pkgs.required) {
		for _, b := range pkgs.required[name] {
			a.mergeUses(m, pkgs, b.cap, b.reqs[:1], map[int]bool{})
		}
	}
}

// selections returns the capability each requirement of m is bound to:
// its wires when m is resolved, its first candidate otherwise. A dynamic
// import root contributes its wires plus the dynamic requirement.
func (a *attempt) selections(m *module.Module, cands candidateMap) []selection {
	var out []selection
	switch {
	case m == a.dynamicRoot:
		for _, w := range m.Wires() {
			if c := cands.first(w.Requirement()); c != nil {
				out = append(out, selection{req: w.Requirement(), cap: c})
			}
		}
		if c := cands.first(a.dynamicReq); c != nil {
			out = append(out, selection{req: a.dynamicReq, cap: c})
		}
	case m.IsResolved():
		for _, w := range m.Wires() {
			out = append(out, selection{req: w.Requirement(), cap: w.Capability()})
		}
	default:
		for _, req := range m.Requirements() {
			// Optional requirements may have no candidates.
			if c := cands.first(req); c != nil {
				out = append(out, selection{req: req, cap: c})
			}
		}
	}
	return out
}

// exportedPackages returns m's package space for this attempt, creating it
// with m's exports on first use. A package m also imports is not exported:
// the import shadows it.
func (a *attempt) exportedPackages(m *module.Module) *packages {
	if pkgs, ok := a.spaces[m.ID()]; ok {
		return pkgs
	}
	pkgs := newPackages()
	for _, c := range m.Capabilities() {
		if c.Namespace() != module.NamespacePackage || hasOverlappingImport(m, c) {
			continue
		}
		if _, dup := pkgs.exported[c.Name()]; !dup {
			pkgs.exported[c.Name()] = blame{cap: c}
		}
	}
	a.spaces[m.ID()] = pkgs
	return pkgs
}

func hasOverlappingImport(m *module.Module, c *module.Capability) bool {
	for _, req := range m.Requirements() {
		if req.Namespace() == module.NamespacePackage && req.Matches(c) {
			return true
		}
	}
	return false
}

// mergeCandidatePackages adds the packages that binding req to c makes
// visible to current. A package capability is imported. A module
// capability brings in all exports of its module plus whatever that module
// re-exports, followed transitively.
func (a *attempt) mergeCandidatePackages(current *module.Module, req *module.Requirement, c *module.Capability, cands candidateMap, visited map[int]bool) {
	switch c.Namespace() {
	case module.NamespacePackage:
		a.mergeCandidatePackage(current, false, req, c)
	case module.NamespaceModule:
		exporter := c.Module()
		if visited[exporter.ID()] {
			return
		}
		visited[exporter.ID()] = true

		exported := a.exportedPackages(exporter).exported
		for _, name := range sortedKeys(exported) {
			a.mergeCandidatePackage(current, true, req, exported[name].cap)
		}
		for _, s := range a.reexports(exporter, cands) {
			a.mergeCandidatePackages(current, req, s.cap, cands, visited)
		}
	}
}

func (a *attempt) mergeCandidatePackage(current *module.Module, required bool, req *module.Requirement, c *module.Capability) {
	if c.Namespace() != module.NamespacePackage {
		return
	}
	pkgs := a.exportedPackages(current)
	name := c.Name()
	b := blame{cap: c, reqs: []*module.Requirement{req}}
	if required {
		pkgs.required[name] = append(pkgs.required[name], b)
		return
	}
	if slices.ContainsFunc(pkgs.imported[name], func(x blame) bool { return x.cap == c }) {
		return
	}
	pkgs.imported[name] = append(pkgs.imported[name], b)
}

// reexports returns the re-exporting module requirements of m with their
// bound capabilities.
func (a *attempt) reexports(m *module.Module, cands candidateMap) []selection {
	var out []selection
	if m.IsResolved() && m != a.dynamicRoot {
		for _, w := range m.Wires() {
			if w.Requirement().Namespace() == module.NamespaceModule && w.Requirement().IsReexport() {
				out = append(out, selection{req: w.Requirement(), cap: w.Capability()})
			}
		}
		return out
	}
	for _, req := range m.Requirements() {
		if req.Namespace() != module.NamespaceModule || !req.IsReexport() {
			continue
		}
		if c := cands.first(req); c != nil {
			out = append(out, selection{req: req, cap: c})
		}
	}
	return out
}

// mergeUses follows the uses constraints of mergeCap and records, in
// current's used bucket, which capability each used package resolves to
// from the exporter's point of view. blameReqs is extended with the last
// requirement of every hop.
func (a *attempt) mergeUses(current *module.Module, pkgs *packages, mergeCap *module.Capability, blameReqs []*module.Requirement, visited map[int]bool) {
	if mergeCap.Namespace() != module.NamespacePackage || mergeCap.Module() == current {
		return
	}
	if visited[mergeCap.ID()] {
		return
	}
	visited[mergeCap.ID()] = true

	for _, src := range a.packageSources(mergeCap) {
		srcPkgs := a.exportedPackages(src.Module())
		for _, usedName := range src.Uses() {
			b, ok := srcPkgs.exported[usedName]
			if !ok {
				imported := srcPkgs.imported[usedName]
				if len(imported) == 0 {
					continue
				}
				b = imported[0]
			}

			chain := blameReqs
			if r := b.last(); r != nil {
				chain = append(slices.Clone(blameReqs), r)
			}
			pkgs.used[usedName] = append(pkgs.used[usedName], blame{cap: b.cap, reqs: chain})
			a.mergeUses(current, pkgs, b.cap, chain, visited)
		}
	}
}

// packageSources returns every capability that provides c's package from
// c's module: the module's own exports of the package plus, transitively,
// what it receives for that package through required modules.
func (a *attempt) packageSources(c *module.Capability) []*module.Capability {
	if a.sources != nil {
		if s, ok := a.sources[c.ID()]; ok {
			return s
		}
	}
	s := a.collectSources(c, nil, map[int]bool{})
	if a.sources != nil {
		a.sources[c.ID()] = s
	}
	return s
}

func (a *attempt) collectSources(c *module.Capability, out []*module.Capability, visited map[int]bool) []*module.Capability {
	if c.Namespace() != module.NamespacePackage || visited[c.ID()] {
		return out
	}
	visited[c.ID()] = true

	name := c.Name()
	for _, other := range c.Module().Capabilities() {
		if other.Namespace() == module.NamespacePackage && other.Name() == name {
			out = append(out, other)
		}
	}
	if pkgs, ok := a.spaces[c.Module().ID()]; ok {
		for _, b := range pkgs.required[name] {
			out = a.collectSources(b.cap, out, visited)
		}
	}
	return out
}

// compatible reports whether x and y can share a package space: they are the
// same capability or one's sources contain the other's.
func (a *attempt) compatible(x, y *module.Capability) bool {
	if x == nil || y == nil || x == y {
		return true
	}
	xs, ys := a.packageSources(x), a.packageSources(y)
	return containsAll(xs, ys) || containsAll(ys, xs)
}

func containsAll(set, sub []*module.Capability) bool {
	for _, c := range sub {
		if !slices.Contains(set, c) {
			return false
		}
	}
	return true
}
