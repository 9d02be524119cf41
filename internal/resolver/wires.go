package resolver

import (
	"github.com/bayleafwalker/bindery/internal/module"
)

// populateWireMap adds wires for m and, first, for every unresolved module it
// is wired to. Package wires precede module wires. A module importing a
// package from itself gets no wire for it.
func (a *attempt) populateWireMap(m *module.Module, cands candidateMap, wm WireMap) {
	if m.IsResolved() {
		return
	}
	if _, ok := wm[m]; ok {
		return
	}
	wm[m] = []module.Wire{}

	var packageWires, moduleWires []module.Wire
	for _, req := range m.Requirements() {
		c := cands.first(req)
		if c == nil {
			continue
		}
		exporter := c.Module()
		if !exporter.IsResolved() {
			a.populateWireMap(exporter, cands, wm)
		}
		switch req.Namespace() {
		case module.NamespaceModule:
			moduleWires = append(moduleWires, module.NewModuleWire(m, req, exporter, c, a.exportedPackages(exporter).exportedAndReexported()))
		case module.NamespacePackage:
			if exporter == m {
				continue
			}
			packageWires = append(packageWires, module.NewPackageWire(m, req, exporter, c))
		default:
			packageWires = append(packageWires, module.NewPackageWire(m, req, exporter, c))
		}
	}
	wires := make([]module.Wire, 0, len(packageWires)+len(moduleWires))
	wires = append(wires, packageWires...)
	wm[m] = append(wires, moduleWires...)
}

// populateDynamicWireMap adds the single new wire for pkg to the dynamic
// root, plus the wires of any unresolved module the import pulls in. The
// wire gets its own requirement so repeated dynamic imports through the same
// dynamic requirement stay distinct.
func (a *attempt) populateDynamicWireMap(m *module.Module, pkg string, cands candidateMap, wm WireMap) {
	wm[m] = []module.Wire{}

	var wires []module.Wire
	pkgs := a.exportedPackages(m)
	for _, name := range sortedKeys(pkgs.imported) {
		b := pkgs.imported[name][0]
		exporter := b.cap.Module()
		if !exporter.IsResolved() {
			a.populateWireMap(exporter, cands, wm)
		}
		if exporter == m || name != pkg {
			continue
		}
		req := m.NewWireRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, pkg)))
		wires = append(wires, module.NewPackageWire(m, req, exporter, b.cap))
	}
	wm[m] = append(wm[m], wires...)
}
