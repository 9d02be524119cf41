package module

import (
	"fmt"
	"slices"
)

// Wire is an immutable binding from an importer's requirement to an
// exporter's capability.
type Wire interface {
	Importer() *Module
	Requirement() *Requirement
	Exporter() *Module
	Capability() *Capability
	// HasPackage reports whether the wire makes pkg visible to the importer.
	HasPackage(pkg string) bool
}

// PackageWire binds a package requirement to a package capability.
type PackageWire struct {
	importer *Module
	req      *Requirement
	exporter *Module
	cap      *Capability
}

func NewPackageWire(importer *Module, req *Requirement, exporter *Module, cap *Capability) *PackageWire {
	return &PackageWire{importer: importer, req: req, exporter: exporter, cap: cap}
}

func (w *PackageWire) Importer() *Module         { return w.importer }
func (w *PackageWire) Requirement() *Requirement { return w.req }
func (w *PackageWire) Exporter() *Module         { return w.exporter }
func (w *PackageWire) Capability() *Capability   { return w.cap }

func (w *PackageWire) HasPackage(pkg string) bool {
	return w.cap.Namespace() == NamespacePackage && w.cap.Name() == pkg
}

func (w *PackageWire) String() string {
	return fmt.Sprintf("%s -> %s", w.req, w.cap)
}

// ModuleWire binds a module requirement to a module capability. It carries
// the package names the exporter makes visible, its exports plus anything it
// re-exports, so lookups do not need the resolver's package spaces.
type ModuleWire struct {
	importer *Module
	req      *Requirement
	exporter *Module
	cap      *Capability
	packages []string
}

func NewModuleWire(importer *Module, req *Requirement, exporter *Module, cap *Capability, packages []string) *ModuleWire {
	pkgs := append([]string(nil), packages...)
	slices.Sort(pkgs)
	return &ModuleWire{importer: importer, req: req, exporter: exporter, cap: cap, packages: slices.Compact(pkgs)}
}

func (w *ModuleWire) Importer() *Module         { return w.importer }
func (w *ModuleWire) Requirement() *Requirement { return w.req }
func (w *ModuleWire) Exporter() *Module         { return w.exporter }
func (w *ModuleWire) Capability() *Capability   { return w.cap }

// Packages returns the sorted package names carried by the wire.
func (w *ModuleWire) Packages() []string {
	return append([]string(nil), w.packages...)
}

func (w *ModuleWire) HasPackage(pkg string) bool {
	_, found := slices.BinarySearch(w.packages, pkg)
	return found
}

func (w *ModuleWire) String() string {
	return fmt.Sprintf("%s -> %s %v", w.req, w.cap, w.packages)
}
