package manifest

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	binderyv1alpha1 "github.com/bayleafwalker/bindery/api/v1alpha1"
	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/registry"
	"github.com/bayleafwalker/bindery/internal/semver"
)

// ErrDuplicateModule is returned when two manifests declare the same module
// id and version.
var ErrDuplicateModule = errors.New("duplicate module")

// ErrDuplicateManifest is returned when two manifests share a metadata.name.
var ErrDuplicateManifest = errors.New("duplicate manifest name")

// Catalog remembers which manifest each installed module came from.
type Catalog struct {
	reg       *registry.Registry
	manifests map[int]string
}

func NewCatalog(reg *registry.Registry) *Catalog {
	return &Catalog{
		reg:       reg,
		manifests: map[int]string{},
	}
}

func (c *Catalog) Registry() *registry.Registry { return c.reg }

// ManifestName returns the name of the manifest m was installed from, or its
// module id when m was not installed through the catalog.
func (c *Catalog) ManifestName(m *module.Module) string {
	if name, ok := c.manifests[m.ID()]; ok {
		return name
	}
	return m.SymbolicName()
}

// Install adds every manifest to the catalog's registry, in order.
func (c *Catalog) Install(manifests ...binderyv1alpha1.ModuleManifest) error {
	for i := range manifests {
		if _, err := c.install(&manifests[i]); err != nil {
			return err
		}
	}
	return nil
}

type pendingRequirement struct {
	namespace string
	filter    module.Filter
	dirs      []module.Directive
}

func (c *Catalog) install(mf *binderyv1alpha1.ModuleManifest) (*module.Module, error) {
	spec := mf.Spec
	id := spec.Module
	if id.ID == "" {
		return nil, fmt.Errorf("manifest %q: module id is required", mf.Name)
	}
	if mf.Name != "" {
		for _, name := range c.manifests {
			if name == mf.Name {
				return nil, fmt.Errorf("manifest %q: %w", mf.Name, ErrDuplicateManifest)
			}
		}
	}
	version, err := semver.ParseVersionOrZero(id.Version)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", mf.Name, err)
	}
	for _, m := range c.reg.Modules() {
		if m.SymbolicName() == id.ID && semver.Compare(m.Version(), version) == 0 {
			return nil, fmt.Errorf("manifest %q: %s@%s: %w", mf.Name, id.ID, version, ErrDuplicateModule)
		}
	}

	// Build every filter first so a bad constraint leaves the registry untouched.
	var reqs []pendingRequirement
	for _, imp := range spec.Imports {
		f, err := module.PackageFilter(imp.Package, imp.VersionConstraint)
		if err != nil {
			return nil, fmt.Errorf("manifest %q: import: %w", mf.Name, err)
		}
		for _, k := range sortedAttributeNames(imp.Attributes) {
			f = f.With(module.Eq(k, imp.Attributes[k]))
		}
		reqs = append(reqs, pendingRequirement{
			namespace: module.NamespacePackage,
			filter:    f,
			dirs:      resolutionDirectives(imp.DependencyMode),
		})
	}
	for _, r := range spec.Requires {
		f, err := module.ModuleFilter(r.ModuleID, r.VersionConstraint)
		if err != nil {
			return nil, fmt.Errorf("manifest %q: require: %w", mf.Name, err)
		}
		dirs := resolutionDirectives(r.DependencyMode)
		if r.Visibility == binderyv1alpha1.VisibilityReexport {
			dirs = append(dirs, module.Directive{Name: module.DirectiveVisibility, Value: module.VisibilityReexport})
		}
		reqs = append(reqs, pendingRequirement{namespace: module.NamespaceModule, filter: f, dirs: dirs})
	}
	exportVersions := make([]semver.Version, len(spec.Exports))
	for i, exp := range spec.Exports {
		if exp.Package == "" {
			return nil, fmt.Errorf("manifest %q: export %d: package is required", mf.Name, i)
		}
		if exportVersions[i], err = semver.ParseVersionOrZero(exp.Version); err != nil {
			return nil, fmt.Errorf("manifest %q: export %s: %w", mf.Name, exp.Package, err)
		}
	}

	m := c.reg.NewModule(id.ID, version)
	m.ExportModule()
	for i, exp := range spec.Exports {
		attrs := []module.Attribute{
			{Name: module.AttrPackage, Value: exp.Package},
			{Name: module.AttrVersion, Value: exportVersions[i].String()},
		}
		for _, k := range sortedAttributeNames(exp.Attributes) {
			attrs = append(attrs, module.Attribute{
				Name:      k,
				Value:     exp.Attributes[k],
				Mandatory: slices.Contains(exp.Mandatory, k),
			})
		}
		m.AddCapability(module.NamespacePackage, attrs, nil, exp.Uses)
	}
	for _, r := range reqs {
		m.AddRequirement(r.namespace, r.filter, r.dirs...)
	}
	for _, pattern := range spec.DynamicImports {
		m.AddDynamicRequirement(module.NewFilter(module.Wildcard(module.AttrPackage, pattern)))
	}
	m.SetExecutionEnvironments(spec.ExecutionEnvironments...)
	for _, lib := range spec.NativeLibraries {
		m.AddNativeLibrary(module.NativeLibrary{Path: lib.Path, OSNames: lib.OSNames, Processors: lib.Processors})
	}

	c.manifests[m.ID()] = mf.Name
	return m, nil
}

func resolutionDirectives(mode binderyv1alpha1.DependencyMode) []module.Directive {
	if mode == binderyv1alpha1.DependencyModeOptional {
		return []module.Directive{{Name: module.DirectiveResolution, Value: module.ResolutionOptional}}
	}
	return nil
}

func sortedAttributeNames(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
