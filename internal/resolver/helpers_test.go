package resolver_test

import (
	"context"
	"testing"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/registry"
	"github.com/bayleafwalker/bindery/internal/resolver"
	"github.com/bayleafwalker/bindery/internal/semver"
)

func newRegistry() *registry.Registry {
	return registry.New(registry.Environment{OS: "linux", Arch: "amd64"})
}

func newModule(reg *registry.Registry, name, version string) *module.Module {
	m := reg.NewModule(name, semver.MustParseVersion(version))
	m.ExportModule()
	return m
}

func mustVersion(v string) semver.Version {
	return semver.MustParseVersion(v)
}

func export(m *module.Module, pkg, version string, uses ...string) *module.Capability {
	return m.ExportPackage(pkg, semver.MustParseVersion(version), uses...)
}

func importPackage(t *testing.T, m *module.Module, pkg, versionRange string, dirs ...module.Directive) *module.Requirement {
	t.Helper()
	req, err := m.ImportPackage(pkg, versionRange, dirs...)
	if err != nil {
		t.Fatalf("ImportPackage(%s, %q): %v", pkg, versionRange, err)
	}
	return req
}

func requireModule(t *testing.T, m *module.Module, name, versionRange string, dirs ...module.Directive) *module.Requirement {
	t.Helper()
	req, err := m.RequireModule(name, versionRange, dirs...)
	if err != nil {
		t.Fatalf("RequireModule(%s, %q): %v", name, versionRange, err)
	}
	return req
}

func resolve(t *testing.T, reg *registry.Registry, m *module.Module) resolver.WireMap {
	t.Helper()
	wm, err := resolver.NewDefault().Resolve(context.Background(), reg, m)
	if err != nil {
		t.Fatalf("Resolve(%s) error: %v", m, err)
	}
	return wm
}

func resolveAndCommit(t *testing.T, reg *registry.Registry, m *module.Module) {
	t.Helper()
	if err := reg.Commit(resolve(t, reg, m)); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

// wireFor returns the wire of m satisfying req.
func wireFor(t *testing.T, wm resolver.WireMap, m *module.Module, req *module.Requirement) module.Wire {
	t.Helper()
	for _, w := range wm[m] {
		if w.Requirement() == req {
			return w
		}
	}
	t.Fatalf("no wire for %s in %v", req, wm[m])
	return nil
}

var optional = module.Directive{Name: module.DirectiveResolution, Value: module.ResolutionOptional}
