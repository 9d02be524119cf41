package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/semver"
)

func linux() *Registry {
	return New(Environment{OS: "linux", Arch: "amd64", ExecutionEnvironments: []string{"go1.23"}})
}

func add(r *Registry, name, version string) *module.Module {
	m := r.NewModule(name, semver.MustParseVersion(version))
	m.ExportModule()
	return m
}

func TestFind(t *testing.T) {
	r := linux()
	add(r, "org.a", "1.0.0")
	add(r, "org.a", "1.4.2")
	add(r, "org.a", "2.0.0")

	tests := []struct {
		name       string
		constraint string
		want       string
		wantErr    error
	}{
		{name: "any version picks highest", constraint: "", want: "org.a@2.0.0"},
		{name: "range picks highest inside", constraint: "^1.0.0", want: "org.a@1.4.2"},
		{name: "exact", constraint: "=1.0.0", want: "org.a@1.0.0"},
		{name: "nothing satisfies", constraint: ">=3.0.0", wantErr: ErrModuleNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := r.Find("org.a", tt.constraint)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if m.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, m)
			}
		})
	}

	if _, err := r.Find("org.missing", ""); !errors.Is(err, ErrModuleNotFound) {
		t.Fatalf("expected ErrModuleNotFound, got %v", err)
	}
}

func TestCandidates_OrderedBestFirst(t *testing.T) {
	r := linux()
	old := add(r, "org.old", "1.0.0")
	old.ExportPackage("org.p", semver.MustParseVersion("1.0.0"))
	newer := add(r, "org.new", "1.0.0")
	newer.ExportPackage("org.p", semver.MustParseVersion("1.1.0"))
	resolved := add(r, "org.resolved", "1.0.0")
	resolved.ExportPackage("org.p", semver.MustParseVersion("1.0.0"))
	if err := resolved.MarkResolved(nil); err != nil {
		t.Fatal(err)
	}
	add(r, "org.other", "1.0.0").ExportPackage("org.q", semver.MustParseVersion("9.0.0"))

	importer := add(r, "org.importer", "1.0.0")
	req, err := importer.ImportPackage("org.p", ">=1.0.0")
	if err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, c := range r.Candidates(importer, req, true) {
		got = append(got, c.Module().SymbolicName())
	}
	want := []string{"org.resolved", "org.new", "org.old"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected candidate order (-want +got):\n%s", diff)
	}
}

func TestCandidates_MandatoryAttributes(t *testing.T) {
	r := linux()
	exporter := add(r, "org.e", "1.0.0")
	exporter.AddCapability(module.NamespacePackage, []module.Attribute{
		{Name: module.AttrPackage, Value: "org.p"},
		{Name: "vendor", Value: "acme", Mandatory: true},
	}, nil, nil)

	importer := add(r, "org.i", "1.0.0")
	plain := importer.AddRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, "org.p")))
	named := importer.AddRequirement(module.NamespacePackage, module.NewFilter(
		module.Eq(module.AttrPackage, "org.p"),
		module.Eq("vendor", "acme"),
	))

	if n := len(r.Candidates(importer, plain, true)); n != 0 {
		t.Fatalf("expected the mandatory attribute to hide the export, got %d candidates", n)
	}
	if n := len(r.Candidates(importer, plain, false)); n != 1 {
		t.Fatalf("expected 1 candidate when mandatory attributes are ignored, got %d", n)
	}
	if n := len(r.Candidates(importer, named, true)); n != 1 {
		t.Fatalf("expected 1 candidate for a filter naming the attribute, got %d", n)
	}
}

func TestCheckExecutionEnvironment(t *testing.T) {
	r := linux()
	unrestricted := add(r, "org.any", "1.0.0")
	ok := add(r, "org.ok", "1.0.0")
	ok.SetExecutionEnvironments("go1.21", "go1.23")
	bad := add(r, "org.bad", "1.0.0")
	bad.SetExecutionEnvironments("jvm")

	for _, m := range []*module.Module{unrestricted, ok} {
		if err := r.CheckExecutionEnvironment(m); err != nil {
			t.Fatalf("%s: unexpected error: %v", m, err)
		}
	}
	if err := r.CheckExecutionEnvironment(bad); !errors.Is(err, ErrUnsupportedEnvironment) {
		t.Fatalf("expected ErrUnsupportedEnvironment, got %v", err)
	}
}

func TestCheckNativeLibraries(t *testing.T) {
	r := linux()
	tests := []struct {
		name    string
		libs    []module.NativeLibrary
		wantErr bool
	}{
		{name: "no libraries"},
		{name: "unrestricted library", libs: []module.NativeLibrary{{Path: "lib/a.so"}}},
		{name: "matching platform", libs: []module.NativeLibrary{
			{Path: "lib/a.dylib", OSNames: []string{"darwin"}},
			{Path: "lib/a.so", OSNames: []string{"linux"}, Processors: []string{"amd64", "arm64"}},
		}},
		{name: "wrong processor", libs: []module.NativeLibrary{
			{Path: "lib/a.so", OSNames: []string{"linux"}, Processors: []string{"riscv64"}},
		}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := add(r, "org."+tt.name, "1.0.0")
			for _, lib := range tt.libs {
				m.AddNativeLibrary(lib)
			}
			err := r.CheckNativeLibraries(m)
			if tt.wantErr != errors.Is(err, ErrUnsupportedEnvironment) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCommit(t *testing.T) {
	r := linux()
	exporter := add(r, "org.e", "1.0.0")
	pkg := exporter.ExportPackage("org.p", semver.MustParseVersion("1.0.0"))
	importer := add(r, "org.i", "1.0.0")
	req, err := importer.ImportPackage("org.p", "")
	if err != nil {
		t.Fatal(err)
	}
	w := module.NewPackageWire(importer, req, exporter, pkg)

	if err := r.Commit(map[*module.Module][]module.Wire{importer: {w}, exporter: {}}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !importer.IsResolved() || !exporter.IsResolved() {
		t.Fatalf("expected both modules resolved")
	}
	if got := importer.Wires(); len(got) != 1 || got[0] != w {
		t.Fatalf("unexpected wires %v", got)
	}

	dynReq := importer.NewWireRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, "org.p")))
	extra := module.NewPackageWire(importer, dynReq, exporter, pkg)
	if err := r.Commit(map[*module.Module][]module.Wire{importer: {extra}}); !errors.Is(err, module.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved for a resolved module, got %v", err)
	}
	if err := r.CommitDynamic(importer, map[*module.Module][]module.Wire{importer: {w}}); !errors.Is(err, module.ErrAlreadyResolved) {
		t.Fatalf("expected static requirement to be rejected, got %v", err)
	}
	if n := len(importer.Wires()); n != 1 {
		t.Fatalf("expected rejected commits to leave wires alone, got %d wires", n)
	}

	if err := r.CommitDynamic(importer, map[*module.Module][]module.Wire{importer: {extra}}); err != nil {
		t.Fatalf("CommitDynamic: %v", err)
	}
	if n := len(importer.Wires()); n != 2 {
		t.Fatalf("expected dynamic wire appended, got %d wires", n)
	}
}

func TestCommit_ChecksWholeMapFirst(t *testing.T) {
	r := linux()
	resolved := add(r, "org.resolved", "1.0.0")
	if err := resolved.MarkResolved(nil); err != nil {
		t.Fatal(err)
	}
	fresh := add(r, "org.fresh", "1.0.0")

	err := r.Commit(map[*module.Module][]module.Wire{fresh: {}, resolved: {}})
	if !errors.Is(err, module.ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}
	if fresh.IsResolved() {
		t.Fatalf("expected %s to stay unresolved after a rejected commit", fresh)
	}

	if err := r.CommitDynamic(fresh, map[*module.Module][]module.Wire{fresh: {}}); !errors.Is(err, module.ErrNotResolved) {
		t.Fatalf("expected ErrNotResolved for an unresolved root, got %v", err)
	}
}
