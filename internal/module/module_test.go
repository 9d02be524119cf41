package module

import (
	"errors"
	"testing"

	"github.com/bayleafwalker/bindery/internal/semver"
)

func TestArena_AssignsDenseIDs(t *testing.T) {
	arena := NewArena()
	a := arena.NewModule("a", semver.MustParseVersion("1.0.0"))
	b := arena.NewModule("b", semver.MustParseVersion("1.0.0"))
	if a.ID() != 0 || b.ID() != 1 {
		t.Fatalf("expected module ids 0 and 1, got %d and %d", a.ID(), b.ID())
	}

	ac := a.ExportModule()
	bc := b.ExportPackage("org.b", semver.MustParseVersion("1.0.0"))
	if ac.ID() != 0 || bc.ID() != 1 {
		t.Fatalf("expected capability ids 0 and 1, got %d and %d", ac.ID(), bc.ID())
	}
	if arena.Capability(1) != bc || arena.Module(1) != b {
		t.Fatalf("arena lookup mismatch")
	}

	r1, err := a.ImportPackage("org.b", "")
	if err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}
	r2 := a.AddDynamicRequirement(NewFilter(Wildcard(AttrPackage, "*")))
	r3 := a.NewWireRequirement(NamespacePackage, NewFilter(Eq(AttrPackage, "org.b")))
	if r1.ID() != 0 || r2.ID() != 1 || r3.ID() != 2 {
		t.Fatalf("expected requirement ids 0..2, got %d %d %d", r1.ID(), r2.ID(), r3.ID())
	}
	if len(a.Requirements()) != 1 || len(a.DynamicRequirements()) != 1 {
		t.Fatalf("wire requirements must not be declared on the module")
	}
	if arena.Requirement(2) != r3 || arena.Requirement(3) != nil || arena.Module(-1) != nil {
		t.Fatalf("arena lookup mismatch")
	}
	if p := a.QueryRequirement(NewFilter()); p.ID() != -1 || arena.Requirement(3) != nil {
		t.Fatalf("query requirements must not be registered")
	}
}

func TestModule_ResolveLifecycle(t *testing.T) {
	arena := NewArena()
	a := arena.NewModule("a", semver.MustParseVersion("1.0.0"))
	b := arena.NewModule("b", semver.MustParseVersion("1.0.0"))
	pb := b.ExportPackage("org.b", semver.MustParseVersion("1.0.0"))
	req, err := a.ImportPackage("org.b", "")
	if err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}

	if err := a.AddDynamicWires(nil); !errors.Is(err, ErrNotResolved) {
		t.Fatalf("expected ErrNotResolved, got %v", err)
	}
	w := NewPackageWire(a, req, b, pb)
	if err := a.MarkResolved([]Wire{w}); err != nil {
		t.Fatalf("MarkResolved: %v", err)
	}
	if err := a.MarkResolved(nil); !errors.Is(err, ErrAlreadyResolved) {
		t.Fatalf("expected ErrAlreadyResolved, got %v", err)
	}

	dyn := NewPackageWire(a, a.NewWireRequirement(NamespacePackage, NewFilter(Eq(AttrPackage, "org.c"))), b, pb)
	if err := a.AddDynamicWires([]Wire{dyn}); err != nil {
		t.Fatalf("AddDynamicWires: %v", err)
	}
	wires := a.Wires()
	if len(wires) != 2 || wires[0] != w {
		t.Fatalf("existing wires must be kept in order, got %v", wires)
	}
	wires[0] = nil
	if a.Wires()[0] != w {
		t.Fatalf("Wires must return a copy")
	}
}

func TestCapability_NameAndVersion(t *testing.T) {
	arena := NewArena()
	m := arena.NewModule("org.example", semver.MustParseVersion("2.1.0"))
	mc := m.ExportModule()
	if mc.Name() != "org.example" || mc.Version().String() != "2.1.0" {
		t.Fatalf("unexpected module capability %s", mc)
	}
	other := m.AddCapability("service", []Attribute{{Name: "objectClass", Value: "Foo"}}, nil, nil)
	if other.Name() != "" || !other.Version().IsZero() {
		t.Fatalf("unexpected generic capability %s", other)
	}
}

func TestModuleWire_HasPackage(t *testing.T) {
	arena := NewArena()
	a := arena.NewModule("a", semver.MustParseVersion("1.0.0"))
	b := arena.NewModule("b", semver.MustParseVersion("1.0.0"))
	req, err := a.RequireModule("b", "")
	if err != nil {
		t.Fatalf("RequireModule: %v", err)
	}
	w := NewModuleWire(a, req, b, b.ExportModule(), []string{"org.m", "org.l", "org.m"})
	if got := w.Packages(); len(got) != 2 || got[0] != "org.l" || got[1] != "org.m" {
		t.Fatalf("expected sorted unique packages, got %v", got)
	}
	if !w.HasPackage("org.l") || w.HasPackage("org.x") {
		t.Fatalf("unexpected HasPackage result")
	}
}
