package resolver_test

import (
	"slices"
	"testing"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/resolver"
)

func TestCompareCandidates_Order(t *testing.T) {
	reg := newRegistry()
	resolvedB := newModule(reg, "b", "1.0.0")
	resolvedP := export(resolvedB, "org.p", "1.0.0")
	resolveAndCommit(t, reg, resolvedB)

	b2 := newModule(reg, "b", "2.0.0")
	p2 := export(b2, "org.p", "2.0.0")
	c := newModule(reg, "c", "2.0.0")
	cp2 := export(c, "org.p", "2.0.0")
	a := newModule(reg, "a", "1.0.0")
	ap := export(a, "org.a", "3.0.0")

	got := []*module.Capability{cp2, ap, p2, resolvedP}
	slices.SortFunc(got, resolver.CompareCandidates)

	// Resolved first, then by name, then highest version, then module id.
	want := []*module.Capability{resolvedP, ap, p2, cp2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCompareCandidates_StrictTotalOrder(t *testing.T) {
	reg := newRegistry()
	var caps []*module.Capability
	for _, spec := range []struct{ name, version, pkg string }{
		{"a", "1.0.0", "org.p"},
		{"b", "1.0.0", "org.p"},
		{"b", "2.0.0", "org.p"},
		{"c", "1.0.0", "org.q"},
		{"d", "1.0.0", "org.p"},
	} {
		m := newModule(reg, spec.name, spec.version)
		caps = append(caps, export(m, spec.pkg, spec.version), m.Capabilities()[0])
		// The same package twice from one module.
		caps = append(caps, export(m, spec.pkg, spec.version))
	}
	resolveAndCommit(t, reg, reg.Modules()[1])

	for _, x := range caps {
		if resolver.CompareCandidates(x, x) != 0 {
			t.Fatalf("compare(%s, %s) != 0", x, x)
		}
		for _, y := range caps {
			xy, yx := resolver.CompareCandidates(x, y), resolver.CompareCandidates(y, x)
			if x != y && xy == 0 {
				t.Fatalf("distinct capabilities %s and %s compare equal", x, y)
			}
			if sign(xy) != -sign(yx) {
				t.Fatalf("compare(%s, %s)=%d but compare(%s, %s)=%d", x, y, xy, y, x, yx)
			}
			for _, z := range caps {
				if xy < 0 && resolver.CompareCandidates(y, z) < 0 && resolver.CompareCandidates(x, z) >= 0 {
					t.Fatalf("not transitive: %s < %s < %s", x, y, z)
				}
			}
		}
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
