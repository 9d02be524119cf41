package resolver

import (
	"context"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/semver"
)

// fakeState serves every capability of the arena's modules.
type fakeState struct {
	arena *module.Arena
}

func (s fakeState) Candidates(_ *module.Module, req *module.Requirement, _ bool) []*module.Capability {
	var out []*module.Capability
	for _, m := range s.arena.Modules() {
		for _, c := range m.Capabilities() {
			if req.Matches(c) {
				out = append(out, c)
			}
		}
	}
	slices.SortFunc(out, CompareCandidates)
	return out
}

func (fakeState) CheckExecutionEnvironment(*module.Module) error { return nil }
func (fakeState) CheckNativeLibraries(*module.Module) error      { return nil }

func TestPermuteBlame(t *testing.T) {
	arena := module.NewArena()
	m := arena.NewModule("m", semver.MustParseVersion("1.0.0"))
	x := m.ExportPackage("org.x", semver.MustParseVersion("1.0.0"))
	y := m.ExportPackage("org.x", semver.MustParseVersion("2.0.0"))
	first := m.AddRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, "org.x")))
	last := m.AddRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, "org.x")))

	perm := candidateMap{
		first.ID(): {y, x},
		last.ID():  {y},
	}
	mutated := map[int]bool{}
	if !permuteBlame(perm, []*module.Requirement{first, last}, mutated) {
		t.Fatalf("expected the first requirement with alternatives to be permuted")
	}
	if got := perm[first.ID()]; len(got) != 1 || got[0] != x {
		t.Fatalf("expected [%s], got %v", x, got)
	}
	if permuteBlame(perm, []*module.Requirement{first}, mutated) {
		t.Fatalf("a requirement must not be permuted twice")
	}
}

func TestCandidateMapCloneDoesNotAlias(t *testing.T) {
	arena := module.NewArena()
	m := arena.NewModule("m", semver.MustParseVersion("1.0.0"))
	x := m.ExportPackage("org.x", semver.MustParseVersion("1.0.0"))
	y := m.ExportPackage("org.x", semver.MustParseVersion("2.0.0"))

	orig := candidateMap{7: {y, x}}
	perm := orig.clone()
	perm[7] = perm[7][1:]
	if len(orig[7]) != 2 || orig[7][0] != y {
		t.Fatalf("original candidate map changed: %v", orig[7])
	}
}

func TestResolveRecordsMetrics(t *testing.T) {
	arena := module.NewArena()
	v1, v2 := semver.MustParseVersion("1.0.0"), semver.MustParseVersion("2.0.0")

	q1 := arena.NewModule("q", v1)
	q1.ExportPackage("org.q", v1)
	q2 := arena.NewModule("q", v2)
	q2.ExportPackage("org.q", v2)

	b := arena.NewModule("b", v1)
	b.ExportPackage("org.p", v1, "org.q")
	mustImport(t, b, "org.q", ">=1.0.0 <2.0.0")

	c := arena.NewModule("c", v2)
	c.ExportPackage("org.r", v2, "org.q")
	mustImport(t, c, "org.q", ">=2.0.0")
	c2 := arena.NewModule("c", v1)
	c2.ExportPackage("org.r", v1, "org.q")
	mustImport(t, c2, "org.q", ">=1.0.0 <2.0.0")

	a := arena.NewModule("a", v1)
	mustImport(t, a, "org.p", "")
	mustImport(t, a, "org.q", "")
	mustImport(t, a, "org.r", "")

	resolved := testutil.ToFloat64(resolutionsTotal.WithLabelValues(modeStatic, "resolved"))
	uses := testutil.ToFloat64(permutationsTotal.WithLabelValues("uses"))
	imports := testutil.ToFloat64(permutationsTotal.WithLabelValues("import"))

	if _, err := NewDefault().Resolve(context.Background(), fakeState{arena: arena}, a); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got := testutil.ToFloat64(resolutionsTotal.WithLabelValues(modeStatic, "resolved")) - resolved; got != 1 {
		t.Fatalf("expected 1 resolution recorded, got %v", got)
	}
	if got := testutil.ToFloat64(permutationsTotal.WithLabelValues("import")) - imports; got != 1 {
		t.Fatalf("expected 1 import permutation, got %v", got)
	}
	if got := testutil.ToFloat64(permutationsTotal.WithLabelValues("uses")) - uses; got != 1 {
		t.Fatalf("expected 1 uses permutation, got %v", got)
	}
}

func mustImport(t *testing.T, m *module.Module, pkg, versionRange string) {
	t.Helper()
	if _, err := m.ImportPackage(pkg, versionRange); err != nil {
		t.Fatalf("ImportPackage: %v", err)
	}
}

func TestInvalidateCascadesToDependents(t *testing.T) {
	arena := module.NewArena()
	v := semver.MustParseVersion("1.0.0")
	root := arena.NewModule("root", v)
	mid := arena.NewModule("mid", v)
	other := arena.NewModule("other", v)
	leaf := arena.NewModule("leaf", v)

	midP := mid.ExportPackage("org.p", v)
	otherP := other.ExportPackage("org.p", v)
	leafR := leaf.ExportPackage("org.r", v)
	rootP := root.AddRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, "org.p")))
	midR := mid.AddRequirement(module.NamespacePackage, module.NewFilter(module.Eq(module.AttrPackage, "org.r")))

	a := &attempt{capDeps: map[int][]*module.Requirement{
		midP.ID():  {rootP},
		leafR.ID(): {midR},
	}}

	perm := candidateMap{rootP.ID(): {midP, otherP}, midR.ID(): {leafR}}
	if !a.invalidate(perm, leaf, map[int]bool{}) {
		t.Fatalf("expected root to fall back to another provider")
	}
	if _, ok := perm[midR.ID()]; ok {
		t.Fatalf("expected mid's requirement to be dropped, got %v", perm)
	}
	if got := perm[rootP.ID()]; len(got) != 1 || got[0] != otherP {
		t.Fatalf("expected [%s], got %v", otherP, got)
	}

	perm = candidateMap{rootP.ID(): {midP}, midR.ID(): {leafR}}
	if a.invalidate(perm, leaf, map[int]bool{}) {
		t.Fatalf("expected invalidation reaching the root to be a dead end")
	}
}
