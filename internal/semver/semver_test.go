package semver

import "testing"

func TestSatisfies(t *testing.T) {
	c := MustParseConstraint("^1.2.0")

	if !Satisfies(MustParseVersion("1.2.0"), c) {
		t.Fatalf("expected 1.2.0 to satisfy ^1.2.0")
	}
	if !Satisfies(MustParseVersion("1.9.9"), c) {
		t.Fatalf("expected 1.9.9 to satisfy ^1.2.0")
	}
	if Satisfies(MustParseVersion("2.0.0"), c) {
		t.Fatalf("expected 2.0.0 to NOT satisfy ^1.2.0")
	}
}

func TestSatisfies_ZeroValues(t *testing.T) {
	if !Satisfies(Version{}, MustParseConstraint(">=0.0.0")) {
		t.Fatalf("expected zero version to satisfy >=0.0.0")
	}
	if Satisfies(Version{}, MustParseConstraint(">=1.0.0")) {
		t.Fatalf("expected zero version to NOT satisfy >=1.0.0")
	}
	if Satisfies(MustParseVersion("1.0.0"), Constraint{}) {
		t.Fatalf("expected zero constraint to reject everything")
	}
}

func TestParseConstraint_EmptyMatchesAll(t *testing.T) {
	c, err := ParseConstraint("  ")
	if err != nil {
		t.Fatalf("ParseConstraint error: %v", err)
	}
	if c.String() != "*" {
		t.Fatalf("expected empty constraint to render as *, got %q", c.String())
	}
	if !Satisfies(MustParseVersion("42.0.0"), c) {
		t.Fatalf("expected empty constraint to accept 42.0.0")
	}
}

func TestParseVersionOrZero(t *testing.T) {
	v, err := ParseVersionOrZero("")
	if err != nil {
		t.Fatalf("ParseVersionOrZero error: %v", err)
	}
	if !v.IsZero() || v.String() != "0.0.0" {
		t.Fatalf("expected zero version, got %q", v.String())
	}
	if _, err := ParseVersionOrZero("not-a-version"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestCompare_ZeroSortsFirst(t *testing.T) {
	if Compare(Version{}, MustParseVersion("0.0.1")) != -1 {
		t.Fatalf("expected zero version < 0.0.1")
	}
	if Compare(MustParseVersion("1.0.0"), Version{}) != 1 {
		t.Fatalf("expected 1.0.0 > zero version")
	}
	if Compare(Version{}, Version{}) != 0 {
		t.Fatalf("expected zero versions to compare equal")
	}
}

func TestMaxSatisfying(t *testing.T) {
	c := MustParseConstraint(">=1.0.0 <2.0.0")
	candidates := []Version{
		MustParseVersion("0.9.0"),
		MustParseVersion("1.0.0"),
		MustParseVersion("1.5.0"),
		MustParseVersion("2.0.0"),
	}

	best, ok := MaxSatisfying(c, candidates)
	if !ok {
		t.Fatalf("expected to find a satisfying version")
	}
	if Compare(best, MustParseVersion("1.5.0")) != 0 {
		t.Fatalf("expected best=1.5.0")
	}
}
