package resolver

import (
	"cmp"
	"maps"
	"slices"

	"github.com/bayleafwalker/bindery/internal/module"
)

// candidateMap maps requirement ids to their remaining candidates, best
// first. Candidate slices are shared between permutations and must never be
// modified in place; a permutation replaces the slice instead.
type candidateMap map[int][]*module.Capability

func (c candidateMap) clone() candidateMap {
	return maps.Clone(c)
}

// first returns the selected candidate for req, or nil.
func (c candidateMap) first(req *module.Requirement) *module.Capability {
	if cs := c[req.ID()]; len(cs) > 0 {
		return cs[0]
	}
	return nil
}

// blame records why a capability is part of a package space. reqs is nil for
// the module's own exports.
type blame struct {
	cap  *module.Capability
	reqs []*module.Requirement
}

func (b blame) last() *module.Requirement {
	if len(b.reqs) == 0 {
		return nil
	}
	return b.reqs[len(b.reqs)-1]
}

// packages is a module's package space for one attempt.
type packages struct {
	exported map[string]blame
	imported map[string][]blame
	required map[string][]blame
	used     map[string][]blame
}

func newPackages() *packages {
	return &packages{
		exported: map[string]blame{},
		imported: map[string][]blame{},
		required: map[string][]blame{},
		used:     map[string][]blame{},
	}
}

// exportedAndReexported lists the module's exports followed by packages it
// reaches through re-exporting module requirements.
func (p *packages) exportedAndReexported() []string {
	out := make([]string, 0, len(p.exported)+len(p.required))
	out = append(out, sortedKeys(p.exported)...)
	for _, name := range sortedKeys(p.required) {
		for _, b := range p.required[name] {
			if r := b.last(); r != nil && r.IsReexport() {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// selection is a requirement paired with the capability chosen for it.
type selection struct {
	req *module.Requirement
	cap *module.Capability
}

type populateStatus int

const (
	populateInProgress populateStatus = iota
	populateDone
	populateFailed
)

// populateEntry tracks candidate population of one module. While in progress
// it holds the candidates found so far and the requirements still to visit,
// which re-entrant calls from a dependency cycle continue from.
type populateEntry struct {
	status    populateStatus
	cycles    int
	local     candidateMap
	remaining []*module.Requirement
	err       error
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	var keys []K
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
