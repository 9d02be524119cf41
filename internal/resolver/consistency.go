package resolver

import (
	"fmt"

	"github.com/bayleafwalker/bindery/internal/module"
)

// checkConsistency verifies m's package space and then the spaces of the
// modules m gets packages from. On conflict it queues repair permutations
// of cands and returns the conflict.
func (a *attempt) checkConsistency(m *module.Module, cands candidateMap) error {
	if m.IsResolved() && m != a.dynamicRoot {
		return nil
	}
	if a.checked[m.ID()] {
		return nil
	}
	pkgs := a.exportedPackages(m)

	// The same package imported from two different exporters.
	for _, name := range sortedKeys(pkgs.imported) {
		imported := pkgs.imported[name]
		if len(imported) < 2 {
			continue
		}
		for _, b := range imported {
			a.queueImportPermutation(cands, b.reqs[0])
		}
		return &ResolveError{
			Kind:        KindConflict,
			Module:      m,
			Requirement: imported[1].reqs[0],
			Package:     name,
			Reason:      fmt.Sprintf("imported from both %s and %s", imported[0].cap, imported[1].cap),
		}
	}

	var (
		perm     candidateMap
		mutated  = map[int]bool{}
		viable   = true
		conflict *ResolveError
	)
	conflictWith := func(name, what string, have, used blame) {
		if perm == nil {
			perm = cands.clone()
		}
		if conflict == nil {
			conflict = &ResolveError{
				Kind:        KindConflict,
				Module:      m,
				Requirement: used.last(),
				Package:     name,
				Chain:       used.reqs,
				Reason:      fmt.Sprintf("%s %s conflicts with uses constraint %s", what, have.cap, used.cap),
			}
		}
		if !a.repairBlame(perm, used.reqs, mutated) {
			viable = false
		}
	}

	for _, name := range sortedKeys(pkgs.exported) {
		exported := pkgs.exported[name]
		for _, used := range pkgs.used[name] {
			if !a.compatible(exported.cap, used.cap) {
				conflictWith(name, "exported", exported, used)
			}
		}
		if conflict != nil {
			if viable && len(mutated) > 0 {
				a.queueUsesPermutation(perm)
			}
			return conflict
		}
	}

	deps := map[int]*module.Module{}
	for _, name := range sortedKeys(pkgs.imported) {
		imported := pkgs.imported[name][0]
		if imported.cap.Module() != m {
			deps[imported.cap.Module().ID()] = imported.cap.Module()
		}
		for _, used := range pkgs.used[name] {
			if !a.compatible(imported.cap, used.cap) {
				conflictWith(name, "imported", imported, used)
			}
		}
		if conflict != nil {
			// Also try a different exporter for the import itself.
			if req := imported.reqs[0]; !mutated[req.ID()] {
				a.queueImportPermutation(cands, req)
			}
			if viable && len(mutated) > 0 {
				a.queueUsesPermutation(perm)
			}
			return conflict
		}
	}
	for _, name := range sortedKeys(pkgs.required) {
		for _, b := range pkgs.required[name] {
			if b.cap.Module() != m {
				deps[b.cap.Module().ID()] = b.cap.Module()
			}
		}
	}

	a.checked[m.ID()] = true
	for _, id := range sortedKeys(deps) {
		if err := a.checkConsistency(deps[id], cands); err != nil {
			return err
		}
	}
	return nil
}
