package resolver

import (
	"context"
	"time"

	"github.com/bayleafwalker/bindery/internal/module"
)

// DefaultResolver is the backtracking package-space resolver.
//
// It holds no state between calls and is safe for concurrent use. Callers
// committing the returned wires must serialize that themselves.
type DefaultResolver struct{}

func NewDefault() *DefaultResolver {
	return &DefaultResolver{}
}

var _ Resolver = (*DefaultResolver)(nil)

func (r *DefaultResolver) Resolve(ctx context.Context, state State, m *module.Module) (WireMap, error) {
	start := time.Now()
	a := newAttempt(ctx, state, m)

	wm, err := r.resolve(ctx, a, m)
	observe(modeStatic, a, wm, err, start)
	if err != nil {
		a.log.Info("resolution failed", "attempts", a.tries, "error", err.Error())
		return nil, err
	}
	a.log.V(1).Info("resolved", "attempts", a.tries, "modules", len(wm))
	return wm, nil
}

func (r *DefaultResolver) resolve(ctx context.Context, a *attempt, m *module.Module) (WireMap, error) {
	if m.IsResolved() {
		return WireMap{}, nil
	}

	cands := candidateMap{}
	if err := a.populate(m, cands, map[int]*populateEntry{}); err != nil {
		return nil, err
	}
	accepted, err := a.search(ctx, m, cands)
	if err != nil {
		return nil, err
	}

	wm := WireMap{}
	a.populateWireMap(m, accepted, wm)
	return wm, nil
}

func (r *DefaultResolver) ResolveDynamic(ctx context.Context, state State, m *module.Module, pkg string) (WireMap, error) {
	start := time.Now()
	a := newAttempt(ctx, state, m)

	wm, err := r.resolveDynamic(ctx, a, m, pkg)
	observe(modeDynamic, a, wm, err, start)
	switch {
	case err != nil:
		a.log.Info("dynamic import failed", "package", pkg, "attempts", a.tries, "error", err.Error())
		return nil, err
	case wm == nil:
		a.log.V(1).Info("cannot dynamically import", "package", pkg)
	}
	return wm, nil
}

func (r *DefaultResolver) resolveDynamic(ctx context.Context, a *attempt, m *module.Module, pkg string) (WireMap, error) {
	dynReq, cands := a.dynamicCandidates(m, pkg)
	if dynReq == nil {
		return nil, nil
	}
	a.dynamicRoot = m
	a.dynamicReq = dynReq

	if err := a.populateDynamic(m, dynReq, cands); err != nil {
		return nil, err
	}
	accepted, err := a.search(ctx, m, cands)
	if err != nil {
		return nil, err
	}

	wm := WireMap{}
	a.populateDynamicWireMap(m, pkg, accepted, wm)
	return wm, nil
}
