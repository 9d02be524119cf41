package module

import (
	"sync"

	"github.com/bayleafwalker/bindery/internal/semver"
)

// Arena hands out stable integer ids for modules, capabilities and
// requirements. Ids are dense, start at zero and are never reused, so callers
// can key caches by id instead of by pointer.
type Arena struct {
	mu      sync.RWMutex
	modules []*Module
	caps    []*Capability
	reqs    []*Requirement
}

func NewArena() *Arena {
	return &Arena{}
}

// NewModule creates an unresolved module with no capabilities or requirements.
func (a *Arena) NewModule(symbolicName string, version semver.Version) *Module {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := &Module{
		arena:   a,
		id:      len(a.modules),
		name:    symbolicName,
		version: version,
	}
	a.modules = append(a.modules, m)
	return m
}

func (a *Arena) Module(id int) *Module {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || id >= len(a.modules) {
		return nil
	}
	return a.modules[id]
}

func (a *Arena) Capability(id int) *Capability {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || id >= len(a.caps) {
		return nil
	}
	return a.caps[id]
}

func (a *Arena) Requirement(id int) *Requirement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if id < 0 || id >= len(a.reqs) {
		return nil
	}
	return a.reqs[id]
}

// Modules returns every module in creation order.
func (a *Arena) Modules() []*Module {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Module, len(a.modules))
	copy(out, a.modules)
	return out
}

func (a *Arena) addCapability(c *Capability) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c.id = len(a.caps)
	a.caps = append(a.caps, c)
}

func (a *Arena) addRequirement(r *Requirement) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r.id = len(a.reqs)
	a.reqs = append(a.reqs, r)
}
