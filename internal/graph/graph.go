// Package graph models resolved wires as a directed graph between modules.
//
// Vertices are module names ("name@version"), edges point from importer to
// exporter and carry the capabilities the importer is wired to.
package graph

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	graphlib "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/bayleafwalker/bindery/internal/module"
	"github.com/bayleafwalker/bindery/internal/resolver"
)

type edgeKey struct {
	source, target string
}

// WireGraph is a module dependency graph built from wires.
type WireGraph struct {
	g      graphlib.Graph[string, string]
	labels map[edgeKey][]string
}

func New() *WireGraph {
	return &WireGraph{
		g:      graphlib.New(graphlib.StringHash, graphlib.Directed()),
		labels: map[edgeKey][]string{},
	}
}

// FromWireMap builds a graph of every module in wm and its wires, in module
// id order.
func FromWireMap(wm resolver.WireMap) (*WireGraph, error) {
	mods := make([]*module.Module, 0, len(wm))
	for m := range wm {
		mods = append(mods, m)
	}
	slices.SortFunc(mods, func(a, b *module.Module) int { return a.ID() - b.ID() })

	wg := New()
	for _, m := range mods {
		if err := wg.AddModule(m); err != nil {
			return nil, err
		}
		if err := wg.AddWires(wm[m]...); err != nil {
			return nil, err
		}
	}
	return wg, nil
}

// AddModule adds m as a vertex. Adding a module twice is a no-op.
func (wg *WireGraph) AddModule(m *module.Module) error {
	attrs := []func(*graphlib.VertexProperties){graphlib.VertexAttribute("shape", "box")}
	if !m.IsResolved() {
		attrs = append(attrs, graphlib.VertexAttribute("style", "dashed"))
	}
	err := wg.g.AddVertex(m.String(), attrs...)
	if err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("add module %s: %w", m, err)
	}
	return nil
}

// AddWires adds an edge per importer and exporter pair. Wires between the
// same pair share one edge whose label lists every capability.
func (wg *WireGraph) AddWires(wires ...module.Wire) error {
	for _, w := range wires {
		for _, m := range []*module.Module{w.Importer(), w.Exporter()} {
			if err := wg.AddModule(m); err != nil {
				return err
			}
		}

		key := edgeKey{source: w.Importer().String(), target: w.Exporter().String()}
		label := wireLabel(w)
		existing, seen := wg.labels[key]
		if slices.Contains(existing, label) {
			continue
		}
		wg.labels[key] = append(existing, label)
		attr := graphlib.EdgeAttribute("label", strings.Join(wg.labels[key], "\\n"))

		var err error
		if seen {
			err = wg.g.UpdateEdge(key.source, key.target, attr)
		} else {
			err = wg.g.AddEdge(key.source, key.target, attr)
		}
		if err != nil {
			return fmt.Errorf("wire %s -> %s: %w", key.source, key.target, err)
		}
	}
	return nil
}

func wireLabel(w module.Wire) string {
	c := w.Capability()
	if name := c.Name(); name != "" {
		return c.Namespace() + "=" + name
	}
	return c.Namespace()
}

// Dependencies returns the sorted modules m is wired to.
func (wg *WireGraph) Dependencies(m string) ([]string, error) {
	adjacency, err := wg.g.AdjacencyMap()
	if err != nil {
		return nil, err
	}
	targets, ok := adjacency[m]
	if !ok {
		return nil, fmt.Errorf("module %s: %w", m, graphlib.ErrVertexNotFound)
	}
	out := make([]string, 0, len(targets))
	for t := range targets {
		out = append(out, t)
	}
	slices.Sort(out)
	return out, nil
}

// Labels returns the capabilities carried by the edge from source to target.
func (wg *WireGraph) Labels(source, target string) []string {
	return slices.Clone(wg.labels[edgeKey{source: source, target: target}])
}

// Cycles returns every group of modules that are wired to each other in a
// cycle. Each group is sorted, and the groups are ordered by their first
// member.
func (wg *WireGraph) Cycles() ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(wg.g)
	if err != nil {
		return nil, err
	}
	var out [][]string
	for _, c := range components {
		if len(c) < 2 {
			continue
		}
		c = slices.Clone(c)
		slices.Sort(c)
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return out, nil
}

// WriteDOT renders the graph in Graphviz DOT format.
func (wg *WireGraph) WriteDOT(w io.Writer) error {
	return draw.DOT(wg.g, w, draw.GraphAttribute("rankdir", "LR"))
}
