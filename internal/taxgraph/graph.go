// Package taxgraph stores the concept taxonomy (C13) as a
// github.com/katalvlaran/lvlath core.Graph: vertices are taxonomy-vertex
// ids, edges point from a more general vertex to each of its direct
// subsumees. The role hierarchy is not stored here; role.go keeps it as
// sub/super-role slices and bitset closures. Wrapping lvlath here rather
// than hand-rolling an adjacency list lets the taxonomy builder reuse a
// maintained graph representation (vertex/edge counts, neighbour
// queries) and the algorithms package's DFS for read-only top-down walks.
package taxgraph

import (
	"fmt"

	"github.com/katalvlaran/lvlath/algorithms"
	"github.com/katalvlaran/lvlath/core"
)

// Graph is a directed, unweighted subsumption DAG: an edge parent->child
// means parent strictly subsumes (or, for a synonym-merged vertex,
// equals) child.
type Graph struct {
	g *core.Graph
}

// New returns an empty subsumption graph.
func New() *Graph {
	return &Graph{g: core.NewGraph(core.WithDirected(true))}
}

// EnsureVertex adds id if it is not already present.
func (t *Graph) EnsureVertex(id string) {
	if !t.g.HasVertex(id) {
		_ = t.g.AddVertex(id)
	}
}

// AddSubsumption records parent ⊒ child (parent is a direct taxonomy
// super-vertex of child). Both endpoints are added if missing.
func (t *Graph) AddSubsumption(parent, child string) error {
	t.EnsureVertex(parent)
	t.EnsureVertex(child)
	if t.g.HasEdge(parent, child) {
		return nil
	}
	_, err := t.g.AddEdge(parent, child, 0)
	if err != nil {
		return fmt.Errorf("taxgraph: add edge %s->%s: %w", parent, child, err)
	}
	return nil
}

// Children returns the direct subsumees of id (empty if id is a leaf or
// absent).
func (t *Graph) Children(id string) []string {
	if !t.g.HasVertex(id) {
		return nil
	}
	ids, err := t.g.NeighborIDs(id)
	if err != nil {
		return nil
	}
	return ids
}

// Parents returns every vertex with a direct edge into id.
func (t *Graph) Parents(id string) []string {
	var out []string
	for _, v := range t.g.Vertices() {
		ids, err := t.g.NeighborIDs(v)
		if err != nil {
			continue
		}
		for _, c := range ids {
			if c == id {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// HasEdge reports a direct parent->child subsumption edge.
func (t *Graph) HasEdge(parent, child string) bool { return t.g.HasEdge(parent, child) }

// Vertices returns every vertex id currently in the graph.
func (t *Graph) Vertices() []string { return t.g.Vertices() }

// VertexCount and EdgeCount report the graph's size. No caller in this
// module uses them.
func (t *Graph) VertexCount() int { return t.g.VertexCount() }
func (t *Graph) EdgeCount() int   { return t.g.EdgeCount() }

// TopDownWalk visits every vertex reachable from root in depth-first
// order, calling visit(id, depth) on first visit. It is a read-only
// reporting helper (no caller in this module uses it; cmd/tableau prints
// through Children) built on algorithms.DFS rather than on the taxonomy
// builder's own
// top-down traversal in pkg/tableau/taxonomy.go: that traversal's control
// flow (prune a branch when testSub fails, short-circuit on a synonym)
// is not a generic DFS and is written by hand there, while
// this walk always visits the whole reachable subgraph and so fits
// DFS's OnVisit/OnExit hooks directly.
func (t *Graph) TopDownWalk(root string, visit func(id string, depth int)) error {
	if !t.g.HasVertex(root) {
		return nil
	}
	_, err := algorithms.DFS(t.g, root, &algorithms.DFSOptions{
		OnVisit: func(v *core.Vertex, depth int) error {
			visit(v.ID, depth)
			return nil
		},
	})
	return err
}
