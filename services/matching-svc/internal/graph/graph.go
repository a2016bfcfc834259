// Package graph holds the static road network the router searches.
package graph

import (
	"fmt"
	"sort"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
)

// =============================================================================
// LocationGraph
// =============================================================================
//
// LocationGraph is an immutable weighted undirected graph of city areas.
// Every edge is stored in both directions with the same weight. Nodes keep
// the order in which they were supplied; that ordinal is the router's
// tie-break, so two graphs built from the same input always produce the same
// paths.
//
// The graph is never mutated after New returns and is safe for concurrent
// readers.
// =============================================================================

// LocationGraph is the validated road network.
type LocationGraph struct {
	locations []domain.Location
	index     map[string]int
	adjacency []map[int]int
	edgeCount int
}

// New validates locations and edges and builds the graph.
//
// Rejected input:
//   - empty or duplicate location ids
//   - edges whose endpoints are not known locations
//   - self loops
//   - non-positive distances
//   - the same pair listed twice with different distances
func New(locations []domain.Location, edges []domain.RoadEdge) (*LocationGraph, error) {
	verrs := apperror.NewValidationErrors()

	g := &LocationGraph{
		locations: make([]domain.Location, 0, len(locations)),
		index:     make(map[string]int, len(locations)),
	}

	for _, loc := range locations {
		if loc.ID == "" {
			verrs.AddErrorWithField(apperror.CodeInvalidGraph, "location id is empty", "name="+loc.Name)
			continue
		}
		if _, dup := g.index[loc.ID]; dup {
			verrs.AddErrorWithField(apperror.CodeDuplicateNode, "duplicate location", loc.ID)
			continue
		}
		if loc.Name == "" {
			loc.Name = loc.ID
		}
		g.index[loc.ID] = len(g.locations)
		g.locations = append(g.locations, loc)
	}

	g.adjacency = make([]map[int]int, len(g.locations))
	for i := range g.adjacency {
		g.adjacency[i] = make(map[int]int)
	}

	for _, e := range edges {
		from, okFrom := g.index[e.From]
		to, okTo := g.index[e.To]
		label := e.From + "-" + e.To

		switch {
		case !okFrom || !okTo:
			verrs.AddErrorWithField(apperror.CodeDanglingEdge, "edge references unknown location", label)
			continue
		case from == to:
			verrs.AddErrorWithField(apperror.CodeSelfLoop, "edge connects a location to itself", label)
			continue
		case e.Distance <= 0:
			verrs.AddErrorWithField(apperror.CodeInvalidLength,
				fmt.Sprintf("distance must be positive, got %d", e.Distance), label)
			continue
		}

		if existing, ok := g.adjacency[from][to]; ok {
			if existing != e.Distance {
				verrs.AddErrorWithField(apperror.CodeInvalidGraph,
					fmt.Sprintf("conflicting distances %d and %d", existing, e.Distance), label)
			}
			continue
		}

		g.adjacency[from][to] = e.Distance
		g.adjacency[to][from] = e.Distance
		g.edgeCount++
	}

	if err := verrs.Err(); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNew panics on invalid input. Intended for static seed data and tests.
func MustNew(locations []domain.Location, edges []domain.RoadEdge) *LocationGraph {
	g, err := New(locations, edges)
	if err != nil {
		panic(err)
	}
	return g
}

// Neighbors returns neighbour id -> distance. Unknown or isolated locations
// yield an empty map, never an error.
func (g *LocationGraph) Neighbors(id string) map[string]int {
	idx, ok := g.index[id]
	if !ok {
		return map[string]int{}
	}
	out := make(map[string]int, len(g.adjacency[idx]))
	for n, d := range g.adjacency[idx] {
		out[g.locations[n].ID] = d
	}
	return out
}

// Has reports whether id is a known location.
func (g *LocationGraph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

// Location looks up a location by id.
func (g *LocationGraph) Location(id string) (domain.Location, bool) {
	idx, ok := g.index[id]
	if !ok {
		return domain.Location{}, false
	}
	return g.locations[idx], true
}

// Name returns the display name, or the id itself for unknown locations.
func (g *LocationGraph) Name(id string) string {
	if loc, ok := g.Location(id); ok {
		return loc.Name
	}
	return id
}

// Locations returns a copy in insertion order.
func (g *LocationGraph) Locations() []domain.Location {
	out := make([]domain.Location, len(g.locations))
	copy(out, g.locations)
	return out
}

// Edges returns each undirected edge once, ordered by endpoint ordinals.
func (g *LocationGraph) Edges() []domain.RoadEdge {
	out := make([]domain.RoadEdge, 0, g.edgeCount)
	for from, adj := range g.adjacency {
		targets := make([]int, 0, len(adj))
		for to := range adj {
			if to > from {
				targets = append(targets, to)
			}
		}
		sort.Ints(targets)
		for _, to := range targets {
			out = append(out, domain.RoadEdge{
				From:     g.locations[from].ID,
				To:       g.locations[to].ID,
				Distance: adj[to],
			})
		}
	}
	return out
}

func (g *LocationGraph) NodeCount() int { return len(g.locations) }
func (g *LocationGraph) EdgeCount() int { return g.edgeCount }

// Ordinal and the *ByOrdinal accessors expose the dense node numbering used by
// the router's heap.
func (g *LocationGraph) Ordinal(id string) (int, bool) {
	idx, ok := g.index[id]
	return idx, ok
}

// IDByOrdinal is the inverse of Ordinal.
func (g *LocationGraph) IDByOrdinal(ordinal int) string {
	return g.locations[ordinal].ID
}

// AdjacentByOrdinal returns the internal adjacency of one node. Callers must
// not modify it.
func (g *LocationGraph) AdjacentByOrdinal(ordinal int) map[int]int {
	return g.adjacency[ordinal]
}
