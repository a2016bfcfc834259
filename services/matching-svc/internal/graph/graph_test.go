package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bloodlink/pkg/apperror"
	"bloodlink/pkg/domain"
	"bloodlink/services/matching-svc/internal/seed"
)

func locs(ids ...string) []domain.Location {
	out := make([]domain.Location, len(ids))
	for i, id := range ids {
		out[i] = domain.Location{ID: id, Name: "Area " + id}
	}
	return out
}

func TestNew_Valid(t *testing.T) {
	g, err := New(locs("a", "b", "c"), []domain.RoadEdge{
		{From: "a", To: "b", Distance: 3},
		{From: "b", To: "c", Distance: 4},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, map[string]int{"b": 3}, g.Neighbors("a"))
	assert.Equal(t, map[string]int{"a": 3, "c": 4}, g.Neighbors("b"))
	assert.True(t, g.Has("c"))
	assert.Equal(t, "Area b", g.Name("b"))
}

func TestNew_EdgeListedTwice(t *testing.T) {
	g, err := New(locs("a", "b"), []domain.RoadEdge{
		{From: "a", To: "b", Distance: 3},
		{From: "b", To: "a", Distance: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, g.EdgeCount())
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		locations []domain.Location
		edges     []domain.RoadEdge
		code      apperror.ErrorCode
	}{
		{
			name:      "duplicate location",
			locations: locs("a", "a"),
			code:      apperror.CodeDuplicateNode,
		},
		{
			name:      "empty id",
			locations: []domain.Location{{Name: "nameless"}},
			code:      apperror.CodeInvalidGraph,
		},
		{
			name:      "dangling edge",
			locations: locs("a"),
			edges:     []domain.RoadEdge{{From: "a", To: "zzz", Distance: 1}},
			code:      apperror.CodeDanglingEdge,
		},
		{
			name:      "self loop",
			locations: locs("a"),
			edges:     []domain.RoadEdge{{From: "a", To: "a", Distance: 1}},
			code:      apperror.CodeSelfLoop,
		},
		{
			name:      "zero distance",
			locations: locs("a", "b"),
			edges:     []domain.RoadEdge{{From: "a", To: "b", Distance: 0}},
			code:      apperror.CodeInvalidLength,
		},
		{
			name:      "negative distance",
			locations: locs("a", "b"),
			edges:     []domain.RoadEdge{{From: "a", To: "b", Distance: -2}},
			code:      apperror.CodeInvalidLength,
		},
		{
			name:      "conflicting weights",
			locations: locs("a", "b"),
			edges: []domain.RoadEdge{
				{From: "a", To: "b", Distance: 2},
				{From: "b", To: "a", Distance: 5},
			},
			code: apperror.CodeInvalidGraph,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.locations, tt.edges)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.Equal(t, tt.code, apperror.Code(err))
		})
	}
}

func TestNeighbors_UnknownAndIsolated(t *testing.T) {
	g := MustNew(locs("a", "b", "lonely"), []domain.RoadEdge{{From: "a", To: "b", Distance: 1}})

	unknown := g.Neighbors("nowhere")
	require.NotNil(t, unknown)
	assert.Empty(t, unknown)
	assert.Empty(t, g.Neighbors("lonely"))
}

func TestNeighbors_ReturnsCopy(t *testing.T) {
	g := MustNew(locs("a", "b"), []domain.RoadEdge{{From: "a", To: "b", Distance: 1}})

	n := g.Neighbors("a")
	n["b"] = 100

	assert.Equal(t, 1, g.Neighbors("a")["b"])
}

func TestEdges_EachOnce(t *testing.T) {
	g := MustNew(locs("a", "b", "c"), []domain.RoadEdge{
		{From: "c", To: "a", Distance: 9},
		{From: "a", To: "b", Distance: 1},
	})

	assert.Equal(t, []domain.RoadEdge{
		{From: "a", To: "b", Distance: 1},
		{From: "a", To: "c", Distance: 9},
	}, g.Edges())
}

func TestSeedNetwork(t *testing.T) {
	g, err := New(seed.Locations(), seed.Roads())
	require.NoError(t, err)

	assert.Equal(t, 24, g.NodeCount())
	assert.Equal(t, 49, g.EdgeCount())

	for _, loc := range g.Locations() {
		assert.NotEmpty(t, g.Neighbors(loc.ID), "%s should have at least one road", loc.ID)
	}
	assert.Equal(t, 5, g.Neighbors("sabzazar")["township"])
	assert.Equal(t, 5, g.Neighbors("township")["sabzazar"])
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(locs("a"), []domain.RoadEdge{{From: "a", To: "b", Distance: 1}})
	})
}
