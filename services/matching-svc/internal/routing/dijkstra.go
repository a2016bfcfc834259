// Package routing computes shortest road routes between city areas.
package routing

import (
	"container/heap"

	"bloodlink/pkg/domain"
	"bloodlink/services/matching-svc/internal/graph"
)

// =============================================================================
// Dijkstra's Algorithm
// =============================================================================
//
// Single-pair shortest path over the LocationGraph. All road distances are
// positive integers, so plain Dijkstra with a binary heap is exact.
//
// Time Complexity: O((V + E) log V)
// Space Complexity: O(V)
//
// Determinism:
//   - the heap orders by (distance, node ordinal), ordinal being the
//     location's position in the graph input
//   - relaxation uses a strict "<", so the first predecessor to reach the
//     best distance keeps it
//
// The search stops as soon as the target is popped.
// =============================================================================

// priorityQueueItem is one frontier entry.
type priorityQueueItem struct {
	node     int
	distance int
	index    int
}

// priorityQueue is a min-heap on distance with ordinal tie-break.
type priorityQueue []*priorityQueueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].distance != pq[j].distance {
		return pq[i].distance < pq[j].distance
	}
	return pq[i].node < pq[j].node
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*priorityQueueItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Router answers shortest-path queries over a fixed graph. It holds no
// mutable state and may be shared between goroutines.
type Router struct {
	g *graph.LocationGraph
}

// NewRouter binds a router to g.
func NewRouter(g *graph.LocationGraph) *Router {
	return &Router{g: g}
}

// Graph returns the underlying network.
func (r *Router) Graph() *graph.LocationGraph {
	return r.g
}

// Route returns the shortest path from -> to as location ids.
//
// domain.NoRoute is returned when either id is unknown, when from == to, and
// when the locations are disconnected. None of these are errors.
func (r *Router) Route(from, to string) domain.Route {
	src, ok := r.g.Ordinal(from)
	if !ok {
		return domain.NoRoute
	}
	dst, ok := r.g.Ordinal(to)
	if !ok || src == dst {
		return domain.NoRoute
	}

	n := r.g.NodeCount()
	dist := make([]int, n)
	parent := make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = domain.Unreachable
		parent[i] = -1
	}
	dist[src] = 0

	pq := make(priorityQueue, 0, n)
	heap.Push(&pq, &priorityQueueItem{node: src, distance: 0})

	for pq.Len() > 0 {
		current := heap.Pop(&pq).(*priorityQueueItem)
		u := current.node

		// Stale entry: a shorter distance was found after this one was pushed.
		if visited[u] || current.distance > dist[u] {
			continue
		}
		visited[u] = true

		if u == dst {
			break
		}

		for v, w := range r.g.AdjacentByOrdinal(u) {
			if visited[v] {
				continue
			}
			if candidate := dist[u] + w; candidate < dist[v] {
				dist[v] = candidate
				parent[v] = u
				heap.Push(&pq, &priorityQueueItem{node: v, distance: candidate})
			}
		}
	}

	if dist[dst] == domain.Unreachable {
		return domain.NoRoute
	}

	path := reconstructPath(parent, src, dst)
	if len(path) < 2 {
		return domain.NoRoute
	}

	ids := make([]string, len(path))
	for i, ordinal := range path {
		ids[i] = r.g.IDByOrdinal(ordinal)
	}
	return domain.Route{Path: ids, Distance: dist[dst]}
}

// RouteNames is Route with display names instead of ids.
func (r *Router) RouteNames(from, to string) domain.Route {
	route := r.Route(from, to)
	if !route.Found() {
		return route
	}
	return domain.Route{Path: r.Names(route.Path), Distance: route.Distance}
}

// Names maps location ids to display names.
func (r *Router) Names(ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = r.g.Name(id)
	}
	return names
}

// reconstructPath walks parent pointers back from sink. Returns nil when the
// chain does not lead to source.
func reconstructPath(parent []int, source, sink int) []int {
	path := []int{sink}
	for current := sink; current != source; {
		p := parent[current]
		if p == -1 {
			return nil
		}
		path = append(path, p)
		current = p
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
