// Package seanet holds the immutable weighted graph of ports and
// navigable lanes, and answers shortest-path and distance queries.
//
// The graph is built once from pre-processed scenario input; shortest
// paths come from gonum's Dijkstra implementation rather than anything
// hand-rolled here. Queries are pure functions of the frozen graph;
// per-origin results are memoized since the topology never changes.
// Unreachable is an ordinary (value, ok=false) result, not an error:
// callers must cope with disconnected ports.
package seanet

import (
	"fmt"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Lane is a navigable arc between two ports. Bidirectional unless OneWay.
type Lane struct {
	From     string
	To       string
	Distance float64
	OneWay   bool
}

// Leg is one traversed lane in a resolved route.
type Leg struct {
	From     string
	To       string
	Distance float64
}

// Route is the ordered leg sequence of a shortest path.
type Route struct {
	Legs  []Leg
	Total float64
}

// Graph is the immutable port network. Safe for concurrent reads only
// after Build returns; the memo is populated lazily, so a Graph must not
// be shared across concurrently running simulations. Each run builds its
// own from the same spec (construction is cheap next to a run).
type Graph struct {
	g        *simple.WeightedDirectedGraph
	ids      map[string]int64
	names    map[int64]string
	shortest map[string]path.Shortest
}

// Build constructs the network from port identifiers and lanes. Every
// lane endpoint must name a known port; distances must be positive.
func Build(ports []string, lanes []Lane) (*Graph, error) {
	g := simple.NewWeightedDirectedGraph(0, 0)
	ids := make(map[string]int64, len(ports))
	names := make(map[int64]string, len(ports))
	for i, p := range ports {
		if _, dup := ids[p]; dup {
			return nil, fmt.Errorf("duplicate port %q", p)
		}
		id := int64(i)
		ids[p] = id
		names[id] = p
		g.AddNode(simple.Node(id))
	}
	for _, l := range lanes {
		u, ok := ids[l.From]
		if !ok {
			return nil, fmt.Errorf("lane %s->%s: unknown port %q", l.From, l.To, l.From)
		}
		v, ok := ids[l.To]
		if !ok {
			return nil, fmt.Errorf("lane %s->%s: unknown port %q", l.From, l.To, l.To)
		}
		if u == v {
			return nil, fmt.Errorf("lane %s->%s: self loop", l.From, l.To)
		}
		if l.Distance <= 0 {
			return nil, fmt.Errorf("lane %s->%s: non-positive distance %.2f", l.From, l.To, l.Distance)
		}
		g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(u), T: simple.Node(v), W: l.Distance})
		if !l.OneWay {
			g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(v), T: simple.Node(u), W: l.Distance})
		}
	}
	return &Graph{
		g:        g,
		ids:      ids,
		names:    names,
		shortest: make(map[string]path.Shortest),
	}, nil
}

// Ports returns the known port identifiers in insertion order.
func (gr *Graph) Ports() []string {
	out := make([]string, len(gr.ids))
	for name, id := range gr.ids {
		out[id] = name
	}
	return out
}

// Knows reports whether the port identifier is part of the network.
func (gr *Graph) Knows(port string) bool {
	_, ok := gr.ids[port]
	return ok
}

func (gr *Graph) from(origin string) (path.Shortest, bool) {
	if s, ok := gr.shortest[origin]; ok {
		return s, true
	}
	id, ok := gr.ids[origin]
	if !ok {
		return path.Shortest{}, false
	}
	s := path.DijkstraFrom(simple.Node(id), gr.g)
	gr.shortest[origin] = s
	return s, true
}

// ShortestPath returns the ordered legs of a shortest route from one
// port to another, or ok=false when the destination is not reachable or
// either port is unknown. A port is trivially reachable from itself with
// an empty route.
func (gr *Graph) ShortestPath(from, to string) (Route, bool) {
	if from == to {
		if !gr.Knows(from) {
			return Route{}, false
		}
		return Route{}, true
	}
	s, ok := gr.from(from)
	if !ok {
		return Route{}, false
	}
	tid, ok := gr.ids[to]
	if !ok {
		return Route{}, false
	}
	nodes, weight := s.To(tid)
	if len(nodes) == 0 {
		return Route{}, false
	}
	legs := make([]Leg, 0, len(nodes)-1)
	for i := 1; i < len(nodes); i++ {
		u, v := nodes[i-1].ID(), nodes[i].ID()
		w, _ := gr.g.Weight(u, v)
		legs = append(legs, Leg{From: gr.names[u], To: gr.names[v], Distance: w})
	}
	return Route{Legs: legs, Total: weight}, true
}

// Distance returns the shortest-path distance between two ports, or
// ok=false when unreachable.
func (gr *Graph) Distance(from, to string) (float64, bool) {
	r, ok := gr.ShortestPath(from, to)
	if !ok {
		return 0, false
	}
	return r.Total, true
}

// Reachable reports whether any route exists between two ports.
func (gr *Graph) Reachable(from, to string) bool {
	_, ok := gr.Distance(from, to)
	return ok
}
