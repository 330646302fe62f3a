package resolver

import (
	"sort"
)

// graph is a directed graph over mod ids. An edge from -> to means from loads before to.
type graph struct {
	nodes     map[string]bool
	adjacency map[string]map[string]bool
}

func newGraph(nodes []string) *graph {
	g := &graph{
		nodes:     make(map[string]bool, len(nodes)),
		adjacency: make(map[string]map[string]bool),
	}
	for _, n := range nodes {
		g.nodes[n] = true
	}
	return g
}

// addEdge adds from -> to when both nodes are present. Duplicate edges are ignored.
func (g *graph) addEdge(from, to string) bool {
	if !g.nodes[from] || !g.nodes[to] || from == to {
		return false
	}
	if g.adjacency[from] == nil {
		g.adjacency[from] = make(map[string]bool)
	}
	g.adjacency[from][to] = true
	return true
}

func (g *graph) neighbors(n string) []string {
	out := make([]string, 0, len(g.adjacency[n]))
	for m := range g.adjacency[n] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func (g *graph) sortedNodes() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// path returns a path from -> ... -> to, or nil if to is unreachable.
func (g *graph) path(from, to string) []string {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n == to {
			var p []string
			for cur := to; cur != ""; cur = prev[cur] {
				p = append([]string{cur}, p...)
			}
			return p
		}
		for _, m := range g.neighbors(n) {
			if _, seen := prev[m]; !seen {
				prev[m] = n
				queue = append(queue, m)
			}
		}
	}
	return nil
}

// components returns the strongly connected components (Tarjan), each sorted.
func (g *graph) components() [][]string {
	var (
		index   int
		stack   []string
		onStack = make(map[string]bool)
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		out     [][]string
	)

	var visit func(n string)
	visit = func(n string) {
		indices[n] = index
		lowlink[n] = index
		index++
		stack = append(stack, n)
		onStack[n] = true

		for _, m := range g.neighbors(n) {
			if _, seen := indices[m]; !seen {
				visit(m)
				lowlink[n] = min(lowlink[n], lowlink[m])
			} else if onStack[m] {
				lowlink[n] = min(lowlink[n], indices[m])
			}
		}

		if lowlink[n] == indices[n] {
			var comp []string
			for {
				m := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[m] = false
				comp = append(comp, m)
				if m == n {
					break
				}
			}
			sort.Strings(comp)
			out = append(out, comp)
		}
	}

	for _, n := range g.sortedNodes() {
		if _, seen := indices[n]; !seen {
			visit(n)
		}
	}
	return out
}

// topoSort runs Kahn's algorithm. less orders the ready set. The graph must be acyclic.
func (g *graph) topoSort(less func(a, b string) bool) []string {
	inDegree := make(map[string]int, len(g.nodes))
	for n := range g.nodes {
		inDegree[n] += 0
		for m := range g.adjacency[n] {
			inDegree[m]++
		}
	}

	var ready []string
	for n, d := range inDegree {
		if d == 0 {
			ready = append(ready, n)
		}
	}

	result := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return less(ready[i], ready[j]) })
		n := ready[0]
		ready = ready[1:]
		result = append(result, n)

		for m := range g.adjacency[n] {
			inDegree[m]--
			if inDegree[m] == 0 {
				ready = append(ready, m)
			}
		}
	}
	return result
}
