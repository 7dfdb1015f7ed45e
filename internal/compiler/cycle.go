package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/cadcad/internal/ir"
)

// ReferenceCycle is a set of spaces whose dimensions reference each other.
// Such spaces could never be built because every space needs its
// references to exist first.
type ReferenceCycle struct {
	Path    []string `json:"path"`    // ["A", "B", "A"]
	Message string   `json:"message"` // Human-readable description
}

// FindCycles detects reference cycles among space specs.
//
// The algorithm:
//  1. Build a space -> referenced space graph from dimension references
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-reference as a cycle
//
// Projection targets are not edges: a projection only needs its target to
// exist by the time projections are attached.
func FindCycles(specs []ir.SpaceSpec) []ReferenceCycle {
	graph := buildReferenceGraph(specs)

	var cycles []ReferenceCycle
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}

	sort.Slice(cycles, func(i, j int) bool { return cycles[i].Path[0] < cycles[j].Path[0] })
	return cycles
}

// referenceGraph maps a space name to the spaces its dimensions reference.
type referenceGraph map[string][]string

func buildReferenceGraph(specs []ir.SpaceSpec) referenceGraph {
	graph := make(referenceGraph)
	for i := range specs {
		name := specs[i].Name
		if graph[name] == nil {
			graph[name] = []string{}
		}
		graph[name] = append(graph[name], specs[i].References()...)
	}
	return graph
}

// nodes returns the graph's nodes in sorted order so results are stable.
func (g referenceGraph) nodes() []string {
	nodes := make([]string, 0, len(g))
	for n := range g {
		nodes = append(nodes, n)
	}
	sort.Strings(nodes)
	return nodes
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph referenceGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range graph.nodes() {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// sccToCycle renders an SCC as a cycle path starting at its smallest name.
func sccToCycle(scc []string, graph referenceGraph) ReferenceCycle {
	sort.Strings(scc)
	if len(scc) == 1 {
		return ReferenceCycle{
			Path:    []string{scc[0], scc[0]},
			Message: fmt.Sprintf("space %s references itself", scc[0]),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return ReferenceCycle{
		Path:    path,
		Message: fmt.Sprintf("reference cycle: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath follows edges inside the SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	inSCC := make(map[string]bool, len(scc))
	for _, node := range scc {
		inSCC[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if inSCC[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
