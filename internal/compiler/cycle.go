package compiler

// findCycles performs static cycle analysis on a machine definition's
// dependency edges (computed source and sub parent references).
//
// The algorithm:
//  1. Build state -> dependents graph from computed/sub declarations
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a cycle path
//
// A DAG returns an empty list. Edges to undeclared states are skipped;
// those are reported separately as unknown-reference errors.
func findCycles(def *Definition) [][]string {
	graph := buildDependencyGraph(def)

	var cycles [][]string
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 {
			cycles = append(cycles, closeCyclePath(scc, graph))
		} else if hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, []string{scc[0], scc[0]})
		}
	}
	return cycles
}

// dependencyGraph maps a state key to the states it depends on.
type dependencyGraph map[string][]string

func buildDependencyGraph(def *Definition) dependencyGraph {
	declared := make(map[string]bool, len(def.States))
	for _, state := range def.States {
		declared[state.Key] = true
	}

	graph := make(dependencyGraph, len(def.States))
	for _, state := range def.States {
		graph[state.Key] = []string{}
		if state.Computed != nil && declared[state.Computed.Source] {
			graph[state.Key] = append(graph[state.Key], state.Computed.Source)
		}
		if state.Sub != nil && declared[state.Sub.Parent] {
			graph[state.Key] = append(graph[state.Key], state.Sub.Parent)
		}
	}
	return graph
}

func hasSelfLoop(node string, graph dependencyGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
//
// Single-node SCCs without self-loops are NOT cycles.
func tarjanSCC(graph dependencyGraph) [][]string {
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

	for node := range graph {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// closeCyclePath reconstructs a closed cycle path through an SCC,
// e.g. ["a", "b", "a"].
func closeCyclePath(scc []string, graph dependencyGraph) []string {
	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
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
