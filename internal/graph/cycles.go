package graph

// DetectCycles finds every circular dependency chain in the graph using a
// depth-first search with an explicit recursion stack. When a service
// already on the stack is reached again, the stack slice from that service
// to the current one, closed with the revisited service, is reported as
// one cycle: A -> B -> C -> A comes back as [A B C A].
//
// The search restarts from every unvisited service so disjoint cycles are
// all found, not just the first. An acyclic graph yields an empty result.
// Traversal follows input order, making the output deterministic.
func DetectCycles(g *Graph) [][]string {
	visited := make(map[string]bool, g.Len())
	onStack := make(map[string]bool, g.Len())
	stack := make([]string, 0, g.Len())

	var cycles [][]string

	var visit func(name string)
	visit = func(name string) {
		visited[name] = true
		onStack[name] = true
		stack = append(stack, name)

		for _, dep := range g.forward[name] {
			if !visited[dep] {
				visit(dep)
				continue
			}
			if !onStack[dep] {
				continue
			}
			// dep is an ancestor on the current path: the slice from
			// its stack position to here, plus the closing edge, is
			// one complete cycle.
			start := 0
			for i, s := range stack {
				if s == dep {
					start = i
					break
				}
			}
			cycle := make([]string, 0, len(stack)-start+1)
			cycle = append(cycle, stack[start:]...)
			cycle = append(cycle, dep)
			cycles = append(cycles, cycle)
		}

		stack = stack[:len(stack)-1]
		onStack[name] = false
	}

	for _, name := range g.order {
		if !visited[name] {
			visit(name)
		}
	}

	return cycles
}
