package engine

// topoSort produces a flush order in which every source precedes its
// dependents. keys fixes the tie-break: among ready states the one
// registered first flushes first, so the order is fully deterministic.
//
// deps maps dependent key -> source keys. On a cycle the returned error
// carries one offending path.
func topoSort(keys []string, deps map[string][]string) ([]string, error) {
	remaining := make(map[string]int, len(keys)) // key -> unflushed source count
	for _, key := range keys {
		remaining[key] = len(deps[key])
	}

	// dependents is the reverse edge set: source -> dependents.
	dependents := make(map[string][]string, len(deps))
	for dep, srcs := range deps {
		for _, src := range srcs {
			dependents[src] = append(dependents[src], dep)
		}
	}

	order := make([]string, 0, len(keys))
	placed := make(map[string]bool, len(keys))

	// Repeatedly scan registration order for ready states. Quadratic in the
	// number of states, which is small and only paid when the memoized
	// order is stale.
	for len(order) < len(keys) {
		progressed := false
		for _, key := range keys {
			if placed[key] || remaining[key] > 0 {
				continue
			}
			placed[key] = true
			order = append(order, key)
			for _, dep := range dependents[key] {
				remaining[dep]--
			}
			progressed = true
		}
		if !progressed {
			return nil, newCycleError(findCycle(keys, deps, placed))
		}
	}
	return order, nil
}

// findCycle walks source edges among unplaced states until a key repeats,
// then returns the closed path, e.g. ["a", "b", "a"].
func findCycle(keys []string, deps map[string][]string, placed map[string]bool) []string {
	// Any unplaced state leads into a cycle: keep stepping to the first
	// unplaced source until a repeat.
	var start string
	for _, key := range keys {
		if !placed[key] {
			start = key
			break
		}
	}
	if start == "" {
		return nil
	}

	seen := make(map[string]int)
	path := []string{}
	cur := start
	for {
		if at, ok := seen[cur]; ok {
			cycle := append([]string{}, path[at:]...)
			return append(cycle, cur)
		}
		seen[cur] = len(path)
		path = append(path, cur)

		next := ""
		for _, src := range deps[cur] {
			if !placed[src] {
				next = src
				break
			}
		}
		if next == "" {
			// Should be unreachable: an unplaced state always has an
			// unplaced source.
			return path
		}
		cur = next
	}
}
