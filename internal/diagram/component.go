package diagram

// Components partitions the graph into undirected connected components. Virtual
// edges count as connections. Components are ordered by their first node and
// list node ids in snapshot order.
func Components(m *Model) [][]int {
	a := m.cur
	comp := make([]int, len(a.nodes))
	for i := range comp {
		comp[i] = -1
	}

	var groups [][]int
	for start := range a.nodes {
		if comp[start] >= 0 {
			continue
		}
		label := len(groups)
		comp[start] = label
		stack := []int{start}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range neighbors(a, a.nodes[idx].ID) {
				if comp[next] < 0 {
					comp[next] = label
					stack = append(stack, next)
				}
			}
		}
		groups = append(groups, nil)
	}

	for idx, label := range comp {
		groups[label] = append(groups[label], a.nodes[idx].ID)
	}
	return groups
}

// FindComponent returns the names of every node connected to id, ignoring edge
// direction. It returns false when id is not a node of the graph.
func FindComponent(m *Model, id int) (map[string]struct{}, bool) {
	a := m.cur
	start, ok := a.byID[id]
	if !ok {
		return nil, false
	}

	visited := map[int]struct{}{start: {}}
	stack := []int{start}
	names := make(map[string]struct{})
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		names[a.nodes[idx].Name] = struct{}{}
		for _, next := range neighbors(a, a.nodes[idx].ID) {
			if _, seen := visited[next]; !seen {
				visited[next] = struct{}{}
				stack = append(stack, next)
			}
		}
	}
	return names, true
}

// neighbors returns arena indices adjacent to id in either direction
func neighbors(a *arena, id int) []int {
	var out []int
	for _, e := range a.out[id] {
		out = append(out, a.byID[a.edges[e].Key.Target])
	}
	for _, e := range a.in[id] {
		out = append(out, a.byID[a.edges[e].Key.Source])
	}
	return out
}
