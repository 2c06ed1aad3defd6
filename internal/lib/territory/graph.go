package territory

// Graph is an undirected adjacency graph over units addressed by their index in
// the input slice. Neighbor lists keep insertion order so traversals are
// deterministic.
type Graph struct {
	neighbors [][]int
}

// BuildGraph connects every pair of units whose centroids are at most
// thresholdMeters apart. It compares all pairs, O(n²) in the unit count, which is
// fine for the few hundred streets of a postal code area but not for city-wide
// input. Units without coordinates never gain edges.
func BuildGraph(units []Unit, thresholdMeters float64) *Graph {
	g := &Graph{neighbors: make([][]int, len(units))}
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			if distance(units[i], units[j]) <= thresholdMeters {
				g.neighbors[i] = append(g.neighbors[i], j)
				g.neighbors[j] = append(g.neighbors[j], i)
			}
		}
	}
	return g
}

// Len is the number of nodes.
func (g *Graph) Len() int {
	return len(g.neighbors)
}

// Neighbors returns the neighbors of node i. The slice must not be modified.
func (g *Graph) Neighbors(i int) []int {
	return g.neighbors[i]
}

// Degree is the number of neighbors of node i.
func (g *Graph) Degree(i int) int {
	return len(g.neighbors[i])
}

// Adjacent reports whether i and j share an edge.
func (g *Graph) Adjacent(i, j int) bool {
	for _, n := range g.neighbors[i] {
		if n == j {
			return true
		}
	}
	return false
}

// Components returns the connected components, each in BFS order, ordered by
// their lowest node.
func (g *Graph) Components() [][]int {
	seen := make([]bool, g.Len())
	var components [][]int
	for start := range g.neighbors {
		if seen[start] {
			continue
		}
		seen[start] = true
		component := []int{start}
		for head := 0; head < len(component); head++ {
			for _, n := range g.neighbors[component[head]] {
				if !seen[n] {
					seen[n] = true
					component = append(component, n)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

// Connected reports whether nodes form a single connected subgraph using only
// edges between members of nodes.
func (g *Graph) Connected(nodes []int) bool {
	return g.ConnectedWithout(nodes, -1)
}

// ConnectedWithout is Connected for nodes with excluded removed.
func (g *Graph) ConnectedWithout(nodes []int, excluded int) bool {
	members := make(map[int]bool, len(nodes))
	start := -1
	for _, n := range nodes {
		if n == excluded {
			continue
		}
		members[n] = true
		if start == -1 {
			start = n
		}
	}
	if len(members) <= 1 {
		return true
	}

	visited := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, n := range g.neighbors[current] {
			if members[n] && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}

	return len(visited) == len(members)
}
