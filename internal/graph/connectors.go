package graph

import "sort"

// Connector is a member whose removal would split their neighborhood
// into disconnected pieces.
type Connector struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Ties     int    `json:"ties"`
}

// ThinTie is an interaction pair that is the only link between two
// parts of a neighborhood.
type ThinTie struct {
	A         string `json:"a"`
	B         string `json:"b"`
	AUsername string `json:"a_username"`
	BUsername string `json:"b_username"`
}

// ConnectorReport lists the structural weak points of the community.
type ConnectorReport struct {
	Connectors     []Connector `json:"connectors"`
	ThinTies       []ThinTie   `json:"thin_ties"`
	ConnectorCount int         `json:"connector_count"`
	ThinTieCount   int         `json:"thin_tie_count"`
}

// FindConnectors locates articulation members and single-point ties
// with an iterative Tarjan walk over the interaction graph (explicit
// stack, same reason as Neighborhoods). Connectors are ordered by tie
// count descending then id, thin ties by their normalized pair.
func FindConnectors(s *Snapshot) *ConnectorReport {
	if s.Len() == 0 {
		return &ConnectorReport{}
	}

	ids := s.MemberIDs()
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	n := len(ids)

	adj := make([][]int, n)
	for i, id := range ids {
		for _, nb := range s.Stats[id].Neighbors {
			adj[i] = append(adj[i], index[nb])
		}
	}

	disc := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	isCut := make([]bool, n)
	var tiePairs [][2]int
	counter := 1

	const noParent = -1
	type frame struct {
		node, parent, next int
	}

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		disc[start] = counter
		low[start] = counter
		counter++

		stack := []frame{{start, noParent, 0}}
		rootChildren := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := top.node

			if top.next < len(adj[node]) {
				child := adj[node][top.next]
				top.next++
				if child == top.parent {
					continue
				}
				if visited[child] {
					// Back edge
					if disc[child] < low[node] {
						low[node] = disc[child]
					}
					continue
				}
				visited[child] = true
				disc[child] = counter
				low[child] = counter
				counter++
				if node == start {
					rootChildren++
				}
				stack = append(stack, frame{child, node, 0})
				continue
			}

			// Done with this node, pop and propagate
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue
			}
			parent := stack[len(stack)-1].node
			if low[node] < low[parent] {
				low[parent] = low[node]
			}
			if low[node] > disc[parent] {
				tiePairs = append(tiePairs, [2]int{parent, node})
			}
			if parent != start && low[node] >= disc[parent] {
				isCut[parent] = true
			}
		}

		// Root is a cut vertex only with 2+ tree children
		if rootChildren >= 2 {
			isCut[start] = true
		}
	}

	var connectors []Connector
	for i, cut := range isCut {
		if !cut {
			continue
		}
		id := ids[i]
		connectors = append(connectors, Connector{
			ID:       id,
			Username: s.Members[id].Username,
			Ties:     len(adj[i]),
		})
	}
	sort.Slice(connectors, func(i, j int) bool {
		if connectors[i].Ties != connectors[j].Ties {
			return connectors[i].Ties > connectors[j].Ties
		}
		return connectors[i].ID < connectors[j].ID
	})

	var ties []ThinTie
	for _, pair := range tiePairs {
		a, b := ids[pair[0]], ids[pair[1]]
		if b < a {
			a, b = b, a
		}
		ties = append(ties, ThinTie{
			A: a, B: b,
			AUsername: s.Members[a].Username,
			BUsername: s.Members[b].Username,
		})
	}
	sort.Slice(ties, func(i, j int) bool {
		if ties[i].A != ties[j].A {
			return ties[i].A < ties[j].A
		}
		return ties[i].B < ties[j].B
	})

	return &ConnectorReport{
		Connectors:     connectors,
		ThinTies:       ties,
		ConnectorCount: len(connectors),
		ThinTieCount:   len(ties),
	}
}
