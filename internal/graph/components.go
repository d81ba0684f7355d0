package graph

import (
	"sort"

	"constella/orrery/internal/geom"
)

// Neighborhood is one connected component of the undirected
// interaction graph. Hash and Center are filled in by the layout
// codec; membership alone is determined here. Neighborhoods partition
// the member set: every member lands in exactly one, including
// members with no interactions at all.
type Neighborhood struct {
	Members []string  `json:"members"`
	Hash    uint32    `json:"hash"`
	Center  geom.Vec3 `json:"center"`
}

func (n *Neighborhood) Size() int {
	return len(n.Members)
}

// Neighborhoods computes connected components with an iterative
// depth-first walk (explicit stack, so a long chain of members cannot
// overflow the call stack). Components are ordered by their smallest
// member id and membership is sorted, so the result is deterministic
// for a given snapshot.
func (s *Snapshot) Neighborhoods() []*Neighborhood {
	visited := make(map[string]bool, len(s.Members))
	var result []*Neighborhood

	for _, start := range s.MemberIDs() {
		if visited[start] {
			continue
		}
		var members []string
		stack := []string{start}
		visited[start] = true
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			members = append(members, id)
			for _, n := range s.Stats[id].Neighbors {
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
		sort.Strings(members)
		result = append(result, &Neighborhood{Members: members})
	}
	return result
}
