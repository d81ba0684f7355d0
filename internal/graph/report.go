package graph

import "sort"

// EngagedMember is a member with high engagement
type EngagedMember struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Mass     float64 `json:"mass"`
	Degree   int     `json:"degree"`
	Direct   int     `json:"direct"`
}

// DegreeBucket is one bucket in the degree histogram
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CommunityReport summarizes the indexed graph: neighborhood sizes,
// isolated members, degree distribution, most engaged members.
type CommunityReport struct {
	TotalMembers          int             `json:"total_members"`
	TotalPosts            int             `json:"total_posts"`
	TotalPairs            int             `json:"total_pairs"`
	Neighborhoods         int             `json:"neighborhoods"`
	LargestNeighborhood   int             `json:"largest_neighborhood"`
	SmallestNeighborhood  int             `json:"smallest_neighborhood"`
	IsolatedCount         int             `json:"isolated_count"`
	IsolatedIDs           []string        `json:"isolated_ids"`
	DegreeHistogram       []DegreeBucket  `json:"degree_histogram"`
	NeighborhoodHistogram []DegreeBucket  `json:"neighborhood_histogram"`
	TopEngaged            []EngagedMember `json:"top_engaged"`
}

// BuildReport analyzes the snapshot: neighborhoods, isolated members, degree distribution, engagement
func BuildReport(snap *Snapshot, topN int) *CommunityReport {
	total := snap.Len()
	if total == 0 {
		return &CommunityReport{
			DegreeHistogram:       defaultHistogram(),
			NeighborhoodHistogram: sizeHistogram(),
		}
	}

	memberIDs := snap.MemberIDs()

	neighborhoods := snap.Neighborhoods()
	largest, smallest := 0, total
	nhHistogram := sizeHistogram()
	for _, nh := range neighborhoods {
		if nh.Size() > largest {
			largest = nh.Size()
		}
		if nh.Size() < smallest {
			smallest = nh.Size()
		}
		nhHistogram[sizeBucket(nh.Size())].Count++
	}

	// Isolated: no interaction partners at all
	var isolated []string
	for _, id := range memberIDs {
		if len(snap.Stats[id].Neighbors) == 0 {
			isolated = append(isolated, id)
		}
	}
	isolatedCount := len(isolated)
	if len(isolated) > topN {
		isolated = isolated[:topN]
	}

	// Degree histogram (log-scale buckets)
	buckets := [7]int{}
	posts := 0
	for _, id := range memberIDs {
		buckets[degreeBucket(len(snap.Stats[id].Neighbors))]++
		posts += snap.Stats[id].Posts
	}
	histogram := defaultHistogram()
	for i := range histogram {
		histogram[i].Count = buckets[i]
	}

	// Most engaged members by mass
	engaged := make([]EngagedMember, 0, total)
	for _, id := range memberIDs {
		m := snap.Members[id]
		st := snap.Stats[id]
		engaged = append(engaged, EngagedMember{
			ID:       id,
			Username: m.Username,
			Mass:     m.Mass,
			Degree:   len(st.Neighbors),
			Direct:   st.Direct,
		})
	}
	sort.Slice(engaged, func(i, j int) bool {
		if engaged[i].Mass != engaged[j].Mass {
			return engaged[i].Mass > engaged[j].Mass
		}
		return engaged[i].ID < engaged[j].ID
	})
	if len(engaged) > topN {
		engaged = engaged[:topN]
	}

	return &CommunityReport{
		TotalMembers:          total,
		TotalPosts:            posts,
		TotalPairs:            len(snap.Pairs),
		Neighborhoods:         len(neighborhoods),
		LargestNeighborhood:   largest,
		SmallestNeighborhood:  smallest,
		IsolatedCount:         isolatedCount,
		IsolatedIDs:           isolated,
		DegreeHistogram:       histogram,
		NeighborhoodHistogram: nhHistogram,
		TopEngaged:            engaged,
	}
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func sizeHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "1"}, {Label: "2-3"}, {Label: "4-7"},
		{Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func sizeBucket(size int) int {
	switch {
	case size <= 1:
		return 0
	case size <= 3:
		return 1
	case size <= 7:
		return 2
	case size <= 15:
		return 3
	case size <= 31:
		return 4
	default:
		return 5
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
