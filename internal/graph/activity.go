package graph

import "sort"

// QuietMember is a member with no recent comment activity. LastActive
// is zero when the member has never commented at all.
type QuietMember struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	DaysQuiet  int    `json:"days_quiet"`
	LastActive int64  `json:"last_active"`
}

// ActivityReport lists members who have gone quiet. TrackedCount is
// the number of members with enough timestamp data to judge.
type ActivityReport struct {
	QuietMembers []QuietMember `json:"quiet_members"`
	QuietCount   int           `json:"quiet_count"`
	TrackedCount int           `json:"tracked_count"`
}

// ComputeActivity flags members whose newest comment is older than
// quietDays. Members who never commented are judged from their join
// date instead, and members with neither timestamp are left out rather
// than guessed at. Quietest first, ties broken by id.
func ComputeActivity(s *Snapshot, quietDays int) *ActivityReport {
	threshold := int64(quietDays) * 86400

	var quiet []QuietMember
	tracked := 0
	for _, id := range s.MemberIDs() {
		m := s.Members[id]
		last := s.Stats[id].LastActive
		if last == 0 && m.JoinedAt != nil {
			last = *m.JoinedAt
		}
		if last == 0 {
			continue
		}
		tracked++
		silent := s.Now - last
		if silent < threshold {
			continue
		}
		quiet = append(quiet, QuietMember{
			ID:         id,
			Username:   m.Username,
			DaysQuiet:  int(silent / 86400),
			LastActive: s.Stats[id].LastActive,
		})
	}
	sort.Slice(quiet, func(i, j int) bool {
		if quiet[i].DaysQuiet != quiet[j].DaysQuiet {
			return quiet[i].DaysQuiet > quiet[j].DaysQuiet
		}
		return quiet[i].ID < quiet[j].ID
	})

	return &ActivityReport{
		QuietMembers: quiet,
		QuietCount:   len(quiet),
		TrackedCount: tracked,
	}
}
