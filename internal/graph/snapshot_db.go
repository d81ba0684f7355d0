package graph

import (
	"constella/orrery/internal/db"
	"constella/orrery/internal/geom"
)

// SnapshotFromDB loads members, posts, comments, and risk scores from the
// database and indexes them into a Snapshot. Stored layout positions are
// attached to members so callers can render before the next refinement.
// Risk scores already present in opts take precedence over stored ones.
func SnapshotFromDB(d *db.DB, opts SnapshotOptions) (*Snapshot, error) {
	dbMembers, err := d.AllMembers()
	if err != nil {
		return nil, err
	}
	dbPosts, err := d.AllPosts()
	if err != nil {
		return nil, err
	}
	dbComments, err := d.AllComments()
	if err != nil {
		return nil, err
	}

	if opts.Risk == nil {
		dbScores, err := d.AllRiskScores()
		if err != nil {
			return nil, err
		}
		if len(dbScores) > 0 {
			risk := make(map[string]RiskScore, len(dbScores))
			for id, s := range dbScores {
				risk[id] = RiskScore{Risk: s.Risk, Level: ParseRiskLevel(s.Level)}
			}
			opts.Risk = risk
		}
	}

	stored, err := StoredLayout(d)
	if err != nil {
		return nil, err
	}

	members := make([]*Member, 0, len(dbMembers))
	for _, m := range dbMembers {
		var joinedAt, soberSince *int64
		if m.JoinedAt != nil {
			v := *m.JoinedAt
			joinedAt = &v
		}
		if m.SoberSince != nil {
			v := *m.SoberSince
			soberSince = &v
		}
		member := &Member{
			ID:             m.ID,
			Username:       m.Username,
			JoinedAt:       joinedAt,
			SoberSince:     soberSince,
			ServerComments: m.ServerComments,
		}
		if pos, ok := stored[m.ID]; ok {
			member.Position = pos
			member.Visual = Visual{Pos: pos, Opacity: 1, Scale: 1}
		}
		members = append(members, member)
	}

	posts := make([]Post, 0, len(dbPosts))
	for _, p := range dbPosts {
		posts = append(posts, Post{ID: p.ID, AuthorID: p.AuthorID, CommentCount: p.CommentCount})
	}

	comments := make([]Comment, 0, len(dbComments))
	for _, c := range dbComments {
		comments = append(comments, Comment{
			ID: c.ID, FromID: c.FromID, ToID: c.ToID,
			CreatedAt: c.CreatedAt, Body: c.Body,
		})
	}

	return BuildSnapshot(members, posts, comments, opts), nil
}

// StoredLayout returns the persisted member positions keyed by member ID.
// Empty map when no layout has been saved yet.
func StoredLayout(d *db.DB) (map[string]geom.Vec3, error) {
	rows, err := d.LoadLayout()
	if err != nil {
		return nil, err
	}
	positions := make(map[string]geom.Vec3, len(rows))
	for _, p := range rows {
		positions[p.MemberID] = geom.Vec3{X: p.X, Y: p.Y, Z: p.Z}
	}
	return positions, nil
}
