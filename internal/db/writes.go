package db

import "fmt"

// InsertMember inserts or updates a member row.
func (d *DB) InsertMember(m Member) error {
	_, err := d.conn.Exec(`
		INSERT INTO members (id, username, joined_at, sober_since, server_comments)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			joined_at = excluded.joined_at,
			sober_since = excluded.sober_since,
			server_comments = excluded.server_comments
	`, m.ID, m.Username, m.JoinedAt, m.SoberSince, m.ServerComments)
	if err != nil {
		return fmt.Errorf("inserting member %s: %w", m.ID, err)
	}
	return nil
}

// InsertPost inserts or updates a post row.
func (d *DB) InsertPost(p Post) error {
	_, err := d.conn.Exec(`
		INSERT INTO posts (id, author_id, comment_count)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author_id = excluded.author_id,
			comment_count = excluded.comment_count
	`, p.ID, p.AuthorID, p.CommentCount)
	if err != nil {
		return fmt.Errorf("inserting post %s: %w", p.ID, err)
	}
	return nil
}

// InsertComment inserts a comment row.
func (d *DB) InsertComment(c Comment) error {
	_, err := d.conn.Exec(`
		INSERT INTO comments (id, from_id, to_id, created_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, c.ID, c.FromID, c.ToID, c.CreatedAt, c.Body)
	if err != nil {
		return fmt.Errorf("inserting comment %s: %w", c.ID, err)
	}
	return nil
}

// SetRiskScore inserts or updates the risk score for a member.
func (d *DB) SetRiskScore(r RiskScore) error {
	_, err := d.conn.Exec(`
		INSERT INTO risk_scores (member_id, risk, level)
		VALUES (?, ?, ?)
		ON CONFLICT(member_id) DO UPDATE SET
			risk = excluded.risk,
			level = excluded.level
	`, r.MemberID, r.Risk, r.Level)
	if err != nil {
		return fmt.Errorf("setting risk score for %s: %w", r.MemberID, err)
	}
	return nil
}

// DeleteMember removes a member. Posts, comments, risk scores, and layout
// positions referencing it are cascade-deleted by SQLite.
func (d *DB) DeleteMember(id string) error {
	res, err := d.conn.Exec(`DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting member %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("deleting member %s: not found", id)
	}
	return nil
}
