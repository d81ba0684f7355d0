package db

// AllPosts returns all posts ordered by ID
func (d *DB) AllPosts() ([]Post, error) {
	rows, err := d.conn.Query(`
		SELECT id, author_id, comment_count FROM posts ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.CommentCount); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// AllComments returns all comments ordered by creation time
func (d *DB) AllComments() ([]Comment, error) {
	rows, err := d.conn.Query(`
		SELECT id, from_id, to_id, created_at, body FROM comments ORDER BY created_at, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.FromID, &c.ToID, &c.CreatedAt, &c.Body); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AllRiskScores returns every stored risk score keyed by member ID.
func (d *DB) AllRiskScores() (map[string]RiskScore, error) {
	rows, err := d.conn.Query(`
		SELECT member_id, risk, level FROM risk_scores
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[string]RiskScore)
	for rows.Next() {
		var r RiskScore
		if err := rows.Scan(&r.MemberID, &r.Risk, &r.Level); err != nil {
			return nil, err
		}
		scores[r.MemberID] = r
	}
	return scores, rows.Err()
}

// CommentsBetween returns the number of comments exchanged between two members
// in either direction.
func (d *DB) CommentsBetween(a, b string) (int, error) {
	var count int
	err := d.conn.QueryRow(`
		SELECT COUNT(*) FROM comments
		WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
	`, a, b, b, a).Scan(&count)
	return count, err
}
