package db

// scanMember scans a row into a Member. The row must have all 5 columns in standard order.
func scanMember(scanner interface{ Scan(dest ...any) error }) (Member, error) {
	var m Member
	err := scanner.Scan(&m.ID, &m.Username, &m.JoinedAt, &m.SoberSince, &m.ServerComments)
	return m, err
}

// AllMembers returns all members ordered by ID
func (d *DB) AllMembers() ([]Member, error) {
	rows, err := d.conn.Query(`
		SELECT id, username, joined_at, sober_since, server_comments
		FROM members ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// GetMember returns a single member by ID
func (d *DB) GetMember(id string) (*Member, error) {
	row := d.conn.QueryRow(`
		SELECT id, username, joined_at, sober_since, server_comments
		FROM members WHERE id = ?
	`, id)

	m, err := scanMember(row)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// MembersByIDPrefix finds members whose ID starts with the given prefix.
func (d *DB) MembersByIDPrefix(prefix string, limit int) ([]Member, error) {
	rows, err := d.conn.Query(`
		SELECT id, username, joined_at, sober_since, server_comments
		FROM members WHERE id LIKE ? ORDER BY id LIMIT ?
	`, prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// MembersByUsername finds members whose username matches exactly, case-insensitive.
func (d *DB) MembersByUsername(username string, limit int) ([]Member, error) {
	rows, err := d.conn.Query(`
		SELECT id, username, joined_at, sober_since, server_comments
		FROM members WHERE username = ? COLLATE NOCASE ORDER BY id LIMIT ?
	`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
