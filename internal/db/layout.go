package db

import (
	"database/sql"
	"fmt"
)

// SaveLayout replaces the stored layout in a single transaction: all member
// positions, plus the session counter and installed seed. A crash mid-save
// leaves the previous layout intact.
func (d *DB) SaveLayout(state LayoutState, positions []Position) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("starting layout save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM layout_positions`); err != nil {
		return fmt.Errorf("clearing layout positions: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO layout_positions (member_id, x, y, z, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing position insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.Exec(p.MemberID, p.X, p.Y, p.Z, p.UpdatedAt); err != nil {
			return fmt.Errorf("saving position for %s: %w", p.MemberID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO layout_state (id, session, best_seed) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session = excluded.session,
			best_seed = excluded.best_seed
	`, state.Session, state.BestSeed)
	if err != nil {
		return fmt.Errorf("saving layout state: %w", err)
	}

	return tx.Commit()
}

// LoadLayout returns all stored member positions ordered by member ID.
func (d *DB) LoadLayout() ([]Position, error) {
	rows, err := d.conn.Query(`
		SELECT member_id, x, y, z, updated_at
		FROM layout_positions ORDER BY member_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []Position
	for rows.Next() {
		var p Position
		if err := rows.Scan(&p.MemberID, &p.X, &p.Y, &p.Z, &p.UpdatedAt); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// GetLayoutState returns the stored session counter and seed, or nil if no
// refinement has ever run.
func (d *DB) GetLayoutState() (*LayoutState, error) {
	var s LayoutState
	err := d.conn.QueryRow(`SELECT session, best_seed FROM layout_state WHERE id = 1`).
		Scan(&s.Session, &s.BestSeed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AppendFitness records one refinement cycle. Re-recording a session
// overwrites the earlier row.
func (d *DB) AppendFitness(rec FitnessRecord) error {
	_, err := d.conn.Exec(`
		INSERT INTO fitness_history (session, seed, fitness, cohesion, stability, temperature, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session) DO UPDATE SET
			seed = excluded.seed,
			fitness = excluded.fitness,
			cohesion = excluded.cohesion,
			stability = excluded.stability,
			temperature = excluded.temperature,
			recorded_at = excluded.recorded_at
	`, rec.Session, rec.Seed, rec.Fitness, rec.Cohesion, rec.Stability, rec.Temperature, rec.RecordedAt)
	if err != nil {
		return fmt.Errorf("recording fitness for session %d: %w", rec.Session, err)
	}
	return nil
}

// FitnessHistory returns fitness records in session order. A positive limit
// restricts the result to the most recent sessions.
func (d *DB) FitnessHistory(limit int) ([]FitnessRecord, error) {
	query := `
		SELECT session, seed, fitness, cohesion, stability, temperature, recorded_at
		FROM fitness_history ORDER BY session
	`
	args := []any{}
	if limit > 0 {
		query = `
			SELECT session, seed, fitness, cohesion, stability, temperature, recorded_at
			FROM (
				SELECT session, seed, fitness, cohesion, stability, temperature, recorded_at
				FROM fitness_history ORDER BY session DESC LIMIT ?
			) ORDER BY session
		`
		args = append(args, limit)
	}

	rows, err := d.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FitnessRecord
	for rows.Next() {
		var r FitnessRecord
		err := rows.Scan(&r.Session, &r.Seed, &r.Fitness, &r.Cohesion,
			&r.Stability, &r.Temperature, &r.RecordedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Stats returns row counts for every table.
func (d *DB) Stats() (map[string]int, error) {
	stats := make(map[string]int)
	tables := []string{"members", "posts", "comments", "risk_scores", "layout_positions", "fitness_history"}
	for _, table := range tables {
		var count int
		if err := d.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			return nil, err
		}
		stats[table] = count
	}
	return stats, nil
}
