package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite stores high scores in a SQLite database file.
type SQLite struct {
	conn *sql.DB
}

var _ HighScoreStore = (*SQLite)(nil)

// OpenSQLite opens (or creates) the database at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// WAL lets the web leaderboard read while sessions write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLite{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// migrate creates tables if they don't exist. The score column has no
// declared type, so hand-edited rows are read back exactly as stored.
func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS high_scores (
		player TEXT PRIMARY KEY,
		score,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// GetHighScore returns the stored score, 0 if absent. Malformed values
// return 0 and ErrMalformed.
func (s *SQLite) GetHighScore(ctx context.Context, player string) (int, error) {
	var raw any
	err := s.conn.QueryRowContext(ctx, "SELECT score FROM high_scores WHERE player = ?", player).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get high score for %q: %w", player, err)
	}
	score, ok := parseScore(raw)
	if !ok {
		return 0, fmt.Errorf("player %q: %w", player, ErrMalformed)
	}
	return score, nil
}

// SetHighScore raises the stored score to score. A stored value that is not
// an integer is overwritten.
func (s *SQLite) SetHighScore(ctx context.Context, player string, score int) error {
	if score < 0 {
		return fmt.Errorf("set high score for %q: negative score %d", player, score)
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO high_scores (player, score, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(player) DO UPDATE SET
			score = CASE
				WHEN typeof(high_scores.score) != 'integer' OR high_scores.score < excluded.score
				THEN excluded.score ELSE high_scores.score END,
			updated_at = CURRENT_TIMESTAMP`,
		player, score,
	)
	if err != nil {
		return fmt.Errorf("set high score for %q: %w", player, err)
	}
	return nil
}

// TopScores returns the best limit well-formed entries, highest first.
func (s *SQLite) TopScores(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT player, score FROM high_scores
		WHERE typeof(score) = 'integer' AND score >= 0
		ORDER BY score DESC, player ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Player, &e.Score); err != nil {
			return nil, fmt.Errorf("scan top score: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("top scores: %w", err)
	}
	return entries, nil
}

// parseScore accepts non-negative integers stored as INTEGER or as
// decimal text.
func parseScore(raw any) (int, bool) {
	switch v := raw.(type) {
	case int64:
		return int(v), v >= 0
	case string:
		return parseScoreText(v)
	case []byte:
		return parseScoreText(string(v))
	default:
		return 0, false
	}
}

func parseScoreText(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
