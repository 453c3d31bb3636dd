package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/theoremus-urban-solutions/siri-journey-planner/planner"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("storage: not found")

// recentSearchLimit caps how many searches are kept per user.
const recentSearchLimit = 10

// RecentSearch is one stored route query.
type RecentSearch struct {
	Origin      planner.Point `json:"origin"`
	Destination planner.Point `json:"destination"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Store wraps the SQLite database. SQLite allows a single writer, so all
// writes go through one connection serialized by writeMu.
type Store struct {
	conn    *sql.DB
	writeMu sync.Mutex
	now     func() time.Time
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	dsn := path + "?_journal=WAL&_fk=1&_busy_timeout=5000"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &Store{conn: conn, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// SetUserStop pins stopID as the user's home stop, replacing any previous
// value.
func (s *Store) SetUserStop(ctx context.Context, userID, stopID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO user_stops (user_id, stop_id, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET stop_id = excluded.stop_id, updated_at = excluded.updated_at`,
		userID, stopID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("set user stop: %w", err)
	}
	return nil
}

// UserStop returns the user's pinned stop, or ErrNotFound.
func (s *Store) UserStop(ctx context.Context, userID string) (string, error) {
	var stopID string
	err := s.conn.QueryRowContext(ctx,
		`SELECT stop_id FROM user_stops WHERE user_id = ?`, userID).Scan(&stopID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get user stop: %w", err)
	}
	return stopID, nil
}

// AddFavorite marks a stop as a favorite. Adding an existing favorite is a
// no-op.
func (s *Store) AddFavorite(ctx context.Context, userID, stopID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO favorites (user_id, stop_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, stop_id) DO NOTHING`,
		userID, stopID, s.now().Unix())
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite if present.
func (s *Store) RemoveFavorite(ctx context.Context, userID, stopID string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND stop_id = ?`, userID, stopID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Favorites lists the user's favorite stop ids, oldest first.
func (s *Store) Favorites(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT stop_id FROM favorites WHERE user_id = ? ORDER BY created_at, stop_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var stopID string
		if err := rows.Scan(&stopID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		out = append(out, stopID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return out, nil
}

// AddRecentSearch records a route query and prunes the user's history past
// the retention limit.
func (s *Store) AddRecentSearch(ctx context.Context, userID string, origin, destination planner.Point) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("add recent search: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO recent_searches
			(user_id, origin_lat, origin_lng, origin_name, dest_lat, dest_lng, dest_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, origin.Lat, origin.Lng, origin.Name,
		destination.Lat, destination.Lng, destination.Name, s.now().Unix())
	if err != nil {
		return fmt.Errorf("add recent search: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM recent_searches
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM recent_searches
			WHERE user_id = ? ORDER BY id DESC LIMIT ?
		)`, userID, userID, recentSearchLimit)
	if err != nil {
		return fmt.Errorf("prune recent searches: %w", err)
	}
	return tx.Commit()
}

// RecentSearches lists the user's stored queries, newest first.
func (s *Store) RecentSearches(ctx context.Context, userID string) ([]RecentSearch, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT origin_lat, origin_lng, origin_name, dest_lat, dest_lng, dest_name, created_at
		FROM recent_searches WHERE user_id = ? ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	defer rows.Close()

	var out []RecentSearch
	for rows.Next() {
		var rs RecentSearch
		var created int64
		if err := rows.Scan(
			&rs.Origin.Lat, &rs.Origin.Lng, &rs.Origin.Name,
			&rs.Destination.Lat, &rs.Destination.Lng, &rs.Destination.Name,
			&created); err != nil {
			return nil, fmt.Errorf("scan recent search: %w", err)
		}
		rs.CreatedAt = time.Unix(created, 0)
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recent searches: %w", err)
	}
	return out, nil
}
