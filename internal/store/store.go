// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/verte-zerg/challenger/internal/model"
	"github.com/verte-zerg/challenger/internal/session"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	keyNickname = "userNickname"
	keyUserID   = "userID"
)

// Store wraps SQLite access for identity and cached lists.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS identity (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_cache (
			user_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			duration INTEGER NOT NULL,
			progress REAL NOT NULL,
			PRIMARY KEY (user_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS last_challenge_cache (
			user_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			retrospection TEXT NOT NULL,
			assessment TEXT NOT NULL,
			PRIMARY KEY (user_id, position)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadSession reads the persisted identity. A missing identity yields an empty session.
func (s *Store) LoadSession(ctx context.Context) (session.Session, error) {
	var sess session.Session
	nickname, err := s.identityValue(ctx, keyNickname)
	if err != nil {
		return sess, err
	}
	rawID, err := s.identityValue(ctx, keyUserID)
	if err != nil {
		return sess, err
	}
	sess.Nickname = nickname
	if rawID != "" {
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return session.Session{}, err
		}
		sess.UserID = id
	}
	return sess, nil
}

// SaveSession persists the identity.
func (s *Store) SaveSession(ctx context.Context, sess session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	const upsert = `INSERT INTO identity (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err = tx.ExecContext(ctx, upsert, keyNickname, sess.Nickname); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, upsert, keyUserID, strconv.FormatInt(sess.UserID, 10)); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

// ClearSession removes the persisted identity.
func (s *Store) ClearSession(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM identity WHERE key IN (?, ?)`, keyNickname, keyUserID)
	return err
}

func (s *Store) identityValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM identity WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SaveChallenges replaces the cached active challenges for a user.
func (s *Store) SaveChallenges(ctx context.Context, userID int64, challenges []model.Challenge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM challenge_cache WHERE user_id = ?`, userID); err != nil {
		return err
	}
	if len(challenges) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO challenge_cache (user_id, position, id, title, description, duration, progress)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, c := range challenges {
			if _, err = stmt.ExecContext(ctx, userID, i, c.ID, c.Title, c.Description, c.Duration, c.Progress); err != nil {
				return err
			}
		}
	}
	err = tx.Commit()
	return err
}

// LoadChallenges returns the cached active challenges for a user in their original order.
func (s *Store) LoadChallenges(ctx context.Context, userID int64) ([]model.Challenge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, duration, progress
		FROM challenge_cache
		WHERE user_id = ?
		ORDER BY position ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Challenge
	for rows.Next() {
		var c model.Challenge
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.Duration, &c.Progress); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SaveLastChallenges replaces the cached completed challenges for a user.
func (s *Store) SaveLastChallenges(ctx context.Context, userID int64, records []model.LastChallenge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM last_challenge_cache WHERE user_id = ?`, userID); err != nil {
		return err
	}
	for i, l := range records {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO last_challenge_cache (user_id, position, id, title, description, start_date, end_date, retrospection, assessment)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, i, l.ID, l.Title, l.Description,
			l.StartDate.Format(time.RFC3339Nano),
			l.EndDate.Format(time.RFC3339Nano),
			l.Retrospection, l.Assessment,
		); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// LoadLastChallenges returns the cached completed challenges for a user.
func (s *Store) LoadLastChallenges(ctx context.Context, userID int64) ([]model.LastChallenge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, start_date, end_date, retrospection, assessment
		FROM last_challenge_cache
		WHERE user_id = ?
		ORDER BY position ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.LastChallenge
	for rows.Next() {
		var l model.LastChallenge
		var start, end string
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &start, &end, &l.Retrospection, &l.Assessment); err != nil {
			return nil, err
		}
		if l.StartDate, err = time.Parse(time.RFC3339Nano, start); err != nil {
			return nil, err
		}
		if l.EndDate, err = time.Parse(time.RFC3339Nano, end); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveLastChallenge drops one completed challenge from the cache.
func (s *Store) RemoveLastChallenge(ctx context.Context, userID, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM last_challenge_cache WHERE user_id = ? AND id = ?`, userID, id)
	return err
}
