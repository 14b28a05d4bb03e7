// Package store persists session documents and the question bank in libSQL
// tables holding JSONB data columns.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/playperu/quizboard/internal/quizboard"
)

// Sessions stores one JSONB document per session, keyed by room code.
// Status, phase and version are mirrored into columns so writes can be
// version-gated and sweeps can filter without decoding.
type Sessions struct {
	db  *sql.DB
	now func() time.Time
}

func NewSessions(db *sql.DB) *Sessions {
	return &Sessions{db: db, now: time.Now}
}

// Session loads the document for code.
func (s *Sessions) Session(ctx context.Context, code string) (quizboard.Session, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT json(data) FROM sessions WHERE code = ?`, code,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return quizboard.Session{}, fmt.Errorf("session %s: %w", code, quizboard.ErrNotFound)
	}
	if err != nil {
		return quizboard.Session{}, fmt.Errorf("loading session %s: %w", code, err)
	}
	var sess quizboard.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return quizboard.Session{}, fmt.Errorf("decoding session %s: %w", code, err)
	}
	return sess, nil
}

// CreateSession inserts sess at version 1. An existing code yields
// ErrConflict.
func (s *Sessions) CreateSession(ctx context.Context, sess quizboard.Session) (quizboard.Session, error) {
	sess.Version = 1
	sess.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return quizboard.Session{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (code, status, phase, version, data, updated_at)
		 VALUES (?, ?, ?, ?, jsonb(?), ?)`,
		sess.Code, sess.Status, sess.Phase, sess.Version, string(data), sess.UpdatedAt.Format(time.RFC3339Nano),
	)
	if isUniqueViolation(err) {
		return quizboard.Session{}, fmt.Errorf("session %s exists: %w", sess.Code, quizboard.ErrConflict)
	}
	if err != nil {
		return quizboard.Session{}, fmt.Errorf("inserting session %s: %w", sess.Code, err)
	}
	return sess, nil
}

// ReplaceSession writes sess only if the stored version still equals
// sess.Version, and returns the document at its new version. A lost race
// yields ErrConflict and leaves the stored document untouched.
func (s *Sessions) ReplaceSession(ctx context.Context, sess quizboard.Session) (quizboard.Session, error) {
	expected := sess.Version
	sess.Version = expected + 1
	sess.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return quizboard.Session{}, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions
		 SET status = ?, phase = ?, version = ?, data = jsonb(?), updated_at = ?
		 WHERE code = ? AND version = ?`,
		sess.Status, sess.Phase, sess.Version, string(data), sess.UpdatedAt.Format(time.RFC3339Nano),
		sess.Code, expected,
	)
	if err != nil {
		return quizboard.Session{}, fmt.Errorf("updating session %s: %w", sess.Code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return quizboard.Session{}, err
	}
	if n == 0 {
		if _, err := s.version(ctx, sess.Code); err != nil {
			return quizboard.Session{}, err
		}
		return quizboard.Session{}, fmt.Errorf("session %s at version %d: %w", sess.Code, expected, quizboard.ErrConflict)
	}
	return sess, nil
}

func (s *Sessions) version(ctx context.Context, code string) (int64, error) {
	var v int64
	err := s.db.QueryRowContext(ctx, `SELECT version FROM sessions WHERE code = ?`, code).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("session %s: %w", code, quizboard.ErrNotFound)
	}
	return v, err
}

// CodesInPhase lists in-progress sessions currently in phase.
func (s *Sessions) CodesInPhase(ctx context.Context, phase quizboard.Phase) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code FROM sessions WHERE status = ? AND phase = ? ORDER BY code`,
		quizboard.StatusInProgress, phase,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// Ping reports whether the database is reachable.
func (s *Sessions) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
