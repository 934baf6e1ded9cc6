package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// GameResult is the archived outcome of a finished session.
type GameResult struct {
	SessionID  string         `json:"sessionId"`
	Kind       string         `json:"kind"`
	Winners    []string       `json:"winners"`
	Scores     map[string]int `json:"scores"`
	Rounds     int            `json:"rounds"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// ResultStore archives finished games. Only final results are kept, never
// mid-game state.
type ResultStore struct {
	db      *sql.DB
	dialect string
}

func NewResultStore(db *sql.DB, dialect string) *ResultStore {
	return &ResultStore{db: db, dialect: dialect}
}

// OpenSQLite opens a local database file, or ":memory:".
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// 单连接，避免 database is locked
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS game_results (
    session_id  TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    winners     TEXT NOT NULL,
    scores      TEXT NOT NULL,
    rounds      INTEGER NOT NULL,
    finished_at BIGINT NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("create game_results: %w", err)
	}
	return nil
}

// Save stores r. Saving the same session twice keeps the first record.
func (s *ResultStore) Save(ctx context.Context, r GameResult) error {
	winners, err := json.Marshal(r.Winners)
	if err != nil {
		return err
	}
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return err
	}
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
INSERT INTO game_results (session_id, kind, winners, scores, rounds, finished_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (session_id) DO NOTHING`),
		r.SessionID, r.Kind, string(winners), string(scores), r.Rounds, r.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("save result %s: %w", r.SessionID, err)
	}
	return nil
}

// Recent returns the latest results, newest first.
func (s *ResultStore) Recent(ctx context.Context, limit int) ([]GameResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
SELECT session_id, kind, winners, scores, rounds, finished_at
FROM game_results
ORDER BY finished_at DESC, session_id
LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameResult
	for rows.Next() {
		var (
			r               GameResult
			winners, scores string
			finished        int64
		)
		if err := rows.Scan(&r.SessionID, &r.Kind, &winners, &scores, &r.Rounds, &finished); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(winners), &r.Winners); err != nil {
			return nil, fmt.Errorf("decode winners: %w", err)
		}
		if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
			return nil, fmt.Errorf("decode scores: %w", err)
		}
		r.FinishedAt = time.UnixMilli(finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *ResultStore) rebind(q string) string {
	if s.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
