package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/osutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS activity (
    id         TEXT PRIMARY KEY,
    ts         INTEGER NOT NULL,
    domain     TEXT NOT NULL,
    url        TEXT NOT NULL DEFAULT '',
    category   TEXT NOT NULL,
    time_spent INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS activity_ts ON activity (ts);

CREATE TABLE IF NOT EXISTS summaries (
    id      TEXT PRIMARY KEY,
    ts      INTEGER NOT NULL,
    url     TEXT NOT NULL,
    title   TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS summaries_ts ON summaries (ts);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// pragmas are applied by the driver to every pooled connection.
const pragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

const (
	metaGoal       = "goal"
	metaLastExport = "last_export"
)

// SQLite stores diary data in a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the SQLite database at dbPath.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), osutil.DirPermission); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+pragmas)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// bounds converts an optional time range into nanosecond bounds.
func bounds(start, end time.Time) (lo, hi int64) {
	lo, hi = 0, 1<<63-1

	if !start.IsZero() {
		lo = start.UnixNano()
	}

	if !end.IsZero() {
		hi = end.UnixNano()
	}

	return lo, hi
}

func (s *SQLite) AppendActivity(rec *models.ActivityRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	_, err := s.db.Exec(
		`INSERT INTO activity (id, ts, domain, url, category, time_spent)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.Timestamp.UnixNano(),
		rec.Domain,
		rec.URL,
		string(rec.Category),
		rec.TimeSpent,
	)

	return err
}

func (s *SQLite) GetActivity(
	start, end time.Time,
) ([]models.ActivityRecord, error) {
	lo, hi := bounds(start, end)

	rows, err := s.db.Query(
		`SELECT id, ts, domain, url, category, time_spent FROM activity
		WHERE ts >= ? AND ts <= ? ORDER BY ts, id`,
		lo,
		hi,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.ActivityRecord

	for rows.Next() {
		var (
			rec models.ActivityRecord
			ts  int64
		)

		err := rows.Scan(
			&rec.ID,
			&ts,
			&rec.Domain,
			&rec.URL,
			&rec.Category,
			&rec.TimeSpent,
		)
		if err != nil {
			return nil, err
		}

		rec.Timestamp = time.Unix(0, ts)
		records = append(records, rec)
	}

	return records, rows.Err()
}

func (s *SQLite) deleteBefore(table string, cutoff time.Time) (int, error) {
	//nolint:gosec // table name is not user input
	res, err := s.db.Exec(
		"DELETE FROM "+table+" WHERE ts < ?",
		cutoff.UnixNano(),
	)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()

	return int(n), err
}

func (s *SQLite) DeleteActivityBefore(cutoff time.Time) (int, error) {
	return s.deleteBefore(activityBucket, cutoff)
}

func (s *SQLite) AppendSummary(sum *models.Summary) error {
	_, err := s.db.Exec(
		`INSERT INTO summaries (id, ts, url, title, summary) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(),
		sum.Timestamp.UnixNano(),
		sum.URL,
		sum.Title,
		sum.Summary,
	)

	return err
}

func (s *SQLite) GetSummaries(start, end time.Time) ([]models.Summary, error) {
	lo, hi := bounds(start, end)

	rows, err := s.db.Query(
		`SELECT ts, url, title, summary FROM summaries
		WHERE ts >= ? AND ts <= ? ORDER BY ts`,
		lo,
		hi,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.Summary

	for rows.Next() {
		var (
			sum models.Summary
			ts  int64
		)

		if err := rows.Scan(&ts, &sum.URL, &sum.Title, &sum.Summary); err != nil {
			return nil, err
		}

		sum.Timestamp = time.Unix(0, ts)
		summaries = append(summaries, sum)
	}

	return summaries, rows.Err()
}

func (s *SQLite) DeleteSummariesBefore(cutoff time.Time) (int, error) {
	return s.deleteBefore(summaryBucket, cutoff)
}

func (s *SQLite) getMeta(key string) (string, error) {
	var v string

	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}

	return v, err
}

func (s *SQLite) setMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key,
		value,
	)

	return err
}

func (s *SQLite) GetGoal() (*models.Goal, error) {
	v, err := s.getMeta(metaGoal)
	if err != nil || v == "" {
		return nil, err
	}

	var g models.Goal

	if err := json.Unmarshal([]byte(v), &g); err != nil {
		return nil, errCorruptRecord.Fmt(metaGoal).Wrap(err)
	}

	return &g, nil
}

func (s *SQLite) SaveGoal(g *models.Goal) error {
	if g == nil {
		_, err := s.db.Exec("DELETE FROM meta WHERE key = ?", metaGoal)
		return err
	}

	b, err := json.Marshal(g)
	if err != nil {
		return err
	}

	return s.setMeta(metaGoal, string(b))
}

func (s *SQLite) LastExport() (time.Time, error) {
	var t time.Time

	v, err := s.getMeta(metaLastExport)
	if err != nil || v == "" {
		return t, err
	}

	err = t.UnmarshalText([]byte(v))

	return t, err
}

func (s *SQLite) SetLastExport(t time.Time) error {
	b, err := t.MarshalText()
	if err != nil {
		return err
	}

	return s.setMeta(metaLastExport, string(b))
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
