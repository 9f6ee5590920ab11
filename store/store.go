// Package store persists the activity log, page summaries, and goal state
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/diary/internal/models"
	"github.com/ayoisaiah/diary/internal/osutil"
	"github.com/ayoisaiah/diary/internal/timeutil"
)

const (
	activityBucket = "activity"
	summaryBucket  = "summaries"
	goalBucket     = "goal"
	metaBucket     = "meta"
)

var (
	goalKey       = []byte("current")
	lastExportKey = []byte("last_export")
	schemaKey     = []byte("schema_version")
)

// Client is a BoltDB database client. The database file is opened for the
// duration of each operation so that the long running event host and
// short lived CLI commands can share it.
type Client struct {
	path string
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		pathToDB,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errDiaryRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to the BoltDB database at dbPath, creating it
// and its buckets if necessary.
func NewClient(dbPath string) (*Client, error) {
	err := os.MkdirAll(filepath.Dir(dbPath), osutil.DirPermission)
	if err != nil {
		return nil, err
	}

	c := &Client{path: dbPath}

	// Create the necessary buckets for storing data if they do not exist already
	err = c.update(func(tx *bolt.Tx) error {
		for _, name := range []string{
			activityBucket,
			summaryBucket,
			goalBucket,
			metaBucket,
		} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}

		return migrate(tx)
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Client) update(fn func(tx *bolt.Tx) error) error {
	db, err := openDB(c.path)
	if err != nil {
		return err
	}

	defer db.Close()

	return db.Update(fn)
}

func (c *Client) view(fn func(tx *bolt.Tx) error) error {
	db, err := openDB(c.path)
	if err != nil {
		return err
	}

	defer db.Close()

	return db.View(fn)
}

// recordKey orders entries by time, with id distinguishing entries that share
// a timestamp.
func recordKey(ts time.Time, id string) []byte {
	return append(append(timeutil.ToKey(ts), '/'), id...)
}

// keyTime returns the timestamp portion of a record key.
func keyTime(k []byte) []byte {
	if i := bytes.IndexByte(k, '/'); i >= 0 {
		return k[:i]
	}

	return k
}

func put(tx *bolt.Tx, bucket string, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return tx.Bucket([]byte(bucket)).Put(key, b)
}

// scan calls fn for every entry in bucket whose key time is within
// [start, end].
func scan(
	tx *bolt.Tx,
	bucket string,
	start, end time.Time,
	fn func(k, v []byte) error,
) error {
	cur := tx.Bucket([]byte(bucket)).Cursor()

	var k, v []byte
	if start.IsZero() {
		k, v = cur.First()
	} else {
		k, v = cur.Seek(timeutil.ToKey(start))
	}

	var maxKey []byte
	if !end.IsZero() {
		maxKey = timeutil.ToKey(end)
	}

	for ; k != nil; k, v = cur.Next() {
		if maxKey != nil && bytes.Compare(keyTime(k), maxKey) > 0 {
			break
		}

		if err := fn(k, v); err != nil {
			return err
		}
	}

	return nil
}

// deleteBefore removes every entry in bucket whose key time is before cutoff.
func (c *Client) deleteBefore(bucket string, cutoff time.Time) (int, error) {
	var n int

	err := c.update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		cur := b.Cursor()
		limit := timeutil.ToKey(cutoff)

		var keys [][]byte

		for k, _ := cur.First(); k != nil && bytes.Compare(keyTime(k), limit) < 0; k, _ = cur.Next() {
			keys = append(keys, bytes.Clone(k))
		}

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		n = len(keys)

		return nil
	})

	return n, err
}

func (c *Client) AppendActivity(rec *models.ActivityRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	return c.update(func(tx *bolt.Tx) error {
		return put(tx, activityBucket, recordKey(rec.Timestamp, rec.ID), rec)
	})
}

func (c *Client) GetActivity(
	start, end time.Time,
) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord

	err := c.view(func(tx *bolt.Tx) error {
		return scan(tx, activityBucket, start, end, func(k, v []byte) error {
			var rec models.ActivityRecord

			if err := json.Unmarshal(v, &rec); err != nil {
				return errCorruptRecord.Fmt(k).Wrap(err)
			}

			records = append(records, rec)

			return nil
		})
	})

	return records, err
}

func (c *Client) DeleteActivityBefore(cutoff time.Time) (int, error) {
	return c.deleteBefore(activityBucket, cutoff)
}

func (c *Client) AppendSummary(s *models.Summary) error {
	return c.update(func(tx *bolt.Tx) error {
		return put(tx, summaryBucket, recordKey(s.Timestamp, uuid.NewString()), s)
	})
}

func (c *Client) GetSummaries(start, end time.Time) ([]models.Summary, error) {
	var summaries []models.Summary

	err := c.view(func(tx *bolt.Tx) error {
		return scan(tx, summaryBucket, start, end, func(k, v []byte) error {
			var s models.Summary

			if err := json.Unmarshal(v, &s); err != nil {
				return errCorruptRecord.Fmt(k).Wrap(err)
			}

			summaries = append(summaries, s)

			return nil
		})
	})

	return summaries, err
}

func (c *Client) DeleteSummariesBefore(cutoff time.Time) (int, error) {
	return c.deleteBefore(summaryBucket, cutoff)
}

func (c *Client) GetGoal() (*models.Goal, error) {
	var g *models.Goal

	err := c.view(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(goalBucket)).Get(goalKey)
		if len(b) == 0 {
			return nil
		}

		g = &models.Goal{}

		return json.Unmarshal(b, g)
	})

	return g, err
}

func (c *Client) SaveGoal(g *models.Goal) error {
	return c.update(func(tx *bolt.Tx) error {
		if g == nil {
			return tx.Bucket([]byte(goalBucket)).Delete(goalKey)
		}

		return put(tx, goalBucket, goalKey, g)
	})
}

func (c *Client) LastExport() (time.Time, error) {
	var t time.Time

	err := c.view(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(metaBucket)).Get(lastExportKey)
		if len(b) == 0 {
			return nil
		}

		return t.UnmarshalText(b)
	})

	return t, err
}

func (c *Client) SetLastExport(t time.Time) error {
	b, err := t.MarshalText()
	if err != nil {
		return err
	}

	return c.update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(metaBucket)).Put(lastExportKey, b)
	})
}

// Close is a no-op as the database is only held open during an operation.
func (c *Client) Close() error {
	return nil
}
