package store

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

// migrations are applied in order. The index of a migration plus one is the
// schema version it produces.
var migrations = []func(tx *bbolt.Tx) error{
	rekeyEntries,
}

// rekeyEntries rewrites entries stored under plain RFC3339 keys, which do not
// sort chronologically, into the fixed width form used by recordKey.
func rekeyEntries(tx *bbolt.Tx) error {
	for _, name := range []string{activityBucket, summaryBucket} {
		bucket := tx.Bucket([]byte(name))

		type entry struct {
			Timestamp time.Time `json:"timestamp"`
			ID        string    `json:"id"`
		}

		rekeyed := make(map[string][]byte)

		var stale [][]byte

		cur := bucket.Cursor()

		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var e entry

			err := json.Unmarshal(v, &e)
			if err != nil {
				return err
			}

			id := e.ID
			if id == "" {
				id = uuid.NewString()
			}

			newKey := recordKey(e.Timestamp, id)
			if bytes.Equal(keyTime(newKey), keyTime(k)) {
				continue
			}

			rekeyed[string(newKey)] = bytes.Clone(v)
			stale = append(stale, bytes.Clone(k))
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}

		for k, v := range rekeyed {
			if err := bucket.Put([]byte(k), v); err != nil {
				return err
			}
		}
	}

	return nil
}

// migrate brings the database up to the latest schema version.
func migrate(tx *bbolt.Tx) error {
	meta := tx.Bucket([]byte(metaBucket))

	var version int

	if b := meta.Get(schemaKey); len(b) > 0 {
		v, err := strconv.Atoi(string(b))
		if err != nil {
			return err
		}

		version = v
	}

	for i := version; i < len(migrations); i++ {
		if err := migrations[i](tx); err != nil {
			return err
		}
	}

	return meta.Put(schemaKey, []byte(strconv.Itoa(len(migrations))))
}
