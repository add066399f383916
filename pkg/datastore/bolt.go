package datastore

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/types"
)

const boltBucketRuns = "runs" // key: start time (unix nanos, big endian) + run id -> Run JSON

// LockTimeout is how long Open waits for another dotsync holding the journal
const LockTimeout = time.Second

type boltJournal struct {
	db *bbolt.DB
}

// Open opens or creates the journal at path
func Open(path string) (Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create %s", filepath.Dir(path))
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: LockTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrJournal, "failed to open journal %s", path)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketRuns))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, errors.ErrJournal, "failed to initialise journal")
	}

	return &boltJournal{db: db}, nil
}

func runKey(run Run) []byte {
	key := make([]byte, 8, 8+len(run.ID))
	binary.BigEndian.PutUint64(key, uint64(run.Started.UnixNano()))
	return append(key, run.ID...)
}

func (b *boltJournal) RecordRun(summary types.Summary) error {
	run := NewRun(summary)
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Started.IsZero() {
		run.Started = time.Now()
	}

	data, err := json.Marshal(&run)
	if err != nil {
		return errors.Wrap(err, errors.ErrJournal, "failed to encode run")
	}

	if err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketRuns)).Put(runKey(run), data)
	}); err != nil {
		return errors.Wrap(err, errors.ErrJournal, "failed to record run")
	}
	return nil
}

func (b *boltJournal) RecentRuns(n int) ([]Run, error) {
	var runs []Run

	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketRuns)).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if n > 0 && len(runs) >= n {
				break
			}
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrJournal, "failed to read journal")
	}

	return runs, nil
}

func (b *boltJournal) Close() error {
	return b.db.Close()
}
