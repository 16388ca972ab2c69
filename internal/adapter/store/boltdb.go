package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"staffrag/internal/domain"
)

var (
	bucketEmployees = []byte("employees")
	bucketMeta      = []byte("meta")
	keyImportedAt   = []byte("imported_at")
)

// BoltRecordStore keeps employee records in a bbolt file. Keys are
// big-endian sequence numbers so iteration follows insertion order.
type BoltRecordStore struct {
	db *bbolt.DB
}

// NewBoltRecordStore opens (or creates) a record database at path.
func NewBoltRecordStore(path string) (*BoltRecordStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketEmployees, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltRecordStore{db: db}, nil
}

// OpenBoltRecordStoreReadOnly opens an existing record database without
// creating buckets, so serving never writes to the source.
func OpenBoltRecordStoreReadOnly(path string) (*BoltRecordStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	return &BoltRecordStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltRecordStore) Close() error {
	return s.db.Close()
}

// Put appends records after any already stored, in the given order.
func (s *BoltRecordStore) Put(records []domain.Employee) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		for _, rec := range records {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(seq), data); err != nil {
				return err
			}
		}
		stamp := []byte(time.Now().UTC().Format(time.RFC3339))
		return tx.Bucket(bucketMeta).Put(keyImportedAt, stamp)
	})
}

// Reset removes every stored record.
func (s *BoltRecordStore) Reset() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketEmployees); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketEmployees)
		return err
	})
}

// List returns every stored record in insertion order.
func (s *BoltRecordStore) List() ([]domain.Employee, error) {
	var records []domain.Employee
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		if b == nil {
			return fmt.Errorf("bucket %s not found", bucketEmployees)
		}
		return b.ForEach(func(k, v []byte) error {
			var rec domain.Employee
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}

// Records implements port.RecordSource.
func (s *BoltRecordStore) Records(ctx context.Context) ([]domain.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.List()
}

// Count returns the number of stored records.
func (s *BoltRecordStore) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEmployees)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
