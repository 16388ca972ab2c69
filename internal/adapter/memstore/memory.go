package memstore

import (
	"fmt"

	"staffrag/internal/domain"
)

// RecordStore holds the loaded employee records for the process lifetime.
// A record's identity is its position. The store is never mutated after
// construction, so reads need no locking.
type RecordStore struct {
	records []domain.Employee
}

// NewRecordStore snapshots records. A nil slice yields an empty store.
func NewRecordStore(records []domain.Employee) *RecordStore {
	snapshot := make([]domain.Employee, len(records))
	copy(snapshot, records)
	return &RecordStore{records: snapshot}
}

// Len returns the number of records.
func (s *RecordStore) Len() int {
	return len(s.records)
}

// Get returns the record at position i.
func (s *RecordStore) Get(i int) (domain.Employee, error) {
	if i < 0 || i >= len(s.records) {
		return domain.Employee{}, fmt.Errorf("record position out of range: %d", i)
	}
	return s.records[i], nil
}

// All returns a copy of every record in load order.
func (s *RecordStore) All() []domain.Employee {
	out := make([]domain.Employee, len(s.records))
	copy(out, s.records)
	return out
}
