package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"staffrag/internal/adapter/fs"
	"staffrag/internal/adapter/store"
	"staffrag/internal/domain"
	"staffrag/internal/port"
)

// Source formats.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatBolt = "bolt"
)

// JSONSource reads records from one or more JSON array files.
type JSONSource struct {
	location string
	walker   *fs.Walker
}

var _ port.RecordSource = (*JSONSource)(nil)

// NewJSONSource creates a source for a file path or doublestar pattern.
func NewJSONSource(location string, excludes []string) *JSONSource {
	return &JSONSource{
		location: location,
		walker:   fs.NewWalker(excludes),
	}
}

// Records concatenates the records of every matched file in path order.
func (s *JSONSource) Records(ctx context.Context) ([]domain.Employee, error) {
	files, err := s.walker.Resolve(s.location)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", s.location, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %s", s.location)
	}

	var all []domain.Employee
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := fs.ReadFile(f.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Path, err)
		}
		recs, err := DecodeJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.Path, err)
		}
		all = append(all, recs...)
	}
	return all, nil
}

// DecodeJSON parses a JSON array of employee records. Unknown fields are
// ignored; missing fields are kept absent for later validation.
func DecodeJSON(data []byte) ([]domain.Employee, error) {
	var recs []domain.Employee
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&recs); err != nil {
		return nil, err
	}
	if recs == nil {
		return nil, fmt.Errorf("expected a JSON array of records")
	}
	return recs, nil
}

// BoltSource reads records from a bbolt database written by the import command.
type BoltSource struct {
	path string
}

var _ port.RecordSource = (*BoltSource)(nil)

func NewBoltSource(path string) *BoltSource {
	return &BoltSource{path: path}
}

// Records opens the database read-only, lists its records and closes it.
func (s *BoltSource) Records(ctx context.Context) ([]domain.Employee, error) {
	st, err := store.OpenBoltRecordStoreReadOnly(s.path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Records(ctx)
}

// NewSource picks a source implementation for location and format.
func NewSource(location, format string, excludes []string) (port.RecordSource, error) {
	switch DetectFormat(location, format) {
	case FormatJSON:
		return NewJSONSource(location, excludes), nil
	case FormatBolt:
		return NewBoltSource(location), nil
	default:
		return nil, fmt.Errorf("unsupported data format: %s", format)
	}
}

// DetectFormat resolves FormatAuto by file extension.
func DetectFormat(location, format string) string {
	if format != "" && format != FormatAuto {
		return format
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".db", ".bolt":
		return FormatBolt
	default:
		return FormatJSON
	}
}

// Load reads every record from the configured source. Any failure is
// reported as domain.ErrDataUnavailable.
func Load(ctx context.Context, location, format string, excludes []string) ([]domain.Employee, error) {
	src, err := NewSource(location, format, excludes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	recs, err := src.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	return recs, nil
}
