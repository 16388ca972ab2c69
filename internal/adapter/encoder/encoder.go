package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"staffrag/internal/domain"
)

// Field is one labelled value of a rendered record.
type Field struct {
	Label string
	Value string
}

const listSeparator = ", "

// Encoder renders employee records into canonical text documents.
// The zero value is ready to use.
type Encoder struct{}

// New creates a new Encoder.
func New() *Encoder {
	return &Encoder{}
}

// Fields returns the labelled values of a record in canonical order:
// Name, Experience, Skills, Past Projects, Availability.
func (Encoder) Fields(e domain.Employee) ([]Field, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return []Field{
		{Label: "Name", Value: e.Name},
		{Label: "Experience", Value: strconv.Itoa(*e.ExperienceYears) + " years"},
		{Label: "Skills", Value: strings.Join(e.Skills, listSeparator)},
		{Label: "Past Projects", Value: strings.Join(e.PastProjects, listSeparator)},
		{Label: "Availability", Value: e.Availability},
	}, nil
}

// Render returns the document text for a record, e.g.
//
//	Name: Alice. Experience: 5 years. Skills: Python, ML. Past Projects: Recsys. Availability: full-time.
func (enc Encoder) Render(e domain.Employee) (string, error) {
	fields, err := enc.Fields(e)
	if err != nil {
		return "", fmt.Errorf("render record: %w", err)
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(f.Label)
		b.WriteString(": ")
		b.WriteString(f.Value)
		b.WriteByte('.')
	}
	return b.String(), nil
}

// RenderAll renders every record, failing on the first malformed one.
func (enc Encoder) RenderAll(records []domain.Employee) ([]string, error) {
	docs := make([]string, len(records))
	for i, rec := range records {
		doc, err := enc.Render(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		docs[i] = doc
	}
	return docs, nil
}
