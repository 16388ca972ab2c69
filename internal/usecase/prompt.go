package usecase

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"staffrag/internal/adapter/encoder"
	"staffrag/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

const staffingTemplate = "templates/staffing_prompt.txt"

// PromptComposer builds the grounded generation prompt from a query and
// the retrieved records.
type PromptComposer struct {
	encoder *encoder.Encoder
	tmpl    *template.Template
}

type promptData struct {
	Query      string
	Candidates []candidate
}

type candidate struct {
	Number int
	Fields []encoder.Field
}

// NewPromptComposer parses the embedded staffing prompt template.
func NewPromptComposer(enc *encoder.Encoder) (*PromptComposer, error) {
	content, err := promptTemplates.ReadFile(staffingTemplate)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}

	tmpl, err := template.New("staffing").Option("missingkey=error").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	return &PromptComposer{encoder: enc, tmpl: tmpl}, nil
}

// Compose renders the prompt: framing line, the query verbatim, one
// numbered candidate block per record in retrieval order, and the closing
// instruction. Identical input yields byte-identical output.
func (c *PromptComposer) Compose(query string, records []domain.Employee) (string, error) {
	data := promptData{
		Query:      query,
		Candidates: make([]candidate, 0, len(records)),
	}
	for i, rec := range records {
		fields, err := c.encoder.Fields(rec)
		if err != nil {
			return "", fmt.Errorf("candidate %d: %w", i+1, err)
		}
		data.Candidates = append(data.Candidates, candidate{Number: i + 1, Fields: fields})
	}

	var b strings.Builder
	if err := c.tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return b.String(), nil
}
