package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"staffrag/internal/adapter/encoder"
	"staffrag/internal/domain"
)

func newComposer(t *testing.T) *PromptComposer {
	t.Helper()
	c, err := NewPromptComposer(encoder.New())
	require.NoError(t, err)
	return c
}

func TestCompose_Layout(t *testing.T) {
	c := newComposer(t)

	out, err := c.Compose("python engineer", []domain.Employee{alice()})
	require.NoError(t, err)

	want := "You are an intelligent HR assistant. Your task is to help find the best employees for a project based on the user's query and the provided employee profiles.\n\n" +
		"User Query: \"python engineer\"\n\n" +
		"Here are the most relevant employee profiles I found:\n\n" +
		"--- Candidate 1 ---\n" +
		"Name: Alice\n" +
		"Experience: 5 years\n" +
		"Skills: Python, ML\n" +
		"Past Projects: Recsys\n" +
		"Availability: full-time\n\n" +
		"Based on this information, please provide a helpful recommendation of the best candidates."
	assert.Equal(t, want, out)
}

func TestCompose_Deterministic(t *testing.T) {
	c := newComposer(t)
	records := []domain.Employee{alice(), bob()}

	first, err := c.Compose("q", records)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Compose("q", records)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompose_PermutationOnlyChangesEnumeration(t *testing.T) {
	c := newComposer(t)

	ab, err := c.Compose("q", []domain.Employee{alice(), bob()})
	require.NoError(t, err)
	ba, err := c.Compose("q", []domain.Employee{bob(), alice()})
	require.NoError(t, err)

	blocks := func(s string) map[string]string {
		out := map[string]string{}
		for _, part := range strings.Split(s, "--- Candidate ")[1:] {
			body := part[strings.Index(part, "\n")+1:]
			body = strings.SplitN(body, "\n\n", 2)[0]
			name := strings.SplitN(strings.TrimPrefix(body, "Name: "), "\n", 2)[0]
			out[name] = body
		}
		return out
	}

	assert.Equal(t, blocks(ab), blocks(ba))
	assert.Less(t, strings.Index(ab, "Name: Alice"), strings.Index(ab, "Name: Bob"))
	assert.Less(t, strings.Index(ba, "Name: Bob"), strings.Index(ba, "Name: Alice"))
	assert.Contains(t, ba, "--- Candidate 1 ---\nName: Bob")
}

func TestCompose_QueryVerbatim(t *testing.T) {
	c := newComposer(t)

	query := `need <Go> & "Rust" devs`
	out, err := c.Compose(query, []domain.Employee{alice()})
	require.NoError(t, err)
	assert.Contains(t, out, `User Query: "`+query+`"`)
}

func TestCompose_MalformedRecord(t *testing.T) {
	c := newComposer(t)
	bad := alice()
	bad.ExperienceYears = nil

	_, err := c.Compose("q", []domain.Employee{alice(), bad})
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord), "got %v", err)
}
