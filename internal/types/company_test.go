package types

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftValidate(t *testing.T) {
	cases := []struct {
		name   string
		draft  CompanyDraft
		fields []string
	}{
		{"valid minimal", CompanyDraft{Title: "Acme"}, nil},
		{"valid full", CompanyDraft{Title: "Acme", Description: "Widgets", URL: "https://acme.test"}, nil},
		{"missing title", CompanyDraft{Description: "Widgets"}, []string{"title"}},
		{"title too long", CompanyDraft{Title: strings.Repeat("x", TitleMaxLength+1)}, []string{"title"}},
		{"title at limit", CompanyDraft{Title: strings.Repeat("x", TitleMaxLength)}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fe := tc.draft.Validate()
			require.Len(t, fe, len(tc.fields))
			for i, field := range tc.fields {
				assert.Equal(t, field, fe[i].Field)
			}
		})
	}
}

func TestFieldErrorsRender(t *testing.T) {
	fe := FieldErrors{
		{Field: "title", Message: "title is required"},
		{Field: "url", Message: "url must be a string"},
	}
	rendered := fe.Render()
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title is required", lines[0])
	assert.Equal(t, "url must be a string", lines[1])
	assert.Contains(t, lines[2], "usage:")
	// the hint appears exactly once
	assert.Equal(t, 1, strings.Count(rendered, "usage:"))
}

func TestValidateID(t *testing.T) {
	cases := []struct {
		name string
		id   string
		ok   bool
	}{
		{"empty", "", false},
		{"too short", "abc123", false},
		{"eleven chars", "12345678901", false},
		{"twelve chars", "123456789012", true},
		{"uuid", "0f8fad5b-d9cb-469f-a165-70867728950e", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateID(tc.id)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidID))
			}
		})
	}
}

func TestDocMirrorsAllFields(t *testing.T) {
	c := Company{ID: "id-123456789012", Title: "Acme", Description: "Widgets", URL: "https://acme.test", Created: 42}
	doc := c.Doc()
	assert.Equal(t, c.ID, doc.ID)
	assert.Equal(t, c.Title, doc.Title)
	assert.Equal(t, c.Description, doc.Description)
	assert.Equal(t, c.URL, doc.URL)
	assert.Equal(t, c.Created, doc.Created)
}
