package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCV_JSONKeepsUnknownFields(t *testing.T) {
	in := []byte(`{
		"id": "cv-1",
		"lastModified": "2025-03-01T09:00:00.5Z",
		"isDraft": true,
		"title": "Backend engineer",
		"personal": {"name": "Aoife", "county": "Cork"},
		"yearsExperience": 7
	}`)

	var cv CV
	require.NoError(t, json.Unmarshal(in, &cv))

	assert.Equal(t, "cv-1", cv.ID)
	assert.True(t, cv.IsDraft)
	assert.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 5e8, time.UTC), cv.LastModified)
	assert.Equal(t, "Backend engineer", cv.Title())
	assert.NotContains(t, cv.Document, FieldID)

	out, err := json.Marshal(cv)
	require.NoError(t, err)

	var want, got map[string]any
	require.NoError(t, json.Unmarshal(in, &want))
	require.NoError(t, json.Unmarshal(out, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document changed (-want +got):\n%s", diff)
	}
}

func TestCV_UnmarshalRejects(t *testing.T) {
	var cv CV
	assert.Error(t, json.Unmarshal([]byte(`null`), &cv))
	assert.Error(t, json.Unmarshal([]byte(`{"lastModified":"yesterday"}`), &cv))
}

func TestCV_Set(t *testing.T) {
	cv := NewCV("Draft")
	require.NotEmpty(t, cv.ID)

	require.NoError(t, cv.Set("summary", "Go developer"))
	assert.ErrorIs(t, cv.Set(FieldID, "x"), ErrReservedField)
	assert.ErrorIs(t, cv.Set(FieldIsDraft, false), ErrReservedField)
	assert.Equal(t, []string{"summary", "title"}, cv.FieldNames())
}

func TestFieldsFromLines(t *testing.T) {
	got, err := FieldsFromLines([]string{"title=Engineer", " summary = Likes Go ", "url=https://x.ie/?a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"title":   "Engineer",
		"summary": "Likes Go",
		"url":     "https://x.ie/?a=b",
	}, got)

	_, err = FieldsFromLines([]string{"title=ok", "justname"})
	assert.ErrorIs(t, err, ErrIncorrectField)

	_, err = FieldsFromLines([]string{"=value"})
	assert.ErrorIs(t, err, ErrIncorrectField)
}
