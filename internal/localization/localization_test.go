package localization_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelfix/backend/internal/localization"
)

func TestDefault_EmbeddedLanguages(t *testing.T) {
	l := localization.Default()
	assert.Equal(t, []string{"en", "uk"}, l.Languages())
	assert.Equal(t, "сантехніка", l.GetString("uk", "category.plumbing"))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"loc/en.json": {Data: []byte(`{"greeting":"Hello","only.en":"English"}`)},
		"loc/uk.json": {Data: []byte(`{"greeting":"Привіт"}`)},
		"loc/README":  {Data: []byte("ignored")},
	}
	l, err := localization.Load(fsys, "loc")
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "greeting"))
	assert.Equal(t, "English", l.GetString("uk", "only.en"))
	assert.Equal(t, "Hello", l.GetString("de", "greeting"))
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"))
}

func TestFormat(t *testing.T) {
	got := localization.Default().Format("en", "event.status_updated", map[string]string{
		"hostel": "HST001",
		"title":  "Leaking tap",
		"status": "resolved",
	})
	assert.Equal(t, "🔄 Complaint status changed in HST001\nLeaking tap\nStatus: resolved", got)
}

func TestLoad_BadJSON(t *testing.T) {
	_, err := localization.Load(fstest.MapFS{"loc/en.json": {Data: []byte("{")}}, "loc")
	assert.ErrorContains(t, err, "en.json")
}
