package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Len(t, c.General, 7)
	assert.Len(t, c.Critical, 4)
	assert.Equal(t, "Academics and Faculty", c.General[0].Name)
	assert.Equal(t, "Safety", c.Critical[3].Name)

	cat, ok := c.General.Lookup("Connectivity and Hygiene")
	require.True(t, ok)
	assert.Equal(t, "Wi-Fi, internet, cleanliness, sanitation", cat.Keywords)

	_, ok = c.General.Lookup("Safety")
	assert.False(t, ok)
}

func TestFlatten_OrderIsCategoriesThenGeneral(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	entries := c.Flatten()
	require.Len(t, entries, 25)
	assert.Equal(t, "Where can I find my timetable?", entries[0].Question)
	assert.Equal(t, "Library card lost?", entries[16].Question)
	assert.Equal(t, "How long will it take to resolve my complaint?", entries[17].Question)
	assert.Equal(t, "Can I change my registered email?", entries[24].Question)
}

func TestAll(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all := c.All()
	assert.Len(t, all, 11)
	assert.Equal(t, c.General.Names(), all.Names()[:7])
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "malformed", yaml: "categories: ["},
		{name: "no categories", yaml: "faqs:\n  general: []\n"},
		{name: "duplicate across tables", yaml: `
categories:
  general:
    - name: Safety
      keywords: a
  critical:
    - name: Safety
      keywords: b
`},
		{name: "empty name", yaml: `
categories:
  general:
    - name: " "
      keywords: a
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  general:
    - name: Library
      keywords: Books, study rooms
faqs:
  general:
    - q: Opening hours?
      a: 8am to 8pm.
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Table{{Name: "Library", Keywords: "Books, study rooms"}}, c.General)
	assert.Equal(t, []Entry{{Question: "Opening hours?", Answer: "8am to 8pm."}}, c.Flatten())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
