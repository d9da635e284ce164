package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Frame Color", "frame_color"},
		{"frame_color", "frame_color"},
		{"SKU", "sku"},
		{" Prix (€) ", "prix"},
		{"Bridge  Width", "bridge_width"},
		{"lens-width", "lens-width"},
		{"Trailing ", "trailing"},
		{"", ""},
		{"***", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), "NormalizeHeader(%q)", tt.in)
	}
}

func TestNormalizeHeader_Idempotent(t *testing.T) {
	for _, s := range []string{"Frame Color", "Bridge  Width", "Prix (€)"} {
		once := NormalizeHeader(s)
		assert.Equal(t, once, NormalizeHeader(once))
	}
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile_CSV(t *testing.T) {
	path := writeTempFile(t, "catalog.csv",
		"Name,Frame Color,Price\nAviator, Shiny Black ,120\n,,\nWayfarer,Havana,95\n")

	data, err := ReadFile(path, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "frame_color", "price"}, data.Headers)
	assert.Equal(t, "catalog.csv", data.FileName)
	// The all-empty row is dropped, cell values are trimmed.
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Shiny Black", data.Rows[0]["frame_color"])
	assert.Equal(t, "95", data.Rows[1]["price"])
}

func TestReadFile_SemicolonDelimiter(t *testing.T) {
	path := writeTempFile(t, "catalog.csv", "Name;Price\nAviator;120\n")

	data, err := ReadFile(path, Options{Delimiter: ';'})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "price"}, data.Headers)
	assert.Equal(t, "120", data.Rows[0]["price"])
}

func TestReadFile_ShortRowsPadEmpty(t *testing.T) {
	path := writeTempFile(t, "catalog.csv", "Name,Color,Price\nAviator,Black\n")

	data, err := ReadFile(path, Options{})
	require.NoError(t, err)

	require.Len(t, data.Rows, 1)
	assert.Equal(t, "", data.Rows[0]["price"])
}

func TestReadFile_TxtRoutesToCSV(t *testing.T) {
	path := writeTempFile(t, "export.txt", "Name,Price\nAviator,120\n")

	data, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Len(t, data.Rows, 1)
}

func TestReadFile_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "catalog.pdf", "junk")

	_, err := ReadFile(path, Options{})
	assert.Error(t, err)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	assert.Error(t, err)
}

func TestReadFile_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	_, err := ReadFile(path, Options{})
	assert.Error(t, err)
}

func TestReadFile_Windows1252(t *testing.T) {
	// Accented characters in their single-byte Windows-1252 form.
	content := []byte("Mati\xe8re\nAc\xe9tate\n")
	path := filepath.Join(t.TempDir(), "legacy.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	data, err := ReadFile(path, Options{Encoding: "windows-1252"})
	require.NoError(t, err)

	assert.Equal(t, []string{"matire"}, data.Headers)
	assert.Equal(t, "Acétate", data.Rows[0]["matire"])
}
