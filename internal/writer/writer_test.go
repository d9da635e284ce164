package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samrub06/csv-converter-ai/internal/schema"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	fields := []schema.Field{
		{Key: "sku", Label: "SKU"},
		{Key: "name", Label: "Product name"},
	}
	rows := []map[string]string{
		{"sku": "AB1", "name": "Aviator"},
		{"sku": "AB2"},
	}

	require.NoError(t, WriteCSV(path, fields, rows, ';'))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SKU;Product name\nAB1;Aviator\nAB2;\n", string(content))
}

func TestWriteCSV_DefaultDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	fields := []schema.Field{{Key: "sku", Label: "SKU"}, {Key: "name", Label: "Name"}}

	require.NoError(t, WriteCSV(path, fields, nil, 0))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "SKU,Name\n", string(content))
}

func TestWriteCSV_BadPath(t *testing.T) {
	err := WriteCSV(filepath.Join(t.TempDir(), "missing", "out.csv"), nil, nil, ';')
	assert.Error(t, err)
}
