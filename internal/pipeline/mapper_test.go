package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Frame Color", "framecolor"},
		{"frame_color", "framecolor"},
		{"Matière", "matiere"},
		{"Catégorie", "categorie"},
		{"Prix (€)", "prix"},
		{"BRIDGE-WIDTH", "bridgewidth"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, s := range []string{"Frame Color", "Matière", "bridge_width", "Größe 52"} {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestMapColumns_ExactSynonyms(t *testing.T) {
	headers := []string{"reference", "frame_color", "bridge_width"}

	mapping := MapColumns(headers, model.RecordTypeFrame)

	require.Equal(t, "reference", mapping.FieldToHeader["sku"])
	require.Equal(t, "frame_color", mapping.FieldToHeader["color"])
	require.Equal(t, "bridge_width", mapping.FieldToHeader["bridgeWidth"])
	for _, key := range []string{"sku", "color", "bridgeWidth"} {
		assert.Equal(t, exactMatchConfidence, mapping.Confidence[key], "field %s", key)
	}
	assert.Empty(t, mapping.UnmappedHeaders)
	assert.Contains(t, mapping.UnmatchedFields, "name")
}

func TestMapColumns_Injective(t *testing.T) {
	// Two synonyms for the same field: first header wins, second header
	// stays unmapped rather than double-filling sku.
	headers := []string{"sku", "reference"}

	mapping := MapColumns(headers, model.RecordTypeFrame)

	assert.Equal(t, "sku", mapping.FieldToHeader["sku"])
	assert.Contains(t, mapping.UnmappedHeaders, "reference")

	seen := map[string]bool{}
	for _, header := range mapping.FieldToHeader {
		assert.False(t, seen[header], "header %s mapped twice", header)
		seen[header] = true
	}
}

func TestMapColumns_GreedyFirstMatchWins(t *testing.T) {
	headers := []string{"colour", "color"}

	mapping := MapColumns(headers, model.RecordTypeFrame)

	assert.Equal(t, "colour", mapping.FieldToHeader["color"])
	assert.Equal(t, exactMatchConfidence, mapping.Confidence["color"])
	// The second header falls through to a substring match on the next
	// color-ish field.
	assert.Equal(t, "color", mapping.FieldToHeader["colorDescription"])
	assert.Less(t, mapping.Confidence["colorDescription"], exactMatchConfidence)
}

func TestSubstringConfidence(t *testing.T) {
	// Closer lengths score higher.
	assert.Equal(t, 81, substringConfidence("framesize", "size"))
	assert.Equal(t, 79, substringConfidence("colour", "colourdescription"))
	assert.GreaterOrEqual(t, substringConfidence("x", "verylongpatternname"), minMatchConfidence)
}

func TestResolveCompositeSize(t *testing.T) {
	mapping := &model.ColumnMapping{
		FieldToHeader: map[string]string{},
		Confidence:    map[string]int{},
	}
	consumed := map[string]bool{}
	filled := map[string]bool{}

	resolveCompositeSize([]string{"size"}, mapping, consumed, filled)

	assert.Equal(t, "size", mapping.FieldToHeader["size"])
	assert.Equal(t, compositeSizeConfidence, mapping.Confidence["size"])
	assert.True(t, consumed["size"])
}

func TestResolveCompositeSize_LooseHeader(t *testing.T) {
	mapping := &model.ColumnMapping{
		FieldToHeader: map[string]string{},
		Confidence:    map[string]int{},
	}

	resolveCompositeSize([]string{"frame_measurements"}, mapping, map[string]bool{}, map[string]bool{})

	assert.Equal(t, "frame_measurements", mapping.FieldToHeader["size"])
	assert.Equal(t, looseSizeConfidence, mapping.Confidence["size"])
}

func TestResolveCompositeSize_SkippedWhenDimensionsMapped(t *testing.T) {
	mapping := &model.ColumnMapping{
		FieldToHeader: map[string]string{model.DimLensWidth: "lens_width"},
		Confidence:    map[string]int{model.DimLensWidth: 95},
	}
	filled := map[string]bool{model.DimLensWidth: true}

	resolveCompositeSize([]string{"size"}, mapping, map[string]bool{}, filled)

	assert.NotContains(t, mapping.FieldToHeader, "size")
}

func TestMapColumns_PrefersCharacteristicsOverComposition(t *testing.T) {
	// "composition" claims material first, but a free-text
	// characteristics column is the richer material source; the
	// composition header goes back to the unmapped pool.
	headers := []string{"composition", "features", "characteristics"}

	mapping := MapColumns(headers, model.RecordTypeFrame)

	assert.Equal(t, "characteristics", mapping.FieldToHeader["material"])
	assert.Equal(t, characteristicConfidence, mapping.Confidence["material"])
	assert.Equal(t, "features", mapping.FieldToHeader["characteristics"])
	assert.Contains(t, mapping.UnmappedHeaders, "composition")
}

func TestMapColumns_CharacteristicsFillsUnmappedMaterial(t *testing.T) {
	headers := []string{"features", "characteristics"}

	mapping := MapColumns(headers, model.RecordTypeFrame)

	assert.Equal(t, "characteristics", mapping.FieldToHeader["material"])
	assert.Equal(t, characteristicConfidence, mapping.Confidence["material"])
}

func TestMapColumns_EmptyHeaders(t *testing.T) {
	mapping := MapColumns(nil, model.RecordTypeFrame)

	assert.Empty(t, mapping.FieldToHeader)
	assert.Zero(t, mapping.AverageConfidence())
	assert.Len(t, mapping.UnmatchedFields, 30)
}

func TestColumnMapping_Acceptable(t *testing.T) {
	mapping := &model.ColumnMapping{
		FieldToHeader: map[string]string{"sku": "sku", "color": "color"},
		Confidence:    map[string]int{"sku": 95, "color": 95},
	}

	assert.True(t, mapping.Acceptable(2, 0.6, 70))
	assert.False(t, mapping.Acceptable(10, 0.6, 70), "2 of 10 fields misses coverage")
}
