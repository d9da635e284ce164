package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

func TestGet_AllTypesHaveFields(t *testing.T) {
	for _, recordType := range model.AllRecordTypes() {
		fields := Get(recordType)
		require.NotEmpty(t, fields, "type %s", recordType)

		seen := map[string]bool{}
		for _, f := range fields {
			assert.NotEmpty(t, f.Key)
			assert.NotEmpty(t, f.Label)
			assert.False(t, seen[f.Key], "duplicate key %s in %s", f.Key, recordType)
			seen[f.Key] = true
		}
	}
}

func TestGet_UnknownFallsBackToFrame(t *testing.T) {
	assert.Equal(t, Get(model.RecordTypeFrame), Get(model.RecordTypeUnknown))
}

func TestKeysAndLabelsAlign(t *testing.T) {
	keys := Keys(model.RecordTypeFrame)
	labels := Labels(model.RecordTypeFrame)
	fields := Get(model.RecordTypeFrame)

	require.Len(t, keys, len(fields))
	require.Len(t, labels, len(fields))
	for i, f := range fields {
		assert.Equal(t, f.Key, keys[i])
		assert.Equal(t, f.Label, labels[i])
	}
}

func TestPatternsForField_Normalized(t *testing.T) {
	for key, patterns := range fieldPatterns {
		for _, p := range patterns {
			for _, r := range p {
				ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
				assert.True(t, ok, "pattern %q for %s is not normalized", p, key)
			}
		}
	}
}

func TestPatternsForField_CoverFrameSchema(t *testing.T) {
	// Every frame field should be reachable from at least one synonym.
	for _, f := range Get(model.RecordTypeFrame) {
		assert.NotEmpty(t, PatternsForField(f.Key), "field %s has no synonyms", f.Key)
	}
}

func TestPatternsForField_Unknown(t *testing.T) {
	assert.Nil(t, PatternsForField("nosuchfield"))
}
