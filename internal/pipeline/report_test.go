package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

func TestFormatReport(t *testing.T) {
	stats := &model.RunStats{
		RunID:    "run-1",
		FileName: "catalog.csv",
		Detection: model.TypeDetection{
			Type:            model.RecordTypeFrame,
			Confidence:      85,
			MatchedKeywords: []string{"frame", "bridge"},
		},
		Mapping: &model.ColumnMapping{
			FieldToHeader:   map[string]string{"sku": "reference"},
			Confidence:      map[string]int{"sku": 95},
			UnmappedHeaders: []string{"internal_notes"},
		},
		Clean: model.CleanStats{TotalFields: 40, RuleResolved: 25},
		Enhance: model.EnhanceStats{
			FlaggedFields: 10,
			Usage: model.UsageCounters{
				Calls:            2,
				InputTokens:      800,
				OutputTokens:     300,
				EstimatedCostUSD: 0.0018,
				CacheHits:        3,
				BatchResolved:    6,
				FallbackResolved: 1,
				BatchSavingsUSD:  0.0046,
			},
		},
		Assemble:   model.AssembleStats{RowsIn: 12, RowsOut: 12},
		OutputPath: "/tmp/catalog_canonical.csv",
	}

	report := FormatReport(stats)

	assert.Contains(t, report, "Conversion Report: catalog.csv")
	assert.Contains(t, report, "FRAME (85% confidence)")
	assert.Contains(t, report, "frame, bridge")
	assert.Contains(t, report, "Unmapped headers: internal_notes")
	assert.Contains(t, report, "Rule-resolved: 25")
	assert.Contains(t, report, "Enhancement calls: 2")
	assert.Contains(t, report, "$0.0018")
	assert.Contains(t, report, "Batching savings: $0.0046")
	assert.Contains(t, report, "12 written, 0 failed")
	assert.Contains(t, report, "/tmp/catalog_canonical.csv")
}

func TestFormatReport_NilMapping(t *testing.T) {
	stats := &model.RunStats{
		RunID:     "run-2",
		FileName:  "odd.csv",
		Detection: model.TypeDetection{Type: model.RecordTypeUnknown},
	}

	report := FormatReport(stats)

	assert.Contains(t, report, "UNKNOWN")
	assert.NotContains(t, report, "## Mapping")
}
