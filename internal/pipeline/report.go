package pipeline

import (
	"fmt"
	"strings"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

// FormatReport generates a human-readable conversion report. Callers
// inspect these aggregates to decide whether output quality is
// acceptable; the pipeline never reports per-row errors.
func FormatReport(stats *model.RunStats) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Conversion Report: %s\n", stats.FileName)
	fmt.Fprintf(&b, "Run ID: %s\n\n", stats.RunID)

	b.WriteString("## Detection\n")
	fmt.Fprintf(&b, "- Record type: %s (%d%% confidence)\n", stats.Detection.Type, stats.Detection.Confidence)
	if len(stats.Detection.MatchedKeywords) > 0 {
		fmt.Fprintf(&b, "- Matched keywords: %s\n", strings.Join(stats.Detection.MatchedKeywords, ", "))
	}
	b.WriteString("\n")

	if stats.Mapping != nil {
		b.WriteString("## Mapping\n")
		fmt.Fprintf(&b, "- Mapped fields: %d (avg confidence %.0f%%)\n",
			len(stats.Mapping.FieldToHeader), stats.Mapping.AverageConfidence())
		if len(stats.Mapping.UnmappedHeaders) > 0 {
			fmt.Fprintf(&b, "- Unmapped headers: %s\n", strings.Join(stats.Mapping.UnmappedHeaders, ", "))
		}
		if len(stats.Mapping.UnmatchedFields) > 0 {
			fmt.Fprintf(&b, "- Unfilled fields: %s\n", strings.Join(stats.Mapping.UnmatchedFields, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Resolution\n")
	fmt.Fprintf(&b, "- Fields cleaned: %d\n", stats.Clean.TotalFields)
	fmt.Fprintf(&b, "- Rule-resolved: %d\n", stats.Clean.RuleResolved)
	fmt.Fprintf(&b, "- Flagged for enhancement: %d\n", stats.Enhance.FlaggedFields)
	usage := stats.Enhance.Usage
	fmt.Fprintf(&b, "- Cache hits: %d\n", usage.CacheHits)
	fmt.Fprintf(&b, "- Batch-resolved: %d\n", usage.BatchResolved)
	fmt.Fprintf(&b, "- Fallback-resolved: %d\n", usage.FallbackResolved)
	b.WriteString("\n")

	b.WriteString("## Cost\n")
	fmt.Fprintf(&b, "- Enhancement calls: %d\n", usage.Calls)
	fmt.Fprintf(&b, "- Token usage: %d input, %d output\n", usage.InputTokens, usage.OutputTokens)
	fmt.Fprintf(&b, "- Estimated cost: $%.4f\n", usage.EstimatedCostUSD)
	fmt.Fprintf(&b, "- Batching savings: $%.4f\n", usage.BatchSavingsUSD)
	b.WriteString("\n")

	b.WriteString("## Output\n")
	fmt.Fprintf(&b, "- Rows: %d written, %d failed\n", stats.Assemble.RowsOut, stats.Assemble.RowsFailed)
	if stats.OutputPath != "" {
		fmt.Fprintf(&b, "- File: %s\n", stats.OutputPath)
	}

	return b.String()
}
