package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samrub06/csv-converter-ai/internal/ingest"
	"github.com/samrub06/csv-converter-ai/internal/pipeline"
	"github.com/samrub06/csv-converter-ai/internal/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Classify and map a file without converting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := ingest.ReadFile(args[0], ingest.Options{})
		if err != nil {
			return err
		}

		sample := data.Rows
		if limit := cfg.Pipeline.SampleRows; limit > 0 && len(sample) > limit {
			sample = sample[:limit]
		}
		detection := pipeline.Classify(data.Headers, sample)
		mapping := pipeline.MapColumns(data.Headers, detection.Type)

		fmt.Printf("File: %s (%d rows)\n", data.FileName, len(data.Rows))
		fmt.Printf("Type: %s (%d%% confidence)\n", detection.Type, detection.Confidence)
		fmt.Printf("Mapped %d/%d fields, avg confidence %.0f%%\n",
			len(mapping.FieldToHeader), len(schema.Get(detection.Type)), mapping.AverageConfidence())
		for _, f := range schema.Get(detection.Type) {
			if header, ok := mapping.FieldToHeader[f.Key]; ok {
				fmt.Printf("  %-20s <- %-24s (%d%%)\n", f.Key, header, mapping.Confidence[f.Key])
			}
		}
		if len(mapping.UnmappedHeaders) > 0 {
			fmt.Printf("Unmapped headers: %s\n", strings.Join(mapping.UnmappedHeaders, ", "))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
