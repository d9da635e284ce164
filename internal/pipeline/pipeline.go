// Package pipeline implements the field resolution and enhancement
// pipeline: record-type classification, column mapping, rule-based
// cleaning, cost-bounded batched enhancement, and canonical assembly.
package pipeline

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/samrub06/csv-converter-ai/internal/config"
	"github.com/samrub06/csv-converter-ai/internal/cost"
	"github.com/samrub06/csv-converter-ai/internal/ingest"
	"github.com/samrub06/csv-converter-ai/internal/model"
	"github.com/samrub06/csv-converter-ai/internal/schema"
	"github.com/samrub06/csv-converter-ai/internal/writer"
	"github.com/samrub06/csv-converter-ai/pkg/anthropic"
)

// Pipeline runs the conversion stages for one file at a time. Stages
// within a run are strictly sequential: one enhancement call completes
// before the next is dispatched.
type Pipeline struct {
	cfg    *config.Config
	client anthropic.Client
	calc   *cost.Calculator
}

// New creates a Pipeline. The client may be nil, putting enhancement
// into simulation mode.
func New(cfg *config.Config, client anthropic.Client) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		client: client,
		calc:   cost.NewCalculator(cost.DefaultRates()),
	}
}

// Run converts one input file into canonical rows and writes them out.
// Soft gates (low type confidence, thin mapping coverage) log warnings
// and proceed; only I/O failures abort the run.
func (p *Pipeline) Run(ctx context.Context, path string) (*model.RunStats, error) {
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID), zap.String("file", path))
	log.Info("pipeline: starting conversion")

	data, err := ingest.ReadFile(path, ingest.Options{})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: ingest")
	}

	stats := &model.RunStats{
		RunID:    runID,
		FileName: data.FileName,
	}

	// Phase 1: record type classification.
	detection := p.detectType(data, log)
	stats.Detection = detection

	// Phase 2: column mapping.
	mapping := MapColumns(data.Headers, detection.Type)
	stats.Mapping = mapping
	totalFields := len(schema.Get(detection.Type))
	if !mapping.Acceptable(totalFields, p.cfg.Pipeline.MappingCoverageThreshold, p.cfg.Pipeline.MappingConfidenceThreshold) {
		log.Warn("pipeline: mapping below advisory gate",
			zap.Float64("mapped_fraction", mapping.MappedFraction(totalFields)),
			zap.Float64("avg_confidence", mapping.AverageConfidence()),
			zap.Strings("unmapped_headers", mapping.UnmappedHeaders),
		)
	}

	// Phase 3: rule-based cleaning.
	cleanedRows, cleanStats := CleanBatch(data.Rows, mapping)
	stats.Clean = cleanStats

	// Phase 4: batched enhancement. Never fails; degrades per field.
	engine := NewEngine(p.client, p.cfg.Anthropic, p.calc)
	stats.Enhance = engine.EnhanceBatch(ctx, cleanedRows)

	// Phase 5: canonical assembly.
	canonicalRows, assembleStats := AssembleRows(detection.Type, cleanedRows)
	stats.Assemble = assembleStats

	// Phase 6: serialization.
	outPath := p.outputPath(data.FileName)
	delimiter := p.delimiter()
	if err := writer.WriteCSV(outPath, schema.Get(detection.Type), canonicalRows, delimiter); err != nil {
		return stats, eris.Wrap(err, "pipeline: write output")
	}
	stats.OutputPath = outPath

	log.Info("pipeline: conversion complete",
		zap.String("type", string(detection.Type)),
		zap.Int("type_confidence", detection.Confidence),
		zap.Int("rows_out", assembleStats.RowsOut),
		zap.Int("rows_failed", assembleStats.RowsFailed),
		zap.Int("enhancement_calls", stats.Enhance.Usage.Calls),
		zap.Float64("estimated_cost_usd", stats.Enhance.Usage.EstimatedCostUSD),
		zap.String("output", outPath),
	)

	return stats, nil
}

// detectType classifies the file, honoring a configured type override.
// Low confidence is a soft warning; the pipeline proceeds regardless.
func (p *Pipeline) detectType(data *model.FileData, log *zap.Logger) model.TypeDetection {
	if forced := strings.TrimSpace(p.cfg.Pipeline.ForceType); forced != "" {
		return model.TypeDetection{
			Type:       model.RecordType(strings.ToUpper(forced)),
			Confidence: 100,
		}
	}

	sample := data.Rows
	if limit := p.cfg.Pipeline.SampleRows; limit > 0 && len(sample) > limit {
		sample = sample[:limit]
	}

	detection := Classify(data.Headers, sample)
	if detection.Confidence < p.cfg.Pipeline.TypeConfidenceThreshold {
		log.Warn("pipeline: type confidence below threshold",
			zap.String("type", string(detection.Type)),
			zap.Int("confidence", detection.Confidence),
			zap.Int("threshold", p.cfg.Pipeline.TypeConfidenceThreshold),
		)
	}
	return detection
}

func (p *Pipeline) outputPath(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return filepath.Join(p.cfg.Output.Dir, base+"_canonical.csv")
}

func (p *Pipeline) delimiter() rune {
	if p.cfg.Output.Delimiter != "" {
		return rune(p.cfg.Output.Delimiter[0])
	}
	return ';'
}
