package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

func TestEncodeDimensions(t *testing.T) {
	full := model.Dimensions{
		model.DimLensWidth:    52,
		model.DimBridgeWidth:  18,
		model.DimTempleLength: 140,
		model.DimLensHeight:   34,
	}
	assert.Equal(t, "L52B18T140H34", encodeDimensions(full))

	partial := model.Dimensions{model.DimLensWidth: 52.5}
	assert.Equal(t, "L52.5", encodeDimensions(partial))

	assert.Equal(t, "", encodeDimensions(model.Dimensions{}))
}

func TestHeuristicFrameAnalysis(t *testing.T) {
	tests := []struct {
		name  string
		dims  model.Dimensions
		shape string
	}{
		{
			"wide lens reads rectangular",
			model.Dimensions{model.DimLensWidth: 70, model.DimLensHeight: 36},
			"rectangular",
		},
		{
			"near-square lens reads round",
			model.Dimensions{model.DimLensWidth: 40, model.DimLensHeight: 36},
			"round",
		},
		{
			"middle ratio reads oval",
			model.Dimensions{model.DimLensWidth: 55, model.DimLensHeight: 36},
			"oval",
		},
		{
			"missing height assumes the standard lens height",
			model.Dimensions{model.DimLensWidth: 70},
			"rectangular",
		},
		{
			"no width takes the default shape",
			model.Dimensions{model.DimBridgeWidth: 18},
			defaultFrameShape,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := heuristicFrameAnalysis(tt.dims)
			assert.Equal(t, tt.shape, analysis.FrameShape)
			assert.Equal(t, defaultFrameType, analysis.FrameType)
			assert.Equal(t, defaultRimType, analysis.RimType)
			assert.Equal(t, defaultHingeType, analysis.HingeType)
		})
	}
}

func TestDecodeOr(t *testing.T) {
	assert.Equal(t, "rectangular", decodeOr(frameShapeCodes, "re", "oval"))
	assert.Equal(t, "rectangular", decodeOr(frameShapeCodes, "rectangular", "oval"), "unabbreviated values pass through")
	assert.Equal(t, "oval", decodeOr(frameShapeCodes, "", "oval"))
	assert.Equal(t, "oval", decodeOr(frameShapeCodes, "zz", "oval"), "unknown codes fall back")
}

func TestExpandFrameAnalysis_FillsMissingFromHeuristic(t *testing.T) {
	dims := model.Dimensions{model.DimLensWidth: 70, model.DimLensHeight: 36}

	analysis := expandFrameAnalysis(map[string]any{"ft": "h"}, dims)

	assert.Equal(t, "half-rim", analysis.FrameType)
	assert.Equal(t, "rectangular", analysis.FrameShape, "missing shape comes from the ratio heuristic")
	assert.Equal(t, defaultRimType, analysis.RimType)
	assert.Equal(t, defaultHingeType, analysis.HingeType)
}

func sizedTestRow(dims model.Dimensions) model.CleanedRow {
	return model.CleanedRow{
		"size": &model.CleanedField{Key: "size", Value: dims, Confidence: 85, Source: model.SourceRule},
	}
}

func TestDeriveFromDimensions_Heuristic(t *testing.T) {
	engine := newTestEngine(nil)
	row := sizedTestRow(model.Dimensions{model.DimLensWidth: 70, model.DimBridgeWidth: 18})

	engine.deriveFromDimensions(context.Background(), []model.CleanedRow{row})

	for _, key := range []string{"frameType", "frameShape", "rimType", "hingeType"} {
		require.Contains(t, row, key)
		assert.Equal(t, model.SourceSizeHeuristic, row[key].Source, "field %s", key)
		assert.NotEmpty(t, row[key].Value)
	}
	assert.Equal(t, "rectangular", row["frameShape"].Value)
}

func TestDeriveFromDimensions_Service(t *testing.T) {
	client := &scriptedClient{responses: []string{`[{"ft":"h","fs":"sq","rt":"s","ht":"sp"}]`}}
	engine := newTestEngine(client)
	row := sizedTestRow(model.Dimensions{model.DimLensWidth: 52, model.DimBridgeWidth: 18})

	engine.deriveFromDimensions(context.Background(), []model.CleanedRow{row})

	require.Len(t, client.requests, 1)
	assert.Contains(t, client.requests[0].Messages[0].Content, "L52B18")
	assert.Equal(t, "half-rim", row["frameType"].Value)
	assert.Equal(t, "square", row["frameShape"].Value)
	assert.Equal(t, "semi", row["rimType"].Value)
	assert.Equal(t, "spring", row["hingeType"].Value)
	assert.Equal(t, model.SourceBatchAI, row["frameType"].Source)
}

func TestDeriveFromDimensions_ShortResponseFallsBackPerRow(t *testing.T) {
	client := &scriptedClient{responses: []string{`[{"fs":"sq"}]`}}
	engine := newTestEngine(client)
	rows := []model.CleanedRow{
		sizedTestRow(model.Dimensions{model.DimLensWidth: 52}),
		sizedTestRow(model.Dimensions{model.DimLensWidth: 70}),
	}

	engine.deriveFromDimensions(context.Background(), rows)

	assert.Equal(t, "square", rows[0]["frameShape"].Value)
	assert.Equal(t, model.SourceBatchAI, rows[0]["frameShape"].Source)
	// The unanswered row still gets a full set of attributes.
	assert.Equal(t, "rectangular", rows[1]["frameShape"].Value)
	assert.Equal(t, model.SourceSizeHeuristic, rows[1]["frameShape"].Source)
}

func TestDeriveFromDimensions_SkipsStringSizes(t *testing.T) {
	engine := newTestEngine(nil)
	row := model.CleanedRow{
		"size": &model.CleanedField{Key: "size", Value: "52-18-140"},
	}

	engine.deriveFromDimensions(context.Background(), []model.CleanedRow{row})

	assert.NotContains(t, row, "frameType")
}

func TestApplyFrameAnalysis_NeverOverwrites(t *testing.T) {
	row := model.CleanedRow{
		"frameType": &model.CleanedField{Key: "frameType", Value: "half-rim", Confidence: 95},
	}

	applyFrameAnalysis(row, frameAnalysis{
		FrameType:  "full-rim",
		FrameShape: "oval",
		RimType:    "full",
		HingeType:  "standard",
	}, model.SourceSizeHeuristic)

	assert.Equal(t, "half-rim", row["frameType"].Value)
	assert.Equal(t, "oval", row["frameShape"].Value)
}

func TestEnhanceBatch_DerivesFromRuleResolvedSizes(t *testing.T) {
	// Size fields resolved by rule (never flagged) still feed the frame
	// characteristics pass.
	engine := newTestEngine(nil)
	row := sizedTestRow(model.Dimensions{model.DimLensWidth: 40, model.DimLensHeight: 36})

	stats := engine.EnhanceBatch(context.Background(), []model.CleanedRow{row})

	assert.Equal(t, 0, stats.FlaggedFields)
	assert.Equal(t, 0, stats.Usage.Calls)
	require.Contains(t, row, "frameShape")
	assert.Equal(t, "round", row["frameShape"].Value)
}
