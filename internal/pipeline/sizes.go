package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

// Frame analysis defaults used by the local heuristic.
const (
	rectangularRatio  = 1.8
	roundRatio        = 1.2
	defaultFrameShape = "oval"
	defaultFrameType  = "full-rim"
	defaultRimType    = "full"
	defaultHingeType  = "standard"
	heuristicLensH    = 36.0 // assumed height when the source only carries width
)

const sizeAnalysisPrompt = `You infer eyewear frame characteristics from compact dimension encodings (L<lens width>B<bridge>T<temple>H<height>, millimeters). For each numbered encoding return one JSON object with abbreviated keys: "ft" (frame type: f=full-rim, h=half-rim, r=rimless), "fs" (shape: re=rectangular, ro=round, sq=square, ov=oval, cat=cat-eye), "rt" (rim: f=full, s=semi, r=rimless), "ht" (hinge: s=standard, sp=spring). Respond with only a JSON array, one object per input, in input order.`

// Abbreviation expansion tables for the terse size-analysis template.
var (
	frameTypeCodes = map[string]string{"f": "full-rim", "h": "half-rim", "r": "rimless"}
	frameShapeCodes = map[string]string{
		"re": "rectangular", "ro": "round", "sq": "square", "ov": "oval", "cat": "cat-eye",
	}
	rimTypeCodes   = map[string]string{"f": "full", "s": "semi", "r": "rimless"}
	hingeTypeCodes = map[string]string{"s": "standard", "sp": "spring"}
)

// frameAnalysis is the typed outcome of the size derivation pass.
type frameAnalysis struct {
	FrameType  string
	FrameShape string
	RimType    string
	HingeType  string
}

// encodeDimensions renders a structured dimension object in the compact
// positional form sent to the service, e.g. "L52B18T140H34".
func encodeDimensions(dims model.Dimensions) string {
	var b strings.Builder
	if v, ok := dims[model.DimLensWidth]; ok {
		b.WriteString("L" + trimFloat(v))
	}
	if v, ok := dims[model.DimBridgeWidth]; ok {
		b.WriteString("B" + trimFloat(v))
	}
	if v, ok := dims[model.DimTempleLength]; ok {
		b.WriteString("T" + trimFloat(v))
	}
	if v, ok := dims[model.DimLensHeight]; ok {
		b.WriteString("H" + trimFloat(v))
	}
	return b.String()
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// deriveFromDimensions collects rows whose size field resolved to a
// structured dimension object and derives frame characteristics for
// them, in chunks, with a ratio heuristic as the last line of defense.
// Every dimension-bearing row ends up with frameType, frameShape,
// rimType, and hingeType, never blank.
type sizedRow struct {
	row  model.CleanedRow
	dims model.Dimensions
}

func (e *Engine) deriveFromDimensions(ctx context.Context, rows []model.CleanedRow) {
	var sized []sizedRow
	for _, row := range rows {
		field, ok := row["size"]
		if !ok {
			continue
		}
		dims, ok := field.Value.(model.Dimensions)
		if !ok || len(dims) == 0 {
			continue
		}
		sized = append(sized, sizedRow{row: row, dims: dims})
	}
	if len(sized) == 0 {
		return
	}

	chunkSize := e.chunkSize()
	for start := 0; start < len(sized); start += chunkSize {
		end := start + chunkSize
		if end > len(sized) {
			end = len(sized)
		}
		chunk := sized[start:end]

		encodings := make([]string, len(chunk))
		for i, s := range chunk {
			encodings[i] = encodeDimensions(s.dims)
		}

		analyses := e.analyzeDimensions(ctx, encodings, chunk)
		for i, s := range chunk {
			applyFrameAnalysis(s.row, analyses[i].analysis, analyses[i].source)
		}
	}
}

type analysisOutcome struct {
	analysis frameAnalysis
	source   string
}

// analyzeDimensions resolves one chunk of encodings, via the service
// when possible and via the local heuristic otherwise.
func (e *Engine) analyzeDimensions(ctx context.Context, encodings []string, chunk []sizedRow) []analysisOutcome {
	outcomes := make([]analysisOutcome, len(chunk))

	fallbackAll := func() {
		for i, s := range chunk {
			outcomes[i] = analysisOutcome{
				analysis: heuristicFrameAnalysis(s.dims),
				source:   model.SourceSizeHeuristic,
			}
		}
	}

	if e.client == nil {
		fallbackAll()
		return outcomes
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these %d encodings:\n", len(encodings))
	for i, enc := range encodings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, enc)
	}

	resp, err := e.callService(ctx, sizeAnalysisPrompt, b.String())
	if err != nil {
		zap.L().Warn("enhance: size analysis call failed, using heuristic", zap.Error(err))
		fallbackAll()
		return outcomes
	}

	results, perr := parseResultArray(extractText(resp))
	if perr != nil {
		zap.L().Warn("enhance: size analysis unparseable, using heuristic", zap.Error(perr))
		fallbackAll()
		return outcomes
	}

	e.recordSavings(len(chunk))

	for i, s := range chunk {
		if i < len(results) {
			outcomes[i] = analysisOutcome{
				analysis: expandFrameAnalysis(results[i], s.dims),
				source:   model.SourceBatchAI,
			}
			e.usage.BatchResolved++
		} else {
			outcomes[i] = analysisOutcome{
				analysis: heuristicFrameAnalysis(s.dims),
				source:   model.SourceSizeHeuristic,
			}
		}
	}
	return outcomes
}

// expandFrameAnalysis decodes abbreviated response keys and codes,
// filling anything missing from the heuristic so no attribute is blank.
func expandFrameAnalysis(raw map[string]any, dims model.Dimensions) frameAnalysis {
	heuristic := heuristicFrameAnalysis(dims)

	analysis := frameAnalysis{
		FrameType:  decodeOr(frameTypeCodes, asString(raw["ft"]), heuristic.FrameType),
		FrameShape: decodeOr(frameShapeCodes, asString(raw["fs"]), heuristic.FrameShape),
		RimType:    decodeOr(rimTypeCodes, asString(raw["rt"]), heuristic.RimType),
		HingeType:  decodeOr(hingeTypeCodes, asString(raw["ht"]), heuristic.HingeType),
	}
	return analysis
}

// decodeOr expands an abbreviation code; unabbreviated values pass
// through and unknown or empty codes fall back.
func decodeOr(codes map[string]string, v, fallback string) string {
	if v == "" {
		return fallback
	}
	if full, ok := codes[strings.ToLower(v)]; ok {
		return full
	}
	for _, full := range codes {
		if strings.EqualFold(v, full) {
			return full
		}
	}
	return fallback
}

// heuristicFrameAnalysis infers the frame shape from the lens
// width-to-height ratio. Wide lenses read rectangular, near-square
// lenses read round, everything else takes the default.
func heuristicFrameAnalysis(dims model.Dimensions) frameAnalysis {
	width := dims[model.DimLensWidth]
	height, ok := dims[model.DimLensHeight]
	if !ok || height == 0 {
		height = heuristicLensH
	}

	shape := defaultFrameShape
	if width > 0 {
		ratio := width / height
		if ratio > rectangularRatio {
			shape = "rectangular"
		} else if ratio < roundRatio {
			shape = "round"
		}
	}

	return frameAnalysis{
		FrameType:  defaultFrameType,
		FrameShape: shape,
		RimType:    defaultRimType,
		HingeType:  defaultHingeType,
	}
}

// applyFrameAnalysis writes the derived attributes onto the row without
// overwriting populated fields.
func applyFrameAnalysis(row model.CleanedRow, analysis frameAnalysis, source string) {
	writeSibling(row, "frameType", analysis.FrameType, source)
	writeSibling(row, "frameShape", analysis.FrameShape, source)
	writeSibling(row, "rimType", analysis.RimType, source)
	writeSibling(row, "hingeType", analysis.HingeType, source)
}
