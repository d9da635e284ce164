package model

// Resolution source tags recorded on every resolved field. Downstream
// consumers and tests use these to distinguish genuine AI results from
// degraded ones.
const (
	SourceRule                = "rule"
	SourceCache               = "cache"
	SourceBatchAI             = "batch-ai"
	SourceBatchAITruncated    = "batch-ai-truncated"
	SourceBatchAIPartial      = "batch-ai-partial"
	SourceBatchAIFallback     = "batch-ai-fallback"
	SourceBatchFallback       = "batch-fallback"
	SourceSimulationFallback  = "simulation-fallback"
	SourceDescriptionAnalysis = "description-analysis"
	SourceSizeHeuristic       = "size-heuristic"
)

// Dimension keys used in decomposed size values.
const (
	DimLensWidth    = "lensWidth"
	DimBridgeWidth  = "bridgeWidth"
	DimTempleLength = "templeLength"
	DimLensHeight   = "lensHeight"
)

// Dimensions is a structured decomposition of a composite size string.
// Only the dimensions actually present in the source value carry keys.
type Dimensions map[string]float64

// MaterialSplit is a structured decomposition of a labeled material
// string like "Frame: Acetate Lens: Polycarbonate".
type MaterialSplit struct {
	FrameMaterial string
	LensMaterial  string
}

// CleanedField is the result of cleaning one raw value for one field.
// If NeedsAI is false the value is final; otherwise Value holds the best
// pre-AI guess and remains usable as a fallback.
type CleanedField struct {
	Key        string // canonical field key
	Value      any    // string, bool, Dimensions, or MaterialSplit
	Confidence int    // 0..100
	NeedsAI    bool
	Source     string
	Notes      []string
	// SideValues carries sibling fields produced by the same rule,
	// e.g. a base-color rule also yielding colorDescription.
	SideValues map[string]any
}

// CleanedRow holds one row's cleaned fields, keyed by canonical field key.
type CleanedRow map[string]*CleanedField

// CleanStats summarizes one cleaning pass.
type CleanStats struct {
	TotalFields  int
	RuleResolved int
	NeedsAI      int
}

// UsageCounters is the enhancement engine's process-wide accounting,
// confined to one engine instance within one run.
type UsageCounters struct {
	Calls            int
	InputTokens      int64
	OutputTokens     int64
	EstimatedCostUSD float64
	RuleResolved     int
	CacheHits        int
	BatchResolved    int
	FallbackResolved int
	// BatchSavingsUSD estimates the cost avoided by batching: the
	// individual-call equivalent minus the calls actually made.
	BatchSavingsUSD float64
}

// EnhanceStats summarizes one enhancement pass.
type EnhanceStats struct {
	FlaggedFields int
	Usage         UsageCounters
}

// AssembleStats summarizes canonical row assembly.
type AssembleStats struct {
	RowsIn     int
	RowsOut    int
	RowsFailed int
}

// RunStats aggregates everything a caller needs to judge output quality.
// The pipeline reports these instead of per-row error messages.
type RunStats struct {
	RunID      string
	FileName   string
	Detection  TypeDetection
	Mapping    *ColumnMapping
	Clean      CleanStats
	Enhance    EnhanceStats
	Assemble   AssembleStats
	OutputPath string
}
