package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/samrub06/csv-converter-ai/internal/config"
	"github.com/samrub06/csv-converter-ai/internal/cost"
	"github.com/samrub06/csv-converter-ai/internal/model"
	"github.com/samrub06/csv-converter-ai/pkg/anthropic"
)

// Reconciliation confidence levels.
const (
	batchAIConfidence    = 85
	reducedAIConfidence  = 80
	fallbackConfidence   = 75
	paddingConfidence    = 60
	simulationConfidence = 70
	fallbackTruncateLen  = 100
	cacheMinConfidence   = 80
	cacheKeyPrefixLen    = 80
)

// Engine batches unresolved fields into grouped enhancement calls and
// reconciles the responses. It owns the result cache and usage counters
// for one run; there are no concurrent writers.
type Engine struct {
	client  anthropic.Client // nil: every call resolves via simulation
	cfg     config.AnthropicConfig
	calc    *cost.Calculator
	limiter *rate.Limiter
	cache   map[string]cacheEntry
	usage   model.UsageCounters
}

type cacheEntry struct {
	value      any
	sideValues map[string]any
	confidence int
}

// enhanceItem tags one flagged field with its originating row.
type enhanceItem struct {
	rowIdx int
	row    model.CleanedRow
	key    string
	field  *model.CleanedField
}

// NewEngine creates an enhancement engine. A nil client puts the engine
// in simulation mode: flagged fields resolve locally with no network
// attempt.
func NewEngine(client anthropic.Client, cfg config.AnthropicConfig, calc *cost.Calculator) *Engine {
	e := &Engine{
		client: client,
		cfg:    cfg,
		calc:   calc,
		cache:  make(map[string]cacheEntry),
	}
	if cfg.RequestsPerSecond > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return e
}

// Usage returns a copy of the engine's accumulated counters.
func (e *Engine) Usage() model.UsageCounters {
	return e.usage
}

// EnhanceBatch resolves every field flagged NeedsAI across all rows.
// Grouping is global: same-category fields from different rows share
// batches. Rows are mutated in place. Service failures never escape;
// a failed chunk degrades to fallback values and the next group
// proceeds.
func (e *Engine) EnhanceBatch(ctx context.Context, rows []model.CleanedRow) model.EnhanceStats {
	groups := e.collectGroups(rows)

	flagged := 0
	for _, items := range groups {
		flagged += len(items)
	}

	for _, cat := range categoryOrder() {
		e.processCategory(ctx, cat, groups[cat])
	}

	e.deriveFromDimensions(ctx, rows)

	zap.L().Info("enhance: batch complete",
		zap.Int("flagged_fields", flagged),
		zap.Int("calls", e.usage.Calls),
		zap.Int("cache_hits", e.usage.CacheHits),
		zap.Int("batch_resolved", e.usage.BatchResolved),
		zap.Int("fallback_resolved", e.usage.FallbackResolved),
		zap.Float64("estimated_cost_usd", e.usage.EstimatedCostUSD),
	)

	return model.EnhanceStats{
		FlaggedFields: flagged,
		Usage:         e.usage,
	}
}

// collectGroups gathers flagged fields by category, preserving row
// order and sorting keys within a row so chunk order is deterministic.
func (e *Engine) collectGroups(rows []model.CleanedRow) map[category][]*enhanceItem {
	groups := make(map[category][]*enhanceItem)
	for rowIdx, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			field := row[k]
			if field == nil || !field.NeedsAI {
				continue
			}
			cat := categorize(k)
			groups[cat] = append(groups[cat], &enhanceItem{
				rowIdx: rowIdx,
				row:    row,
				key:    k,
				field:  field,
			})
		}
	}
	return groups
}

// processCategory applies the cache, then dispatches the remaining
// items by group size: 1-2 individually, 3..chunkSize as one call,
// larger groups in consecutive chunks.
func (e *Engine) processCategory(ctx context.Context, cat category, items []*enhanceItem) {
	if len(items) == 0 {
		return
	}

	remaining := make([]*enhanceItem, 0, len(items))
	for _, item := range items {
		if e.applyCache(cat, item) {
			continue
		}
		remaining = append(remaining, item)
	}

	chunkSize := e.chunkSize()
	smallThreshold := e.smallBatchThreshold()

	switch {
	case len(remaining) == 0:
		return
	case len(remaining) < smallThreshold:
		// Too small to amortize the batch prompt overhead.
		for _, item := range remaining {
			e.enhanceSingle(ctx, cat, item)
		}
	case len(remaining) <= chunkSize:
		e.processChunk(ctx, cat, remaining)
	default:
		for start := 0; start < len(remaining); start += chunkSize {
			end := start + chunkSize
			if end > len(remaining) {
				end = len(remaining)
			}
			e.processChunk(ctx, cat, remaining[start:end])
		}
	}
}

// processChunk issues one enhancement call for a chunk of same-category
// items and reconciles the response cardinality against the chunk size.
func (e *Engine) processChunk(ctx context.Context, cat category, chunk []*enhanceItem) {
	if e.client == nil {
		e.fallbackChunk(chunk, model.SourceSimulationFallback, simulationConfidence)
		return
	}

	originals := make([]string, len(chunk))
	for i, item := range chunk {
		originals[i] = stringValue(item.field.Value)
	}

	prompt := buildChunkPrompt(cat, originals)
	resp, err := e.callService(ctx, systemPromptFor(cat), prompt)
	if err != nil {
		zap.L().Warn("enhance: chunk call failed, falling back",
			zap.String("category", string(cat)),
			zap.Int("chunk_size", len(chunk)),
			zap.Error(err),
		)
		e.fallbackChunk(chunk, model.SourceBatchFallback, fallbackConfidence)
		return
	}

	results, perr := parseResultArray(extractText(resp))
	if perr != nil {
		zap.L().Warn("enhance: unparseable chunk response, falling back",
			zap.String("category", string(cat)),
			zap.Error(perr),
		)
		e.fallbackChunk(chunk, model.SourceBatchFallback, fallbackConfidence)
		return
	}

	e.recordSavings(len(chunk))

	switch {
	case len(results) == len(chunk):
		for i, item := range chunk {
			e.mergeResult(cat, item, originals[i], results[i], batchAIConfidence, model.SourceBatchAI)
		}
	case len(results) > len(chunk):
		// Extra results are discarded, never retried.
		for i, item := range chunk {
			e.mergeResult(cat, item, originals[i], results[i], reducedAIConfidence, model.SourceBatchAITruncated)
		}
	default:
		for i, item := range chunk {
			if i < len(results) {
				e.mergeResult(cat, item, originals[i], results[i], reducedAIConfidence, model.SourceBatchAIPartial)
			} else {
				e.fallbackItem(item, model.SourceBatchAIFallback, paddingConfidence)
			}
		}
	}
}

// enhanceSingle processes one item through a lightweight per-item call.
func (e *Engine) enhanceSingle(ctx context.Context, cat category, item *enhanceItem) {
	if e.client == nil {
		e.fallbackItem(item, model.SourceSimulationFallback, simulationConfidence)
		return
	}

	original := stringValue(item.field.Value)
	prompt := buildSinglePrompt(cat, original)
	resp, err := e.callService(ctx, systemPromptFor(cat), prompt)
	if err != nil {
		zap.L().Warn("enhance: single call failed, falling back",
			zap.String("category", string(cat)),
			zap.String("field", item.key),
			zap.Error(err),
		)
		e.fallbackItem(item, model.SourceBatchFallback, fallbackConfidence)
		return
	}

	results, perr := parseResultArray(extractText(resp))
	if perr != nil || len(results) == 0 {
		e.fallbackItem(item, model.SourceBatchFallback, fallbackConfidence)
		return
	}

	e.mergeResult(cat, item, original, results[0], batchAIConfidence, model.SourceBatchAI)
}

// callService makes one paced, sequential call to the enhancement
// service and accounts for its usage. The system prompt carries a cache
// breakpoint so repeated chunks reuse the warm prompt cache.
func (e *Engine) callService(ctx context.Context, system, prompt string) (*anthropic.MessageResponse, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	temperature := e.cfg.Temperature
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		System:      anthropic.BuildCachedSystemBlocks(system),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &temperature,
	})
	if err != nil {
		return nil, err
	}

	e.usage.Calls++
	if resp.Usage.Reported() {
		e.usage.InputTokens += resp.Usage.InputTokens
		e.usage.OutputTokens += resp.Usage.OutputTokens
		e.usage.EstimatedCostUSD += e.calc.Call(e.cfg.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	} else {
		e.usage.InputTokens += cost.EstimatedInputTokens
		e.usage.OutputTokens += cost.EstimatedOutputTokens
		e.usage.EstimatedCostUSD += e.calc.EstimatedCall(e.cfg.Model)
	}

	return resp, nil
}

// recordSavings estimates the cost avoided by sending n items in one
// call instead of n individual calls.
func (e *Engine) recordSavings(n int) {
	if n > 1 {
		e.usage.BatchSavingsUSD += float64(n-1) * e.calc.EstimatedCall(e.cfg.Model)
	}
}

// fallbackChunk resolves every item in a chunk through the local
// fallback policy.
func (e *Engine) fallbackChunk(chunk []*enhanceItem, source string, confidence int) {
	for _, item := range chunk {
		e.fallbackItem(item, source, confidence)
	}
}

// fallbackItem finalizes a field with its truncated pre-AI value.
func (e *Engine) fallbackItem(item *enhanceItem, source string, confidence int) {
	value := stringValue(item.field.Value)
	if len(value) > fallbackTruncateLen {
		value = value[:fallbackTruncateLen]
	}
	item.field.Value = value
	item.field.Confidence = confidence
	item.field.NeedsAI = false
	item.field.Source = source
	e.usage.FallbackResolved++
}

// applyCache finalizes an item from a previous result for the same
// (category, value-prefix) pair, at zero marginal cost.
func (e *Engine) applyCache(cat category, item *enhanceItem) bool {
	key := e.cacheKey(cat, stringValue(item.field.Value))
	entry, ok := e.cache[key]
	if !ok {
		return false
	}

	item.field.Value = entry.value
	item.field.Confidence = entry.confidence
	item.field.NeedsAI = false
	item.field.Source = model.SourceCache
	if len(entry.sideValues) > 0 {
		item.field.SideValues = entry.sideValues
	}
	e.usage.CacheHits++
	return true
}

// storeCache caches a successful result keyed by category and value
// prefix. Low-confidence results are not worth replaying.
func (e *Engine) storeCache(cat category, original string, field *model.CleanedField) {
	if field.Confidence < cacheMinConfidence {
		return
	}
	e.cache[e.cacheKey(cat, original)] = cacheEntry{
		value:      field.Value,
		sideValues: field.SideValues,
		confidence: field.Confidence,
	}
}

func (e *Engine) cacheKey(cat category, value string) string {
	value = strings.TrimSpace(value)
	if len(value) > cacheKeyPrefixLen {
		value = value[:cacheKeyPrefixLen]
	}
	return string(cat) + "|" + value
}

func (e *Engine) chunkSize() int {
	if e.cfg.ChunkSize > 0 {
		return e.cfg.ChunkSize
	}
	return 8
}

func (e *Engine) smallBatchThreshold() int {
	if e.cfg.SmallBatchThreshold > 0 {
		return e.cfg.SmallBatchThreshold
	}
	return 3
}

// stringValue renders a field value for prompting and fallbacks.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case model.Dimensions:
		return encodeDimensions(t)
	case model.MaterialSplit:
		return strings.TrimSpace(t.FrameMaterial + " " + t.LensMaterial)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractText concatenates all text content blocks from a response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSONArray extracts a JSON array from text that may contain
// markdown code fences or surrounding prose. A bare object is wrapped
// into a one-element array.
func cleanJSONArray(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start >= 0 && end > start {
		return strings.TrimSpace(text[start : end+1])
	}

	start = strings.Index(text, "{")
	end = strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		return "[" + strings.TrimSpace(text[start:end+1]) + "]"
	}

	return text
}

// parseResultArray parses the service response into loosely-typed
// result objects.
func parseResultArray(text string) ([]map[string]any, error) {
	var results []map[string]any
	if err := json.Unmarshal([]byte(cleanJSONArray(text)), &results); err != nil {
		return nil, err
	}
	return results, nil
}
