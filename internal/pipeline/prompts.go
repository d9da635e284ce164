package pipeline

import (
	"fmt"
	"strings"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

// category is the semantic grouping of a flagged field.
type category string

const (
	catColor           category = "color"
	catDescription     category = "description"
	catCharacteristics category = "characteristics"
	catName            category = "name"
	catSize            category = "size"
	catOther           category = "other"
)

// categoryOrder returns the processing order of category groups.
func categoryOrder() []category {
	return []category{catColor, catDescription, catCharacteristics, catName, catSize, catOther}
}

// categoryPredicates is the ordered first-match-wins table mapping field
// key substrings to categories. The priority order is load-bearing:
// "colorDescription" must land in color, not description.
var categoryPredicates = []struct {
	cat        category
	substrings []string
}{
	{catColor, []string{"color", "colour"}},
	{catDescription, []string{"description"}},
	{catCharacteristics, []string{"characteristic", "feature", "polarized", "uv", "protection", "category"}},
	{catName, []string{"name", "model", "product", "sku"}},
	{catSize, []string{"size", "dimension", "lens", "bridge", "temple", "width", "height", "length"}},
}

// categorize assigns a canonical field key to its enhancement category.
func categorize(fieldKey string) category {
	lower := strings.ToLower(fieldKey)
	for _, p := range categoryPredicates {
		for _, sub := range p.substrings {
			if strings.Contains(lower, sub) {
				return p.cat
			}
		}
	}
	return catOther
}

// Per-category instruction templates. Each describes the exact JSON
// array shape expected back; values are listed in numbered order and
// response index i is assumed to correspond to input index i.
var systemPrompts = map[category]string{
	catColor: `You normalize eyewear color values. For each numbered input value, return one JSON object with keys: "baseColor" (single canonical color word), "colorDescription" (full cleaned color name), "hasLens" (boolean, true if the value implies tinted lenses). Respond with only a JSON array of these objects, one per input, in input order.`,

	catDescription: `You summarize eyewear product descriptions. For each numbered input value, return one JSON object with keys: "summary" (cleaned one-sentence description), "gender" (Men/Women/Unisex or empty), "model" (model name if present), "collection" (collection name if present), "frameType" (full-rim/half-rim/rimless or empty), "frameShape" (rectangular/round/square/oval/cat-eye or empty). Respond with only a JSON array, one object per input, in input order.`,

	catCharacteristics: `You extract eyewear product attributes. For each numbered input value, return one JSON object with keys: "polarized" (boolean), "uv" (UV protection level or empty), "protection" (protection class or empty), "category" (Sunglasses/Optical/Sport or empty). Respond with only a JSON array, one object per input, in input order.`,

	catName: `You normalize eyewear product names. For each numbered input value, return one JSON object with keys: "productName" (cleaned product name), "modelNumber" (model reference if present), "brand" (brand name if present). Respond with only a JSON array, one object per input, in input order.`,

	catSize: `You parse eyewear size strings. For each numbered input value, return one JSON object with numeric keys where present: "lensWidth", "bridgeWidth", "templeLength", "lensHeight" (millimeters, omit keys you cannot determine). Respond with only a JSON array, one object per input, in input order.`,

	catOther: `You clean product data values. For each numbered input value, return one JSON object with keys: "cleanedValue" (the cleaned value) and "confidence" (0-100). Respond with only a JSON array, one object per input, in input order.`,
}

func systemPromptFor(cat category) string {
	return systemPrompts[cat]
}

// buildChunkPrompt lists the chunk's values in a fixed numbered order
// matching the chunk order.
func buildChunkPrompt(cat category, values []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze these %d values:\n", len(values))
	for i, v := range values {
		fmt.Fprintf(&b, "%d. %s\n", i+1, v)
	}
	return b.String()
}

// buildSinglePrompt is the lightweight per-item variant.
func buildSinglePrompt(cat category, value string) string {
	return "Analyze this value:\n1. " + value + "\n"
}

// keyAliases expands the abbreviated keys the service sometimes uses in
// place of the canonical names. When both appear, the canonical name
// wins.
var keyAliases = map[category]map[string]string{
	catColor: {
		"bc": "baseColor", "cd": "colorDescription", "hl": "hasLens",
	},
	catDescription: {
		"s": "summary", "g": "gender", "m": "model", "c": "collection",
		"ft": "frameType", "fs": "frameShape",
	},
	catCharacteristics: {
		"p": "polarized", "u": "uv", "pr": "protection", "c": "category",
	},
	catName: {
		"pn": "productName", "mn": "modelNumber", "b": "brand",
	},
	catSize: {
		"lw": "lensWidth", "bw": "bridgeWidth", "tl": "templeLength", "lh": "lensHeight",
	},
	catOther: {
		"cv": "cleanedValue", "conf": "confidence",
	},
}

// expandAliases rewrites abbreviated keys to canonical names.
func expandAliases(cat category, raw map[string]any) map[string]any {
	aliases := keyAliases[cat]
	if len(aliases) == 0 {
		return raw
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if canonical, ok := aliases[k]; ok {
			if _, exists := raw[canonical]; exists {
				continue // canonical key present, abbreviation loses
			}
			out[canonical] = v
			continue
		}
		out[k] = v
	}
	return out
}

// mergeResult applies one reconciled result object onto its field,
// using the typed merge for the item's category, then records the
// resolution and feeds the cache.
func (e *Engine) mergeResult(cat category, item *enhanceItem, original string, raw map[string]any, confidence int, source string) {
	raw = expandAliases(cat, raw)

	switch cat {
	case catColor:
		mergeColor(item, colorResultFrom(raw))
	case catDescription:
		mergeDescription(item, descriptionResultFrom(raw))
	case catCharacteristics:
		mergeCharacteristics(item, characteristicsResultFrom(raw))
	case catName:
		mergeName(item, nameResultFrom(raw))
	case catSize:
		mergeSize(item, sizeResultFrom(raw))
	default:
		mergeOther(item, otherResultFrom(raw))
	}

	item.field.Confidence = confidence
	item.field.NeedsAI = false
	item.field.Source = source
	e.usage.BatchResolved++
	e.storeCache(cat, original, item.field)
}

// --- Typed enhancement outcomes, one per category ---

type colorResult struct {
	BaseColor        string
	ColorDescription string
	HasLens          *bool
}

func colorResultFrom(raw map[string]any) colorResult {
	r := colorResult{
		BaseColor:        asString(raw["baseColor"]),
		ColorDescription: asString(raw["colorDescription"]),
	}
	if b, ok := raw["hasLens"].(bool); ok {
		r.HasLens = &b
	}
	return r
}

func mergeColor(item *enhanceItem, r colorResult) {
	if r.BaseColor != "" {
		item.field.Value = r.BaseColor
	}
	side := map[string]any{}
	if r.ColorDescription != "" {
		side["colorDescription"] = r.ColorDescription
	}
	if r.HasLens != nil {
		side["hasLens"] = *r.HasLens
	}
	if len(side) > 0 {
		item.field.SideValues = side
	}
	writeSibling(item.row, "colorDescription", r.ColorDescription, model.SourceBatchAI)
}

type descriptionResult struct {
	Summary    string
	Gender     string
	Model      string
	Collection string
	FrameType  string
	FrameShape string
}

func descriptionResultFrom(raw map[string]any) descriptionResult {
	return descriptionResult{
		Summary:    asString(raw["summary"]),
		Gender:     asString(raw["gender"]),
		Model:      asString(raw["model"]),
		Collection: asString(raw["collection"]),
		FrameType:  asString(raw["frameType"]),
		FrameShape: asString(raw["frameShape"]),
	}
}

func mergeDescription(item *enhanceItem, r descriptionResult) {
	if r.Summary != "" {
		item.field.Value = r.Summary
	}
	side := map[string]any{}
	for k, v := range map[string]string{
		"gender": r.Gender, "model": r.Model, "collection": r.Collection,
		"frameType": r.FrameType, "frameShape": r.FrameShape,
	} {
		if v != "" {
			side[k] = v
		}
	}
	if len(side) > 0 {
		item.field.SideValues = side
	}
	// Enhancement of a description may populate empty siblings.
	writeSibling(item.row, "frameType", r.FrameType, model.SourceDescriptionAnalysis)
	writeSibling(item.row, "frameShape", r.FrameShape, model.SourceDescriptionAnalysis)
}

type characteristicsResult struct {
	Polarized  *bool
	UV         string
	Protection string
	Category   string
}

func characteristicsResultFrom(raw map[string]any) characteristicsResult {
	r := characteristicsResult{
		UV:         asString(raw["uv"]),
		Protection: asString(raw["protection"]),
		Category:   asString(raw["category"]),
	}
	if b, ok := raw["polarized"].(bool); ok {
		r.Polarized = &b
	}
	return r
}

func mergeCharacteristics(item *enhanceItem, r characteristicsResult) {
	if strings.Contains(strings.ToLower(item.key), "polar") && r.Polarized != nil {
		item.field.Value = *r.Polarized
	}
	side := map[string]any{}
	if r.Polarized != nil {
		side["polarized"] = *r.Polarized
	}
	for k, v := range map[string]string{
		"uvProtection": r.UV, "protection": r.Protection, "category": r.Category,
	} {
		if v != "" {
			side[k] = v
		}
	}
	if len(side) > 0 {
		item.field.SideValues = side
	}
	writeSibling(item.row, "uvProtection", r.UV, model.SourceBatchAI)
	writeSibling(item.row, "category", r.Category, model.SourceBatchAI)
}

type nameResult struct {
	ProductName string
	ModelNumber string
	Brand       string
}

func nameResultFrom(raw map[string]any) nameResult {
	return nameResult{
		ProductName: asString(raw["productName"]),
		ModelNumber: asString(raw["modelNumber"]),
		Brand:       asString(raw["brand"]),
	}
}

func mergeName(item *enhanceItem, r nameResult) {
	if r.ProductName != "" {
		item.field.Value = r.ProductName
	}
	side := map[string]any{}
	if r.ModelNumber != "" {
		side["model"] = r.ModelNumber
	}
	if r.Brand != "" {
		side["brand"] = r.Brand
	}
	if len(side) > 0 {
		item.field.SideValues = side
	}
	writeSibling(item.row, "model", r.ModelNumber, model.SourceBatchAI)
	writeSibling(item.row, "brand", r.Brand, model.SourceBatchAI)
}

type sizeResult struct {
	Dims model.Dimensions
}

func sizeResultFrom(raw map[string]any) sizeResult {
	dims := make(model.Dimensions)
	for _, key := range []string{model.DimLensWidth, model.DimBridgeWidth, model.DimTempleLength, model.DimLensHeight} {
		if f, ok := asFloat(raw[key]); ok {
			dims[key] = f
		}
	}
	return sizeResult{Dims: dims}
}

func mergeSize(item *enhanceItem, r sizeResult) {
	if len(r.Dims) > 0 {
		item.field.Value = r.Dims
	}
}

type otherResult struct {
	CleanedValue string
}

func otherResultFrom(raw map[string]any) otherResult {
	return otherResult{CleanedValue: asString(raw["cleanedValue"])}
}

func mergeOther(item *enhanceItem, r otherResult) {
	if r.CleanedValue != "" {
		item.field.Value = r.CleanedValue
	}
}

// writeSibling fills an empty canonical field on the same row with a
// value derived from another field's enhancement. Populated fields are
// never overwritten.
func writeSibling(row model.CleanedRow, key, value, source string) {
	if value == "" {
		return
	}
	if existing, ok := row[key]; ok {
		if existing.Value != nil && stringValue(existing.Value) != "" {
			return
		}
	}
	row[key] = &model.CleanedField{
		Key:        key,
		Value:      value,
		Confidence: batchAIConfidence,
		NeedsAI:    false,
		Source:     source,
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(t), "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
