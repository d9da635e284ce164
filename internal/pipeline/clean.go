package pipeline

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

// Cleaning confidence levels.
const (
	emptyValueConfidence    = 0
	genericBaseConfidence   = 60
	whitespaceBonus         = 5
	dimensionConfidence     = 85
	materialConfidence      = 90
	polarizationConfidence  = 95
	domainRuleConfidence    = 95
	preAIConfidenceCap      = 70
	longValueThreshold      = 80
	descriptionAIThreshold  = 100
	shortCharacteristicsLen = 50
)

// Labeled dimension extractors, e.g. "Width: 52 Bridge: 18 Arms: 140".
var dimensionPatterns = []struct {
	key string
	re  *regexp.Regexp
}{
	{model.DimLensWidth, regexp.MustCompile(`(?i)width\s*:?\s*(\d+(?:\.\d+)?)`)},
	{model.DimLensHeight, regexp.MustCompile(`(?i)height\s*:?\s*(\d+(?:\.\d+)?)`)},
	{model.DimBridgeWidth, regexp.MustCompile(`(?i)bridge\s*:?\s*(\d+(?:\.\d+)?)`)},
	{model.DimTempleLength, regexp.MustCompile(`(?i)(?:arms?|temple)\s*:?\s*(\d+(?:\.\d+)?)`)},
}

var (
	frameMaterialRe = regexp.MustCompile(`(?i)frame\s*:\s*([^,;]+?)(?:\s+lens\s*:|$)`)
	lensMaterialRe  = regexp.MustCompile(`(?i)lens\s*:\s*([^,;]+)`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// colorRules maps a literal lowercase substring found in a color value
// to its base color and full color description. First match wins.
var colorRules = []struct {
	literal     string
	base        string
	description string
}{
	{"shiny black", "Black", "Shiny Black"},
	{"matte black", "Black", "Matte Black"},
	{"shiny gold", "Gold", "Shiny Gold"},
	{"shiny silver", "Silver", "Shiny Silver"},
	{"matte tortoise", "Tortoise", "Matte Tortoise"},
	{"dark havana", "Havana", "Dark Havana"},
	{"havana", "Havana", "Havana"},
	{"tortoise", "Tortoise", "Tortoise"},
	{"gunmetal", "Gunmetal", "Gunmetal"},
	{"transparent", "Crystal", "Transparent"},
}

// materialRules maps a literal marker in a material value to the
// canonical material name. Markers are matched on the normalized value
// (lowercase, separators stripped) so "100% Acetate" and "100%Acetate"
// both hit.
var materialRules = []struct {
	marker   string
	material string
}{
	{"100acetate", "Acetate"},
	{"acetate", "Acetate"},
	{"stainlesssteel", "Stainless Steel"},
	{"titanium", "Titanium"},
	{"tr90", "TR90"},
	{"injected", "Injected"},
	{"propionate", "Propionate"},
}

// noAIFieldSubstrings lists field-name fragments that never need
// semantic cleanup regardless of value length.
var noAIFieldSubstrings = []string{
	"link", "code", "ean", "upc", "reference", "retailprice", "price", "quantity", "total",
}

// CleanField applies the deterministic cleaning policy to one raw value.
// Pure function: identical inputs always yield identical outputs.
func CleanField(fieldKey, rawValue string) *model.CleanedField {
	field := &model.CleanedField{Key: fieldKey, Value: rawValue}

	// 1. Empty values short-circuit all processing.
	if rawValue == "" {
		field.Confidence = emptyValueConfidence
		return field
	}

	lowerKey := strings.ToLower(fieldKey)

	// 2. Obvious-pattern extraction, before generic cleaning.
	if done := extractObvious(field, lowerKey, rawValue); done {
		return field
	}

	// 3. Generic cleaning: collapse whitespace runs and trim.
	cleaned := strings.TrimSpace(whitespaceRunRe.ReplaceAllString(rawValue, " "))
	field.Value = cleaned
	field.Confidence = genericBaseConfidence
	if cleaned != rawValue {
		field.Confidence += whitespaceBonus
		field.Notes = append(field.Notes, "whitespace-normalized")
	}

	// 4. AI-need decision.
	field.NeedsAI = needsAI(lowerKey, cleaned)

	// 5. Deterministic domain rules override the AI flag.
	if field.NeedsAI {
		applyDomainRules(field, lowerKey, cleaned)
	}

	if field.NeedsAI && field.Confidence > preAIConfidenceCap {
		field.Confidence = preAIConfidenceCap
	}

	return field
}

// extractObvious runs the labeled-pattern extractors. Returns true when
// a pattern resolved the field.
func extractObvious(field *model.CleanedField, lowerKey, rawValue string) bool {
	if strings.Contains(lowerKey, "size") || strings.Contains(lowerKey, "dimension") {
		if hasDimensionLabel(rawValue) {
			dims := make(model.Dimensions)
			for _, p := range dimensionPatterns {
				if m := p.re.FindStringSubmatch(rawValue); m != nil {
					if v, err := strconv.ParseFloat(m[1], 64); err == nil {
						dims[p.key] = v
					}
				}
			}
			if len(dims) > 0 {
				field.Value = dims
				field.Confidence = dimensionConfidence
				field.Source = model.SourceRule
				field.Notes = append(field.Notes, "dimension-labels")
				return true
			}
		}
	}

	if strings.Contains(lowerKey, "material") {
		lower := strings.ToLower(rawValue)
		if strings.Contains(lower, "frame:") || strings.Contains(lower, "lens:") {
			split := model.MaterialSplit{}
			if m := frameMaterialRe.FindStringSubmatch(rawValue); m != nil {
				split.FrameMaterial = strings.TrimSpace(m[1])
			}
			if m := lensMaterialRe.FindStringSubmatch(rawValue); m != nil {
				split.LensMaterial = strings.TrimSpace(m[1])
			}
			field.Value = split
			field.Confidence = materialConfidence
			field.Source = model.SourceRule
			field.Notes = append(field.Notes, "material-labels")
			return true
		}
	}

	if strings.Contains(lowerKey, "polar") {
		switch strings.ToLower(strings.TrimSpace(rawValue)) {
		case "yes", "true":
			field.Value = true
		case "no", "false":
			field.Value = false
		default:
			return false
		}
		field.Confidence = polarizationConfidence
		field.Source = model.SourceRule
		field.Notes = append(field.Notes, "polarization-boolean")
		return true
	}

	return false
}

func hasDimensionLabel(v string) bool {
	lower := strings.ToLower(v)
	for _, label := range []string{"width", "height", "bridge", "arms", "temple"} {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}

// needsAI decides deterministically whether a field requires the
// enhancement service. Ordered: forced-true predicates, then the
// allow-list, then the generic length rule.
func needsAI(lowerKey, value string) bool {
	// Color categories always need semantic splitting when non-trivial.
	if strings.Contains(lowerKey, "color") && len(value) > 2 {
		return true
	}

	if (strings.Contains(lowerKey, "description") || strings.Contains(lowerKey, "size")) &&
		len(value) > descriptionAIThreshold {
		return true
	}

	if strings.Contains(lowerKey, "name") && strings.Contains(value, " ") {
		return false
	}
	if strings.Contains(lowerKey, "characteristic") && len(value) < shortCharacteristicsLen {
		return false
	}
	for _, sub := range noAIFieldSubstrings {
		if strings.Contains(lowerKey, sub) {
			return false
		}
	}

	return len(value) > longValueThreshold
}

// applyDomainRules checks the literal rule tables and, on a hit, clears
// the AI flag with rule provenance. A rule hit here is never counted as
// an AI cost.
func applyDomainRules(field *model.CleanedField, lowerKey, value string) {
	if strings.Contains(lowerKey, "color") {
		lower := strings.ToLower(value)
		for _, rule := range colorRules {
			if strings.Contains(lower, rule.literal) {
				field.Value = rule.base
				field.SideValues = map[string]any{"colorDescription": rule.description}
				field.Confidence = domainRuleConfidence
				field.NeedsAI = false
				field.Source = model.SourceRule
				field.Notes = append(field.Notes, "color-literal:"+rule.literal)
				return
			}
		}
	}

	if strings.Contains(lowerKey, "material") {
		normValue := Normalize(value)
		for _, rule := range materialRules {
			if strings.Contains(normValue, rule.marker) {
				field.Value = rule.material
				field.Confidence = domainRuleConfidence
				field.NeedsAI = false
				field.Source = model.SourceRule
				field.Notes = append(field.Notes, "material-literal:"+rule.marker)
				return
			}
		}
	}
}

// CleanBatch cleans every mapped field of every row and re-keys values
// from source headers to canonical field keys.
func CleanBatch(rows []model.RawRecord, mapping *model.ColumnMapping) ([]model.CleanedRow, model.CleanStats) {
	stats := model.CleanStats{}
	cleanedRows := make([]model.CleanedRow, 0, len(rows))

	keys := orderedMappedKeys(mapping)

	for _, row := range rows {
		cleaned := make(model.CleanedRow, len(keys))
		for _, key := range keys {
			header := mapping.FieldToHeader[key]
			field := CleanField(key, row[header])
			cleaned[key] = field

			stats.TotalFields++
			if field.NeedsAI {
				stats.NeedsAI++
			} else if field.Source == model.SourceRule {
				stats.RuleResolved++
			}
		}
		cleanedRows = append(cleanedRows, cleaned)
	}

	zap.L().Info("cleaner: batch cleaned",
		zap.Int("rows", len(rows)),
		zap.Int("fields", stats.TotalFields),
		zap.Int("rule_resolved", stats.RuleResolved),
		zap.Int("needs_ai", stats.NeedsAI),
	)

	return cleanedRows, stats
}

// orderedMappedKeys returns the mapped field keys in a stable order so
// grouping and chunking downstream are deterministic.
func orderedMappedKeys(mapping *model.ColumnMapping) []string {
	keys := make([]string, 0, len(mapping.FieldToHeader))
	for key := range mapping.FieldToHeader {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
