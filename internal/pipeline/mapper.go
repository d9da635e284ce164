package pipeline

import (
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/samrub06/csv-converter-ai/internal/model"
	"github.com/samrub06/csv-converter-ai/internal/schema"
)

// Mapping confidence levels.
const (
	exactMatchConfidence     = 95
	compositeSizeConfidence  = 85
	looseSizeConfidence      = 70
	characteristicConfidence = 80
	minMatchConfidence       = 60
)

// diacriticFolder strips combining marks so accented supplier headers
// ("matière", "catégorie") normalize to their ASCII synonyms.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a string, folds diacritics, and strips everything
// that is not a letter or digit. Applied to both input headers and
// synonym patterns before any comparison. Idempotent.
func Normalize(s string) string {
	if folded, _, err := transform.String(diacriticFolder, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapColumns assigns input headers to canonical field keys for the
// given record type. Greedy and order-dependent: headers are evaluated
// in input order, first match wins, and a consumed header or filled
// field is skipped for subsequent candidates. The result is an
// injective partial mapping.
func MapColumns(headers []string, t model.RecordType) *model.ColumnMapping {
	fields := schema.Get(t)

	mapping := &model.ColumnMapping{
		FieldToHeader: make(map[string]string),
		Confidence:    make(map[string]int),
	}

	consumed := make(map[string]bool, len(headers)) // by original header
	filled := make(map[string]bool, len(fields))    // by field key

	for _, header := range headers {
		normHeader := Normalize(header)
		if normHeader == "" {
			continue
		}

		key, confidence := matchHeader(normHeader, fields, filled)
		if key == "" {
			continue
		}

		mapping.FieldToHeader[key] = header
		mapping.Confidence[key] = confidence
		consumed[header] = true
		filled[key] = true
	}

	if t == model.RecordTypeFrame {
		resolveCompositeSize(headers, mapping, consumed, filled)
		preferCharacteristicsForMaterial(headers, mapping, consumed, filled)
	}

	for _, header := range headers {
		if !consumed[header] {
			mapping.UnmappedHeaders = append(mapping.UnmappedHeaders, header)
		}
	}
	for _, f := range fields {
		if !filled[f.Key] {
			mapping.UnmatchedFields = append(mapping.UnmatchedFields, f.Key)
		}
	}

	zap.L().Debug("mapper: mapped columns",
		zap.String("type", string(t)),
		zap.Int("mapped", len(mapping.FieldToHeader)),
		zap.Int("unmapped_headers", len(mapping.UnmappedHeaders)),
		zap.Float64("avg_confidence", mapping.AverageConfidence()),
	)

	return mapping
}

// matchHeader finds the first unfilled field whose synonym patterns
// match the normalized header. Exact matches are tried across all
// fields before any substring match is considered.
func matchHeader(normHeader string, fields []schema.Field, filled map[string]bool) (string, int) {
	for _, f := range fields {
		if filled[f.Key] {
			continue
		}
		for _, pattern := range schema.PatternsForField(f.Key) {
			if normHeader == pattern {
				return f.Key, exactMatchConfidence
			}
		}
	}

	for _, f := range fields {
		if filled[f.Key] {
			continue
		}
		for _, pattern := range schema.PatternsForField(f.Key) {
			if strings.Contains(normHeader, pattern) || strings.Contains(pattern, normHeader) {
				return f.Key, substringConfidence(normHeader, pattern)
			}
		}
	}

	return "", 0
}

// substringConfidence scales with length similarity: the closer the
// header and pattern lengths, the higher the confidence.
func substringConfidence(a, b string) int {
	shorter, longer := len(a), len(b)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	confidence := int(math.Round(70 + 25*float64(shorter)/float64(longer)))
	if confidence < minMatchConfidence {
		confidence = minMatchConfidence
	}
	return confidence
}

// compositeSizePatterns are generic size headers that encode several
// dimensions in one column (e.g. "52-18-140").
var compositeSizePatterns = []string{"size", "dimensions", "measurements", "sizing", "taille"}

// resolveCompositeSize maps a generic size header onto the size field
// when no individual dimension field was mapped. Decomposition into
// sub-dimensions is deferred to the cleaner.
func resolveCompositeSize(headers []string, mapping *model.ColumnMapping, consumed, filled map[string]bool) {
	if filled[model.DimLensWidth] || filled[model.DimBridgeWidth] || filled[model.DimTempleLength] {
		return
	}
	if filled["size"] {
		return
	}

	for _, header := range headers {
		if consumed[header] {
			continue
		}
		normHeader := Normalize(header)
		for _, pattern := range compositeSizePatterns {
			if normHeader == pattern || strings.Contains(normHeader, pattern) {
				confidence := looseSizeConfidence
				if normHeader == "size" {
					confidence = compositeSizeConfidence
				}
				mapping.FieldToHeader["size"] = header
				mapping.Confidence["size"] = confidence
				consumed[header] = true
				filled["size"] = true
				return
			}
		}
	}
}

// preferCharacteristicsForMaterial reassigns the material field to a
// characteristics-style header when material was left unfilled or was
// taken from a composition column. In source catalogs the
// characteristics column carries richer free text than composition.
func preferCharacteristicsForMaterial(headers []string, mapping *model.ColumnMapping, consumed, filled map[string]bool) {
	materialHeader := mapping.FieldToHeader["material"]
	materialFromComposition := materialHeader != "" && strings.Contains(Normalize(materialHeader), "composition")
	if filled["material"] && !materialFromComposition {
		return
	}

	for _, header := range headers {
		if consumed[header] {
			continue
		}
		if !strings.Contains(Normalize(header), "characteristic") && !strings.Contains(Normalize(header), "caracteristique") {
			continue
		}

		if materialFromComposition {
			// The composition header goes back to the unmapped pool.
			consumed[materialHeader] = false
		}
		mapping.FieldToHeader["material"] = header
		mapping.Confidence["material"] = characteristicConfidence
		consumed[header] = true
		filled["material"] = true
		return
	}
}
