package pipeline

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/samrub06/csv-converter-ai/internal/model"
)

// typeKeywords maps each record type to its detection keyword set.
// Keywords are matched as substrings of the lowercased header text and,
// at lower weight, of sampled row values. Sets overlap on purpose
// ("lens" appears in frame headers too); the two-tier confidence below
// compensates for the dilution.
var typeKeywords = map[model.RecordType][]string{
	model.RecordTypeLens: {
		"coating", "sphere", "cylinder", "refractive", "diopter", "treatment", "tint",
	},
	model.RecordTypeFrame: {
		"frame", "bridge", "temple", "hinge", "rim", "acetate", "caliber",
	},
	model.RecordTypeEyeGlasses: {
		"eyeglass", "glasses", "optical", "prescription", "sunglass",
	},
	model.RecordTypeContactLens: {
		"contact", "curve", "water", "pack", "replacement",
	},
}

// sampleRowLimit bounds how many rows contribute values to classification.
const sampleRowLimit = 5

// headerMatchWeight and valueMatchWeight weight distinct keyword hits in
// headers versus sampled values.
const (
	headerMatchWeight = 2
	valueMatchWeight  = 1
)

// Classify scores headers and sampled row values against per-type
// keyword sets and returns the winning record type with a calibrated
// confidence. A zero total score yields UNKNOWN at confidence 0.
func Classify(headers []string, sampleRows []model.RawRecord) model.TypeDetection {
	headerText := strings.ToLower(strings.Join(headers, " "))

	if len(sampleRows) > sampleRowLimit {
		sampleRows = sampleRows[:sampleRowLimit]
	}
	var valueParts []string
	for _, row := range sampleRows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			valueParts = append(valueParts, row[k])
		}
	}
	valueText := strings.ToLower(strings.Join(valueParts, " "))

	scores := make(map[model.RecordType]int, len(typeKeywords))
	var matched []string
	total := 0

	for _, t := range model.AllRecordTypes() {
		score := 0
		for _, kw := range typeKeywords[t] {
			if strings.Contains(headerText, kw) {
				score += headerMatchWeight
				matched = append(matched, kw)
			} else if valueText != "" && strings.Contains(valueText, kw) {
				score += valueMatchWeight
				matched = append(matched, kw)
			}
		}
		if score > 0 {
			scores[t] = score
		}
		total += score
	}

	if total == 0 {
		return model.TypeDetection{
			Type:   model.RecordTypeUnknown,
			Scores: scores,
		}
	}

	// Strictly highest score wins; ties keep the first enumerated type.
	var best model.RecordType
	bestScore, secondScore := 0, 0
	for _, t := range model.AllRecordTypes() {
		s := scores[t]
		if s > bestScore {
			secondScore = bestScore
			bestScore = s
			best = t
		} else if s > secondScore {
			secondScore = s
		}
	}

	confidence := confidenceFor(bestScore, secondScore, total, len(scores))

	zap.L().Debug("classify: detected record type",
		zap.String("type", string(best)),
		zap.Int("confidence", confidence),
		zap.Int("best_score", bestScore),
		zap.Int("total_score", total),
	)

	return model.TypeDetection{
		Type:            best,
		Confidence:      confidence,
		MatchedKeywords: matched,
		Scores:          scores,
	}
}

// confidenceFor converts raw keyword scores into a confidence percentage.
// Single-type signal uses absolute step floors; contested signal uses
// relative dominance with ratio boosts and absolute floors. The two
// tiers avoid false high confidence on sparse signal and false low
// confidence on strong signal diluted by overlapping keyword sets.
func confidenceFor(best, second, total, typesScored int) int {
	if typesScored <= 1 {
		switch {
		case best >= 6:
			return 95
		case best >= 4:
			return 85
		case best >= 2:
			return 75
		default:
			return 60
		}
	}

	confidence := best * 100 / total
	if confidence > 95 {
		confidence = 95
	}

	if second > 0 {
		ratio := float64(best) / float64(second)
		if ratio >= 3 {
			confidence += 20
		} else if ratio >= 2 {
			confidence += 10
		}
	}

	if best >= 4 && confidence < 70 {
		confidence = 70
	} else if best >= 2 && confidence < 60 {
		confidence = 60
	}

	if confidence > 100 {
		confidence = 100
	}
	return confidence
}
