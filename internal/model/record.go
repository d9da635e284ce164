// Package model defines the shared types flowing through the conversion
// pipeline: raw records, record types, column mappings, cleaned fields,
// and run statistics.
package model

// RecordType is the detected product category of an ingestion batch.
// All rows in one file share a single type.
type RecordType string

const (
	RecordTypeLens        RecordType = "LENS"
	RecordTypeFrame       RecordType = "FRAME"
	RecordTypeEyeGlasses  RecordType = "EYE_GLASSES"
	RecordTypeContactLens RecordType = "CONTACT_LENS"
	RecordTypeUnknown     RecordType = "UNKNOWN"
)

// AllRecordTypes returns the known record types in enumeration order.
// Classification ties are broken by this order.
func AllRecordTypes() []RecordType {
	return []RecordType{
		RecordTypeLens,
		RecordTypeFrame,
		RecordTypeEyeGlasses,
		RecordTypeContactLens,
	}
}

// RawRecord maps a normalized header (lowercase, punctuation stripped) to
// the raw cell value. Created by ingestion and never mutated afterwards.
type RawRecord map[string]string

// FileData is the output of the ingestion stage for one file.
type FileData struct {
	Headers  []string
	Rows     []RawRecord
	FileName string
}

// TypeDetection is the classifier's verdict for one file.
type TypeDetection struct {
	Type            RecordType
	Confidence      int // 0..100
	MatchedKeywords []string
	Scores          map[RecordType]int
}

// ColumnMapping assigns at most one input header to each canonical field
// key. Computed once per record type and reused across all rows.
type ColumnMapping struct {
	FieldToHeader   map[string]string
	Confidence      map[string]int // per mapped field, 0..100
	UnmappedHeaders []string
	UnmatchedFields []string
}

// AverageConfidence returns the mean confidence across mapped fields,
// or 0 when nothing mapped.
func (m *ColumnMapping) AverageConfidence() float64 {
	if len(m.Confidence) == 0 {
		return 0
	}
	sum := 0
	for _, c := range m.Confidence {
		sum += c
	}
	return float64(sum) / float64(len(m.Confidence))
}

// MappedFraction returns the fraction of target fields that received a
// header, given the total number of fields in the schema.
func (m *ColumnMapping) MappedFraction(totalFields int) float64 {
	if totalFields == 0 {
		return 0
	}
	return float64(len(m.FieldToHeader)) / float64(totalFields)
}

// Acceptable reports whether the mapping clears the advisory coverage
// gate. Callers decide what to do with a failing mapping; the pipeline
// itself proceeds regardless.
func (m *ColumnMapping) Acceptable(totalFields int, minCoverage, minConfidence float64) bool {
	return m.MappedFraction(totalFields) >= minCoverage && m.AverageConfidence() >= minConfidence
}
