package pipeline

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/samrub06/csv-converter-ai/internal/model"
	"github.com/samrub06/csv-converter-ai/internal/schema"
)

// Default values applied to canonical fields left empty after
// enhancement.
var fieldDefaults = map[string]string{
	"quantity": "1",
	"gender":   "Unisex",
}

// darkColors drive the category derivation: classic dark colorways sell
// as optical frames, everything else as fashion.
var darkColors = map[string]bool{
	"black": true, "havana": true, "tortoise": true, "gunmetal": true,
	"brown": true, "grey": true, "gray": true,
}

// AssembleRows converts enhanced rows into canonical output rows for
// the record type, applying defaults and derived fields. A row that
// fails to transform is counted and excluded; the rest of the batch
// proceeds.
func AssembleRows(t model.RecordType, rows []model.CleanedRow) ([]map[string]string, model.AssembleStats) {
	fields := schema.Get(t)
	stats := model.AssembleStats{RowsIn: len(rows)}

	out := make([]map[string]string, 0, len(rows))
	for i, row := range rows {
		canonical, err := assembleRow(fields, row)
		if err != nil {
			stats.RowsFailed++
			zap.L().Warn("assemble: row failed, skipping",
				zap.Int("row", i),
				zap.Error(err),
			)
			continue
		}
		out = append(out, canonical)
		stats.RowsOut++
	}

	return out, stats
}

func assembleRow(fields []schema.Field, row model.CleanedRow) (canonical map[string]string, err error) {
	// A malformed value must not take the batch down with it.
	defer func() {
		if r := recover(); r != nil {
			canonical = nil
			err = recoveredError(r)
		}
	}()

	canonical = make(map[string]string, len(fields))
	for _, f := range fields {
		canonical[f.Key] = ""
	}

	for key, field := range row {
		if field == nil {
			continue
		}
		switch v := field.Value.(type) {
		case model.Dimensions:
			// Structured dimensions flatten into their own columns.
			for dimKey, dimValue := range v {
				if _, ok := canonical[dimKey]; ok && canonical[dimKey] == "" {
					canonical[dimKey] = trimFloat(dimValue)
				}
			}
			canonical[key] = encodeDimensions(v)
		case model.MaterialSplit:
			setIfEmpty(canonical, "frameMaterial", v.FrameMaterial)
			setIfEmpty(canonical, "lensMaterial", v.LensMaterial)
			canonical[key] = strings.TrimSpace(v.FrameMaterial)
		default:
			if _, ok := canonical[key]; ok {
				canonical[key] = stringValue(field.Value)
			}
		}

		for sideKey, sideValue := range field.SideValues {
			setIfEmpty(canonical, sideKey, stringValue(sideValue))
		}
	}

	applyDefaults(canonical)
	deriveCategory(canonical)

	return canonical, nil
}

func setIfEmpty(canonical map[string]string, key, value string) {
	if value == "" {
		return
	}
	if existing, ok := canonical[key]; ok && existing == "" {
		canonical[key] = value
	}
}

func applyDefaults(canonical map[string]string) {
	for key, def := range fieldDefaults {
		setIfEmpty(canonical, key, def)
	}
}

// deriveCategory fills an empty category from the base color: dark
// classic colorways default to Optical, the rest to Fashion.
func deriveCategory(canonical map[string]string) {
	if existing, ok := canonical["category"]; !ok || existing != "" {
		return
	}
	color := strings.ToLower(canonical["color"])
	if color == "" {
		return
	}
	if darkColors[color] {
		canonical["category"] = "Optical"
	} else {
		canonical["category"] = "Fashion"
	}
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{value: r}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("assemble: row panic: %v", e.value)
}
