// Package schema owns the canonical output schema: per record type, an
// ordered list of field keys with their user-facing labels, plus the
// known header synonyms used by the column mapper.
package schema

import "github.com/samrub06/csv-converter-ai/internal/model"

// Field pairs a canonical field key with its output column label.
type Field struct {
	Key   string
	Label string
}

// frameFields is the canonical FRAME schema, in output column order.
var frameFields = []Field{
	{Key: "sku", Label: "SKU"},
	{Key: "name", Label: "Product name"},
	{Key: "brand", Label: "Brand"},
	{Key: "model", Label: "Model"},
	{Key: "collection", Label: "Collection"},
	{Key: "color", Label: "Base color"},
	{Key: "colorDescription", Label: "Color description"},
	{Key: "category", Label: "Category"},
	{Key: "gender", Label: "Gender"},
	{Key: "frameType", Label: "Frame type"},
	{Key: "frameShape", Label: "Frame shape"},
	{Key: "rimType", Label: "Rim type"},
	{Key: "hingeType", Label: "Hinge type"},
	{Key: "material", Label: "Material"},
	{Key: "frameMaterial", Label: "Frame material"},
	{Key: "lensMaterial", Label: "Lens material"},
	{Key: "lensWidth", Label: "Lens width"},
	{Key: "bridgeWidth", Label: "Bridge width"},
	{Key: "templeLength", Label: "Temple length"},
	{Key: "lensHeight", Label: "Lens height"},
	{Key: "size", Label: "Size"},
	{Key: "polarized", Label: "Polarized"},
	{Key: "uvProtection", Label: "UV protection"},
	{Key: "description", Label: "Description"},
	{Key: "characteristics", Label: "Characteristics"},
	{Key: "quantity", Label: "Quantity"},
	{Key: "price", Label: "Price"},
	{Key: "retailPrice", Label: "Retail price"},
	{Key: "ean", Label: "EAN"},
	{Key: "link", Label: "Link"},
}

var lensFields = []Field{
	{Key: "sku", Label: "SKU"},
	{Key: "name", Label: "Product name"},
	{Key: "brand", Label: "Brand"},
	{Key: "lensType", Label: "Lens type"},
	{Key: "lensMaterial", Label: "Lens material"},
	{Key: "refractiveIndex", Label: "Refractive index"},
	{Key: "coating", Label: "Coating"},
	{Key: "diameter", Label: "Diameter"},
	{Key: "sphere", Label: "Sphere"},
	{Key: "cylinder", Label: "Cylinder"},
	{Key: "color", Label: "Tint"},
	{Key: "uvProtection", Label: "UV protection"},
	{Key: "description", Label: "Description"},
	{Key: "quantity", Label: "Quantity"},
	{Key: "price", Label: "Price"},
	{Key: "retailPrice", Label: "Retail price"},
	{Key: "ean", Label: "EAN"},
	{Key: "link", Label: "Link"},
}

var eyeGlassesFields = []Field{
	{Key: "sku", Label: "SKU"},
	{Key: "name", Label: "Product name"},
	{Key: "brand", Label: "Brand"},
	{Key: "model", Label: "Model"},
	{Key: "color", Label: "Base color"},
	{Key: "colorDescription", Label: "Color description"},
	{Key: "category", Label: "Category"},
	{Key: "gender", Label: "Gender"},
	{Key: "frameType", Label: "Frame type"},
	{Key: "frameShape", Label: "Frame shape"},
	{Key: "material", Label: "Material"},
	{Key: "lensWidth", Label: "Lens width"},
	{Key: "bridgeWidth", Label: "Bridge width"},
	{Key: "templeLength", Label: "Temple length"},
	{Key: "size", Label: "Size"},
	{Key: "polarized", Label: "Polarized"},
	{Key: "uvProtection", Label: "UV protection"},
	{Key: "description", Label: "Description"},
	{Key: "characteristics", Label: "Characteristics"},
	{Key: "quantity", Label: "Quantity"},
	{Key: "price", Label: "Price"},
	{Key: "retailPrice", Label: "Retail price"},
	{Key: "ean", Label: "EAN"},
	{Key: "link", Label: "Link"},
}

var contactLensFields = []Field{
	{Key: "sku", Label: "SKU"},
	{Key: "name", Label: "Product name"},
	{Key: "brand", Label: "Brand"},
	{Key: "baseCurve", Label: "Base curve"},
	{Key: "diameter", Label: "Diameter"},
	{Key: "waterContent", Label: "Water content"},
	{Key: "replacementSchedule", Label: "Replacement schedule"},
	{Key: "packSize", Label: "Pack size"},
	{Key: "sphere", Label: "Sphere"},
	{Key: "color", Label: "Tint"},
	{Key: "uvProtection", Label: "UV protection"},
	{Key: "description", Label: "Description"},
	{Key: "quantity", Label: "Quantity"},
	{Key: "price", Label: "Price"},
	{Key: "retailPrice", Label: "Retail price"},
	{Key: "ean", Label: "EAN"},
	{Key: "link", Label: "Link"},
}

var fieldsByType = map[model.RecordType][]Field{
	model.RecordTypeFrame:       frameFields,
	model.RecordTypeLens:        lensFields,
	model.RecordTypeEyeGlasses:  eyeGlassesFields,
	model.RecordTypeContactLens: contactLensFields,
}

// Get returns the ordered schema for a record type. Unknown types fall
// back to the FRAME schema, the richest one.
func Get(t model.RecordType) []Field {
	if fields, ok := fieldsByType[t]; ok {
		return fields
	}
	return frameFields
}

// Labels returns the ordered output column labels for a record type.
func Labels(t model.RecordType) []string {
	fields := Get(t)
	labels := make([]string, len(fields))
	for i, f := range fields {
		labels[i] = f.Label
	}
	return labels
}

// Keys returns the ordered canonical field keys for a record type.
func Keys(t model.RecordType) []string {
	fields := Get(t)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	return keys
}
