package schema

// fieldPatterns lists the known header synonyms per canonical field key.
// Patterns are compared after normalization, so they are written in
// already-normalized form (lowercase, no separators). Order matters: the
// column mapper is first-match-wins within a field's pattern list.
var fieldPatterns = map[string][]string{
	"sku":                 {"sku", "reference", "ref", "itemcode", "articlenumber", "articlecode", "productcode"},
	"name":                {"name", "productname", "title", "designation", "libelle"},
	"brand":               {"brand", "manufacturer", "marque", "maker"},
	"model":               {"model", "modelnumber", "modele"},
	"collection":          {"collection", "line", "series"},
	"color":               {"color", "colour", "framecolor", "framecolour", "basecolor", "couleur"},
	"colorDescription":    {"colordescription", "colourdescription", "colorname", "colordetail"},
	"category":            {"category", "producttype", "categorie"},
	"gender":              {"gender", "sex", "genre"},
	"frameType":           {"frametype"},
	"frameShape":          {"frameshape", "shape", "forme"},
	"rimType":             {"rimtype", "rim"},
	"hingeType":           {"hingetype", "hinge"},
	"material":            {"material", "composition", "matiere", "materiau"},
	"frameMaterial":       {"framematerial"},
	"lensMaterial":        {"lensmaterial", "glassmaterial"},
	"lensWidth":           {"lenswidth", "lenssize", "eyesize", "caliber", "calibre"},
	"bridgeWidth":         {"bridgewidth", "bridge", "bridgesize", "nosebridge"},
	"templeLength":        {"templelength", "temple", "armlength", "templesize", "branche"},
	"lensHeight":          {"lensheight", "height", "hauteur"},
	"size":                {"size", "dimensions", "measurements", "sizing", "taille"},
	"polarized":           {"polarized", "polarised", "polarization", "polarisant"},
	"uvProtection":        {"uvprotection", "uv", "uvfilter"},
	"description":         {"description", "longdescription", "details", "summary"},
	"characteristics":     {"characteristics", "features", "caracteristiques", "attributes"},
	"quantity":            {"quantity", "qty", "stock", "quantite"},
	"price":               {"price", "unitprice", "wholesaleprice", "prix", "cost"},
	"retailPrice":         {"retailprice", "rrp", "msrp", "publicprice", "prixpublic"},
	"ean":                 {"ean", "ean13", "upc", "barcode", "gtin"},
	"link":                {"link", "url", "imageurl", "photo", "image"},
	"lensType":            {"lenstype", "visiontype"},
	"refractiveIndex":     {"refractiveindex", "index", "indice"},
	"coating":             {"coating", "treatment", "traitement"},
	"diameter":            {"diameter", "diametre"},
	"sphere":              {"sphere", "sph", "power", "puissance"},
	"cylinder":            {"cylinder", "cyl"},
	"baseCurve":           {"basecurve", "bc", "curvature"},
	"waterContent":        {"watercontent", "hydration", "hydrophilie"},
	"replacementSchedule": {"replacementschedule", "replacement", "wearcycle", "renouvellement"},
	"packSize":            {"packsize", "packof", "unitsperbox", "boxcount"},
}

// PatternsForField returns the normalized header synonyms for a field
// key, or nil when the field has none.
func PatternsForField(key string) []string {
	return fieldPatterns[key]
}
