package utils

import "strings"

// Conversion factors into the base units: grams for weight, milliliters
// for volume. Conversions are pure scalar multiplication through the base.
var gramsPerUnit = map[string]float64{
	"g":  1,
	"kg": 1000,
	"mg": 0.001,
	"oz": 28.3495,
	"lb": 453.592,
}

var millilitersPerUnit = map[string]float64{
	"ml":     1,
	"l":      1000,
	"tsp":    4.92892,
	"tbsp":   14.7868,
	"floz":   29.5735,
	"cup":    240,
	"pint":   473.176,
	"quart":  946.353,
	"gallon": 3785.41,
}

// Free-text unit spellings mapped to canonical tokens. Unrecognized input
// passes through unchanged (permissive, not validating).
var unitSynonyms = map[string]string{
	"gram": "g", "grams": "g", "gr": "g",
	"kilogram": "kg", "kilograms": "kg", "kgs": "kg",
	"milligram": "mg", "milligrams": "mg",
	"ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbs": "tbsp",
	"fluid ounce": "floz", "fluid ounces": "floz", "fl oz": "floz",
	"cups": "cup",
	"pints": "pint", "pt": "pint",
	"quarts": "quart", "qt": "quart",
	"gallons": "gallon", "gal": "gallon",
	"pieces": "piece", "pc": "piece", "pcs": "piece",
	"servings": "serving", "srv": "serving",
	"slices": "slice",
	"scoops": "scoop",
}

// Approximate densities in g/ml for common foods, matched by substring
// against the food name in order. Used to bridge volume→weight requests
// that are otherwise physically ambiguous.
var foodDensities = []struct {
	match   string
	gPerML  float64
}{
	{"oatmeal", 0.41},
	{"oat", 0.41},
	{"water", 1.0},
	{"milk", 1.03},
	{"yogurt", 1.04},
	{"cream", 0.98},
	{"butter", 0.91},
	{"oil", 0.92},
	{"honey", 1.42},
	{"syrup", 1.33},
	{"flour", 0.53},
	{"sugar", 0.85},
	{"rice", 0.85},
	{"juice", 1.05},
}

// NormalizeUnit lowercases, trims, and folds synonym spellings into one
// canonical token per unit.
func NormalizeUnit(s string) string {
	u := strings.ToLower(strings.TrimSpace(s))
	if canon, ok := unitSynonyms[u]; ok {
		return canon
	}
	return u
}

// IsWeightUnit reports whether the canonical unit measures mass.
func IsWeightUnit(u string) bool {
	_, ok := gramsPerUnit[NormalizeUnit(u)]
	return ok
}

// IsVolumeUnit reports whether the canonical unit measures volume.
func IsVolumeUnit(u string) bool {
	_, ok := millilitersPerUnit[NormalizeUnit(u)]
	return ok
}

// ConvertWeight converts between two weight units through grams. Callers
// are expected to pass weight units; unknown units behave as grams.
func ConvertWeight(value float64, from, to string) float64 {
	grams := value * factorOr1(gramsPerUnit, from)
	return grams / factorOr1(gramsPerUnit, to)
}

// ConvertVolume converts between two volume units through milliliters.
func ConvertVolume(value float64, from, to string) float64 {
	ml := value * factorOr1(millilitersPerUnit, from)
	return ml / factorOr1(millilitersPerUnit, to)
}

// ConvertUnit converts value between compatible units. The second return
// is false when the conversion is physically ambiguous (weight↔volume
// without a density, or count units like "piece" against anything else);
// that is a soft failure the caller resolves, not an error.
func ConvertUnit(value float64, from, to string) (float64, bool) {
	f, t := NormalizeUnit(from), NormalizeUnit(to)
	if f == t {
		return value, true
	}
	if IsWeightUnit(f) && IsWeightUnit(t) {
		return ConvertWeight(value, f, t), true
	}
	if IsVolumeUnit(f) && IsVolumeUnit(t) {
		return ConvertVolume(value, f, t), true
	}
	return 0, false
}

// VolumeToWeight bridges a volume quantity to grams using a known food
// density, matched by substring against the food name. Returns false when
// no density is known.
func VolumeToWeight(foodName string, value float64, volumeUnit string) (float64, bool) {
	u := NormalizeUnit(volumeUnit)
	if !IsVolumeUnit(u) {
		return 0, false
	}
	name := strings.ToLower(foodName)
	for _, d := range foodDensities {
		if strings.Contains(name, d.match) {
			ml := ConvertVolume(value, u, "ml")
			return ml * d.gPerML, true
		}
	}
	return 0, false
}

func factorOr1(table map[string]float64, unit string) float64 {
	if f, ok := table[NormalizeUnit(unit)]; ok {
		return f
	}
	return 1
}
