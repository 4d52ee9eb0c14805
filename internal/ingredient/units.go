package ingredient

import "strings"

// Kind groups units that can be summed after conversion to a common base.
type Kind string

const (
	KindMass    Kind = "mass"
	KindVolume  Kind = "volume"
	KindCount   Kind = "count"
	KindUnknown Kind = "unknown"
)

// Unit describes a recognized unit of measure.
type Unit struct {
	Name   string  // canonical spelling
	Kind   Kind
	ToBase float64 // factor to grams (mass) or milliliters (volume); 1 for count
}

// Base units per kind.
const (
	BaseMass   = "g"
	BaseVolume = "ml"
)

// unitTable maps every accepted spelling to its canonical unit.
// Volumes follow the rounded metric kitchen measures (1 cup = 240 ml).
var unitTable = map[string]Unit{}

func register(u Unit, spellings ...string) {
	unitTable[u.Name] = u
	for _, s := range spellings {
		unitTable[s] = u
	}
}

func init() {
	// mass (base = g)
	register(Unit{Name: "mg", Kind: KindMass, ToBase: 0.001}, "milligram", "milligrams")
	register(Unit{Name: "g", Kind: KindMass, ToBase: 1}, "gram", "grams", "gr", "grs")
	register(Unit{Name: "kg", Kind: KindMass, ToBase: 1000}, "kilogram", "kilograms", "kilo", "kilos", "kgs")
	register(Unit{Name: "oz", Kind: KindMass, ToBase: 28.349523125}, "ounce", "ounces")
	register(Unit{Name: "lb", Kind: KindMass, ToBase: 453.59237}, "lbs", "pound", "pounds")

	// volume (base = ml)
	register(Unit{Name: "ml", Kind: KindVolume, ToBase: 1}, "milliliter", "milliliters", "millilitre", "millilitres", "mls")
	register(Unit{Name: "cl", Kind: KindVolume, ToBase: 10}, "centiliter", "centiliters")
	register(Unit{Name: "dl", Kind: KindVolume, ToBase: 100}, "deciliter", "deciliters")
	register(Unit{Name: "l", Kind: KindVolume, ToBase: 1000}, "liter", "liters", "litre", "litres", "lt")
	register(Unit{Name: "tsp", Kind: KindVolume, ToBase: 5}, "teaspoon", "teaspoons", "tsps", "t")
	register(Unit{Name: "tbsp", Kind: KindVolume, ToBase: 15}, "tablespoon", "tablespoons", "tbsps", "tbs", "tbl", "T")
	register(Unit{Name: "fl oz", Kind: KindVolume, ToBase: 30}, "fluid ounce", "fluid ounces", "fl. oz", "floz", "fl-oz")
	register(Unit{Name: "cup", Kind: KindVolume, ToBase: 240}, "cups", "c")
	register(Unit{Name: "pint", Kind: KindVolume, ToBase: 480}, "pints", "pt")
	register(Unit{Name: "quart", Kind: KindVolume, ToBase: 960}, "quarts", "qt")
	register(Unit{Name: "gallon", Kind: KindVolume, ToBase: 3840}, "gallons", "gal")

	// count
	for _, c := range []struct {
		name      string
		spellings []string
	}{
		{"piece", []string{"pieces", "pc", "pcs"}},
		{"clove", []string{"cloves"}},
		{"can", []string{"cans", "tin", "tins"}},
		{"slice", []string{"slices"}},
		{"pinch", []string{"pinches"}},
		{"dash", []string{"dashes"}},
		{"bunch", []string{"bunches"}},
		{"head", []string{"heads"}},
		{"package", []string{"packages", "pkg", "pkgs", "packet", "packets"}},
		{"stick", []string{"sticks"}},
		{"sprig", []string{"sprigs"}},
		{"handful", []string{"handfuls"}},
		{"jar", []string{"jars"}},
		{"bottle", []string{"bottles"}},
		{"bag", []string{"bags"}},
		{"box", []string{"boxes"}},
		{"stalk", []string{"stalks"}},
		{"fillet", []string{"fillets"}},
	} {
		register(Unit{Name: c.name, Kind: KindCount, ToBase: 1}, c.spellings...)
	}
}

// LookupUnit resolves a unit spelling. Single-letter spellings are case
// sensitive ("T" is a tablespoon, "t" a teaspoon); everything else is not.
func LookupUnit(s string) (Unit, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "."))
	if s == "" {
		return Unit{}, false
	}
	if len(s) == 1 {
		u, ok := unitTable[s]
		return u, ok
	}
	u, ok := unitTable[strings.ToLower(s)]
	return u, ok
}

// ToBase converts a quantity expressed in unit u to the kind's base unit.
func ToBase(qty float64, u Unit) float64 {
	if u.ToBase == 0 {
		return qty
	}
	return qty * u.ToBase
}

// FromBase converts a base quantity back to a display unit: grams become
// kilograms and milliliters become liters at 1000 and above.
func FromBase(qty float64, kind Kind) (float64, string) {
	switch kind {
	case KindMass:
		if qty >= 1000 {
			return qty / 1000, "kg"
		}
		return qty, BaseMass
	case KindVolume:
		if qty >= 1000 {
			return qty / 1000, "l"
		}
		return qty, BaseVolume
	default:
		return qty, ""
	}
}
