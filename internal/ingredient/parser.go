package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed is the structured form of one ingredient line.
type Parsed struct {
	Quantity float64
	Unit     string
	Kind     Kind
	Name     string
}

// Scale returns a copy with the quantity multiplied by factor.
func (p Parsed) Scale(factor float64) Parsed {
	p.Quantity *= factor
	return p
}

// BaseQuantity converts the quantity into the base unit of its kind. Count and
// unknown quantities are returned as is.
func (p Parsed) BaseQuantity() float64 {
	if u, ok := LookupUnit(p.Unit); ok && u.Kind == p.Kind {
		return ToBase(p.Quantity, u)
	}
	return p.Quantity
}

var vulgarFractions = map[rune]string{
	'¼': "1/4", '½': "1/2", '¾': "3/4",
	'⅓': "1/3", '⅔': "2/3",
	'⅕': "1/5", '⅖': "2/5", '⅗': "3/5", '⅘': "4/5",
	'⅙': "1/6", '⅚': "5/6",
	'⅛': "1/8", '⅜': "3/8", '⅝': "5/8", '⅞': "7/8",
}

var (
	fractionPattern    = regexp.MustCompile(`^(\d+)/(\d+)$`)
	numberPattern      = regexp.MustCompile(`^\d+(?:\.\d+)?$|^\.\d+$`)
	rangePattern       = regexp.MustCompile(`^(\d+(?:\.\d+)?)[-–](\d+(?:\.\d+)?)$`)
	attachedUnit       = regexp.MustCompile(`^(\d+(?:\.\d+)?)([a-zA-Z]+\.?)$`)
	parenthetical      = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]`)
	commaRun           = regexp.MustCompile(`\s*,[\s,]*`)
	qualifierPattern   = regexp.MustCompile(`(?i)\b(to taste|as needed|if desired|for garnish|for serving|for decoration|or more|or less|optional|divided|plus more)\b`)
	whitespaceSequence = regexp.MustCompile(`\s+`)
)

// preparationWords are dropped from ingredient names wherever they appear.
var preparationWords = map[string]struct{}{
	"chopped": {}, "diced": {}, "minced": {}, "sliced": {}, "grated": {},
	"shredded": {}, "crushed": {}, "peeled": {}, "cubed": {}, "julienned": {},
	"halved": {}, "quartered": {}, "melted": {}, "softened": {}, "beaten": {},
	"trimmed": {}, "rinsed": {}, "drained": {}, "mashed": {}, "pitted": {},
	"seeded": {}, "deveined": {}, "zested": {}, "juiced": {}, "toasted": {},
	"finely": {}, "roughly": {}, "thinly": {}, "coarsely": {}, "freshly": {},
	"lightly": {}, "packed": {}, "sifted": {}, "room-temperature": {},
}

// Parse splits a free-text ingredient line into quantity, unit and name.
// It never fails: unparseable input yields quantity 1, no unit and the
// trimmed line as the name.
func Parse(line string) Parsed {
	trimmed := strings.TrimSpace(line)
	fallback := Parsed{Quantity: 1, Kind: KindCount, Name: trimmed}
	if trimmed == "" {
		return fallback
	}

	tokens := strings.Fields(expandVulgarFractions(trimmed))
	tokens = splitAttachedUnit(tokens)

	qty, consumed := parseQuantity(tokens)
	tokens = tokens[consumed:]

	result := Parsed{Quantity: qty, Kind: KindCount}
	if consumed > 0 {
		if u, n := matchUnit(tokens); n > 0 {
			result.Unit = u.Name
			result.Kind = u.Kind
			tokens = tokens[n:]
		}
	}
	if len(tokens) > 0 && strings.EqualFold(tokens[0], "of") {
		tokens = tokens[1:]
	}

	result.Name = cleanName(strings.Join(tokens, " "))
	if result.Name == "" {
		return fallback
	}
	return result
}

// ParseStructured builds a Parsed value from an already separated entry. A
// unit missing from the unit table is kept verbatim with KindUnknown.
func ParseStructured(qty float64, unit, name string) Parsed {
	p := Parsed{Quantity: qty, Kind: KindCount, Name: cleanName(name)}
	if p.Name == "" {
		p.Name = strings.TrimSpace(name)
	}
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return p
	}
	if u, ok := LookupUnit(unit); ok {
		p.Unit = u.Name
		p.Kind = u.Kind
		return p
	}
	p.Unit = unit
	p.Kind = KindUnknown
	return p
}

func expandVulgarFractions(s string) string {
	var b strings.Builder
	for _, r := range s {
		if frac, ok := vulgarFractions[r]; ok {
			b.WriteString(" " + frac + " ")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitAttachedUnit turns "200g" into "200", "g" when the suffix is a unit.
func splitAttachedUnit(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	m := attachedUnit.FindStringSubmatch(tokens[0])
	if m == nil {
		return tokens
	}
	if _, ok := LookupUnit(m[2]); !ok {
		return tokens
	}
	out := make([]string, 0, len(tokens)+1)
	out = append(out, m[1], m[2])
	return append(out, tokens[1:]...)
}

// parseQuantity recognizes, in order, a mixed fraction, a plain fraction and
// a decimal or integer. It returns the quantity and the number of tokens used.
func parseQuantity(tokens []string) (float64, int) {
	if len(tokens) == 0 {
		return 1, 0
	}
	first := tokens[0]

	if whole, ok := parseNumber(first); ok && len(tokens) > 1 {
		if frac, ok := parseFraction(tokens[1]); ok && !strings.Contains(first, ".") {
			return whole + frac, 2
		}
	}
	if frac, ok := parseFraction(first); ok {
		return frac, 1
	}
	if n, ok := parseNumber(first); ok {
		return n, 1
	}
	if m := rangePattern.FindStringSubmatch(first); m != nil {
		hi, _ := strconv.ParseFloat(m[2], 64)
		return hi, 1
	}
	if strings.EqualFold(first, "a") || strings.EqualFold(first, "an") {
		return 1, 1
	}
	return 1, 0
}

func parseFraction(s string) (float64, bool) {
	m := fractionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num, _ := strconv.ParseFloat(m[1], 64)
	den, _ := strconv.ParseFloat(m[2], 64)
	if den == 0 {
		return 0, false
	}
	return num / den, true
}

func parseNumber(s string) (float64, bool) {
	if !numberPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchUnit tries a two-word unit before a one-word unit.
func matchUnit(tokens []string) (Unit, int) {
	if len(tokens) >= 2 {
		if u, ok := LookupUnit(tokens[0] + " " + tokens[1]); ok {
			return u, 2
		}
	}
	if len(tokens) >= 1 {
		if u, ok := LookupUnit(tokens[0]); ok {
			return u, 1
		}
	}
	return Unit{}, 0
}

func cleanName(s string) string {
	s = parenthetical.ReplaceAllString(s, " ")
	s = qualifierPattern.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		bare := strings.ToLower(strings.TrimRight(w, ",;"))
		if _, ok := preparationWords[bare]; ok {
			if strings.HasSuffix(w, ",") {
				kept = append(kept, ",")
			}
			continue
		}
		kept = append(kept, w)
	}
	s = strings.Join(kept, " ")

	s = commaRun.ReplaceAllString(s, ", ")
	s = whitespaceSequence.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, ", ")
	return strings.TrimSpace(s)
}
