package ingredient

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// adjectives are descriptive words that do not change what has to be bought.
var adjectives = map[string]struct{}{
	"fresh": {}, "organic": {}, "large": {}, "small": {}, "medium": {},
	"big": {}, "ripe": {}, "raw": {}, "whole": {}, "extra": {}, "jumbo": {},
	"boneless": {}, "skinless": {}, "lean": {}, "free-range": {}, "unsalted": {},
	"salted": {}, "good": {}, "quality": {}, "baby": {}, "cold": {}, "warm": {},
	"dried": {}, "plain": {}, "natural": {}, "pure": {},
	"local": {}, "seasonal": {}, "premium": {}, "fine": {}, "coarse": {},
	"red": {}, "green": {}, "yellow": {}, "white": {}, "purple": {},
	"golden": {},
}

// compounds are recognized before adjective stripping so colour words that
// name a different product survive. Longer phrases come first.
var compounds = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`\b(?:red|green|yellow|orange)?\s*bell peppers?\b`), "bell pepper"},
	{regexp.MustCompile(`\b(?:red|green)?\s*(?:chil[ei]|chilli|jalapeno|serrano) peppers?\b`), "chili pepper"},
	{regexp.MustCompile(`\bblack peppercorns?\b|\bground black pepper\b|\bblack pepper\b`), "black pepper"},
	{regexp.MustCompile(`\b(?:green onions?|spring onions?|scallions?)\b`), "scallion"},
	{regexp.MustCompile(`\bred onions?\b`), "red onion"},
	{regexp.MustCompile(`\bbrown sugar\b`), "brown sugar"},
	{regexp.MustCompile(`\bwhite wine\b`), "white wine"},
	{regexp.MustCompile(`\bred wine\b`), "red wine"},
	{regexp.MustCompile(`\bwhite rice\b`), "rice"},
	{regexp.MustCompile(`\bbrown rice\b`), "brown rice"},
	{regexp.MustCompile(`\bblack beans?\b`), "black beans"},
	{regexp.MustCompile(`\bgreen beans?\b`), "green beans"},
	{regexp.MustCompile(`\bred lentils?\b`), "lentils"},
}

// synonyms are applied in order on word boundaries after adjective stripping.
var synonyms = []struct {
	pattern *regexp.Regexp
	name    string
}{
	{regexp.MustCompile(`\b(?:yellow|sweet|spanish) onions?\b`), "onion"},
	{regexp.MustCompile(`\bonions\b`), "onion"},
	{regexp.MustCompile(`\b(?:all-purpose|all purpose|plain|ap) flour\b`), "flour"},
	{regexp.MustCompile(`\bgranulated sugar\b|\bcaster sugar\b|\bwhite sugar\b`), "sugar"},
	{regexp.MustCompile(`\bextra-virgin olive oil\b|\bvirgin olive oil\b|\bevoo\b`), "olive oil"},
	{regexp.MustCompile(`\bgarlic cloves?\b|\bcloves? (?:of )?garlic\b`), "garlic"},
	{regexp.MustCompile(`\bchicken breasts\b|\bchicken breast fillets?\b`), "chicken breast"},
	{regexp.MustCompile(`\beggs\b`), "egg"},
	{regexp.MustCompile(`\btomatoes\b`), "tomato"},
	{regexp.MustCompile(`\bpotatoes\b`), "potato"},
	{regexp.MustCompile(`\bcarrots\b`), "carrot"},
	{regexp.MustCompile(`\blemons\b`), "lemon"},
	{regexp.MustCompile(`\blimes\b`), "lime"},
	{regexp.MustCompile(`\bbananas\b`), "banana"},
	{regexp.MustCompile(`\bapples\b`), "apple"},
	{regexp.MustCompile(`\bavocados\b`), "avocado"},
	{regexp.MustCompile(`\bcilantro\b|\bcoriander leaves\b`), "cilantro"},
	{regexp.MustCompile(`\bcourgettes?\b|\bzucchinis\b`), "zucchini"},
	{regexp.MustCompile(`\baubergines?\b|\beggplants\b`), "eggplant"},
	{regexp.MustCompile(`\bgarbanzo beans?\b|\bchick peas\b`), "chickpeas"},
	{regexp.MustCompile(`\bkosher salt\b|\bsea salt\b|\btable salt\b`), "salt"},
	{regexp.MustCompile(`\bwhole milk\b|\bskim milk\b|\b(?:\d+%) milk\b`), "milk"},
	{regexp.MustCompile(`\bgreek yogurt\b|\bgreek yoghurt\b|\byoghurt\b`), "yogurt"},
	{regexp.MustCompile(`\bscallions\b`), "scallion"},
}

var nonWordEdges = regexp.MustCompile(`^[^\p{L}\p{N}]+|[^\p{L}\p{N}]+$`)

// Normalize produces the canonical dedup key for an ingredient name.
func Normalize(name string) string {
	s := strings.ToLower(stripDiacritics(strings.TrimSpace(name)))
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}

	// Protect compounds by replacing them with placeholders so adjective
	// stripping cannot touch their colour words.
	var protected []string
	for _, c := range compounds {
		s = c.pattern.ReplaceAllStringFunc(s, func(string) string {
			protected = append(protected, c.name)
			return " " + placeholder(len(protected)-1) + " "
		})
	}

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := adjectives[strings.Trim(w, ",")]; ok {
			continue
		}
		kept = append(kept, w)
	}
	s = strings.Join(kept, " ")

	for i, name := range protected {
		s = strings.ReplaceAll(s, placeholder(i), name)
	}

	for _, syn := range synonyms {
		s = syn.pattern.ReplaceAllString(s, syn.name)
	}

	s = nonWordEdges.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return strings.ToLower(strings.TrimSpace(name))
	}
	return s
}

func placeholder(i int) string {
	return "\x00" + string(rune('a'+i)) + "\x00"
}

// stripDiacritics folds accented letters onto their base letter
// ("jalapeño" becomes "jalapeno").
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
