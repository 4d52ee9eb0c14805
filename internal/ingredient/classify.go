package ingredient

import "regexp"

// CategoryOther is assigned when no category keyword matches.
const CategoryOther = "Other"

type category struct {
	name    string
	pattern *regexp.Regexp
}

func keywords(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + expr + `)\b`)
}

// categories are evaluated in order; the first match wins. Compound names
// whose head word belongs elsewhere are listed up front.
var categories = []category{
	{"Spices", keywords(`garlic powder|onion powder|chili powder|ground (?:cumin|cinnamon|ginger|nutmeg|coriander|cloves)|black pepper|red pepper flakes`)},
	{"Nuts & Seeds", keywords(`peanut butter|almond butter|cashew butter`)},
	{"Canned Goods", keywords(`coconut milk|tomato paste|tomato sauce|(?:chicken|beef|vegetable|fish) (?:broth|stock)|canned \w+`)},
	{"Frozen", keywords(`ice cream|frozen \w+`)},
	{"Condiments", keywords(`rice vinegar|soy sauce|fish sauce|oyster sauce|hot sauce|sesame oil`)},
	{"Grains", keywords(`egg noodles|rice noodles`)},
	{"Beverages", keywords(`almond milk|oat milk|soy milk|coconut water`)},
	{"Vegetables", keywords(`cherry tomato(?:es)?|date palm`)},
	{"Fruits", keywords(`apples?|bananas?|berries|strawberr(?:y|ies)|blueberr(?:y|ies)|raspberr(?:y|ies)|blackberr(?:y|ies)|cranberr(?:y|ies)|grapes?|lemons?|limes?|oranges?|mangos?|mangoes|pineapples?|peach(?:es)?|pears?|plums?|cherr(?:y|ies)|kiwis?|melons?|watermelons?|avocados?|pomegranates?|apricots?|figs?|dates|grapefruits?|papayas?|coconut`)},
	{"Vegetables", keywords(`onions?|scallions?|shallots?|garlic|leeks?|carrots?|celery|tomato(?:es)?|potato(?:es)?|sweet potato(?:es)?|lettuce|spinach|kale|arugula|cabbage|broccoli|cauliflower|zucchini|eggplant|cucumbers?|bell peppers?|chili peppers?|peppers|mushrooms?|asparagus|beets?|radish(?:es)?|squash|pumpkin|corn|peas|green beans|brussels sprouts|artichokes?|okra|turnips?|parsnips?|fennel|bok choy|ginger|cilantro|parsley|basil|mint|dill|chives|rosemary|thyme|sage`)},
	{"Meat", keywords(`chicken|beef|pork|lamb|turkey|bacon|ham|sausages?|steak|veal|duck|prosciutto|salami|chorizo|ground meat|mince|meatballs?`)},
	{"Seafood", keywords(`fish|salmon|tuna|cod|tilapia|halibut|trout|shrimp|prawns?|crab|lobster|scallops|mussels|clams|oysters|anchov(?:y|ies)|sardines?|squid|octopus`)},
	{"Dairy", keywords(`milk|cream|butter|cheese|cheddar|mozzarella|parmesan|feta|ricotta|yogurt|egg|eggs|sour cream|buttermilk|ghee|kefir|cottage cheese|cream cheese`)},
	{"Bakery", keywords(`bread|baguette|buns?|rolls?|tortillas?|pita|naan|bagels?|croissants?|muffins?|english muffins?|breadcrumbs|panko`)},
	{"Grains", keywords(`rice|brown rice|pasta|spaghetti|penne|macaroni|noodles|quinoa|oats|oatmeal|couscous|barley|bulgur|farro|cereal|granola|polenta|cornmeal`)},
	{"Legumes", keywords(`beans|black beans|kidney beans|lentils|chickpeas|tofu|tempeh|edamame|split peas|hummus`)},
	{"Condiments", keywords(`ketchup|mustard|mayonnaise|mayo|soy sauce|tamari|vinegar|hot sauce|sriracha|salsa|pesto|worcestershire|fish sauce|oyster sauce|hoisin|bbq sauce|barbecue sauce|dressing|olive oil|oil|honey|maple syrup|jam|tahini|miso`)},
	{"Spices", keywords(`salt|black pepper|pepper|cumin|paprika|turmeric|cinnamon|nutmeg|oregano|chili powder|cayenne|curry powder|garam masala|cloves|bay leaf|bay leaves|allspice|cardamom|coriander|red pepper flakes|garlic powder|onion powder|seasoning|spice`)},
	{"Baking", keywords(`flour|sugar|brown sugar|powdered sugar|baking soda|baking powder|yeast|vanilla|vanilla extract|cocoa|cocoa powder|chocolate chips|cornstarch|gelatin|molasses|shortening`)},
	{"Nuts & Seeds", keywords(`almonds?|walnuts?|pecans?|cashews?|peanuts?|pistachios?|hazelnuts?|pine nuts|sesame seeds|chia seeds|flax ?seeds?|sunflower seeds|pumpkin seeds|peanut butter|almond butter|nuts|seeds`)},
	{"Canned Goods", keywords(`canned|tomato paste|tomato sauce|broth|stock|coconut milk|diced tomatoes|crushed tomatoes|beans in|soup`)},
	{"Frozen", keywords(`frozen|ice cream|ice`)},
	{"Snacks", keywords(`chips|crackers|pretzels|popcorn|cookies|granola bars?|chocolate|candy|dried fruit|raisins`)},
	{"Beverages", keywords(`water|juice|coffee|tea|wine|beer|soda|sparkling|kombucha|lemonade|spirits|vodka|rum`)},
}

// Classify assigns a shopping category to a normalized ingredient name.
func Classify(name string) string {
	for _, c := range categories {
		if c.pattern.MatchString(name) {
			return c.name
		}
	}
	return CategoryOther
}

// Categories lists the distinct category names, followed by Other.
func Categories() []string {
	seen := make(map[string]bool, len(categories))
	out := make([]string, 0, len(categories)+1)
	for _, c := range categories {
		if seen[c.name] {
			continue
		}
		seen[c.name] = true
		out = append(out, c.name)
	}
	return append(out, CategoryOther)
}
