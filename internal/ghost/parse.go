package ghost

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"meal-planner/internal/recipe"
)

// ErrNoIngredients marks a post that does not look like a recipe.
var ErrNoIngredients = errors.New("post has no ingredients section")

var (
	ingredientsHeading  = regexp.MustCompile(`(?i)ingredients`)
	instructionsHeading = regexp.MustCompile(`(?i)instructions|method|directions|steps|preparation`)
	minutesPattern      = regexp.MustCompile(`(?i)(\d+)\s*(h|hr|hrs|hours?|m|min|mins|minutes?)\b`)
	firstNumber         = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// dietaryTags are tag slugs that describe a diet rather than a topic.
var dietaryTags = map[string]bool{
	"vegan": true, "vegetarian": true, "pescatarian": true, "gluten-free": true,
	"dairy-free": true, "nut-free": true, "keto": true, "paleo": true,
	"low-carb": true, "high-protein": true,
}

// ParsePost turns a recipe post into a Recipe. The post body is expected to
// carry an "Ingredients" heading followed by a list, optionally an
// "Instructions" heading followed by a list, and labelled facts such as
// "Prep Time: 10 mins" or "Servings: 4".
func ParsePost(p Post) (recipe.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		return recipe.Recipe{}, err
	}

	r := recipe.Recipe{
		ID:        p.ID,
		Name:      strings.TrimSpace(p.Title),
		Source:    "ghost",
		UpdatedAt: p.UpdatedAt,
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, h *goquery.Selection) {
		title := h.Text()
		switch {
		case ingredientsHeading.MatchString(title):
			r.Ingredients = append(r.Ingredients, listAfter(h)...)
		case instructionsHeading.MatchString(title):
			r.Instructions = append(r.Instructions, listAfter(h)...)
		}
	})
	if len(r.Ingredients) == 0 {
		return recipe.Recipe{}, ErrNoIngredients
	}

	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		for _, fact := range strings.Split(s.Text(), "|") {
			applyFact(&r, fact)
		}
	})

	for _, t := range p.Tags {
		slug := strings.ToLower(t.Slug)
		if slug == "" {
			slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(t.Name), " ", "-"))
		}
		if mt, ok := recipe.ParseMealType(slug); ok && r.MealType == "" {
			r.MealType = mt
		}
		if dietaryTags[slug] {
			r.DietaryPreferences = append(r.DietaryPreferences, slug)
		}
		r.Tags = append(r.Tags, slug)
	}
	return r, nil
}

// listAfter collects the items of the first list following heading h,
// stopping at the next heading.
func listAfter(h *goquery.Selection) []string {
	var items []string
	h.NextUntil("h1, h2, h3, h4").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		list := s
		if !s.Is("ul, ol") {
			list = s.Find("ul, ol").First()
		}
		if list.Length() == 0 {
			return true
		}
		list.Find("li").Each(func(_ int, li *goquery.Selection) {
			if text := strings.Join(strings.Fields(li.Text()), " "); text != "" {
				items = append(items, text)
			}
		})
		return false
	})
	return items
}

func applyFact(r *recipe.Recipe, fact string) {
	label, value, ok := strings.Cut(fact, ":")
	if !ok {
		return
	}
	label = strings.ToLower(strings.TrimSpace(label))
	value = strings.TrimSpace(value)

	switch label {
	case "prep time", "prep":
		r.PrepTime = parseMinutes(value)
	case "cook time", "cook":
		r.CookTime = parseMinutes(value)
	case "servings", "serves", "yield":
		if n, ok := number(value); ok {
			r.Servings = int(n)
		}
	case "calories":
		r.Nutrition.Calories, _ = number(value)
	case "protein":
		r.Nutrition.Protein, _ = number(value)
	case "carbs", "carbohydrates":
		r.Nutrition.Carbs, _ = number(value)
	case "fat":
		r.Nutrition.Fat, _ = number(value)
	case "fiber", "fibre":
		if n, ok := number(value); ok {
			r.Nutrition.Fiber = &n
		}
	case "meal type", "meal":
		if mt, ok := recipe.ParseMealType(value); ok {
			r.MealType = mt
		}
	case "complexity", "difficulty":
		r.Complexity = strings.ToLower(value)
	}
}

// parseMinutes reads "1 hr 15 mins", "45 min" or a bare number of minutes.
func parseMinutes(s string) int {
	total := 0
	matches := minutesPattern.FindAllStringSubmatch(s, -1)
	for _, m := range matches {
		n, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			n *= 60
		}
		total += n
	}
	if len(matches) == 0 {
		if n, ok := number(s); ok {
			total = int(n)
		}
	}
	return total
}

func number(s string) (float64, bool) {
	m := firstNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(m, 64)
	return n, err == nil
}
