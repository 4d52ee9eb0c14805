package recipe

import "strings"

// MealType is one of the three main daily slots.
type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
)

// MealTypes lists the main slots in the order a day is filled.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// ParseMealType accepts a meal type name in any case.
func ParseMealType(s string) (MealType, bool) {
	mt := MealType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MealTypes {
		if mt == known {
			return mt, true
		}
	}
	return "", false
}

// Nutrition holds per-serving nutrition facts.
type Nutrition struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Carbs    float64  `json:"carbs"`
	Fat      float64  `json:"fat"`
	Fiber    *float64 `json:"fiber,omitempty"`
}

// Recipe is a catalog entry. PrepTime and CookTime are in minutes.
type Recipe struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Nutrition          Nutrition `json:"nutrition"`
	PrepTime           int       `json:"prep_time"`
	CookTime           int       `json:"cook_time"`
	Servings           int       `json:"servings"`
	Ingredients        []string  `json:"ingredients"`
	Instructions       []string  `json:"instructions"`
	Tags               []string  `json:"tags"`
	MealType           MealType  `json:"meal_type,omitempty"`
	Complexity         string    `json:"complexity,omitempty"`
	DietaryPreferences []string  `json:"dietary_preferences,omitempty"`
	FitnessGoals       []string  `json:"fitness_goals,omitempty"`
	Source             string    `json:"source,omitempty"`
	UpdatedAt          string    `json:"updated_at,omitempty"`
}

// BaseServings returns the number of servings the ingredient list yields.
// Values below one count as one.
func (r Recipe) BaseServings() int {
	if r.Servings < 1 {
		return 1
	}
	return r.Servings
}

// MatchesMealType reports whether the recipe belongs in the given slot: an
// explicit MealType wins, otherwise a tag with the meal type's name is used.
func (r Recipe) MatchesMealType(mt MealType) bool {
	if r.MealType != "" {
		return r.MealType == mt
	}
	for _, tag := range r.Tags {
		if strings.EqualFold(strings.TrimSpace(tag), string(mt)) {
			return true
		}
	}
	return false
}

// Satisfies reports whether the recipe is allowed under c.
func (r Recipe) Satisfies(c Constraints) bool {
	for _, allergen := range c.Allergens {
		if r.contains(allergen) {
			return false
		}
	}
	for _, tag := range c.DietaryTags {
		if !hasFold(r.DietaryPreferences, tag) && !hasFold(r.Tags, tag) {
			return false
		}
	}
	return true
}

func (r Recipe) contains(allergen string) bool {
	a := strings.ToLower(strings.TrimSpace(allergen))
	if a == "" {
		return false
	}
	for _, line := range r.Ingredients {
		if strings.Contains(strings.ToLower(line), a) {
			return true
		}
	}
	return hasFold(r.Tags, a)
}

func hasFold(values []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), want) {
			return true
		}
	}
	return false
}

// TotalTime is prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// Constraints are the user's read-only dietary restrictions.
type Constraints struct {
	Allergens   []string `json:"allergens,omitempty"`
	DietaryTags []string `json:"dietary_tags,omitempty"`
}

// IsZero reports whether no restriction is set.
func (c Constraints) IsZero() bool {
	return len(c.Allergens) == 0 && len(c.DietaryTags) == 0
}

// String renders the constraints for user-facing notes.
func (c Constraints) String() string {
	parts := append([]string(nil), c.DietaryTags...)
	for _, a := range c.Allergens {
		parts = append(parts, "no "+a)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// Filter returns the recipes that satisfy c, keeping their order.
func Filter(recipes []Recipe, c Constraints) []Recipe {
	if c.IsZero() {
		return recipes
	}
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.Satisfies(c) {
			out = append(out, r)
		}
	}
	return out
}

// ForMealType returns the recipes that belong in the given slot, keeping
// their order.
func ForMealType(recipes []Recipe, mt MealType) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if r.MatchesMealType(mt) {
			out = append(out, r)
		}
	}
	return out
}
