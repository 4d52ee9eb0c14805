package mealplan

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"meal-planner/internal/recipe"
)

// DateLayout is the key format of a MealPlan.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as a plan key.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayPlan holds the three main slots and any number of snacks.
type DayPlan struct {
	Breakfast MealItem
	Lunch     MealItem
	Dinner    MealItem
	Snacks    []MealItem
}

// Slot returns the item in a main slot.
func (d *DayPlan) Slot(mt recipe.MealType) MealItem {
	switch mt {
	case recipe.Breakfast:
		return d.Breakfast
	case recipe.Lunch:
		return d.Lunch
	case recipe.Dinner:
		return d.Dinner
	default:
		return nil
	}
}

// SetSlot places item in a main slot. A nil item empties it.
func (d *DayPlan) SetSlot(mt recipe.MealType, item MealItem) {
	switch mt {
	case recipe.Breakfast:
		d.Breakfast = item
	case recipe.Lunch:
		d.Lunch = item
	case recipe.Dinner:
		d.Dinner = item
	}
}

// Items returns breakfast, lunch, dinner and then the snacks, skipping
// empty slots.
func (d *DayPlan) Items() []MealItem {
	items := make([]MealItem, 0, 3+len(d.Snacks))
	for _, mt := range recipe.MealTypes {
		if item := d.Slot(mt); item != nil {
			items = append(items, item)
		}
	}
	for _, s := range d.Snacks {
		if s != nil {
			items = append(items, s)
		}
	}
	return items
}

// IsEmpty reports whether the day holds nothing.
func (d *DayPlan) IsEmpty() bool {
	return len(d.Items()) == 0
}

// Clone returns a deep copy.
func (d *DayPlan) Clone() *DayPlan {
	if d == nil {
		return nil
	}
	out := &DayPlan{
		Breakfast: cloneItem(d.Breakfast),
		Lunch:     cloneItem(d.Lunch),
		Dinner:    cloneItem(d.Dinner),
	}
	for _, s := range d.Snacks {
		out.Snacks = append(out.Snacks, cloneItem(s))
	}
	return out
}

type dayPlanJSON struct {
	Breakfast json.RawMessage   `json:"breakfast,omitempty"`
	Lunch     json.RawMessage   `json:"lunch,omitempty"`
	Dinner    json.RawMessage   `json:"dinner,omitempty"`
	Snacks    []json.RawMessage `json:"snacks,omitempty"`
}

// MarshalJSON tags every item with its kind.
func (d DayPlan) MarshalJSON() ([]byte, error) {
	var out dayPlanJSON
	var err error
	if out.Breakfast, err = encodeItem(d.Breakfast); err != nil {
		return nil, err
	}
	if out.Lunch, err = encodeItem(d.Lunch); err != nil {
		return nil, err
	}
	if out.Dinner, err = encodeItem(d.Dinner); err != nil {
		return nil, err
	}
	for _, s := range d.Snacks {
		raw, err := encodeItem(s)
		if err != nil {
			return nil, err
		}
		if raw != nil {
			out.Snacks = append(out.Snacks, raw)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes items by their kind tag.
func (d *DayPlan) UnmarshalJSON(data []byte) error {
	var in dayPlanJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var err error
	var day DayPlan
	if day.Breakfast, err = decodeItem(in.Breakfast); err != nil {
		return fmt.Errorf("breakfast: %w", err)
	}
	if day.Lunch, err = decodeItem(in.Lunch); err != nil {
		return fmt.Errorf("lunch: %w", err)
	}
	if day.Dinner, err = decodeItem(in.Dinner); err != nil {
		return fmt.Errorf("dinner: %w", err)
	}
	for i, raw := range in.Snacks {
		item, err := decodeItem(raw)
		if err != nil {
			return fmt.Errorf("snack %d: %w", i, err)
		}
		if item != nil {
			day.Snacks = append(day.Snacks, item)
		}
	}
	*d = day
	return nil
}

type recipeMealJSON struct {
	Kind string `json:"kind"`
	RecipeMeal
}

type customMealJSON struct {
	Kind string `json:"kind"`
	CustomMeal
}

func encodeItem(item MealItem) (json.RawMessage, error) {
	switch m := item.(type) {
	case nil:
		return nil, nil
	case RecipeMeal:
		return json.Marshal(recipeMealJSON{Kind: KindRecipe, RecipeMeal: m})
	case CustomMeal:
		return json.Marshal(customMealJSON{Kind: KindCustom, CustomMeal: m})
	default:
		return nil, fmt.Errorf("unknown meal item type %T", item)
	}
}

func decodeItem(raw json.RawMessage) (MealItem, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Kind {
	case KindRecipe:
		var m recipeMealJSON
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m.RecipeMeal, nil
	case KindCustom:
		var m customMealJSON
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		return m.CustomMeal, nil
	default:
		return nil, fmt.Errorf("unknown meal item kind %q", probe.Kind)
	}
}

// MealPlan maps ISO dates to their day plans.
type MealPlan map[string]*DayPlan

// Dates returns the plan's dates in ascending order.
func (p MealPlan) Dates() []string {
	dates := make([]string, 0, len(p))
	for date, day := range p {
		if day != nil {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	return dates
}

// Day returns the plan for date, or nil.
func (p MealPlan) Day(date string) *DayPlan {
	return p[date]
}

// Clone returns a deep copy.
func (p MealPlan) Clone() MealPlan {
	out := make(MealPlan, len(p))
	for date, day := range p {
		if day != nil {
			out[date] = day.Clone()
		}
	}
	return out
}

// Range returns the days whose dates fall within [start, end]. Empty bounds
// are open.
func (p MealPlan) Range(start, end string) MealPlan {
	out := make(MealPlan)
	for date, day := range p {
		if day == nil {
			continue
		}
		if start != "" && date < start {
			continue
		}
		if end != "" && date > end {
			continue
		}
		out[date] = day
	}
	return out
}

// RecipeIDs returns the set of recipe ids assigned anywhere in the plan.
func (p MealPlan) RecipeIDs() map[string]bool {
	ids := make(map[string]bool)
	for _, day := range p {
		if day == nil {
			continue
		}
		for _, item := range day.Items() {
			if id := RecipeID(item); id != "" {
				ids[id] = true
			}
		}
	}
	return ids
}

// WeekBounds returns the Monday and Sunday of the ISO week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	offset := (int(t.Weekday()) + 6) % 7
	monday := t.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
