package shopping

import "time"

// GroceryItem is one aggregated line of a shopping list.
type GroceryItem struct {
	Name       string   `json:"name"`
	Ingredient string   `json:"ingredient"`
	Quantity   float64  `json:"quantity"`
	Unit       string   `json:"unit"`
	Category   string   `json:"category"`
	Checked    bool     `json:"checked"`
	RecipeIDs  []string `json:"recipe_ids"`
}

// ShoppingList is a persisted grocery list for a date range.
type ShoppingList struct {
	ID        int64         `json:"id"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Items     []GroceryItem `json:"items"`
	CreatedAt time.Time     `json:"created_at"`
}

// Remaining counts the items not yet checked off.
func (l *ShoppingList) Remaining() int {
	n := 0
	for _, it := range l.Items {
		if !it.Checked {
			n++
		}
	}
	return n
}
