package ghost

import (
	"context"
	"fmt"
	"html"
	"strings"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

// PlanTag is attached to every published meal plan post.
const PlanTag = "meal-plan"

// FormatPlanHTML renders a plan and its grocery list as a post body.
func FormatPlanHTML(plan mealplan.MealPlan, groceries []shopping.GroceryItem) string {
	var sb strings.Builder

	for _, date := range plan.Dates() {
		day := plan[date]
		heading := date
		if t, err := mealplan.ParseDate(date); err == nil {
			heading = t.Format("Monday, January 2")
		}
		sb.WriteString("<h2>" + html.EscapeString(heading) + "</h2><ul>")
		for _, mt := range recipe.MealTypes {
			if item := day.Slot(mt); item != nil {
				sb.WriteString(fmt.Sprintf("<li><strong>%s:</strong> %s</li>", titleCase(string(mt)), describe(item)))
			}
		}
		for _, snack := range day.Snacks {
			sb.WriteString(fmt.Sprintf("<li><strong>Snack:</strong> %s</li>", describe(snack)))
		}
		sb.WriteString("</ul>")
	}

	if len(groceries) > 0 {
		sb.WriteString("<hr><h2>Groceries</h2>")
		category := ""
		for _, item := range groceries {
			if item.Category != category {
				if category != "" {
					sb.WriteString("</ul>")
				}
				category = item.Category
				sb.WriteString("<h3>" + html.EscapeString(category) + "</h3><ul>")
			}
			sb.WriteString("<li>" + html.EscapeString(item.Name) + "</li>")
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}

func describe(item mealplan.MealItem) string {
	s := html.EscapeString(item.DisplayName())
	if n := item.AssignedServings(); n != nil {
		s += fmt.Sprintf(" (%d servings)", *n)
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// PublishPlan posts the plan for [start, end] as a draft tagged PlanTag.
func (c *Client) PublishPlan(ctx context.Context, start, end string, plan mealplan.MealPlan, groceries []shopping.GroceryItem) (*Post, error) {
	title := fmt.Sprintf("Meal plan %s to %s", start, end)
	return c.CreatePost(ctx, title, FormatPlanHTML(plan, groceries), []string{PlanTag}, false)
}
