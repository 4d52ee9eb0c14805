package telegram

import (
	"fmt"
	"strings"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
	"meal-planner/internal/shopping"
)

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape protects user and recipe text inside legacy Markdown messages.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FormatPlan renders the days of plan with the prep time of recipe meals.
func FormatPlan(plan mealplan.MealPlan, resolver mealplan.Resolver) string {
	var sb strings.Builder
	sb.WriteString("📅 *Meal Plan*\n")

	totalPrep := 0
	for _, date := range plan.Dates() {
		day := plan[date]
		heading := date
		if t, err := mealplan.ParseDate(date); err == nil {
			heading = t.Format("Monday 02 Jan")
		}
		sb.WriteString("\n*" + heading + "*\n")

		for _, mt := range recipe.MealTypes {
			item := day.Slot(mt)
			if item == nil {
				sb.WriteString(fmt.Sprintf("• %s: _empty_\n", titleCase(string(mt))))
				continue
			}
			line := fmt.Sprintf("• %s: %s", titleCase(string(mt)), escape(item.DisplayName()))
			if r, ok := resolver.Recipe(mealplan.RecipeID(item)); ok && r.TotalTime() > 0 {
				line += fmt.Sprintf(" (%d mins)", r.TotalTime())
				totalPrep += r.TotalTime()
			}
			sb.WriteString(line + "\n")
		}
		for _, snack := range day.Snacks {
			sb.WriteString("• Snack: " + escape(snack.DisplayName()) + "\n")
		}
	}

	if totalPrep > 0 {
		sb.WriteString(fmt.Sprintf("\n⏱ *Total Prep:* %d mins", totalPrep))
	}
	return sb.String()
}

// FormatResult summarises a generation outcome with its suggestions.
func FormatResult(res planner.GenerationResult) string {
	var sb strings.Builder
	if res.Success {
		sb.WriteString(fmt.Sprintf("✅ Filled %d meals.\n", len(res.GeneratedMeals)))
	} else {
		sb.WriteString("❌ *" + escape(res.Error) + "*\n")
	}
	for _, s := range res.Suggestions {
		sb.WriteString("💡 _" + escape(s) + "_\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatGroceries renders a shopping list grouped by category.
func FormatGroceries(list *shopping.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List* (%s to %s)\n", list.StartDate, list.EndDate))

	category := ""
	for _, item := range list.Items {
		if item.Category != category {
			category = item.Category
			sb.WriteString("\n*" + escape(category) + "*\n")
		}
		mark := "•"
		if item.Checked {
			mark = "✓"
		}
		sb.WriteString(mark + " " + escape(item.Name) + "\n")
	}
	sb.WriteString(fmt.Sprintf("\n%d of %d left", list.Remaining(), len(list.Items)))
	return sb.String()
}

// FormatMetrics renders the generation activity and system health report.
func FormatMetrics(summary []metrics.DailySummary, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Generation Activity*\n")
	if len(summary) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range summary {
		sb.WriteString(fmt.Sprintf("• *%s*: %d runs, %d failed, %d slots (%dms avg)\n",
			d.Date, d.Runs, d.Failures, d.SlotsFilled, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}
