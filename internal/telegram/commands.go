package telegram

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/mealplan"
	"meal-planner/internal/metrics"
	"meal-planner/internal/recipe"
)

const helpText = `*Commands*
/week - plan next week
/today - show today's meals
/groceries - shopping list for the planned week
/swap <date> <meal> - pick another recipe
/unique on|off - avoid repeats within a week
/clear - dismiss the last generation error`

// maxAlternatives bounds the swap keyboard.
const maxAlternatives = 6

// parseCommand splits "/cmd@bot a b" into "/cmd" and its arguments.
func parseCommand(text string) (string, []string) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil
	}
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	return cmd, fields[1:]
}

// nextMonday returns the Monday after t, or t's date when t is a Monday.
func nextMonday(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := (8 - int(t.Weekday())) % 7
	return t.AddDate(0, 0, days)
}

func weekRange(monday time.Time) (string, string) {
	return mealplan.FormatDate(monday), mealplan.FormatDate(monday.AddDate(0, 0, 6))
}

func (b *Bot) handleWeek(ctx context.Context, chatID int64) {
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, "🧑‍🍳 Planning your week..."))
	if err != nil {
		b.logger.Warn("failed to send initial reply", zap.Error(err))
		return
	}

	monday := nextMonday(b.now())
	state, err := b.planner.Snapshot(ctx)
	if err != nil {
		b.edit(chatID, sent.MessageID, "❌ Could not load your plan.", nil)
		return
	}
	start, end := weekRange(monday)
	if len(state.Plan.Range(start, end)) > 0 {
		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔄 Redo Next Week", "redo|"+start),
				tgbotapi.NewInlineKeyboardButtonData("⏭️ Plan Following Week", "next|"+start),
			),
		)
		text := "🗓️ A plan already exists for the week starting *" + start + "*.\nWhat would you like to do?"
		b.edit(chatID, sent.MessageID, text, &keyboard)
		return
	}

	b.generateWeek(ctx, chatID, sent.MessageID, monday)
}

func (b *Bot) generateWeek(ctx context.Context, chatID int64, messageID int, monday time.Time) {
	start, end := weekRange(monday)
	res := b.planner.GenerateWeeklyMealPlan(ctx, start, end)
	if !res.Success {
		b.edit(chatID, messageID, FormatResult(res), nil)
		b.sendAdminAlert("⚠️ *Generation failed*\n" + escape(res.Error))
		return
	}

	state, err := b.planner.Snapshot(ctx)
	if err != nil {
		b.edit(chatID, messageID, "❌ Could not load your plan.", nil)
		return
	}
	b.edit(chatID, messageID, FormatPlan(state.Plan.Range(start, end), b.planner.Resolver()), nil)
	if len(res.Suggestions) > 0 {
		b.reply(chatID, FormatResult(res))
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn("failed to answer callback", zap.Error(err))
	}
	if query.Message == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	parts := strings.Split(query.Data, "|")
	switch {
	case len(parts) == 2 && (parts[0] == "redo" || parts[0] == "next"):
		monday, err := mealplan.ParseDate(parts[1])
		if err != nil {
			return
		}
		if parts[0] == "next" {
			monday = monday.AddDate(0, 0, 7)
		}
		b.edit(chatID, messageID, "🧑‍🍳 Planning your week...", nil)
		b.generateWeek(ctx, chatID, messageID, monday)

	case len(parts) == 4 && parts[0] == "swap":
		mt, _ := recipe.ParseMealType(parts[2])
		if !b.planner.SwapMeal(ctx, parts[1], mt, parts[3]) {
			state, _ := b.planner.Snapshot(ctx)
			msg := "❌ Swap failed."
			if state != nil && state.LastGenerationError != "" {
				msg = "❌ " + escape(state.LastGenerationError)
			}
			b.edit(chatID, messageID, msg, nil)
			return
		}
		r, _ := b.planner.Resolver().Recipe(parts[3])
		b.edit(chatID, messageID, "✅ "+titleCase(parts[2])+" on "+parts[1]+" is now *"+escape(r.Name)+"*", nil)
	}
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) {
	today := mealplan.FormatDate(b.now())
	state, err := b.planner.Snapshot(ctx)
	if err != nil {
		b.reply(chatID, "❌ Could not load your plan.")
		return
	}
	if state.Plan.Day(today) == nil {
		res := b.planner.GenerateAllMealsForDay(ctx, today, nil)
		if !res.Success {
			b.reply(chatID, FormatResult(res))
			return
		}
		if state, err = b.planner.Snapshot(ctx); err != nil {
			b.reply(chatID, "❌ Could not load your plan.")
			return
		}
	}
	b.reply(chatID, FormatPlan(state.Plan.Range(today, today), b.planner.Resolver()))
}

func (b *Bot) handleGroceries(ctx context.Context, chatID int64) {
	start, end := weekRange(nextMonday(b.now()))
	items, err := b.planner.GenerateGroceryList(ctx, start, end)
	if err != nil {
		b.reply(chatID, "❌ "+escape(err.Error()))
		return
	}
	if len(items) == 0 {
		b.reply(chatID, "🛒 Nothing planned for "+start+" to "+end+". Try /week first.")
		return
	}
	list, err := b.lists.Replace(ctx, start, end, items)
	if err != nil {
		b.logger.Error("failed to save shopping list", zap.Error(err))
		b.reply(chatID, "❌ Could not save the shopping list.")
		return
	}
	b.reply(chatID, FormatGroceries(list))
}

func (b *Bot) handleSwap(ctx context.Context, chatID int64, args []string) {
	if len(args) != 2 {
		b.reply(chatID, "Usage: /swap <YYYY-MM-DD> <breakfast|lunch|dinner>")
		return
	}
	mt, ok := recipe.ParseMealType(args[1])
	if !ok {
		b.reply(chatID, "Unknown meal type: "+escape(args[1]))
		return
	}
	state, err := b.planner.Snapshot(ctx)
	if err != nil {
		b.reply(chatID, "❌ Could not load your plan.")
		return
	}
	current := ""
	if day := state.Plan.Day(args[0]); day != nil {
		current = mealplan.RecipeID(day.Slot(mt))
	}

	alts, err := b.planner.GetAlternativeRecipes(ctx, args[0], mt, current)
	if err != nil || len(alts) == 0 {
		b.reply(chatID, "🤷 No alternatives available.")
		return
	}
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, r := range alts {
		data := "swap|" + args[0] + "|" + string(mt) + "|" + r.ID
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(r.Name, data)))
	}
	msg := tgbotapi.NewMessage(chatID, "🔁 Pick a new "+string(mt)+" for "+args[0]+":")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send alternatives", zap.Error(err))
	}
}

func (b *Bot) handleUnique(ctx context.Context, chatID int64, args []string) {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		b.reply(chatID, "Usage: /unique on|off")
		return
	}
	on := args[0] == "on"
	if err := b.planner.SetUniquePerWeek(ctx, on); err != nil {
		b.reply(chatID, "❌ Could not update the setting.")
		return
	}
	if on {
		b.reply(chatID, "✅ Recipes will not repeat within a week.")
	} else {
		b.reply(chatID, "✅ Recipes may repeat within a week.")
	}
}

func (b *Bot) handleClear(ctx context.Context, chatID int64) {
	if err := b.planner.ClearGenerationError(ctx); err != nil {
		b.reply(chatID, "❌ Could not clear the error.")
		return
	}
	b.reply(chatID, "🧹 Cleared.")
}

func (b *Bot) handleMetrics(ctx context.Context, chatID int64) {
	var summary []metrics.DailySummary
	if b.metrics != nil {
		var err error
		if summary, err = b.metrics.GetDailySummary(ctx, 7); err != nil {
			b.reply(chatID, "❌ Error fetching metrics.")
			return
		}
	}
	b.reply(chatID, FormatMetrics(summary, metrics.GetSysHealth(b.cfg.DatabasePath)))
}
