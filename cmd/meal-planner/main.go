package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logging"
	"meal-planner/internal/mealplan"
	"meal-planner/internal/planner"
	"meal-planner/internal/recipe"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			printUsage()
		}
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		application.Close()
		os.Exit(1)
	}
}

var errUsage = errors.New("unknown command")

func run(ctx context.Context, a *app.App, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	nextMonday, nextSunday := mealplan.WeekBounds(time.Now().AddDate(0, 0, 7))
	start := fs.String("start", mealplan.FormatDate(nextMonday), "First date of the range (YYYY-MM-DD)")
	end := fs.String("end", mealplan.FormatDate(nextSunday), "Last date of the range (YYYY-MM-DD)")
	date := fs.String("date", mealplan.FormatDate(time.Now()), "Date (YYYY-MM-DD)")
	mealType := fs.String("type", "dinner", "Meal type: breakfast, lunch or dinner")
	recipeID := fs.String("recipe", "", "Recipe id")
	servings := fs.Int("n", 2, "Number of servings")
	on := fs.Bool("on", true, "Enable the setting")
	days := fs.Int("days", 30, "Keep records for the last N days")
	dir := fs.String("dir", "recipes", "Directory of recipe JSON files")
	fs.Parse(args)

	mt := recipe.MealType(strings.ToLower(*mealType))
	svc := a.Planner

	switch cmd {
	case "week":
		return report(ctx, a, svc.GenerateWeeklyMealPlan(ctx, *start, *end), *start, *end)
	case "day":
		return report(ctx, a, svc.GenerateAllMealsForDay(ctx, *date, nil), *date, *date)
	case "meal":
		return report(ctx, a, svc.GenerateMealPlan(ctx, *date, mt), *date, *date)
	case "swap":
		if !svc.SwapMeal(ctx, *date, mt, *recipeID) {
			state, err := svc.Snapshot(ctx)
			if err != nil {
				return err
			}
			return errors.New(state.LastGenerationError)
		}
		return showPlan(ctx, a, *date, *date)
	case "alternatives":
		alts, err := svc.GetAlternativeRecipes(ctx, *date, mt, *recipeID)
		if err != nil {
			return err
		}
		for _, r := range alts {
			fmt.Printf("%-24s %s\n", r.ID, r.Name)
		}
		return nil
	case "servings":
		if err := svc.UpdateMealServings(ctx, *date, mt, *servings); err != nil {
			return err
		}
		return showPlan(ctx, a, *date, *date)
	case "groceries":
		list, err := a.GroceryList(ctx, *start, *end)
		if err != nil {
			return err
		}
		fmt.Printf("Shopping list %s to %s (#%d)\n", list.StartDate, list.EndDate, list.ID)
		category := ""
		for _, item := range list.Items {
			if item.Category != category {
				category = item.Category
				fmt.Printf("\n%s\n", category)
			}
			mark := " "
			if item.Checked {
				mark = "x"
			}
			fmt.Printf("  [%s] %s\n", mark, item.Name)
		}
		return nil
	case "unique":
		if err := svc.SetUniquePerWeek(ctx, *on); err != nil {
			return err
		}
		fmt.Printf("Unique recipes per week: %t\n", *on)
		return nil
	case "clear-error":
		return svc.ClearGenerationError(ctx)
	case "sync-recipes":
		n, err := a.SyncRecipes(ctx)
		if n > 0 {
			fmt.Printf("Synced %d recipes from Ghost.\n", n)
		}
		return err
	case "import-recipes":
		n, err := a.ImportRecipes(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d recipes from %s.\n", n, *dir)
		return nil
	case "export-recipes":
		n, err := a.ExportRecipes(ctx, *dir)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d recipes to %s.\n", n, *dir)
		return nil
	case "publish":
		post, err := a.PublishPlan(ctx, *start, *end)
		if err != nil {
			return err
		}
		fmt.Printf("Created draft %q (%s).\n", post.Title, post.ID)
		return nil
	case "metrics-cleanup":
		affected, err := a.CleanupMetrics(ctx, *days)
		if err != nil {
			return err
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
		return nil
	default:
		return fmt.Errorf("%w: %s", errUsage, cmd)
	}
}

func report(ctx context.Context, a *app.App, res planner.GenerationResult, start, end string) error {
	for _, s := range res.Suggestions {
		fmt.Printf("Note: %s\n", s)
	}
	if !res.Success {
		return errors.New(res.Error)
	}
	return showPlan(ctx, a, start, end)
}

func showPlan(ctx context.Context, a *app.App, start, end string) error {
	state, err := a.Planner.Snapshot(ctx)
	if err != nil {
		return err
	}
	resolver := a.Planner.Resolver()
	plan := state.Plan.Range(start, end)
	for _, date := range plan.Dates() {
		day := plan[date]
		fmt.Printf("\n=== %s ===\n", date)
		for _, mt := range recipe.MealTypes {
			item := day.Slot(mt)
			if item == nil {
				fmt.Printf("%-10s: -\n", mt)
				continue
			}
			line := fmt.Sprintf("%-10s: %s", mt, item.DisplayName())
			if n := item.AssignedServings(); n != nil {
				line += fmt.Sprintf(" (%d servings)", *n)
			}
			if kcal, ok := mealplan.Calories(item, resolver); ok {
				line += fmt.Sprintf(", %.0f kcal", kcal)
			}
			fmt.Println(line)
		}
		for _, snack := range day.Snacks {
			fmt.Printf("%-10s: %s\n", "snack", snack.DisplayName())
		}
	}
	return nil
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [flags]")
	fmt.Println("\nCommands:")
	fmt.Println("  week             Plan every meal between -start and -end")
	fmt.Println("  day              Plan every meal of -date")
	fmt.Println("  meal             Plan one meal (-date, -type)")
	fmt.Println("  swap             Replace a meal with -recipe")
	fmt.Println("  alternatives     List recipes that could replace a meal")
	fmt.Println("  servings         Set the servings of a meal (-n)")
	fmt.Println("  groceries        Build the shopping list for -start to -end")
	fmt.Println("  unique           Avoid repeats within a week (-on=true|false)")
	fmt.Println("  clear-error      Dismiss the last generation error")
	fmt.Println("  sync-recipes     Fetch recipes from Ghost")
	fmt.Println("  import-recipes   Load recipe JSON files from -dir")
	fmt.Println("  export-recipes   Write stored recipes to -dir")
	fmt.Println("  publish          Post the plan to Ghost as a draft")
	fmt.Println("  metrics-cleanup  Remove old generation records (-days)")
}
