package shopping

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meal-planner/internal/database"
)

var (
	ErrListNotFound = errors.New("shopping list not found")
	ErrItemNotFound = errors.New("shopping list item not found")
)

// Repository handles persistence of shopping lists.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new shopping list repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

// Save stores the list for its date range, replacing any earlier list for
// the same range, and returns its id.
func (r *Repository) Save(ctx context.Context, list *ShoppingList) (int64, error) {
	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now().UTC()
	}

	var id int64
	err = r.db.QueryRowContext(ctx, `
INSERT INTO shopping_lists (start_date, end_date, items, created_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (start_date, end_date) DO UPDATE SET
    items = excluded.items,
    created_at = excluded.created_at
RETURNING id`,
		list.StartDate, list.EndDate, string(itemsJSON), database.FormatTime(list.CreatedAt),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert shopping list: %w", err)
	}
	list.ID = id
	return id, nil
}

// Replace stores freshly generated items for a date range. Items already
// checked off in the previous list for that range stay checked.
func (r *Repository) Replace(ctx context.Context, start, end string, items []GroceryItem) (*ShoppingList, error) {
	prev, err := r.GetByRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		items = CarryChecked(prev.Items, items)
	}
	list := &ShoppingList{StartDate: start, EndDate: end, Items: items}
	if _, err := r.Save(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GetByRange retrieves the list for a date range. A missing list yields nil, nil.
func (r *Repository) GetByRange(ctx context.Context, start, end string) (*ShoppingList, error) {
	return r.getOne(ctx, `SELECT id, start_date, end_date, items, created_at FROM shopping_lists WHERE start_date = ? AND end_date = ?`, start, end)
}

// Get retrieves a list by id. A missing list yields nil, nil.
func (r *Repository) Get(ctx context.Context, id int64) (*ShoppingList, error) {
	return r.getOne(ctx, `SELECT id, start_date, end_date, items, created_at FROM shopping_lists WHERE id = ?`, id)
}

// Latest returns the most recently generated list, or nil.
func (r *Repository) Latest(ctx context.Context) (*ShoppingList, error) {
	return r.getOne(ctx, `SELECT id, start_date, end_date, items, created_at FROM shopping_lists ORDER BY created_at DESC, id DESC LIMIT 1`)
}

// SetChecked toggles the checked flag of the item with the given
// normalized ingredient name.
func (r *Repository) SetChecked(ctx context.Context, id int64, ingredientKey string, checked bool) (*ShoppingList, error) {
	list, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrListNotFound
	}

	found := false
	for i := range list.Items {
		if list.Items[i].Ingredient == ingredientKey {
			list.Items[i].Checked = checked
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrItemNotFound, ingredientKey)
	}

	itemsJSON, err := json.Marshal(list.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shopping list items: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `UPDATE shopping_lists SET items = ? WHERE id = ?`, string(itemsJSON), id); err != nil {
		return nil, fmt.Errorf("failed to update shopping list: %w", err)
	}
	return list, nil
}

// Delete removes a list by id.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shopping_lists WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete shopping list: %w", err)
	}
	return nil
}

func (r *Repository) getOne(ctx context.Context, query string, args ...any) (*ShoppingList, error) {
	var (
		list      ShoppingList
		items     string
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&list.ID, &list.StartDate, &list.EndDate, &items, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &list.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shopping list items: %w", err)
	}
	list.CreatedAt = database.ParseTime(createdAt)
	return &list, nil
}
