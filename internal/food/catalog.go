package food

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"kcal/internal/kv"
)

const catalogKey = "food_items"

var ErrDuplicateFood = errors.New("a food item with this name already exists")
var ErrInvalidPayload = errors.New("invalid food items data")

// Catalog is the shared food list stored under a single key.
type Catalog struct {
	Store kv.Store
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveID lowercases name and collapses every non [a-z0-9] run into "_".
// Leading and trailing underscores are kept: "Orange Juice!" -> "orange_juice_".
func DeriveID(name string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToLower(name), "_")
}

// EnsureSeeded writes the default catalog when none exists, otherwise drops
// repeated foodIds (first wins) and writes back only if something was dropped.
func (c *Catalog) EnsureSeeded(ctx context.Context) error {
	_, err := kv.UpdateJSON(ctx, c.Store, catalogKey, func(items []Item, found bool) ([]Item, bool, error) {
		if !found {
			slog.InfoContext(ctx, "seeding food catalog", slog.Int("items", len(defaults)))
			return Defaults(), true, nil
		}

		unique := dedupe(items)
		if len(unique) == len(items) {
			return items, false, nil
		}
		slog.InfoContext(ctx, "deduplicated food catalog",
			slog.Int("before", len(items)),
			slog.Int("after", len(unique)),
		)
		return unique, true, nil
	})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	return nil
}

func (c *Catalog) List(ctx context.Context) ([]Item, error) {
	items, found, err := kv.GetJSON[[]Item](ctx, c.Store, catalogKey)
	if err != nil {
		return nil, err
	}
	if !found || items == nil {
		return []Item{}, nil
	}
	return items, nil
}

func (c *Catalog) Add(ctx context.Context, in NewFood) (Item, error) {
	item, err := newItem(in)
	if err != nil {
		return Item{}, err
	}

	_, err = kv.UpdateJSON(ctx, c.Store, catalogKey, func(items []Item, _ bool) ([]Item, bool, error) {
		for _, it := range items {
			if it.FoodID == item.FoodID {
				return nil, false, ErrDuplicateFood
			}
		}
		return append(items, item), true, nil
	})
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func newItem(in NewFood) (Item, error) {
	if !in.AmountType.Valid() {
		return Item{}, fmt.Errorf("%w: amountType must be grams or count", ErrInvalidPayload)
	}

	id := DeriveID(in.Name)
	if strings.Trim(id, "_") == "" {
		return Item{}, fmt.Errorf("%w: name must contain a letter or digit", ErrInvalidPayload)
	}

	item := Item{
		FoodID:     id,
		Name:       in.Name,
		Category:   in.Category,
		AmountType: in.AmountType,
	}
	if item.Category == "" {
		item.Category = "custom"
	}

	switch in.AmountType {
	case AmountGrams:
		if in.CaloriesPerGram == nil {
			return Item{}, fmt.Errorf("%w: caloriesPerGram required for grams", ErrInvalidPayload)
		}
		item.CaloriesPerGram = in.CaloriesPerGram
	case AmountCount:
		if in.CaloriesPerUnit == nil {
			return Item{}, fmt.Errorf("%w: caloriesPerUnit required for count", ErrInvalidPayload)
		}
		item.CaloriesPerUnit = in.CaloriesPerUnit
	}
	return item, nil
}

// Remove is a no-op when foodID is not in the catalog.
func (c *Catalog) Remove(ctx context.Context, foodID string) error {
	_, err := kv.UpdateJSON(ctx, c.Store, catalogKey, func(items []Item, _ bool) ([]Item, bool, error) {
		kept := make([]Item, 0, len(items))
		for _, it := range items {
			if it.FoodID != foodID {
				kept = append(kept, it)
			}
		}
		return kept, len(kept) != len(items), nil
	})
	return err
}

// ReplaceAll overwrites the catalog with raw, which must be a JSON array of items.
func (c *Catalog) ReplaceAll(ctx context.Context, raw json.RawMessage) ([]Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidPayload
	}

	var items []Item
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := kv.SetJSON(ctx, c.Store, catalogKey, items); err != nil {
		return nil, err
	}
	return items, nil
}

func dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.FoodID]; ok {
			continue
		}
		seen[it.FoodID] = struct{}{}
		out = append(out, it)
	}
	return out
}
