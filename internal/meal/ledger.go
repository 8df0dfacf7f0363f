// Package meal stores meals per user and date and keeps each day's calorie summary current.
package meal

import (
	"context"
	"encoding/json"
	"fmt"

	"kcal/internal/kv"
	"kcal/internal/user"
)

// Profiles resolves a user's profile, creating the default one if missing.
type Profiles interface {
	GetOrCreate(ctx context.Context, userID string) (user.Profile, error)
}

type Ledger struct {
	Store kv.Store
	Users Profiles
}

func (l *Ledger) ListForDate(ctx context.Context, userID, date string) ([]Meal, error) {
	meals, _, err := kv.GetJSON[[]Meal](ctx, l.Store, MealsKey(userID, date))
	if err != nil {
		return nil, err
	}
	if meals == nil {
		meals = []Meal{}
	}
	return meals, nil
}

// Save upserts m into its day, then recomputes that day's summary.
// MealID is always ID(userID, date, type), whatever the client sent, so a
// day holds at most one meal per type.
func (l *Ledger) Save(ctx context.Context, m Meal) (Meal, Summary, error) {
	if err := m.validate(); err != nil {
		return Meal{}, Summary{}, err
	}
	m.MealID = ID(m.UserID, m.MealDate, m.MealType)
	if m.Items == nil {
		m.Items = []Item{}
	}

	_, err := kv.UpdateJSON(ctx, l.Store, MealsKey(m.UserID, m.MealDate), func(meals []Meal, _ bool) ([]Meal, bool, error) {
		for i := range meals {
			if meals[i].MealID == m.MealID {
				meals[i] = m
				return meals, true, nil
			}
		}
		return append(meals, m), true, nil
	})
	if err != nil {
		return Meal{}, Summary{}, fmt.Errorf("save meal %s: %w", m.MealID, err)
	}

	sum, err := l.Recompute(ctx, m.UserID, m.MealDate)
	if err != nil {
		return Meal{}, Summary{}, err
	}
	return m, sum, nil
}

// Delete removes mealID from the day (no-op if absent) and recomputes the summary.
func (l *Ledger) Delete(ctx context.Context, userID, date, mealID string) (Summary, error) {
	if err := validateUser(userID); err != nil {
		return Summary{}, err
	}
	if err := ValidateDate(date); err != nil {
		return Summary{}, err
	}

	_, err := kv.UpdateJSON(ctx, l.Store, MealsKey(userID, date), func(meals []Meal, _ bool) ([]Meal, bool, error) {
		kept := make([]Meal, 0, len(meals))
		for _, m := range meals {
			if m.MealID != mealID {
				kept = append(kept, m)
			}
		}
		return kept, true, nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("delete meal %s: %w", mealID, err)
	}

	return l.Recompute(ctx, userID, date)
}

// Recompute totals the day's meals against the user's limit and stores the result.
func (l *Ledger) Recompute(ctx context.Context, userID, date string) (Summary, error) {
	mealsKey, userKey := MealsKey(userID, date), user.Key(userID)

	vals, err := l.Store.MGet(ctx, []string{mealsKey, userKey})
	if err != nil {
		return Summary{}, fmt.Errorf("recompute %s %s: %w", userID, date, err)
	}

	var meals []Meal
	if raw, ok := vals[mealsKey]; ok {
		if err := json.Unmarshal(raw, &meals); err != nil {
			return Summary{}, fmt.Errorf("recompute %s %s: decode meals: %w", userID, date, err)
		}
	}

	var profile user.Profile
	if raw, ok := vals[userKey]; ok {
		if err := json.Unmarshal(raw, &profile); err != nil {
			return Summary{}, fmt.Errorf("recompute %s %s: decode user: %w", userID, date, err)
		}
	} else if profile, err = l.Users.GetOrCreate(ctx, userID); err != nil {
		return Summary{}, err
	}

	var total float64
	for _, m := range meals {
		total += m.Calories()
	}

	sum := Summary{
		SummaryID:    SummaryID(userID, date),
		UserID:       userID,
		SummaryDate:  date,
		TotalKcal:    total,
		ExceedsLimit: total > profile.DailyLimitKcal,
	}
	if err := kv.SetJSON(ctx, l.Store, SummaryKey(userID, date), sum); err != nil {
		return Summary{}, fmt.Errorf("recompute %s %s: %w", userID, date, err)
	}
	return sum, nil
}
