package meal

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidMeal = errors.New("invalid meal")

type Type string

const (
	Breakfast Type = "breakfast"
	Lunch     Type = "lunch"
	Snacks    Type = "snacks"
	Dinner    Type = "dinner"
)

func (t Type) Valid() bool {
	switch t {
	case Breakfast, Lunch, Snacks, Dinner:
		return true
	}
	return false
}

// Item is a line of a meal. Calories are computed by the client at entry
// time and kept as recorded even if the catalog entry changes later.
type Item struct {
	FoodID      string   `json:"foodId"`
	AmountGrams *float64 `json:"amountGrams,omitempty"`
	AmountCount *float64 `json:"amountCount,omitempty"`
	VariantName string   `json:"variantName,omitempty"`
	Calories    float64  `json:"calories"`
}

type Meal struct {
	MealID   string `json:"mealId"`
	UserID   string `json:"userId"`
	MealDate string `json:"mealDate"`
	MealType Type   `json:"mealType"`
	Items    []Item `json:"items"`
}

func (m Meal) Calories() float64 {
	var total float64
	for _, it := range m.Items {
		total += it.Calories
	}
	return total
}

type Summary struct {
	SummaryID    string  `json:"summaryId"`
	UserID       string  `json:"userId"`
	SummaryDate  string  `json:"summaryDate"`
	TotalKcal    float64 `json:"totalKcal"`
	ExceedsLimit bool    `json:"exceedsLimit"`
}

const dateLayout = "2006-01-02"

// ID is the deterministic meal id: one meal per (user, date, type).
func ID(userID, date string, t Type) string {
	return userID + "_" + date + "_" + string(t)
}

func SummaryID(userID, date string) string {
	return "summary_" + userID + "_" + date
}

func MealsKey(userID, date string) string {
	return "meals:" + userID + ":" + date
}

func SummaryKey(userID, date string) string {
	return "daily_summary:" + userID + ":" + date
}

func summaryPrefix(userID string) string {
	return "daily_summary:" + userID + ":"
}

// ValidateDate checks for a YYYY-MM-DD calendar date.
func ValidateDate(date string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidMeal, date)
	}
	return nil
}

func validateUser(userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: userId required", ErrInvalidMeal)
	}
	return nil
}

func (m Meal) validate() error {
	if err := validateUser(m.UserID); err != nil {
		return err
	}
	if err := ValidateDate(m.MealDate); err != nil {
		return err
	}
	if !m.MealType.Valid() {
		return fmt.Errorf("%w: mealType %q", ErrInvalidMeal, m.MealType)
	}
	return nil
}
