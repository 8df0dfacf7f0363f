package food

type AmountType string

const (
	AmountGrams AmountType = "grams"
	AmountCount AmountType = "count"
)

func (a AmountType) Valid() bool {
	return a == AmountGrams || a == AmountCount
}

// Item is a catalog entry. Only the calorie field selected by AmountType is meaningful.
type Item struct {
	FoodID          string     `json:"foodId"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	AmountType      AmountType `json:"amountType"`
	CaloriesPerGram *float64   `json:"caloriesPerGram,omitempty"`
	CaloriesPerUnit *float64   `json:"caloriesPerUnit,omitempty"`
}

// NewFood is the payload of an add request; the id is derived from Name.
type NewFood struct {
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	AmountType      AmountType `json:"amountType"`
	CaloriesPerGram *float64   `json:"caloriesPerGram"`
	CaloriesPerUnit *float64   `json:"caloriesPerUnit"`
}

func kcal(v float64) *float64 { return &v }

// defaults seed an empty catalog.
var defaults = []Item{
	{FoodID: "chapati", Name: "Chapati", Category: "grains", AmountType: AmountCount, CaloriesPerUnit: kcal(120)},
	{FoodID: "rice", Name: "Rice (Cooked)", Category: "grains", AmountType: AmountGrams, CaloriesPerGram: kcal(1.3)},
	{FoodID: "mixed_sabji", Name: "Mixed Sabji", Category: "vegetables", AmountType: AmountGrams, CaloriesPerGram: kcal(0.9)},
	{FoodID: "paneer_sabji", Name: "Paneer Sabji", Category: "vegetables", AmountType: AmountGrams, CaloriesPerGram: kcal(2)},
	{FoodID: "banana", Name: "Banana", Category: "fruits", AmountType: AmountGrams, CaloriesPerGram: kcal(0.89)},
	{FoodID: "apple", Name: "Apple", Category: "fruits", AmountType: AmountGrams, CaloriesPerGram: kcal(0.52)},
	{FoodID: "milk", Name: "Milk", Category: "dairy", AmountType: AmountGrams, CaloriesPerGram: kcal(0.42)},
	{FoodID: "egg", Name: "Egg (Boiled)", Category: "protein", AmountType: AmountCount, CaloriesPerUnit: kcal(78)},
	{FoodID: "dal", Name: "Dal (Cooked)", Category: "protein", AmountType: AmountGrams, CaloriesPerGram: kcal(1.16)},
}

// Defaults returns a copy of the seed catalog.
func Defaults() []Item {
	out := make([]Item, len(defaults))
	copy(out, defaults)
	return out
}
