package domain

// Macros are the daily macro nutrient totals in grams.
type Macros struct {
	ProteinG float64 `bson:"protein_g" json:"protein_g"`
	CarbsG   float64 `bson:"carbs_g" json:"carbs_g"`
	FatG     float64 `bson:"fat_g" json:"fat_g"`
}

// MealSlot identifies a meal's place in the day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// Meal is one meal in a nutrition day (or a user-supplied replacement).
type Meal struct {
	MealTime    MealSlot `bson:"mealTime" json:"mealTime"`
	Description string   `bson:"description" json:"description"`
	Ingredients []string `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Calories    int      `bson:"calories" json:"calories"`
	ProteinG    float64  `bson:"protein_g" json:"protein_g"`
	CarbsG      float64  `bson:"carbs_g" json:"carbs_g"`
	FatG        float64  `bson:"fat_g" json:"fat_g"`
	Recipe      string   `bson:"recipe,omitempty" json:"recipe,omitempty"`
}

// NutritionDay is one day's meals within a Plan.
type NutritionDay struct {
	DayNumber          int    `bson:"dayNumber" json:"dayNumber"`
	TotalDailyCalories int    `bson:"totalDailyCalories" json:"totalDailyCalories"`
	TotalDailyMacros   Macros `bson:"totalDailyMacros" json:"totalDailyMacros"`
	Meals              []Meal `bson:"meals" json:"meals"`
}

// MealAt returns the meal for the given slot, or nil if the day has none.
func (n *NutritionDay) MealAt(slot MealSlot) *Meal {
	for i := range n.Meals {
		if n.Meals[i].MealTime == slot {
			return &n.Meals[i]
		}
	}
	return nil
}
