package models

// Meal is a stored meal record. OccurredAt and CreatedAt are epoch milliseconds;
// UpdatedAt is kept pre-formatted as a display string and is empty until the first update.
type Meal struct {
	ID          string
	UserID      string
	Name        string
	Description string
	OccurredAt  int64
	WithinDiet  bool
	CreatedAt   int64
	UpdatedAt   string
}

// MealView is the outward representation of a Meal, with the occurrence
// instant rendered as "YYYY-MM-DD HH:MM:SS".
type MealView struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	WithinDiet  bool    `json:"its_within_the_diet"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

// MealInput carries the fields needed to record a new meal.
type MealInput struct {
	Name        string
	Description string
	Date        string
	WithinDiet  bool
}

// MealPatch carries an update. Empty strings mean "keep the stored value";
// WithinDiet is nil only when the caller did not send the field.
type MealPatch struct {
	Name        string
	Description string
	Date        string
	WithinDiet  *bool
}

// DietMetrics summarises a user's adherence.
type DietMetrics struct {
	MealsAmount                   int `json:"mealsAmount"`
	MealsAmountWithinDiet         int `json:"mealsAmountWithinDiet"`
	MealsAmountWithoutDiet        int `json:"mealsAmountWithoutDiet"`
	BestSequenceOfMealsWithinDiet int `json:"bestSequenceOfMealsWithinDiet"`
}
