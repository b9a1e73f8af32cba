package meals

import "github.com/coreybb/dietlog/models"

// ComputeMetrics tallies adherence over meals, which must already be in
// ascending OccurredAt order. The best streak is the longest run of
// within-diet meals not interrupted by an off-diet one.
func ComputeMetrics(meals []models.Meal) models.DietMetrics {
	var m models.DietMetrics
	current := 0
	for _, meal := range meals {
		if meal.WithinDiet {
			m.MealsAmountWithinDiet++
			current++
			continue
		}
		m.MealsAmountWithoutDiet++
		m.BestSequenceOfMealsWithinDiet = max(m.BestSequenceOfMealsWithinDiet, current)
		current = 0
	}
	m.BestSequenceOfMealsWithinDiet = max(m.BestSequenceOfMealsWithinDiet, current)
	m.MealsAmount = len(meals)
	return m
}
