package ranking

import (
	"math"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

// Scores returns the best value score of each itinerary, index-aligned with the input.
func Scores(itineraries []models.Itinerary) []float64 {
	scores := make([]float64, len(itineraries))
	if len(itineraries) == 0 {
		return scores
	}

	maxPrice := findMaxPrice(itineraries)
	maxDuration := findMaxDuration(itineraries)

	for i, it := range itineraries {
		scores[i] = BestValue(it, maxPrice, maxDuration)
	}

	return scores
}

// Lower score = better value
func BestValue(it models.Itinerary, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (it.Price.Amount / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(it.TotalDuration()) / maxDuration) * 100
	}

	stopsScore := float64(it.Stops()) * 15
	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

func findMaxPrice(itineraries []models.Itinerary) float64 {
	maxPrice := 0.0
	for _, it := range itineraries {
		if it.Price.Amount > maxPrice {
			maxPrice = it.Price.Amount
		}
	}
	return maxPrice
}

func findMaxDuration(itineraries []models.Itinerary) float64 {
	maxDuration := 0.0
	for _, it := range itineraries {
		dur := float64(it.TotalDuration())
		if dur > maxDuration {
			maxDuration = dur
		}
	}
	return maxDuration
}
