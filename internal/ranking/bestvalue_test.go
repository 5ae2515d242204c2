package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

func TestBestValue(t *testing.T) {
	it := models.Itinerary{
		Price: models.Price{Amount: 450},
		Legs:  []models.Leg{{Duration: 200}, {Duration: 100}},
	}

	// price 50*0.5 + duration 50*0.3 + one stop 15*0.2
	assert.Equal(t, 43.0, BestValue(it, 900, 600))
}

func TestScores(t *testing.T) {
	assert.Empty(t, Scores(nil))

	scores := Scores([]models.Itinerary{
		{Price: models.Price{Amount: 100}, Legs: []models.Leg{{Duration: 60}}},
		{Price: models.Price{Amount: 0}},
	})
	assert.Equal(t, []float64{80, 0}, scores)
}
