package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

func itinerary(id string, price float64, durations ...int) models.Itinerary {
	legs := make([]models.Leg, len(durations))
	base := time.Date(2025, 3, 1, 6, 0, 0, 0, time.UTC)
	for i, d := range durations {
		legs[i] = models.Leg{
			Duration:  d,
			Departure: models.Endpoint{Time: base.Add(time.Duration(price) * time.Minute)},
		}
	}
	return models.Itinerary{ID: id, Price: models.Price{Amount: price}, Legs: legs}
}

func ids(itineraries []models.Itinerary) []string {
	out := make([]string, len(itineraries))
	for i, it := range itineraries {
		out[i] = it.ID
	}
	return out
}

func fixtures() []models.Itinerary {
	return []models.Itinerary{
		itinerary("direct-expensive", 900, 300),
		itinerary("one-stop-cheap", 200, 200, 250),
		itinerary("two-stop-mid", 500, 100, 100, 100),
		itinerary("three-stop", 300, 60, 60, 60, 60),
	}
}

func TestApply_ZeroOptionsKeepsOrder(t *testing.T) {
	in := fixtures()
	out := Apply(in, Options{})
	assert.Equal(t, ids(in), ids(out))
}

func TestApply_SortPrice(t *testing.T) {
	out := Apply(fixtures(), Options{SortBy: SortPrice})
	assert.Equal(t, []string{"one-stop-cheap", "three-stop", "two-stop-mid", "direct-expensive"}, ids(out))

	out = Apply(fixtures(), Options{SortBy: SortPrice, SortOrder: "desc"})
	assert.Equal(t, []string{"direct-expensive", "two-stop-mid", "three-stop", "one-stop-cheap"}, ids(out))
}

func TestApply_SortDuration(t *testing.T) {
	out := Apply(fixtures(), Options{SortBy: SortDuration})
	assert.Equal(t, []string{"three-stop", "direct-expensive", "two-stop-mid", "one-stop-cheap"}, ids(out))
}

func TestApply_SortDeparture(t *testing.T) {
	out := Apply(fixtures(), Options{SortBy: SortDeparture})
	assert.Equal(t, "one-stop-cheap", out[0].ID)
	assert.Equal(t, "direct-expensive", out[3].ID)
}

func TestApply_SortBestValue(t *testing.T) {
	out := Apply(fixtures(), Options{SortBy: SortBestValue})
	require.Len(t, out, 4)
	assert.Equal(t, "three-stop", out[0].ID)
	assert.Equal(t, "direct-expensive", out[3].ID)
}

func TestApply_StopsFilter(t *testing.T) {
	zero, one, two := 0, 1, 2

	assert.Equal(t, []string{"direct-expensive"}, ids(Apply(fixtures(), Options{Stops: &zero})))
	assert.Equal(t, []string{"one-stop-cheap"}, ids(Apply(fixtures(), Options{Stops: &one})))
	assert.Equal(t, []string{"two-stop-mid", "three-stop"}, ids(Apply(fixtures(), Options{Stops: &two})))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := fixtures()
	_ = Apply(in, Options{SortBy: SortPrice})
	assert.Equal(t, "direct-expensive", in[0].ID)
}

func TestParseStops(t *testing.T) {
	n, err := ParseStops("")
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = ParseStops("all")
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = ParseStops("2+")
	require.NoError(t, err)
	assert.Equal(t, 2, *n)

	_, err = ParseStops("-1")
	assert.Error(t, err)
	_, err = ParseStops("many")
	assert.Error(t, err)
}
