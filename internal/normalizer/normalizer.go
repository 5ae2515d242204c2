// Package normalizer maps the flight provider's nested search payload onto models.Itinerary.
//
// Missing or malformed fields fall back to placeholders; a bad leg never drops its itinerary and a
// bad itinerary never drops the batch.
package normalizer

import (
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/dharmasatrya/flightproxy/internal/models"
	"github.com/dharmasatrya/flightproxy/internal/providers"
	"github.com/dharmasatrya/flightproxy/internal/timezone"
	"github.com/dharmasatrya/flightproxy/pkg/currency"
)

const NoResultsMessage = "No itineraries found for this route and date combination"

// Normalize returns itineraries in provider order. When there are none it returns an empty slice
// and a human-readable reason.
func Normalize(raw providers.RawResponse, currencyCode string) ([]models.Itinerary, string) {
	data := asMap(map[string]any(raw)["data"])
	rawItineraries := asSlice(data["itineraries"])
	if len(rawItineraries) == 0 {
		return []models.Itinerary{}, NoResultsMessage
	}

	itineraries := make([]models.Itinerary, 0, len(rawItineraries))
	for _, v := range rawItineraries {
		it, ok := v.(map[string]any)
		if !ok {
			continue
		}
		itineraries = append(itineraries, normalizeItinerary(it, currencyCode))
	}

	if len(itineraries) == 0 {
		return itineraries, NoResultsMessage
	}
	return itineraries, ""
}

func normalizeItinerary(it map[string]any, currencyCode string) models.Itinerary {
	amount := parseAmount(asMap(it["price"])["raw"])

	rawLegs := asSlice(it["legs"])
	legs := make([]models.Leg, 0, max(len(rawLegs), 1))
	for _, l := range rawLegs {
		legs = append(legs, normalizeLeg(asMap(l)))
	}
	if len(legs) == 0 {
		legs = append(legs, normalizeLeg(nil))
	}

	return models.Itinerary{
		ID: str(it["id"]),
		Price: models.Price{
			Amount:    amount,
			Currency:  currencyCode,
			Formatted: currency.Format(amount, currencyCode),
		},
		Legs: legs,
	}
}

// normalizeLeg surfaces the first marketing carrier and the first segment; codeshare and
// multi-segment detail is dropped.
func normalizeLeg(leg map[string]any) models.Leg {
	carrier := firstMap(asMap(leg["carriers"])["marketing"])
	segment := firstMap(leg["segments"])

	name := str(carrier["name"])
	if name == "" {
		name = models.UnknownAirline
	}

	return models.Leg{
		Departure: models.Endpoint{
			Time:    timezone.ParseOrZero(str(leg["departure"])),
			Airport: airportCode(leg["origin"], segment["origin"]),
		},
		Arrival: models.Endpoint{
			Time:    timezone.ParseOrZero(str(leg["arrival"])),
			Airport: airportCode(leg["destination"], segment["destination"]),
		},
		Duration: nonNegative(leg["durationInMinutes"]),
		Carrier: models.Carrier{
			Name: name,
			Code: str(carrier["alternateId"]),
		},
		FlightNumber: str(segment["flightNumber"]),
		Stops:        nonNegative(leg["stopCount"]),
	}
}

func airportCode(candidates ...any) string {
	for _, c := range candidates {
		if code := str(asMap(c)["displayCode"]); code != "" {
			return code
		}
	}
	return ""
}

func parseAmount(v any) float64 {
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func nonNegative(v any) int {
	n, err := cast.ToIntE(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func str(v any) string {
	switch v.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func asMap(v any) map[string]any {
	m, err := cast.ToStringMapE(v)
	if err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func asSlice(v any) []any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	return s
}

func firstMap(v any) map[string]any {
	s := asSlice(v)
	if len(s) == 0 {
		return map[string]any{}
	}
	return asMap(s[0])
}
