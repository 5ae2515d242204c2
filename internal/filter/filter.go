package filter

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/dharmasatrya/flightproxy/internal/models"
	"github.com/dharmasatrya/flightproxy/internal/ranking"
)

const (
	SortPrice     = "price"
	SortDuration  = "duration"
	SortDeparture = "departure"
	SortBestValue = "best_value"
)

// MaxStopsBucket is the "N or more stops" bucket of the stops filter.
const MaxStopsBucket = 2

type Options struct {
	SortBy    string
	SortOrder string
	// Stops keeps itineraries with exactly this many stops, or at least MaxStopsBucket.
	Stops *int
}

func (o Options) IsZero() bool {
	return o.SortBy == "" && o.Stops == nil
}

// ParseStops reads the stops query value. Empty and "all" mean no filter.
func ParseStops(v string) (*int, error) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "all" {
		return nil, nil
	}

	n, err := strconv.Atoi(strings.TrimSuffix(v, "+"))
	if err != nil || n < 0 {
		return nil, strconv.ErrSyntax
	}
	return &n, nil
}

// Apply filters and sorts a copy of itineraries. Zero options return the input order untouched.
func Apply(itineraries []models.Itinerary, opts Options) []models.Itinerary {
	result := applyFilters(itineraries, opts.Stops)
	if opts.SortBy == "" {
		return result
	}

	return applySort(result, opts.SortBy, opts.SortOrder)
}

func applyFilters(itineraries []models.Itinerary, stops *int) []models.Itinerary {
	if stops == nil {
		return slices.Clone(itineraries)
	}

	result := make([]models.Itinerary, 0, len(itineraries))
	for _, it := range itineraries {
		if matchesStops(it, *stops) {
			result = append(result, it)
		}
	}
	return result
}

func matchesStops(it models.Itinerary, stops int) bool {
	if stops >= MaxStopsBucket {
		return it.Stops() >= MaxStopsBucket
	}
	return it.Stops() == stops
}

func applySort(itineraries []models.Itinerary, sortBy, sortOrder string) []models.Itinerary {
	if len(itineraries) == 0 {
		return itineraries
	}

	ascending := strings.ToLower(sortOrder) != "desc"

	var less func(i, j int) bool
	switch strings.ToLower(sortBy) {
	case SortDuration:
		less = func(i, j int) bool {
			return itineraries[i].TotalDuration() < itineraries[j].TotalDuration()
		}

	case SortDeparture:
		less = func(i, j int) bool {
			return itineraries[i].FirstDeparture().Before(itineraries[j].FirstDeparture())
		}

	case SortBestValue:
		scores := ranking.Scores(itineraries)
		order := make([]int, len(itineraries))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			if ascending {
				return scores[order[a]] < scores[order[b]]
			}
			return scores[order[a]] > scores[order[b]]
		})

		sorted := make([]models.Itinerary, len(order))
		for i, idx := range order {
			sorted[i] = itineraries[idx]
		}
		return sorted

	default:
		// Default to price
		less = func(i, j int) bool {
			return itineraries[i].Price.Amount < itineraries[j].Price.Amount
		}
	}

	sort.SliceStable(itineraries, func(i, j int) bool {
		if ascending {
			return less(i, j)
		}
		return less(j, i)
	})

	return itineraries
}
