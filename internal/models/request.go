package models

import (
	"encoding/json"
	"strings"
)

type TripType string

const (
	TripRoundTrip TripType = "Round-trip"
	TripOneWay    TripType = "One-way"
	TripMultiCity TripType = "Multi-city"
)

type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

var cabinLabels = map[string]CabinClass{
	"economy":         CabinEconomy,
	"premium economy": CabinPremiumEconomy,
	"premium_economy": CabinPremiumEconomy,
	"business":        CabinBusiness,
	"first":           CabinFirst,
}

// ParseCabinClass maps a display label to the provider enumeration. Unknown labels fall back to economy.
func ParseCabinClass(label string) CabinClass {
	if c, ok := cabinLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
		return c
	}
	return CabinEconomy
}

// Location identifies an airport or city on the provider side.
type Location struct {
	SkyID    string `json:"skyId"`
	EntityID string `json:"entityId"`
}

// IsComplete reports whether both provider identifiers are set.
func (l Location) IsComplete() bool {
	return l.SkyID != "" && l.EntityID != ""
}

// UnmarshalJSON accepts either an object or the JSON-encoded string form sent by the search form.
func (l *Location) UnmarshalJSON(data []byte) error {
	type plain Location

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*l = Location{}
			return nil
		}
		data = []byte(s)
	}

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*l = Location{
		SkyID:    strings.TrimSpace(p.SkyID),
		EntityID: strings.TrimSpace(p.EntityID),
	}
	return nil
}

type Passengers struct {
	Adults        int `json:"adults"`
	Children      int `json:"children"`
	InfantsInSeat int `json:"infantsInSeat"`
	InfantsOnLap  int `json:"infantsOnLap"`
}

func (p Passengers) Infants() int {
	return p.InfantsInSeat + p.InfantsOnLap
}

type SearchLocations struct {
	Origin      *Location `json:"origin"`
	Destination *Location `json:"destination"`
}

type SearchDates struct {
	Departure *LocalDate `json:"departure"`
	Return    *LocalDate `json:"return"`
}

// SearchInput is the raw trip form as posted by the client.
type SearchInput struct {
	FlightType TripType        `json:"flightType"`
	CabinClass string          `json:"cabinClass"`
	Passengers Passengers      `json:"passengers"`
	Locations  SearchLocations `json:"locations"`
	Dates      SearchDates     `json:"dates"`
}

// TripQuery is a validated search. It is built once and consumed by a single upstream request.
type TripQuery struct {
	TripType      TripType
	Origin        Location
	Destination   Location
	DepartureDate LocalDate
	ReturnDate    *LocalDate
	Passengers    Passengers
	CabinClass    CabinClass
}

func (q TripQuery) IsRoundTrip() bool {
	return q.ReturnDate != nil
}

func (r SearchInput) Build() (TripQuery, error) {
	origin := r.Locations.Origin
	destination := r.Locations.Destination

	if origin == nil || !origin.IsComplete() {
		return TripQuery{}, ErrMissingOrigin
	}
	if destination == nil || !destination.IsComplete() {
		return TripQuery{}, ErrMissingDestination
	}
	if *origin == *destination {
		return TripQuery{}, ErrSameLocation
	}
	if r.Dates.Departure == nil || r.Dates.Departure.IsZero() {
		return TripQuery{}, ErrMissingDepartureDate
	}

	tripType := r.FlightType
	if tripType == "" {
		tripType = TripRoundTrip
	}

	hasReturn := r.Dates.Return != nil && !r.Dates.Return.IsZero()
	if tripType == TripRoundTrip && !hasReturn {
		return TripQuery{}, ErrMissingReturnDate
	}

	var returnDate *LocalDate
	if hasReturn && tripType != TripOneWay {
		if r.Dates.Return.Before(*r.Dates.Departure) {
			return TripQuery{}, ErrReturnBeforeDeparture
		}
		d := *r.Dates.Return
		returnDate = &d
	}

	passengers := r.Passengers
	if passengers.Adults < 0 || passengers.Children < 0 || passengers.InfantsInSeat < 0 || passengers.InfantsOnLap < 0 {
		return TripQuery{}, ErrInvalidPassengers
	}
	if passengers.Adults == 0 {
		passengers.Adults = 1
	}

	return TripQuery{
		TripType:      tripType,
		Origin:        *origin,
		Destination:   *destination,
		DepartureDate: *r.Dates.Departure,
		ReturnDate:    returnDate,
		Passengers:    passengers,
		CabinClass:    ParseCabinClass(r.CabinClass),
	}, nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingOrigin         ValidationError = "Please select an origin airport"
	ErrMissingDestination    ValidationError = "Please select a destination airport"
	ErrSameLocation          ValidationError = "Origin and destination cannot be the same"
	ErrMissingDepartureDate  ValidationError = "Please select a departure date"
	ErrMissingReturnDate     ValidationError = "Please select a return date for round-trip flight"
	ErrReturnBeforeDeparture ValidationError = "Return date cannot be before the departure date"
	ErrInvalidPassengers     ValidationError = "Passenger counts cannot be negative"
)
