package models

import "time"

const UnknownAirline = "Unknown Airline"

type Carrier struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

type Endpoint struct {
	Time    time.Time `json:"time"`
	Airport string    `json:"airport"`
}

type Price struct {
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Formatted string  `json:"formatted,omitempty"`
}

// Leg is one takeoff/landing pair as presented to the user. Duration is in minutes.
type Leg struct {
	Departure    Endpoint `json:"departure"`
	Arrival      Endpoint `json:"arrival"`
	Duration     int      `json:"duration"`
	Carrier      Carrier  `json:"carrier"`
	FlightNumber string   `json:"flightNumber"`
	Stops        int      `json:"stops"`
}

type Itinerary struct {
	ID    string `json:"id"`
	Price Price  `json:"price"`
	Legs  []Leg  `json:"legs"`
}

func (i Itinerary) TotalDuration() int {
	total := 0
	for _, l := range i.Legs {
		total += l.Duration
	}
	return total
}

// Stops counts connections between legs, matching how the results view groups them.
func (i Itinerary) Stops() int {
	if len(i.Legs) == 0 {
		return 0
	}
	return len(i.Legs) - 1
}

func (i Itinerary) FirstDeparture() time.Time {
	if len(i.Legs) == 0 {
		return time.Time{}
	}
	return i.Legs[0].Departure.Time
}

type Airport struct {
	SkyID    string `json:"skyId"`
	EntityID string `json:"entityId"`
	IataCode string `json:"iataCode"`
	Name     string `json:"name"`
	CityName string `json:"cityName"`
}
