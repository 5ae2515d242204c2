package models

type SearchResponse struct {
	SearchID string      `json:"searchId"`
	Flights  []Itinerary `json:"flights"`
	Message  string      `json:"message"`
}

type StoreResultsRequest struct {
	SearchID string `json:"searchId"`
	// Flights is nil when the field is absent; an explicit [] is a valid empty result.
	Flights *[]Itinerary `json:"flights"`
}

type StoreResultsResponse struct {
	Success bool `json:"success"`
}

type ResultsResponse struct {
	Flights      []Itinerary `json:"flights"`
	TotalResults int         `json:"totalResults"`
}

type AirportsResponse struct {
	Airports []Airport `json:"airports"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
