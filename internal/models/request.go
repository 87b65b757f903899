package models

const (
	FieldQuery              = "query"
	FieldRoute              = "route"
	FieldLeavingAirport     = "leaving_airport"
	FieldDestinationAirport = "destination_airport"
	FieldDepartureDate      = "departure_date"
	FieldReturnDate         = "return_date"
	FieldDates              = "dates"
	FieldPassengers         = "passengers"
	FieldAdults             = "num_adults"
	FieldSeniors            = "num_seniors"
	FieldStudents           = "num_students"
	FieldChildrenAges       = "children_ages"
	FieldInfantsOnSeat      = "infants_on_seat"
	FieldInfantsOnLap       = "infants_on_lap"
)

// FlightParams is the wire shape of a structured search. It is both the
// /api/search_flights body and the extracted_params of an AI search.
type FlightParams struct {
	LeavingAirport     string `json:"leaving_airport"`
	DestinationAirport string `json:"destination_airport"`
	DepartureDate      string `json:"departure_date"`
	ReturnDate         string `json:"return_date"`
	NumAdults          int    `json:"num_adults"`
	NumSeniors         int    `json:"num_seniors"`
	NumStudents        int    `json:"num_students"`
	ChildrenAges       []int  `json:"children_ages"`
	InfantsOnSeat      int    `json:"infants_on_seat"`
	InfantsOnLap       int    `json:"infants_on_lap"`
}

func (p FlightParams) Mix() PassengerMix {
	return PassengerMix{
		Adults:        p.NumAdults,
		Seniors:       p.NumSeniors,
		Students:      p.NumStudents,
		ChildrenAges:  append([]int(nil), p.ChildrenAges...),
		InfantsOnSeat: p.InfantsOnSeat,
		InfantsOnLap:  p.InfantsOnLap,
	}
}

type AISearchRequest struct {
	Query string `json:"query"`
}
