package models

// TripForm holds the session's current input values exactly as entered.
// Efficiency and price stay text until validation parses them.
type TripForm struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	Stops          []string `json:"stops"`
	FuelEfficiency string   `json:"fuelEfficiency"`
	FuelPrice      string   `json:"fuelPrice"`
	IsRoundTrip    bool     `json:"isRoundTrip"`
}

// TripRequest is a validated form: all text fields trimmed and non-blank,
// numeric fields parsed and strictly positive.
type TripRequest struct {
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	Stops          []string `json:"stops"`
	FuelEfficiency float64  `json:"fuelEfficiency"` // km per liter
	FuelPrice      float64  `json:"fuelPrice"`      // currency per liter
	IsRoundTrip    bool     `json:"isRoundTrip"`
}

// TripDetails is the result of one successful estimation. Duration is
// free-form text, its format is controlled by the model.
type TripDetails struct {
	Distance        float64 `json:"distance"` // km
	Duration        string  `json:"duration"`
	FuelConsumption float64 `json:"fuelConsumption"` // liters
	FuelCost        float64 `json:"fuelCost"`
	TollCost        float64 `json:"tollCost"`
	TotalCost       float64 `json:"totalCost"`
}

// SavedTrip is one persisted calculation. ID is assigned by the store on
// insert; the client never invents it. Efficiency and price are preserved
// as the text the user typed, not reparsed.
type SavedTrip struct {
	ID             string      `json:"id"`
	Origin         string      `json:"origin"`
	Destination    string      `json:"destination"`
	Stops          []string    `json:"stops"`
	FuelEfficiency string      `json:"fuelEfficiency"`
	FuelPrice      string      `json:"fuelPrice"`
	Details        TripDetails `json:"details"`
	Timestamp      int64       `json:"timestamp"` // epoch milliseconds
	IsRoundTrip    bool        `json:"isRoundTrip"`
}
