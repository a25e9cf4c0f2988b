package repositories

import (
	"tripcost-api/models"
)

// tripRecord is the row shape of the remote saved-trips table. Column names
// on the wire are snake_case; this file is the only place that knows them.
// Optional columns use pointers so an absent value survives the mapping.
type tripRecord struct {
	ID              string   `json:"id,omitempty"`
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	Stops           []string `json:"stops"`
	FuelEfficiency  string   `json:"fuel_efficiency"`
	FuelPrice       string   `json:"fuel_price"`
	Distance        float64  `json:"distance"`
	Duration        string   `json:"duration"`
	FuelConsumption float64  `json:"fuel_consumption"`
	FuelCost        float64  `json:"fuel_cost"`
	TollCost        *float64 `json:"toll_cost,omitempty"`
	TotalCost       float64  `json:"total_cost"`
	Timestamp       int64    `json:"timestamp"`
	IsRoundTrip     *bool    `json:"is_round_trip,omitempty"`
}

// newTripRecord flattens a SavedTrip into its row shape.
func newTripRecord(trip models.SavedTrip) tripRecord {
	tollCost := trip.Details.TollCost
	isRoundTrip := trip.IsRoundTrip

	return tripRecord{
		ID:              trip.ID,
		Origin:          trip.Origin,
		Destination:     trip.Destination,
		Stops:           normalizeStops(trip.Stops),
		FuelEfficiency:  trip.FuelEfficiency,
		FuelPrice:       trip.FuelPrice,
		Distance:        trip.Details.Distance,
		Duration:        trip.Details.Duration,
		FuelConsumption: trip.Details.FuelConsumption,
		FuelCost:        trip.Details.FuelCost,
		TollCost:        &tollCost,
		TotalCost:       trip.Details.TotalCost,
		Timestamp:       trip.Timestamp,
		IsRoundTrip:     &isRoundTrip,
	}
}

// toSavedTrip rebuilds the nested domain shape from a row. A missing
// toll_cost defaults to zero and a missing is_round_trip to false.
func (r tripRecord) toSavedTrip() models.SavedTrip {
	trip := models.SavedTrip{
		ID:             r.ID,
		Origin:         r.Origin,
		Destination:    r.Destination,
		Stops:          normalizeStops(r.Stops),
		FuelEfficiency: r.FuelEfficiency,
		FuelPrice:      r.FuelPrice,
		Details: models.TripDetails{
			Distance:        r.Distance,
			Duration:        r.Duration,
			FuelConsumption: r.FuelConsumption,
			FuelCost:        r.FuelCost,
			TotalCost:       r.TotalCost,
		},
		Timestamp: r.Timestamp,
	}

	if r.TollCost != nil {
		trip.Details.TollCost = *r.TollCost
	}
	if r.IsRoundTrip != nil {
		trip.IsRoundTrip = *r.IsRoundTrip
	}

	return trip
}

func normalizeStops(stops []string) []string {
	if stops == nil {
		return []string{}
	}
	return stops
}
