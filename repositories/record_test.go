package repositories

import (
	"encoding/json"
	"reflect"
	"testing"
	"tripcost-api/models"
)

func sampleTrip() models.SavedTrip {
	return models.SavedTrip{
		ID:             "trip-abc",
		Origin:         "São Paulo, SP",
		Destination:    "Rio de Janeiro, RJ",
		Stops:          []string{"Campinas, SP"},
		FuelEfficiency: "12",
		FuelPrice:      "5.50",
		Details: models.TripDetails{
			Distance:        429,
			Duration:        "5 horas",
			FuelConsumption: 35.75,
			FuelCost:        196.63,
			TollCost:        52.80,
			TotalCost:       249.43,
		},
		Timestamp:   1700000000000,
		IsRoundTrip: true,
	}
}

func TestRecordMappingRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.SavedTrip)
	}{
		{"full trip", func(*models.SavedTrip) {}},
		{"zero toll", func(trip *models.SavedTrip) { trip.Details.TollCost = 0 }},
		{"one way", func(trip *models.SavedTrip) { trip.IsRoundTrip = false }},
		{"no stops", func(trip *models.SavedTrip) { trip.Stops = []string{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trip := sampleTrip()
			tc.mutate(&trip)

			got := newTripRecord(trip).toSavedTrip()
			if !reflect.DeepEqual(got, trip) {
				t.Fatalf("round trip mapping changed the record:\n got %+v\nwant %+v", got, trip)
			}
		})
	}
}

func TestRecordDefaultsForMissingOptionalColumns(t *testing.T) {
	// toll_cost, is_round_trip and stops are absent; an unknown column is
	// present and must be ignored.
	wire := `{
		"id": "trip-1",
		"origin": "São Paulo, SP",
		"destination": "Rio de Janeiro, RJ",
		"fuel_efficiency": "12",
		"fuel_price": "5.50",
		"distance": 429,
		"duration": "5 horas",
		"fuel_consumption": 35.75,
		"fuel_cost": 196.63,
		"total_cost": 249.43,
		"timestamp": 1700000000000,
		"created_by_migration": true
	}`

	var record tripRecord
	if err := json.Unmarshal([]byte(wire), &record); err != nil {
		t.Fatalf("unmarshal wire row: %v", err)
	}

	trip := record.toSavedTrip()
	if trip.Details.TollCost != 0 {
		t.Fatalf("toll cost = %v, want 0", trip.Details.TollCost)
	}
	if trip.IsRoundTrip {
		t.Fatal("round trip flag defaulted to true")
	}
	if trip.Stops == nil || len(trip.Stops) != 0 {
		t.Fatalf("stops = %#v, want empty slice", trip.Stops)
	}
	if trip.Details.TotalCost != 249.43 {
		t.Fatalf("total cost = %v, want 249.43", trip.Details.TotalCost)
	}
}

func TestRecordUsesWireNaming(t *testing.T) {
	payload, err := json.Marshal(newTripRecord(sampleTrip()))
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(payload, &keys); err != nil {
		t.Fatalf("unmarshal keys: %v", err)
	}

	for _, key := range []string{"fuel_efficiency", "fuel_price", "fuel_consumption", "fuel_cost", "toll_cost", "total_cost", "is_round_trip"} {
		if _, ok := keys[key]; !ok {
			t.Fatalf("wire payload missing column %q: %s", key, payload)
		}
	}
	if _, ok := keys["fuelEfficiency"]; ok {
		t.Fatal("domain naming leaked onto the wire")
	}
}
