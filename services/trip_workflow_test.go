package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
	"tripcost-api/models"
)

type stubEstimator struct {
	calls   int
	lastReq models.TripRequest
	details models.TripDetails
	err     error
}

func (s *stubEstimator) Estimate(ctx context.Context, req models.TripRequest) (models.TripDetails, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return models.TripDetails{}, s.err
	}
	return s.details, nil
}

type stubStore struct {
	trips      []models.SavedTrip
	listErr    error
	insertErr  error
	removeErr  error
	nextID     int
	inserts    int
	removedIDs []string
}

func (s *stubStore) ListAll(ctx context.Context) ([]models.SavedTrip, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.trips, nil
}

func (s *stubStore) Insert(ctx context.Context, form models.TripForm, details models.TripDetails, timestamp int64) (models.SavedTrip, error) {
	s.inserts++
	if s.insertErr != nil {
		return models.SavedTrip{}, s.insertErr
	}
	s.nextID++
	return models.SavedTrip{
		ID:             fmt.Sprintf("trip-%d", s.nextID),
		Origin:         form.Origin,
		Destination:    form.Destination,
		Stops:          form.Stops,
		FuelEfficiency: form.FuelEfficiency,
		FuelPrice:      form.FuelPrice,
		Details:        details,
		Timestamp:      timestamp,
		IsRoundTrip:    form.IsRoundTrip,
	}, nil
}

func (s *stubStore) Remove(ctx context.Context, id string) error {
	s.removedIDs = append(s.removedIDs, id)
	return s.removeErr
}

func newTestSession() *Session {
	return NewSessionService(time.Hour).Create()
}

func validForm() models.TripForm {
	return models.TripForm{
		Origin:         "São Paulo, SP",
		Destination:    "Rio de Janeiro, RJ",
		Stops:          []string{},
		FuelEfficiency: "12",
		FuelPrice:      "5.50",
	}
}

func TestCalculateValidationBlocksEstimator(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.TripForm)
	}{
		{"blank origin", func(f *models.TripForm) { f.Origin = "   " }},
		{"blank destination", func(f *models.TripForm) { f.Destination = "" }},
		{"blank stop", func(f *models.TripForm) { f.Stops = []string{"Campinas", "  "} }},
		{"non-numeric efficiency", func(f *models.TripForm) { f.FuelEfficiency = "twelve" }},
		{"zero efficiency", func(f *models.TripForm) { f.FuelEfficiency = "0" }},
		{"negative price", func(f *models.TripForm) { f.FuelPrice = "-5.50" }},
		{"empty price", func(f *models.TripForm) { f.FuelPrice = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			estimator := &stubEstimator{}
			workflow := NewTripWorkflow(estimator, &stubStore{})
			session := newTestSession()

			form := validForm()
			tc.mutate(&form)

			_, err := workflow.Calculate(context.Background(), session, form)
			if !errors.Is(err, models.ErrValidationFailed) {
				t.Fatalf("expected validation failure, got %v", err)
			}
			if estimator.calls != 0 {
				t.Fatalf("estimator called %d times, want 0", estimator.calls)
			}

			state := workflow.State(session)
			if state.Error == "" {
				t.Fatal("expected error message in state")
			}
			if state.Details != nil {
				t.Fatal("expected no details after validation failure")
			}
		})
	}
}

func TestCalculateExposesModelValuesUnmodified(t *testing.T) {
	details := models.TripDetails{
		Distance:        429,
		Duration:        "5 horas",
		FuelConsumption: 35.75,
		FuelCost:        196.63,
		TollCost:        52.80,
		TotalCost:       249.43,
	}
	estimator := &stubEstimator{details: details}
	workflow := NewTripWorkflow(estimator, &stubStore{})
	session := newTestSession()

	got, err := workflow.Calculate(context.Background(), session, validForm())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != details {
		t.Fatalf("details = %+v, want %+v", got, details)
	}

	state := workflow.State(session)
	if state.Details == nil || *state.Details != details {
		t.Fatalf("state details = %+v, want %+v", state.Details, details)
	}
	if state.Error != "" {
		t.Fatalf("unexpected error message %q", state.Error)
	}

	if estimator.lastReq.FuelEfficiency != 12 || estimator.lastReq.FuelPrice != 5.5 {
		t.Fatalf("estimator got efficiency=%v price=%v", estimator.lastReq.FuelEfficiency, estimator.lastReq.FuelPrice)
	}
}

func TestCalculatePassesRoundTripFlagThrough(t *testing.T) {
	estimator := &stubEstimator{details: models.TripDetails{Distance: 429, Duration: "5 horas"}}
	workflow := NewTripWorkflow(estimator, &stubStore{})
	session := newTestSession()

	for _, roundTrip := range []bool{false, true} {
		form := validForm()
		form.IsRoundTrip = roundTrip

		got, err := workflow.Calculate(context.Background(), session, form)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if estimator.lastReq.IsRoundTrip != roundTrip {
			t.Fatalf("estimator saw round trip %v, want %v", estimator.lastReq.IsRoundTrip, roundTrip)
		}
		// The workflow never doubles anything itself; the stub's values
		// must come back untouched either way.
		if got != estimator.details {
			t.Fatalf("details modified by workflow: %+v", got)
		}
	}
}

func TestCalculateFailureClearsStaleResult(t *testing.T) {
	estimator := &stubEstimator{details: models.TripDetails{Distance: 100, Duration: "1 hora"}}
	workflow := NewTripWorkflow(estimator, &stubStore{})
	session := newTestSession()

	if _, err := workflow.Calculate(context.Background(), session, validForm()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	estimator.err = fmt.Errorf("%w: model unreachable", models.ErrEstimationFailed)
	_, err := workflow.Calculate(context.Background(), session, validForm())
	if !errors.Is(err, models.ErrEstimationFailed) {
		t.Fatalf("expected estimation failure, got %v", err)
	}

	state := workflow.State(session)
	if state.Details != nil {
		t.Fatal("stale details kept after estimation failure")
	}
	if state.Error == "" {
		t.Fatal("expected error message after estimation failure")
	}
}

func TestSaveOrderingMostRecentFirst(t *testing.T) {
	estimator := &stubEstimator{details: models.TripDetails{Distance: 429, Duration: "5 horas"}}
	store := &stubStore{}
	workflow := NewTripWorkflow(estimator, store)
	session := newTestSession()

	formA := validForm()
	if _, err := workflow.Calculate(context.Background(), session, formA); err != nil {
		t.Fatalf("calculate A: %v", err)
	}
	savedA, err := workflow.Save(context.Background(), session)
	if err != nil {
		t.Fatalf("save A: %v", err)
	}

	formB := validForm()
	formB.Destination = "Belo Horizonte, MG"
	if _, err := workflow.Calculate(context.Background(), session, formB); err != nil {
		t.Fatalf("calculate B: %v", err)
	}
	savedB, err := workflow.Save(context.Background(), session)
	if err != nil {
		t.Fatalf("save B: %v", err)
	}

	state := workflow.State(session)
	if len(state.SavedTrips) != 2 {
		t.Fatalf("saved %d trips, want 2", len(state.SavedTrips))
	}
	if state.SavedTrips[0].ID != savedB.ID || state.SavedTrips[1].ID != savedA.ID {
		t.Fatalf("list order = [%s %s], want [%s %s]",
			state.SavedTrips[0].ID, state.SavedTrips[1].ID, savedB.ID, savedA.ID)
	}
	if savedA.ID == savedB.ID {
		t.Fatal("store assigned duplicate identities")
	}
}

func TestSaveWithoutResultIsRejected(t *testing.T) {
	store := &stubStore{}
	workflow := NewTripWorkflow(&stubEstimator{}, store)
	session := newTestSession()

	_, err := workflow.Save(context.Background(), session)
	if !errors.Is(err, models.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if store.inserts != 0 {
		t.Fatalf("store insert called %d times, want 0", store.inserts)
	}
}

func TestSaveStoreFailureLeavesListUnchanged(t *testing.T) {
	estimator := &stubEstimator{details: models.TripDetails{Distance: 429, Duration: "5 horas"}}
	store := &stubStore{insertErr: fmt.Errorf("%w: boom", models.ErrStoreUnavailable)}
	workflow := NewTripWorkflow(estimator, store)
	session := newTestSession()

	if _, err := workflow.Calculate(context.Background(), session, validForm()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := workflow.Save(context.Background(), session)
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected store failure, got %v", err)
	}

	state := workflow.State(session)
	if len(state.SavedTrips) != 0 {
		t.Fatalf("list grew despite failed insert: %d entries", len(state.SavedTrips))
	}
	if state.Error == "" {
		t.Fatal("expected error message after failed insert")
	}
}

func seedTrips(session *Session, trips []models.SavedTrip) {
	session.mu.Lock()
	session.trips = trips
	session.mu.Unlock()
}

func threeTrips() []models.SavedTrip {
	trips := make([]models.SavedTrip, 0, 3)
	for i := 3; i >= 1; i-- {
		trips = append(trips, models.SavedTrip{
			ID:             fmt.Sprintf("trip-%d", i),
			Origin:         "São Paulo, SP",
			Destination:    fmt.Sprintf("Destination %d", i),
			Stops:          []string{},
			FuelEfficiency: "12",
			FuelPrice:      "5.50",
			Details:        models.TripDetails{Distance: float64(100 * i), Duration: "1 hora"},
			Timestamp:      int64(1700000000000 + i),
		})
	}
	return trips
}

func TestDeleteRollbackRestoresExactSnapshot(t *testing.T) {
	store := &stubStore{removeErr: fmt.Errorf("%w: boom", models.ErrStoreUnavailable)}
	workflow := NewTripWorkflow(&stubEstimator{}, store)
	session := newTestSession()

	before := threeTrips()
	seedTrips(session, before)

	err := workflow.Delete(context.Background(), session, before[1].ID)
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected store failure, got %v", err)
	}

	state := workflow.State(session)
	if !reflect.DeepEqual(state.SavedTrips, before) {
		t.Fatalf("list after rollback = %+v, want %+v", state.SavedTrips, before)
	}
	if state.Error == "" {
		t.Fatal("expected error message after failed delete")
	}
}

func TestDeleteRemovesOnlyTarget(t *testing.T) {
	store := &stubStore{}
	workflow := NewTripWorkflow(&stubEstimator{}, store)
	session := newTestSession()

	trips := threeTrips()
	seedTrips(session, trips)

	if err := workflow.Delete(context.Background(), session, trips[1].ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := workflow.State(session)
	if len(state.SavedTrips) != 2 {
		t.Fatalf("list has %d entries, want 2", len(state.SavedTrips))
	}
	if state.SavedTrips[0].ID != trips[0].ID || state.SavedTrips[1].ID != trips[2].ID {
		t.Fatalf("wrong entries survived: %s, %s", state.SavedTrips[0].ID, state.SavedTrips[1].ID)
	}
	if len(store.removedIDs) != 1 || store.removedIDs[0] != trips[1].ID {
		t.Fatalf("store asked to remove %v, want [%s]", store.removedIDs, trips[1].ID)
	}
}

func TestLoadCopiesSavedTripIntoForm(t *testing.T) {
	workflow := NewTripWorkflow(&stubEstimator{details: models.TripDetails{Distance: 1, Duration: "x"}}, &stubStore{})
	session := newTestSession()

	saved := models.SavedTrip{
		ID:             "trip-9",
		Origin:         "Curitiba, PR",
		Destination:    "Florianópolis, SC",
		Stops:          []string{"Joinville, SC"},
		FuelEfficiency: "11.5",
		FuelPrice:      "5.89",
		Details:        models.TripDetails{Distance: 300, Duration: "4 horas"},
		IsRoundTrip:    true,
	}
	seedTrips(session, []models.SavedTrip{saved})

	// Leave a stale result and error behind first.
	if _, err := workflow.Calculate(context.Background(), session, validForm()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	form, err := workflow.Load(session, "trip-9")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := models.TripForm{
		Origin:         "Curitiba, PR",
		Destination:    "Florianópolis, SC",
		Stops:          []string{"Joinville, SC"},
		FuelEfficiency: "11.5",
		FuelPrice:      "5.89",
		IsRoundTrip:    true,
	}
	if !reflect.DeepEqual(form, want) {
		t.Fatalf("form = %+v, want %+v", form, want)
	}

	state := workflow.State(session)
	if state.Details != nil {
		t.Fatal("loading a trip must clear the current result")
	}
	if state.Error != "" {
		t.Fatalf("loading a trip must clear the error, got %q", state.Error)
	}
}

func TestLoadUnknownTrip(t *testing.T) {
	workflow := NewTripWorkflow(&stubEstimator{}, &stubStore{})
	session := newTestSession()

	if _, err := workflow.Load(session, "missing"); !errors.Is(err, models.ErrValidationFailed) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestBootstrapReplacesListWholesale(t *testing.T) {
	store := &stubStore{trips: threeTrips()}
	workflow := NewTripWorkflow(&stubEstimator{}, store)
	session := newTestSession()

	seedTrips(session, []models.SavedTrip{{ID: "stale"}})

	if err := workflow.Bootstrap(context.Background(), session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state := workflow.State(session)
	if !reflect.DeepEqual(state.SavedTrips, store.trips) {
		t.Fatalf("list = %+v, want %+v", state.SavedTrips, store.trips)
	}
	if state.LoadingTrips {
		t.Fatal("loading flag left set after bootstrap")
	}
}

func TestBootstrapFailureLeavesListEmpty(t *testing.T) {
	store := &stubStore{listErr: fmt.Errorf("%w: boom", models.ErrStoreUnavailable)}
	workflow := NewTripWorkflow(&stubEstimator{}, store)
	session := newTestSession()

	err := workflow.Bootstrap(context.Background(), session)
	if !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected store failure, got %v", err)
	}

	state := workflow.State(session)
	if len(state.SavedTrips) != 0 {
		t.Fatalf("list has %d entries, want 0", len(state.SavedTrips))
	}
	if state.Error == "" {
		t.Fatal("expected error message after failed bootstrap")
	}
}
