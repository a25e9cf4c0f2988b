package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"tripcost-api/models"
	"tripcost-api/utils"
)

// TripStore is the contract against the remote authoritative trip list.
type TripStore interface {
	ListAll(ctx context.Context) ([]models.SavedTrip, error)
	Insert(ctx context.Context, form models.TripForm, details models.TripDetails, timestamp int64) (models.SavedTrip, error)
	Remove(ctx context.Context, id string) error
}

// User-facing messages. Each failing operation surfaces exactly one.
const (
	msgInvalidInput    = "Please fill in every field with valid values, including the stops."
	msgEstimateFailed  = "Could not calculate the trip details. The model may be unable to find the locations or the route. Please try again."
	msgStoreFailed     = "Could not reach the saved trips storage. Please try again."
	msgNothingToSave   = "There is no calculated trip to save."
	msgUnknownSavedRef = "The requested saved trip no longer exists."
)

// TripWorkflow orchestrates the session state machine: validate and
// calculate, save with prepend, optimistic delete with rollback, load, and
// bootstrap. It owns no state itself; all state lives in the Session.
type TripWorkflow struct {
	estimator Estimator
	store     TripStore
	now       func() time.Time
}

func NewTripWorkflow(estimator Estimator, store TripStore) *TripWorkflow {
	return &TripWorkflow{
		estimator: estimator,
		store:     store,
		now:       time.Now,
	}
}

// Calculate validates the submitted form and, only when it is valid, asks
// the estimator for the trip details. Validation failures never reach the
// estimator. The previous result is always discarded first.
func (w *TripWorkflow) Calculate(ctx context.Context, s *Session, form models.TripForm) (models.TripDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if form.Stops == nil {
		form.Stops = []string{}
	}
	s.form = form
	s.details = nil
	s.errorMsg = ""

	req, ok := validateForm(form)
	if !ok {
		s.errorMsg = msgInvalidInput
		return models.TripDetails{}, fmt.Errorf("%w: %s", models.ErrValidationFailed, msgInvalidInput)
	}

	details, err := w.estimator.Estimate(ctx, req)
	if err != nil {
		s.errorMsg = msgEstimateFailed
		return models.TripDetails{}, err
	}

	s.details = &details
	return details, nil
}

// Save persists the current result. On success the stored trip, carrying
// the identity the store assigned, is prepended to the cached list. On
// failure the list is left exactly as it was.
func (w *TripWorkflow) Save(ctx context.Context, s *Session) (models.SavedTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.details == nil {
		return models.SavedTrip{}, fmt.Errorf("%w: %s", models.ErrValidationFailed, msgNothingToSave)
	}

	saved, err := w.store.Insert(ctx, s.form, *s.details, w.now().UnixMilli())
	if err != nil {
		s.errorMsg = msgStoreFailed
		return models.SavedTrip{}, err
	}

	s.trips = append([]models.SavedTrip{saved}, s.trips...)
	s.errorMsg = ""
	return saved, nil
}

// Delete removes a trip optimistically: the cached list is updated first,
// then the store is asked. If the store call fails the list is restored to
// the exact pre-delete snapshot.
func (w *TripWorkflow) Delete(ctx context.Context, s *Session, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.SavedTrip, len(s.trips))
	copy(snapshot, s.trips)

	remaining := make([]models.SavedTrip, 0, len(s.trips))
	for _, trip := range s.trips {
		if trip.ID != id {
			remaining = append(remaining, trip)
		}
	}
	s.trips = remaining

	if err := w.store.Remove(ctx, id); err != nil {
		s.trips = snapshot
		s.errorMsg = msgStoreFailed
		return err
	}

	s.errorMsg = ""
	return nil
}

// Load copies a saved trip back into the form, keeping efficiency and price
// as the text they were saved with, and clears the result and any error.
// No remote call is made.
func (w *TripWorkflow) Load(s *Session, id string) (models.TripForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, trip := range s.trips {
		if trip.ID != id {
			continue
		}

		stops := trip.Stops
		if stops == nil {
			stops = []string{}
		}

		s.form = models.TripForm{
			Origin:         trip.Origin,
			Destination:    trip.Destination,
			Stops:          stops,
			FuelEfficiency: trip.FuelEfficiency,
			FuelPrice:      trip.FuelPrice,
			IsRoundTrip:    trip.IsRoundTrip,
		}
		s.details = nil
		s.errorMsg = ""
		return s.form, nil
	}

	return models.TripForm{}, fmt.Errorf("%w: %s", models.ErrValidationFailed, msgUnknownSavedRef)
}

// Bootstrap replaces the cached list wholesale from the store. On failure
// the list stays empty and the error is surfaced; the session remains
// usable.
func (w *TripWorkflow) Bootstrap(ctx context.Context, s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadingTrips = true
	trips, err := w.store.ListAll(ctx)
	s.loadingTrips = false

	if err != nil {
		s.trips = []models.SavedTrip{}
		s.errorMsg = msgStoreFailed
		return err
	}

	s.trips = trips
	s.errorMsg = ""
	return nil
}

// State returns a copy of the session suitable for rendering.
func (w *TripWorkflow) State(s *Session) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	trips := make([]models.SavedTrip, len(s.trips))
	copy(trips, s.trips)

	var details *models.TripDetails
	if s.details != nil {
		copied := *s.details
		details = &copied
	}

	return SessionState{
		Form:         s.form,
		Details:      details,
		SavedTrips:   trips,
		LoadingTrips: s.loadingTrips,
		Error:        s.errorMsg,
	}
}

// validateForm turns the raw form into a TripRequest, rejecting blank text
// fields and non-positive or unparseable numbers.
func validateForm(form models.TripForm) (models.TripRequest, bool) {
	if utils.IsBlank(form.Origin) || utils.IsBlank(form.Destination) {
		return models.TripRequest{}, false
	}

	stops := make([]string, 0, len(form.Stops))
	for _, stop := range form.Stops {
		if utils.IsBlank(stop) {
			return models.TripRequest{}, false
		}
		stops = append(stops, strings.TrimSpace(stop))
	}

	efficiency, ok := utils.ParsePositiveNumber(form.FuelEfficiency)
	if !ok {
		return models.TripRequest{}, false
	}

	price, ok := utils.ParsePositiveNumber(form.FuelPrice)
	if !ok {
		return models.TripRequest{}, false
	}

	return models.TripRequest{
		Origin:         strings.TrimSpace(form.Origin),
		Destination:    strings.TrimSpace(form.Destination),
		Stops:          stops,
		FuelEfficiency: efficiency,
		FuelPrice:      price,
		IsRoundTrip:    form.IsRoundTrip,
	}, true
}
