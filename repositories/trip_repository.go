package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"tripcost-api/models"
)

// TripRepository is a thin client over the remote saved-trips table
// (Supabase PostgREST). The remote table is the single source of truth:
// every call is one direct round trip, no retry, no local cache.
type TripRepository struct {
	client  *http.Client
	baseURL string
	apiKey  string
	table   string
}

func NewTripRepository(baseURL, apiKey, table string, timeout time.Duration) *TripRepository {
	return &TripRepository{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		table:   table,
	}
}

// ListAll fetches every saved trip, most recent first.
func (r *TripRepository) ListAll(ctx context.Context) ([]models.SavedTrip, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?select=*&order=timestamp.desc", r.baseURL, r.table)

	body, err := r.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list trips: %v", models.ErrStoreUnavailable, err)
	}

	var records []tripRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: decode trip list: %v", models.ErrStoreUnavailable, err)
	}

	trips := make([]models.SavedTrip, 0, len(records))
	for _, record := range records {
		trips = append(trips, record.toSavedTrip())
	}

	return trips, nil
}

// Insert writes one trip and returns the stored row, including the identity
// the table assigned to it.
func (r *TripRepository) Insert(ctx context.Context, form models.TripForm, details models.TripDetails, timestamp int64) (models.SavedTrip, error) {
	record := newTripRecord(models.SavedTrip{
		Origin:         form.Origin,
		Destination:    form.Destination,
		Stops:          form.Stops,
		FuelEfficiency: form.FuelEfficiency,
		FuelPrice:      form.FuelPrice,
		Details:        details,
		Timestamp:      timestamp,
		IsRoundTrip:    form.IsRoundTrip,
	})

	payload, err := json.Marshal(record)
	if err != nil {
		return models.SavedTrip{}, fmt.Errorf("%w: encode trip: %v", models.ErrStoreUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s", r.baseURL, r.table)
	body, err := r.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return models.SavedTrip{}, fmt.Errorf("%w: insert trip: %v", models.ErrStoreUnavailable, err)
	}

	// PostgREST returns the inserted rows as an array.
	var stored []tripRecord
	if err := json.Unmarshal(body, &stored); err != nil || len(stored) == 0 {
		return models.SavedTrip{}, fmt.Errorf("%w: insert trip: store returned no row", models.ErrStoreUnavailable)
	}

	return stored[0].toSavedTrip(), nil
}

// Remove deletes one trip by its store-assigned identity.
func (r *TripRepository) Remove(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s?id=eq.%s", r.baseURL, r.table, url.QueryEscape(id))

	if _, err := r.do(ctx, http.MethodDelete, endpoint, nil); err != nil {
		return fmt.Errorf("%w: delete trip %s: %v", models.ErrStoreUnavailable, id, err)
	}

	return nil
}

func (r *TripRepository) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}
