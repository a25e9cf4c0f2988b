package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"tripcost-api/models"
	"tripcost-api/utils"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Estimator produces trip details for a validated request.
type Estimator interface {
	Estimate(ctx context.Context, req models.TripRequest) (models.TripDetails, error)
}

// EstimatorService asks the model for route and cost figures under a strict
// structured-output contract. The model supplies distance, duration and toll
// knowledge; consumption, fuel cost and total are computed by the model from
// the supplied efficiency and price. Nothing is recomputed locally and a
// reply that misses the contract is a failure, never a fallback parse.
type EstimatorService struct {
	client openai.Client
	model  string
}

func NewEstimatorService(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *EstimatorService {
	// Failures are terminal per calculation, the SDK must not retry them.
	options := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}, opts...)

	return &EstimatorService{
		client: openai.NewClient(options...),
		model:  model,
	}
}

const estimatorSystemPrompt = "You are a trip cost assistant. Your only job is to " +
	"work out car trip details and report them through the structured trip_details " +
	"object. Never answer with free text."

// All six fields are mandatory; tolls may be zero but never absent.
var tripDetailsSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"required": []string{
		"distance", "duration", "fuelConsumption", "fuelCost", "tollCost", "totalCost",
	},
	"properties": map[string]interface{}{
		"distance": map[string]interface{}{
			"type":        "number",
			"description": "Total driving distance for the trip in kilometers.",
		},
		"duration": map[string]interface{}{
			"type":        "string",
			"description": "Estimated travel time in a human readable format, e.g. '2 hours 30 minutes'.",
		},
		"fuelConsumption": map[string]interface{}{
			"type":        "number",
			"description": "Total fuel needed for the trip in liters.",
		},
		"fuelCost": map[string]interface{}{
			"type":        "number",
			"description": "Total fuel cost for the trip in the given currency.",
		},
		"tollCost": map[string]interface{}{
			"type":        "number",
			"description": "Total estimated toll cost for the trip. Report 0 when there are no tolls.",
		},
		"totalCost": map[string]interface{}{
			"type":        "number",
			"description": "Total trip cost: the sum of fuel cost and toll cost.",
		},
	},
}

func (s *EstimatorService) Estimate(ctx context.Context, req models.TripRequest) (models.TripDetails, error) {
	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(estimatorSystemPrompt),
			openai.UserMessage(buildEstimatePrompt(req)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:        "trip_details",
					Description: openai.String("Route distance, duration and cost breakdown for a car trip."),
					Schema:      tripDetailsSchema,
					Strict:      openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return models.TripDetails{}, fmt.Errorf("%w: %v", models.ErrEstimationFailed, err)
	}

	if len(resp.Choices) == 0 {
		return models.TripDetails{}, fmt.Errorf("%w: model returned no choices", models.ErrEstimationFailed)
	}

	details, err := parseTripDetails(resp.Choices[0].Message.Content)
	if err != nil {
		return models.TripDetails{}, fmt.Errorf("%w: %v", models.ErrEstimationFailed, err)
	}

	return details, nil
}

func buildEstimatePrompt(req models.TripRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"First, using your knowledge of real-world roads and routes, find the most likely driving distance (in km), the travel duration and the total estimated toll cost for a car trip from %s to %s.\n",
		req.Origin, req.Destination)

	if len(req.Stops) > 0 {
		fmt.Fprintf(&b, "The route must include the following stops, in this order: %s.\n",
			strings.Join(req.Stops, ", "))
	}

	if req.IsRoundTrip {
		b.WriteString("Treat this as a ROUND TRIP: distance, fuel consumption, fuel cost and toll cost must be DOUBLE the one-way values, and the duration must cover the full trip there and back.\n")
	}

	fmt.Fprintf(&b,
		"Then compute the fuel consumption and the fuel cost, given that the car runs %s km per liter and fuel costs R$ %s per liter.\n",
		utils.FormatNumber(req.FuelEfficiency), utils.FormatNumber(req.FuelPrice))

	b.WriteString("Also compute the total trip cost, which is the sum of the fuel cost and the toll cost.\n")
	b.WriteString("Finally, report every value you found and computed through the trip_details object.")

	return b.String()
}

// parseTripDetails validates the structured reply field by field. Every
// field must be present, of the right type and non-negative.
func parseTripDetails(content string) (models.TripDetails, error) {
	if strings.TrimSpace(content) == "" {
		return models.TripDetails{}, errors.New("model returned an empty reply")
	}

	var raw struct {
		Distance        *float64 `json:"distance"`
		Duration        *string  `json:"duration"`
		FuelConsumption *float64 `json:"fuelConsumption"`
		FuelCost        *float64 `json:"fuelCost"`
		TollCost        *float64 `json:"tollCost"`
		TotalCost       *float64 `json:"totalCost"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return models.TripDetails{}, fmt.Errorf("model reply is not a trip_details object: %v", err)
	}

	numbers := map[string]*float64{
		"distance":        raw.Distance,
		"fuelConsumption": raw.FuelConsumption,
		"fuelCost":        raw.FuelCost,
		"tollCost":        raw.TollCost,
		"totalCost":       raw.TotalCost,
	}
	for name, value := range numbers {
		if value == nil {
			return models.TripDetails{}, fmt.Errorf("missing field %q in model reply", name)
		}
		if *value < 0 {
			return models.TripDetails{}, fmt.Errorf("field %q is negative in model reply", name)
		}
	}

	if raw.Duration == nil || strings.TrimSpace(*raw.Duration) == "" {
		return models.TripDetails{}, errors.New("missing field \"duration\" in model reply")
	}

	return models.TripDetails{
		Distance:        *raw.Distance,
		Duration:        *raw.Duration,
		FuelConsumption: *raw.FuelConsumption,
		FuelCost:        *raw.FuelCost,
		TollCost:        *raw.TollCost,
		TotalCost:       *raw.TotalCost,
	}, nil
}
