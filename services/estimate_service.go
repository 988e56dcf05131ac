package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"backend/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEstimator produces a structured nutrition estimate when the
// authoritative database has no match. Estimates are lower-confidence and
// are tagged "ai_estimate" so downstream consumers can disclose them.
type GeminiEstimator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiEstimator(ctx context.Context, apiKey string) (*GeminiEstimator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := "gemini-2.5-flash"
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // consistent numeric output
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = estimateSchema()

	return &GeminiEstimator{client: client, model: model}, nil
}

func (g *GeminiEstimator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

type estimatePayload struct {
	FoodName    string   `json:"food_name"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein_g"`
	Carbs       float64  `json:"carbs_g"`
	Fats        float64  `json:"fats_g"`
	Fiber       *float64 `json:"fiber_g,omitempty"`
	Sugar       *float64 `json:"sugar_g,omitempty"`
	Sodium      *float64 `json:"sodium_mg,omitempty"`
	ServingSize float64  `json:"serving_size"`
	ServingUnit string   `json:"serving_unit"`
	Confidence  string   `json:"confidence"` // high|medium|low
	Rationale   string   `json:"rationale"`
}

func estimateSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"food_name":    {Type: genai.TypeString},
			"calories":     {Type: genai.TypeNumber},
			"protein_g":    {Type: genai.TypeNumber},
			"carbs_g":      {Type: genai.TypeNumber},
			"fats_g":       {Type: genai.TypeNumber},
			"fiber_g":      {Type: genai.TypeNumber},
			"sugar_g":      {Type: genai.TypeNumber},
			"sodium_mg":    {Type: genai.TypeNumber},
			"serving_size": {Type: genai.TypeNumber},
			"serving_unit": {Type: genai.TypeString},
			"confidence":   {Type: genai.TypeString, Enum: []string{"high", "medium", "low"}},
			"rationale":    {Type: genai.TypeString},
		},
		Required: []string{
			"food_name", "calories", "protein_g", "carbs_g", "fats_g",
			"serving_size", "serving_unit", "confidence", "rationale",
		},
	}
}

// EstimateNutrition asks the model for per-serving values for an unknown
// food. Numeric fields are rounded to one decimal place (calories to whole
// numbers) before returning.
func (g *GeminiEstimator) EstimateNutrition(ctx context.Context, foodName string, quantity float64, unit string) (*ResolvedFood, error) {
	prompt := fmt.Sprintf(
		"Estimate the nutrition facts for %q. The user logged %.2f %s of it. "+
			"Give values for one typical serving, a realistic serving size and unit, "+
			"a confidence of high, medium or low, and a one-line rationale for your estimate.",
		foodName, quantity, unit)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate nutrition estimate: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, err
	}

	var p estimatePayload
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &p); err != nil {
		return nil, fmt.Errorf("failed to parse estimate JSON: %w", err)
	}
	if p.Rationale == "" {
		return nil, fmt.Errorf("estimate is missing a rationale")
	}

	food := &ResolvedFood{
		FoodName:    foodName,
		ServingSize: round1(p.ServingSize),
		ServingUnit: p.ServingUnit,
		Calories:    math.Round(p.Calories),
		Protein:     round1(p.Protein),
		Carbs:       round1(p.Carbs),
		Fats:        round1(p.Fats),
		Fiber:       round1Ptr(p.Fiber),
		Sugar:       round1Ptr(p.Sugar),
		Sodium:      round1Ptr(p.Sodium),
		DataSource:  models.SourceAIEstimate,
		Confidence:  p.Confidence,
		Rationale:   p.Rationale,
	}
	return food, nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock removes markdown code fences some models wrap around JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round1Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round1(*v)
	return &r
}
