package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"backend/models"
)

const fdcBaseURL = "https://api.nal.usda.gov/fdc/v1"

// USDAService queries the USDA FoodData Central database by free-text
// search and flattens the best candidate into a per-serving record.
type USDAService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewUSDAService() *USDAService {
	base := os.Getenv("USDA_BASE_URL")
	if base == "" {
		base = fdcBaseURL
	}
	return &USDAService{
		apiKey:  os.Getenv("USDA_API_KEY"),
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FDC nutrient numbers for the nutrients we track. Anything else in a
// candidate's nutrient list is ignored.
const (
	fdcEnergyKcal = 1008
	fdcProtein    = 1003
	fdcCarbs      = 1005
	fdcFat        = 1004
	fdcFiber      = 1079
	fdcSugar      = 2000
	fdcSodium     = 1093
	fdcPotassium  = 1092
	fdcCalcium    = 1087
	fdcIron       = 1089
	fdcVitaminC   = 1162
	fdcVitaminA   = 1106
)

type fdcSearchResponse struct {
	Foods []struct {
		FdcID           int     `json:"fdcId"`
		Description     string  `json:"description"`
		DataType        string  `json:"dataType"`
		ServingSize     float64 `json:"servingSize"`
		ServingSizeUnit string  `json:"servingSizeUnit"`
		FoodNutrients   []struct {
			NutrientID   int     `json:"nutrientId"`
			NutrientName string  `json:"nutrientName"`
			UnitName     string  `json:"unitName"`
			Value        float64 `json:"value"`
		} `json:"foodNutrients"`
	} `json:"foods"`
}

// FoodCandidate is one search hit, used by the food-search endpoint.
type FoodCandidate struct {
	FdcID       int    `json:"fdc_id"`
	Description string `json:"description"`
	DataType    string `json:"data_type"`
}

// SearchFoods returns up to limit candidates for a free-text query.
func (s *USDAService) SearchFoods(ctx context.Context, query string, limit int) ([]FoodCandidate, error) {
	resp, err := s.search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]FoodCandidate, 0, len(resp.Foods))
	for _, f := range resp.Foods {
		out = append(out, FoodCandidate{FdcID: f.FdcID, Description: f.Description, DataType: f.DataType})
	}
	return out, nil
}

// LookupFood resolves a food name to a per-serving nutrition record using
// the first search candidate. Returns (nil, nil) when the database has no
// match; network/HTTP trouble is an error the caller treats as a miss.
func (s *USDAService) LookupFood(ctx context.Context, name string) (*ResolvedFood, error) {
	resp, err := s.search(ctx, name, 5)
	if err != nil {
		return nil, err
	}
	if len(resp.Foods) == 0 {
		return nil, nil
	}

	best := resp.Foods[0]

	// Survey/foundation records report per 100 g; branded records carry an
	// explicit serving size.
	servingSize, servingUnit := 100.0, "g"
	if best.ServingSize > 0 && best.ServingSizeUnit != "" {
		servingSize, servingUnit = best.ServingSize, best.ServingSizeUnit
	}

	food := &ResolvedFood{
		FoodName:    best.Description,
		ServingSize: servingSize,
		ServingUnit: servingUnit,
		DataSource:  models.SourceUSDA,
	}
	for _, n := range best.FoodNutrients {
		v := n.Value
		switch n.NutrientID {
		case fdcEnergyKcal:
			food.Calories = v
		case fdcProtein:
			food.Protein = v
		case fdcCarbs:
			food.Carbs = v
		case fdcFat:
			food.Fats = v
		case fdcFiber:
			food.Fiber = &v
		case fdcSugar:
			food.Sugar = &v
		case fdcSodium:
			food.Sodium = &v
		case fdcPotassium:
			food.Potassium = &v
		case fdcCalcium:
			food.Calcium = &v
		case fdcIron:
			food.Iron = &v
		case fdcVitaminC:
			food.VitaminC = &v
		case fdcVitaminA:
			food.VitaminA = &v
		}
	}
	return food, nil
}

func (s *USDAService) search(ctx context.Context, query string, limit int) (*fdcSearchResponse, error) {
	if limit <= 0 || limit > 10 {
		limit = 10
	}
	u := fmt.Sprintf("%s/foods/search?query=%s&pageSize=%d&api_key=%s",
		s.baseURL, url.QueryEscape(query), limit, s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create FDC request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call FDC search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read FDC response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FDC search API error %d: %s", resp.StatusCode, string(body))
	}

	var sr fdcSearchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("failed to parse FDC JSON: %w", err)
	}
	return &sr, nil
}
