package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
	"github.com/vladimiradmaev/diabetes-companion/internal/logger"
)

const (
	maxImageBytes   = 10 << 20
	estimateTimeout = 45 * time.Second
	maxPortionGrams = 5000
)

// CarbEstimate is the model's reading of a food photo
type CarbEstimate struct {
	FoodItems    []string `json:"food_items"`
	Carbs        float64  `json:"carbs"`
	Confidence   string   `json:"confidence"`
	AnalysisText string   `json:"analysis_text"`

	// Weight is the portion weight the estimate is based on, in grams.
	// Zero when neither the user nor the model could tell.
	Weight          float64 `json:"-"`
	WeightEstimated bool    `json:"-"`
	Provider        string  `json:"-"`
}

// CarbEstimator estimates carbohydrates in grams from a food photo
type CarbEstimator interface {
	EstimateCarbs(ctx context.Context, image []byte, weight float64) (*CarbEstimate, error)
}

// VisionModel answers a text prompt about a JPEG image
type VisionModel interface {
	Ask(ctx context.Context, image []byte, prompt string) (string, error)
}

// ModelCarbEstimator runs the carb prompt against one vision model. When no
// weight is given it asks the model to weigh the portion first.
type ModelCarbEstimator struct {
	model    VisionModel
	provider string
}

func NewModelCarbEstimator(model VisionModel, provider string) *ModelCarbEstimator {
	return &ModelCarbEstimator{model: model, provider: provider}
}

func (s *ModelCarbEstimator) EstimateCarbs(ctx context.Context, image []byte, weight float64) (*CarbEstimate, error) {
	ctx, cancel := context.WithTimeout(ctx, estimateTimeout)
	defer cancel()

	estimated := false
	if weight <= 0 {
		w, err := s.estimateWeight(ctx, image)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, apperrors.NewTimeoutError("carb estimation")
			}
			// the carb prompt falls back to standard portion sizes
			logger.Warn("Weight estimation failed", "provider", s.provider, "error", err)
		} else {
			weight, estimated = w, true
		}
	}

	text, err := s.model.Ask(ctx, image, carbPrompt(weight))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewTimeoutError("carb estimation")
		}
		return nil, apperrors.NewExternalAPIError(err, s.provider)
	}

	estimate, err := parseCarbEstimate(text)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, s.provider)
	}
	estimate.Weight = weight
	estimate.WeightEstimated = estimated
	estimate.Provider = s.provider
	logger.Info("Carbs estimated", "provider", s.provider, "carbs", estimate.Carbs,
		"weight", weight, "confidence", estimate.Confidence)
	return estimate, nil
}

func (s *ModelCarbEstimator) estimateWeight(ctx context.Context, image []byte) (float64, error) {
	text, err := s.model.Ask(ctx, image, weightPrompt)
	if err != nil {
		return 0, err
	}
	return parseWeight(text)
}

// FallbackCarbEstimator asks each estimator in turn until one succeeds
type FallbackCarbEstimator struct {
	estimators []CarbEstimator
}

// NewCarbEstimator chains the given estimators, skipping nil ones. It returns
// nil when none is left, which disables photo recognition.
func NewCarbEstimator(estimators ...CarbEstimator) CarbEstimator {
	var chain []CarbEstimator
	for _, e := range estimators {
		if e != nil {
			chain = append(chain, e)
		}
	}
	switch len(chain) {
	case 0:
		return nil
	case 1:
		return chain[0]
	default:
		return &FallbackCarbEstimator{estimators: chain}
	}
}

func (f *FallbackCarbEstimator) EstimateCarbs(ctx context.Context, image []byte, weight float64) (*CarbEstimate, error) {
	var lastErr error
	for i, e := range f.estimators {
		estimate, err := e.EstimateCarbs(ctx, image, weight)
		if err == nil {
			return estimate, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("Carb estimator failed, trying next", "index", i, "error", err)
		lastErr = err
	}
	return nil, lastErr
}

const weightPrompt = `You are a food weight estimation expert. Estimate the weight of the food in the image in grams.

REQUIREMENTS:
- Consider standard portion sizes
- Account for the plate or bowl size if visible
- Return ONLY a number representing the weight in grams, rounded to the nearest gram
- Do not include any text, units, or explanations

Example response:
150`

func carbPrompt(weight float64) string {
	weightInfo := "- The weight is unknown, estimate it from standard portion sizes"
	if weight > 0 {
		weightInfo = fmt.Sprintf("- The food weighs %.1f grams\n- Adjust your carbohydrate calculation based on this exact weight", weight)
	}

	return fmt.Sprintf(`You are a certified diabetes educator specializing in nutrition analysis.
Analyze the food in the image and estimate its carbohydrate content for insulin dosing.

TASK:
1. Identify the food items in the image
2. Estimate total carbohydrates (in grams) based on standard nutritional databases
3. Assess your confidence in this estimation (low, medium, high)

REQUIREMENTS:
- Include likely hidden ingredients that contain carbs
- If the image contains nutritional information or packaging, prioritize that data
- Provide food names and the analysis text in Russian
- Keep the analysis text short

WEIGHT:
%s

Respond with a single JSON object and nothing else:
{
  "food_items": ["item1", "item2"],
  "carbs": 123.45,
  "confidence": "low|medium|high",
  "analysis_text": "short analysis in Russian"
}`, weightInfo)
}

// parseWeight reads the first number in the model's answer, such as "150" or "~150 g"
func parseWeight(text string) (float64, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	})
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.ReplaceAll(f, ",", "."), 64)
		if err != nil {
			continue
		}
		if v <= 0 || v > maxPortionGrams {
			return 0, fmt.Errorf("implausible weight %v", v)
		}
		return v, nil
	}
	return 0, fmt.Errorf("no weight in response %q", text)
}

func parseCarbEstimate(text string) (*CarbEstimate, error) {
	jsonStr := extractJSON(text)
	if jsonStr == "" {
		return nil, fmt.Errorf("no valid JSON found in response")
	}

	var result CarbEstimate
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Carbs < 0 || math.IsNaN(result.Carbs) || math.IsInf(result.Carbs, 0) {
		return nil, fmt.Errorf("invalid carbs value %v", result.Carbs)
	}
	result.Confidence = strings.ToLower(strings.TrimSpace(result.Confidence))
	return &result, nil
}

// extractJSON returns the outermost JSON object in s, skipping code fences
// or text around it
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, "}")
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// FetchImage downloads an image, such as a Telegram file, for estimation
func FetchImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "image download")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalAPIError(fmt.Errorf("status %d", resp.StatusCode), "image download")
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "image download")
	}
	if len(data) > maxImageBytes {
		return nil, apperrors.NewValidationError("image is too large")
	}
	return data, nil
}
