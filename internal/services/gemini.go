package services

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "github.com/vladimiradmaev/diabetes-companion/internal/errors"
)

const geminiModelName = "gemini-1.5-flash"

// GeminiModel asks Gemini about food photos
type GeminiModel struct {
	client *genai.Client
	model  string
}

func NewGeminiModel(ctx context.Context, apiKey string) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, apperrors.NewExternalAPIError(err, "gemini")
	}
	return &GeminiModel{client: client, model: geminiModelName}, nil
}

func (m *GeminiModel) Close() error {
	return m.client.Close()
}

func (m *GeminiModel) Ask(ctx context.Context, image []byte, prompt string) (string, error) {
	model := m.client.GenerativeModel(m.model)
	model.SetTemperature(0.2)

	resp, err := model.GenerateContent(ctx, genai.ImageData("jpeg", image), genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response part %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(text), nil
}
