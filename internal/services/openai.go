package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openAIModelName = "gpt-4o"

// OpenAIModel asks an OpenAI chat model about food photos. The image is sent
// inline as a data URL, so Telegram file links never leave the bot.
type OpenAIModel struct {
	client *openai.Client
	model  string
}

// NewOpenAIModel creates a client. An empty baseURL uses the public API.
func NewOpenAIModel(apiKey, baseURL string) *OpenAIModel {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIModel{client: openai.NewClientWithConfig(cfg), model: openAIModelName}
}

func (m *OpenAIModel) Ask(ctx context.Context, image []byte, prompt string) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
