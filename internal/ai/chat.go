package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
	defaultGPT4AllBaseURL = "http://localhost:4891"
)

type chatConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}

// chatBackend talks to any OpenAI-compatible chat completions endpoint.
type chatBackend struct {
	name   string
	model  string
	client openai.Client
}

func newChatBackend(name, baseURL, apiKey, model string) *chatBackend {
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithRequestTimeout(DefaultTimeout),
		option.WithMaxRetries(0),
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &chatBackend{
		name:   name,
		model:  model,
		client: openai.NewClient(opts...),
	}
}

func (p *chatBackend) Name() string {
	return p.name
}

func (p *chatBackend) Configured() bool {
	return true
}

func (p *chatBackend) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s response has no choices", p.name)
	}
	return resp.Choices[0].Message.Content, nil
}

func createOpenAIBackend(args interface{}) (Backend, error) {
	cfg := &chatConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("openai model is required")
	}
	return newChatBackend("openai", baseURL, strings.TrimSpace(cfg.APIKey), strings.TrimSpace(cfg.Model)), nil
}

// GPT4All serves the OpenAI chat API under /v1 of its base URL.
func createGPT4AllBackend(args interface{}) (Backend, error) {
	cfg := &chatConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultGPT4AllBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("gpt4all model is required")
	}
	return newChatBackend("gpt4all", baseURL+"/v1", strings.TrimSpace(cfg.APIKey), strings.TrimSpace(cfg.Model)), nil
}

func init() {
	Register("openai", createOpenAIBackend)
	Register("gpt4all", createGPT4AllBackend)
}
