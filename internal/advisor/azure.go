package advisor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/tmc/langchaingo/llms"

	"cocan/internal/config"
)

// chatCompleter is the part of the Azure client the adapter uses.
type chatCompleter interface {
	GetChatCompletions(ctx context.Context, body azopenai.ChatCompletionsOptions, options *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error)
}

// azureModel adapts an Azure OpenAI deployment to llms.Model.
type azureModel struct {
	client     chatCompleter
	deployment string
	maxTokens  int32
}

var _ llms.Model = (*azureModel)(nil)

// newAzureModel reads the endpoint from advisor.base_url and the
// deployment from advisor.model, falling back to the AZURE_OPENAI_*
// variables.
func newAzureModel(cfg config.AdvisorConfig) (*azureModel, error) {
	endpoint := firstNonEmpty(cfg.BaseURL, os.Getenv("AZURE_OPENAI_ENDPOINT"))
	apiKey := firstNonEmpty(cfg.APIKey, os.Getenv("AZURE_OPENAI_API_KEY"))
	deployment := firstNonEmpty(os.Getenv("AZURE_OPENAI_DEPLOYMENT_NAME"), cfg.Model)
	if endpoint == "" || apiKey == "" || deployment == "" {
		return nil, errors.New("azure_openai advisor needs an endpoint, api key and deployment")
	}

	client, err := azopenai.NewClientWithKeyCredential(endpoint, azcore.NewKeyCredential(apiKey), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure OpenAI client: %w", err)
	}
	return &azureModel{client: client, deployment: deployment, maxTokens: 512}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (m *azureModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func (m *azureModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	chat := make([]azopenai.ChatRequestMessageClassification, 0, len(messages))
	for _, msg := range messages {
		text := textOf(msg)
		switch msg.Role {
		case llms.ChatMessageTypeSystem:
			chat = append(chat, &azopenai.ChatRequestSystemMessage{Content: azopenai.NewChatRequestSystemMessageContent(text)})
		case llms.ChatMessageTypeHuman, llms.ChatMessageTypeGeneric:
			chat = append(chat, &azopenai.ChatRequestUserMessage{Content: azopenai.NewChatRequestUserMessageContent(text)})
		case llms.ChatMessageTypeAI:
			chat = append(chat, &azopenai.ChatRequestAssistantMessage{Content: azopenai.NewChatRequestAssistantMessageContent(text)})
		default:
			return nil, fmt.Errorf("unsupported message role: %s", msg.Role)
		}
	}

	body := azopenai.ChatCompletionsOptions{
		Messages:       chat,
		DeploymentName: to.Ptr(m.deployment),
		MaxTokens:      to.Ptr(m.maxTokens),
		Temperature:    to.Ptr(float32(opts.Temperature)),
	}
	if opts.MaxTokens > 0 {
		body.MaxTokens = to.Ptr(int32(opts.MaxTokens))
	}

	resp, err := m.client.GetChatCompletions(ctx, body, nil)
	if err != nil {
		return nil, fmt.Errorf("Azure OpenAI completion failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, errors.New("empty response from Azure OpenAI")
	}

	out := &llms.ContentResponse{}
	for _, c := range resp.Choices {
		if c.Message == nil || c.Message.Content == nil {
			continue
		}
		choice := &llms.ContentChoice{Content: *c.Message.Content}
		if c.FinishReason != nil {
			choice.StopReason = string(*c.FinishReason)
		}
		out.Choices = append(out.Choices, choice)
	}
	return out, nil
}

func textOf(msg llms.MessageContent) string {
	var b strings.Builder
	for _, part := range msg.Parts {
		if t, ok := part.(llms.TextContent); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}
