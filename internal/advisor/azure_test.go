package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"cocan/internal/config"
)

type fakeCompleter struct {
	body  azopenai.ChatCompletionsOptions
	reply string
	err   error
}

func (f *fakeCompleter) GetChatCompletions(_ context.Context, body azopenai.ChatCompletionsOptions, _ *azopenai.GetChatCompletionsOptions) (azopenai.GetChatCompletionsResponse, error) {
	f.body = body
	if f.err != nil {
		return azopenai.GetChatCompletionsResponse{}, f.err
	}
	var resp azopenai.GetChatCompletionsResponse
	resp.Choices = []azopenai.ChatChoice{{Message: &azopenai.ChatResponseMessage{Content: to.Ptr(f.reply)}}}
	return resp, nil
}

func TestAzureModelGeneratesFromPrompt(t *testing.T) {
	fake := &fakeCompleter{reply: `{"steps":[]}`}
	m := &azureModel{client: fake, deployment: "cocan-gpt", maxTokens: 512}

	out, err := llms.GenerateFromSinglePrompt(context.Background(), m, "plan a dish", llms.WithTemperature(0.2))
	require.NoError(t, err)
	assert.Equal(t, `{"steps":[]}`, out)

	require.Len(t, fake.body.Messages, 1)
	assert.Equal(t, "cocan-gpt", *fake.body.DeploymentName)
	assert.InDelta(t, 0.2, *fake.body.Temperature, 1e-6)
	assert.Equal(t, int32(512), *fake.body.MaxTokens)
}

func TestAzureModelErrors(t *testing.T) {
	m := &azureModel{client: &fakeCompleter{err: errors.New("quota")}, deployment: "d"}
	_, err := m.Call(context.Background(), "hi")
	assert.ErrorContains(t, err, "quota")

	m = &azureModel{client: &fakeCompleter{}, deployment: "d"}
	_, err = m.GenerateContent(context.Background(), []llms.MessageContent{
		{Role: llms.ChatMessageTypeTool, Parts: []llms.ContentPart{llms.TextContent{Text: "x"}}},
	})
	assert.ErrorContains(t, err, "unsupported message role")
}

func TestNewModelHostedProviders(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "")
	t.Setenv("AZURE_OPENAI_API_KEY", "")
	t.Setenv("AZURE_OPENAI_DEPLOYMENT_NAME", "")

	_, err := NewModel(config.AdvisorConfig{Provider: "github_models", Model: "gpt-4o-mini"})
	assert.Error(t, err)
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	m, err := NewModel(config.AdvisorConfig{Provider: "github_models", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.NotNil(t, m)

	_, err = NewModel(config.AdvisorConfig{Provider: "azure_openai", Model: "cocan"})
	assert.Error(t, err)
	m, err = NewModel(config.AdvisorConfig{
		Provider: "azure_openai",
		Model:    "cocan",
		BaseURL:  "https://cocan.openai.azure.com",
		APIKey:   "key",
	})
	require.NoError(t, err)
	require.IsType(t, &azureModel{}, m)
	assert.Equal(t, "cocan", m.(*azureModel).deployment)
}
