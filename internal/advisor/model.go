package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"cocan/internal/config"
)

const githubModelsURL = "https://models.inference.ai.azure.com"

// NewModel builds the language model named by cfg. Providers "", "none" and
// "heuristic" return a nil model.
func NewModel(cfg config.AdvisorConfig) (llms.Model, error) {
	switch cfg.Provider {
	case "", "none", "heuristic":
		return nil, nil
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai advisor needs advisor.api_key or OPENAI_API_KEY")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		llm, err := openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return llm, nil
	case "github_models":
		// GitHub Models speaks the OpenAI API.
		token := cfg.APIKey
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}
		if token == "" {
			return nil, fmt.Errorf("github_models advisor needs advisor.api_key or GITHUB_TOKEN")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = githubModelsURL
		}
		llm, err := openai.New(openai.WithToken(token), openai.WithModel(cfg.Model), openai.WithBaseURL(baseURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub Models client: %w", err)
		}
		return llm, nil
	case "azure_openai":
		llm, err := newAzureModel(cfg)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "ollama":
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		llm, err := ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}
		return llm, nil
	default:
		return nil, fmt.Errorf("unsupported advisor provider: %s", cfg.Provider)
	}
}

type modelPlan struct {
	Steps []struct {
		Material string `json:"material"`
		Action   string `json:"action"`
	} `json:"steps"`
	Reason string `json:"reason"`
}

func prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are planning a dish in a small restaurant kitchen.\n")
	if req.OrderText != "" {
		fmt.Fprintf(&b, "The guest ordered: %s.\n", req.OrderText)
	}
	fmt.Fprintf(&b, "Liked ingredients: %s\n", list(sorted(req.Preferences.Liked)))
	fmt.Fprintf(&b, "Hated ingredients: %s\n", list(sorted(req.Preferences.Hated)))
	fmt.Fprintf(&b, "Ingredients that move the guest: %s\n", list(sorted(req.Preferences.Emotion)))
	fmt.Fprintf(&b, "Available materials: %s\n", strings.Join(req.Materials, ", "))
	fmt.Fprintf(&b, "Available actions: %s\n", strings.Join(req.Actions, ", "))
	fmt.Fprintf(&b, "Choose exactly %d steps. Any liked ingredient adds 5, any hated one costs 5, ", req.Steps)
	fmt.Fprintf(&b, "an ingredient that moves the guest adds 5 and its absence costs 5.\n")
	fmt.Fprintf(&b, `Reply with JSON only: {"steps":[{"material":"...","action":"..."}],"reason":"..."}`)
	return b.String()
}

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func (a *Advisor) ask(ctx context.Context, req Request) (Plan, error) {
	text, err := llms.GenerateFromSinglePrompt(ctx, a.model, prompt(req), llms.WithTemperature(0.2))
	if err != nil {
		return Plan{}, fmt.Errorf("generating plan: %w", err)
	}
	return parsePlan(req, text)
}

// parsePlan reads the model's JSON, tolerating surrounding prose or code
// fences, and checks every name against the menu.
func parsePlan(req Request, text string) (Plan, error) {
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Plan{}, fmt.Errorf("no JSON object in reply")
	}
	var mp modelPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &mp); err != nil {
		return Plan{}, fmt.Errorf("decoding reply: %w", err)
	}
	if len(mp.Steps) != req.Steps {
		return Plan{}, fmt.Errorf("reply has %d steps, want %d", len(mp.Steps), req.Steps)
	}

	steps := make([]Step, len(mp.Steps))
	for i, s := range mp.Steps {
		m := indexOf(req.Materials, s.Material)
		if m < 0 {
			return Plan{}, fmt.Errorf("step %d: unknown material %q", i, s.Material)
		}
		act := indexOf(req.Actions, s.Action)
		if act < 0 {
			return Plan{}, fmt.Errorf("step %d: unknown action %q", i, s.Action)
		}
		steps[i] = Step{Material: m, Action: act, MaterialName: req.Materials[m], ActionName: req.Actions[act]}
	}
	return Plan{
		Guest:    req.Guest,
		Steps:    steps,
		Source:   SourceModel,
		Expected: expected(req, steps),
		Reason:   mp.Reason,
	}, nil
}

func indexOf(names []string, name string) int {
	name = strings.TrimSpace(name)
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return -1
}
