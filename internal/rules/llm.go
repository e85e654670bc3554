package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	insightModel       = openai.GPT4oMini
	insightMaxTokens   = 80
	insightTemperature = 0.2

	// One request per 2s with a small burst keeps a full optimization
	// pass within the provider's free-tier limits.
	insightRatePerSec = 0.5
	insightBurst      = 3
)

// OpenAIInsights generates one short natural-language insight per scored
// partner. It satisfies InsightProvider; callers treat every error as a
// soft failure and keep the deterministic rule output.
type OpenAIInsights struct {
	client  *openai.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewOpenAIInsights builds the provider. An empty API key returns nil so
// the engine runs rules-only.
func NewOpenAIInsights(apiKey string) *OpenAIInsights {
	if apiKey == "" {
		return nil
	}
	return &OpenAIInsights{
		client:  openai.NewClient(apiKey),
		limiter: rate.NewLimiter(rate.Limit(insightRatePerSec), insightBurst),
		logger:  slog.Default().With("component", "rules.llm"),
	}
}

func (p *OpenAIInsights) Insight(ctx context.Context, partner ScoredPartner) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: insightModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You advise on IP marketplace partnerships. Given bilateral " +
					"compatibility metrics, reply with one sentence highlighting the " +
					"single most actionable aspect of the partnership. No preamble.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: partnerPrompt(partner),
			},
		},
		Temperature: insightTemperature,
		MaxTokens:   insightMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("insight completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("insight completion returned no choices")
	}

	insight := strings.TrimSpace(resp.Choices[0].Message.Content)
	p.logger.Debug("insight generated",
		"partner_id", partner.PartnerID,
		"tokens_used", resp.Usage.TotalTokens,
	)
	return insight, nil
}

func partnerPrompt(partner ScoredPartner) string {
	names := make([]string, 0, len(partner.Metrics))
	for name := range partner.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "Overall score %.2f. Metrics:\n", partner.Score)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %.2f\n", name, partner.Metrics[name])
	}
	return b.String()
}
