package assistant

import (
	"context"
	"fmt"
	"strings"

	"gameforum/settings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// ChatModel is the slice of an eino chat model the assistant needs.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ReportInput is what the model gets to see of a report.
type ReportInput struct {
	ReportType  string
	Reason      string
	Description string
	TargetTitle string
	TargetBody  string
}

// Assistant drafts moderation hints for pending reports. Its output is
// advice for a moderator, never an action.
type Assistant struct {
	model    ChatModel
	template prompt.ChatTemplate
}

const systemPrompt = `You help moderators of a gaming community forum triage user reports.
Answer in one short paragraph: say whether the report looks valid, which rule it
touches, and recommend "resolve" (act on the content) or "dismiss".`

const userPrompt = `Report type: {report_type}
Reason: {reason}
Reporter note: {description}
Reported title: {title}
Reported text:
{body}`

func New(m ChatModel) *Assistant {
	return &Assistant{
		model: m,
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(userPrompt),
		),
	}
}

// NewOpenAI builds an assistant on an OpenAI-compatible endpoint.
func NewOpenAI(ctx context.Context, cfg *settings.AssistantConfig) (*Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("assistant config is nil")
	}
	m, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model failed: %w", err)
	}
	return New(m), nil
}

// Suggest returns the model's hint for one report.
func (a *Assistant) Suggest(ctx context.Context, in ReportInput) (string, error) {
	messages, err := a.template.Format(ctx, map[string]any{
		"report_type": in.ReportType,
		"reason":      in.Reason,
		"description": orNone(in.Description),
		"title":       orNone(in.TargetTitle),
		"body":        orNone(truncate(in.TargetBody, 2000)),
	})
	if err != nil {
		return "", fmt.Errorf("format prompt failed: %w", err)
	}
	out, err := a.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("generate suggestion failed: %w", err)
	}
	return strings.TrimSpace(out.Content), nil
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
