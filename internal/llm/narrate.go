package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const reportPrompt = `You write the daily update for an independent visual artist.
You receive raw KPIs about comments on their Instagram and Twitter posts and
the approve / edit / reject decisions taken on suggested replies.
Write a short, friendly summary in plain text: what stood out, how many
commercial opportunities are waiting, and one concrete suggestion for tomorrow.
Do not invent numbers that are not in the input.`

// ReportNarrator narrates the daily report with a chat completion client.
type ReportNarrator struct {
	client Client
	prompt string
	logger *zap.Logger
}

func NewReportNarrator(c Client, logger *zap.Logger) *ReportNarrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportNarrator{client: c, prompt: reportPrompt, logger: logger}
}

func (n *ReportNarrator) Narrate(ctx context.Context, summary string) (string, error) {
	c, err := n.client.Complete(ctx, []Message{
		{Role: RoleSystem, Content: n.prompt},
		{Role: RoleUser, Content: summary},
	})
	if err != nil {
		return "", fmt.Errorf("narrate report: %w", err)
	}
	text := strings.TrimSpace(c.Text)
	if text == "" {
		return "", fmt.Errorf("narrate report: empty response from %s", c.Model)
	}
	n.logger.Debug("🧠 Report narrated",
		zap.String("model", c.Model),
		zap.Int("prompt_tokens", c.Usage.Prompt),
		zap.Int("completion_tokens", c.Usage.Completion))
	return text, nil
}
