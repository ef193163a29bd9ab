package telegram

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"
)

// buildReportText renders today's KPI report. With a narrator configured the
// summary is narrated; on narration failure the plain summary is used.
func (b *Bot) buildReportText(ctx context.Context) (string, error) {
	report, err := b.svc.Report()
	if err != nil {
		return "", err
	}
	daily, err := b.svc.Daily(b.svc.Now().UTC())
	if err != nil {
		return "", err
	}
	plain := report.GenerateReportSummary() + "\n" + daily.Summary()

	if b.narrator == nil {
		return plain, nil
	}
	narrated, err := b.narrator.Narrate(ctx, plain)
	if err != nil {
		b.logger.Warn("⚠️ LLM narration failed, sending plain report", zap.Error(err))
		return plain, nil
	}
	return narrated + "\n\n---\n" + plain, nil
}

func (b *Bot) sendReport(ctx context.Context, chatID int64) error {
	text, err := b.buildReportText(ctx)
	if err != nil {
		return err
	}
	b.sendMessage(chatID, "📈 "+html.EscapeString(strings.TrimSpace(text)))
	return nil
}

// SendDailyReport delivers the report to the admin chat. It is the scheduler's job.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	admin := b.authSvc.AdminID()
	if admin == 0 {
		return fmt.Errorf("no admin configured for the daily report")
	}
	if err := b.sendReport(ctx, admin); err != nil {
		return err
	}
	b.logger.Info("📨 Daily report sent", zap.Int64("chat_id", admin))
	return nil
}
