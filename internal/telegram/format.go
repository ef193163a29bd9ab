package telegram

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"artconnect/internal/analytics"
	"artconnect/internal/review"
	"artconnect/internal/storage"
)

const helpText = `<b>ArtConnect review bot</b>

/top [platform] [min_score] [limit] - best opportunities with a suggested reply
/stats - approval rate and action breakdown
/report - KPI report (admin)
/reviewers - list reviewers (admin)
/remove &lt;user_id&gt; - revoke a reviewer (admin)
/cancel - drop the reply you are editing`

func formatOpportunity(op review.Opportunity, highValue float64) string {
	var sb strings.Builder
	marker := ""
	if op.OpportunityScore >= highValue {
		marker = "🔥 "
	}
	fmt.Fprintf(&sb, "%s<b>%s</b> · %s · score <b>%.1f</b>\n", marker, html.EscapeString(op.ID), op.Platform, op.OpportunityScore)
	fmt.Fprintf(&sb, "%s (%d followers), %s\n", html.EscapeString(op.Author), op.FollowerCount, op.Timestamp.UTC().Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "<i>%s</i>\n", html.EscapeString(op.Text))
	fmt.Fprintf(&sb, "K %.2f · S %.2f · U %.2f · R %.2f\n\n", op.KeywordFactor, op.SentimentFactor, op.InfluenceFactor, op.RecencyFactor)
	fmt.Fprintf(&sb, "💬 Suggested %s reply:\n%s", op.ReplyCategory, html.EscapeString(op.SuggestedReply))
	return sb.String()
}

func decisionKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", approvePrefix+id),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit & Approve", editPrefix+id),
			tgbotapi.NewInlineKeyboardButtonData("🚫 Reject", rejectPrefix+id),
		),
	)
}

func formatStats(b analytics.Breakdown) string {
	if b.Total() == 0 {
		return "📊 No decisions logged yet."
	}
	return fmt.Sprintf("📊 <b>Approval rate: %.1f%%</b>\n\n✅ Approved: %d\n✏️ Edited: %d\n🚫 Rejected: %d\nTotal: %d",
		b.Rate()*100, b.Approve, b.EditApprove, b.Reject, b.Total())
}

func formatDecision(e storage.Entry) string {
	switch e.Action {
	case storage.ActionReject:
		return fmt.Sprintf("🚫 Rejected <b>%s</b>. Nothing will be sent.", html.EscapeString(e.InteractionID))
	case storage.ActionEditApprove:
		return fmt.Sprintf("✏️ Edited reply logged for <b>%s</b>:\n%s", html.EscapeString(e.InteractionID), html.EscapeString(e.FinalReplyText))
	default:
		return fmt.Sprintf("✅ Approved <b>%s</b>:\n%s", html.EscapeString(e.InteractionID), html.EscapeString(e.FinalReplyText))
	}
}
