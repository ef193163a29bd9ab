package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"artconnect/internal/auth"
	"artconnect/internal/interaction"
	"artconnect/internal/pending"
	"artconnect/internal/review"
	"artconnect/internal/storage"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.authSvc.IsAllowed(msg.From.ID) {
		b.requestAccess(msg)
		return
	}
	switch msg.Command() {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, helpText)
	case "top":
		b.handleTop(msg)
	case "stats":
		b.handleStats(msg)
	case "cancel":
		if err := b.drafts.Remove(msg.Chat.ID); err != nil {
			b.logger.Warn("⚠️ Failed to drop draft", zap.Error(err))
		}
		b.sendMessage(msg.Chat.ID, "Edit cancelled.")
	case "report", "reviewers", "remove":
		if !b.authSvc.IsAdmin(msg.From.ID) {
			b.sendMessage(msg.Chat.ID, "❌ This command is available to the admin only.")
			return
		}
		b.handleAdminCommand(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

// parseTopArgs reads "[platform] [min_score] [limit]" in any order: a platform
// name, then the first number is the minimum score and the second the limit.
func parseTopArgs(args string) (review.Filter, error) {
	f := review.Filter{Limit: defaultTopLimit}
	numbers := 0
	for _, a := range strings.Fields(args) {
		if p, err := interaction.ParsePlatform(a); err == nil {
			f.Platform = p
			continue
		}
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return f, fmt.Errorf("unexpected argument %q", a)
		}
		switch numbers {
		case 0:
			f.MinScore = v
		case 1:
			if v < 1 {
				return f, fmt.Errorf("limit must be positive")
			}
			f.Limit = int(v)
		default:
			return f, fmt.Errorf("too many arguments")
		}
		numbers++
	}
	return f, nil
}

func (b *Bot) handleTop(msg *tgbotapi.Message) {
	f, err := parseTopArgs(msg.CommandArguments())
	if err != nil {
		b.sendMessage(msg.Chat.ID, "Usage: /top [instagram|twitter] [min_score] [limit]\n"+html.EscapeString(err.Error()))
		return
	}
	ops := b.svc.Opportunities(f)
	if len(ops) == 0 {
		b.sendMessage(msg.Chat.ID, "Nothing matches this filter.")
		return
	}
	for _, op := range ops {
		b.sendHTML(msg.Chat.ID, formatOpportunity(op, b.highValue), decisionKeyboard(op.ID))
	}
}

func (b *Bot) handleStats(msg *tgbotapi.Message) {
	bd, err := b.svc.ActionBreakdown()
	if err != nil {
		b.logger.Error("❌ Failed to read decision log", zap.Error(err))
		b.sendMessage(msg.Chat.ID, "❌ Could not read the decision log.")
		return
	}
	b.sendMessage(msg.Chat.ID, formatStats(bd))
}

func (b *Bot) handleAdminCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "report":
		if err := b.sendReport(ctx, msg.Chat.ID); err != nil {
			b.logger.Error("❌ Report generation failed", zap.Error(err))
			b.sendMessage(msg.Chat.ID, "❌ Report generation failed: "+html.EscapeString(err.Error()))
		}
	case "reviewers":
		var bld strings.Builder
		bld.WriteString("Reviewers:\n")
		for _, r := range b.authSvc.List() {
			bld.WriteString(fmt.Sprintf("- id=%d @%s %s\n", r.ID, html.EscapeString(r.Username), html.EscapeString(r.FirstName)))
		}
		b.sendMessage(msg.Chat.ID, bld.String())
	case "remove":
		args := strings.Fields(msg.CommandArguments())
		if len(args) != 1 {
			b.sendMessage(msg.Chat.ID, "Usage: /remove &lt;user_id&gt;")
			return
		}
		uid, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			b.sendMessage(msg.Chat.ID, "Invalid user_id")
			return
		}
		if err := b.authSvc.Remove(uid); err != nil {
			b.sendMessage(msg.Chat.ID, "Remove failed: "+html.EscapeString(err.Error()))
			return
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf("Reviewer %d removed", uid))
	}
}

// handleIncomingMessage treats plain text as the edited reply when the chat has a draft.
func (b *Bot) handleIncomingMessage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	if !b.authSvc.IsAllowed(msg.From.ID) {
		b.requestAccess(msg)
		return
	}
	draft, ok, err := b.drafts.Get(msg.Chat.ID)
	if err != nil {
		b.logger.Error("❌ Failed to read drafts", zap.Error(err))
		b.sendMessage(msg.Chat.ID, "❌ Could not read pending edits.")
		return
	}
	if !ok {
		b.sendMessage(msg.Chat.ID, "Use /top to review opportunities, /help for all commands.")
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		b.sendMessage(msg.Chat.ID, "Send the edited reply as text, or /cancel.")
		return
	}
	e, err := b.svc.Decide(draft.InteractionID, storage.ActionEditApprove, text)
	if err != nil {
		b.replyDecisionError(msg.Chat.ID, err)
		return
	}
	if err := b.drafts.Remove(msg.Chat.ID); err != nil {
		b.logger.Warn("⚠️ Failed to drop draft", zap.Error(err))
	}
	b.sendMessage(msg.Chat.ID, formatDecision(e))
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	switch {
	case strings.HasPrefix(cb.Data, grantPrefix), strings.HasPrefix(cb.Data, denyPrefix):
		b.handleAccessCallback(cb)
		return
	}
	if !b.authSvc.IsAllowed(cb.From.ID) {
		b.answerCallback(cb, "You are not a reviewer.")
		return
	}
	if cb.Message == nil {
		b.answerCallback(cb, "")
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, approvePrefix):
		id := strings.TrimPrefix(cb.Data, approvePrefix)
		e, err := b.svc.Decide(id, storage.ActionApprove, "")
		if err != nil {
			b.answerCallback(cb, "Failed")
			b.replyDecisionError(chatID, err)
			return
		}
		b.answerCallback(cb, "Approved")
		b.sendMessage(chatID, formatDecision(e))
	case strings.HasPrefix(cb.Data, rejectPrefix):
		id := strings.TrimPrefix(cb.Data, rejectPrefix)
		e, err := b.svc.Decide(id, storage.ActionReject, "")
		if err != nil {
			b.answerCallback(cb, "Failed")
			b.replyDecisionError(chatID, err)
			return
		}
		b.answerCallback(cb, "Rejected")
		b.sendMessage(chatID, formatDecision(e))
	case strings.HasPrefix(cb.Data, editPrefix):
		id := strings.TrimPrefix(cb.Data, editPrefix)
		suggested, err := b.svc.Suggest(id)
		if err != nil {
			b.answerCallback(cb, "Failed")
			b.replyDecisionError(chatID, err)
			return
		}
		d := pending.Draft{
			ChatID:         chatID,
			ReviewerID:     cb.From.ID,
			InteractionID:  id,
			SuggestedReply: suggested,
			RequestedAt:    time.Now().UTC(),
		}
		if err := b.drafts.Upsert(d); err != nil {
			b.logger.Error("❌ Failed to store draft", zap.Error(err))
			b.answerCallback(cb, "Failed")
			return
		}
		b.answerCallback(cb, "Send the edited text")
		b.sendMessage(chatID, fmt.Sprintf("✏️ Send the edited reply for <b>%s</b>, or /cancel.\n\nSuggested:\n<code>%s</code>",
			html.EscapeString(id), html.EscapeString(suggested)))
	default:
		b.answerCallback(cb, "")
	}
}

func (b *Bot) replyDecisionError(chatID int64, err error) {
	switch {
	case errors.Is(err, review.ErrNotFound):
		b.sendMessage(chatID, "❓ This interaction is not in the current batch.")
	case errors.Is(err, storage.ErrEmptyReply):
		b.sendMessage(chatID, "The reply text must not be empty.")
	default:
		b.logger.Error("❌ Decision failed", zap.Error(err))
		b.sendMessage(chatID, "❌ Could not log the decision: "+html.EscapeString(err.Error()))
	}
}

// requestAccess records an access request and asks the admin once per user.
func (b *Bot) requestAccess(msg *tgbotapi.Message) {
	b.logger.Info("🔒 Unauthorized access attempt", zap.Int64("user_id", msg.From.ID), zap.String("username", msg.From.UserName))
	b.mu.Lock()
	_, asked := b.requests[msg.From.ID]
	if !asked {
		b.requests[msg.From.ID] = auth.Reviewer{ID: msg.From.ID, Username: msg.From.UserName, FirstName: msg.From.FirstName}
	}
	b.mu.Unlock()

	if asked {
		b.sendMessage(msg.Chat.ID, "Your access request is waiting for the admin.")
		return
	}
	b.sendMessage(msg.Chat.ID, "Access request sent to the admin. You will be notified once approved.")
	b.notifyAdminRequest(msg.From.ID, msg.From.UserName)
}

func (b *Bot) notifyAdminRequest(userID int64, username string) {
	admin := b.authSvc.AdminID()
	if admin == 0 {
		return
	}
	text := fmt.Sprintf("User @%s (id %d) wants to review replies", html.EscapeString(username), userID)
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("grant", grantPrefix+strconv.FormatInt(userID, 10)),
			tgbotapi.NewInlineKeyboardButtonData("deny", denyPrefix+strconv.FormatInt(userID, 10)),
		),
	)
	b.sendHTML(admin, text, kb)
}

func (b *Bot) handleAccessCallback(cb *tgbotapi.CallbackQuery) {
	if !b.authSvc.IsAdmin(cb.From.ID) {
		b.answerCallback(cb, "Admin only")
		return
	}
	grant := strings.HasPrefix(cb.Data, grantPrefix)
	idStr := strings.TrimPrefix(strings.TrimPrefix(cb.Data, grantPrefix), denyPrefix)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		b.answerCallback(cb, "Bad user id")
		return
	}

	b.mu.Lock()
	req, ok := b.requests[id]
	delete(b.requests, id)
	b.mu.Unlock()
	if !ok {
		req = auth.Reviewer{ID: id}
	}

	if !grant {
		b.answerCallback(cb, "Denied")
		b.sendMessage(id, "Your access request was denied.")
		return
	}
	if err := b.authSvc.Upsert(req); err != nil {
		b.logger.Error("❌ Failed to add reviewer", zap.Int64("user_id", id), zap.Error(err))
		b.answerCallback(cb, "Failed")
		return
	}
	b.logger.Info("👤 Reviewer added", zap.Int64("user_id", id))
	b.answerCallback(cb, "Granted")
	b.sendMessage(id, "Access granted. "+helpText)
}
