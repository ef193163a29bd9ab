package telegram

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"artconnect/internal/auth"
	"artconnect/internal/llm"
	"artconnect/internal/pending"
	"artconnect/internal/review"
)

const (
	approvePrefix = "a:"
	editPrefix    = "e:"
	rejectPrefix  = "r:"

	grantPrefix = "ga:"
	denyPrefix  = "gd:"

	defaultTopLimit = 5
)

// Options carries the bot's collaborators.
type Options struct {
	Review *review.Service
	Auth   *auth.Service
	Drafts pending.Repository
	// Narrator rewrites the scheduled report; nil sends the plain summary.
	Narrator llm.Narrator
	Logger   *zap.Logger
	// HighValue marks opportunities worth a closer look in listings.
	HighValue float64
}

// Bot lets reviewers browse scored interactions and approve, edit or reject
// the suggested replies from Telegram.
type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	svc       *review.Service
	authSvc   *auth.Service
	drafts    pending.Repository
	narrator  llm.Narrator
	logger    *zap.Logger
	highValue float64

	mu       sync.Mutex
	requests map[int64]auth.Reviewer
}

func New(botToken string, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b, err := newBot(botAPISender{api: api}, opts)
	if err != nil {
		return nil, err
	}
	b.api = api
	b.logger.Info("🤖 Authorized on Telegram", zap.String("account", api.Self.UserName))
	return b, nil
}

func newBot(s sender, opts Options) (*Bot, error) {
	if opts.Review == nil || opts.Auth == nil || opts.Drafts == nil {
		return nil, errors.New("telegram bot requires review service, auth service and drafts repository")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{
		s:         s,
		svc:       opts.Review,
		authSvc:   opts.Auth,
		drafts:    opts.Drafts,
		narrator:  opts.Narrator,
		logger:    logger,
		highValue: opts.HighValue,
		requests:  make(map[int64]auth.Reviewer),
	}, nil
}

// Start polls for updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("📡 Listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("🛑 Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.handleIncomingMessage(update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(update.CallbackQuery)
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.sendHTML(chatID, text, nil)
}

func (b *Bot) sendHTML(chatID int64, text string, markup any) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.s.Send(msg); err != nil {
		b.logger.Warn("⚠️ Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.logger.Warn("⚠️ Failed to answer callback", zap.Error(err))
	}
}
