// Package telegram serves the meal planner to allow-listed Telegram users.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"meal-planner/internal/config"
	"meal-planner/internal/metrics"
	"meal-planner/internal/planner"
	"meal-planner/internal/shopping"
)

// sender is the part of the Telegram API the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API and the meal planner.
type Bot struct {
	api     sender
	updates *tgbotapi.BotAPI
	planner *planner.Service
	lists   *shopping.Repository
	metrics *metrics.Store
	cfg     *config.Config
	logger  *zap.Logger
	now     func() time.Time
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	svc *planner.Service,
	lists *shopping.Repository,
	metricsStore *metrics.Store,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))

	wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	logger.Info("webhook set", zap.String("description", resp.Description))

	b := newBot(api, svc, lists, metricsStore, cfg, logger)
	b.updates = api
	return b, nil
}

func newBot(api sender, svc *planner.Service, lists *shopping.Repository, metricsStore *metrics.Store, cfg *config.Config, logger *zap.Logger) *Bot {
	return &Bot{
		api:     api,
		planner: svc,
		lists:   lists,
		metrics: metricsStore,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.updates.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("error parsing update", zap.Error(err))
		return
	}
	b.dispatch(*update)
}

// dispatch routes one update. Messages from users outside the allow-list
// are dropped.
func (b *Bot) dispatch(update tgbotapi.Update) {
	var from *tgbotapi.User
	switch {
	case update.CallbackQuery != nil:
		from = update.CallbackQuery.From
	case update.Message != nil:
		from = update.Message.From
	default:
		return
	}
	if from == nil || !b.cfg.IsAllowedUser(from.ID) {
		if from != nil {
			b.logger.Warn("unauthorized access attempt",
				zap.Int64("user_id", from.ID),
				zap.String("username", from.UserName),
			)
		}
		return
	}

	if update.CallbackQuery != nil {
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}
	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cmd, args := parseCommand(msg.Text)
	switch cmd {
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	case "/week":
		b.handleWeek(ctx, msg.Chat.ID)
	case "/today":
		b.handleToday(ctx, msg.Chat.ID)
	case "/groceries":
		b.handleGroceries(ctx, msg.Chat.ID)
	case "/swap":
		b.handleSwap(ctx, msg.Chat.ID, args)
	case "/unique":
		b.handleUnique(ctx, msg.Chat.ID, args)
	case "/clear":
		b.handleClear(ctx, msg.Chat.ID)
	case "/metrics":
		if msg.From.ID != b.cfg.AdminTelegramID {
			b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
			return
		}
		b.handleMetrics(ctx, msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, "🤔 Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Warn("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) edit(chatID int64, messageID int, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = keyboard
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Warn("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.reply(b.cfg.AdminTelegramID, text)
}
