package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"organizer/internal/model"
	"organizer/internal/repository"
	"organizer/internal/service"
)

const helpText = `<b>Organizer bot</b>

/start – show the chat id to paste into your profile
/events – today's and upcoming events
/help – this message`

// API is the part of the Telegram client the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot answers commands and pushes daily digests to users who linked a chat.
type Bot struct {
	api    API
	users  *repository.UserRepository
	digest *service.DigestService
	loc    *time.Location
	log    *slog.Logger
	now    func() time.Time
}

// New authorizes against the Telegram API with token.
func New(token string, users *repository.UserRepository, digest *service.DigestService, loc *time.Location, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	b := NewWithAPI(api, users, digest, loc, log)
	b.log.Info("bot authorized", "account", api.Self.UserName)
	return b, nil
}

func NewWithAPI(api API, users *repository.UserRepository, digest *service.DigestService, loc *time.Location, log *slog.Logger) *Bot {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		api:    api,
		users:  users,
		digest: digest,
		loc:    loc,
		log:    log.With("component", "bot"),
		now:    time.Now,
	}
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if err := b.HandleUpdate(ctx, update); err != nil {
			b.log.Error("handle update", "update_id", update.UpdateID, "error", err)
		}
	}
	return ctx.Err()
}

// HandleUpdate reacts to commands in private chats and ignores everything else.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.Chat.IsPrivate() {
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "Unknown message. Send /help for the list of commands.")
	}

	switch msg.Command() {
	case "start":
		return b.sendText(msg.Chat.ID, fmt.Sprintf(
			"Your chat id is <code>%d</code>.\nPaste it into the Telegram field of your organizer profile to receive daily digests.",
			msg.Chat.ID,
		))
	case "events":
		return b.handleEvents(ctx, msg.Chat.ID)
	case "help":
		return b.sendText(msg.Chat.ID, helpText)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Send /help for the list of commands.")
	}
}

func (b *Bot) handleEvents(ctx context.Context, chatID int64) error {
	user, err := b.users.FindByTelegramChatID(ctx, chatID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b.sendText(chatID, "This chat is not linked to an organizer account yet. Send /start to get the chat id.")
	}
	if err != nil {
		return fmt.Errorf("find user by chat: %w", err)
	}

	text, err := b.digest.DailyDigest(ctx, user, b.now().In(b.loc))
	if err != nil {
		return err
	}
	return b.sendText(chatID, text)
}

// SendDailyDigests pushes the digest to every user with a linked chat. Failures for one user are
// logged and do not stop the others.
func (b *Bot) SendDailyDigests(ctx context.Context) error {
	users, err := b.users.ListWithTelegram(ctx)
	if err != nil {
		return err
	}
	now := b.now().In(b.loc)

	var failed []string
	for i := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		user := &users[i]
		if err := b.sendDigest(ctx, user, now); err != nil {
			b.log.Error("send digest", "user_id", user.ID, "error", err)
			failed = append(failed, user.Email)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("digest not delivered to %d of %d users: %s", len(failed), len(users), strings.Join(failed, ", "))
	}
	return nil
}

func (b *Bot) sendDigest(ctx context.Context, user *model.User, now time.Time) error {
	text, err := b.digest.DailyDigest(ctx, user, now)
	if err != nil {
		return fmt.Errorf("build digest: %w", err)
	}
	return b.sendText(*user.TelegramChatID, text)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}
