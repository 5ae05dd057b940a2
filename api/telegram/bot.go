package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/artem13815/resumebot/pkg/document"
	"github.com/artem13815/resumebot/pkg/ingest"
	"github.com/artem13815/resumebot/pkg/profile"
)

// API is the part of the Bot API client the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Handler reacts to chat events.
type Handler interface {
	HandleStart(ctx context.Context, id profile.Identity, r ingest.Replier) error
	HandleDocument(ctx context.Context, up ingest.Upload, r ingest.Replier) error
	HandleProfileLink(ctx context.Context, id profile.Identity, r ingest.Replier) error
	HandleHistory(ctx context.Context, id profile.Identity, r ingest.Replier) error
}

// Connect authenticates with the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// Resolver adapts the client to document.HTTPFetcher.
func Resolver(api API) document.Resolver {
	return api.GetFileDirectURL
}

// Bot long-polls updates and hands them to the Handler one at a time.
type Bot struct {
	api            API
	h              Handler
	log            *slog.Logger
	pollTimeout    int
	handlerTimeout time.Duration
}

func NewBot(api API, h Handler, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{api: api, h: h, log: logger, pollTimeout: 60, handlerTimeout: 3 * time.Minute}
}

// Run blocks until ctx is cancelled or the update channel closes.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	b.log.Info("telegram bot polling")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, upd)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	id := profile.Identity{
		ExternalID: strconv.FormatInt(msg.From.ID, 10),
		Name:       msg.From.FirstName,
		Handle:     msg.From.UserName,
	}
	r := chatReplier{api: b.api, chatID: msg.Chat.ID}

	var err error
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			err = b.h.HandleStart(ctx, id, r)
		case "profile":
			err = b.h.HandleProfileLink(ctx, id, r)
		case "history":
			err = b.h.HandleHistory(ctx, id, r)
		default:
			err = r.Reply(ctx, ingest.MsgUploadHint)
		}
	case msg.Document != nil:
		err = b.h.HandleDocument(ctx, ingest.Upload{
			Sender: id,
			Document: document.Ref{
				ID:       msg.Document.FileID,
				Name:     msg.Document.FileName,
				MimeType: msg.Document.MimeType,
				Size:     int64(msg.Document.FileSize),
			},
		}, r)
	default:
		err = r.Reply(ctx, ingest.MsgUploadHint)
	}
	if err != nil {
		b.log.Error("handle update", "update_id", upd.UpdateID, "telegram_id", id.ExternalID, "err", err)
	}
}

type chatReplier struct {
	api    API
	chatID int64
}

func (r chatReplier) Reply(_ context.Context, text string) error {
	_, err := r.api.Send(tgbotapi.NewMessage(r.chatID, text))
	return err
}
