package telegram

import (
	"context"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/history"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
	"lovable-tutor/internal/storage"
)

const endSessionCmd = "end_session"

type Progress interface {
	Stats() catalog.Stats
	Dashboard() progress.Dashboard
	Vocabulary(f progress.VocabFilter) []catalog.Word
	LearnWord(ctx context.Context, id string) (catalog.Word, bool, error)
	Activity() ([]storage.Event, error)
}

type Session interface {
	Send(ctx context.Context, text string) (history.Turn, error)
	End(ctx context.Context) (session.Summary, error)
	Snapshot() session.View
}

// Bot serves a single learner, the owner. Everyone else is refused.
type Bot struct {
	api      *tgbotapi.BotAPI
	s        sender
	ownerID  int64
	progress Progress
	session  Session
	now      func() time.Time

	mu       sync.Mutex
	chatting bool

	callbacks sync.WaitGroup
}

func New(botToken string, ownerID int64, p Progress, sess Session) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	log.Printf("🤖 Authorized on account @%s", api.Self.UserName)
	return &Bot{
		api:      api,
		s:        botAPISender{api: api},
		ownerID:  ownerID,
		progress: p,
		session:  sess,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Start processes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.callbacks.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.callbacks.Wait()
				return
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleIncomingMessage(ctx, update.Message)
		return
	}
	// Messages are handled in order. Callbacks get their own goroutine so the
	// End button works while a practice message waits on the tutor.
	if update.CallbackQuery != nil {
		b.callbacks.Add(1)
		go func(cb *tgbotapi.CallbackQuery) {
			defer b.callbacks.Done()
			b.handleCallback(ctx, cb)
		}(update.CallbackQuery)
	}
}

func (b *Bot) isOwner(userID int64) bool {
	return b.ownerID != 0 && userID == b.ownerID
}

func (b *Bot) setChatting(v bool) {
	b.mu.Lock()
	b.chatting = v
	b.mu.Unlock()
}

func (b *Bot) isChatting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.chatting
}

func (b *Bot) sendMessage(chatID int64, text string) {
	b.send(chatID, text, nil)
}

func (b *Bot) send(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func endSessionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏁 End session", endSessionCmd),
		),
	)
}
