package telegram

import (
	"context"
	"errors"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"lovable-tutor/internal/analytics"
	"lovable-tutor/internal/catalog"
	"lovable-tutor/internal/progress"
	"lovable-tutor/internal/session"
)

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.isOwner(msg.From.ID) {
		if msg.From != nil {
			log.Printf("Unauthorized access attempt by user ID: %d, username: @%s", msg.From.ID, msg.From.UserName)
		}
		b.sendMessage(msg.Chat.ID, "Sorry, this tutor is private.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	if !b.isChatting() {
		b.sendMessage(msg.Chat.ID, "Send /chat to start a practice session.")
		return
	}
	b.handlePractice(ctx, msg.Chat.ID, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, helpText)
	case "dashboard":
		b.sendMessage(chatID, formatDashboard(b.progress.Dashboard()))
	case "chat":
		b.setChatting(true)
		b.send(chatID, "💬 Practice session started. Write anything in English and I will reply and check your sentence.", endSessionKeyboard())
	case "end":
		b.endSession(ctx, chatID)
	case "vocab":
		f := progress.VocabFilter{}
		if arg := strings.TrimSpace(msg.CommandArguments()); arg != "" {
			f.Category = catalog.Category(arg)
		}
		b.sendMessage(chatID, formatVocabulary(b.progress.Vocabulary(f)))
	case "learn":
		b.learnWord(ctx, chatID, strings.TrimSpace(msg.CommandArguments()))
	case "progress":
		events, err := b.progress.Activity()
		if err != nil {
			log.Printf("failed to load activity: %v", err)
			b.sendMessage(chatID, "Could not load your progress right now.")
			return
		}
		b.sendMessage(chatID, formatWeekly(analytics.Weekly(events, b.now())))
	default:
		b.sendMessage(chatID, "Unknown command.\n\n"+helpText)
	}
}

func (b *Bot) handlePractice(ctx context.Context, chatID int64, text string) {
	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		log.Printf("failed to send typing action: %v", err)
	}

	turn, err := b.session.Send(ctx, text)
	switch {
	case err == nil:
		b.send(chatID, formatTutorTurn(turn), endSessionKeyboard())
	case errors.Is(err, session.ErrBusy):
		b.sendMessage(chatID, "⏳ Still thinking about your last message…")
	case errors.Is(err, session.ErrEmptyMessage):
	case errors.Is(err, session.ErrSessionEnded):
		b.sendMessage(chatID, "That session has ended. Send /chat to start a new one.")
	default:
		log.Printf("tutor request failed: %v", err)
		b.send(chatID, "⚠️ The tutor is unavailable right now. Try sending your message again.", endSessionKeyboard())
	}
}

func (b *Bot) endSession(ctx context.Context, chatID int64) {
	b.setChatting(false)
	sum, err := b.session.End(ctx)
	if err != nil {
		log.Printf("failed to record session completion: %v", err)
		b.sendMessage(chatID, formatSummary(sum)+"\n\n⚠️ Your progress could not be saved.")
		return
	}
	b.sendMessage(chatID, formatSummary(sum)+"\n\n"+formatDashboard(b.progress.Dashboard()))
}

func (b *Bot) learnWord(ctx context.Context, chatID int64, id string) {
	if id == "" {
		b.sendMessage(chatID, "Usage: /learn &lt;word id&gt;")
		return
	}
	word, learned, err := b.progress.LearnWord(ctx, id)
	if err != nil {
		if errors.Is(err, progress.ErrUnknownWord) {
			b.sendMessage(chatID, "No word with id "+escape(id)+". Send /vocab to see the list.")
			return
		}
		log.Printf("failed to learn word %s: %v", id, err)
		b.sendMessage(chatID, "Could not save that right now.")
		return
	}
	if !learned {
		b.sendMessage(chatID, "You already know <b>"+escape(word.Word)+"</b>.")
		return
	}
	b.sendMessage(chatID, "🎉 <b>"+escape(word.Word)+"</b> learned! Words learned: "+itoa(b.progress.Stats().WordsLearned))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
	if cb.From == nil || !b.isOwner(cb.From.ID) || cb.Message == nil {
		return
	}
	if cb.Data == endSessionCmd {
		b.endSession(ctx, cb.Message.Chat.ID)
	}
}
