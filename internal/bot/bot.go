// Package bot runs the Telegram front end of the knowledge base. It forwards
// user questions to the RAG API and renders answers with their sources.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

const (
	startText = "Это RAG-бот по твоим книгам.\n\n" +
		"Просто напиши вопрос — я отвечу, опираясь на базу.\n\n" +
		"Команды:\n" +
		"/mode — показать текущий режим и подсказки по смене.\n" +
		"/help — краткая справка.\n"

	helpText = "Бот работает поверх RAG по твоим книгам.\n\n" +
		"Режимы ответа:\n" +
		"• synthesis — обобщённый ответ\n" +
		"• extract — более буквальный ответ\n" +
		"• bullets — ключевые тезисы списком\n" +
		"• short — очень короткий ответ (~до 500 символов)\n\n" +
		"Сменить режим: /mode synthesis | /mode extract | /mode bullets | /mode short\n" +
		"Если режим не задан, используется synthesis."

	modeListText = "Доступные режимы:\n" +
		"• synthesis — обобщённый ответ\n" +
		"• extract — максимально буквальный\n" +
		"• bullets — ключевые тезисы\n" +
		"• short — очень короткий ответ\n\n" +
		"Сменить режим: /mode synthesis | /mode extract | /mode bullets | /mode short"
)

// botAPI is the slice of the Telegram API the bot uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// Bot is the Telegram bot.
type Bot struct {
	api    botAPI
	rag    *RAGClient
	modes  *ModeStore
	logger *slog.Logger
}

// New connects to Telegram and returns a ready Bot.
func New(token, ragURL string, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	logger.Info("authorized on Telegram", "username", api.Self.UserName)

	return &Bot{
		api:    api,
		rag:    NewRAGClient(ragURL),
		modes:  NewModeStore(),
		logger: logger,
	}, nil
}

// Run polls Telegram for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.InlineQuery != nil {
		b.handleInlineQuery(ctx, update.InlineQuery)
		return
	}
	if update.Message == nil {
		return
	}

	msg := update.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	b.handleQuestion(ctx, msg.Chat.ID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.modes.Set(chatID, rag.ModeSynthesis)
		b.reply(chatID, startText, "")
	case "help":
		b.reply(chatID, helpText, "")
	case "mode":
		b.handleModeCommand(chatID, strings.TrimSpace(msg.CommandArguments()))
	default:
		b.reply(chatID, "Неизвестная команда. Доступны: /start, /help, /mode.", "")
	}
}

func (b *Bot) handleModeCommand(chatID int64, arg string) {
	if arg == "" {
		current := b.modes.Get(chatID)
		text := fmt.Sprintf("Текущий режим: <b>%s</b>\n\n%s", current, modeListText)
		b.reply(chatID, text, tgbotapi.ModeHTML)
		return
	}

	mode := strings.ToLower(arg)
	if err := b.modes.Set(chatID, mode); err != nil {
		b.reply(chatID, "Неизвестный режим. Используй: synthesis, extract, bullets, short.", "")
		return
	}
	b.reply(chatID, fmt.Sprintf("Режим ответа установлен: %s", mode), "")
}

func (b *Bot) handleQuestion(ctx context.Context, chatID int64, text string) {
	// typing indicator while the answer is generated
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Warn("failed to send chat action", "error", err)
	}

	mode := b.modes.Get(chatID)
	answer, err := b.rag.Ask(ctx, text, mode)
	if err != nil {
		b.logger.Error("RAG request failed", "chat_id", chatID, "error", err)
		b.reply(chatID, fmt.Sprintf("Ошибка при обращении к RAG: %v", err), "")
		return
	}

	b.reply(chatID, FormatAnswer(answer.Answer, answer.Citations), tgbotapi.ModeHTML)
}

// handleInlineQuery answers "@bot question" queries with one short answer.
// Failures are dropped silently, inline mode has nowhere to show errors.
func (b *Bot) handleInlineQuery(ctx context.Context, query *tgbotapi.InlineQuery) {
	text := strings.TrimSpace(query.Query)
	if text == "" {
		return
	}

	answer, err := b.rag.Ask(ctx, text, rag.ModeShort)
	if err != nil {
		b.logger.Warn("inline RAG request failed", "error", err)
		return
	}

	body := strings.TrimSpace(answer.Answer)
	if body == "" {
		body = noAnswerMsg
	}

	article := tgbotapi.NewInlineQueryResultArticle("rag-inline-1", shorten(text, 64), TrimForTelegram(body))
	article.Description = shorten(body, 120)

	inline := tgbotapi.InlineConfig{
		InlineQueryID: query.ID,
		Results:       []interface{}{article},
		CacheTime:     0,
	}
	if _, err := b.api.Request(inline); err != nil {
		b.logger.Warn("failed to answer inline query", "error", err)
	}
}

func (b *Bot) reply(chatID int64, text, parseMode string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if parseMode != "" {
		msg.ParseMode = parseMode
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}
