package bot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

type fakeAPI struct {
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	if len(f.sent) == 0 {
		t.Fatal("no messages sent")
	}
	return f.sent[len(f.sent)-1].Text
}

func newTestBot(api *fakeAPI, ragURL string) *Bot {
	return &Bot{
		api:    api,
		rag:    NewRAGClient(ragURL),
		modes:  NewModeStore(),
		logger: slog.New(slog.NewTextHandler(&strings.Builder{}, nil)),
	}
}

func commandMessage(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(strings.Fields(text)[0])},
		},
	}
}

func TestHandleCommand_Start(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, "http://127.0.0.1:1")

	b.handleCommand(context.Background(), commandMessage(100, "/start"))

	if got := api.lastText(t); !strings.Contains(got, "RAG-бот") {
		t.Errorf("start reply = %q", got)
	}
	if mode := b.modes.Get(100); mode != rag.ModeSynthesis {
		t.Errorf("mode after /start = %q", mode)
	}
}

func TestHandleCommand_Help(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, "http://127.0.0.1:1")

	b.handleCommand(context.Background(), commandMessage(100, "/help"))

	got := api.lastText(t)
	for _, mode := range rag.Modes() {
		if !strings.Contains(got, mode) {
			t.Errorf("help text does not mention mode %q", mode)
		}
	}
}

func TestHandleCommand_Mode(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, "http://127.0.0.1:1")

	// show current mode
	b.handleCommand(context.Background(), commandMessage(100, "/mode"))
	if got := api.lastText(t); !strings.Contains(got, "<b>synthesis</b>") {
		t.Errorf("mode reply = %q", got)
	}

	// switch mode, case-insensitive
	b.handleCommand(context.Background(), commandMessage(100, "/mode BULLETS"))
	if got := api.lastText(t); !strings.Contains(got, "Режим ответа установлен: bullets") {
		t.Errorf("mode switch reply = %q", got)
	}
	if mode := b.modes.Get(100); mode != rag.ModeBullets {
		t.Errorf("stored mode = %q", mode)
	}

	// unknown mode
	b.handleCommand(context.Background(), commandMessage(100, "/mode poetry"))
	if got := api.lastText(t); !strings.Contains(got, "Неизвестный режим") {
		t.Errorf("unknown mode reply = %q", got)
	}
	if mode := b.modes.Get(100); mode != rag.ModeBullets {
		t.Errorf("mode changed after rejected switch: %q", mode)
	}
}

func TestHandleQuestion(t *testing.T) {
	var gotPayload rag.AnswerRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(rag.AnswerResponse{
			Answer: "Ответ из базы.",
			Citations: []rag.Citation{
				{Index: 1, BookTitle: "Книга", BookSeries: "Серия"},
			},
		})
	}))
	defer server.Close()

	api := &fakeAPI{}
	b := newTestBot(api, server.URL)
	b.modes.Set(100, rag.ModeExtract)

	b.handleQuestion(context.Background(), 100, "вопрос")

	if gotPayload.Mode != rag.ModeExtract {
		t.Errorf("mode sent = %q, want %q", gotPayload.Mode, rag.ModeExtract)
	}
	if len(api.requests) == 0 {
		t.Error("expected a typing chat action")
	}

	msg := api.sent[len(api.sent)-1]
	if msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("parse mode = %q, want HTML", msg.ParseMode)
	}
	if !strings.Contains(msg.Text, "<b>Ответ</b>\n\nОтвет из базы.") {
		t.Errorf("answer text = %q", msg.Text)
	}
	if !strings.Contains(msg.Text, "• Книга (Серия)") {
		t.Errorf("sources missing: %q", msg.Text)
	}
}

func TestHandleQuestion_RAGError(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, "http://127.0.0.1:1")

	b.handleQuestion(context.Background(), 100, "вопрос")

	if got := api.lastText(t); !strings.Contains(got, "Ошибка при обращении к RAG") {
		t.Errorf("error reply = %q", got)
	}
}

func TestHandleInlineQuery(t *testing.T) {
	var gotPayload rag.AnswerRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(rag.AnswerResponse{Answer: "Коротко."})
	}))
	defer server.Close()

	api := &fakeAPI{}
	b := newTestBot(api, server.URL)

	b.handleInlineQuery(context.Background(), &tgbotapi.InlineQuery{ID: "q1", Query: "вопрос"})

	if gotPayload.Mode != rag.ModeShort {
		t.Errorf("inline mode = %q, want %q", gotPayload.Mode, rag.ModeShort)
	}

	var inline *tgbotapi.InlineConfig
	for _, req := range api.requests {
		if cfg, ok := req.(tgbotapi.InlineConfig); ok {
			inline = &cfg
		}
	}
	if inline == nil {
		t.Fatal("no inline answer sent")
	}
	if inline.InlineQueryID != "q1" || len(inline.Results) != 1 {
		t.Errorf("inline config = %+v", inline)
	}
}

func TestHandleInlineQuery_ErrorIsSilent(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(api, "http://127.0.0.1:1")

	b.handleInlineQuery(context.Background(), &tgbotapi.InlineQuery{ID: "q1", Query: "вопрос"})

	if len(api.requests) != 0 || len(api.sent) != 0 {
		t.Error("expected no Telegram calls on RAG failure")
	}
}
