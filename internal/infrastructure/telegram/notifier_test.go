package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBotAPI struct {
	mu    sync.Mutex
	sent  []map[string]string
	fails bool
}

func (f *fakeBotAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"GhostDeal","username":"ghostdeal_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if f.fails {
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		_ = r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id":    r.Form.Get("chat_id"),
			"text":       r.Form.Get("text"),
			"parse_mode": r.Form.Get("parse_mode"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestBot(t *testing.T, fake *fakeBotAPI) *tgbotapi.BotAPI {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(ts.Close)
	bot, err := tgbotapi.NewBotAPIWithClient("TOKEN", ts.URL+"/bot%s/%s", ts.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient: %v", err)
	}
	return bot
}

func TestNotifier_Notify(t *testing.T) {
	fake := &fakeBotAPI{}
	n := NewNotifier(newTestBot(t, fake))

	if err := n.Notify(context.Background(), 42, "<b>FİYAT DÜŞTÜ!</b>"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fake.sent))
	}
	got := fake.sent[0]
	if got["chat_id"] != "42" || got["text"] != "<b>FİYAT DÜŞTÜ!</b>" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload: %v", got)
	}
}

func TestNotifier_Errors(t *testing.T) {
	fake := &fakeBotAPI{fails: true}
	n := NewNotifier(newTestBot(t, fake))

	if err := n.Notify(context.Background(), 42, "x"); err == nil {
		t.Error("expected API error")
	}
	if err := n.Notify(context.Background(), 0, "x"); err == nil {
		t.Error("expected error for empty chat id")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Notify(ctx, 42, "x"); err == nil {
		t.Error("expected context error")
	}
}
