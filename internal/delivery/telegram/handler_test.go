package telegram

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/infrastructure/spreadsheet"
	"github.com/yourusername/ghostdeal/internal/infrastructure/storage"
	"github.com/yourusername/ghostdeal/internal/usecase"
)

type botServer struct {
	mu   sync.Mutex
	sent []string
}

func (s *botServer) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"GhostDeal","username":"ghostdeal_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		s.mu.Lock()
		s.sent = append(s.sent, r.Form.Get("text"))
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (s *botServer) last(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	return s.sent[len(s.sent)-1]
}

type stubSearch struct{ offers []entity.Offer }

func (s *stubSearch) Search(ctx context.Context, query string) (entity.SearchResult, error) {
	return entity.SearchResult{Query: query, Offers: s.offers, FetchedAt: time.Now()}, nil
}

type stubDeals struct{ deals []entity.Deal }

func (s *stubDeals) Deals(ctx context.Context, country string, pages int) ([]entity.Deal, error) {
	return s.deals, nil
}

type stubAdvice struct{}

func (stubAdvice) Advise(ctx context.Context, product string, bestPrice float64) (string, error) {
	return "", usecase.ErrAdvisorUnavailable
}

func (stubAdvice) AdviseResult(ctx context.Context, result entity.SearchResult) (string, error) {
	return "AL <hemen>", nil
}

type stubAlerts struct {
	mu      sync.Mutex
	started []entity.WatchRequest
}

func (s *stubAlerts) Start(ctx context.Context, req entity.WatchRequest) (*entity.Watch, error) {
	if req.TargetPrice <= 0 {
		return nil, usecase.ErrInvalidWatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, req)
	return &entity.Watch{ID: "abc", Product: req.Product, TargetPrice: req.TargetPrice, ChatID: req.ChatID, Interval: 15 * time.Minute, Status: entity.WatchActive}, nil
}

func (s *stubAlerts) Stop(ctx context.Context, id string) (*entity.Watch, error) {
	return &entity.Watch{ID: id, Status: entity.WatchStopped}, nil
}

func (s *stubAlerts) Get(ctx context.Context, id string) (*entity.Watch, error) {
	if id != "abc" {
		return nil, usecase.ErrWatchNotFound
	}
	return &entity.Watch{ID: id, Product: "ps5", ChatID: 42, Status: entity.WatchActive}, nil
}

func (s *stubAlerts) List(ctx context.Context) ([]entity.Watch, error) {
	return []entity.Watch{
		{ID: "abc", Product: "ps5", TargetPrice: 15000, ChatID: 42, Status: entity.WatchActive},
		{ID: "zzz", Product: "başkasının", ChatID: 99, Status: entity.WatchActive},
	}, nil
}

func (s *stubAlerts) Shutdown() {}

func newTestHandler(t *testing.T) (*BotHandler, *botServer, *stubAlerts) {
	t.Helper()
	srv := &botServer{}
	ts := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(ts.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("TOKEN", ts.URL+"/bot%s/%s", ts.Client())
	if err != nil {
		t.Fatalf("bot: %v", err)
	}

	alerts := &stubAlerts{}
	h := NewBotHandler(bot,
		&stubSearch{offers: []entity.Offer{
			{Title: "PS5 Slim", Price: 18999, Seller: "Hepsiburada", URL: "https://example.com/ps5"},
			{Title: "PS5 Slim Dijital", Price: 19999, Seller: "Amazon TR"},
		}},
		&stubDeals{deals: []entity.Deal{{Title: "Kulaklık", Price: 500, ListPrice: 1000, DiscountLabel: "%50", URL: "#"}}},
		alerts, stubAdvice{},
		storage.NewMemorySessionRepository(time.Hour), spreadsheet.NewExcelSpreadsheet(), 1)
	return h, srv, alerts
}

func command(text string) *tgbotapi.Message {
	cmd := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 42},
		From:     &tgbotapi.User{ID: 1},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}},
	}
}

func TestParseAlarmArgs(t *testing.T) {
	tests := []struct {
		args    string
		target  float64
		product string
		wantErr bool
	}{
		{"20000 playstation 5 slim", 20000, "playstation 5 slim", false},
		{"1.299,90 kindle", 1299.9, "kindle", false},
		{"kindle", 0, "", true},
		{"abc kindle", 0, "", true},
		{"", 0, "", true},
	}
	for _, tt := range tests {
		target, product, err := parseAlarmArgs(tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAlarmArgs(%q) err = %v", tt.args, err)
			continue
		}
		if target != tt.target || product != tt.product {
			t.Errorf("parseAlarmArgs(%q) = %v, %q", tt.args, target, product)
		}
	}
}

func TestFormatOffers(t *testing.T) {
	result := entity.SearchResult{Query: "a&b", Offers: []entity.Offer{
		{Title: "One", Price: 1000, Seller: "S1"},
		{Title: "Two", Price: 2000, Seller: "S2"},
		{Title: "Three", Price: 3000, Seller: "S3"},
	}}
	got := formatOffers(result, 2)
	if !strings.Contains(got, "1.000,00 TL") || !strings.Contains(got, "2. 2.000,00 TL") {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "Three") {
		t.Errorf("limit ignored: %q", got)
	}
	if !strings.Contains(got, "a&amp;b") {
		t.Errorf("query not escaped: %q", got)
	}
}

func TestFormatWatches(t *testing.T) {
	out := formatWatches([]entity.Watch{
		{ID: "a", Product: "PS5", TargetPrice: 15000, Status: entity.WatchActive},
		{ID: "b", Product: "AirPods", TargetPrice: 5000, Status: entity.WatchFailed, LastBestPrice: 4800},
	})
	for _, want := range []string{"⏳ takipte", "❌ hata", "<code>b</code>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("kulaklık", 5); got != "kula…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ps5", 5); got != "ps5" {
		t.Errorf("truncate = %q", got)
	}
}

func TestHandleMessage_Search(t *testing.T) {
	h, srv, _ := newTestHandler(t)
	ctx := context.Background()

	h.handleMessage(ctx, &tgbotapi.Message{Text: "ps5 slim", Chat: &tgbotapi.Chat{ID: 42}})
	if got := srv.last(t); !strings.Contains(got, "En İyi Fiyat") || !strings.Contains(got, "18.999,00 TL") {
		t.Errorf("search reply = %q", got)
	}

	h.handleMessage(ctx, command("/advice"))
	if got := srv.last(t); !strings.Contains(got, "AL &lt;hemen&gt;") {
		t.Errorf("advice reply = %q", got)
	}
}

func TestHandleMessage_Alarm(t *testing.T) {
	h, srv, alerts := newTestHandler(t)
	ctx := context.Background()

	h.handleMessage(ctx, command("/alarm 15000 ps5 slim"))
	if len(alerts.started) != 1 {
		t.Fatalf("started = %+v", alerts.started)
	}
	req := alerts.started[0]
	if req.ChatID != 42 || req.TargetPrice != 15000 || req.Product != "ps5 slim" {
		t.Errorf("request = %+v", req)
	}
	if got := srv.last(t); !strings.Contains(got, "Alarm kuruldu") || !strings.Contains(got, "15 dakikada") {
		t.Errorf("reply = %q", got)
	}

	h.handleMessage(ctx, command("/alarm ps5"))
	if got := srv.last(t); !strings.Contains(got, "Kullanım") {
		t.Errorf("usage reply = %q", got)
	}

	h.handleMessage(ctx, command("/alarms"))
	got := srv.last(t)
	if !strings.Contains(got, "ps5") || strings.Contains(got, "başkasının") {
		t.Errorf("list reply = %q", got)
	}

	h.handleMessage(ctx, command("/stop nope"))
	if got := srv.last(t); !strings.Contains(got, "bulunamadı") {
		t.Errorf("stop reply = %q", got)
	}
}

func TestHandleMessage_Deals(t *testing.T) {
	h, srv, _ := newTestHandler(t)
	h.handleMessage(context.Background(), command("/deals"))
	got := srv.last(t)
	if !strings.Contains(got, "%50") || !strings.Contains(got, "Kulaklık") || strings.Contains(got, "Ürüne Git") {
		t.Errorf("deals reply = %q", got)
	}
}

func TestImportWatchlist(t *testing.T) {
	h, _, alerts := newTestHandler(t)

	f := excelize.NewFile()
	rows := [][]any{{"Ürün", "Hedef"}, {"Kindle", 4000}, {"AirPods", "x"}}
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow("Sheet1", cell, &rows[i])
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got := h.importWatchlist(context.Background(), 42, buf.Bytes(), "liste.xlsx")
	if !strings.Contains(got, "1 alarm kuruldu") {
		t.Errorf("reply = %q", got)
	}
	if len(alerts.started) != 1 || alerts.started[0].ChatID != 42 {
		t.Errorf("started = %+v", alerts.started)
	}

	if got := h.importWatchlist(context.Background(), 42, []byte("junk"), "x.xlsx"); !strings.Contains(got, "okunamadı") {
		t.Errorf("junk reply = %q", got)
	}
}
