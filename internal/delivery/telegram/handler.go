package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/price"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
	"github.com/yourusername/ghostdeal/internal/usecase"
)

const (
	maxDocumentSize = 5 * 1024 * 1024
	offersShown     = 5
	dealsShown      = 10

	callbackAdvice = "advice"
	callbackExport = "export"
	callbackStop   = "stop:"
)

// BotHandler Telegram front end mirroring the dashboard
type BotHandler struct {
	bot        *tgbotapi.BotAPI
	search     usecase.SearchUseCase
	deals      usecase.DealsUseCase
	alerts     usecase.AlertUseCase
	advice     usecase.AdviceUseCase
	sessions   repository.SessionRepository
	sheet      repository.Spreadsheet
	dealsPages int
	httpClient *http.Client
}

// NewBotHandler bot is shared with the alert notifier
func NewBotHandler(
	bot *tgbotapi.BotAPI,
	search usecase.SearchUseCase,
	deals usecase.DealsUseCase,
	alerts usecase.AlertUseCase,
	advice usecase.AdviceUseCase,
	sessions repository.SessionRepository,
	sheet repository.Spreadsheet,
	dealsPages int,
) *BotHandler {
	return &BotHandler{
		bot:        bot,
		search:     search,
		deals:      deals,
		alerts:     alerts,
		advice:     advice,
		sessions:   sessions,
		sheet:      sheet,
		dealsPages: dealsPages,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Start long-polls updates until ctx is cancelled
func (h *BotHandler) Start(ctx context.Context) error {
	log.Printf("telegram: bot @%s started", h.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			log.Println("telegram: stopping bot")
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				go h.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			if update.Message == nil {
				continue
			}

			go h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	if message.Document != nil {
		h.handleDocumentMessage(ctx, message)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	// plain text is a search
	if text := strings.TrimSpace(message.Text); text != "" {
		h.handleSearch(ctx, message.Chat.ID, text)
	}
}

func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start", "help":
		h.sendHTML(chatID, helpMessage)
	case "search", "ara":
		if args == "" {
			h.sendHTML(chatID, "Kullanım: <code>/search iphone 15 128gb</code>")
			return
		}
		h.handleSearch(ctx, chatID, args)
	case "deals", "firsat":
		h.handleDeals(ctx, chatID, args)
	case "advice", "strateji":
		h.handleAdvice(ctx, chatID)
	case "export":
		h.handleExport(ctx, chatID)
	case "alarm":
		h.handleAlarm(ctx, chatID, args)
	case "alarms", "alarmlar":
		h.handleAlarmList(ctx, chatID)
	case "stop":
		h.handleStop(ctx, chatID, args)
	case "clear":
		if err := h.sessions.Clear(ctx, sessionKey(chatID)); err != nil {
			log.Printf("telegram: clear failed: %v", err)
		}
		h.sendHTML(chatID, "🧹 Son arama ve fırsatlar temizlendi.")
	default:
		h.sendHTML(chatID, "Bilinmeyen komut. /help yazın.")
	}
}

func (h *BotHandler) handleSearch(ctx context.Context, chatID int64, query string) {
	result, err := h.search.Search(ctx, query)
	if err != nil {
		log.Printf("telegram: search %q failed: %v", query, err)
		h.sendHTML(chatID, "❌ Arama başarısız oldu, lütfen tekrar deneyin.")
		return
	}
	if err := h.sessions.SaveResult(ctx, sessionKey(chatID), result); err != nil {
		log.Printf("telegram: failed to save result: %v", err)
	}

	if result.Empty() {
		h.sendHTML(chatID, "⚠️ Sonuç bulunamadı. Daha genel bir arama deneyin.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatOffers(result, offersShown))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧠 Strateji", callbackAdvice),
			tgbotapi.NewInlineKeyboardButtonData("📥 Excel", callbackExport),
		),
	)
	h.send(msg)
}

func (h *BotHandler) handleDeals(ctx context.Context, chatID int64, country string) {
	deals, err := h.deals.Deals(ctx, strings.ToUpper(country), h.dealsPages)
	if err != nil {
		log.Printf("telegram: deals failed: %v", err)
		h.sendHTML(chatID, "❌ Fırsatlar alınamadı.")
		return
	}
	if err := h.sessions.SaveDeals(ctx, sessionKey(chatID), deals); err != nil {
		log.Printf("telegram: failed to save deals: %v", err)
	}
	if len(deals) == 0 {
		h.sendHTML(chatID, "⚠️ Şu an kriterlere uygun fırsat bulunamadı. Lütfen daha sonra tekrar deneyin.")
		return
	}
	h.sendHTML(chatID, formatDeals(deals, dealsShown))
}

func (h *BotHandler) handleAdvice(ctx context.Context, chatID int64) {
	result, ok, err := h.sessions.LastResult(ctx, sessionKey(chatID))
	if err != nil || !ok {
		h.sendHTML(chatID, "Önce bir arama yapın: <code>/search ürün</code>")
		return
	}

	advice, err := h.advice.AdviseResult(ctx, result)
	switch {
	case errors.Is(err, usecase.ErrAdvisorUnavailable):
		h.sendHTML(chatID, "🧠 Yapay zeka danışmanı yapılandırılmamış.")
	case errors.Is(err, usecase.ErrNoResults):
		h.sendHTML(chatID, "⚠️ Son aramada ürün yok.")
	case err != nil:
		log.Printf("telegram: advice failed: %v", err)
		h.sendHTML(chatID, "❌ Strateji alınamadı.")
	default:
		h.sendHTML(chatID, "🧠 <b>Yapay Zeka Stratejisi</b>\n\n"+html.EscapeString(advice))
	}
}

func (h *BotHandler) handleExport(ctx context.Context, chatID int64) {
	result, ok, err := h.sessions.LastResult(ctx, sessionKey(chatID))
	if err != nil || !ok || result.Empty() {
		h.sendHTML(chatID, "Dışa aktarılacak sonuç yok.")
		return
	}

	var buf bytes.Buffer
	if err := h.sheet.WriteOffers(ctx, &buf, result); err != nil {
		log.Printf("telegram: export failed: %v", err)
		h.sendHTML(chatID, "❌ Excel dosyası oluşturulamadı.")
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("ghostdeal-%s.xlsx", time.Now().Format("20060102-1504")),
		Bytes: buf.Bytes(),
	})
	h.send(doc)
}

func (h *BotHandler) handleAlarm(ctx context.Context, chatID int64, args string) {
	target, product, err := parseAlarmArgs(args)
	if err != nil {
		h.sendHTML(chatID, "Kullanım: <code>/alarm 20000 playstation 5 slim</code>")
		return
	}

	w, err := h.alerts.Start(ctx, entity.WatchRequest{
		Product:     product,
		TargetPrice: target,
		ChatID:      chatID,
	})
	if err != nil {
		log.Printf("telegram: alarm failed: %v", err)
		h.sendHTML(chatID, "❌ Alarm kurulamadı: "+html.EscapeString(err.Error()))
		return
	}
	h.sendHTML(chatID, fmt.Sprintf("🔔 Alarm kuruldu (<code>%s</code>), her %d dakikada kontrol edilecek.",
		w.ID, int(w.Interval/time.Minute)))
}

func (h *BotHandler) handleAlarmList(ctx context.Context, chatID int64) {
	all, err := h.alerts.List(ctx)
	if err != nil {
		h.sendHTML(chatID, "❌ Alarmlar okunamadı.")
		return
	}

	var mine []entity.Watch
	for _, w := range all {
		if w.ChatID == chatID {
			mine = append(mine, w)
		}
	}
	if len(mine) == 0 {
		h.sendHTML(chatID, "Kurulu alarm yok. <code>/alarm hedef ürün</code> ile ekleyin.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, formatWatches(mine))
	msg.ParseMode = tgbotapi.ModeHTML
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, w := range mine {
		if w.Done() {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏹ "+truncate(w.Product, 30), callbackStop+w.ID),
		))
	}
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	h.send(msg)
}

func (h *BotHandler) handleStop(ctx context.Context, chatID int64, id string) {
	if id == "" {
		h.sendHTML(chatID, "Kullanım: <code>/stop alarm-id</code>")
		return
	}

	w, err := h.alerts.Get(ctx, id)
	if err != nil || w.ChatID != chatID {
		h.sendHTML(chatID, "⚠️ Alarm bulunamadı.")
		return
	}
	if _, err := h.alerts.Stop(ctx, id); err != nil {
		h.sendHTML(chatID, "❌ Alarm durdurulamadı.")
		return
	}
	h.sendHTML(chatID, "⏹ Alarm durduruldu: "+html.EscapeString(w.Product))
}

func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Message.Chat == nil {
		return
	}
	chatID := cq.Message.Chat.ID

	// stop the spinner
	if _, err := h.bot.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Printf("telegram: callback answer failed: %v", err)
	}

	switch {
	case cq.Data == callbackAdvice:
		h.handleAdvice(ctx, chatID)
	case cq.Data == callbackExport:
		h.handleExport(ctx, chatID)
	case strings.HasPrefix(cq.Data, callbackStop):
		h.handleStop(ctx, chatID, strings.TrimPrefix(cq.Data, callbackStop))
	}
}

// handleDocumentMessage an uploaded xlsx is a watchlist
func (h *BotHandler) handleDocumentMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	doc := message.Document

	if doc.FileSize > maxDocumentSize {
		h.sendHTML(chatID, "❌ Dosya 5MB'tan büyük olamaz.")
		return
	}
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".xlsx") {
		h.sendHTML(chatID, "❌ Sadece Excel (.xlsx) dosyaları kabul edilir.")
		return
	}

	data, err := h.downloadFile(ctx, doc.FileID)
	if err != nil {
		log.Printf("telegram: file download failed: %v", err)
		h.sendHTML(chatID, "❌ Dosya indirilemedi.")
		return
	}

	h.sendHTML(chatID, h.importWatchlist(ctx, chatID, data, doc.FileName))
}

// importWatchlist starts one watch per row, reporting back in HTML
func (h *BotHandler) importWatchlist(ctx context.Context, chatID int64, data []byte, filename string) string {
	requests, err := h.sheet.ParseWatchlist(ctx, data, filename)
	if err != nil {
		return "❌ Liste okunamadı: " + html.EscapeString(err.Error())
	}

	var b strings.Builder
	started := 0
	for _, req := range requests {
		if req.ChatID == 0 {
			req.ChatID = chatID
		}
		if _, err := h.alerts.Start(ctx, req); err != nil {
			fmt.Fprintf(&b, "\n⚠️ %s: %s", html.EscapeString(req.Product), html.EscapeString(err.Error()))
			continue
		}
		started++
	}
	return fmt.Sprintf("✅ %d alarm kuruldu (%s).%s", started, html.EscapeString(filename), b.String())
}

func (h *BotHandler) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
}

func (h *BotHandler) sendHTML(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	h.send(msg)
}

func (h *BotHandler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		log.Printf("telegram: send failed: %v", err)
	}
}

func sessionKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// parseAlarmArgs "<target> <product...>"
func parseAlarmArgs(args string) (float64, string, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return 0, "", fmt.Errorf("expected target price and product")
	}
	target := price.ParseString(fields[0])
	if target <= 0 {
		return 0, "", fmt.Errorf("invalid target price %q", fields[0])
	}
	return target, strings.Join(fields[1:], " "), nil
}

func formatOffers(result entity.SearchResult, limit int) string {
	var b strings.Builder
	best, _ := result.Best()
	fmt.Fprintf(&b, "🏆 <b>En İyi Fiyat</b>: %s\n%s · %s\n",
		price.FormatTL(best.Price), html.EscapeString(best.Seller), html.EscapeString(best.Title))
	if best.URL != "" {
		fmt.Fprintf(&b, "<a href=\"%s\">Satın Al ↗</a>\n", html.EscapeString(best.URL))
	}

	if len(result.Offers) > 1 {
		b.WriteString("\n<b>Diğer teklifler</b>\n")
		for i, o := range result.Offers[1:] {
			if i+1 >= limit {
				break
			}
			fmt.Fprintf(&b, "%d. %s · %s (%s)\n", i+2, price.FormatTL(o.Price),
				html.EscapeString(truncate(o.Title, 60)), html.EscapeString(o.Seller))
		}
	}
	fmt.Fprintf(&b, "\n%d sonuç · \"%s\"", len(result.Offers), html.EscapeString(result.Query))
	return b.String()
}

func formatDeals(deals []entity.Deal, limit int) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Günün Fırsatları</b>\n")
	for i, d := range deals {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "\n<b>%s</b> %s\n<s>%s</s> → <b>%s</b>\n",
			d.DiscountLabel, html.EscapeString(truncate(d.Title, 70)), price.FormatTL(d.ListPrice), price.FormatTL(d.Price))
		if d.URL != "" && d.URL != "#" {
			fmt.Fprintf(&b, "<a href=\"%s\">Ürüne Git ↗</a>\n", html.EscapeString(d.URL))
		}
	}
	if len(deals) > limit {
		fmt.Fprintf(&b, "\n… ve %d fırsat daha", len(deals)-limit)
	}
	return b.String()
}

var watchStatusLabels = map[entity.WatchStatus]string{
	entity.WatchActive:    "⏳ takipte",
	entity.WatchTriggered: "🎯 yakalandı",
	entity.WatchStopped:   "⏹ durduruldu",
	entity.WatchFailed:    "❌ hata",
}

func formatWatches(watches []entity.Watch) string {
	var b strings.Builder
	b.WriteString("🔔 <b>Alarmlar</b>\n")
	for _, w := range watches {
		fmt.Fprintf(&b, "\n<b>%s</b> · hedef %s · %s\n<code>%s</code>",
			html.EscapeString(w.Product), price.FormatTL(w.TargetPrice), watchStatusLabels[w.Status], w.ID)
		if w.LastBestPrice > 0 {
			fmt.Fprintf(&b, " · son %s", price.FormatTL(w.LastBestPrice))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

const helpMessage = `👻 <b>GhostDeal</b>: fiyat karşılaştırma ve alarm botu

/search &lt;ürün&gt; ürünü Google Shopping ve Amazon'da arar (düz metin de olur)
/advice son aramanın en iyi fiyatı için yapay zeka stratejisi
/export son aramayı Excel olarak gönderir
/deals [ülke] günün Amazon fırsatları
/alarm &lt;hedef&gt; &lt;ürün&gt; fiyat hedefe düşünce haber verir
/alarms kurulu alarmlar
/stop &lt;id&gt; alarmı durdurur
/clear son aramayı unutur

Excel (.xlsx) dosyası gönderirseniz her satır (ürün, hedef fiyat) için alarm kurulur.`
