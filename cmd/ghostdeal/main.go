package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/ghostdeal/config"
	"github.com/yourusername/ghostdeal/internal/delivery/api"
	tgdelivery "github.com/yourusername/ghostdeal/internal/delivery/telegram"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
	"github.com/yourusername/ghostdeal/internal/infrastructure/gemini"
	"github.com/yourusername/ghostdeal/internal/infrastructure/shopping"
	"github.com/yourusername/ghostdeal/internal/infrastructure/spreadsheet"
	"github.com/yourusername/ghostdeal/internal/infrastructure/storage"
	"github.com/yourusername/ghostdeal/internal/infrastructure/telegram"
	"github.com/yourusername/ghostdeal/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// providers
	google := shopping.NewGoogleShoppingClient(cfg.SerpAPIKey, nil)
	amazon := shopping.NewAmazonClient(cfg.RapidAPIKey, cfg.DealsCountry, nil)

	var advisor repository.AIRepository
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("gemini disabled: %v", err)
		} else {
			advisor = client
			if c, ok := client.(io.Closer); ok {
				defer c.Close()
			}
		}
	}

	var notifier repository.Notifier
	bot, err := connectBot(cfg.TelegramToken)
	if err != nil {
		log.Printf("telegram disabled: %v", err)
	}
	if bot != nil {
		notifier = telegram.NewNotifier(bot)
	}

	// storage
	sessions := storage.NewMemorySessionRepository(24 * time.Hour)
	watches := storage.NewMemoryWatchRepository()
	sheet := spreadsheet.NewExcelSpreadsheet()

	// use cases
	alertOpts := usecase.DefaultAlertOptions()
	alertOpts.DefaultInterval = cfg.AlertInterval
	alertOpts.DefaultChatID = cfg.TelegramChatID

	searchUC := usecase.NewSearchUseCase(usecase.DefaultFilterOptions(), google, amazon)
	dealsUC := usecase.NewDealsUseCase(amazon, cfg.DealsCountry)
	adviceUC := usecase.NewAdviceUseCase(advisor)
	alertUC := usecase.NewAlertUseCase(searchUC, watches, notifier, alertOpts)

	wg := &sync.WaitGroup{}
	if bot != nil {
		handler := tgdelivery.NewBotHandler(bot, searchUC, dealsUC, alertUC, adviceUC, sessions, sheet, cfg.DealsPages)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := handler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("telegram bot: %v", err)
			}
		}()
	}

	if cfg.GinMode == "" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(cfg.GinMode)
	}
	h := api.NewHandler(searchUC, dealsUC, alertUC, adviceUC, sessions, sheet, cfg.DealsPages)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(h, cfg.AppPassword),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("GhostDeal listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server ListenAndServe: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server Shutdown: %v", err)
	}

	alertUC.Shutdown()
	wg.Wait()

	log.Println("graceful shutdown complete")
}

func connectBot(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, nil
	}
	return telegram.NewBot(token, "")
}
