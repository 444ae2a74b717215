package usecase

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/price"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

// AlertUseCase price-drop watches
type AlertUseCase interface {
	// Start registers a watch and launches its polling loop
	Start(ctx context.Context, req entity.WatchRequest) (*entity.Watch, error)
	// Stop cancels the loop; stopping a finished watch is a no-op
	Stop(ctx context.Context, id string) (*entity.Watch, error)
	Get(ctx context.Context, id string) (*entity.Watch, error)
	List(ctx context.Context) ([]entity.Watch, error)
	// Shutdown cancels every loop and waits for them to exit
	Shutdown()
}

// AlertOptions watch defaults and interval bounds
type AlertOptions struct {
	DefaultInterval time.Duration
	MinInterval     time.Duration
	MaxInterval     time.Duration
	DefaultChatID   int64
}

// DefaultAlertOptions 15 minutes, clamped to [5, 60]
func DefaultAlertOptions() AlertOptions {
	return AlertOptions{
		DefaultInterval: 15 * time.Minute,
		MinInterval:     5 * time.Minute,
		MaxInterval:     60 * time.Minute,
	}
}

type alertUseCase struct {
	search   SearchUseCase
	watches  repository.WatchRepository
	notifier repository.Notifier
	opts     AlertOptions

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	closed  bool
	wg      sync.WaitGroup

	newID func() string
	now   func() time.Time
}

// NewAlertUseCase notifier may be nil, then Start refuses new watches
func NewAlertUseCase(
	search SearchUseCase,
	watches repository.WatchRepository,
	notifier repository.Notifier,
	opts AlertOptions,
) AlertUseCase {
	return &alertUseCase{
		search:   search,
		watches:  watches,
		notifier: notifier,
		opts:     opts,
		cancels:  make(map[string]context.CancelFunc),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

func (u *alertUseCase) Start(ctx context.Context, req entity.WatchRequest) (*entity.Watch, error) {
	if u.notifier == nil {
		return nil, ErrNotifierUnavailable
	}

	product := strings.TrimSpace(req.Product)
	if product == "" {
		return nil, ErrEmptyQuery
	}
	if req.TargetPrice <= 0 {
		return nil, fmt.Errorf("%w: target price must be positive", ErrInvalidWatch)
	}
	chatID := req.ChatID
	if chatID == 0 {
		chatID = u.opts.DefaultChatID
	}
	if chatID == 0 {
		return nil, fmt.Errorf("%w: chat id is required", ErrInvalidWatch)
	}
	if u.isClosed() {
		return nil, ErrAlertsClosed
	}

	watch := entity.Watch{
		ID:          u.newID(),
		Product:     product,
		TargetPrice: req.TargetPrice,
		Interval:    u.clampInterval(req.Interval),
		ChatID:      chatID,
		Status:      entity.WatchActive,
		CreatedAt:   u.now(),
	}
	if err := u.watches.Save(ctx, watch); err != nil {
		return nil, fmt.Errorf("failed to save watch: %w", err)
	}

	// the loop outlives the request that started it
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		cancel()
		u.markStopped(ctx, watch.ID)
		return nil, ErrAlertsClosed
	}
	u.cancels[watch.ID] = cancel
	u.wg.Add(1)
	u.mu.Unlock()

	u.notify(ctx, chatID, startedMessage(watch))
	go u.run(loopCtx, watch)

	log.Printf("alerts: watch %s started for %q target=%.2f every %v", watch.ID, product, watch.TargetPrice, watch.Interval)
	return &watch, nil
}

func (u *alertUseCase) Stop(ctx context.Context, id string) (*entity.Watch, error) {
	u.mu.Lock()
	cancel, ok := u.cancels[id]
	delete(u.cancels, id)
	u.mu.Unlock()
	if ok {
		cancel()
	}

	w, err := u.watches.Update(ctx, id, func(w *entity.Watch) {
		if w.Status == entity.WatchActive {
			w.Status = entity.WatchStopped
		}
	})
	if err != nil {
		return nil, err
	}
	log.Printf("alerts: watch %s stopped", id)
	return w, nil
}

func (u *alertUseCase) Get(ctx context.Context, id string) (*entity.Watch, error) {
	return u.watches.Get(ctx, id)
}

func (u *alertUseCase) List(ctx context.Context) ([]entity.Watch, error) {
	return u.watches.List(ctx)
}

func (u *alertUseCase) Shutdown() {
	u.mu.Lock()
	u.closed = true
	for id, cancel := range u.cancels {
		cancel()
		delete(u.cancels, id)
	}
	u.mu.Unlock()
	u.wg.Wait()
}

func (u *alertUseCase) run(ctx context.Context, watch entity.Watch) {
	defer u.wg.Done()
	defer func() {
		u.mu.Lock()
		delete(u.cancels, watch.ID)
		u.mu.Unlock()
	}()

	for {
		if u.check(ctx, watch) {
			return
		}

		timer := time.NewTimer(watch.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// check runs one search; true means the loop is finished
func (u *alertUseCase) check(ctx context.Context, watch entity.Watch) bool {
	result, err := u.search.Search(ctx, watch.Product)
	if ctx.Err() != nil {
		return true
	}
	if err != nil {
		log.Printf("alerts: watch %s search failed: %v", watch.ID, err)
	}

	best, found := result.Best()
	hit := found && best.Price <= watch.TargetPrice

	triggered := false
	updated, err := u.watches.Update(ctx, watch.ID, func(w *entity.Watch) {
		w.Checks++
		w.LastCheckedAt = u.now()
		if found {
			w.LastBestPrice = best.Price
		}
		if hit && w.Status == entity.WatchActive {
			w.Status = entity.WatchTriggered
			offer := best
			w.Hit = &offer
			triggered = true
		}
	})
	if err != nil {
		// deleted underneath us
		log.Printf("alerts: watch %s: %v", watch.ID, err)
		return true
	}
	if !triggered {
		return updated.Done()
	}

	log.Printf("alerts: watch %s triggered at %.2f (%s)", watch.ID, best.Price, best.Seller)
	if err := u.notify(ctx, watch.ChatID, priceDropMessage(best)); err != nil {
		// the hit is kept, only delivery failed
		if _, err := u.watches.Update(ctx, watch.ID, func(w *entity.Watch) {
			w.Status = entity.WatchFailed
		}); err != nil {
			log.Printf("alerts: watch %s: %v", watch.ID, err)
		}
	}
	return true
}

func (u *alertUseCase) notify(ctx context.Context, chatID int64, msg string) error {
	err := u.notifier.Notify(ctx, chatID, msg)
	if err != nil {
		log.Printf("alerts: failed to notify chat %d: %v", chatID, err)
	}
	return err
}

func (u *alertUseCase) isClosed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.closed
}

func (u *alertUseCase) markStopped(ctx context.Context, id string) {
	if _, err := u.watches.Update(ctx, id, func(w *entity.Watch) {
		w.Status = entity.WatchStopped
	}); err != nil {
		log.Printf("alerts: watch %s: %v", id, err)
	}
}

func (u *alertUseCase) clampInterval(d time.Duration) time.Duration {
	if d <= 0 {
		d = u.opts.DefaultInterval
	}
	if u.opts.MinInterval > 0 && d < u.opts.MinInterval {
		d = u.opts.MinInterval
	}
	if u.opts.MaxInterval > 0 && d > u.opts.MaxInterval {
		d = u.opts.MaxInterval
	}
	return d
}

func startedMessage(w entity.Watch) string {
	return fmt.Sprintf("✅ <b>GhostDeal Başladı</b>\nÜrün: %s\nHedef: %s",
		html.EscapeString(w.Product), price.FormatTL(w.TargetPrice))
}

func priceDropMessage(o entity.Offer) string {
	return fmt.Sprintf("🚨 <b>FİYAT DÜŞTÜ!</b>\n\n📦 %s\n💰 <b>%s</b>\n🛒 %s\n🔗 %s",
		html.EscapeString(o.Title), price.FormatTL(o.Price), html.EscapeString(o.Seller), html.EscapeString(o.URL))
}
