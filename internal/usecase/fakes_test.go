package usecase

import (
	"context"
	"sync"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

type fakeProvider struct {
	name    string
	enabled bool
	offers  []entity.Offer
	err     error

	mu    sync.Mutex
	calls int
}

func (f *fakeProvider) Name() string  { return f.name }
func (f *fakeProvider) Enabled() bool { return f.enabled }

func (f *fakeProvider) Search(ctx context.Context, query string) ([]entity.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]entity.Offer, len(f.offers))
	copy(out, f.offers)
	return out, nil
}

func (f *fakeProvider) setOffers(offers []entity.Offer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offers = offers
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDeals struct {
	enabled bool
	pages   map[int][]entity.Deal
	errs    map[int]error
	called  []int
}

func (f *fakeDeals) Enabled() bool { return f.enabled }

func (f *fakeDeals) Deals(ctx context.Context, country string, page int) ([]entity.Deal, error) {
	f.called = append(f.called, page)
	if err := f.errs[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Notify(ctx context.Context, chatID int64, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID, html})
	return f.err
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeAI struct {
	product, price string
	answer         string
	err            error
}

func (f *fakeAI) GenerateAdvice(ctx context.Context, product, price string) (string, error) {
	f.product, f.price = product, price
	return f.answer, f.err
}
