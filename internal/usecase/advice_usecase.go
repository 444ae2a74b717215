package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
	"github.com/yourusername/ghostdeal/internal/domain/price"
	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

// AdviceUseCase buy/wait recommendation from the generative model
type AdviceUseCase interface {
	Advise(ctx context.Context, product string, bestPrice float64) (string, error)
	// AdviseResult advice for the cheapest offer of a search
	AdviseResult(ctx context.Context, result entity.SearchResult) (string, error)
}

type adviceUseCase struct {
	aiRepo repository.AIRepository
}

// NewAdviceUseCase aiRepo may be nil when no API key is configured
func NewAdviceUseCase(aiRepo repository.AIRepository) AdviceUseCase {
	return &adviceUseCase{aiRepo: aiRepo}
}

func (u *adviceUseCase) Advise(ctx context.Context, product string, bestPrice float64) (string, error) {
	if u.aiRepo == nil {
		return "", ErrAdvisorUnavailable
	}
	product = strings.TrimSpace(product)
	if product == "" {
		return "", ErrEmptyQuery
	}

	// a slow model must not hang the caller
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	advice, err := u.aiRepo.GenerateAdvice(ctx, product, price.FormatTL(bestPrice))
	if err != nil {
		return "", fmt.Errorf("failed to get advice: %w", err)
	}
	return advice, nil
}

func (u *adviceUseCase) AdviseResult(ctx context.Context, result entity.SearchResult) (string, error) {
	if u.aiRepo == nil {
		return "", ErrAdvisorUnavailable
	}
	best, ok := result.Best()
	if !ok {
		return "", ErrNoResults
	}
	return u.Advise(ctx, result.Query, best.Price)
}
