package repository

import "context"

// AIRepository generative model used for buying advice
type AIRepository interface {
	// GenerateAdvice short buy/wait recommendation for a product at the given price
	GenerateAdvice(ctx context.Context, product, price string) (string, error)
}
