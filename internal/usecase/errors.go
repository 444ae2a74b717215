package usecase

import (
	"errors"

	"github.com/yourusername/ghostdeal/internal/domain/repository"
)

var (
	// ErrEmptyQuery search or watch without a product query
	ErrEmptyQuery = errors.New("query is empty")
	// ErrInvalidWatch watch request failed validation
	ErrInvalidWatch = errors.New("invalid watch request")
	// ErrWatchNotFound no watch with the given id
	ErrWatchNotFound = repository.ErrWatchNotFound
	// ErrAdvisorUnavailable no generative model configured
	ErrAdvisorUnavailable = errors.New("advisor is not configured")
	// ErrNotifierUnavailable alerts need a Telegram bot
	ErrNotifierUnavailable = errors.New("notifier is not configured")
	// ErrAlertsClosed alerts were shut down
	ErrAlertsClosed = errors.New("alerts are shut down")
	// ErrNoResults nothing to act on (empty search, no deals)
	ErrNoResults = errors.New("no results")
)
