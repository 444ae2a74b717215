package repository

import (
	"context"
	"errors"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

// SessionRepository keeps the last search per dashboard/chat session
type SessionRepository interface {
	// SaveResult replaces the session's last result
	SaveResult(ctx context.Context, sessionID string, result entity.SearchResult) error

	// LastResult last stored result; ok is false when the session has none
	LastResult(ctx context.Context, sessionID string) (result entity.SearchResult, ok bool, err error)

	// SaveDeals replaces the session's last deals list
	SaveDeals(ctx context.Context, sessionID string, deals []entity.Deal) error

	// LastDeals last stored deals list
	LastDeals(ctx context.Context, sessionID string) ([]entity.Deal, bool, error)

	// Clear drops the session
	Clear(ctx context.Context, sessionID string) error
}

// ErrWatchNotFound no watch with the given id
var ErrWatchNotFound = errors.New("watch not found")

// WatchRepository price alarm registry
type WatchRepository interface {
	Save(ctx context.Context, watch entity.Watch) error

	Get(ctx context.Context, id string) (*entity.Watch, error)

	// List all watches, newest first
	List(ctx context.Context) ([]entity.Watch, error)

	// Update applies fn to the stored watch under the repository lock
	Update(ctx context.Context, id string, fn func(*entity.Watch)) (*entity.Watch, error)

	Delete(ctx context.Context, id string) error
}
