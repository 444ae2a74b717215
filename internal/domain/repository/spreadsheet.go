package repository

import (
	"context"
	"io"

	"github.com/yourusername/ghostdeal/internal/domain/entity"
)

// Spreadsheet xlsx import/export
type Spreadsheet interface {
	// WriteOffers writes the offers table as xlsx
	WriteOffers(ctx context.Context, w io.Writer, result entity.SearchResult) error

	// WriteDeals writes the deals grid as xlsx
	WriteDeals(ctx context.Context, w io.Writer, deals []entity.Deal) error

	// ParseWatchlist reads product/target price rows from an xlsx file
	ParseWatchlist(ctx context.Context, data []byte, filename string) ([]entity.WatchRequest, error)
}
