package storage

import (
	"context"

	"salescope/internal/model"
)

// SaleSink is a destination for finalized sale summaries.
type SaleSink interface {
	PutSales(ctx context.Context, sales []*model.Summary) error
}
