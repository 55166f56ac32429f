package storage

import (
	"context"

	"salescope/internal/model"
)

// Multi fans writes out to every underlying sink in order.
type Multi struct {
	sinks []SaleSink
}

func NewMulti(sinks ...SaleSink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) PutSales(ctx context.Context, sales []*model.Summary) error {
	for _, sink := range m.sinks {
		if err := sink.PutSales(ctx, sales); err != nil {
			return err
		}
	}
	return nil
}
