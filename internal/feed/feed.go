// Package feed publishes executed trades to external consumers. The
// matching core never depends on it: publication is dispatched by the
// service layer after a match, outside any lock, and a failure never
// affects the submission that produced the trade.
package feed

import (
	"context"

	"github.com/efreitasn/marketcore/internal/domain"
)

// Publisher delivers executed trades to an external sink.
type Publisher interface {
	PublishTrade(ctx context.Context, t *domain.Trade) error
	Close() error
}

// Noop is a Publisher that discards everything. Used when no brokers are
// configured and in tests.
type Noop struct{}

func (Noop) PublishTrade(context.Context, *domain.Trade) error { return nil }

func (Noop) Close() error { return nil }
