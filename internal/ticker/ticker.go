// Package ticker mirrors per-item quote state to Redis so other processes
// can read last-trade and best-price data without calling into the
// marketplace. Publication is best-effort: failures are logged at warn and
// never surface to the submitter.
package ticker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Quote is one item's published market state. Nil prices mean that side
// (or the trade history) is empty.
type Quote struct {
	ItemID     int
	LastPrice  *decimal.Decimal
	BestBid    *decimal.Decimal
	BestOffer  *decimal.Decimal
	ObservedAt time.Time
}

// Ticker publishes quotes to Redis hashes keyed quote:<item_id>.
// A nil Ticker is valid and publishes nothing.
type Ticker struct {
	rdb    *redis.Client
	logger *slog.Logger
}

// New creates a Ticker over the given Redis client.
func New(rdb *redis.Client, logger *slog.Logger) *Ticker {
	return &Ticker{rdb: rdb, logger: logger}
}

// Publish writes the quote. Absent prices are stored as empty strings.
func (t *Ticker) Publish(ctx context.Context, q Quote) {
	if t == nil || t.rdb == nil {
		return
	}

	key := fmt.Sprintf("quote:%d", q.ItemID)
	fields := map[string]any{
		"last_price":  priceField(q.LastPrice),
		"best_bid":    priceField(q.BestBid),
		"best_offer":  priceField(q.BestOffer),
		"observed_at": q.ObservedAt.UTC().Format(time.RFC3339Nano),
	}
	if err := t.rdb.HSet(ctx, key, fields).Err(); err != nil {
		t.logger.Warn("quote publish failed",
			slog.Int("item_id", q.ItemID),
			slog.String("error", err.Error()),
		)
	}
}

func priceField(p *decimal.Decimal) string {
	if p == nil {
		return ""
	}
	return p.String()
}
