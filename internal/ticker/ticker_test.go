package ticker

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestPublish_NilTickerIsSafe(t *testing.T) {
	var tick *Ticker
	p := decimal.RequireFromString("24.5")
	tick.Publish(context.Background(), Quote{
		ItemID:     12345,
		LastPrice:  &p,
		ObservedAt: time.Now(),
	})
}

func TestPriceField(t *testing.T) {
	if got := priceField(nil); got != "" {
		t.Errorf("priceField(nil) = %q, want empty", got)
	}
	p := decimal.RequireFromString("24.50")
	if got := priceField(&p); got != "24.5" {
		t.Errorf("priceField(24.50) = %q, want 24.5", got)
	}
}
