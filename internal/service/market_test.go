package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/store"
)

// capturePublisher records published trades on a channel.
type capturePublisher struct {
	trades chan *domain.Trade
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{trades: make(chan *domain.Trade, 16)}
}

func (p *capturePublisher) PublishTrade(_ context.Context, t *domain.Trade) error {
	p.trades <- t
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func newTestService(t *testing.T, pub *capturePublisher) *MarketService {
	t.Helper()
	market := engine.New(store.NewBidStore(), store.NewOfferStore(), store.NewTradeLog())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewMarketService(market, pub, nil, 5*time.Second, logger)
	if err != nil {
		t.Fatalf("create service: %v", err)
	}
	return svc
}

func req(itemID int, price string, qty int64, owner int) SubmitRequest {
	return SubmitRequest{
		ItemID:   itemID,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		OwnerID:  owner,
	}
}

func TestSubmit_Validation(t *testing.T) {
	svc := newTestService(t, newCapturePublisher())

	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{"zero item id", req(0, "25", 10, 1)},
		{"negative owner", req(12345, "25", 10, -1)},
		{"zero quantity", req(12345, "25", 0, 1)},
		{"negative quantity", req(12345, "25", -5, 1)},
		{"zero price", req(12345, "0", 10, 1)},
		{"negative price", req(12345, "-1", 10, 1)},
		{"sub-cent price", req(12345, "24.505", 10, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitBid(tt.req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("SubmitBid: got %v, want ValidationError", err)
			}
			_, err = svc.SubmitOffer(tt.req)
			if !errors.As(err, &ve) {
				t.Errorf("SubmitOffer: got %v, want ValidationError", err)
			}
		})
	}
}

func TestSubmit_MatchPublishesTrade(t *testing.T) {
	pub := newCapturePublisher()
	svc := newTestService(t, pub)

	if _, err := svc.SubmitOffer(req(12345, "24", 20, 3)); err != nil {
		t.Fatalf("submit offer: %v", err)
	}
	trade, err := svc.SubmitBid(req(12345, "25", 10, 1))
	if err != nil {
		t.Fatalf("submit bid: %v", err)
	}
	if trade == nil {
		t.Fatal("expected a trade")
	}

	select {
	case published := <-pub.trades:
		if published.TradeID != trade.TradeID {
			t.Errorf("published trade %s, want %s", published.TradeID, trade.TradeID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("trade was never published to the feed")
	}
}

func TestSubmit_NoMatchPublishesNothing(t *testing.T) {
	pub := newCapturePublisher()
	svc := newTestService(t, pub)

	trade, err := svc.SubmitBid(req(12345, "25", 10, 1))
	if err != nil {
		t.Fatalf("submit bid: %v", err)
	}
	if trade != nil {
		t.Fatalf("expected no trade, got %+v", trade)
	}

	select {
	case published := <-pub.trades:
		t.Fatalf("unexpected feed publication: %+v", published)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestQuoteQueries(t *testing.T) {
	svc := newTestService(t, newCapturePublisher())

	if _, ok := svc.BestBidPrice(9999); ok {
		t.Error("expected no bid price for unknown item")
	}
	if _, ok := svc.BestOfferPrice(9999); ok {
		t.Error("expected no offer price for unknown item")
	}

	svc.SubmitOffer(req(12345, "25", 5, 2))
	svc.SubmitOffer(req(12345, "24", 10, 3))

	p, ok := svc.BestOfferPrice(12345)
	if !ok || !p.Equal(decimal.RequireFromString("24")) {
		t.Errorf("best offer = %v %v, want 24 true", p, ok)
	}
}

func TestOwnershipQueries_PassThrough(t *testing.T) {
	svc := newTestService(t, newCapturePublisher())

	svc.SubmitBid(req(12345, "25", 10, 1))
	svc.SubmitBid(req(12345, "25", 5, 1))

	if got := len(svc.BidsFor(1)); got != 2 {
		t.Errorf("owner 1 has %d bids, want 2", got)
	}
	if got := len(svc.OffersFor(1)); got != 0 {
		t.Errorf("owner 1 has %d offers, want 0", got)
	}
	if got := len(svc.BuyerTrades(1)); got != 0 {
		t.Errorf("owner 1 has %d purchases, want 0", got)
	}
}
