package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/engine"
	"github.com/efreitasn/marketcore/internal/feed"
	"github.com/efreitasn/marketcore/internal/ticker"
)

// SubmitRequest is the input for a bid or offer submission.
type SubmitRequest struct {
	ItemID   int
	Price    decimal.Decimal
	Quantity int64
	OwnerID  int
}

// quoteEntry is a cached best-price lookup result. ok is false when the
// side had no resting item at lookup time.
type quoteEntry struct {
	price decimal.Decimal
	ok    bool
}

// MarketService wraps the matching core for callers: it validates
// submissions (the core itself assumes valid input), dispatches executed
// trades to the feed and quote ticker outside the matching path, and
// serves quote queries through a short-TTL cache.
type MarketService struct {
	market *engine.Marketplace
	feed   feed.Publisher
	ticker *ticker.Ticker
	quotes *ristretto.Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewMarketService creates a MarketService with the given dependencies.
func NewMarketService(
	market *engine.Marketplace,
	pub feed.Publisher,
	tick *ticker.Ticker,
	quoteTTL time.Duration,
	logger *slog.Logger,
) (*MarketService, error) {
	quotes, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create quote cache: %w", err)
	}
	return &MarketService{
		market: market,
		feed:   pub,
		ticker: tick,
		quotes: quotes,
		ttl:    quoteTTL,
		logger: logger,
	}, nil
}

// SubmitBid validates and submits a buy-side item. It returns the executed
// trade, or nil when the bid rests.
func (s *MarketService) SubmitBid(req SubmitRequest) (*domain.Trade, error) {
	return s.submit(domain.SideBid, req)
}

// SubmitOffer validates and submits a sell-side item. It returns the
// executed trade, or nil when the offer rests.
func (s *MarketService) SubmitOffer(req SubmitRequest) (*domain.Trade, error) {
	return s.submit(domain.SideOffer, req)
}

func (s *MarketService) submit(side domain.Side, req SubmitRequest) (*domain.Trade, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	it := domain.Item{
		ItemID:   req.ItemID,
		Price:    req.Price,
		Quantity: req.Quantity,
		OwnerID:  req.OwnerID,
	}

	var trade *domain.Trade
	if side == domain.SideBid {
		trade = s.market.SubmitBid(it)
	} else {
		trade = s.market.SubmitOffer(it)
	}

	s.logger.Debug("item submitted",
		slog.String("side", string(side)),
		slog.Int("item_id", req.ItemID),
		slog.Int("owner_id", req.OwnerID),
		slog.Bool("matched", trade != nil),
	)

	s.afterSubmit(req.ItemID, trade)
	return trade, nil
}

// validate rejects inputs the matching core would otherwise propagate
// silently: non-positive ids, quantities, and prices, and prices with
// more than two decimal places.
func validate(req SubmitRequest) error {
	if req.ItemID <= 0 {
		return &domain.ValidationError{Message: "item_id must be a positive integer"}
	}
	if req.OwnerID <= 0 {
		return &domain.ValidationError{Message: "owner_id must be a positive integer"}
	}
	if req.Quantity <= 0 {
		return &domain.ValidationError{Message: "quantity must be a positive integer"}
	}
	if !domain.ValidPrice(req.Price) {
		return &domain.ValidationError{Message: "price must be positive with at most 2 decimal places"}
	}
	return nil
}

// afterSubmit invalidates the item's cached quotes and publishes the
// trade and updated quote outside the matching path.
func (s *MarketService) afterSubmit(itemID int, trade *domain.Trade) {
	s.quotes.Del(bidKey(itemID))
	s.quotes.Del(offerKey(itemID))

	if trade != nil && s.feed != nil {
		t := trade
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.feed.PublishTrade(ctx, t); err != nil {
				s.logger.Warn("trade publish failed",
					slog.String("trade_id", t.TradeID),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	if s.ticker != nil {
		q := ticker.Quote{ItemID: itemID, ObservedAt: time.Now()}
		if trade != nil {
			p := trade.Price
			q.LastPrice = &p
		}
		if bid, ok := s.market.BestBidPrice(itemID); ok {
			q.BestBid = &bid
		}
		if offer, ok := s.market.BestOfferPrice(itemID); ok {
			q.BestOffer = &offer
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.ticker.Publish(ctx, q)
		}()
	}
}

// BestBidPrice returns the highest resting bid price for the item id,
// serving repeated lookups from the quote cache within its TTL.
func (s *MarketService) BestBidPrice(itemID int) (decimal.Decimal, bool) {
	if v, ok := s.quotes.Get(bidKey(itemID)); ok {
		e := v.(quoteEntry)
		return e.price, e.ok
	}
	price, ok := s.market.BestBidPrice(itemID)
	s.quotes.SetWithTTL(bidKey(itemID), quoteEntry{price: price, ok: ok}, 1, s.ttl)
	return price, ok
}

// BestOfferPrice returns the lowest resting offer price for the item id,
// serving repeated lookups from the quote cache within its TTL.
func (s *MarketService) BestOfferPrice(itemID int) (decimal.Decimal, bool) {
	if v, ok := s.quotes.Get(offerKey(itemID)); ok {
		e := v.(quoteEntry)
		return e.price, e.ok
	}
	price, ok := s.market.BestOfferPrice(itemID)
	s.quotes.SetWithTTL(offerKey(itemID), quoteEntry{price: price, ok: ok}, 1, s.ttl)
	return price, ok
}

// BidsFor returns the owner's resting bids in insertion order.
func (s *MarketService) BidsFor(ownerID int) []domain.Item {
	return s.market.BidsFor(ownerID)
}

// OffersFor returns the owner's resting offers in insertion order.
func (s *MarketService) OffersFor(ownerID int) []domain.Item {
	return s.market.OffersFor(ownerID)
}

// BuyerTrades returns the trades in which the owner bought.
func (s *MarketService) BuyerTrades(ownerID int) []*domain.Trade {
	return s.market.BuyerTrades(ownerID)
}

// SellerTrades returns the trades in which the owner sold.
func (s *MarketService) SellerTrades(ownerID int) []*domain.Trade {
	return s.market.SellerTrades(ownerID)
}

func bidKey(itemID int) string   { return fmt.Sprintf("bid:%d", itemID) }
func offerKey(itemID int) string { return fmt.Sprintf("offer:%d", itemID) }
