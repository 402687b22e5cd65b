package engine

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/store"
)

// Marketplace is the matching core. Every submission is a single
// synchronous attempt: the item is appended to its side's store, the
// opposite store is scanned once for a counterparty, and at most one
// match is executed before the call returns. There is no background
// matching pass and no retry.
//
// Counterparty selection is first-fit by insertion order: the first
// opposite item with the same item id, a strictly dominated price (equal
// prices never match), and enough quantity. It is deliberately not
// price-time priority. In every match the bid side is consumed in full
// and the offer side sets the execution price, whichever of the two was
// the new submission.
type Marketplace struct {
	bids   *store.ItemStore
	offers *store.ItemStore
	trades *store.TradeLog
	locks  *lockTable
	seq    atomic.Uint64
}

// New creates a Marketplace over the given stores and trade log.
func New(bids, offers *store.ItemStore, trades *store.TradeLog) *Marketplace {
	return &Marketplace{
		bids:   bids,
		offers: offers,
		trades: trades,
		locks:  newLockTable(),
	}
}

// SubmitBid adds a buy-side item and attempts one match against the
// resting offers. It returns the executed trade, or nil when the bid
// simply rests.
//
// An offer is eligible when it has the bid's item id, its price is
// strictly below the bid's, and its quantity covers the bid's full
// quantity. The bid is therefore always fully filled when matched.
func (m *Marketplace) SubmitBid(item domain.Item) *domain.Trade {
	lock := m.locks.get(item.ItemID)
	lock.Lock()
	defer lock.Unlock()

	item.Seq = m.seq.Add(1)
	m.bids.Append(item)

	offer, found := m.offers.First(func(o domain.Item) bool {
		return o.ItemID == item.ItemID &&
			item.Price.GreaterThan(o.Price) &&
			o.Quantity >= item.Quantity
	})
	if !found {
		return nil
	}
	return m.execute(item, offer)
}

// SubmitOffer is the sell-side mirror: the first resting bid with the
// offer's item id, a price strictly above the offer's, and a quantity the
// offer fully covers is taken as counterparty. The roles do not flip with
// the submission direction: the matched bid is still the side consumed in
// full, and the offer still sets the execution price and keeps any
// residual quantity resting.
func (m *Marketplace) SubmitOffer(item domain.Item) *domain.Trade {
	lock := m.locks.get(item.ItemID)
	lock.Lock()
	defer lock.Unlock()

	item.Seq = m.seq.Add(1)
	m.offers.Append(item)

	bid, found := m.bids.First(func(b domain.Item) bool {
		return b.ItemID == item.ItemID &&
			b.Price.GreaterThan(item.Price) &&
			item.Quantity >= b.Quantity
	})
	if !found {
		return nil
	}
	return m.execute(bid, item)
}

// execute performs the atomic effect of a match under the item lock held
// by the caller. Whichever side was just submitted, the trade is recorded
// at the offer's price for the bid's full quantity, the offer shrinks by
// that quantity (and leaves its store when exhausted), and the bid leaves
// its store unconditionally. The eligibility rule guarantees the offer
// covers it, so a bid can never be partially filled.
func (m *Marketplace) execute(bid, offer domain.Item) *domain.Trade {
	trade := &domain.Trade{
		TradeID:    uuid.New().String(),
		ItemID:     bid.ItemID,
		Price:      offer.Price,
		Quantity:   bid.Quantity,
		BuyerID:    bid.OwnerID,
		SellerID:   offer.OwnerID,
		ExecutedAt: time.Now(),
	}
	m.trades.Append(trade)

	if offer.Quantity == bid.Quantity {
		m.offers.Remove(offer.Seq)
	} else {
		m.offers.Reduce(offer.Seq, bid.Quantity)
	}
	m.bids.Remove(bid.Seq)

	return trade
}

// BidsFor returns the owner's resting bids in insertion order.
func (m *Marketplace) BidsFor(ownerID int) []domain.Item {
	return m.bids.ByOwner(ownerID)
}

// OffersFor returns the owner's resting offers in insertion order.
func (m *Marketplace) OffersFor(ownerID int) []domain.Item {
	return m.offers.ByOwner(ownerID)
}

// BuyerTrades returns the trades in which the owner bought, chronologically.
func (m *Marketplace) BuyerTrades(ownerID int) []*domain.Trade {
	return m.trades.ByBuyer(ownerID)
}

// SellerTrades returns the trades in which the owner sold, chronologically.
func (m *Marketplace) SellerTrades(ownerID int) []*domain.Trade {
	return m.trades.BySeller(ownerID)
}

// BestBidPrice returns the highest resting bid price for the item id,
// or false when no bid rests for it.
func (m *Marketplace) BestBidPrice(itemID int) (decimal.Decimal, bool) {
	return m.bids.BestPrice(itemID)
}

// BestOfferPrice returns the lowest resting offer price for the item id,
// or false when no offer rests for it.
func (m *Marketplace) BestOfferPrice(itemID int) (decimal.Decimal, bool) {
	return m.offers.BestPrice(itemID)
}
