package store

import (
	"sync"

	"github.com/efreitasn/marketcore/internal/domain"
)

// TradeLog is the thread-safe, append-only record of executed trades,
// in chronological order. Trades are never removed or edited.
type TradeLog struct {
	mu     sync.RWMutex
	trades []*domain.Trade
}

// NewTradeLog creates an empty TradeLog.
func NewTradeLog() *TradeLog {
	return &TradeLog{}
}

// Append adds a trade to the end of the log.
func (l *TradeLog) Append(t *domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.trades = append(l.trades, t)
}

// All returns every trade in chronological order.
func (l *TradeLog) All() []*domain.Trade {
	return l.filter(func(*domain.Trade) bool { return true })
}

// ByBuyer returns the trades in which the owner bought, chronologically.
func (l *TradeLog) ByBuyer(ownerID int) []*domain.Trade {
	return l.filter(func(t *domain.Trade) bool { return t.BuyerID == ownerID })
}

// BySeller returns the trades in which the owner sold, chronologically.
func (l *TradeLog) BySeller(ownerID int) []*domain.Trade {
	return l.filter(func(t *domain.Trade) bool { return t.SellerID == ownerID })
}

// filter returns a snapshot copy so callers never share the internal slice.
func (l *TradeLog) filter(pred func(*domain.Trade) bool) []*domain.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*domain.Trade, 0)
	for _, t := range l.trades {
		if pred(t) {
			out = append(out, t)
		}
	}
	return out
}
