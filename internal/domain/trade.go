package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the record of one executed match between a bid and an offer.
// Price is always the offer's price and Quantity the bid's full submitted
// quantity, whichever side arrived last. Trades are immutable and live
// forever in the insertion-ordered trade log.
type Trade struct {
	TradeID    string
	ItemID     int
	Price      decimal.Decimal
	Quantity   int64
	BuyerID    int
	SellerID   int
	ExecutedAt time.Time
}
