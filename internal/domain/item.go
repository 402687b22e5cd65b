package domain

import "github.com/shopspring/decimal"

// Side indicates whether an item is a bid (buy) or an offer (sell).
type Side string

const (
	SideBid   Side = "bid"
	SideOffer Side = "offer"
)

// Item is a bid or offer for a fungible good, resting in its side's store
// until it is matched.
//
// Seq is the store-unique identity assigned by the marketplace at submission
// time. Two items that are attribute-identical (same item id, price, quantity
// and owner) never share a Seq, so removal always targets the intended
// instance. Seq is monotonically increasing, never derived from the item's
// attributes.
type Item struct {
	ItemID   int
	Price    decimal.Decimal
	Quantity int64
	OwnerID  int
	Seq      uint64
}
