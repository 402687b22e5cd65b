package store

import (
	"sync"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/marketcore/internal/domain"
)

// priceKey is an entry in the best-price index. Entries are immutable:
// quantity lives in the insertion-ordered slice, so partial fills never
// touch the tree.
type priceKey struct {
	itemID int
	price  decimal.Decimal
	seq    uint64
	pivot  bool // search pivot, sorts before every real entry of its item id
}

// ItemStore holds the resting items of one side (bids or offers).
//
// Items are kept in insertion order, which drives first-fit counterparty
// scans. A secondary btree index ordered (item id, best price first, seq)
// serves best-price quotes: the first index entry for an item id is that
// side's best. Which price is "best" depends on the side, so the comparator
// is supplied at construction.
//
// All reads hand out snapshot copies; an in-flight snapshot is never
// altered by later mutations.
type ItemStore struct {
	mu      sync.RWMutex
	items   []domain.Item
	byPrice *btree.BTreeG[priceKey]
}

// NewBidStore creates a store whose best price is the highest.
func NewBidStore() *ItemStore {
	return newItemStore(func(a, b decimal.Decimal) bool { return a.GreaterThan(b) })
}

// NewOfferStore creates a store whose best price is the lowest.
func NewOfferStore() *ItemStore {
	return newItemStore(func(a, b decimal.Decimal) bool { return a.LessThan(b) })
}

func newItemStore(better func(a, b decimal.Decimal) bool) *ItemStore {
	const degree = 32
	less := func(a, b priceKey) bool {
		if a.itemID != b.itemID {
			return a.itemID < b.itemID
		}
		if a.pivot != b.pivot {
			return a.pivot
		}
		if !a.price.Equal(b.price) {
			return better(a.price, b.price)
		}
		return a.seq < b.seq
	}
	return &ItemStore{
		byPrice: btree.NewG[priceKey](degree, less),
	}
}

// Append adds an item to the end of the store.
func (s *ItemStore) Append(it domain.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, it)
	s.byPrice.ReplaceOrInsert(priceKey{itemID: it.ItemID, price: it.Price, seq: it.Seq})
}

// Remove deletes the item with the given identity. Removing an absent
// identity is a no-op.
func (s *ItemStore) Remove(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, it := range s.items {
		if it.Seq == seq {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.byPrice.Delete(priceKey{itemID: it.ItemID, price: it.Price, seq: it.Seq})
			return
		}
	}
}

// Reduce replaces the identified item with a copy whose quantity is lowered
// by the given amount. The stored value is swapped wholesale, so a reader
// never observes a half-written quantity. The caller guarantees the result
// stays positive; an exhausted item must be removed instead.
func (s *ItemStore) Reduce(seq uint64, by int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Seq == seq {
			it := s.items[i]
			it.Quantity -= by
			s.items[i] = it
			return
		}
	}
}

// Scan returns a snapshot of the items currently present that satisfy pred,
// in insertion order.
func (s *ItemStore) Scan(pred func(domain.Item) bool) []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Item, 0)
	for _, it := range s.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// First returns the first item in insertion order satisfying pred.
func (s *ItemStore) First(pred func(domain.Item) bool) (domain.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if pred(it) {
			return it, true
		}
	}
	return domain.Item{}, false
}

// ByOwner returns the owner's resting items in insertion order.
func (s *ItemStore) ByOwner(ownerID int) []domain.Item {
	return s.Scan(func(it domain.Item) bool { return it.OwnerID == ownerID })
}

// BestPrice returns this side's extremum resting price for the item id
// (highest for bids, lowest for offers), or false when nothing rests.
// Ties among equal extreme prices are resolved arbitrarily; only the
// price value is reported.
func (s *ItemStore) BestPrice(itemID int) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best decimal.Decimal
	found := false
	s.byPrice.AscendGreaterOrEqual(priceKey{itemID: itemID, pivot: true}, func(k priceKey) bool {
		if k.itemID != itemID {
			return false
		}
		best = k.price
		found = true
		return false
	})
	return best, found
}

// Len returns the number of items currently resting.
func (s *ItemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
