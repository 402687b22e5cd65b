package store

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/efreitasn/marketcore/internal/domain"
)

// newItem builds a test item. seq doubles as the identity a real
// submission would assign.
func newItem(seq uint64, itemID int, price string, qty int64, owner int) domain.Item {
	return domain.Item{
		ItemID:   itemID,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		OwnerID:  owner,
		Seq:      seq,
	}
}

func TestItemStore_ScanInsertionOrder(t *testing.T) {
	s := NewOfferStore()
	s.Append(newItem(1, 12345, "25", 5, 2))
	s.Append(newItem(2, 12345, "24", 10, 3))
	s.Append(newItem(3, 777, "30", 1, 4))

	got := s.Scan(func(it domain.Item) bool { return it.ItemID == 12345 })
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Seq != 1 || got[1].Seq != 2 {
		t.Errorf("scan order = [%d %d], want [1 2]", got[0].Seq, got[1].Seq)
	}
}

func TestItemStore_ScanIsSnapshot(t *testing.T) {
	s := NewOfferStore()
	s.Append(newItem(1, 12345, "25", 5, 2))
	s.Append(newItem(2, 12345, "24", 10, 3))

	snap := s.Scan(func(domain.Item) bool { return true })

	// Mutations after the scan must not alter already-yielded elements.
	s.Remove(1)
	s.Reduce(2, 4)

	if len(snap) != 2 {
		t.Fatalf("expected snapshot of 2 items, got %d", len(snap))
	}
	if snap[0].Quantity != 5 || snap[1].Quantity != 10 {
		t.Errorf("snapshot quantities = [%d %d], want [5 10]", snap[0].Quantity, snap[1].Quantity)
	}
}

func TestItemStore_RemoveIdempotent(t *testing.T) {
	s := NewBidStore()
	s.Append(newItem(1, 12345, "25", 10, 1))

	s.Remove(1)
	s.Remove(1) // second removal is a no-op
	s.Remove(99)

	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d items", s.Len())
	}
	if _, ok := s.BestPrice(12345); ok {
		t.Error("expected no best price after removal")
	}
}

func TestItemStore_RemoveTargetsIdentity(t *testing.T) {
	s := NewBidStore()
	// Two attribute-identical items differing only by identity.
	s.Append(newItem(1, 12345, "25", 10, 1))
	s.Append(newItem(2, 12345, "25", 10, 1))

	s.Remove(2)

	left := s.Scan(func(domain.Item) bool { return true })
	if len(left) != 1 || left[0].Seq != 1 {
		t.Fatalf("expected only seq 1 to remain, got %+v", left)
	}
}

func TestItemStore_Reduce(t *testing.T) {
	s := NewOfferStore()
	s.Append(newItem(1, 12345, "24", 20, 3))

	s.Reduce(1, 10)

	got, ok := s.First(func(domain.Item) bool { return true })
	if !ok {
		t.Fatal("expected item to remain")
	}
	if got.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", got.Quantity)
	}
	// Price index still answers after a reduction.
	if p, ok := s.BestPrice(12345); !ok || !p.Equal(decimal.RequireFromString("24")) {
		t.Errorf("best price = %v %v, want 24 true", p, ok)
	}
}

func TestBidStore_BestPriceIsMax(t *testing.T) {
	s := NewBidStore()
	s.Append(newItem(1, 12345, "25", 10, 1))
	s.Append(newItem(2, 12345, "10", 5, 1))
	s.Append(newItem(3, 999, "100", 1, 1))

	p, ok := s.BestPrice(12345)
	if !ok {
		t.Fatal("expected a best price")
	}
	if !p.Equal(decimal.RequireFromString("25")) {
		t.Errorf("best bid = %s, want 25", p)
	}
}

func TestOfferStore_BestPriceIsMin(t *testing.T) {
	s := NewOfferStore()
	s.Append(newItem(1, 12345, "25", 5, 2))
	s.Append(newItem(2, 12345, "24", 10, 3))
	s.Append(newItem(3, 999, "1", 1, 1))

	p, ok := s.BestPrice(12345)
	if !ok {
		t.Fatal("expected a best price")
	}
	if !p.Equal(decimal.RequireFromString("24")) {
		t.Errorf("best offer = %s, want 24", p)
	}
}

func TestItemStore_BestPriceUnknownItem(t *testing.T) {
	s := NewBidStore()
	s.Append(newItem(1, 12345, "25", 10, 1))

	if _, ok := s.BestPrice(9999); ok {
		t.Error("expected no price for unknown item id")
	}
}

func TestItemStore_BestPriceEqualPrices(t *testing.T) {
	s := NewOfferStore()
	s.Append(newItem(1, 12345, "24", 5, 2))
	s.Append(newItem(2, 12345, "24", 10, 3))

	// Ties resolve arbitrarily but the value is well-defined.
	p, ok := s.BestPrice(12345)
	if !ok || !p.Equal(decimal.RequireFromString("24")) {
		t.Errorf("best offer = %v %v, want 24 true", p, ok)
	}
}

func TestItemStore_ByOwner(t *testing.T) {
	s := NewBidStore()
	s.Append(newItem(1, 12345, "25", 10, 1))
	s.Append(newItem(2, 12345, "25", 5, 1))
	s.Append(newItem(3, 12345, "30", 5, 2))

	if got := len(s.ByOwner(1)); got != 2 {
		t.Errorf("owner 1 has %d bids, want 2", got)
	}
	if got := len(s.ByOwner(99)); got != 0 {
		t.Errorf("owner 99 has %d bids, want 0", got)
	}
}
