package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/efreitasn/marketcore/internal/domain"
	"github.com/efreitasn/marketcore/internal/service"
)

// MarketHandler handles HTTP requests for the marketplace endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// submitItemRequest is the JSON request body for POST /bids and POST /offers.
// Price accepts a JSON number or string and is parsed exactly.
type submitItemRequest struct {
	ItemID   int             `json:"item_id"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	OwnerID  int             `json:"owner_id"`
}

// submitResponse is the JSON response for a submission. Trade is null when
// the item rests unmatched.
type submitResponse struct {
	Matched bool       `json:"matched"`
	Trade   *tradeJSON `json:"trade"`
}

// itemJSON is a resting item in owner listings.
type itemJSON struct {
	ItemID   int             `json:"item_id"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
	OwnerID  int             `json:"owner_id"`
}

// tradeJSON is an executed trade in responses.
type tradeJSON struct {
	TradeID    string          `json:"trade_id"`
	ItemID     int             `json:"item_id"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	BuyerID    int             `json:"buyer_id"`
	SellerID   int             `json:"seller_id"`
	ExecutedAt string          `json:"executed_at"`
}

// quoteJSON is the JSON response for GET /items/{item_id}/quote.
// Absent sides are null.
type quoteJSON struct {
	ItemID     int              `json:"item_id"`
	BidPrice   *decimal.Decimal `json:"bid_price"`
	OfferPrice *decimal.Decimal `json:"offer_price"`
}

// SubmitBid handles POST /bids.
func (h *MarketHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.marketSvc.SubmitBid)
}

// SubmitOffer handles POST /offers.
func (h *MarketHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, h.marketSvc.SubmitOffer)
}

func (h *MarketHandler) submit(
	w http.ResponseWriter,
	r *http.Request,
	do func(service.SubmitRequest) (*domain.Trade, error),
) {
	var req submitItemRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	trade, err := do(service.SubmitRequest{
		ItemID:   req.ItemID,
		Price:    req.Price,
		Quantity: req.Quantity,
		OwnerID:  req.OwnerID,
	})
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			WriteError(w, http.StatusBadRequest, "validation_error", ve.Message)
			return
		}
		WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	WriteJSON(w, http.StatusCreated, submitResponse{
		Matched: trade != nil,
		Trade:   toTradeJSON(trade),
	})
}

// ListBids handles GET /owners/{owner_id}/bids.
func (h *MarketHandler) ListBids(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathInt(w, r, "owner_id")
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toItemsJSON(h.marketSvc.BidsFor(ownerID)))
}

// ListOffers handles GET /owners/{owner_id}/offers.
func (h *MarketHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathInt(w, r, "owner_id")
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toItemsJSON(h.marketSvc.OffersFor(ownerID)))
}

// ListPurchases handles GET /owners/{owner_id}/purchases.
func (h *MarketHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathInt(w, r, "owner_id")
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toTradesJSON(h.marketSvc.BuyerTrades(ownerID)))
}

// ListSales handles GET /owners/{owner_id}/sales.
func (h *MarketHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathInt(w, r, "owner_id")
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, toTradesJSON(h.marketSvc.SellerTrades(ownerID)))
}

// GetQuote handles GET /items/{item_id}/quote.
func (h *MarketHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathInt(w, r, "item_id")
	if !ok {
		return
	}

	resp := quoteJSON{ItemID: itemID}
	if bid, ok := h.marketSvc.BestBidPrice(itemID); ok {
		resp.BidPrice = &bid
	}
	if offer, ok := h.marketSvc.BestOfferPrice(itemID); ok {
		resp.OfferPrice = &offer
	}
	WriteJSON(w, http.StatusOK, resp)
}

// pathInt parses an integer path parameter, writing a 400 on failure.
func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", name+" must be an integer")
		return 0, false
	}
	return v, true
}

func toItemsJSON(items []domain.Item) []itemJSON {
	out := make([]itemJSON, 0, len(items))
	for _, it := range items {
		out = append(out, itemJSON{
			ItemID:   it.ItemID,
			Price:    it.Price,
			Quantity: it.Quantity,
			OwnerID:  it.OwnerID,
		})
	}
	return out
}

func toTradeJSON(t *domain.Trade) *tradeJSON {
	if t == nil {
		return nil
	}
	return &tradeJSON{
		TradeID:    t.TradeID,
		ItemID:     t.ItemID,
		Price:      t.Price,
		Quantity:   t.Quantity,
		BuyerID:    t.BuyerID,
		SellerID:   t.SellerID,
		ExecutedAt: t.ExecutedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toTradesJSON(trades []*domain.Trade) []tradeJSON {
	out := make([]tradeJSON, 0, len(trades))
	for _, t := range trades {
		out = append(out, *toTradeJSON(t))
	}
	return out
}
