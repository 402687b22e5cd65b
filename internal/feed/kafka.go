package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/efreitasn/marketcore/internal/domain"
)

// tradeMessage is the JSON wire form of a published trade.
type tradeMessage struct {
	TradeID    string `json:"trade_id"`
	ItemID     int    `json:"item_id"`
	Price      string `json:"price"`
	Quantity   int64  `json:"quantity"`
	BuyerID    int    `json:"buyer_id"`
	SellerID   int    `json:"seller_id"`
	ExecutedAt string `json:"executed_at"`
}

// Kafka publishes trades to a Kafka topic, keyed by item id so all trades
// for one item land on the same partition in execution order.
type Kafka struct {
	writer *kafka.Writer
}

// NewKafka creates a Kafka publisher for the given brokers and topic.
func NewKafka(brokers []string, topic string) *Kafka {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Dialer:       dialer,
		BatchTimeout: 200 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
	})
	return &Kafka{writer: w}
}

// PublishTrade writes the trade as a JSON message.
func (k *Kafka) PublishTrade(ctx context.Context, t *domain.Trade) error {
	payload, err := json.Marshal(tradeMessage{
		TradeID:    t.TradeID,
		ItemID:     t.ItemID,
		Price:      t.Price.String(),
		Quantity:   t.Quantity,
		BuyerID:    t.BuyerID,
		SellerID:   t.SellerID,
		ExecutedAt: t.ExecutedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal trade %s: %w", t.TradeID, err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(t.ItemID)),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish trade %s: %w", t.TradeID, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
