// Package events публикует события заказов в Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mmeshcher/vinayak-store/internal/model"
)

// EventType задаёт тип события заказа.
type EventType string

const (
	EventOrderPlaced        EventType = "order_placed"
	EventOrderStatusChanged EventType = "order_status_changed"
)

// OrderEvent публикуется при оформлении заказа и смене его статуса.
type OrderEvent struct {
	Type    EventType         `json:"type"`
	OrderID string            `json:"orderId"`
	UserID  string            `json:"userId"`
	Total   int64             `json:"total"`
	Status  model.OrderStatus `json:"status"`
	At      time.Time         `json:"at"`
}

// Publisher отправляет события заказов.
type Publisher interface {
	Publish(ctx context.Context, e OrderEvent) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher пишет события в топик, ключом сообщения служит идентификатор заказа.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher создаёт издателя для списка брокеров host:port.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}}
}

func newKafkaPublisherWith(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish синхронно записывает событие.
func (p *KafkaPublisher) Publish(ctx context.Context, e OrderEvent) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.OrderID), Value: b}); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Close закрывает соединения с брокерами.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop используется, когда брокеры не настроены.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }

func (Nop) Close() error { return nil }
