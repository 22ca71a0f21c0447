package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeSnapshotRequested MessageType = "snapshot.requested"
	MessageTypeSnapshotCompleted MessageType = "snapshot.completed"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — конверт сообщения.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// SnapshotRequestedPayload — запрос на снапшот таблицы.
type SnapshotRequestedPayload struct {
	SnapshotID  string `json:"snapshot_id"`
	Table       string `json:"table"`
	RequestedBy string `json:"requested_by"` // api, cli, cron
}

// Статусы завершённого снапшота.
const (
	SnapshotSucceeded = "SUCCEEDED"
	SnapshotFailed    = "FAILED"
)

// SnapshotCompletedPayload — итог снапшота.
type SnapshotCompletedPayload struct {
	SnapshotID string `json:"snapshot_id"`
	Table      string `json:"table"`
	Status     string `json:"status"`
	Path       string `json:"path,omitempty"`
	Rows       int64  `json:"rows"`
	Bytes      int64  `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// NewMessage упаковывает payload в конверт с новым ID.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.NewString(),
		Type:      msgType,
		Payload:   body,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishSnapshotRequested ставит снапшот таблицы в очередь и возвращает его ID.
// Потребитель: aerodata-snapshot.
func (p *Publisher) PublishSnapshotRequested(ctx context.Context, table, requestedBy string) (string, error) {
	payload := SnapshotRequestedPayload{
		SnapshotID:  uuid.NewString(),
		Table:       table,
		RequestedBy: requestedBy,
	}
	msg, err := NewMessage(MessageTypeSnapshotRequested, payload)
	if err != nil {
		return "", err
	}

	if err := p.Publish(ctx, ExchangeSnapshots, RoutingKeyRequested, msg); err != nil {
		return "", err
	}
	return payload.SnapshotID, nil
}

// PublishSnapshotCompleted публикует итог снапшота в журнал snapshots.completed.
func (p *Publisher) PublishSnapshotCompleted(ctx context.Context, payload SnapshotCompletedPayload) error {
	msg, err := NewMessage(MessageTypeSnapshotCompleted, payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeSnapshots, RoutingKeyCompleted, msg)
}
