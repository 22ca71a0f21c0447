package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrMalformed — сообщение не разбирается; повтор не поможет, оно уходит в DLQ сразу.
var ErrMalformed = errors.New("malformed message")

// Handler — функция обработки сообщения.
//
// nil — ack. Ошибка, обёрнутая над ErrMalformed, — в DLQ.
// Любая другая ошибка — одна повторная доставка, затем DLQ.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery — доставленное сообщение с методами ack/nack.
type Delivery struct {
	// Message — распарсенное сообщение.
	Message Message

	// Raw — сырое AMQP сообщение.
	Raw amqp.Delivery
}

// Ack подтверждает успешную обработку сообщения.
func (d *Delivery) Ack() error {
	return d.Raw.Ack(false)
}

// Nack отклоняет сообщение.
// requeue=true — вернуть в очередь, false — отправить в DLQ.
func (d *Delivery) Nack(requeue bool) error {
	return d.Raw.Nack(false, requeue)
}

// Consumer потребляет сообщения из очереди RabbitMQ.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    string
	handler  Handler
	prefetch int

	cancelFunc context.CancelFunc
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Queue — имя очереди.
	Queue string

	// Handler — обработчик сообщений.
	Handler Handler

	// Prefetch — количество сообщений для предварительной загрузки.
	Prefetch int
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	prefetch := cfg.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}

	return &Consumer{
		conn:     conn,
		logger:   logger,
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		prefetch: prefetch,
	}
}

// Start запускает потребление сообщений.
func (c *Consumer) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	c.cancelFunc = cancel

	// Запускаем основной цикл потребления
	return c.consume(ctx)
}

// consume — основной цикл потребления.
//
// Потребление перезапускается после переподключения соединения или, если
// соединение живо, а закрылся только канал, после задержки reconnectDelay.
func (c *Consumer) consume(ctx context.Context) error {
	for attempt := 0; ; {
		if err := ctx.Err(); err != nil {
			return err
		}

		deliveries, err := c.setupConsume()
		if err != nil {
			c.logger.Error("failed to setup consume", "queue", c.queue, "error", err)
			if err := c.waitRetry(ctx, attempt); err != nil {
				return err
			}
			attempt++
			continue
		}

		attempt = 0
		c.logger.Info("consumer started", "queue", c.queue)

		if err := c.processDeliveries(ctx, deliveries); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("deliveries channel closed, restarting consumer", "queue", c.queue)
			if err := c.waitRetry(ctx, attempt); err != nil {
				return err
			}
		}
	}
}

// waitRetry ждёт переподключения или истечения задержки попытки attempt.
func (c *Consumer) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(reconnectDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.conn.ReconnectNotify():
		c.logger.Info("reconnected, restarting consumer", "queue", c.queue)
	case <-timer.C:
	}
	return nil
}

// setupConsume открывает потребление на живом канале.
func (c *Consumer) setupConsume() (<-chan amqp.Delivery, error) {
	ch, err := c.conn.liveChannel()
	if err != nil {
		return nil, err
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		c.queue,
		"aerodata-"+c.queue, // consumer tag
		false,               // ручной ack, см. settle
		false,               // exclusive
		false,               // no-local
		false,               // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume: %w", err)
	}

	return deliveries, nil
}

// processDeliveries обрабатывает сообщения из канала.
func (c *Consumer) processDeliveries(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case raw, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("deliveries channel closed")
			}

			c.handleDelivery(ctx, raw)
		}
	}
}

// handleDelivery обрабатывает одно сообщение.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(raw.Body, &msg); err != nil {
		c.logger.Error("failed to unmarshal message",
			"queue", c.queue,
			"error", err,
			"body", string(raw.Body),
		)
		c.settle(raw, fmt.Errorf("%w: %v", ErrMalformed, err))
		return
	}

	c.logger.Debug("received message",
		"queue", c.queue,
		"message_id", msg.ID,
		"type", msg.Type,
		"redelivered", raw.Redelivered,
	)

	err := c.handler(ctx, &Delivery{Message: msg, Raw: raw})
	if err != nil {
		c.logger.Error("handler failed",
			"queue", c.queue,
			"message_id", msg.ID,
			"type", msg.Type,
			"error", err,
		)
	}
	c.settle(raw, err)
}

// settle подтверждает или отклоняет сообщение по результату обработки.
func (c *Consumer) settle(raw amqp.Delivery, err error) {
	var ackErr error
	switch {
	case err == nil:
		ackErr = raw.Ack(false)
	case errors.Is(err, ErrMalformed), raw.Redelivered:
		// dead-letter через x-dead-letter-exchange очереди
		ackErr = raw.Nack(false, false)
	default:
		ackErr = raw.Nack(false, true)
	}
	if ackErr != nil {
		c.logger.Warn("failed to settle message", "queue", c.queue, "error", ackErr)
	}
}

// Stop останавливает consumer.
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
}

// ParsePayload разбирает payload сообщения в указанный тип.
// Ошибка разбора оборачивает ErrMalformed.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		return result, fmt.Errorf("%w: %s payload: %v", ErrMalformed, msg.Type, err)
	}
	return result, nil
}
