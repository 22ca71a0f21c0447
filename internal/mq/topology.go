package mq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeSnapshots Exchange = "aerodata.snapshots"
	ExchangeDLQ       Exchange = "aerodata.dlq"
)

// Queues — имена очередей.
const (
	QueueSnapshotsRequested Queue = "snapshots.requested"
	QueueSnapshotsCompleted Queue = "snapshots.completed"
	QueueDLQSnapshots       Queue = "dlq.snapshots"
)

// Routing keys.
const (
	RoutingKeyRequested    RoutingKey = "requested"
	RoutingKeyCompleted    RoutingKey = "completed"
	RoutingKeyDLQSnapshots RoutingKey = "snapshots"
)

// ExchangeDecl — объявление обменника.
type ExchangeDecl struct {
	Name Exchange
	Kind string
}

// QueueDecl — объявление очереди.
type QueueDecl struct {
	Name Queue
	Args amqp.Table
}

// Binding — привязка очереди к обменнику.
type Binding struct {
	Queue      Queue
	RoutingKey RoutingKey
	Exchange   Exchange
}

// Topology — полный набор объявлений RabbitMQ для Aerodata.
type Topology struct {
	Exchanges []ExchangeDecl
	Queues    []QueueDecl
	Bindings  []Binding
}

// DefaultTopology описывает обменники, очереди и привязки снапшотов.
//
// snapshots.requested отправляет отклонённые сообщения в dlq.snapshots;
// snapshots.completed — журнал событий без DLQ.
func DefaultTopology() Topology {
	dlqArgs := amqp.Table{
		"x-dead-letter-exchange":    string(ExchangeDLQ),
		"x-dead-letter-routing-key": string(RoutingKeyDLQSnapshots),
	}

	return Topology{
		Exchanges: []ExchangeDecl{
			{ExchangeSnapshots, amqp.ExchangeDirect},
			{ExchangeDLQ, amqp.ExchangeDirect},
		},
		Queues: []QueueDecl{
			{QueueSnapshotsRequested, dlqArgs},
			{QueueSnapshotsCompleted, nil},
			{QueueDLQSnapshots, nil},
		},
		Bindings: []Binding{
			{QueueSnapshotsRequested, RoutingKeyRequested, ExchangeSnapshots},
			{QueueSnapshotsCompleted, RoutingKeyCompleted, ExchangeSnapshots},
			{QueueDLQSnapshots, RoutingKeyDLQSnapshots, ExchangeDLQ},
		},
	}
}

// SetupTopology объявляет DefaultTopology. Операции идемпотентны,
// поэтому её вызывают и API, и snapshot-сервис при старте.
func SetupTopology(ctx context.Context, conn *Connection) error {
	topo := DefaultTopology()

	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		for _, ex := range topo.Exchanges {
			err := ch.ExchangeDeclare(
				string(ex.Name), // name
				ex.Kind,         // type
				true,            // durable
				false,           // auto-deleted
				false,           // internal
				false,           // no-wait
				nil,             // arguments
			)
			if err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.Name, err)
			}
		}

		for _, q := range topo.Queues {
			_, err := ch.QueueDeclare(
				string(q.Name), // name
				true,           // durable
				false,          // delete when unused
				false,          // exclusive
				false,          // no-wait
				q.Args,         // arguments
			)
			if err != nil {
				return fmt.Errorf("declare queue %s: %w", q.Name, err)
			}
		}

		for _, b := range topo.Bindings {
			if err := ch.QueueBind(string(b.Queue), string(b.RoutingKey), string(b.Exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.Queue, b.Exchange, err)
			}
		}
		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	topo := DefaultTopology()

	var sb strings.Builder
	sb.WriteString("Aerodata RabbitMQ topology:\n")
	for _, ex := range topo.Exchanges {
		fmt.Fprintf(&sb, "  %s (%s)\n", ex.Name, ex.Kind)
		for _, b := range topo.Bindings {
			if b.Exchange != ex.Name {
				continue
			}
			fmt.Fprintf(&sb, "    └── %s [routing: %s]", b.Queue, b.RoutingKey)
			for _, q := range topo.Queues {
				if q.Name == b.Queue && q.Args != nil {
					fmt.Fprintf(&sb, " DLQ: %s", q.Args["x-dead-letter-exchange"])
				}
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
