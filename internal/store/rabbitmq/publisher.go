package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/imitator/internal/common"
)

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if err := declareQueues(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// declareQueues sets up the main queue together with its retry queue and
// dead-letter queue. Publisher and consumer must agree on these arguments.
func declareQueues(ch *amqp.Channel, queue string) error {
	mainQ := queue
	retryQ := retryQueue(queue)
	dlqQ := deadLetterQueue(queue)

	// DLQ
	if _, err := ch.QueueDeclare(
		dlqQ,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false,
		nil,
	); err != nil {
		return err
	}

	// Retry queue: nothing consumes it. Each message carries its own
	// expiration and is dead-lettered back to the main queue when it lapses.
	if _, err := ch.QueueDeclare(
		retryQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": mainQ,
		},
	); err != nil {
		return err
	}

	// Main queue: dead-letter to DLQ on reject/nack(requeue=false)
	_, err := ch.QueueDeclare(
		mainQ,
		true,
		false,
		false,
		false,
		amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": dlqQ,
		},
	)
	return err
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func newPublishing(m IngestMessage) (amqp.Publishing, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return amqp.Publishing{}, err
	}
	msgID, err := common.NewULID()
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		MessageId:     msgID,
		CorrelationId: m.BatchID,
		Body:          body,
		Timestamp:     time.Now(),
	}, nil
}

// Ingest implements the bulk loader's sink by queueing the row.
func (p *Publisher) Ingest(ctx context.Context, userName, message string) error {
	return p.Publish(ctx, IngestMessage{UserName: userName, Message: message})
}

func (p *Publisher) Publish(ctx context.Context, m IngestMessage) error {
	pub, err := newPublishing(m)
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		pub,
	)
}

// WithBatch returns a sink that tags every queued row with batchID.
func (p *Publisher) WithBatch(batchID string) *BatchPublisher {
	return &BatchPublisher{p: p, batchID: batchID}
}

type BatchPublisher struct {
	p       *Publisher
	batchID string
}

func (b *BatchPublisher) Ingest(ctx context.Context, userName, message string) error {
	return b.p.Publish(ctx, IngestMessage{UserName: userName, Message: message, BatchID: b.batchID})
}
