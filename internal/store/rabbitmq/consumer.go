package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// jobTimeout bounds a single delivery, including one still running while the
// worker drains on shutdown.
const jobTimeout = 30 * time.Second

// Handler processes one decoded delivery. Errors marked with Retryable are
// retried through the retry queue; any other error dead-letters the delivery.
type Handler func(ctx context.Context, m IngestMessage) error

type Consumer struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	queue       string
	concurrency int
	retry       *retrier
	log         *zap.Logger
}

func NewConsumer(url, queue string, concurrency int, policy RetryPolicy, log *zap.Logger) (*Consumer, error) {
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

	// strict concurrency control
	if err := ch.Qos(concurrency, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{
		conn:        conn,
		ch:          ch,
		queue:       queue,
		concurrency: concurrency,
		retry:       newRetrier(ch, queue, policy),
		log:         log,
	}, nil
}

func (c *Consumer) Close() error {
	_ = c.ch.Close()
	return c.conn.Close()
}

// Run consumes until ctx is cancelled, then drains in-flight deliveries.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	c.log.Info("worker started",
		zap.String("queue", c.queue),
		zap.Int("concurrency", c.concurrency),
		zap.Int("max_attempts", c.retry.policy.MaxAttempts),
	)

	// Deliveries already handed to a worker finish even after ctx is
	// cancelled; each one is bounded by jobTimeout instead.
	workCtx := context.WithoutCancel(ctx)

	jobs := make(chan amqp.Delivery, c.concurrency*2)
	var wg sync.WaitGroup
	wg.Add(c.concurrency)
	for i := 0; i < c.concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			log := c.log.With(zap.Int("worker", workerID))
			for d := range jobs {
				jctx, cancel := context.WithTimeout(workCtx, jobTimeout)
				process(jctx, log, d, handle, c.retry)
				cancel()
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			c.log.Info("worker shutting down")
			close(jobs)
			wg.Wait()
			return nil

		case d, ok := <-msgs:
			if !ok {
				close(jobs)
				wg.Wait()
				return errors.New("delivery channel closed")
			}
			jobs <- d
		}
	}
}

// process settles one delivery:
//   - malformed payload: dead-lettered to <queue>.dlq
//   - handler failed because ctx ended: requeued on the main queue
//   - retryable failure under the attempt cap: republished to <queue>.retry
//   - anything else: dead-lettered
func process(ctx context.Context, log *zap.Logger, d amqp.Delivery, handle Handler, r *retrier) {
	m, err := DecodeIngest(d.Body)
	if err != nil {
		log.Warn("bad message", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	err = handle(ctx, m)
	if err == nil {
		if err := d.Ack(false); err != nil {
			log.Warn("ack failed", zap.String("user_name", m.UserName), zap.Error(err))
		}
		return
	}

	fields := []zap.Field{
		zap.String("user_name", m.UserName),
		zap.String("batch_id", m.BatchID),
		zap.String("message_id", d.MessageId),
		zap.Duration("cost", time.Since(start)),
		zap.Error(err),
	}

	if ctx.Err() != nil {
		log.Warn("ingest interrupted, requeueing", fields...)
		_ = d.Nack(false, true)
		return
	}

	if r != nil && IsRetryable(err) {
		attempts := deathCount(d.Headers, r.queue)
		if attempts < r.policy.MaxAttempts {
			perr := r.republish(ctx, d, attempts)
			if perr == nil {
				log.Warn("ingest failed, scheduled retry", append(fields, zap.Int("attempt", attempts+1))...)
				_ = d.Ack(false)
				return
			}
			log.Error("retry publish failed", zap.String("message_id", d.MessageId), zap.Error(perr))
		}
	}

	log.Error("ingest failed, dead-lettering", fields...)
	_ = d.Nack(false, false)
}
