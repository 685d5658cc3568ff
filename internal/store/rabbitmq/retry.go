package rabbitmq

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RetryPolicy caps how often a delivery goes through <queue>.retry before it
// is dead-lettered. The wait doubles with every attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// delay is the expiration for the retry numbered attempt (zero based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	if attempt > 16 {
		attempt = 16
	}
	return p.BaseDelay << attempt
}

type retryableError struct{ err error }

func (e retryableError) Error() string { return e.err.Error() }
func (e retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient so the worker schedules another attempt.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryableError{err: err}
}

func IsRetryable(err error) bool {
	var re retryableError
	return errors.As(err, &re)
}

func retryQueue(queue string) string { return queue + ".retry" }
func deadLetterQueue(queue string) string { return queue + ".dlq" }

// channelPublisher is the publishing half of *amqp.Channel.
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type retrier struct {
	mu     sync.Mutex
	pub    channelPublisher
	queue  string
	policy RetryPolicy
}

func newRetrier(pub channelPublisher, queue string, policy RetryPolicy) *retrier {
	return &retrier{pub: pub, queue: retryQueue(queue), policy: policy}
}

// republish parks a copy of d on the retry queue. The broker dead-letters it
// back to the main queue once the expiration passes, adding to x-death.
func (r *retrier) republish(ctx context.Context, d amqp.Delivery, attempt int) error {
	pub := amqp.Publishing{
		Headers:       d.Headers,
		ContentType:   d.ContentType,
		DeliveryMode:  amqp.Persistent,
		MessageId:     d.MessageId,
		CorrelationId: d.CorrelationId,
		Timestamp:     d.Timestamp,
		Expiration:    strconv.FormatInt(r.policy.delay(attempt).Milliseconds(), 10),
		Body:          d.Body,
	}

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pub.PublishWithContext(cctx, "", r.queue, false, false, pub)
}

// deathCount reports how many times the broker expired the delivery out of
// queue, according to the x-death header.
func deathCount(headers amqp.Table, queue string) int {
	deaths, _ := headers["x-death"].([]interface{})
	for _, raw := range deaths {
		entry, ok := raw.(amqp.Table)
		if !ok {
			continue
		}
		if q, _ := entry["queue"].(string); q != queue {
			continue
		}
		switch n := entry["count"].(type) {
		case int64:
			return int(n)
		case int32:
			return int(n)
		case int:
			return n
		}
	}
	return 0
}
