package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/imitator/internal/imitation"
	"github.com/suPer8Hu/imitator/internal/store/rabbitmq"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume the ingest queue",
	Long: `Consume queued messages and ingest them with a bounded pool of workers
($WORKER_CONCURRENCY). Storage failures are retried through <queue>.retry
($RETRY_MAX_ATTEMPTS times, waiting $RETRY_BASE_DELAY and doubling) before they
are dead-lettered to <queue>.dlq; malformed payloads go to <queue>.dlq at once.
On SIGINT/SIGTERM deliveries already taken are finished, or requeued if they
cannot finish in time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		policy := rabbitmq.RetryPolicy{MaxAttempts: cfg.RetryMaxAttempts, BaseDelay: cfg.RetryBaseDelay}
		consumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, cfg.RabbitQueue, cfg.WorkerConcurrency, policy, a.log)
		if err != nil {
			return fmt.Errorf("rabbit: %w", err)
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return consumer.Run(ctx, ingestHandler(a.svc))
	},
}

// ingestHandler feeds deliveries to svc. Storage failures are worth another
// attempt; anything else would fail the same way again.
func ingestHandler(svc *imitation.Service) rabbitmq.Handler {
	return func(ctx context.Context, m rabbitmq.IngestMessage) error {
		err := svc.Ingest(ctx, m.UserName, m.Message)
		var se *imitation.StorageError
		if errors.As(err, &se) {
			return rabbitmq.Retryable(err)
		}
		return err
	}
}
