package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/suPer8Hu/imitator/internal/ingest"
	"github.com/suPer8Hu/imitator/internal/store/rabbitmq"
	"go.uber.org/zap"
)

var ingestCSVCmd = &cobra.Command{
	Use:   "ingest-csv <file>",
	Short: "Bulk-load messages from a CSV file",
	Long: `Bulk-load messages from a header-less CSV file whose rows are
user_name,message. Extra columns are ignored; a row with fewer than two
columns aborts the run.

With --enqueue the rows are published to the ingest queue and stored later
by 'imitator worker'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enqueue, err := cmd.Flags().GetBool("enqueue")
		if err != nil {
			return fmt.Errorf("failed to read 'enqueue' flag: %w", err)
		}
		ctx := cmd.Context()
		start := time.Now()

		if enqueue {
			pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
			if err != nil {
				return fmt.Errorf("rabbit: %w", err)
			}
			defer pub.Close()

			batchID := uuid.NewString()
			n, err := ingest.LoadCSVFile(ctx, args[0], pub.WithBatch(batchID))
			fmt.Fprintf(cmd.OutOrStdout(), "queued %d rows (batch %s) in %s\n", n, batchID, time.Since(start).Round(time.Millisecond))
			return err
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := ingest.LoadCSVFile(ctx, args[0], a.svc)
		a.log.Info("csv ingest finished",
			zap.String("file", args[0]),
			zap.Int("rows", n),
			zap.Duration("cost", time.Since(start)),
			zap.Error(err),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "ingested %d rows in %s\n", n, time.Since(start).Round(time.Millisecond))
		return err
	},
}

func init() {
	ingestCSVCmd.Flags().Bool("enqueue", false, "publish rows to RabbitMQ instead of ingesting directly")
}
