package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suPer8Hu/imitator/internal/config"
	"github.com/suPer8Hu/imitator/internal/db"
	"github.com/suPer8Hu/imitator/internal/imitation"
	"github.com/suPer8Hu/imitator/internal/logging"
	"github.com/suPer8Hu/imitator/internal/metrics"
	"github.com/suPer8Hu/imitator/internal/store/redisstore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "imitator",
	Short: "Learn how users write and imitate them",
	Long: `imitator records messages per user, keeps a word transition graph for
each of them and generates new text by walking that graph.

Without a subcommand it starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		if flags.Changed("db-driver") {
			cfg.DBDriver, _ = flags.GetString("db-driver")
		}
		if flags.Changed("db") {
			cfg.DBDSN, _ = flags.GetString("db")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	cfg = config.Load()

	rootCmd.PersistentFlags().String("db-driver", cfg.DBDriver, "database driver (sqlite, mysql)")
	rootCmd.PersistentFlags().StringP("db", "d", cfg.DBDSN, "database DSN")

	rootCmd.AddCommand(serveCmd, ingestCSVCmd, workerCmd)
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

// app bundles the long-lived dependencies every command needs.
type app struct {
	log     *zap.Logger
	db      *gorm.DB
	metrics *metrics.Collector
	svc     *imitation.Service
	cache   *redisstore.Store
}

func newApp(ctx context.Context) (*app, error) {
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	gdb, err := db.Open(cfg.DBDriver, cfg.DBDSN, cfg.DBMaxOpenConns, log)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	a := &app{log: log, db: gdb, metrics: metrics.NewCollector("imitator")}
	opts := []imitation.Option{imitation.WithObserver(a.metrics)}

	if cfg.RedisAddr != "" {
		a.cache = redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.UserCacheTTL)
		if err := a.cache.Ping(ctx); err != nil {
			log.Warn("redis unavailable, user cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
			_ = a.cache.Close()
			a.cache = nil
		} else {
			opts = append(opts, imitation.WithUserCache(a.cache))
		}
	}

	a.svc = imitation.NewService(gdb, cfg.MaxTokens, cfg.SampleLimit, opts...)
	log.Info("database ready", zap.String("driver", cfg.DBDriver), zap.Bool("user_cache", a.cache != nil))
	return a, nil
}

func (a *app) Close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if err := db.Close(a.db); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
	_ = a.log.Sync()
}
