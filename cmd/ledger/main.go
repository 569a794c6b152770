package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/zksync-ledger/pkg/config"
	"github.com/zksync-ledger/pkg/db"
	"github.com/zksync-ledger/pkg/report"
	"github.com/zksync-ledger/pkg/syncer"
	"github.com/zksync-ledger/pkg/zksync"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	if err := newRootCmd().Execute(); err != nil {
		if syncer.IsFetchError(err) {
			log.Fatal().Err(err).Msg("zkSync API request failed")
		}
		log.Fatal().Err(err).Msg("sync failed")
	}
}

func newRootCmd() *cobra.Command {
	var (
		wallet   string
		ledger   string
		apiURL   string
		pageSize int
		schedule string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:           "zksync-ledger",
		Short:         "Export zkSync account history into a tax ledger",
		Long:          "Pages through the zkSync transaction history of ETH_WALLET, classifies every\ntransaction as Withdrawal, Income, Spend or Trade and appends the new ones\nto a CSV (or SQLite) ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("wallet") {
				cfg.Wallet = wallet
			}
			if flags.Changed("ledger") {
				cfg.LedgerPath = ledger
			}
			if flags.Changed("api-url") {
				cfg.APIURL = apiURL
			}
			if flags.Changed("page-size") {
				cfg.PageSize = pageSize
			}
			if flags.Changed("schedule") {
				cfg.Schedule = schedule
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
			if !cfg.WalletIsHex() {
				log.Warn().Str("wallet", cfg.Wallet).Msg("wallet is not a hex address, using it as is")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&wallet, "wallet", "", "wallet address (overrides ETH_WALLET)")
	f.StringVar(&ledger, "ledger", "transactions.csv", "ledger path; .db/.sqlite uses SQLite (overrides LEDGER_PATH)")
	f.StringVar(&apiURL, "api-url", zksync.DefaultBaseURL, "zkSync REST API base URL (overrides ZKSYNC_API_URL)")
	f.IntVar(&pageSize, "page-size", syncer.DefaultPageSize, "history entries per request (overrides PAGE_SIZE)")
	f.StringVar(&schedule, "schedule", "", "cron spec to keep syncing, e.g. \"@every 1h\" (overrides SYNC_SCHEDULE)")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (overrides LOG_LEVEL)")
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	ledger, err := db.Open(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer ledger.Close()

	client := zksync.NewClient(cfg.APIURL, cfg.HTTPTimeout)

	if cfg.Schedule == "" {
		return syncOnce(ctx, cfg, client, ledger)
	}
	return runScheduled(ctx, cfg, client, ledger)
}

func syncOnce(ctx context.Context, cfg *config.Config, client *zksync.Client, ledger db.Ledger) error {
	runLog := log.With().Str("run", uuid.NewString()[:8]).Logger()
	runLog.Info().Str("wallet", cfg.Wallet).Str("ledger", cfg.LedgerPath).Msg("🔍 syncing zkSync history")

	start := time.Now()
	st, err := syncer.New(client, ledger, cfg.Wallet,
		syncer.WithPageSize(cfg.PageSize),
		syncer.WithLogger(runLog),
	).Run(ctx)
	if err != nil {
		return err
	}
	report.PrintSummary(os.Stdout, cfg.LedgerPath, st, time.Since(start))
	return nil
}

// runScheduled syncs immediately and then on every cron tick until ctx is
// cancelled. Overlapping ticks are skipped so only one run touches the ledger.
func runScheduled(ctx context.Context, cfg *config.Config, client *zksync.Client, ledger db.Ledger) error {
	cronLog := log.With().Str("component", "cron").Logger()
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&cronLog))))

	job := func() {
		if err := syncOnce(ctx, cfg, client, ledger); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("scheduled sync failed")
		}
	}
	if _, err := c.AddFunc(cfg.Schedule, job); err != nil {
		return fmt.Errorf("bad schedule %q: %w", cfg.Schedule, err)
	}

	job()
	c.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("⏱️ waiting for next sync")

	<-ctx.Done()
	log.Info().Msg("shutting down...")
	<-c.Stop().Done()
	return nil
}
