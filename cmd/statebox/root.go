package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/statebox/internal/config"
	"github.com/jask/statebox/internal/journal"
	"github.com/jask/statebox/internal/logging"
	"github.com/jask/statebox/internal/metrics"
	"github.com/jask/statebox/internal/projection"
	"github.com/jask/statebox/internal/state"
	"github.com/jask/statebox/internal/store"
	"github.com/jask/statebox/internal/tui"
)

// cli carries what PersistentPreRunE loads to the subcommands.
type cli struct {
	configPath string
	verbose    bool
	cfg        config.Config
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{log: zap.NewNop()}
	root := &cobra.Command{
		Use:   "statebox",
		Short: "Counter and search query over a single unidirectional store",
		Long: `statebox renders a search field and a counter, each backed by its own
state slice, composed into one store. Every change goes through dispatch.

Run without arguments to start the terminal UI.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			log, err := logging.New(cfg.Log, c.verbose)
			if err != nil {
				return err
			}
			c.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = c.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $STATEBOX_CONFIG or ~/.config/statebox/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newReplayCmd(c), newHistoryCmd(c), newConfigCmd(c))
	return root
}

func (c *cli) runTUI(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	order, err := projection.CompileOrder(c.cfg.UI.OrderExpr)
	if err != nil {
		return err
	}

	opts := []store.Option[state.State]{store.WithLogger[state.State](c.log)}

	if c.cfg.Journal.Enabled {
		db, err := journal.Open(c.cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		rec, err := journal.StartSession(ctx, journal.NewRepo(db), c.log)
		if err != nil {
			return err
		}
		opts = append(opts, store.WithObserver(journal.Observer[state.State](rec)))
	}

	if c.cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		col, err := metrics.New(reg, state.Root().Handles)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		opts = append(opts, store.WithObserver(metrics.Observer[state.State](col)))
		go func() {
			if err := metrics.Serve(ctx, c.cfg.Metrics.Addr, reg, c.log); err != nil {
				c.log.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	st := state.NewStore(opts...)
	app := tui.New(ctx, c.cfg.UI, st, order, c.log)
	defer app.Close()

	c.log.Info("starting ui", zap.Strings("slices", state.Root().Names()))
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	c.log.Info("ui stopped", zap.Any("state", state.Root().Fragments(st.State())))
	return nil
}
