package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recruitment-tracker/config"
	"recruitment-tracker/db"
	"recruitment-tracker/logging"
	"recruitment-tracker/tracker"
)

// defaultConfigPath is read when --config is not given. It may be absent.
const defaultConfigPath = "tracker.yaml"

// app carries what every subcommand needs once the root command has run.
type app struct {
	// Global flags
	configPath string
	verbose    bool

	cfg     *config.Config
	logger  *zap.Logger
	repo    db.Repository
	service *tracker.Service
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "recruitment-tracker",
		Short: "Track applicants and their recruitment assignments",
		Long: `recruitment-tracker reconciles an assignment roster with a submission
roster, stores the matched applicants and their assignments, and reports who
has submitted, who has not, and who is overdue.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCmd(a),
		newOverviewCmd(a),
		newSearchCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// setup loads the config, builds the logger and opens the store.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg

	if a.logger, err = logging.New(cfg.Logging.Level, cfg.Logging.JSON); err != nil {
		return err
	}

	if a.repo, err = db.Open(cmd.Context(), cfg.Store, a.logger); err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	a.service = tracker.NewService(a.repo, a.logger, tracker.Options{
		OneToOne: cfg.Store.OneToOne,
		Join:     cfg.Reconcile.Join,
	})
	return nil
}

// close releases the store and flushes the logger. It runs even when the
// command failed.
func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil && a.logger != nil {
			a.logger.Warn("failed to close store", zap.Error(err))
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{}
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
