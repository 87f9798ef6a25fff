package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumina-events/invitation-api/internal/api"
	"github.com/lumina-events/invitation-api/internal/config"
	"github.com/lumina-events/invitation-api/internal/db"
	"github.com/lumina-events/invitation-api/internal/logger"
	"github.com/lumina-events/invitation-api/internal/notify"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
	"github.com/lumina-events/invitation-api/internal/service"
)

const (
	defaultConfigPath = "./cmd/app/config.yml"
	sweepInterval     = time.Minute
	shutdownTimeout   = 10 * time.Second
)

var configPath string

// Start runs the command line. Without a subcommand it serves the API.
func Start() error {
	root := &cobra.Command{
		Use:           "invitation-api",
		Short:         "Guest admission and ticketing API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	addConfigFlag(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert the default event, venues, tiers and guest list into empty tables",
			RunE:  runSeed,
		},
		&cobra.Command{
			Use:   "hash-password <password>",
			Short: "Print the bcrypt hash to put in admin.password_hash",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				hash, err := service.HashPassword(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), hash)

				return nil
			},
		},
	)

	return root.Execute()
}

func addConfigFlag(fs *pflag.FlagSet) {
	fs.StringVarP(&configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
}

func setup() (*config.AppConfig, *gorm.DB, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger -> %w", err)
	}
	if err = logger.SetLevel(conf.Logger.Level); err != nil {
		return nil, nil, fmt.Errorf("failed to set log level -> %w", err)
	}

	var gdb *gorm.DB
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		gdb, err = db.OpenPostgresWithURL(dbURL)
	} else {
		gdb, err = db.Open(conf.Database)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database -> %w", err)
	}

	if err = dao.InitTables(gdb); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database -> %w", err)
	}

	return conf, gdb, nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	if _, _, err := setup(); err != nil {
		return err
	}
	zap.L().Info("database schema is up to date")

	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	conf, gdb, err := setup()
	if err != nil {
		return err
	}

	s := api.NewServer(conf, gdb, notify.Nop{})
	if err = s.Seed(cmd.Context()); err != nil {
		return fmt.Errorf("failed to seed database -> %w", err)
	}

	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	conf, gdb, err := setup()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var notifier service.Notifier = notify.Nop{}
	if conf.Telegram.Token != "" {
		tg, err := notify.NewTelegram(conf.Telegram.Token, conf.Telegram.ChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram -> %w", err)
		}
		go tg.Run(ctx)
		notifier = tg
	}

	s := api.NewServer(conf, gdb, notifier)
	if conf.API.SeedOnBoot {
		if err = s.Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed database -> %w", err)
		}
	}

	go s.Hub.Run(ctx)
	go s.Sessions.Run(ctx, sweepInterval)

	config.Watch(func(next *config.AppConfig, err error) {
		if err != nil {
			zap.L().Warn("config reload failed", zap.Error(err))
			return
		}
		if err := logger.SetLevel(next.Logger.Level); err != nil {
			zap.L().Warn("invalid log level", zap.Error(err))
			return
		}
		zap.L().Info("config reloaded", zap.String("log_level", next.Logger.Level))
	})

	srv := &http.Server{
		Addr:              ":" + conf.API.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info(fmt.Sprintf("starting server at %v", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start the server -> %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down the server -> %w", err)
	}

	return nil
}
