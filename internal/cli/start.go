package cli

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

	"github.com/haskel/gradecast/internal/logger"
	"github.com/haskel/gradecast/internal/server"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gradecast API server",
	Long: `Start the gradecast API server in foreground mode.

The model is trained on the first prediction when none is stored. Use --warm
to train before accepting requests instead.`,
	RunE: runStart,
}

var warmStart bool

func init() {
	startCmd.Flags().BoolVar(&warmStart, "warm", false, "load or train the model before serving")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override listen address if specified via flag
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = host
	}

	log := logger.New(logLevel(cfg.Logging.Level), cfg.Logging.Format)

	log.Info("gradecast starting",
		"version", Version,
		"config", cfgFile,
		"backend", cfg.Persistence.Backend,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if warmStart {
		if err := a.predictor.Warm(ctx); err != nil {
			return fmt.Errorf("failed to warm model: %w", err)
		}
		log.Info("model ready", "state", a.predictor.State())
	}

	// Write PID file if configured
	if cfg.Server.PIDFile != "" {
		if err := writePIDFile(cfg.Server.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Server.PIDFile)
		}
	}

	srv := server.New(cfg, a.serverDeps(), logger.Component(log, "http"), Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		signal.Stop(sigCh)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}
		cancel()
	}()

	log.Info("gradecast ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("gradecast stopped")
	return nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}
