package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"FXSignal/internal/api"
	"FXSignal/internal/scheduler"
)

var (
	servePort  int
	runOnStart bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the scan scheduler and the Telegram bot",
	Long: `Start the signal service.

Examples:
  fxsignal serve                 # Start with configs/config.yaml
  fxsignal serve --port 9090     # Override the listen port
  fxsignal serve --mock          # Serve generated prices`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (overrides config)")
	serveCmd.Flags().BoolVar(&runOnStart, "scan-now", os.Getenv("RUN_ON_START") == "true", "run one dashboard scan at startup")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Errorf("close: %v", err)
		}
	}()
	log := a.logger
	log.Info("FXSignal starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sender scheduler.Sender
	if a.telegram != nil {
		sender = a.telegram
	}
	sched := scheduler.NewScheduler(ctx, a.collector, sender, a.history, cfg.Instruments, log)
	if err := sched.RegisterAll(cfg.Schedule.ScanCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}
	if runOnStart {
		log.Info("running dashboard scan now")
		go sched.RunScanNow()
	}

	handler := api.NewHandler(a.collector, a.history, a.news, a.monitor, cfg.Instruments, log)
	server := api.NewServer(fmt.Sprintf(":%d", cfg.Server.Port), api.SetupRoutes(handler, cfg.Server.CORSOrigins), log)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Errorf("http shutdown: %v", err)
	}
	log.Info("FXSignal stopped")
	return nil
}
