package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	useMock    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fxsignal",
	Short: "Forex technical-analysis signal service",
	Long: `FXSignal pulls OANDA candles, computes RSI, MACD, Bollinger Bands and
support/resistance, and turns them into BUY/SELL/HOLD signals.

Signals are served over HTTP, recorded in a capped history and, for STRONG
signals, pushed to Telegram.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "config file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock", false, "use generated mock prices instead of OANDA")
}
