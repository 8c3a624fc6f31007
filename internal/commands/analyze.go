package commands

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze INSTRUMENT",
	Short: "Analyse one instrument and print the signal as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			res, err := a.collector.Analyze(ctx, strings.ToUpper(args[0]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [INSTRUMENT...]",
	Short: "Analyse several instruments and print the batch as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			instruments := a.cfg.Instruments
			if len(args) > 0 {
				instruments = make([]string, len(args))
				for i, s := range args {
					instruments[i] = strings.ToUpper(s)
				}
			}
			return printJSON(cmd.OutOrStdout(), a.collector.Dashboard(ctx, instruments))
		})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd, dashboardCmd)
}

// withApp runs fn against a freshly wired app with a bounded deadline.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	return fn(ctx, a)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
