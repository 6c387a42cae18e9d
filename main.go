package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	port    int
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "navigator",
	Short: "Career navigator: agent-driven career planning over HTTP",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		l, err := newLogger(os.Getenv("LOG_LEVEL"), verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the navigator HTTP API",
	RunE:  runServe,
}

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Print the effective static content (quotes, minor plan, architecture)",
	RunE:  runContent,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(contentCmd)
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
