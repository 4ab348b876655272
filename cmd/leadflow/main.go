package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/intersectiondata/leadflow/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "leadflow",
	Short: "Lead generation pipeline for Oracle EPM consulting outreach",
	Long: `leadflow finds companies hiring for Oracle EPM roles, resolves finance
contacts at those companies, sends paced cold outreach through Gmail,
classifies the replies and books intro calls on the calendar.

Each stage is available as a standalone command; "daemon" runs the send
and monitor stages continuously with a status API on the side.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(daemonCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	}
	return slog.New(handler)
}
