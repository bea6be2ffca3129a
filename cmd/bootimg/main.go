package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bootimg"
)

var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:           "bootimg",
	Short:         "Inspect and modify Android boot images",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return setupLogger()
	},
}

var flag = struct {
	LogLevel string
}{}

func init() {
	rootCmd.PersistentFlags().StringVar(&flag.LogLevel, "log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(extractCmd, appendCmdlineCmd, replaceCmd, infoCmd)
}

func setupLogger() error {
	level, err := zerolog.ParseLevel(strings.ToLower(flag.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	if bootimg.CheckEnv("BOOTIMG_DEBUG") {
		level = zerolog.DebugLevel
	}

	fd := os.Stderr.Fd()
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		NoColor:    !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd),
		TimeFormat: time.TimeOnly,
	}
	logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
