package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/config"
	"github.com/phoenix-launcher/phoenix/internal/logging"
)

var (
	gameDir string
	verbose bool
	logFile string
	noLog   bool
)

var rootCmd = &cobra.Command{
	Use:           "phoenix",
	Short:         "Launcher and updater for Cataclysm: Dark Days Ahead",
	Long:          "Download, install and update Cataclysm: Dark Days Ahead while keeping saves, mods, tilesets, soundpacks and fonts across versions.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := logFile
		if path == "" && !noLog {
			path = config.LogFilePath()
		}
		if err := logging.Setup(verbose, path); err != nil {
			return err
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	closeErr := logging.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", closeErr)
		if err == nil {
			os.Exit(1)
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if isUsageError(err) {
			if cmd, _, findErr := rootCmd.Find(os.Args[1:]); findErr == nil && cmd != nil {
				_ = cmd.Usage()
			} else {
				_ = rootCmd.Usage()
			}
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return wrapUsageError(err)
	})

	rootCmd.PersistentFlags().StringVarP(&gameDir, "game-dir", "d", "", "Game installation directory (default: from settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of the default location")
	rootCmd.PersistentFlags().BoolVar(&noLog, "no-log-file", false, "Disable the log file entirely")
}

// resolveGameDir picks the installation directory from the flag or settings.
func resolveGameDir(settings *config.Settings) (string, error) {
	dir := gameDir
	if dir == "" {
		dir = settings.GameDir
	}
	if dir == "" {
		return "", errors.New("no game directory configured; pass --game-dir or set game-dir in settings")
	}
	return dir, nil
}

type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func wrapUsageError(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if validate == nil {
			return nil
		}
		if err := validate(cmd, args); err != nil {
			return wrapUsageError(err)
		}
		return nil
	}
}

func isUsageError(err error) bool {
	var ue *usageError
	if errors.As(err, &ue) {
		return true
	}

	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command ")
}
