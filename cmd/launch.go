package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/config"
	"github.com/phoenix-launcher/phoenix/internal/game"
)

var launchCmd = &cobra.Command{
	Use:   "launch [-- game arguments]",
	Short: "Launch the installed game",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}
		dir, err := resolveGameDir(settings)
		if err != nil {
			return err
		}

		info, err := game.Detect(dir)
		if err != nil {
			return err
		}
		if info == nil {
			return fmt.Errorf("no game installation found in %s; run `phoenix update` first", dir)
		}

		params := settings.LaunchParams
		if len(args) > 0 {
			for _, a := range args {
				if params != "" {
					params += " "
				}
				params += a
			}
		}

		return game.Launch(info.Executable, params)
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
}
