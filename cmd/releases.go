package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/phoenix-launcher/phoenix/internal/game"
	"github.com/phoenix-launcher/phoenix/internal/release"
)

var releasesLimit int

var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List recent game releases",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := release.NewClient(http.DefaultClient)
		releases, err := client.FetchReleases(cmd.Context(), release.DefaultRepo)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Version", "Channel", "Published", "Asset", "Size"})

		shown := 0
		for _, rel := range releases {
			if shown >= releasesLimit {
				break
			}
			channel := "stable"
			if rel.Prerelease {
				channel = "experimental"
			}
			published := ""
			if t, err := time.Parse(time.RFC3339, rel.PublishedAt); err == nil {
				published = t.Format(time.DateOnly)
			}

			asset, size := "-", "-"
			for _, a := range rel.Assets {
				if a.Name != "" {
					asset = a.Name
					size = game.FormatSize(a.Size)
					break
				}
			}

			table.Append([]string{rel.TagName, channel, published, asset, size})
			shown++
		}

		if shown == 0 {
			fmt.Println("No releases found")
			return nil
		}
		table.Render()
		return nil
	},
}

func init() {
	releasesCmd.Flags().IntVarP(&releasesLimit, "limit", "n", 10, "Maximum number of releases to list")
	rootCmd.AddCommand(releasesCmd)
}
