package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "cim",
	Short: "Catalog import manager - browse a catalog and import items",
	Long: `cim browses an importable catalog, filters it, lets you pick items
and submits them as one validated import batch.

The catalog comes from a local SQLite database (see 'cim seed') or from a
remote cim server (see 'cim serve').

Running 'cim' without arguments launches the TUI.

Detail lookups: when an earlier detail request finishes after a later one,
its response is dropped so the open item keeps its own description. Set
"detail": {"discard_stale": false} in the config to show whichever response
arrives last instead.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return browseCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/cim/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
