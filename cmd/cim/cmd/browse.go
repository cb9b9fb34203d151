package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/cim/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive catalog browser",
	Long:    `Opens the terminal user interface for searching the catalog, selecting items and importing them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		opts := s.cfg.StoreOptions()
		_, err = tui.RunCatalogBrowser(s.backend, opts, s.logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
