package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/cim/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load catalog items into the local database",
	Long: `Reads a YAML or JSON seed file and upserts its items into the local
SQLite catalog. Each item may carry a free-form detail map that is served
verbatim by the detail endpoint.

Example seed file:
  items:
    - id: lamp-01
      name: Desk Lamp
      price: 19.5
      image_url: https://example.com/lamp.png
      detail:
        description: Warm LED desk lamp`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := model.LoadSeed(args[0])
		if err != nil {
			return err
		}

		cfg, db, err := openLocalDB()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Seed(context.Background(), seed.Items)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}

		if jsonOut {
			return outputJSON(map[string]any{"seeded": n, "db": cfg.DBPath()})
		}
		fmt.Printf("Seeded %d item(s) into %s\n", n, cfg.DBPath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
