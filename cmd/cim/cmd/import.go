package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/cim/internal/model"
	"github.com/tormodhaugland/cim/internal/tui"
)

var importYes bool

var importCmd = &cobra.Command{
	Use:   "import <id>...",
	Short: "Import catalog items",
	Long: `Selects the given item ids and submits them as one import batch.

The batch is validated first: if any selected item has an id longer than
the configured limit, nothing is imported and every offending item is
named. Use --yes to skip the confirmation prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		store, printer := s.newStore()
		store, err = loadCatalog(store)
		if err != nil {
			return err
		}

		for _, id := range args {
			if _, ok := store.State().Lookup(id); !ok {
				return fmt.Errorf("item not found: %s", id)
			}
			store = store.ToggleSelection(id, true)
		}

		if !importYes && !jsonOut {
			result, err := tui.RunImportConfirm(store.State().SelectedItems())
			if err != nil {
				return err
			}
			if result.Aborted || !result.Confirmed {
				fmt.Println("Import cancelled")
				return nil
			}
		}

		selected := store.State().SelectedItems()
		store = drainSubmit(store)

		if err := store.State().Err; err != nil {
			return err
		}
		if printer.errors > 0 {
			return errors.New("import was not submitted")
		}

		if jsonOut {
			return outputJSON(struct {
				Imported []model.Item `json:"imported"`
			}{selected})
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(importCmd)
}
