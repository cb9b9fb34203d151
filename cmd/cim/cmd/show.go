package cmd

import (
	"fmt"
	"os"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/cim/internal/model"
)

var showCmd = &cobra.Command{
	Use:   "show <query>",
	Short: "Show item details",
	Long: `Displays the details of one catalog item.

The query is matched against item ids first, then fuzzy-matched against
item names:
  cim show lamp-01      # exact id
  cim show dsklmp       # matches "Desk Lamp"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		store, _ := s.newStore()
		store, err = loadCatalog(store)
		if err != nil {
			return err
		}

		item, err := resolveItem(model.Items(store.State().AllItems), args[0])
		if err != nil {
			return err
		}

		store = runOpenDetail(store, item.ID)
		detail := store.State().Modal.CurrentDetail
		description := ""
		if detail != nil {
			description = detail.Description
		}

		if jsonOut {
			return outputJSON(struct {
				model.Item
				Description string `json:"description"`
			}{item, description})
		}

		fmt.Printf("Item:   %s\n", item.Name)
		fmt.Printf("ID:     %s\n", item.ID)
		fmt.Printf("Price:  %.2f\n", item.Price)
		if item.ImageURL != "" {
			fmt.Printf("Image:  %s\n", item.ImageURL)
		}
		if description != "" {
			fmt.Printf("\n%s\n", description)
		}
		return nil
	},
}

// resolveItem finds the item with id query, or the best fuzzy name match.
func resolveItem(items []model.Item, query string) (model.Item, error) {
	for _, item := range items {
		if item.ID == query {
			return item, nil
		}
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}

	matches := fuzzy.Find(query, names)
	if len(matches) == 0 {
		return model.Item{}, fmt.Errorf("no item found matching: %s", query)
	}

	best := matches[0]
	if best.Score < -10 {
		return model.Item{}, fmt.Errorf("no item found matching: %s", query)
	}

	if len(matches) > 1 && matches[0].Score == matches[1].Score {
		fmt.Fprintf(os.Stderr, "Ambiguous match, using: %s\n", best.Str)
	}

	return items[best.Index], nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
