package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/cim/internal/model"
)

var lsCmd = &cobra.Command{
	Use:   "ls [term]",
	Short: "List catalog items",
	Long: `Lists the catalog. With a term, only items whose name contains it are
shown, using the same rules as the browser search: case-insensitive, and
terms shorter than the minimum length do not filter.`,
	Args: cobra.MaximumNArgs(1),
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
		if len(args) == 1 {
			store = store.SetSearchTerm(args[0])
		}

		items := model.Items(store.State().FilteredItems)
		if jsonOut {
			return outputJSON(items)
		}

		if len(items) == 0 {
			fmt.Println("No items found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPRICE")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\t%.2f\n", item.ID, item.Name, item.Price)
		}
		w.Flush()

		if len(args) == 1 && strings.TrimSpace(args[0]) != "" && len(items) == len(store.State().AllItems) {
			fmt.Fprintf(os.Stderr, "note: terms shorter than %d characters do not filter\n", s.cfg.StoreOptions().MinFilterLength)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
