package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyItems bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded imports",
	Long:  `Lists the import batches recorded in the local catalog, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openLocalDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		records, err := db.ListImports(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list imports: %w", err)
		}

		if historyItems {
			for i := range records {
				items, err := db.ImportItems(ctx, records[i].ID)
				if err != nil {
					return fmt.Errorf("failed to list items of %s: %w", records[i].ID, err)
				}
				records[i].Items = items
			}
		}

		if jsonOut {
			return outputJSON(records)
		}

		if len(records) == 0 {
			fmt.Println("No imports recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tITEMS\tCREATED")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%d\t%s\n", r.ID, r.ItemCount, r.CreatedAt.Local().Format("2006-01-02 15:04"))
			for _, item := range r.Items {
				fmt.Fprintf(w, "  %s\t%s\t\n", item.ID, item.Name)
			}
		}
		w.Flush()
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of imports to show")
	historyCmd.Flags().BoolVar(&historyItems, "items", false, "include the items of each import")
	rootCmd.AddCommand(historyCmd)
}
