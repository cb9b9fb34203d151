package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/cim/internal/doctor"
	"github.com/tormodhaugland/cim/internal/tui"
)

var (
	doctorYes    bool
	doctorDryRun bool
)

type doctorResult struct {
	DB      string         `json:"db"`
	Report  *doctor.Report `json:"report"`
	Planned []string       `json:"planned,omitempty"`
	Fixed   []string       `json:"fixed,omitempty"`
	Skipped []string       `json:"skipped,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
	DryRun  bool           `json:"dry_run"`
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check and repair the local catalog",
	Long: `Scans the local catalog for items that cannot be imported (ids over
the length limit, duplicate ids) or show no description, and for detail
records that store the description under the legacy "descripton" key.
Legacy keys can be rewritten interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openLocalDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		report, err := doctor.Check(ctx, db, cfg.StoreOptions().MaxIDLength)
		if err != nil {
			return fmt.Errorf("failed to check catalog: %w", err)
		}

		result := doctorResult{DB: db.Path(), Report: report, DryRun: doctorDryRun}
		fixable := report.Fixable()

		if jsonOut {
			switch {
			case doctorYes && doctorDryRun:
				result.Planned = collectItemIDs(fixable)
			case doctorYes:
				applyDoctorFixes(ctx, db, fixable, &result, true)
			}
			if err := outputJSON(result); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("doctor encountered %d errors", len(result.Errors))
			}
			return nil
		}

		if len(report.Problems) == 0 {
			fmt.Printf("All %d item(s) look fine\n", report.Items)
			return nil
		}

		fmt.Printf("Found %d problem(s) in %d item(s):\n", len(report.Problems), report.Items)
		for _, p := range report.Problems {
			fmt.Printf("  - %s (%s): %s\n", p.ItemID, p.Kind, p.Message)
		}

		if len(fixable) == 0 {
			return nil
		}

		if doctorDryRun {
			fmt.Println("Dry run - no changes made")
			for _, p := range fixable {
				fmt.Printf("Would rewrite the description key of %s\n", p.ItemID)
			}
			return nil
		}

		if doctorYes {
			applyDoctorFixes(ctx, db, fixable, &result, false)
		} else {
			for _, p := range fixable {
				confirm, err := tui.RunConfirm(fmt.Sprintf("Rewrite the description key of '%s'?", p.ItemID))
				if err != nil {
					return fmt.Errorf("prompt failed: %w", err)
				}
				if confirm.Aborted {
					return fmt.Errorf("aborted")
				}
				if !confirm.Confirmed {
					result.Skipped = append(result.Skipped, p.ItemID)
					continue
				}
				applyDoctorFixes(ctx, db, []doctor.Problem{p}, &result, false)
			}
		}

		printDoctorSummary(result)
		if len(result.Errors) > 0 {
			return fmt.Errorf("doctor encountered %d errors", len(result.Errors))
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().BoolVarP(&doctorYes, "yes", "y", false, "apply fixes without prompting")
	doctorCmd.Flags().BoolVar(&doctorDryRun, "dry-run", false, "preview fixes without applying them")
	rootCmd.AddCommand(doctorCmd)
}

func applyDoctorFixes(ctx context.Context, w doctor.DetailWriter, problems []doctor.Problem, result *doctorResult, quiet bool) {
	for _, p := range problems {
		if err := doctor.Fix(ctx, w, p); err != nil {
			msg := err.Error()
			result.Errors = append(result.Errors, msg)
			fmt.Fprintln(os.Stderr, "Error:", msg)
			continue
		}
		result.Fixed = append(result.Fixed, p.ItemID)
		if !quiet {
			fmt.Printf("Fixed %s\n", p.ItemID)
		}
	}
}

func printDoctorSummary(result doctorResult) {
	if len(result.Fixed) > 0 {
		fmt.Printf("Fixed %d item(s)\n", len(result.Fixed))
	}
	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped %d item(s)\n", len(result.Skipped))
	}
	if len(result.Errors) > 0 {
		fmt.Printf("Errors: %d (see stderr)\n", len(result.Errors))
	}
}

func collectItemIDs(problems []doctor.Problem) []string {
	ids := make([]string, 0, len(problems))
	for _, p := range problems {
		ids = append(ids, p.ItemID)
	}
	return ids
}
