package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/acadvisor/acadvisor/internal/domain"
	"github.com/acadvisor/acadvisor/internal/service"
)

func newSearchCmd(global *globalOptions) *cobra.Command {
	var (
		filters    service.SearchFilters
		maxCredits int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the course catalog",
		Long: `Rank catalog courses by how well they match the query. Course codes,
title words, subject families and career tags all count.

Examples:
  advisor search econometrics
  advisor search "sustainable finance" --max-credits 5
  advisor search finance --career quantitative_finance`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adv, err := global.setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-credits") {
				filters.MaxCredits = &maxCredits
			}

			courses, err := adv.courses.Search(cmd.Context(), strings.Join(args, " "), filters)
			if err != nil {
				return err
			}

			if global.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), courses)
			}
			printCourses(cmd.OutOrStdout(), courses)
			return nil
		},
	}

	cmd.Flags().IntVar(&filters.Limit, "limit", 10, "Maximum number of results (0 for all)")
	cmd.Flags().StringVar(&filters.CareerTag, "career", "", "Only courses with this career tag")
	cmd.Flags().IntVar(&maxCredits, "max-credits", 0, "Only courses worth at most this many credits")
	return cmd
}

func printCourses(w io.Writer, courses []domain.Course) {
	if len(courses) == 0 {
		fmt.Fprintln(w, "No matching courses.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREDITS\tTITLE\tPREREQUISITES")
	for _, c := range courses {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.ID, c.Credits, c.Title, strings.Join(c.Prerequisites, ", "))
	}
	_ = tw.Flush()
}
