package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acadvisor/acadvisor/internal/domain"
)

func newPlanCmd(global *globalOptions) *cobra.Command {
	var bg domain.Background

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a semester plan",
		Long: `Schedule courses into terms so every course follows its prerequisites
and no term exceeds the credit cap.

With --target the plan covers the targets and their missing prerequisites
and fails when they cannot fit in the remaining terms. Without it the plan
fills the remaining terms with whatever is eligible.

Examples:
  advisor plan --target ECO302 --terms 3 --completed ECO101,ECO102
  advisor plan --completed ECO101 --terms 2 --credits 15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adv, err := global.setup(cmd)
			if err != nil {
				return err
			}

			plan, err := adv.planner.Plan(cmd.Context(), bg)
			if err != nil {
				return err
			}

			if global.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), plan)
			}
			printPlan(cmd.OutOrStdout(), plan)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d credits, at most %d per term\n", plan.TotalCredits, plan.CreditCap)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&bg.CompletedCourses, "completed", nil, "Completed course codes")
	cmd.Flags().StringSliceVar(&bg.TargetCourses, "target", nil, "Courses the plan must reach")
	cmd.Flags().IntVar(&bg.MaxTermsRemaining, "terms", 4, "Terms remaining")
	cmd.Flags().IntVar(&bg.TargetCredits, "credits", 0, "Credits per term (0 uses the configured maximum)")
	return cmd
}

func printPlan(w io.Writer, plan *domain.SemesterPlan) {
	if plan == nil || len(plan.Terms) == 0 {
		fmt.Fprintln(w, "Nothing left to schedule.")
		return
	}
	for _, term := range plan.Terms {
		ids := make([]string, len(term.Courses))
		for i, c := range term.Courses {
			ids[i] = c.ID
		}
		fmt.Fprintf(w, "Term %d: %s (%d credits)\n", term.Number, strings.Join(ids, ", "), term.TotalCredits)
	}
}
