package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/acadvisor/acadvisor/internal/domain"
)

type askOptions struct {
	completed      []string
	credits        int
	terms          int
	maxCredits     int
	previousIntent string
	program        string
	career         string
}

func newAskCmd(global *globalOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a free-text question",
		Long: `Classify a question and answer it from the course catalog.

The flags supply the context a conversation would carry between turns;
anything stated in the question itself takes precedence.

Examples:
  advisor ask "What should I take next semester given 60 completed credits?"
  advisor ask "Which courses prepare me for ESG investing?" --completed ECO101
  advisor ask "And what about 3 more terms?" --previous career_pathway`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			adv, err := global.setup(cmd)
			if err != nil {
				return err
			}

			resp, err := adv.orchestrator.Query(cmd.Context(), strings.Join(args, " "), opts.requestContext(cmd))
			if err != nil {
				return err
			}

			if global.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResponse(cmd, resp)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.completed, "completed", nil, "Completed course codes")
	cmd.Flags().IntVar(&opts.credits, "credits", 0, "Completed credits")
	cmd.Flags().IntVar(&opts.terms, "terms", 0, "Terms remaining")
	cmd.Flags().IntVar(&opts.maxCredits, "max-credits", 0, "Maximum credits per term")
	cmd.Flags().StringVar(&opts.previousIntent, "previous", "", "Intent of the previous question, for follow-ups")
	cmd.Flags().StringVar(&opts.program, "program", "", "Target programme")
	cmd.Flags().StringVar(&opts.career, "career", "", "Career tag")
	return cmd
}

// requestContext returns nil when no context flag was given
func (o *askOptions) requestContext(cmd *cobra.Command) *domain.RequestContext {
	rc := &domain.RequestContext{
		PreviousIntent:   domain.IntentKind(o.previousIntent),
		CompletedCourses: o.completed,
		TargetProgram:    o.program,
		CareerTag:        o.career,
	}
	set := o.previousIntent != "" || len(o.completed) > 0 || o.program != "" || o.career != ""

	if cmd.Flags().Changed("credits") {
		rc.CompletedCredits = &o.credits
		set = true
	}
	if cmd.Flags().Changed("terms") {
		rc.TermsRemaining = &o.terms
		set = true
	}
	if cmd.Flags().Changed("max-credits") {
		rc.MaxCreditsPerTerm = &o.maxCredits
		set = true
	}

	if !set {
		return nil
	}
	return rc
}

func printResponse(cmd *cobra.Command, resp *domain.Response) {
	out := cmd.OutOrStdout()

	if resp.Intent.Kind == domain.IntentUnknown {
		fmt.Fprintln(out, resp.Clarification)
		return
	}

	fmt.Fprintf(out, "%s (confidence %.2f)\n\n", resp.Intent.Kind, resp.Intent.Confidence)

	switch r := resp.Result.(type) {
	case domain.CourseListResult:
		printCourses(out, r.Courses)
	case domain.PrerequisiteResult:
		if r.Eligible {
			fmt.Fprintf(out, "Eligible for %s\n", r.Course.ID)
		} else {
			fmt.Fprintf(out, "Not yet eligible for %s; missing %s\n", r.Course.ID, strings.Join(r.Missing, ", "))
		}
	case domain.PlanResult:
		printPlan(out, r.Plan)
		fmt.Fprintf(out, "\nWorkload: %s (%.2f)\n", r.Workload.Level, r.Workload.Score)
	case domain.PathwayResult:
		fmt.Fprintf(out, "%s (alignment %.2f)\n", r.Specialization, r.AlignmentScore)
		printPlan(out, r.Plan)
		for _, g := range r.Gaps {
			fmt.Fprintf(out, "  gap: %s\n", g)
		}
	}

	fmt.Fprintf(out, "\n%s\n[%s]\n", resp.Annotation.Text, resp.Annotation.Provenance)
}
