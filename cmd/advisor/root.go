package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/ai"
	"github.com/acadvisor/acadvisor/internal/catalog"
	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/pkg/logger"
	"github.com/acadvisor/acadvisor/internal/service"
)

// Version is set at build time
var Version = "0.1.0"

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	catalogPath string
	mockAI      bool
	output      string
	verbose     bool
}

// advisor is the service graph the subcommands run against
type advisor struct {
	courses      *service.CourseService
	planner      *service.PlanningService
	orchestrator *service.Orchestrator
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "advisor",
		Short: "Academic advisor for the Economics programme",
		Long: `Answers course, planning, career and prerequisite questions.

Commands:
  ask       - Ask a free-text question
  plan      - Build a semester plan towards target courses
  search    - Search the course catalog
  subjects  - List subject families

Example:
  advisor ask "Can I take ECO302?" --completed ECO101,ECO102
  advisor plan --target ECO302 --terms 3
  advisor search econometrics --limit 5`,
		Version:      Version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "Course catalog YAML file (defaults to the configured source)")
	root.PersistentFlags().BoolVar(&opts.mockAI, "mock-ai", true, "Use the deterministic mock AI gateway")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "Output format: text or json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newAskCmd(opts),
		newPlanCmd(opts),
		newSearchCmd(opts),
		newSubjectsCmd(opts),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the services
func (o *globalOptions) setup(cmd *cobra.Command) (*advisor, error) {
	if o.output != "text" && o.output != "json" {
		return nil, fmt.Errorf("unknown output format %q", o.output)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.catalogPath != "" {
		cfg.Catalog.Source = config.CatalogFile
		cfg.Catalog.Path = o.catalogPath
	}
	if f := cmd.Flag("mock-ai"); f != nil && f.Changed {
		cfg.AI.UseMock = o.mockAI
	}

	log := zap.NewNop()
	if o.verbose {
		log = logger.New(logger.Config{Level: "debug", Format: "console"})
	}

	cat, err := catalog.Open(cmd.Context(), cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	courses := service.NewCourseService(cat, log)
	planner := service.NewPlanningService(cat, cfg.Advisor.MaxCreditsPerTerm, log)
	orchestrator := service.NewOrchestrator(
		service.NewDispatcher(cfg.Advisor.IntentConfidenceThreshold, log),
		courses,
		planner,
		ai.New(cfg.AI, log),
		service.OrchestratorConfig{AI: cfg.AI, DefaultTermsRemaining: cfg.Advisor.DefaultTermsRemaining},
		log,
	)

	return &advisor{courses: courses, planner: planner, orchestrator: orchestrator}, nil
}

func (o *globalOptions) wantJSON() bool { return o.output == "json" }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
