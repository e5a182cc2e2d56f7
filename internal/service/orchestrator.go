package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/acadvisor/acadvisor/internal/ai"
	"github.com/acadvisor/acadvisor/internal/config"
	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
	"github.com/acadvisor/acadvisor/internal/pkg/metrics"
)

// DefaultTermsRemaining is assumed for target-driven plans when the student
// does not say how many terms are left.
const DefaultTermsRemaining = 4

const courseSearchLimit = 10

// OrchestratorConfig holds the knobs the orchestrator reads per request
type OrchestratorConfig struct {
	AI                    config.AIConfig
	DefaultTermsRemaining int
}

// pipeline is one row of the per-intent table. The baseline is computed
// first; the gateway only adds narrative on top of it.
type pipeline struct {
	baseline func(ctx context.Context, intent domain.Intent) (domain.Result, error)
	narrate  func(intent domain.Intent, res domain.Result) narrative
	// annotate copies the annotation into results that carry their own
	annotate func(res domain.Result, a domain.Annotation) domain.Result
}

// Orchestrator routes a classified intent through its pipeline
type Orchestrator struct {
	dispatcher *Dispatcher
	courses    *CourseService
	planner    *PlanningService
	gateway    ai.Gateway
	cfg        OrchestratorConfig
	pipelines  map[domain.IntentKind]pipeline
	logger     *zap.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	dispatcher *Dispatcher,
	courses *CourseService,
	planner *PlanningService,
	gateway ai.Gateway,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.DefaultTermsRemaining <= 0 {
		cfg.DefaultTermsRemaining = DefaultTermsRemaining
	}

	o := &Orchestrator{
		dispatcher: dispatcher,
		courses:    courses,
		planner:    planner,
		gateway:    gateway,
		cfg:        cfg,
		logger:     logger,
	}

	o.pipelines = map[domain.IntentKind]pipeline{
		domain.IntentCourseLookup: {
			baseline: o.lookupCourses,
			narrate: func(i domain.Intent, r domain.Result) narrative {
				return courseNarrative(i, r.(domain.CourseListResult))
			},
		},
		domain.IntentPrerequisiteCheck: {
			baseline: o.checkPrerequisites,
			narrate: func(i domain.Intent, r domain.Result) narrative {
				return prerequisiteNarrative(i, r.(domain.PrerequisiteResult))
			},
		},
		domain.IntentSemesterPlanning: {
			baseline: o.planSemesters,
			narrate: func(i domain.Intent, r domain.Result) narrative {
				return planNarrative(i, r.(domain.PlanResult))
			},
			annotate: func(r domain.Result, a domain.Annotation) domain.Result {
				res := r.(domain.PlanResult)
				res.Plan = res.Plan.WithAnnotation(a)
				return res
			},
		},
		domain.IntentCareerPathway: {
			baseline: o.buildPathway,
			narrate: func(i domain.Intent, r domain.Result) narrative {
				return pathwayNarrative(i, r.(domain.PathwayResult))
			},
			annotate: func(r domain.Result, a domain.Annotation) domain.Result {
				res := r.(domain.PathwayResult)
				res.Plan = res.Plan.WithAnnotation(a)
				return res
			},
		},
	}

	return o
}

// Query classifies text and handles the resulting intent
func (o *Orchestrator) Query(ctx context.Context, text string, rc *domain.RequestContext) (*domain.Response, error) {
	intent, err := o.dispatcher.Classify(text, rc)
	if err != nil {
		return nil, err
	}
	return o.Handle(ctx, intent, rc)
}

// Handle runs the pipeline for a classified intent. Domain errors from the
// baseline are returned unchanged; gateway failures never are.
func (o *Orchestrator) Handle(ctx context.Context, intent domain.Intent, rc *domain.RequestContext) (*domain.Response, error) {
	start := time.Now()
	kind := string(intent.Kind)
	metrics.RecordIntent(kind, intent.Confidence)

	p, ok := o.pipelines[intent.Kind]
	if !ok {
		resp := &domain.Response{
			QueryID:         uuid.New().String(),
			Intent:          intent,
			Annotation:      domain.Annotation{Text: Clarification, Provenance: domain.ProvenanceRuleBased},
			Clarification:   Clarification,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
		}
		metrics.RecordQuery(kind, string(resp.Annotation.Provenance), time.Since(start))
		return resp, nil
	}

	stageStart := time.Now()
	result, err := p.baseline(ctx, intent)
	metrics.RecordStage(kind, "baseline", time.Since(stageStart))
	if err != nil {
		if appErr := apperrors.GetAppError(err); appErr != nil {
			metrics.RecordDomainError(kind, appErr.Code)
		}
		o.logger.Info("baseline failed",
			zap.String("intent", kind),
			zap.Error(err),
		)
		return nil, err
	}

	n := p.narrate(intent, result)
	annotation := o.enhance(ctx, intent.Kind, n)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.annotate != nil {
		result = p.annotate(result, annotation)
	}

	resp := &domain.Response{
		QueryID:         uuid.New().String(),
		Intent:          intent,
		ResultType:      result.ResultKind(),
		Result:          result,
		Annotation:      annotation,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}

	metrics.RecordQuery(kind, string(annotation.Provenance), time.Since(start))
	o.logger.Info("query handled",
		zap.String("query_id", resp.QueryID),
		zap.String("intent", kind),
		zap.Float64("confidence", intent.Confidence),
		zap.String("provenance", string(annotation.Provenance)),
		zap.Int64("execution_time_ms", resp.ExecutionTimeMs),
	)
	return resp, nil
}

// enhance is always the last step and is bounded by the AI timeout
func (o *Orchestrator) enhance(ctx context.Context, kind domain.IntentKind, n narrative) domain.Annotation {
	timeout := o.cfg.AI.TimeoutFor(string(kind))
	if timeout <= 0 {
		timeout = config.DefaultAITimeout
	}

	start := time.Now()
	res := ai.Bounded(ctx, o.gateway, ai.Request{
		Intent:  kind,
		Prompt:  n.prompt,
		Summary: n.summary,
		Timeout: timeout,
	})
	elapsed := time.Since(start)

	outcome := "ok"
	if !res.OK() {
		outcome = string(res.Failure)
	}
	metrics.RecordAICall(o.gateway.Name(), outcome, elapsed)
	metrics.RecordStage(string(kind), "ai", elapsed)

	switch {
	case !res.OK():
		o.logger.Warn("AI enhancement failed, using fallback",
			zap.String("intent", string(kind)),
			zap.String("gateway", o.gateway.Name()),
			zap.String("failure", string(res.Failure)),
			zap.Duration("elapsed", elapsed),
		)
		return domain.Annotation{Text: n.fallback, Provenance: domain.ProvenanceFallback}
	case res.Source == ai.SourceMock:
		return domain.Annotation{Text: res.Text, Provenance: domain.ProvenanceRuleBased}
	default:
		return domain.Annotation{Text: res.Text, Provenance: domain.ProvenanceAIGenerated}
	}
}

func (o *Orchestrator) lookupCourses(ctx context.Context, intent domain.Intent) (domain.Result, error) {
	query, _ := intent.Slots.String(domain.SlotQuery)
	filters := SearchFilters{Limit: courseSearchLimit}
	if v, ok := intent.Slots.Int(domain.SlotMaxCredits); ok {
		filters.MaxCredits = &v
	}
	if tag, ok := intent.Slots.String(domain.SlotCareerTag); ok {
		filters.CareerTag = tag
	}

	courses, err := o.courses.Search(ctx, query, filters)
	if err != nil {
		return nil, err
	}
	return domain.CourseListResult{
		Query:    query,
		Subjects: intent.Slots.Strings(domain.SlotSubjects),
		Courses:  courses,
	}, nil
}

func (o *Orchestrator) checkPrerequisites(ctx context.Context, intent domain.Intent) (domain.Result, error) {
	code, ok := intent.Slots.String(domain.SlotCourseCode)
	if !ok {
		return nil, apperrors.InvalidInput("name the course to check, for example ECO302")
	}
	res, err := o.planner.CheckPrerequisites(ctx, code, intent.Slots.Strings(domain.SlotCompletedCourses))
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (o *Orchestrator) completedCredits(slots domain.Slots) int {
	if v, ok := slots.Int(domain.SlotCompletedCredits); ok {
		return v
	}
	return o.planner.CompletedCredits(slots.Strings(domain.SlotCompletedCourses))
}

func (o *Orchestrator) planSemesters(ctx context.Context, intent domain.Intent) (domain.Result, error) {
	slots := intent.Slots
	credits := o.completedCredits(slots)
	targets := slots.Strings(domain.SlotCourseCodes)

	targetCredits, ok := slots.Int(domain.SlotMaxCredits)
	if !ok {
		targetCredits = domain.CreditLimitForYear(domain.AcademicYear(credits))
	}

	// Without targets the question is about the next term
	terms, ok := slots.Int(domain.SlotTermsRemaining)
	if !ok {
		terms = 1
		if len(targets) > 0 {
			terms = o.cfg.DefaultTermsRemaining
		}
	}

	plan, err := o.planner.Plan(ctx, domain.Background{
		CompletedCourses:  slots.Strings(domain.SlotCompletedCourses),
		TargetCourses:     targets,
		TargetCredits:     targetCredits,
		MaxTermsRemaining: terms,
	})
	if err != nil {
		return nil, err
	}

	return domain.PlanResult{
		Plan:             plan,
		CompletedCredits: credits,
		Workload:         o.planner.AssessWorkload(plan, credits),
	}, nil
}

// careerTag prefers the explicit tag, then keywords in the target program
func careerTag(slots domain.Slots) string {
	if tag, ok := slots.String(domain.SlotCareerTag); ok {
		if _, known := domain.SpecializationByTag(tag); known {
			return tag
		}
	}
	if program, ok := slots.String(domain.SlotTargetProgram); ok {
		if tag, matched := MatchCareerTag(program); matched {
			return tag
		}
	}
	return domain.CareerQuantitativeFinance
}

func (o *Orchestrator) buildPathway(ctx context.Context, intent domain.Intent) (domain.Result, error) {
	slots := intent.Slots
	tag := careerTag(slots)
	track, _ := domain.SpecializationByTag(tag)
	completed := slots.Strings(domain.SlotCompletedCourses)

	var maxCredits *int
	if v, ok := slots.Int(domain.SlotMaxCredits); ok {
		maxCredits = &v
	}
	terms, ok := slots.Int(domain.SlotTermsRemaining)
	if !ok {
		terms = o.cfg.DefaultTermsRemaining
	}
	targets, notOffered := o.planner.Offered(track.CoreSequence)

	bg := domain.Background{
		CompletedCourses:  completed,
		TargetCourses:     targets,
		MaxTermsRemaining: terms,
	}
	if maxCredits != nil {
		bg.TargetCredits = *maxCredits
	}

	var (
		courses []domain.Course
		plan    *domain.SemesterPlan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		courses, err = o.courses.ByCareerTag(gctx, tag, maxCredits)
		return err
	})
	g.Go(func() error {
		var err error
		plan, err = o.planner.Plan(gctx, bg)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	score, gaps := o.planner.AssessPathway(track, plan, completed)
	for _, id := range notOffered {
		gaps = append(gaps, id+" is not offered in the current catalog")
	}

	return domain.PathwayResult{
		CareerTag:      tag,
		Specialization: track.Name,
		Careers:        append([]string(nil), track.Careers...),
		Courses:        courses,
		Plan:           plan,
		AlignmentScore: score,
		Gaps:           gaps,
	}, nil
}
