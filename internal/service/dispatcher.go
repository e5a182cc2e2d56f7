package service

import (
	"strings"

	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/domain"
	apperrors "github.com/acadvisor/acadvisor/internal/pkg/errors"
)

// DefaultConfidenceThreshold is used when the configured threshold is out of range
const DefaultConfidenceThreshold = 0.5

// Dispatcher classifies free text into an intent with slots.
// It is pure: no I/O and the same input always yields the same intent.
type Dispatcher struct {
	rules     []Rule
	byKind    map[domain.IntentKind]Rule
	threshold float64
	logger    *zap.Logger
}

// NewDispatcher creates a dispatcher over DefaultRules
func NewDispatcher(threshold float64, logger *zap.Logger) *Dispatcher {
	return NewDispatcherWithRules(DefaultRules(), threshold, logger)
}

// NewDispatcherWithRules creates a dispatcher over a custom rule table
func NewDispatcherWithRules(rules []Rule, threshold float64, logger *zap.Logger) *Dispatcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	byKind := make(map[domain.IntentKind]Rule)
	for _, r := range rules {
		if r.FollowUp {
			continue
		}
		if _, ok := byKind[r.Kind]; !ok {
			byKind[r.Kind] = r
		}
	}
	return &Dispatcher{rules: rules, byKind: byKind, threshold: threshold, logger: logger}
}

// Threshold returns the confidence a rule must reach
func (d *Dispatcher) Threshold() float64 {
	return d.threshold
}

// Classify returns the first rule, in table order, whose confidence reaches
// the threshold. With a usable previous intent, a follow-up rule scoring at
// least as high as that match takes precedence and reuses the previous
// intent's extractors. Nothing matching yields the unknown intent, not an error.
func (d *Dispatcher) Classify(text string, rc *domain.RequestContext) (domain.Intent, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Intent{}, apperrors.InvalidInput("query text must not be blank")
	}

	query := normalizeQuery(text)
	match, ok := d.match(query, previousIntent(rc))
	if !ok {
		d.logger.Debug("no rule reached threshold", zap.Float64("threshold", d.threshold))
		return domain.UnknownIntent(), nil
	}

	slots := domain.Slots{domain.SlotQuery: query}
	for _, ex := range match.extractors {
		if v, ok := ex.Extract(query); ok {
			slots[ex.Slot] = v
		}
	}
	mergeContext(slots, rc)

	d.logger.Debug("intent classified",
		zap.String("rule", match.rule),
		zap.String("intent", string(match.kind)),
		zap.Float64("confidence", match.confidence),
		zap.Strings("slots", slots.Names()),
	)

	return domain.Intent{
		Kind:       match.kind,
		Confidence: match.confidence,
		Rule:       match.rule,
		Slots:      slots,
	}, nil
}

type ruleMatch struct {
	rule       string
	kind       domain.IntentKind
	extractors []SlotExtractor
	confidence float64
}

func (d *Dispatcher) match(query string, previous domain.IntentKind) (ruleMatch, bool) {
	var (
		best  ruleMatch
		found bool
	)
	for _, rule := range d.rules {
		if rule.FollowUp {
			continue
		}
		if c := rule.Confidence(query); c >= d.threshold {
			best, found = ruleMatch{rule: rule.Name, kind: rule.Kind, extractors: rule.Extractors, confidence: c}, true
			break
		}
	}

	if previous == "" {
		return best, found
	}
	for _, rule := range d.rules {
		if !rule.FollowUp {
			continue
		}
		c := rule.Confidence(query)
		if c >= d.threshold && (!found || c >= best.confidence) {
			return ruleMatch{rule: rule.Name, kind: previous, extractors: d.byKind[previous].Extractors, confidence: c}, true
		}
	}
	return best, found
}

func previousIntent(rc *domain.RequestContext) domain.IntentKind {
	if rc == nil || !rc.PreviousIntent.IsValid() || rc.PreviousIntent == domain.IntentUnknown {
		return ""
	}
	return rc.PreviousIntent
}

// mergeContext fills slots the text did not provide. Text wins on conflict.
func mergeContext(slots domain.Slots, rc *domain.RequestContext) {
	if rc == nil {
		return
	}

	setList := func(name string, values []string) {
		if _, ok := slots[name]; ok || len(values) == 0 {
			return
		}
		ids := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.ToUpper(strings.TrimSpace(v)); v != "" {
				ids = append(ids, v)
			}
		}
		if ids = dedupe(ids); len(ids) > 0 {
			slots[name] = ids
		}
	}
	setInt := func(name string, v *int) {
		if _, ok := slots[name]; ok || v == nil {
			return
		}
		slots[name] = *v
	}
	setString := func(name, v string) {
		if _, ok := slots[name]; ok || strings.TrimSpace(v) == "" {
			return
		}
		slots[name] = strings.TrimSpace(v)
	}

	setList(domain.SlotCompletedCourses, rc.CompletedCourses)
	setInt(domain.SlotCompletedCredits, rc.CompletedCredits)
	setInt(domain.SlotTermsRemaining, rc.TermsRemaining)
	setInt(domain.SlotMaxCredits, rc.MaxCreditsPerTerm)
	setString(domain.SlotTargetProgram, rc.TargetProgram)
	setString(domain.SlotCareerTag, strings.ToLower(rc.CareerTag))
}
