package analytics

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/amanjaiman/habit-server/server/ai"
	"github.com/amanjaiman/habit-server/store"
)

// Storage is the slice of the store the orchestrator needs.
type Storage interface {
	ListHabits(ctx context.Context, find *store.FindHabit) ([]*store.Habit, error)
	ListGroups(ctx context.Context, find *store.FindGroup) ([]*store.Group, error)
	CreateAnalytics(ctx context.Context, create *store.Analytics) (*store.Analytics, error)
}

// InsightSource is the generator surface the orchestrator drives.
type InsightSource interface {
	AggregateKeyInsights(ctx context.Context, habits []*HabitForAnalytics) ([]KeyInsight, error)
	IndividualHabitKeyInsights(ctx context.Context, habit *HabitForAnalytics) ([]KeyInsight, error)
	SuccessFailurePatterns(ctx context.Context, habits []*HabitForAnalytics, habitOfInterest string) ([]SuccessFailurePattern, error)
	ActionableRecommendations(ctx context.Context, habit *HabitForAnalytics) ([]ActionableRecommendation, error)
	CorrelationInsights(ctx context.Context, habits []*HabitForAnalytics, habitOfInterest string) ([]CorrelationInsight, error)
}

// Options tunes one orchestrator.
type Options struct {
	// LookbackDays is the normalization window length.
	LookbackDays int
	// QualifyGroupHabitNames prefixes group habit names with the group
	// name, avoiding collisions with same-named personal habits.
	QualifyGroupHabitNames bool
	// Now supplies the current time; nil means time.Now. Tests pin it.
	Now func() time.Time
}

// RunReport summarizes one full analytics run.
type RunReport struct {
	// Users is the number of premium users considered.
	Users int
	// Skipped counts users with no habits or no recorded history.
	Skipped int
	// Snapshots counts successfully stored snapshots.
	Snapshots int
	// Calls counts LLM calls attempted.
	Calls int
	// Degraded counts calls that failed and left an empty section.
	Degraded int
	// Failed counts users whose snapshot could not be produced at all.
	Failed int
}

// Orchestrator runs the analytics pipeline for every premium user:
// normalize, generate, assemble, append. Users are processed
// sequentially and in isolation; one user's failure never stops the run.
type Orchestrator struct {
	storage  Storage
	selector PremiumSelector
	source   InsightSource
	limiter  *CallLimiter
	opts     Options
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(storage Storage, selector PremiumSelector, source InsightSource, limiter *CallLimiter, opts Options) *Orchestrator {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 14
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		storage:  storage,
		selector: selector,
		source:   source,
		limiter:  limiter,
		opts:     opts,
	}
}

// GenerateAll runs the pipeline for every premium user and reports the
// outcome. It returns an error only when the premium user list itself
// cannot be fetched.
func (o *Orchestrator) GenerateAll(ctx context.Context) (*RunReport, error) {
	runID := uuid.NewString()
	start := time.Now()

	userIDs, err := o.selector.ListPremiumUserIDs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list premium users")
	}

	report := &RunReport{Users: len(userIDs)}
	slog.Info("analytics run started", "run", runID, "users", len(userIDs))

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		if err := o.generateForUser(ctx, runID, userID, report); err != nil {
			report.Failed++
			slog.Error("analytics generation failed for user", "run", runID, "user", userID, "error", err)
		}
	}

	slog.Info("analytics run finished",
		"run", runID,
		"users", report.Users,
		"skipped", report.Skipped,
		"snapshots", report.Snapshots,
		"calls", report.Calls,
		"degraded", report.Degraded,
		"failed", report.Failed,
		"elapsed", time.Since(start))
	return report, nil
}

func (o *Orchestrator) generateForUser(ctx context.Context, runID string, userID int32, report *RunReport) error {
	habits, err := o.storage.ListHabits(ctx, &store.FindHabit{CreatorID: &userID})
	if err != nil {
		return errors.Wrap(err, "failed to list habits")
	}
	groups, err := o.storage.ListGroups(ctx, &store.FindGroup{MemberID: &userID})
	if err != nil {
		return errors.Wrap(err, "failed to list groups")
	}

	if !hasAnyHabit(habits, groups) || !HasAnyCompletions(habits, groups, userID) {
		report.Skipped++
		slog.Info("skipping user with no habit history", "run", runID, "user", userID)
		return nil
	}

	today := o.opts.Now().UTC()
	normalized := NormalizeHabits(habits, o.opts.LookbackDays, today)
	normalized = append(normalized, NormalizeGroupHabits(groups, userID, o.opts.LookbackDays, today, o.opts.QualifyGroupHabitNames)...)
	warnOnNameCollisions(runID, userID, normalized)

	snapshot := &Snapshot{
		PublishedAt:                today,
		KeyInsights:                []KeyInsight{},
		IndividualHabitKeyInsights: map[string][]KeyInsight{},
		SuccessFailurePatterns:     map[string][]SuccessFailurePattern{},
		ActionableRecommendations:  map[string][]ActionableRecommendation{},
		CorrelationInsights:        map[string][]CorrelationInsight{},
	}

	snapshot.KeyInsights = o.callAggregate(ctx, normalized, report)

	// Fixed per-habit order keeps runs comparable and pacing predictable.
	for _, habit := range normalized {
		snapshot.IndividualHabitKeyInsights[habit.Name] = o.callIndividual(ctx, habit, report)
		snapshot.SuccessFailurePatterns[habit.Name] = o.callPatterns(ctx, normalized, habit.Name, report)
		snapshot.ActionableRecommendations[habit.Name] = o.callRecommendations(ctx, habit, report)
		snapshot.CorrelationInsights[habit.Name] = o.callCorrelations(ctx, normalized, habit.Name, report)
	}

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}
	if _, err := o.storage.CreateAnalytics(ctx, &store.Analytics{
		UserID:      userID,
		PublishedTs: today.Unix(),
		Payload:     string(payload),
	}); err != nil {
		return errors.Wrap(err, "failed to store snapshot")
	}

	report.Snapshots++
	slog.Info("analytics snapshot stored", "run", runID, "user", userID, "habits", len(normalized))
	return nil
}

func (o *Orchestrator) callAggregate(ctx context.Context, habits []*HabitForAnalytics, report *RunReport) []KeyInsight {
	if err := o.limiter.Wait(ctx, ai.CategoryAggregate); err != nil {
		report.Degraded++
		return []KeyInsight{}
	}
	report.Calls++
	insights, err := o.source.AggregateKeyInsights(ctx, habits)
	if err != nil {
		report.Degraded++
	}
	return insights
}

func (o *Orchestrator) callIndividual(ctx context.Context, habit *HabitForAnalytics, report *RunReport) []KeyInsight {
	if err := o.limiter.Wait(ctx, ai.CategoryIndividual); err != nil {
		report.Degraded++
		return []KeyInsight{}
	}
	report.Calls++
	insights, err := o.source.IndividualHabitKeyInsights(ctx, habit)
	if err != nil {
		report.Degraded++
	}
	return insights
}

func (o *Orchestrator) callPatterns(ctx context.Context, habits []*HabitForAnalytics, name string, report *RunReport) []SuccessFailurePattern {
	if err := o.limiter.Wait(ctx, ai.CategoryPatterns); err != nil {
		report.Degraded++
		return []SuccessFailurePattern{}
	}
	report.Calls++
	patterns, err := o.source.SuccessFailurePatterns(ctx, habits, name)
	if err != nil {
		report.Degraded++
	}
	return patterns
}

func (o *Orchestrator) callRecommendations(ctx context.Context, habit *HabitForAnalytics, report *RunReport) []ActionableRecommendation {
	if err := o.limiter.Wait(ctx, ai.CategoryIndividual); err != nil {
		report.Degraded++
		return []ActionableRecommendation{}
	}
	report.Calls++
	recommendations, err := o.source.ActionableRecommendations(ctx, habit)
	if err != nil {
		report.Degraded++
	}
	return recommendations
}

func (o *Orchestrator) callCorrelations(ctx context.Context, habits []*HabitForAnalytics, name string, report *RunReport) []CorrelationInsight {
	if err := o.limiter.Wait(ctx, ai.CategoryCorrelations); err != nil {
		report.Degraded++
		return []CorrelationInsight{}
	}
	report.Calls++
	correlations, err := o.source.CorrelationInsights(ctx, habits, name)
	if err != nil {
		report.Degraded++
	}
	return correlations
}

func hasAnyHabit(habits []*store.Habit, groups []*store.Group) bool {
	if len(habits) > 0 {
		return true
	}
	for _, group := range groups {
		if len(group.Habits) > 0 {
			return true
		}
	}
	return false
}

// warnOnNameCollisions flags duplicate habit names, which silently
// merge in the snapshot's per-habit maps (last writer wins).
func warnOnNameCollisions(runID string, userID int32, habits []*HabitForAnalytics) {
	seen := make(map[string]bool, len(habits))
	for _, habit := range habits {
		if seen[habit.Name] {
			slog.Warn("duplicate habit name, per-habit insights will collide",
				"run", runID, "user", userID, "habit", habit.Name)
		}
		seen[habit.Name] = true
	}
}
