package classifier

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/oceanwatch/marinewatch/internal/models"
)

var (
	// ErrSweepInProgress: a sweep was requested while one is running. The
	// request is dropped, not queued; callers treat this as a no-op.
	ErrSweepInProgress = errors.New("classification sweep already in progress")
	// ErrClassifierUnavailable: the health probe failed, the sweep was
	// skipped entirely and no report was touched.
	ErrClassifierUnavailable = errors.New("classifier service unavailable")
)

// Predictor is what the orchestrator needs from the classifier client.
type Predictor interface {
	Health(ctx context.Context) error
	Classify(ctx context.Context, imageURL, token string) (*Prediction, error)
}

// CandidateResolver produces the ordered evidence locations for a report.
type CandidateResolver interface {
	ResolveCandidates(r *models.Report) []string
}

// ReportUpdater applies prediction results field-scoped: only the predicted
// columns may change, never status or anything the moderation side owns.
type ReportUpdater interface {
	UpdatePrediction(id uuid.UUID, label string, plasticProb, oilProb float64, isWater bool) error
}

// Orchestrator state, an explicit two-state variable rather than an implicit
// recursion guard.
const (
	stateIdle int32 = iota
	stateSweeping
)

type SweepResult struct {
	Examined   int
	Classified int
	Undetected int
	Skipped    int
	Duration   time.Duration
}

// Orchestrator drives best-effort, idempotent classification sweeps. A sweep
// walks the report list in order, resolves each report's candidate locations
// and tries them sequentially against the predictor, applying each result to
// shared state before the next report starts.
type Orchestrator struct {
	predictor Predictor
	resolver  CandidateResolver
	updater   ReportUpdater
	state     atomic.Int32
}

func NewOrchestrator(predictor Predictor, resolver CandidateResolver, updater ReportUpdater) *Orchestrator {
	return &Orchestrator{
		predictor: predictor,
		resolver:  resolver,
		updater:   updater,
	}
}

// Sweeping reports whether a sweep is currently running.
func (o *Orchestrator) Sweeping() bool {
	return o.state.Load() == stateSweeping
}

// Sweep runs one pass over the given reports. At most one sweep runs at a
// time; a second invocation returns ErrSweepInProgress without queuing.
// Failures never propagate per-report: candidate exhaustion degrades to an
// undetected label, and only an unhealthy classifier aborts the pass.
func (o *Orchestrator) Sweep(ctx context.Context, reports []models.Report, token string) (*SweepResult, error) {
	if !o.state.CompareAndSwap(stateIdle, stateSweeping) {
		return nil, ErrSweepInProgress
	}
	defer o.state.Store(stateIdle)

	if err := o.predictor.Health(ctx); err != nil {
		slog.Warn("classifier health probe failed, skipping sweep", "error", err)
		return nil, ErrClassifierUnavailable
	}

	start := time.Now()
	result := &SweepResult{}

	for i := range reports {
		r := &reports[i]
		result.Examined++

		if StateOf(r).Sticky() {
			result.Skipped++
			continue
		}

		candidates := o.resolver.ResolveCandidates(r)
		if len(candidates) == 0 {
			// No resolvable evidence: terminal undetected, no network call.
			o.apply(r, Prediction{PredictedLabel: models.LabelUndetected})
			result.Undetected++
			continue
		}

		prediction := o.classifyFirstSuccess(ctx, r.ID, candidates, token)
		if prediction == nil {
			o.apply(r, Prediction{PredictedLabel: models.LabelUndetected})
			result.Undetected++
			continue
		}

		o.apply(r, *prediction)
		result.Classified++
	}

	result.Duration = time.Since(start)
	slog.Info("classification sweep completed",
		"examined", result.Examined,
		"classified", result.Classified,
		"undetected", result.Undetected,
		"skipped", result.Skipped,
		"duration", result.Duration)
	return result, nil
}

// classifyFirstSuccess tries candidates strictly in order. Each failed call
// falls through to the next mirror, no retry of the same one; nil means every
// candidate failed.
func (o *Orchestrator) classifyFirstSuccess(ctx context.Context, reportID uuid.UUID, candidates []string, token string) *Prediction {
	for _, url := range candidates {
		prediction, err := o.predictor.Classify(ctx, url, token)
		if err != nil {
			slog.Debug("candidate classification failed",
				"report_id", reportID.String(), "url", url, "error", err)
			continue
		}
		return prediction
	}
	return nil
}

// apply writes the prediction to shared report state immediately, so readers
// observe each report's result as it lands rather than at sweep end. The
// in-memory copy is updated alongside the store to keep the slice coherent
// for the caller.
func (o *Orchestrator) apply(r *models.Report, p Prediction) {
	if err := o.updater.UpdatePrediction(r.ID, p.PredictedLabel, p.PlasticProb, p.OilProb, p.IsWaterDetection); err != nil {
		slog.Error("failed to persist prediction",
			"report_id", r.ID.String(), "label", p.PredictedLabel, "error", err)
		return
	}

	label := p.PredictedLabel
	now := time.Now().UTC()
	r.PredictedLabel = &label
	r.PlasticProbability = &p.PlasticProb
	r.OilProbability = &p.OilProb
	r.IsWaterDetection = p.IsWaterDetection
	r.ClassifiedAt = &now
}
