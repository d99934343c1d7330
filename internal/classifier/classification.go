package classifier

import "github.com/oceanwatch/marinewatch/internal/models"

// Kind is the classification lifecycle state of a report. Confirmed labels
// are sticky across sweeps; everything else stays eligible for another pass.
type Kind int

const (
	// KindUnclassified: no sweep has touched the report yet.
	KindUnclassified Kind = iota
	// KindRetryable: a sweep ran but found nothing (undetected/none); the
	// next sweep tries again.
	KindRetryable
	// KindConfirmed: a pollution label with its probabilities. Never
	// re-classified.
	KindConfirmed
)

type State struct {
	Kind        Kind
	Label       string
	PlasticProb float64
	OilProb     float64
}

// retryableLabel reports whether a predicted label leaves the report
// eligible for another sweep.
func retryableLabel(label string) bool {
	switch label {
	case "", models.LabelNone, models.LabelUndetected, "unknown":
		return true
	}
	return false
}

// StateOf derives the classification state from a report's predicted fields.
func StateOf(r *models.Report) State {
	if r.PredictedLabel == nil {
		return State{Kind: KindUnclassified}
	}
	label := *r.PredictedLabel
	if retryableLabel(label) {
		return State{Kind: KindRetryable, Label: label}
	}

	s := State{Kind: KindConfirmed, Label: label}
	if r.PlasticProbability != nil {
		s.PlasticProb = *r.PlasticProbability
	}
	if r.OilProbability != nil {
		s.OilProb = *r.OilProbability
	}
	return s
}

// Sticky reports whether a sweep must leave the report alone.
func (s State) Sticky() bool {
	return s.Kind == KindConfirmed
}
