package tasks

import (
	"github.com/desertthunder/raccclo/internal/models"
)

// KindCounts aggregates outcome statuses for one item kind.
type KindCounts struct {
	Created       int `json:"created"`
	AlreadyExists int `json:"already_exists"`
	Failed        int `json:"failed"`
	Total         int `json:"total"`
}

// RunSummary aggregates per-kind and overall counts for a clone run.
type RunSummary struct {
	Subreddits    KindCounts `json:"subreddits"`
	Multireddits  KindCounts `json:"multireddits"`
	Created       int        `json:"created"`
	AlreadyExists int        `json:"already_exists"`
	Failed        int        `json:"failed"`
	Total         int        `json:"total"`
}

func countOutcomes(outcomes []models.Outcome) KindCounts {
	counts := KindCounts{Total: len(outcomes)}
	for _, outcome := range outcomes {
		switch outcome.Status {
		case models.StatusCreated:
			counts.Created++
		case models.StatusAlreadyExists:
			counts.AlreadyExists++
		case models.StatusFailed:
			counts.Failed++
		}
	}
	return counts
}

// BuildSummary tallies recorded outcomes into per-kind and overall counts.
func BuildSummary(subreddits, multireddits []models.Outcome) RunSummary {
	subs := countOutcomes(subreddits)
	multis := countOutcomes(multireddits)

	return RunSummary{
		Subreddits:    subs,
		Multireddits:  multis,
		Created:       subs.Created + multis.Created,
		AlreadyExists: subs.AlreadyExists + multis.AlreadyExists,
		Failed:        subs.Failed + multis.Failed,
		Total:         subs.Total + multis.Total,
	}
}

// Outcomes returns every recorded outcome in apply order, subreddits first.
func (r *CloneRunResult) Outcomes() []models.Outcome {
	outcomes := make([]models.Outcome, 0, len(r.Subreddits)+len(r.Multireddits))
	outcomes = append(outcomes, r.Subreddits...)
	outcomes = append(outcomes, r.Multireddits...)
	return outcomes
}

// Failed returns every failed outcome from the run in apply order.
func (r *CloneRunResult) Failed() []models.Outcome {
	var failed []models.Outcome
	for _, outcome := range r.Outcomes() {
		if outcome.Status == models.StatusFailed {
			failed = append(failed, outcome)
		}
	}
	return failed
}
