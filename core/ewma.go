package core

import (
	"github.com/signalsfoundry/contact-graph-router/model"
)

// WaitPenalty smooths the observed first-hop wait of successive planning
// cycles into a per-contact penalty, damping oscillation when several
// near-equal candidates compete for the same first hop. The penalty is a
// hint, not a contract: it is applied only to SetupS on a working copy of
// the plan and never changes the feasibility arithmetic of the true plan.
type WaitPenalty struct {
	alpha   float64
	lambda  float64
	penalty []float64
}

// NewWaitPenalty creates a learner over n contacts. alpha in [0,1]
// controls smoothing, lambda >= 0 controls how strongly the learned
// penalty inflates setup time on planning copies. Out-of-range values
// are clamped.
func NewWaitPenalty(n int, alpha, lambda float64) *WaitPenalty {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	if lambda < 0 {
		lambda = 0
	}
	return &WaitPenalty{
		alpha:   alpha,
		lambda:  lambda,
		penalty: make([]float64, n),
	}
}

// Observe folds the wait seen on first-hop contact idx into its penalty
// with exponential smoothing.
func (w *WaitPenalty) Observe(idx int, wait float64) {
	if w == nil || idx < 0 || idx >= len(w.penalty) {
		return
	}
	if wait < 0 {
		wait = 0
	}
	w.penalty[idx] = (1-w.alpha)*w.penalty[idx] + w.alpha*wait
}

// Penalty returns the current smoothed wait for contact idx.
func (w *WaitPenalty) Penalty(idx int) float64 {
	if w == nil || idx < 0 || idx >= len(w.penalty) {
		return 0
	}
	return w.penalty[idx]
}

// Apply returns a copy of plan in which every contact's SetupS is
// augmented by lambda times its learned penalty. The input plan is left
// untouched. Plans longer than the learner (periodized copies) wrap
// modulo the learner size so both shifted copies of a base contact share
// its penalty.
func (w *WaitPenalty) Apply(plan []model.Contact) []model.Contact {
	out := model.ClonePlan(plan)
	if w == nil || len(w.penalty) == 0 || w.lambda == 0 {
		return out
	}
	for i := range out {
		out[i].SetupS += w.lambda * w.penalty[i%len(w.penalty)]
	}
	return out
}
