package calibration

import (
	"sync/atomic"
	"time"

	"github.com/yourusername/trade-journal/internal/growth"
)

// Activation is a fitted policy in service
type Activation struct {
	Score       CandidateScore
	Cases       int
	ActivatedAt time.Time
}

// ActivePolicy holds the most recently fitted policy. It is safe for
// concurrent use: a recalibration job stores while handlers load.
type ActivePolicy struct {
	current atomic.Pointer[Activation]
}

// Store activates the score's policy. Scores without a policy are ignored.
func (a *ActivePolicy) Store(score CandidateScore, cases int) bool {
	if score.FractionPolicy() == nil {
		return false
	}
	a.current.Store(&Activation{Score: score, Cases: cases, ActivatedAt: time.Now().UTC()})
	return true
}

// Load returns the active activation, if any
func (a *ActivePolicy) Load() (Activation, bool) {
	act := a.current.Load()
	if act == nil {
		return Activation{}, false
	}
	return *act, true
}

// Policy returns the active policy, or fallback when nothing has been fitted
func (a *ActivePolicy) Policy(fallback growth.FractionPolicy) growth.FractionPolicy {
	if act, ok := a.Load(); ok {
		return act.Score.FractionPolicy()
	}
	return fallback
}
