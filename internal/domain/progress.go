package domain

import (
	"errors"
	"math"
)

// ErrInvalidGoalState indicates a goal with a non-positive start weight.
// The store constraint makes this impossible for correctly created goals,
// but legacy or corrupted rows used to complete instantly on the first
// entry, so the predicate refuses to evaluate them.
var ErrInvalidGoalState = errors.New("goal has a non-positive start weight")

// MeetsGoal reports whether a measured weight satisfies the goal's target.
// Loss goals are satisfied at or below the target, gain goals at or above.
func MeetsGoal(weight float64, g Goal) (bool, error) {
	if g.StartWeight <= 0 {
		return false, ErrInvalidGoalState
	}
	if g.IsLossGoal() {
		return weight <= g.TargetWeight, nil
	}
	return weight >= g.TargetWeight, nil
}

// Overachievement returns how far a weight is from the goal's target and
// whether it strictly passed the target in the goal's direction. Display
// information only; completion semantics live in MeetsGoal.
func Overachievement(weight float64, g Goal) (exceededBy float64, overAchieved bool) {
	exceededBy = math.Abs(weight - g.TargetWeight)
	if g.IsLossGoal() {
		return exceededBy, weight < g.TargetWeight
	}
	return exceededBy, weight > g.TargetWeight
}
