package model

// Decision is the outcome of evaluating a target's policy for one invocation.
// A nil *Decision means the engine abstained: no policy applied to the target,
// and the host must defer to its own default. Abstention is never represented
// as a denied decision.
type Decision struct {
	Granted bool
}

func NewDecision(granted bool) *Decision {
	return &Decision{Granted: granted}
}
