package verify

import "fmt"

// State is a verifier phase. A run walks INIT → SELF_CHECK → DRIFT_CHECK →
// TRUST_CHECK and terminates in SUCCESS or FAIL; a self-integrity failure
// jumps straight from SELF_CHECK to FAIL.
type State int

const (
	StateInit State = iota
	StateSelfCheck
	StateDriftCheck
	StateTrustCheck
	StateSuccess
	StateFail
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateSelfCheck:
		return "SELF_CHECK"
	case StateDriftCheck:
		return "DRIFT_CHECK"
	case StateTrustCheck:
		return "TRUST_CHECK"
	case StateSuccess:
		return "SUCCESS"
	case StateFail:
		return "FAIL"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IsTerminal reports whether the state is terminal (finished).
func IsTerminal(s State) bool {
	return s == StateSuccess || s == StateFail
}

// transition validates and performs a state change. The caller supplies the
// expected prior state to make sequencing bugs observable.
func transition(cur *State, from, to State) error {
	if *cur != from {
		return fmt.Errorf("invalid transition: expected %s, got %s", from, *cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	*cur = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case StateInit:
		return to == StateSelfCheck
	case StateSelfCheck:
		return to == StateDriftCheck || to == StateFail
	case StateDriftCheck:
		return to == StateTrustCheck
	case StateTrustCheck:
		return to == StateSuccess || to == StateFail
	default:
		return false
	}
}
