package domain

// SaveState represents a step of the guarded variant save
type SaveState string

const (
	SaveStateIdle              SaveState = "IDLE"
	SaveStateValidating        SaveState = "VALIDATING"
	SaveStateCheckingDuplicate SaveState = "CHECKING_DUPLICATE"
	SaveStateWriting           SaveState = "WRITING"
	SaveStateSucceeded         SaveState = "SUCCEEDED"

	// Failure exits; each one ends the request and returns the machine to IDLE
	SaveStateValidationFailed    SaveState = "VALIDATION_FAILED"
	SaveStateDuplicateFound      SaveState = "DUPLICATE_FOUND"
	SaveStateWriteFailed         SaveState = "WRITE_FAILED"
	SaveStateUpstreamUnavailable SaveState = "UPSTREAM_UNAVAILABLE"
)

// IsTerminal reports whether the request ends in this state
func (s SaveState) IsTerminal() bool {
	switch s {
	case SaveStateSucceeded,
		SaveStateValidationFailed,
		SaveStateDuplicateFound,
		SaveStateWriteFailed,
		SaveStateUpstreamUnavailable:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid
func (s SaveState) CanTransitionTo(next SaveState) bool {
	switch s {
	case SaveStateIdle:
		return next == SaveStateValidating
	case SaveStateValidating:
		return next == SaveStateCheckingDuplicate ||
			next == SaveStateValidationFailed ||
			next == SaveStateUpstreamUnavailable
	case SaveStateCheckingDuplicate:
		return next == SaveStateWriting ||
			next == SaveStateDuplicateFound ||
			next == SaveStateUpstreamUnavailable
	case SaveStateWriting:
		return next == SaveStateSucceeded ||
			next == SaveStateWriteFailed ||
			next == SaveStateUpstreamUnavailable
	case SaveStateSucceeded,
		SaveStateValidationFailed,
		SaveStateDuplicateFound,
		SaveStateWriteFailed,
		SaveStateUpstreamUnavailable:
		return next == SaveStateIdle
	default:
		return false
	}
}

// Outcome returns the caller-facing outcome for a terminal state
func (s SaveState) Outcome() Outcome {
	switch s {
	case SaveStateSucceeded:
		return OutcomeSucceeded
	case SaveStateValidationFailed:
		return OutcomeValidationFailed
	case SaveStateDuplicateFound:
		return OutcomeDuplicateFound
	case SaveStateWriteFailed:
		return OutcomeWriteFailed
	case SaveStateUpstreamUnavailable:
		return OutcomeUpstreamUnavailable
	default:
		return ""
	}
}

// Outcome is the result kind of a variant save
type Outcome string

const (
	OutcomeSucceeded           Outcome = "succeeded"
	OutcomeValidationFailed    Outcome = "validation_failed"
	OutcomeDuplicateFound      Outcome = "duplicate_found"
	OutcomeWriteFailed         Outcome = "write_failed"
	OutcomeUpstreamUnavailable Outcome = "upstream_unavailable"
)
