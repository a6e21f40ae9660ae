package education

import (
	"errors"
	"fmt"
)

// Reason is a stable, enumerable failure code. Transport layers map reasons
// to status codes; collaborator-internal details never cross this boundary.
type Reason string

const (
	ReasonTutorialNotFound Reason = "tutorial_not_found"
	ReasonUnitNotFound     Reason = "unit_not_found"
	ReasonTaskNotFound     Reason = "task_not_found"
	ReasonTaskTypeMismatch Reason = "task_type_mismatch"
	ReasonInvalidPayload   Reason = "invalid_payload"

	ReasonTokenMalformed  Reason = "time_token_malformed"
	ReasonTokenExpired    Reason = "time_token_expired"
	ReasonTokenRedeemed   Reason = "time_token_redeemed"
	ReasonTokenMismatched Reason = "time_token_mismatched"

	// ReasonImplausibleElapsed is the reward backend's anti-cheat rejection
	// for elapsed times too short to be real engagement.
	ReasonImplausibleElapsed Reason = "implausible_elapsed"

	ReasonBackendUnavailable Reason = "backend_unavailable"
	ReasonBackendTimeout     Reason = "backend_timeout"

	ReasonUserNotFound Reason = "user_not_found"
)

// Error is the gateway's typed failure. Retryable means the caller may retry
// the whole submission as-is; TokenConsumed warns that the time-proof token
// was redeemed before the failure, so a retry needs a freshly issued token.
type Error struct {
	Reason        Reason
	Retryable     bool
	TokenConsumed bool
	Err           error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return string(e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(reason Reason, err error) *Error {
	return &Error{Reason: reason, Err: err}
}

// ReasonOf extracts the reason code from any error returned by the gateway.
// Unknown errors report backend_unavailable, the conservative transient code.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonBackendUnavailable
}

// DuplicateCreditError is returned by a reward backend when a conditional
// credit insert lost the race: another submission for the same key was
// credited first. It carries the outcome that won so callers can hand it
// back verbatim.
type DuplicateCreditError struct {
	Existing SubmissionOutcome
}

func (e *DuplicateCreditError) Error() string { return "submission already credited" }
