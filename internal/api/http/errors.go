package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wealthpath/edu-gateway/internal/education"
)

// errorBody is the wire shape of every gateway failure: a stable reason code
// plus retry hints. Collaborator-internal details never leave the process.
type errorBody struct {
	Reason        education.Reason `json:"reason"`
	Error         string           `json:"error"`
	Retryable     bool             `json:"retryable"`
	TokenConsumed bool             `json:"token_consumed,omitempty"`
}

// statusFor maps reason codes to HTTP statuses. This mapping is the only
// transport-level knowledge in the repository.
func statusFor(reason education.Reason) int {
	switch reason {
	case education.ReasonTutorialNotFound,
		education.ReasonUnitNotFound,
		education.ReasonTaskNotFound:
		return http.StatusNotFound
	case education.ReasonTaskTypeMismatch,
		education.ReasonInvalidPayload,
		education.ReasonTokenMalformed:
		return http.StatusBadRequest
	case education.ReasonTokenExpired,
		education.ReasonUserNotFound:
		return http.StatusUnauthorized
	case education.ReasonTokenRedeemed,
		education.ReasonTokenMismatched:
		return http.StatusConflict
	case education.ReasonImplausibleElapsed:
		return http.StatusUnprocessableEntity
	case education.ReasonBackendTimeout:
		return http.StatusGatewayTimeout
	case education.ReasonBackendUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Reason: education.ReasonBackendUnavailable, Error: "internal error", Retryable: true}
	var ge *education.Error
	if errors.As(err, &ge) {
		body.Reason = ge.Reason
		body.Error = ge.Error()
		body.Retryable = ge.Retryable
		body.TokenConsumed = ge.TokenConsumed
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(body.Reason))
	_ = json.NewEncoder(w).Encode(body)
}
