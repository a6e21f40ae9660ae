package education

import (
	"context"
	"errors"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/timeproof"
)

// Gateway is the single entry point the transport layer consumes. It owns no
// locks and no mutable state; every remote call is bounded by callTimeout and
// safe to run with unbounded parallel callers.
type Gateway struct {
	catalog     curriculum.Catalog
	backend     RewardBackend
	redeemer    TimeProofRedeemer
	dispatcher  *Dispatcher
	aggregator  *Aggregator
	callTimeout time.Duration
}

func NewGateway(catalog curriculum.Catalog, backend RewardBackend, redeemer TimeProofRedeemer, callTimeout time.Duration) *Gateway {
	if callTimeout <= 0 {
		callTimeout = 10 * time.Second
	}
	return &Gateway{
		catalog:     catalog,
		backend:     backend,
		redeemer:    redeemer,
		dispatcher:  NewDispatcher(),
		aggregator:  NewAggregator(catalog, backend),
		callTimeout: callTimeout,
	}
}

// SubmitTask runs the submission pipeline: catalog validation, payload shape,
// idempotency classification, time-proof redemption, dispatch. Token
// redemption always precedes dispatch; no score is produced without a valid,
// bound time proof. A duplicate non-retry submission returns the previously
// credited outcome verbatim without touching the token or the scoring ops.
func (g *Gateway) SubmitTask(ctx context.Context, sub TaskSubmission) (SubmissionOutcome, error) {
	declared, err := g.catalog.ResolveTask(sub.Tutorial, sub.Unit, sub.Task)
	if err != nil {
		return SubmissionOutcome{}, catalogError(err)
	}
	if sub.Type != "" && sub.Type != declared {
		return SubmissionOutcome{}, newError(ReasonTaskTypeMismatch, errors.New("declared task type does not match the curriculum"))
	}
	payload, err := g.dispatcher.Decode(declared, sub.Payload)
	if err != nil {
		return SubmissionOutcome{}, err
	}

	// Fresh prior-state snapshot per call. Fast path only: two concurrent
	// first attempts race at the backend's conditional insert.
	prior, err := g.creditedOutcomes(ctx, sub.UserID, sub.Tutorial)
	if err != nil {
		return SubmissionOutcome{}, err
	}
	decision := Classify(sub, prior)
	if decision.Kind == Duplicate {
		return *decision.Existing, nil
	}

	elapsed, err := g.redeem(ctx, sub)
	if err != nil {
		return SubmissionOutcome{}, err
	}

	// From here on the token is consumed; failures must say so.
	req := SubmitRequest{
		UserID:   sub.UserID,
		Tutorial: sub.Tutorial,
		Unit:     sub.Unit,
		Task:     sub.Task,
		Elapsed:  elapsed,
		IsRetry:  sub.IsRetry,
	}
	dctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	outcome, err := g.dispatcher.Dispatch(dctx, g.backend, declared, req, payload)
	if err != nil {
		var dup *DuplicateCreditError
		if errors.As(err, &dup) {
			// The backend credited another submission first. Same answer as
			// the local duplicate short-circuit: hand back what won.
			return dup.Existing, nil
		}
		var ge *Error
		if errors.As(err, &ge) {
			ge.TokenConsumed = true
			return SubmissionOutcome{}, ge
		}
		be := backendError(err)
		be.TokenConsumed = true
		return SubmissionOutcome{}, be
	}
	return outcome, nil
}

// GetDashboard returns the tutorial dashboard for a learner.
func (g *Gateway) GetDashboard(ctx context.Context, userID string, tutorial curriculum.Tutorial) (DashboardState, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	return g.aggregator.Dashboard(ctx, userID, tutorial)
}

// GetUnitState returns the finish state of one unit for a learner.
func (g *Gateway) GetUnitState(ctx context.Context, userID string, tutorial curriculum.Tutorial, unit int) (UnitProgress, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	return g.aggregator.UnitState(ctx, userID, tutorial, unit)
}

// MarkStarted records that the learner opened the tutorial, flipping the
// dashboard's available flag.
func (g *Gateway) MarkStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) error {
	if _, err := g.catalog.Units(tutorial); err != nil {
		return newError(ReasonTutorialNotFound, err)
	}
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	if err := g.backend.MarkLearningStarted(ctx, userID, tutorial); err != nil {
		return backendError(err)
	}
	return nil
}

func (g *Gateway) creditedOutcomes(ctx context.Context, userID string, tutorial curriculum.Tutorial) ([]SubmissionOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	prior, err := g.backend.CreditedOutcomes(ctx, userID, tutorial)
	if err != nil {
		return nil, backendError(err)
	}
	return prior, nil
}

func (g *Gateway) redeem(ctx context.Context, sub TaskSubmission) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()
	elapsed, err := g.redeemer.Redeem(ctx, sub.TimeToken, sub.Tutorial, sub.Unit, sub.Task)
	if err != nil {
		switch {
		case errors.Is(err, timeproof.ErrMalformed):
			return 0, newError(ReasonTokenMalformed, err)
		case errors.Is(err, timeproof.ErrExpired):
			return 0, newError(ReasonTokenExpired, err)
		case errors.Is(err, timeproof.ErrAlreadyRedeemed):
			return 0, newError(ReasonTokenRedeemed, err)
		case errors.Is(err, timeproof.ErrMismatched):
			return 0, newError(ReasonTokenMismatched, err)
		}
		return 0, backendError(err)
	}
	return elapsed, nil
}

// backendError folds a raw collaborator failure into the transient taxonomy.
func backendError(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Reason: ReasonBackendTimeout, Retryable: true, Err: err}
	}
	return &Error{Reason: ReasonBackendUnavailable, Retryable: true, Err: err}
}
