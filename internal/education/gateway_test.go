package education

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/timeproof"
)

/* ---------------- fakes ---------------- */

type fakeBackend struct {
	started     map[string]bool
	prior       []SubmissionOutcome
	priorErr    error
	readCalls   int
	submitCalls int
	submitErr   error
	dupExisting *SubmissionOutcome
	lastReq     SubmitRequest
	lastType    curriculum.TaskType
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{started: map[string]bool{}}
}

func (b *fakeBackend) MarkLearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) error {
	b.started[userID+"|"+string(tutorial)] = true
	return nil
}

func (b *fakeBackend) LearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) (bool, error) {
	return b.started[userID+"|"+string(tutorial)], nil
}

func (b *fakeBackend) CreditedOutcomes(ctx context.Context, userID string, tutorial curriculum.Tutorial) ([]SubmissionOutcome, error) {
	b.readCalls++
	return b.prior, b.priorErr
}

func (b *fakeBackend) submit(req SubmitRequest, tt curriculum.TaskType) (SubmissionOutcome, error) {
	b.submitCalls++
	b.lastReq = req
	b.lastType = tt
	if b.dupExisting != nil {
		return SubmissionOutcome{}, &DuplicateCreditError{Existing: *b.dupExisting}
	}
	if b.submitErr != nil {
		return SubmissionOutcome{}, b.submitErr
	}
	return SubmissionOutcome{
		UserID:     req.UserID,
		Tutorial:   req.Tutorial,
		Unit:       req.Unit,
		Task:       req.Task,
		Type:       tt,
		Score:      75,
		ElapsedSec: int64(req.Elapsed.Seconds()),
		IsRetry:    req.IsRetry,
	}, nil
}

func (b *fakeBackend) SubmitText(ctx context.Context, req SubmitRequest, p TextPayload) (SubmissionOutcome, error) {
	return b.submit(req, curriculum.TaskText)
}
func (b *fakeBackend) SubmitTest(ctx context.Context, req SubmitRequest, p TestPayload) (SubmissionOutcome, error) {
	return b.submit(req, curriculum.TaskTest)
}
func (b *fakeBackend) SubmitVideo(ctx context.Context, req SubmitRequest, p VideoPayload) (SubmissionOutcome, error) {
	return b.submit(req, curriculum.TaskVideo)
}
func (b *fakeBackend) SubmitCase(ctx context.Context, req SubmitRequest, p CasePayload) (SubmissionOutcome, error) {
	return b.submit(req, curriculum.TaskCase)
}
func (b *fakeBackend) SubmitTrueFalse(ctx context.Context, req SubmitRequest, p TrueFalsePayload) (SubmissionOutcome, error) {
	return b.submit(req, curriculum.TaskTrueFalse)
}
func (b *fakeBackend) SubmitGame(ctx context.Context, req SubmitRequest, p GamePayload) (SubmissionOutcome, error) {
	return b.submit(req, curriculum.TaskGame)
}

type fakeRedeemer struct {
	elapsed time.Duration
	err     error
	calls   int
}

func (r *fakeRedeemer) Redeem(ctx context.Context, token string, tutorial curriculum.Tutorial, unit, task int) (time.Duration, error) {
	r.calls++
	return r.elapsed, r.err
}

func newGateway(b *fakeBackend, r *fakeRedeemer) *Gateway {
	return NewGateway(curriculum.Default(), b, r, time.Second)
}

func textSubmission(unit, task int, retry bool) TaskSubmission {
	return TaskSubmission{
		UserID:    "u1",
		Tutorial:  curriculum.TutorialPersonalFinance,
		Unit:      unit,
		Task:      task,
		Payload:   json.RawMessage(`{}`),
		TimeToken: "a.b.c",
		IsRetry:   retry,
	}
}

/* ---------------- tests ---------------- */

func TestSubmitUnknownUnitNoRemoteCalls(t *testing.T) {
	b := newFakeBackend()
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	_, err := gw.SubmitTask(context.Background(), textSubmission(9, 1, false))
	if ReasonOf(err) != ReasonUnitNotFound {
		t.Fatalf("reason = %s, want unit_not_found", ReasonOf(err))
	}
	if b.readCalls != 0 || b.submitCalls != 0 || r.calls != 0 {
		t.Fatalf("remote calls made for invalid unit: reads=%d submits=%d redeems=%d", b.readCalls, b.submitCalls, r.calls)
	}
}

func TestSubmitInvalidPayloadNoRemoteCalls(t *testing.T) {
	b := newFakeBackend()
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	sub := textSubmission(1, 2, false) // task 2 is a test
	sub.Payload = json.RawMessage(`{}`)
	_, err := gw.SubmitTask(context.Background(), sub)
	if ReasonOf(err) != ReasonInvalidPayload {
		t.Fatalf("reason = %s, want invalid_payload", ReasonOf(err))
	}
	if b.readCalls != 0 || b.submitCalls != 0 || r.calls != 0 {
		t.Fatal("remote calls made for invalid payload")
	}
}

func TestSubmitDeclaredTypeMismatch(t *testing.T) {
	b := newFakeBackend()
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	sub := textSubmission(1, 1, false)
	sub.Type = curriculum.TaskGame // task 1 is text
	_, err := gw.SubmitTask(context.Background(), sub)
	if ReasonOf(err) != ReasonTaskTypeMismatch {
		t.Fatalf("reason = %s, want task_type_mismatch", ReasonOf(err))
	}
	if r.calls != 0 || b.submitCalls != 0 {
		t.Fatal("remote calls made for type mismatch")
	}
}

func TestSubmitFirstAttempt(t *testing.T) {
	b := newFakeBackend()
	r := &fakeRedeemer{elapsed: 42 * time.Second}
	gw := newGateway(b, r)

	out, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, false))
	if err != nil {
		t.Fatalf("SubmitTask: %v", err)
	}
	if out.Score != 75 {
		t.Fatalf("score = %v, want backend's 75", out.Score)
	}
	if r.calls != 1 {
		t.Fatalf("redeem calls = %d, want 1", r.calls)
	}
	if b.submitCalls != 1 {
		t.Fatalf("submit calls = %d, want 1", b.submitCalls)
	}
	if b.lastReq.Elapsed != 42*time.Second {
		t.Fatalf("elapsed forwarded = %v, want 42s", b.lastReq.Elapsed)
	}
	if b.lastType != curriculum.TaskText {
		t.Fatalf("dispatched type = %s, want text", b.lastType)
	}
}

func TestSubmitDuplicateShortCircuits(t *testing.T) {
	b := newFakeBackend()
	b.prior = []SubmissionOutcome{{Unit: 1, Task: 1, Type: curriculum.TaskText, Score: 90}}
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	out, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, false))
	if err != nil {
		t.Fatalf("duplicate must not error: %v", err)
	}
	if out.Score != 90 {
		t.Fatalf("score = %v, want stored 90", out.Score)
	}
	if r.calls != 0 {
		t.Fatal("duplicate consumed a token")
	}
	if b.submitCalls != 0 {
		t.Fatal("duplicate re-invoked the scoring backend")
	}
}

func TestSubmitTokenErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want Reason
	}{
		{timeproof.ErrMalformed, ReasonTokenMalformed},
		{timeproof.ErrExpired, ReasonTokenExpired},
		{timeproof.ErrAlreadyRedeemed, ReasonTokenRedeemed},
		{timeproof.ErrMismatched, ReasonTokenMismatched},
	}
	for _, tc := range tests {
		t.Run(string(tc.want), func(t *testing.T) {
			b := newFakeBackend()
			r := &fakeRedeemer{err: tc.err}
			gw := newGateway(b, r)

			_, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, false))
			if ReasonOf(err) != tc.want {
				t.Fatalf("reason = %s, want %s", ReasonOf(err), tc.want)
			}
			if b.submitCalls != 0 {
				t.Fatal("dispatched despite failed redemption")
			}
		})
	}
}

func TestSubmitDispatchFailureMarksTokenConsumed(t *testing.T) {
	b := newFakeBackend()
	b.submitErr = errors.New("boom")
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	_, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, false))
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if ge.Reason != ReasonBackendUnavailable {
		t.Fatalf("reason = %s, want backend_unavailable", ge.Reason)
	}
	if !ge.TokenConsumed {
		t.Fatal("post-redeem failure must report the token as consumed")
	}
	if !ge.Retryable {
		t.Fatal("backend failure must be retryable")
	}
}

func TestSubmitDispatchTimeout(t *testing.T) {
	b := newFakeBackend()
	b.submitErr = context.DeadlineExceeded
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	_, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, false))
	var ge *Error
	if !errors.As(err, &ge) || ge.Reason != ReasonBackendTimeout {
		t.Fatalf("err = %v, want backend_timeout", err)
	}
	if !ge.TokenConsumed {
		t.Fatal("timeout after redeem must report the token as consumed")
	}
}

func TestSubmitToleratesBackendDuplicate(t *testing.T) {
	b := newFakeBackend()
	b.dupExisting = &SubmissionOutcome{Unit: 1, Task: 1, Type: curriculum.TaskText, Score: 64}
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	out, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, false))
	if err != nil {
		t.Fatalf("backend duplicate must not error: %v", err)
	}
	if out.Score != 64 {
		t.Fatalf("score = %v, want winner's 64", out.Score)
	}
}

func TestSubmitRetryAlwaysDispatches(t *testing.T) {
	b := newFakeBackend()
	b.prior = []SubmissionOutcome{{Unit: 1, Task: 1, Type: curriculum.TaskText, Score: 90}}
	r := &fakeRedeemer{elapsed: time.Minute}
	gw := newGateway(b, r)

	for i := 0; i < 3; i++ {
		if _, err := gw.SubmitTask(context.Background(), textSubmission(1, 1, true)); err != nil {
			t.Fatalf("retry %d: %v", i+1, err)
		}
	}
	if b.submitCalls != 3 {
		t.Fatalf("submit calls = %d, want 3", b.submitCalls)
	}
	if !b.lastReq.IsRetry {
		t.Fatal("retry flag not forwarded to the backend")
	}
}

func TestMarkStartedUnknownTutorial(t *testing.T) {
	gw := newGateway(newFakeBackend(), &fakeRedeemer{})
	err := gw.MarkStarted(context.Background(), "u1", curriculum.Tutorial("daytrading"))
	if ReasonOf(err) != ReasonTutorialNotFound {
		t.Fatalf("reason = %s, want tutorial_not_found", ReasonOf(err))
	}
}
