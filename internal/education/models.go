package education

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

// TaskSubmission is one gateway call's worth of input. It lives for the
// duration of the call; durable state belongs to the collaborators.
type TaskSubmission struct {
	UserID    string
	Tutorial  curriculum.Tutorial
	Unit      int
	Task      int
	Type      curriculum.TaskType // declared by the caller, checked against the catalog
	Payload   json.RawMessage
	TimeToken string
	IsRetry   bool
}

// SubmissionOutcome is the scored result of one accepted submission.
type SubmissionOutcome struct {
	UserID     string              `json:"-"`
	Tutorial   curriculum.Tutorial `json:"tutorial"`
	Unit       int                 `json:"unit"`
	Task       int                 `json:"task"`
	Type       curriculum.TaskType `json:"type"`
	Score      float64             `json:"score"`
	ElapsedSec int64               `json:"elapsed_sec"`
	IsRetry    bool                `json:"is_retry"`
	RecordedAt int64               `json:"recorded_at"`
}

// TaskProgress is one task slot inside a unit view.
type TaskProgress struct {
	Task    int                 `json:"task"`
	Type    curriculum.TaskType `json:"type"`
	Done    bool                `json:"done"`
	Outcome *SubmissionOutcome  `json:"outcome,omitempty"`
}

// UnitProgress is derived on demand from backend-stored outcomes; the
// gateway never caches it across calls.
type UnitProgress struct {
	Unit       int            `json:"unit"`
	Title      string         `json:"title"`
	Tasks      []TaskProgress `json:"tasks"`
	Completed  bool           `json:"completed"`
	TotalScore float64        `json:"total_score"`
}

// UnitSummary is the dashboard row for one unit.
type UnitSummary struct {
	Unit       int     `json:"unit"`
	Title      string  `json:"title"`
	DoneTasks  int     `json:"done_tasks"`
	TotalTasks int     `json:"total_tasks"`
	Completed  bool    `json:"completed"`
	TotalScore float64 `json:"total_score"`
}

// TotalProgress aggregates a whole tutorial.
type TotalProgress struct {
	CompletedUnits int     `json:"completed_units"`
	TotalUnits     int     `json:"total_units"`
	TotalScore     float64 `json:"total_score"`
}

// DashboardState is the learner-facing tutorial view. Available reflects
// whether the learner has marked the tutorial started.
type DashboardState struct {
	Tutorial      curriculum.Tutorial `json:"tutorial"`
	Available     bool                `json:"available"`
	Units         []UnitSummary       `json:"units"`
	TotalProgress TotalProgress       `json:"total_progress"`
}

// Per-type payload schemas. Text, video and game tasks carry no answers;
// submitting them attests completion and the reward backend scores the
// engagement. The others carry learner answers the backend grades.

type TextPayload struct{}

type VideoPayload struct{}

type GamePayload struct{}

type TestPayload struct {
	Answers []int `json:"answers"` // selected option index per question
}

type CasePayload struct {
	Answer string `json:"answer"`
}

type TrueFalsePayload struct {
	Answers []bool `json:"answers"`
}

// SubmitRequest is the type-independent part every reward submit operation
// receives alongside its decoded payload.
type SubmitRequest struct {
	UserID   string
	Tutorial curriculum.Tutorial
	Unit     int
	Task     int
	Elapsed  time.Duration
	IsRetry  bool
}

// RewardBackend is the scoring/reward collaborator. It is the system of
// record for at-most-once crediting: non-retry submit operations must insert
// the credit conditionally and report a DuplicateCreditError when the key is
// already credited.
type RewardBackend interface {
	MarkLearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) error
	LearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) (bool, error)

	// CreditedOutcomes returns the stored credit row per (unit, task). Scores
	// already reflect the backend's own retry-weighting policy.
	CreditedOutcomes(ctx context.Context, userID string, tutorial curriculum.Tutorial) ([]SubmissionOutcome, error)

	SubmitText(ctx context.Context, req SubmitRequest, p TextPayload) (SubmissionOutcome, error)
	SubmitTest(ctx context.Context, req SubmitRequest, p TestPayload) (SubmissionOutcome, error)
	SubmitVideo(ctx context.Context, req SubmitRequest, p VideoPayload) (SubmissionOutcome, error)
	SubmitCase(ctx context.Context, req SubmitRequest, p CasePayload) (SubmissionOutcome, error)
	SubmitTrueFalse(ctx context.Context, req SubmitRequest, p TrueFalsePayload) (SubmissionOutcome, error)
	SubmitGame(ctx context.Context, req SubmitRequest, p GamePayload) (SubmissionOutcome, error)
}

// TimeProofRedeemer validates and consumes a single-use time-proof token
// bound to (tutorial, unit, task), returning the proven elapsed engagement.
type TimeProofRedeemer interface {
	Redeem(ctx context.Context, token string, tutorial curriculum.Tutorial, unit, task int) (time.Duration, error)
}
