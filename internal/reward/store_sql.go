package reward

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/education"
)

// SQLService is the durable reward backend. The credit table's primary key
// (user, tutorial, unit, task) plus conditional inserts make it the system of
// record for at-most-once crediting; the gateway's classification is only a
// fast path in front of it.
type SQLService struct {
	db     *sql.DB
	policy Policy
	now    func() time.Time
}

func NewSQLService(db *sql.DB, policy Policy) *SQLService {
	return &SQLService{db: db, policy: policy, now: time.Now}
}

func (s *SQLService) MarkLearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO learning_state (user_id, tutorial, started_at) VALUES ($1,$2,$3)
		 ON CONFLICT (user_id, tutorial) DO NOTHING`,
		userID, string(tutorial), s.now().Unix())
	return err
}

func (s *SQLService) LearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM learning_state WHERE user_id=$1 AND tutorial=$2`,
		userID, string(tutorial)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLService) CreditedOutcomes(ctx context.Context, userID string, tutorial curriculum.Tutorial) ([]education.SubmissionOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT unit_ordinal, task_ordinal, task_type, score, elapsed_sec, is_retry, recorded_at
		   FROM task_outcomes WHERE user_id=$1 AND tutorial=$2
		  ORDER BY unit_ordinal, task_ordinal`,
		userID, string(tutorial))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []education.SubmissionOutcome
	for rows.Next() {
		o := education.SubmissionOutcome{UserID: userID, Tutorial: tutorial}
		var tt string
		if err := rows.Scan(&o.Unit, &o.Task, &tt, &o.Score, &o.ElapsedSec, &o.IsRetry, &o.RecordedAt); err != nil {
			return nil, err
		}
		o.Type = curriculum.TaskType(tt)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLService) SubmitText(ctx context.Context, req education.SubmitRequest, p education.TextPayload) (education.SubmissionOutcome, error) {
	return s.submit(ctx, req, curriculum.TaskText, p)
}

func (s *SQLService) SubmitTest(ctx context.Context, req education.SubmitRequest, p education.TestPayload) (education.SubmissionOutcome, error) {
	return s.submit(ctx, req, curriculum.TaskTest, p)
}

func (s *SQLService) SubmitVideo(ctx context.Context, req education.SubmitRequest, p education.VideoPayload) (education.SubmissionOutcome, error) {
	return s.submit(ctx, req, curriculum.TaskVideo, p)
}

func (s *SQLService) SubmitCase(ctx context.Context, req education.SubmitRequest, p education.CasePayload) (education.SubmissionOutcome, error) {
	return s.submit(ctx, req, curriculum.TaskCase, p)
}

func (s *SQLService) SubmitTrueFalse(ctx context.Context, req education.SubmitRequest, p education.TrueFalsePayload) (education.SubmissionOutcome, error) {
	return s.submit(ctx, req, curriculum.TaskTrueFalse, p)
}

func (s *SQLService) SubmitGame(ctx context.Context, req education.SubmitRequest, p education.GamePayload) (education.SubmissionOutcome, error) {
	return s.submit(ctx, req, curriculum.TaskGame, p)
}

func (s *SQLService) submit(ctx context.Context, req education.SubmitRequest, tt curriculum.TaskType, payload any) (education.SubmissionOutcome, error) {
	if err := s.policy.checkElapsed(req.Elapsed); err != nil {
		return education.SubmissionOutcome{}, err
	}
	ratio := ratioFor(tt, payload, keyFor(req.Tutorial, req.Unit))
	outcome := education.SubmissionOutcome{
		UserID:     req.UserID,
		Tutorial:   req.Tutorial,
		Unit:       req.Unit,
		Task:       req.Task,
		Type:       tt,
		Score:      s.policy.scoreFor(ratio, req.IsRetry),
		ElapsedSec: int64(req.Elapsed.Seconds()),
		IsRetry:    req.IsRetry,
		RecordedAt: s.now().Unix(),
	}

	// Every submission lands in the attempt log, credited or not.
	if err := s.appendAttempt(ctx, outcome); err != nil {
		return education.SubmissionOutcome{}, err
	}

	if !req.IsRetry {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO task_outcomes
			   (user_id, tutorial, unit_ordinal, task_ordinal, task_type, score, elapsed_sec, is_retry, recorded_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			 ON CONFLICT (user_id, tutorial, unit_ordinal, task_ordinal) DO NOTHING`,
			outcome.UserID, string(outcome.Tutorial), outcome.Unit, outcome.Task,
			string(tt), outcome.Score, outcome.ElapsedSec, outcome.IsRetry, outcome.RecordedAt)
		if err != nil {
			return education.SubmissionOutcome{}, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return education.SubmissionOutcome{}, err
		}
		if n == 0 {
			existing, err := s.getCredit(ctx, req)
			if err != nil {
				return education.SubmissionOutcome{}, err
			}
			return education.SubmissionOutcome{}, &education.DuplicateCreditError{Existing: existing}
		}
		return outcome, nil
	}

	// Retry policy: upsert, keeping the best score on the credit row.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_outcomes
		   (user_id, tutorial, unit_ordinal, task_ordinal, task_type, score, elapsed_sec, is_retry, recorded_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (user_id, tutorial, unit_ordinal, task_ordinal) DO UPDATE SET
		   score=excluded.score, elapsed_sec=excluded.elapsed_sec,
		   is_retry=excluded.is_retry, recorded_at=excluded.recorded_at
		 WHERE task_outcomes.score < excluded.score`,
		outcome.UserID, string(outcome.Tutorial), outcome.Unit, outcome.Task,
		string(tt), outcome.Score, outcome.ElapsedSec, outcome.IsRetry, outcome.RecordedAt)
	if err != nil {
		return education.SubmissionOutcome{}, err
	}
	return outcome, nil
}

func (s *SQLService) getCredit(ctx context.Context, req education.SubmitRequest) (education.SubmissionOutcome, error) {
	o := education.SubmissionOutcome{
		UserID:   req.UserID,
		Tutorial: req.Tutorial,
		Unit:     req.Unit,
		Task:     req.Task,
	}
	var tt string
	err := s.db.QueryRowContext(ctx,
		`SELECT task_type, score, elapsed_sec, is_retry, recorded_at
		   FROM task_outcomes
		  WHERE user_id=$1 AND tutorial=$2 AND unit_ordinal=$3 AND task_ordinal=$4`,
		req.UserID, string(req.Tutorial), req.Unit, req.Task).
		Scan(&tt, &o.Score, &o.ElapsedSec, &o.IsRetry, &o.RecordedAt)
	if err != nil {
		return education.SubmissionOutcome{}, err
	}
	o.Type = curriculum.TaskType(tt)
	return o, nil
}

func (s *SQLService) appendAttempt(ctx context.Context, o education.SubmissionOutcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempt_log
		   (id, user_id, tutorial, unit_ordinal, task_ordinal, task_type, score, elapsed_sec, is_retry, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		uuid.NewString(), o.UserID, string(o.Tutorial), o.Unit, o.Task,
		string(o.Type), o.Score, o.ElapsedSec, o.IsRetry, o.RecordedAt)
	return err
}
