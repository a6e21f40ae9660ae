package reward

import (
	"context"
	"sync"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/education"
)

type creditKey struct {
	userID   string
	tutorial curriculum.Tutorial
	unit     int
	task     int
}

// MemoryService is the in-process reward backend, used offline and in tests.
// It implements the same at-most-once crediting contract as the SQL store:
// the first non-retry submission per key wins, later ones get the stored
// outcome back as a duplicate.
type MemoryService struct {
	mu      sync.Mutex
	policy  Policy
	started map[string]map[curriculum.Tutorial]bool
	credits map[creditKey]education.SubmissionOutcome
	now     func() time.Time
}

func NewMemoryService(policy Policy) *MemoryService {
	return &MemoryService{
		policy:  policy,
		started: map[string]map[curriculum.Tutorial]bool{},
		credits: map[creditKey]education.SubmissionOutcome{},
		now:     time.Now,
	}
}

func (m *MemoryService) MarkLearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.started[userID]
	if !ok {
		t = map[curriculum.Tutorial]bool{}
		m.started[userID] = t
	}
	t[tutorial] = true
	return nil
}

func (m *MemoryService) LearningStarted(ctx context.Context, userID string, tutorial curriculum.Tutorial) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started[userID][tutorial], nil
}

func (m *MemoryService) CreditedOutcomes(ctx context.Context, userID string, tutorial curriculum.Tutorial) ([]education.SubmissionOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []education.SubmissionOutcome
	for k, o := range m.credits {
		if k.userID == userID && k.tutorial == tutorial {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryService) SubmitText(ctx context.Context, req education.SubmitRequest, p education.TextPayload) (education.SubmissionOutcome, error) {
	return m.submit(req, curriculum.TaskText, p)
}

func (m *MemoryService) SubmitTest(ctx context.Context, req education.SubmitRequest, p education.TestPayload) (education.SubmissionOutcome, error) {
	return m.submit(req, curriculum.TaskTest, p)
}

func (m *MemoryService) SubmitVideo(ctx context.Context, req education.SubmitRequest, p education.VideoPayload) (education.SubmissionOutcome, error) {
	return m.submit(req, curriculum.TaskVideo, p)
}

func (m *MemoryService) SubmitCase(ctx context.Context, req education.SubmitRequest, p education.CasePayload) (education.SubmissionOutcome, error) {
	return m.submit(req, curriculum.TaskCase, p)
}

func (m *MemoryService) SubmitTrueFalse(ctx context.Context, req education.SubmitRequest, p education.TrueFalsePayload) (education.SubmissionOutcome, error) {
	return m.submit(req, curriculum.TaskTrueFalse, p)
}

func (m *MemoryService) SubmitGame(ctx context.Context, req education.SubmitRequest, p education.GamePayload) (education.SubmissionOutcome, error) {
	return m.submit(req, curriculum.TaskGame, p)
}

func (m *MemoryService) submit(req education.SubmitRequest, tt curriculum.TaskType, payload any) (education.SubmissionOutcome, error) {
	if err := m.policy.checkElapsed(req.Elapsed); err != nil {
		return education.SubmissionOutcome{}, err
	}
	ratio := ratioFor(tt, payload, keyFor(req.Tutorial, req.Unit))
	outcome := education.SubmissionOutcome{
		UserID:     req.UserID,
		Tutorial:   req.Tutorial,
		Unit:       req.Unit,
		Task:       req.Task,
		Type:       tt,
		Score:      m.policy.scoreFor(ratio, req.IsRetry),
		ElapsedSec: int64(req.Elapsed.Seconds()),
		IsRetry:    req.IsRetry,
		RecordedAt: m.now().Unix(),
	}
	key := creditKey{req.UserID, req.Tutorial, req.Unit, req.Task}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, credited := m.credits[key]
	if !req.IsRetry {
		if credited {
			return education.SubmissionOutcome{}, &education.DuplicateCreditError{Existing: existing}
		}
		m.credits[key] = outcome
		return outcome, nil
	}
	// Retry policy: keep the best score on the credit row, return the
	// retry's own outcome to the caller.
	if !credited || outcome.Score > existing.Score {
		m.credits[key] = outcome
	}
	return outcome, nil
}
