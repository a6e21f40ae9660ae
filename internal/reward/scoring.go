package reward

import (
	"strings"
	"time"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
	"github.com/wealthpath/edu-gateway/internal/education"
)

// Policy is the backend-owned scoring policy. The gateway forwards submissions
// and flags; how retries weigh against first attempts and what counts as a
// plausible elapsed time are decided here.
type Policy struct {
	TaskPoints  float64       // max score per task
	RetryWeight float64       // multiplier applied to retry scores
	MinElapsed  time.Duration // reject submissions with less proven engagement
}

func DefaultPolicy() Policy {
	return Policy{TaskPoints: 100, RetryWeight: 0.5, MinElapsed: 5 * time.Second}
}

// checkElapsed is the anti-cheat heuristic: a time proof shorter than the
// floor cannot be real engagement with the material.
func (p Policy) checkElapsed(elapsed time.Duration) error {
	if elapsed < p.MinElapsed {
		return &education.Error{Reason: education.ReasonImplausibleElapsed}
	}
	return nil
}

// ratioFor grades one decoded payload against the unit's answer key and
// returns the correctness ratio in [0,1]. Text, video and game tasks attest
// completion, so they always grade full.
func ratioFor(tt curriculum.TaskType, payload any, key answerKey) float64 {
	switch p := payload.(type) {
	case education.TestPayload:
		return matchRatioInt(p.Answers, key.Test)
	case education.TrueFalsePayload:
		return matchRatioBool(p.Answers, key.TrueFalse)
	case education.CasePayload:
		answer := strings.ToLower(strings.TrimSpace(p.Answer))
		for _, accepted := range key.Case {
			if answer == strings.ToLower(accepted) {
				return 1
			}
		}
		return 0
	}
	return 1
}

func matchRatioInt(got, want []int) float64 {
	if len(want) == 0 {
		return 1
	}
	correct := 0
	for i, w := range want {
		if i < len(got) && got[i] == w {
			correct++
		}
	}
	return float64(correct) / float64(len(want))
}

func matchRatioBool(got, want []bool) float64 {
	if len(want) == 0 {
		return 1
	}
	correct := 0
	for i, w := range want {
		if i < len(got) && got[i] == w {
			correct++
		}
	}
	return float64(correct) / float64(len(want))
}

// scoreFor applies the policy to a graded ratio.
func (p Policy) scoreFor(ratio float64, isRetry bool) float64 {
	score := ratio * p.TaskPoints
	if isRetry {
		score *= p.RetryWeight
	}
	return score
}
