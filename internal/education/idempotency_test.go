package education

import (
	"testing"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

func TestClassify(t *testing.T) {
	prior := []SubmissionOutcome{
		{Unit: 1, Task: 1, Score: 80},
		{Unit: 1, Task: 2, Score: 60},
	}
	sub := func(unit, task int, retry bool) TaskSubmission {
		return TaskSubmission{
			UserID:   "u1",
			Tutorial: curriculum.TutorialPersonalFinance,
			Unit:     unit,
			Task:     task,
			IsRetry:  retry,
		}
	}

	tests := []struct {
		name string
		sub  TaskSubmission
		want Classification
	}{
		{"first attempt on fresh task", sub(1, 3, false), FirstAttempt},
		{"first attempt on fresh unit", sub(2, 1, false), FirstAttempt},
		{"duplicate of credited task", sub(1, 1, false), Duplicate},
		{"retry of credited task", sub(1, 1, true), Retry},
		{"retry of fresh task always dispatches", sub(2, 4, true), Retry},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := Classify(tc.sub, prior)
			if d.Kind != tc.want {
				t.Fatalf("Classify = %s, want %s", d.Kind, tc.want)
			}
			if tc.want == Duplicate {
				if d.Existing == nil {
					t.Fatal("Duplicate decision without existing outcome")
				}
				if d.Existing.Score != 80 {
					t.Fatalf("existing score = %v, want 80", d.Existing.Score)
				}
			} else if d.Existing != nil {
				t.Fatal("non-duplicate decision carries an existing outcome")
			}
		})
	}
}

func TestClassifyEmptyPrior(t *testing.T) {
	d := Classify(TaskSubmission{Unit: 1, Task: 1}, nil)
	if d.Kind != FirstAttempt {
		t.Fatalf("Classify with no prior = %s, want first_attempt", d.Kind)
	}
}
