package education

// Classification says how a submission relates to prior recorded state.
type Classification int

const (
	FirstAttempt Classification = iota
	Duplicate
	Retry
)

func (c Classification) String() string {
	switch c {
	case FirstAttempt:
		return "first_attempt"
	case Duplicate:
		return "duplicate"
	case Retry:
		return "retry"
	}
	return "unknown"
}

// Decision is the result of classifying one submission. Existing is set only
// for Duplicate and is the outcome to hand back verbatim.
type Decision struct {
	Kind     Classification
	Existing *SubmissionOutcome
}

// Classify decides whether a submission is a first attempt, a duplicate to
// short-circuit, or an explicit retry. prior must be a fresh snapshot of the
// backend's credited outcomes for (user, tutorial); classification over a
// stale snapshot is only a fast path, and the backend's conditional insert
// stays the source of truth under concurrency.
func Classify(sub TaskSubmission, prior []SubmissionOutcome) Decision {
	if sub.IsRetry {
		return Decision{Kind: Retry}
	}
	for i := range prior {
		if prior[i].Unit == sub.Unit && prior[i].Task == sub.Task {
			existing := prior[i]
			return Decision{Kind: Duplicate, Existing: &existing}
		}
	}
	return Decision{Kind: FirstAttempt}
}
