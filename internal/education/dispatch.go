package education

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

// adapter binds one task type to its payload schema and its reward backend
// operation. Adding a task type means adding one table entry.
type adapter struct {
	decode func(raw json.RawMessage) (any, error)
	call   func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error)
}

// Dispatcher routes a validated submission to the reward operation matching
// its task type. The table is fixed at construction.
type Dispatcher struct {
	ops map[curriculum.TaskType]adapter
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{ops: map[curriculum.TaskType]adapter{
		curriculum.TaskText: {
			decode: func(raw json.RawMessage) (any, error) {
				var p TextPayload
				return p, decodeStrict(raw, &p)
			},
			call: func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error) {
				return b.SubmitText(ctx, req, payload.(TextPayload))
			},
		},
		curriculum.TaskTest: {
			decode: func(raw json.RawMessage) (any, error) {
				var p TestPayload
				if err := decodeStrict(raw, &p); err != nil {
					return nil, err
				}
				if len(p.Answers) == 0 {
					return nil, errors.New("answers required")
				}
				for _, a := range p.Answers {
					if a < 0 {
						return nil, errors.New("answer index out of range")
					}
				}
				return p, nil
			},
			call: func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error) {
				return b.SubmitTest(ctx, req, payload.(TestPayload))
			},
		},
		curriculum.TaskVideo: {
			decode: func(raw json.RawMessage) (any, error) {
				var p VideoPayload
				return p, decodeStrict(raw, &p)
			},
			call: func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error) {
				return b.SubmitVideo(ctx, req, payload.(VideoPayload))
			},
		},
		curriculum.TaskCase: {
			decode: func(raw json.RawMessage) (any, error) {
				var p CasePayload
				if err := decodeStrict(raw, &p); err != nil {
					return nil, err
				}
				if strings.TrimSpace(p.Answer) == "" {
					return nil, errors.New("answer required")
				}
				return p, nil
			},
			call: func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error) {
				return b.SubmitCase(ctx, req, payload.(CasePayload))
			},
		},
		curriculum.TaskTrueFalse: {
			decode: func(raw json.RawMessage) (any, error) {
				var p TrueFalsePayload
				if err := decodeStrict(raw, &p); err != nil {
					return nil, err
				}
				if len(p.Answers) == 0 {
					return nil, errors.New("answers required")
				}
				return p, nil
			},
			call: func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error) {
				return b.SubmitTrueFalse(ctx, req, payload.(TrueFalsePayload))
			},
		},
		curriculum.TaskGame: {
			decode: func(raw json.RawMessage) (any, error) {
				var p GamePayload
				return p, decodeStrict(raw, &p)
			},
			call: func(ctx context.Context, b RewardBackend, req SubmitRequest, payload any) (SubmissionOutcome, error) {
				return b.SubmitGame(ctx, req, payload.(GamePayload))
			},
		},
	}}
}

// Decode validates the raw payload against the task type's schema without
// touching any collaborator. Shape errors surface as ReasonInvalidPayload.
func (d *Dispatcher) Decode(tt curriculum.TaskType, raw json.RawMessage) (any, error) {
	op, ok := d.ops[tt]
	if !ok {
		return nil, newError(ReasonTaskTypeMismatch, fmt.Errorf("no operation for task type %q", tt))
	}
	payload, err := op.decode(raw)
	if err != nil {
		return nil, newError(ReasonInvalidPayload, err)
	}
	return payload, nil
}

// Dispatch forwards a decoded payload to the reward operation for its type.
// payload must come from Decode for the same type.
func (d *Dispatcher) Dispatch(ctx context.Context, b RewardBackend, tt curriculum.TaskType, req SubmitRequest, payload any) (SubmissionOutcome, error) {
	op, ok := d.ops[tt]
	if !ok {
		return SubmissionOutcome{}, newError(ReasonTaskTypeMismatch, fmt.Errorf("no operation for task type %q", tt))
	}
	return op.call(ctx, b, req, payload)
}

func decodeStrict(raw json.RawMessage, into any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(into)
}
