package education

import (
	"context"
	"errors"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

// Aggregator composes backend-stored outcomes into dashboard and unit views.
// It is read-through: every call reflects the backend's latest state.
type Aggregator struct {
	catalog curriculum.Catalog
	backend RewardBackend
}

func NewAggregator(catalog curriculum.Catalog, backend RewardBackend) *Aggregator {
	return &Aggregator{catalog: catalog, backend: backend}
}

// Dashboard returns the per-unit summary of a tutorial for one learner.
func (a *Aggregator) Dashboard(ctx context.Context, userID string, tutorial curriculum.Tutorial) (DashboardState, error) {
	units, err := a.catalog.Units(tutorial)
	if err != nil {
		return DashboardState{}, newError(ReasonTutorialNotFound, err)
	}
	started, err := a.backend.LearningStarted(ctx, userID, tutorial)
	if err != nil {
		return DashboardState{}, backendError(err)
	}
	outcomes, err := a.backend.CreditedOutcomes(ctx, userID, tutorial)
	if err != nil {
		return DashboardState{}, backendError(err)
	}
	byUnit := groupByUnit(outcomes)

	state := DashboardState{
		Tutorial:  tutorial,
		Available: started,
		Units:     make([]UnitSummary, 0, len(units)),
	}
	state.TotalProgress.TotalUnits = len(units)
	for _, u := range units {
		done := byUnit[u.Ordinal]
		sum := UnitSummary{
			Unit:       u.Ordinal,
			Title:      u.Title,
			DoneTasks:  len(done),
			TotalTasks: len(u.Tasks),
			Completed:  len(done) == len(u.Tasks),
		}
		for _, o := range done {
			sum.TotalScore += o.Score
		}
		if sum.Completed {
			state.TotalProgress.CompletedUnits++
		}
		state.TotalProgress.TotalScore += sum.TotalScore
		state.Units = append(state.Units, sum)
	}
	return state, nil
}

// UnitState returns the finish-state view of one unit: per-task outcomes and
// the completed predicate (every task ordinal has a credited outcome).
func (a *Aggregator) UnitState(ctx context.Context, userID string, tutorial curriculum.Tutorial, unit int) (UnitProgress, error) {
	def, err := a.catalog.ResolveUnit(tutorial, unit)
	if err != nil {
		return UnitProgress{}, catalogError(err)
	}
	outcomes, err := a.backend.CreditedOutcomes(ctx, userID, tutorial)
	if err != nil {
		return UnitProgress{}, backendError(err)
	}
	done := groupByUnit(outcomes)[def.Ordinal]

	up := UnitProgress{
		Unit:      def.Ordinal,
		Title:     def.Title,
		Tasks:     make([]TaskProgress, 0, len(def.Tasks)),
		Completed: true,
	}
	for i, tt := range def.Tasks {
		tp := TaskProgress{Task: i + 1, Type: tt}
		if o, ok := done[i+1]; ok {
			oc := o
			tp.Done = true
			tp.Outcome = &oc
			up.TotalScore += oc.Score
		} else {
			up.Completed = false
		}
		up.Tasks = append(up.Tasks, tp)
	}
	return up, nil
}

func groupByUnit(outcomes []SubmissionOutcome) map[int]map[int]SubmissionOutcome {
	byUnit := map[int]map[int]SubmissionOutcome{}
	for _, o := range outcomes {
		m, ok := byUnit[o.Unit]
		if !ok {
			m = map[int]SubmissionOutcome{}
			byUnit[o.Unit] = m
		}
		m[o.Task] = o
	}
	return byUnit
}

func catalogError(err error) *Error {
	switch {
	case errors.Is(err, curriculum.ErrTutorialNotFound):
		return newError(ReasonTutorialNotFound, err)
	case errors.Is(err, curriculum.ErrUnitNotFound):
		return newError(ReasonUnitNotFound, err)
	case errors.Is(err, curriculum.ErrTaskNotFound):
		return newError(ReasonTaskNotFound, err)
	}
	return newError(ReasonUnitNotFound, err)
}
