package curriculum

import "errors"

// Tutorial is a top-level curriculum track. The set is closed and defined at
// build time; collaborator services key stored progress by these values.
type Tutorial string

const (
	TutorialPersonalFinance Tutorial = "personalfinance"
	TutorialMarketBasics    Tutorial = "marketbasics"
)

// TaskType is one of the six gradable activity kinds. Each kind has its own
// payload schema and its own scoring operation at the reward backend.
type TaskType string

const (
	TaskText      TaskType = "text"
	TaskTest      TaskType = "test"
	TaskVideo     TaskType = "video"
	TaskCase      TaskType = "case"
	TaskTrueFalse TaskType = "truefalse"
	TaskGame      TaskType = "game"
)

var (
	ErrTutorialNotFound = errors.New("tutorial not found")
	ErrUnitNotFound     = errors.New("unit not found")
	ErrTaskNotFound     = errors.New("task not found")
)

// UnitDefinition is one ordered block inside a tutorial. Task ordinals are
// 1-based and contiguous: ordinal n maps to Tasks[n-1].
type UnitDefinition struct {
	Ordinal int        `json:"ordinal"`
	Title   string     `json:"title"`
	Tasks   []TaskType `json:"tasks"`
}

// Catalog is the immutable curriculum structure. It is pure data: lookups
// never touch I/O and the only failure mode is not-found.
type Catalog struct {
	tutorials map[Tutorial][]UnitDefinition
	order     []Tutorial
}

// New builds a catalog from per-tutorial unit lists. Unit ordinals are
// assigned from slice position, so callers cannot produce gaps.
func New(tutorials map[Tutorial][]UnitDefinition, order []Tutorial) Catalog {
	m := make(map[Tutorial][]UnitDefinition, len(tutorials))
	for t, units := range tutorials {
		cp := make([]UnitDefinition, len(units))
		copy(cp, units)
		for i := range cp {
			cp[i].Ordinal = i + 1
		}
		m[t] = cp
	}
	ord := make([]Tutorial, len(order))
	copy(ord, order)
	return Catalog{tutorials: m, order: ord}
}

// Tutorials returns the tracks in catalog order.
func (c Catalog) Tutorials() []Tutorial {
	out := make([]Tutorial, len(c.order))
	copy(out, c.order)
	return out
}

// Units returns the ordered unit definitions of a tutorial.
func (c Catalog) Units(t Tutorial) ([]UnitDefinition, error) {
	units, ok := c.tutorials[t]
	if !ok {
		return nil, ErrTutorialNotFound
	}
	out := make([]UnitDefinition, len(units))
	copy(out, units)
	return out, nil
}

// ResolveUnit looks up a unit by 1-based ordinal.
func (c Catalog) ResolveUnit(t Tutorial, unit int) (UnitDefinition, error) {
	units, ok := c.tutorials[t]
	if !ok {
		return UnitDefinition{}, ErrTutorialNotFound
	}
	if unit < 1 || unit > len(units) {
		return UnitDefinition{}, ErrUnitNotFound
	}
	return units[unit-1], nil
}

// ResolveTask looks up the declared type of a task by 1-based ordinals.
func (c Catalog) ResolveTask(t Tutorial, unit, task int) (TaskType, error) {
	u, err := c.ResolveUnit(t, unit)
	if err != nil {
		return "", err
	}
	if task < 1 || task > len(u.Tasks) {
		return "", ErrTaskNotFound
	}
	return u.Tasks[task-1], nil
}

// standardSequence is the task progression every shipped unit uses today.
// Units with a different shape only need a different Tasks slice.
var standardSequence = []TaskType{TaskText, TaskTest, TaskVideo, TaskCase, TaskTrueFalse, TaskGame}

// Default returns the curriculum the gateway ships with.
func Default() Catalog {
	return New(map[Tutorial][]UnitDefinition{
		TutorialPersonalFinance: {
			{Title: "Your income", Tasks: standardSequence},
			{Title: "Spending money secrets", Tasks: standardSequence},
			{Title: "Hidden expenses and lost profits", Tasks: standardSequence},
			{Title: "Salary: make sure that it is enough", Tasks: standardSequence},
			{Title: "Budget planning in three steps", Tasks: standardSequence},
		},
		TutorialMarketBasics: {
			{Title: "What a market is", Tasks: standardSequence},
			{Title: "Assets and asset classes", Tasks: standardSequence},
			{Title: "Risk and diversification", Tasks: standardSequence},
		},
	}, []Tutorial{TutorialPersonalFinance, TutorialMarketBasics})
}

// ParseTutorial validates a wire value against the closed set.
func ParseTutorial(s string) (Tutorial, error) {
	switch Tutorial(s) {
	case TutorialPersonalFinance, TutorialMarketBasics:
		return Tutorial(s), nil
	}
	return "", ErrTutorialNotFound
}
