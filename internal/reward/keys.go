package reward

import (
	"fmt"

	"github.com/wealthpath/edu-gateway/internal/curriculum"
)

// answerKey holds the graded answers for one unit's test, case and true/false
// tasks. Completion-style tasks (text, video, game) need no key.
type answerKey struct {
	Test      []int
	Case      []string
	TrueFalse []bool
}

func keyID(t curriculum.Tutorial, unit int) string {
	return fmt.Sprintf("%s/%d", t, unit)
}

// answerKeys is the shipped grading content, keyed by tutorial/unit. Units
// without an entry grade their answer tasks as full completion.
var answerKeys = map[string]answerKey{
	keyID(curriculum.TutorialPersonalFinance, 1): {
		Test:      []int{1, 0, 2, 1},
		Case:      []string{"net income", "net"},
		TrueFalse: []bool{true, false, false, true},
	},
	keyID(curriculum.TutorialPersonalFinance, 2): {
		Test:      []int{2, 2, 0, 1},
		Case:      []string{"impulse buying"},
		TrueFalse: []bool{false, true, true, false},
	},
	keyID(curriculum.TutorialPersonalFinance, 3): {
		Test:      []int{0, 1, 1, 3},
		Case:      []string{"opportunity cost"},
		TrueFalse: []bool{true, true, false, false},
	},
	keyID(curriculum.TutorialPersonalFinance, 4): {
		Test:      []int{3, 0, 2, 2},
		Case:      []string{"cost of living"},
		TrueFalse: []bool{false, false, true, true},
	},
	keyID(curriculum.TutorialPersonalFinance, 5): {
		Test:      []int{1, 2, 1, 0},
		Case:      []string{"50/30/20", "50 30 20"},
		TrueFalse: []bool{true, false, true, false},
	},
	keyID(curriculum.TutorialMarketBasics, 1): {
		Test:      []int{0, 2, 1, 1},
		Case:      []string{"liquidity"},
		TrueFalse: []bool{true, true, false, true},
	},
	keyID(curriculum.TutorialMarketBasics, 2): {
		Test:      []int{2, 1, 3, 0},
		Case:      []string{"equity", "stock"},
		TrueFalse: []bool{false, true, false, true},
	},
	keyID(curriculum.TutorialMarketBasics, 3): {
		Test:      []int{1, 1, 0, 2},
		Case:      []string{"diversification"},
		TrueFalse: []bool{true, false, false, false},
	},
}

func keyFor(t curriculum.Tutorial, unit int) answerKey {
	return answerKeys[keyID(t, unit)]
}
