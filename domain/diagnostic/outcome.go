package diagnostic

import (
	"dxsim/domain/core"
)

// OutcomeTable pairs the ground truth for one condition with the simulated
// test result, row by row.
type OutcomeTable struct {
	trueCondition []bool
	testResult    []bool
}

// NewOutcomeTable copies both columns; they must be the same length.
func NewOutcomeTable(trueCondition, testResult []bool) (*OutcomeTable, error) {
	if len(trueCondition) != len(testResult) {
		return nil, core.ErrMismatchedColumns
	}
	t := &OutcomeTable{
		trueCondition: make([]bool, len(trueCondition)),
		testResult:    make([]bool, len(testResult)),
	}
	copy(t.trueCondition, trueCondition)
	copy(t.testResult, testResult)
	return t, nil
}

// Len returns the row count.
func (t *OutcomeTable) Len() int {
	return len(t.trueCondition)
}

// Row returns the ground truth and test result of row i.
func (t *OutcomeTable) Row(i int) (trueCondition, testResult bool) {
	return t.trueCondition[i], t.testResult[i]
}

// TrueCondition returns a copy of the ground-truth column.
func (t *OutcomeTable) TrueCondition() []bool {
	out := make([]bool, len(t.trueCondition))
	copy(out, t.trueCondition)
	return out
}

// TestResult returns a copy of the test-result column.
func (t *OutcomeTable) TestResult() []bool {
	out := make([]bool, len(t.testResult))
	copy(out, t.testResult)
	return out
}
