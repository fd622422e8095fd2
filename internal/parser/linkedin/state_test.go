package linkedin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name       string
		from       state
		line       string
		wantState  state
		wantAction action
	}{
		{"blank in summary", stateSummary, "   ", stateSummary, actionSkip},
		{"alert header", stateSummary, "Your job alert for go developer in London", stateSummary, actionSkip},
		{"summary count", stateSummary, "9 new jobs match your preferences.", stateRecords, actionSkip},
		{"summary count with plus", stateSummary, "30+ new jobs match your preferences.", stateRecords, actionSkip},
		{"header noise", stateSummary, "Senior Go Engineer", stateSummary, actionSkip},
		{"footer in summary", stateSummary, "See all jobs on LinkedIn: https://www.linkedin.com/", stateCompleted, actionStop},
		{"title in records", stateRecords, "Senior Go Engineer", stateRecords, actionExtract},
		{"blank in records", stateRecords, "", stateRecords, actionSkip},
		{"footer in records", stateRecords, "See all jobs on LinkedIn: https://www.linkedin.com/", stateCompleted, actionStop},
		{"summary line in records starts a record", stateRecords, "9 new jobs match your preferences.", stateRecords, actionExtract},
		{"completed is terminal", stateCompleted, "Senior Go Engineer", stateCompleted, actionStop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotState, gotAction := transition(tt.from, tt.line)
			assert.Equal(t, tt.wantState, gotState)
			assert.Equal(t, tt.wantAction, gotAction)
		})
	}
}
