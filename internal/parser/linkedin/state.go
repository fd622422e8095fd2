package linkedin

// state is where the driver is within one digest.
type state int

const (
	stateSummary state = iota
	stateRecords
	stateCompleted
)

func (s state) String() string {
	switch s {
	case stateSummary:
		return "SUMMARY"
	case stateRecords:
		return "RECORDS"
	case stateCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// action tells the driver what to do with the line it just read.
type action int

const (
	actionSkip action = iota
	actionExtract
	actionStop
)

// transition is the whole state machine: given the current state and the
// line just read, it returns the next state and what to do with the line.
func transition(s state, line string) (state, action) {
	if s == stateCompleted {
		return s, actionStop
	}
	if IsEmptyLine(line) {
		return s, actionSkip
	}
	if isFooterLine(line) {
		return stateCompleted, actionStop
	}
	switch s {
	case stateSummary:
		if isAlertLine(line) {
			return s, actionSkip
		}
		if isSummaryLine(line) {
			return stateRecords, actionSkip
		}
		return s, actionSkip
	case stateRecords:
		return s, actionExtract
	}
	return s, actionSkip
}
