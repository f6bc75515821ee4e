package command

// OutcomeKind is the execution policy applied to a finished command.
type OutcomeKind int

const (
	// OutcomeCompleted means the remote operation succeeded.
	OutcomeCompleted OutcomeKind = iota
	// OutcomeSuppressed means the operation failed in an expected, non-retryable way.
	// The failure is logged and the command counts as done.
	OutcomeSuppressed
	// OutcomeRetry asks the worker to run the command again.
	OutcomeRetry
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeCompleted:
		return "completed"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeRetry:
		return "retry"
	default:
		return "unknown"
	}
}

type Outcome struct {
	Kind  OutcomeKind
	Cause error
}

func Completed() Outcome {
	return Outcome{Kind: OutcomeCompleted}
}

func Suppressed(err error) Outcome {
	return Outcome{Kind: OutcomeSuppressed, Cause: err}
}

func Retry(err error) Outcome {
	return Outcome{Kind: OutcomeRetry, Cause: err}
}

// Err is the error the dispatch worker should observe: only retryable outcomes fail.
func (o Outcome) Err() error {
	if o.Kind == OutcomeRetry {
		return o.Cause
	}
	return nil
}
