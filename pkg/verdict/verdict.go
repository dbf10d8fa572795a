package verdict

// Verdict is the final classification of a judged submission.
//
// Timed-out executions carry exit code 124 at the runner level but are
// reported as RuntimeError here, matching what the platform has always shown
// to users.
type Verdict int

const (
	Accepted Verdict = iota + 1
	WrongAnswer
	RuntimeError
)

func (v Verdict) String() string {
	switch v {
	case Accepted:
		return "AC"
	case WrongAnswer:
		return "WA"
	case RuntimeError:
		return "RE"
	default:
		return ""
	}
}
