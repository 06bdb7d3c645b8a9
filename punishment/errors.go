package punishment

import (
	"errors"
	"fmt"
)

// Rejection is a user-facing precondition failure. It is reported back to
// the invoker verbatim and never logged as an error.
type Rejection struct {
	Msg string
}

func (r *Rejection) Error() string { return r.Msg }

func reject(format string, args ...any) *Rejection {
	return &Rejection{Msg: fmt.Sprintf(format, args...)}
}

// IsRejection extracts the rejection from an engine error, if it is one.
func IsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// ErrExecution is the generic failure surfaced to the invoker when a
// platform call fails. The underlying cause is logged, never shown.
var ErrExecution = errors.New("an error occurred while executing the command")
