package serror

import "fmt"

// SimError is the error type carried by panics raised from inside the
// simulation core. The core itself is a total function over well-formed
// input, so a SimError always signals a caller misconfiguration rather
// than a recoverable runtime condition.
type SimError struct {
	Err string
}

// New returns a SimError with the given formatted message.
func New(format string, args ...interface{}) *SimError {
	return &SimError{Err: fmt.Sprintf(format, args...)}
}

func (e *SimError) Error() string {
	return e.Err
}
