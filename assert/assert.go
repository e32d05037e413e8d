package assert

import "github.com/tasuite/strafesim/serror"

// IsTrue panics with a serror.SimError if ok is false. It is used for
// preconditions whose violation means the embedding application is
// misconfigured, never for conditions that can occur at runtime.
func IsTrue(ok bool, message string, args ...interface{}) {
	if !ok {
		panic(serror.New(message, args...))
	}
}
