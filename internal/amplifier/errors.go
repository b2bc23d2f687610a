package amplifier

import (
	"errors"
	"fmt"
)

var (
	// ErrNoOutput is reported when every stage halts without the network
	// ever producing a value on its output stream.
	ErrNoOutput = errors.New("network produced no output")

	// ErrNoResult is returned by Search when no permutation produced an
	// output.
	ErrNoResult = errors.New("no phase permutation produced an output")
)

// NetworkFault reports a permutation whose evaluation was aborted.
//
// Err is usually a *intcode.FaultError from the faulting stage; errors.As
// reaches it through Unwrap.
type NetworkFault struct {
	// Phases is the permutation being evaluated.
	Phases []int64

	// Stage is the index of the stage that faulted.
	Stage int

	// Err is the stage's error.
	Err error
}

// Error implements the error interface.
func (e *NetworkFault) Error() string {
	return fmt.Sprintf("network fault at stage %d (phases %v): %v", e.Stage, e.Phases, e.Err)
}

// Unwrap returns the stage's error.
func (e *NetworkFault) Unwrap() error {
	return e.Err
}

// IsNetworkFault returns true if err is or wraps a *NetworkFault.
func IsNetworkFault(err error) bool {
	var nf *NetworkFault
	return errors.As(err, &nf)
}
