package siting

import (
	"errors"
	"fmt"
)

// Sentinel errors for rejected requests.
var (
	ErrInvalidBoundary    = errors.New("siting: boundary needs at least 3 distinct vertices")
	ErrInvalidTargetCount = errors.New("siting: target count must be at least 1")
	ErrNoCandidates       = errors.New("siting: no lattice candidates inside boundary")
)

// NoSafeCandidatesError reports that obstacle filtering removed every
// candidate. It is distinct from ErrNoCandidates: the lattice produced
// positions inside the boundary, but none of them clear the obstacle
// buffer.
type NoSafeCandidatesError struct {
	Candidates int // lattice points inside the boundary
	Blocked    int // removed by the obstacle buffer
}

func (e *NoSafeCandidatesError) Error() string {
	return fmt.Sprintf("siting: all %d candidates blocked by obstacles (%d within buffer)", e.Candidates, e.Blocked)
}
