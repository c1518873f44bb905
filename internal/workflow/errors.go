package workflow

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a Framing operation is not allowed in
// the current state.
var ErrInvalidTransition = errors.New("invalid framing transition")

// Step names, used as error prefixes, trace labels and metric labels.
const (
	StepFraming     = "framing"
	StepResearch    = "research"
	StepStructuring = "structuring"
	StepScoring     = "scoring"
)

func stepError(step string, err error) error {
	return fmt.Errorf("%s: %w", step, err)
}
