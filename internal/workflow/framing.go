package workflow

import (
	"context"
	"fmt"
	"time"

	"execmind/internal/logging"
	"execmind/internal/parse"
	"execmind/internal/perception"
)

// FramingState is a state of the confirmation loop.
type FramingState int

const (
	Drafting FramingState = iota
	AwaitingConfirmation
	Refining
	Confirmed
	Trashed
)

func (s FramingState) String() string {
	switch s {
	case Drafting:
		return "drafting"
	case AwaitingConfirmation:
		return "awaiting_confirmation"
	case Refining:
		return "refining"
	case Confirmed:
		return "confirmed"
	case Trashed:
		return "trashed"
	default:
		return fmt.Sprintf("FramingState(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s FramingState) Terminal() bool {
	return s == Confirmed || s == Trashed
}

// clarificationPrefix separates each clarification in the accumulated context.
const clarificationPrefix = "\nUser Clarification: "

// Framing drives one idea attempt from raw input to a confirmed restatement.
//
//	Drafting --Draft--> AwaitingConfirmation --Accept--> Confirmed
//	                          |  |
//	                          |  +--Trash--> Trashed
//	                          +--Refine--> Refining --> Drafting
//
// There is no cap on refinement rounds; the operator decides when to stop.
type Framing struct {
	deps Deps
	log  *logging.Logger

	state       FramingState
	context     string
	restatement string
	question    string
	rounds      int
}

// NewFraming starts an attempt in Drafting with rawInput as the context.
func NewFraming(deps Deps, rawInput string) *Framing {
	return &Framing{
		deps:    deps,
		log:     deps.logger(),
		state:   Drafting,
		context: rawInput,
	}
}

// Draft asks the gateway to restate the accumulated context. On success the
// attempt moves to AwaitingConfirmation; on failure it stays in Drafting and
// Draft may be retried.
func (f *Framing) Draft(ctx context.Context) (err error) {
	if f.state != Drafting {
		return stepError(StepFraming, fmt.Errorf("%w: cannot draft while %s", ErrInvalidTransition, f.state))
	}

	start := time.Now()
	defer func() { f.deps.Metrics.observeStep(StepFraming, start, err) }()

	f.log.Debug("Framing round %d: context_len=%d", f.rounds+1, len(f.context))
	out, err := f.deps.Gateway.Generate(perception.WithStep(ctx, StepFraming), framingInstruction, f.context)
	if err != nil {
		return stepError(StepFraming, err)
	}

	m, err := parse.Object(out)
	if err != nil {
		f.deps.Metrics.parseFailure(StepFraming)
		return stepError(StepFraming, err)
	}

	restatement := parse.Text(m, "restatement")
	question := parse.Text(m, "confirmation_question")
	if restatement == "" {
		f.log.Warn("Framing output has no restatement (keys=%d)", len(m))
	}

	f.restatement, f.question = restatement, question
	f.rounds++
	f.state = AwaitingConfirmation
	f.log.Info("Framing round %d drafted", f.rounds)
	return nil
}

// Accept confirms the current restatement.
func (f *Framing) Accept() error {
	if err := f.expect(AwaitingConfirmation, "accept"); err != nil {
		return err
	}
	f.state = Confirmed
	f.log.Info("Framing confirmed after %d round(s)", f.rounds)
	return nil
}

// Refine appends a clarification to the accumulated context and returns to
// Drafting. Earlier context is never replaced.
func (f *Framing) Refine(clarification string) error {
	if err := f.expect(AwaitingConfirmation, "refine"); err != nil {
		return err
	}
	f.state = Refining
	f.context += clarificationPrefix + clarification
	f.state = Drafting
	f.log.Debug("Framing refined: context_len=%d", len(f.context))
	return nil
}

// Trash abandons the attempt.
func (f *Framing) Trash() error {
	if err := f.expect(AwaitingConfirmation, "trash"); err != nil {
		return err
	}
	f.state = Trashed
	f.log.Info("Framing trashed after %d round(s)", f.rounds)
	return nil
}

func (f *Framing) expect(want FramingState, op string) error {
	if f.state != want {
		return stepError(StepFraming, fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, op, f.state))
	}
	return nil
}

// State returns the current state.
func (f *Framing) State() FramingState { return f.state }

// Context returns the raw input plus every clarification so far.
func (f *Framing) Context() string { return f.context }

// Restatement returns the latest drafted restatement.
func (f *Framing) Restatement() string { return f.restatement }

// Question returns the latest confirmation question.
func (f *Framing) Question() string { return f.question }

// Rounds returns how many drafts have succeeded.
func (f *Framing) Rounds() int { return f.rounds }
