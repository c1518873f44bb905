// Package idea defines the records that flow through the idea workflow:
// the structured Idea and the Evaluations scored against it.
package idea

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Source records how the raw idea was captured.
type Source string

const (
	SourceText  Source = "text"
	SourceVoice Source = "voice"
)

// ParseSource maps user input to a Source.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceText:
		return SourceText, nil
	case SourceVoice:
		return SourceVoice, nil
	}
	return "", fmt.Errorf("unknown idea source %q (want text or voice)", s)
}

// Verdict is the model's recommendation. It is passed through as given.
type Verdict string

const (
	VerdictPursue Verdict = "pursue"
	VerdictRefine Verdict = "refine"
	VerdictDrop   Verdict = "drop"
)

// Known reports whether v is one of the three documented verdicts.
func (v Verdict) Known() bool {
	switch v {
	case VerdictPursue, VerdictRefine, VerdictDrop:
		return true
	}
	return false
}

// Idea is a confirmed, structured product idea.
// ID and CreatedAt are assigned by the store.
type Idea struct {
	ID               int64     `json:"id"`
	RawInput         string    `json:"raw_input" validate:"required"`
	ProblemStatement string    `json:"problem_statement"`
	ProposedSolution string    `json:"proposed_solution"`
	TargetUsers      string    `json:"target_users"`
	Assumptions      string    `json:"assumptions"`
	Source           Source    `json:"source" validate:"required,oneof=text voice"`
	CreatedAt        time.Time `json:"created_at"`
}

// Ratings are the five 1-10 ratings a model assigns an idea.
// Missing lists the rating keys the model omitted or gave in an unusable
// shape; those ratings are zero.
type Ratings struct {
	Feasibility int `json:"feasibility"`
	MarketValue int `json:"market_value"`
	Complexity  int `json:"complexity"`
	Risk        int `json:"risk"`
	Innovation  int `json:"innovation"`

	Missing []string `json:"-"`
}

// InRange reports whether every rating lies in 1..10.
func (r Ratings) InRange() bool {
	for _, v := range []int{r.Feasibility, r.MarketValue, r.Complexity, r.Risk, r.Innovation} {
		if v < 1 || v > 10 {
			return false
		}
	}
	return true
}

// Evaluation is one scoring of an Idea. An Idea may have many.
type Evaluation struct {
	ID     int64 `json:"id"`
	IdeaID int64 `json:"idea_id" validate:"required,gt=0"`
	Ratings
	FinalScore float64   `json:"final_score"`
	Verdict    Verdict   `json:"verdict"`
	Summary    string    `json:"summary"`
	CreatedAt  time.Time `json:"created_at"`
}

var validate = validator.New()

// ErrInvalid wraps every validation failure from this package.
var ErrInvalid = errors.New("invalid record")

// Validate checks an Idea before it is persisted.
func (i *Idea) Validate() error {
	return check(i)
}

// Validate checks an Evaluation before it is persisted. The verdict is not
// checked here; see Verdict.Known.
func (e *Evaluation) Validate() error {
	return check(e)
}

func check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
