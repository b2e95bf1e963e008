package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStrategyEvaluation is returned when a text-to-embed strategy cannot
	// produce text for a movie.
	ErrStrategyEvaluation = errors.New("strategy evaluation failed")

	// ErrNoStrategy indicates an embedding configuration without a strategy.
	ErrNoStrategy = errors.New("no text-to-embed strategy configured")

	// ErrUnknownStrategy indicates a strategy name with no registered function.
	ErrUnknownStrategy = errors.New("unknown text-to-embed strategy")
)

// StrategyError reports which movie of a batch made the strategy fail.
type StrategyError struct {
	Index int
	Title string
	Err   error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("movie %d (%q): %v: %v", e.Index, e.Title, ErrStrategyEvaluation, e.Err)
}

func (e *StrategyError) Unwrap() []error { return []error{ErrStrategyEvaluation, e.Err} }
