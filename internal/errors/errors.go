// Package errors provides sentinel errors and the contract-violation type
// shared by the chesscore packages.
//
// Two classes of failure exist. Malformed external input (FEN strings, UCI
// move text, configuration values) is reported through returned errors that
// wrap one of the sentinels below, so callers can test them with errors.Is.
// Programmer mistakes inside the core (bit-scanning an empty bitboard,
// removing a piece that is not there, unmaking a move that was never made)
// panic with a *ContractError instead: they are bugs, not recoverable states.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for external input.
var (
	// ErrInvalidFEN indicates a malformed FEN string.
	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrInvalidMove indicates move text that matches no generated move.
	ErrInvalidMove = errors.New("invalid move")

	// ErrInvalidConfig indicates invalid configuration values.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotCached indicates a perft result is not present in the cache.
	ErrNotCached = errors.New("not cached")

	// ErrOracle indicates a reference move generator failed or disagreed.
	ErrOracle = errors.New("reference generator failure")
)

// ContractError describes a violated precondition inside the core.
type ContractError struct {
	Op     string // Operation that detected the violation
	Detail string // What was wrong
}

// Error returns "op: detail".
func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: contract violation: %s", e.Op, e.Detail)
}

// Violation panics with a *ContractError built from op and a formatted detail.
func Violation(op, format string, args ...interface{}) {
	panic(&ContractError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

// IsContractError reports whether v (typically a recovered panic value) is a
// *ContractError, and returns it.
func IsContractError(v interface{}) (*ContractError, bool) {
	err, ok := v.(error)
	if !ok {
		return nil, false
	}
	var ce *ContractError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Wrap adds context to an error while preserving the underlying error
// for inspection with errors.Is() and errors.As().
func Wrap(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Wrapf adds formatted context to an error.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
