package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFunctionName is returned when a call block is detected but the
	// function name is empty after trimming.
	ErrEmptyFunctionName = errors.New("parser: empty function name")

	// ErrMalformedParameterBlock marks a parameter block that the strict or
	// repair strategy could not decode. Parse recovers from it by returning
	// the call with zero parameters.
	ErrMalformedParameterBlock = errors.New("parser: malformed parameter block")
)

// ParamError describes a parameter block that failed to decode.
type ParamError struct {
	Strategy Strategy
	Block    string
	Err      error
}

func (e *ParamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parser: %s parameter block %q: %v", e.Strategy, e.Block, e.Err)
	}
	return fmt.Sprintf("parser: %s parameter block %q is malformed", e.Strategy, e.Block)
}

// Unwrap makes errors.Is(err, ErrMalformedParameterBlock) hold for every ParamError.
func (e *ParamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedParameterBlock}
	}
	return []error{ErrMalformedParameterBlock, e.Err}
}
