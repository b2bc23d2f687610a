package intcode

import (
	"errors"
	"fmt"
)

// FaultCode categorizes machine faults.
type FaultCode string

const (
	// ErrCodeUnknownOpcode indicates a memory cell at pc that does not decode.
	ErrCodeUnknownOpcode FaultCode = "UNKNOWN_OPCODE"

	// ErrCodeAddressOutOfBounds indicates an access outside memory.
	ErrCodeAddressOutOfBounds FaultCode = "ADDRESS_OUT_OF_BOUNDS"

	// ErrCodeMalformedInput indicates a console line that is not an integer.
	ErrCodeMalformedInput FaultCode = "MALFORMED_INPUT_LITERAL"

	// ErrCodeInputExhausted indicates the input stream closed while the
	// machine was waiting for a value.
	ErrCodeInputExhausted FaultCode = "INPUT_EXHAUSTED"

	// ErrCodeOutputRejected indicates the output stream refused a value.
	ErrCodeOutputRejected FaultCode = "OUTPUT_REJECTED"

	// ErrCodeCanceled indicates the run's context ended while blocked.
	ErrCodeCanceled FaultCode = "CANCELED"
)

// ErrSpent is returned by RunOnce on a machine that has already run.
var ErrSpent = errors.New("machine already run")

// FaultError is the error returned by a machine that reached the Faulted
// state. Every fault is fatal to the machine that raised it.
type FaultError struct {
	// Code identifies the fault category.
	Code FaultCode

	// PC is the address of the faulting instruction.
	PC int

	// Address is the offending address (ADDRESS_OUT_OF_BOUNDS).
	Address int64

	// Value is the offending raw cell (UNKNOWN_OPCODE).
	Value int64

	// Text is the offending console line (MALFORMED_INPUT_LITERAL).
	Text string

	// Err is the underlying stream or context error, if any.
	Err error
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	switch e.Code {
	case ErrCodeUnknownOpcode:
		return fmt.Sprintf("%s: %d (pc=%d)", e.Code, e.Value, e.PC)
	case ErrCodeAddressOutOfBounds:
		return fmt.Sprintf("%s: %d (pc=%d)", e.Code, e.Address, e.PC)
	case ErrCodeMalformedInput:
		return fmt.Sprintf("%s: %q (pc=%d)", e.Code, e.Text, e.PC)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (pc=%d)", e.Code, e.Err, e.PC)
	}
	return fmt.Sprintf("%s (pc=%d)", e.Code, e.PC)
}

// Unwrap returns the underlying error.
func (e *FaultError) Unwrap() error {
	return e.Err
}

func newUnknownOpcode(raw int64) *FaultError {
	return &FaultError{Code: ErrCodeUnknownOpcode, Value: raw}
}

func newAddressOutOfBounds(pc int, addr int64) *FaultError {
	return &FaultError{Code: ErrCodeAddressOutOfBounds, PC: pc, Address: addr}
}

// FaultCodeOf returns the fault code carried by err, or "" if err is not a
// machine fault.
func FaultCodeOf(err error) FaultCode {
	var fe *FaultError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// IsUnknownOpcode returns true if err is an UNKNOWN_OPCODE fault.
func IsUnknownOpcode(err error) bool {
	return FaultCodeOf(err) == ErrCodeUnknownOpcode
}

// IsAddressOutOfBounds returns true if err is an ADDRESS_OUT_OF_BOUNDS fault.
func IsAddressOutOfBounds(err error) bool {
	return FaultCodeOf(err) == ErrCodeAddressOutOfBounds
}

// IsInputExhausted returns true if err is an INPUT_EXHAUSTED fault.
func IsInputExhausted(err error) bool {
	return FaultCodeOf(err) == ErrCodeInputExhausted
}

// IsMalformedInput returns true if err is a MALFORMED_INPUT_LITERAL fault.
func IsMalformedInput(err error) bool {
	return FaultCodeOf(err) == ErrCodeMalformedInput
}

// ParseError reports a program cell that is not a base-10 integer.
type ParseError struct {
	Index int
	Text  string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cell %d: malformed integer %q", e.Index, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
