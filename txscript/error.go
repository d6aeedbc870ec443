// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.  The first group is
// the coarse taxonomy callers are expected to match on.  The second group
// narrows down the reason and is mostly useful for diagnostics.
const (
	// ErrMalformedScript is returned when a script contains a push that
	// reads past the end of the script or an opcode byte that is not
	// defined.
	ErrMalformedScript = ErrorKind("ErrMalformedScript")

	// ErrStackUnderflow is returned when an opcode requires more items on
	// the stack than are present.
	ErrStackUnderflow = ErrorKind("ErrStackUnderflow")

	// ErrUnbalancedConditional is returned when an OP_ELSE or OP_ENDIF is
	// encountered without a matching OP_IF or OP_NOTIF, or a script ends
	// with an open conditional.
	ErrUnbalancedConditional = ErrorKind("ErrUnbalancedConditional")

	// ErrDisabledOpcode is returned when a script contains an opcode that
	// is disabled by the active capabilities, is unconditionally
	// unsupported, or is reserved.
	ErrDisabledOpcode = ErrorKind("ErrDisabledOpcode")

	// ErrVerifyFailed is returned when OP_VERIFY, OP_EQUALVERIFY or
	// OP_NUMEQUALVERIFY finds a false condition.
	ErrVerifyFailed = ErrorKind("ErrVerifyFailed")

	// ErrSignatureCheckFailed is returned when a signature check fails,
	// either in a *VERIFY opcode or because the script finished with false
	// on the stack after a failed signature check.
	ErrSignatureCheckFailed = ErrorKind("ErrSignatureCheckFailed")

	// ErrResourceLimitExceeded is returned in strict mode when a script,
	// its operation count, the stack depth or a single element exceeds the
	// configured limit.
	ErrResourceLimitExceeded = ErrorKind("ErrResourceLimitExceeded")

	// ErrMissingPreviousOutput is returned when the previous output spent
	// by an input could not be resolved.
	ErrMissingPreviousOutput = ErrorKind("ErrMissingPreviousOutput")

	// ErrInvalidIndex is returned when an input index is out of range for
	// the transaction being evaluated.
	ErrInvalidIndex = ErrorKind("ErrInvalidIndex")

	// ErrEarlyReturn is returned when OP_RETURN is executed and returning
	// early has not been allowed.
	ErrEarlyReturn = ErrorKind("ErrEarlyReturn")

	// ErrEmptyStack is returned when the scripts finish with nothing on
	// the main stack.
	ErrEmptyStack = ErrorKind("ErrEmptyStack")

	// ErrEvalFalse is returned when the scripts finish with a false top
	// stack element.
	ErrEvalFalse = ErrorKind("ErrEvalFalse")

	// ErrNumberTooBig is returned when an item interpreted as an integer
	// is longer than the allowed numeric length.
	ErrNumberTooBig = ErrorKind("ErrNumberTooBig")

	// ErrMinimalData is returned when a script number is not minimally
	// encoded.
	ErrMinimalData = ErrorKind("ErrMinimalData")

	// ErrDivideByZero is returned by OP_DIV and OP_MOD with a zero
	// divisor.
	ErrDivideByZero = ErrorKind("ErrDivideByZero")

	// ErrNegativeShift is returned by OP_LSHIFT and OP_RSHIFT with a
	// negative shift amount.
	ErrNegativeShift = ErrorKind("ErrNegativeShift")

	// ErrInvalidSplitRange is returned by OP_SPLIT when the split position
	// is outside the item.
	ErrInvalidSplitRange = ErrorKind("ErrInvalidSplitRange")

	// ErrInvalidOperandSize is returned by the bitwise opcodes when the
	// operands differ in length.
	ErrInvalidOperandSize = ErrorKind("ErrInvalidOperandSize")

	// ErrImpossibleEncoding is returned by OP_NUM2BIN when the number does
	// not fit the requested size.
	ErrImpossibleEncoding = ErrorKind("ErrImpossibleEncoding")

	// ErrInvalidPubKeyCount is returned when the number of public keys
	// given to OP_CHECKMULTISIG is negative or above the strict limit.
	ErrInvalidPubKeyCount = ErrorKind("ErrInvalidPubKeyCount")

	// ErrInvalidSignatureCount is returned when the number of signatures
	// given to OP_CHECKMULTISIG is negative or above the key count.
	ErrInvalidSignatureCount = ErrorKind("ErrInvalidSignatureCount")

	// ErrNegativeLockTime is returned by OP_CHECKLOCKTIMEVERIFY when the
	// requested lock time is negative.
	ErrNegativeLockTime = ErrorKind("ErrNegativeLockTime")

	// ErrUnsatisfiedLockTime is returned by OP_CHECKLOCKTIMEVERIFY when
	// the transaction lock time does not satisfy the requested one.
	ErrUnsatisfiedLockTime = ErrorKind("ErrUnsatisfiedLockTime")

	// ErrInvalidSigHashType is returned when a signature hash type is not
	// one of the supported types.
	ErrInvalidSigHashType = ErrorKind("ErrInvalidSigHashType")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a script-related error.  It has full support for errors.Is
// and errors.As, so the caller can ascertain the specific reason for the
// error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// scriptError creates an Error given a set of arguments.
func scriptError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

