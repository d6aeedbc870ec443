// Copyright (c) 2017 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"
	"io"
	"testing"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrMalformedScript, "ErrMalformedScript"},
		{ErrStackUnderflow, "ErrStackUnderflow"},
		{ErrUnbalancedConditional, "ErrUnbalancedConditional"},
		{ErrDisabledOpcode, "ErrDisabledOpcode"},
		{ErrVerifyFailed, "ErrVerifyFailed"},
		{ErrSignatureCheckFailed, "ErrSignatureCheckFailed"},
		{ErrResourceLimitExceeded, "ErrResourceLimitExceeded"},
		{ErrMissingPreviousOutput, "ErrMissingPreviousOutput"},
		{ErrInvalidIndex, "ErrInvalidIndex"},
		{ErrEarlyReturn, "ErrEarlyReturn"},
		{ErrEmptyStack, "ErrEmptyStack"},
		{ErrEvalFalse, "ErrEvalFalse"},
		{ErrNumberTooBig, "ErrNumberTooBig"},
		{ErrMinimalData, "ErrMinimalData"},
		{ErrDivideByZero, "ErrDivideByZero"},
		{ErrNegativeShift, "ErrNegativeShift"},
		{ErrInvalidSplitRange, "ErrInvalidSplitRange"},
		{ErrInvalidOperandSize, "ErrInvalidOperandSize"},
		{ErrImpossibleEncoding, "ErrImpossibleEncoding"},
		{ErrInvalidPubKeyCount, "ErrInvalidPubKeyCount"},
		{ErrInvalidSignatureCount, "ErrInvalidSignatureCount"},
		{ErrNegativeLockTime, "ErrNegativeLockTime"},
		{ErrUnsatisfiedLockTime, "ErrUnsatisfiedLockTime"},
		{ErrInvalidSigHashType, "ErrInvalidSigHashType"},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("Error #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   Error
		want string
	}{
		{
			Error{Description: "some error"},
			"some error",
		},
		{
			Error{Description: "human-readable error"},
			"human-readable error",
		},
	}

	t.Logf("Running %d tests", len(tests))
	for i, test := range tests {
		result := test.in.Error()
		if result != test.want {
			t.Errorf("Error #%d\n got: %s want: %s", i, result,
				test.want)
			continue
		}
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as
// being a specific error kind via errors.Is and unwrapped via errors.As.
func TestErrorKindIsAs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{{
		name:      "ErrStackUnderflow == ErrStackUnderflow",
		err:       ErrStackUnderflow,
		target:    ErrStackUnderflow,
		wantMatch: true,
		wantAs:    ErrStackUnderflow,
	}, {
		name:      "Error.ErrStackUnderflow == ErrStackUnderflow",
		err:       scriptError(ErrStackUnderflow, ""),
		target:    ErrStackUnderflow,
		wantMatch: true,
		wantAs:    ErrStackUnderflow,
	}, {
		name:      "Error.ErrStackUnderflow == Error.ErrStackUnderflow",
		err:       scriptError(ErrStackUnderflow, ""),
		target:    scriptError(ErrStackUnderflow, ""),
		wantMatch: true,
		wantAs:    ErrStackUnderflow,
	}, {
		name:      "ErrEvalFalse != ErrSignatureCheckFailed",
		err:       ErrEvalFalse,
		target:    ErrSignatureCheckFailed,
		wantMatch: false,
		wantAs:    ErrEvalFalse,
	}, {
		name:      "Error.ErrEvalFalse != ErrSignatureCheckFailed",
		err:       scriptError(ErrEvalFalse, ""),
		target:    ErrSignatureCheckFailed,
		wantMatch: false,
		wantAs:    ErrEvalFalse,
	}, {
		name:      "Error.ErrEvalFalse != io.EOF",
		err:       scriptError(ErrEvalFalse, ""),
		target:    io.EOF,
		wantMatch: false,
		wantAs:    ErrEvalFalse,
	}}

	for _, test := range tests {
		// Ensure the error matches or not depending on the expected result.
		result := errors.Is(test.err, test.target)
		if result != test.wantMatch {
			t.Errorf("%s: incorrect error identification -- got %v, "+
				"want %v", test.name, result, test.wantMatch)
			continue
		}

		// Ensure the underlying error kind can be unwrapped and is the
		// expected kind.
		var kind ErrorKind
		if !errors.As(test.err, &kind) {
			t.Errorf("%s: unable to unwrap to error kind", test.name)
			continue
		}
		if kind != test.wantAs {
			t.Errorf("%s: unexpected unwrapped error kind -- got %v, "+
				"want %v", test.name, kind, test.wantAs)
			continue
		}
	}
}
