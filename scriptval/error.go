// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package scriptval

import (
	"fmt"
)

// ErrorCode identifies a kind of validation failure.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrMissingTxOut indicates a transaction input references an output
	// the previous output fetcher does not know about.
	ErrMissingTxOut ErrorCode = iota

	// ErrScriptMalformed indicates a script could not be parsed or an
	// engine could not be created for it.
	ErrScriptMalformed

	// ErrScriptValidation indicates the result of executing a script pair
	// failed.
	ErrScriptValidation
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrMissingTxOut:     "ErrMissingTxOut",
	ErrScriptMalformed:  "ErrScriptMalformed",
	ErrScriptValidation: "ErrScriptValidation",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a failed input.  The caller can use type assertions to
// determine if a failure was specifically due to a rule violation and access
// the ErrorCode field to ascertain the specific reason.  The underlying script
// error, when there is one, is reachable with errors.Is and errors.As.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying script error, if any
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying script error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates an RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string, err error) RuleError {
	return RuleError{ErrorCode: c, Description: desc, Err: err}
}
