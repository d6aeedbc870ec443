// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

// ErrorKind identifies a kind of error.  It has full support for errors.Is and
// errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrNonCanonicalVarInt is returned when a variable length integer is
	// not canonically encoded.
	ErrNonCanonicalVarInt = ErrorKind("ErrNonCanonicalVarInt")

	// ErrVarBytesTooLong is returned when a variable-length byte slice
	// exceeds the maximum message size allowed.
	ErrVarBytesTooLong = ErrorKind("ErrVarBytesTooLong")

	// ErrTooManyTxIns is returned when the number of transaction inputs
	// exceeds what could possibly fit in a serialized transaction.
	ErrTooManyTxIns = ErrorKind("ErrTooManyTxIns")

	// ErrTooManyTxOuts is returned when the number of transaction outputs
	// exceeds what could possibly fit in a serialized transaction.
	ErrTooManyTxOuts = ErrorKind("ErrTooManyTxOuts")

	// ErrTrailingBytes is returned by the strict decoders when bytes remain
	// after the lock time.
	ErrTrailingBytes = ErrorKind("ErrTrailingBytes")

	// ErrValueOutOfRange is returned when an output value is negative or
	// above MaxSafeInteger.
	ErrValueOutOfRange = ErrorKind("ErrValueOutOfRange")

	// ErrMalformedHex is returned when a hex encoded transaction can not be
	// decoded.
	ErrMalformedHex = ErrorKind("ErrMalformedHex")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// MessageError describes an issue with a serialized transaction.
type MessageError struct {
	Func        string
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e MessageError) Error() string {
	if e.Func != "" {
		return e.Func + ": " + e.Description
	}
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e MessageError) Unwrap() error {
	return e.Err
}

// messageError creates a MessageError given a set of arguments.
func messageError(fn string, kind ErrorKind, desc string) MessageError {
	return MessageError{Func: fn, Err: kind, Description: desc}
}
