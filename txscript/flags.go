// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

// ScriptFlags is a bitmask defining additional operations or tests that will
// be done when executing a script pair.
type ScriptFlags uint32

const (
	// ScriptVerifyForkID requires every signature checked by the
	// interpreter to carry the fork id bit in its hash type.  Signatures
	// without it fail before any cryptographic verification.
	ScriptVerifyForkID ScriptFlags = 1 << iota

	// ScriptEnableMonolith enables OP_CAT, OP_SPLIT, OP_NUM2BIN,
	// OP_BIN2NUM, OP_AND, OP_OR, OP_XOR and OP_INVERT.
	ScriptEnableMonolith

	// ScriptEnableMagnetic enables OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT and
	// OP_RSHIFT.
	ScriptEnableMagnetic
)

// StandardScriptFlags are the script flags used by DefaultOptions.
const StandardScriptFlags = ScriptVerifyForkID | ScriptEnableMonolith |
	ScriptEnableMagnetic

// capabilities is the decoded form of ScriptFlags the opcode handlers
// consult.
type capabilities struct {
	forkIDRequired bool
	monolith       bool
	magnetic       bool
}

// capabilities converts the flags into named booleans.
func (f ScriptFlags) capabilities() capabilities {
	return capabilities{
		forkIDRequired: f&ScriptVerifyForkID == ScriptVerifyForkID,
		monolith:       f&ScriptEnableMonolith == ScriptEnableMonolith,
		magnetic:       f&ScriptEnableMagnetic == ScriptEnableMagnetic,
	}
}

const (
	// DefaultMaxScriptSize is the maximum allowed length of a raw script
	// in strict mode.
	DefaultMaxScriptSize = 10000

	// DefaultMaxOps is the maximum number of non-push operations allowed
	// per script in strict mode.
	DefaultMaxOps = 500

	// DefaultMaxStackSize is the maximum combined number of items allowed
	// on the main and alternate stacks in strict mode.
	DefaultMaxStackSize = 1000

	// DefaultMaxElementSize is the maximum number of bytes allowed in a
	// single stack element in strict mode.
	DefaultMaxElementSize = 520

	// MaxPubKeysPerMultiSig is the maximum number of public keys allowed
	// in a multi-signature check in strict mode.
	MaxPubKeysPerMultiSig = 20

	// LockTimeThreshold is the number below which a lock time is
	// interpreted to be a block number.
	LockTimeThreshold = 5e8 // Tue Nov 5 00:53:20 1985 UTC
)

// Limits are the resource ceilings enforced in strict mode.  Zero fields use
// the matching Default value.
type Limits struct {
	MaxScriptSize  int
	MaxOps         int
	MaxStackSize   int
	MaxElementSize int
}

// withDefaults returns a copy of the limits with zero fields filled in.
func (l Limits) withDefaults() Limits {
	if l.MaxScriptSize <= 0 {
		l.MaxScriptSize = DefaultMaxScriptSize
	}
	if l.MaxOps <= 0 {
		l.MaxOps = DefaultMaxOps
	}
	if l.MaxStackSize <= 0 {
		l.MaxStackSize = DefaultMaxStackSize
	}
	if l.MaxElementSize <= 0 {
		l.MaxElementSize = DefaultMaxElementSize
	}
	return l
}

// Options configures a script evaluation.
type Options struct {
	// AllowOpReturn makes an executed OP_RETURN end the current script
	// successfully instead of failing it.
	AllowOpReturn bool

	// Flags selects the active rule set.
	Flags ScriptFlags

	// Strict enables the resource limits, minimal number encoding and
	// the multisig key count limit.
	Strict bool

	// Limits overrides the strict mode resource limits.
	Limits Limits

	// Trace records every executed opcode in the result.
	Trace bool

	// SigCache, when set, is consulted before verifying a signature and
	// updated after a successful verification.
	SigCache *SigCache
}

// DefaultOptions returns options with the standard flags set and strict mode
// off.
func DefaultOptions() *Options {
	return &Options{Flags: StandardScriptFlags}
}
