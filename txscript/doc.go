// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the transaction script language of the BSV rule
set.

This package provides data structures and functions to parse, build and
execute transaction scripts, along with the signature hash algorithm the
signature checking opcodes verify against.

# Script Overview

Transaction scripts are written in a stack-base, FORTH-like language.

The script language consists of a number of opcodes which fall into several
categories such pushing and popping data to and from the stack, performing
basic and bitwise arithmetic, conditional branching, comparing hashes, and
checking cryptographic signatures.  Scripts are processed from left to right
and intentionally do not provide loops.

An input is evaluated by running its unlocking script followed by the locking
script of the output it spends.  Both scripts share the same data and
alternate stacks.  The input is valid when neither script fails and the top
stack item is true at the end.

# Rule Set

The opcodes re-enabled by the monolith upgrade (OP_CAT, OP_SPLIT,
OP_NUM2BIN, OP_BIN2NUM and the bitwise logic opcodes) and by the magnetic
upgrade (OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT and OP_RSHIFT) are each gated by a
ScriptFlags bit, as is the requirement for every signature to carry the fork
id hash type bit.  Strict mode adds the resource limits in Limits.

# Errors

Errors returned by this package are of type txscript.Error.  This allows the
caller to programmatically determine the specific error by examining the Err
field of the type asserted txscript.Error while still providing rich
error messages with contextual information.  A convenience function named
errors.Is may be used to check for a specific kind.  See ErrorKind in the
package documentation for a full list.
*/
package txscript
