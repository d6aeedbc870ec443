// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package stas builds and decomposes the locking scripts of the token overlay
protocol.

A token output is an ordinary script.  The spending rules come first and are
followed by OP_RETURN and the token fields: the redemption id, the flags byte,
one service field per set flag and any trailing data.  The engine must be run
with OP_RETURN allowed so an executed OP_RETURN ends the locking script after
the spending rules have left their result on the stack.

Two forms exist.  The owner form only lets the owner spend:

	OP_DUP OP_HASH160 <owner> OP_EQUALVERIFY OP_CHECKSIG
	OP_RETURN <redemption> <flags> <service...> <data...>

The authority form adds a multi-signature path for the token authority and a
frozen marker that blocks the owner path:

	OP_IF <m> <keys...> <n> OP_CHECKMULTISIG
	OP_ELSE <frozen> OP_NOT OP_VERIFY
	        OP_DUP OP_HASH160 <owner> OP_EQUALVERIFY OP_CHECKSIG
	OP_ENDIF
	OP_RETURN <redemption> <flags> <service...> <data...>

Freezing, unfreezing and confiscating are authority spends which create an
output with updated fields.  Freeze, Unfreeze and Confiscate compute those
fields.  Nothing outside of the script enforces them.
*/
package stas
