// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stas

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stasproject/stasd/txscript"
)

// Flags are the token capability bits stored in the flags field.
type Flags byte

const (
	// FlagFreezable allows the authority to freeze and unfreeze the token.
	FlagFreezable Flags = 1 << iota

	// FlagConfiscatable allows the authority to move the token to a new
	// owner.
	FlagConfiscatable

	// knownFlags is the mask of all defined flags.
	knownFlags = FlagFreezable | FlagConfiscatable
)

// flagNames maps each flag to its human-readable name in bit order.
var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagFreezable, "freezable"},
	{FlagConfiscatable, "confiscatable"},
}

// String returns the set flags joined by '|', or "none".
func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if unknown := f &^ knownFlags; unknown != 0 {
		names = append(names, fmt.Sprintf("0x%02x", byte(unknown)))
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

const (
	// hashSize is the size of the owner and redemption fields.
	hashSize = 20

	// MaxAuthorityKeys is the maximum number of authority keys.  It keeps
	// both multisig counts expressible as small integer opcodes.
	MaxAuthorityKeys = 16
)

var (
	// ErrNotTokenScript is returned when a script does not have the shape
	// of a token locking script.
	ErrNotTokenScript = errors.New("not a token locking script")

	// ErrInvalidParams is returned when locking script parameters are
	// inconsistent.
	ErrInvalidParams = errors.New("invalid token parameters")
)

// LockingParams are the fields of a token locking script.
type LockingParams struct {
	// Owner is the hash160 of the owner's public key.
	Owner [hashSize]byte

	// Redemption identifies the token issue.
	Redemption [hashSize]byte

	Flags Flags

	// Frozen blocks the owner path.  Only the authority form carries it.
	Frozen bool

	// AuthorityKeys are the serialized public keys of the authority.  The
	// owner form is used when there are none.
	AuthorityKeys     [][]byte
	AuthorityRequired int

	// ServiceFields holds one entry per set flag, in flag bit order.
	ServiceFields [][]byte

	// Data is arbitrary trailing data.
	Data [][]byte
}

// HasAuthority returns whether the params describe the authority form.
func (p *LockingParams) HasAuthority() bool {
	return len(p.AuthorityKeys) > 0
}

// invalidParams returns an error wrapping ErrInvalidParams.
func invalidParams(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

// validate checks the params are consistent and can be encoded.
func (p *LockingParams) validate() error {
	if p.Flags&^knownFlags != 0 {
		return invalidParams("unknown flags %s", p.Flags)
	}
	if want := bits.OnesCount8(uint8(p.Flags)); len(p.ServiceFields) != want {
		return invalidParams("flags %s need %d service fields, got %d",
			p.Flags, want, len(p.ServiceFields))
	}

	if !p.HasAuthority() {
		if p.Flags != 0 {
			return invalidParams("flags %s require authority keys",
				p.Flags)
		}
		if p.Frozen {
			return invalidParams("frozen tokens require authority keys")
		}
		return nil
	}

	numKeys := len(p.AuthorityKeys)
	if numKeys > MaxAuthorityKeys {
		return invalidParams("%d authority keys exceeds the maximum of %d",
			numKeys, MaxAuthorityKeys)
	}
	if p.AuthorityRequired < 1 || p.AuthorityRequired > numKeys {
		return invalidParams("%d required signatures with %d authority "+
			"keys", p.AuthorityRequired, numKeys)
	}
	for i, key := range p.AuthorityKeys {
		if _, err := btcec.ParsePubKey(key); err != nil {
			return invalidParams("authority key %d: %v", i, err)
		}
	}
	return nil
}

// smallIntToken returns the OP_0 or OP_1 through OP_16 token for n.
func smallIntToken(n int) txscript.Token {
	if n == 0 {
		return txscript.Token{Opcode: txscript.OP_0}
	}
	return txscript.Token{Opcode: byte(txscript.OP_1 + n - 1)}
}

// op returns the token for a non-push opcode.
func op(opcode byte) txscript.Token {
	return txscript.Token{Opcode: opcode}
}

// ownerTokens returns the tokens of the pay-to-pubkey-hash owner check.
func ownerTokens(owner *[hashSize]byte) []txscript.Token {
	return []txscript.Token{
		op(txscript.OP_DUP),
		op(txscript.OP_HASH160),
		txscript.PushToken(owner[:]),
		op(txscript.OP_EQUALVERIFY),
		op(txscript.OP_CHECKSIG),
	}
}

// NewLockingScript returns the token locking script for the params.
func NewLockingScript(params *LockingParams) ([]byte, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	var tokens []txscript.Token
	if !params.HasAuthority() {
		tokens = ownerTokens(&params.Owner)
	} else {
		tokens = append(tokens, op(txscript.OP_IF),
			smallIntToken(params.AuthorityRequired))
		for _, key := range params.AuthorityKeys {
			tokens = append(tokens, txscript.PushToken(key))
		}
		frozen := 0
		if params.Frozen {
			frozen = 1
		}
		tokens = append(tokens,
			smallIntToken(len(params.AuthorityKeys)),
			op(txscript.OP_CHECKMULTISIG),
			op(txscript.OP_ELSE),
			smallIntToken(frozen),
			op(txscript.OP_NOT),
			op(txscript.OP_VERIFY))
		tokens = append(tokens, ownerTokens(&params.Owner)...)
		tokens = append(tokens, op(txscript.OP_ENDIF))
	}

	tokens = append(tokens,
		op(txscript.OP_RETURN),
		txscript.PushToken(params.Redemption[:]),
		txscript.PushToken([]byte{byte(params.Flags)}))
	for _, field := range params.ServiceFields {
		tokens = append(tokens, txscript.PushToken(field))
	}
	for _, data := range params.Data {
		tokens = append(tokens, txscript.PushToken(data))
	}

	return txscript.EncodeScript(tokens)
}

// tokenReader walks decoded tokens while matching a skeleton.
type tokenReader struct {
	tokens []txscript.Token
	pos    int
	err    error
}

// fail records the first mismatch.
func (r *tokenReader) fail(format string, args ...interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: token %d: %s", ErrNotTokenScript, r.pos,
			fmt.Sprintf(format, args...))
	}
}

// next returns the next token, or an empty OP_INVALIDOPCODE token once the
// tokens are exhausted.
func (r *tokenReader) next() txscript.Token {
	if r.pos >= len(r.tokens) {
		r.fail("unexpected end of script")
		return txscript.Token{Opcode: txscript.OP_INVALIDOPCODE}
	}
	t := r.tokens[r.pos]
	r.pos++
	return t
}

// expect consumes the next token and requires it to be the opcode.
func (r *tokenReader) expect(opcode byte) {
	pos := r.pos
	if t := r.next(); r.err == nil && t.Opcode != opcode {
		r.pos = pos
		r.fail("want opcode 0x%02x, got %v", opcode, t)
	}
}

// push consumes the next token and requires it to push exactly size bytes
// when size is non-negative.
func (r *tokenReader) push(size int) []byte {
	pos := r.pos
	t := r.next()
	if r.err != nil {
		return nil
	}
	if !t.IsPush() || (size >= 0 && len(t.Data) != size) {
		r.pos = pos
		r.fail("want a %d byte push, got %v", size, t)
		return nil
	}
	return t.Data
}

// smallInt consumes the next token and requires it to be a small integer
// opcode.
func (r *tokenReader) smallInt() int {
	pos := r.pos
	t := r.next()
	if r.err != nil {
		return 0
	}
	switch {
	case t.Opcode == txscript.OP_0:
		return 0
	case t.Opcode >= txscript.OP_1 && t.Opcode <= txscript.OP_16:
		return int(t.Opcode-txscript.OP_1) + 1
	}
	r.pos = pos
	r.fail("want a small integer, got %v", t)
	return 0
}

// owner consumes the owner check and stores the owner hash.
func (r *tokenReader) owner(p *LockingParams) {
	r.expect(txscript.OP_DUP)
	r.expect(txscript.OP_HASH160)
	copy(p.Owner[:], r.push(hashSize))
	r.expect(txscript.OP_EQUALVERIFY)
	r.expect(txscript.OP_CHECKSIG)
}

// copyBytes returns a copy of b so the decoded params do not alias the
// script.
func copyBytes(b []byte) []byte {
	return append([]byte(nil), b...)
}

// DecodeLockingScript decomposes a token locking script into its params.  An
// error wrapping ErrNotTokenScript is returned when the script is malformed or
// does not match either form.
func DecodeLockingScript(script []byte) (*LockingParams, error) {
	tokens, err := txscript.DecodeScript(script)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotTokenScript, err)
	}

	var p LockingParams
	r := tokenReader{tokens: tokens}
	if len(tokens) > 0 && tokens[0].Opcode == txscript.OP_IF {
		r.expect(txscript.OP_IF)
		p.AuthorityRequired = r.smallInt()
		for r.err == nil && r.pos < len(tokens) &&
			tokens[r.pos].IsPush() && len(tokens[r.pos].Data) > 0 {

			p.AuthorityKeys = append(p.AuthorityKeys,
				copyBytes(r.push(-1)))
		}
		if numKeys := r.smallInt(); r.err == nil &&
			numKeys != len(p.AuthorityKeys) {

			r.fail("key count %d does not match %d keys", numKeys,
				len(p.AuthorityKeys))
		}
		r.expect(txscript.OP_CHECKMULTISIG)
		r.expect(txscript.OP_ELSE)
		switch frozen := r.smallInt(); {
		case r.err != nil:
		case frozen > 1:
			r.fail("frozen marker %d is not 0 or 1", frozen)
		default:
			p.Frozen = frozen == 1
		}
		r.expect(txscript.OP_NOT)
		r.expect(txscript.OP_VERIFY)
		r.owner(&p)
		r.expect(txscript.OP_ENDIF)
	} else {
		r.owner(&p)
	}

	r.expect(txscript.OP_RETURN)
	copy(p.Redemption[:], r.push(hashSize))
	if flags := r.push(1); r.err == nil {
		p.Flags = Flags(flags[0])
	}
	if r.err != nil {
		return nil, r.err
	}

	numService := bits.OnesCount8(uint8(p.Flags))
	for i := 0; i < numService; i++ {
		p.ServiceFields = append(p.ServiceFields, copyBytes(r.push(-1)))
	}
	for r.err == nil && r.pos < len(tokens) {
		p.Data = append(p.Data, copyBytes(r.push(-1)))
	}
	if r.err != nil {
		return nil, r.err
	}

	// The decoded params must describe a script the builder would accept.
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotTokenScript, err)
	}
	return &p, nil
}

// IsTokenScript returns whether the script decodes as a token locking script.
func IsTokenScript(script []byte) bool {
	_, err := DecodeLockingScript(script)
	return err == nil
}
