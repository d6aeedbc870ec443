// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package stas

import (
	"errors"
	"fmt"

	"github.com/stasproject/stasd/txscript"
)

var (
	// ErrNotFreezable is returned when freezing a token without the
	// freezable flag.
	ErrNotFreezable = errors.New("token is not freezable")

	// ErrNotConfiscatable is returned when confiscating a token without the
	// confiscatable flag.
	ErrNotConfiscatable = errors.New("token is not confiscatable")

	// ErrAlreadyFrozen is returned when freezing a frozen token.
	ErrAlreadyFrozen = errors.New("token is already frozen")

	// ErrNotFrozen is returned when unfreezing a token that is not frozen.
	ErrNotFrozen = errors.New("token is not frozen")
)

// OwnerUnlockingScript returns the unlocking script which spends a token
// through the owner path.  The authority form needs a false selector to take
// the owner branch.
func OwnerUnlockingScript(sig, pubKey []byte, authorityForm bool) ([]byte, error) {
	builder := txscript.NewScriptBuilder().AddData(sig).AddData(pubKey)
	if authorityForm {
		builder.AddOp(txscript.OP_FALSE)
	}
	return builder.Script()
}

// AuthorityUnlockingScript returns the unlocking script which spends an
// authority form token through the multi-signature path.  The signatures must
// be in the order of the authority keys they belong to.
func AuthorityUnlockingScript(sigs [][]byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder().AddOp(txscript.OP_0)
	for _, sig := range sigs {
		builder.AddData(sig)
	}
	return builder.AddOp(txscript.OP_TRUE).Script()
}

// clone returns a deep copy of the params.
func (p *LockingParams) clone() *LockingParams {
	dup := *p
	dup.AuthorityKeys = cloneFields(p.AuthorityKeys)
	dup.ServiceFields = cloneFields(p.ServiceFields)
	dup.Data = cloneFields(p.Data)
	return &dup
}

func cloneFields(fields [][]byte) [][]byte {
	if fields == nil {
		return nil
	}
	dup := make([][]byte, len(fields))
	for i, field := range fields {
		dup[i] = copyBytes(field)
	}
	return dup
}

// Freeze returns the params of the output created by freezing the token.
func Freeze(params *LockingParams) (*LockingParams, error) {
	switch {
	case params.Flags&FlagFreezable == 0:
		return nil, ErrNotFreezable
	case params.Frozen:
		return nil, ErrAlreadyFrozen
	}

	frozen := params.clone()
	frozen.Frozen = true
	if err := frozen.validate(); err != nil {
		return nil, fmt.Errorf("freeze: %w", err)
	}
	return frozen, nil
}

// Unfreeze returns the params of the output created by unfreezing the token.
func Unfreeze(params *LockingParams) (*LockingParams, error) {
	if !params.Frozen {
		return nil, ErrNotFrozen
	}

	unfrozen := params.clone()
	unfrozen.Frozen = false
	if err := unfrozen.validate(); err != nil {
		return nil, fmt.Errorf("unfreeze: %w", err)
	}
	return unfrozen, nil
}

// Confiscate returns the params of the output created by moving the token to
// the new owner.  A confiscated token is no longer frozen.
func Confiscate(params *LockingParams, newOwner []byte) (*LockingParams, error) {
	if params.Flags&FlagConfiscatable == 0 {
		return nil, ErrNotConfiscatable
	}
	if len(newOwner) != hashSize {
		return nil, invalidParams("owner hash is %d bytes instead of %d",
			len(newOwner), hashSize)
	}

	confiscated := params.clone()
	copy(confiscated.Owner[:], newOwner)
	confiscated.Frozen = false
	if err := confiscated.validate(); err != nil {
		return nil, fmt.Errorf("confiscate: %w", err)
	}
	return confiscated, nil
}
