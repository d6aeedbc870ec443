// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stasproject/stasd/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashForkID       SigHashType = 0x40
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	sigHashMask = 0x1f
)

// baseType returns the hash type with the modifier bits cleared.
func (t SigHashType) baseType() SigHashType {
	return t & sigHashMask
}

// String returns the hash type in human-readable form.
func (t SigHashType) String() string {
	var s string
	switch t.baseType() {
	case SigHashAll:
		s = "ALL"
	case SigHashNone:
		s = "NONE"
	case SigHashSingle:
		s = "SINGLE"
	default:
		return fmt.Sprintf("Unknown SigHashType (0x%x)", uint32(t))
	}
	if t&SigHashForkID != 0 {
		s += "|FORKID"
	}
	if t&SigHashAnyOneCanPay != 0 {
		s += "|ANYONECANPAY"
	}
	return s
}

// CalcSignaturePreimage builds the bytes a signature for the given input
// commits to.  The script code is the portion of the spent script after the
// last executed OP_CODESEPARATOR and amount is the value of the output being
// spent.  A nil sigHashes computes the transaction-wide midstate on the fly.
//
// The layout is the fork id layout: version, hashPrevOuts, hashSequence, the
// spent outpoint, the length prefixed script code, the amount, the input
// sequence, hashOutputs, the lock time and the full 32-bit hash type.
func CalcSignaturePreimage(scriptCode []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *wire.MsgTx, idx int, amount int64) ([]byte, error) {

	// As a sanity check, ensure the passed input index for the transaction
	// is valid.
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}
	if sigHashes == nil {
		sigHashes = NewTxSigHashes(tx)
	}

	// We'll utilize this buffer throughout to incrementally calculate
	// the signature preimage for this transaction.
	var sigHash bytes.Buffer
	sigHash.Grow(156 + wire.VarIntSerializeSize(uint64(len(scriptCode))) +
		len(scriptCode))

	// First write out, then encode the transaction's version number.
	var bVersion [4]byte
	binary.LittleEndian.PutUint32(bVersion[:], tx.Version)
	sigHash.Write(bVersion[:])

	// Next write out the possibly pre-calculated hashes for the sequence
	// numbers of all inputs, and the hashes of the previous outs for all
	// outputs.
	var zeroHash chainhash.Hash

	// If anyone can pay isn't active, then we can use the cached
	// hashPrevOuts, otherwise we just write zeroes for the prev outs.
	if hashType&SigHashAnyOneCanPay == 0 {
		sigHash.Write(sigHashes.HashPrevOuts[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	// If the sighash isn't anyone can pay, single, or none, the use the
	// cached hash sequences, otherwise write all zeroes for the
	// hashSequence.
	if hashType&SigHashAnyOneCanPay == 0 &&
		hashType.baseType() != SigHashSingle &&
		hashType.baseType() != SigHashNone {

		sigHash.Write(sigHashes.HashSequence[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	txIn := tx.TxIn[idx]

	// Next, write the outpoint being spent.  Writes to a bytes.Buffer
	// never fail.
	_ = wire.WriteOutPoint(&sigHash, &txIn.PreviousOutPoint)

	// The script code is serialized with a var int length prefix.
	_ = wire.WriteVarBytes(&sigHash, scriptCode)

	// Next, add the input amount, and sequence number of the input being
	// signed.
	var bAmount [8]byte
	binary.LittleEndian.PutUint64(bAmount[:], uint64(amount))
	sigHash.Write(bAmount[:])
	var bSequence [4]byte
	binary.LittleEndian.PutUint32(bSequence[:], txIn.Sequence)
	sigHash.Write(bSequence[:])

	// If the current signature mode isn't single, or none, then we can
	// re-use the pre-generated hashoutputs sighash fragment. Otherwise,
	// we'll serialize and add only the target output index to the signature
	// pre-image.
	switch {
	case hashType.baseType() != SigHashSingle &&
		hashType.baseType() != SigHashNone:

		sigHash.Write(sigHashes.HashOutputs[:])

	case hashType.baseType() == SigHashSingle && idx < len(tx.TxOut):
		var b bytes.Buffer
		_ = wire.WriteTxOut(&b, tx.TxOut[idx])
		sigHash.Write(chainhash.DoubleHashB(b.Bytes()))

	default:
		sigHash.Write(zeroHash[:])
	}

	// Finally, write out the transaction's locktime, and the sig hash
	// type.
	var bLockTime [4]byte
	binary.LittleEndian.PutUint32(bLockTime[:], tx.LockTime)
	sigHash.Write(bLockTime[:])
	var bHashType [4]byte
	binary.LittleEndian.PutUint32(bHashType[:], uint32(hashType))
	sigHash.Write(bHashType[:])

	return sigHash.Bytes(), nil
}

// CalcSignatureHash computes the double SHA-256 of the signature preimage for
// the given input.  This is the hash that is signed and verified.
func CalcSignatureHash(scriptCode []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *wire.MsgTx, idx int, amount int64) ([]byte, error) {

	preimage, err := CalcSignaturePreimage(scriptCode, sigHashes, hashType,
		tx, idx, amount)
	if err != nil {
		return nil, err
	}

	return chainhash.DoubleHashB(preimage), nil
}
