// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stasproject/stasd/wire"
)

// checkSigningHashType returns an error if the hash type can not be encoded in
// the trailing byte of a signature or has an unknown base type.
func checkSigningHashType(hashType SigHashType) error {
	if hashType > 0xff {
		str := fmt.Sprintf("hash type 0x%x does not fit in a byte",
			uint32(hashType))
		return scriptError(ErrInvalidSigHashType, str)
	}

	switch hashType.baseType() {
	case SigHashAll, SigHashNone, SigHashSingle:
		return nil
	}

	str := fmt.Sprintf("hash type 0x%x has an unknown base type",
		uint32(hashType))
	return scriptError(ErrInvalidSigHashType, str)
}

// RawTxInSignature returns the serialized ECDSA signature for the input idx of
// the given transaction, with hashType appended to it.  The amount is the
// value of the output being spent and subScript is the script code being
// signed.
func RawTxInSignature(tx *wire.MsgTx, idx int, subScript []byte, amount int64,
	hashType SigHashType, key *btcec.PrivateKey) ([]byte, error) {

	if err := checkSigningHashType(hashType); err != nil {
		return nil, err
	}

	hash, err := CalcSignatureHash(subScript, nil, hashType, tx, idx, amount)
	if err != nil {
		return nil, err
	}

	signature := ecdsa.Sign(key, hash)
	return append(signature.Serialize(), byte(hashType)), nil
}

// SignatureScript creates an input unlocking script for tx to spend coins sent
// from a previous output to the owner of privKey. tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be filled
// or empty. The returned script is calculated to be used as the idx'th txin
// unlocking script for tx. subscript is the locking script of the previous
// output being used as the idx'th input. privKey is serialized in either a
// compressed or uncompressed format based on compress. This format must match
// the same format used to generate the payment address, or the script
// validation will fail.
func SignatureScript(tx *wire.MsgTx, idx int, subscript []byte, amount int64,
	hashType SigHashType, privKey *btcec.PrivateKey, compress bool) ([]byte, error) {

	sig, err := RawTxInSignature(tx, idx, subscript, amount, hashType, privKey)
	if err != nil {
		return nil, err
	}

	pk := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pk.SerializeCompressed()
	} else {
		pkData = pk.SerializeUncompressed()
	}

	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}
