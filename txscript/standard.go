// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/ripemd160"
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockchain.
const (
	NonStandardTy ScriptClass = iota // None of the recognized forms.
	PubKeyHashTy                     // Pay pubkey hash.
	MultiSigTy                       // Multi signature.
	NullDataTy                       // Empty data-only (provably prunable).
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy: "nonstandard",
	PubKeyHashTy:  "pubkeyhash",
	MultiSigTy:    "multisig",
	NullDataTy:    "nulldata",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// Hash160 calculates the hash ripemd160(sha256(b)).
func Hash160(buf []byte) []byte {
	return calcHash(calcHash(buf, sha256.New()), ripemd160.New())
}

// extractPubKeyHash extracts the public key hash from the passed script if it
// is a standard pay-to-pubkey-hash script.  It will return nil otherwise.
func extractPubKeyHash(script []byte) []byte {
	// A pay-to-pubkey-hash script is of the form:
	//  OP_DUP OP_HASH160 <20-byte hash> OP_EQUALVERIFY OP_CHECKSIG
	if len(script) == 25 &&
		script[0] == OP_DUP &&
		script[1] == OP_HASH160 &&
		script[2] == OP_DATA_20 &&
		script[23] == OP_EQUALVERIFY &&
		script[24] == OP_CHECKSIG {

		return script[3:23]
	}

	return nil
}

// ExtractPubKeyHash returns the public key hash committed to by a standard
// pay-to-pubkey-hash script, or nil when the script has another form.
func ExtractPubKeyHash(script []byte) []byte {
	return extractPubKeyHash(script)
}

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is an OP_0, or OP_1 through OP_16.
func isSmallInt(op byte) bool {
	return op == OP_0 || (op >= OP_1 && op <= OP_16)
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt(), as an integer.
func asSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}

	return int(op - (OP_1 - 1))
}

// isPubKeyEncoding returns whether or not the passed data looks like a
// serialized compressed or uncompressed secp256k1 public key.
func isPubKeyEncoding(pubKey []byte) bool {
	switch {
	case len(pubKey) == 33 && (pubKey[0] == 0x02 || pubKey[0] == 0x03):
		return true
	case len(pubKey) == 65 && pubKey[0] == 0x04:
		return true
	}
	return false
}

// multiSigDetails houses details extracted from a standard multisig script.
type multiSigDetails struct {
	requiredSigs int
	numPubKeys   int
	pubKeys      [][]byte
	valid        bool
}

// extractMultisigScriptDetails attempts to extract details from the passed
// script if it is a standard multisig script.  The returned details struct will
// have the valid flag set to false otherwise.
func extractMultisigScriptDetails(script []byte) multiSigDetails {
	// A multi-signature script is of the form:
	//  NUM_SIGS PUBKEY PUBKEY PUBKEY ... NUM_PUBKEYS OP_CHECKMULTISIG

	// The script can't possibly be a multisig script if it doesn't end with
	// OP_CHECKMULTISIG or have at least two small integer pushes preceding it.
	// Fail fast to avoid more work below.
	if len(script) < 3 || script[len(script)-1] != OP_CHECKMULTISIG {
		return multiSigDetails{}
	}

	// The first opcode must be a small integer specifying the number of
	// signatures required.
	tokenizer := MakeScriptTokenizer(script)
	if !tokenizer.Next() || !isSmallInt(tokenizer.Opcode()) {
		return multiSigDetails{}
	}
	requiredSigs := asSmallInt(tokenizer.Opcode())

	// The next series of opcodes must either push public keys or be a small
	// integer specifying the number of public keys.
	var pubKeys [][]byte
	for tokenizer.Next() {
		data := tokenizer.Data()
		if !isPubKeyEncoding(data) {
			break
		}
		pubKeys = append(pubKeys, data)
	}
	if tokenizer.Done() {
		return multiSigDetails{}
	}

	// The next opcode must be a small integer specifying the number of public
	// keys required.
	op := tokenizer.Opcode()
	if !isSmallInt(op) || asSmallInt(op) != len(pubKeys) ||
		requiredSigs > len(pubKeys) {

		return multiSigDetails{}
	}

	// There must only be a single opcode left unparsed which will be
	// OP_CHECKMULTISIG per the check above.
	if int32(len(tokenizer.Script()))-tokenizer.ByteIndex() != 1 {
		return multiSigDetails{}
	}

	return multiSigDetails{
		requiredSigs: requiredSigs,
		numPubKeys:   len(pubKeys),
		pubKeys:      pubKeys,
		valid:        true,
	}
}

// isNullDataScript returns whether or not the passed script is a data carrier
// script of the form OP_RETURN <pushes...> or OP_FALSE OP_RETURN <pushes...>.
func isNullDataScript(script []byte) bool {
	if len(script) > 0 && script[0] == OP_FALSE {
		script = script[1:]
	}
	if len(script) < 1 || script[0] != OP_RETURN {
		return false
	}

	tokenizer := MakeScriptTokenizer(script[1:])
	for tokenizer.Next() {
		if tokenizer.Opcode() > OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	switch {
	case extractPubKeyHash(script) != nil:
		return PubKeyHashTy
	case extractMultisigScriptDetails(script).valid:
		return MultiSigTy
	case isNullDataScript(script):
		return NullDataTy
	}

	return NonStandardTy
}

// PayToPubKeyHashScript creates a new script to pay to the passed 20-byte
// public key hash.
func PayToPubKeyHashScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != 20 {
		str := fmt.Sprintf("public key hash is %d bytes instead of 20",
			len(pubKeyHash))
		return nil, scriptError(ErrInvalidOperandSize, str)
	}

	return NewScriptBuilder().AddOp(OP_DUP).AddOp(OP_HASH160).
		AddData(pubKeyHash).AddOp(OP_EQUALVERIFY).AddOp(OP_CHECKSIG).
		Script()
}

// PayToPubKeyHashUnlockingScript creates the unlocking script which spends a
// pay-to-pubkey-hash output with the given signature, hash type byte
// included, and serialized public key.
func PayToPubKeyHashUnlockingScript(sig, pubKey []byte) ([]byte, error) {
	return NewScriptBuilder().AddData(sig).AddData(pubKey).Script()
}

// MultiSigScript returns a valid script for a multisignature redemption where
// nrequired of the keys in pubkeys are required to have signed the transaction
// for success.  An Error with the error kind ErrInvalidSignatureCount will be
// returned if nrequired is larger than the number of keys provided.
func MultiSigScript(pubKeys [][]byte, nrequired int) ([]byte, error) {
	if nrequired < 0 || len(pubKeys) < nrequired {
		str := fmt.Sprintf("unable to generate multisig script with "+
			"%d required signatures when there are only %d public "+
			"keys available", nrequired, len(pubKeys))
		return nil, scriptError(ErrInvalidSignatureCount, str)
	}

	builder := NewScriptBuilder().AddInt64(int64(nrequired))
	for _, key := range pubKeys {
		builder.AddData(key)
	}
	builder.AddInt64(int64(len(pubKeys)))
	builder.AddOp(OP_CHECKMULTISIG)

	return builder.Script()
}

// NullDataScript creates a provably unspendable data carrier script of the
// form OP_FALSE OP_RETURN <data>.  The leading OP_FALSE keeps the output
// unspendable even when evaluation allows OP_RETURN.
func NullDataScript(data []byte) ([]byte, error) {
	return NewScriptBuilder().AddOp(OP_FALSE).AddOp(OP_RETURN).
		AddFullData(data).Script()
}

// PushedData returns an array of byte slices containing any pushed data found
// in the passed script.  This includes OP_0, but not OP_1 - OP_16.
func PushedData(script []byte) ([][]byte, error) {
	var data [][]byte
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		if tokenizer.Data() != nil {
			data = append(data, tokenizer.Data())
		} else if tokenizer.Opcode() == OP_0 {
			data = append(data, nil)
		}
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
