// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestPushToken ensures PushToken always picks the narrowest push opcode and
// never substitutes the small integer opcodes.
func TestPushToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dataLen int
		data    []byte
		opcode  byte
	}{
		{name: "empty", dataLen: 0, opcode: OP_0},
		{name: "small integer kept as data", data: []byte{0x05}, opcode: OP_DATA_1},
		{name: "negative one kept as data", data: []byte{0x81}, opcode: OP_DATA_1},
		{name: "75 bytes", dataLen: 75, opcode: OP_DATA_75},
		{name: "76 bytes", dataLen: 76, opcode: OP_PUSHDATA1},
		{name: "255 bytes", dataLen: 255, opcode: OP_PUSHDATA1},
		{name: "256 bytes", dataLen: 256, opcode: OP_PUSHDATA2},
		{name: "65535 bytes", dataLen: 65535, opcode: OP_PUSHDATA2},
		{name: "65536 bytes", dataLen: 65536, opcode: OP_PUSHDATA4},
	}

	for _, test := range tests {
		data := test.data
		if data == nil && test.dataLen > 0 {
			data = bytes.Repeat([]byte{0x49}, test.dataLen)
		}

		tok := PushToken(data)
		require.Equal(t, test.opcode, tok.Opcode, test.name)
		require.True(t, tok.IsPush(), test.name)

		// The token must survive an encode and decode round trip with the
		// data intact.
		script, err := EncodeScript([]Token{tok})
		require.NoError(t, err, test.name)
		tokens, err := DecodeScript(script)
		require.NoError(t, err, test.name)
		require.Len(t, tokens, 1, test.name)
		require.Equal(t, tok.Opcode, tokens[0].Opcode, test.name)
		require.True(t, bytes.Equal(data, tokens[0].Data), test.name)
	}
}

// TestTokenRoundTrip ensures decoding and re-encoding a script reproduces the
// exact original bytes, including non-minimal pushes.
func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script []byte
	}{
		{"empty", nil},
		{"pay-to-pubkey-hash", mustParseShortForm("DUP HASH160 DATA_20 " +
			"0x01{20} EQUALVERIFY CHECKSIG")},
		{"non-minimal PUSHDATA1", mustParseShortForm("PUSHDATA1 0x01 0x07")},
		{"non-minimal PUSHDATA2", mustParseShortForm("PUSHDATA2 0x0300 0x010203")},
		{"non-minimal PUSHDATA4", mustParseShortForm("PUSHDATA4 0x00000000")},
		{"small integers", mustParseShortForm("0 1 16 -1")},
		{"undefined opcodes", []byte{OP_UNKNOWN186, OP_INVALIDOPCODE}},
		{"conditionals", mustParseShortForm("IF 'abc' ELSE 'def' ENDIF")},
	}

	for _, test := range tests {
		tokens, err := DecodeScript(test.script)
		require.NoError(t, err, test.name)

		script, err := EncodeScript(tokens)
		require.NoError(t, err, test.name)
		require.True(t, bytes.Equal(test.script, script),
			"%s: got %x, want %x", test.name, script, test.script)
	}
}

// TestDecodeScript ensures decoded tokens carry the expected opcodes and data.
func TestDecodeScript(t *testing.T) {
	t.Parallel()

	script := mustParseShortForm("0 'ab' PUSHDATA1 0x01 0x07 CHECKSIG")
	tokens, err := DecodeScript(script)
	require.NoError(t, err)
	require.Equal(t, []Token{
		{Opcode: OP_0},
		{Opcode: OP_DATA_2, Data: []byte("ab")},
		{Opcode: OP_PUSHDATA1, Data: []byte{0x07}},
		{Opcode: OP_CHECKSIG},
	}, tokens)

	// Truncated pushes fail the strict decoder and decode to nil with the
	// lenient one.
	truncated := mustParseShortForm("1 DATA_5 0x0102")
	_, err = DecodeScript(truncated)
	require.ErrorIs(t, err, ErrMalformedScript)
	require.Nil(t, DecodeScriptLenient(truncated))
	require.Len(t, DecodeScriptLenient(script), 4)
}

// TestEncodeScriptErrors ensures tokens whose data does not agree with their
// opcode are rejected.
func TestEncodeScriptErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		tokens []Token
	}{
		{"data on non-push opcode", []Token{{Opcode: OP_DUP, Data: []byte{1}}}},
		{"data on OP_0", []Token{{Opcode: OP_0, Data: []byte{1}}}},
		{"short OP_DATA_2", []Token{{Opcode: OP_DATA_2, Data: []byte{1}}}},
		{"long OP_DATA_1", []Token{{Opcode: OP_DATA_1, Data: []byte{1, 2}}}},
		{"oversized PUSHDATA1", []Token{{Opcode: OP_PUSHDATA1,
			Data: make([]byte, 256)}}},
		{"oversized PUSHDATA2", []Token{{Opcode: OP_PUSHDATA2,
			Data: make([]byte, 65536)}}},
	}

	for _, test := range tests {
		_, err := EncodeScript(test.tokens)
		require.ErrorIs(t, err, ErrMalformedScript, test.name)
	}
}

// TestTokenString ensures tokens and scripts disassemble in the compact one
// line form.
func TestTokenString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "OP_DUP", Token{Opcode: OP_DUP}.String())
	require.Equal(t, "616263", Token{Opcode: OP_DATA_3,
		Data: []byte("abc")}.String())
	require.False(t, Token{Opcode: OP_1}.IsPush())

	disasm, err := DisasmString(mustParseShortForm("DUP HASH160 " +
		"DATA_2 0xabcd EQUALVERIFY CHECKSIG"))
	require.NoError(t, err)
	require.Equal(t, "OP_DUP OP_HASH160 abcd OP_EQUALVERIFY OP_CHECKSIG",
		disasm)

	disasm, err = DisasmString(mustParseShortForm("DUP DATA_2 0xab"))
	require.ErrorIs(t, err, ErrMalformedScript)
	require.Equal(t, "OP_DUP [error]", disasm)
}
