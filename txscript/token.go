// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Token is a single decoded script element: an opcode and, for data pushes,
// the pushed bytes.  Data is nil for opcodes that carry no payload.
type Token struct {
	Opcode byte
	Data   []byte
}

// String returns the compact disassembly of the token.
func (t Token) String() string {
	var buf strings.Builder
	disasmOpcode(&buf, &opcodeArray[t.Opcode], t.Data, true)
	return buf.String()
}

// IsPush returns whether the token pushes data, including OP_0.
func (t Token) IsPush() bool {
	return t.Opcode <= OP_PUSHDATA4
}

// PushToken returns the token which pushes the data with the narrowest push
// opcode able to hold it.  Unlike the script builder it never substitutes the
// small integer opcodes, so the data is always pushed verbatim.
func PushToken(data []byte) Token {
	dataLen := len(data)
	switch {
	case dataLen == 0:
		return Token{Opcode: OP_0}
	case dataLen < OP_PUSHDATA1:
		return Token{Opcode: byte(dataLen), Data: data}
	case dataLen <= 0xff:
		return Token{Opcode: OP_PUSHDATA1, Data: data}
	case dataLen <= 0xffff:
		return Token{Opcode: OP_PUSHDATA2, Data: data}
	}
	return Token{Opcode: OP_PUSHDATA4, Data: data}
}

// DecodeScript splits the script into its tokens.  The data of push tokens
// references the passed script.  A push that runs past the end of the script
// results in an error with the ErrMalformedScript kind.  Bytes without an
// opcode definition are returned as bare tokens.
func DecodeScript(script []byte) ([]Token, error) {
	var tokens []Token
	tokenizer := MakeScriptTokenizer(script)
	for tokenizer.Next() {
		var data []byte
		if tokenizer.Opcode() != OP_0 {
			data = tokenizer.Data()
		}
		tokens = append(tokens, Token{
			Opcode: tokenizer.Opcode(),
			Data:   data,
		})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, err
	}
	return tokens, nil
}

// DecodeScriptLenient is like DecodeScript except that malformed scripts
// decode to nil instead of returning an error.
func DecodeScriptLenient(script []byte) []Token {
	tokens, err := DecodeScript(script)
	if err != nil {
		return nil
	}
	return tokens
}

// checkToken returns an error when the data of the token does not agree with
// its opcode.
func checkToken(i int, t Token) error {
	op := &opcodeArray[t.Opcode]
	dataLen := len(t.Data)

	var maxLen int64
	switch op.length {
	case 1:
		maxLen = 0
	case -1:
		maxLen = 0xff
	case -2:
		maxLen = 0xffff
	case -4:
		maxLen = 0xffffffff
	default:
		if dataLen != op.length-1 {
			str := fmt.Sprintf("token %d: opcode %s requires %d bytes "+
				"of data, got %d", i, op.name, op.length-1, dataLen)
			return scriptError(ErrMalformedScript, str)
		}
		return nil
	}

	if int64(dataLen) > maxLen {
		str := fmt.Sprintf("token %d: opcode %s can not push %d bytes",
			i, op.name, dataLen)
		return scriptError(ErrMalformedScript, str)
	}
	return nil
}

// EncodeScript serializes the tokens into a script.  Every token's opcode is
// written as given, so non-minimal pushes survive a decode and encode round
// trip.  An error with the ErrMalformedScript kind is returned when a token's
// data does not match its opcode.
func EncodeScript(tokens []Token) ([]byte, error) {
	size := 0
	for i, t := range tokens {
		if err := checkToken(i, t); err != nil {
			return nil, err
		}
		size += 1 + len(t.Data)
		if op := opcodeArray[t.Opcode]; op.length < 0 {
			size += -op.length
		}
	}

	script := make([]byte, 0, size)
	for _, t := range tokens {
		script = append(script, t.Opcode)
		switch opcodeArray[t.Opcode].length {
		case -1:
			script = append(script, byte(len(t.Data)))
		case -2:
			script = binary.LittleEndian.AppendUint16(script,
				uint16(len(t.Data)))
		case -4:
			script = binary.LittleEndian.AppendUint32(script,
				uint32(len(t.Data)))
		}
		script = append(script, t.Data...)
	}
	return script, nil
}

// DisasmString formats a disassembled script for one line printing.  When the
// script fails to parse, the returned string will contain the disassembled
// script up to the point the failure occurred along with the string '[error]'
// appended.  In addition, the reason the script failed to parse is returned
// if the caller wants more information about the failure.
func DisasmString(script []byte) (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(script)
	if tokenizer.Next() {
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	for tokenizer.Next() {
		disbuf.WriteByte(' ')
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), true)
	}
	if tokenizer.Err() != nil {
		if tokenizer.ByteIndex() != 0 {
			disbuf.WriteByte(' ')
		}
		disbuf.WriteString("[error]")
	}
	return disbuf.String(), tokenizer.Err()
}
