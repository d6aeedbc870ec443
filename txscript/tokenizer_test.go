// Copyright (c) 2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestScriptTokenizer ensures a wide variety of behavior provided by the script
// tokenizer performs as expected.
func TestScriptTokenizer(t *testing.T) {
	t.Parallel()

	type expectedResult struct {
		op    byte   // expected parsed opcode
		data  []byte // expected parsed data
		index int32  // expected index into raw script after parsing token
	}

	type tokenizerTest struct {
		name     string           // test description
		script   []byte           // the script to tokenize
		expected []expectedResult // the expected info after parsing each token
		finalIdx int32            // the expected final byte index
		err      error            // expected error
	}

	// Add both positive and negative tests for OP_DATA_1 through OP_DATA_75.
	const numTestsHint = 200
	tests := make([]tokenizerTest, 0, numTestsHint)
	for op := byte(OP_DATA_1); op < OP_DATA_75; op++ {
		data := bytes.Repeat([]byte{0x01}, int(op))
		tests = append(tests, tokenizerTest{
			name:     fmt.Sprintf("OP_DATA_%d", op),
			script:   append([]byte{op}, data...),
			expected: []expectedResult{{op, data, 1 + int32(op)}},
			finalIdx: 1 + int32(op),
		})

		// Create test that provides one less byte than the data push requires.
		tests = append(tests, tokenizerTest{
			name:     fmt.Sprintf("short OP_DATA_%d", op),
			script:   append([]byte{op}, data[1:]...),
			finalIdx: 0,
			err:      ErrMalformedScript,
		})
	}

	// Add both positive and negative tests for OP_PUSHDATA{1,2,4}.
	data := mustParseShortForm("0x01{76}")
	tests = append(tests, []tokenizerTest{{
		name:     "OP_PUSHDATA1",
		script:   mustParseShortForm("OP_PUSHDATA1 0x4c 0x01{76}"),
		expected: []expectedResult{{OP_PUSHDATA1, data, 2 + int32(len(data))}},
		finalIdx: 2 + int32(len(data)),
	}, {
		name:   "OP_PUSHDATA1 no data length",
		script: mustParseShortForm("OP_PUSHDATA1"),
		err:    ErrMalformedScript,
	}, {
		name:   "OP_PUSHDATA1 short data by 1 byte",
		script: mustParseShortForm("OP_PUSHDATA1 0x4c 0x01{75}"),
		err:    ErrMalformedScript,
	}, {
		name:     "OP_PUSHDATA2",
		script:   mustParseShortForm("OP_PUSHDATA2 0x4c00 0x01{76}"),
		expected: []expectedResult{{OP_PUSHDATA2, data, 3 + int32(len(data))}},
		finalIdx: 3 + int32(len(data)),
	}, {
		name:   "OP_PUSHDATA2 no data length",
		script: mustParseShortForm("OP_PUSHDATA2"),
		err:    ErrMalformedScript,
	}, {
		name:   "OP_PUSHDATA2 short data by 1 byte",
		script: mustParseShortForm("OP_PUSHDATA2 0x4c00 0x01{75}"),
		err:    ErrMalformedScript,
	}, {
		name:     "OP_PUSHDATA4",
		script:   mustParseShortForm("OP_PUSHDATA4 0x4c000000 0x01{76}"),
		expected: []expectedResult{{OP_PUSHDATA4, data, 5 + int32(len(data))}},
		finalIdx: 5 + int32(len(data)),
	}, {
		name:   "OP_PUSHDATA4 no data length",
		script: mustParseShortForm("OP_PUSHDATA4"),
		err:    ErrMalformedScript,
	}, {
		name:   "OP_PUSHDATA4 short data by 1 byte",
		script: mustParseShortForm("OP_PUSHDATA4 0x4c000000 0x01{75}"),
		err:    ErrMalformedScript,
	}}...)

	// Add tests for OP_0, and OP_1 through OP_16 (small integers/true/false).
	opcodes := []byte{OP_0}
	for op := byte(OP_1); op <= OP_16; op++ {
		opcodes = append(opcodes, op)
	}
	for _, op := range opcodes {
		tests = append(tests, tokenizerTest{
			name:     fmt.Sprintf("OP_%d", op),
			script:   []byte{op},
			expected: []expectedResult{{op, nil, 1}},
			finalIdx: 1,
		})
	}

	// Add various positive and negative tests for multi-opcode scripts.
	tests = append(tests, []tokenizerTest{{
		name:   "pay-to-pubkey-hash",
		script: mustParseShortForm("DUP HASH160 DATA_20 0x01{20} EQUAL CHECKSIG"),
		expected: []expectedResult{
			{OP_DUP, nil, 1}, {OP_HASH160, nil, 2},
			{OP_DATA_20, mustParseShortForm("0x01{20}"), 23},
			{OP_EQUAL, nil, 24}, {OP_CHECKSIG, nil, 25},
		},
		finalIdx: 25,
	}, {
		name:   "almost pay-to-pubkey-hash (short data)",
		script: mustParseShortForm("DUP HASH160 DATA_20 0x01{17} EQUAL CHECKSIG"),
		expected: []expectedResult{
			{OP_DUP, nil, 1}, {OP_HASH160, nil, 2},
		},
		finalIdx: 2,
		err:      ErrMalformedScript,
	}, {
		name:   "almost pay-to-pubkey-hash (overlapped data)",
		script: mustParseShortForm("DUP HASH160 DATA_20 0x01{19} EQUAL CHECKSIG"),
		expected: []expectedResult{
			{OP_DUP, nil, 1}, {OP_HASH160, nil, 2},
			{OP_DATA_20, mustParseShortForm("0x01{19} EQUAL"), 23},
			{OP_CHECKSIG, nil, 24},
		},
		finalIdx: 24,
	}, {
		name:   "undefined opcodes tokenize as bare opcodes",
		script: []byte{OP_1, OP_UNKNOWN186, OP_INVALIDOPCODE},
		expected: []expectedResult{
			{OP_1, nil, 1}, {OP_UNKNOWN186, nil, 2},
			{OP_INVALIDOPCODE, nil, 3},
		},
		finalIdx: 3,
	}, {
		name:     "empty script",
		script:   nil,
		finalIdx: 0,
	}}...)

	for _, test := range tests {
		tokenizer := MakeScriptTokenizer(test.script)
		var opcodeNum int
		for tokenizer.Next() {
			// Ensure Next never returns true when there is an error set.
			require.NoError(t, tokenizer.Err(), test.name)

			// Ensure the test data expects a token to be parsed.
			require.Less(t, opcodeNum, len(test.expected),
				"%q: unexpected token %d", test.name, opcodeNum)
			expected := test.expected[opcodeNum]

			require.Equal(t, expected.op, tokenizer.Opcode(),
				"%q: opcode #%d", test.name, opcodeNum)
			require.Equal(t, expected.data, tokenizer.Data(),
				"%q: data #%d", test.name, opcodeNum)
			require.Equal(t, expected.index, tokenizer.ByteIndex(),
				"%q: byte index #%d", test.name, opcodeNum)

			opcodeNum++
		}

		// Ensure the tokenizer claims it is done.  This should be the case
		// regardless of whether or not there was a parse error.
		require.True(t, tokenizer.Done(), test.name)

		// Ensure the expected number of opcodes were parsed.
		require.Equal(t, len(test.expected), opcodeNum, test.name)

		// Ensure the tokenizer byte index and error are as expected.
		require.Equal(t, test.finalIdx, tokenizer.ByteIndex(), test.name)
		if test.err == nil {
			require.NoError(t, tokenizer.Err(), test.name)
		} else {
			require.ErrorIs(t, tokenizer.Err(), test.err, test.name)
		}
	}
}

// TestScriptTokenizerStopsOnError ensures the tokenizer does not advance once
// a parse error has been encountered.
func TestScriptTokenizerStopsOnError(t *testing.T) {
	t.Parallel()

	script := mustParseShortForm("1 DATA_2 0x01")
	tokenizer := MakeScriptTokenizer(script)
	require.True(t, tokenizer.Next())
	require.False(t, tokenizer.Next())
	require.ErrorIs(t, tokenizer.Err(), ErrMalformedScript)

	// Calling Next again must not change the state.
	require.False(t, tokenizer.Next())
	require.Equal(t, int32(1), tokenizer.ByteIndex())
	require.Equal(t, byte(OP_1), tokenizer.Opcode())
	require.Equal(t, script, tokenizer.Script())
}
