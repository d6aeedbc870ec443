// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2016 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript_test

import (
	"bytes"
	"testing"

	"github.com/stasproject/stasd/txscript"
)

// TestScriptBuilderAddOp tests that pushing opcodes to a script via the
// ScriptBuilder API works as expected.
func TestScriptBuilderAddOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opcodes  []byte
		expected []byte
	}{
		{
			name:     "push OP_0",
			opcodes:  []byte{txscript.OP_0},
			expected: []byte{txscript.OP_0},
		},
		{
			name:     "push OP_1 OP_2",
			opcodes:  []byte{txscript.OP_1, txscript.OP_2},
			expected: []byte{txscript.OP_1, txscript.OP_2},
		},
		{
			name:     "push OP_CAT OP_SPLIT",
			opcodes:  []byte{txscript.OP_CAT, txscript.OP_SPLIT},
			expected: []byte{txscript.OP_CAT, txscript.OP_SPLIT},
		},
	}

	// Run tests and individually add each op via AddOp.
	builder := txscript.NewScriptBuilder()
	for i, test := range tests {
		builder.Reset()
		for _, opcode := range test.opcodes {
			builder.AddOp(opcode)
		}
		result, err := builder.Script()
		if err != nil {
			t.Errorf("ScriptBuilder.AddOp #%d (%s) unexpected "+
				"error: %v", i, test.name, err)
			continue
		}
		if !bytes.Equal(result, test.expected) {
			t.Errorf("ScriptBuilder.AddOp #%d (%s) wrong result\n"+
				"got: %x\nwant: %x", i, test.name, result,
				test.expected)
			continue
		}
	}

	// Run tests and bulk add ops via AddOps.
	for i, test := range tests {
		builder.Reset()
		result, err := builder.AddOps(test.opcodes).Script()
		if err != nil {
			t.Errorf("ScriptBuilder.AddOps #%d (%s) unexpected "+
				"error: %v", i, test.name, err)
			continue
		}
		if !bytes.Equal(result, test.expected) {
			t.Errorf("ScriptBuilder.AddOps #%d (%s) wrong result\n"+
				"got: %x\nwant: %x", i, test.name, result,
				test.expected)
			continue
		}
	}
}

// TestScriptBuilderAddInt64 tests that pushing signed integers to a script via
// the ScriptBuilder API works as expected.
func TestScriptBuilderAddInt64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		val      int64
		expected []byte
	}{
		{name: "push -1", val: -1, expected: []byte{txscript.OP_1NEGATE}},
		{name: "push small int 0", val: 0, expected: []byte{txscript.OP_0}},
		{name: "push small int 1", val: 1, expected: []byte{txscript.OP_1}},
		{name: "push small int 16", val: 16, expected: []byte{txscript.OP_16}},
		{name: "push 17", val: 17, expected: []byte{txscript.OP_DATA_1, 0x11}},
		{name: "push 65", val: 65, expected: []byte{txscript.OP_DATA_1, 0x41}},
		{name: "push 127", val: 127, expected: []byte{txscript.OP_DATA_1, 0x7f}},
		{name: "push 128", val: 128, expected: []byte{txscript.OP_DATA_2, 0x80, 0}},
		{name: "push 255", val: 255, expected: []byte{txscript.OP_DATA_2, 0xff, 0}},
		{name: "push 256", val: 256, expected: []byte{txscript.OP_DATA_2, 0, 0x01}},
		{name: "push 32767", val: 32767, expected: []byte{txscript.OP_DATA_2, 0xff, 0x7f}},
		{name: "push 32768", val: 32768, expected: []byte{txscript.OP_DATA_3, 0, 0x80, 0}},
		{name: "push -2", val: -2, expected: []byte{txscript.OP_DATA_1, 0x82}},
		{name: "push -17", val: -17, expected: []byte{txscript.OP_DATA_1, 0x91}},
		{name: "push -128", val: -128, expected: []byte{txscript.OP_DATA_2, 0x80, 0x80}},
		{name: "push -255", val: -255, expected: []byte{txscript.OP_DATA_2, 0xff, 0x80}},
		{name: "push -32768", val: -32768, expected: []byte{txscript.OP_DATA_3, 0, 0x80, 0x80}},
		{name: "push 2147483648", val: 2147483648,
			expected: []byte{txscript.OP_DATA_5, 0, 0, 0, 0x80, 0}},
	}

	builder := txscript.NewScriptBuilder()
	for i, test := range tests {
		builder.Reset().AddInt64(test.val)
		result, err := builder.Script()
		if err != nil {
			t.Errorf("ScriptBuilder.AddInt64 #%d (%s) unexpected "+
				"error: %v", i, test.name, err)
			continue
		}
		if !bytes.Equal(result, test.expected) {
			t.Errorf("ScriptBuilder.AddInt64 #%d (%s) wrong result\n"+
				"got: %x\nwant: %x", i, test.name, result,
				test.expected)
			continue
		}
	}
}

// TestScriptBuilderAddData tests that pushing data to a script via the
// ScriptBuilder API works as expected and conforms to BIP0062.
func TestScriptBuilderAddData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     []byte
		expected []byte
		useFull  bool // use AddFullData instead of AddData.
	}{
		// BIP0062: Pushing an empty byte sequence must use OP_0.
		{name: "push empty byte sequence", data: nil, expected: []byte{txscript.OP_0}},
		{name: "push 1 byte 0x00", data: []byte{0x00}, expected: []byte{txscript.OP_0}},

		// BIP0062: Pushing a 1-byte sequence of byte 0x01 through 0x10 must use OP_n.
		{name: "push 1 byte 0x01", data: []byte{0x01}, expected: []byte{txscript.OP_1}},
		{name: "push 1 byte 0x10", data: []byte{0x10}, expected: []byte{txscript.OP_16}},

		// BIP0062: Pushing the byte 0x81 must use OP_1NEGATE.
		{name: "push 1 byte 0x81", data: []byte{0x81}, expected: []byte{txscript.OP_1NEGATE}},

		// BIP0062: Pushing any other byte sequence up to 75 bytes must
		// use the normal data push (P{n}, where n is the number of bytes,
		// to push n bytes).
		{name: "push 1 byte 0x11", data: []byte{0x11}, expected: []byte{txscript.OP_DATA_1, 0x11}},
		{name: "push 1 byte 0x80", data: []byte{0x80}, expected: []byte{txscript.OP_DATA_1, 0x80}},
		{
			name:     "push data len 75",
			data:     bytes.Repeat([]byte{0x49}, 75),
			expected: append([]byte{txscript.OP_DATA_75}, bytes.Repeat([]byte{0x49}, 75)...),
		},

		// BIP0062: Pushing 76 to 255 bytes must use OP_PUSHDATA1.
		{
			name:     "push data len 76",
			data:     bytes.Repeat([]byte{0x49}, 76),
			expected: append([]byte{txscript.OP_PUSHDATA1, 76}, bytes.Repeat([]byte{0x49}, 76)...),
		},
		{
			name:     "push data len 255",
			data:     bytes.Repeat([]byte{0x49}, 255),
			expected: append([]byte{txscript.OP_PUSHDATA1, 255}, bytes.Repeat([]byte{0x49}, 255)...),
		},

		// BIP0062: Pushing 256 to 65535 bytes must use OP_PUSHDATA2.
		{
			name:     "push data len 256",
			data:     bytes.Repeat([]byte{0x49}, 256),
			expected: append([]byte{txscript.OP_PUSHDATA2, 0, 1}, bytes.Repeat([]byte{0x49}, 256)...),
		},

		// Pushes beyond 65535 bytes use OP_PUSHDATA4.  There is no
		// element size limit outside of strict evaluation.
		{
			name:     "push data len 65536",
			data:     bytes.Repeat([]byte{0x49}, 65536),
			expected: append([]byte{txscript.OP_PUSHDATA4, 0, 0, 1, 0}, bytes.Repeat([]byte{0x49}, 65536)...),
		},

		// AddFullData keeps the data push form for values AddData
		// would replace with small integer opcodes.
		{name: "push full empty", data: nil, expected: []byte{txscript.OP_0}, useFull: true},
		{name: "push full 1 byte 0x01", data: []byte{0x01}, expected: []byte{txscript.OP_DATA_1, 0x01}, useFull: true},
		{name: "push full 1 byte 0x81", data: []byte{0x81}, expected: []byte{txscript.OP_DATA_1, 0x81}, useFull: true},
	}

	builder := txscript.NewScriptBuilder()
	for i, test := range tests {
		if !test.useFull {
			builder.Reset().AddData(test.data)
		} else {
			builder.Reset().AddFullData(test.data)
		}
		result, _ := builder.Script()
		if !bytes.Equal(result, test.expected) {
			t.Errorf("ScriptBuilder.AddData #%d (%s) wrong result\n"+
				"got: %x\nwant: %x", i, test.name, result,
				test.expected)
			continue
		}
	}
}
