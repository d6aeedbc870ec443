// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/stasproject/stasd/wire"
)

const (
	// maxInt32 is the maximum int32 value.
	maxInt32 = 1<<31 - 1

	// minInt32 is the minimum int32 value.
	minInt32 = -1 << 31

	// defaultScriptNumLen is the default number of bytes data being
	// interpreted as an integer may be for the majority of opcodes.  Eight
	// bytes holds any satoshi amount.
	defaultScriptNumLen = maxScriptNumLen

	// cltvScriptNumLen is the number of bytes OP_CHECKLOCKTIMEVERIFY
	// accepts for its lock time operand.  A lock time is an unsigned
	// 32-bit value, so an extra byte is needed for the sign.
	cltvScriptNumLen = 5

	// maxScriptNumLen is the largest numeric length makeScriptNum
	// decodes into an int64.
	maxScriptNumLen = 8

	// maxScriptNum is the largest magnitude a script number of
	// maxScriptNumLen bytes can hold.  The sign takes the top bit, so the
	// range is symmetric and excludes math.MinInt64.
	maxScriptNum = math.MaxInt64
)

// scriptNum represents a numeric value used in the scripting engine with
// special handling to deal with the subtle semantics required by consensus.
//
// All numbers are stored on the data and alternate stacks encoded as little
// endian with a sign bit.  All numeric opcodes such as OP_ADD, OP_SUB,
// and OP_MUL, operate on integers of up to 8 bytes in the range
// [-2^63 + 1, 2^63 - 1].  An operation whose result would leave that range
// fails with ErrNumberTooBig rather than wrapping, so every result pushed to
// the stack can be read back as an operand.
//
// Then, whenever data is interpreted as an integer, it is converted to this
// type by using the makeScriptNum function which will return an error if the
// number is out of range or not minimally encoded depending on parameters.
// Since all numeric opcodes involve pulling data from the stack and
// interpreting it as an integer, it provides the required behavior.
type scriptNum int64

// checkMinimalDataEncoding returns whether or not the passed byte array adheres
// to the minimal encoding requirements.
func checkMinimalDataEncoding(v []byte) error {
	if len(v) == 0 {
		return nil
	}

	// Check that the number is encoded with the minimum possible
	// number of bytes.
	//
	// If the most-significant-byte - excluding the sign bit - is zero
	// then we're not minimal.  Note how this test also rejects the
	// negative-zero encoding, [0x80].
	if v[len(v)-1]&0x7f == 0 {
		// One exception: if there's more than one byte and the most
		// significant bit of the second-most-significant-byte is set
		// it would conflict with the sign bit.  An example of this case
		// is +-255, which encode to 0xff00 and 0xff80 respectively.
		// (big-endian).
		if len(v) == 1 || v[len(v)-2]&0x80 == 0 {
			str := fmt.Sprintf("numeric value encoded as %x is "+
				"not minimally encoded", v)
			return scriptError(ErrMinimalData, str)
		}
	}

	return nil
}

// Bytes returns the number serialized as a little endian with a sign bit.
//
// Example encodings:
//
//	   127 -> [0x7f]
//	  -127 -> [0xff]
//	   128 -> [0x80 0x00]
//	  -128 -> [0x80 0x80]
//	   129 -> [0x81 0x00]
//	  -129 -> [0x81 0x80]
//	   256 -> [0x00 0x01]
//	  -256 -> [0x00 0x81]
//	 32767 -> [0xff 0x7f]
//	-32767 -> [0xff 0xff]
//	 32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
func (n scriptNum) Bytes() []byte {
	// Zero encodes as an empty byte slice.
	if n == 0 {
		return nil
	}

	// Take the absolute value and keep track of whether it was originally
	// negative.
	isNegative := n < 0
	if isNegative {
		n = -n
	}

	// Encode to little endian.  The signed width of the value is the
	// number of bytes needed including the sign bit, and one more byte is
	// reserved for a possible sign extension.
	result := make([]byte, 0, wire.SignedIntSize(int64(n))+1)
	for n > 0 {
		result = append(result, byte(n&0xff))
		n >>= 8
	}

	// When the most significant byte already has the high bit set, an
	// additional high byte is required to indicate whether the number is
	// negative or positive.  The additional byte is removed when converting
	// back to an integral and its high bit is used to denote the sign.
	//
	// Otherwise, when the most significant byte does not already have the
	// high bit set, use it to indicate the value is negative, if needed.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)

	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// Int32 returns the script number clamped to a valid int32.  That is to say
// when the script number is higher than the max allowed int32, the max int32
// value is returned and vice versa for the minimum value.  Note that this
// behavior is different from a simple int32 cast because that truncates
// and the consensus rules dictate numbers which are directly cast to ints
// provide this behavior.
//
// Counts and stack indexes are read as eight byte operands, so values beyond
// the int32 range are clamped here and then rejected by the caller's range
// checks.
func (n scriptNum) Int32() int32 {
	if n > maxInt32 {
		return maxInt32
	}

	if n < minInt32 {
		return minInt32
	}

	return int32(n)
}

// makeScriptNum interprets the passed serialized bytes as an encoded integer
// and returns the result as a script number.
//
// Since the consensus rules dictate that serialized bytes interpreted as ints
// are only allowed to be in the range determined by a maximum number of bytes,
// on a per opcode basis, an error will be returned when the provided bytes
// would result in a number outside of that range.  In particular, the range for
// the vast majority of opcodes dealing with numeric values are limited to 8
// bytes and therefore will pass that value to this function resulting in an
// allowed range of [-2^63 + 1, 2^63 - 1].
//
// The requireMinimal flag causes an error to be returned if additional checks
// on the encoding determine it is not represented with the smallest possible
// number of bytes or is the negative 0 encoding, [0x80].  For example, consider
// the number 127.  It could be encoded as [0x7f], [0x7f 0x00],
// [0x7f 0x00 0x00 ...], etc.  All forms except [0x7f] will return an error with
// requireMinimal enabled.
//
// The scriptNumLen is the maximum number of bytes the encoded value can be
// before an ErrNumberTooBig is returned.  This effectively limits the
// range of allowed values.  Lengths above maxScriptNumLen are treated as
// maxScriptNumLen.
//
// See the Bytes function documentation for example encodings.
func makeScriptNum(v []byte, requireMinimal bool, scriptNumLen int) (scriptNum, error) {
	if scriptNumLen > maxScriptNumLen {
		scriptNumLen = maxScriptNumLen
	}

	// Interpreting data requires that it is not larger than
	// the passed scriptNumLen value.
	if len(v) > scriptNumLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v),
			scriptNumLen)
		return 0, scriptError(ErrNumberTooBig, str)
	}

	// Enforce minimal encoded if requested.
	if requireMinimal {
		if err := checkMinimalDataEncoding(v); err != nil {
			return 0, err
		}
	}

	// Zero is encoded as an empty byte slice.
	if len(v) == 0 {
		return 0, nil
	}

	// Decode from little endian.
	var result int64
	for i, val := range v {
		result |= int64(val) << uint8(8*i)
	}

	// When the most significant byte of the input bytes has the sign bit
	// set, the result is negative.  So, remove the sign bit from the result
	// and make it negative.
	if v[len(v)-1]&0x80 != 0 {
		// The maximum length of v has already been determined to be 8
		// above, so uint8 is enough to cover the max possible shift
		// value of 56.
		result &= ^(int64(0x80) << uint8(8*(len(v)-1)))
		return scriptNum(-result), nil
	}

	return scriptNum(result), nil
}

// numberOverflow returns the error for an arithmetic result outside the range
// of a script number.
func numberOverflow(a, b scriptNum, op string) error {
	str := fmt.Sprintf("result of %d %s %d exceeds the range of an "+
		"%d-byte number", a, op, b, maxScriptNumLen)
	return scriptError(ErrNumberTooBig, str)
}

// addScriptNums returns a+b, or ErrNumberTooBig when the sum is outside
// [-2^63 + 1, 2^63 - 1].  Both operands must be within that range.
func addScriptNums(a, b scriptNum) (scriptNum, error) {
	if (b > 0 && a > maxScriptNum-b) || (b < 0 && a < -maxScriptNum-b) {
		return 0, numberOverflow(a, b, "+")
	}
	return a + b, nil
}

// mulScriptNums returns a*b, or ErrNumberTooBig when the product is outside
// [-2^63 + 1, 2^63 - 1].  Both operands must be within that range.
func mulScriptNums(a, b scriptNum) (scriptNum, error) {
	hi, lo := bits.Mul64(a.abs(), b.abs())
	if hi != 0 || lo > maxScriptNum {
		return 0, numberOverflow(a, b, "*")
	}

	product := scriptNum(lo)
	if (a < 0) != (b < 0) {
		product = -product
	}
	return product, nil
}

// abs returns the magnitude of n.  n must not be math.MinInt64.
func (n scriptNum) abs() uint64 {
	if n < 0 {
		return uint64(-n)
	}
	return uint64(n)
}

// EncodeScriptNum returns the serialized script number form of n.  Zero
// encodes as an empty byte slice.
func EncodeScriptNum(n int64) []byte {
	if n == math.MinInt64 {
		// The magnitude does not fit in an int64, so build it by hand:
		// eight bytes of magnitude followed by a sign byte.
		return []byte{0, 0, 0, 0, 0, 0, 0, 0x80, 0x80}
	}
	return scriptNum(n).Bytes()
}

// DecodeScriptNum interprets b as a script number of up to maxLen bytes
// without requiring a minimal encoding.
func DecodeScriptNum(b []byte, maxLen int) (int64, error) {
	n, err := makeScriptNum(b, false, maxLen)
	return int64(n), err
}
