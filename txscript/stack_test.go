// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"
)

// TestStack tests that all of the stack operations work as expected.
func TestStack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		before    [][]byte
		operation func(*stack) error
		err       error
		after     [][]byte
	}{
		{
			"noop",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			func(s *stack) error {
				return nil
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}, {5}},
		},
		{
			"peek underflow (byte)",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			func(s *stack) error {
				_, err := s.PeekByteArray(5)
				return err
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"peek underflow (int)",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			func(s *stack) error {
				_, err := s.PeekInt(5)
				return err
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"peek negative index",
			[][]byte{{1}},
			func(s *stack) error {
				_, err := s.PeekBool(-1)
				return err
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"pop",
			[][]byte{{1}, {2}, {3}, {4}, {5}},
			func(s *stack) error {
				val, err := s.PopByteArray()
				if err != nil {
					return err
				}
				if !bytes.Equal(val, []byte{5}) {
					return errors.New("not equal")
				}
				return nil
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}},
		},
		{
			"pop underflow",
			[][]byte{{1}, {2}},
			func(s *stack) error {
				for i := 0; i < 3; i++ {
					if _, err := s.PopByteArray(); err != nil {
						return err
					}
				}
				return nil
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"pop bool negative zero",
			[][]byte{{0x00, 0x80}},
			func(s *stack) error {
				val, err := s.PopBool()
				if err != nil {
					return err
				}
				if val {
					return errors.New("unexpected value")
				}
				return nil
			},
			nil,
			[][]byte{},
		},
		{
			"pop int",
			[][]byte{{0x81}},
			func(s *stack) error {
				v, err := s.PopInt()
				if err != nil {
					return err
				}
				if v != -1 {
					return errors.New("-1 != -1 on popInt")
				}
				return nil
			},
			nil,
			[][]byte{},
		},
		{
			"pop int too big",
			[][]byte{{1, 2, 3, 4, 5, 6, 7, 8, 9}},
			func(s *stack) error {
				_, err := s.PopInt()
				return err
			},
			ErrNumberTooBig,
			nil,
		},
		{
			"push int",
			nil,
			func(s *stack) error {
				s.PushInt(scriptNum(-128))
				return nil
			},
			nil,
			[][]byte{{0x80, 0x80}},
		},
		{
			"push bool",
			nil,
			func(s *stack) error {
				s.PushBool(true)
				s.PushBool(false)
				return nil
			},
			nil,
			[][]byte{{1}, nil},
		},
		{
			"nip top",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.NipN(0)
			},
			nil,
			[][]byte{{1}, {2}},
		},
		{
			"nip middle",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.NipN(1)
			},
			nil,
			[][]byte{{1}, {3}},
		},
		{
			"nip bottom",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.NipN(2)
			},
			nil,
			[][]byte{{2}, {3}},
		},
		{
			"nip too much",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.NipN(3)
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"tuck",
			[][]byte{{1}, {2}},
			func(s *stack) error {
				return s.Tuck()
			},
			nil,
			[][]byte{{2}, {1}, {2}},
		},
		{
			"drop 2",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.DropN(2)
			},
			nil,
			[][]byte{{1}},
		},
		{
			"drop 0",
			[][]byte{{1}},
			func(s *stack) error {
				return s.DropN(0)
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"dup 2",
			[][]byte{{1}, {2}},
			func(s *stack) error {
				return s.DupN(2)
			},
			nil,
			[][]byte{{1}, {2}, {1}, {2}},
		},
		{
			"dup underflow",
			nil,
			func(s *stack) error {
				return s.DupN(1)
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"rot",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.RotN(1)
			},
			nil,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"2rot",
			[][]byte{{1}, {2}, {3}, {4}, {5}, {6}},
			func(s *stack) error {
				return s.RotN(2)
			},
			nil,
			[][]byte{{3}, {4}, {5}, {6}, {1}, {2}},
		},
		{
			"rot underflow",
			[][]byte{{1}, {2}},
			func(s *stack) error {
				return s.RotN(1)
			},
			ErrStackUnderflow,
			nil,
		},
		{
			"swap",
			[][]byte{{1}, {2}},
			func(s *stack) error {
				return s.SwapN(1)
			},
			nil,
			[][]byte{{2}, {1}},
		},
		{
			"2swap",
			[][]byte{{1}, {2}, {3}, {4}},
			func(s *stack) error {
				return s.SwapN(2)
			},
			nil,
			[][]byte{{3}, {4}, {1}, {2}},
		},
		{
			"over",
			[][]byte{{1}, {2}},
			func(s *stack) error {
				return s.OverN(1)
			},
			nil,
			[][]byte{{1}, {2}, {1}},
		},
		{
			"2over",
			[][]byte{{1}, {2}, {3}, {4}},
			func(s *stack) error {
				return s.OverN(2)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {4}, {1}, {2}},
		},
		{
			"pick",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.PickN(2)
			},
			nil,
			[][]byte{{1}, {2}, {3}, {1}},
		},
		{
			"roll",
			[][]byte{{1}, {2}, {3}},
			func(s *stack) error {
				return s.RollN(2)
			},
			nil,
			[][]byte{{2}, {3}, {1}},
		},
		{
			"roll underflow",
			[][]byte{{1}},
			func(s *stack) error {
				return s.RollN(1)
			},
			ErrStackUnderflow,
			nil,
		},
	}

	for _, test := range tests {
		var s stack
		for _, item := range test.before {
			s.PushByteArray(item)
		}

		err := test.operation(&s)
		if test.err != nil {
			require.ErrorIs(t, err, test.err, test.name)
			continue
		}
		require.NoError(t, err, test.name)

		got := s.items()
		require.Len(t, got, len(test.after), "%s: %v", test.name,
			spew.Sdump(got))
		for i := range got {
			require.True(t, bytes.Equal(test.after[i], got[i]),
				"%s: item %d mismatch: %v", test.name, i,
				spew.Sdump(got))
		}
	}
}

// TestStackMinimalData ensures numbers read from the stack are only required
// to be minimally encoded when the stack is configured to do so.
func TestStackMinimalData(t *testing.T) {
	t.Parallel()

	s := stack{verifyMinimalData: true}
	s.PushByteArray([]byte{0x01, 0x00})
	_, err := s.PeekInt(0)
	require.ErrorIs(t, err, ErrMinimalData)

	s.verifyMinimalData = false
	v, err := s.PopInt()
	require.NoError(t, err)
	require.Equal(t, scriptNum(1), v)
}

// TestStackMark ensures a marked item stays marked only while neither it nor
// anything below it has been removed.
func TestStackMark(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		op    func(s *stack) error
		onTop bool
	}{{
		name:  "untouched",
		op:    func(s *stack) error { return nil },
		onTop: true,
	}, {
		name: "push and drop above",
		op: func(s *stack) error {
			s.PushInt(1)
			return s.DropN(1)
		},
		onTop: true,
	}, {
		name: "covered",
		op: func(s *stack) error {
			s.PushInt(1)
			return nil
		},
	}, {
		name: "replaced",
		op: func(s *stack) error {
			if _, err := s.PopByteArray(); err != nil {
				return err
			}
			s.PushBool(false)
			return nil
		},
	}, {
		name: "item below removed",
		op: func(s *stack) error {
			s.PushBool(false)
			return s.NipN(2)
		},
	}, {
		name:  "swapped",
		op:    func(s *stack) error { return s.SwapN(1) },
		onTop: false,
	}}

	for _, test := range tests {
		var s stack
		require.False(t, s.markedOnTop(), test.name)
		s.PushInt(7)
		s.PushBool(false)
		s.markTop()
		require.NoError(t, test.op(&s), test.name)
		require.Equal(t, test.onTop, s.markedOnTop(), test.name)
	}

	// Marking an empty stack marks nothing.
	var s stack
	s.markTop()
	s.PushBool(false)
	require.False(t, s.markedOnTop())
}

// TestIsTruthy ensures stack elements are interpreted as booleans the same way
// the conditional opcodes interpret them.
func TestIsTruthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []byte
		want bool
	}{
		{"empty", nil, false},
		{"zero", []byte{0x00}, false},
		{"zeros", []byte{0x00, 0x00, 0x00}, false},
		{"negative zero", []byte{0x80}, false},
		{"long negative zero", []byte{0x00, 0x00, 0x80}, false},
		{"one", []byte{0x01}, true},
		{"negative one", []byte{0x81}, true},
		{"0x80 not last", []byte{0x80, 0x00}, true},
		{"high byte", []byte{0x00, 0x01}, true},
	}

	for _, test := range tests {
		require.Equal(t, test.want, IsTruthy(test.in), test.name)
	}
}
