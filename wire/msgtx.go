// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the transaction wire encoding and the variable
// length integer codec it is built on.
package wire

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// TxVersion is the default transaction version.
	TxVersion = 1

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.  An input with this sequence number
	// opts out of lock time enforcement.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// MaxTxPayload is the maximum number of bytes a serialized transaction
	// is allowed to claim for any single count or script length.
	MaxTxPayload = 1 << 30
)

const (
	// defaultTxInOutAlloc is the default size used for the backing array
	// for transaction inputs and outputs.  The array will dynamically grow
	// as needed, but this figure is intended to provide enough space for
	// the number of inputs and outputs in a typical transaction without
	// needing to grow the backing array multiple times.
	defaultTxInOutAlloc = 15

	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Varint for
	// UnlockingScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + chainhash.HashSize

	// maxTxInPerMessage is the maximum number of transactions inputs that
	// a transaction which fits into a message could possibly have.
	maxTxInPerMessage = (MaxTxPayload / minTxInPayload) + 1

	// minTxOutPayload is the minimum payload size for a transaction output.
	// Value 8 bytes + Varint for LockingScript length 1 byte.
	minTxOutPayload = 9

	// maxTxOutPerMessage is the maximum number of transactions outputs that
	// a transaction which fits into a message could possibly have.
	maxTxOutPerMessage = (MaxTxPayload / minTxOutPayload) + 1

	// freeListMaxScriptSize is the size of each buffer in the free list
	// that	is used for deserializing scripts from the wire before they are
	// concatenated into a single contiguous buffers.  This value was chosen
	// because it is slightly more than twice the size of the vast majority
	// of all "standard" scripts.  Larger scripts are still deserialized
	// properly as the free list will simply be bypassed for them.
	freeListMaxScriptSize = 512

	// freeListMaxItems is the number of buffers to keep in the free list
	// to use for script deserialization.
	freeListMaxItems = 12500
)

// scriptFreeList defines a free list of byte slices (up to the maximum number
// defined by the freeListMaxItems constant) that have a cap according to the
// freeListMaxScriptSize constant.  It is used to provide temporary buffers for
// deserializing scripts in order to greatly reduce the number of allocations
// required.
//
// The caller can obtain a buffer from the free list by calling the Borrow
// function and should return it via the Return function when done using it.
type scriptFreeList chan []byte

// Borrow returns a byte slice from the free list with a length according the
// provided size.  A new buffer is allocated if there are any items available.
//
// When the size is larger than the max size allowed for items on the free list
// a new buffer of the appropriate size is allocated and returned.  It is safe
// to attempt to return said buffer via the Return function as it will be
// ignored and allowed to go the garbage collector.
func (c scriptFreeList) Borrow(size uint64) []byte {
	if size > freeListMaxScriptSize {
		return make([]byte, size)
	}

	var buf []byte
	select {
	case buf = <-c:
	default:
		buf = make([]byte, freeListMaxScriptSize)
	}
	return buf[:size]
}

// Return puts the provided byte slice back on the free list when it has a cap
// of the expected length.  The buffer is expected to have been obtained via
// the Borrow function.  Any slices that are not of the appropriate size, such
// as those whose size is greater than the largest allowed free list item size
// are simply ignored so they can go to the garbage collector.
func (c scriptFreeList) Return(buf []byte) {
	// Ignore any buffers returned that aren't the expected size for the
	// free list.
	if cap(buf) != freeListMaxScriptSize {
		return
	}

	// Return the buffer to the free list when it's not full.  Otherwise let
	// it be garbage collected.
	select {
	case c <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

// Create the concurrent safe free list to use for script deserialization.
var scriptPool scriptFreeList = make(chan []byte, freeListMaxItems)

// readScript reads a variable length byte array that represents a transaction
// script.  It is encoded as a varInt containing the length of the array
// followed by the bytes themselves.  An error is returned if the length is
// greater than the passed maxAllowed parameter which helps protect against
// memory exhaustion attacks and forced panics through malformed messages.  The
// fieldName parameter is only used for the error message so it provides more
// context in the error.
func readScript(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	if count > uint64(maxAllowed) {
		str := fmt.Sprintf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
		return nil, messageError("readScript", ErrVarBytesTooLong, str)
	}

	b := scriptPool.Borrow(count)
	_, err = io.ReadFull(r, b)
	if err != nil {
		scriptPool.Return(b)
		return nil, err
	}
	return b, nil
}

// OutPoint defines a data type that is used to track previous transaction
// outputs.  Hash is kept in internal (wire) byte order.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new transaction outpoint point with the provided hash
// and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".  The
// hash is rendered in display (byte-reversed) order.
func (o OutPoint) String() string {
	// Allocate enough for hash string, colon, and 10 digits.  Although
	// at the time of writing, the number of digits can be no greater than
	// the length of the decimal representation of maxTxOutPerMessage, the
	// maximum message payload may increase in the future and this
	// optimization may go unnoticed, so allocate space for 10 decimal
	// digits, which will fit any uint32.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxIn defines a transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	UnlockingScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of UnlockingScript +
	// UnlockingScript bytes.
	return 40 + VarIntSerializeSize(uint64(len(t.UnlockingScript))) +
		len(t.UnlockingScript)
}

// NewTxIn returns a new transaction input with the provided previous outpoint
// and unlocking script with a default sequence of MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, unlockingScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		UnlockingScript:  unlockingScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a transaction output.
type TxOut struct {
	Value         int64
	LockingScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of
	// LockingScript + LockingScript bytes.
	return 8 + VarIntSerializeSize(uint64(len(t.LockingScript))) +
		len(t.LockingScript)
}

// NewTxOut returns a new transaction output with the provided transaction
// value and locking script.
func NewTxOut(value int64, lockingScript []byte) *TxOut {
	return &TxOut{
		Value:         value,
		LockingScript: lockingScript,
	}
}

// MsgTx is a transaction in the plain (non-segregated) wire format.
//
// The hash and id of a transaction are derived from its serialization each
// time they are requested, so they always reflect the current field values.
type MsgTx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash generates the hash for the transaction in internal byte order.  This
// is the double SHA-256 of the serialized transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	// Encode the transaction and calculate double sha256 on the result.
	// Ignore the error returns since the only way the encode could fail
	// is being out of memory or due to nil pointers, both of which would
	// cause a run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.serialize(buf, false)
	return chainhash.DoubleHashH(buf.Bytes())
}

// TxID returns the transaction id as it is displayed and referenced by other
// transactions: the hex of TxHash with its bytes reversed.
func (msg *MsgTx) TxID() string {
	hash := msg.TxHash()
	return hash.String()
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	// Create new tx and start by copying primitive values and making space
	// for the transaction inputs and outputs.
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	// Deep copy the old TxIn data.
	for _, oldTxIn := range msg.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			UnlockingScript:  copyScript(oldTxIn.UnlockingScript),
			Sequence:         oldTxIn.Sequence,
		}
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	// Deep copy the old TxOut data.
	for _, oldTxOut := range msg.TxOut {
		newTxOut := TxOut{
			Value:         oldTxOut.Value,
			LockingScript: copyScript(oldTxOut.LockingScript),
		}
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

// copyScript returns a copy of script, preserving nil.
func copyScript(script []byte) []byte {
	if len(script) == 0 {
		return nil
	}
	newScript := make([]byte, len(script))
	copy(newScript, script)
	return newScript
}

// Deserialize decodes a single transaction from r into the receiver.  Any
// bytes following the lock time are left unread, which allows a stream of
// concatenated transactions to be decoded one at a time.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	const op = "MsgTx.Deserialize"
	version, err := ReadUint32(r)
	if err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more input transactions than could possibly fit into a
	// message.  It would be possible to cause memory exhaustion and panics
	// without a sane upper bound on this count.
	if count > uint64(maxTxInPerMessage) {
		str := fmt.Sprintf("too many input transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxInPerMessage)
		return messageError(op, ErrTooManyTxIns, str)
	}

	msg.Version = version
	msg.TxIn = make([]*TxIn, 0, min(count, defaultTxInOutAlloc))
	msg.TxOut = nil

	// returnScriptBuffers is a closure that returns any script buffers that
	// were borrowed from the pool when there are any deserialization
	// errors.  This is only valid to call before the final step which
	// replaces the scripts with the location in a contiguous buffer and
	// returns them.
	returnScriptBuffers := func() {
		for _, txIn := range msg.TxIn {
			if txIn == nil || txIn.UnlockingScript == nil {
				continue
			}
			scriptPool.Return(txIn.UnlockingScript)
		}
		for _, txOut := range msg.TxOut {
			if txOut == nil || txOut.LockingScript == nil {
				continue
			}
			scriptPool.Return(txOut.LockingScript)
		}
	}

	// Deserialize the inputs.
	var totalScriptSize uint64
	for i := uint64(0); i < count; i++ {
		ti := new(TxIn)
		err = readTxIn(r, ti)
		if err != nil {
			returnScriptBuffers()
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
		totalScriptSize += uint64(len(ti.UnlockingScript))
	}

	count, err = ReadVarInt(r)
	if err != nil {
		returnScriptBuffers()
		return err
	}

	// Prevent more output transactions than could possibly fit into a
	// message.  It would be possible to cause memory exhaustion and panics
	// without a sane upper bound on this count.
	if count > uint64(maxTxOutPerMessage) {
		returnScriptBuffers()
		str := fmt.Sprintf("too many output transactions to fit into "+
			"max message size [count %d, max %d]", count,
			maxTxOutPerMessage)
		return messageError(op, ErrTooManyTxOuts, str)
	}

	// Deserialize the outputs.
	msg.TxOut = make([]*TxOut, 0, min(count, defaultTxInOutAlloc))
	for i := uint64(0); i < count; i++ {
		to := new(TxOut)
		err = readTxOut(r, to)
		if err != nil {
			returnScriptBuffers()
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
		totalScriptSize += uint64(len(to.LockingScript))
	}

	msg.LockTime, err = ReadUint32(r)
	if err != nil {
		returnScriptBuffers()
		return err
	}

	// Create a single allocation to house all of the scripts and set each
	// input unlocking script and output locking script to the appropriate
	// subslice of the overall contiguous buffer.  Then, return each
	// individual script buffer back to the pool so they can be reused for
	// future deserializations.
	var offset uint64
	scripts := make([]byte, totalScriptSize)
	for _, ti := range msg.TxIn {
		unlockingScript := ti.UnlockingScript
		copy(scripts[offset:], unlockingScript)

		scriptSize := uint64(len(unlockingScript))
		end := offset + scriptSize
		ti.UnlockingScript = scripts[offset:end:end]
		offset += scriptSize

		scriptPool.Return(unlockingScript)
	}
	for _, to := range msg.TxOut {
		lockingScript := to.LockingScript
		copy(scripts[offset:], lockingScript)

		scriptSize := uint64(len(lockingScript))
		end := offset + scriptSize
		to.LockingScript = scripts[offset:end:end]
		offset += scriptSize

		scriptPool.Return(lockingScript)
	}

	return nil
}

// FromBytes decodes the transaction in b into the receiver.  Unlike
// Deserialize, the whole of b must be consumed; any trailing bytes after the
// lock time are rejected with ErrTrailingBytes.
func (msg *MsgTx) FromBytes(b []byte) error {
	r := bytes.NewReader(b)
	if err := msg.Deserialize(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("%d unexpected bytes after lock time",
			r.Len())
		return messageError("MsgTx.FromBytes", ErrTrailingBytes, str)
	}
	return nil
}

// serialize encodes the transaction to w.  Output values are range checked
// when checkValues is set.
func (msg *MsgTx) serialize(w io.Writer, checkValues bool) error {
	err := WriteUint32(w, msg.Version)
	if err != nil {
		return err
	}

	err = WriteVarInt(w, uint64(len(msg.TxIn)))
	if err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		err = writeTxIn(w, ti)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(msg.TxOut)))
	if err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if checkValues {
			if err := checkValue(to.Value); err != nil {
				return err
			}
		}
		err = WriteTxOut(w, to)
		if err != nil {
			return err
		}
	}

	return WriteUint32(w, msg.LockTime)
}

// Serialize encodes the transaction to w.  It is the exact inverse of
// Deserialize.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.serialize(w, true)
}

// Bytes returns the serialized form of the transaction in bytes.
func (msg *MsgTx) Bytes() ([]byte, error) {
	var w bytes.Buffer
	w.Grow(msg.SerializeSize())
	err := msg.Serialize(&w)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Hex returns the hex encoded serialization of the transaction.
func (msg *MsgTx) Hex() (string, error) {
	b, err := msg.Bytes()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 4 bytes + LockTime 4 bytes + Serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}

	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}

	return n
}

// NewMsgTx returns a new transaction with the given version and no inputs or
// outputs.  The lock time is set to zero to indicate the transaction is valid
// immediately as opposed to some time in future.
func NewMsgTx(version uint32) *MsgTx {
	return &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// NewMsgTxFromBytes strictly decodes a serialized transaction.  Trailing bytes
// after the lock time are an error.
func NewMsgTxFromBytes(b []byte) (*MsgTx, error) {
	var msg MsgTx
	if err := msg.FromBytes(b); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NewMsgTxFromHex strictly decodes a hex encoded transaction.
func NewMsgTxFromHex(s string) (*MsgTx, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		str := fmt.Sprintf("invalid transaction hex: %v", err)
		return nil, messageError("NewMsgTxFromHex", ErrMalformedHex, str)
	}
	return NewMsgTxFromBytes(b)
}

// checkValue ensures an output value is within [0, MaxSafeInteger].
func checkValue(value int64) error {
	if value < 0 || value > MaxSafeInteger {
		str := fmt.Sprintf("output value %d is outside of the range "+
			"[0, %d]", value, int64(MaxSafeInteger))
		return messageError("checkValue", ErrValueOutOfRange, str)
	}
	return nil
}

// readOutPoint reads the next sequence of bytes from r as an OutPoint.
func readOutPoint(r io.Reader, op *OutPoint) error {
	_, err := io.ReadFull(r, op.Hash[:])
	if err != nil {
		return err
	}

	op.Index, err = ReadUint32(r)
	return err
}

// WriteOutPoint encodes op to w in wire byte order.
func WriteOutPoint(w io.Writer, op *OutPoint) error {
	_, err := w.Write(op.Hash[:])
	if err != nil {
		return err
	}

	return WriteUint32(w, op.Index)
}

// readTxIn reads the next sequence of bytes from r as a transaction input
// (TxIn).
func readTxIn(r io.Reader, ti *TxIn) error {
	err := readOutPoint(r, &ti.PreviousOutPoint)
	if err != nil {
		return err
	}

	ti.UnlockingScript, err = readScript(r, MaxTxPayload,
		"transaction input unlocking script")
	if err != nil {
		return err
	}

	ti.Sequence, err = ReadUint32(r)
	return err
}

// writeTxIn encodes ti to w.
func writeTxIn(w io.Writer, ti *TxIn) error {
	err := WriteOutPoint(w, &ti.PreviousOutPoint)
	if err != nil {
		return err
	}

	err = WriteVarBytes(w, ti.UnlockingScript)
	if err != nil {
		return err
	}

	return WriteUint32(w, ti.Sequence)
}

// readTxOut reads the next sequence of bytes from r as a transaction output
// (TxOut).
func readTxOut(r io.Reader, to *TxOut) error {
	value, err := ReadUint64(r)
	if err != nil {
		return err
	}
	if value > MaxSafeInteger {
		str := fmt.Sprintf("output value %d is larger than %d", value,
			uint64(MaxSafeInteger))
		return messageError("readTxOut", ErrValueOutOfRange, str)
	}
	to.Value = int64(value)

	to.LockingScript, err = readScript(r, MaxTxPayload,
		"transaction output locking script")
	return err
}

// WriteTxOut encodes to into the wire format and writes it to w.  It is used
// by the signature hash midstate computation as well as by Serialize.
func WriteTxOut(w io.Writer, to *TxOut) error {
	err := WriteUint64(w, uint64(to.Value))
	if err != nil {
		return err
	}

	return WriteVarBytes(w, to.LockingScript)
}
