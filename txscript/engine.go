// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stasproject/stasd/wire"
)

// sigCheckResult is the outcome of a single signature check.  Both sigInvalid
// and sigMalformed make the non-verify opcodes push false, but only
// sigMalformed is decided before any cryptographic work is attempted.
type sigCheckResult int

const (
	sigValid sigCheckResult = iota
	sigInvalid
	sigMalformed
)

// TraceStep records the state of the engine right after an opcode has been
// processed.
type TraceStep struct {
	// ScriptIndex is 0 for the unlocking script and 1 for the locking
	// script.
	ScriptIndex int

	// Offset is the byte offset of the opcode within its script.
	Offset int

	// Opcode is the human-readable name of the opcode.
	Opcode string

	// Data is the payload of a data push.
	Data []byte

	// Executed is false when the opcode was skipped in a non-executing
	// branch.
	Executed bool

	Stack    [][]byte
	AltStack [][]byte
}

// Engine is the virtual machine that executes scripts.
type Engine struct {
	// The following fields are set when the engine is created and must not
	// be changed afterwards.  The entries of the signature cache are
	// mutated during execution, however, the cache pointer itself is not
	// changed.
	//
	// caps contains the decoded script flags which modify the behavior of
	// the engine.
	//
	// tx identifies the transaction that contains the input which in turn
	// contains the unlocking script being executed.
	//
	// txIdx identifies the input index within the transaction that contains
	// the unlocking script being executed.
	//
	// inputAmount is the value of the previous output being spent.
	caps          capabilities
	strict        bool
	allowOpReturn bool
	limits        Limits
	trace         bool
	tx            *wire.MsgTx
	txIdx         int
	inputAmount   int64
	sigHashes     *TxSigHashes
	sigCache      *SigCache

	// The following fields handle keeping track of the current execution
	// state of the engine.
	//
	// scripts houses the unlocking script followed by the locking script.
	//
	// scriptIdx tracks the index into the scripts array for the current
	// program counter.
	//
	// tokenizer provides the token stream of the current script being
	// executed and doubles as state tracking for the program counter within
	// the script.
	//
	// lastCodeSep specifies the position within the current script of the
	// last OP_CODESEPARATOR.
	//
	// dstack is the primary data stack the various opcodes push and pop
	// data to and from during execution.
	//
	// astack is the alternate data stack the various opcodes push and pop
	// data to and from during execution.
	//
	// condStack tracks the conditional execution state with support for
	// multiple nested conditional execution opcodes.
	//
	// numOps tracks the total number of non-push operations in a script and
	// is primarily used to enforce maximum limits.
	//
	// returned is set by an allowed OP_RETURN and ends the current script.
	//
	// The false result of a failed non-verify signature check is marked on
	// dstack so a script ending on it reports the signature failure.
	scripts     [][]byte
	scriptIdx   int
	tokenizer   ScriptTokenizer
	lastCodeSep int
	dstack      stack
	astack      stack
	condStack   []int
	numOps      int
	returned    bool
	steps       []TraceStep
}

// isBranchExecuting returns whether or not the current conditional branch is
// actively executing.  For example, when the data stack has an OP_FALSE on it
// and an OP_IF is encountered, the branch is inactive until an OP_ELSE or
// OP_ENDIF is encountered.  It properly handles nested conditionals.
func (vm *Engine) isBranchExecuting() bool {
	if len(vm.condStack) == 0 {
		return true
	}
	return vm.condStack[len(vm.condStack)-1] == OpCondTrue
}

// isOpcodeDisabled returns whether the opcode is disabled under the active
// capabilities.
func (vm *Engine) isOpcodeDisabled(value byte) bool {
	switch {
	case value == OP_2MUL || value == OP_2DIV:
		return true
	case isMonolithOpcode(value):
		return !vm.caps.monolith
	case isMagneticOpcode(value):
		return !vm.caps.magnetic
	}
	return false
}

// checkElementSize returns an error when strict mode is enabled and an
// element of the given size would exceed the maximum element size.
func (vm *Engine) checkElementSize(size int) error {
	if vm.strict && size > vm.limits.MaxElementSize {
		str := fmt.Sprintf("element size %d exceeds the max allowed "+
			"size %d", size, vm.limits.MaxElementSize)
		return scriptError(ErrResourceLimitExceeded, str)
	}
	return nil
}

// executeOpcode performs execution on the passed opcode.  It takes into
// account whether or not it is hidden by conditionals, but some rules still
// must be tested in this case.
func (vm *Engine) executeOpcode(op *opcode, data []byte) error {
	// Disabled opcodes are fail on program counter.
	if vm.isOpcodeDisabled(op.value) {
		return opcodeDisabled(op, data, vm)
	}

	// Always-illegal opcodes are fail on program counter.
	if op.alwaysIllegal() {
		str := fmt.Sprintf("attempt to execute reserved opcode %s",
			op.name)
		return scriptError(ErrDisabledOpcode, str)
	}

	// Note that this includes OP_RESERVED which counts as a push operation.
	if op.value > OP_16 {
		vm.numOps++
		if vm.strict && vm.numOps > vm.limits.MaxOps {
			str := fmt.Sprintf("exceeded max operation limit of %d",
				vm.limits.MaxOps)
			return scriptError(ErrResourceLimitExceeded, str)
		}
	} else if err := vm.checkElementSize(len(data)); err != nil {
		return err
	}

	// Nothing left to do when this is not a conditional opcode and it is
	// not in an executing branch.
	if !vm.isBranchExecuting() && !op.isConditional() {
		return nil
	}

	return op.opfunc(op, data, vm)
}

// checkStackSize returns an error when strict mode is enabled and the
// combined stacks exceed the maximum number of items.
func (vm *Engine) checkStackSize() error {
	if !vm.strict {
		return nil
	}

	combinedStackSize := int(vm.dstack.Depth() + vm.astack.Depth())
	if combinedStackSize > vm.limits.MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, vm.limits.MaxStackSize)
		return scriptError(ErrResourceLimitExceeded, str)
	}
	return nil
}

// subScript returns the script since the last OP_CODESEPARATOR.
func (vm *Engine) subScript() []byte {
	return vm.scripts[vm.scriptIdx][vm.lastCodeSep:]
}

// checkSignature verifies the full signature, including its trailing hash
// type byte, against the public key over the passed script code.
//
// Any failure in the underlying crypto library results in sigInvalid so a
// hostile script is only ever able to make evaluation fail.
func (vm *Engine) checkSignature(fullSig, pkBytes, scriptCode []byte) (result sigCheckResult) {
	if len(fullSig) == 0 {
		return sigInvalid
	}

	hashType := SigHashType(fullSig[len(fullSig)-1])
	if vm.caps.forkIDRequired && hashType&SigHashForkID == 0 {
		log.Tracef("signature hash type 0x%x is missing the fork id",
			uint32(hashType))
		return sigMalformed
	}
	if vm.tx == nil {
		return sigInvalid
	}

	defer func() {
		if r := recover(); r != nil {
			log.Debugf("recovered from signature check panic: %v", r)
			result = sigInvalid
		}
	}()

	sigBytes := fullSig[:len(fullSig)-1]
	signature, err := ecdsa.ParseSignature(sigBytes)
	if err != nil {
		log.Tracef("unable to parse signature: %v", err)
		return sigInvalid
	}
	pubKey, err := btcec.ParsePubKey(pkBytes)
	if err != nil {
		log.Tracef("unable to parse public key: %v", err)
		return sigInvalid
	}

	sigHash, err := CalcSignatureHash(scriptCode, vm.sigHashes, hashType,
		vm.tx, vm.txIdx, vm.inputAmount)
	if err != nil {
		log.Tracef("unable to calculate signature hash: %v", err)
		return sigInvalid
	}

	var hash chainhash.Hash
	copy(hash[:], sigHash)
	if vm.sigCache != nil && vm.sigCache.Exists(hash, sigBytes, pkBytes) {
		return sigValid
	}

	if !signature.Verify(sigHash, pubKey) {
		return sigInvalid
	}

	if vm.sigCache != nil {
		vm.sigCache.Add(hash, sigBytes, pkBytes)
	}
	return sigValid
}

// DisasmPC returns the string for the disassembly of the opcode that will be
// next to execute when Step is called.
func (vm *Engine) DisasmPC() (string, error) {
	if vm.scriptIdx >= len(vm.scripts) {
		str := fmt.Sprintf("program counter beyond final script index "+
			"%d (bytes %x)", len(vm.scripts)-1, vm.scripts)
		return "", scriptError(ErrInvalidIndex, str)
	}

	// Create a copy of the current tokenizer and parse the next opcode in
	// the copy to avoid mutating the current one.
	peekTokenizer := vm.tokenizer
	if !peekTokenizer.Next() {
		// Scripts are parsed lazily, so a malformed push is reported
		// here before Step gets to it.
		if err := peekTokenizer.Err(); err != nil {
			return "", err
		}

		str := fmt.Sprintf("program counter beyond script index %d (bytes "+
			"%x)", vm.scriptIdx, vm.scripts[vm.scriptIdx])
		return "", scriptError(ErrInvalidIndex, str)
	}

	var buf strings.Builder
	disasmOpcode(&buf, peekTokenizer.op, peekTokenizer.Data(), false)
	return fmt.Sprintf("%02x:%04x: %s", vm.scriptIdx, vm.tokenizer.ByteIndex(),
		buf.String()), nil
}

// DisasmScript returns the disassembly string for the script at the requested
// offset index.  Index 0 is the unlocking script and 1 is the locking script.
// In the case of an invalid index, an Error is returned.
func (vm *Engine) DisasmScript(idx int) (string, error) {
	if idx < 0 || idx >= len(vm.scripts) {
		str := fmt.Sprintf("script index %d >= total scripts %d", idx,
			len(vm.scripts))
		return "", scriptError(ErrInvalidIndex, str)
	}

	var disbuf strings.Builder
	script := vm.scripts[idx]
	tokenizer := MakeScriptTokenizer(script)
	var opcodeIdx int
	for tokenizer.Next() {
		disbuf.WriteString(fmt.Sprintf("%02x:%04x: ", idx, opcodeIdx))
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), false)
		disbuf.WriteByte('\n')
		opcodeIdx = int(tokenizer.ByteIndex())
	}
	return disbuf.String(), tokenizer.Err()
}

// CheckErrorCondition returns nil if the running script has ended and was
// successful, leaving a true boolean on the stack.  An error otherwise,
// including if the script has not finished.
func (vm *Engine) CheckErrorCondition() error {
	if vm.scriptIdx < len(vm.scripts) {
		str := "error check when script unfinished"
		return scriptError(ErrInvalidIndex, str)
	}

	if vm.dstack.Depth() < 1 {
		str := "stack empty at end of script execution"
		return scriptError(ErrEmptyStack, str)
	}

	v, err := vm.dstack.PeekBool(0)
	if err != nil {
		return err
	}
	if !v {
		// Log interesting data.
		log.Tracef("%v", newLogClosure(func() string {
			var buf strings.Builder
			for i := range vm.scripts {
				dis, _ := vm.DisasmScript(i)
				buf.WriteString(fmt.Sprintf("script%d:\n%s", i, dis))
			}
			return "scripts failed:\n" + buf.String()
		}))

		if vm.dstack.markedOnTop() {
			str := "false stack entry at end of script execution " +
				"after a failed signature check"
			return scriptError(ErrSignatureCheckFailed, str)
		}

		str := "false stack entry at end of script execution"
		return scriptError(ErrEvalFalse, str)
	}
	return nil
}

// recordStep appends a trace step for the opcode that was just processed.
func (vm *Engine) recordStep(offset int32, op *opcode, data []byte, executed bool) {
	vm.steps = append(vm.steps, TraceStep{
		ScriptIndex: vm.scriptIdx,
		Offset:      int(offset),
		Opcode:      op.name,
		Data:        data,
		Executed:    executed,
		Stack:       vm.dstack.items(),
		AltStack:    vm.astack.items(),
	})
}

// finishScript performs the end of script checks and moves the engine to the
// next script.  It returns true when there are no scripts left.
func (vm *Engine) finishScript() (bool, error) {
	// Illegal to have a conditional that straddles two scripts.
	if !vm.returned && len(vm.condStack) != 0 {
		return true, scriptError(ErrUnbalancedConditional,
			"end of script reached in conditional execution")
	}

	vm.scriptIdx++
	vm.condStack = vm.condStack[:0]
	vm.numOps = 0
	vm.lastCodeSep = 0
	vm.returned = false
	if vm.scriptIdx >= len(vm.scripts) {
		return true, nil
	}

	// The stacks are shared between the scripts and are not reset.
	vm.tokenizer = MakeScriptTokenizer(vm.scripts[vm.scriptIdx])
	return false, nil
}

// Step executes the next instruction and moves the program counter to the
// next opcode in the script, or the next script if the current has ended.
// Step will return true in the case that the last opcode was successfully
// executed.
//
// The result of calling Step or any other method is undefined if an error is
// returned.
func (vm *Engine) Step() (done bool, err error) {
	// Verify the engine is pointing to a valid program counter.
	if vm.scriptIdx >= len(vm.scripts) {
		str := fmt.Sprintf("attempt to step beyond script index %d",
			len(vm.scripts)-1)
		return true, scriptError(ErrInvalidIndex, str)
	}

	// Empty scripts have nothing to execute.
	if !vm.tokenizer.Done() {
		offset := vm.tokenizer.ByteIndex()
		if !vm.tokenizer.Next() {
			return true, vm.tokenizer.Err()
		}

		// Execute the opcode while taking into account several things
		// such as disabled opcodes, illegal opcodes, maximum allowed
		// operations per script, maximum script element sizes, and
		// conditionals.
		op := vm.tokenizer.op
		data := vm.tokenizer.Data()
		executed := vm.isBranchExecuting()
		if err := vm.executeOpcode(op, data); err != nil {
			if vm.trace {
				vm.recordStep(offset, op, data, executed)
			}
			return true, err
		}

		// The number of elements in the combination of the data and alt
		// stacks must not exceed the maximum number of stack elements
		// allowed.
		if err := vm.checkStackSize(); err != nil {
			return true, err
		}

		if vm.trace {
			vm.recordStep(offset, op, data, executed)
		}
	}

	// Prepare for next instruction.
	if vm.tokenizer.Done() || vm.returned {
		return vm.finishScript()
	}

	return false, nil
}

// Execute will execute all scripts in the script engine and return either nil
// for successful validation or an error if one occurred.
func (vm *Engine) Execute() (err error) {
	log.Tracef("%v", newLogClosure(func() string {
		var buf strings.Builder
		for i := range vm.scripts {
			dis, _ := vm.DisasmScript(i)
			buf.WriteString(fmt.Sprintf("script%d:\n%s", i, dis))
		}
		return "executing scripts:\n" + buf.String()
	}))

	done := false
	for !done {
		log.Tracef("%v", newLogClosure(func() string {
			if vm.tokenizer.Done() {
				return fmt.Sprintf("stepping past end of script %d",
					vm.scriptIdx)
			}
			dis, err := vm.DisasmPC()
			if err != nil {
				return fmt.Sprintf("stepping - failed to disasm pc: %v", err)
			}
			return fmt.Sprintf("stepping %v", dis)
		}))

		done, err = vm.Step()
		if err != nil {
			return err
		}
		log.Tracef("%v", newLogClosure(func() string {
			var dstr, astr string

			// Log the non-empty stacks when tracing.
			if vm.dstack.Depth() != 0 {
				dstr = "Stack:\n" + vm.dstack.String()
			}
			if vm.astack.Depth() != 0 {
				astr = "AltStack:\n" + vm.astack.String()
			}

			return dstr + astr
		}))
	}

	return vm.CheckErrorCondition()
}

// GetStack returns the contents of the primary stack as an array, where the
// last item in the array is the top of the stack.
func (vm *Engine) GetStack() [][]byte {
	return vm.dstack.items()
}

// GetAltStack returns the contents of the alternate stack as an array where
// the last item in the array is the top of the stack.
func (vm *Engine) GetAltStack() [][]byte {
	return vm.astack.items()
}

// Trace returns the steps recorded so far when tracing is enabled.
func (vm *Engine) Trace() []TraceStep {
	return vm.steps
}

// NewEngine returns a new script engine for the provided unlocking and locking
// scripts.  The context may be nil, in which case signature checks fail and
// OP_CHECKLOCKTIMEVERIFY returns an error.  A nil options value is the same as
// DefaultOptions.
func NewEngine(unlocking, locking []byte, ctx *EvalContext, opts *Options) (*Engine, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	vm := Engine{
		caps:          opts.Flags.capabilities(),
		strict:        opts.Strict,
		allowOpReturn: opts.AllowOpReturn,
		limits:        opts.Limits.withDefaults(),
		trace:         opts.Trace,
		sigCache:      opts.SigCache,
	}
	vm.dstack.verifyMinimalData = opts.Strict
	vm.astack.verifyMinimalData = opts.Strict

	if ctx != nil && ctx.Tx != nil {
		if ctx.InputIndex < 0 || ctx.InputIndex >= len(ctx.Tx.TxIn) {
			str := fmt.Sprintf("transaction input index %d is negative "+
				"or >= %d", ctx.InputIndex, len(ctx.Tx.TxIn))
			return nil, scriptError(ErrInvalidIndex, str)
		}

		vm.tx = ctx.Tx
		vm.txIdx = ctx.InputIndex
		if ctx.PrevOut != nil {
			vm.inputAmount = ctx.PrevOut.Value
		}
		vm.sigHashes = ctx.SigHashes
		if vm.sigHashes == nil {
			vm.sigHashes = NewTxSigHashes(ctx.Tx)
		}
	}

	vm.scripts = [][]byte{unlocking, locking}
	if vm.strict {
		for i, script := range vm.scripts {
			if len(script) > vm.limits.MaxScriptSize {
				str := fmt.Sprintf("script %d size %d is larger "+
					"than the max allowed size %d", i,
					len(script), vm.limits.MaxScriptSize)
				return nil, scriptError(ErrResourceLimitExceeded, str)
			}
		}
	}

	vm.tokenizer = MakeScriptTokenizer(vm.scripts[0])
	return &vm, nil
}
