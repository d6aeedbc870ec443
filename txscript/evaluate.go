// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/stasproject/stasd/wire"
)

// EvalContext is the read-only transaction context of a single input
// evaluation.
type EvalContext struct {
	// Tx is the spending transaction.
	Tx *wire.MsgTx

	// InputIndex is the index of the input being evaluated.
	InputIndex int

	// PrevOut is the output spent by the input.  Only its value is used
	// by the engine.  A nil PrevOut is treated as a zero value.
	PrevOut *wire.TxOut

	// SigHashes optionally provides the precomputed transaction-wide
	// midstate.  It is computed when nil.
	SigHashes *TxSigHashes
}

// Result is the outcome of evaluating an unlocking and locking script pair.
// The stacks are reported even when evaluation fails.
type Result struct {
	Success  bool
	Err      error
	Stack    [][]byte
	AltStack [][]byte
	Trace    []TraceStep
}

// InputResult is the evaluation result of one transaction input.
type InputResult struct {
	Index int
	Result
}

// TxResult aggregates the results of every input of a transaction.
type TxResult struct {
	Valid  bool
	Inputs []InputResult
	Errors []string
}

// EvaluateScripts executes the unlocking script followed by the locking script
// on a shared stack and reports the outcome.  A nil context evaluates the
// scripts without a transaction and a nil opts uses DefaultOptions.
func EvaluateScripts(unlocking, locking []byte, ctx *EvalContext, opts *Options) *Result {
	vm, err := NewEngine(unlocking, locking, ctx, opts)
	if err != nil {
		return &Result{Err: err}
	}

	err = vm.Execute()
	return &Result{
		Success:  err == nil,
		Err:      err,
		Stack:    vm.GetStack(),
		AltStack: vm.GetAltStack(),
		Trace:    vm.Trace(),
	}
}

// VerifyInput evaluates input idx of the transaction against the previous
// output returned by the fetcher.  A nil sigHashes computes the midstate for
// this call only.
func VerifyInput(tx *wire.MsgTx, idx int, fetcher PrevOutputFetcher,
	sigHashes *TxSigHashes, opts *Options) *Result {

	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return &Result{Err: scriptError(ErrInvalidIndex, str)}
	}

	txIn := tx.TxIn[idx]
	prevOut := fetcher.FetchPrevOutput(txIn.PreviousOutPoint)
	if prevOut == nil {
		str := fmt.Sprintf("unable to find previous output %v spent by "+
			"input %d", txIn.PreviousOutPoint, idx)
		return &Result{Err: scriptError(ErrMissingPreviousOutput, str)}
	}

	ctx := EvalContext{
		Tx:         tx,
		InputIndex: idx,
		PrevOut:    prevOut,
		SigHashes:  sigHashes,
	}
	return EvaluateScripts(txIn.UnlockingScript, prevOut.LockingScript,
		&ctx, opts)
}

// VerifyTx evaluates every input of the transaction, resolving the spent
// outputs through the fetcher.  All inputs are evaluated even after a failure.
func VerifyTx(tx *wire.MsgTx, fetcher PrevOutputFetcher, opts *Options) *TxResult {
	sigHashes := NewTxSigHashes(tx)
	txResult := &TxResult{
		Valid:  true,
		Inputs: make([]InputResult, 0, len(tx.TxIn)),
	}
	for idx := range tx.TxIn {
		result := VerifyInput(tx, idx, fetcher, sigHashes, opts)
		txResult.Inputs = append(txResult.Inputs, InputResult{
			Index:  idx,
			Result: *result,
		})
		if result.Success {
			continue
		}

		log.Debugf("Input %d of transaction %s failed: %v", idx,
			tx.TxID(), result.Err)
		txResult.Valid = false
		txResult.Errors = append(txResult.Errors,
			fmt.Sprintf("input %d: %v", idx, result.Err))
	}

	return txResult
}
