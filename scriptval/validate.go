// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package scriptval verifies the inputs of many transactions concurrently.
package scriptval

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/stasproject/stasd/txscript"
	"github.com/stasproject/stasd/wire"
	"golang.org/x/sync/errgroup"
)

// Item identifies a single transaction input to validate.
type Item struct {
	Tx         *wire.MsgTx
	InputIndex int

	// sigHashes is the midstate shared by every input of Tx.
	sigHashes *txscript.TxSigHashes
}

// Validator asynchronously validates transaction inputs.  It provides several
// channels for communication and a processing function that is intended to be
// run in multiple goroutines.  Every goroutine runs its own engine.
type Validator struct {
	validateChan chan *Item
	quitChan     chan struct{}
	resultChan   chan error
	prevOuts     txscript.PrevOutputFetcher
	opts         *txscript.Options
	hashCache    *txscript.HashCache
}

// maxWorkers returns the number of goroutines used to validate numItems
// items.  It is limited based on the number of processor cores to help ensure
// the system stays reasonably responsive under heavy load.
func maxWorkers(numItems int) int {
	maxGoRoutines := runtime.NumCPU() * 3
	if maxGoRoutines <= 0 {
		maxGoRoutines = 1
	}
	if maxGoRoutines > numItems {
		maxGoRoutines = numItems
	}
	return maxGoRoutines
}

// validateItem runs the script pair of the item and converts any failure to a
// RuleError.
func validateItem(item *Item, prevOuts txscript.PrevOutputFetcher,
	opts *txscript.Options) error {

	tx := item.Tx
	txIn := tx.TxIn[item.InputIndex]
	prevOut := prevOuts.FetchPrevOutput(txIn.PreviousOutPoint)
	if prevOut == nil {
		str := fmt.Sprintf("unable to find output %v referenced from "+
			"transaction %s:%d", txIn.PreviousOutPoint, tx.TxID(),
			item.InputIndex)
		return ruleError(ErrMissingTxOut, str, nil)
	}

	result := txscript.VerifyInput(tx, item.InputIndex, prevOuts,
		item.sigHashes, opts)
	if result.Err == nil {
		return nil
	}

	code := ErrScriptValidation
	if errors.Is(result.Err, txscript.ErrMalformedScript) ||
		errors.Is(result.Err, txscript.ErrInvalidIndex) {

		code = ErrScriptMalformed
	}
	str := fmt.Sprintf("failed to validate input %s:%d which references "+
		"output %v - %v (input script bytes %x, prev output script "+
		"bytes %x)", tx.TxID(), item.InputIndex, txIn.PreviousOutPoint,
		result.Err, txIn.UnlockingScript, prevOut.LockingScript)
	return ruleError(code, str, result.Err)
}

// sendResult sends the result of a script pair validation on the internal
// result channel while respecting the quit channel.  This allows orderly
// shutdown when the validation process is aborted early due to a validation
// error in one of the other goroutines.
func (v *Validator) sendResult(result error) {
	select {
	case v.resultChan <- result:
	case <-v.quitChan:
	}
}

// validateHandler consumes items to validate from the internal validate channel
// and returns the result of the validation on the internal result channel.  It
// must be run as a goroutine.
func (v *Validator) validateHandler() {
out:
	for {
		select {
		case item := <-v.validateChan:
			err := validateItem(item, v.prevOuts, v.opts)
			v.sendResult(err)
			if err != nil {
				break out
			}

		case <-v.quitChan:
			break out
		}
	}
}

// Validate validates the scripts for all of the passed items using multiple
// goroutines.  The first failure is returned as a RuleError.  A Validator can
// only be used for a single call.
func (v *Validator) Validate(items []*Item) error {
	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		if item.InputIndex < 0 || item.InputIndex >= len(item.Tx.TxIn) {
			str := fmt.Sprintf("input index %d is out of range for "+
				"transaction %s with %d inputs", item.InputIndex,
				item.Tx.TxID(), len(item.Tx.TxIn))
			return ruleError(ErrScriptMalformed, str, nil)
		}
		if item.sigHashes == nil {
			item.sigHashes = v.hashCache.SigHashes(item.Tx)
		}
	}

	// Start up validation handlers that are used to asynchronously
	// validate each transaction input.
	workers := maxWorkers(len(items))
	log.Debugf("Validating %d inputs with %d workers", len(items), workers)
	for i := 0; i < workers; i++ {
		go v.validateHandler()
	}

	// Validate each of the inputs.  The quit channel is closed when any
	// errors occur so all processing goroutines exit regardless of which
	// input had the validation error.
	numInputs := len(items)
	currentItem := 0
	processedItems := 0
	for processedItems < numInputs {
		// Only send items while there are still items that need to
		// be processed.  The select statement will never select a nil
		// channel.
		var validateChan chan *Item
		var item *Item
		if currentItem < numInputs {
			validateChan = v.validateChan
			item = items[currentItem]
		}

		select {
		case validateChan <- item:
			currentItem++

		case err := <-v.resultChan:
			processedItems++
			if err != nil {
				close(v.quitChan)
				return err
			}
		}
	}

	close(v.quitChan)
	return nil
}

// NewValidator returns a new instance of Validator to be used for validating
// transaction scripts asynchronously.  The hash cache is optional and lets
// callers share the midstates of transactions across calls.
func NewValidator(prevOuts txscript.PrevOutputFetcher, opts *txscript.Options,
	hashCache *txscript.HashCache) *Validator {

	return &Validator{
		validateChan: make(chan *Item),
		quitChan:     make(chan struct{}),
		resultChan:   make(chan error),
		prevOuts:     prevOuts,
		opts:         opts,
		hashCache:    hashCache,
	}
}

// collectItems returns one item for every input of the transactions.  All
// inputs of a transaction share its midstate.
func collectItems(txs []*wire.MsgTx) []*Item {
	numInputs := 0
	for _, tx := range txs {
		numInputs += len(tx.TxIn)
	}
	items := make([]*Item, 0, numInputs)
	for _, tx := range txs {
		sigHashes := txscript.NewTxSigHashes(tx)
		for idx := range tx.TxIn {
			items = append(items, &Item{
				Tx:         tx,
				InputIndex: idx,
				sigHashes:  sigHashes,
			})
		}
	}
	return items
}

// ValidateTransactions validates the scripts of every input of the passed
// transactions using multiple goroutines and returns the first failure.
func ValidateTransactions(txs []*wire.MsgTx, prevOuts txscript.PrevOutputFetcher,
	opts *txscript.Options) error {

	validator := NewValidator(prevOuts, opts, nil)
	return validator.Validate(collectItems(txs))
}

// ValidateTransactionsContext is like ValidateTransactions except the caller
// may abort validation through the context.  The context error is returned
// when validation was cancelled before any input failed.
func ValidateTransactionsContext(ctx context.Context, txs []*wire.MsgTx,
	prevOuts txscript.PrevOutputFetcher, opts *txscript.Options) error {

	items := collectItems(txs)
	if len(items) == 0 {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers(len(items)))
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}

		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return validateItem(item, prevOuts, opts)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Cancellation can stop the loop above before any work fails.
	return ctx.Err()
}
