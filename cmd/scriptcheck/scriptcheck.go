// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/stasproject/stasd/internal/log"
	"github.com/stasproject/stasd/internal/version"
	"github.com/stasproject/stasd/txscript"
	"github.com/stasproject/stasd/wire"
)

// errInvalidTx is returned when at least one input failed to verify.
var errInvalidTx = errors.New("transaction failed to verify")

// writeResult prints the outcome of every input of the transaction.  The
// trace steps of each input are dumped when dumpTrace is set.
func writeResult(w io.Writer, tx *wire.MsgTx, result *txscript.TxResult,
	dumpTrace bool) {

	status := "valid"
	if !result.Valid {
		status = "invalid"
	}
	fmt.Fprintf(w, "transaction %s: %s\n", tx.TxID(), status)

	for _, input := range result.Inputs {
		if input.Success {
			fmt.Fprintf(w, "input %d: ok\n", input.Index)
		} else {
			fmt.Fprintf(w, "input %d: %v\n", input.Index, input.Err)
		}
		for i, item := range input.Stack {
			fmt.Fprintf(w, "  stack[%d]: %x\n", i, item)
		}
		if dumpTrace && len(input.Trace) > 0 {
			fmt.Fprintf(w, "  trace:\n%s", spew.Sdump(input.Trace))
		}
	}
}

// run verifies the transaction described by the command line arguments and
// writes the result to w.
func run(args []string, w io.Writer) error {
	cfg, _, err := loadConfig(args)
	if err != nil {
		return err
	}

	if cfg.ShowVersion {
		fmt.Fprintln(w, version.Full("scriptcheck"))
		return nil
	}

	if cfg.LogDir != "" {
		logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
		if err := log.InitLogRotator(logFile); err != nil {
			return err
		}
		defer func() {
			log.LogRotator.Close()
			log.LogRotator = nil
		}()
	}
	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return err
	}

	tx, err := wire.NewMsgTxFromHex(cfg.Tx)
	if err != nil {
		return fmt.Errorf("unable to decode transaction: %w", err)
	}
	fetcher, err := cfg.prevOutFetcher()
	if err != nil {
		return err
	}

	log.MainLog.Debugf("Verifying %d %s of transaction %s", len(tx.TxIn),
		log.PickNoun(uint64(len(tx.TxIn)), "input", "inputs"), tx.TxID())
	result := txscript.VerifyTx(tx, fetcher, cfg.options())
	writeResult(w, tx, result, cfg.Trace)
	if !result.Valid {
		return errInvalidTx
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, errInvalidTx) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
