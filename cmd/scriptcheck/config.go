// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	flags "github.com/jessevdk/go-flags"
	"github.com/stasproject/stasd/txscript"
	"github.com/stasproject/stasd/wire"
)

const (
	defaultLogFilename  = "scriptcheck.log"
	defaultDebugLevel   = "info"
	defaultSigCacheSize = 1000
)

// config defines the configuration options for scriptcheck.
//
// See loadConfig for details on the configuration load process.
type config struct {
	Tx            string   `long:"tx" description:"Hex encoded transaction to verify"`
	PrevOuts      []string `long:"prevout" description:"Output spent by an input as txid:vout:satoshis:scripthex -- may be specified multiple times"`
	AllowOpReturn bool     `long:"allowopreturn" description:"Let an executed OP_RETURN end the script successfully"`
	NoForkID      bool     `long:"noforkid" description:"Do not require the fork id bit in signature hash types"`
	NoMonolith    bool     `long:"nomonolith" description:"Disable OP_CAT, OP_SPLIT and the other splice and bitwise opcodes"`
	NoMagnetic    bool     `long:"nomagnetic" description:"Disable OP_MUL, OP_DIV, OP_MOD, OP_LSHIFT and OP_RSHIFT"`
	Strict        bool     `long:"strict" description:"Enforce resource limits and minimal number encoding"`
	SigCacheSize  uint     `long:"sigcachesize" description:"The maximum number of entries in the signature verification cache"`
	Trace         bool     `long:"trace" description:"Dump every executed opcode and the stacks after it"`
	DebugLevel    string   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir        string   `long:"logdir" description:"Directory to log output in addition to standard output"`
	ShowVersion   bool     `short:"V" long:"version" description:"Display version information and exit"`
}

// options returns the evaluation options selected by the config.
func (cfg *config) options() *txscript.Options {
	opts := txscript.DefaultOptions()
	if cfg.NoForkID {
		opts.Flags &^= txscript.ScriptVerifyForkID
	}
	if cfg.NoMonolith {
		opts.Flags &^= txscript.ScriptEnableMonolith
	}
	if cfg.NoMagnetic {
		opts.Flags &^= txscript.ScriptEnableMagnetic
	}
	opts.AllowOpReturn = cfg.AllowOpReturn
	opts.Strict = cfg.Strict
	opts.Trace = cfg.Trace
	if cfg.SigCacheSize > 0 {
		opts.SigCache = txscript.NewSigCache(cfg.SigCacheSize)
	}
	return opts
}

// parsePrevOut parses a previous output given as txid:vout:satoshis:scripthex.
// The txid is in the usual byte-reversed display order and the script may be
// empty.
func parsePrevOut(s string) (wire.OutPoint, *wire.TxOut, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 4 {
		return wire.OutPoint{}, nil, fmt.Errorf("previous output %q is "+
			"not in the form txid:vout:satoshis:scripthex", s)
	}

	hash, err := chainhash.NewHashFromStr(fields[0])
	if err != nil {
		return wire.OutPoint{}, nil, fmt.Errorf("previous output %q has "+
			"an invalid txid: %v", s, err)
	}
	index, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return wire.OutPoint{}, nil, fmt.Errorf("previous output %q has "+
			"an invalid output index: %v", s, err)
	}
	amount, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil || amount < 0 {
		return wire.OutPoint{}, nil, fmt.Errorf("previous output %q has "+
			"an invalid amount", s)
	}
	script, err := hex.DecodeString(fields[3])
	if err != nil {
		return wire.OutPoint{}, nil, fmt.Errorf("previous output %q has "+
			"an invalid script: %v", s, err)
	}

	return *wire.NewOutPoint(hash, uint32(index)),
		wire.NewTxOut(amount, script), nil
}

// prevOutFetcher returns a fetcher over the previous outputs of the config.
func (cfg *config) prevOutFetcher() (*txscript.MultiPrevOutFetcher, error) {
	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(cfg.PrevOuts))
	for _, s := range cfg.PrevOuts {
		op, txOut, err := parsePrevOut(s)
		if err != nil {
			return nil, err
		}
		if _, ok := prevOuts[op]; ok {
			return nil, fmt.Errorf("previous output %v is specified "+
				"more than once", op)
		}
		prevOuts[op] = txOut
	}
	return txscript.NewMultiPrevOutFetcher(prevOuts), nil
}

// loadConfig initializes and parses the config using command line options.
func loadConfig(args []string) (*config, []string, error) {
	// Default config.
	cfg := config{
		DebugLevel:   defaultDebugLevel,
		SigCacheSize: defaultSigCacheSize,
	}

	// Parse command line options.
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		return &cfg, remainingArgs, nil
	}

	if cfg.Tx == "" {
		err := fmt.Errorf("%s: a transaction must be specified with "+
			"--tx", "loadConfig")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return nil, nil, err
	}

	return &cfg, remainingArgs, nil
}
