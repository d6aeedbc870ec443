// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stasproject/stasd/txscript"
	"github.com/stasproject/stasd/wire"
	"github.com/stretchr/testify/require"
)

// TestParsePrevOut ensures previous outputs given on the command line are
// parsed and malformed ones rejected.
func TestParsePrevOut(t *testing.T) {
	t.Parallel()

	txid := "00000000000000000000000000000000000000000000000000000000000000ab"
	wantHash, err := chainhash.NewHashFromStr(txid)
	require.NoError(t, err)

	op, txOut, err := parsePrevOut(txid + ":3:1000:76a9")
	require.NoError(t, err)
	require.Equal(t, *wire.NewOutPoint(wantHash, 3), op)
	require.Equal(t, int64(1000), txOut.Value)
	require.Equal(t, []byte{0x76, 0xa9}, txOut.LockingScript)

	_, txOut, err = parsePrevOut(txid + ":0:0:")
	require.NoError(t, err)
	require.Empty(t, txOut.LockingScript)

	bad := []string{
		txid + ":0:1000",
		txid + ":0:1000:51:00",
		"zz:0:1000:51",
		txid + ":-1:1000:51",
		txid + ":4294967296:1000:51",
		txid + ":0:-5:51",
		txid + ":0:1000:5",
	}
	for _, s := range bad {
		_, _, err := parsePrevOut(s)
		require.Error(t, err, s)
	}
}

// TestConfigOptions ensures the command line flags map onto the evaluation
// options.
func TestConfigOptions(t *testing.T) {
	t.Parallel()

	cfg, _, err := loadConfig([]string{"--tx=00"})
	require.NoError(t, err)
	opts := cfg.options()
	require.Equal(t, txscript.StandardScriptFlags, opts.Flags)
	require.False(t, opts.AllowOpReturn)
	require.False(t, opts.Strict)
	require.NotNil(t, opts.SigCache)

	cfg, _, err = loadConfig([]string{"--tx=00", "--noforkid",
		"--nomagnetic", "--allowopreturn", "--strict", "--trace",
		"--sigcachesize=0"})
	require.NoError(t, err)
	opts = cfg.options()
	require.Equal(t, txscript.ScriptEnableMonolith, opts.Flags)
	require.True(t, opts.AllowOpReturn)
	require.True(t, opts.Strict)
	require.True(t, opts.Trace)
	require.Nil(t, opts.SigCache)

	cfg, _, err = loadConfig([]string{"--tx=00", "--nomonolith"})
	require.NoError(t, err)
	require.Equal(t, txscript.ScriptVerifyForkID|txscript.ScriptEnableMagnetic,
		cfg.options().Flags)

	_, _, err = loadConfig(nil)
	require.Error(t, err)

	_, err = (&config{PrevOuts: []string{
		chainhash.Hash{}.String() + ":0:1:51",
		chainhash.Hash{}.String() + ":0:2:52",
	}}).prevOutFetcher()
	require.Error(t, err)
}

// TestRun verifies transactions end to end through the command.
func TestRun(t *testing.T) {
	prevHash := chainhash.Hash{0x01}
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil))
	tx.AddTxOut(wire.NewTxOut(900, []byte{txscript.OP_TRUE}))
	txHex, err := tx.Hex()
	require.NoError(t, err)

	tests := []struct {
		name     string
		args     []string
		wantErr  error
		contains []string
	}{{
		name:     "valid",
		args:     []string{"--prevout=" + prevHash.String() + ":0:1000:51"},
		contains: []string{"transaction " + tx.TxID() + ": valid", "input 0: ok", "stack[0]: 01"},
	}, {
		name:     "valid with trace",
		args:     []string{"--trace", "--prevout=" + prevHash.String() + ":0:1000:51"},
		contains: []string{"input 0: ok", "trace:", `"OP_1"`},
	}, {
		name:     "false result",
		args:     []string{"--prevout=" + prevHash.String() + ":0:1000:00"},
		wantErr:  errInvalidTx,
		contains: []string{": invalid", "input 0: "},
	}, {
		name:     "missing previous output",
		wantErr:  errInvalidTx,
		contains: []string{": invalid"},
	}, {
		name:     "version",
		args:     []string{"--version"},
		contains: []string{"scriptcheck version "},
	}}

	for _, test := range tests {
		var buf bytes.Buffer
		args := append([]string{"--tx=" + txHex}, test.args...)
		err := run(args, &buf)
		if test.wantErr != nil {
			require.ErrorIs(t, err, test.wantErr, test.name)
		} else {
			require.NoError(t, err, test.name)
		}
		for _, want := range test.contains {
			require.Contains(t, buf.String(), want, test.name)
		}
	}

	// An undecodable transaction is an error of its own.
	err = run([]string{"--tx=zz"}, &bytes.Buffer{})
	require.Error(t, err)
	require.NotErrorIs(t, err, errInvalidTx)
}
