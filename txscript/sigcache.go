// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
)

// sigInfo represents an entry in the SigCache. Entries in the sigcache are a
// 3-tuple: (sigHash, sig, pubKey).
type sigInfo struct {
	sigHash chainhash.Hash
	sig     string
	pubKey  string
}

// SigCache implements an ECDSA signature verification cache with a least
// recently used eviction policy. Only valid signatures will be added to the
// cache. The benefits of SigCache are two fold. Firstly, usage of SigCache
// mitigates a DoS attack wherein an attack causes a victim's client to hang due
// to worst-case behavior triggered while processing attacker crafted invalid
// transactions. Secondly, usage of the SigCache introduces a signature
// verification optimization which speeds up the validation of transactions
// that have already been seen and verified.
type SigCache struct {
	validSigs lru.Cache
}

// NewSigCache creates and initializes a new instance of SigCache. Its sole
// parameter 'maxEntries' represents the maximum number of entries allowed to
// exist in the SigCache at any particular moment.
func NewSigCache(maxEntries uint) *SigCache {
	return &SigCache{
		validSigs: lru.NewCache(maxEntries),
	}
}

// Exists returns true if an existing entry of 'sig' over 'sigHash' for public
// key 'pubKey' is found within the SigCache. Otherwise, false is returned.
//
// NOTE: This function is safe for concurrent access.
func (s *SigCache) Exists(sigHash chainhash.Hash, sig, pubKey []byte) bool {
	return s.validSigs.Contains(sigInfo{sigHash, string(sig), string(pubKey)})
}

// Add adds an entry for a signature over 'sigHash' under public key 'pubKey'
// to the signature cache. In the event that the SigCache is 'full', the least
// recently used entry is evicted in order to make space for the new entry.
//
// NOTE: This function is safe for concurrent access.
func (s *SigCache) Add(sigHash chainhash.Hash, sig, pubKey []byte) {
	s.validSigs.Add(sigInfo{sigHash, string(sig), string(pubKey)})
}
