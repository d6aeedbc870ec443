// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// genRandomSig returns a random message, a signature of the message under the
// public key and the public key. This function is used to generate randomized
// test data.
func genRandomSig() (*chainhash.Hash, *ecdsa.Signature, *btcec.PublicKey, error) {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, nil, err
	}

	var msgHash chainhash.Hash
	if _, err := rand.Read(msgHash[:]); err != nil {
		return nil, nil, nil, err
	}

	sig := ecdsa.Sign(privKey, msgHash[:])

	return &msgHash, sig, privKey.PubKey(), nil
}

// TestSigCacheAddExists tests the ability to add, and later check the
// existence of a signature triplet in the signature cache.
func TestSigCacheAddExists(t *testing.T) {
	sigCache := NewSigCache(200)

	// Generate a random sigCache entry triplet.
	msg1, sig1, key1, err := genRandomSig()
	if err != nil {
		t.Fatalf("unable to generate random signature test data")
	}

	// Add the triplet to the signature cache.
	sigCache.Add(*msg1, sig1.Serialize(), key1.SerializeCompressed())

	// The previously added triplet should now be found within the sigcache.
	sig1Copy, _ := ecdsa.ParseSignature(sig1.Serialize())
	key1Copy, _ := btcec.ParsePubKey(key1.SerializeCompressed())
	if !sigCache.Exists(*msg1, sig1Copy.Serialize(), key1Copy.SerializeCompressed()) {
		t.Errorf("previously added item not found in signature cache")
	}

	// A different encoding of the same key is a different entry.
	if sigCache.Exists(*msg1, sig1.Serialize(), key1.SerializeUncompressed()) {
		t.Errorf("uncompressed key found in signature cache")
	}
}

// TestSigCacheAddEvictEntry tests the eviction case where a new signature
// triplet is added to a full signature cache which should evict the least
// recently used entry, followed by adding the new element to the cache.
func TestSigCacheAddEvictEntry(t *testing.T) {
	// Create a sigcache that can hold up to 100 entries.
	sigCacheSize := uint(100)
	sigCache := NewSigCache(sigCacheSize)

	type triplet struct {
		msg *chainhash.Hash
		sig []byte
		key []byte
	}

	// Fill the sigcache up with some random sig triplets.
	entries := make([]triplet, 0, sigCacheSize)
	for i := uint(0); i < sigCacheSize; i++ {
		msg, sig, key, err := genRandomSig()
		if err != nil {
			t.Fatalf("unable to generate random signature test data")
		}

		entry := triplet{msg, sig.Serialize(), key.SerializeCompressed()}
		sigCache.Add(*entry.msg, entry.sig, entry.key)
		if !sigCache.Exists(*entry.msg, entry.sig, entry.key) {
			t.Errorf("previously added item not found in signature " +
				"cache")
		}
		entries = append(entries, entry)
	}

	// Touch the oldest entry so the second oldest becomes the least
	// recently used one.
	oldest := entries[0]
	if !sigCache.Exists(*oldest.msg, oldest.sig, oldest.key) {
		t.Fatalf("oldest item not found in signature cache")
	}

	// Add a new entry, this should cause eviction of the least recently
	// used entry.
	msgNew, sigNew, keyNew, err := genRandomSig()
	if err != nil {
		t.Fatalf("unable to generate random signature test data")
	}
	sigCache.Add(*msgNew, sigNew.Serialize(), keyNew.SerializeCompressed())

	// The entry added above should be found within the sigcache.
	if !sigCache.Exists(*msgNew, sigNew.Serialize(), keyNew.SerializeCompressed()) {
		t.Fatalf("previously added item not found in signature cache")
	}

	evicted := entries[1]
	if sigCache.Exists(*evicted.msg, evicted.sig, evicted.key) {
		t.Fatalf("least recently used item was not evicted")
	}
	if !sigCache.Exists(*oldest.msg, oldest.sig, oldest.key) {
		t.Fatalf("recently used item was evicted")
	}
}

// TestSigCacheAddMaxEntriesZero tests that if a sigCache is created with a max
// size of zero, then no entries are added to the sigcache at all.
func TestSigCacheAddMaxEntriesZero(t *testing.T) {
	// Create a sigcache that can hold up to 0 entries.
	sigCache := NewSigCache(0)

	// Generate a random sigCache entry triplet.
	msg1, sig1, key1, err := genRandomSig()
	if err != nil {
		t.Fatalf("unable to generate random signature test data")
	}

	// Add the triplet to the signature cache.
	sigCache.Add(*msg1, sig1.Serialize(), key1.SerializeCompressed())

	// The generated triplet should not be found.
	if sigCache.Exists(*msg1, sig1.Serialize(), key1.SerializeCompressed()) {
		t.Errorf("previously added signature found in sigcache, but " +
			"shouldn't have been")
	}
}
