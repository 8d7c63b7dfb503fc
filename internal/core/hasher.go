package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// SuiteHash is the content identity of one discovered suite under one stage.
//
// Includes: stage name, input names in discovery order, input contents.
// Excludes: directory paths, timestamps, artifacts.
//
// Two invocations over unchanged inputs produce the same SuiteHash, which is
// what lets traces and run records be compared across runs.
type SuiteHash string

// String returns the hex form of the hash.
func (h SuiteHash) String() string { return string(h) }

// ComputeSuiteHash hashes stage and every input in set.
//
// All components are length-prefixed so that ("ab","c") and ("a","bc")
// never collide.
func ComputeSuiteHash(stage string, set *InputSet) SuiteHash {
	hasher := sha256.New()

	writeField := func(data []byte) {
		var length [8]byte
		binary.BigEndian.PutUint64(length[:], uint64(len(data)))
		hasher.Write(length[:])
		hasher.Write(data)
	}

	writeField([]byte(stage))

	count := 0
	if set != nil {
		count = len(set.Inputs)
	}
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(count))
	writeField(n[:])

	if set != nil {
		for _, in := range set.Inputs {
			writeField([]byte(in.Name))
			writeField(in.Content)
		}
	}

	return SuiteHash(hex.EncodeToString(hasher.Sum(nil)))
}
