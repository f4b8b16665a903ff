package core

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
)

// Fingerprint is a structural hash of a region: branch count, depth and
// terminal-statement shape, never text. Cosmetic differences (identifier
// names, spacing) produce the same fingerprint, so suggestion-provider
// lookups and confidence scaling survive renames.
type Fingerprint struct {
	BranchCount  int    `json:"branch_count"`
	Depth        int    `json:"depth"`
	HasElse      bool   `json:"has_else"`
	HasEarlyExit bool   `json:"has_early_exit"`
	Hash         uint64 `json:"hash"`
}

// NewFingerprint computes the structural hash over the given shape fields.
func NewFingerprint(branchCount, depth int, hasElse, hasEarlyExit bool) Fingerprint {
	h := fnv.New64a()
	var buf [8]byte

	binary.LittleEndian.PutUint64(buf[:], uint64(branchCount))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(depth))
	h.Write(buf[:])
	h.Write([]byte{boolByte(hasElse), boolByte(hasEarlyExit)})

	return Fingerprint{
		BranchCount:  branchCount,
		Depth:        depth,
		HasElse:      hasElse,
		HasEarlyExit: hasEarlyExit,
		Hash:         h.Sum64(),
	}
}

// Key returns a stable string form usable as a cache key.
func (f Fingerprint) Key() string {
	return fmt.Sprintf("%016x", f.Hash)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
