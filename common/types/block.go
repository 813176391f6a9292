// Package types defines the value types shared between the mesh, the syncer
// and the storage layer.
package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Height identifies a block by its position in the chain.
type Height uint32

// Uint32 returns the height as a uint32.
func (h Height) Uint32() uint32 {
	return uint32(h)
}

// Add returns the height incremented by value.
func (h Height) Add(value uint32) Height {
	return h + Height(value)
}

func (h Height) String() string {
	return fmt.Sprint(uint32(h))
}

// Block is a single stored copy of a chain block. The same height may be
// stored more than once (one copy per independent source) when the redundancy
// target is above one.
type Block struct {
	Height Height `json:"height"`
	Hash   string `json:"hash"`
	Data   []byte `json:"data"`
	// Source is the endpoint the payload was fetched from, kept for audit.
	Source string `json:"source"`
}

// CalcHash computes the payload digest kept alongside each stored copy.
func CalcHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
