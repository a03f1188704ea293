// Package graph holds the CSR adjacency representation and the atomic
// per-node state: a packed distance-and-work word updated only by CAS,
// plus the auxiliary fields A* and PageRank need.
package graph

import (
	"math"
	"sync/atomic"
)

// NodeID identifies a node by its position in the CSR row-offset array.
type NodeID uint32

// Infinity is the SSSP/A* distance sentinel: u32::MAX - 1, matching the
// source's DIST_INFINITY. Infinity+edgeWeight can still wrap a uint32; the
// relaxation and verification loops skip sums that wrap.
const Infinity uint32 = math.MaxUint32 - 1

// DistWord packs a 32-bit distance in its low bits and a 32-bit
// work-accounting counter in its high bits. The two halves travel together
// under one CAS so a concurrent accounting update never clobbers a
// concurrent distance improvement or vice versa.
type DistWord uint64

func packDistWord(dist, work uint32) DistWord {
	return DistWord(uint64(work)<<32 | uint64(dist))
}

// Dist returns the distance half of the word.
func (w DistWord) Dist() uint32 { return uint32(w) }

// Work returns the work-accounting half of the word.
func (w DistWord) Work() uint32 { return uint32(w >> 32) }

// NodeState is the atomic record held per node. Edge-array fields live on
// the owning Graph; NodeState only carries what relaxation mutates.
type NodeState struct {
	dist atomic.Uint64 // DistWord

	// A* coordinates, in micro-degrees. Immutable after graph load, so no
	// atomic wrapper is needed.
	X, Y int32

	// PageRank: Value is the current rank estimate, Residual the mass not
	// yet propagated to neighbors. Both are stored as float32 bits behind
	// an atomic.Uint32 since Go has no native atomic float add.
	value    atomic.Uint32
	residual atomic.Uint32
}

func float32Bits(f float32) uint32 { return math.Float32bits(f) }
func bitsFloat32(b uint32) float32 { return math.Float32frombits(b) }

// Reset restores a node's distance word to Infinity and zero work, called
// once at graph load by SSSP/A*.
func (n *NodeState) Reset() {
	n.dist.Store(uint64(packDistWord(Infinity, 0)))
}

// ResetPageRank seeds the PageRank fields: value = 1-alpha, residual = 0,
// per the relaxation's init step.
func (n *NodeState) ResetPageRank(initialValue float32) {
	n.value.Store(float32Bits(initialValue))
	n.residual.Store(float32Bits(0))
}

// LoadDist performs an acquire load of the full distance word.
func (n *NodeState) LoadDist() DistWord {
	return DistWord(n.dist.Load())
}

// CasDist attempts a release CAS of the full 64-bit word. Callers compute
// the new word (distance plus whatever work-accounting they want to
// record) and compare against a previously-observed DistWord.
func (n *NodeState) CasDist(expected, new DistWord) bool {
	return n.dist.CompareAndSwap(uint64(expected), uint64(new))
}

// PackDist builds a DistWord from a distance and a work counter, exposed so
// operator packages can construct CAS candidates without reaching into the
// bit layout themselves.
func PackDist(dist, work uint32) DistWord { return packDistWord(dist, work) }

// Value loads the current PageRank rank estimate.
func (n *NodeState) Value() float32 { return bitsFloat32(n.value.Load()) }

// SetValue stores a new PageRank rank estimate.
func (n *NodeState) SetValue(v float32) { n.value.Store(float32Bits(v)) }

// Residual loads the current unpropagated PageRank mass.
func (n *NodeState) Residual() float32 { return bitsFloat32(n.residual.Load()) }

// SwapResidual atomically sets the residual to zero and returns the prior
// value, matching the relaxation body's "residual.exchange(0.0)".
func (n *NodeState) SwapResidual() float32 {
	for {
		old := n.residual.Load()
		if n.residual.CompareAndSwap(old, float32Bits(0)) {
			return bitsFloat32(old)
		}
	}
}

// AddResidual atomically adds delta to the residual and returns the value
// observed before the add.
func (n *NodeState) AddResidual(delta float32) (old float32) {
	for {
		oldBits := n.residual.Load()
		oldVal := bitsFloat32(oldBits)
		newBits := float32Bits(oldVal + delta)
		if n.residual.CompareAndSwap(oldBits, newBits) {
			return oldVal
		}
	}
}
