package merkle

import "crypto/sha256"

// Domain separation prefixes from RFC 6962 section 2.1, preventing a
// second-preimage attack that would otherwise let an interior node's
// preimage be confused with a leaf's.
const (
	leafPrefix     = 0x00
	interiorPrefix = 0x01
)

// LeafSource supplies the raw bytes committed at each leaf position. The
// engine hashes each leaf itself (with the RFC 6962 leaf prefix); the
// source never pre-hashes.
type LeafSource interface {
	// LeafData returns the raw bytes committed at leaf i, 0 <= i < LeafCount().
	LeafData(i uint64) ([]byte, error)
	// LeafCount returns the current number of committed leaves.
	LeafCount() uint64
}

// Engine computes subtree hashes and consistency proofs against a
// LeafSource. It holds no state of its own beyond the source reference, so
// it is safe to share across goroutines as long as the source is.
type Engine struct {
	leaves LeafSource
}

// New binds a Merkle Proof Engine to a leaf source.
func New(leaves LeafSource) *Engine {
	return &Engine{leaves: leaves}
}

// Size returns the number of leaves currently committed.
func (e *Engine) Size() uint64 {
	return e.leaves.LeafCount()
}

func leafHash(data []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{leafPrefix})
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func interiorHash(left, right [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{interiorPrefix})
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SubtreeHash returns the hash of the complete or partial subtree covering
// leaves [lo, hi). It is defined for 0 <= lo < hi <= Size().
func (e *Engine) SubtreeHash(lo, hi uint64) ([32]byte, error) {
	size := e.Size()
	if lo >= hi {
		return [32]byte{}, ErrInvalidRange
	}
	if hi > size {
		return [32]byte{}, ErrOutOfRange
	}
	return e.mth(lo, hi)
}

// mth computes the RFC 6962 Merkle Tree Hash of leaves [lo, hi). Precondition:
// lo < hi <= Size(), enforced by the caller.
func (e *Engine) mth(lo, hi uint64) ([32]byte, error) {
	if hi-lo == 1 {
		data, err := e.leaves.LeafData(lo)
		if err != nil {
			return [32]byte{}, err
		}
		return leafHash(data), nil
	}
	k := splitPoint(hi - lo)
	left, err := e.mth(lo, lo+k)
	if err != nil {
		return [32]byte{}, err
	}
	right, err := e.mth(lo+k, hi)
	if err != nil {
		return [32]byte{}, err
	}
	return interiorHash(left, right), nil
}

// splitPoint returns the largest power of two strictly smaller than n, the
// "k" used throughout RFC 6962 section 2.1 to split a range into a perfect
// left subtree and a right remainder.
func splitPoint(n uint64) uint64 {
	k := uint64(1)
	for k*2 < n {
		k *= 2
	}
	return k
}

// RootHashOfPrefix returns the hash of the tree containing the first n
// transactions. When n == 0, the tree's *current* root hash is returned as
// a placeholder rather than the empty-tree hash — a deliberate wire
// compatibility wart inherited from the system this was distilled from; see
// buildConsistencyProof in the catchup package, which relies on it.
func (e *Engine) RootHashOfPrefix(n uint64) ([32]byte, error) {
	size := e.Size()
	if n > size {
		return [32]byte{}, ErrOutOfRange
	}
	if n == 0 {
		if size == 0 {
			return emptyTreeHash(), nil
		}
		return e.mth(0, size)
	}
	return e.mth(0, n)
}

// emptyTreeHash is MTH({}) = SHA-256 of the empty string, per RFC 6962.
func emptyTreeHash() [32]byte {
	var out [32]byte
	copy(out[:], sha256.New().Sum(nil))
	return out
}
