package catchup

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/datatrails/go-merklelog-seeder/wire"
)

const (
	// dedupeGenerations is the number of independent bitsets kept in
	// rotation. One generation is "current" (being written to); the rest
	// are aging witnesses of recent requests. rotate clears the oldest
	// and makes it the new current one.
	dedupeGenerations = 4
	dedupeHashFns     = 4
	dedupeBitsPerElem = 10
)

// dedupeKey derives the 32-byte element the filter is keyed on, per the
// tuple named in the component design: sender plus the full request shape,
// so two distinct requests from the same peer never collide.
func dedupeKey(sender string, ledgerID wire.LedgerID, seqNoStart, seqNoEnd, catchupTill uint64) [32]byte {
	h := sha256.New()
	h.Write([]byte(sender))
	var buf [4 + 8*3]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(ledgerID))
	binary.BigEndian.PutUint64(buf[4:12], seqNoStart)
	binary.BigEndian.PutUint64(buf[12:20], seqNoEnd)
	binary.BigEndian.PutUint64(buf[20:28], catchupTill)
	h.Write(buf[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// dedupeFilter recognizes repeated identical CatchupReq tuples from the
// same peer for diagnostic log annotation only; it never gates whether a
// request is answered. It is a small in-memory Bloom filter rotated across
// dedupeGenerations independent bitsets as a coarse sliding window:
// membership naturally ages out as rotate advances the window. Unlike a
// filter meant to be persisted and reopened, this one never needs a
// header, magic bytes, or a version tag — just the bits, so it carries
// none of that.
type dedupeFilter struct {
	mu      sync.Mutex
	bitsets [dedupeGenerations][]uint64
	mBits   uint64
	next    uint8 // next generation to clear-and-reuse
}

// newDedupeFilter sizes a filter for roughly capacity recent requests.
func newDedupeFilter(capacity uint64) (*dedupeFilter, error) {
	if capacity == 0 {
		capacity = 1
	}
	mBits := capacity * dedupeBitsPerElem
	words := (mBits + 63) / 64
	f := &dedupeFilter{mBits: mBits}
	for i := range f.bitsets {
		f.bitsets[i] = make([]uint64, words)
	}
	return f, nil
}

// bitPositions derives dedupeHashFns bit offsets from key by double
// hashing (h1 + i*h2), the usual way to get several index positions out of
// one digest without computing dedupeHashFns independent hashes.
func (f *dedupeFilter) bitPositions(key [32]byte) [dedupeHashFns]uint64 {
	h1 := binary.BigEndian.Uint64(key[0:8])
	h2 := binary.BigEndian.Uint64(key[8:16])
	var out [dedupeHashFns]uint64
	for i := range out {
		out[i] = (h1 + uint64(i)*h2) % f.mBits
	}
	return out
}

func setBit(bitset []uint64, pos uint64) {
	bitset[pos/64] |= 1 << (pos % 64)
}

func testBit(bitset []uint64, pos uint64) bool {
	return bitset[pos/64]&(1<<(pos%64)) != 0
}

// seen reports whether key might already have been marked in any active
// generation (a Bloom "maybe" — false positives only ever add a log
// annotation, never suppress a response).
func (f *dedupeFilter) seen(key [32]byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	positions := f.bitPositions(key)
	for _, bitset := range f.bitsets {
		hit := true
		for _, pos := range positions {
			if !testBit(bitset, pos) {
				hit = false
				break
			}
		}
		if hit {
			return true
		}
	}
	return false
}

// mark records key in the current generation.
func (f *dedupeFilter) mark(key [32]byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	current := (f.next + dedupeGenerations - 1) % dedupeGenerations
	for _, pos := range f.bitPositions(key) {
		setBit(f.bitsets[current], pos)
	}
}

// rotate clears the next generation and advances the window, dropping the
// oldest batch of marked requests. Core calls this every rotateEvery marks
// (dedupeCapacity / dedupeGenerations, see New in core.go) so the rolling window described for this filter is
// actually realized at runtime, not left to grow without bound.
func (f *dedupeFilter) rotate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	bitset := f.bitsets[f.next]
	for i := range bitset {
		bitset[i] = 0
	}
	f.next = (f.next + 1) % dedupeGenerations
}
