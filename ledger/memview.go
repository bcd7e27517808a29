package ledger

import (
	"context"
	"encoding/json"
	"iter"
	"sync"

	"github.com/datatrails/go-merklelog-seeder/merkle"
	"github.com/datatrails/go-merklelog-seeder/wire"
)

// MemView is an in-memory View, built for tests and for small ledgers that
// don't warrant a durable backing store. Appends are serialized under a
// mutex; reads take a length snapshot up front so a GetRange in flight never
// observes leaves appended after it started.
type MemView struct {
	mu      sync.RWMutex
	payload [][]byte
	extra   []json.RawMessage
}

// NewMemView returns an empty in-memory ledger view.
func NewMemView() *MemView {
	return &MemView{}
}

// Append commits one transaction at the next SeqNo and returns it. payload
// is hashed into the Merkle tree; extra is carried alongside but never
// hashed, mirroring the wire Txn split between committed payload and
// auxiliary data.
func (v *MemView) Append(payload []byte, extra json.RawMessage) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.payload = append(v.payload, payload)
	v.extra = append(v.extra, extra)
	return uint64(len(v.payload))
}

func (v *MemView) Size() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return uint64(len(v.payload))
}

// LeafData implements merkle.LeafSource against the view's current contents,
// taking the read lock for each call. The Engine returned by Tree is bound to
// the live view, so its Size grows with later appends.
func (v *MemView) LeafData(i uint64) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i >= uint64(len(v.payload)) {
		return nil, merkle.ErrOutOfRange
	}
	return v.payload[i], nil
}

func (v *MemView) LeafCount() uint64 {
	return v.Size()
}

func (v *MemView) Tree() *merkle.Engine {
	return merkle.New(v)
}

// GetRange returns the committed transactions for 1 <= start <= end <=
// Size(), as a stable snapshot taken at call time.
func (v *MemView) GetRange(_ context.Context, start, end uint64) (iter.Seq2[uint64, wire.Txn], error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	size := uint64(len(v.payload))
	if start < 1 || start > end || end > size {
		return nil, ErrRangeInvalid
	}

	payload := v.payload[start-1 : end]
	extra := v.extra[start-1 : end]

	return func(yield func(uint64, wire.Txn) bool) {
		for i := range payload {
			seqNo := start + uint64(i)
			txn := wire.Txn{
				Payload:   json.RawMessage(payload[i]),
				ExtraData: extra[i],
			}
			if !yield(seqNo, txn) {
				return
			}
		}
	}, nil
}
