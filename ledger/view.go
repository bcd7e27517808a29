// Package ledger provides a read-only façade over a committed transaction
// log: size, iteration by sequence range, and a Merkle proof engine bound
// to the same log. The View contract is read-only; the only writer in this
// package is MemView.Append, used to populate in-process ledgers.
package ledger

import (
	"context"
	"errors"
	"iter"

	"github.com/datatrails/go-merklelog-seeder/merkle"
	"github.com/datatrails/go-merklelog-seeder/wire"
)

// ErrRangeInvalid is returned by GetRange when start/end violate
// 1 <= start <= end <= Size().
var ErrRangeInvalid = errors.New("ledger: invalid range")

// View is the read-only contract the seeder consults for one registered
// ledger.
type View interface {
	// Size returns the current committed length (the highest committed
	// SeqNo, or 0 if empty).
	Size() uint64

	// GetRange returns an ordered iterator of (SeqNo, Txn) pairs for
	// 1 <= start <= end <= Size(), inclusive on both ends. The iteration
	// is a stable snapshot: appends that occur after GetRange is called
	// must not be visible to it, even if they land within [start, end].
	GetRange(ctx context.Context, start, end uint64) (iter.Seq2[uint64, wire.Txn], error)

	// Tree returns the Merkle proof engine bound to this ledger's current
	// state.
	Tree() *merkle.Engine
}
