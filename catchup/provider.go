package catchup

import "github.com/datatrails/go-merklelog-seeder/wire"

// Splitter halves a CatchupRep whose serialized size exceeds a transport
// limit. It returns (nil, nil) when the message cannot be split further
// (fewer than two transactions); the transport is then expected to
// escalate the failure rather than retry.
type Splitter func(rep wire.CatchupRep, catchupTill uint64) (left, right *wire.CatchupRep, err error)

// Provider is the narrow capability set the Seeder Core consumes from its
// host node. It is intentionally a plain interface rather than a class
// hierarchy — dynamic dispatch here is not performance sensitive, and a
// small interface is easy for a host to satisfy with a handful of closures.
type Provider interface {
	// NodeName identifies this node for diagnostic logging only.
	NodeName() string

	// SendTo enqueues msg to the named peer. If splitter is non-nil, the
	// transport may invoke it when msg does not fit on the wire.
	SendTo(msg any, dest string, splitter Splitter) error

	// UpdateTxnWithExtraData is a pure decorator applied to every
	// transaction before it is placed on the wire.
	UpdateTxnWithExtraData(txn wire.Txn) wire.Txn

	// ThreePhaseKeyForTxnSeqNo returns the consensus coordinates committed
	// for ledgerId/seqNo, or ok=false if none is known (the caller then
	// uses the (0, 0) sentinel).
	ThreePhaseKeyForTxnSeqNo(ledgerID wire.LedgerID, seqNo wire.SeqNo) (viewNo, ppSeqNo uint64, ok bool)
}
