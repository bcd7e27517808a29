package catchup

import (
	"fmt"

	"github.com/datatrails/go-merklelog-seeder/merkle"
	"github.com/datatrails/go-merklelog-seeder/wire"
)

// NewSplitter binds the Response Splitter (component E) to one ledger's
// Merkle engine. The returned Splitter is the fallback ProcessCatchupReq
// hands to Provider.SendTo: the transport invokes it only when a CatchupRep
// does not fit on the wire, and may call it again on either half if that
// half is still too large (recursion lives in the transport, not here).
func NewSplitter(tree *merkle.Engine) Splitter {
	return func(rep wire.CatchupRep, catchupTill uint64) (*wire.CatchupRep, *wire.CatchupRep, error) {
		if rep.Txns.Len() < 2 {
			return nil, nil, nil
		}

		mid := rep.Txns.Len() / 2
		leftTxns, rightTxns := rep.Txns.Split(mid)

		left, err := halfReply(tree, rep.LedgerID, leftTxns, catchupTill)
		if err != nil {
			return nil, nil, err
		}
		right, err := halfReply(tree, rep.LedgerID, rightTxns, catchupTill)
		if err != nil {
			return nil, nil, err
		}
		return left, right, nil
	}
}

// halfReply computes a fresh consistency proof from this half's maximum
// SeqNo to catchupTill, so each half is individually verifiable against
// the same target root the requester already committed to.
func halfReply(tree *merkle.Engine, ledgerID wire.LedgerID, txns wire.SortedTxns, catchupTill uint64) (*wire.CatchupRep, error) {
	seqNos := txns.SeqNos()
	lastSeqNo := seqNos[len(seqNos)-1]

	proof, err := tree.ConsistencyProof(lastSeqNo, catchupTill)
	if err != nil {
		return nil, fmt.Errorf("catchup: split proof for ledger %d: %w", ledgerID, err)
	}

	return &wire.CatchupRep{
		LedgerID:  ledgerID,
		Txns:      txns,
		ConsProof: wire.HexHashes(proof),
	}, nil
}
