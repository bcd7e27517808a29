// Package catchup implements the Seeder Core (component D): it dispatches
// inbound LedgerStatus/CatchupReq messages, validates them, consults a
// ledger.View and merkle.Engine to build proofs, and emits responses
// through a host-supplied Provider.
package catchup

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/datatrails/go-merklelog-seeder/internal/logging"
	"github.com/datatrails/go-merklelog-seeder/ledger"
	"github.com/datatrails/go-merklelog-seeder/wire"
)

// ProtocolVersion is stamped onto every LedgerStatus this core emits.
const ProtocolVersion uint16 = 1

// Core is the single concrete seeder type. The two deployment variants
// described in the component design — client-facing and peer-facing —
// differ only in the echoWhenCaughtUp option; there is no class hierarchy.
type Core struct {
	mu      sync.RWMutex
	ledgers map[wire.LedgerID]ledger.View

	provider Provider
	opts     options
	dedupe   *dedupeFilter
	log      *zap.SugaredLogger

	// marksSinceRotate and rotateEvery drive the dedupe filter's rolling
	// window (component G): every rotateEvery marked request, the oldest
	// generation is cleared so the filter's working set actually ages out
	// instead of growing without bound. The dispatch loop is single
	// threaded (§5), so this counter needs no lock of its own.
	marksSinceRotate uint64
	rotateEvery      uint64
}

// New builds a Core bound to provider. Ledgers are registered afterward,
// one at a time, via RegisterLedger.
func New(provider Provider, opts ...Option) (*Core, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	dedupe, err := newDedupeFilter(o.dedupeCapacity)
	if err != nil {
		return nil, fmt.Errorf("catchup: build dedupe filter: %w", err)
	}

	log := logging.Named(o.logger, "catchup").With("node", provider.NodeName())

	rotateEvery := o.dedupeCapacity / dedupeGenerations
	if rotateEvery == 0 {
		rotateEvery = 1
	}

	return &Core{
		ledgers:     make(map[wire.LedgerID]ledger.View),
		provider:    provider,
		opts:        o,
		dedupe:      dedupe,
		log:         log,
		rotateEvery: rotateEvery,
	}, nil
}

// RegisterLedger binds id to view. Safe to call concurrently with Run,
// though the lifecycle described in the data model registers ledgers
// one at a time at boot, before any request is dispatched.
func (c *Core) RegisterLedger(id wire.LedgerID, view ledger.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ledgers[id] = view
}

// ledgersSnapshot copies the registration table under lock so the
// validator can run its predicates (which read ledger.Size()) without
// holding the core's lock across a call into ledger storage.
func (c *Core) ledgersSnapshot() map[wire.LedgerID]ledger.View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[wire.LedgerID]ledger.View, len(c.ledgers))
	for k, v := range c.ledgers {
		out[k] = v
	}
	return out
}

// ProcessLedgerStatus implements the LedgerStatus handler (§4.D): validate,
// then either echo our own status (client-facing variant, caught-up peer),
// stay silent (peer-facing variant, caught-up peer), or reply with a
// consistency proof spanning the peer's reported size to ours.
func (c *Core) ProcessLedgerStatus(status wire.LedgerStatus, sender string) {
	reqID := uuid.NewString()
	c.log.Debugw("processing ledger status", "requestId", reqID, "sender", sender, "ledgerId", status.LedgerID)

	ledgers := c.ledgersSnapshot()
	if err := validateLedgerStatus(ledgers, status); err != nil {
		c.logDrop(reqID, sender, "LedgerStatus", err, false)
		return
	}

	view := ledgers[status.LedgerID]
	size := view.Size()

	if uint64(status.TxnSeqNo) >= size {
		if !c.opts.echoWhenCaughtUp {
			return
		}
		c.replyOwnStatus(reqID, status.LedgerID, view, sender)
		return
	}

	c.replyConsistencyProof(reqID, status.LedgerID, view, uint64(status.TxnSeqNo), size, sender)
}

// ProcessCatchupReq implements the CatchupReq handler (§4.D): validate,
// build a consistency proof from seqNoEnd to catchupTill, collect the
// requested transaction range (decorated via the provider), and emit a
// CatchupRep with a splitter bound to this ledger's tree.
func (c *Core) ProcessCatchupReq(req wire.CatchupReq, sender string) {
	reqID := uuid.NewString()
	key := dedupeKey(sender, req.LedgerID, req.SeqNoStart, req.SeqNoEnd, req.CatchupTill)
	repeated := c.dedupe.seen(key)

	c.log.Debugw("processing catchup request", "requestId", reqID, "sender", sender, "ledgerId", req.LedgerID, "repeatedRequest", repeated)

	ledgers := c.ledgersSnapshot()
	if err := validateCatchupReq(ledgers, req); err != nil {
		c.logDrop(reqID, sender, "CatchupReq", err, repeated)
		return
	}
	c.dedupe.mark(key)
	c.marksSinceRotate++
	if c.marksSinceRotate >= c.rotateEvery {
		c.dedupe.rotate()
		c.marksSinceRotate = 0
	}

	view := ledgers[req.LedgerID]

	cp, err := c.buildConsistencyProof(req.LedgerID, view, req.SeqNoEnd, req.CatchupTill)
	if err != nil {
		c.logProofFault(reqID, sender, req.LedgerID, err)
		return
	}

	txns := make(map[uint64]wire.Txn)
	if req.SeqNoEnd > 0 {
		// GetRange is 1-based; a requester reporting SeqNoStart 0 (meaning
		// "I have no data") is clamped to the first committed transaction
		// rather than rejected, since the four validator rules alone
		// don't exclude SeqNoStart == 0 here.
		start := req.SeqNoStart
		if start == 0 {
			start = 1
		}
		seq, err := view.GetRange(context.Background(), start, req.SeqNoEnd)
		if err != nil {
			c.logProofFault(reqID, sender, req.LedgerID, err)
			return
		}
		for seqNo, txn := range seq {
			txns[seqNo] = c.provider.UpdateTxnWithExtraData(txn)
		}
	}

	rep := wire.CatchupRep{
		LedgerID:  req.LedgerID,
		Txns:      wire.NewSortedTxns(txns),
		ConsProof: cp.Hashes,
	}

	splitter := NewSplitter(view.Tree())
	if err := c.provider.SendTo(rep, sender, splitter); err != nil {
		c.log.Warnw("send catchup reply failed", "requestId", reqID, "sender", sender, "ledgerId", req.LedgerID, "err", err)
	}
}

// replyOwnStatus is the client-facing variant's response to an already
// caught-up peer: our own current LedgerStatus, giving the peer a
// confirming witness toward its quorum detection.
func (c *Core) replyOwnStatus(reqID string, ledgerID wire.LedgerID, view ledger.View, dest string) {
	size := view.Size()
	root, err := view.Tree().RootHashOfPrefix(size)
	if err != nil {
		c.logProofFault(reqID, dest, ledgerID, err)
		return
	}

	viewNo, ppSeqNo, ok := c.provider.ThreePhaseKeyForTxnSeqNo(ledgerID, wire.SeqNo(size))
	if !ok {
		viewNo, ppSeqNo = 0, 0
	}

	status := wire.LedgerStatus{
		LedgerID:        ledgerID,
		TxnSeqNo:        int64(size),
		ViewNo:          viewNo,
		PpSeqNo:         ppSeqNo,
		MerkleRoot:      wire.Hash(root),
		ProtocolVersion: ProtocolVersion,
		SealedRoot:      c.sealRoot(ledgerID, size, root),
	}

	if err := c.provider.SendTo(status, dest, nil); err != nil {
		c.log.Warnw("send own status failed", "requestId", reqID, "sender", dest, "ledgerId", ledgerID, "err", err)
	}
}

func (c *Core) replyConsistencyProof(reqID string, ledgerID wire.LedgerID, view ledger.View, seqNoStart, seqNoEnd uint64, dest string) {
	cp, err := c.buildConsistencyProof(ledgerID, view, seqNoStart, seqNoEnd)
	if err != nil {
		c.logProofFault(reqID, dest, ledgerID, err)
		return
	}
	if err := c.provider.SendTo(cp, dest, nil); err != nil {
		c.log.Warnw("send consistency proof failed", "requestId", reqID, "sender", dest, "ledgerId", ledgerID, "err", err)
	}
}

// buildConsistencyProof is the shared algorithm used by both handler paths
// (§4.D "Consistency proof construction"). The seqNoStart == 0 case wraps
// the tree's current root as a non-empty placeholder proof element, and
// reports that same root as the old root — a deliberate wire compatibility
// wart kept as-is; the empty-tree hash and an empty proof list are not used.
func (c *Core) buildConsistencyProof(ledgerID wire.LedgerID, view ledger.View, seqNoStart, seqNoEnd uint64) (wire.ConsistencyProof, error) {
	tree := view.Tree()

	var oldRoot [32]byte
	var proofHashes [][32]byte
	var err error

	if seqNoStart == 0 {
		oldRoot, err = tree.RootHashOfPrefix(0)
		if err != nil {
			return wire.ConsistencyProof{}, err
		}
		proofHashes = [][32]byte{oldRoot}
	} else {
		oldRoot, err = tree.RootHashOfPrefix(seqNoStart)
		if err != nil {
			return wire.ConsistencyProof{}, err
		}
		proofHashes, err = tree.ConsistencyProof(seqNoStart, seqNoEnd)
		if err != nil {
			return wire.ConsistencyProof{}, err
		}
	}

	newRoot, err := tree.RootHashOfPrefix(seqNoEnd)
	if err != nil {
		return wire.ConsistencyProof{}, err
	}

	viewNo, ppSeqNo, ok := c.provider.ThreePhaseKeyForTxnSeqNo(ledgerID, wire.SeqNo(seqNoEnd))
	if !ok {
		viewNo, ppSeqNo = 0, 0
	}

	return wire.ConsistencyProof{
		LedgerID:      ledgerID,
		SeqNoStart:    seqNoStart,
		SeqNoEnd:      seqNoEnd,
		ViewNo:        viewNo,
		PpSeqNo:       ppSeqNo,
		OldMerkleRoot: wire.Hash(oldRoot),
		NewMerkleRoot: wire.Hash(newRoot),
		Hashes:        wire.HexHashes(proofHashes),
		SealedRoot:    c.sealRoot(ledgerID, seqNoEnd, newRoot),
	}, nil
}

// sealRoot asks component F to attest the new root under this node's
// signing key. Sealing is best-effort: a failure here never blocks the
// unsealed response, which remains fully RFC 6962 verifiable on its own.
func (c *Core) sealRoot(ledgerID wire.LedgerID, seqNo uint64, root [32]byte) []byte {
	sealed, err := c.opts.signer.Sign(ledgerID, wire.SeqNo(seqNo), wire.Hash(root))
	if err != nil {
		c.log.Warnw("seal root failed", "ledgerId", ledgerID, "seqNo", seqNo, "err", err)
		return nil
	}
	return sealed
}

func (c *Core) logProofFault(reqID, sender string, ledgerID wire.LedgerID, err error) {
	c.log.Warnw("proof construction fault", "requestId", reqID, "sender", sender, "ledgerId", ledgerID, "err", err)
}

func (c *Core) logDrop(reqID, sender, kind string, err error, repeated bool) {
	c.log.Warnw("dropping invalid message",
		"requestId", reqID, "sender", sender, "kind", kind, "err", err, "repeatedRequest", repeated)
}
