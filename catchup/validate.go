package catchup

import (
	"fmt"

	"github.com/datatrails/go-merklelog-seeder/ledger"
	"github.com/datatrails/go-merklelog-seeder/wire"
)

// predicate is one named rejection rule. Rules run in order so the first
// failure names exactly the one that fired, rather than folding everything
// into a single boolean expression that loses which check tripped.
type predicate struct {
	name  string
	check func() error
}

func runPredicates(preds []predicate) error {
	for _, p := range preds {
		if err := p.check(); err != nil {
			return &ValidationError{Rule: p.name, Detail: err.Error()}
		}
	}
	return nil
}

// validateLedgerStatus applies the two LedgerStatus rules: the ledger must
// be registered, and txnSeqNo must be non-negative.
func validateLedgerStatus(ledgers map[wire.LedgerID]ledger.View, status wire.LedgerStatus) error {
	return runPredicates([]predicate{
		{"ledgerId registered", func() error {
			if _, ok := ledgers[status.LedgerID]; !ok {
				return fmt.Errorf("%w: %d", ErrUnknownLedger, status.LedgerID)
			}
			return nil
		}},
		{"txnSeqNo non-negative", func() error {
			if status.TxnSeqNo < 0 {
				return fmt.Errorf("txnSeqNo %d is negative", status.TxnSeqNo)
			}
			return nil
		}},
	})
}

// validateCatchupReq applies the four CatchupReq rules in the order given
// in the component design: registration, then the three range ordering
// constraints against the ledger's current size.
func validateCatchupReq(ledgers map[wire.LedgerID]ledger.View, req wire.CatchupReq) error {
	view, ok := ledgers[req.LedgerID]
	if !ok {
		return &ValidationError{
			Rule:   "ledgerId registered",
			Detail: fmt.Errorf("%w: %d", ErrUnknownLedger, req.LedgerID).Error(),
		}
	}

	return runPredicates([]predicate{
		{"seqNoStart <= seqNoEnd", func() error {
			if req.SeqNoStart > req.SeqNoEnd {
				return fmt.Errorf("seqNoStart %d > seqNoEnd %d", req.SeqNoStart, req.SeqNoEnd)
			}
			return nil
		}},
		{"seqNoEnd <= catchupTill", func() error {
			if req.SeqNoEnd > req.CatchupTill {
				return fmt.Errorf("seqNoEnd %d > catchupTill %d", req.SeqNoEnd, req.CatchupTill)
			}
			return nil
		}},
		{"catchupTill <= ledger size", func() error {
			if size := view.Size(); req.CatchupTill > size {
				return fmt.Errorf("catchupTill %d > ledger size %d", req.CatchupTill, size)
			}
			return nil
		}},
	})
}
