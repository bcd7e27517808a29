package catchup

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-merklelog-seeder/ledger"
	"github.com/datatrails/go-merklelog-seeder/wire"
)

func buildView(t *testing.T, n int) *ledger.MemView {
	t.Helper()
	v := ledger.NewMemView()
	for i := 0; i < n; i++ {
		v.Append([]byte(fmt.Sprintf(`{"i":%d}`, i)), nil)
	}
	return v
}

func TestSplitterRefusesBatchesSmallerThanTwo(t *testing.T) {
	view := buildView(t, 10)
	splitter := NewSplitter(view.Tree())

	rep := wire.CatchupRep{
		LedgerID: 1,
		Txns:     wire.NewSortedTxns(map[uint64]wire.Txn{4: {Payload: []byte(`{}`)}}),
	}

	left, right, err := splitter(rep, 10)
	require.NoError(t, err)
	require.Nil(t, left)
	require.Nil(t, right)
}

func TestSplitterConcatenationReproducesOriginalBatch(t *testing.T) {
	view := buildView(t, 10)
	splitter := NewSplitter(view.Tree())

	txns := make(map[uint64]wire.Txn, 5)
	for seqNo := uint64(1); seqNo <= 5; seqNo++ {
		txns[seqNo] = wire.Txn{Payload: []byte(fmt.Sprintf(`{"seq":%d}`, seqNo))}
	}
	rep := wire.CatchupRep{LedgerID: 1, Txns: wire.NewSortedTxns(txns)}

	left, right, err := splitter(rep, 10)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, left.Txns.SeqNos())
	require.Equal(t, []uint64{3, 4, 5}, right.Txns.SeqNos())

	var rebuilt []uint64
	rebuilt = append(rebuilt, left.Txns.SeqNos()...)
	rebuilt = append(rebuilt, right.Txns.SeqNos()...)
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, rebuilt)

	tree := view.Tree()
	leftProof, err := tree.ConsistencyProof(2, 10)
	require.NoError(t, err)
	require.Equal(t, wire.HexHashes(leftProof), left.ConsProof)

	rightProof, err := tree.ConsistencyProof(5, 10)
	require.NoError(t, err)
	require.Equal(t, wire.HexHashes(rightProof), right.ConsProof)
}

func TestSplitterPreservesLedgerID(t *testing.T) {
	view := buildView(t, 4)
	splitter := NewSplitter(view.Tree())

	txns := map[uint64]wire.Txn{1: {}, 2: {}}
	rep := wire.CatchupRep{LedgerID: 7, Txns: wire.NewSortedTxns(txns)}

	left, right, err := splitter(rep, 4)
	require.NoError(t, err)
	require.EqualValues(t, 7, left.LedgerID)
	require.EqualValues(t, 7, right.LedgerID)
}
