package catchup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datatrails/go-merklelog-seeder/wire"
)

func TestRunDispatchesUntilChannelClosed(t *testing.T) {
	core, provider, _ := newTestCore(t, true)

	in := make(chan Envelope, 2)
	in <- Envelope{Sender: "peer-a", Message: wire.LedgerStatus{LedgerID: 1, TxnSeqNo: 10}}
	close(in)

	err := core.Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)
}

func TestRunStopsOnContextCancellation(t *testing.T) {
	core, _, _ := newTestCore(t, true)

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan Envelope)
	cancel()

	done := make(chan error, 1)
	go func() { done <- core.Run(ctx, in) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestDispatchIgnoresUnrecognizedMessageKind(t *testing.T) {
	core, provider, _ := newTestCore(t, true)

	core.dispatch(Envelope{Sender: "peer-a", Message: "not a real message"})

	require.Empty(t, provider.sent)
}
