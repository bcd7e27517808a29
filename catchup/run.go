package catchup

import (
	"context"
	"fmt"

	"github.com/datatrails/go-merklelog-seeder/wire"
)

// Envelope pairs an inbound message with the peer it arrived from. The
// transport decodes wire bytes into a wire.LedgerStatus or wire.CatchupReq
// before handing it to Run; no other message kind is recognized.
type Envelope struct {
	Sender  string
	Message any
}

// Run dispatches inbound messages one at a time until ctx is cancelled or
// in is closed, returning ctx.Err() in the former case and nil in the
// latter. This realizes the single-threaded cooperative dispatch model:
// each handler invocation runs to completion before the next receive, so
// no intra-handler ordering guarantees are needed.
func (c *Core) Run(ctx context.Context, in <-chan Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env, ok := <-in:
			if !ok {
				return nil
			}
			c.dispatch(env)
		}
	}
}

func (c *Core) dispatch(env Envelope) {
	switch msg := env.Message.(type) {
	case wire.LedgerStatus:
		c.ProcessLedgerStatus(msg, env.Sender)
	case wire.CatchupReq:
		c.ProcessCatchupReq(msg, env.Sender)
	default:
		c.log.Warnw("dropping message of unrecognized kind",
			"sender", env.Sender, "kind", fmt.Sprintf("%T", env.Message))
	}
}
