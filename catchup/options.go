package catchup

import (
	"go.uber.org/zap"

	"github.com/datatrails/go-merklelog-seeder/seal"
)

// options holds every construction-time knob a Core can be built with.
// Following the teacher's functional-options shape, fields are private and
// mutated only through the With* constructors below.
type options struct {
	echoWhenCaughtUp bool
	logger           *zap.SugaredLogger
	dedupeCapacity   uint64
	signer           seal.Signer
}

func defaultOptions() options {
	return options{
		logger:         zap.NewNop().Sugar(),
		dedupeCapacity: 1024,
		signer:         seal.Noop(),
	}
}

// Option configures a Core at construction time.
type Option func(*options)

// WithEchoWhenCaughtUp selects the client-facing seeder variant: when a
// peer's LedgerStatus shows it already at or beyond our size, we echo our
// own current status back so the peer has a confirming witness toward its
// quorum detection. Omitted, the core behaves as the peer-facing variant
// and stays silent in that case.
func WithEchoWhenCaughtUp() Option {
	return func(o *options) { o.echoWhenCaughtUp = true }
}

// WithLogger supplies the structured logger every component logs through.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(o *options) { o.logger = log }
}

// WithSeenRequestFilter sizes the request dedupe filter's expected working
// set (component G). Its only effect is how often a repeated request is
// annotated in the log; it never changes dispatch behavior.
func WithSeenRequestFilter(expectedCapacity uint64) Option {
	return func(o *options) { o.dedupeCapacity = expectedCapacity }
}

// WithRootSeal attaches component F: every outbound ConsistencyProof's new
// root is additionally sealed with signer and carried as a trailer. Sealing
// failures are logged and never block the unsealed response.
func WithRootSeal(signer seal.Signer) Option {
	return func(o *options) { o.signer = signer }
}
