package actor

import (
	"context"
	"time"
)

// Query is a one-shot request/reply envelope: the requester sends a
// Query[Q,A] as an ordinary message, and the responder answers by writing
// to Reply exactly once. Grounded on odin_actor's Query<Req,Resp>/query_ref!
// pattern in odin_actor/examples/requests.rs.
type Query[Q any, A any] struct {
	Request Q
	Reply   chan A
}

// NewQuery builds a Query with a single-slot buffered reply channel so
// Respond never blocks on a requester that has already given up waiting.
func NewQuery[Q any, A any](request Q) Query[Q, A] {
	return Query[Q, A]{Request: request, Reply: make(chan A, 1)}
}

// Respond answers the query. Only the first call has any effect on a
// requester still waiting; a second call still succeeds (the channel is
// buffered 1 and nobody reads twice) but is a caller bug.
func (q Query[Q, A]) Respond(answer A) {
	select {
	case q.Reply <- answer:
	default:
	}
}

// Await blocks for the answer or ctx expiry.
func (q Query[Q, A]) Await(ctx context.Context) (A, error) {
	var zero A
	select {
	case a := <-q.Reply:
		return a, nil
	case <-ctx.Done():
		return zero, ErrTimedOut
	}
}

// SendQuery builds a Query from request, delivers it to recv, and awaits
// the answer within d — the single-call convenience the source gets from
// its query_ref! macro.
func SendQuery[Q any, A any](ctx context.Context, recv MsgReceiver[Query[Q, A]], request Q, d time.Duration) (A, error) {
	var zero A
	q := NewQuery[Q, A](request)
	if err := recv.TimeoutSendMsg(ctx, q, d); err != nil {
		return zero, err
	}
	qctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return q.Await(qctx)
}
