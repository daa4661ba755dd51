package actor

import (
	"context"
	"sync"
)

// RequestProcessor serializes long-running work of one kind through a single
// background consumer: at most one Fetch call is ever in flight for this
// RequestProcessor, and any request judged equivalent (via SameRequest) to
// the one currently at the head of the queue is coalesced onto it instead of
// triggering a second, redundant fetch. Grounded on
// odin_actor/examples/requests.rs's sequential RequestProcessor (the
// FileFetcher example): "process long running, overlapping requests
// sequentially in a background task."
type RequestProcessor[Req any, Resp any] struct {
	// Fetch performs the actual, potentially slow, work for one request. It
	// always runs with a background context, not the context of whichever
	// caller happened to trigger it, since its result is shared by every
	// caller that coalesces onto it.
	Fetch func(ctx context.Context, req Req) (Resp, error)
	// SameRequest reports whether two requests should be treated as
	// equivalent and share one Fetch call.
	SameRequest func(a, b Req) bool

	startOnce sync.Once
	notify    chan struct{}

	mu         sync.Mutex
	queue      []*pendingRequest[Req, Resp]
	processing bool
}

type pendingRequest[Req any, Resp any] struct {
	req  Req
	done chan struct{}
	resp Resp
	err  error
}

func (p *RequestProcessor[Req, Resp]) start() {
	p.startOnce.Do(func() {
		p.notify = make(chan struct{}, 1)
		go p.consume()
	})
}

// Process enqueues req, coalescing with any equivalent request already
// queued, and blocks until a response is available or ctx ends. Multiple
// callers may block on the same underlying Fetch call concurrently, but the
// processor never runs two Fetch calls at once.
func (p *RequestProcessor[Req, Resp]) Process(ctx context.Context, req Req) (Resp, error) {
	p.start()

	p.mu.Lock()
	for _, pr := range p.queue {
		if p.SameRequest(pr.req, req) {
			p.mu.Unlock()
			return p.await(ctx, pr)
		}
	}
	pr := &pendingRequest[Req, Resp]{req: req, done: make(chan struct{})}
	p.queue = append(p.queue, pr)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}

	return p.await(ctx, pr)
}

// consume is the single sequential worker loop: it takes the request at the
// head of the queue, drains the rest of the queue for any requests judged
// equivalent to it (leaving non-matching ones queued for a later pass),
// runs Fetch exactly once for the whole batch, fans the result out to every
// coalesced waiter, and only then loops back for the next request.
func (p *RequestProcessor[Req, Resp]) consume() {
	for {
		p.mu.Lock()
		for len(p.queue) == 0 {
			p.mu.Unlock()
			<-p.notify
			p.mu.Lock()
		}

		head := p.queue[0]
		batch := []*pendingRequest[Req, Resp]{head}
		rest := make([]*pendingRequest[Req, Resp], 0, len(p.queue)-1)
		for _, pr := range p.queue[1:] {
			if p.SameRequest(head.req, pr.req) {
				batch = append(batch, pr)
			} else {
				rest = append(rest, pr)
			}
		}
		p.queue = rest
		p.processing = true
		p.mu.Unlock()

		resp, err := p.Fetch(context.Background(), head.req)

		for _, pr := range batch {
			pr.resp, pr.err = resp, err
			close(pr.done)
		}

		p.mu.Lock()
		p.processing = false
		p.mu.Unlock()
	}
}

func (p *RequestProcessor[Req, Resp]) await(ctx context.Context, pr *pendingRequest[Req, Resp]) (Resp, error) {
	var zero Resp
	select {
	case <-pr.done:
		return pr.resp, pr.err
	case <-ctx.Done():
		return zero, ErrTimedOut
	}
}

// Pending reports the number of distinct (non-coalesced) requests currently
// queued or being serviced.
func (p *RequestProcessor[Req, Resp]) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.queue)
	if p.processing {
		n++
	}
	return n
}
