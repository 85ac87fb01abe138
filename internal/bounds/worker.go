package bounds

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jwulff/sprite-go/internal/domain"
	"github.com/jwulff/sprite-go/internal/logging"
)

// Request asks for the bounds of a row-major RGBA buffer. Submitting a
// request transfers ownership of Buffer to the worker.
type Request struct {
	ID     uuid.UUID
	Width  int
	Height int
	Buffer []byte
}

// Response carries the result for one request. A nil Rect means fully
// transparent, malformed input, or an internal fault.
type Response struct {
	ID   uuid.UUID
	Rect *domain.Rect
}

// NewRequest snapshots buf into a request with a fresh ID.
func NewRequest(buf *domain.PixelBuffer) Request {
	return Request{
		ID:     uuid.New(),
		Width:  buf.Width,
		Height: buf.Height,
		Buffer: buf.RGBA(),
	}
}

type job struct {
	req   Request
	reply chan Response
}

// Worker runs bounds detection on its own goroutine. Each submitted request
// gets exactly one response. Submit never blocks: requests queue without
// bound. There is no cancellation; callers that need to ignore stale results
// use a Tracker.
type Worker struct {
	opts   Options
	detect func(width, height int, buf []byte, opts Options) *domain.Rect

	mu     sync.Mutex
	closed bool
	queue  []job
	wake   chan struct{}
	done   chan struct{}
}

// NewWorker starts a worker.
func NewWorker(opts Options) *Worker {
	opts.ApplyDefaults()
	w := &Worker{
		opts:   opts,
		detect: DetectWithOptions,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	defer close(w.done)
	for {
		w.mu.Lock()
		batch := w.queue
		w.queue = nil
		closed := w.closed
		w.mu.Unlock()

		for _, j := range batch {
			j.reply <- w.handle(j.req)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-w.wake
	}
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) handle(req Request) (resp Response) {
	resp.ID = req.ID
	defer func() {
		if r := recover(); r != nil {
			logging.Logger().Warn("bounds detection failed", "id", req.ID, "panic", r)
			resp.Rect = nil
		}
	}()
	resp.Rect = w.detect(req.Width, req.Height, req.Buffer, w.opts)
	return resp
}

// Submit queues a request and returns the channel its single response will
// arrive on. After Close, the response is an immediate nil result.
func (w *Worker) Submit(req Request) <-chan Response {
	reply := make(chan Response, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		reply <- Response{ID: req.ID}
		return reply
	}
	w.queue = append(w.queue, job{req: req, reply: reply})
	w.mu.Unlock()

	w.signal()
	return reply
}

// Close stops accepting requests, answers everything already queued and waits
// for the worker goroutine to exit.
func (w *Worker) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.signal()
	<-w.done
}

// Tracker remembers the most recent request so late responses to earlier
// requests can be discarded.
type Tracker struct {
	mu     sync.Mutex
	latest uuid.UUID
}

// Request builds a request for buf and marks it as the current one.
func (t *Tracker) Request(buf *domain.PixelBuffer) Request {
	req := NewRequest(buf)
	t.mu.Lock()
	t.latest = req.ID
	t.mu.Unlock()
	return req
}

// Current reports whether resp answers the most recent request.
func (t *Tracker) Current(resp Response) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return resp.ID != uuid.Nil && resp.ID == t.latest
}
