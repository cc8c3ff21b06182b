package fetch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stockkrub-a11y/Lontuktak-new/internal/models"
)

// DefaultEmptyMessage is shown when neither the API nor the view supplies one
const DefaultEmptyMessage = "No data available"

// Recorder receives the connectivity outcome of every applied fetch.
// connectivity.Tracker implements it.
type Recorder interface {
	Record(err error)
}

// Options configures a Query
type Options struct {
	// Tracker is told about every non-stale outcome. Optional.
	Tracker Recorder
	// Timeout bounds each run independently of the caller's context
	Timeout time.Duration
	// EmptyMessage replaces DefaultEmptyMessage for this query
	EmptyMessage string
	// Notify is called after every state change. Optional.
	Notify func(Change)
	Logger *slog.Logger
}

// Query owns the Result of one logical query. Every Run takes a new
// sequence token and cancels the run it supersedes; outcomes carrying a
// stale token are dropped, so the last request issued always wins.
type Query[T models.Payload] struct {
	name         string
	tracker      Recorder
	timeout      time.Duration
	emptyMessage string
	notify       func(Change)
	logger       *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	result Result[T]
}

// NewQuery creates an idle query
func NewQuery[T models.Payload](name string, opts Options) *Query[T] {
	emptyMessage := opts.EmptyMessage
	if emptyMessage == "" {
		emptyMessage = DefaultEmptyMessage
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Query[T]{
		name:         name,
		tracker:      opts.Tracker,
		timeout:      opts.Timeout,
		emptyMessage: emptyMessage,
		notify:       opts.Notify,
		logger:       logger,
		result:       Result[T]{Status: StatusIdle, UpdatedAt: time.Now()},
	}
}

// Result returns a copy of the current result
func (q *Query[T]) Result() Result[T] {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.result
}

// Run moves the query to loading, calls fn and applies its outcome if no
// newer Run or Reset happened meanwhile. fn runs on a context that is not
// canceled with ctx, so a client disconnect does not abort a fetch whose
// result other viewers will read. Run returns the result current when it
// finishes, which is the newer one if this run was superseded.
func (q *Query[T]) Run(ctx context.Context, fn func(context.Context) (T, error)) Result[T] {
	return q.RunKeyed(ctx, "", fn)
}

// RunKeyed is Run with the input the result belongs to recorded as its Key
func (q *Query[T]) RunKeyed(ctx context.Context, key string, fn func(context.Context) (T, error)) Result[T] {
	return q.RunKeyedWhile(ctx, key, nil, fn)
}

// RunKeyedWhile is RunKeyed that only starts if valid still reports true
// with the query locked. A caller that makes valid false before calling
// Reset either prevents the run or has it superseded by the Reset.
func (q *Query[T]) RunKeyedWhile(ctx context.Context, key string, valid func() bool, fn func(context.Context) (T, error)) Result[T] {
	runCtx, seq, ok := q.begin(ctx, key, valid)
	if !ok {
		return q.Result()
	}
	defer q.finish(seq)

	value, err := fn(runCtx)
	return q.apply(seq, key, value, err)
}

// Reset cancels any in-flight run and returns the query to idle
func (q *Query[T]) Reset() {
	q.mu.Lock()
	q.seq++
	if q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
	q.result = Result[T]{Status: StatusIdle, Seq: q.seq, UpdatedAt: time.Now()}
	change := q.changeLocked()
	q.mu.Unlock()

	q.publish(change)
}

func (q *Query[T]) begin(ctx context.Context, key string, valid func() bool) (context.Context, uint64, bool) {
	base := context.WithoutCancel(ctx)
	var runCtx context.Context
	var cancel context.CancelFunc
	if q.timeout > 0 {
		runCtx, cancel = context.WithTimeout(base, q.timeout)
	} else {
		runCtx, cancel = context.WithCancel(base)
	}

	q.mu.Lock()
	if valid != nil && !valid() {
		q.mu.Unlock()
		cancel()
		return nil, 0, false
	}
	q.seq++
	seq := q.seq
	if q.cancel != nil {
		q.cancel()
	}
	q.cancel = cancel
	q.result = Result[T]{Status: StatusLoading, Key: key, Seq: seq, UpdatedAt: time.Now()}
	change := q.changeLocked()
	q.mu.Unlock()

	q.publish(change)
	return runCtx, seq, true
}

// finish releases the run's context if it is still the current one
func (q *Query[T]) finish(seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if seq == q.seq && q.cancel != nil {
		q.cancel()
		q.cancel = nil
	}
}

func (q *Query[T]) apply(seq uint64, key string, value T, err error) Result[T] {
	q.mu.Lock()
	if seq != q.seq {
		current := q.result
		q.mu.Unlock()
		q.logger.Debug("Discarding stale fetch result", "query", q.name, "seq", seq, "current", current.Seq)
		return current
	}

	next := Result[T]{Key: key, Seq: seq, UpdatedAt: time.Now()}
	switch {
	case err != nil:
		next.Status = StatusError
		next.Message = err.Error()
	case !value.OK() || value.Rows() == 0:
		next.Status = StatusEmpty
		next.Message = value.ServerMessage()
		if next.Message == "" {
			next.Message = q.emptyMessage
		}
	default:
		next.Status = StatusSuccess
		next.Data = value
		next.Message = value.ServerMessage()
	}
	q.result = next
	change := q.changeLocked()
	q.mu.Unlock()

	if err != nil {
		q.logger.Warn("Fetch failed", "query", q.name, "seq", seq, "error", err)
	}
	if q.tracker != nil {
		q.tracker.Record(err)
	}
	q.publish(change)
	return next
}

func (q *Query[T]) changeLocked() Change {
	return Change{Query: q.name, Status: q.result.Status, Seq: q.result.Seq, Message: q.result.Message}
}

func (q *Query[T]) publish(change Change) {
	if q.notify != nil {
		q.notify(change)
	}
}
