// Package search runs one seed search as a fixed pipeline over a pluggable
// accelerator backend: encode the key, acquire a session, allocate buffers,
// dispatch, read back and decode.
package search

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Observer is notified of every pipeline transition.
type Observer func(from, to State)

// Searcher runs the encode, acquire, allocate, dispatch, extract and decode
// pipeline. It is safe for concurrent use; every call gets its own buffers.
type Searcher struct {
	backend  Backend
	cache    *SessionCache
	limiter  *Limiter
	logger   *Logger
	observer Observer
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger. nil keeps the default, which follows slog.Default.
func WithLogger(l *Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionCache reuses one accelerator session across calls instead of
// acquiring a device per call.
func WithSessionCache() Option {
	return func(s *Searcher) {
		s.cache = NewSessionCache(s.backend)
	}
}

// WithLimiter bounds concurrency and start rate.
func WithLimiter(l *Limiter) Option {
	return func(s *Searcher) {
		s.limiter = l
	}
}

// WithObserver installs a transition hook.
func WithObserver(o Observer) Option {
	return func(s *Searcher) {
		s.observer = o
	}
}

// NewSearcher returns a Searcher over b.
func NewSearcher(b Backend, opts ...Option) *Searcher {
	s := &Searcher{
		backend: b,
		logger:  NewLogger(slog.Default().Handler()),
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.WithBackend(b.Name())
	return s
}

// Search runs one search and returns the matches as comma-joined decimals.
// On failure the returned string is always empty.
func (s *Searcher) Search(ctx context.Context, a, b uint16) (string, error) {
	res, err := s.Run(ctx, a, b)
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

// Run is Search returning the decoded Result.
func (s *Searcher) Run(ctx context.Context, a, b uint16) (Result, error) {
	key := Encode(a, b)
	log := s.logger.WithKey(key)
	start := time.Now()

	if err := s.limiter.Acquire(ctx); err != nil {
		err = &Error{State: StateIdle, Err: err}
		log.LogSearch(ctx, Result{}, time.Since(start), err)
		return Result{}, err
	}
	defer s.limiter.Release()

	res, err := s.run(ctx, key, log)
	log.LogSearch(ctx, res, time.Since(start), err)
	return res, err
}

// Close releases the cached session, if any.
func (s *Searcher) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

type pipeline struct {
	ctx      context.Context
	state    State
	log      *Logger
	observer Observer
}

func (p *pipeline) advance(to State) {
	p.log.LogTransition(p.ctx, p.state, to)
	if p.observer != nil {
		p.observer(p.state, to)
	}
	p.state = to
}

func (p *pipeline) fail(err error) error {
	failed := &Error{State: p.state, Err: err}
	p.advance(StateFailed)
	return failed
}

func (s *Searcher) run(ctx context.Context, key uint32, log *Logger) (Result, error) {
	p := &pipeline{ctx: ctx, state: StateIdle, log: log, observer: s.observer}

	if err := ctx.Err(); err != nil {
		return Result{}, p.fail(err)
	}

	session, done, err := s.acquire(ctx, log)
	if err != nil {
		return Result{}, p.fail(err)
	}
	broken := false
	defer func() { done(broken) }()
	p.advance(StateDeviceAcquired)

	bufs, err := session.Allocate(key)
	if err != nil {
		return Result{}, p.fail(err)
	}
	defer bufs.Release()
	p.advance(StateBuffersAllocated)

	// Last point at which the call can still be abandoned cleanly.
	if err := ctx.Err(); err != nil {
		return Result{}, p.fail(err)
	}

	if err := session.Dispatch(bufs); err != nil {
		return Result{}, p.fail(err)
	}
	p.advance(StateDispatched)

	p.advance(StateAwaitingMap)
	words, err := session.Extract(ctx, bufs)
	if err != nil {
		broken = errors.Is(err, ErrMap)
		return Result{}, p.fail(err)
	}
	p.advance(StateMapped)

	res := Decode(words)
	if res.Overflow {
		log.LogOverflow(ctx, res)
	}
	p.advance(StateDecoded)
	return res, nil
}

func (s *Searcher) acquire(ctx context.Context, log *Logger) (Session, func(broken bool), error) {
	start := time.Now()
	if s.cache != nil {
		cs, err := s.cache.get(ctx)
		log.LogAcquire(ctx, true, time.Since(start), err)
		if err != nil {
			return nil, nil, err
		}
		return cs, func(broken bool) { s.cache.put(cs, broken) }, nil
	}

	sess, err := s.backend.Acquire(ctx)
	log.LogAcquire(ctx, false, time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	return sess, func(bool) { sess.Release() }, nil
}
