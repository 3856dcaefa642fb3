package store

import "go.uber.org/zap"

// Observer sees every dispatch after the state is replaced and before
// subscribers are notified. The journal and metrics hook in here.
type Observer[R any] interface {
	Observe(a Action, prev, next R)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc[R any] func(a Action, prev, next R)

func (f ObserverFunc[R]) Observe(a Action, prev, next R) { f(a, prev, next) }

// Option configures a Store.
type Option[R any] func(*Store[R])

// WithLogger logs each dispatch at debug level.
func WithLogger[R any](log *zap.Logger) Option[R] {
	return func(s *Store[R]) {
		if log != nil {
			s.log = log
		}
	}
}

// WithObserver adds an observer. Observers run in the order added.
func WithObserver[R any](o Observer[R]) Option[R] {
	return func(s *Store[R]) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithHandles lets the store tell routed actions from ignored ones in its
// log output. Root.Handles is the usual argument.
func WithHandles[R any](fn func(Action) bool) Option[R] {
	return func(s *Store[R]) { s.handles = fn }
}

type listener[R any] struct {
	fn     func(R)
	active bool
}

// Store holds the current global state. It is not safe for concurrent use:
// all calls are expected from one goroutine, such as a bubbletea Update loop.
type Store[R any] struct {
	reduce    Reducer[R]
	state     R
	listeners []*listener[R]
	observers []Observer[R]
	handles   func(Action) bool
	reducing  bool
	log       *zap.Logger
}

// New returns a store holding initial.
func New[R any](reduce Reducer[R], initial R, opts ...Option[R]) *Store[R] {
	s := &Store[R]{
		reduce: reduce,
		state:  initial,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Store[R]) State() R {
	return s.state
}

// Dispatch reduces a into the next state and notifies subscribers.
// Calling Dispatch from inside a reducer panics.
func (s *Store[R]) Dispatch(a Action) {
	if s.reducing {
		panic("store: reducers may not dispatch actions (" + a.Kind() + ")")
	}

	prev := s.state
	s.reducing = true
	func() {
		defer func() { s.reducing = false }()
		s.state = s.reduce(prev, a)
	}()

	if ce := s.log.Check(zap.DebugLevel, "dispatch"); ce != nil {
		fields := []zap.Field{zap.String("action", a.Kind())}
		if a.Payload != nil {
			fields = append(fields, zap.Any("payload", a.Payload))
		}
		if s.handles != nil {
			fields = append(fields, zap.Bool("handled", s.handles(a)))
		}
		ce.Write(fields...)
	}

	for _, o := range s.observers {
		o.Observe(a, prev, s.state)
	}

	// Subscribe and unsubscribe during notification take effect on the next
	// dispatch, except that an unsubscribed listener is never called again.
	snapshot := make([]*listener[R], len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		if l.active {
			l.fn(s.state)
		}
	}
}

// Subscribe registers fn to run after every dispatch. The returned function
// removes it and may be called any number of times.
func (s *Store[R]) Subscribe(fn func(R)) (unsubscribe func()) {
	l := &listener[R]{fn: fn, active: true}
	s.listeners = append(s.listeners, l)
	return func() {
		if !l.active {
			return
		}
		l.active = false
		for i, other := range s.listeners {
			if other == l {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				break
			}
		}
	}
}

// Subscribers returns the number of registered listeners.
func (s *Store[R]) Subscribers() int {
	return len(s.listeners)
}
