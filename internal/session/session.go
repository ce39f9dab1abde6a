package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/danmuck/liveurl/internal/nav"
	"github.com/danmuck/liveurl/internal/observability"
)

var (
	ErrNilHost      = errors.New("session: host is required")
	ErrNoInitialURL = errors.New("session: initial url is required")
	ErrNilBuildFunc = errors.New("session: build function is required")
	ErrNilHandle    = errors.New("session: nil session handle")
)

// Host performs the navigation a session computes. The runtime decides
// what to do and where; the host does it.
type Host interface {
	PatchLocation(target string, replace bool) error
	NavigateToView(target string, replace bool) error
	HardRedirect(target string) error
}

// Config assembles one session.
type Config struct {
	// ID defaults to a fresh uuid.
	ID string
	// Host is required.
	Host Host
	// InitialURL is the location the session starts at. Required; later
	// location-change events and applied operations advance it.
	InitialURL nav.URL
	// Handler receives every inbound message that is not a navigation
	// request, in mailbox order. Optional.
	Handler func(*Session, any)
	Logger  zerolog.Logger
}

// Session is the single logical thread of control owning one URL. All
// URL mutation happens inside the session's own Run loop; senders hold
// a Handle and only ever enqueue.
type Session struct {
	id      string
	host    Host
	handler func(*Session, any)
	log     zerolog.Logger
	box     *mailbox

	mu  sync.RWMutex
	url nav.URL

	stopOnce sync.Once
	stopped  chan struct{}
}

func New(cfg Config) (*Session, error) {
	if cfg.Host == nil {
		return nil, ErrNilHost
	}
	if cfg.InitialURL.Scheme() == "" {
		return nil, ErrNoInitialURL
	}
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	// the zero Logger discards everything, so an unset cfg.Logger is fine
	return &Session{
		id:      id,
		host:    cfg.Host,
		handler: cfg.Handler,
		log:     cfg.Logger.With().Str("session_id", id).Logger(),
		box:     newMailbox(),
		url:     cfg.InitialURL,
		stopped: make(chan struct{}),
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

// Handle returns the session's address. Handles are safe to share
// across goroutines and remain valid (but inert) after the session
// stops.
func (s *Session) Handle() *Handle {
	return &Handle{id: s.id, box: s.box}
}

// URL returns a snapshot of the current location. Only the session's
// own loop writes it; build functions always see the value current at
// delivery time because they run inside that loop.
func (s *Session) URL() nav.URL {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

func (s *Session) setURL(u nav.URL) {
	s.mu.Lock()
	s.url = u
	s.mu.Unlock()
}

// Run drains the mailbox until the context is canceled or Stop is
// called. It must be called exactly once, and it is the only goroutine
// that may touch session state.
func (s *Session) Run(ctx context.Context) error {
	observability.SessionStarted()
	defer observability.SessionStopped()
	s.log.Debug().Str("url", s.URL().AbsoluteTarget()).Msg("session started")

	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return nil
		case <-s.stopped:
			return nil
		case <-s.box.wake:
			for _, msg := range s.box.drain() {
				s.dispatch(msg)
			}
		}
	}
}

// Stop terminates the session. Pending and later messages are dropped
// silently; senders get no non-delivery notification.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.box.close()
		close(s.stopped)
		s.log.Debug().Msg("session stopped")
	})
}

// dispatch is the hook over the shared message channel: navigation
// requests are applied and halt processing of that message; location
// changes refresh the stored URL; everything else passes through to
// the application handler unchanged.
func (s *Session) dispatch(msg any) {
	switch m := msg.(type) {
	case request:
		s.applyRequest(m)
	case locationChange:
		s.setURL(m.url)
		s.log.Debug().Str("url", m.url.AbsoluteTarget()).Msg("location changed")
	default:
		observability.RecordPassThrough()
		if s.handler != nil {
			s.handler(s, msg)
		}
	}
}

// applyRequest evaluates the carried build function against the URL
// current right now, not the URL at send time, so queued requests
// observe each other's effects in delivery order.
func (s *Session) applyRequest(req request) {
	current := s.URL()

	var op nav.Operation
	switch req.kind {
	case KindPatch:
		op = nav.PushPatch(req.update(current), req.replace)
	case KindNavigate:
		op = nav.PushNavigate(req.update(current), req.replace)
	case KindRedirect:
		target := req.redirect(current)
		if target.isExternal {
			var err error
			op, err = nav.RedirectExternal(target.external)
			if err != nil {
				observability.RecordOperationFailure("external_target")
				s.log.Error().Err(err).Msg("redirect request rejected")
				return
			}
		} else {
			op = nav.RedirectTo(target.url)
		}
	default:
		observability.RecordOperationFailure("unknown_kind")
		s.log.Error().Uint8("kind", uint8(req.kind)).Msg("navigation request with unknown kind")
		return
	}

	if err := s.ApplyOperation(op); err != nil {
		observability.RecordOperationFailure("apply")
		s.log.Error().Err(err).Msg("navigation request failed to apply")
	}
}

// ApplyOperation consumes an operation: it issues exactly one host call
// per the operation's mode/stack pair and advances the stored URL for
// internal targets. It must only be invoked from the session's own
// execution context (the Run loop, or the view code it is currently
// running); calling it elsewhere is a usage error.
func (s *Session) ApplyOperation(op nav.Operation) error {
	ins, err := op.Instruction()
	if err != nil {
		return err
	}

	switch ins.Kind {
	case nav.InstructionPatchLocation:
		err = s.host.PatchLocation(ins.Target, ins.Replace)
	case nav.InstructionNavigateToView:
		err = s.host.NavigateToView(ins.Target, ins.Replace)
	case nav.InstructionHardRedirect:
		err = s.host.HardRedirect(ins.Target)
	}
	if err != nil {
		return err
	}

	observability.RecordOperation(op.Mode().String(), op.StackOp().String())
	s.log.Debug().
		Str("instruction", ins.Kind.String()).
		Str("target", ins.Target).
		Bool("replace", ins.Replace).
		Msg("operation applied")

	if target, ok := op.TargetURL(); ok {
		s.setURL(target)
	}
	return nil
}
