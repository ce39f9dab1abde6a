package session

import (
	"github.com/danmuck/liveurl/internal/nav"
	"github.com/danmuck/liveurl/internal/observability"
)

// Kind tags the operation a navigation request asks for.
type Kind uint8

const (
	KindPatch Kind = iota + 1
	KindNavigate
	KindRedirect
)

func (k Kind) String() string {
	switch k {
	case KindPatch:
		return "patch"
	case KindNavigate:
		return "navigate"
	case KindRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// UpdateFunc is a deferred transform from the session's current URL to
// the target URL. It runs inside the owning session's loop, against the
// URL current at delivery time.
type UpdateFunc func(nav.URL) nav.URL

// RedirectFunc is the redirect form of UpdateFunc: it may land on an
// internal URL or leave the application with an external literal.
type RedirectFunc func(nav.URL) Redirect

// Redirect is the result of a RedirectFunc: either an internal URL or
// an external target string, built with Internal or External.
type Redirect struct {
	url        nav.URL
	external   string
	isExternal bool
}

// Internal targets a URL inside the application.
func Internal(u nav.URL) Redirect {
	return Redirect{url: u}
}

// External targets a literal URL outside the application. The string is
// shape-checked when the redirect is applied and handed to the host
// verbatim.
func External(target string) Redirect {
	return Redirect{external: target, isExternal: true}
}

// request is the navigation-request message shape. The concrete type is
// the protocol tag: the session hook recognizes it by type assertion
// and passes every other message through.
type request struct {
	kind     Kind
	replace  bool
	update   UpdateFunc
	redirect RedirectFunc
}

// locationChange refreshes the session's stored URL.
type locationChange struct {
	url nav.URL
}

// Handle is a session address. Holders can only enqueue messages; they
// never touch session state directly.
type Handle struct {
	id  string
	box *mailbox
}

func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id
}

// Send enqueues an arbitrary application message. It reports whether
// the message was enqueued; false means the session has stopped and the
// message was dropped.
func Send(h *Handle, msg any) bool {
	if h == nil || h.box == nil {
		return false
	}
	return h.box.put(msg)
}

// SendPatch asks the session to patch its location in place. The update
// function is evaluated later inside the session against the then
// current URL. The returned bool acknowledges enqueueing, not
// application.
func SendPatch(h *Handle, replace bool, update UpdateFunc) (bool, error) {
	if update == nil {
		return false, ErrNilBuildFunc
	}
	return sendRequest(h, request{kind: KindPatch, replace: replace, update: update})
}

// SendNavigate asks the session to mount a different view.
func SendNavigate(h *Handle, replace bool, update UpdateFunc) (bool, error) {
	if update == nil {
		return false, ErrNilBuildFunc
	}
	return sendRequest(h, request{kind: KindNavigate, replace: replace, update: update})
}

// SendRedirect asks the session to hard-redirect, internally or out of
// the application.
func SendRedirect(h *Handle, build RedirectFunc) (bool, error) {
	if build == nil {
		return false, ErrNilBuildFunc
	}
	return sendRequest(h, request{kind: KindRedirect, redirect: build})
}

// SendLocation delivers a location-change event from the host runtime.
// The URL should come from nav.FromHost so host-decoded params win.
func SendLocation(h *Handle, u nav.URL) (bool, error) {
	if u.Scheme() == "" {
		return false, ErrNoInitialURL
	}
	return sendRequest(h, locationChange{url: u})
}

func sendRequest(h *Handle, msg any) (bool, error) {
	if h == nil || h.box == nil {
		return false, ErrNilHandle
	}
	if !h.box.put(msg) {
		observability.RecordDroppedDispatch()
		return false, nil
	}
	return true, nil
}
