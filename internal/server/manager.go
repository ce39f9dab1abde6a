package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/danmuck/liveurl/internal/nav"
	"github.com/danmuck/liveurl/internal/session"
)

var (
	ErrSessionExists   = errors.New("server: session already exists")
	ErrSessionNotFound = errors.New("server: session not found")
)

// Instruction is one journaled host call in application order.
type Instruction struct {
	Seq     uint64    `json:"seq"`
	Kind    string    `json:"kind"`
	Target  string    `json:"target"`
	Replace bool      `json:"replace"`
	At      time.Time `json:"at"`
}

// JournalHost records every navigation instruction instead of driving a
// real client, so the demo service can expose what a session decided.
type JournalHost struct {
	mu      sync.Mutex
	seq     uint64
	journal []Instruction
}

func NewJournalHost() *JournalHost {
	return &JournalHost{}
}

func (h *JournalHost) record(kind, target string, replace bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.journal = append(h.journal, Instruction{
		Seq:     h.seq,
		Kind:    kind,
		Target:  target,
		Replace: replace,
		At:      time.Now(),
	})
	return nil
}

func (h *JournalHost) PatchLocation(target string, replace bool) error {
	return h.record("patch-location", target, replace)
}

func (h *JournalHost) NavigateToView(target string, replace bool) error {
	return h.record("navigate-to-view", target, replace)
}

func (h *JournalHost) HardRedirect(target string) error {
	return h.record("hard-redirect", target, false)
}

// Instructions returns a copy of the journal in application order.
func (h *JournalHost) Instructions() []Instruction {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Instruction, len(h.journal))
	copy(out, h.journal)
	return out
}

type managedSession struct {
	sess   *session.Session
	host   *JournalHost
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager owns the sessions the service is running. Each session gets
// its own Run goroutine; Delete stops it and waits for the loop to
// drain.
type Manager struct {
	log zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*managedSession
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log:      log,
		sessions: make(map[string]*managedSession),
	}
}

// Create starts a new session at the given URL. An empty id gets a
// generated one; a duplicate id is rejected.
func (m *Manager) Create(id string, initial nav.URL) (*session.Session, error) {
	host := NewJournalHost()
	sess, err := session.New(session.Config{
		ID:         id,
		Host:       host,
		InitialURL: initial,
		Logger:     m.log,
	})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sess.ID()]; ok {
		return nil, ErrSessionExists
	}

	ctx, cancel := context.WithCancel(context.Background())
	managed := &managedSession{
		sess:   sess,
		host:   host,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	m.sessions[sess.ID()] = managed
	go func() {
		defer close(managed.done)
		_ = sess.Run(ctx)
	}()
	return sess, nil
}

func (m *Manager) get(id string) (*managedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	managed, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return managed, nil
}

// Session returns the running session for id.
func (m *Manager) Session(id string) (*session.Session, error) {
	managed, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return managed.sess, nil
}

// Instructions returns the journaled host calls for id.
func (m *Manager) Instructions(id string) ([]Instruction, error) {
	managed, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return managed.host.Instructions(), nil
}

// List returns the ids of all running sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Delete stops the session and waits for its loop to exit.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	managed, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	managed.sess.Stop()
	managed.cancel()
	<-managed.done
	return nil
}

// Shutdown stops every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	all := make([]*managedSession, 0, len(m.sessions))
	for id, managed := range m.sessions {
		all = append(all, managed)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, managed := range all {
		managed.sess.Stop()
		managed.cancel()
		<-managed.done
	}
}
