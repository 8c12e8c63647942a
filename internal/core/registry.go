package core

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Sender is the transport-side handle for one live connection.
// Implementations must tolerate being called after the connection died;
// they report the failure through the returned error.
type Sender interface {
	Send(ctx context.Context, payload []byte) error
}

// Session binds an identity to exactly one live sender.
// Sends on a session are serialized, so deliveries to a single recipient
// keep their call order.
type Session struct {
	identity string
	sender   Sender
	mu       sync.Mutex
}

// Identity returns the user identity this session belongs to.
func (s *Session) Identity() string {
	return s.identity
}

func (s *Session) send(ctx context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sender.Send(ctx, payload)
}

// Registry holds all live sessions, at most one per identity.
// It is the single shared structure touched by every connection read loop
// and every enrichment task; all operations are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *zerolog.Logger
}

// NewRegistry constructs an empty session registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		log:      logger,
	}
}

// Connect registers a session for identity, replacing any previous one
// (last-writer-wins). The replaced connection's own teardown is a no-op
// thanks to DisconnectSession's pointer check.
func (r *Registry) Connect(identity string, sender Sender) *Session {
	sess := &Session{identity: identity, sender: sender}

	r.mu.Lock()
	_, replaced := r.sessions[identity]
	r.sessions[identity] = sess
	total := len(r.sessions)
	r.mu.Unlock()

	r.log.Info().
		Str("user", identity).
		Bool("replaced", replaced).
		Int("total", total).
		Msg("session connected")
	return sess
}

// Disconnect removes the session for identity if present. Idempotent.
func (r *Registry) Disconnect(identity string) {
	r.mu.Lock()
	_, ok := r.sessions[identity]
	if ok {
		delete(r.sessions, identity)
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.log.Info().Str("user", identity).Int("total", total).Msg("session disconnected")
	}
}

// DisconnectSession removes sess only if it is still the registered session
// for its identity, so a stale connection cannot evict its replacement.
// Idempotent.
func (r *Registry) DisconnectSession(sess *Session) {
	r.mu.Lock()
	current, ok := r.sessions[sess.identity]
	if ok && current == sess {
		delete(r.sessions, sess.identity)
	} else {
		ok = false
	}
	total := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.log.Info().Str("user", sess.identity).Int("total", total).Msg("session disconnected")
	}
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Broadcast serializes event once and delivers it to every session.
// A recipient whose send fails is disconnected; delivery to the remaining
// recipients continues. There is no ordering guarantee across recipients.
func (r *Registry) Broadcast(ctx context.Context, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Error().Err(err).Msg("marshal broadcast event")
		return
	}

	r.mu.RLock()
	targets := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		targets = append(targets, sess)
	}
	r.mu.RUnlock()

	for _, sess := range targets {
		if err := sess.send(ctx, payload); err != nil {
			r.log.Warn().Err(err).Str("user", sess.identity).Msg("broadcast send failed, dropping session")
			r.DisconnectSession(sess)
		}
	}
}

// Unicast delivers event to one identity if present; on send failure the
// recipient is disconnected. No-op when the identity has no session.
func (r *Registry) Unicast(ctx context.Context, identity string, event any) {
	r.mu.RLock()
	sess, ok := r.sessions[identity]
	r.mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Error().Err(err).Msg("marshal unicast event")
		return
	}

	if err := sess.send(ctx, payload); err != nil {
		r.log.Warn().Err(err).Str("user", identity).Msg("unicast send failed, dropping session")
		r.DisconnectSession(sess)
	}
}
