package handler

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/activity-board/internal/service"
	"github.com/Shivanand-hulikatti/activity-board/internal/view"
)

// SessionCookie names the cookie that carries a browser's board session id.
const SessionCookie = "board_session"

// BoardFactory builds a board bound to v.
type BoardFactory func(v service.View) *service.Board

// Session is one browser's board and its document.
type Session struct {
	ID    string
	Board *service.Board
	Doc   *view.Document

	lastSeen time.Time
	// settled is set when a flow has just updated Doc for a redirected
	// form post, so the next page load can render it as is.
	settled atomic.Bool
}

// markSettled records that Doc reflects the latest flow.
func (s *Session) markSettled() {
	s.settled.Store(true)
}

// takeSettled reports and clears the settled mark.
func (s *Session) takeSettled() bool {
	return s.settled.Swap(false)
}

// SessionStore keeps boards in memory, keyed by session id. Sessions idle
// for longer than the TTL are evicted by Sweep.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  BoardFactory
	ttl      time.Duration
	now      func() time.Time
	observe  func(n int)
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSessionGauge reports the number of live sessions after every change.
func WithSessionGauge(fn func(n int)) SessionOption {
	return func(s *SessionStore) { s.observe = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(factory BoardFactory, ttl time.Duration, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		sessions: make(map[string]*Session),
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		observe:  func(int) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the session named by r's cookie, or a new one when the
// cookie is missing, unknown or expired. created reports the latter; the
// caller must then set the cookie with SetCookie.
func (s *SessionStore) Resolve(r *http.Request) (sess *Session, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if c, err := r.Cookie(SessionCookie); err == nil {
		if sess, ok := s.sessions[c.Value]; ok && now.Sub(sess.lastSeen) <= s.ttl {
			sess.lastSeen = now
			return sess, false
		}
	}

	doc := view.NewDocument()
	sess = &Session{
		ID:       uuid.NewString(),
		Board:    s.factory(doc),
		Doc:      doc,
		lastSeen: now,
	}
	s.sessions[sess.ID] = sess
	s.observe(len(s.sessions))
	return sess, true
}

// SetCookie writes sess's id cookie.
func (s *SessionStore) SetCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Len reports the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the TTL and returns how many
// were removed. Evicted boards are closed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	now := s.now()
	var expired []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()

	for _, sess := range expired {
		sess.Board.Close()
	}
	if len(expired) > 0 {
		s.observe(n)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Sweep()
		}
	}
}

// Close evicts every session.
func (s *SessionStore) Close() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.Board.Close()
	}
	s.observe(0)
}
