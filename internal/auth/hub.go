package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session 是服务端保存的后台登录会话
type Session struct {
	Token     string    `json:"-"`
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type listener struct {
	id int
	fn func(*Session, error)
}

// Hub keeps server-side sessions and notifies subscribers when one ends.
type Hub struct {
	ttl time.Duration
	now func() time.Time
	log *zap.Logger

	mu        sync.Mutex
	sessions  map[string]*Session
	listeners map[string][]listener
	nextID    int
	onEnd     []func(token string)
}

// NewHub returns a Hub whose sessions live for ttl.
func NewHub(ttl time.Duration, log *zap.Logger) *Hub {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		ttl:       ttl,
		now:       time.Now,
		log:       log,
		sessions:  make(map[string]*Session),
		listeners: make(map[string][]listener),
	}
}

// OnSessionEnd registers fn to run after a session is signed out or expires.
func (h *Hub) OnSessionEnd(fn func(token string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onEnd = append(h.onEnd, fn)
}

// SignIn creates a session for the user.
func (h *Hub) SignIn(userID uint, username string) *Session {
	now := h.now()
	session := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(h.ttl),
	}

	h.mu.Lock()
	h.sessions[session.Token] = session
	h.mu.Unlock()

	h.log.Info("admin signed in", zap.String("username", username))
	copied := *session
	return &copied
}

// Lookup returns the live session for token.
func (h *Hub) Lookup(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	h.mu.Lock()
	session, ok := h.sessions[token]
	expired := ok && !h.now().Before(session.ExpiresAt)
	h.mu.Unlock()

	if !ok {
		return nil, false
	}
	if expired {
		h.end(token, "expired")
		return nil, false
	}
	copied := *session
	return &copied, true
}

// SignOut ends the session. Unknown tokens are ignored.
func (h *Hub) SignOut(token string) {
	h.end(token, "signed out")
}

// Sweep ends every session that has expired and returns how many were removed.
func (h *Hub) Sweep() int {
	now := h.now()
	h.mu.Lock()
	expired := make([]string, 0)
	for token, session := range h.sessions {
		if !now.Before(session.ExpiresAt) {
			expired = append(expired, token)
		}
	}
	h.mu.Unlock()

	for _, token := range expired {
		h.end(token, "expired")
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx is done.
func (h *Hub) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.Sweep(); n > 0 {
				h.log.Debug("expired admin sessions", zap.Int("count", n))
			}
		}
	}
}

// Source returns the auth-state source bound to a session token.
func (h *Hub) Source(token string) Source {
	return &tokenSource{hub: h, token: token}
}

func (h *Hub) end(token string, reason string) {
	h.mu.Lock()
	session, ok := h.sessions[token]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, token)
	subscribers := h.listeners[token]
	delete(h.listeners, token)
	hooks := append([]func(string){}, h.onEnd...)
	h.mu.Unlock()

	h.log.Info("admin session ended", zap.String("username", session.Username), zap.String("reason", reason))
	for _, l := range subscribers {
		l.fn(nil, nil)
	}
	for _, hook := range hooks {
		hook(token)
	}
}

func (h *Hub) subscribe(token string, fn func(*Session, error)) func() {
	h.mu.Lock()
	session, ok := h.sessions[token]
	live := ok && h.now().Before(session.ExpiresAt)
	var id int
	var snapshot Session
	if live {
		h.nextID++
		id = h.nextID
		h.listeners[token] = append(h.listeners[token], listener{id: id, fn: fn})
		snapshot = *session
	}
	h.mu.Unlock()

	if !live {
		if ok {
			h.end(token, "expired")
		}
		fn(nil, nil)
		return func() {}
	}
	session = &snapshot
	fn(session, nil)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			current := h.listeners[token]
			for i, l := range current {
				if l.id == id {
					h.listeners[token] = append(current[:i:i], current[i+1:]...)
					break
				}
			}
			if len(h.listeners[token]) == 0 {
				delete(h.listeners, token)
			}
		})
	}
}

// ListenerCount reports the live subscriptions of a session.
func (h *Hub) ListenerCount(token string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[token])
}

type tokenSource struct {
	hub   *Hub
	token string
}

func (s *tokenSource) OnAuthStateChanged(fn func(*Session, error)) func() {
	return s.hub.subscribe(s.token, fn)
}

func (s *tokenSource) SignOut() {
	s.hub.SignOut(s.token)
}
