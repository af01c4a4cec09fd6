package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/flow/pkg/auth"
	"tableflip.dev/flow/pkg/cache"
	"tableflip.dev/flow/pkg/entry"
	"tableflip.dev/flow/pkg/store"
)

// ErrNoSession is returned when no user is signed in.
var ErrNoSession = errors.New("app: no signed-in user")

// Session is the state held for one signed-in user. It exists from sign-in
// to sign-out.
type Session struct {
	UserID string
	Cache  *cache.Cache

	stopWatch func()
}

func (s *Session) close() {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	s.Cache.Close()
}

// Manager opens a Session when the auth provider reports a user and tears
// it down when the user signs out or changes.
type Manager struct {
	Store store.Adapter
	Auth  auth.Provider
	Log   *slog.Logger
	// Live keeps the session cache current with a store subscription.
	Live bool
	Now  func() time.Time

	mu       sync.Mutex
	ctx      context.Context
	session  *Session
	stopAuth func()
	onChange []func(*Session)
}

// Start follows the auth provider until ctx is done or Close is called.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	m.ctx = ctx
	m.mu.Unlock()
	stop := m.Auth.OnAuthChange(m.switchUser)
	m.mu.Lock()
	m.stopAuth = stop
	m.mu.Unlock()
}

// OnSessionChange registers fn to be called with every new session, or nil
// after sign-out.
func (m *Manager) OnSessionChange(fn func(*Session)) {
	m.mu.Lock()
	m.onChange = append(m.onChange, fn)
	m.mu.Unlock()
}

func (m *Manager) log() *slog.Logger {
	if m.Log != nil {
		return m.Log
	}
	return slog.Default()
}

func (m *Manager) switchUser(uid string) {
	m.mu.Lock()
	prev := m.session
	if prev != nil && prev.UserID == uid {
		m.mu.Unlock()
		return
	}
	m.session = nil
	var next *Session
	if uid != "" {
		next = &Session{
			UserID: uid,
			Cache:  cache.New(m.Store, uid, cache.WithLogger(m.log())),
		}
		if m.Live && m.ctx != nil {
			stop, err := next.Cache.Watch(m.ctx, entry.All())
			if err != nil {
				m.log().Warn("session: live updates unavailable", "user", uid, "error", err)
			} else {
				next.stopWatch = stop
			}
		}
		m.session = next
	}
	listeners := append(([]func(*Session))(nil), m.onChange...)
	m.mu.Unlock()

	if prev != nil {
		prev.close()
		m.log().Debug("session closed", "user", prev.UserID)
	}
	if next != nil {
		m.log().Debug("session opened", "user", uid)
	}
	for _, fn := range listeners {
		fn(next)
	}
}

// Session returns the current session.
func (m *Manager) Session() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, ErrNoSession
	}
	return m.session, nil
}

// Service returns a Service bound to the current session.
func (m *Manager) Service() (*Service, error) {
	sess, err := m.Session()
	if err != nil {
		return nil, err
	}
	return &Service{
		Store:  m.Store,
		Cache:  sess.Cache,
		UserID: sess.UserID,
		Now:    m.Now,
		Log:    m.Log,
	}, nil
}

// Close stops following auth changes and tears down the session.
func (m *Manager) Close() {
	m.mu.Lock()
	stop := m.stopAuth
	m.stopAuth = nil
	sess := m.session
	m.session = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
	if sess != nil {
		sess.close()
	}
}
