// Package auth tracks which user the diary is acting for.
package auth

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrInvalidUser is returned when a user id cannot be used as a path segment.
var ErrInvalidUser = errors.New("auth: invalid user id")

// Provider reports the signed-in user and announces changes.
type Provider interface {
	// CurrentUserID returns the signed-in user, or "" when signed out.
	CurrentUserID() string
	// OnAuthChange calls fn with the current user right away and again on
	// every sign-in or sign-out. The returned function stops notifications.
	OnAuthChange(fn func(uid string)) func()
}

// Local is a Provider whose state is set by the caller, e.g. from
// configuration.
type Local struct {
	mu        sync.Mutex
	uid       string
	next      int
	listeners map[int]func(string)
}

var _ Provider = (*Local)(nil)

// NewLocal returns a provider signed in as uid, or signed out when uid is
// empty.
func NewLocal(uid string) (*Local, error) {
	l := &Local{listeners: map[int]func(string){}}
	if uid != "" {
		if err := ValidateUserID(uid); err != nil {
			return nil, err
		}
		l.uid = uid
	}
	return l, nil
}

// ValidateUserID checks that uid can key a user's data.
func ValidateUserID(uid string) error {
	if strings.TrimSpace(uid) == "" || strings.Contains(uid, "/") || uid != strings.TrimSpace(uid) {
		return ErrInvalidUser
	}
	return nil
}

func (l *Local) CurrentUserID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.uid
}

func (l *Local) OnAuthChange(fn func(uid string)) func() {
	l.mu.Lock()
	id := l.next
	l.next++
	l.listeners[id] = fn
	uid := l.uid
	l.mu.Unlock()

	fn(uid)
	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// SignIn switches to uid and notifies listeners when the user changed.
func (l *Local) SignIn(uid string) error {
	if err := ValidateUserID(uid); err != nil {
		return err
	}
	l.set(uid)
	return nil
}

// SignOut clears the user and notifies listeners.
func (l *Local) SignOut() {
	l.set("")
}

func (l *Local) set(uid string) {
	l.mu.Lock()
	if l.uid == uid {
		l.mu.Unlock()
		return
	}
	l.uid = uid
	ids := make([]int, 0, len(l.listeners))
	for id := range l.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(string), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, l.listeners[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(uid)
	}
}
