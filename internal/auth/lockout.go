// EasyView - Engineering Model Publishing and Viewpoint Backend
// Copyright 2026 Technoborsch
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/technoborsch/easyview

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Lockout throttles failed login attempts per subject (username or email).
// Each subject gets a token bucket sized to the configured attempt budget;
// failures drain it and the subject is locked while it is empty. Successful
// logins clear the subject outright.
type Lockout struct {
	mu       sync.Mutex
	entries  map[string]*lockoutEntry
	attempts int
	window   time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

type lockoutEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLockout creates a lockout allowing at most attempts failures per
// window for each subject, and starts background cleanup of idle entries.
// Callers own the lockout's lifecycle and must Close it when done.
func NewLockout(attempts int, window time.Duration) *Lockout {
	l := &Lockout{
		entries:  make(map[string]*lockoutEntry),
		attempts: attempts,
		window:   window,
		stop:     make(chan struct{}),
	}
	go l.startCleanup(window)
	return l
}

// Close stops the background cleanup goroutine. Safe to call more than
// once; the lockout itself keeps working after Close.
func (l *Lockout) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Lockout) entry(subject string) *lockoutEntry {
	e, ok := l.entries[subject]
	if !ok {
		e = &lockoutEntry{
			limiter: rate.NewLimiter(rate.Every(l.window/time.Duration(l.attempts)), l.attempts),
		}
		l.entries[subject] = e
	}
	e.lastSeen = time.Now()
	return e
}

// Allowed reports whether the subject still has attempt budget left.
func (l *Lockout) Allowed(subject string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entry(subject).limiter.Tokens() >= 1
}

// RecordFailure consumes one attempt for the subject.
func (l *Lockout) RecordFailure(subject string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry(subject).limiter.Allow()
}

// Clear drops the subject's lockout state after a successful login.
func (l *Lockout) Clear(subject string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, subject)
}

// startCleanup prunes entries idle for more than three windows.
func (l *Lockout) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-3 * l.window)
			l.mu.Lock()
			for subject, e := range l.entries {
				if e.lastSeen.Before(cutoff) {
					delete(l.entries, subject)
				}
			}
			l.mu.Unlock()
		}
	}
}
