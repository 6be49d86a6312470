package browser

import (
	"context"
	"sync"
)

// Manager tracks live sessions for a runtime so they can be torn down
// together when a run ends or is interrupted.
type Manager struct {
	runtime  Runtime
	sessions map[string]Session
	mu       sync.Mutex
}

// NewManager creates a Manager backed by the provided runtime.
func NewManager(runtime Runtime) *Manager {
	return &Manager{
		runtime:  runtime,
		sessions: make(map[string]Session),
	}
}

// Open allocates a new session and starts tracking it.
func (m *Manager) Open(ctx context.Context) (Session, error) {
	if m == nil || m.runtime == nil {
		return nil, ErrUnavailable
	}
	sess, err := m.runtime.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[sess.ID()] = sess
	m.mu.Unlock()
	return sess, nil
}

// Release closes a session and stops tracking it.
func (m *Manager) Release(sess Session) error {
	if m == nil || sess == nil {
		return ErrUnavailable
	}
	m.mu.Lock()
	_, ok := m.sessions[sess.ID()]
	delete(m.sessions, sess.ID())
	m.mu.Unlock()
	if !ok {
		return ErrSessionClosed
	}
	return sess.Close()
}

// Active returns the number of tracked sessions.
func (m *Manager) Active() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close closes all sessions and releases the runtime.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	sessions := make([]Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]Session)
	m.mu.Unlock()

	var lastErr error
	for _, sess := range sessions {
		if err := sess.Close(); err != nil {
			lastErr = err
		}
	}
	if m.runtime != nil {
		if err := m.runtime.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
