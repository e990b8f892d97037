// Package session tracks authenticated client connections on the proxy
// and maps them to the world objects they control.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/porchlightgames/titandawn/internal/logger"
)

// Client is the connection a session rides on. The proxy's telnet
// client satisfies it.
type Client interface {
	ReadLine() (string, error)
	WriteLine(message string) error
	Close() error
	RemoteAddr() string
}

// Notifier carries session lifecycle events to the world daemon. The
// link's world client satisfies it.
type Notifier interface {
	NotifyFirstSessionConnectedOnObject(ctx context.Context, objectID int64) error
	TriggerAfterSessionDisconnectForObject(ctx context.Context, objectID int64) error
}

// Session is one authenticated connection controlling one object. An
// account may hold several simultaneous sessions on the same object.
type Session struct {
	id       int64
	client   Client
	username string
	objectID int64

	mu         sync.Mutex
	lastActive time.Time
}

// Client returns the underlying connection.
func (s *Session) Client() Client {
	return s.client
}

// Username returns the account name that authenticated this session.
func (s *Session) Username() string {
	return s.username
}

// ObjectID returns the id of the object this session controls.
func (s *Session) ObjectID() int64 {
	return s.objectID
}

// Touch marks the session as active now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// IdleFor reports how long the session has been idle.
func (s *Session) IdleFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActive)
}

// Manager owns all live sessions on the proxy. Registration is
// edge-triggered: only the first simultaneous session on an object
// fires the connect notification, and only the last to leave fires the
// disconnect one.
type Manager struct {
	notifier Notifier

	mu       sync.Mutex
	nextID   int64
	sessions map[int64]*Session
}

// NewManager builds an empty session manager.
func NewManager(notifier Notifier) *Manager {
	return &Manager{
		notifier: notifier,
		sessions: make(map[int64]*Session),
	}
}

// Bind registers an authenticated connection as a session controlling
// objectID. If this is the object's first live session, the world is
// notified so the object's connect hook runs.
func (m *Manager) Bind(client Client, username string, objectID int64) *Session {
	m.mu.Lock()
	first := m.countForObjectLocked(objectID) == 0
	m.nextID++
	session := &Session{
		id:         m.nextID,
		client:     client,
		username:   username,
		objectID:   objectID,
		lastActive: time.Now(),
	}
	m.sessions[session.id] = session
	m.mu.Unlock()

	if first {
		if err := m.notifier.NotifyFirstSessionConnectedOnObject(context.Background(), objectID); err != nil {
			logger.Warning("Connect notification failed", "object_id", objectID, "error", err)
		}
	}

	return session
}

// Unbind removes a session. If it was the object's last live session,
// the world is notified so the object's disconnect hook runs.
func (m *Manager) Unbind(session *Session) {
	m.mu.Lock()
	_, present := m.sessions[session.id]
	delete(m.sessions, session.id)
	last := present && m.countForObjectLocked(session.objectID) == 0
	m.mu.Unlock()

	if last {
		if err := m.notifier.TriggerAfterSessionDisconnectForObject(context.Background(), session.objectID); err != nil {
			logger.Warning("Disconnect notification failed", "object_id", session.objectID, "error", err)
		}
	}
}

// EmitToObject writes a message to every session controlling the
// object. Objects with no sessions are not an error.
func (m *Manager) EmitToObject(objectID int64, message string) {
	for _, session := range m.sessionsForObject(objectID) {
		if err := session.client.WriteLine(message); err != nil {
			logger.Debug("Emit to dead session", "object_id", objectID, "error", err)
		}
	}
}

// WhoConnected returns the usernames of all live sessions, one entry
// per session, in no particular order.
func (m *Manager) WhoConnected() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	accounts := make([]string, 0, len(m.sessions))
	for _, session := range m.sessions {
		accounts = append(accounts, session.username)
	}
	return accounts
}

// DisconnectSessionsOnObject closes the connection of every session
// controlling the object and reports how many were closed. The read
// loops unwind the sessions themselves, so disconnect hooks still fire
// through Unbind.
func (m *Manager) DisconnectSessionsOnObject(objectID int64) int {
	targets := m.sessionsForObject(objectID)
	for _, session := range targets {
		session.client.Close()
	}
	return len(targets)
}

// CloseAll closes every live connection. Used at proxy shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		all = append(all, session)
	}
	m.mu.Unlock()

	for _, session := range all {
		session.client.Close()
	}
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// StartIdleReaper launches a loop that disconnects sessions idle for
// longer than timeout. A timeout of 0 disables the reaper. The loop
// exits when stop is closed.
func (m *Manager) StartIdleReaper(timeout time.Duration, stop <-chan struct{}) {
	if timeout <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.reapIdle(timeout)
			case <-stop:
				return
			}
		}
	}()
}

func (m *Manager) reapIdle(timeout time.Duration) {
	m.mu.Lock()
	idle := make([]*Session, 0)
	for _, session := range m.sessions {
		if session.IdleFor() > timeout {
			idle = append(idle, session)
		}
	}
	m.mu.Unlock()

	for _, session := range idle {
		logger.Info("Disconnecting idle session", "username", session.username, "idle", session.IdleFor().String())
		session.client.WriteLine("You have been idle too long. Goodbye.")
		session.client.Close()
	}
}

func (m *Manager) sessionsForObject(objectID int64) []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*Session, 0)
	for _, session := range m.sessions {
		if session.objectID == objectID {
			matched = append(matched, session)
		}
	}
	return matched
}

func (m *Manager) countForObjectLocked(objectID int64) int {
	count := 0
	for _, session := range m.sessions {
		if session.objectID == objectID {
			count++
		}
	}
	return count
}
