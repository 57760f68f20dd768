package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// Conn is the subset of a WebSocket connection the session layer needs.
// *websocket.Conn (gorilla) satisfies it; tests use in-memory fakes.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteJSON(v interface{}) error
	Close() error
}

// Session is one live authenticated connection. A user may hold several
// sessions at once (multi-device); each has its own ID and write lock.
type Session struct {
	ID       string
	UserID   string
	Username string

	conn    Conn
	writeMu sync.Mutex
}

func NewSession(userID, username string, conn Conn) *Session {
	return &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		conn:     conn,
	}
}

// Send writes one JSON event to the connection. The write lock keeps
// concurrent broadcasts from interleaving frames.
func (s *Session) Send(v interface{}) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// Read blocks for the next frame payload from the client.
func (s *Session) Read() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

func (s *Session) Close() error {
	return s.conn.Close()
}
