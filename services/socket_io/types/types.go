package socketio_types

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer is a struct that contains the socket.io server and a map of socket connections.
// It is used to handle socket.io connections.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track steamID -> socket connections
	UserConnections map[string]*socket.Socket
	mutex           sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
	}
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(steamID string, socket *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[steamID] = socket
}

func (s *SocketServer) RemoveConnection(steamID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, steamID)
}

// RemoveConnectionBySocket drops whatever identity the given socket
// registered. Identity is only learned on the first room message, so the
// disconnect path has to search by socket id.
func (s *SocketServer) RemoveConnectionBySocket(client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for steamID, conn := range s.UserConnections {
		if conn.Id() == client.Id() {
			delete(s.UserConnections, steamID)
			return
		}
	}
}

func (s *SocketServer) GetConnection(steamID string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	socket, exists := s.UserConnections[steamID]
	return socket, exists
}
