package handlers

import (
	"Coplay/services/session"
	socketio_types "Coplay/services/socket_io/types"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleRoomMessage joins a client to the socket room of a session, records
// the member in the roster (idempotently) and broadcasts the full ordered
// roster to every subscriber of the room.
func HandleRoomMessage(sessions *session.Manager, client *socket.Socket,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		payload, err := parseRoomMessage(args)
		if err != nil {
			log.Printf("[ROOM-ERROR] Invalid message payload (socket %s): %v", client.Id(), err)
			client.Emit("error", gin.H{"error": "Invalid message payload: " + err.Error()})
			return
		}

		log.Printf("[ROOM] %s (%s) joining room %s", payload.Username, payload.SteamID, payload.RoomNumber)

		roster, err := sessions.Join(payload.RoomNumber, session.Member{
			SteamID:  payload.SteamID,
			Username: payload.Username,
			Avatar:   payload.Avatar,
		})
		if err != nil {
			log.Printf("[ROOM-ERROR] Room %s not found for %s", payload.RoomNumber, payload.SteamID)
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		// Subscribe after the roster append succeeded; re-joining is harmless.
		client.Join(socket.Room(roomName(payload.RoomNumber)))
		sio.AddConnection(payload.SteamID, client)

		sio.Sio_server.To(socket.Room(roomName(payload.RoomNumber))).
			Emit("otherMsg", rosterPayload(roster))
	}
}

// HandleNewList broadcasts the navigate signal to every subscriber of a room,
// telling their UIs to transition to the list view. No payload is needed.
func HandleNewList(sessions *session.Manager, client *socket.Socket,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		roomNumber, err := parseRoomNumber(args)
		if err != nil {
			client.Emit("error", gin.H{"error": "Invalid newList payload: " + err.Error()})
			return
		}

		if !sessions.Exists(roomNumber) {
			client.Emit("error", gin.H{"error": "Room not found"})
			return
		}

		client.Join(socket.Room(roomName(roomNumber)))
		sio.Sio_server.To(socket.Room(roomName(roomNumber))).Emit("navigate")
	}
}

// HandleDisconnecting forgets the connection of a client that is going away.
func HandleDisconnecting(client *socket.Socket, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] Socket %s disconnecting", client.Id())
		sio.RemoveConnectionBySocket(client)
	}
}

func rosterPayload(roster []session.Member) []gin.H {
	members := make([]gin.H, 0, len(roster))
	for _, member := range roster {
		members = append(members, gin.H{
			"steamID":  member.SteamID,
			"username": member.Username,
			"avatar":   member.Avatar,
		})
	}
	return members
}
