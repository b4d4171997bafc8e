package redis

import "time"

// RoomMember is one entry of a session roster as mirrored to Redis.
type RoomMember struct {
	SteamID  string    `json:"steam_id"`
	Username string    `json:"username"`
	Avatar   string    `json:"avatar"`
	JoinedAt time.Time `json:"joined_at"`
}

// Session is the snapshot of an active room that the session manager mirrors
// to Redis. The in-memory registry stays authoritative; this copy only serves
// read paths and expires together with the session TTL.
type Session struct {
	RoomCode  string       `json:"room_code"`
	CreatorID string       `json:"creator_id"`
	Members   []RoomMember `json:"members"` // roster order, significant
	CreatedAt time.Time    `json:"created_at"`
}
