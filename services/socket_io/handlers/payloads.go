package handlers

import (
	"fmt"
)

// The frontend emits events with a single JSON object argument. These helpers
// pull that object out of the socket.io args and validate the fields each
// event needs, so the handlers only deal with typed payloads.

type roomMessagePayload struct {
	RoomNumber string
	SteamID    string
	Username   string
	Avatar     string
}

type generatePayload struct {
	RoomNumber        string
	TagSelection      string
	CategorySelection string
	PriceSelection    string
}

func eventObject(args []interface{}) (map[string]interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("missing event payload")
	}
	data, ok := args[0].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("event payload must be an object")
	}
	return data, nil
}

func stringField(data map[string]interface{}, key string) string {
	value, _ := data[key].(string)
	return value
}

func parseRoomMessage(args []interface{}) (*roomMessagePayload, error) {
	data, err := eventObject(args)
	if err != nil {
		return nil, err
	}
	p := &roomMessagePayload{
		RoomNumber: stringField(data, "roomNumber"),
		SteamID:    stringField(data, "steamID"),
		Username:   stringField(data, "username"),
		Avatar:     stringField(data, "avatar"),
	}
	if p.RoomNumber == "" {
		return nil, fmt.Errorf("missing roomNumber")
	}
	if p.SteamID == "" {
		return nil, fmt.Errorf("missing steamID")
	}
	return p, nil
}

func parseRoomNumber(args []interface{}) (string, error) {
	data, err := eventObject(args)
	if err != nil {
		return "", err
	}
	roomNumber := stringField(data, "roomNumber")
	if roomNumber == "" {
		return "", fmt.Errorf("missing roomNumber")
	}
	return roomNumber, nil
}

func parseGenerate(args []interface{}) (*generatePayload, error) {
	data, err := eventObject(args)
	if err != nil {
		return nil, err
	}
	p := &generatePayload{
		RoomNumber:        stringField(data, "roomNumber"),
		TagSelection:      stringField(data, "tagSelection"),
		CategorySelection: stringField(data, "categorySelection"),
		PriceSelection:    stringField(data, "priceSelection"),
	}
	if p.RoomNumber == "" {
		return nil, fmt.Errorf("missing roomNumber")
	}
	return p, nil
}

// roomName maps a room code to its socket.io room.
func roomName(roomCode string) string {
	return "room-" + roomCode
}
