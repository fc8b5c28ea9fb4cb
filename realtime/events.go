package realtime

// Event payloads pushed to subscribers of a room or match topic. The
// wire shape mirrors what connected clients already consume.

const (
	EventPlayerListUpdate = "player_list_update"
	EventDeleteRoom       = "delete_room"
	EventUpdateScore      = "update_score"
)

type PlayerListUpdateEvent struct {
	Type        string `json:"type"`
	UserRemoved string `json:"userRemoved"`
}

// PlayerListUpdate announces a membership change. userRemoved carries
// the leaving player's id, or "" when a player joined.
func PlayerListUpdate(userRemoved string) PlayerListUpdateEvent {
	return PlayerListUpdateEvent{Type: EventPlayerListUpdate, UserRemoved: userRemoved}
}

type DeleteRoomEvent struct {
	Type string `json:"type"`
}

func DeleteRoom() DeleteRoomEvent {
	return DeleteRoomEvent{Type: EventDeleteRoom}
}

type UpdateScoreEvent struct {
	Type        string `json:"type"`
	PlayerColor int    `json:"playerColor"`
	PlayerScore int    `json:"playerScore"`
}

func UpdateScore(playerColor, playerScore int) UpdateScoreEvent {
	return UpdateScoreEvent{Type: EventUpdateScore, PlayerColor: playerColor, PlayerScore: playerScore}
}

func RoomTopic(roomCode string) string {
	return "room_" + roomCode
}

func MatchTopic(roomCode string) string {
	return "match_" + roomCode
}
