// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room socket.
// These provide more specific reasons for closure than standard codes.
const (
	BadSubprotocolError  = 3000 // Client connected without the "table" subprotocol.
	InvalidTicketError   = 3001 // Room ticket missing, invalid, expired or issued for another room.
	InvalidRoomNameError = 3003 // Room name in the WS URL is empty or malformed.
	RoomFullError        = 3004 // Room already holds ROOM_MAX_PLAYERS players.
	RoomClosedError      = 3005 // Room shut down while the client was joining.
)
