// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jason-s-yu/tabletop/internal/auth"
	"github.com/jason-s-yu/tabletop/internal/middleware"
	"github.com/jason-s-yu/tabletop/internal/room"
	"github.com/sirupsen/logrus"
)

const (
	roomSubprotocol = "table"
	outChanSize     = 256
)

// WSOptions configures the room socket.
type WSOptions struct {
	OriginPatterns  []string
	TicketsRequired bool
}

// RoomConnection is one client socket. It is the room's Sink: Send is called with the room
// lock held, so it only encodes and queues, and writePump does the network write.
type RoomConnection struct {
	PlayerID string
	OutChan  chan []byte
	logger   logrus.FieldLogger
}

func NewRoomConnection(playerID string, logger logrus.FieldLogger) *RoomConnection {
	return &RoomConnection{
		PlayerID: playerID,
		OutChan:  make(chan []byte, outChanSize),
		logger:   logger,
	}
}

// Send pushes an event onto OutChan non-blockingly. A slow client drops frames; the next
// snapshot corrects it.
func (conn *RoomConnection) Send(ev room.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		conn.logger.Warnf("failed to marshal outgoing %s: %v", ev.Type, err)
		return
	}
	select {
	case conn.OutChan <- data:
	default:
		conn.logger.Debugf("OutChan full, dropped message type '%s'", ev.Type)
	}
}

// RoomWSHandler upgrades /room/ws/{name} to the room socket, spinning the room up on first use.
func RoomWSHandler(logger *logrus.Logger, rs *RoomServer, opts WSOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{roomSubprotocol},
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error for %s: %v", r.URL.Path, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != roomSubprotocol {
			c.Close(BadSubprotocolError, "client must speak the table subprotocol")
			return
		}

		name, ok := roomNameFromPath(r.URL.Path, "/room/ws/")
		if !ok {
			c.Close(InvalidRoomNameError, "missing or invalid room name (/room/ws/{name})")
			return
		}

		playerID, nickname, err := identify(r, name, opts.TicketsRequired)
		if err != nil {
			logger.WithField("room", name).Warnf("ticket rejected: %v", err)
			c.Close(InvalidTicketError, "invalid room ticket")
			return
		}

		connLog := logger.WithFields(logrus.Fields{"room": name, "player": playerID})
		conn := NewRoomConnection(playerID, connLog)
		rm, _, err := rs.JoinRoom(name, playerID, conn)
		switch {
		case errors.Is(err, room.ErrRoomFull):
			c.Close(RoomFullError, "room is full")
			return
		case errors.Is(err, room.ErrRoomTerminated):
			c.Close(RoomClosedError, "room closed")
			return
		case err != nil:
			connLog.Warnf("join failed: %v", err)
			c.Close(websocket.StatusPolicyViolation, "join failed")
			return
		}
		middleware.LogWebSocketConnect(connLog, r.RemoteAddr, r.URL.Path)

		if nickname != "" {
			payload, _ := json.Marshal(nickname)
			_ = rm.Handle(playerID, room.Message{Type: room.EventPlayerNickname, Payload: payload})
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		go writePump(ctx, c, conn, connLog)
		readErr := readPump(ctx, c, rm, conn, connLog)

		rm.Leave(playerID)
		middleware.LogWebSocketDisconnect(connLog, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// identify resolves the player id and nickname for a connection. A valid ticket fixes both;
// without one the client gets a fresh id, unless tickets are required.
func identify(r *http.Request, roomName string, required bool) (string, string, error) {
	nickname := strings.TrimSpace(r.URL.Query().Get("nickname"))

	ticket := r.URL.Query().Get("ticket")
	if ticket == "" {
		ticket = extractCookieToken(r.Header.Get("Cookie"), ticketCookieName)
	}
	if ticket == "" {
		if required {
			return "", "", errors.New("ticket required")
		}
		return uuid.NewString(), nickname, nil
	}

	claims, err := auth.AuthenticateTicket(ticket, roomName)
	if err != nil {
		return "", "", err
	}
	if claims.Nickname != "" {
		nickname = claims.Nickname
	}
	return claims.Subject, nickname, nil
}

// readPump feeds inbound frames to the room until the socket closes. Returns the read error
// unless the close was a normal one.
func readPump(ctx context.Context, c *websocket.Conn, rm *room.Room, conn *RoomConnection, logger logrus.FieldLogger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			logger.Warnf("received non-text message type %d, ignoring", typ)
			continue
		}

		var msg room.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Debugf("invalid json: %v", err)
			continue
		}
		if msg.Type == "ping" {
			conn.Send(room.Event{Type: "pong"})
			continue
		}
		_ = rm.Handle(conn.PlayerID, msg)
	}
}

// writePump drains OutChan to the socket and keeps the connection alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *RoomConnection, logger logrus.FieldLogger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data := <-conn.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Debugf("failed to write to websocket: %v", err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Debugf("ping failed: %v", err)
				return
			}
		}
	}
}
