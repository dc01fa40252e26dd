// internal/handlers/room.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jason-s-yu/tabletop/internal/auth"
	"github.com/sirupsen/logrus"
)

// PingHandler answers liveness probes.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("tabletop ok"))
}

type roomListResponse struct {
	Local    []RoomSummary `json:"local"`
	Registry []string      `json:"registry,omitempty"`
}

// ListRoomsHandler returns the rooms live in this process, plus every room the shared
// registry knows about when one is configured.
func ListRoomsHandler(logger logrus.FieldLogger, rs *RoomServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		resp := roomListResponse{Local: rs.ListRooms()}

		if rs.Registry != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			entries, err := rs.Registry.Rooms(ctx)
			if err != nil {
				logger.Warnf("failed to list registry rooms: %v", err)
			}
			for _, e := range entries {
				resp.Registry = append(resp.Registry, e.Name)
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type ticketRequest struct {
	Room     string `json:"room"`
	Nickname string `json:"nickname"`
}

type ticketResponse struct {
	Ticket   string `json:"ticket"`
	PlayerID string `json:"playerId"`
}

// CreateTicketHandler issues a signed ticket for joining one room. The ticket is returned in
// the body and set as a cookie.
func CreateTicketHandler(logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req ticketRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad ticket request payload", http.StatusBadRequest)
			return
		}
		req.Room = strings.TrimSpace(req.Room)
		if _, ok := roomNameFromPath("/"+req.Room, "/"); !ok {
			http.Error(w, "invalid room name", http.StatusBadRequest)
			return
		}

		ticket, playerID, err := auth.CreateTicket(req.Room, strings.TrimSpace(req.Nickname))
		if err != nil {
			logger.Errorf("failed to create ticket: %v", err)
			http.Error(w, "could not create ticket", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     ticketCookieName,
			Value:    ticket,
			Path:     "/room/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, ticketResponse{Ticket: ticket, PlayerID: playerID})
	}
}
