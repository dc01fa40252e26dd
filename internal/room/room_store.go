// internal/room/room_store.go
package room

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// RoomStore holds the live rooms of this process, keyed by name.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	log   logrus.FieldLogger
}

func NewRoomStore(logger logrus.FieldLogger) *RoomStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomStore{
		rooms: make(map[string]*Room),
		log:   logger,
	}
}

// GetOrCreate returns the named room, building it with create if it does not exist yet.
// created reports whether create ran, so the caller knows to Start the room.
func (s *RoomStore) GetOrCreate(name string, create func() *Room) (r *Room, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rooms[name]; ok {
		return existing, false
	}
	r = create()
	s.rooms[name] = r
	s.log.WithField("room", name).Debug("room added to store")
	return r, true
}

// GetRoom retrieves a room if it exists.
func (s *RoomStore) GetRoom(name string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[name]
	return r, ok
}

// DeleteRoom removes r from the store. A newer room that took over the name is left alone.
func (s *RoomStore) DeleteRoom(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.rooms[r.Name]; ok && cur == r {
		delete(s.rooms, r.Name)
		s.log.WithField("room", r.Name).Debug("room removed from store")
	}
}

// Names lists the live rooms in lexical order.
func (s *RoomStore) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.rooms))
	for name := range s.rooms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
